package admin

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"AtendeBot/internal/lib/api/response"
	"AtendeBot/internal/lib/sl"
	"AtendeBot/internal/service/ingest"
)

const maxUploadSize = 20 << 20 // 20 MiB

// UploadDocument accepts a multipart file upload and indexes it into the
// knowledge base.
func UploadDocument(log *slog.Logger, handler Ingest) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := requestLogger(log, r)

		r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
		if err := r.ParseMultipartForm(maxUploadSize); err != nil {
			logger.Warn("failed to parse multipart form", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("Invalid upload"))
			return
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("file field is required"))
			return
		}
		defer file.Close()

		data, err := io.ReadAll(file)
		if err != nil {
			logger.Error("failed to read upload", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("Failed to read upload"))
			return
		}

		count, err := handler.IngestFile(r.Context(), header.Filename, data)
		if err != nil {
			switch {
			case errors.Is(err, ingest.ErrUnsupportedType):
				render.Status(r, http.StatusUnsupportedMediaType)
				render.JSON(w, r, response.Error("Unsupported document type"))
			case errors.Is(err, ingest.ErrEmptyDocument):
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, response.Error("Document has no extractable text"))
			default:
				logger.Error("failed to ingest document", sl.Err(err),
					slog.String("filename", header.Filename))
				render.Status(r, http.StatusInternalServerError)
				render.JSON(w, r, response.Error("Failed to ingest document"))
			}
			return
		}

		var resp struct {
			Filename string `json:"filename"`
			Chunks   int    `json:"chunks"`
		}
		resp.Filename = header.Filename
		resp.Chunks = count

		render.JSON(w, r, resp)
	}
}
