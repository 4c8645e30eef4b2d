package ingest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"

	"AtendeBot/internal/lib/sl"
)

var (
	ErrEmptyDocument   = errors.New("document has no extractable text")
	ErrUnsupportedType = errors.New("unsupported document type")
)

// Indexer receives extracted text for chunking and embedding.
type Indexer interface {
	Ingest(ctx context.Context, filename, content string) (int, error)
}

// Service turns uploaded files into knowledge base text.
type Service struct {
	indexer Indexer
	log     *slog.Logger
}

func NewIngestService(indexer Indexer, logger *slog.Logger) *Service {
	return &Service{
		indexer: indexer,
		log:     logger.With(sl.Module("ingest-service")),
	}
}

// IngestFile extracts text from an uploaded file and indexes it. Returns the
// number of chunks stored.
func (s *Service) IngestFile(ctx context.Context, filename string, data []byte) (int, error) {
	text, err := extractText(filename, data)
	if err != nil {
		return 0, err
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return 0, ErrEmptyDocument
	}

	count, err := s.indexer.Ingest(ctx, filename, text)
	if err != nil {
		return 0, err
	}

	s.log.Info("document indexed",
		slog.String("filename", filename),
		slog.Int("chunks", count),
	)
	return count, nil
}

func extractText(filename string, data []byte) (string, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return extractPDF(data)
	case ".txt", ".md":
		return string(data), nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedType, filepath.Ext(filename))
	}
}

func extractPDF(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open pdf: %w", err)
	}

	var sb strings.Builder
	for pageNum := 1; pageNum <= reader.NumPage(); pageNum++ {
		page := reader.Page(pageNum)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		sb.WriteString(content)
		sb.WriteString("\n")
	}

	if sb.Len() == 0 {
		return "", ErrEmptyDocument
	}
	return sb.String(), nil
}
