package rag

import (
	"AtendeBot/entity"
	"AtendeBot/internal/lib/sl"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"
)

// ChunkSize is the fixed chunk length in characters. Chunking is contiguous
// with no overlap and no semantic boundary awareness.
const ChunkSize = 1000

// DefaultLimit is the number of chunks returned by Search when the caller
// passes a non-positive limit.
const DefaultLimit = 3

// ErrEmbeddingUnavailable is returned by Ingest when no embedding credential
// is configured. Silently storing non-retrievable chunks would corrupt the
// knowledge base invisibly, so ingestion refuses instead.
var ErrEmbeddingUnavailable = errors.New("embedding credential not configured")

// Embedder produces embedding vectors for text.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}

// ChunkStore persists and enumerates document chunks.
type ChunkStore interface {
	InsertChunk(ctx context.Context, chunk entity.DocumentChunk) error
	ListChunks(ctx context.Context) ([]entity.DocumentChunk, error)
}

// Service is the retrieval subsystem: chunking and embedding on ingest,
// exhaustive cosine-ranked scan on search.
type Service struct {
	store    ChunkStore
	embedder Embedder
	log      *slog.Logger
}

func NewService(store ChunkStore, embedder Embedder, log *slog.Logger) *Service {
	return &Service{
		store:    store,
		embedder: embedder,
		log:      log.With(sl.Module("rag")),
	}
}

// Ingest splits content into fixed-size chunks, embeds each one and stores
// it. Returns the number of chunks stored. Fails hard when embedding is
// unavailable or a backend call errors.
func (s *Service) Ingest(ctx context.Context, filename, content string) (int, error) {
	chunks := chunkText(content, ChunkSize)
	for i, chunk := range chunks {
		vec, err := s.embedder.Embed(ctx, chunk)
		if err != nil {
			return i, fmt.Errorf("embedding chunk of %s: %w", filename, err)
		}
		if len(vec) == 0 {
			return i, ErrEmbeddingUnavailable
		}
		err = s.store.InsertChunk(ctx, entity.DocumentChunk{
			Filename:  filename,
			Content:   chunk,
			Embedding: vec,
		})
		if err != nil {
			return i, fmt.Errorf("storing chunk of %s: %w", filename, err)
		}
	}

	s.log.Info("document ingested",
		slog.String("filename", filename),
		slog.Int("chunks", len(chunks)),
	)
	return len(chunks), nil
}

// Search scores every stored chunk against the query embedding and returns
// the top limit chunks in descending similarity order. It degrades to an
// empty result when embedding is unavailable or any step fails; a prompt can
// still be answered without context.
func (s *Service) Search(ctx context.Context, query string, limit int) []entity.DocumentChunk {
	if limit <= 0 {
		limit = DefaultLimit
	}

	queryVec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		s.log.Error("query embedding failed", sl.Err(err))
		return nil
	}
	if len(queryVec) == 0 {
		return nil
	}

	chunks, err := s.store.ListChunks(ctx)
	if err != nil {
		s.log.Error("listing chunks failed", sl.Err(err))
		return nil
	}

	type scored struct {
		chunk entity.DocumentChunk
		score float64
	}
	ranked := make([]scored, 0, len(chunks))
	for _, c := range chunks {
		ranked = append(ranked, scored{chunk: c, score: CosineSimilarity(queryVec, c.Embedding)})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}

	result := make([]entity.DocumentChunk, len(ranked))
	for i, r := range ranked {
		result[i] = r.chunk
	}
	return result
}

// CosineSimilarity returns the cosine of the angle between two vectors.
// Mismatched or zero-length vectors score 0.
func CosineSimilarity(a, b []float64) float64 {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

func chunkText(text string, size int) []string {
	runes := []rune(text)
	var chunks []string
	for i := 0; i < len(runes); i += size {
		end := i + size
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[i:end]))
	}
	return chunks
}
