package ingest

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
)

type fakeIndexer struct {
	filename string
	content  string
	count    int
	err      error
}

func (f *fakeIndexer) Ingest(_ context.Context, filename, content string) (int, error) {
	f.filename = filename
	f.content = content
	return f.count, f.err
}

func TestIngestPlainText(t *testing.T) {
	indexer := &fakeIndexer{count: 2}
	svc := NewIngestService(indexer, slog.New(slog.NewTextHandler(io.Discard, nil)))

	count, err := svc.IngestFile(context.Background(), "faq.txt", []byte("  horário de funcionamento: 9h às 18h  "))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 2 {
		t.Errorf("got %d chunks", count)
	}
	if indexer.filename != "faq.txt" {
		t.Errorf("filename %q", indexer.filename)
	}
	if indexer.content != "horário de funcionamento: 9h às 18h" {
		t.Errorf("content not trimmed: %q", indexer.content)
	}
}

func TestIngestMarkdown(t *testing.T) {
	indexer := &fakeIndexer{count: 1}
	svc := NewIngestService(indexer, slog.New(slog.NewTextHandler(io.Discard, nil)))

	if _, err := svc.IngestFile(context.Background(), "Catalogo.MD", []byte("# catálogo")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestIngestRejectsEmptyDocument(t *testing.T) {
	svc := NewIngestService(&fakeIndexer{}, slog.New(slog.NewTextHandler(io.Discard, nil)))

	_, err := svc.IngestFile(context.Background(), "vazio.txt", []byte("   \n\t "))
	if !errors.Is(err, ErrEmptyDocument) {
		t.Errorf("got %v, want ErrEmptyDocument", err)
	}
}

func TestIngestRejectsUnsupportedType(t *testing.T) {
	svc := NewIngestService(&fakeIndexer{}, slog.New(slog.NewTextHandler(io.Discard, nil)))

	_, err := svc.IngestFile(context.Background(), "planilha.xlsx", []byte("data"))
	if !errors.Is(err, ErrUnsupportedType) {
		t.Errorf("got %v, want ErrUnsupportedType", err)
	}
}

func TestIngestRejectsBrokenPDF(t *testing.T) {
	svc := NewIngestService(&fakeIndexer{}, slog.New(slog.NewTextHandler(io.Discard, nil)))

	if _, err := svc.IngestFile(context.Background(), "quebrado.pdf", []byte("not a pdf")); err == nil {
		t.Error("expected an error for a malformed pdf")
	}
}

func TestIngestPropagatesIndexerError(t *testing.T) {
	indexer := &fakeIndexer{err: errors.New("embedding unavailable")}
	svc := NewIngestService(indexer, slog.New(slog.NewTextHandler(io.Discard, nil)))

	if _, err := svc.IngestFile(context.Background(), "doc.txt", []byte("conteúdo")); err == nil {
		t.Error("expected the indexer error to propagate")
	}
}
