package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/chatlore/chatlore/internal/core/domain"
	"github.com/chatlore/chatlore/internal/core/ports/driven"
	"github.com/chatlore/chatlore/internal/core/ports/driving"
)

// Ensure DocumentService implements the interface.
var _ driving.DocumentService = (*DocumentService)(nil)

// DocumentService exposes indexed conversations.
type DocumentService struct {
	docStore driven.DocumentStore
}

// NewDocumentService creates a new document service.
func NewDocumentService(docStore driven.DocumentStore) *DocumentService {
	return &DocumentService{docStore: docStore}
}

// List returns all indexed conversations, ordered by name.
func (s *DocumentService) List(ctx context.Context) ([]domain.Document, error) {
	return s.docStore.ListDocuments(ctx)
}

// Get returns one conversation by ID.
func (s *DocumentService) Get(ctx context.Context, id string) (*domain.Document, error) {
	if id == "" {
		return nil, fmt.Errorf("empty document id: %w", domain.ErrInvalidInput)
	}
	return s.docStore.GetDocument(ctx, id)
}

// Stats summarises the archive. An archive that has never been
// ingested yields zero-valued stats, not an error.
func (s *DocumentService) Stats(ctx context.Context) (*driving.ArchiveStats, error) {
	docs, err := s.docStore.ListDocuments(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}

	chunks, err := s.docStore.CountChunks(ctx)
	if err != nil {
		return nil, fmt.Errorf("counting chunks: %w", err)
	}

	stats := &driving.ArchiveStats{
		Documents: len(docs),
		Chunks:    chunks,
	}
	for _, doc := range docs {
		stats.Messages += doc.MessageCount
		if stats.SpanStart.IsZero() || doc.SpanStart.Before(stats.SpanStart) {
			stats.SpanStart = doc.SpanStart
		}
		if doc.SpanEnd.After(stats.SpanEnd) {
			stats.SpanEnd = doc.SpanEnd
		}
	}

	meta, err := s.docStore.Meta(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return stats, nil
		}
		return nil, fmt.Errorf("reading store meta: %w", err)
	}
	stats.Dimension = meta.Dimension
	stats.Model = meta.Model

	return stats, nil
}
