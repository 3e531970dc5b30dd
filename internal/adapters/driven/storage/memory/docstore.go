// Package memory provides in-memory implementations of driven ports,
// used in tests and anywhere persistence is not wanted.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/chatlore/chatlore/internal/core/domain"
	"github.com/chatlore/chatlore/internal/core/ports/driven"
)

// Ensure DocumentStore implements the interface.
var _ driven.DocumentStore = (*DocumentStore)(nil)

// DocumentStore is an in-memory implementation of driven.DocumentStore.
type DocumentStore struct {
	mu        sync.RWMutex
	meta      *driven.StoreMeta
	documents map[string]domain.Document
	chunks    map[string][]domain.Chunk
}

// NewDocumentStore creates a new in-memory document store.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{
		documents: make(map[string]domain.Document),
		chunks:    make(map[string][]domain.Chunk),
	}
}

// EnsureMeta records dimension and model on first use, and validates
// them on every later call.
func (s *DocumentStore) EnsureMeta(_ context.Context, dimension int, model string) error {
	if dimension <= 0 || model == "" {
		return domain.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.meta == nil {
		s.meta = &driven.StoreMeta{FormatVersion: 1, Dimension: dimension, Model: model}
		return nil
	}
	if s.meta.Dimension != dimension {
		return fmt.Errorf("store has dimension %d, embedder produces %d: %w",
			s.meta.Dimension, dimension, domain.ErrDimensionMismatch)
	}
	if s.meta.Model != model {
		return fmt.Errorf("store was built with model %q, configured model is %q: %w",
			s.meta.Model, model, domain.ErrInvalidInput)
	}
	return nil
}

// Meta returns the store's metadata.
func (s *DocumentStore) Meta(_ context.Context) (*driven.StoreMeta, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.meta == nil {
		return nil, domain.ErrNotFound
	}
	meta := *s.meta
	return &meta, nil
}

// SaveDocument stores a document and its chunks, replacing any
// previous version wholesale.
func (s *DocumentStore) SaveDocument(_ context.Context, doc *domain.Document, chunks []domain.Chunk) error {
	if doc == nil || doc.ID == "" {
		return domain.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.meta == nil {
		return fmt.Errorf("store meta not initialised: %w", domain.ErrInvalidInput)
	}
	for _, chunk := range chunks {
		if len(chunk.Embedding) != s.meta.Dimension {
			return fmt.Errorf("chunk %s has %d dimensions, store has %d: %w",
				chunk.ID, len(chunk.Embedding), s.meta.Dimension, domain.ErrDimensionMismatch)
		}
	}

	s.documents[doc.ID] = *doc
	copied := make([]domain.Chunk, len(chunks))
	copy(copied, chunks)
	s.chunks[doc.ID] = copied
	return nil
}

// GetDocument retrieves a document by ID.
func (s *DocumentStore) GetDocument(_ context.Context, id string) (*domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.documents[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &doc, nil
}

// ListDocuments returns all documents, ordered by name.
func (s *DocumentStore) ListDocuments(_ context.Context) ([]domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	docs := make([]domain.Document, 0, len(s.documents))
	for id := range s.documents {
		docs = append(docs, s.documents[id])
	}
	sort.Slice(docs, func(i, j int) bool {
		if docs[i].Name != docs[j].Name {
			return docs[i].Name < docs[j].Name
		}
		return docs[i].ID < docs[j].ID
	})
	return docs, nil
}

// DeleteDocument removes a document and its chunks.
func (s *DocumentStore) DeleteDocument(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.documents[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.documents, id)
	delete(s.chunks, id)
	return nil
}

// GetChunk retrieves a specific chunk by ID.
func (s *DocumentStore) GetChunk(_ context.Context, id string) (*domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, chunks := range s.chunks {
		for _, chunk := range chunks {
			if chunk.ID == id {
				return &chunk, nil
			}
		}
	}
	return nil, domain.ErrNotFound
}

// GetChunks retrieves all chunks for a document, in ordinal order.
func (s *DocumentStore) GetChunks(_ context.Context, documentID string) ([]domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored := s.chunks[documentID]
	chunks := make([]domain.Chunk, len(stored))
	copy(chunks, stored)
	sort.Slice(chunks, func(i, j int) bool { return chunks[i].Ordinal < chunks[j].Ordinal })
	return chunks, nil
}

// ForEachChunk streams every chunk in ascending chunk ID order.
func (s *DocumentStore) ForEachChunk(_ context.Context, fn func(domain.Chunk) error) error {
	s.mu.RLock()
	var all []domain.Chunk
	for _, chunks := range s.chunks {
		all = append(all, chunks...)
	}
	s.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })

	for _, chunk := range all {
		if err := fn(chunk); err != nil {
			return err
		}
	}
	return nil
}

// CountChunks returns the number of chunk records.
func (s *DocumentStore) CountChunks(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	total := 0
	for _, chunks := range s.chunks {
		total += len(chunks)
	}
	return total, nil
}

// Close releases resources (no-op for memory store).
func (s *DocumentStore) Close() error {
	return nil
}
