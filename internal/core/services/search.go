package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/chatlore/chatlore/internal/core/domain"
	"github.com/chatlore/chatlore/internal/core/ports/driven"
	"github.com/chatlore/chatlore/internal/core/ports/driving"
	"github.com/chatlore/chatlore/internal/logger"
)

// Ensure SearchService implements the interface.
var _ driving.SearchService = (*SearchService)(nil)

// DefaultTopK is the number of results returned when the caller does
// not ask for a specific count.
const DefaultTopK = 5

// SearchService performs semantic similarity search over the archive.
type SearchService struct {
	docStore  driven.DocumentStore
	index     driven.VectorIndex
	embedding driven.EmbeddingService
}

// NewSearchService creates a new search service.
func NewSearchService(
	docStore driven.DocumentStore,
	index driven.VectorIndex,
	embedding driven.EmbeddingService,
) *SearchService {
	return &SearchService{
		docStore:  docStore,
		index:     index,
		embedding: embedding,
	}
}

// Search embeds the query and returns the top-k most similar chunks
// with their documents, ordered by descending score then ascending
// chunk ID.
func (s *SearchService) Search(ctx context.Context, query string, topK int) ([]domain.SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("empty query: %w", domain.ErrInvalidInput)
	}
	if topK <= 0 {
		topK = DefaultTopK
	}
	if s.embedding == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}

	logger.Section("Search Execution")
	logger.Debug("Query: %q (top %d)", query, topK)

	queryVector, err := s.embedding.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	hits, err := s.index.Search(ctx, queryVector, topK)
	if err != nil {
		return nil, err
	}
	logger.Debug("Index returned %d hits", len(hits))

	return s.hydrate(ctx, hits)
}

// hydrate resolves vector hits into full search results. Hits whose
// chunk or document no longer exists are skipped rather than failing
// the whole search; the index may briefly trail the store during
// re-ingestion.
func (s *SearchService) hydrate(ctx context.Context, hits []driven.VectorHit) ([]domain.SearchResult, error) {
	results := make([]domain.SearchResult, 0, len(hits))

	for _, hit := range hits {
		chunk, err := s.docStore.GetChunk(ctx, hit.ChunkID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				logger.Debug("Skipping stale hit %s: chunk not in store", hit.ChunkID)
				continue
			}
			return nil, fmt.Errorf("loading chunk %s: %w", hit.ChunkID, err)
		}

		doc, err := s.docStore.GetDocument(ctx, chunk.DocumentID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				logger.Debug("Skipping orphan chunk %s: document %s missing", chunk.ID, chunk.DocumentID)
				continue
			}
			return nil, fmt.Errorf("loading document %s: %w", chunk.DocumentID, err)
		}

		results = append(results, domain.SearchResult{
			Chunk:    *chunk,
			Document: *doc,
			Score:    hit.Similarity,
		})
	}

	return results, nil
}
