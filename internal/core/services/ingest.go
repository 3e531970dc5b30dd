package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/chatlore/chatlore/internal/core/domain"
	"github.com/chatlore/chatlore/internal/core/ports/driven"
	"github.com/chatlore/chatlore/internal/core/ports/driving"
	"github.com/chatlore/chatlore/internal/logger"
)

// Ensure IngestOrchestrator implements the interface.
var _ driving.IngestOrchestrator = (*IngestOrchestrator)(nil)

// DefaultIngestWorkers bounds how many exports are processed
// concurrently. Embedding calls dominate ingest time, so the pool is
// sized for a local provider rather than the CPU count.
const DefaultIngestWorkers = 4

// IngestOrchestrator runs the ingestion pipeline:
// scan exports, normalise, chunk, embed, store, index.
type IngestOrchestrator struct {
	source    driven.ExportSource
	registry  driven.NormaliserRegistry
	pipeline  driven.PostProcessorPipeline
	embedding driven.EmbeddingService
	docStore  driven.DocumentStore
	index     driven.VectorIndex
	workers   int
}

// IngestOption configures the orchestrator.
type IngestOption func(*IngestOrchestrator)

// WithIngestWorkers sets the concurrent worker count.
func WithIngestWorkers(n int) IngestOption {
	return func(o *IngestOrchestrator) {
		if n > 0 {
			o.workers = n
		}
	}
}

// NewIngestOrchestrator creates a new ingest orchestrator.
func NewIngestOrchestrator(
	source driven.ExportSource,
	registry driven.NormaliserRegistry,
	pipeline driven.PostProcessorPipeline,
	embedding driven.EmbeddingService,
	docStore driven.DocumentStore,
	index driven.VectorIndex,
	opts ...IngestOption,
) *IngestOrchestrator {
	o := &IngestOrchestrator{
		source:    source,
		registry:  registry,
		pipeline:  pipeline,
		embedding: embedding,
		docStore:  docStore,
		index:     index,
		workers:   DefaultIngestWorkers,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// fileResult is the outcome of ingesting one export.
type fileResult struct {
	messages int
	chunks   int
}

// IngestAll ingests every export the source can discover.
// Failures are isolated per file; the report is returned even when
// some exports failed. Only infrastructure errors that poison the
// whole run (unreachable embedding service at startup, store meta
// mismatch) abort it.
func (o *IngestOrchestrator) IngestAll(ctx context.Context) (*driving.IngestReport, error) {
	if err := o.prepare(ctx); err != nil {
		return nil, err
	}

	report := &driving.IngestReport{RunID: uuid.New().String()}
	logger.Section("Ingestion Run " + report.RunID)

	exports, scanErrs := o.source.Scan(ctx)

	// The source blocks reporting read failures until someone listens,
	// so drain them alongside the export loop or the scan stalls.
	scanFailures := make(chan []driving.FileError, 1)
	go func() {
		var failures []driving.FileError
		for err := range scanErrs {
			failures = append(failures, driving.FileError{Err: err})
		}
		scanFailures <- failures
	}()

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.workers)

	for export := range exports {
		export := export

		mu.Lock()
		report.FilesSeen++
		mu.Unlock()

		g.Go(func() error {
			result, err := o.ingestOne(gctx, &export)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				logger.Warn("Failed to ingest %s: %v", export.URI, err)
				report.Failures = append(report.Failures, driving.FileError{URI: export.URI, Err: err})
				return nil
			}
			report.FilesIngested++
			report.Messages += result.messages
			report.Chunks += result.chunks
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return report, err
	}

	report.Failures = append(report.Failures, <-scanFailures...)

	if err := ctx.Err(); err != nil {
		return report, err
	}

	logger.Info("Ingested %d/%d exports (%d messages, %d chunks, %d failures)",
		report.FilesIngested, report.FilesSeen, report.Messages, report.Chunks, len(report.Failures))
	return report, nil
}

// Watch ingests continuously as exports change, until ctx ends.
// Per-file failures are logged and skipped; watching continues.
func (o *IngestOrchestrator) Watch(ctx context.Context) error {
	if err := o.prepare(ctx); err != nil {
		return err
	}

	exports, err := o.source.Watch(ctx)
	if err != nil {
		return fmt.Errorf("starting watch: %w", err)
	}

	logger.Section("Watch Mode")
	for export := range exports {
		result, err := o.ingestOne(ctx, &export)
		if err != nil {
			logger.Warn("Failed to ingest changed export %s: %v", export.URI, err)
			continue
		}
		logger.Info("Re-ingested %s (%d messages, %d chunks)", export.URI, result.messages, result.chunks)
	}
	return ctx.Err()
}

// prepare verifies the embedding service and pins the store metadata
// before any export is touched.
func (o *IngestOrchestrator) prepare(ctx context.Context) error {
	if o.embedding == nil {
		return domain.ErrEmbeddingUnavailable
	}
	if err := o.embedding.Ping(ctx); err != nil {
		return fmt.Errorf("embedding service not ready: %w", err)
	}
	if err := o.docStore.EnsureMeta(ctx, o.embedding.Dimensions(), o.embedding.ModelName()); err != nil {
		return fmt.Errorf("preparing store: %w", err)
	}
	return nil
}

// ingestOne runs the full pipeline for a single export:
// normalise, chunk, embed, replace in store, refresh the index.
func (o *IngestOrchestrator) ingestOne(ctx context.Context, raw *domain.RawExport) (*fileResult, error) {
	normalised, err := o.registry.Normalise(ctx, raw)
	if err != nil {
		return nil, err
	}
	doc := normalised.Document
	logger.Debug("Parsed %s: %d messages (%d dropped, %d preamble)",
		raw.URI, normalised.Stats.Recognised, normalised.Stats.Dropped, normalised.Stats.Preamble)

	chunks, err := o.pipeline.Process(ctx, &doc)
	if err != nil {
		return nil, fmt.Errorf("chunking %s: %w", doc.Name, err)
	}

	texts := make([]string, len(chunks))
	for i := range chunks {
		texts[i] = chunks[i].Content
	}
	embeddings, err := o.embedding.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embedding %s: %w", doc.Name, err)
	}
	for i := range chunks {
		chunks[i].Embedding = embeddings[i]
	}

	// Re-ingesting replaces the document wholesale. The previous
	// version's chunk IDs are captured before the save replaces them;
	// the index is only touched once the save has committed, so a failed
	// save leaves index and store in agreement.
	var stale []string
	if prev, err := o.docStore.GetChunks(ctx, doc.ID); err == nil {
		for _, chunk := range prev {
			stale = append(stale, chunk.ID)
		}
	}

	if err := o.docStore.SaveDocument(ctx, &doc, chunks); err != nil {
		return nil, fmt.Errorf("storing %s: %w", doc.Name, err)
	}

	// Add overwrites shared IDs in place; stale IDs the new version no
	// longer has are evicted afterwards, or a shrinking document would
	// leave orphan hits behind. Searches during the window tolerate the
	// overlap: hydration skips chunks the store no longer knows.
	fresh := make(map[string]bool, len(chunks))
	for _, chunk := range chunks {
		if err := o.index.Add(ctx, chunk.ID, chunk.Embedding); err != nil {
			return nil, fmt.Errorf("indexing %s: %w", chunk.ID, err)
		}
		fresh[chunk.ID] = true
	}
	for _, id := range stale {
		if fresh[id] {
			continue
		}
		if err := o.index.Delete(ctx, id); err != nil {
			return nil, fmt.Errorf("evicting stale vector %s: %w", id, err)
		}
	}

	return &fileResult{
		messages: doc.MessageCount,
		chunks:   len(chunks),
	}, nil
}
