package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrEmptyDocument indicates an export yielded no recognisable messages.
	// Surfaced per file; it never aborts ingestion of sibling exports.
	ErrEmptyDocument = errors.New("empty document")

	// ErrEmptyStore indicates a search was attempted against a store with
	// zero records. Surfaced to the user as "nothing to search"; the fix
	// is to ingest, not to rebuild.
	ErrEmptyStore = errors.New("empty store")

	// ErrInvalidChunking indicates invalid chunker parameters
	// (chunk size must be greater than overlap, overlap non-negative).
	// Fatal, caught before ingestion starts.
	ErrInvalidChunking = errors.New("invalid chunking parameters")

	// ErrDimensionMismatch indicates a vector's dimension does not match
	// the store's fixed dimension. The offending record is rejected and
	// the store is left unchanged.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrCorruptStore indicates the persisted store violates its format
	// (wrong version, truncated record, dimension drift across records).
	// Fatal for that store; the caller must rebuild rather than silently
	// fall back to an empty index.
	ErrCorruptStore = errors.New("corrupt store")

	// ErrEmbedding indicates the embedding provider failed after retries.
	ErrEmbedding = errors.New("embedding failed")

	// ErrGeneration indicates the answer generator failed after retries.
	ErrGeneration = errors.New("generation failed")

	// ErrEmbeddingUnavailable indicates no embedding service is configured.
	// Nothing works without one; ingestion and search both require it.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrGeneratorUnavailable indicates no generator is configured.
	// Ask degrades to retrieval-only mode; this is a valid, documented mode.
	ErrGeneratorUnavailable = errors.New("generator unavailable")
)
