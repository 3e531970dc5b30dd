package driving

import "context"

// FileError records one export that failed to ingest.
type FileError struct {
	// URI is the export that failed.
	URI string

	// Err is what went wrong.
	Err error
}

// IngestReport summarises one ingestion run.
// Failures are isolated per file: a bad export never aborts its
// siblings.
type IngestReport struct {
	// RunID uniquely identifies the run.
	RunID string

	// FilesSeen is the number of exports discovered.
	FilesSeen int

	// FilesIngested is the number successfully stored.
	FilesIngested int

	// Messages is the total recognised messages across ingested files.
	Messages int

	// Chunks is the total chunks embedded and stored.
	Chunks int

	// Failures lists per-file errors, in discovery order.
	Failures []FileError
}

// IngestOrchestrator coordinates the ingestion pipeline:
// scan exports, parse, chunk, embed, store, index.
type IngestOrchestrator interface {
	// IngestAll ingests every export the source can discover.
	// The report is returned even when some files failed.
	IngestAll(ctx context.Context) (*IngestReport, error)

	// Watch ingests continuously as exports change, until ctx ends.
	Watch(ctx context.Context) error
}
