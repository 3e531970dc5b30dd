package driven

import (
	"context"

	"github.com/chatlore/chatlore/internal/core/domain"
)

// ExportSource discovers chat export files to ingest.
// The only shipped implementation walks a local data directory.
type ExportSource interface {
	// Validate checks the source is ready to scan (the path exists and
	// is readable). Returns nil if ready, an error describing the
	// problem otherwise.
	Validate(ctx context.Context) error

	// Scan streams every export in the source.
	// Returns channels for exports and errors. Both channels are closed
	// when the scan completes; a scan-level failure is delivered on the
	// error channel. Per-file read failures are reported on the error
	// channel without stopping the scan, and every failure is delivered,
	// so callers must drain both channels concurrently.
	Scan(ctx context.Context) (<-chan domain.RawExport, <-chan error)

	// Watch listens for export file changes and streams the affected
	// exports as they settle. The channel is closed when ctx ends.
	Watch(ctx context.Context) (<-chan domain.RawExport, error)

	// Close releases resources.
	Close() error
}
