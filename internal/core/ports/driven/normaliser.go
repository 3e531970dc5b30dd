package driven

import (
	"context"

	"github.com/chatlore/chatlore/internal/core/domain"
)

// Normaliser parses a raw chat export into an assembled document.
// Each normaliser handles a specific export format.
type Normaliser interface {
	// SupportedExtensions returns the file extensions this normaliser
	// handles (lowercase, with leading dot).
	SupportedExtensions() []string

	// Priority returns the selection priority (higher = preferred)
	// when several normalisers claim the same extension.
	Priority() int

	// Normalise parses the export and assembles the document.
	// Malformed lines are recovered locally (skipped and counted);
	// only an export with no recognisable messages at all fails, with
	// domain.ErrEmptyDocument.
	Normalise(ctx context.Context, raw *domain.RawExport) (*NormaliseResult, error)
}

// NormaliseResult contains the output of normalisation.
type NormaliseResult struct {
	// Document is the assembled document, messages sorted by timestamp.
	Document domain.Document

	// Stats describes what the parser saw, for reporting.
	Stats ParseStats
}

// ParseStats counts parser outcomes for one export.
type ParseStats struct {
	// Recognised is the number of header lines parsed into messages.
	Recognised int

	// Dropped is the number of header lines whose timestamp could not
	// be parsed; their text (including continuations) was discarded so
	// a corrupt timestamp cannot poison the timeline.
	Dropped int

	// Preamble is the number of lines discarded before the first
	// recognised header (system banners and the like).
	Preamble int
}

// NormaliserRegistry selects the appropriate normaliser for an export.
type NormaliserRegistry interface {
	// Normalise parses an export using the best matching normaliser.
	Normalise(ctx context.Context, raw *domain.RawExport) (*NormaliseResult, error)

	// Register adds a normaliser to the registry.
	Register(normaliser Normaliser)
}
