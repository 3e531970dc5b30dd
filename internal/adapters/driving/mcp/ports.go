package mcp

import (
	"github.com/chatlore/chatlore/internal/core/ports/driving"
)

// Ports aggregates the driving port interfaces the MCP server exposes.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Search provides similarity search over the archive.
	Search driving.SearchService

	// Ask provides grounded question answering. Optional; without it
	// the ask tool is not registered.
	Ask driving.AskService

	// Document exposes indexed conversations. Optional; without it the
	// conversation resources return empty content.
	Document driving.DocumentService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Search == nil {
		return ErrMissingSearchService
	}
	return nil
}
