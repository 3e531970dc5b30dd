// Package tui provides the interactive chat terminal interface.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/chatlore/chatlore/internal/core/ports/driving"
)

// Ports aggregates the driving port interfaces required by the TUI.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Ask answers questions grounded in the archive.
	Ask driving.AskService

	// Document summarises the archive for the status bar. Optional.
	Document driving.DocumentService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Ask == nil {
		return ErrMissingAskService
	}
	return nil
}
