package normalisers

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/chatlore/chatlore/internal/core/domain"
	"github.com/chatlore/chatlore/internal/core/ports/driven"
)

// Ensure Registry implements the interface.
var _ driven.NormaliserRegistry = (*Registry)(nil)

// Registry dispatches exports to normalisers by file extension.
// When several normalisers claim an extension, the highest priority wins.
type Registry struct {
	mu    sync.RWMutex
	byExt map[string][]driven.Normaliser
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{byExt: make(map[string][]driven.Normaliser)}
}

// Register adds a normaliser to the registry.
func (r *Registry) Register(n driven.Normaliser) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, ext := range n.SupportedExtensions() {
		ext = strings.ToLower(ext)
		r.byExt[ext] = append(r.byExt[ext], n)
		sort.SliceStable(r.byExt[ext], func(i, j int) bool {
			return r.byExt[ext][i].Priority() > r.byExt[ext][j].Priority()
		})
	}
}

// Normalise parses an export using the best matching normaliser.
func (r *Registry) Normalise(ctx context.Context, raw *domain.RawExport) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	ext := strings.ToLower(filepath.Ext(raw.URI))

	r.mu.RLock()
	candidates := r.byExt[ext]
	r.mu.RUnlock()

	if len(candidates) == 0 {
		return nil, fmt.Errorf("no normaliser for %q: %w", ext, domain.ErrInvalidInput)
	}

	return candidates[0].Normalise(ctx, raw)
}
