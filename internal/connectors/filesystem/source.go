// Package filesystem provides the local directory export source.
//
// The source walks a data directory for chat export files and, in
// watch mode, streams exports as they are created or modified.
// Editors and sync tools write export files in bursts, so watch events
// are debounced per path before the file is re-read.
package filesystem

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/chatlore/chatlore/internal/core/domain"
	"github.com/chatlore/chatlore/internal/core/ports/driven"
	"github.com/chatlore/chatlore/internal/logger"
)

// Ensure Source implements the interface.
var _ driven.ExportSource = (*Source)(nil)

// DefaultDebounce is how long a path must stay quiet before its
// change event is acted on.
const DefaultDebounce = 500 * time.Millisecond

// exportExtensions are the file extensions treated as chat exports.
var exportExtensions = map[string]bool{
	".txt": true,
}

// Source discovers chat exports in a local directory tree.
type Source struct {
	rootPath string
	debounce time.Duration

	mu      sync.Mutex
	watcher *fsnotify.Watcher
}

// Option configures the source.
type Option func(*Source)

// WithDebounce sets the watch debounce interval.
func WithDebounce(d time.Duration) Option {
	return func(s *Source) {
		if d > 0 {
			s.debounce = d
		}
	}
}

// New creates an export source rooted at the given directory.
func New(rootPath string, opts ...Option) *Source {
	s := &Source{
		rootPath: rootPath,
		debounce: DefaultDebounce,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Validate checks the data directory exists and is readable.
func (s *Source) Validate(_ context.Context) error {
	info, err := os.Stat(s.rootPath)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("data directory %q does not exist: %w", s.rootPath, domain.ErrInvalidInput)
		}
		return fmt.Errorf("checking data directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%q is not a directory: %w", s.rootPath, domain.ErrInvalidInput)
	}

	f, err := os.Open(s.rootPath)
	if err != nil {
		return fmt.Errorf("data directory %q is not readable: %w", s.rootPath, err)
	}
	return f.Close()
}

// Scan streams every export under the data directory.
// Per-file read failures are reported on the error channel without
// stopping the scan; every failure is delivered, so the caller must
// drain both channels concurrently.
func (s *Source) Scan(ctx context.Context) (<-chan domain.RawExport, <-chan error) {
	exports := make(chan domain.RawExport)
	errs := make(chan error, 1)

	go func() {
		defer close(exports)
		defer close(errs)

		walkErr := filepath.WalkDir(s.rootPath, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if d.IsDir() || !isExport(path) {
				return nil
			}

			export, err := readExport(path)
			if err != nil {
				logger.Warn("Skipping unreadable export %s: %v", path, err)
				select {
				case errs <- err:
				case <-ctx.Done():
					return ctx.Err()
				}
				return nil
			}

			select {
			case exports <- *export:
			case <-ctx.Done():
				return ctx.Err()
			}
			return nil
		})

		if walkErr != nil && ctx.Err() == nil {
			select {
			case errs <- fmt.Errorf("scanning %s: %w", s.rootPath, walkErr):
			case <-ctx.Done():
			}
		}
	}()

	return exports, errs
}

// Watch streams exports as their files are created or modified,
// debounced per path. The channel is closed when ctx ends.
func (s *Source) Watch(ctx context.Context) (<-chan domain.RawExport, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}

	// Watch the whole tree; new subdirectories are added as they appear.
	err = filepath.WalkDir(s.rootPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return watcher.Add(path)
		}
		return nil
	})
	if err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watching %s: %w", s.rootPath, err)
	}

	s.mu.Lock()
	s.watcher = watcher
	s.mu.Unlock()

	exports := make(chan domain.RawExport)

	go func() {
		defer close(exports)
		defer watcher.Close()

		timers := make(map[string]*time.Timer)
		settled := make(chan string)
		defer func() {
			for _, t := range timers {
				t.Stop()
			}
		}()

		for {
			select {
			case <-ctx.Done():
				return

			case event, ok := <-watcher.Events:
				if !ok {
					return
				}

				if event.Op.Has(fsnotify.Create) {
					if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
						if err := watcher.Add(event.Name); err != nil {
							logger.Warn("Cannot watch new directory %s: %v", event.Name, err)
						}
						continue
					}
				}
				if !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Write) {
					continue
				}
				if !isExport(event.Name) {
					continue
				}

				path := event.Name
				if timer, ok := timers[path]; ok {
					timer.Reset(s.debounce)
					continue
				}
				timers[path] = time.AfterFunc(s.debounce, func() {
					select {
					case settled <- path:
					case <-ctx.Done():
					}
				})

			case path := <-settled:
				delete(timers, path)

				export, err := readExport(path)
				if err != nil {
					logger.Warn("Skipping changed export %s: %v", path, err)
					continue
				}

				select {
				case exports <- *export:
				case <-ctx.Done():
					return
				}

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("Watcher error: %v", err)
			}
		}
	}()

	return exports, nil
}

// Close releases the watcher, if one is active.
func (s *Source) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.watcher != nil {
		err := s.watcher.Close()
		s.watcher = nil
		return err
	}
	return nil
}

// isExport reports whether the path looks like a chat export file.
func isExport(path string) bool {
	return exportExtensions[strings.ToLower(filepath.Ext(path))]
}

// readExport loads one export file from disk.
func readExport(path string) (*domain.RawExport, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return &domain.RawExport{
		URI:     path,
		Content: content,
	}, nil
}
