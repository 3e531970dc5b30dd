package filesystem

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chatlore/chatlore/internal/core/domain"
)

func writeExport(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func collect(t *testing.T, exports <-chan domain.RawExport, errs <-chan error) []domain.RawExport {
	t.Helper()

	var got []domain.RawExport
	for export := range exports {
		got = append(got, export)
	}
	for err := range errs {
		require.NoError(t, err)
	}
	return got
}

func TestValidate(t *testing.T) {
	dir := t.TempDir()
	assert.NoError(t, New(dir).Validate(context.Background()))

	err := New(filepath.Join(dir, "missing")).Validate(context.Background())
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	file := writeExport(t, dir, "chat.txt", "x")
	err = New(file).Validate(context.Background())
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestScanFindsExports(t *testing.T) {
	dir := t.TempDir()
	writeExport(t, dir, "alice.txt", "chat a")
	writeExport(t, dir, "nested/bob.txt", "chat b")
	writeExport(t, dir, "notes.md", "not an export")

	exports, errs := New(dir).Scan(context.Background())
	got := collect(t, exports, errs)

	require.Len(t, got, 2)
	var names []string
	for _, e := range got {
		names = append(names, filepath.Base(e.URI))
	}
	sort.Strings(names)
	assert.Equal(t, []string{"alice.txt", "bob.txt"}, names)
	for _, e := range got {
		assert.NotEmpty(t, e.Content)
	}
}

func TestScanEmptyDirectory(t *testing.T) {
	exports, errs := New(t.TempDir()).Scan(context.Background())
	got := collect(t, exports, errs)
	assert.Empty(t, got)
}

func TestScanReportsEveryUnreadableExport(t *testing.T) {
	dir := t.TempDir()
	writeExport(t, dir, "good.txt", "chat")
	for _, name := range []string{"a.txt", "b.txt", "c.txt"} {
		target := filepath.Join(dir, "gone-"+name)
		require.NoError(t, os.Symlink(target, filepath.Join(dir, name)))
	}

	exports, errs := New(dir).Scan(context.Background())

	var scanErrs []error
	done := make(chan struct{})
	go func() {
		defer close(done)
		for err := range errs {
			scanErrs = append(scanErrs, err)
		}
	}()

	var got []domain.RawExport
	for export := range exports {
		got = append(got, export)
	}
	<-done

	require.Len(t, got, 1)
	assert.Equal(t, "good.txt", filepath.Base(got[0].URI))
	assert.Len(t, scanErrs, 3)
}

func TestScanCancelled(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.txt", "b.txt", "c.txt"} {
		writeExport(t, dir, name, "content")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	exports, _ := New(dir).Scan(ctx)
	var got []domain.RawExport
	for export := range exports {
		got = append(got, export)
	}
	assert.Empty(t, got)
}

func TestWatchEmitsChangedExport(t *testing.T) {
	dir := t.TempDir()
	src := New(dir, WithDebounce(50*time.Millisecond))
	defer src.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	exports, err := src.Watch(ctx)
	require.NoError(t, err)

	writeExport(t, dir, "alice.txt", "12/03/2024, 09:15 - Alice: hi")

	select {
	case export := <-exports:
		assert.Equal(t, "alice.txt", filepath.Base(export.URI))
		assert.Contains(t, string(export.Content), "Alice")
	case <-ctx.Done():
		t.Fatal("no export emitted before timeout")
	}
}

func TestWatchIgnoresNonExports(t *testing.T) {
	dir := t.TempDir()
	src := New(dir, WithDebounce(20*time.Millisecond))
	defer src.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	exports, err := src.Watch(ctx)
	require.NoError(t, err)

	writeExport(t, dir, "notes.md", "irrelevant")

	select {
	case export := <-exports:
		t.Fatalf("unexpected export %s", export.URI)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestWatchClosedOnCancel(t *testing.T) {
	dir := t.TempDir()
	src := New(dir)
	defer src.Close()

	ctx, cancel := context.WithCancel(context.Background())

	exports, err := src.Watch(ctx)
	require.NoError(t, err)

	cancel()

	select {
	case _, open := <-exports:
		assert.False(t, open)
	case <-time.After(2 * time.Second):
		t.Fatal("channel not closed after cancel")
	}
}
