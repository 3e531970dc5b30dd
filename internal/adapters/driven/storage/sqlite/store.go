package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/chatlore/chatlore/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/chatlore/chatlore/internal/core/domain"
	"github.com/chatlore/chatlore/internal/core/ports/driven"
)

// FormatVersion is the current on-disk schema version recorded in
// store_meta.
const FormatVersion = 1

var _ driven.DocumentStore = (*Store)(nil)

// Store is the SQLite-backed document store.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified directory.
// If storeDir is empty, defaults to ~/.chatlore/data.
func NewStore(storeDir string) (*Store, error) {
	if storeDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		storeDir = filepath.Join(home, ".chatlore", "data")
	}

	if err := os.MkdirAll(storeDir, 0700); err != nil {
		return nil, fmt.Errorf("creating store directory: %w", err)
	}

	dbPath := filepath.Join(storeDir, "chatlore.db")

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}

		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// EnsureMeta records dimension and model on first use, and validates
// them on every later call.
func (s *Store) EnsureMeta(ctx context.Context, dimension int, model string) error {
	if dimension <= 0 || model == "" {
		return fmt.Errorf("dimension %d, model %q: %w", dimension, model, domain.ErrInvalidInput)
	}

	meta, err := s.Meta(ctx)
	if errors.Is(err, domain.ErrNotFound) {
		_, err = s.db.ExecContext(ctx, `
			INSERT INTO store_meta (id, format_version, dimension, model)
			VALUES (1, ?, ?, ?)
		`, FormatVersion, dimension, model)
		if err != nil {
			return fmt.Errorf("initialising store meta: %w", err)
		}
		return nil
	}
	if err != nil {
		return err
	}

	if meta.Dimension != dimension {
		return fmt.Errorf("store has dimension %d, embedder produces %d: %w",
			meta.Dimension, dimension, domain.ErrDimensionMismatch)
	}
	if meta.Model != model {
		return fmt.Errorf("store was built with model %q, configured model is %q: %w",
			meta.Model, model, domain.ErrInvalidInput)
	}
	return nil
}

// Meta returns the store's metadata, or domain.ErrNotFound when no
// document has ever been ingested.
func (s *Store) Meta(ctx context.Context) (*driven.StoreMeta, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT format_version, dimension, model FROM store_meta WHERE id = 1
	`)

	var meta driven.StoreMeta
	if err := row.Scan(&meta.FormatVersion, &meta.Dimension, &meta.Model); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning store meta: %w", err)
	}

	if meta.FormatVersion > FormatVersion {
		return nil, fmt.Errorf("store format version %d is newer than supported %d: %w",
			meta.FormatVersion, FormatVersion, domain.ErrCorruptStore)
	}
	if meta.Dimension <= 0 || meta.Model == "" {
		return nil, fmt.Errorf("store meta has dimension %d, model %q: %w",
			meta.Dimension, meta.Model, domain.ErrCorruptStore)
	}

	return &meta, nil
}

// storedMessage is the JSON shape of one message in the documents
// table.
type storedMessage struct {
	Timestamp time.Time `json:"ts"`
	Sender    string    `json:"sender"`
	Text      string    `json:"text"`
}

// SaveDocument atomically stores a document and its chunks, replacing
// any previous version of the document wholesale.
func (s *Store) SaveDocument(ctx context.Context, doc *domain.Document, chunks []domain.Chunk) error {
	if doc == nil || doc.ID == "" {
		return domain.ErrInvalidInput
	}

	meta, err := s.Meta(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("store meta not initialised: %w", domain.ErrInvalidInput)
		}
		return err
	}

	for _, chunk := range chunks {
		if len(chunk.Embedding) != meta.Dimension {
			return fmt.Errorf("chunk %s has %d dimensions, store has %d: %w",
				chunk.ID, len(chunk.Embedding), meta.Dimension, domain.ErrDimensionMismatch)
		}
	}

	stored := make([]storedMessage, len(doc.Messages))
	for i, m := range doc.Messages {
		stored[i] = storedMessage{Timestamp: m.Timestamp, Sender: m.Sender, Text: m.Text}
	}
	messagesJSON, err := json.Marshal(stored)
	if err != nil {
		return fmt.Errorf("marshalling messages: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	// Wholesale replace: cascade removes the previous chunks.
	if _, err := tx.ExecContext(ctx, "DELETE FROM documents WHERE id = ?", doc.ID); err != nil {
		return fmt.Errorf("removing previous document: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO documents (id, name, uri, messages, message_count, span_start, span_end, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, doc.ID, doc.Name, doc.URI, string(messagesJSON), doc.MessageCount,
		doc.SpanStart, doc.SpanEnd, doc.CreatedAt)
	if err != nil {
		return fmt.Errorf("saving document: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (id, document_id, ordinal, content, overlap, embedding)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, chunk := range chunks {
		embeddingBlob := float32SliceToBytes(chunk.Embedding)
		if _, err := stmt.ExecContext(ctx, chunk.ID, chunk.DocumentID, chunk.Ordinal,
			chunk.Content, chunk.Overlap, embeddingBlob); err != nil {
			return fmt.Errorf("saving chunk %s: %w", chunk.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// GetDocument retrieves a document by ID.
func (s *Store) GetDocument(ctx context.Context, id string) (*domain.Document, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, uri, messages, message_count, span_start, span_end, created_at
		FROM documents WHERE id = ?
	`, id)

	doc, err := scanDocument(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return doc, nil
}

// ListDocuments returns all documents, ordered by name.
func (s *Store) ListDocuments(ctx context.Context) ([]domain.Document, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, uri, messages, message_count, span_start, span_end, created_at
		FROM documents ORDER BY name, id
	`)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	var docs []domain.Document //nolint:prealloc // size unknown from query
	for rows.Next() {
		doc, err := scanDocument(rows.Scan)
		if err != nil {
			return nil, err
		}
		docs = append(docs, *doc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating documents: %w", err)
	}
	return docs, nil
}

// DeleteDocument removes a document and its chunks.
func (s *Store) DeleteDocument(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM documents WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking delete result: %w", err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// GetChunk retrieves a specific chunk by ID.
func (s *Store) GetChunk(ctx context.Context, id string) (*domain.Chunk, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, document_id, ordinal, content, overlap, embedding
		FROM chunks WHERE id = ?
	`, id)

	chunk, err := scanChunk(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return chunk, nil
}

// GetChunks retrieves all chunks for a document, in ordinal order.
func (s *Store) GetChunks(ctx context.Context, documentID string) ([]domain.Chunk, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, document_id, ordinal, content, overlap, embedding
		FROM chunks WHERE document_id = ?
		ORDER BY ordinal
	`, documentID)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	var chunks []domain.Chunk //nolint:prealloc // size unknown from query
	for rows.Next() {
		chunk, err := scanChunk(rows.Scan)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, *chunk)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunks: %w", err)
	}
	return chunks, nil
}

// ForEachChunk streams every chunk in the store, in ascending chunk ID
// order. Records whose embeddings violate the store dimension surface
// domain.ErrCorruptStore.
func (s *Store) ForEachChunk(ctx context.Context, fn func(domain.Chunk) error) error {
	meta, err := s.Meta(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil // empty store, nothing to stream
		}
		return err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, document_id, ordinal, content, overlap, embedding
		FROM chunks ORDER BY id
	`)
	if err != nil {
		return fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		chunk, err := scanChunk(rows.Scan)
		if err != nil {
			return err
		}
		if len(chunk.Embedding) != meta.Dimension {
			return fmt.Errorf("chunk %s has %d dimensions, store has %d: %w",
				chunk.ID, len(chunk.Embedding), meta.Dimension, domain.ErrCorruptStore)
		}
		if err := fn(*chunk); err != nil {
			return err
		}
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating chunks: %w", err)
	}
	return nil
}

// CountChunks returns the number of chunk records.
func (s *Store) CountChunks(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM chunks").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting chunks: %w", err)
	}
	return count, nil
}

// ==================== Helper Functions ====================

// float32SliceToBytes converts a []float32 to a little-endian byte
// slice for storage, preserving the exact bit patterns.
func float32SliceToBytes(floats []float32) []byte {
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts a byte slice back to []float32.
func bytesToFloat32Slice(data []byte) []float32 {
	if len(data) == 0 {
		return nil
	}
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}

// scanFunc abstracts sql.Row.Scan and sql.Rows.Scan.
type scanFunc func(dest ...any) error

// scanDocument scans one document row.
func scanDocument(scan scanFunc) (*domain.Document, error) {
	var doc domain.Document
	var messagesJSON string

	if err := scan(&doc.ID, &doc.Name, &doc.URI, &messagesJSON,
		&doc.MessageCount, &doc.SpanStart, &doc.SpanEnd, &doc.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning document: %w", err)
	}

	var stored []storedMessage
	if err := json.Unmarshal([]byte(messagesJSON), &stored); err != nil {
		return nil, fmt.Errorf("document %s has unreadable messages: %w: %w",
			doc.ID, domain.ErrCorruptStore, err)
	}
	doc.Messages = make([]domain.Message, len(stored))
	for i, m := range stored {
		doc.Messages[i] = domain.Message{Timestamp: m.Timestamp, Sender: m.Sender, Text: m.Text}
	}

	return &doc, nil
}

// scanChunk scans one chunk row.
func scanChunk(scan scanFunc) (*domain.Chunk, error) {
	var chunk domain.Chunk
	var embeddingBlob []byte

	if err := scan(&chunk.ID, &chunk.DocumentID, &chunk.Ordinal,
		&chunk.Content, &chunk.Overlap, &embeddingBlob); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning chunk: %w", err)
	}

	if len(embeddingBlob)%4 != 0 {
		return nil, fmt.Errorf("chunk %s has a truncated embedding blob: %w",
			chunk.ID, domain.ErrCorruptStore)
	}
	chunk.Embedding = bytesToFloat32Slice(embeddingBlob)

	return &chunk, nil
}
