// Package sqlite provides the SQLite-backed document store.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation
// that requires no CGO, enabling easy cross-compilation. Documents,
// their chunks, and chunk embeddings live in one database file, so a
// reopened archive never needs re-embedding.
//
// # Schema
//
// The database schema is managed through versioned migrations stored in
// the migrations/ directory. Each migration is a pair of .up.sql and
// .down.sql files. Embeddings are stored as little-endian float32 blobs
// with their original bit patterns, so a vector read back from disk is
// bit-identical to the one written.
//
// # Data Location
//
// By default, the database is stored at ~/.chatlore/data/chatlore.db
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking
// provided by SQLite in WAL mode.
package sqlite
