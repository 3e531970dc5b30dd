// Package domain defines the core business entities for Chatlore.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Message: A single timestamped chat message
//   - Document: An assembled conversation with its messages
//   - Chunk: A retrieval-sized, embeddable slice of a document
//   - SearchResult: A ranked, attributable search hit
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
