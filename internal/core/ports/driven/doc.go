// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - ExportSource: Discovers chat export files to ingest
//   - Normaliser: Parses a raw export into an assembled document
//   - NormaliserRegistry: Selects the appropriate normaliser per export
//   - DocumentStore: Durable document, chunk, and vector persistence
//   - VectorIndex: Similarity search over stored embeddings
//   - EmbeddingService: Generates vector embeddings
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - GeneratorService: Grounded answer generation. Without it, ask
//     runs in retrieval-only mode and returns a digest of top sources.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter, connector, or normaliser package
package driven
