package domain

// SearchResult represents a single similarity search hit.
type SearchResult struct {
	// Chunk is the matched chunk.
	Chunk Chunk

	// Document is the conversation the chunk belongs to.
	Document Document

	// Score is the cosine similarity to the query (higher is better).
	Score float64
}

// ChatTurn is one prior turn of a multi-turn session.
// History is caller-supplied and never persisted by the coordinator.
type ChatTurn struct {
	// Role is "user" or "assistant".
	Role string

	// Content is the turn text.
	Content string
}

// Answer is the result of an ask call: a grounded answer plus the
// sources it was derived from. Sources are always populated, even in
// retrieval-only mode where Text degrades to a digest of top sources.
type Answer struct {
	// Text is the generated (or degraded) answer.
	Text string

	// Sources are the retrieved chunks, ordered by descending score.
	Sources []SearchResult

	// Generated reports whether Text came from a generator or from the
	// retrieval-only fallback.
	Generated bool
}
