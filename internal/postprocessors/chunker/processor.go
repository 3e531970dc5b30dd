// Package chunker splits rendered conversations into overlapping chunks.
//
// Chunks are built from whole rendered message lines: a message is
// never split across chunks unless it alone exceeds the chunk size, in
// which case it becomes an oversized chunk of its own, unmodified.
// Consecutive chunks share a tail of whole lines so context survives
// the boundary, and the recorded overlap length lets the original
// rendering be reconstructed from the chunk sequence.
package chunker

import (
	"context"
	"fmt"
	"strings"

	"github.com/chatlore/chatlore/internal/core/domain"
)

// DefaultChunkSize is the default number of bytes per chunk.
const DefaultChunkSize = 1000

// DefaultChunkOverlap is the default number of overlapping bytes.
const DefaultChunkOverlap = 200

// Processor splits a document's rendering into chunks.
// It implements the PostProcessor interface.
type Processor struct {
	chunkSize int
	overlap   int
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithChunkSize sets the chunk size in bytes.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		p.chunkSize = size
	}
}

// WithOverlap sets the overlap between chunks in bytes.
func WithOverlap(overlap int) Option {
	return func(p *Processor) {
		p.overlap = overlap
	}
}

// New creates a new chunker processor with the given options.
// The chunk size must be positive and the overlap must be
// non-negative and strictly smaller than the chunk size.
func New(opts ...Option) (*Processor, error) {
	p := &Processor{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.chunkSize <= 0 {
		return nil, fmt.Errorf("chunk size %d: %w", p.chunkSize, domain.ErrInvalidChunking)
	}
	if p.overlap < 0 || p.overlap >= p.chunkSize {
		return nil, fmt.Errorf("overlap %d with chunk size %d: %w", p.overlap, p.chunkSize, domain.ErrInvalidChunking)
	}

	return p, nil
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// Process splits the document into chunks of rendered message lines.
// Input chunks are ignored; this processor creates chunks from the
// document's messages. Chunk IDs are deterministic, derived from the
// document ID and the chunk's ordinal.
func (p *Processor) Process(_ context.Context, doc *domain.Document, _ []domain.Chunk) ([]domain.Chunk, error) {
	if doc == nil {
		return nil, domain.ErrInvalidInput
	}
	if len(doc.Messages) == 0 {
		return nil, nil
	}

	lines := make([]string, len(doc.Messages))
	for i := range doc.Messages {
		lines[i] = domain.RenderMessage(&doc.Messages[i])
	}

	var (
		chunks  []domain.Chunk
		cur     []string
		curLen  int
		curOver int
		ordinal int
	)

	flush := func() {
		if len(cur) == 0 {
			return
		}
		chunks = append(chunks, domain.Chunk{
			ID:         domain.ChunkID(doc.ID, ordinal),
			DocumentID: doc.ID,
			Ordinal:    ordinal,
			Content:    strings.Join(cur, "\n"),
			Overlap:    curOver,
		})
		ordinal++
		cur = nil
		curLen = 0
		curOver = 0
	}

	for _, line := range lines {
		cost := len(line)
		if len(cur) > 0 {
			cost++ // separator newline
		}

		if len(cur) > 0 && curLen+cost > p.chunkSize {
			seed, seedLen := overlapTail(cur, p.overlap)
			flush()

			// An oversized line would not fit next to the seed, so it
			// stands alone and the overlap is forfeited.
			if len(seed) > 0 && seedLen+1+len(line) > p.chunkSize {
				seed, seedLen = nil, 0
			}

			cur = append(cur, seed...)
			curLen = seedLen
			if len(seed) > 0 {
				curOver = seedLen + 1
			}

			cost = len(line)
			if len(cur) > 0 {
				cost++
			}
		}

		cur = append(cur, line)
		curLen += cost
	}
	flush()

	return chunks, nil
}

// overlapTail selects trailing whole lines whose joined length fits
// the overlap budget, preserving order.
func overlapTail(lines []string, budget int) ([]string, int) {
	if budget <= 0 {
		return nil, 0
	}

	total := 0
	start := len(lines)

	for i := len(lines) - 1; i >= 0; i-- {
		cost := len(lines[i])
		if total > 0 {
			cost++
		}
		if total+cost > budget {
			break
		}
		total += cost
		start = i
	}

	if start == len(lines) {
		return nil, 0
	}

	tail := make([]string, len(lines)-start)
	copy(tail, lines[start:])
	return tail, total
}
