package change

import "github.com/siltlabs/silt/internal/base"

// DefaultMaxChangesByteSize is the byte budget used when chunking changes
// for network transmission, unless the caller overrides it.
const DefaultMaxChangesByteSize = 8 * 1024

// ChunkedChanges slices an ordered change log into byte-budgeted chunks,
// each paired with the exact sequence range it accounts for.
//
// Usage follows the sql.Rows pull idiom:
//
//	cc := change.NewChunkedChanges(src, startSeq, lastSeq, budget)
//	for cc.Next() {
//		changes, rng := cc.Chunk()
//		// hand to the transport
//	}
//	if err := cc.Err(); err != nil {
//		// source fault; cc is dead
//	}
//
// The union of all emitted ranges tiles [startSeq, lastSeq] exactly. An
// empty source still yields one chunk: ([], [startSeq, lastSeq]).
//
// ChunkedChanges is single-consumer and non-restartable: pulls must be
// sequential from one goroutine, and a source fault is terminal.
type ChunkedChanges struct {
	src    Source
	peeked *sourceItem

	changes       []Change
	lastPushedSeq base.Seq
	chunkStartSeq base.Seq
	lastSeq       base.Seq
	maxBufSize    int
	bufferedSize  int
	done          bool

	chunk    []Change
	chunkRng base.SeqRange
	err      error
}

type sourceItem struct {
	change Change
	ok     bool
	err    error
}

// NewChunkedChanges builds a chunker over src, which must yield changes
// with non-decreasing seq values drawn from [startSeq, lastSeq]. lastSeq
// is the terminal sequence number the caller expects the span to cover;
// it may exceed the last change actually present when the tail of the
// span has no-op gaps.
func NewChunkedChanges(src Source, startSeq, lastSeq base.Seq, maxBufSize int) *ChunkedChanges {
	return &ChunkedChanges{
		src:           src,
		chunkStartSeq: startSeq,
		lastSeq:       lastSeq,
		maxBufSize:    maxBufSize,
	}
}

// MaxBufSize returns the current byte budget.
func (cc *ChunkedChanges) MaxBufSize() int {
	return cc.maxBufSize
}

// SetMaxBufSize adjusts the byte budget for subsequent pulls.
func (cc *ChunkedChanges) SetMaxBufSize(size int) {
	cc.maxBufSize = size
}

// pull returns the lookahead item if one is buffered, else reads the
// source.
func (cc *ChunkedChanges) pull() (Change, bool, error) {
	if p := cc.peeked; p != nil {
		cc.peeked = nil
		return p.change, p.ok, p.err
	}
	return cc.src.Next()
}

// sourceExhausted peeks one item ahead and reports whether the source has
// cleanly run out. A buffered fault counts as "more items": it will be
// surfaced by the next pull.
func (cc *ChunkedChanges) sourceExhausted() bool {
	if cc.peeked == nil {
		c, ok, err := cc.src.Next()
		cc.peeked = &sourceItem{change: c, ok: ok, err: err}
	}
	return cc.peeked.err == nil && !cc.peeked.ok
}

// Next advances to the next chunk. It returns false when the sequence is
// complete or a source fault occurred; check Err to tell the two apart.
// Calling Next after it has returned false is safe and keeps returning
// false.
func (cc *ChunkedChanges) Next() bool {
	if cc.done || cc.err != nil {
		return false
	}

	// Pulls must begin with a drained accumulator; anything else is a
	// defect in this state machine, not bad input.
	if len(cc.changes) != 0 {
		panic("change: ChunkedChanges accumulator not drained at start of pull")
	}

	cc.bufferedSize = 0

	for {
		c, ok, err := cc.pull()
		if err != nil {
			// Terminal: unflushed changes for this pull are discarded.
			cc.err = err
			cc.done = true
			cc.changes = nil
			return false
		}
		if !ok {
			// Source exhausted; the remainder is a short, possibly
			// empty final chunk.
			break
		}

		cc.lastPushedSeq = c.Seq
		cc.bufferedSize += c.EstimatedByteSize()
		cc.changes = append(cc.changes, c)

		if cc.lastPushedSeq == cc.lastSeq {
			// Last seq of the whole stream, not just this chunk.
			break
		}

		if cc.bufferedSize >= cc.maxBufSize {
			if cc.sourceExhausted() {
				// Nothing follows; don't split, or the empty remainder
				// would be emitted as a spurious extra chunk.
				break
			}

			start := cc.chunkStartSeq
			cc.chunkStartSeq = cc.lastPushedSeq + 1

			cc.chunk = cc.changes
			cc.changes = nil
			cc.chunkRng = base.NewSeqRange(start, cc.lastPushedSeq)
			return true
		}
	}

	cc.done = true

	cc.chunk = cc.changes
	cc.changes = nil
	if cc.chunk == nil {
		cc.chunk = []Change{}
	}
	// Even when empty, this range is still accounted for.
	cc.chunkRng = base.NewSeqRange(cc.chunkStartSeq, cc.lastSeq)
	return true
}

// Chunk returns the changes and sequence range produced by the last
// successful Next.
func (cc *ChunkedChanges) Chunk() ([]Change, base.SeqRange) {
	return cc.chunk, cc.chunkRng
}

// Err returns the terminal source fault, if any.
func (cc *ChunkedChanges) Err() error {
	return cc.err
}
