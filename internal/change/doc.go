// Package change holds the atomic unit of replication - one column's
// value change for one row, tagged with writer identity, version and
// sequence - and the chunker that slices an ordered change log into
// byte-budgeted transmission units.
//
// # Chunking
//
// ChunkedChanges consumes an ordered, possibly-fallible source of changes
// covering a declared sequence span [startSeq, lastSeq] and emits chunks
// bounded by an estimated byte budget. Each chunk carries the exact
// SeqRange it accounts for, and the ranges of all chunks tile the span
// with no gaps and no overlaps - even when parts of the span have no
// change record at all. A receiving peer updates its gap tracking from
// the range, not from the record count, so exact tiling is a correctness
// requirement, not a nicety.
//
// Byte estimates are a planning heuristic for network budgeting, never an
// exact serialized size: the budget is a soft ceiling and a single change
// larger than the whole budget is still emitted as its own chunk.
package change
