package base

import (
	"fmt"
	"strconv"
)

// Seq is an intra-version sequence number. Within one (site, db_version)
// pair, seq values are unique and the store yields them in non-decreasing
// order when queried by version.
type Seq int64

func (s Seq) String() string {
	return strconv.FormatInt(int64(s), 10)
}

// SeqRange is an inclusive span of sequence numbers within one version.
//
// It means "all sequence numbers in this span were considered", not "all
// sequence numbers in this span have a change record": a span may cover
// sequence numbers with no record at all, because the row's net effect at
// that sequence was empty.
type SeqRange struct {
	Start Seq
	End   Seq
}

// NewSeqRange returns the inclusive range [start, end].
func NewSeqRange(start, end Seq) SeqRange {
	return SeqRange{Start: start, End: end}
}

// Contains reports whether s falls inside the range.
func (r SeqRange) Contains(s Seq) bool {
	return s >= r.Start && s <= r.End
}

// Len returns the number of sequence numbers the range covers.
func (r SeqRange) Len() int64 {
	return int64(r.End) - int64(r.Start) + 1
}

func (r SeqRange) String() string {
	return fmt.Sprintf("[%d..%d]", r.Start, r.End)
}
