package base

import (
	"fmt"
	"strconv"
)

// DBVersion is a per-writer monotonically increasing counter identifying
// one logical local transaction's net effect.
type DBVersion int64

func (v DBVersion) String() string {
	return strconv.FormatInt(int64(v), 10)
}

// VersionRange is an inclusive span of db_versions for one writer.
type VersionRange struct {
	Start DBVersion
	End   DBVersion
}

// SingleVersion returns the one-element range [v, v].
func SingleVersion(v DBVersion) VersionRange {
	return VersionRange{Start: v, End: v}
}

// Contains reports whether v falls inside the range.
func (r VersionRange) Contains(v DBVersion) bool {
	return v >= r.Start && v <= r.End
}

func (r VersionRange) String() string {
	return fmt.Sprintf("[%d..%d]", r.Start, r.End)
}
