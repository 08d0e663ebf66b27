package change

import "golang.org/x/text/unicode/norm"

// NormalizeIdent returns the NFC form of a table or column identifier.
//
// Writers must agree byte-for-byte on identifiers: both change identity
// and the byte estimate depend on them, and two nodes disagreeing on the
// encoding of the same logical name would double-track the column.
// Capture normalizes once so everything downstream can compare raw.
func NormalizeIdent(s string) string {
	if norm.NFC.IsNormalString(s) {
		return s
	}
	return norm.NFC.String(s)
}
