// Package base defines the identity and counter types shared by every
// layer of silt: per-writer database versions, intra-version sequence
// numbers, inclusive ranges over both, and the 16-byte site identity.
//
// These are deliberately thin newtypes over int64 / [16]byte so they can
// round-trip through database/sql without adapters, while keeping the
// three different counters in the system from being mixed up at compile
// time.
package base
