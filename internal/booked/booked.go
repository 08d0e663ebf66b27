// Package booked tracks which db_version extents are committed and
// durably captured for an actor - the version ledger consulted by sync
// and registration.
//
// The committed set is a 64-bit roaring bitmap, so arbitrary version
// ranges stay cheap to insert, query and clone. Mutation goes through an
// explicit write guard: holders of a WriteGuard have proof of exclusive
// access for the whole critical section, and registration stays atomic
// with respect to concurrent snapshot readers.
package booked

import (
	"context"
	"fmt"
	"sync"

	"github.com/RoaringBitmap/roaring/roaring64"

	"github.com/siltlabs/silt/internal/base"
	"github.com/siltlabs/silt/internal/store"
)

// BookedVersions is the per-actor ledger state: the set of committed
// db_versions for one site.
//
// Not safe for concurrent use on its own; access is mediated by Booked.
type BookedVersions struct {
	siteID    base.SiteID
	committed *roaring64.Bitmap
}

// NewBookedVersions returns an empty ledger for the given site.
func NewBookedVersions(siteID base.SiteID) *BookedVersions {
	return &BookedVersions{
		siteID:    siteID,
		committed: roaring64.New(),
	}
}

// Load rebuilds the ledger from its persisted rows.
func Load(ctx context.Context, q store.DBTX, siteID base.SiteID) (*BookedVersions, error) {
	b := NewBookedVersions(siteID)
	ranges, err := store.BookedRanges(ctx, q, siteID)
	if err != nil {
		return nil, fmt.Errorf("load booked versions: %w", err)
	}
	for _, r := range ranges {
		b.committed.AddRange(uint64(r.Start), uint64(r.End)+1)
	}
	return b, nil
}

// SiteID returns the actor this ledger belongs to.
func (b *BookedVersions) SiteID() base.SiteID {
	return b.siteID
}

// Contains reports whether v is committed.
func (b *BookedVersions) Contains(v base.DBVersion) bool {
	return b.committed.Contains(uint64(v))
}

// Last returns the highest committed version, or zero when none exist.
func (b *BookedVersions) Last() base.DBVersion {
	if b.committed.IsEmpty() {
		return 0
	}
	return base.DBVersion(b.committed.Maximum())
}

// Ranges returns the committed set as coalesced inclusive ranges, in
// ascending order.
func (b *BookedVersions) Ranges() []base.VersionRange {
	return bitmapRanges(b.committed)
}

// Snapshot clones the ledger state into a mutable view. Insertions into
// the snapshot are invisible to the parent until a write-guard holder
// applies it back.
func (b *BookedVersions) Snapshot() *VersionsSnapshot {
	return &VersionsSnapshot{
		siteID:    b.siteID,
		committed: b.committed.Clone(),
	}
}

// VersionsSnapshot is a mutable view of the ledger, detached from the
// shared state. It carries both the in-memory set and responsibility for
// persisting what gets inserted into it.
type VersionsSnapshot struct {
	siteID    base.SiteID
	committed *roaring64.Bitmap
}

// InsertDB registers version ranges as committed: persists them through q
// (the caller's transaction scope) and adds them to the snapshot's set.
// Fallible the same way any store query is.
func (s *VersionsSnapshot) InsertDB(ctx context.Context, q store.DBTX, ranges []base.VersionRange) error {
	for _, r := range ranges {
		_, err := q.ExecContext(ctx, `
			INSERT INTO booked_versions (site_id, start_version, end_version)
			VALUES (?, ?, ?)
			ON CONFLICT(site_id, start_version, end_version) DO NOTHING
		`, s.siteID, int64(r.Start), int64(r.End))
		if err != nil {
			return fmt.Errorf("insert booked versions %s: %w", r, err)
		}
		s.committed.AddRange(uint64(r.Start), uint64(r.End)+1)
	}
	return nil
}

// Contains reports whether v is committed in this snapshot.
func (s *VersionsSnapshot) Contains(v base.DBVersion) bool {
	return s.committed.Contains(uint64(v))
}

// Ranges returns the snapshot's committed set as coalesced ranges.
func (s *VersionsSnapshot) Ranges() []base.VersionRange {
	return bitmapRanges(s.committed)
}

func bitmapRanges(bm *roaring64.Bitmap) []base.VersionRange {
	var out []base.VersionRange
	it := bm.Iterator()
	for it.HasNext() {
		v := it.Next()
		if n := len(out); n > 0 && uint64(out[n-1].End)+1 == v {
			out[n-1].End = base.DBVersion(v)
			continue
		}
		out = append(out, base.VersionRange{Start: base.DBVersion(v), End: base.DBVersion(v)})
	}
	return out
}

// Booked owns the shared ledger and serializes access to it: any number
// of concurrent readers, one writer at a time.
type Booked struct {
	mu       sync.RWMutex
	versions *BookedVersions
}

// NewBooked wraps ledger state for shared use.
func NewBooked(versions *BookedVersions) *Booked {
	return &Booked{versions: versions}
}

// Read runs fn with shared read access to the ledger. fn must not retain
// the value past its return.
func (b *Booked) Read(fn func(*BookedVersions)) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	fn(b.versions)
}

// Write acquires exclusive access and returns the guard as proof of it.
// The caller holds the guard across the whole registration - possibly
// batching several mutations under one critical section - and must
// Unlock it when done.
func (b *Booked) Write() *WriteGuard {
	b.mu.Lock()
	return &WriteGuard{b: b}
}

// WriteGuard is the capability object representing exclusive write access
// to the ledger. Functions that mutate the ledger take one instead of
// locking themselves.
type WriteGuard struct {
	b        *Booked
	released bool
}

// Versions returns the guarded ledger state.
func (g *WriteGuard) Versions() *BookedVersions {
	if g.released {
		panic("booked: use of released write guard")
	}
	return g.b.versions
}

// Apply replaces the shared committed set with the snapshot's, making a
// registration visible to readers. Call only after the transaction that
// persisted the snapshot has committed.
func (g *WriteGuard) Apply(s *VersionsSnapshot) {
	if g.released {
		panic("booked: use of released write guard")
	}
	g.b.versions.committed = s.committed
}

// Unlock releases exclusive access. Safe to call once only.
func (g *WriteGuard) Unlock() {
	if g.released {
		panic("booked: write guard released twice")
	}
	g.released = true
	g.b.mu.Unlock()
}
