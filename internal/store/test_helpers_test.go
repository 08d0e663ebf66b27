package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/siltlabs/silt/internal/base"
	"github.com/siltlabs/silt/internal/change"
	"github.com/siltlabs/silt/internal/clock"
)

// createTestStore creates a store backed by a temp-dir database.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestChange builds a change row with minimal required fields.
func createTestChange(site base.SiteID, v base.DBVersion, seq base.Seq, col string, val change.Value) change.Change {
	return change.Change{
		Table:      "items",
		PK:         []byte{0x01},
		Column:     col,
		Value:      val,
		ColVersion: 1,
		DBVersion:  v,
		Seq:        seq,
		SiteID:     site,
		CL:         1,
	}
}

// mustWriteChanges fails the test on write error.
func mustWriteChanges(t *testing.T, s *Store, changes []change.Change, ts clock.Timestamp) {
	t.Helper()
	if err := WriteChanges(context.Background(), s.DB(), changes, ts); err != nil {
		t.Fatalf("WriteChanges() failed: %v", err)
	}
}
