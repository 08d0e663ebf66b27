package agent

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/siltlabs/silt/internal/base"
	"github.com/siltlabs/silt/internal/booked"
	"github.com/siltlabs/silt/internal/clock"
	"github.com/siltlabs/silt/internal/store"
	"github.com/siltlabs/silt/internal/testutil"
)

// createTestAgent wires an agent over a temp-dir store, a deterministic
// clock starting at 1000 (step 10), and an empty ledger.
func createTestAgent(t *testing.T) *Agent {
	t.Helper()

	s, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	siteID := base.NewSiteID()
	return New(
		siteID,
		testutil.NewStepClock(clock.Timestamp(1000), 10),
		s,
		booked.NewBooked(booked.NewBookedVersions(siteID)),
	)
}
