package agent

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/siltlabs/silt/internal/base"
	"github.com/siltlabs/silt/internal/booked"
	"github.com/siltlabs/silt/internal/change"
	"github.com/siltlabs/silt/internal/clock"
	"github.com/siltlabs/silt/internal/store"
)

func TestCommitLocalTx_RegistersAndAdvances(t *testing.T) {
	a := createTestAgent(t)
	ctx := context.Background()

	info, err := a.CommitLocalTx(ctx, func(c *TxCapture) error {
		c.Record("items", []byte{1}, "name", change.Text("widget"), 1, 1)
		c.Record("items", []byte{1}, "qty", change.Integer(4), 1, 1)
		return nil
	})
	require.NoError(t, err)
	require.NotNil(t, info)

	assert.Equal(t, base.DBVersion(1), info.DBVersion)
	assert.Equal(t, base.Seq(1), info.LastSeq)
	assert.Equal(t, clock.Timestamp(1000), info.TS)

	// The version counter moved past the committed version.
	next, err := store.PeekNextDBVersion(ctx, a.Store().DB(), a.SiteID())
	require.NoError(t, err)
	assert.Equal(t, base.DBVersion(2), next)

	// The registration is visible to ledger readers.
	a.Booked().Read(func(b *booked.BookedVersions) {
		assert.True(t, b.Contains(1))
	})
}

func TestCommitLocalTx_SequentialVersions(t *testing.T) {
	a := createTestAgent(t)
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		info, err := a.CommitLocalTx(ctx, func(c *TxCapture) error {
			c.Record("items", []byte{byte(i)}, "qty", change.Integer(int64(i)), 1, 1)
			return nil
		})
		require.NoError(t, err)
		require.NotNil(t, info)
		assert.Equal(t, base.DBVersion(i), info.DBVersion)
		assert.Equal(t, base.Seq(0), info.LastSeq)
	}

	ranges, err := store.BookedRanges(ctx, a.Store().DB(), a.SiteID())
	require.NoError(t, err)
	assert.Len(t, ranges, 3)
}

func TestCommitLocalTx_NoChangesNoVersion(t *testing.T) {
	a := createTestAgent(t)
	ctx := context.Background()

	info, err := a.CommitLocalTx(ctx, func(*TxCapture) error { return nil })
	require.NoError(t, err)
	assert.Nil(t, info)

	next, err := store.PeekNextDBVersion(ctx, a.Store().DB(), a.SiteID())
	require.NoError(t, err)
	assert.Equal(t, base.DBVersion(1), next, "version counter must not move")
}

func TestCommitLocalTx_CallbackErrorRollsBack(t *testing.T) {
	a := createTestAgent(t)
	ctx := context.Background()
	boom := errors.New("application error")

	_, err := a.CommitLocalTx(ctx, func(c *TxCapture) error {
		c.Record("items", []byte{1}, "name", change.Text("x"), 1, 1)
		return boom
	})
	require.ErrorIs(t, err, boom)

	var n int
	require.NoError(t, a.Store().DB().QueryRow(`SELECT COUNT(*) FROM changes`).Scan(&n))
	assert.Zero(t, n, "captured rows must roll back with the tx")
}

func TestCommitLocalTx_CaptureStampsCoherently(t *testing.T) {
	a := createTestAgent(t)
	ctx := context.Background()

	var seenVersion base.DBVersion
	_, err := a.CommitLocalTx(ctx, func(c *TxCapture) error {
		seenVersion = c.DBVersion()
		c.Record("café", []byte{1}, "name", change.Text("x"), 1, 1)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, base.DBVersion(1), seenVersion)

	// The captured row carries the NFC identifier and the tx stamp.
	src, err := store.ChangesForVersion(ctx, a.Store().DB(), a.SiteID(), 1, base.NewSeqRange(0, 10))
	require.NoError(t, err)
	defer src.Close()

	c, ok, err := src.Next()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "café", c.Table)
	assert.Equal(t, base.Seq(0), c.Seq)
	assert.Equal(t, a.SiteID(), c.SiteID)
}
