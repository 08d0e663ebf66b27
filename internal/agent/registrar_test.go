package agent

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/siltlabs/silt/internal/base"
	"github.com/siltlabs/silt/internal/change"
	"github.com/siltlabs/silt/internal/clock"
	"github.com/siltlabs/silt/internal/store"
)

func TestInsertLocalChanges_NoLocalChange(t *testing.T) {
	a := createTestAgent(t)
	ctx := context.Background()

	guard := a.Booked().Write()
	defer guard.Unlock()

	info, err := InsertLocalChanges(ctx, a, a.Store().DB(), guard)
	require.NoError(t, err)
	assert.Nil(t, info)

	// No ledger mutation either.
	ranges, err := store.BookedRanges(ctx, a.Store().DB(), a.SiteID())
	require.NoError(t, err)
	assert.Empty(t, ranges)
}

func TestInsertLocalChanges_RegistersNewVersion(t *testing.T) {
	a := createTestAgent(t)
	ctx := context.Background()

	rows := []change.Change{
		{Table: "items", PK: []byte{1}, Column: "name", Value: change.Text("widget"),
			ColVersion: 1, DBVersion: 1, Seq: 0, SiteID: a.SiteID(), CL: 1},
		{Table: "items", PK: []byte{1}, Column: "qty", Value: change.Integer(4),
			ColVersion: 1, DBVersion: 1, Seq: 1, SiteID: a.SiteID(), CL: 1},
	}
	require.NoError(t, store.WriteChanges(ctx, a.Store().DB(), rows, clock.Timestamp(777)))

	guard := a.Booked().Write()
	defer guard.Unlock()

	info, err := InsertLocalChanges(ctx, a, a.Store().DB(), guard)
	require.NoError(t, err)
	require.NotNil(t, info)

	assert.Equal(t, base.DBVersion(1), info.DBVersion)
	assert.Equal(t, base.Seq(1), info.LastSeq)
	assert.Equal(t, clock.Timestamp(777), info.TS)
	assert.True(t, info.Snap.Contains(1))

	// The registration is persisted, but invisible to readers of the
	// shared ledger until the snapshot is applied.
	ranges, err := store.BookedRanges(ctx, a.Store().DB(), a.SiteID())
	require.NoError(t, err)
	assert.Equal(t, []base.VersionRange{{Start: 1, End: 1}}, ranges)
	assert.False(t, guard.Versions().Contains(1))

	guard.Apply(info.Snap)
	assert.True(t, guard.Versions().Contains(1))
}

func TestInsertLocalChanges_MissingTimestampFallback(t *testing.T) {
	a := createTestAgent(t)
	ctx := context.Background()

	// A captured row with no ts: the degraded capture path.
	_, err := a.Store().DB().ExecContext(ctx, `
		INSERT INTO changes (tbl, pk, cid, val, col_version, db_version, seq, site_id, cl, ts)
		VALUES ('items', x'01', 'name', 'x', 1, 1, 3, ?, 1, NULL)
	`, a.SiteID())
	require.NoError(t, err)

	guard := a.Booked().Write()
	defer guard.Unlock()

	info, err := InsertLocalChanges(ctx, a, a.Store().DB(), guard)
	require.NoError(t, err)
	require.NotNil(t, info)

	assert.Equal(t, base.Seq(3), info.LastSeq)
	// Minted from the node clock: the test agent's clock starts at 1000.
	assert.Equal(t, clock.Timestamp(1000), info.TS)
}

func TestInsertLocalChanges_TimestampWithoutSeqSkips(t *testing.T) {
	a := createTestAgent(t)
	ctx := context.Background()

	// Reproduce the store-side oddity with a permissive shadow of the
	// changes table: a ts recorded with no corresponding seq.
	_, err := a.Store().DB().ExecContext(ctx, `DROP TABLE changes`)
	require.NoError(t, err)
	_, err = a.Store().DB().ExecContext(ctx, `
		CREATE TABLE changes (
			tbl TEXT, pk BLOB, cid TEXT, val,
			col_version INTEGER, db_version INTEGER, seq INTEGER,
			site_id BLOB, cl INTEGER, ts INTEGER
		)
	`)
	require.NoError(t, err)
	_, err = a.Store().DB().ExecContext(ctx, `
		INSERT INTO changes (tbl, pk, cid, val, col_version, db_version, seq, site_id, cl, ts)
		VALUES ('items', x'01', 'name', 'x', 1, 1, NULL, ?, 1, 555)
	`, a.SiteID())
	require.NoError(t, err)

	guard := a.Booked().Write()
	defer guard.Unlock()

	info, err := InsertLocalChanges(ctx, a, a.Store().DB(), guard)
	require.NoError(t, err)
	assert.Nil(t, info)

	// Nothing was registered.
	ranges, err := store.BookedRanges(ctx, a.Store().DB(), a.SiteID())
	require.NoError(t, err)
	assert.Empty(t, ranges)
}

func TestInsertLocalChanges_FaultCarriesSiteID(t *testing.T) {
	a := createTestAgent(t)
	ctx := context.Background()

	// Break the store so the peek fails.
	_, err := a.Store().DB().ExecContext(ctx, `DROP TABLE change_state`)
	require.NoError(t, err)

	guard := a.Booked().Write()
	defer guard.Unlock()

	_, err = InsertLocalChanges(ctx, a, a.Store().DB(), guard)
	require.Error(t, err)

	var ce *ChangeError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, a.SiteID(), ce.SiteID)
	assert.Nil(t, ce.Version)
}

func TestChangeError_Formatting(t *testing.T) {
	site := base.NewSiteID()
	inner := errors.New("boom")

	bare := changeErr(site, inner)
	assert.Contains(t, bare.Error(), site.String())
	assert.ErrorIs(t, bare, inner)

	tagged := versionErr(site, 7, inner)
	assert.Contains(t, tagged.Error(), "version=7")
	assert.ErrorIs(t, tagged, inner)
}
