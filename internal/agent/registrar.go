package agent

import (
	"context"
	"log/slog"

	"github.com/siltlabs/silt/internal/base"
	"github.com/siltlabs/silt/internal/booked"
	"github.com/siltlabs/silt/internal/clock"
	"github.com/siltlabs/silt/internal/store"
)

// InsertChangesInfo describes a registered local version: the db_version,
// its last captured sequence number, its logical timestamp, and the
// ledger snapshot reflecting the registration. The caller applies the
// snapshot through its write guard once the surrounding transaction has
// committed.
type InsertChangesInfo struct {
	DBVersion base.DBVersion
	LastSeq   base.Seq
	TS        clock.Timestamp
	Snap      *booked.VersionsSnapshot
}

// InsertLocalChanges detects whether the just-committed local write
// produced a new version and, if so, registers it into the ledger.
//
// tx is the transactional scope of the preceding write; the guard is the
// caller's proof of exclusive ledger access, held for the whole call.
// Returns nil info when no local change occurred. Issues only read
// queries against the store; the single mutation is the ledger insert
// through the snapshot.
func InsertLocalChanges(ctx context.Context, a *Agent, tx store.DBTX, guard *booked.WriteGuard) (*InsertChangesInfo, error) {
	siteID := a.SiteID()

	dbVersion, err := store.PeekNextDBVersion(ctx, tx, siteID)
	if err != nil {
		return nil, changeErr(siteID, err)
	}

	lastSeq, ts, err := store.MaxSeqTS(ctx, tx, siteID, dbVersion)
	if err != nil {
		return nil, changeErr(siteID, err)
	}

	switch {
	case lastSeq == nil && ts == nil:
		// No local change occurred.
		return nil, nil

	case lastSeq == nil:
		// A timestamp with no sequenced change is a store-side oddity;
		// skip it rather than registering a version with no extent.
		slog.Warn("found db_version without seq, skipping",
			"db_version", dbVersion,
			"ts", *ts)
		return nil, nil
	}

	stamp := clock.Timestamp(0)
	if ts != nil {
		stamp = *ts
	} else {
		slog.Warn("found db_version without ts, minting one",
			"db_version", dbVersion,
			"last_seq", *lastSeq)
		stamp = a.Clock().Now()
	}

	slog.Debug("registering local db_version",
		"db_version", dbVersion,
		"last_seq", *lastSeq,
		"ts", stamp)

	snap := guard.Versions().Snapshot()
	if err := snap.InsertDB(ctx, tx, []base.VersionRange{base.SingleVersion(dbVersion)}); err != nil {
		return nil, versionErr(siteID, dbVersion, err)
	}

	return &InsertChangesInfo{
		DBVersion: dbVersion,
		LastSeq:   *lastSeq,
		TS:        stamp,
		Snap:      snap,
	}, nil
}
