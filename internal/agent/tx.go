package agent

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/siltlabs/silt/internal/store"
)

// CommitLocalTx runs one local write transaction end to end: fn records
// its mutations through the capture, the new version (if any) is
// registered into the ledger, the version counter advances, and the
// ledger snapshot becomes visible only after the transaction commits.
//
// Returns nil info when fn recorded nothing. The ledger write guard is
// held across registration, commit and apply, so snapshot readers never
// observe a half-registered version.
func (a *Agent) CommitLocalTx(ctx context.Context, fn func(*TxCapture) error) (*InsertChangesInfo, error) {
	tx, err := a.store.BeginTx(ctx)
	if err != nil {
		return nil, changeErr(a.siteID, err)
	}
	defer tx.Rollback()

	capture, err := BeginCapture(ctx, a, tx)
	if err != nil {
		return nil, err
	}

	if err := fn(capture); err != nil {
		return nil, fmt.Errorf("local tx: %w", err)
	}
	if err := capture.Flush(ctx); err != nil {
		return nil, err
	}

	guard := a.booked.Write()
	defer guard.Unlock()

	info, err := InsertLocalChanges(ctx, a, tx, guard)
	if err != nil {
		return nil, err
	}

	if info != nil {
		if err := store.AdvanceDBVersion(ctx, tx, a.siteID, info.DBVersion); err != nil {
			return nil, versionErr(a.siteID, info.DBVersion, err)
		}
	}

	if err := tx.Commit(); err != nil {
		if info != nil {
			return nil, versionErr(a.siteID, info.DBVersion, err)
		}
		return nil, changeErr(a.siteID, err)
	}

	if info != nil {
		guard.Apply(info.Snap)
		slog.Info("local changes committed",
			"db_version", info.DBVersion,
			"last_seq", info.LastSeq,
			"ts", info.TS)
	}

	return info, nil
}
