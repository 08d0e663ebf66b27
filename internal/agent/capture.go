package agent

import (
	"context"
	"database/sql"

	"github.com/siltlabs/silt/internal/base"
	"github.com/siltlabs/silt/internal/change"
	"github.com/siltlabs/silt/internal/clock"
	"github.com/siltlabs/silt/internal/store"
)

// TxCapture stamps the change rows of one local write transaction: every
// recorded mutation gets the transaction's provisional db_version, the
// next intra-version sequence number, the writer's identity and one
// shared logical timestamp.
//
// Single-threaded, like the transaction it belongs to.
type TxCapture struct {
	agent     *Agent
	tx        *sql.Tx
	dbVersion base.DBVersion
	nextSeq   base.Seq
	ts        clock.Timestamp
	pending   []change.Change
}

// BeginCapture prepares capture for an open write transaction. The
// provisional db_version is the store's peek; sequence numbering resumes
// after any rows already captured for it in this transaction.
func BeginCapture(ctx context.Context, a *Agent, tx *sql.Tx) (*TxCapture, error) {
	siteID := a.SiteID()

	dbVersion, err := store.PeekNextDBVersion(ctx, tx, siteID)
	if err != nil {
		return nil, changeErr(siteID, err)
	}

	lastSeq, _, err := store.MaxSeqTS(ctx, tx, siteID, dbVersion)
	if err != nil {
		return nil, versionErr(siteID, dbVersion, err)
	}

	nextSeq := base.Seq(0)
	if lastSeq != nil {
		nextSeq = *lastSeq + 1
	}

	return &TxCapture{
		agent:     a,
		tx:        tx,
		dbVersion: dbVersion,
		nextSeq:   nextSeq,
		ts:        a.Clock().Now(),
	}, nil
}

// DBVersion returns the provisional version this transaction's changes
// carry.
func (c *TxCapture) DBVersion() base.DBVersion {
	return c.dbVersion
}

// Record captures one column-level mutation. Identifiers are NFC
// normalized so all writers agree on their bytes.
func (c *TxCapture) Record(table string, pk []byte, column string, val change.Value, colVersion, cl int64) {
	c.pending = append(c.pending, change.Change{
		Table:      change.NormalizeIdent(table),
		PK:         pk,
		Column:     change.NormalizeIdent(column),
		Value:      val,
		ColVersion: colVersion,
		DBVersion:  c.dbVersion,
		Seq:        c.nextSeq,
		SiteID:     c.agent.SiteID(),
		CL:         cl,
	})
	c.nextSeq++
}

// Flush writes the pending rows into the capture log within the
// transaction. Safe to call more than once; each call drains what
// accumulated since the last.
func (c *TxCapture) Flush(ctx context.Context) error {
	if len(c.pending) == 0 {
		return nil
	}
	if err := store.WriteChanges(ctx, c.tx, c.pending, c.ts); err != nil {
		return versionErr(c.agent.SiteID(), c.dbVersion, err)
	}
	c.pending = nil
	return nil
}
