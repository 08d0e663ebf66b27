package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/siltlabs/silt/internal/base"
	"github.com/siltlabs/silt/internal/change"
	"github.com/siltlabs/silt/internal/clock"
)

// PeekNextDBVersion returns the db_version the next local transaction
// will be (or, within an open capture transaction, was just) assigned.
// A peek, not a consumption: no side effect.
func PeekNextDBVersion(ctx context.Context, q DBTX, siteID base.SiteID) (base.DBVersion, error) {
	var last int64
	err := q.QueryRowContext(ctx, `
		SELECT COALESCE(
			(SELECT last_db_version FROM change_state WHERE site_id = ?), 0)
	`, siteID).Scan(&last)
	if err != nil {
		return 0, fmt.Errorf("peek next db_version: %w", err)
	}
	return base.DBVersion(last) + 1, nil
}

// AdvanceDBVersion records v as the last committed db_version for the
// site. Must run inside the capture transaction, after registration and
// before commit; the counter never moves backward.
func AdvanceDBVersion(ctx context.Context, q DBTX, siteID base.SiteID, v base.DBVersion) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO change_state (site_id, last_db_version)
		VALUES (?, ?)
		ON CONFLICT(site_id) DO UPDATE SET last_db_version = excluded.last_db_version
		WHERE excluded.last_db_version > last_db_version
	`, siteID, int64(v))
	if err != nil {
		return fmt.Errorf("advance db_version: %w", err)
	}
	return nil
}

// MaxSeqTS returns the maximum sequence number and maximum logical
// timestamp captured for (siteID, v). Either may be nil when no such
// value exists.
func MaxSeqTS(ctx context.Context, q DBTX, siteID base.SiteID, v base.DBVersion) (*base.Seq, *clock.Timestamp, error) {
	var seq, ts sql.NullInt64
	err := q.QueryRowContext(ctx, `
		SELECT MAX(seq), MAX(ts) FROM changes WHERE site_id = ? AND db_version = ?
	`, siteID, int64(v)).Scan(&seq, &ts)
	if err != nil {
		return nil, nil, fmt.Errorf("max seq/ts for version %d: %w", v, err)
	}

	var outSeq *base.Seq
	var outTS *clock.Timestamp
	if seq.Valid {
		s := base.Seq(seq.Int64)
		outSeq = &s
	}
	if ts.Valid {
		t := clock.Timestamp(ts.Int64)
		outTS = &t
	}
	return outSeq, outTS, nil
}

// WriteChanges appends captured change rows, all stamped with ts.
// Idempotent: replayed (site, version, seq) rows are silently ignored.
func WriteChanges(ctx context.Context, q DBTX, changes []change.Change, ts clock.Timestamp) error {
	for i := range changes {
		c := &changes[i]
		_, err := q.ExecContext(ctx, `
			INSERT INTO changes
			(tbl, pk, cid, val, col_version, db_version, seq, site_id, cl, ts)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(site_id, db_version, seq) DO NOTHING
		`,
			c.Table,
			c.PK,
			c.Column,
			c.Value,
			c.ColVersion,
			int64(c.DBVersion),
			int64(c.Seq),
			c.SiteID,
			c.CL,
			int64(ts),
		)
		if err != nil {
			return fmt.Errorf("write change seq %d: %w", c.Seq, err)
		}
	}
	return nil
}

// ChangesForVersion returns the ordered change rows for (siteID, v)
// restricted to seqs inside rng, as a source ready for chunking. The
// caller must Close the returned source.
func ChangesForVersion(ctx context.Context, q DBTX, siteID base.SiteID, v base.DBVersion, rng base.SeqRange) (*change.RowSource, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT tbl, pk, cid, val, col_version, db_version, seq, site_id, cl
		FROM changes
		WHERE site_id = ? AND db_version = ? AND seq BETWEEN ? AND ?
		ORDER BY seq ASC
	`, siteID, int64(v), int64(rng.Start), int64(rng.End))
	if err != nil {
		return nil, fmt.Errorf("query changes for version %d: %w", v, err)
	}
	return change.NewRowSource(rows), nil
}

// LocalSiteID returns this node's stable identity, or ok=false when the
// database has not been initialized with one yet.
func LocalSiteID(ctx context.Context, q DBTX) (base.SiteID, bool, error) {
	var id base.SiteID
	err := q.QueryRowContext(ctx, `SELECT site_id FROM site_info WHERE id = 1`).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return base.SiteID{}, false, nil
	}
	if err != nil {
		return base.SiteID{}, false, fmt.Errorf("local site id: %w", err)
	}
	return id, true, nil
}

// SetLocalSiteID stores the node identity. Refuses to overwrite a
// different existing identity.
func SetLocalSiteID(ctx context.Context, q DBTX, id base.SiteID) error {
	existing, ok, err := LocalSiteID(ctx, q)
	if err != nil {
		return err
	}
	if ok {
		if existing == id {
			return nil
		}
		return fmt.Errorf("site identity already set to %s", existing)
	}
	if _, err := q.ExecContext(ctx, `INSERT INTO site_info (id, site_id) VALUES (1, ?)`, id); err != nil {
		return fmt.Errorf("set local site id: %w", err)
	}
	return nil
}

// BookedRanges loads the persisted ledger rows for one site, ordered by
// start version.
func BookedRanges(ctx context.Context, q DBTX, siteID base.SiteID) ([]base.VersionRange, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT start_version, end_version
		FROM booked_versions
		WHERE site_id = ?
		ORDER BY start_version ASC
	`, siteID)
	if err != nil {
		return nil, fmt.Errorf("query booked versions: %w", err)
	}
	defer rows.Close()

	var out []base.VersionRange
	for rows.Next() {
		var start, end int64
		if err := rows.Scan(&start, &end); err != nil {
			return nil, fmt.Errorf("scan booked version range: %w", err)
		}
		out = append(out, base.VersionRange{Start: base.DBVersion(start), End: base.DBVersion(end)})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate booked versions: %w", err)
	}
	return out, nil
}
