package change

import (
	"fmt"

	"github.com/siltlabs/silt/internal/base"
)

// Change is one column-level mutation event for one row, tagged with the
// writer that produced it, the writer's database version at the time of
// the write, and the intra-version sequence number.
//
// Changes are constructed by decoding one row of the store's
// change-capture output and are immutable afterwards.
type Change struct {
	Table      string
	PK         []byte
	Column     string
	Value      Value
	ColVersion int64
	DBVersion  base.DBVersion
	Seq        base.Seq
	SiteID     base.SiteID
	CL         int64
}

// EstimatedByteSize is an ESTIMATE: a rough idea of how many bytes the
// change will need on the wire. Consumers must treat budgets computed
// from it as approximate.
func (c *Change) EstimatedByteSize() int {
	return len(c.Table) + len(c.PK) + len(c.Column) + c.Value.EstimatedByteSize() +
		// col_version
		8 +
		// db_version
		8 +
		// seq
		8 +
		// site_id
		16 +
		// cl
		8 +
		// site_version occupies a fixed slot in the wire format even
		// though this struct does not carry it; peers budget against it
		8
}

// Scanner matches *sql.Row and *sql.Rows.
type Scanner interface {
	Scan(dest ...any) error
}

// ScanChange decodes one row of the change-capture output. The shape is
// fixed: nine positional columns in the order table, pk, column, value,
// col_version, db_version, seq, site_id, cl.
//
// Decode faults carry no version context; decoding happens before the
// version is known.
func ScanChange(row Scanner) (Change, error) {
	var c Change
	err := row.Scan(
		&c.Table,
		&c.PK,
		&c.Column,
		&c.Value,
		&c.ColVersion,
		&c.DBVersion,
		&c.Seq,
		&c.SiteID,
		&c.CL,
	)
	if err != nil {
		return Change{}, fmt.Errorf("scan change: %w", err)
	}
	return c, nil
}
