package change

import "database/sql"

// Source yields changes for one version in non-decreasing seq order.
//
// Next returns ok=false on exhaustion. A non-nil error is terminal; the
// caller must not call Next again after one.
type Source interface {
	Next() (c Change, ok bool, err error)
}

// RowSource adapts a *sql.Rows of change-capture rows into a Source.
// The caller keeps ownership of the rows and must Close them (Close here
// forwards for convenience).
type RowSource struct {
	rows *sql.Rows
}

// NewRowSource wraps rows whose columns match the nine-column capture
// shape expected by ScanChange.
func NewRowSource(rows *sql.Rows) *RowSource {
	return &RowSource{rows: rows}
}

// Next advances to the next change row.
func (s *RowSource) Next() (Change, bool, error) {
	if !s.rows.Next() {
		if err := s.rows.Err(); err != nil {
			return Change{}, false, err
		}
		return Change{}, false, nil
	}
	c, err := ScanChange(s.rows)
	if err != nil {
		return Change{}, false, err
	}
	return c, true, nil
}

// Close releases the underlying rows.
func (s *RowSource) Close() error {
	return s.rows.Close()
}
