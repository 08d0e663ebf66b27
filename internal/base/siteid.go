package base

import (
	"database/sql/driver"
	"fmt"

	"github.com/google/uuid"
)

// SiteID is the stable 16-byte identity of the node that produced a
// version. It is a UUID under the hood and renders as one.
type SiteID [16]byte

// NewSiteID generates a fresh random site identity.
func NewSiteID() SiteID {
	return SiteID(uuid.New())
}

// ParseSiteID parses the canonical hyphenated UUID form.
func ParseSiteID(s string) (SiteID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return SiteID{}, fmt.Errorf("parse site id: %w", err)
	}
	return SiteID(u), nil
}

// SiteIDFromBytes builds a SiteID from a raw 16-byte slice.
func SiteIDFromBytes(b []byte) (SiteID, error) {
	u, err := uuid.FromBytes(b)
	if err != nil {
		return SiteID{}, fmt.Errorf("site id from bytes: %w", err)
	}
	return SiteID(u), nil
}

func (id SiteID) String() string {
	return uuid.UUID(id).String()
}

// Bytes returns the raw 16-byte form, as stored on disk and on the wire.
func (id SiteID) Bytes() []byte {
	b := make([]byte, 16)
	copy(b, id[:])
	return b
}

// IsZero reports whether the identity is the all-zero placeholder.
func (id SiteID) IsZero() bool {
	return id == SiteID{}
}

// Value implements driver.Valuer, storing the identity as a 16-byte BLOB.
func (id SiteID) Value() (driver.Value, error) {
	return id.Bytes(), nil
}

// Scan implements sql.Scanner for the 16-byte BLOB form.
func (id *SiteID) Scan(src any) error {
	b, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("scan site id: unexpected type %T", src)
	}
	parsed, err := SiteIDFromBytes(b)
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}
