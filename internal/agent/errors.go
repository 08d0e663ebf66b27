package agent

import (
	"fmt"

	"github.com/siltlabs/silt/internal/base"
)

// ChangeError wraps a store-originated fault with the local writer's
// identity and, where known, the db_version being processed. Faults are
// never retried here; they bubble to the caller with enough context to
// log or retry at a higher layer.
type ChangeError struct {
	// SiteID identifies the local writer.
	SiteID base.SiteID

	// Version is the db_version being processed, nil when the fault
	// happened before a version was known (peek, decode).
	Version *base.DBVersion

	// Err is the underlying store fault.
	Err error
}

// Error implements the error interface.
func (e *ChangeError) Error() string {
	if e.Version != nil {
		return fmt.Sprintf("change error (site=%s, version=%d): %v", e.SiteID, *e.Version, e.Err)
	}
	return fmt.Sprintf("change error (site=%s): %v", e.SiteID, e.Err)
}

// Unwrap exposes the underlying fault to errors.Is / errors.As.
func (e *ChangeError) Unwrap() error {
	return e.Err
}

// changeErr tags err with writer identity and no version context.
func changeErr(siteID base.SiteID, err error) *ChangeError {
	return &ChangeError{SiteID: siteID, Err: err}
}

// versionErr tags err with writer identity and the version in flight.
func versionErr(siteID base.SiteID, v base.DBVersion, err error) *ChangeError {
	return &ChangeError{SiteID: siteID, Version: &v, Err: err}
}
