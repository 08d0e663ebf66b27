// Package agent ties a node's identity, clock, store and version ledger
// together, and implements the local change registration path: after a
// local write transaction captures change rows, the agent determines the
// newly produced db_version's committed sequence extent and logical
// timestamp and registers it into the ledger exactly once.
//
// Registration runs under a ledger write guard held by the caller for
// the whole operation, so it is atomic with respect to concurrent
// snapshot readers. The registrar itself is read-only against the store:
// the write already happened before it runs, and retry policy belongs to
// the caller.
package agent
