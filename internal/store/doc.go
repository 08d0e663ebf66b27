// Package store provides the SQLite-backed change-capture store.
//
// It emulates the read contract of a row-store change-data-capture
// extension: every local write transaction leaves per-column change rows
// in the changes table, stamped with the writer's site_id, the database
// version provisionally assigned to the transaction, an intra-version
// seq, and a logical timestamp.
//
// # Tables
//
//   - changes: the capture log, one row per (site, version, seq)
//   - change_state: per-site last committed db_version; Peek reads it + 1
//   - booked_versions: the persisted per-actor version ledger
//   - site_info: this node's stable identity
//
// # Version assignment
//
// A transaction's db_version is provisional until commit: capture stamps
// rows with PeekNextDBVersion's value, the registrar reads the same value
// inside the same transaction, and AdvanceDBVersion moves the counter as
// the final statement before commit. Peek is therefore read-consistent
// with the just-committed write exactly when the caller follows that
// order, which agent.CommitLocalTx does.
//
// # Database configuration
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL: balance durability/performance
//   - busy_timeout=5000: wait for locks up to 5 seconds
//   - foreign_keys=ON: enforce referential integrity
package store
