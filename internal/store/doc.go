// Package store persists a model to SQLite.
//
// A save replaces the whole model in one transaction: constraints first,
// then schedules with their bindings, then the catalog fingerprint. Loading
// rebuilds the model in the saved creation order, so find-or-create scans a
// restored model exactly as it scanned the original.
//
// # Bounds
//
// Limits are nullable REAL columns. NULL is an open bound and is distinct
// from 0. The numeric type is NULL when unset.
//
// # Database Configuration
//
// Set through go-sqlite3 DSN parameters on every connection:
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait on lock contention
//   - foreign_keys=ON: Bindings reference existing constraints
//   - One open connection: SQLite allows a single writer
//
// A new database is stamped with PRAGMA user_version; Open refuses one
// written by a newer schema (ErrSchemaVersion).
package store
