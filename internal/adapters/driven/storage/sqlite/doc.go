// Package sqlite provides a SQLite-based implementation of driven port interfaces.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. One database file backs:
//
//   - RunStore: run records and the snapshots each run collected
//   - SchedulerStore: daemon task state and execution history
//
// # Schema
//
// The schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql
// files; applied versions are recorded in schema_migrations.
//
// # Data Location
//
// By default, the database is stored at ~/.wikistats/data/wikistats.db
//
// # Thread Safety
//
// All operations are thread-safe. The store relies on SQLite's WAL mode and
// a busy timeout so a daemon and a one-off CLI run can share the file.
package sqlite
