// Package repositories implements SQLite persistence for replay run history.
//
// Repositories handle CRUD operations with atomic sequence generation for human-readable ordering.
// Records are soft deleted via deleted_at timestamps and excluded from queries by default.
//
// Key Implementations:
//   - [RunRepository] : Replay run persistence with status and operation filters
//   - [RunRecorder] : Records a replay's state transitions as it runs
//
// Sequence numbers provide stable, human-readable ordering (e.g., run #42) independent of UUIDs and creation timestamps.
// The [NextSequence] function atomically increments per-table sequence counters in dedicated sequence tables.
package repositories
