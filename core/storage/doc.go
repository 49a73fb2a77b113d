// Package storage provides the object-storage client for the sync-report
// archive.
//
// Every sync run produces one JSON report (the full SyncOutcome with
// per-group error details) which is archived best-effort under
// reports/<sync-type>/<run-id>.json. Archival failures are logged and never
// fail the run; the SyncEvent row in the database remains the durable
// record.
//
// The Client interface wraps the Minio SDK so tests can substitute the mock
// in storage/mocks.
package storage
