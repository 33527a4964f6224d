// Package database provides the PostgreSQL connection pool and the
// loader that imports flattened market and event tables.
//
// The loader is idempotent: rows are keyed by entity id and inserted
// with ON CONFLICT DO NOTHING, so reloading the same tables is safe.
package database
