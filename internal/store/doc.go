// Package store persists catalog records.
//
// Three implementations share one contract: a Postgres primary (pgx +
// goqu), a SQLite fallback (sqlx + mattn/go-sqlite3), and an in-memory
// store used as a last-resort cache and as a test double. Tiered combines a
// primary and a fallback with degrade-on-failure semantics; the two tiers
// are never reconciled.
package store
