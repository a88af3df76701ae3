// Package database provides SQLite connection management and schema
// migrations for the Lien Portal service.
//
// The wrapper opens the database with WAL mode and a busy timeout,
// restricts the connection pool to SQLite's single-writer model, and
// applies embedded SQL migrations at startup. Sessions and the cached
// county list are the two stores built on top of it.
package database
