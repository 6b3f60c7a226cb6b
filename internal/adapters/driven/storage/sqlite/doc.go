// Package sqlite stores documents, chunk embeddings and session snapshots
// in a single local SQLite database.
//
// The adapter uses modernc.org/sqlite, a pure Go SQLite implementation that
// requires no CGO. One database connection serves three driven ports:
//
//   - ObjectStore: uploaded document bytes keyed by store key
//   - VectorIndex: named collections of chunk embeddings with brute-force
//     cosine search
//   - SessionArchive: saved session snapshots
//
// # Schema
//
// The schema is managed through versioned migrations in the migrations/
// directory. Each migration is a pair of .up.sql and .down.sql files.
//
// # Data Location
//
// By default, the database is stored at ~/.medichat/data/medichat.db
//
// # Thread Safety
//
// All operations are safe for concurrent use. SQLite in WAL mode provides
// the locking.
package sqlite
