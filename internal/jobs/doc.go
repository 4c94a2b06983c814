// Package jobs persists conversion jobs in SQLite and exposes helpers for
// driving their lifecycle.
//
// One row tracks one source video. Terminal failures stay in the table so a
// video that failed its retry ceiling is not re-attempted every poll cycle;
// it becomes eligible again only when the source file's mtime changes. The
// database lives in the state directory and is transient operational state,
// not an archive: deleting it only costs failure memory.
//
// Schema changes bump the version in schema.go; the store refuses databases
// with a different version rather than migrating.
package jobs
