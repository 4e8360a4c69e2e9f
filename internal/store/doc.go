// Package store implements a durable, concurrency-safe registry of projects
// backed by a plain directory tree. A project owns metadata, a permission
// table, and the flow definitions of its most recently installed version.
//
// Responsibilities:
//
//   - Lifecycle: create, list, fetch, permission, and remove projects, with
//     per-operation capability checks.
//   - Upload: stage sources into a timestamped version directory, parse the
//     flow definitions, and commit the version only when it is clean or the
//     caller forces it.
//   - Durability: every metadata and flow write goes through a temp-file,
//     rename-aside, promote sequence, so a crash at any point leaves a
//     readable file under either the canonical name or its backup.
//   - Recovery: Open scans the tree, rebuilds all in-memory state, and
//     tolerates partially written or corrupt entries by logging and
//     skipping them.
//
// After Open, the in-memory registry is authoritative; disk is written,
// never re-read, except for configuration files served through the
// properties cache.
package store
