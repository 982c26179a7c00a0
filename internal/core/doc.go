// Package core reconciles parts catalog records against an existing
// relational catalog and persists the result in batches.
//
// The package has no transport or file-format dependencies. Readers in
// package importer produce [ProductRecord] values; package database
// provides the PostgreSQL [Session]; the CLI and the HTTP server drive a
// [Service].
//
// # Reconciliation
//
// Each record ends in one of three states:
//
//   - [StateNew]: no catalog entry has the record's part number. One
//     entry is inserted, no links.
//   - [StateDuplicateSkip]: an entry with the same part number and
//     manufacturer exists. Nothing is written.
//   - [StateAlternateLink]: the part number exists under other
//     manufacturers only. The record is inserted as an alternate entry
//     (tagged with a provenance marker) and linked from the primary, the
//     matching entry with the lowest key. A declared alternate part number
//     is then registered once more as an alternate of the new entry.
//
// Part numbers, descriptions and manufacturer codes are truncated to the
// store's column capacities with [Truncate] before any lookup or insert.
//
// # Batching
//
// [Persister] runs every record under a savepoint inside one transaction,
// commits after every [DefaultCommitEvery] successful records and once
// more after the last record. A failed record is rolled back to its
// savepoint, logged and skipped.
//
// # Error Handling
//
// Errors wrap one of [ErrResolution], [ErrInsert], [ErrConnection] or
// [ErrSession]. [MapError] turns them into coded user messages:
//
//   - DB001-DB008: catalog store errors
//   - IMP001-IMP007: import run errors
//   - FILE001-FILE006: source file errors
package core
