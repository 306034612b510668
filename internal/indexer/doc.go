// Package indexer turns chat messages into catalog records. It feeds
// from two sources with identical semantics: live updates as they
// arrive, and full history backfills that walk a chat from the top.
// Both paths are idempotent against the catalog's uniqueness
// constraint, so overlapping or repeated runs never duplicate records.
package indexer
