// Package catalog provides the SQLite-backed catalog store for indexed
// media records.
//
// It handles:
//   - Deduplicated inserts keyed by (chat_id, message_id); a conflicting
//     insert reports a duplicate instead of an error, which makes
//     ingestion idempotent under concurrent live and backfill writers
//   - Full-text search over file names (FTS5, trigram tokenizer) scoped
//     to a single chat, ordered most recent first
//   - Catalog statistics for health reporting and metrics
//
// The database uses WAL mode for improved concurrent read performance
// and includes automatic schema initialization.
package catalog
