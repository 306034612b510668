package catalog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"media-search-bot/internal/logging"
)

// CountMatching returns the number of catalog records in chatID whose
// file name matches keyword.
func (s *Store) CountMatching(ctx context.Context, keyword string, chatID int64) (int, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("count_matching", start, err) }()

	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return 0, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var count int
	err = s.db.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM media_files f
		INNER JOIN media_fts fts ON f.id = fts.rowid
		WHERE media_fts MATCH ? AND f.chat_id = ?
	`, prepareSearchTerm(keyword), chatID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count query failed: %w", err)
	}

	return count, nil
}

// FindMatching returns a page of catalog records in chatID whose file
// name matches keyword, most recent first (timestamp descending). The
// count and fetch are separate statements with no transaction spanning
// them; a page rendered from them is a best-effort snapshot.
func (s *Store) FindMatching(ctx context.Context, keyword string, chatID int64, offset, limit int) ([]MediaRecord, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("find_matching", start, err) }()

	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return nil, nil
	}
	if limit < 1 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, `
		SELECT f.id, f.file_ref, f.file_name, f.message_id, f.chat_id, f.sender_id,
		       f.timestamp, f.media_type, f.file_size, f.duration, f.indexed_at
		FROM media_files f
		INNER JOIN media_fts fts ON f.id = fts.rowid
		WHERE media_fts MATCH ? AND f.chat_id = ?
		ORDER BY f.timestamp DESC, f.message_id DESC
		LIMIT ? OFFSET ?
	`, prepareSearchTerm(keyword), chatID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("select query failed: %w", err)
	}
	defer rows.Close()

	var records []MediaRecord
	for rows.Next() {
		var rec MediaRecord
		var timestamp, indexedAt int64

		if err = rows.Scan(
			&rec.ID, &rec.FileRef, &rec.FileName, &rec.MessageID, &rec.ChatID,
			&rec.SenderID, &timestamp, &rec.MediaType, &rec.FileSize,
			&rec.Duration, &indexedAt,
		); err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}

		rec.Timestamp = time.Unix(timestamp, 0).UTC()
		rec.IndexedAt = time.Unix(indexedAt, 0).UTC()
		records = append(records, rec)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	logging.Debug("FindMatching(%q, chat=%d, offset=%d, limit=%d) -> %d records in %v",
		keyword, chatID, offset, limit, len(records), time.Since(start))

	return records, nil
}

// prepareSearchTerm turns a raw keyword into an FTS5 phrase query.
func prepareSearchTerm(query string) string {
	query = strings.TrimSpace(query)

	// Escape quotes
	query = strings.ReplaceAll(query, `"`, `""`)

	// Wrap in quotes for phrase matching with trigram
	return `"` + query + `"`
}
