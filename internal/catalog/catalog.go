package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite3 driver

	"media-search-bot/internal/logging"
	"media-search-bot/internal/metrics"
)

// Default timeout for catalog store operations
const defaultTimeout = 5 * time.Second

// Store is the catalog store adapter: durable keyed storage with
// full-text search over file names and a uniqueness constraint on
// (chat_id, message_id).
type Store struct {
	db     *sql.DB
	dbPath string
	mu     sync.RWMutex
}

// New opens (or creates) the catalog database at dbPath and ensures the
// schema, including the unique (chat_id, message_id) index and the
// full-text index over file_name. The parent directory must exist and
// be writable; use startup.LoadConfig to validate it first.
func New(ctx context.Context, dbPath string) (*Store, error) {
	logging.Info("Catalog database path: %s", dbPath)

	// WAL mode and busy_timeout keep concurrent live/backfill writers
	// from tripping over "database is locked" errors.
	connStr := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_cache_size=10000&_temp_store=MEMORY&_busy_timeout=5000", dbPath)

	db, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			logging.Error("failed to close database after ping failure: %v", closeErr)
		}
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(time.Hour)

	s := &Store{
		db:     db,
		dbPath: dbPath,
	}

	if err := s.initialize(ctx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			logging.Error("failed to close database after initialization failure: %v", closeErr)
		}
		return nil, fmt.Errorf("failed to initialize catalog schema: %w", err)
	}

	logging.Info("Catalog store initialized at %s", dbPath)
	return s, nil
}

func (s *Store) initialize(ctx context.Context) error {
	start := time.Now()
	var err error
	defer func() { recordQuery("initialize_schema", start, err) }()

	schema := `
	CREATE TABLE IF NOT EXISTS media_files (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		file_ref TEXT NOT NULL,
		file_name TEXT NOT NULL,
		message_id INTEGER NOT NULL,
		chat_id INTEGER NOT NULL,
		sender_id INTEGER NOT NULL DEFAULT 0,
		timestamp INTEGER NOT NULL,
		media_type TEXT NOT NULL,
		file_size INTEGER NOT NULL DEFAULT 0,
		duration INTEGER NOT NULL DEFAULT 0,
		indexed_at INTEGER NOT NULL DEFAULT (strftime('%s', 'now')),
		UNIQUE(chat_id, message_id)
	);

	CREATE INDEX IF NOT EXISTS idx_media_files_chat ON media_files(chat_id);
	CREATE INDEX IF NOT EXISTS idx_media_files_timestamp ON media_files(timestamp);
	CREATE INDEX IF NOT EXISTS idx_media_files_type ON media_files(media_type);

	-- Full-text search over file names
	CREATE VIRTUAL TABLE IF NOT EXISTS media_fts USING fts5(
		file_name,
		content='media_files',
		content_rowid='id',
		tokenize='trigram'
	);

	-- Records are immutable after insert, so only insert/delete triggers
	-- are needed to keep the FTS table in sync.
	CREATE TRIGGER IF NOT EXISTS media_files_ai AFTER INSERT ON media_files BEGIN
		INSERT INTO media_fts(rowid, file_name) VALUES (new.id, new.file_name);
	END;

	CREATE TRIGGER IF NOT EXISTS media_files_ad AFTER DELETE ON media_files BEGIN
		INSERT INTO media_fts(media_fts, rowid, file_name) VALUES('delete', old.id, old.file_name);
	END;
	`

	_, err = s.db.ExecContext(ctx, schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Upsert inserts a media record, reporting whether a new row was
// written. A pre-existing record for the same (chat_id, message_id) is
// a duplicate, not an error, so concurrent live and backfill writers
// can race on the same message safely; the unique constraint is the
// source of truth.
func (s *Store) Upsert(ctx context.Context, rec *MediaRecord) (bool, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("upsert", start, err) }()

	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	query := `
	INSERT INTO media_files (file_ref, file_name, message_id, chat_id, sender_id, timestamp, media_type, file_size, duration, indexed_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, strftime('%s', 'now'))
	ON CONFLICT(chat_id, message_id) DO NOTHING
	`

	result, err := s.db.ExecContext(ctx, query,
		rec.FileRef,
		rec.FileName,
		rec.MessageID,
		rec.ChatID,
		rec.SenderID,
		rec.Timestamp.Unix(),
		rec.MediaType,
		rec.FileSize,
		rec.Duration,
	)
	if err != nil {
		return false, fmt.Errorf("upsert failed: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("upsert result: %w", err)
	}

	return rows > 0, nil
}

// CalculateStats computes catalog statistics.
func (s *Store) CalculateStats(ctx context.Context) (Stats, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("calculate_stats", start, err) }()

	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var stats Stats
	var lastIndexed sql.NullInt64

	err = s.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE media_type = 'audio'),
			COUNT(*) FILTER (WHERE media_type = 'video'),
			COUNT(DISTINCT chat_id),
			MAX(indexed_at)
		FROM media_files
	`).Scan(&stats.TotalRecords, &stats.TotalAudio, &stats.TotalVideo, &stats.TotalChats, &lastIndexed)
	if err != nil {
		return Stats{}, fmt.Errorf("stats query failed: %w", err)
	}

	if lastIndexed.Valid {
		stats.LastIndexed = time.Unix(lastIndexed.Int64, 0)
	}

	return stats, nil
}

// UpdateDBMetrics updates database connection metrics
func (s *Store) UpdateDBMetrics() {
	stats := s.db.Stats()
	metrics.DBConnectionsOpen.Set(float64(stats.OpenConnections))
}

// recordQuery records catalog store query metrics
func recordQuery(operation string, start time.Time, err error) {
	duration := time.Since(start).Seconds()
	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.DBQueryTotal.WithLabelValues(operation, status).Inc()
	metrics.DBQueryDuration.WithLabelValues(operation).Observe(duration)
}
