package catalog

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"media-search-bot/internal/mediatypes"
)

// Integration tests against a real SQLite database.

// setupTestStore creates a catalog store backed by a temporary database.
func setupTestStore(t testing.TB) *Store {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")

	store, err := New(context.Background(), dbPath)
	if err != nil {
		t.Fatalf("Failed to create test store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("Failed to close test store: %v", err)
		}
	})

	return store
}

func testRecord(chatID, messageID int64, name string) *MediaRecord {
	return &MediaRecord{
		FileRef:   fmt.Sprintf("ref-%d-%d", chatID, messageID),
		FileName:  name,
		MessageID: messageID,
		ChatID:    chatID,
		SenderID:  1000,
		Timestamp: time.Unix(1700000000+messageID, 0).UTC(),
		MediaType: mediatypes.MediaAudio,
		FileSize:  2048,
		Duration:  180,
	}
}

func TestUpsertInsertsOnce(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	store := setupTestStore(t)
	ctx := context.Background()

	inserted, err := store.Upsert(ctx, testRecord(100, 5, "music.mp3"))
	if err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	if !inserted {
		t.Error("first Upsert should report inserted")
	}

	// Second attempt for the same key is a duplicate, not an error
	inserted, err = store.Upsert(ctx, testRecord(100, 5, "music.mp3"))
	if err != nil {
		t.Fatalf("duplicate Upsert returned error: %v", err)
	}
	if inserted {
		t.Error("duplicate Upsert should not report inserted")
	}

	count, err := store.CountMatching(ctx, "music", 100)
	if err != nil {
		t.Fatalf("CountMatching failed: %v", err)
	}
	if count != 1 {
		t.Errorf("expected exactly 1 record, got %d", count)
	}
}

func TestUpsertConcurrentSameKey(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	store := setupTestStore(t)
	ctx := context.Background()

	const callers = 16

	var wg sync.WaitGroup
	results := make(chan bool, callers)
	errs := make(chan error, callers)

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			inserted, err := store.Upsert(ctx, testRecord(100, 5, "race.mp3"))
			if err != nil {
				errs <- err
				return
			}
			results <- inserted
		}()
	}
	wg.Wait()
	close(results)
	close(errs)

	for err := range errs {
		t.Fatalf("concurrent Upsert returned error: %v", err)
	}

	insertedCount := 0
	for inserted := range results {
		if inserted {
			insertedCount++
		}
	}
	if insertedCount != 1 {
		t.Errorf("expected exactly one inserted outcome, got %d", insertedCount)
	}

	count, err := store.CountMatching(ctx, "race", 100)
	if err != nil {
		t.Fatalf("CountMatching failed: %v", err)
	}
	if count != 1 {
		t.Errorf("expected exactly 1 record after concurrent upserts, got %d", count)
	}
}

func TestUpsertSameMessageDifferentChats(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	store := setupTestStore(t)
	ctx := context.Background()

	for _, chatID := range []int64{100, 200, 300} {
		inserted, err := store.Upsert(ctx, testRecord(chatID, 5, "shared.mp3"))
		if err != nil {
			t.Fatalf("Upsert for chat %d failed: %v", chatID, err)
		}
		if !inserted {
			t.Errorf("Upsert for chat %d should insert: the key is (chat, message)", chatID)
		}
	}
}

func TestFindMatchingOrderAndScope(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	store := setupTestStore(t)
	ctx := context.Background()

	// Records in two chats; only chat 100 should be visible
	for i := int64(1); i <= 5; i++ {
		rec := testRecord(100, i, fmt.Sprintf("concert_%d.mp3", i))
		if _, err := store.Upsert(ctx, rec); err != nil {
			t.Fatalf("Upsert failed: %v", err)
		}
	}
	if _, err := store.Upsert(ctx, testRecord(999, 1, "concert_other.mp3")); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	records, err := store.FindMatching(ctx, "concert", 100, 0, 10)
	if err != nil {
		t.Fatalf("FindMatching failed: %v", err)
	}
	if len(records) != 5 {
		t.Fatalf("expected 5 records scoped to chat 100, got %d", len(records))
	}

	// Most recent first
	for i := 1; i < len(records); i++ {
		if records[i].Timestamp.After(records[i-1].Timestamp) {
			t.Errorf("records not ordered by timestamp descending: %v before %v",
				records[i-1].Timestamp, records[i].Timestamp)
		}
	}
}

func TestFindMatchingPagination(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	store := setupTestStore(t)
	ctx := context.Background()

	for i := int64(1); i <= 23; i++ {
		rec := testRecord(100, i, fmt.Sprintf("music_track_%02d.mp3", i))
		if _, err := store.Upsert(ctx, rec); err != nil {
			t.Fatalf("Upsert failed: %v", err)
		}
	}

	count, err := store.CountMatching(ctx, "music", 100)
	if err != nil {
		t.Fatalf("CountMatching failed: %v", err)
	}
	if count != 23 {
		t.Fatalf("expected 23 matches, got %d", count)
	}

	page1, err := store.FindMatching(ctx, "music", 100, 0, 10)
	if err != nil {
		t.Fatalf("FindMatching page 1 failed: %v", err)
	}
	if len(page1) != 10 {
		t.Errorf("page 1: expected 10 records, got %d", len(page1))
	}

	page3, err := store.FindMatching(ctx, "music", 100, 20, 10)
	if err != nil {
		t.Fatalf("FindMatching page 3 failed: %v", err)
	}
	if len(page3) != 3 {
		t.Errorf("page 3: expected 3 records, got %d", len(page3))
	}
}

func TestCountMatchingNoMatches(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	store := setupTestStore(t)
	ctx := context.Background()

	if _, err := store.Upsert(ctx, testRecord(100, 1, "holiday_video.mp4")); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	count, err := store.CountMatching(ctx, "nonexistent", 100)
	if err != nil {
		t.Fatalf("CountMatching failed: %v", err)
	}
	if count != 0 {
		t.Errorf("expected 0 matches, got %d", count)
	}

	// Empty keyword short-circuits
	count, err = store.CountMatching(ctx, "   ", 100)
	if err != nil {
		t.Fatalf("CountMatching with blank keyword failed: %v", err)
	}
	if count != 0 {
		t.Errorf("expected 0 matches for blank keyword, got %d", count)
	}
}

func TestCalculateStats(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	store := setupTestStore(t)
	ctx := context.Background()

	audio := testRecord(100, 1, "song.mp3")
	video := testRecord(100, 2, "clip.mp4")
	video.MediaType = mediatypes.MediaVideo
	other := testRecord(200, 1, "other.mp3")

	for _, rec := range []*MediaRecord{audio, video, other} {
		if _, err := store.Upsert(ctx, rec); err != nil {
			t.Fatalf("Upsert failed: %v", err)
		}
	}

	stats, err := store.CalculateStats(ctx)
	if err != nil {
		t.Fatalf("CalculateStats failed: %v", err)
	}

	if stats.TotalRecords != 3 {
		t.Errorf("TotalRecords = %d, want 3", stats.TotalRecords)
	}
	if stats.TotalAudio != 2 {
		t.Errorf("TotalAudio = %d, want 2", stats.TotalAudio)
	}
	if stats.TotalVideo != 1 {
		t.Errorf("TotalVideo = %d, want 1", stats.TotalVideo)
	}
	if stats.TotalChats != 2 {
		t.Errorf("TotalChats = %d, want 2", stats.TotalChats)
	}
	if stats.LastIndexed.IsZero() {
		t.Error("LastIndexed should be set")
	}
}
