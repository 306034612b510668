package main

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"media-search-bot/internal/catalog"
	"media-search-bot/internal/mediatypes"
)

func TestPrintUsage(t *testing.T) {
	defer func() {
		if r := recover(); r != nil {
			t.Errorf("printUsage panicked: %v", r)
		}
	}()

	printUsage()
}

func TestSanitizeCommand(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"stats", "stats"},
		{"search", "search"},
		{"evil\ncmd", "evil_cmd"},
		{"rm -rf", "rm__rf"},
	}

	for _, tt := range tests {
		if got := sanitizeCommand(tt.in); got != tt.want {
			t.Errorf("sanitizeCommand(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func setupTestStore(t *testing.T) *catalog.Store {
	t.Helper()

	store, err := catalog.New(context.Background(), filepath.Join(t.TempDir(), "catalog.db"))
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

func TestShowStats(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	store := setupTestStore(t)

	if !showStats(context.Background(), store) {
		t.Error("showStats should succeed on an empty catalog")
	}
}

func TestRunSearch(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	store := setupTestStore(t)
	ctx := context.Background()

	rec := &catalog.MediaRecord{
		FileRef:   "r1",
		FileName:  "sunny morning.mp3",
		MessageID: 1,
		ChatID:    -100,
		Timestamp: time.Unix(1700000000, 0).UTC(),
		MediaType: mediatypes.MediaAudio,
	}
	if _, err := store.Upsert(ctx, rec); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	if !runSearch(ctx, store, []string{"-100", "sunny"}) {
		t.Error("runSearch should succeed")
	}
	if runSearch(ctx, store, []string{"notanumber", "sunny"}) {
		t.Error("runSearch should reject a non-numeric chat id")
	}
	if runSearch(ctx, store, []string{"-100"}) {
		t.Error("runSearch should reject missing keyword")
	}
}
