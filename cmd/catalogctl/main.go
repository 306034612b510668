package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"media-search-bot/internal/catalog"
)

// Default database directory path
const defaultDatabaseDir = "/database"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]

	// Create a context that cancels on interrupt signals
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Fprintln(os.Stderr, "\nInterrupted, shutting down...")
		cancel()
	}()

	// Get database directory from env or default
	databaseDir := os.Getenv("DATABASE_DIR")
	if databaseDir == "" {
		databaseDir = defaultDatabaseDir
	}
	dbPath := filepath.Join(databaseDir, "catalog.db")

	store, err := catalog.New(ctx, dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: Failed to open catalog: %v\n", err)
		fmt.Fprintf(os.Stderr, "Make sure DATABASE_DIR is set correctly (current: %s)\n", databaseDir)
		os.Exit(1)
	}
	defer func() {
		if err := store.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to close catalog: %v\n", err)
		}
	}()

	switch command {
	case "stats":
		if !showStats(ctx, store) {
			os.Exit(1)
		}
	case "search":
		if !runSearch(ctx, store, os.Args[2:]) {
			os.Exit(1)
		}
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", sanitizeCommand(command))
		printUsage()
		os.Exit(1)
	}
}

// sanitizeCommand returns a safe representation of a command string for
// display. It uses an allowlist approach, replacing any character that
// is not alphanumeric, a hyphen, or an underscore with '_'.
func sanitizeCommand(cmd string) string {
	var b strings.Builder
	b.Grow(len(cmd))
	for _, r := range cmd {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	return b.String()
}

func showStats(ctx context.Context, store *catalog.Store) bool {
	stats, err := store.CalculateStats(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: Failed to read catalog stats: %v\n", err)
		return false
	}

	fmt.Println("Catalog statistics:")
	fmt.Printf("  Total records: %d\n", stats.TotalRecords)
	fmt.Printf("  Audio:         %d\n", stats.TotalAudio)
	fmt.Printf("  Video:         %d\n", stats.TotalVideo)
	fmt.Printf("  Chats:         %d\n", stats.TotalChats)
	if !stats.LastIndexed.IsZero() {
		fmt.Printf("  Last indexed:  %s\n", stats.LastIndexed.Format("2006-01-02 15:04:05 MST"))
	}
	return true
}

func runSearch(ctx context.Context, store *catalog.Store, args []string) bool {
	if len(args) < 2 {
		fmt.Fprintln(os.Stderr, "Usage: catalogctl search <chat_id> <keyword>")
		return false
	}

	chatID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: chat_id must be an integer: %v\n", err)
		return false
	}
	keyword := strings.Join(args[1:], " ")

	total, err := store.CountMatching(ctx, keyword, chatID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: search failed: %v\n", err)
		return false
	}

	records, err := store.FindMatching(ctx, keyword, chatID, 0, 20)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: search failed: %v\n", err)
		return false
	}

	fmt.Printf("%d records match %q in chat %d", total, keyword, chatID)
	if total > len(records) {
		fmt.Printf(" (showing first %d)", len(records))
	}
	fmt.Println()

	for i, rec := range records {
		fmt.Printf("  %2d. [%s] %s (message %d, %s)\n",
			i+1, rec.MediaType, rec.FileName, rec.MessageID,
			rec.Timestamp.Format("2006-01-02"))
	}
	return true
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `Usage: catalogctl <command>

Commands:
  stats                        Show catalog record counts
  search <chat_id> <keyword>   Run a catalog search from the command line

Environment:
  DATABASE_DIR - Path to database directory (default: /database)`)
}
