package indexer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"media-search-bot/internal/catalog"
	"media-search-bot/internal/logging"
	"media-search-bot/internal/mediatypes"
	"media-search-bot/internal/metrics"
	"media-search-bot/internal/transport"
)

// Outcome is the result of offering one message to the indexer.
type Outcome string

const (
	// OutcomeSkipped means the message carried no indexable media.
	OutcomeSkipped Outcome = "skipped"
	// OutcomeInserted means a new catalog record was created.
	OutcomeInserted Outcome = "inserted"
	// OutcomeDuplicate means the message was already indexed.
	OutcomeDuplicate Outcome = "duplicate"
)

// Ingestion sources, used for logging and metrics only.
const (
	SourceLive     = "live"
	SourceBackfill = "backfill"
)

// progressInterval is how many inserted records pass between progress
// log lines during a backfill.
const progressInterval = 100

// Classification is the indexable view of a message's attachment.
type Classification struct {
	Type     mediatypes.MediaType
	FileRef  string
	FileName string
	FileSize int64
	Duration int
}

// Classify inspects a message's attachments and decides whether it is
// indexable. Native audio and video attachments are always indexable;
// generic documents qualify only when their declared MIME type reads
// as audio or video. Attachments without a usable file name get a
// synthesized one: native attachments with an extension, documents
// without (their true container format is unknown).
func Classify(msg *transport.Message) (Classification, bool) {
	switch {
	case msg.Audio != nil:
		return classifyNative(msg, msg.Audio, mediatypes.MediaAudio), true
	case msg.Video != nil:
		return classifyNative(msg, msg.Video, mediatypes.MediaVideo), true
	case msg.Document != nil:
		t := mediatypes.FromMime(msg.Document.MimeType)
		if t == mediatypes.MediaNone {
			return Classification{}, false
		}
		c := Classification{
			Type:     t,
			FileRef:  msg.Document.FileID,
			FileName: msg.Document.FileName,
			FileSize: msg.Document.FileSize,
			Duration: msg.Document.Duration,
		}
		if c.FileName == "" {
			c.FileName = mediatypes.SynthesizeName(t, msg.ID, false)
		}
		return c, true
	}
	return Classification{}, false
}

func classifyNative(msg *transport.Message, att *transport.MediaAttachment, t mediatypes.MediaType) Classification {
	c := Classification{
		Type:     t,
		FileRef:  att.FileID,
		FileName: att.FileName,
		FileSize: att.FileSize,
		Duration: att.Duration,
	}
	if c.FileName == "" {
		c.FileName = mediatypes.SynthesizeName(t, msg.ID, true)
	}
	return c
}

// Indexer feeds classified messages into the catalog, from live
// updates and from history backfills.
type Indexer struct {
	store    *catalog.Store
	gw       transport.Gateway
	throttle time.Duration
}

// New creates an indexer. throttle is the pause between history pulls
// during a backfill; zero disables throttling.
func New(store *catalog.Store, gw transport.Gateway, throttle time.Duration) *Indexer {
	return &Indexer{
		store:    store,
		gw:       gw,
		throttle: throttle,
	}
}

// IngestOne offers a single message to the catalog. Ingestion is
// idempotent: a message that was already indexed, by this worker or
// any other, reports OutcomeDuplicate without error.
func (ix *Indexer) IngestOne(ctx context.Context, msg *transport.Message, source string) (Outcome, error) {
	c, ok := Classify(msg)
	if !ok {
		metrics.IngestOutcomesTotal.WithLabelValues(source, string(OutcomeSkipped)).Inc()
		return OutcomeSkipped, nil
	}

	rec := &catalog.MediaRecord{
		FileRef:   c.FileRef,
		FileName:  c.FileName,
		MessageID: msg.ID,
		ChatID:    msg.Chat.ID,
		SenderID:  msg.SenderID(),
		Timestamp: time.Unix(msg.Date, 0).UTC(),
		MediaType: c.Type,
		FileSize:  c.FileSize,
		Duration:  c.Duration,
	}

	inserted, err := ix.store.Upsert(ctx, rec)
	if err != nil {
		metrics.IngestOutcomesTotal.WithLabelValues(source, "error").Inc()
		return OutcomeSkipped, fmt.Errorf("indexing message %d in chat %d: %w", msg.ID, msg.Chat.ID, err)
	}

	outcome := OutcomeDuplicate
	if inserted {
		outcome = OutcomeInserted
	}
	metrics.IngestOutcomesTotal.WithLabelValues(source, string(outcome)).Inc()
	return outcome, nil
}

// Backfill walks chatID's full message history, newest first, and
// indexes everything it finds. It returns the number of records
// inserted. A transport failure mid-walk ends the run with the partial
// count and the error; store failures on individual messages are
// logged and skipped so one bad row cannot sink a multi-hour run. The
// walk pauses between messages to stay under platform rate limits.
func (ix *Indexer) Backfill(ctx context.Context, chatID int64) (int, error) {
	jobID := uuid.NewString()

	metrics.BackfillRunsTotal.Inc()
	metrics.BackfillsRunning.Inc()
	defer metrics.BackfillsRunning.Dec()

	start := time.Now()
	defer func() {
		metrics.BackfillDuration.Observe(time.Since(start).Seconds())
	}()

	logging.Info("Backfill %s: starting for chat %d", jobID, chatID)

	var inserted, scanned int
	iter := ix.gw.FetchHistory(ctx, chatID)

	for {
		msg, err := iter.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			logging.Error("Backfill %s: history walk failed after %d messages: %v", jobID, scanned, err)
			return inserted, fmt.Errorf("walking history of chat %d: %w", chatID, err)
		}
		scanned++

		outcome, err := ix.IngestOne(ctx, msg, SourceBackfill)
		if err != nil {
			logging.Warn("Backfill %s: %v", jobID, err)
			continue
		}
		if outcome == OutcomeInserted {
			inserted++
			if inserted%progressInterval == 0 {
				logging.Info("Backfill %s: %d records indexed so far (%d messages scanned)", jobID, inserted, scanned)
			}
		}

		if ix.throttle > 0 {
			select {
			case <-time.After(ix.throttle):
			case <-ctx.Done():
				logging.Warn("Backfill %s: cancelled after %d messages", jobID, scanned)
				return inserted, ctx.Err()
			}
		}
	}

	logging.Info("Backfill %s: finished chat %d: %d messages scanned, %d records indexed in %s",
		jobID, chatID, scanned, inserted, time.Since(start).Round(time.Millisecond))
	return inserted, nil
}
