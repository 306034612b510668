package handlers

import (
	"context"
	"time"

	"media-search-bot/internal/catalog"
	"media-search-bot/internal/indexer"
	"media-search-bot/internal/logging"
	"media-search-bot/internal/session"
	"media-search-bot/internal/transport"
)

// Bot routes inbound updates to the search, indexing, and session
// layers. It implements transport.UpdateHandler.
type Bot struct {
	store     *catalog.Store
	indexer   *indexer.Indexer
	sessions  *session.Manager
	gw        transport.Gateway
	selfID    int64
	startTime time.Time

	// lifetime outlives individual updates. Backfills run under it so
	// a per-update deadline cannot truncate a long history walk; it is
	// cancelled only at shutdown.
	lifetime context.Context
}

// New creates the update router. lifetime is the process-scoped context
// long-running work is bound to; selfID is the bot's own user ID, used
// to recognize when it has been added to a chat.
func New(lifetime context.Context, store *catalog.Store, ix *indexer.Indexer, sessions *session.Manager, gw transport.Gateway, selfID int64) *Bot {
	return &Bot{
		store:     store,
		indexer:   ix,
		sessions:  sessions,
		gw:        gw,
		selfID:    selfID,
		startTime: time.Now(),
		lifetime:  lifetime,
	}
}

// HandleUpdate dispatches one inbound update. Errors are handled and
// logged here; nothing propagates back to the webhook receiver.
func (b *Bot) HandleUpdate(ctx context.Context, upd *transport.Update) {
	switch {
	case upd.CallbackQuery != nil:
		b.handleCallback(ctx, upd.CallbackQuery)
	case upd.Message != nil:
		b.handleMessage(ctx, upd.Message)
	default:
		logging.Debug("Ignoring update %d with no message or callback", upd.UpdateID)
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *transport.Message) {
	if b.welcomesSelf(msg) {
		b.handleAddedToChat(ctx, msg.Chat.ID)
		return
	}

	if cmd, args, ok := parseCommand(msg.Text); ok {
		b.handleCommand(ctx, msg, cmd, args)
		return
	}

	// Everything else is a candidate for live indexing.
	if _, err := b.indexer.IngestOne(ctx, msg, indexer.SourceLive); err != nil {
		logging.Error("Live ingest failed: %v", err)
	}
}

// welcomesSelf reports whether msg announces this bot joining the chat.
func (b *Bot) welcomesSelf(msg *transport.Message) bool {
	for _, u := range msg.NewChatMembers {
		if u.ID == b.selfID {
			return true
		}
	}
	return false
}
