package handlers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"media-search-bot/internal/logging"
	"media-search-bot/internal/session"
	"media-search-bot/internal/transport"
)

const helpText = `*Media Search Bot*

I index every audio and video file posted in this chat and make it searchable.

*Commands*
/f <keyword> — search indexed media by file name
/index — re-index this chat's full history (admins only)
/help — this message

Search results are interactive: page through them with the buttons, close them when done. Only the person who started a search can use its buttons, and results clean themselves up after a few minutes.`

// parseCommand splits "/cmd arg text" into its command and argument.
// A "@botname" suffix on the command is tolerated and dropped.
func parseCommand(text string) (cmd, args string, ok bool) {
	if !strings.HasPrefix(text, "/") {
		return "", "", false
	}
	cmd, args, _ = strings.Cut(text, " ")
	if at := strings.Index(cmd, "@"); at > 0 {
		cmd = cmd[:at]
	}
	return cmd, strings.TrimSpace(args), true
}

func (b *Bot) handleCommand(ctx context.Context, msg *transport.Message, cmd, args string) {
	switch cmd {
	case "/f", "/find", "/search":
		b.handleSearch(ctx, msg, args)
	case "/help", "/start":
		b.handleHelp(ctx, msg.Chat.ID)
	case "/index":
		b.handleIndex(ctx, msg)
	default:
		logging.Debug("Ignoring unknown command %q in chat %d", cmd, msg.Chat.ID)
	}
}

func (b *Bot) handleSearch(ctx context.Context, msg *transport.Message, keyword string) {
	err := b.sessions.Create(ctx, msg.Chat.ID, msg.SenderID(), keyword)
	if errors.Is(err, session.ErrEmptyQuery) {
		if _, err := b.gw.SendMessage(ctx, msg.Chat.ID, "Usage: `/f <keyword>`", nil); err != nil {
			logging.Error("Failed to send usage hint: %v", err)
		}
		return
	}
	if err != nil {
		logging.Error("Search for %q in chat %d failed: %v", keyword, msg.Chat.ID, err)
		if _, err := b.gw.SendMessage(ctx, msg.Chat.ID, "Search failed, please try again.", nil); err != nil {
			logging.Error("Failed to send failure notice: %v", err)
		}
	}
}

func (b *Bot) handleHelp(ctx context.Context, chatID int64) {
	if _, err := b.gw.SendMessage(ctx, chatID, helpText, nil); err != nil {
		logging.Error("Failed to send help: %v", err)
	}
}

// handleIndex runs a full history backfill on demand. Gated to chat
// administrators: a backfill walks the entire history and is not
// something arbitrary members should be able to trigger repeatedly.
func (b *Bot) handleIndex(ctx context.Context, msg *transport.Message) {
	admin, err := b.gw.IsAdministrator(ctx, msg.Chat.ID, msg.SenderID())
	if err != nil {
		logging.Error("Admin check failed for user %d in chat %d: %v", msg.SenderID(), msg.Chat.ID, err)
		return
	}
	if !admin {
		if _, err := b.gw.SendMessage(ctx, msg.Chat.ID, "Only chat administrators can trigger indexing.", nil); err != nil {
			logging.Error("Failed to send admin notice: %v", err)
		}
		return
	}

	ref, err := b.gw.SendMessage(ctx, msg.Chat.ID, "Indexing chat history, this may take a while...", nil)
	if err != nil {
		logging.Error("Failed to announce backfill: %v", err)
		return
	}

	b.runBackfill(msg.Chat.ID, ref)
}

// handleAddedToChat greets the chat and immediately backfills its
// history so searches work from the first minute.
func (b *Bot) handleAddedToChat(ctx context.Context, chatID int64) {
	logging.Info("Added to chat %d", chatID)

	ref, err := b.gw.SendMessage(ctx, chatID,
		"Hello! I index audio and video posted here and make it searchable with /f. Indexing existing history now...", nil)
	if err != nil {
		logging.Error("Failed to send welcome to chat %d: %v", chatID, err)
		return
	}

	b.runBackfill(chatID, ref)
}

// runBackfill executes a backfill and edits the announcement message
// with the result. The walk runs under the bot's lifetime context, not
// the triggering update's: a history walk takes as long as the chat is
// large and must only stop at shutdown.
func (b *Bot) runBackfill(chatID int64, ref transport.MessageRef) {
	ctx := b.lifetime
	inserted, err := b.indexer.Backfill(ctx, chatID)

	var result string
	switch {
	case err != nil:
		logging.Error("Backfill of chat %d failed: %v", chatID, err)
		result = fmt.Sprintf("Indexing stopped early after %d new files. Run /index to retry.", inserted)
	case inserted == 0:
		result = "History indexed, nothing new found. Search with /f <keyword>."
	default:
		result = fmt.Sprintf("History indexed: %d new files. Search with /f <keyword>.", inserted)
	}

	if err := b.gw.EditMessage(ctx, ref, result, nil); err != nil {
		logging.Error("Failed to update backfill notice in chat %d: %v", chatID, err)
	}
}
