package handlers

import (
	"context"
	"errors"

	"media-search-bot/internal/logging"
	"media-search-bot/internal/metrics"
	"media-search-bot/internal/session"
	"media-search-bot/internal/transport"
)

// handleCallback answers a button press on a search view. Every press
// gets acknowledged exactly once, with an alert when the press was
// rejected, so clients never show a stuck spinner.
func (b *Bot) handleCallback(ctx context.Context, cb *transport.CallbackQuery) {
	if cb.Message == nil {
		b.answer(ctx, cb.ID, "", false)
		metrics.CallbackResultsTotal.WithLabelValues("error").Inc()
		return
	}

	payload, err := transport.ParsePayload(cb.Data)
	if err != nil {
		logging.Warn("Undecodable callback data from user %d: %v", cb.From.ID, err)
		b.answer(ctx, cb.ID, "", false)
		metrics.CallbackResultsTotal.WithLabelValues("error").Inc()
		return
	}

	ref := transport.MessageRef{ChatID: cb.Message.Chat.ID, MessageID: cb.Message.ID}

	switch payload.Action {
	case transport.ActionNoop:
		b.answer(ctx, cb.ID, "", false)
		metrics.CallbackResultsTotal.WithLabelValues("ok").Inc()

	case transport.ActionPage:
		err = b.sessions.Navigate(ctx, ref, cb.From.ID, payload.Page)
		b.finishCallback(ctx, cb.ID, err)

	case transport.ActionClose:
		err = b.sessions.Close(ctx, ref, cb.From.ID)
		b.finishCallback(ctx, cb.ID, err)
	}
}

// finishCallback maps a session error onto the acknowledgement the
// user sees.
func (b *Bot) finishCallback(ctx context.Context, callbackID string, err error) {
	switch {
	case err == nil:
		b.answer(ctx, callbackID, "", false)
		metrics.CallbackResultsTotal.WithLabelValues("ok").Inc()
	case errors.Is(err, session.ErrExpired):
		b.answer(ctx, callbackID, "This search has expired.", true)
		metrics.CallbackResultsTotal.WithLabelValues("expired").Inc()
	case errors.Is(err, session.ErrNotOwner):
		b.answer(ctx, callbackID, "Only the person who searched can use these buttons.", true)
		metrics.CallbackResultsTotal.WithLabelValues("denied").Inc()
	default:
		logging.Error("Callback handling failed: %v", err)
		b.answer(ctx, callbackID, "Something went wrong, please try again.", true)
		metrics.CallbackResultsTotal.WithLabelValues("error").Inc()
	}
}

func (b *Bot) answer(ctx context.Context, callbackID, text string, alert bool) {
	if err := b.gw.AnswerCallback(ctx, callbackID, text, alert); err != nil {
		logging.Warn("Failed to answer callback %s: %v", callbackID, err)
	}
}
