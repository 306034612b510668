package transport

import "context"

// Gateway is the outbound contract the rest of the bot depends on. The
// concrete implementation talks to the chat platform's HTTP API; tests
// substitute a recording fake.
//
// The platform may present two independently authenticated identities
// with different capabilities: command handling (send/edit/delete/
// answer) and history access (FetchHistory). Credential lifecycle for
// both is external to this system.
type Gateway interface {
	// SendMessage sends text with optional controls and returns a
	// reference to the rendered message.
	SendMessage(ctx context.Context, chatID int64, text string, markup *Markup) (MessageRef, error)

	// EditMessage rewrites a rendered message in place.
	EditMessage(ctx context.Context, ref MessageRef, text string, markup *Markup) error

	// DeleteMessage removes a rendered message.
	DeleteMessage(ctx context.Context, ref MessageRef) error

	// AnswerCallback acknowledges a button press, optionally with a
	// transient notice or an alert popup.
	AnswerCallback(ctx context.Context, callbackID, text string, alert bool) error

	// FetchHistory returns a fresh iterator over chatID's message
	// history, most recent first. Each call restarts from the top.
	FetchHistory(ctx context.Context, chatID int64) HistoryIterator

	// IsAdministrator reports whether userID holds an administrator
	// (or owner) role in chatID.
	IsAdministrator(ctx context.Context, chatID, userID int64) (bool, error)
}

// HistoryIterator walks a finite message history. Next returns io.EOF
// once the history is exhausted.
type HistoryIterator interface {
	Next(ctx context.Context) (*Message, error)
}
