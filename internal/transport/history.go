package transport

import (
	"context"
	"io"
)

// historyPageSize is the number of messages requested per history call.
const historyPageSize = 100

// FetchHistory returns a fresh iterator over chatID's message history,
// most recent first, using the history-capable identity.
func (c *Client) FetchHistory(ctx context.Context, chatID int64) HistoryIterator {
	return &historyIterator{client: c, chatID: chatID}
}

// historyIterator pages through getChatHistory lazily. It buffers one
// page at a time and tracks the oldest message seen so the next page
// picks up where the previous one ended.
type historyIterator struct {
	client   *Client
	chatID   int64
	buffer   []Message
	pos      int
	offsetID int64
	done     bool
}

// historyPage is the result shape of a getChatHistory call.
type historyPage struct {
	Messages []Message `json:"messages"`
}

// Next returns the next message in the history, or io.EOF when the
// history is exhausted.
func (it *historyIterator) Next(ctx context.Context) (*Message, error) {
	if it.pos >= len(it.buffer) {
		if it.done {
			return nil, io.EOF
		}
		if err := it.fetchPage(ctx); err != nil {
			return nil, err
		}
		if len(it.buffer) == 0 {
			return nil, io.EOF
		}
	}

	msg := &it.buffer[it.pos]
	it.pos++
	it.offsetID = msg.ID
	return msg, nil
}

func (it *historyIterator) fetchPage(ctx context.Context) error {
	params := map[string]interface{}{
		"chat_id": it.chatID,
		"limit":   historyPageSize,
	}
	if it.offsetID > 0 {
		params["offset_id"] = it.offsetID
	}

	var page historyPage
	err := it.client.call(ctx, it.client.historyBaseURL, it.client.historyToken, "getChatHistory", params, &page)
	if err != nil {
		return err
	}

	it.buffer = page.Messages
	it.pos = 0
	if len(page.Messages) < historyPageSize {
		it.done = true
	}
	return nil
}
