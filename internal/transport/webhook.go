package transport

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"media-search-bot/internal/logging"
	"media-search-bot/internal/metrics"
)

// updateTimeout bounds the handling of a single inbound update.
const updateTimeout = 2 * time.Minute

// secretHeader carries the shared webhook secret set when the webhook
// was registered with the platform.
const secretHeader = "X-Telegram-Bot-Api-Secret-Token"

// UpdateHandler consumes inbound updates. Implementations must be safe
// for concurrent calls: the receiver does not serialize events.
type UpdateHandler interface {
	HandleUpdate(ctx context.Context, upd *Update)
}

// Webhook receives platform updates over HTTP and dispatches them to a
// handler on a bounded worker pool. The HTTP response is sent as soon
// as the update is accepted so the platform doesn't re-deliver slow
// ones.
type Webhook struct {
	secret  string
	handler UpdateHandler
	sem     chan struct{}
}

// NewWebhook creates a webhook receiver. workers bounds the number of
// updates handled concurrently.
func NewWebhook(secret string, handler UpdateHandler, workers int) *Webhook {
	if workers < 1 {
		workers = 1
	}
	return &Webhook{
		secret:  secret,
		handler: handler,
		sem:     make(chan struct{}, workers),
	}
}

// ServeHTTP accepts one update per request.
func (wh *Webhook) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if wh.secret != "" {
		got := r.Header.Get(secretHeader)
		if subtle.ConstantTimeCompare([]byte(got), []byte(wh.secret)) != 1 {
			logging.Warn("Webhook request with bad secret token from %s", r.RemoteAddr)
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
	}

	var upd Update
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		logging.Warn("Undecodable webhook payload: %v", err)
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	metrics.UpdatesReceivedTotal.WithLabelValues(updateKind(&upd)).Inc()

	select {
	case wh.sem <- struct{}{}:
	case <-r.Context().Done():
		return
	}

	go func() {
		defer func() { <-wh.sem }()

		// The request context dies with the HTTP response; handling
		// continues on its own deadline.
		ctx, cancel := context.WithTimeout(context.Background(), updateTimeout)
		defer cancel()

		id := uuid.NewString()
		logging.Debug("Handling update %d (correlation %s)", upd.UpdateID, id)
		wh.handler.HandleUpdate(ctx, &upd)
	}()

	w.WriteHeader(http.StatusOK)
}

func updateKind(upd *Update) string {
	switch {
	case upd.CallbackQuery != nil:
		return "callback"
	case upd.Message != nil:
		return "message"
	default:
		return "other"
	}
}
