package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"media-search-bot/internal/logging"
	"media-search-bot/internal/metrics"
)

const (
	// Per-call HTTP timeout for outbound API requests.
	callTimeout = 30 * time.Second

	// Retry budget for rate-limited or transient failures.
	maxAttempts    = 3
	initialBackoff = 500 * time.Millisecond
)

// ClientConfig configures the HTTP gateway client.
type ClientConfig struct {
	// BaseURL of the bot API, e.g. "https://api.telegram.org".
	BaseURL string
	// Token of the command-handling identity.
	Token string
	// HistoryBaseURL, HistoryToken: optional second identity with
	// history-read capability. Empty values fall back to the primary.
	HistoryBaseURL string
	HistoryToken   string
}

// Client implements Gateway against a bot-API-shaped HTTP endpoint.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	token          string
	historyBaseURL string
	historyToken   string
}

// NewClient creates a Client from config.
func NewClient(cfg ClientConfig) *Client {
	historyBase := cfg.HistoryBaseURL
	if historyBase == "" {
		historyBase = cfg.BaseURL
	}
	historyToken := cfg.HistoryToken
	if historyToken == "" {
		historyToken = cfg.Token
	}

	return &Client{
		httpClient:     &http.Client{Timeout: callTimeout},
		baseURL:        cfg.BaseURL,
		token:          cfg.Token,
		historyBaseURL: historyBase,
		historyToken:   historyToken,
	}
}

// apiResponse is the bot API's envelope.
type apiResponse struct {
	OK          bool            `json:"ok"`
	Result      json.RawMessage `json:"result,omitempty"`
	Description string          `json:"description,omitempty"`
	Parameters  *struct {
		RetryAfter int `json:"retry_after,omitempty"`
	} `json:"parameters,omitempty"`
}

// apiError is a non-ok response from the platform.
type apiError struct {
	method      string
	statusCode  int
	description string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("transport %s: status %d: %s", e.method, e.statusCode, e.description)
}

// retryable reports whether a failed attempt is worth repeating.
func retryable(statusCode int) bool {
	return statusCode == http.StatusTooManyRequests || statusCode >= 500
}

// call POSTs a JSON payload to an API method of the given identity and
// decodes the result envelope into out (which may be nil).
func (c *Client) call(ctx context.Context, baseURL, token, method string, payload, out interface{}) error {
	start := time.Now()
	var err error
	defer func() {
		status := "success"
		if err != nil {
			status = "error"
		}
		metrics.TransportCallsTotal.WithLabelValues(method, status).Inc()
		metrics.TransportCallDuration.WithLabelValues(method).Observe(time.Since(start).Seconds())
	}()

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("transport %s: encode request: %w", method, err)
	}

	url := fmt.Sprintf("%s/bot%s/%s", baseURL, token, method)
	backoff := initialBackoff

	for attempt := 1; ; attempt++ {
		err = c.doOnce(ctx, url, method, body, out)
		if err == nil {
			return nil
		}

		apiErr, ok := err.(*apiError)
		if !ok || !retryable(apiErr.statusCode) || attempt >= maxAttempts {
			return err
		}

		wait := backoff
		if apiErr.statusCode == http.StatusTooManyRequests && apiErr.description != "" {
			logging.Warn("Rate limited on %s (attempt %d/%d): %s", method, attempt, maxAttempts, apiErr.description)
		}
		metrics.TransportRetriesTotal.WithLabelValues(method).Inc()
		logging.Debug("Retrying %s in %v (attempt %d/%d)", method, wait, attempt, maxAttempts)

		select {
		case <-time.After(wait):
		case <-ctx.Done():
			err = ctx.Err()
			return err
		}
		backoff *= 2
	}
}

func (c *Client) doOnce(ctx context.Context, url, method string, body []byte, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("transport %s: build request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("transport %s: %w", method, err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	var envelope apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return &apiError{method: method, statusCode: resp.StatusCode, description: "undecodable response"}
	}

	if !envelope.OK {
		desc := envelope.Description
		if envelope.Parameters != nil && envelope.Parameters.RetryAfter > 0 {
			desc = fmt.Sprintf("%s (retry after %ds)", desc, envelope.Parameters.RetryAfter)
		}
		return &apiError{method: method, statusCode: resp.StatusCode, description: desc}
	}

	if out != nil && len(envelope.Result) > 0 {
		if err := json.Unmarshal(envelope.Result, out); err != nil {
			return fmt.Errorf("transport %s: decode result: %w", method, err)
		}
	}

	return nil
}

// SendMessage sends text with optional controls.
func (c *Client) SendMessage(ctx context.Context, chatID int64, text string, markup *Markup) (MessageRef, error) {
	params := map[string]interface{}{
		"chat_id":                  chatID,
		"text":                     text,
		"parse_mode":               "Markdown",
		"disable_web_page_preview": true,
	}
	if markup != nil {
		params["reply_markup"] = markup
	}

	var sent Message
	if err := c.call(ctx, c.baseURL, c.token, "sendMessage", params, &sent); err != nil {
		return MessageRef{}, err
	}

	return MessageRef{ChatID: sent.Chat.ID, MessageID: sent.ID}, nil
}

// EditMessage rewrites a rendered message in place.
func (c *Client) EditMessage(ctx context.Context, ref MessageRef, text string, markup *Markup) error {
	params := map[string]interface{}{
		"chat_id":                  ref.ChatID,
		"message_id":               ref.MessageID,
		"text":                     text,
		"parse_mode":               "Markdown",
		"disable_web_page_preview": true,
	}
	if markup != nil {
		params["reply_markup"] = markup
	}

	return c.call(ctx, c.baseURL, c.token, "editMessageText", params, nil)
}

// DeleteMessage removes a rendered message.
func (c *Client) DeleteMessage(ctx context.Context, ref MessageRef) error {
	params := map[string]interface{}{
		"chat_id":    ref.ChatID,
		"message_id": ref.MessageID,
	}
	return c.call(ctx, c.baseURL, c.token, "deleteMessage", params, nil)
}

// AnswerCallback acknowledges a button press.
func (c *Client) AnswerCallback(ctx context.Context, callbackID, text string, alert bool) error {
	params := map[string]interface{}{
		"callback_query_id": callbackID,
	}
	if text != "" {
		params["text"] = text
		params["show_alert"] = alert
	}
	return c.call(ctx, c.baseURL, c.token, "answerCallbackQuery", params, nil)
}

// chatMember is the subset of getChatMember's result we care about.
type chatMember struct {
	Status string `json:"status"`
}

// IsAdministrator reports whether userID holds an administrator or
// owner role in chatID. The qualifying roles are the platform's
// "creator" and "administrator" statuses.
func (c *Client) IsAdministrator(ctx context.Context, chatID, userID int64) (bool, error) {
	params := map[string]interface{}{
		"chat_id": chatID,
		"user_id": userID,
	}

	var member chatMember
	if err := c.call(ctx, c.baseURL, c.token, "getChatMember", params, &member); err != nil {
		return false, err
	}

	return member.Status == "creator" || member.Status == "administrator", nil
}

// Me returns the bot's own identity. Used once at startup to recognize
// "bot added to chat" membership events.
func (c *Client) Me(ctx context.Context) (User, error) {
	var me User
	if err := c.call(ctx, c.baseURL, c.token, "getMe", nil, &me); err != nil {
		return User{}, err
	}
	return me, nil
}
