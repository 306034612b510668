package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"media-search-bot/internal/catalog"
	"media-search-bot/internal/logging"
	"media-search-bot/internal/metrics"
	"media-search-bot/internal/transport"
)

var (
	// ErrEmptyQuery is returned when a search is requested with no
	// keyword.
	ErrEmptyQuery = errors.New("empty search query")

	// ErrExpired is returned when an interaction references a session
	// that no longer exists (closed, timed out, or never created).
	ErrExpired = errors.New("session expired")

	// ErrNotOwner is returned when a user other than the session
	// creator tries to interact with it.
	ErrNotOwner = errors.New("not the session owner")
)

// deleteTimeout bounds the platform call made when a session is torn
// down outside of a request context (timer fire, shutdown).
const deleteTimeout = 10 * time.Second

// Session is one live search view rendered into a chat. The view is
// identified by the message that carries it; only the creating user
// may page through or close it.
type Session struct {
	Ref       transport.MessageRef
	OwnerID   int64
	Query     string
	CreatedAt time.Time

	timer *time.Timer
}

// Manager owns the registry of live search sessions. All registry
// mutation happens under a single mutex so that expiry timers, button
// presses, and shutdown never race each other.
type Manager struct {
	store    *catalog.Store
	gw       transport.Gateway
	pageSize int
	timeout  time.Duration

	mu       sync.Mutex
	sessions map[transport.MessageRef]*Session
}

// NewManager creates a session manager backed by the given catalog and
// gateway. pageSize is the fixed result window; timeout is how long an
// untouched session lives before its view is deleted.
func NewManager(store *catalog.Store, gw transport.Gateway, pageSize int, timeout time.Duration) *Manager {
	return &Manager{
		store:    store,
		gw:       gw,
		pageSize: pageSize,
		timeout:  timeout,
		sessions: make(map[transport.MessageRef]*Session),
	}
}

// Create runs a fresh search and renders its first page into chatID.
// A query with no matches produces a plain notice and no session; a
// query with matches produces an interactive view owned by ownerID
// that self-destructs after the manager's timeout.
func (m *Manager) Create(ctx context.Context, chatID, ownerID int64, query string) error {
	query = strings.TrimSpace(query)
	if query == "" {
		return ErrEmptyQuery
	}

	total, err := m.store.CountMatching(ctx, query, chatID)
	if err != nil {
		return fmt.Errorf("counting matches: %w", err)
	}

	if total == 0 {
		if _, err := m.gw.SendMessage(ctx, chatID, fmt.Sprintf("No media found for *%s*.", escapeMarkdown(query)), nil); err != nil {
			return fmt.Errorf("sending empty-result notice: %w", err)
		}
		return nil
	}

	page := NewPage(1, m.pageSize, total)
	records, err := m.store.FindMatching(ctx, query, chatID, page.Offset(), page.Size)
	if err != nil {
		return fmt.Errorf("fetching first page: %w", err)
	}

	ref, err := m.gw.SendMessage(ctx, chatID, formatResults(query, page, records), buildKeyboard(query, page))
	if err != nil {
		return fmt.Errorf("rendering search view: %w", err)
	}

	sess := &Session{
		Ref:       ref,
		OwnerID:   ownerID,
		Query:     query,
		CreatedAt: time.Now(),
	}

	// Register before arming the timer so a fire can never miss the
	// session in the registry.
	m.mu.Lock()
	m.sessions[ref] = sess
	sess.timer = time.AfterFunc(m.timeout, func() { m.handleTimeout(ref) })
	m.mu.Unlock()

	metrics.SessionsCreatedTotal.Inc()
	logging.Debug("Session created: chat=%d message=%d owner=%d query=%q total=%d",
		ref.ChatID, ref.MessageID, ownerID, query, total)
	return nil
}

// Navigate re-renders the session's view at the requested page. The
// match count is re-read on every press so the page range tracks a
// catalog that may have grown since the session was created; requests
// past the end clamp to the last page. Navigation does not extend the
// session's lifetime.
func (m *Manager) Navigate(ctx context.Context, ref transport.MessageRef, userID int64, requested int) error {
	m.mu.Lock()
	sess, ok := m.sessions[ref]
	m.mu.Unlock()

	if !ok {
		return ErrExpired
	}
	if sess.OwnerID != userID {
		return ErrNotOwner
	}

	total, err := m.store.CountMatching(ctx, sess.Query, ref.ChatID)
	if err != nil {
		return fmt.Errorf("counting matches: %w", err)
	}

	page := NewPage(requested, m.pageSize, total)

	var records []catalog.MediaRecord
	if total > 0 {
		records, err = m.store.FindMatching(ctx, sess.Query, ref.ChatID, page.Offset(), page.Size)
		if err != nil {
			return fmt.Errorf("fetching page %d: %w", page.Number, err)
		}
	}

	if err := m.gw.EditMessage(ctx, ref, formatResults(sess.Query, page, records), buildKeyboard(sess.Query, page)); err != nil {
		return fmt.Errorf("updating search view: %w", err)
	}

	logging.Debug("Session navigated: chat=%d message=%d page=%d/%d",
		ref.ChatID, ref.MessageID, page.Number, page.TotalPages)
	return nil
}

// Close tears the session down at the owner's request: the session is
// deregistered and its timer stopped before the view is deleted, so a
// concurrently firing timer can never act on it again. Failure to
// delete the view leaves the session closed regardless.
func (m *Manager) Close(ctx context.Context, ref transport.MessageRef, userID int64) error {
	m.mu.Lock()
	sess, ok := m.sessions[ref]
	if ok && sess.OwnerID != userID {
		m.mu.Unlock()
		return ErrNotOwner
	}
	if ok {
		delete(m.sessions, ref)
		sess.timer.Stop()
	}
	m.mu.Unlock()

	if !ok {
		return ErrExpired
	}

	metrics.SessionsEndedTotal.WithLabelValues("closed").Inc()

	if err := m.gw.DeleteMessage(ctx, ref); err != nil {
		logging.Warn("Failed to delete closed search view chat=%d message=%d: %v",
			ref.ChatID, ref.MessageID, err)
	}
	logging.Debug("Session closed: chat=%d message=%d", ref.ChatID, ref.MessageID)
	return nil
}

// handleTimeout runs on the session's expiry timer. The registry is
// re-checked under the lock: Stop on an already-fired timer cannot
// prevent this callback, so a session closed moments earlier must be
// treated as gone.
func (m *Manager) handleTimeout(ref transport.MessageRef) {
	m.mu.Lock()
	_, ok := m.sessions[ref]
	if ok {
		delete(m.sessions, ref)
	}
	m.mu.Unlock()

	if !ok {
		return
	}

	metrics.SessionsEndedTotal.WithLabelValues("timeout").Inc()

	ctx, cancel := context.WithTimeout(context.Background(), deleteTimeout)
	defer cancel()
	if err := m.gw.DeleteMessage(ctx, ref); err != nil {
		logging.Warn("Failed to delete expired search view chat=%d message=%d: %v",
			ref.ChatID, ref.MessageID, err)
	}
	logging.Debug("Session expired: chat=%d message=%d", ref.ChatID, ref.MessageID)
}

// ActiveCount returns the number of live sessions.
func (m *Manager) ActiveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Shutdown stops all expiry timers and drops the registry. Rendered
// views are left in place; they are harmless once the process that
// would answer their buttons is gone.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for ref, sess := range m.sessions {
		sess.timer.Stop()
		delete(m.sessions, ref)
	}
	logging.Info("Session manager shut down")
}
