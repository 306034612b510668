package handlers

import (
	"context"
	"io"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"media-search-bot/internal/catalog"
	"media-search-bot/internal/indexer"
	"media-search-bot/internal/mediatypes"
	"media-search-bot/internal/session"
	"media-search-bot/internal/transport"
)

const (
	testChatID = int64(-1001000)
	testUserID = int64(42)
	selfID     = int64(777)
)

// fakeGateway records outbound calls, serves a canned history, and
// answers admin checks from a flag.
type fakeGateway struct {
	mu      sync.Mutex
	nextID  int64
	sends   []recordedCall
	edits   []recordedCall
	answers []recordedAnswer
	deletes []transport.MessageRef
	history []*transport.Message
	admin   bool
}

type recordedCall struct {
	ref    transport.MessageRef
	text   string
	markup *transport.Markup
}

type recordedAnswer struct {
	text  string
	alert bool
}

func (g *fakeGateway) SendMessage(_ context.Context, chatID int64, text string, markup *transport.Markup) (transport.MessageRef, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.nextID++
	ref := transport.MessageRef{ChatID: chatID, MessageID: g.nextID}
	g.sends = append(g.sends, recordedCall{ref: ref, text: text, markup: markup})
	return ref, nil
}

func (g *fakeGateway) EditMessage(_ context.Context, ref transport.MessageRef, text string, markup *transport.Markup) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.edits = append(g.edits, recordedCall{ref: ref, text: text, markup: markup})
	return nil
}

func (g *fakeGateway) DeleteMessage(_ context.Context, ref transport.MessageRef) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.deletes = append(g.deletes, ref)
	return nil
}

func (g *fakeGateway) AnswerCallback(_ context.Context, _, text string, alert bool) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.answers = append(g.answers, recordedAnswer{text: text, alert: alert})
	return nil
}

type sliceIterator struct {
	messages []*transport.Message
	pos      int
}

func (it *sliceIterator) Next(context.Context) (*transport.Message, error) {
	if it.pos >= len(it.messages) {
		return nil, io.EOF
	}
	it.pos++
	return it.messages[it.pos-1], nil
}

func (g *fakeGateway) FetchHistory(context.Context, int64) transport.HistoryIterator {
	return &sliceIterator{messages: g.history}
}

func (g *fakeGateway) IsAdministrator(context.Context, int64, int64) (bool, error) {
	return g.admin, nil
}

func setupTestBot(t *testing.T, gw *fakeGateway) (*Bot, *catalog.Store) {
	t.Helper()

	store, err := catalog.New(context.Background(), filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to create test store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("Failed to close test store: %v", err)
		}
	})

	ix := indexer.New(store, gw, 0)
	sessions := session.NewManager(store, gw, 10, time.Minute)
	t.Cleanup(sessions.Shutdown)

	return New(context.Background(), store, ix, sessions, gw, selfID), store
}

func textMessage(text string) *transport.Message {
	return &transport.Message{
		ID:   1,
		Chat: transport.Chat{ID: testChatID},
		From: &transport.User{ID: testUserID},
		Date: 1700000000,
		Text: text,
	}
}

func audioMessage(messageID int64, name string) *transport.Message {
	return &transport.Message{
		ID:    messageID,
		Chat:  transport.Chat{ID: testChatID},
		From:  &transport.User{ID: testUserID},
		Date:  1700000000 + messageID,
		Audio: &transport.MediaAttachment{FileID: "a", FileName: name, MimeType: "audio/mpeg"},
	}
}

func TestParseCommand(t *testing.T) {
	t.Parallel()

	tests := []struct {
		text     string
		wantCmd  string
		wantArgs string
		wantOK   bool
	}{
		{"/f beatles", "/f", "beatles", true},
		{"/f", "/f", "", true},
		{"/f@media_search_bot yellow submarine", "/f", "yellow submarine", true},
		{"/help", "/help", "", true},
		{"not a command", "", "", false},
		{"", "", "", false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.text, func(t *testing.T) {
			t.Parallel()
			cmd, args, ok := parseCommand(tt.text)
			if ok != tt.wantOK || cmd != tt.wantCmd || args != tt.wantArgs {
				t.Errorf("parseCommand(%q) = (%q, %q, %v), want (%q, %q, %v)",
					tt.text, cmd, args, ok, tt.wantCmd, tt.wantArgs, tt.wantOK)
			}
		})
	}
}

func TestSearchCommand(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	gw := &fakeGateway{}
	bot, store := setupTestBot(t, gw)
	ctx := context.Background()

	for i := int64(1); i <= 3; i++ {
		rec := &catalog.MediaRecord{
			FileRef:   "r",
			FileName:  "beatles.mp3",
			MessageID: i,
			ChatID:    testChatID,
			Timestamp: time.Unix(1700000000+i, 0).UTC(),
			MediaType: mediatypes.MediaAudio,
		}
		if _, err := store.Upsert(ctx, rec); err != nil {
			t.Fatalf("seed failed: %v", err)
		}
	}

	bot.HandleUpdate(ctx, &transport.Update{Message: textMessage("/f beatles")})

	if len(gw.sends) != 1 {
		t.Fatalf("sends = %d, want 1", len(gw.sends))
	}
	if gw.sends[0].markup == nil {
		t.Error("search result should carry controls")
	}
	if !strings.Contains(gw.sends[0].text, "(3 found)") {
		t.Errorf("result header missing:\n%s", gw.sends[0].text)
	}
}

func TestSearchCommandWithoutKeyword(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	gw := &fakeGateway{}
	bot, _ := setupTestBot(t, gw)

	bot.HandleUpdate(context.Background(), &transport.Update{Message: textMessage("/f")})

	if len(gw.sends) != 1 || !strings.Contains(gw.sends[0].text, "Usage") {
		t.Fatalf("expected usage hint, got %+v", gw.sends)
	}
}

func TestHelpCommand(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	gw := &fakeGateway{}
	bot, _ := setupTestBot(t, gw)

	bot.HandleUpdate(context.Background(), &transport.Update{Message: textMessage("/help")})

	if len(gw.sends) != 1 || !strings.Contains(gw.sends[0].text, "/f <keyword>") {
		t.Fatalf("expected help text, got %+v", gw.sends)
	}
}

func TestIndexCommandRequiresAdmin(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	gw := &fakeGateway{admin: false}
	bot, _ := setupTestBot(t, gw)

	bot.HandleUpdate(context.Background(), &transport.Update{Message: textMessage("/index")})

	if len(gw.sends) != 1 || !strings.Contains(gw.sends[0].text, "administrators") {
		t.Fatalf("expected admin denial, got %+v", gw.sends)
	}
}

func TestIndexCommandRunsBackfill(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	gw := &fakeGateway{admin: true}
	for i := int64(1); i <= 5; i++ {
		gw.history = append(gw.history, audioMessage(i, "track.mp3"))
	}
	bot, store := setupTestBot(t, gw)
	ctx := context.Background()

	bot.HandleUpdate(ctx, &transport.Update{Message: textMessage("/index")})

	if len(gw.edits) != 1 || !strings.Contains(gw.edits[0].text, "5 new files") {
		t.Fatalf("expected completion edit, got %+v", gw.edits)
	}

	count, err := store.CountMatching(ctx, "track", testChatID)
	if err != nil {
		t.Fatalf("CountMatching failed: %v", err)
	}
	if count != 5 {
		t.Errorf("catalog count = %d, want 5", count)
	}
}

func TestBackfillOutlivesUpdateContext(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	gw := &fakeGateway{admin: true}
	for i := int64(1); i <= 10; i++ {
		gw.history = append(gw.history, audioMessage(i, "track.mp3"))
	}

	store, err := catalog.New(context.Background(), filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to create test store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	// Throttled indexer: the walk checks for cancellation between
	// messages, so a backfill bound to the update context would stop
	// as soon as that context dies.
	ix := indexer.New(store, gw, time.Millisecond)
	sessions := session.NewManager(store, gw, 10, time.Minute)
	t.Cleanup(sessions.Shutdown)
	bot := New(context.Background(), store, ix, sessions, gw, selfID)

	updateCtx, cancel := context.WithCancel(context.Background())
	cancel() // the webhook's per-update deadline has already passed

	bot.HandleUpdate(updateCtx, &transport.Update{Message: textMessage("/index")})

	if len(gw.edits) != 1 || !strings.Contains(gw.edits[0].text, "10 new files") {
		t.Fatalf("backfill should complete despite the dead update context, got %+v", gw.edits)
	}
}

func TestAddedToChatTriggersBackfill(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	gw := &fakeGateway{}
	for i := int64(1); i <= 2; i++ {
		gw.history = append(gw.history, audioMessage(i, "track.mp3"))
	}
	bot, _ := setupTestBot(t, gw)

	join := &transport.Message{
		ID:             1,
		Chat:           transport.Chat{ID: testChatID},
		NewChatMembers: []transport.User{{ID: selfID, IsBot: true}},
	}
	bot.HandleUpdate(context.Background(), &transport.Update{Message: join})

	if len(gw.sends) != 1 || !strings.Contains(gw.sends[0].text, "Hello") {
		t.Fatalf("expected welcome, got %+v", gw.sends)
	}
	if len(gw.edits) != 1 || !strings.Contains(gw.edits[0].text, "2 new files") {
		t.Fatalf("expected backfill summary edit, got %+v", gw.edits)
	}
}

func TestSomeoneElseJoiningDoesNothing(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	gw := &fakeGateway{}
	bot, _ := setupTestBot(t, gw)

	join := &transport.Message{
		ID:             1,
		Chat:           transport.Chat{ID: testChatID},
		NewChatMembers: []transport.User{{ID: 12345}},
	}
	bot.HandleUpdate(context.Background(), &transport.Update{Message: join})

	if len(gw.sends) != 0 {
		t.Errorf("expected no welcome for a stranger, got %+v", gw.sends)
	}
}

func TestLiveMediaMessageIndexed(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	gw := &fakeGateway{}
	bot, store := setupTestBot(t, gw)
	ctx := context.Background()

	bot.HandleUpdate(ctx, &transport.Update{Message: audioMessage(99, "sunrise.mp3")})

	count, err := store.CountMatching(ctx, "sunrise", testChatID)
	if err != nil {
		t.Fatalf("CountMatching failed: %v", err)
	}
	if count != 1 {
		t.Errorf("catalog count = %d, want 1", count)
	}
}

func TestCallbackOnExpiredSession(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	gw := &fakeGateway{}
	bot, _ := setupTestBot(t, gw)

	cb := &transport.CallbackQuery{
		ID:   "cb1",
		From: transport.User{ID: testUserID},
		Message: &transport.Message{
			ID:   555,
			Chat: transport.Chat{ID: testChatID},
		},
		Data: "page:beatles:2",
	}
	bot.HandleUpdate(context.Background(), &transport.Update{CallbackQuery: cb})

	if len(gw.answers) != 1 {
		t.Fatalf("answers = %d, want 1", len(gw.answers))
	}
	if !gw.answers[0].alert || !strings.Contains(gw.answers[0].text, "expired") {
		t.Errorf("expected expiry alert, got %+v", gw.answers[0])
	}
}

func TestCallbackRoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	gw := &fakeGateway{}
	bot, store := setupTestBot(t, gw)
	ctx := context.Background()

	for i := int64(1); i <= 15; i++ {
		rec := &catalog.MediaRecord{
			FileRef:   "r",
			FileName:  "beatles.mp3",
			MessageID: i,
			ChatID:    testChatID,
			Timestamp: time.Unix(1700000000+i, 0).UTC(),
			MediaType: mediatypes.MediaAudio,
		}
		if _, err := store.Upsert(ctx, rec); err != nil {
			t.Fatalf("seed failed: %v", err)
		}
	}

	bot.HandleUpdate(ctx, &transport.Update{Message: textMessage("/f beatles")})
	if len(gw.sends) != 1 {
		t.Fatalf("sends = %d, want 1", len(gw.sends))
	}
	view := gw.sends[0]

	press := func(data string) {
		bot.HandleUpdate(ctx, &transport.Update{CallbackQuery: &transport.CallbackQuery{
			ID:   "cb",
			From: transport.User{ID: testUserID},
			Message: &transport.Message{
				ID:   view.ref.MessageID,
				Chat: transport.Chat{ID: view.ref.ChatID},
			},
			Data: data,
		}})
	}

	press("page:beatles:2")
	if len(gw.edits) != 1 || !strings.Contains(gw.edits[0].text, "Page 2 of 2") {
		t.Fatalf("expected page 2 edit, got %+v", gw.edits)
	}

	press("close")
	if len(gw.deletes) != 1 {
		t.Fatalf("deletes = %d, want 1", len(gw.deletes))
	}

	// The view is gone; a stale press now alerts.
	press("page:beatles:1")
	last := gw.answers[len(gw.answers)-1]
	if !last.alert || !strings.Contains(last.text, "expired") {
		t.Errorf("expected expiry alert after close, got %+v", last)
	}
}

func TestNonOwnerCallbackDenied(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	gw := &fakeGateway{}
	bot, store := setupTestBot(t, gw)
	ctx := context.Background()

	rec := &catalog.MediaRecord{
		FileRef:   "r",
		FileName:  "beatles.mp3",
		MessageID: 1,
		ChatID:    testChatID,
		Timestamp: time.Unix(1700000001, 0).UTC(),
		MediaType: mediatypes.MediaAudio,
	}
	if _, err := store.Upsert(ctx, rec); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	bot.HandleUpdate(ctx, &transport.Update{Message: textMessage("/f beatles")})
	view := gw.sends[0]

	bot.HandleUpdate(ctx, &transport.Update{CallbackQuery: &transport.CallbackQuery{
		ID:   "cb",
		From: transport.User{ID: testUserID + 1},
		Message: &transport.Message{
			ID:   view.ref.MessageID,
			Chat: transport.Chat{ID: view.ref.ChatID},
		},
		Data: "close",
	}})

	if len(gw.deletes) != 0 {
		t.Error("stranger must not be able to close the view")
	}
	last := gw.answers[len(gw.answers)-1]
	if !last.alert {
		t.Errorf("expected denial alert, got %+v", last)
	}
}
