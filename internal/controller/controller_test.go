// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package controller

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/anichat/anichat-tui/internal/api"
	"github.com/anichat/anichat-tui/internal/directory"
	"github.com/anichat/anichat-tui/internal/model"
	"github.com/anichat/anichat-tui/internal/store"
)

// =============================================================================
// TEST BACKEND
// =============================================================================

// fakeBackend is a scriptable stand-in for the chat server. Handlers
// default to sensible success shapes; tests override what they need.
type fakeBackend struct {
	mu       sync.Mutex
	requests []string // "METHOD /path" in arrival order

	newChatID   string
	sessions    []map[string]interface{}
	chatHandler func(message string) (int, map[string]interface{})
	loadHandler func(id string) (int, map[string]interface{})
	delHandler  func(id string) (int, map[string]interface{})
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{newChatID: "1"}
}

func (f *fakeBackend) record(r *http.Request) {
	f.mu.Lock()
	f.requests = append(f.requests, r.Method+" "+r.URL.Path)
	f.mu.Unlock()
}

func (f *fakeBackend) requestLog() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.requests...)
}

func (f *fakeBackend) countRequests(prefix string) int {
	n := 0
	for _, r := range f.requestLog() {
		if r == prefix {
			n++
		}
	}
	return n
}

func (f *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.record(r)
	writeJSON := func(status int, body map[string]interface{}) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(body)
	}

	switch {
	case r.URL.Path == "/new_chat":
		writeJSON(200, map[string]interface{}{"success": true, "new_chat_id": f.newChatID})
	case r.URL.Path == "/chat":
		var req struct {
			Message string `json:"message"`
		}
		json.NewDecoder(r.Body).Decode(&req)
		if f.chatHandler != nil {
			writeJSON(f.chatHandler(req.Message))
			return
		}
		writeJSON(200, map[string]interface{}{"response": "Hi there!"})
	case r.URL.Path == "/get_chat_sessions":
		sessions := f.sessions
		if sessions == nil {
			sessions = []map[string]interface{}{}
		}
		writeJSON(200, map[string]interface{}{"sessions": sessions})
	case len(r.URL.Path) > len("/load_chat/") && r.URL.Path[:len("/load_chat/")] == "/load_chat/":
		id := r.URL.Path[len("/load_chat/"):]
		if f.loadHandler != nil {
			writeJSON(f.loadHandler(id))
			return
		}
		writeJSON(200, map[string]interface{}{
			"success": true, "current_chat_id": id,
			"messages": []map[string]string{},
		})
	case len(r.URL.Path) > len("/delete_chat/") && r.URL.Path[:len("/delete_chat/")] == "/delete_chat/":
		id := r.URL.Path[len("/delete_chat/"):]
		if f.delHandler != nil {
			writeJSON(f.delHandler(id))
			return
		}
		writeJSON(200, map[string]interface{}{"success": true, "new_current_chat_id": "1"})
	default:
		http.NotFound(w, r)
	}
}

func newFixture(t *testing.T, backend http.Handler) *Controller {
	t.Helper()
	srv := httptest.NewServer(backend)
	t.Cleanup(srv.Close)
	client := api.NewClientWithConfig(&api.ClientConfig{
		BaseURL:        srv.URL,
		Timeout:        2 * time.Second,
		RequestsPerSec: 1000,
	})
	return New(client, store.New(), directory.New())
}

func contents(msgs []*model.Message) []string {
	out := make([]string, len(msgs))
	for i, m := range msgs {
		out[i] = m.Content
	}
	return out
}

// =============================================================================
// NEW CHAT
// =============================================================================

func TestNewChat_HappyPath(t *testing.T) {
	backend := newFakeBackend()
	backend.newChatID = "5"
	backend.sessions = []map[string]interface{}{
		{"id": 5, "created_at": "2025-03-07T14:30:00"},
	}
	c := newFixture(t, backend)

	if err := c.NewChat(context.Background()); err != nil {
		t.Fatalf("NewChat() error = %v", err)
	}

	if got := c.CurrentChatID(); got != "5" {
		t.Errorf("CurrentChatID() = %q, want %q", got, "5")
	}
	if c.Store().Len() != 0 {
		t.Error("message store should be empty after new chat")
	}
	if got := backend.countRequests("POST /new_chat"); got != 1 {
		t.Errorf("POST /new_chat called %d times, want 1", got)
	}
	if got := c.Directory().ActiveID(); got != "5" {
		t.Errorf("directory active id = %q, want %q", got, "5")
	}
	if c.State() != StateIdle {
		t.Errorf("State() = %v after completion, want Idle", c.State())
	}
}

func TestNewChat_BackendFailureMutatesNothing(t *testing.T) {
	c := newFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success": false}`))
	}))
	c.Store().SetActiveSession("1")
	c.Store().Append("existing", model.SenderUser)

	err := c.NewChat(context.Background())
	if err == nil {
		t.Fatal("NewChat() should fail when the backend reports failure")
	}
	if got := c.CurrentChatID(); got != "" {
		t.Errorf("CurrentChatID() = %q, want unchanged empty", got)
	}
	if c.Store().Len() != 1 {
		t.Error("message store should be untouched on failure")
	}
	if c.State() != StateIdle {
		t.Errorf("State() = %v, want Idle", c.State())
	}
}

// =============================================================================
// SEND
// =============================================================================

func TestSend_HappyPath(t *testing.T) {
	backend := newFakeBackend()
	c := newFixture(t, backend)

	out, err := c.Send(context.Background(), "Hello")
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if out.Degraded {
		t.Error("send should not degrade on success")
	}

	got := contents(c.Store().Messages())
	want := []string{"Hello", "Hi there!"}
	if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("messages = %v, want %v", got, want)
	}

	// refresh_history absent: the session list must not be re-fetched.
	if n := backend.countRequests("GET /get_chat_sessions"); n != 0 {
		t.Errorf("directory refreshed %d times, want 0", n)
	}
}

func TestSend_AdoptsSessionAndRefreshesHistory(t *testing.T) {
	backend := newFakeBackend()
	backend.chatHandler = func(message string) (int, map[string]interface{}) {
		return 200, map[string]interface{}{
			"response":        "Nice to meet you",
			"current_chat_id": 9,
			"refresh_history": true,
		}
	}
	backend.sessions = []map[string]interface{}{
		{"id": 9, "title": "Hello", "created_at": "2025-03-07T14:30:00"},
	}
	c := newFixture(t, backend)

	out, err := c.Send(context.Background(), "Hello")
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	if out.AdoptedSessionID != "9" {
		t.Errorf("AdoptedSessionID = %q, want %q", out.AdoptedSessionID, "9")
	}
	if got := c.CurrentChatID(); got != "9" {
		t.Errorf("CurrentChatID() = %q, want %q", got, "9")
	}
	if n := backend.countRequests("GET /get_chat_sessions"); n != 1 {
		t.Errorf("directory refreshed %d times, want 1", n)
	}
	if got := c.Directory().ActiveID(); got != "9" {
		t.Errorf("directory active id = %q, want %q", got, "9")
	}
	// The optimistic user message must now be tagged with the adopted id.
	for _, m := range c.Store().Messages() {
		if m.SessionID != "9" {
			t.Errorf("message %q tagged %q, want %q", m.Content, m.SessionID, "9")
		}
	}
}

func TestSend_TransportFailureDegradesIntoChat(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close() // connection refused from here on

	client := api.NewClientWithConfig(&api.ClientConfig{BaseURL: url, Timeout: time.Second, RequestsPerSec: 1000})
	c := New(client, store.New(), directory.New())

	out, err := c.Send(context.Background(), "Hello")
	if err != nil {
		t.Fatalf("Send() error = %v, want degraded nil", err)
	}
	if !out.Degraded {
		t.Fatal("outcome should be degraded")
	}
	if !api.IsTransport(out.Err) {
		t.Errorf("outcome error = %v, want a transport failure", out.Err)
	}

	got := contents(c.Store().Messages())
	if len(got) != 2 || got[0] != "Hello" || got[1] != ConnectionTroubleNotice {
		t.Errorf("messages = %v, want user message plus connection notice", got)
	}
	if sender := c.Store().Messages()[1].Sender; sender != model.SenderBot {
		t.Errorf("notice sender = %q, want bot", sender)
	}
}

// =============================================================================
// LOAD
// =============================================================================

func TestLoad_ReplacesWindowInServerOrder(t *testing.T) {
	backend := newFakeBackend()
	backend.loadHandler = func(id string) (int, map[string]interface{}) {
		return 200, map[string]interface{}{
			"success": true, "current_chat_id": id,
			"messages": []map[string]string{
				{"content": "first", "sender": "user"},
				{"content": "second", "sender": "bot"},
				{"content": "third", "sender": "user"},
			},
		}
	}
	c := newFixture(t, backend)
	c.Store().SetActiveSession("1")
	c.Store().Append("old window", model.SenderUser)

	out, err := c.Load(context.Background(), "2")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if out.NoOp {
		t.Error("loading a different session must not be a no-op")
	}
	if out.MessageCount != 3 {
		t.Errorf("MessageCount = %d, want 3", out.MessageCount)
	}

	got := contents(c.Store().Messages())
	want := []string{"first", "second", "third"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("messages = %v, want %v (server order)", got, want)
		}
	}
	if c.CurrentChatID() != "2" {
		t.Errorf("CurrentChatID() = %q, want %q", c.CurrentChatID(), "2")
	}
}

func TestLoad_CurrentSessionIsNoOp(t *testing.T) {
	backend := newFakeBackend()
	c := newFixture(t, backend)
	c.Store().SetActiveSession("3")
	c.setCurrent("3")

	out, err := c.Load(context.Background(), "3")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !out.NoOp {
		t.Error("loading the current session should be a no-op")
	}
	if len(backend.requestLog()) != 0 {
		t.Errorf("no-op load made requests: %v", backend.requestLog())
	}
}

func TestLoad_FailureLeavesPriorWindowIntact(t *testing.T) {
	backend := newFakeBackend()
	backend.loadHandler = func(id string) (int, map[string]interface{}) {
		return 403, map[string]interface{}{"success": false, "message": "Unauthorized access to chat session."}
	}
	c := newFixture(t, backend)
	c.Store().SetActiveSession("1")
	c.setCurrent("1")
	c.Store().Append("still here", model.SenderUser)

	_, err := c.Load(context.Background(), "2")
	if err == nil {
		t.Fatal("Load() should surface the backend failure")
	}

	if c.CurrentChatID() != "1" {
		t.Errorf("CurrentChatID() = %q, want prior %q", c.CurrentChatID(), "1")
	}
	got := contents(c.Store().Messages())
	if len(got) != 1 || got[0] != "still here" {
		t.Errorf("window = %v, want the prior session untouched", got)
	}
}

// =============================================================================
// DELETE
// =============================================================================

func TestDelete_ActiveSessionAdoptsReplacement(t *testing.T) {
	backend := newFakeBackend()
	backend.delHandler = func(id string) (int, map[string]interface{}) {
		return 200, map[string]interface{}{"success": true, "new_current_chat_id": 7}
	}
	backend.loadHandler = func(id string) (int, map[string]interface{}) {
		return 200, map[string]interface{}{
			"success": true, "current_chat_id": id,
			"messages": []map[string]string{
				{"content": "welcome back", "sender": "bot"},
			},
		}
	}
	backend.sessions = []map[string]interface{}{
		{"id": 7, "created_at": "2025-03-08T10:00:00"},
	}
	c := newFixture(t, backend)
	c.Store().SetActiveSession("4")
	c.setCurrent("4")
	c.Store().Append("doomed transcript", model.SenderUser)

	out, err := c.Delete(context.Background(), "4")
	if err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	if out.NewCurrentChatID != "7" {
		t.Errorf("NewCurrentChatID = %q, want %q", out.NewCurrentChatID, "7")
	}
	if c.CurrentChatID() != "7" {
		t.Errorf("CurrentChatID() = %q, want %q", c.CurrentChatID(), "7")
	}
	got := contents(c.Store().Messages())
	if len(got) != 1 || got[0] != "welcome back" {
		t.Errorf("window = %v, want session 7's transcript", got)
	}
	if n := backend.countRequests("DELETE /delete_chat/4"); n != 1 {
		t.Errorf("DELETE called %d times, want 1", n)
	}
	if n := backend.countRequests("GET /get_chat_sessions"); n != 1 {
		t.Errorf("directory refreshed %d times, want 1", n)
	}
	if got := c.Directory().ActiveID(); got != "7" {
		t.Errorf("directory active id = %q, want %q", got, "7")
	}
}

func TestDelete_FailureChangesNothing(t *testing.T) {
	backend := newFakeBackend()
	backend.delHandler = func(id string) (int, map[string]interface{}) {
		return 500, map[string]interface{}{"success": false}
	}
	c := newFixture(t, backend)
	c.Store().SetActiveSession("4")
	c.setCurrent("4")
	c.Store().Append("survivor", model.SenderUser)

	_, err := c.Delete(context.Background(), "4")
	if err == nil {
		t.Fatal("Delete() should surface the failure")
	}
	if c.CurrentChatID() != "4" {
		t.Errorf("CurrentChatID() = %q, want unchanged %q", c.CurrentChatID(), "4")
	}
	if c.Store().Len() != 1 {
		t.Error("window should be untouched on failure")
	}
}

// =============================================================================
// REGENERATE
// =============================================================================

func TestRegenerate_ReplacesInPlace(t *testing.T) {
	backend := newFakeBackend()
	backend.chatHandler = func(message string) (int, map[string]interface{}) {
		if message != "tell me a joke" {
			return 200, map[string]interface{}{"response": "unexpected resend: " + message}
		}
		return 200, map[string]interface{}{"response": "a better joke"}
	}
	c := newFixture(t, backend)
	c.Store().SetActiveSession("1")
	c.Store().Append("tell me a joke", model.SenderUser)
	bot := c.Store().Append("a mediocre joke", model.SenderBot)

	out, err := c.Regenerate(context.Background(), bot.Ref)
	if err != nil {
		t.Fatalf("Regenerate() error = %v", err)
	}
	if out.Degraded {
		t.Error("regeneration should succeed")
	}

	msgs := c.Store().Messages()
	if len(msgs) != 2 {
		t.Fatalf("regenerate must not add entries; len = %d", len(msgs))
	}
	if msgs[1].Ref != bot.Ref {
		t.Error("the bot entry's ref must be preserved")
	}
	if msgs[1].Content != "a better joke" {
		t.Errorf("content = %q, want the regenerated reply", msgs[1].Content)
	}
}

func TestRegenerate_PrecedingBotMessageRejectedWithoutNetwork(t *testing.T) {
	backend := newFakeBackend()
	c := newFixture(t, backend)
	c.Store().SetActiveSession("1")
	c.Store().Append("reply one", model.SenderBot)
	second := c.Store().Append("reply two", model.SenderBot)

	_, err := c.Regenerate(context.Background(), second.Ref)
	if !errors.Is(err, ErrNoPrecedingUser) {
		t.Fatalf("err = %v, want ErrNoPrecedingUser", err)
	}
	if len(backend.requestLog()) != 0 {
		t.Errorf("precondition failure must not reach the network: %v", backend.requestLog())
	}
}

func TestRegenerate_FirstMessageRejected(t *testing.T) {
	c := newFixture(t, newFakeBackend())
	c.Store().SetActiveSession("1")
	first := c.Store().Append("orphan reply", model.SenderBot)

	if _, err := c.Regenerate(context.Background(), first.Ref); !errors.Is(err, ErrNoPrecedingUser) {
		t.Fatalf("err = %v, want ErrNoPrecedingUser", err)
	}
}

func TestRegenerate_FailureWritesNoticeInPlace(t *testing.T) {
	backend := newFakeBackend()
	backend.chatHandler = func(message string) (int, map[string]interface{}) {
		return 500, map[string]interface{}{"message": "model exploded"}
	}
	c := newFixture(t, backend)
	c.Store().SetActiveSession("1")
	c.Store().Append("question", model.SenderUser)
	bot := c.Store().Append("old answer", model.SenderBot)

	out, err := c.Regenerate(context.Background(), bot.Ref)
	if err != nil {
		t.Fatalf("Regenerate() error = %v, want degraded nil", err)
	}
	if !out.Degraded {
		t.Fatal("outcome should be degraded")
	}
	if got := c.Store().Get(bot.Ref).Content; got != regenFailureNotice {
		t.Errorf("content = %q, want the inline failure notice", got)
	}
}

// =============================================================================
// IN-FLIGHT GUARD
// =============================================================================

func TestBusy_SecondOperationRejected(t *testing.T) {
	release := make(chan struct{})
	arrived := make(chan struct{})
	backend := newFakeBackend()
	backend.chatHandler = func(message string) (int, map[string]interface{}) {
		close(arrived)
		<-release
		return 200, map[string]interface{}{"response": "late"}
	}
	c := newFixture(t, backend)

	done := make(chan struct{})
	go func() {
		defer close(done)
		c.Send(context.Background(), "slow one")
	}()

	<-arrived
	if c.State() != StateSending {
		t.Errorf("State() = %v during send, want Sending", c.State())
	}
	if err := c.NewChat(context.Background()); !errors.Is(err, ErrBusy) {
		t.Errorf("NewChat() during send = %v, want ErrBusy", err)
	}
	if _, err := c.Load(context.Background(), "2"); !errors.Is(err, ErrBusy) {
		t.Errorf("Load() during send = %v, want ErrBusy", err)
	}

	close(release)
	<-done
	if c.State() != StateIdle {
		t.Errorf("State() = %v after completion, want Idle", c.State())
	}
}

// =============================================================================
// LOCAL OPERATIONS
// =============================================================================

func TestLocalEditAndDelete_NeverTouchNetwork(t *testing.T) {
	backend := newFakeBackend()
	c := newFixture(t, backend)
	c.Store().SetActiveSession("1")
	m := c.Store().Append("tpyo", model.SenderUser)

	if !c.EditMessage(m.Ref, "typo") {
		t.Error("EditMessage(known ref) = false")
	}
	if !c.DeleteMessage(m.Ref) {
		t.Error("DeleteMessage(known ref) = false")
	}
	if len(backend.requestLog()) != 0 {
		t.Errorf("local operations made requests: %v", backend.requestLog())
	}
}

func TestSearch_FiltersDirectory(t *testing.T) {
	backend := newFakeBackend()
	backend.sessions = []map[string]interface{}{
		{"id": 1, "title": "Budget Report", "created_at": "2025-03-07T14:30:00"},
		{"id": 2, "title": "Trip Planning", "created_at": "2025-03-07T15:00:00"},
	}
	c := newFixture(t, backend)
	if err := c.RefreshDirectory(context.Background()); err != nil {
		t.Fatalf("RefreshDirectory() error = %v", err)
	}

	c.Search("budget")

	visible := c.Directory().Visible()
	if len(visible) != 1 || visible[0].Session.Title != "Budget Report" {
		t.Errorf("visible = %v, want only Budget Report", visible)
	}
}
