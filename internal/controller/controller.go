// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package controller owns the client's session state machine.
//
// The controller is the single source of truth for which session is
// current. It orchestrates new/send/load/delete/regenerate against the
// backend and reconciles the message store and the session directory
// after each operation; the UI layers (TUI and REPL) only ever call
// into it and render what it left behind.
//
// Exactly one mutating operation may be in flight at a time. An
// operation begun while another is running fails fast with ErrBusy;
// callers disable their affordances whenever State() is not Idle.
package controller

import (
	"context"
	"errors"
	"sync"

	"github.com/anichat/anichat-tui/internal/api"
	"github.com/anichat/anichat-tui/internal/directory"
	"github.com/anichat/anichat-tui/internal/model"
	"github.com/anichat/anichat-tui/internal/store"
)

// =============================================================================
// STATES
// =============================================================================

// State is the controller's operation state.
type State int

const (
	// StateIdle: a session is loaded (or none exists yet) and no
	// request is in flight.
	StateIdle State = iota
	// StateSending: a send or regenerate is awaiting the bot reply.
	StateSending
	// StateLoadingSession: a new-chat or load is in flight.
	StateLoadingSession
	// StateDeletingSession: a delete is in flight.
	StateDeletingSession
)

// String returns a short name for the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSending:
		return "sending"
	case StateLoadingSession:
		return "loading"
	case StateDeletingSession:
		return "deleting"
	default:
		return "unknown"
	}
}

// =============================================================================
// ERRORS AND NOTICES
// =============================================================================

var (
	// ErrBusy: another mutating operation is in flight.
	ErrBusy = errors.New("another operation is already in progress")

	// ErrNoPrecedingUser: regenerate was invoked on a message that is
	// not a bot reply immediately preceded by a user message.
	ErrNoPrecedingUser = errors.New("no user message found to regenerate from")
)

// ConnectionTroubleNotice is appended as a bot message when a send
// fails: the failure degrades into the conversation instead of
// interrupting it.
const ConnectionTroubleNotice = "Sorry, I'm having trouble connecting. Please try again later."

// regenFailureNotice replaces a bot message when its regeneration
// fails, in the markdown subset so it renders italic.
const regenFailureNotice = "_Failed to regenerate response. Please try again._"

// =============================================================================
// CONTROLLER
// =============================================================================

// Controller coordinates the transport, the message store, and the
// session directory.
type Controller struct {
	client *api.Client
	store  *store.Store
	dir    *directory.Directory

	mu            sync.Mutex
	state         State
	currentChatID string // "" only before the first ever message in a fresh session

	// Logf, when set, receives diagnostic lines (debug log).
	Logf func(format string, args ...interface{})
}

// New creates a controller over the given collaborators.
func New(client *api.Client, st *store.Store, dir *directory.Directory) *Controller {
	return &Controller{client: client, store: st, dir: dir}
}

// State returns the current operation state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Busy reports whether a mutating operation is in flight. The UI
// disables send/new/delete affordances while true.
func (c *Controller) Busy() bool {
	return c.State() != StateIdle
}

// CurrentChatID returns the id of the active session, or "" when no
// session exists yet.
func (c *Controller) CurrentChatID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.currentChatID
}

// Store exposes the message store for rendering.
func (c *Controller) Store() *store.Store {
	return c.store
}

// Directory exposes the sidebar state for rendering.
func (c *Controller) Directory() *directory.Directory {
	return c.dir
}

func (c *Controller) begin(next State) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateIdle {
		return ErrBusy
	}
	c.state = next
	return nil
}

func (c *Controller) end() {
	c.mu.Lock()
	c.state = StateIdle
	c.mu.Unlock()
}

func (c *Controller) setCurrent(id string) {
	c.mu.Lock()
	c.currentChatID = id
	c.mu.Unlock()
}

func (c *Controller) logf(format string, args ...interface{}) {
	if c.Logf != nil {
		c.Logf(format, args...)
	}
}

// CheckReachable probes the backend without touching any state.
func (c *Controller) CheckReachable(ctx context.Context) error {
	return c.client.CheckReachable(ctx)
}

// =============================================================================
// DIRECTORY REFRESH
// =============================================================================

// RefreshDirectory re-fetches the session list and rebuilds the
// sidebar. Safe to call in any state; it does not mutate session or
// message state.
func (c *Controller) RefreshDirectory(ctx context.Context) error {
	sessions, err := c.client.Sessions(ctx)
	if err != nil {
		return err
	}
	c.dir.Refresh(sessions, c.CurrentChatID(), c.store)
	return nil
}

// refreshDirectoryBestEffort refreshes the sidebar and swallows the
// error: a stale sidebar after a successful primary operation is a
// cosmetic problem, not a failure of the operation.
func (c *Controller) refreshDirectoryBestEffort(ctx context.Context) {
	if err := c.RefreshDirectory(ctx); err != nil {
		c.logf("directory refresh failed: %v", err)
	}
}

// =============================================================================
// NEW CHAT
// =============================================================================

// NewChat creates a fresh session and makes it current. Confirmation
// when the window is non-empty is the caller's concern. On failure
// nothing local is mutated.
func (c *Controller) NewChat(ctx context.Context) error {
	if err := c.begin(StateLoadingSession); err != nil {
		return err
	}
	defer c.end()

	newID, err := c.client.NewChat(ctx)
	if err != nil {
		return err
	}

	c.store.SetActiveSession(newID)
	c.store.Clear()
	c.setCurrent(newID)
	c.refreshDirectoryBestEffort(ctx)
	c.dir.SetActive(newID)
	return nil
}

// =============================================================================
// SEND
// =============================================================================

// SendOutcome describes what a Send left behind.
type SendOutcome struct {
	// UserRef is the optimistically appended user message.
	UserRef string
	// BotRef is the appended bot reply (or failure notice).
	BotRef string
	// AdoptedSessionID is non-empty when the backend attributed the
	// exchange to a different session id than the caller knew.
	AdoptedSessionID string
	// Degraded is true when the send failed and the failure was
	// rendered into the conversation instead of returned as an error.
	Degraded bool
	// Err carries the underlying failure when Degraded.
	Err error
}

// Send appends the user message optimistically, posts it, and appends
// the bot reply. Failures degrade into a bot-sender notice rather
// than an error: the user message stays visible and no dialog blocks
// the conversation.
func (c *Controller) Send(ctx context.Context, text string) (SendOutcome, error) {
	if err := c.begin(StateSending); err != nil {
		return SendOutcome{}, err
	}
	defer c.end()

	out := SendOutcome{}
	out.UserRef = c.store.Append(text, model.SenderUser).Ref

	res, err := c.client.Send(ctx, text)
	if err != nil {
		c.logf("send failed: %v", err)
		out.BotRef = c.store.Append(ConnectionTroubleNotice, model.SenderBot).Ref
		out.Degraded = true
		out.Err = err
		return out, nil
	}

	out.BotRef = c.store.Append(res.Reply, model.SenderBot).Ref

	// First-message case: the backend bound the exchange to a session
	// the client did not know it was in yet.
	if res.CurrentChatID != "" && res.CurrentChatID != c.CurrentChatID() {
		c.store.AdoptSession(res.CurrentChatID)
		c.setCurrent(res.CurrentChatID)
		c.dir.SetActive(res.CurrentChatID)
		out.AdoptedSessionID = res.CurrentChatID
	}

	if res.RefreshHistory {
		c.refreshDirectoryBestEffort(ctx)
	}
	return out, nil
}

// =============================================================================
// LOAD
// =============================================================================

// LoadOutcome describes what a Load did.
type LoadOutcome struct {
	// NoOp is true when the target was already the current session.
	NoOp bool
	// MessageCount is the number of transcript messages rendered.
	MessageCount int
}

// Load switches the window to another session. The transcript is
// fetched before anything is cleared, so a failed load leaves the
// prior session's rendered state fully intact.
func (c *Controller) Load(ctx context.Context, sessionID string) (LoadOutcome, error) {
	if sessionID != "" && sessionID == c.CurrentChatID() {
		return LoadOutcome{NoOp: true}, nil
	}

	if err := c.begin(StateLoadingSession); err != nil {
		return LoadOutcome{}, err
	}
	defer c.end()

	res, err := c.client.LoadChat(ctx, sessionID)
	if err != nil {
		return LoadOutcome{}, err
	}

	c.store.SetActiveSession(res.CurrentChatID)
	c.store.Clear()
	for _, m := range res.Messages {
		c.store.Append(m.Content, m.Sender)
	}
	c.setCurrent(res.CurrentChatID)
	c.dir.SetActive(res.CurrentChatID)
	return LoadOutcome{MessageCount: len(res.Messages)}, nil
}

// =============================================================================
// DELETE
// =============================================================================

// DeleteOutcome describes what a Delete left behind.
type DeleteOutcome struct {
	// NewCurrentChatID is the session that became current afterward
	// (the backend may have created a fresh empty one).
	NewCurrentChatID string
	// MessageCount is the number of messages rendered for it.
	MessageCount int
}

// Delete removes a session server-side and adopts whatever session the
// backend says is current afterward, rendering its transcript.
// Destructive confirmation is the caller's concern. On failure nothing
// local is changed.
func (c *Controller) Delete(ctx context.Context, sessionID string) (DeleteOutcome, error) {
	if err := c.begin(StateDeletingSession); err != nil {
		return DeleteOutcome{}, err
	}
	defer c.end()

	newID, err := c.client.DeleteChat(ctx, sessionID)
	if err != nil {
		return DeleteOutcome{}, err
	}

	out := DeleteOutcome{NewCurrentChatID: newID}

	c.store.SetActiveSession(newID)
	c.store.Clear()
	c.setCurrent(newID)

	if newID != "" {
		// A failed transcript fetch here leaves the window empty; the
		// deletion itself already succeeded.
		if res, err := c.client.LoadChat(ctx, newID); err == nil {
			for _, m := range res.Messages {
				c.store.Append(m.Content, m.Sender)
			}
			out.MessageCount = len(res.Messages)
		} else {
			c.logf("post-delete transcript fetch failed: %v", err)
		}
	}

	c.refreshDirectoryBestEffort(ctx)
	c.dir.SetActive(newID)
	return out, nil
}

// =============================================================================
// REGENERATE
// =============================================================================

// RegenOutcome describes what a Regenerate did.
type RegenOutcome struct {
	// Degraded is true when regeneration failed and the failure notice
	// was written into the message instead.
	Degraded bool
	// Err carries the underlying failure when Degraded.
	Err error
}

// Regenerate resends the user message preceding the given bot message
// and swaps the bot message's content in place. It creates no new
// entry and does not tell the backend the prior reply was discarded.
//
// Precondition: the target is a bot message immediately preceded by a
// user message in the rendered sequence. Violations return
// ErrNoPrecedingUser before any network activity.
func (c *Controller) Regenerate(ctx context.Context, botRef string) (RegenOutcome, error) {
	target := c.store.Get(botRef)
	if target == nil || target.IsUser() {
		return RegenOutcome{}, ErrNoPrecedingUser
	}
	prev := c.store.Preceding(botRef)
	if prev == nil || !prev.IsUser() {
		return RegenOutcome{}, ErrNoPrecedingUser
	}

	if err := c.begin(StateSending); err != nil {
		return RegenOutcome{}, err
	}
	defer c.end()

	res, err := c.client.Send(ctx, prev.Content)
	if err != nil {
		c.logf("regenerate failed: %v", err)
		c.store.ReplaceContent(botRef, regenFailureNotice)
		return RegenOutcome{Degraded: true, Err: err}, nil
	}

	c.store.ReplaceContent(botRef, res.Reply)
	return RegenOutcome{}, nil
}

// =============================================================================
// LOCAL-ONLY MESSAGE OPERATIONS
// =============================================================================

// EditMessage overwrites a message's content locally. Nothing is sent
// to the backend; the server transcript is unchanged.
func (c *Controller) EditMessage(ref, newContent string) bool {
	return c.store.ReplaceContent(ref, newContent)
}

// DeleteMessage removes a message locally. Nothing is sent to the
// backend; a reload of the session restores it.
func (c *Controller) DeleteMessage(ref string) bool {
	return c.store.RemoveLocal(ref)
}

// Search applies the sidebar filter term.
func (c *Controller) Search(term string) {
	c.dir.Filter(term, c.store)
}
