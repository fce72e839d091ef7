package engine

import (
	"context"
	"log/slog"
	"strings"
	"time"
)

// AssistantChannel produces the reply stream for a sent message. The engine
// never blocks on it: the host pumps events from the returned channel back
// into Controller.HandleAssistant. Cancelling ctx asks the channel to abort;
// it may still emit events afterwards, which the engine treats as inert.
type AssistantChannel interface {
	Send(ctx context.Context, req SendRequest) (<-chan AssistantEvent, error)
}

// SuggestionSource answers file-mention queries. Command queries are local
// and never go through this interface.
type SuggestionSource interface {
	QueryFiles(ctx context.Context, query string) ([]FileRef, error)
}

// SessionStore persists session metadata and per-session snapshots.
// Implementations must round-trip Snapshot exactly.
type SessionStore interface {
	List() ([]SessionMeta, error)
	Create() (SessionMeta, error)
	Current() (string, error)
	SetCurrent(id string) error
	LoadSnapshot(id string) (Snapshot, error)
	SaveSnapshot(id string, snap Snapshot) error
	Rename(id, title string) error
	Delete(id string) error
	ClearAll() error
}

// FileOpener hands a committed file reference to the host editor.
// Fire-and-forget; no result is consumed.
type FileOpener interface {
	Open(path string)
}

// FileQuery is a debounced file-suggestion request the host must schedule:
// wait Delay, then if the query is still current, run the suggestion source
// and deliver the result with the same sequence token.
type FileQuery struct {
	Seq   uint64
	Query string
	Delay time.Duration
}

// DefaultDebounce bounds the file-search request rate.
const DefaultDebounce = 100 * time.Millisecond

// Controller owns all session-engine state and is the only mutator of it.
// Every method is a state transition on the single event-processing timeline;
// the host must not call methods concurrently.
type Controller struct {
	composer Composer
	picker   Picker
	recon    *Reconciler
	dir      Directory

	store    SessionStore
	files    SuggestionSource
	opener   FileOpener
	log      *slog.Logger
	settings Settings

	caret    int
	seq      uint64
	debounce time.Duration
	notices  []string
}

func New(store SessionStore, files SuggestionSource, opener FileOpener, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		recon:    NewReconciler(),
		store:    store,
		files:    files,
		opener:   opener,
		log:      logger,
		debounce: DefaultDebounce,
	}
}

// SetDebounce overrides the file-query debounce delay.
func (c *Controller) SetDebounce(d time.Duration) {
	if d > 0 {
		c.debounce = d
	}
}

// Bootstrap loads the session list and rehydrates the last active session's
// snapshot, creating a fresh session when the store is empty.
func (c *Controller) Bootstrap() error {
	c.refreshSessions()
	cur, err := c.store.Current()
	if err != nil {
		c.log.Debug("no current session", "err", err)
	}
	if _, ok := c.dir.Find(cur); !ok {
		return c.NewSession()
	}
	snap, err := c.store.LoadSnapshot(cur)
	if err != nil {
		c.notify("could not load session: " + err.Error())
		return c.NewSession()
	}
	c.dir.ActiveID = cur
	c.recon.Load(snap.Messages, snap.Generating)
	c.composer.Reset()
	c.composer.Draft = snap.DraftText
	c.caret = len([]rune(snap.DraftText))
	c.picker.Close()
	return nil
}

// SetDraft is the text-change event: it records the new draft and caret,
// re-runs trigger detection from scratch, and transitions the picker. The
// returned FileQuery, when non-nil, must be scheduled by the host with the
// given debounce delay; a newer SetDraft invalidates it via the sequence
// token.
func (c *Controller) SetDraft(text string, caret int) *FileQuery {
	c.composer.Draft = text
	c.caret = caret

	trig := DetectTrigger(text, caret)
	switch trig.Kind {
	case TriggerNone:
		c.picker.Close()
		return nil

	case TriggerCommand:
		if c.picker.Kind != PickerCommand {
			c.picker.Open(PickerCommand, trig.Query, trig.Start)
		} else {
			c.picker.Query = trig.Query
			c.picker.TriggerStart = trig.Start
		}
		items := FilterCommands(trig.Query)
		cands := make([]Candidate, 0, len(items))
		for _, it := range items {
			cands = append(cands, Candidate{Label: "/" + it.ID, Description: it.Description, Command: it.ID})
		}
		c.picker.SetCandidates(cands)
		return nil

	case TriggerFile:
		sameQuery := c.picker.Kind == PickerFile && c.picker.Query == trig.Query
		if c.picker.Kind != PickerFile {
			c.picker.Open(PickerFile, trig.Query, trig.Start)
		} else {
			// Keep the displayed set while the refined query is in flight.
			c.picker.Query = trig.Query
			c.picker.TriggerStart = trig.Start
		}
		if sameQuery {
			return nil
		}
		c.seq++
		return &FileQuery{Seq: c.seq, Query: trig.Query, Delay: c.debounce}
	}
	return nil
}

// QueryStale reports whether a scheduled file query has been superseded, so
// the host can skip running it when its debounce timer fires.
func (c *Controller) QueryStale(seq uint64) bool {
	return seq != c.seq || c.picker.Kind != PickerFile
}

// DeliverFiles is the suggestion-result event. Results carrying an old
// sequence token are dropped so a slow early response can never paint over a
// fresher one. An error or empty result auto-closes the file picker.
func (c *Controller) DeliverFiles(seq uint64, refs []FileRef, err error) {
	if c.QueryStale(seq) {
		c.log.Debug("dropping stale suggestions", "seq", seq, "want", c.seq)
		return
	}
	if err != nil || len(refs) == 0 {
		if err != nil {
			c.log.Debug("file suggestions failed", "err", err)
		}
		c.picker.Close()
		return
	}
	cands := make([]Candidate, 0, len(refs))
	for _, ref := range refs {
		cands = append(cands, Candidate{Label: ref.Name, Description: ref.Path, File: ref})
	}
	c.picker.SetCandidates(cands)
}

// MoveSelection steps the picker selection, wrapping.
func (c *Controller) MoveSelection(delta int) {
	c.picker.Move(delta)
}

// Commit commits the selected candidate: attach it to the composer, erase the
// trigger substring from the draft, reposition the caret, and close the
// picker. Reports whether anything happened.
func (c *Controller) Commit() bool {
	cand, ok := c.picker.Current()
	if !ok {
		return false
	}
	return c.commit(cand)
}

// CommitIndex commits the candidate at a rendered index, the click-selection
// path. Same effect as Commit for that row.
func (c *Controller) CommitIndex(i int) bool {
	cand, ok := c.picker.At(i)
	if !ok {
		return false
	}
	return c.commit(cand)
}

func (c *Controller) commit(cand Candidate) bool {
	if cand.Command != "" {
		c.composer.AttachCommand(cand.Command)
	} else {
		c.composer.AttachFile(cand.File)
	}
	c.composer.Draft, c.caret = eraseTrigger(c.composer.Draft, c.picker.TriggerStart, c.caret)
	c.picker.Close()
	return true
}

// ClosePicker discards the open picker without touching the draft.
func (c *Controller) ClosePicker() {
	c.picker.Close()
}

// AttachFile adds a file reference directly, bypassing the picker.
func (c *Controller) AttachFile(ref FileRef) { c.composer.AttachFile(ref) }

// AttachCommand adds a command directly, bypassing the picker.
func (c *Controller) AttachCommand(id string) { c.composer.AttachCommand(id) }

func (c *Controller) RemoveFile(i int) { c.composer.RemoveFile(i) }

func (c *Controller) RemoveCommand(i int) { c.composer.RemoveCommand(i) }

// CanSend reports whether Send would accept: some content is staged and no
// turn is outstanding.
func (c *Controller) CanSend() bool {
	return !c.composer.Empty() && !c.recon.Generating
}

// Send commits the composer content as a user message, flips generating on,
// and returns the payload for the assistant channel. A failed gate is a
// silent no-op.
func (c *Controller) Send() (SendRequest, bool) {
	if !c.CanSend() {
		return SendRequest{}, false
	}
	req := c.composer.Take()
	c.caret = 0
	c.picker.Close()
	msg := c.recon.AppendUser(req)
	c.maybeTitle(msg.Text)
	c.persist()
	return req, true
}

// HandleAssistant is the inbound event from the reply stream.
func (c *Controller) HandleAssistant(ev AssistantEvent) {
	notice := c.recon.Apply(ev)
	if notice != "" {
		c.notify(notice)
	}
	if ev.Kind == AssistantFinal || ev.Kind == AssistantError {
		c.persist()
		c.refreshSessions()
	}
}

// Stop cancels the outstanding turn locally. The host is responsible for
// cancelling the channel context; events that still trickle in are dropped.
func (c *Controller) Stop() {
	if !c.recon.Generating {
		return
	}
	c.recon.Stop()
	c.persist()
}

// Regenerate asks for the reply ending at the given assistant message to be
// recomputed. It rebuilds the payload from the nearest preceding user message
// and restarts the turn; history itself is only mutated by the receive events
// that follow. Calling it on a non-assistant index is a guarded no-op.
func (c *Controller) Regenerate(index int) (SendRequest, bool) {
	msg, ok := c.recon.MessageAt(index)
	if !ok || msg.Role != RoleAssistant {
		c.log.Debug("regenerate rejected", "index", index)
		return SendRequest{}, false
	}
	if c.recon.Generating {
		return SendRequest{}, false
	}
	user, ok := c.recon.UserBefore(index)
	if !ok {
		return SendRequest{}, false
	}
	c.recon.BeginTurn()
	return SendRequest{Text: user.Text, Files: user.Files, Commands: user.Commands}, true
}

// Edit signals intent to revise a prior user message. The engine only hands
// the message back; resend semantics belong to the host, which typically
// prefills the composer with it. Non-user indices are a guarded no-op.
func (c *Controller) Edit(index int) (Message, bool) {
	msg, ok := c.recon.MessageAt(index)
	if !ok || msg.Role != RoleUser {
		c.log.Debug("edit rejected", "index", index)
		return Message{}, false
	}
	return msg, true
}

// Sessions returns the filtered, grouped session list.
func (c *Controller) Sessions(query string) []SessionGroup {
	return c.dir.List(query, time.Now())
}

// SwitchTo swaps the active session: the current session's snapshot is saved,
// then history is rebuilt from the store, generating resets, and composer and
// picker state are cleared.
func (c *Controller) SwitchTo(id string) error {
	if id == c.dir.ActiveID {
		return nil
	}
	c.persist()
	snap, err := c.store.LoadSnapshot(id)
	if err != nil {
		c.notify("could not load session: " + err.Error())
		return err
	}
	c.dir.ActiveID = id
	c.recon.Load(snap.Messages, false)
	c.composer.Reset()
	c.caret = 0
	c.picker.Close()
	if err := c.store.SetCurrent(id); err != nil {
		c.log.Debug("set current failed", "err", err)
	}
	return nil
}

// NewSession creates and activates an empty session.
func (c *Controller) NewSession() error {
	meta, err := c.store.Create()
	if err != nil {
		c.notify("could not create session: " + err.Error())
		return err
	}
	c.refreshSessions()
	c.dir.ActiveID = meta.ID
	c.recon.Reset()
	c.composer.Reset()
	c.caret = 0
	c.picker.Close()
	if err := c.store.SetCurrent(meta.ID); err != nil {
		c.log.Debug("set current failed", "err", err)
	}
	return nil
}

// Rename delegates to the store and refreshes the list only on success, so
// the in-memory view never diverges from disk.
func (c *Controller) Rename(id, title string) {
	if err := c.store.Rename(id, title); err != nil {
		c.notify("rename failed: " + err.Error())
		return
	}
	c.refreshSessions()
}

// Delete removes a session. Deleting the active one transitions to a fresh
// session rather than leaving a dangling active id.
func (c *Controller) Delete(id string) {
	if err := c.store.Delete(id); err != nil {
		c.notify("delete failed: " + err.Error())
		return
	}
	c.refreshSessions()
	if id == c.dir.ActiveID {
		_ = c.NewSession()
	}
}

// ClearAll wipes every session and starts over.
func (c *Controller) ClearAll() {
	if err := c.store.ClearAll(); err != nil {
		c.notify("clear failed: " + err.Error())
		return
	}
	c.refreshSessions()
	_ = c.NewSession()
}

// OpenFile hands an attached reference to the host editor.
func (c *Controller) OpenFile(ref FileRef) {
	if c.opener == nil {
		return
	}
	path := ref.FullPath
	if path == "" {
		path = ref.Path
	}
	c.opener.Open(path)
}

// Persist snapshots the active session, as on shutdown.
func (c *Controller) Persist() { c.persist() }

func (c *Controller) persist() {
	if c.dir.ActiveID == "" {
		return
	}
	snap := Snapshot{
		Messages:   c.recon.History,
		DraftText:  c.composer.Draft,
		Generating: c.recon.Generating,
	}
	if err := c.store.SaveSnapshot(c.dir.ActiveID, snap); err != nil {
		c.notify("save failed: " + err.Error())
	}
}

func (c *Controller) refreshSessions() {
	list, err := c.store.List()
	if err != nil {
		c.notify("could not list sessions: " + err.Error())
		return
	}
	c.dir.Replace(list)
}

// maybeTitle defaults an untitled session's title from its first user
// message.
func (c *Controller) maybeTitle(text string) {
	meta, ok := c.dir.Find(c.dir.ActiveID)
	if !ok || strings.TrimSpace(meta.Title) != "" {
		return
	}
	title := strings.TrimSpace(text)
	if title == "" {
		return
	}
	if r := []rune(title); len(r) > 48 {
		title = string(r[:48])
	}
	if i := strings.IndexAny(title, "\n"); i >= 0 {
		title = title[:i]
	}
	c.Rename(c.dir.ActiveID, title)
}

func (c *Controller) notify(msg string) {
	c.log.Warn(msg)
	c.notices = append(c.notices, msg)
}

// Notices drains pending user-facing notifications.
func (c *Controller) Notices() []string {
	out := c.notices
	c.notices = nil
	return out
}

// Settings returns the pass-through host settings.
func (c *Controller) Settings() Settings { return c.settings }

// SetSettings replaces them; the engine itself never interprets the values.
func (c *Controller) SetSettings(s Settings) { c.settings = s }

// Read-only views for rendering.

func (c *Controller) Draft() string { return c.composer.Draft }

func (c *Controller) Caret() int { return c.caret }

func (c *Controller) Files() []FileRef { return c.composer.Files }

func (c *Controller) Commands() []string { return c.composer.Commands }

func (c *Controller) PickerState() Picker { return c.picker }

func (c *Controller) History() []Message { return c.recon.History }

func (c *Controller) Generating() bool { return c.recon.Generating }

func (c *Controller) ActiveSessionID() string { return c.dir.ActiveID }

func (c *Controller) ActiveSession() SessionMeta {
	meta, _ := c.dir.Find(c.dir.ActiveID)
	return meta
}
