package engine

import "time"

// Reconciler owns the append-only message history for the active session and
// the generating flag. Incoming assistant events either open a new assistant
// message or replace the text of the current streaming target; every other
// message is immutable once appended.
type Reconciler struct {
	History    []Message
	Generating bool

	nextIndex int
	target    int // position in History of the open streaming target, -1 when sealed
	stopped   bool
}

func NewReconciler() *Reconciler {
	return &Reconciler{target: -1}
}

// AppendUser commits a user message, assigns the next index, and starts a
// turn: generating goes true and there is no streaming target yet.
func (r *Reconciler) AppendUser(req SendRequest) Message {
	msg := Message{
		Index:    r.nextIndex,
		Role:     RoleUser,
		Text:     req.Text,
		Files:    req.Files,
		Commands: req.Commands,
		SentAt:   time.Now(),
	}
	r.nextIndex++
	r.History = append(r.History, msg)
	r.Generating = true
	r.target = -1
	r.stopped = false
	return msg
}

// BeginTurn restarts generation without appending a user message, as when a
// prior reply is regenerated.
func (r *Reconciler) BeginTurn() {
	r.Generating = true
	r.target = -1
	r.stopped = false
}

// Apply routes one assistant event into the history. Chunk and Final carry
// cumulative text: a chunk with no open target appends a new assistant
// message and makes it the target; with an open target it replaces the
// target's text. Final additionally seals the target and clears generating.
// Error clears generating and returns the message for the user-facing error
// channel without touching history. Events arriving after Stop are inert and
// never resurrect the generating flag.
func (r *Reconciler) Apply(ev AssistantEvent) (notice string) {
	switch ev.Kind {
	case AssistantChunk, AssistantFinal:
		if r.stopped {
			return ""
		}
		if r.target < 0 {
			r.History = append(r.History, Message{
				Index:  r.nextIndex,
				Role:   RoleAssistant,
				Text:   ev.Text,
				SentAt: time.Now(),
			})
			r.nextIndex++
			r.target = len(r.History) - 1
		} else {
			r.History[r.target].Text = ev.Text
		}
		if ev.Kind == AssistantFinal {
			r.Generating = false
			r.target = -1
		}
	case AssistantError:
		r.Generating = false
		r.target = -1
		if r.stopped {
			return ""
		}
		return ev.Err
	}
	return ""
}

// Stop flips generating off immediately. The last received text stands; any
// straggler events from the aborted turn are dropped by Apply.
func (r *Reconciler) Stop() {
	r.Generating = false
	r.target = -1
	r.stopped = true
}

// MessageAt finds a message by its stable index.
func (r *Reconciler) MessageAt(index int) (Message, bool) {
	for _, m := range r.History {
		if m.Index == index {
			return m, true
		}
	}
	return Message{}, false
}

// UserBefore returns the nearest user message at or before the message with
// the given stable index, used to rebuild the payload for a regenerate.
func (r *Reconciler) UserBefore(index int) (Message, bool) {
	for i := len(r.History) - 1; i >= 0; i-- {
		m := r.History[i]
		if m.Index > index {
			continue
		}
		if m.Role == RoleUser {
			return m, true
		}
	}
	return Message{}, false
}

// Load replaces the history wholesale from a persisted snapshot, as on
// session switch or view reload. Index assignment continues after the
// highest index seen so indices are never reused.
func (r *Reconciler) Load(messages []Message, generating bool) {
	r.History = append([]Message(nil), messages...)
	r.Generating = generating
	r.target = -1
	r.stopped = false
	r.nextIndex = 0
	for _, m := range r.History {
		if m.Index >= r.nextIndex {
			r.nextIndex = m.Index + 1
		}
	}
}

func (r *Reconciler) Reset() {
	r.Load(nil, false)
}
