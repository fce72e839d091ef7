package engine

import "time"

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// FileRef identifies a workspace file or folder attached to a message.
// Path is workspace-relative and is the identity used for de-duplication;
// FullPath, when known, is absolute and used for opening in the editor.
type FileRef struct {
	Path     string `json:"path"`
	FullPath string `json:"full_path,omitempty"`
	Name     string `json:"name"`
	IsFolder bool   `json:"is_folder,omitempty"`
}

// Message is one committed entry in a session's history. Index is stable and
// monotonically assigned within a session; it is never reused. A message is
// immutable once committed, with one exception: the assistant message that is
// the current streaming target has its Text replaced wholesale on each
// incoming chunk until the turn is sealed.
type Message struct {
	Index    int       `json:"index"`
	Role     Role      `json:"role"`
	Text     string    `json:"text"`
	Files    []FileRef `json:"files,omitempty"`
	Commands []string  `json:"commands,omitempty"`
	SentAt   time.Time `json:"sent_at"`
}

// Snapshot is the persisted point-in-time state of one session. It must
// round-trip through every SessionStore implementation unchanged.
type Snapshot struct {
	Messages   []Message `json:"messages"`
	DraftText  string    `json:"draft_text"`
	Generating bool      `json:"generating"`
}

// SessionMeta is the directory's view of a session: metadata only, no bodies.
type SessionMeta struct {
	ID        string    `json:"id"`
	Title     string    `json:"title,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Settings are host-level preferences the engine passes through untouched.
type Settings struct {
	CustomInstructions string `json:"custom_instructions" yaml:"custom_instructions"`
	AutoContext        bool   `json:"auto_context" yaml:"auto_context"`
}

// SendRequest is the outgoing payload handed to the assistant channel.
type SendRequest struct {
	Text     string
	Files    []FileRef
	Commands []string
}

type AssistantEventKind int

const (
	AssistantChunk AssistantEventKind = iota
	AssistantFinal
	AssistantError
)

// AssistantEvent is one inbound event from the assistant channel. Chunk and
// Final carry the complete cumulative text of the reply so far, not a delta.
type AssistantEvent struct {
	Kind AssistantEventKind
	Text string
	Err  string
}
