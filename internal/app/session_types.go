package app

import "time"

// Role of a chat message author.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single conversation turn. Content is the codec-encoded
// form: plain text, or text with a trailing image marker (see content.go).
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// LiveSession is the in-progress conversation for one agent identity.
// It is persisted wholesale on every mutation, draft input included.
type LiveSession struct {
	Messages   []Message `json:"messages"`
	DraftInput string    `json:"draftInput"`
}

// HistoryEntry is a durable snapshot of a conversation, addressable by ID.
type HistoryEntry struct {
	ID        string    `json:"id"`
	AgentName string    `json:"agentName,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	Messages  []Message `json:"messages"`
}

// AgentIdentity keys a live session. It is always passed explicitly;
// an empty identity falls back to DefaultAgentIdentity.
type AgentIdentity string

const DefaultAgentIdentity AgentIdentity = "Chat"

func (a AgentIdentity) orDefault() AgentIdentity {
	if a == "" {
		return DefaultAgentIdentity
	}
	return a
}

// Agent is an assistant persona: a display name, an emoji and the
// instruction prompt seeded as the session's system message.
type Agent struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Emoji  string `json:"emoji,omitempty"`
	Prompt string `json:"prompt"`
}

// Identity returns the storage identity for this agent.
func (a Agent) Identity() AgentIdentity {
	if a.Name == "" {
		return DefaultAgentIdentity
	}
	return AgentIdentity(a.Name)
}

// SessionSeed carries the values used when no stored session exists.
type SessionSeed struct {
	SystemPrompt string
	InitialDraft string
}

// NewLiveSession builds a fresh session from a seed. The system message
// is omitted when the seed has no prompt.
func NewLiveSession(seed SessionSeed) *LiveSession {
	sess := &LiveSession{
		Messages:   []Message{},
		DraftInput: seed.InitialDraft,
	}
	if seed.SystemPrompt != "" {
		sess.Messages = append(sess.Messages, Message{Role: RoleSystem, Content: seed.SystemPrompt})
	}
	return sess
}

// Clone returns a deep copy of the session.
func (s *LiveSession) Clone() *LiveSession {
	out := &LiveSession{
		Messages:   make([]Message, len(s.Messages)),
		DraftInput: s.DraftInput,
	}
	copy(out.Messages, s.Messages)
	return out
}

// SystemMessage returns the leading system message, if any.
func (s *LiveSession) SystemMessage() (Message, bool) {
	if len(s.Messages) > 0 && s.Messages[0].Role == RoleSystem {
		return s.Messages[0], true
	}
	return Message{}, false
}

// HasConversation reports whether the session holds any non-system turns.
func (s *LiveSession) HasConversation() bool {
	for _, m := range s.Messages {
		if m.Role != RoleSystem {
			return true
		}
	}
	return false
}
