package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
)

// ErrUploadFailed aborts a send before any message is committed. The
// typed text stays in the draft so the user can retry.
var ErrUploadFailed = errors.New("image upload failed")

// InferenceError wraps a chat completion failure. The user's message is
// already persisted and mirrored to history when this is returned; only
// the assistant reply is missing.
type InferenceError struct {
	Err error
}

func (e *InferenceError) Error() string {
	return fmt.Sprintf("assistant reply failed: %v", e.Err)
}

func (e *InferenceError) Unwrap() error { return e.Err }

// Controller orchestrates one live conversation: open, send, draft
// edits, archive. Per-session state is IDLE or SENDING; the sending
// guard serializes sends. The UI runs SendMessage off its event loop
// while the view keeps reading Sending and Session, so a mutex guards
// the conversation state and Session hands out snapshots.
//
// The session write and the history upsert are two separate non-atomic
// writes. A crash between them can leave a bound id with no matching
// entry (or vice versa); Archive recreates missing entries, and the
// next send's upsert recreates them under the same id.
type Controller struct {
	sessions *SessionStore
	history  *HistoryStore
	agents   *AgentStore
	chat     ChatClient
	uploader Uploader
	logger   *Logger
	now      func() time.Time

	mu      sync.Mutex
	agent   Agent
	session *LiveSession
	boundID string
	sending bool
}

func NewController(sessions *SessionStore, history *HistoryStore, agents *AgentStore, chat ChatClient, uploader Uploader, logger *Logger) *Controller {
	if logger == nil {
		logger = NewNopLogger()
	}
	return &Controller{
		sessions: sessions,
		history:  history,
		agents:   agents,
		chat:     chat,
		uploader: uploader,
		logger:   logger,
		now:      time.Now,
	}
}

// Open hydrates the live session for agent, seeding a fresh one with
// the agent's instruction prompt when nothing is stored.
func (c *Controller) Open(ctx context.Context, agent Agent, initialDraft string) error {
	sess, boundID, err := c.sessions.Hydrate(ctx, agent.Identity(), SessionSeed{
		SystemPrompt: agent.Prompt,
		InitialDraft: initialDraft,
	})
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.agent = agent
	c.session = sess
	c.boundID = boundID
	c.sending = false
	return nil
}

// Resume replaces the live session for the entry's agent with the
// entry's messages and binds its id, so the conversation continues
// where it left off. The persona is looked up by name so the emoji
// and prompt survive the round trip through history; a deleted
// persona falls back to a bare named agent.
func (c *Controller) Resume(ctx context.Context, entry HistoryEntry) error {
	agent := Agent{Name: entry.AgentName}
	if c.agents != nil {
		if found, err := c.agents.FindAgent(ctx, entry.AgentName); err == nil {
			agent = found
		}
	}
	sess := &LiveSession{Messages: append([]Message{}, entry.Messages...), DraftInput: ""}
	if err := c.sessions.Persist(ctx, agent.Identity(), sess); err != nil {
		return err
	}
	if err := c.sessions.BindHistoryID(ctx, agent.Identity(), entry.ID); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.agent = agent
	c.session = sess
	c.boundID = entry.ID
	c.sending = false
	return nil
}

// Session returns a snapshot of the live session, safe to read while
// a send mutates the original.
func (c *Controller) Session() *LiveSession {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return nil
	}
	return c.session.Clone()
}

// Agent returns the persona this controller is bound to.
func (c *Controller) Agent() Agent {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.agent
}

// Sending reports whether a send is in flight.
func (c *Controller) Sending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sending
}

// BoundHistoryID returns the id of the mirrored history entry, empty
// when the session has not produced one yet.
func (c *Controller) BoundHistoryID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.boundID
}

// SetDraft records a draft-input edit and persists the session.
func (c *Controller) SetDraft(ctx context.Context, text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return errors.New("no open session")
	}
	c.session.DraftInput = text
	return c.sessions.Persist(ctx, c.agent.Identity(), c.session)
}

// SendMessage runs one turn: optional image upload, content encode,
// append, persist, history mirror, inference, reply append, persist.
// Empty text and an in-flight send are no-ops. The user's message is
// persisted before the inference call, so a crash mid-call never loses
// the outgoing turn.
func (c *Controller) SendMessage(ctx context.Context, text, imagePath string) error {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil
	}
	c.mu.Lock()
	if c.session == nil {
		c.mu.Unlock()
		return errors.New("no open session")
	}
	if c.sending {
		c.mu.Unlock()
		return nil
	}
	c.sending = true
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		c.sending = false
		c.mu.Unlock()
	}()

	// An attached image is a hard precondition: no text-only fallback.
	imageURL := ""
	if imagePath != "" {
		url, err := c.uploader.Upload(ctx, imagePath)
		if err != nil || url == "" {
			if err == nil {
				err = errors.New("no url returned")
			}
			c.logger.Error("image upload failed", map[string]interface{}{"error": err.Error()})
			return fmt.Errorf("%w: %v", ErrUploadFailed, err)
		}
		imageURL = url
	}

	c.mu.Lock()
	priorDraft := c.session.DraftInput
	c.session.Messages = append(c.session.Messages, Message{
		Role:    RoleUser,
		Content: EncodeContent(trimmed, imageURL),
	})
	c.session.DraftInput = ""
	if err := c.sessions.Persist(ctx, c.agent.Identity(), c.session); err != nil {
		// Roll the append back so a retry never duplicates the turn,
		// and keep the draft so nothing typed is lost.
		c.session.Messages = c.session.Messages[:len(c.session.Messages)-1]
		c.session.DraftInput = priorDraft
		c.mu.Unlock()
		return err
	}
	c.mirrorToHistory(ctx)
	wire := WireMessages(c.session.Messages)
	c.mu.Unlock()

	reply, err := c.chat.Chat(ctx, wire)
	if err != nil {
		// The user's turn is already committed; only the reply is lost.
		return &InferenceError{Err: err}
	}
	if reply.Role == "" {
		reply.Role = RoleAssistant
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.session.Messages = append(c.session.Messages, reply)
	if err := c.sessions.Persist(ctx, c.agent.Identity(), c.session); err != nil {
		return err
	}
	c.mirrorToHistory(ctx)
	return nil
}

// mirrorToHistory upserts the full message list under the bound id,
// minting and binding a time-based id on the first call. History is a
// mirror of the already-persisted session, so failures here are logged
// rather than failing the send; Archive recovers a missing entry.
// Callers hold c.mu.
func (c *Controller) mirrorToHistory(ctx context.Context) {
	createdAt := c.now()
	if c.boundID == "" {
		id := fmt.Sprintf("%d", c.now().UnixNano())
		if err := c.sessions.BindHistoryID(ctx, c.agent.Identity(), id); err != nil {
			c.logger.Error("failed to bind history id", map[string]interface{}{"error": err.Error()})
			return
		}
		c.boundID = id
	} else if existing, ok, err := c.history.Get(ctx, c.boundID); err == nil && ok {
		createdAt = existing.CreatedAt
	}
	err := c.history.Upsert(ctx, HistoryEntry{
		ID:        c.boundID,
		AgentName: c.agent.Name,
		CreatedAt: createdAt,
		Messages:  append([]Message{}, c.session.Messages...),
	})
	if err != nil {
		c.logger.Error("failed to mirror session to history", map[string]interface{}{
			"id":    c.boundID,
			"error": err.Error(),
		})
	}
}

// Archive finalizes the live session into history and returns a fresh
// session for the same agent. A session with no user/assistant turns
// is treated as a full reset: all history is deleted and the live keys
// are cleared.
func (c *Controller) Archive(ctx context.Context) (*LiveSession, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return nil, errors.New("no open session")
	}

	if !c.session.HasConversation() {
		if err := c.history.DeleteAll(ctx); err != nil {
			return nil, err
		}
		if err := c.sessions.Clear(ctx, c.agent.Identity()); err != nil {
			return nil, err
		}
		c.session = c.freshSession()
		c.boundID = ""
		return c.session.Clone(), nil
	}

	// Make sure the conversation made it into history, covering a send
	// that never completed its history write.
	if c.boundID == "" || !c.historyHas(ctx, c.boundID) {
		if c.boundID == "" {
			c.boundID = fmt.Sprintf("%d", c.now().UnixNano())
		}
		err := c.history.Upsert(ctx, HistoryEntry{
			ID:        c.boundID,
			AgentName: c.agent.Name,
			CreatedAt: c.now(),
			Messages:  append([]Message{}, c.session.Messages...),
		})
		if err != nil {
			return nil, err
		}
	}

	if err := c.sessions.Clear(ctx, c.agent.Identity()); err != nil {
		return nil, err
	}
	c.session = c.freshSession()
	c.boundID = ""
	return c.session.Clone(), nil
}

func (c *Controller) historyHas(ctx context.Context, id string) bool {
	_, ok, err := c.history.Get(ctx, id)
	return err == nil && ok
}

func (c *Controller) freshSession() *LiveSession {
	seed := SessionSeed{}
	if sys, ok := c.session.SystemMessage(); ok {
		seed.SystemPrompt = sys.Content
	} else if c.agent.Prompt != "" {
		seed.SystemPrompt = c.agent.Prompt
	}
	return NewLiveSession(seed)
}
