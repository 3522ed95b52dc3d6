package app

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// Storage layout (string keys, JSON values unless noted):
//
//	CHAT_HISTORY_V1                      -> []HistoryEntry
//	CHAT_SESSION_V1_<agentIdentity>      -> {"messages":[...],"draftInput":""}
//	CHAT_SESSION_V1_<agentIdentity>_ID   -> bound history id (plain string)
const (
	historyKey       = "CHAT_HISTORY_V1"
	sessionKeyPrefix = "CHAT_SESSION_V1_"
)

// SessionStore owns the live (in-progress) conversation for each agent
// identity: hydration on open, full rewrite on every change. Sessions
// are small, so rewriting beats diffing on simplicity.
type SessionStore struct {
	kv     KeyValueStore
	logger *Logger
}

func NewSessionStore(kv KeyValueStore, logger *Logger) *SessionStore {
	if logger == nil {
		logger = NewNopLogger()
	}
	return &SessionStore{kv: kv, logger: logger}
}

func sessionKey(agent AgentIdentity) string {
	return sessionKeyPrefix + string(agent.orDefault())
}

func sessionIDKey(agent AgentIdentity) string {
	return sessionKey(agent) + "_ID"
}

// Hydrate loads the stored session for agent, or seeds a fresh one when
// nothing (or nothing well-formed) is stored. Malformed JSON is logged
// and treated as absent, never surfaced. The second return value is the
// bound history id, empty when unbound.
func (s *SessionStore) Hydrate(ctx context.Context, agent AgentIdentity, seed SessionSeed) (*LiveSession, string, error) {
	raw, ok, err := s.kv.Get(ctx, sessionKey(agent))
	if err != nil {
		return nil, "", fmt.Errorf("read session: %w", err)
	}

	var sess *LiveSession
	if ok {
		var stored LiveSession
		if err := json.Unmarshal([]byte(raw), &stored); err != nil {
			s.logger.Warn("discarding malformed stored session", map[string]interface{}{
				"agent": string(agent.orDefault()),
				"error": err.Error(),
			})
		} else {
			if stored.Messages == nil {
				stored.Messages = []Message{}
			}
			sess = &stored
		}
	}
	if sess == nil {
		sess = NewLiveSession(seed)
	}

	boundID, _, err := s.kv.Get(ctx, sessionIDKey(agent))
	if err != nil {
		return nil, "", fmt.Errorf("read session id: %w", err)
	}
	return sess, strings.TrimSpace(boundID), nil
}

// Persist writes the whole session (messages + draft) for agent.
func (s *SessionStore) Persist(ctx context.Context, agent AgentIdentity, sess *LiveSession) error {
	b, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	if err := s.kv.Set(ctx, sessionKey(agent), string(b)); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}
	return nil
}

// BindHistoryID records the history entry id this live session mirrors to.
func (s *SessionStore) BindHistoryID(ctx context.Context, agent AgentIdentity, id string) error {
	if err := s.kv.Set(ctx, sessionIDKey(agent), id); err != nil {
		return fmt.Errorf("bind history id: %w", err)
	}
	return nil
}

// Clear removes both the session and its bound-id companion key.
func (s *SessionStore) Clear(ctx context.Context, agent AgentIdentity) error {
	if err := s.kv.Delete(ctx, sessionKey(agent)); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	if err := s.kv.Delete(ctx, sessionIDKey(agent)); err != nil {
		return fmt.Errorf("clear session id: %w", err)
	}
	return nil
}
