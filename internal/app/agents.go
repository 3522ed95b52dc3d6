package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

const userAgentsKey = "USER_AGENTS_V1"

// FeaturedAgents is the built-in roster shown alongside user-created
// agents. Names double as session identities.
var FeaturedAgents = []Agent{
	{ID: "featured-chat", Name: "Chat", Emoji: "💬", Prompt: "You are a friendly, concise general-purpose assistant."},
	{ID: "featured-studymate", Name: "StudyMate", Emoji: "📚", Prompt: "You are a patient study tutor. Explain step by step and quiz the user when asked."},
	{ID: "featured-codebuddy", Name: "CodeBuddy", Emoji: "💻", Prompt: "You are a pragmatic programming assistant. Prefer small working examples."},
	{ID: "featured-chef", Name: "ChefMate", Emoji: "🍳", Prompt: "You are a home-cooking assistant. Suggest recipes from available ingredients."},
}

// AgentStore persists user-created agents under USER_AGENTS_V1 in the
// same key-value store the sessions live in.
type AgentStore struct {
	kv     KeyValueStore
	logger *Logger
}

func NewAgentStore(kv KeyValueStore, logger *Logger) *AgentStore {
	if logger == nil {
		logger = NewNopLogger()
	}
	return &AgentStore{kv: kv, logger: logger}
}

func (s *AgentStore) load(ctx context.Context) ([]Agent, error) {
	raw, ok, err := s.kv.Get(ctx, userAgentsKey)
	if err != nil {
		return nil, fmt.Errorf("read agents: %w", err)
	}
	if !ok {
		return []Agent{}, nil
	}
	var agents []Agent
	if err := json.Unmarshal([]byte(raw), &agents); err != nil {
		s.logger.Warn("discarding malformed stored agents", map[string]interface{}{
			"error": err.Error(),
		})
		return []Agent{}, nil
	}
	if agents == nil {
		agents = []Agent{}
	}
	return agents, nil
}

func (s *AgentStore) save(ctx context.Context, agents []Agent) error {
	b, err := json.Marshal(agents)
	if err != nil {
		return err
	}
	return s.kv.Set(ctx, userAgentsKey, string(b))
}

// Create validates and stores a new user agent, returning it with a
// fresh id.
func (s *AgentStore) Create(ctx context.Context, name, emoji, prompt string) (Agent, error) {
	name = strings.TrimSpace(name)
	prompt = strings.TrimSpace(prompt)
	if name == "" || prompt == "" {
		return Agent{}, errors.New("agent name and prompt are required")
	}
	agents, err := s.load(ctx)
	if err != nil {
		return Agent{}, err
	}
	for _, a := range agents {
		if strings.EqualFold(a.Name, name) {
			return Agent{}, fmt.Errorf("agent %q already exists", name)
		}
	}
	agent := Agent{
		ID:     uuid.NewString(),
		Name:   name,
		Emoji:  emoji,
		Prompt: prompt,
	}
	agents = append(agents, agent)
	if err := s.save(ctx, agents); err != nil {
		return Agent{}, err
	}
	return agent, nil
}

// List returns the user-created agents in stored order.
func (s *AgentStore) List(ctx context.Context) ([]Agent, error) {
	return s.load(ctx)
}

// Delete removes the agent with the given id; a missing id is a no-op.
func (s *AgentStore) Delete(ctx context.Context, id string) error {
	agents, err := s.load(ctx)
	if err != nil {
		return err
	}
	next := agents[:0]
	for _, a := range agents {
		if a.ID != id {
			next = append(next, a)
		}
	}
	return s.save(ctx, next)
}

// FindAgent resolves a name against user-created agents first, then the
// featured roster. An empty name resolves to the default agent.
func (s *AgentStore) FindAgent(ctx context.Context, name string) (Agent, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = string(DefaultAgentIdentity)
	}
	agents, err := s.load(ctx)
	if err != nil {
		return Agent{}, err
	}
	for _, a := range agents {
		if strings.EqualFold(a.Name, name) {
			return a, nil
		}
	}
	for _, a := range FeaturedAgents {
		if strings.EqualFold(a.Name, name) {
			return a, nil
		}
	}
	return Agent{}, fmt.Errorf("unknown agent %q", name)
}
