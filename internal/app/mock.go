package app

import (
	"context"
	"fmt"
	"strings"
)

// MockChatClient simulates the chat completion endpoint for keyless
// runs and tests. Replies are keyword-driven and deterministic.
type MockChatClient struct {
	Calls int
	// Reply, when set, overrides the generated response.
	Reply string
	// Err, when set, is returned instead of a reply.
	Err error
}

func NewMockChatClient() *MockChatClient {
	return &MockChatClient{}
}

func (c *MockChatClient) Chat(ctx context.Context, messages []ChatMessage) (Message, error) {
	c.Calls++
	if c.Err != nil {
		return Message{}, c.Err
	}
	if c.Reply != "" {
		return Message{Role: RoleAssistant, Content: c.Reply}, nil
	}
	return Message{Role: RoleAssistant, Content: c.generateResponse(messages)}, nil
}

func (c *MockChatClient) generateResponse(messages []ChatMessage) string {
	last := ""
	hasImage := false
	for _, m := range messages {
		if m.Role != RoleUser {
			continue
		}
		switch content := m.Content.(type) {
		case string:
			last = content
			hasImage = false
		case []ContentPart:
			last = ""
			hasImage = false
			for _, p := range content {
				if p.Type == "text" {
					last = p.Text
				}
				if p.Type == "image_url" {
					hasImage = true
				}
			}
		}
	}

	lower := strings.ToLower(last)
	switch {
	case hasImage:
		return "I looked at the image you sent. " + fmt.Sprintf("You asked: %q", last)
	case strings.Contains(lower, "hello"), strings.Contains(lower, "hi"):
		return "Hello! How can I help you today?"
	case strings.Contains(lower, "thank"):
		return "You're welcome!"
	case strings.HasSuffix(strings.TrimSpace(last), "?"):
		return "Good question. Here's what I think: it depends on the details, but I'd start simple."
	default:
		return fmt.Sprintf("You said: %q. Tell me more.", last)
	}
}

// MockUploader returns a canned URL, or fails when Err is set.
type MockUploader struct {
	URL   string
	Err   error
	Calls int
}

func (u *MockUploader) Upload(ctx context.Context, path string) (string, error) {
	u.Calls++
	if u.Err != nil {
		return "", u.Err
	}
	if u.URL != "" {
		return u.URL, nil
	}
	return "https://images.example.com/mock/" + strings.TrimLeft(path, "/"), nil
}
