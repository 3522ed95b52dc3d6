package app

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ChatClient is the opaque inference collaborator. A failure is
// surfaced once; no retries happen at this layer.
type ChatClient interface {
	Chat(ctx context.Context, messages []ChatMessage) (Message, error)
}

// ChatMessage is a wire-format turn. Content is either a plain string
// or a []ContentPart for image turns: inference never receives the
// marker-encoded string, only the structured form.
type ChatMessage struct {
	Role    string      `json:"role"`
	Content interface{} `json:"content"`
}

type ContentPart struct {
	Type     string        `json:"type"`
	Text     string        `json:"text,omitempty"`
	ImageURL *ImageURLPart `json:"image_url,omitempty"`
}

type ImageURLPart struct {
	URL string `json:"url"`
}

// WireMessages converts stored messages to the wire format, expanding
// marker-encoded image turns into text + image_url parts.
func WireMessages(messages []Message) []ChatMessage {
	out := make([]ChatMessage, 0, len(messages))
	for _, m := range messages {
		text, imageURL := DecodeContent(m.Content)
		if imageURL == "" {
			out = append(out, ChatMessage{Role: m.Role, Content: m.Content})
			continue
		}
		parts := []ContentPart{}
		if text != "" {
			parts = append(parts, ContentPart{Type: "text", Text: text})
		}
		parts = append(parts, ContentPart{Type: "image_url", ImageURL: &ImageURLPart{URL: imageURL}})
		out = append(out, ChatMessage{Role: m.Role, Content: parts})
	}
	return out
}

// KravixClient talks to the chat completion endpoint used by the app.
type KravixClient struct {
	APIKey  string
	Model   string
	BaseURL string
	HTTP    *http.Client
}

type kravixRequest struct {
	Message    []ChatMessage `json:"message"`
	AIModel    string        `json:"aiModel"`
	OutputType string        `json:"outputType"`
}

type kravixResponse struct {
	AIResponse json.RawMessage `json:"aiResponse"`
	Error      string          `json:"error,omitempty"`
	Message    string          `json:"message,omitempty"`
}

func NewKravixClient(apiKey, model, baseURL string) *KravixClient {
	if model == "" {
		model = "gpt-4.1-mini"
	}
	if baseURL == "" {
		baseURL = "https://kravixstudio.com/api/v1/chat"
	}
	return &KravixClient{
		APIKey:  apiKey,
		Model:   model,
		BaseURL: baseURL,
		HTTP:    &http.Client{Timeout: 120 * time.Second},
	}
}

func (c *KravixClient) Chat(ctx context.Context, messages []ChatMessage) (Message, error) {
	if c.APIKey == "" {
		return Message{}, errors.New("chat api key is required")
	}
	payload, err := json.Marshal(kravixRequest{
		Message:    messages,
		AIModel:    c.Model,
		OutputType: "text",
	})
	if err != nil {
		return Message{}, err
	}
	request, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL, bytes.NewReader(payload))
	if err != nil {
		return Message{}, err
	}
	request.Header.Set("Content-Type", "application/json")
	request.Header.Set("Authorization", "Bearer "+c.APIKey)

	resp, err := c.HTTP.Do(request)
	if err != nil {
		return Message{}, fmt.Errorf("chat request failed: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return Message{}, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode >= 300 {
		var errResp kravixResponse
		_ = json.Unmarshal(bodyBytes, &errResp)
		if errResp.Message != "" {
			return Message{}, fmt.Errorf("chat api error: status %d, message: %s", resp.StatusCode, errResp.Message)
		}
		if errResp.Error != "" {
			return Message{}, fmt.Errorf("chat api error: status %d, error: %s", resp.StatusCode, errResp.Error)
		}
		return Message{}, fmt.Errorf("chat api error: status %d, response: %s", resp.StatusCode, string(bodyBytes))
	}

	var parsed kravixResponse
	if err := json.Unmarshal(bodyBytes, &parsed); err != nil {
		return Message{}, fmt.Errorf("malformed chat response: %w", err)
	}
	return decodeAIResponse(parsed.AIResponse)
}

// decodeAIResponse accepts both shapes the endpoint produces: a bare
// string, or a {role, content} object.
func decodeAIResponse(raw json.RawMessage) (Message, error) {
	if len(raw) == 0 {
		return Message{}, errors.New("empty chat response")
	}
	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		if text == "" {
			return Message{}, errors.New("empty chat response")
		}
		return Message{Role: RoleAssistant, Content: text}, nil
	}
	var msg Message
	if err := json.Unmarshal(raw, &msg); err != nil {
		return Message{}, fmt.Errorf("malformed chat response: %w", err)
	}
	if msg.Content == "" {
		return Message{}, errors.New("empty chat response")
	}
	if msg.Role == "" {
		msg.Role = RoleAssistant
	}
	return msg, nil
}
