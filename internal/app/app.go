package app

import (
	"io"
	"os"
	"path/filepath"
)

// Application wires the stores and collaborators for one process.
type Application struct {
	Config   Config
	Logger   *Logger
	KV       KeyValueStore
	Sessions *SessionStore
	History  *HistoryStore
	Agents   *AgentStore
	Chat     ChatClient
	Uploader Uploader
}

// Options tweak wiring for special runs.
type Options struct {
	// Mock swaps the chat and upload collaborators for canned ones, so
	// the app works without API keys.
	Mock bool
	// Ephemeral keeps all state in memory; nothing touches disk.
	Ephemeral bool
}

func NewApplication(cfg Config, opts Options) (*Application, error) {
	logger := NewLogger(DefaultLogWriter())

	var kv KeyValueStore
	if opts.Ephemeral {
		kv = NewMemoryKVStore()
	} else {
		kv = NewFileKVStore(cfg.StorageRoot)
	}

	var chat ChatClient
	var uploader Uploader
	if opts.Mock {
		chat = NewMockChatClient()
		uploader = &MockUploader{}
	} else {
		chat = NewKravixClient(cfg.APIKey, cfg.Model, cfg.BaseURL)
		uploader = NewHTTPUploader(cfg.UploadURL, cfg.UploadAPIKey)
	}

	return &Application{
		Config:   cfg,
		Logger:   logger,
		KV:       kv,
		Sessions: NewSessionStore(kv, logger),
		History:  NewHistoryStore(kv, logger),
		Agents:   NewAgentStore(kv, logger),
		Chat:     chat,
		Uploader: uploader,
	}, nil
}

// NewChatController builds a controller bound to this application's
// stores and collaborators.
func (a *Application) NewChatController() *Controller {
	return NewController(a.Sessions, a.History, a.Agents, a.Chat, a.Uploader, a.Logger)
}

// DefaultLogWriter appends to a log file next to the storage root; the
// terminal itself belongs to the TUI. Falls back to discard if the
// file cannot be opened.
func DefaultLogWriter() io.Writer {
	dir := filepath.Dir(DefaultStorageRoot())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return io.Discard
	}
	f, err := os.OpenFile(filepath.Join(dir, "agent-chat.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return io.Discard
	}
	return f
}
