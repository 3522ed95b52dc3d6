package app

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.BaseURL != "https://kravixstudio.com/api/v1/chat" {
		t.Fatalf("base url default mismatch: %q", cfg.BaseURL)
	}
	if cfg.Model != "gpt-4.1-mini" {
		t.Fatalf("model default mismatch: %q", cfg.Model)
	}
	if cfg.DefaultAgent != string(DefaultAgentIdentity) {
		t.Fatalf("default agent mismatch: %q", cfg.DefaultAgent)
	}
	if cfg.StorageRoot == "" {
		t.Fatalf("expected storage root default")
	}
}

func TestLoadConfigReadsYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := "api_key: abc\nmodel: gpt-4.1\nupload_url: https://img.example.com/upload\nstorage_root: /tmp/x\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.APIKey != "abc" || cfg.Model != "gpt-4.1" {
		t.Fatalf("yaml values not loaded: %#v", cfg)
	}
	if cfg.UploadURL != "https://img.example.com/upload" || cfg.StorageRoot != "/tmp/x" {
		t.Fatalf("yaml values not loaded: %#v", cfg)
	}
}

func TestLoadConfigAPIKeyFromEnv(t *testing.T) {
	t.Setenv("AGENT_CHAT_API_KEY", "env-key")
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.APIKey != "env-key" {
		t.Fatalf("expected env key fallback, got %q", cfg.APIKey)
	}
}

func TestSaveConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.yaml")
	in := DefaultConfig()
	in.APIKey = "saved"
	if err := SaveConfig(in, path); err != nil {
		t.Fatalf("save: %v", err)
	}

	out, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if out.APIKey != "saved" {
		t.Fatalf("round trip mismatch: %#v", out)
	}
}
