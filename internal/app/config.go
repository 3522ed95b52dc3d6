package app

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	APIKey       string `yaml:"api_key"`
	BaseURL      string `yaml:"base_url"`
	Model        string `yaml:"model"`
	UploadURL    string `yaml:"upload_url"`
	UploadAPIKey string `yaml:"upload_api_key"`
	StorageRoot  string `yaml:"storage_root"`
	DefaultAgent string `yaml:"default_agent"`
}

func DefaultConfig() Config {
	return Config{
		BaseURL:      "https://kravixstudio.com/api/v1/chat",
		Model:        "gpt-4.1-mini",
		DefaultAgent: string(DefaultAgentIdentity),
	}
}

func DefaultConfigPath() string {
	if base := strings.TrimSpace(os.Getenv("XDG_CONFIG_HOME")); base != "" {
		return filepath.Join(base, "agent-chat", "config.yaml")
	}
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		return filepath.Join(home, ".config", "agent-chat", "config.yaml")
	}
	return filepath.Join(os.TempDir(), "agent-chat", "config.yaml")
}

// LoadConfig reads the yaml config at path, falling back to defaults
// for anything unset. A missing file is not an error. The API keys may
// also come from AGENT_CHAT_API_KEY / AGENT_CHAT_UPLOAD_API_KEY.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return cfg, err
			}
		} else if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, err
		}
	}

	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("AGENT_CHAT_API_KEY")
	}
	if cfg.UploadAPIKey == "" {
		cfg.UploadAPIKey = os.Getenv("AGENT_CHAT_UPLOAD_API_KEY")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://kravixstudio.com/api/v1/chat"
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4.1-mini"
	}
	if cfg.StorageRoot == "" {
		cfg.StorageRoot = DefaultStorageRoot()
	}
	if cfg.DefaultAgent == "" {
		cfg.DefaultAgent = string(DefaultAgentIdentity)
	}
	return cfg, nil
}

func SaveConfig(cfg Config, path string) error {
	if path == "" {
		return errors.New("no path provided for config")
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
