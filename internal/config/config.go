// Package config loads the persisted TOML config and applies environment
// and command-line overrides.
package config

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Backend identities recognized in config.
const (
	BackendAnthropic = "anthropic"
	BackendOpenAI    = "openai"
	BackendOllama    = "ollama"
)

// Embedding selects the engine used to build the semantic search index.
// An empty endpoint and model disables embeddings; search then falls back
// to fuzzy matching.
type Embedding struct {
	Endpoint string `toml:"endpoint"`
	Model    string `toml:"model"`
}

// Config is the only persisted config file schema.
type Config struct {
	Backend               string    `toml:"backend"`
	Model                 string    `toml:"model"`
	BaseURL               string    `toml:"base_url"`
	Token                 string    `toml:"token"`
	RequestTimeoutSeconds int       `toml:"request_timeout_seconds"`
	MaxRetries            int       `toml:"max_retries"`
	MaxTurns              int       `toml:"max_turns"`
	DBPath                string    `toml:"db_path"`
	ListenAddr            string    `toml:"listen_addr"`
	LogPath               string    `toml:"log_path"`
	Embedding             Embedding `toml:"embedding"`
	Source                string    `toml:"-"`
}

func Default() Config {
	return Config{
		Backend:               BackendOllama,
		Model:                 "llama3",
		BaseURL:               "http://localhost:11434",
		RequestTimeoutSeconds: 120,
		MaxRetries:            3,
		MaxTurns:              10,
		DBPath:                "cafe.db",
		ListenAddr:            ":8080",
	}
}

func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".meeple", "config.toml")
}

func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		path = DefaultPath()
	}
	if path == "" {
		return cfg, errors.New("config path is empty and $HOME is not set")
	}
	cfg.Source = path

	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return applyEnv(cfg), nil
		}
		return cfg, err
	}

	if err := toml.Unmarshal(content, &cfg); err != nil {
		return cfg, err
	}
	return applyEnv(cfg), nil
}

// RequestTimeout converts the configured seconds into a duration; zero or
// negative values fall back to the default.
func (c Config) RequestTimeout() time.Duration {
	if c.RequestTimeoutSeconds <= 0 {
		return 120 * time.Second
	}
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

func applyEnv(cfg Config) Config {
	if env := strings.TrimSpace(os.Getenv("MEEPLE_BACKEND")); env != "" {
		cfg.Backend = env
	}
	if env := strings.TrimSpace(os.Getenv("MEEPLE_MODEL")); env != "" {
		cfg.Model = env
	}
	if env := strings.TrimSpace(os.Getenv("MEEPLE_BASE_URL")); env != "" {
		cfg.BaseURL = env
	}
	if env := strings.TrimSpace(os.Getenv("MEEPLE_TOKEN")); env != "" {
		cfg.Token = env
	}
	if env := strings.TrimSpace(os.Getenv("MEEPLE_DB_PATH")); env != "" {
		cfg.DBPath = env
	}
	if env := strings.TrimSpace(os.Getenv("MEEPLE_LISTEN_ADDR")); env != "" {
		cfg.ListenAddr = env
	}
	if env := strings.TrimSpace(os.Getenv("MEEPLE_LOG_PATH")); env != "" {
		cfg.LogPath = env
	}
	if env := strings.TrimSpace(os.Getenv("MEEPLE_EMBEDDING_ENDPOINT")); env != "" {
		cfg.Embedding.Endpoint = env
	}
	if env := strings.TrimSpace(os.Getenv("MEEPLE_EMBEDDING_MODEL")); env != "" {
		cfg.Embedding.Model = env
	}
	if n, ok := intEnv("MEEPLE_MAX_RETRIES"); ok {
		cfg.MaxRetries = n
	}
	if n, ok := intEnv("MEEPLE_MAX_TURNS"); ok {
		cfg.MaxTurns = n
	}
	if n, ok := intEnv("MEEPLE_REQUEST_TIMEOUT_SECONDS"); ok {
		cfg.RequestTimeoutSeconds = n
	}
	if cfg.Token == "" {
		switch cfg.Backend {
		case BackendAnthropic:
			cfg.Token = strings.TrimSpace(os.Getenv("ANTHROPIC_AUTH_TOKEN"))
		case BackendOpenAI:
			cfg.Token = strings.TrimSpace(os.Getenv("OPENAI_API_KEY"))
		}
	}
	return cfg
}

func intEnv(name string) (int, bool) {
	env := strings.TrimSpace(os.Getenv(name))
	if env == "" {
		return 0, false
	}
	n, err := strconv.Atoi(env)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// ApplyKVOverrides applies free-form -c key=value overrides.
func ApplyKVOverrides(cfg Config, overrides []string) Config {
	if len(overrides) == 0 {
		return cfg
	}
	for _, raw := range overrides {
		parts := strings.SplitN(raw, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		val := strings.TrimSpace(parts[1])
		switch key {
		case "backend":
			cfg.Backend = val
		case "model":
			cfg.Model = val
		case "base_url":
			cfg.BaseURL = val
		case "token":
			cfg.Token = val
		case "db_path":
			cfg.DBPath = val
		case "listen_addr":
			cfg.ListenAddr = val
		case "log_path":
			cfg.LogPath = val
		case "embedding.endpoint":
			cfg.Embedding.Endpoint = val
		case "embedding.model":
			cfg.Embedding.Model = val
		case "max_retries":
			if n, err := strconv.Atoi(val); err == nil && n > 0 {
				cfg.MaxRetries = n
			}
		case "max_turns":
			if n, err := strconv.Atoi(val); err == nil && n > 0 {
				cfg.MaxTurns = n
			}
		case "request_timeout_seconds":
			if n, err := strconv.Atoi(val); err == nil && n > 0 {
				cfg.RequestTimeoutSeconds = n
			}
		}
	}
	return cfg
}
