// Package config loads planboard configuration.
//
// Values are layered: defaults, then the TOML file, then a .env file, then
// the process environment. Command-line flags are applied by the commands.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Config holds all planboard configuration.
type Config struct {
	Server  ServerConfig  `toml:"server"`
	Client  ClientConfig  `toml:"client"`
	Advisor AdvisorConfig `toml:"advisor"`
	Log     LogConfig     `toml:"log"`
}

// ServerConfig configures cmd/server.
type ServerConfig struct {
	Addr string `toml:"addr"`
	// DBPath is the SQLite file, used unless DatabaseURL is set.
	DBPath      string `toml:"db_path"`
	DatabaseURL string `toml:"database_url,omitempty"`
	// OriginPatterns are the browser origins allowed on the websocket.
	OriginPatterns []string `toml:"origin_patterns,omitempty"`
	// Password or PasswordHash (bcrypt) enables the login gate.
	Password     string        `toml:"password,omitempty"`
	PasswordHash string        `toml:"password_hash,omitempty"`
	JWTSecret    string        `toml:"jwt_secret,omitempty"`
	TokenTTL     time.Duration `toml:"token_ttl"`
}

// ClientConfig configures cmd/planner.
type ClientConfig struct {
	ServerURL    string        `toml:"server_url"`
	Path         string        `toml:"path"`
	Token        string        `toml:"token,omitempty"`
	Debounce     time.Duration `toml:"debounce"`
	EchoStrategy string        `toml:"echo_strategy"`
	// MirrorFile is the local JSON file `planner sync` keeps in step.
	MirrorFile string `toml:"mirror_file"`
}

// AdvisorConfig configures the AI advisor.
type AdvisorConfig struct {
	Provider        string `toml:"provider,omitempty"`
	GeminiAPIKey    string `toml:"gemini_api_key,omitempty"`
	GeminiModel     string `toml:"gemini_model,omitempty"`
	AnthropicAPIKey string `toml:"anthropic_api_key,omitempty"`
	AnthropicModel  string `toml:"anthropic_model,omitempty"`
	EventDate       string `toml:"event_date"`
	Location        string `toml:"location"`
}

// LogConfig configures pkg/logging.
type LogConfig struct {
	Level string `toml:"level"`
	// File, when set, receives JSON logs with size-based rotation.
	File       string `toml:"file,omitempty"`
	MaxSizeMB  int    `toml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups"`
}

const eventDateLayout = "2006-01-02"

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Addr:     ":8080",
			DBPath:   "./data/planboard.db",
			TokenTTL: 7 * 24 * time.Hour,
		},
		Client: ClientConfig{
			ServerURL:    "http://localhost:8080",
			Path:         "wedding_data_v1",
			Debounce:     1500 * time.Millisecond,
			EchoStrategy: "token",
			MirrorFile:   "planboard.json",
		},
		Advisor: AdvisorConfig{
			EventDate: "2026-10-10",
			Location:  "Bodrum, Turkey",
		},
		Log: LogConfig{
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
	}
}

// ConfigDir returns the XDG-compliant config directory.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "planboard")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "planboard")
}

// ConfigPath returns the config file path, honoring PLANBOARD_CONFIG.
func ConfigPath() string {
	if p := os.Getenv("PLANBOARD_CONFIG"); p != "" {
		return p
	}
	return filepath.Join(ConfigDir(), "config.toml")
}

// Load reads the config file, the .env file and the environment.
// A missing default config file is not an error; a missing PLANBOARD_CONFIG is.
func Load() (Config, error) {
	cfg := DefaultConfig()

	path := ConfigPath()
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && os.Getenv("PLANBOARD_CONFIG") == "":
	default:
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	envFile := os.Getenv("PLANBOARD_ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	dotenv, err := godotenv.Read(envFile)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return cfg, fmt.Errorf("failed to read %s: %w", envFile, err)
	}

	cfg.applyEnv(func(key string) string {
		if v := os.Getenv(key); v != "" {
			return v
		}
		return dotenv[key]
	})

	if cfg.Client.Token == "" {
		cfg.Client.Token, err = LoadToken()
		if err != nil {
			return cfg, err
		}
	}

	return cfg, cfg.Validate()
}

func (c *Config) applyEnv(getenv func(string) string) {
	setString := func(dst *string, keys ...string) {
		for _, k := range keys {
			if v := getenv(k); v != "" {
				*dst = v
				return
			}
		}
	}

	setString(&c.Server.Addr, "PLANBOARD_ADDR")
	setString(&c.Server.DBPath, "DB_PATH")
	setString(&c.Server.DatabaseURL, "DATABASE_URL")
	setString(&c.Server.Password, "PLANBOARD_PASSWORD")
	setString(&c.Server.PasswordHash, "PLANBOARD_PASSWORD_HASH")
	setString(&c.Server.JWTSecret, "PLANBOARD_JWT_SECRET", "JWT_SECRET")
	if v := getenv("PLANBOARD_ORIGINS"); v != "" {
		c.Server.OriginPatterns = strings.Split(v, ",")
	}

	setString(&c.Client.ServerURL, "PLANBOARD_SERVER_URL")
	setString(&c.Client.Path, "PLANBOARD_PATH")
	setString(&c.Client.Token, "PLANBOARD_TOKEN")
	setString(&c.Client.EchoStrategy, "PLANBOARD_ECHO_STRATEGY")
	setString(&c.Client.MirrorFile, "PLANBOARD_MIRROR_FILE")
	if v := getenv("PLANBOARD_DEBOUNCE"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.Client.Debounce = d
		}
	}

	setString(&c.Advisor.Provider, "PLANBOARD_ADVISOR")
	setString(&c.Advisor.GeminiAPIKey, "GEMINI_API_KEY", "API_KEY")
	setString(&c.Advisor.GeminiModel, "GEMINI_MODEL")
	setString(&c.Advisor.AnthropicAPIKey, "ANTHROPIC_API_KEY")
	setString(&c.Advisor.AnthropicModel, "ANTHROPIC_MODEL")
	setString(&c.Advisor.EventDate, "PLANBOARD_EVENT_DATE")

	setString(&c.Log.Level, "LOG_LEVEL")
	setString(&c.Log.File, "PLANBOARD_LOG_FILE")
}

// Validate checks values that cannot be defaulted.
func (c Config) Validate() error {
	if _, err := c.Advisor.EventTime(); err != nil {
		return err
	}
	if c.Client.Debounce < 0 {
		return fmt.Errorf("debounce must not be negative: %s", c.Client.Debounce)
	}
	switch c.Client.EchoStrategy {
	case "", "token", "window":
	default:
		return fmt.Errorf("unknown echo strategy %q", c.Client.EchoStrategy)
	}
	return nil
}

// EventTime parses EventDate.
func (a AdvisorConfig) EventTime() (time.Time, error) {
	t, err := time.ParseInLocation(eventDateLayout, a.EventDate, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid event_date %q: %w", a.EventDate, err)
	}
	return t, nil
}

// TokenPath is where `planner login` stores the session token.
func TokenPath() string {
	return filepath.Join(ConfigDir(), "token")
}

// SaveToken stores a session token for later commands.
func SaveToken(token string) error {
	if err := os.MkdirAll(ConfigDir(), 0o700); err != nil {
		return fmt.Errorf("failed to create config dir: %w", err)
	}
	if err := os.WriteFile(TokenPath(), []byte(token+"\n"), 0o600); err != nil {
		return fmt.Errorf("failed to write token: %w", err)
	}
	return nil
}

// LoadToken returns the stored session token, or "" if there is none.
func LoadToken() (string, error) {
	data, err := os.ReadFile(TokenPath())
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read token: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}
