package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env             string           `yaml:"env"`
	LogLevel        string           `yaml:"log_level"`
	DatabasePath    string           `yaml:"database_path"`
	ServerPort      int              `yaml:"server_port"`
	SessionLifetime time.Duration    `yaml:"session_lifetime"`
	Seed            *uint64          `yaml:"seed"`
	Commentary      CommentaryConfig `yaml:"commentary"`
	OAuth           OAuthConfig      `yaml:"oauth"`
}

// CommentaryConfig points at the text generation endpoint. An empty URL disables commentary.
type CommentaryConfig struct {
	URL      string        `yaml:"url"`
	APIKey   string        `yaml:"api_key"`
	Interval time.Duration `yaml:"interval"`
	Timeout  time.Duration `yaml:"timeout"`
}

type OAuthConfig struct {
	Discord ProviderConfig `yaml:"discord"`
	Google  ProviderConfig `yaml:"google"`
}

type ProviderConfig struct {
	Key         string `yaml:"key"`
	Secret      string `yaml:"secret"`
	CallbackURL string `yaml:"callback_url"`
}

func (p ProviderConfig) Enabled() bool {
	return p.Key != "" && p.Secret != ""
}

func defaults() Config {
	return Config{
		Env:             EnvDevelopment,
		LogLevel:        "info",
		DatabasePath:    "bracket_master.db",
		ServerPort:      8080,
		SessionLifetime: 24 * time.Hour,
		Commentary: CommentaryConfig{
			Interval: 10 * time.Second,
			Timeout:  20 * time.Second,
		},
	}
}

// Load reads an optional .env file, then the YAML file named by CONFIG_FILE if there is one,
// and finally lets environment variables override both.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file found, using environment variables")
	}
	return load(os.Getenv)
}

func load(getenv func(string) string) (*Config, error) {
	cfg := defaults()

	if path := getenv("CONFIG_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config: %w", err)
		}
	}

	if err := applyEnv(&cfg, getenv); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyEnv(cfg *Config, getenv func(string) string) error {
	setString := func(key string, dst *string) {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}
	setDuration := func(key string, dst *time.Duration) error {
		v := getenv(key)
		if v == "" {
			return nil
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %s environment variable: %w", key, err)
		}
		*dst = d
		return nil
	}

	setString("APP_ENV", &cfg.Env)
	setString("LOG_LEVEL", &cfg.LogLevel)
	setString("DATABASE_PATH", &cfg.DatabasePath)
	setString("COMMENTARY_URL", &cfg.Commentary.URL)
	setString("COMMENTARY_API_KEY", &cfg.Commentary.APIKey)
	setString("DISCORD_KEY", &cfg.OAuth.Discord.Key)
	setString("DISCORD_SECRET", &cfg.OAuth.Discord.Secret)
	setString("DISCORD_CALLBACK_URL", &cfg.OAuth.Discord.CallbackURL)
	setString("GOOGLE_KEY", &cfg.OAuth.Google.Key)
	setString("GOOGLE_SECRET", &cfg.OAuth.Google.Secret)
	setString("GOOGLE_CALLBACK_URL", &cfg.OAuth.Google.CallbackURL)

	if v := getenv("SERVER_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid SERVER_PORT environment variable: %w", err)
		}
		cfg.ServerPort = port
	}
	if v := getenv("SEED"); v != "" {
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid SEED environment variable: %w", err)
		}
		cfg.Seed = &seed
	}
	if err := setDuration("SESSION_LIFETIME", &cfg.SessionLifetime); err != nil {
		return err
	}
	if err := setDuration("COMMENTARY_INTERVAL", &cfg.Commentary.Interval); err != nil {
		return err
	}
	return setDuration("COMMENTARY_TIMEOUT", &cfg.Commentary.Timeout)
}

func (c *Config) validate() error {
	if c.ServerPort <= 0 || c.ServerPort > 65535 {
		return fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", c.ServerPort)
	}
	if c.Env != EnvDevelopment && c.Env != EnvProduction {
		return fmt.Errorf("APP_ENV must be %q or %q, got %q", EnvDevelopment, EnvProduction, c.Env)
	}
	if c.DatabasePath == "" {
		return errors.New("DATABASE_PATH must not be empty")
	}
	if c.SessionLifetime <= 0 {
		return errors.New("SESSION_LIFETIME must be positive")
	}
	if c.Commentary.Interval <= 0 {
		return errors.New("COMMENTARY_INTERVAL must be positive")
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.Env == EnvDevelopment
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.ServerPort)
}

// NewLogger builds the application logger, JSON in production and text in development
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	level, _ := parseLevel(c.LogLevel)
	opts := &slog.HandlerOptions{Level: level}
	if c.IsDevelopment() {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(s))); err != nil {
		return level, fmt.Errorf("invalid LOG_LEVEL %q: %w", s, err)
	}
	return level, nil
}
