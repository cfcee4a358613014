package config

import (
	"os"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/urfave/cli/v3"
)

// AppConfig represents the application configuration loaded from a TOML file.
// Every field is optional and falls back to the built-in default.
type AppConfig struct {
	path string

	Persona PersonaConfig `toml:"persona"`
	Chat    ChatConfig    `toml:"chat"`
	Router  RouterConfig  `toml:"router"`
}

// PersonaConfig describes how the assistant presents itself
type PersonaConfig struct {
	AssistantName string `toml:"assistant_name"`
	SubjectName   string `toml:"subject_name"`
}

// ChatConfig tunes retrieval and conversation behavior
type ChatConfig struct {
	CacheTTL            string  `toml:"cache_ttl"`
	HistoryLimit        int     `toml:"history_limit"`
	ContextLimit        int     `toml:"context_limit"`
	SimilarityThreshold float64 `toml:"similarity_threshold"`
}

// RouterConfig tunes the provider failover chain
type RouterConfig struct {
	FailureThreshold int    `toml:"failure_threshold"`
	Cooldown         string `toml:"cooldown"`
	AttemptTimeout   string `toml:"attempt_timeout"`
	FallbackMessage  string `toml:"fallback_message"`
}

// Flags returns CLI flags for application configuration
func (a *AppConfig) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "Path to application configuration TOML file",
			Sources:     cli.EnvVars("MINERVA_CONFIG"),
			Destination: &a.path,
		},
	}
}

// Validate checks if the AppConfig is valid
func (a *AppConfig) Validate() error {
	if a.Chat.CacheTTL != "" {
		if _, err := time.ParseDuration(a.Chat.CacheTTL); err != nil {
			return goerr.Wrap(err, "invalid chat.cache_ttl", goerr.V("value", a.Chat.CacheTTL))
		}
	}
	if a.Chat.HistoryLimit < 0 {
		return goerr.New("chat.history_limit must not be negative", goerr.V("value", a.Chat.HistoryLimit))
	}
	if a.Chat.ContextLimit < 0 {
		return goerr.New("chat.context_limit must not be negative", goerr.V("value", a.Chat.ContextLimit))
	}
	if a.Chat.SimilarityThreshold < 0 || a.Chat.SimilarityThreshold > 1 {
		return goerr.New("chat.similarity_threshold must be between 0 and 1", goerr.V("value", a.Chat.SimilarityThreshold))
	}
	if a.Router.FailureThreshold < 0 {
		return goerr.New("router.failure_threshold must not be negative", goerr.V("value", a.Router.FailureThreshold))
	}
	if a.Router.Cooldown != "" {
		if _, err := time.ParseDuration(a.Router.Cooldown); err != nil {
			return goerr.Wrap(err, "invalid router.cooldown", goerr.V("value", a.Router.Cooldown))
		}
	}
	if a.Router.AttemptTimeout != "" {
		if _, err := time.ParseDuration(a.Router.AttemptTimeout); err != nil {
			return goerr.Wrap(err, "invalid router.attempt_timeout", goerr.V("value", a.Router.AttemptTimeout))
		}
	}
	return nil
}

// Configure loads the configuration file when a path is given.
// Without a path the zero value is kept, which selects all defaults.
func (a *AppConfig) Configure() error {
	if a.path == "" {
		return nil
	}
	return a.Load(a.path)
}

// Load reads and validates the configuration from a TOML file
func (a *AppConfig) Load(path string) error {
	// #nosec G304 - path is expected to be provided by CLI argument
	data, err := os.ReadFile(path)
	if err != nil {
		return goerr.Wrap(err, "failed to read config file", goerr.V("path", path))
	}

	if err := toml.Unmarshal(data, a); err != nil {
		return goerr.Wrap(err, "failed to parse TOML config", goerr.V("path", path))
	}

	if err := a.Validate(); err != nil {
		return goerr.Wrap(err, "config validation failed", goerr.V("path", path))
	}

	return nil
}

// CacheTTL returns the parsed cache TTL, or def when unset
func (a *AppConfig) CacheTTL(def time.Duration) time.Duration {
	return parseDuration(a.Chat.CacheTTL, def)
}

// Cooldown returns the parsed breaker cooldown, or def when unset
func (a *AppConfig) Cooldown(def time.Duration) time.Duration {
	return parseDuration(a.Router.Cooldown, def)
}

// AttemptTimeout returns the parsed per-provider timeout, or def when unset
func (a *AppConfig) AttemptTimeout(def time.Duration) time.Duration {
	return parseDuration(a.Router.AttemptTimeout, def)
}

func parseDuration(s string, def time.Duration) time.Duration {
	if s == "" {
		return def
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return def
	}
	return d
}
