// Package config loads the gcodepost YAML configuration: logging, the script
// chain and its settings, output naming, the watch daemon, job history and
// notifications.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	perrors "git.home.luguber.info/inful/gcodepost/internal/errors"
	"git.home.luguber.info/inful/gcodepost/internal/retry"
)

// DefaultPath is the configuration file looked up when none is given.
const DefaultPath = "gcodepost.yaml"

// Config is the complete gcodepost configuration.
type Config struct {
	Logging LoggingConfig  `yaml:"logging"`
	Scripts []ScriptConfig `yaml:"scripts"`
	Output  OutputConfig   `yaml:"output"`
	Watch   WatchConfig    `yaml:"watch"`
	History HistoryConfig  `yaml:"history"`
	Notify  NotifyConfig   `yaml:"notify"`
}

// LoggingConfig selects the slog level and handler.
type LoggingConfig struct {
	Level  LogLevel  `yaml:"level"`
	Format LogFormat `yaml:"format"`
}

// ScriptConfig is one entry of the script chain.
type ScriptConfig struct {
	Name     string         `yaml:"name"`
	Settings map[string]any `yaml:"settings,omitempty"`
}

// OutputConfig controls where processed documents go.
type OutputConfig struct {
	Suffix    string `yaml:"suffix"`    // Appended to the input name when no output path is given
	Overwrite bool   `yaml:"overwrite"` // Replace the input file instead
	Mark      bool   `yaml:"mark"`      // Prepend the ;POSTPROCESSED line
}

// WatchConfig configures the inbox daemon.
type WatchConfig struct {
	Inbox         string   `yaml:"inbox"`
	Outbox        string   `yaml:"outbox"`
	SweepInterval Duration `yaml:"sweep_interval"`
	Debounce      Duration `yaml:"debounce"`
	MetricsAddr   string   `yaml:"metrics_addr"` // Empty disables the status server
}

// HistoryConfig locates the job history database. An empty path disables it.
type HistoryConfig struct {
	Path string `yaml:"path"`
}

// NotifyConfig configures job notifications. An empty URL disables them.
type NotifyConfig struct {
	NATSURL string      `yaml:"nats_url"`
	Subject string      `yaml:"subject"`
	Stream  string      `yaml:"stream"`
	Retry   RetryConfig `yaml:"retry"`
}

// RetryConfig is the backoff policy for failed publishes.
type RetryConfig struct {
	Backoff    retry.Mode `yaml:"backoff"` // fixed|linear|exponential
	Initial    Duration   `yaml:"initial"`
	Max        Duration   `yaml:"max"`
	MaxRetries int        `yaml:"max_retries"`
}

// Policy converts the configuration into a retry policy.
func (r RetryConfig) Policy() retry.Policy {
	return retry.NewPolicy(r.Backoff, r.Initial.Std(), r.Max.Std(), r.MaxRetries)
}

// Duration is a time.Duration written as "500ms", "1m" and so on.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("line %d: invalid duration %q: %w", value.Line, raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Load reads the configuration at path. Variables from .env and .env.local
// are loaded first (without overriding the process environment) and
// ${VAR} references in the file are expanded.
func Load(path string) (*Config, error) {
	loadEnvFiles()

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, perrors.ConfigNotFound(path)
	}
	if err != nil {
		return nil, perrors.FileError("read", path, err)
	}

	cfg, err := Parse(data)
	if err != nil {
		var pe *perrors.PostError
		if errors.As(err, &pe) {
			return nil, pe.WithContext("path", path)
		}
		return nil, perrors.ConfigInvalid(path, err)
	}
	return cfg, nil
}

// LoadOrDefault is Load, except that a missing file at DefaultPath yields the
// defaults. An explicitly named file must exist.
func LoadOrDefault(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath
	}
	cfg, err := Load(path)
	if err != nil && path == DefaultPath && perrors.IsCategory(err, perrors.CategoryConfig) {
		if _, statErr := os.Stat(path); errors.Is(statErr, fs.ErrNotExist) {
			return Default(), nil
		}
	}
	return cfg, err
}

// Parse decodes, normalizes and validates configuration text. Unknown keys
// are rejected.
func Parse(data []byte) (*Config, error) {
	expanded := os.ExpandEnv(string(data))

	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader([]byte(expanded)))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	res := Normalize(cfg)
	for _, w := range res.Warnings {
		fmt.Fprintf(os.Stderr, "config normalization: %s\n", w)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadEnvFiles loads .env then .env.local when present.
func loadEnvFiles() {
	for _, name := range []string{".env", ".env.local"} {
		if _, err := os.Stat(name); err != nil {
			continue
		}
		if err := godotenv.Load(name); err != nil {
			fmt.Fprintf(os.Stderr, "Note: %s could not be loaded: %v\n", name, err)
		}
	}
}
