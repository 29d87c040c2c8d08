// Package config loads the cc-cmd TOML configuration. Values absent from the
// file keep their defaults; unknown top-level keys produce warnings, not
// errors.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/nixlim/cc-cmd/internal/classify"
)

type Config struct {
	Receiver ReceiverConfig
	Display  DisplayConfig
	Storage  StorageConfig
	Report   ReportConfig
	Rules    classify.Rules
}

type ReceiverConfig struct {
	GRPCPort int    `toml:"grpc_port"`
	HTTPPort int    `toml:"http_port"`
	Bind     string `toml:"bind"`
}

type DisplayConfig struct {
	RefreshRateMS  int `toml:"refresh_rate_ms"`
	FeedBufferSize int `toml:"feed_buffer_size"`
}

type StorageConfig struct {
	DBPath             string `toml:"db_path"`
	SnapshotDebounceMS int    `toml:"snapshot_debounce_ms"`
}

type ReportConfig struct {
	Examples bool `toml:"examples"`
}

type LoadResult struct {
	Config   Config
	Warnings []string
}

// DefaultConfig returns the built-in configuration, including the default
// classification rule table.
func DefaultConfig() Config {
	return Config{
		Receiver: ReceiverConfig{
			GRPCPort: 4317,
			HTTPPort: 4318,
			Bind:     "127.0.0.1",
		},
		Display: DisplayConfig{
			RefreshRateMS:  1000,
			FeedBufferSize: 200,
		},
		Storage: StorageConfig{
			DBPath:             "~/.config/cc-cmd/records.db",
			SnapshotDebounceMS: 500,
		},
		Report: ReportConfig{
			Examples: true,
		},
		Rules: classify.DefaultRules(),
	}
}

func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "cc-cmd", "config.toml")
}

func Load() (*LoadResult, error) {
	return LoadFrom(defaultConfigPath())
}

func LoadFrom(path string) (*LoadResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &LoadResult{Config: DefaultConfig()}, nil
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	return LoadFromString(string(data))
}

func LoadFromString(data string) (*LoadResult, error) {
	cfg := DefaultConfig()
	result := &LoadResult{Config: cfg}

	if data == "" {
		return result, nil
	}

	var raw map[string]any
	if _, err := toml.Decode(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	knownTopLevel := map[string]bool{
		"receiver": true,
		"display":  true,
		"storage":  true,
		"report":   true,
		"rules":    true,
	}
	for key := range raw {
		if !knownTopLevel[key] {
			result.Warnings = append(result.Warnings, fmt.Sprintf("unknown config key: %q", key))
		}
	}

	var tf tomlFile
	if _, err := toml.Decode(data, &tf); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	mergeFromRaw(&result.Config, &tf, raw)

	if err := validate(&result.Config); err != nil {
		return nil, err
	}

	return result, nil
}

type tomlFile struct {
	Receiver *ReceiverConfig `toml:"receiver"`
	Display  *DisplayConfig  `toml:"display"`
	Storage  *StorageConfig  `toml:"storage"`
	Report   *ReportConfig   `toml:"report"`
	Rules    []classify.Rule `toml:"rules"`
}

// mergeFromRaw overrides defaults only for keys the file actually sets, so a
// section mentioning one key does not zero its siblings.
func mergeFromRaw(cfg *Config, tf *tomlFile, raw map[string]any) {
	if tf.Receiver != nil {
		if section, ok := rawSection(raw, "receiver"); ok {
			if _, exists := section["grpc_port"]; exists {
				cfg.Receiver.GRPCPort = tf.Receiver.GRPCPort
			}
			if _, exists := section["http_port"]; exists {
				cfg.Receiver.HTTPPort = tf.Receiver.HTTPPort
			}
			if _, exists := section["bind"]; exists {
				cfg.Receiver.Bind = tf.Receiver.Bind
			}
		}
	}
	if tf.Display != nil {
		if section, ok := rawSection(raw, "display"); ok {
			if _, exists := section["refresh_rate_ms"]; exists {
				cfg.Display.RefreshRateMS = tf.Display.RefreshRateMS
			}
			if _, exists := section["feed_buffer_size"]; exists {
				cfg.Display.FeedBufferSize = tf.Display.FeedBufferSize
			}
		}
	}
	if tf.Storage != nil {
		if section, ok := rawSection(raw, "storage"); ok {
			if _, exists := section["db_path"]; exists {
				cfg.Storage.DBPath = tf.Storage.DBPath
			}
			if _, exists := section["snapshot_debounce_ms"]; exists {
				cfg.Storage.SnapshotDebounceMS = tf.Storage.SnapshotDebounceMS
			}
		}
	}
	if tf.Report != nil {
		if section, ok := rawSection(raw, "report"); ok {
			if _, exists := section["examples"]; exists {
				cfg.Report.Examples = tf.Report.Examples
			}
		}
	}

	// A rule table in the file replaces the built-in one wholesale: rule
	// order is load-bearing, so partial merges would reorder matches.
	if len(tf.Rules) > 0 {
		cfg.Rules = classify.Rules(tf.Rules)
	}
}

func rawSection(raw map[string]any, key string) (map[string]any, bool) {
	v, ok := raw[key]
	if !ok {
		return nil, false
	}
	m, ok := v.(map[string]any)
	return m, ok
}

func validate(cfg *Config) error {
	var errs []string

	if cfg.Receiver.GRPCPort < 1 || cfg.Receiver.GRPCPort > 65535 {
		errs = append(errs, fmt.Sprintf("grpc_port must be 1-65535, got %d", cfg.Receiver.GRPCPort))
	}
	if cfg.Receiver.HTTPPort < 1 || cfg.Receiver.HTTPPort > 65535 {
		errs = append(errs, fmt.Sprintf("http_port must be 1-65535, got %d", cfg.Receiver.HTTPPort))
	}
	if cfg.Display.RefreshRateMS < 1 {
		errs = append(errs, fmt.Sprintf("refresh_rate_ms must be positive, got %d", cfg.Display.RefreshRateMS))
	}
	if cfg.Display.FeedBufferSize < 1 {
		errs = append(errs, fmt.Sprintf("feed_buffer_size must be positive, got %d", cfg.Display.FeedBufferSize))
	}
	if cfg.Storage.SnapshotDebounceMS < 1 {
		errs = append(errs, fmt.Sprintf("snapshot_debounce_ms must be positive, got %d", cfg.Storage.SnapshotDebounceMS))
	}

	for i, rule := range cfg.Rules {
		if rule.Name == "" {
			errs = append(errs, fmt.Sprintf("rule %d has an empty name", i))
		}
		if len(rule.Patterns) == 0 {
			errs = append(errs, fmt.Sprintf("rule %q has no patterns", rule.Name))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation error: %s", strings.Join(errs, "; "))
	}
	return nil
}

// ExpandTilde resolves a leading "~/" against the user's home directory.
func ExpandTilde(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
