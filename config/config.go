package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/masmgr/gitsqlite/internal/batch"
	"github.com/masmgr/gitsqlite/internal/git"
)

// FileName is the configuration file looked up in the working directory and $HOME.
const FileName = ".gitsqlite.json"

// DefaultDatabasePath is the destination used when none is given.
const DefaultDatabasePath = "git_info_llama.db"

// Config is the root configuration structure.
type Config struct {
	Export ExportConfig `json:"export"`
	Refs   RefsConfig   `json:"refs"`
	Store  StoreConfig  `json:"store"`
	Log    LogConfig    `json:"log"`
}

// ExportConfig holds history extraction options.
type ExportConfig struct {
	ChunkSize int    `json:"chunkSize"` // records per transaction
	Order     string `json:"order"`     // time, dfs or bfs
	Backend   string `json:"backend"`   // native or gitcli
}

// RefsConfig holds reference name filters (doublestar globs).
type RefsConfig struct {
	Include []string `json:"include"`
	Exclude []string `json:"exclude"`
}

// StoreConfig holds destination options.
type StoreConfig struct {
	DefaultPath string `json:"defaultPath"`
}

// LogConfig holds diagnostic logging options.
type LogConfig struct {
	Level string `json:"level"` // debug, info, warn or error
}

// DefaultConfig returns a configuration with default values.
func DefaultConfig() *Config {
	return &Config{
		Export: ExportConfig{
			ChunkSize: batch.DefaultChunkSize,
			Order:     string(git.DefaultOrder),
			Backend:   string(git.BackendNative),
		},
		Refs: RefsConfig{
			Include: []string{},
			Exclude: []string{},
		},
		Store: StoreConfig{
			DefaultPath: DefaultDatabasePath,
		},
		Log: LogConfig{
			Level: "warn",
		},
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if c.Export.ChunkSize < 1 {
		return fmt.Errorf("export.chunkSize must be positive, got %d", c.Export.ChunkSize)
	}
	if _, err := git.ParseTraversalOrder(c.Export.Order); err != nil {
		return fmt.Errorf("export.order: %w", err)
	}
	if _, err := git.ParseBackend(c.Export.Backend); err != nil {
		return fmt.Errorf("export.backend: %w", err)
	}
	for _, p := range append(append([]string{}, c.Refs.Include...), c.Refs.Exclude...) {
		if !doublestar.ValidatePattern(p) {
			return fmt.Errorf("refs: invalid pattern %q", p)
		}
	}
	if strings.TrimSpace(c.Store.DefaultPath) == "" {
		return fmt.Errorf("store.defaultPath must not be empty")
	}
	switch strings.ToLower(c.Log.Level) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("log.level: unknown level %q", c.Log.Level)
	}
	return nil
}

// LoadConfig loads configuration from a file, merging with defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		// Try default locations
		candidates := []string{FileName}
		if home, err := os.UserHomeDir(); err == nil && home != "" {
			candidates = append(candidates, filepath.Join(home, FileName))
		} else if envHome := os.Getenv("HOME"); envHome != "" {
			candidates = append(candidates, filepath.Join(envHome, FileName))
		}
		for _, p := range candidates {
			if _, err := os.Stat(p); err == nil {
				path = p
				break
			}
		}
	}

	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	return cfg, nil
}

// SaveConfig saves configuration to a file.
func SaveConfig(cfg *Config, path string) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
