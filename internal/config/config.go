package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config represents the main configuration for subtool.
type Config struct {
	BaseDir      string          `toml:"base_dir"`
	LogDir       string          `toml:"log_dir"`
	DatabasePath string          `toml:"database_path"`
	Generator    GeneratorConfig `toml:"generator"`
	Tunnel       TunnelConfig    `toml:"tunnel"`
}

// GeneratorConfig describes how entity code is regenerated.
// Bin and Args are passed verbatim to the external generator; subtool
// treats the generator as opaque.
type GeneratorConfig struct {
	Bin       string   `toml:"bin"`
	Args      []string `toml:"args"`
	EntityDir string   `toml:"entity_dir"`
	Pattern   string   `toml:"pattern"`
}

// TunnelConfig describes how the service is exposed through the external
// tunnel client.
type TunnelConfig struct {
	Bin        string `toml:"bin"`
	Port       int    `toml:"port"`
	FunnelPath string `toml:"funnel_path"`
}

// NewConfig creates a new Config with the provided base directory and
// default values for everything else.
func NewConfig(baseDir string) *Config {
	dbPath := filepath.Join(baseDir, "subscriptions.sqlite")
	return &Config{
		BaseDir:      baseDir,
		LogDir:       filepath.Join(baseDir, "log"),
		DatabasePath: dbPath,
		Generator: GeneratorConfig{
			Bin:       "xo",
			Args:      []string{"schema", "sqlite3://" + dbPath, "--out", "."},
			EntityDir: filepath.Join("internal", "entity"),
			Pattern:   "*.go",
		},
		Tunnel: TunnelConfig{
			Bin:        "tailscale",
			Port:       8080,
			FunnelPath: "/pubsub",
		},
	}
}

// Manager handles reading and writing configuration.
type Manager struct{}

// Read decodes a Config from the provided reader.
func (m *Manager) Read(r io.Reader) (*Config, error) {
	var cfg Config
	if _, err := toml.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}

// Write encodes a Config to the provided writer.
func (m *Manager) Write(w io.Writer, cfg *Config) error {
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// ReadFromFile reads a Config from the specified file path.
func ReadFromFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	cfg, err := m.Read(f)
	if err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}
	return cfg, nil
}

// writeToFile writes a Config to the specified file path.
// This is an internal helper and should not be exported.
func writeToFile(path string, cfg *Config) error {
	// Ensure the directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	if err := m.Write(f, cfg); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Init initializes a new config file at the specified path with the provided Config.
func Init(path string, cfg *Config) error {
	// Check if config already exists
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := writeToFile(path, cfg); err != nil {
		return fmt.Errorf("initializing config: %w", err)
	}
	return nil
}
