// Package config loads and saves the reference host's boot configuration
// from a TOML file, the way the teacher emulator configures its
// execution/debugger/trace settings.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/BurntSushi/toml"
)

// Config is the reference host's configuration.
type Config struct {
	// Execution settings, read by cmd/rviss before binding the kernel.
	Execution struct {
		MaxCycles   uint64 `toml:"max_cycles"`
		EnableTrace bool   `toml:"enable_trace"`
		EnableStats bool   `toml:"enable_stats"`
		EntryPoint  string `toml:"entry_point"`
	} `toml:"execution"`

	// Debugger settings, read by the debugger package.
	Debugger struct {
		HistorySize   int  `toml:"history_size"`
		ShowRegisters bool `toml:"show_registers"`
	} `toml:"debugger"`

	// Trace settings.
	Trace struct {
		OutputFile string `toml:"output_file"`
	} `toml:"trace"`

	// Statistics settings.
	Statistics struct {
		OutputFile string `toml:"output_file"`
		Format     string `toml:"format"` // not read; statistics are always written as JSON
	} `toml:"statistics"`

	// API server settings.
	API struct {
		Enabled bool `toml:"enabled"`
		Port    int  `toml:"port"`
	} `toml:"api"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Execution.MaxCycles = 1_000_000
	cfg.Execution.EnableTrace = false
	cfg.Execution.EnableStats = false
	cfg.Execution.EntryPoint = "0x10000"

	cfg.Debugger.HistorySize = 1000
	cfg.Debugger.ShowRegisters = true

	cfg.Trace.OutputFile = "trace.log"

	cfg.Statistics.OutputFile = "stats.json"
	cfg.Statistics.Format = "json"

	cfg.API.Enabled = false
	cfg.API.Port = 8080

	return cfg
}

// GetConfigPath returns the platform-specific config file path.
func GetConfigPath() string {
	var configDir string

	switch runtime.GOOS {
	case "windows":
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		configDir = filepath.Join(configDir, "rviss")

	case "darwin", "linux":
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "config.toml"
		}
		configDir = filepath.Join(homeDir, ".config", "rviss")

	default:
		return "config.toml"
	}

	if err := os.MkdirAll(configDir, 0750); err != nil {
		return "config.toml"
	}

	return filepath.Join(configDir, "config.toml")
}

// Load loads configuration from the default config file.
func Load() (*Config, error) {
	return LoadFrom(GetConfigPath())
}

// LoadFrom loads configuration from path. A missing file is not an
// error: it yields the defaults.
func LoadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// SaveTo writes configuration to path as TOML.
func (c *Config) SaveTo(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path) // #nosec G304 -- caller-controlled config path
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	encoder := toml.NewEncoder(f)
	if err := encoder.Encode(c); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	return nil
}
