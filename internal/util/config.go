// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 MindustryJsMicrocontroller Authors

package util

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Teardown modes for reloading a processor while a script is still alive.
const (
	TeardownBounded = "bounded"
	TeardownSync    = "sync"
)

// MaxInstructionsPerTick caps how many steps a processor may take per tick.
const MaxInstructionsPerTick = 40

// Config holds processor and host configuration settings
type Config struct {
	Name                string `yaml:"name" toml:"name" description:"Processor name shown in logs and the inspector" default:"processor1"`
	InstructionsPerTick int    `yaml:"instructions_per_tick" toml:"instructions_per_tick" description:"Step signals issued to the script per host tick" default:"2"`
	TickRate            int    `yaml:"tick_rate" toml:"tick_rate" description:"Host ticks per second" default:"60"`
	LogLimit            int    `yaml:"log_limit" toml:"log_limit" description:"Characters retained by the script console" default:"1000"`

	// Reload behaviour
	Teardown        string        `yaml:"teardown" toml:"teardown" description:"Reload teardown mode (bounded, sync)" default:"bounded"`
	TeardownTimeout time.Duration `yaml:"teardown_timeout" toml:"teardown_timeout" description:"Upper bound on waiting for a running script to stop in bounded mode" default:"10ms"`
	RestartOnExit   bool          `yaml:"restart_on_exit" toml:"restart_on_exit" description:"Re-run a script from a fresh session when it returns normally" default:"false"`

	// Stepping
	StepSettle     time.Duration `yaml:"step_settle" toml:"step_settle" description:"Per-step wait for the script to reach its next suspension point" default:"2ms"`
	RunawayTimeout time.Duration `yaml:"runaway_timeout" toml:"runaway_timeout" description:"Fail a script that runs this long without reaching a suspension point" default:"2s"`

	// CLI
	WatchDebounce time.Duration `yaml:"watch_debounce" toml:"watch_debounce" description:"Delay before reloading a watched script file" default:"500ms"`
}

// DefaultConfig returns the default configuration for runtime use.
func DefaultConfig() Config {
	return Config{
		Name:                "processor1",
		InstructionsPerTick: 2,
		TickRate:            60,
		LogLimit:            1000,
		Teardown:            TeardownBounded,
		TeardownTimeout:     10 * time.Millisecond,
		StepSettle:          2 * time.Millisecond,
		RunawayTimeout:      2 * time.Second,
		WatchDebounce:       500 * time.Millisecond,
	}
}

// DefaultDataDir is the default data directory for the mcu host
const DefaultDataDir = "~/.mcu"

// GetDataDir returns the data directory.
// Resolution order: -d flag > MCU_DATA env var > ~/.mcu
func GetDataDir(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if envDir := os.Getenv("MCU_DATA"); envDir != "" {
		return envDir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "" // Can't determine default
	}
	return filepath.Join(home, ".mcu")
}

// GetConfigPath returns the path to the config file in the data directory:
// config.yaml, or config.toml when only that exists.
// Returns empty string if dataDir is empty.
func GetConfigPath(dataDir string) string {
	if dataDir == "" {
		return ""
	}
	yamlPath := filepath.Join(dataDir, "config.yaml")
	if _, err := os.Stat(yamlPath); err == nil {
		return yamlPath
	}
	tomlPath := filepath.Join(dataDir, "config.toml")
	if _, err := os.Stat(tomlPath); err == nil {
		return tomlPath
	}
	return yamlPath
}

// LoadConfig loads configuration from config.yaml in the data directory.
// If dataDir is empty or file doesn't exist, returns default config.
func LoadConfig(dataDir string) (Config, error) {
	return LoadConfigFromPath(GetConfigPath(dataDir))
}

// LoadConfigFromPath loads configuration from the specified path.
// If path is empty, returns default config.
// If the file doesn't exist, returns default config.
func LoadConfigFromPath(path string) (Config, error) {
	if path == "" {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}

	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return ParseConfigTOML(data)
	}
	return ParseConfig(data)
}

// ParseConfig overlays YAML data on the defaults and validates the result.
func ParseConfig(data []byte) (Config, error) {
	return parseConfig(data, yaml.Unmarshal)
}

// ParseConfigTOML is ParseConfig for TOML data.
func ParseConfigTOML(data []byte) (Config, error) {
	return parseConfig(data, toml.Unmarshal)
}

func parseConfig(data []byte, unmarshal func([]byte, any) error) (Config, error) {
	config := DefaultConfig()
	if err := unmarshal(data, &config); err != nil {
		return Config{}, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Fill in defaults for zeroed values
	defaults := DefaultConfig()
	if config.Name == "" {
		config.Name = defaults.Name
	}
	if config.Teardown == "" {
		config.Teardown = defaults.Teardown
	}
	if config.LogLimit == 0 {
		config.LogLimit = defaults.LogLimit
	}
	if config.TickRate == 0 {
		config.TickRate = defaults.TickRate
	}

	if err := config.Validate(); err != nil {
		return Config{}, err
	}
	return config, nil
}

// Validate checks value ranges.
func (c Config) Validate() error {
	if c.InstructionsPerTick < 1 || c.InstructionsPerTick > MaxInstructionsPerTick {
		return fmt.Errorf("instructions_per_tick must be between 1 and %d, got %d", MaxInstructionsPerTick, c.InstructionsPerTick)
	}
	if c.TickRate < 1 {
		return fmt.Errorf("tick_rate must be positive, got %d", c.TickRate)
	}
	if c.LogLimit < 1 {
		return fmt.Errorf("log_limit must be positive, got %d", c.LogLimit)
	}
	switch c.Teardown {
	case TeardownBounded, TeardownSync:
	default:
		return fmt.Errorf("invalid teardown '%s' (must be %s or %s)", c.Teardown, TeardownBounded, TeardownSync)
	}
	if c.TeardownTimeout < 0 || c.StepSettle < 0 || c.RunawayTimeout < 0 || c.WatchDebounce < 0 {
		return fmt.Errorf("durations must not be negative")
	}
	return nil
}

// TickInterval returns the wall time between host ticks.
func (c Config) TickInterval() time.Duration {
	if c.TickRate <= 0 {
		return time.Second / 60
	}
	return time.Second / time.Duration(c.TickRate)
}
