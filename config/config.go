// Package config loads the assembler's persistent defaults — entry point,
// warning toggles, output format — from a TOML file, falling back to
// built-in defaults when none is present. The shape (a struct of grouped
// settings, DefaultConfig/Load/LoadFrom/Save/SaveTo, an XDG-ish
// GetConfigPath) is carried over from the reference emulator's own
// config package; the sections themselves describe assembler concerns
// instead of emulator/debugger ones.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/BurntSushi/toml"
)

// Config holds every setting the command-line flags can also override.
type Config struct {
	Build struct {
		EntryPoint      string `toml:"entry_point"`
		StartLabel      string `toml:"start_label"`
		JumpMain        bool   `toml:"jump_main"`
		OneOpMov        bool   `toml:"one_op_mov"`
		ProgramSizeLimit int64  `toml:"program_size_limit"`
	} `toml:"build"`

	Output struct {
		Path       string `toml:"path"`
		Format     string `toml:"format"` // raw, indexed, serial
		Header     bool   `toml:"header"`
		EmitListing bool  `toml:"emit_listing"`
	} `toml:"output"`

	Diagnostics struct {
		ColorOutput     bool `toml:"color_output"`
		WarnUnusedLabel bool `toml:"warn_unused_label"`
		WarnScratchReg  bool `toml:"warn_scratch_register"`
	} `toml:"diagnostics"`

	Library struct {
		SearchPaths []string `toml:"search_paths"`
	} `toml:"library"`
}

// DefaultConfig returns the built-in settings the reference assembler uses
// when no config file and no matching flag are given.
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Build.EntryPoint = "0x2000"
	cfg.Build.StartLabel = "main"
	cfg.Build.JumpMain = true
	cfg.Build.OneOpMov = false
	cfg.Build.ProgramSizeLimit = 0x400000

	cfg.Output.Path = "a.out"
	cfg.Output.Format = "raw"
	cfg.Output.Header = true
	cfg.Output.EmitListing = false

	cfg.Diagnostics.ColorOutput = true
	cfg.Diagnostics.WarnUnusedLabel = true
	cfg.Diagnostics.WarnScratchReg = false

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
		configDir = filepath.Join(configDir, "gaiasm")

	case "darwin", "linux":
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "config.toml"
		}
		configDir = filepath.Join(homeDir, ".config", "gaiasm")

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

// LoadFrom loads configuration from the specified file, falling back to
// DefaultConfig when it does not exist.
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

// Save saves configuration to the default config file.
func (c *Config) Save() error {
	return c.SaveTo(GetConfigPath())
}

// SaveTo saves configuration to the specified file.
func (c *Config) SaveTo(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path) // #nosec G304 -- user config file path
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
