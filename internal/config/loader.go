package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment variables read by the CLI.
const (
	EnvConfigPath = "DEFENDER_CONFIG"
	EnvLogLevel   = "DEFENDER_LOG_LEVEL"
	EnvSSHAddr    = "DEFENDER_SSH_ADDR"
	EnvWebAddr    = "DEFENDER_WEB_ADDR"
)

// Sources reported by Load.
const (
	SourceEmbedded = "embedded"
	SourceBuiltin  = "builtin"
)

// LocalConfigPath is the project-local config location.
const LocalConfigPath = "configs/defender.yaml"

// Env holds the settings that come from the process environment.
type Env struct {
	ConfigPath string
	LogLevel   string
	SSHAddr    string
	WebAddr    string
}

// LoadEnv reads .env files into the process environment and returns the
// defender settings. Missing files are fine; variables already set in the
// environment win over the files.
func LoadEnv(files ...string) (Env, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Env{}, fmt.Errorf("config: load %s: %w", f, err)
		}
	}
	return Env{
		ConfigPath: os.Getenv(EnvConfigPath),
		LogLevel:   os.Getenv(EnvLogLevel),
		SSHAddr:    os.Getenv(EnvSSHAddr),
		WebAddr:    os.Getenv(EnvWebAddr),
	}, nil
}

// Load loads the defender configuration and reports where it came from.
// Search order: customPath -> ~/.defender/config.yaml -> ./configs/defender.yaml -> embedded default.
// Files only need to carry the keys they change; the rest keeps default values.
func Load(customPath string) (DefenderConfig, string, error) {
	// Try custom path first
	if customPath != "" {
		data, err := os.ReadFile(customPath)
		if err != nil {
			return DefenderConfig{}, customPath, fmt.Errorf("config: read %s: %w", customPath, err)
		}
		cfg, err := parse(data)
		if err != nil {
			return DefenderConfig{}, customPath, fmt.Errorf("config: parse %s: %w", customPath, err)
		}
		return validated(cfg, customPath)
	}

	// Try user config directory
	if userCfgPath := userConfigPath(); userCfgPath != "" {
		if data, err := os.ReadFile(userCfgPath); err == nil {
			if cfg, err := parse(data); err == nil {
				return validated(cfg, userCfgPath)
			}
		}
	}

	// Try local configs directory
	if data, err := os.ReadFile(LocalConfigPath); err == nil {
		if cfg, err := parse(data); err == nil {
			return validated(cfg, LocalConfigPath)
		}
	}

	// Use embedded default YAML
	cfg, err := parse(defaultDefenderYAML)
	if err != nil {
		return Default(), SourceBuiltin, nil // Fallback to hardcoded if embed fails
	}
	return cfg, SourceEmbedded, nil
}

// Marshal renders the configuration as YAML.
func Marshal(cfg DefenderConfig) ([]byte, error) {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("config: marshal: %w", err)
	}
	return data, nil
}

func parse(data []byte) (DefenderConfig, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return DefenderConfig{}, err
	}
	return cfg, nil
}

func validated(cfg DefenderConfig, source string) (DefenderConfig, string, error) {
	if err := cfg.Validate(); err != nil {
		return DefenderConfig{}, source, fmt.Errorf("config: %s: %w", source, err)
	}
	return cfg, source, nil
}

// userConfigPath returns the path to the user config file, or empty if home is unavailable.
func userConfigPath() string {
	dir := UserDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.yaml")
}

// UserDir returns ~/.defender, or empty if home is unavailable.
func UserDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".defender")
}
