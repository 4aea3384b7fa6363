// Package config loads application configuration from a TOML file with
// environment variable overrides. A missing file yields the defaults, so a
// bare environment-only deployment works without any config on disk.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Config is the root application configuration.
type Config struct {
	Database Database `toml:"database"`
	Logging  Logging  `toml:"logging"`
	Models   Models   `toml:"models"`
	Engine   Engine   `toml:"engine"`
}

// Database selects the persistence backend. An empty path keeps everything
// in memory.
type Database struct {
	Path string `toml:"path"`
}

// Logging mirrors the logger construction options.
type Logging struct {
	Level     string `toml:"level"`
	Format    string `toml:"format"`
	AddSource bool   `toml:"add_source"`
}

// Models holds provider credentials and the default model identifier.
type Models struct {
	Default   string    `toml:"default"`
	Anthropic Anthropic `toml:"anthropic"`
	OpenAI    OpenAI    `toml:"openai"`
}

// Anthropic holds Anthropic provider settings.
type Anthropic struct {
	APIKey string `toml:"api_key"`
}

// OpenAI holds OpenAI provider settings.
type OpenAI struct {
	APIKey string `toml:"api_key"`
}

// Engine holds turn loop bounds.
type Engine struct {
	MaxIterations      int `toml:"max_iterations"`
	MaxDelegationDepth int `toml:"max_delegation_depth"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Logging: Logging{
			Level:  "info",
			Format: "text",
		},
		Engine: Engine{
			MaxIterations:      5,
			MaxDelegationDepth: 3,
		},
	}
}

// Load reads the TOML file at path, falling back to defaults when the file
// does not exist, then applies environment overrides. Pass an empty path to
// skip the file entirely.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		_, err := toml.DecodeFile(path, &cfg)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("decode config file %q: %w", path, err)
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

// LoadDotEnv loads a .env file into the process environment if one exists.
// Call it before Load so the overrides are visible.
func LoadDotEnv(files ...string) {
	// Missing .env files are expected outside local development.
	_ = godotenv.Load(files...)
}

func (c *Config) applyEnv() {
	setString := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	setInt := func(key string, dst *int) {
		if v := os.Getenv(key); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				*dst = n
			}
		}
	}

	setString("AION_DB_PATH", &c.Database.Path)
	setString("AION_LOG_LEVEL", &c.Logging.Level)
	setString("AION_LOG_FORMAT", &c.Logging.Format)
	setString("AION_DEFAULT_MODEL", &c.Models.Default)
	setString("ANTHROPIC_API_KEY", &c.Models.Anthropic.APIKey)
	setString("OPENAI_API_KEY", &c.Models.OpenAI.APIKey)
	setInt("AION_MAX_ITERATIONS", &c.Engine.MaxIterations)
	setInt("AION_MAX_DELEGATION_DEPTH", &c.Engine.MaxDelegationDepth)
}
