// Package config loads the tool's configuration, layering defaults, an
// optional YAML file, and environment variables.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ai-janitor/ghproj/internal/cache"
)

// Config holds everything the commands need. Later layers win: defaults,
// then the YAML file, then environment variables, then flags.
type Config struct {
	Token      string `yaml:"token"`
	ProjectID  string `yaml:"project_id"`
	Owner      string `yaml:"owner"`
	Repo       string `yaml:"repo"`
	CacheDir   string `yaml:"cache_dir"`
	NoCache    bool   `yaml:"no_cache"`
	LogLevel   string `yaml:"log_level"`
	GraphQLURL string `yaml:"graphql_url,omitempty"`
	RESTURL    string `yaml:"rest_url,omitempty"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		CacheDir: cache.DefaultDir(),
		LogLevel: "info",
	}
}

// DefaultPath returns the standard config file location,
// ~/.ghproj/config.yml.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".ghproj", "config.yml")
}

// Load layers the YAML file at path and then the environment over the
// defaults. A missing file is fine; a malformed one is an error.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
		case err != nil:
			return cfg, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("parse %s: %w", path, err)
			}
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	envStr(&c.Token, "GITHUB_TOKEN")
	envStr(&c.ProjectID, "GITHUB_PROJECT_ID")
	envStr(&c.Owner, "GITHUB_OWNER")
	envStr(&c.Repo, "GITHUB_REPO")
	envStr(&c.CacheDir, "GHPROJ_CACHE_DIR")
	envStr(&c.LogLevel, "GHPROJ_LOG_LEVEL")
	envStr(&c.GraphQLURL, "GHPROJ_GRAPHQL_URL")
	envStr(&c.RESTURL, "GHPROJ_REST_URL")
	envBool(&c.NoCache, "GHPROJ_NO_CACHE")
}

// SlogLevel maps the configured level name onto slog's levels, defaulting
// to info.
func (c Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func envStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func envBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}
