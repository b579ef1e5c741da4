package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Environment variables recognised by the CLI. Flags take precedence.
const (
	EnvTemplateDir = "COURSEFORGE_TEMPLATE_DIR"
	EnvDebug       = "COURSEFORGE_DEBUG"
	EnvWatchPort   = "COURSEFORGE_WATCH_PORT"
	EnvCacheDir    = "COURSEFORGE_CACHE_DIR"
)

// Older spellings, read when the current name is unset or empty.
const (
	LegacyEnvTemplateDir = "COURSE_FORGE_TEMPLATE_DIR"
	LegacyEnvDebug       = "COURSE_FORGE_DEBUG"
	LegacyEnvWatchPort   = "COURSE_FORGE_WATCH_PORT"
)

// DefaultWatchPort is used when neither flag nor environment sets a port.
const DefaultWatchPort = 8001

// Settings are process-level options sourced from the environment.
type Settings struct {
	TemplateDir string
	Debug       bool
	WatchPort   int
	CacheDir    string
}

// LoadEnvFiles loads the first of .env and .env.local that exists in the working
// directory. Variables already present in the process environment win.
func LoadEnvFiles() (string, error) {
	var lastErr error
	for _, name := range []string{".env", ".env.local"} {
		if _, err := os.Stat(name); err != nil {
			lastErr = err
			continue
		}
		if err := godotenv.Load(name); err != nil {
			lastErr = err
			continue
		}
		return name, nil
	}
	return "", lastErr
}

// SettingsFromEnv reads Settings from the process environment.
func SettingsFromEnv() Settings {
	s := Settings{
		TemplateDir: getenv(EnvTemplateDir, LegacyEnvTemplateDir),
		Debug:       strings.EqualFold(getenv(EnvDebug, LegacyEnvDebug), "true"),
		WatchPort:   DefaultWatchPort,
		CacheDir:    getenv(EnvCacheDir, ""),
	}
	if p, err := strconv.Atoi(getenv(EnvWatchPort, LegacyEnvWatchPort)); err == nil && p > 0 {
		s.WatchPort = p
	}
	return s
}

func getenv(name, legacy string) string {
	if v := strings.TrimSpace(os.Getenv(name)); v != "" || legacy == "" {
		return v
	}
	return strings.TrimSpace(os.Getenv(legacy))
}

// ResolveCacheDir returns the directory holding per-project build state.
// Priority: Settings.CacheDir > $XDG_DATA_HOME/courseforge/cache > ~/.local/share/courseforge/cache.
func (s Settings) ResolveCacheDir() (string, error) {
	if s.CacheDir != "" {
		return s.CacheDir, nil
	}
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "courseforge", "cache"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "share", "courseforge", "cache"), nil
}
