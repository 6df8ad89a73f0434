package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

var (
	ErrConfigVersionMissing  = errors.New("config file is missing version field")
	ErrConfigVersionMismatch = errors.New("config file version mismatch")
	ErrMissingToken          = errors.New("no bot token found in config or BOT_TOKEN")
)

// CurrentVersion is the current version of the config file.
const CurrentVersion = 1

// FileName is the name of the config file looked up in each search path.
const FileName = "config.toml"

// EnvPrefix marks environment variables that override config keys.
// Sections and keys are separated by a double underscore, e.g. IGSHEET_BOT__MAX_CONCURRENT.
const EnvPrefix = "IGSHEET_"

// Config represents the entire application configuration.
type Config struct {
	// Version of the config file. Zero when no file was loaded.
	Version int    `koanf:"version"`
	Bot     Bot    `koanf:"bot"`
	Health  Health `koanf:"health"`
	Debug   Debug  `koanf:"debug"`
}

// Bot contains Telegram bot configuration.
type Bot struct {
	// Telegram bot token for authentication.
	Token string `koanf:"token"`
	// Hours added to the local clock when naming exported files.
	TimestampOffsetHours int `koanf:"timestamp_offset_hours"`
	// Maximum number of updates handled at once.
	MaxConcurrent int `koanf:"max_concurrent"`
	// Largest accepted upload in bytes.
	MaxFileSize int64 `koanf:"max_file_size"`
	// Long polling timeout in seconds.
	PollTimeout int `koanf:"poll_timeout"`
	// File download timeout in milliseconds.
	DownloadTimeout int `koanf:"download_timeout"`
}

// Health contains keep-alive HTTP server configuration.
type Health struct {
	// Address to bind.
	Host string `koanf:"host"`
	// Port to listen on.
	Port int `koanf:"port"`
	// Hours added to UTC for the time shown on the status page.
	TimezoneOffsetHours int `koanf:"timezone_offset_hours"`
}

// Debug contains debug-related configuration.
type Debug struct {
	// Log level (debug, info, warn, error).
	LogLevel string `koanf:"log_level"`
	// Maximum log sessions to keep.
	MaxLogsToKeep int `koanf:"max_logs_to_keep"`
	// Maximum lines per log file.
	MaxLogLines int `koanf:"max_log_lines"`
}

// defaults holds the values used when neither the config file nor the environment sets a key.
var defaults = map[string]any{
	"bot.timestamp_offset_hours":   6,
	"bot.max_concurrent":           4,
	"bot.max_file_size":            20 << 20,
	"bot.poll_timeout":             60,
	"bot.download_timeout":         30000,
	"health.host":                  "0.0.0.0",
	"health.port":                  10000,
	"health.timezone_offset_hours": 6,
	"debug.log_level":              "info",
	"debug.max_logs_to_keep":       10,
	"debug.max_log_lines":          10000,
}

// SearchPaths returns the directories searched for the config file, in order.
func SearchPaths() ([]string, error) {
	// Get user's home directory
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get home directory: %w", err)
	}

	return []string{
		".igsheet",
		homeDir + "/.igsheet/config",
		"/etc/igsheet/config",
		"/app/config",
		"config",
		".",
	}, nil
}

// LoadConfig loads the configuration from defaults, the first config file found in
// the search paths, a .env file and the environment, in increasing priority.
// Returns the config along with the used config directory, empty if no file was found.
func LoadConfig() (*Config, string, error) {
	paths, err := SearchPaths()
	if err != nil {
		return nil, "", err
	}

	// Load .env for local development; existing variables take precedence
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, "", fmt.Errorf("failed to load .env file: %w", err)
	}

	return Load(paths)
}

// Load loads the configuration using the given search paths and the current environment.
func Load(paths []string) (*Config, string, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults, "."), nil); err != nil {
		return nil, "", fmt.Errorf("failed to load defaults: %w", err)
	}

	// The config file is optional but must be valid when present
	var usedConfigPath string

	for _, path := range paths {
		configPath := fmt.Sprintf("%s/%s", path, FileName)
		if _, err := os.Stat(configPath); err != nil {
			continue
		}

		if err := k.Load(file.Provider(configPath), toml.Parser()); err != nil {
			return nil, "", fmt.Errorf("failed to load %s: %w", configPath, err)
		}

		usedConfigPath = path

		break
	}

	if err := k.Load(env.ProviderWithValue("", ".", envKey), nil); err != nil {
		return nil, "", fmt.Errorf("failed to load environment: %w", err)
	}

	var config Config
	if err := k.Unmarshal("", &config); err != nil {
		return nil, "", fmt.Errorf("error unmarshaling config: %w", err)
	}

	if usedConfigPath != "" {
		if err := checkConfigVersion(config.Version, CurrentVersion); err != nil {
			return nil, "", err
		}
	}

	return &config, usedConfigPath, nil
}

// envKey maps an environment variable to a config key. Unrelated variables map to
// an empty key and are skipped.
func envKey(key, value string) (string, any) {
	switch key {
	case "BOT_TOKEN":
		return "bot.token", value
	case "PORT":
		return "health.port", value
	}

	rest, ok := strings.CutPrefix(key, EnvPrefix)
	if !ok || rest == "" {
		return "", nil
	}

	return strings.ToLower(strings.ReplaceAll(rest, "__", ".")), value
}

// checkConfigVersion checks if the config file version is correct.
func checkConfigVersion(current, expected int) error {
	if current == 0 {
		return fmt.Errorf("%w: %s", ErrConfigVersionMissing, FileName)
	}

	if current != expected {
		return fmt.Errorf("%w: %s (got: %d, expected: %d)",
			ErrConfigVersionMismatch, FileName, current, expected)
	}

	return nil
}
