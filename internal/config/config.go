package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	toml "github.com/pelletier/go-toml/v2"

	"github.com/five82/fredview/internal/logging"
	"github.com/five82/fredview/internal/table"
)

// Config holds everything fredview reads at startup.
type Config struct {
	APIKey           string
	BaseURL          string
	SeriesID         string
	ObservationStart time.Time
	ObservationEnd   time.Time // zero means latest
	Timeout          time.Duration
	PollInterval     time.Duration
	LogLevel         slog.Level
	LogFormat        string
	LogFile          string
	ExportDir        string
}

// APIKeyEnv is the environment variable holding the FRED credential.
const APIKeyEnv = "FRED_KEY"

const (
	defaultConfigPath       = "~/.config/fredview/config.toml"
	defaultBaseURL          = "https://api.stlouisfed.org/fred/"
	defaultSeriesID         = "GDPC1"
	defaultObservationStart = "2020-01-01"
	defaultTimeout          = 10 * time.Second
	defaultPollInterval     = 30 * time.Minute
	defaultLogFormat        = "text"
	defaultLogFile          = "~/.local/state/fredview/fredview.log"
	defaultExportDir        = "~/.local/share/fredview/csv"
)

// dotEnvFile is loaded from the working directory before the environment is
// read. Variables already set are kept.
var dotEnvFile = ".env"

type rawConfig struct {
	BaseURL          string `toml:"base_url"`
	SeriesID         string `toml:"series_id"`
	ObservationStart string `toml:"observation_start"`
	ObservationEnd   string `toml:"observation_end"`
	Timeout          string `toml:"timeout"`
	PollInterval     string `toml:"poll_interval"`
	LogLevel         string `toml:"log_level"`
	LogFormat        string `toml:"log_format"`
	LogFile          string `toml:"log_file"`
	ExportDir        string `toml:"export_dir"`
}

// Load reads the TOML config at path (empty uses the default location) and
// the FRED_KEY credential. A missing config file yields defaults.
func Load(path string) (Config, error) {
	if err := loadDotEnv(dotEnvFile); err != nil {
		return Config{}, err
	}

	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	var raw rawConfig
	file, err := os.Open(resolved)
	switch {
	case err == nil:
		defer file.Close()
		data, err := io.ReadAll(file)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := toml.Unmarshal(data, &raw); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return Config{}, fmt.Errorf("open config: %w", err)
	}

	cfg, err := raw.resolve()
	if err != nil {
		return Config{}, err
	}
	cfg.APIKey = strings.TrimSpace(os.Getenv(APIKeyEnv))
	return cfg, nil
}

func (raw rawConfig) resolve() (Config, error) {
	cfg := Config{
		BaseURL:   orDefault(raw.BaseURL, defaultBaseURL),
		SeriesID:  strings.ToUpper(orDefault(raw.SeriesID, defaultSeriesID)),
		LogFormat: strings.ToLower(orDefault(raw.LogFormat, defaultLogFormat)),
		LogFile:   mustExpand(orDefault(raw.LogFile, defaultLogFile)),
		ExportDir: mustExpand(orDefault(raw.ExportDir, defaultExportDir)),
	}

	var err error
	if cfg.ObservationStart, err = table.ParseDate(orDefault(raw.ObservationStart, defaultObservationStart)); err != nil {
		return Config{}, fmt.Errorf("invalid observation_start %q: %w", raw.ObservationStart, err)
	}
	if end := strings.TrimSpace(raw.ObservationEnd); end != "" {
		if cfg.ObservationEnd, err = table.ParseDate(end); err != nil {
			return Config{}, fmt.Errorf("invalid observation_end %q: %w", end, err)
		}
		if cfg.ObservationEnd.Before(cfg.ObservationStart) {
			return Config{}, fmt.Errorf("invalid range: observation_end %s is before observation_start %s",
				end, cfg.ObservationStart.Format(table.DateLayout))
		}
	}
	if cfg.Timeout, err = parsePositive("timeout", raw.Timeout, defaultTimeout); err != nil {
		return Config{}, err
	}
	if cfg.PollInterval, err = parsePositive("poll_interval", raw.PollInterval, defaultPollInterval); err != nil {
		return Config{}, err
	}
	if cfg.LogLevel, err = logging.ParseLevel(raw.LogLevel); err != nil {
		return Config{}, err
	}
	switch cfg.LogFormat {
	case "text", "json":
	default:
		return Config{}, fmt.Errorf("invalid log_format %q (allowed: text, json)", cfg.LogFormat)
	}
	return cfg, nil
}

func loadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

func parsePositive(field, value string, fallback time.Duration) (time.Duration, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", field, value, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid %s %q: must be positive", field, value)
	}
	return d, nil
}

func orDefault(value, fallback string) string {
	if v := strings.TrimSpace(value); v != "" {
		return v
	}
	return fallback
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

// ExpandPath resolves a leading ~ and returns an absolute path.
func ExpandPath(path string) (string, error) {
	return expandPath(path)
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
