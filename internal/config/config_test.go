package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// isolate points HOME and the working directory at temp dirs so no real
// config or .env leaks into a test.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv(APIKeyEnv, "")
	t.Chdir(t.TempDir())
	return home
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestLoad_MissingConfigFallsBackToDefaults(t *testing.T) {
	home := isolate(t)

	cfg, err := Load(filepath.Join(home, "does-not-exist.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.BaseURL != defaultBaseURL {
		t.Fatalf("BaseURL = %q, want %q", cfg.BaseURL, defaultBaseURL)
	}
	if cfg.SeriesID != "GDPC1" {
		t.Fatalf("SeriesID = %q, want GDPC1", cfg.SeriesID)
	}
	if got := cfg.ObservationStart.Format("2006-01-02"); got != defaultObservationStart {
		t.Fatalf("ObservationStart = %s, want %s", got, defaultObservationStart)
	}
	if !cfg.ObservationEnd.IsZero() {
		t.Fatalf("ObservationEnd = %v, want zero", cfg.ObservationEnd)
	}
	if cfg.Timeout != 10*time.Second {
		t.Fatalf("Timeout = %v, want 10s", cfg.Timeout)
	}
	if cfg.PollInterval != 30*time.Minute {
		t.Fatalf("PollInterval = %v, want 30m", cfg.PollInterval)
	}
	if cfg.LogLevel != slog.LevelInfo || cfg.LogFormat != "text" {
		t.Fatalf("log = %v/%s, want info/text", cfg.LogLevel, cfg.LogFormat)
	}
	wantLog, err := expandPath(defaultLogFile)
	if err != nil {
		t.Fatalf("expandPath: %v", err)
	}
	if cfg.LogFile != wantLog {
		t.Fatalf("LogFile = %q, want %q", cfg.LogFile, wantLog)
	}
	if !strings.HasPrefix(cfg.ExportDir, home) {
		t.Fatalf("ExportDir = %q, want it under HOME %q", cfg.ExportDir, home)
	}
	if cfg.APIKey != "" {
		t.Fatalf("APIKey = %q, want empty", cfg.APIKey)
	}
}

func TestLoad_ParsesAndTrimsConfig(t *testing.T) {
	home := isolate(t)
	path := writeConfig(t, `
base_url = "  http://localhost:8080/fred/  "
series_id = " unrate "
observation_start = "2019-01-01"
observation_end = "2021-12-31"
timeout = "3s"
poll_interval = "5m"
log_level = "debug"
log_format = "JSON"
log_file = "~/logs/fv.log"
export_dir = "~/exports"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.BaseURL != "http://localhost:8080/fred/" {
		t.Fatalf("BaseURL = %q", cfg.BaseURL)
	}
	if cfg.SeriesID != "UNRATE" {
		t.Fatalf("SeriesID = %q, want UNRATE", cfg.SeriesID)
	}
	if got := cfg.ObservationEnd.Format("2006-01-02"); got != "2021-12-31" {
		t.Fatalf("ObservationEnd = %s, want 2021-12-31", got)
	}
	if cfg.Timeout != 3*time.Second || cfg.PollInterval != 5*time.Minute {
		t.Fatalf("durations = %v/%v, want 3s/5m", cfg.Timeout, cfg.PollInterval)
	}
	if cfg.LogLevel != slog.LevelDebug || cfg.LogFormat != "json" {
		t.Fatalf("log = %v/%s, want debug/json", cfg.LogLevel, cfg.LogFormat)
	}
	if cfg.LogFile != filepath.Join(home, "logs", "fv.log") {
		t.Fatalf("LogFile = %q", cfg.LogFile)
	}
}

func TestLoad_RejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"bad toml", `series_id = [`, "parse config"},
		{"bad start", `observation_start = "01/02/2020"`, "invalid observation_start"},
		{"bad end", `observation_end = "soon"`, "invalid observation_end"},
		{"end before start", "observation_start = \"2021-01-01\"\nobservation_end = \"2020-01-01\"", "invalid range"},
		{"bad timeout", `timeout = "fast"`, "invalid timeout"},
		{"zero poll", `poll_interval = "0s"`, "must be positive"},
		{"bad level", `log_level = "loud"`, "invalid log level"},
		{"bad format", `log_format = "xml"`, "invalid log_format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			_, err := Load(writeConfig(t, tt.body))
			if err == nil {
				t.Fatalf("Load returned nil error, want %q", tt.want)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("Load error = %q, want it to mention %q", err.Error(), tt.want)
			}
		})
	}
}

func TestLoad_ReadsAPIKeyFromEnvironment(t *testing.T) {
	home := isolate(t)
	t.Setenv(APIKeyEnv, "  secret  ")

	cfg, err := Load(filepath.Join(home, "missing.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.APIKey != "secret" {
		t.Fatalf("APIKey = %q, want secret", cfg.APIKey)
	}
}

func TestLoad_ReadsDotEnvWithoutOverriding(t *testing.T) {
	home := isolate(t)
	os.Unsetenv(APIKeyEnv)
	if err := os.WriteFile(".env", []byte("FRED_KEY=from-dotenv\n"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(filepath.Join(home, "missing.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.APIKey != "from-dotenv" {
		t.Fatalf("APIKey = %q, want from-dotenv", cfg.APIKey)
	}

	t.Setenv(APIKeyEnv, "from-env")
	cfg, err = Load(filepath.Join(home, "missing.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.APIKey != "from-env" {
		t.Fatalf("APIKey = %q, want from-env to win over .env", cfg.APIKey)
	}
}

func TestExpandPath_ExpandsTildeAndReturnsAbs(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	got, err := expandPath("~/a/b")
	if err != nil {
		t.Fatalf("expandPath returned error: %v", err)
	}
	want := filepath.Join(home, "a/b")
	if got != want {
		t.Fatalf("expandPath = %q, want %q", got, want)
	}
}

func TestExpandPath_EmptyErrors(t *testing.T) {
	if _, err := expandPath("   "); err == nil {
		t.Fatalf("expandPath returned nil error, want error")
	}
}
