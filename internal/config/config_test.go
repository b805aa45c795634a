package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// chdirTemp moves into a fresh temp dir for the duration of the test and
// clears the env vars Load reads.
func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	oldWd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(oldWd) })

	for _, key := range []string{"ENV_NAME", "WEATHER_API_KEY"} {
		old, had := os.LookupEnv(key)
		_ = os.Unsetenv(key)
		t.Cleanup(func() {
			if had {
				_ = os.Setenv(key, old)
			} else {
				_ = os.Unsetenv(key)
			}
		})
	}
	return dir
}

func writeConfigFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Join(dir, "config"), 0o755); err != nil {
		t.Fatalf("mkdir config: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config", name), []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestLoad_DefaultsAndEnvKey(t *testing.T) {
	dir := chdirTemp(t)
	writeConfigFile(t, dir, "dev.yaml", "server:\n  port: \"9090\"\n")
	_ = os.Setenv("WEATHER_API_KEY", "env-api-key-12345")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.ServerPort != "9090" {
		t.Errorf("ServerPort = %q, want 9090", cfg.ServerPort)
	}
	if cfg.WeatherAPIKey != "env-api-key-12345" {
		t.Errorf("WeatherAPIKey = %q, want env value", cfg.WeatherAPIKey)
	}
	if cfg.WeatherAPIURL != "https://api.weather.com" {
		t.Errorf("WeatherAPIURL = %q, want default", cfg.WeatherAPIURL)
	}
	if cfg.WeatherAPITimeout != 10*time.Second {
		t.Errorf("WeatherAPITimeout = %v, want 10s", cfg.WeatherAPITimeout)
	}
	if cfg.RequestTimeout != 35*time.Second {
		t.Errorf("RequestTimeout = %v, want 35s", cfg.RequestTimeout)
	}
	if cfg.RateLimitRPS != 100 || cfg.RateLimitBurst != 250 {
		t.Errorf("rate limit = %d/%d, want 100/250", cfg.RateLimitRPS, cfg.RateLimitBurst)
	}
	if cfg.DataDir != "data" {
		t.Errorf("DataDir = %q, want data", cfg.DataDir)
	}
	if cfg.StationIDMinLength != 3 || cfg.StationIDMaxLength != 32 {
		t.Errorf("station id bounds = %d/%d, want 3/32", cfg.StationIDMinLength, cfg.StationIDMaxLength)
	}
}

func TestLoad_MissingAPIKey(t *testing.T) {
	dir := chdirTemp(t)
	writeConfigFile(t, dir, "dev.yaml", "server:\n  port: \"8080\"\n")

	_, err := Load()
	if err == nil {
		t.Fatal("Load() expected error without API key")
	}
	if !strings.Contains(err.Error(), "WEATHER_API_KEY") {
		t.Errorf("Load() error = %v, want mention of WEATHER_API_KEY", err)
	}
}

func TestLoad_SecretsFileFallback(t *testing.T) {
	dir := chdirTemp(t)
	writeConfigFile(t, dir, "dev.yaml", "server:\n  port: \"8080\"\n")
	writeConfigFile(t, dir, "secrets.yaml", "weather_api_key: secrets-key-12345\n")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.WeatherAPIKey != "secrets-key-12345" {
		t.Errorf("WeatherAPIKey = %q, want secrets file value", cfg.WeatherAPIKey)
	}
}

func TestLoad_EnvKeyBeatsSecretsFile(t *testing.T) {
	dir := chdirTemp(t)
	writeConfigFile(t, dir, "dev.yaml", "server:\n  port: \"8080\"\n")
	writeConfigFile(t, dir, "secrets.yaml", "weather_api_key: secrets-key-12345\n")
	_ = os.Setenv("WEATHER_API_KEY", "env-api-key-12345")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.WeatherAPIKey != "env-api-key-12345" {
		t.Errorf("WeatherAPIKey = %q, want env to take precedence", cfg.WeatherAPIKey)
	}
}

func TestLoad_EnvNameSelectsFile(t *testing.T) {
	dir := chdirTemp(t)
	writeConfigFile(t, dir, "prod.yaml", "server:\n  port: \"8443\"\n")
	_ = os.Setenv("ENV_NAME", "prod")
	_ = os.Setenv("WEATHER_API_KEY", "env-api-key-12345")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.ServerPort != "8443" {
		t.Errorf("ServerPort = %q, want 8443 from prod.yaml", cfg.ServerPort)
	}
}

func TestLoad_MissingConfigFile(t *testing.T) {
	chdirTemp(t)
	_ = os.Setenv("WEATHER_API_KEY", "env-api-key-12345")

	_, err := Load()
	if err == nil {
		t.Fatal("Load() expected error for missing config file")
	}
	if !strings.Contains(err.Error(), "config file not found") {
		t.Errorf("Load() error = %v, want config file not found", err)
	}
}

func TestLoad_RequestTimeoutAutoRaised(t *testing.T) {
	dir := chdirTemp(t)
	writeConfigFile(t, dir, "dev.yaml",
		"weather_api:\n  timeout: 20s\nrequest:\n  timeout: 30s\n")
	_ = os.Setenv("WEATHER_API_KEY", "env-api-key-12345")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	// 30s does not cover three sequential 20s calls.
	want := 3*20*time.Second + 5*time.Second
	if cfg.RequestTimeout != want {
		t.Errorf("RequestTimeout = %v, want auto-raised %v", cfg.RequestTimeout, want)
	}
}

func TestLoad_BadDurationFallsBackToDefault(t *testing.T) {
	dir := chdirTemp(t)
	writeConfigFile(t, dir, "dev.yaml", "weather_api:\n  timeout: not-a-duration\n")
	_ = os.Setenv("WEATHER_API_KEY", "env-api-key-12345")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.WeatherAPITimeout != 10*time.Second {
		t.Errorf("WeatherAPITimeout = %v, want default 10s", cfg.WeatherAPITimeout)
	}
}

func TestLoad_InvalidStationIDBounds(t *testing.T) {
	dir := chdirTemp(t)
	writeConfigFile(t, dir, "dev.yaml",
		"validation:\n  station_id_min_length: 40\n  station_id_max_length: 10\n")
	_ = os.Setenv("WEATHER_API_KEY", "env-api-key-12345")

	if _, err := Load(); err == nil {
		t.Fatal("Load() expected error for min > max station id bounds")
	}
}

func TestPaths(t *testing.T) {
	cfg := &Config{DataDir: "data", PrefsFile: "preferences.yaml", FavoritesFile: "favorites.json"}
	if got := cfg.PrefsPath(); got != filepath.Join("data", "preferences.yaml") {
		t.Errorf("PrefsPath() = %q", got)
	}
	if got := cfg.FavoritesPath(); got != filepath.Join("data", "favorites.json") {
		t.Errorf("FavoritesPath() = %q", got)
	}
}
