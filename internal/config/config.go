package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds service configuration loaded from YAML and env.
type Config struct {
	ServerPort string

	WeatherAPIKey     string
	WeatherAPIURL     string
	WeatherAPITimeout time.Duration

	// RequestTimeout bounds one full fetch pipeline (three sequential
	// upstream calls). validate raises it when it cannot cover them.
	RequestTimeout time.Duration

	RateLimitRPS   int
	RateLimitBurst int

	ShutdownTimeout time.Duration

	// DataDir holds the preference and favorites files.
	DataDir       string
	PrefsFile     string
	FavoritesFile string

	// Timezone names the wall-clock zone for chart hour labels. Empty
	// means the process-local zone.
	Timezone string

	StationIDMinLength int
	StationIDMaxLength int

	TrackedStations []string
}

type fileConfig struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`

	WeatherAPI struct {
		URL     string `yaml:"url"`
		Timeout string `yaml:"timeout"`
	} `yaml:"weather_api"`

	Request struct {
		Timeout string `yaml:"timeout"`
	} `yaml:"request"`

	Reliability struct {
		RateLimitRPS   int `yaml:"rate_limit_rps"`
		RateLimitBurst int `yaml:"rate_limit_burst"`
	} `yaml:"reliability"`

	Shutdown struct {
		Timeout string `yaml:"timeout"`
	} `yaml:"shutdown"`

	Storage struct {
		DataDir       string `yaml:"data_dir"`
		PrefsFile     string `yaml:"prefs_file"`
		FavoritesFile string `yaml:"favorites_file"`
	} `yaml:"storage"`

	Display struct {
		Timezone string `yaml:"timezone"`
	} `yaml:"display"`

	Validation struct {
		StationIDMinLength int `yaml:"station_id_min_length"`
		StationIDMaxLength int `yaml:"station_id_max_length"`
	} `yaml:"validation"`

	Metrics struct {
		TrackedStations []string `yaml:"tracked_stations"`
	} `yaml:"metrics"`
}

type secretsFile struct {
	WeatherAPIKey string `yaml:"weather_api_key"`
}

// Load reads configuration from config/{ENV_NAME}.yaml (default dev) and
// config/secrets.yaml. The API key comes from the WEATHER_API_KEY env var
// or the secrets file, never from source. Call from project root.
func Load() (*Config, error) {
	env := os.Getenv("ENV_NAME")
	if env == "" {
		env = "dev"
	}

	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("config: get working directory: %w", err)
	}
	configPath := filepath.Join(cwd, "config", env+".yaml")
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found: %s", configPath)
		}
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	cfg := &Config{}

	cfg.ServerPort = fc.Server.Port
	if cfg.ServerPort == "" {
		cfg.ServerPort = "8080"
	}

	cfg.WeatherAPIKey = os.Getenv("WEATHER_API_KEY")
	if cfg.WeatherAPIKey == "" {
		secretsPath := filepath.Join(cwd, "config", "secrets.yaml")
		secretsData, err := os.ReadFile(secretsPath)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("read secrets file: %w", err)
			}
		} else {
			var sec secretsFile
			if err := yaml.Unmarshal(secretsData, &sec); err != nil {
				return nil, fmt.Errorf("parse secrets file: %w", err)
			}
			cfg.WeatherAPIKey = sec.WeatherAPIKey
		}
	}
	if cfg.WeatherAPIKey == "" {
		return nil, fmt.Errorf("WEATHER_API_KEY required (set env or config/secrets.yaml weather_api_key)")
	}

	cfg.WeatherAPIURL = fc.WeatherAPI.URL
	if cfg.WeatherAPIURL == "" {
		cfg.WeatherAPIURL = "https://api.weather.com"
	}
	cfg.WeatherAPIURL = strings.TrimRight(cfg.WeatherAPIURL, "/")
	cfg.WeatherAPITimeout = parseDuration(fc.WeatherAPI.Timeout, 10*time.Second)

	cfg.RequestTimeout = parseDuration(fc.Request.Timeout, 35*time.Second)

	cfg.RateLimitRPS = fc.Reliability.RateLimitRPS
	if cfg.RateLimitRPS <= 0 {
		cfg.RateLimitRPS = 100
	}
	cfg.RateLimitBurst = fc.Reliability.RateLimitBurst
	if cfg.RateLimitBurst <= 0 {
		cfg.RateLimitBurst = 250
	}

	cfg.ShutdownTimeout = parseDuration(fc.Shutdown.Timeout, 30*time.Second)

	cfg.DataDir = fc.Storage.DataDir
	if cfg.DataDir == "" {
		cfg.DataDir = "data"
	}
	cfg.PrefsFile = fc.Storage.PrefsFile
	if cfg.PrefsFile == "" {
		cfg.PrefsFile = "preferences.yaml"
	}
	cfg.FavoritesFile = fc.Storage.FavoritesFile
	if cfg.FavoritesFile == "" {
		cfg.FavoritesFile = "favorites.json"
	}

	cfg.Timezone = fc.Display.Timezone

	cfg.StationIDMinLength = fc.Validation.StationIDMinLength
	if cfg.StationIDMinLength <= 0 {
		cfg.StationIDMinLength = 3
	}
	cfg.StationIDMaxLength = fc.Validation.StationIDMaxLength
	if cfg.StationIDMaxLength <= 0 {
		cfg.StationIDMaxLength = 32
	}

	cfg.TrackedStations = fc.Metrics.TrackedStations

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// PrefsPath is the resolved preference store location.
func (c *Config) PrefsPath() string {
	return filepath.Join(c.DataDir, c.PrefsFile)
}

// FavoritesPath is the resolved favorites store location.
func (c *Config) FavoritesPath() string {
	return filepath.Join(c.DataDir, c.FavoritesFile)
}

// parseDuration parses a duration string and returns defaultVal if
// parsing fails or the result is <= 0.
func parseDuration(s string, defaultVal time.Duration) time.Duration {
	s = strings.TrimSpace(s)
	if s == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return defaultVal
	}
	return d
}

// validate performs post-load validation. RequestTimeout must cover the
// three sequential upstream calls; it is auto-raised when it does not.
func validate(cfg *Config) error {
	if cfg.WeatherAPITimeout <= 0 {
		return fmt.Errorf("weather_api.timeout must be positive")
	}
	if cfg.RequestTimeout <= 3*cfg.WeatherAPITimeout {
		cfg.RequestTimeout = 3*cfg.WeatherAPITimeout + 5*time.Second
	}
	if cfg.StationIDMinLength > cfg.StationIDMaxLength {
		return fmt.Errorf("validation: station_id_min_length %d exceeds max %d",
			cfg.StationIDMinLength, cfg.StationIDMaxLength)
	}
	return nil
}
