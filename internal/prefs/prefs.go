// Package prefs holds the flat user preference list: display units,
// theme, language and per-metric chart colors. Preferences are passed as
// an explicit value into every formatting and fetch call; nothing reads
// them from ambient global state.
package prefs

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/MrVISKman11/AppTiempo/internal/units"
)

// Chart color preference keys, one per charted metric.
const (
	ColorTemperature = "temperature"
	ColorFeelsLike   = "feelsLike"
	ColorWind        = "wind"
	ColorPrecip      = "precipitation"
	ColorSolar       = "solarRadiation"
	ColorUV          = "uv"
	ColorPressure    = "pressure"
)

// UserPreferences is a snapshot of the preference list. Callers re-read
// it from the Store before every fetch rather than caching it.
type UserPreferences struct {
	TempUnit    string            `yaml:"temp_unit" json:"tempUnit"`
	SpeedUnit   string            `yaml:"speed_unit" json:"speedUnit"`
	PrecipUnit  string            `yaml:"precip_unit" json:"precipUnit"`
	Theme       string            `yaml:"theme" json:"theme"`
	Language    string            `yaml:"language" json:"language"`
	ChartColors map[string]string `yaml:"chart_colors" json:"chartColors"`
}

// Default returns the documented defaults: metric units, system theme.
func Default() UserPreferences {
	return UserPreferences{
		TempUnit:   units.TempCelsius,
		SpeedUnit:  units.SpeedKmh,
		PrecipUnit: units.PrecipMm,
		Theme:      "system",
		Language:   "es",
		ChartColors: map[string]string{
			ColorTemperature: "#FF0000",
			ColorFeelsLike:   "#FFA500",
			ColorWind:        "#00FF00",
			ColorPrecip:      "#0000FF",
			ColorSolar:       "#FFFF00",
			ColorUV:          "#FF00FF",
			ColorPressure:    "#00FFFF",
		},
	}
}

// ChartColor resolves the color for a metric key, falling back to the
// default palette when the user never picked one.
func (p UserPreferences) ChartColor(key string) string {
	if c, ok := p.ChartColors[key]; ok && c != "" {
		return c
	}
	return Default().ChartColors[key]
}

// normalize fills empty fields with defaults so partially written
// preference files never produce unitless output.
func (p *UserPreferences) normalize() {
	def := Default()
	if p.TempUnit != units.TempFahrenheit {
		p.TempUnit = units.TempCelsius
	}
	if p.SpeedUnit != units.SpeedMph {
		p.SpeedUnit = units.SpeedKmh
	}
	if p.PrecipUnit != units.PrecipInch {
		p.PrecipUnit = units.PrecipMm
	}
	if p.Theme == "" {
		p.Theme = def.Theme
	}
	if p.Language == "" {
		p.Language = def.Language
	}
	if p.ChartColors == nil {
		p.ChartColors = map[string]string{}
	}
}

// Store persists preferences as a single YAML file. Mutations are
// read-modify-write under one mutex; the file is replaced atomically.
type Store struct {
	path string
	mu   sync.Mutex
}

// NewStore returns a Store backed by the given file path. The file is
// created lazily on first save; a missing file loads as defaults.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Load reads the current preferences, applying defaults for anything unset.
func (s *Store) Load() (UserPreferences, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked()
}

func (s *Store) loadLocked() (UserPreferences, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return UserPreferences{}, fmt.Errorf("read preferences: %w", err)
	}
	var p UserPreferences
	if err := yaml.Unmarshal(data, &p); err != nil {
		return UserPreferences{}, fmt.Errorf("parse preferences: %w", err)
	}
	p.normalize()
	return p, nil
}

// Save replaces the stored preferences.
func (s *Store) Save(p UserPreferences) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.normalize()
	return s.saveLocked(p)
}

func (s *Store) saveLocked(p UserPreferences) error {
	data, err := yaml.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode preferences: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create preferences dir: %w", err)
	}
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write preferences: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace preferences: %w", err)
	}
	return nil
}

// Update applies fn to the stored preferences atomically relative to
// other mutations from this process.
func (s *Store) Update(fn func(*UserPreferences)) (UserPreferences, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, err := s.loadLocked()
	if err != nil {
		return UserPreferences{}, err
	}
	fn(&p)
	p.normalize()
	if err := s.saveLocked(p); err != nil {
		return UserPreferences{}, err
	}
	return p, nil
}
