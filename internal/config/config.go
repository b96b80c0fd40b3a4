// Package config handles configuration file loading and parsing.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/jmylchreest/toastd/internal/model"
	"github.com/jmylchreest/toastd/internal/view"
)

// Default configuration values.
const (
	DefaultLogLevel     = "info"
	DefaultDelayMS      = 4000
	DefaultVisibleCount = 3
	DefaultToastHeight  = 3.0
	DefaultSoundVolume  = 0.8
)

// Config represents the toastd configuration.
type Config struct {
	Log     LogConfig      `toml:"log" yaml:"log"`
	Toast   ToastConfig    `toml:"toast" yaml:"toast"`
	Sound   SoundConfig    `toml:"sound" yaml:"sound"`
	Source  SourceConfig   `toml:"source" yaml:"source"`
	Viewers []ViewerConfig `toml:"viewers" yaml:"viewers"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `toml:"level" yaml:"level"` // debug, info, warn, error
}

// ToastConfig holds defaults applied to incoming toasts.
type ToastConfig struct {
	// Height is the declared layout height for toasts whose source does
	// not supply one.
	Height float64 `toml:"height" yaml:"height"`
}

// SoundConfig holds the arrival sound cue settings.
type SoundConfig struct {
	Enabled bool    `toml:"enabled" yaml:"enabled"`
	File    string  `toml:"file" yaml:"file"`
	Volume  float64 `toml:"volume" yaml:"volume"` // 0.0 to 1.0
}

// SourceConfig holds toast ingestion settings.
type SourceConfig struct {
	// DBus enables the passive org.freedesktop.Notifications monitor.
	DBus bool `toml:"dbus" yaml:"dbus"`
}

// ViewerConfig describes one viewer surface.
type ViewerConfig struct {
	Name           string   `toml:"name" yaml:"name"`
	Alignment      string   `toml:"alignment" yaml:"alignment"`
	DelayMS        int      `toml:"delay_ms" yaml:"delay_ms"` // 0 disables auto-dismiss
	VisibleCount   int      `toml:"visible_count" yaml:"visible_count"`
	Categories     []string `toml:"categories" yaml:"categories"` // empty accepts all
	Width          float64  `toml:"width" yaml:"width"`
	WidthThreshold float64  `toml:"width_threshold" yaml:"width_threshold"`
}

// DefaultConfig returns a Config with default values: one unfiltered
// bottom-right viewer.
func DefaultConfig() *Config {
	return &Config{
		Log:   LogConfig{Level: DefaultLogLevel},
		Toast: ToastConfig{Height: DefaultToastHeight},
		Sound: SoundConfig{Enabled: false, Volume: DefaultSoundVolume},
		Source: SourceConfig{
			DBus: false,
		},
		Viewers: []ViewerConfig{
			{
				Name:         "default",
				Alignment:    "bottom-right",
				DelayMS:      DefaultDelayMS,
				VisibleCount: DefaultVisibleCount,
				Width:        view.DefaultWidth,
			},
		},
	}
}

// ConfigPath returns the path to the config file.
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config.
func ConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "toastd", "config.toml")
}

// LoadConfig loads configuration from the specified path. If path is empty,
// the default config path is used; a missing file yields defaults. The
// format is chosen by extension: .yaml/.yml parse as YAML, anything else as
// TOML.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		path = ConfigPath()
	}

	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, err
	}

	// Viewers from the file replace the default viewer, they never append
	// to it.
	cfg.Viewers = nil

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	default:
		err = toml.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if len(cfg.Viewers) == 0 {
		cfg.Viewers = DefaultConfig().Viewers
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the parsed configuration for caller contract violations.
func (c *Config) Validate() error {
	if len(c.Viewers) == 0 {
		return errors.New("at least one viewer must be configured")
	}
	for i := range c.Viewers {
		vc := &c.Viewers[i]
		if vc.Name == "" {
			vc.Name = fmt.Sprintf("viewer-%d", i)
		}
		if vc.Alignment == "" {
			vc.Alignment = "bottom-right"
		}
		if _, err := view.ParseAlignment(vc.Alignment); err != nil {
			return fmt.Errorf("viewer %q: %w", vc.Name, err)
		}
		if vc.DelayMS < 0 {
			return fmt.Errorf("viewer %q: delay_ms cannot be negative", vc.Name)
		}
		if vc.VisibleCount <= 0 {
			vc.VisibleCount = DefaultVisibleCount
		}
	}
	if c.Sound.Volume < 0 {
		c.Sound.Volume = 0
	}
	if c.Sound.Volume > 1 {
		c.Sound.Volume = 1
	}
	if c.Toast.Height <= 0 {
		c.Toast.Height = DefaultToastHeight
	}
	return nil
}

// ViewConfig converts a ViewerConfig into the view package's immutable
// configuration.
func (vc ViewerConfig) ViewConfig() (view.Config, error) {
	alignment, err := view.ParseAlignment(vc.Alignment)
	if err != nil {
		return view.Config{}, err
	}

	var delay *time.Duration
	if vc.DelayMS > 0 {
		d := time.Duration(vc.DelayMS) * time.Millisecond
		delay = &d
	}

	var categories []model.Category
	for _, cat := range vc.Categories {
		categories = append(categories, model.Category(cat))
	}

	return view.Config{
		Alignment:      alignment,
		Delay:          delay,
		VisibleCount:   vc.VisibleCount,
		Categories:     categories,
		Width:          vc.Width,
		WidthThreshold: vc.WidthThreshold,
	}, nil
}

// Save writes the configuration to the specified path as TOML, creating
// parent directories if needed.
func (c *Config) Save(path string) error {
	if path == "" {
		path = ConfigPath()
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
