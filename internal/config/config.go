// Package config loads the reader configuration from a YAML file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"bible-tui/internal/source"
	"bible-tui/internal/theme"
)

const appName = "bible-tui"

// Config holds the application configuration.
type Config struct {
	Source      string          `yaml:"source"`       // URL or local path of the document
	Theme       string          `yaml:"theme"`        // theme key, see theme.Keys
	Overscan    int             `yaml:"overscan"`     // rows kept bound above and below the viewport
	HTTPTimeout time.Duration   `yaml:"http_timeout"` // 0 = no client timeout
	Animation   AnimationConfig `yaml:"scroll_animation"`
}

// AnimationConfig controls jump transitions.
type AnimationConfig struct {
	Frames   int           `yaml:"frames"` // 0 or 1 disables the animation
	Interval time.Duration `yaml:"interval"`
}

func DefaultConfig() Config {
	return Config{
		Source:      source.DefaultLocation,
		Theme:       theme.DefaultName,
		Overscan:    5,
		HTTPTimeout: 60 * time.Second,
		Animation: AnimationConfig{
			Frames:   8,
			Interval: 16 * time.Millisecond,
		},
	}
}

// DefaultPath returns <user config dir>/bible-tui/config.yaml.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, appName, "config.yaml")
}

// DefaultLogFile returns <user cache dir>/bible-tui/bible-tui.log.
func DefaultLogFile() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, appName, appName+".log")
}

// Load reads configuration from path. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read config file: %w", err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}
		}
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	defaults := DefaultConfig()
	if c.Source == "" {
		c.Source = defaults.Source
	}
	if c.Theme == "" {
		c.Theme = defaults.Theme
	}
	if c.Animation.Interval == 0 {
		c.Animation.Interval = defaults.Animation.Interval
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if _, ok := theme.Lookup(c.Theme); !ok {
		return fmt.Errorf("unknown theme %q (available: %v)", c.Theme, theme.Keys())
	}
	if c.Overscan < 0 {
		return fmt.Errorf("overscan must not be negative")
	}
	if c.Animation.Frames < 0 {
		return fmt.Errorf("scroll_animation.frames must not be negative")
	}
	if c.Animation.Interval < 0 {
		return fmt.Errorf("scroll_animation.interval must not be negative")
	}
	if c.HTTPTimeout < 0 {
		return fmt.Errorf("http_timeout must not be negative")
	}
	return nil
}
