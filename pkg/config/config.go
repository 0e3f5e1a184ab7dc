// Package config loads nourish settings from .nourish files and NOURISH_*
// environment variables.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

const (
	BackendDiskv    = "diskv"
	BackendPostgres = "postgres"
)

// Config is the resolved configuration for one invocation.
type Config struct {
	Path        string
	Backend     string
	DatabaseURL string

	Log struct {
		Level  string
		Format string
		File   string
	}

	RemindInterval       time.Duration
	NotificationsEnabled bool

	Gestures Gestures
	UI       UI

	EdamamAppID      string
	EdamamAppKey     string
	OpenFoodFactsURL string
}

// Gestures tunes the touch state machines.
type Gestures struct {
	PullThreshold    float64
	ReleaseThreshold float64
	RefreshTimeout   time.Duration
	SwipeThreshold   float64
	FrameInterval    time.Duration

	// ReversalTolerance is the upward wobble a pull survives.
	ReversalTolerance float64
}

// UI maps terminal cells onto touch points.
type UI struct {
	CellWidth  float64
	CellHeight float64
}

// BasePath is the directory the diskv backend writes into.
func (c *Config) BasePath() string {
	return c.Path
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("path", "~/.nourish.db")
	v.SetDefault("backend", BackendDiskv)
	v.SetDefault("database_url", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.file", "")
	v.SetDefault("reminders.interval", 30*time.Second)
	v.SetDefault("notifications.enabled", true)
	v.SetDefault("gestures.pull_threshold", 80)
	v.SetDefault("gestures.release_threshold", 60)
	v.SetDefault("gestures.refresh_timeout", 2*time.Second)
	v.SetDefault("gestures.swipe_threshold", 50)
	v.SetDefault("gestures.frame_interval", 16*time.Millisecond)
	v.SetDefault("gestures.reversal_tolerance", 4)
	v.SetDefault("ui.cell_width", 10)
	v.SetDefault("ui.cell_height", 20)
	v.SetDefault("edamam.app_id", "")
	v.SetDefault("edamam.app_key", "")
	v.SetDefault("openfoodfacts.url", "https://world.openfoodfacts.org")
}

// Load reads .nourish (yaml is implicit) from $NOURISH_CONFIG_PATH or the
// working directory. A missing file is not an error.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetConfigName(".nourish")
	v.SetEnvPrefix("NOURISH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if override := os.Getenv("NOURISH_CONFIG_PATH"); override != "" {
		v.AddConfigPath(override)
	}
	v.AddConfigPath("./")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("config: read: %w", err)
		}
	}
	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	path, err := homedir.Expand(v.GetString("path"))
	if err != nil {
		return nil, fmt.Errorf("config: expand path: %w", err)
	}

	c := &Config{
		Path:                 path,
		Backend:              strings.ToLower(v.GetString("backend")),
		DatabaseURL:          v.GetString("database_url"),
		RemindInterval:       v.GetDuration("reminders.interval"),
		NotificationsEnabled: v.GetBool("notifications.enabled"),
		Gestures: Gestures{
			PullThreshold:     v.GetFloat64("gestures.pull_threshold"),
			ReleaseThreshold:  v.GetFloat64("gestures.release_threshold"),
			RefreshTimeout:    v.GetDuration("gestures.refresh_timeout"),
			SwipeThreshold:    v.GetFloat64("gestures.swipe_threshold"),
			FrameInterval:     v.GetDuration("gestures.frame_interval"),
			ReversalTolerance: v.GetFloat64("gestures.reversal_tolerance"),
		},
		UI: UI{
			CellWidth:  v.GetFloat64("ui.cell_width"),
			CellHeight: v.GetFloat64("ui.cell_height"),
		},
		EdamamAppID:      v.GetString("edamam.app_id"),
		EdamamAppKey:     v.GetString("edamam.app_key"),
		OpenFoodFactsURL: v.GetString("openfoodfacts.url"),
	}
	c.Log.Level = v.GetString("log.level")
	c.Log.Format = v.GetString("log.format")
	c.Log.File = v.GetString("log.file")

	switch c.Backend {
	case BackendDiskv:
	case BackendPostgres:
		if c.DatabaseURL == "" {
			return nil, fmt.Errorf("config: backend %q requires database_url", c.Backend)
		}
	default:
		return nil, fmt.Errorf("config: unknown backend %q", c.Backend)
	}
	if c.RemindInterval <= 0 {
		return nil, fmt.Errorf("config: reminders.interval must be positive, got %s", c.RemindInterval)
	}
	return c, nil
}
