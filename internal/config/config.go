// Package config loads and saves the YAML application configuration.
package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"raumcheck/internal/tz"
)

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address for the query API.
	Listen string `yaml:"listen"`

	// Timezone is the IANA reference zone all instants are normalized
	// into (e.g. "Europe/Berlin").
	Timezone string `yaml:"timezone"`

	// FeedBaseURL is the calendar endpoint; one feed per course id at
	// <feed_base_url>/<course_id>.
	FeedBaseURL string `yaml:"feed_base_url"`

	// CourseIDs is the fixed set of course calendar feeds to aggregate.
	CourseIDs []string `yaml:"course_ids"`

	// FetchTimeoutSeconds is the per-feed fetch timeout.
	FetchTimeoutSeconds int `yaml:"fetch_timeout_seconds"`

	// FetchConcurrency caps simultaneous in-flight feed fetches.
	FetchConcurrency int `yaml:"fetch_concurrency"`

	// SnapshotPath is the daily feed snapshot file. Empty disables
	// snapshotting (every query refetches).
	SnapshotPath string `yaml:"snapshot_path"`

	// RefreshCron schedules the background snapshot refresh
	// (e.g. "0 5 * * *" for 05:00 every day).
	RefreshCron string `yaml:"refresh"`
}

// DefaultConfig returns the in-memory default configuration: the known
// DHBW Friedrichshafen course feeds against dhbw.app.
func DefaultConfig() *Config {
	return &Config{
		Listen:              "127.0.0.1:8080",
		Timezone:            tz.DefaultZone,
		FeedBaseURL:         "https://dhbw.app/ical",
		CourseIDs:           defaultCourseIDs(),
		FetchTimeoutSeconds: 10,
		FetchConcurrency:    20,
		SnapshotPath:        "/var/lib/raumcheck/snapshot.json",
		RefreshCron:         "0 5 * * *",
	}
}

// Normalize fills in missing/zero values so partially-filled configs
// still behave correctly.
func (c *Config) Normalize() {
	if c.Listen == "" {
		c.Listen = "127.0.0.1:8080"
	}
	if c.Timezone == "" {
		c.Timezone = tz.DefaultZone
	}
	if c.FeedBaseURL == "" {
		c.FeedBaseURL = "https://dhbw.app/ical"
	}
	if len(c.CourseIDs) == 0 {
		c.CourseIDs = defaultCourseIDs()
	}
	if c.FetchTimeoutSeconds <= 0 {
		c.FetchTimeoutSeconds = 10
	}
	if c.FetchConcurrency <= 0 {
		c.FetchConcurrency = 20
	}
	if c.RefreshCron == "" {
		c.RefreshCron = "0 5 * * *"
	}
}

// FetchTimeout returns the per-feed timeout as a duration.
func (c *Config) FetchTimeout() time.Duration {
	return time.Duration(c.FetchTimeoutSeconds) * time.Second
}

// Load loads configuration from the given YAML path. A missing file is a
// first run: the default config is written (0600) and returned.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()

	return &cfg, nil
}

// Save writes the configuration atomically (temp file + rename, 0600).
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".raumcheck-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}

	return os.Rename(tmpName, path)
}
