// Package config loads the tracksync run configuration.
//
// Configuration comes from an optional YAML file (tracksync.yaml by default)
// and is then overridden by command-line flags:
//
//	database: ./tracksync.db
//	repo: ./content
//	track: ruby
//	workers: 8
//	anchor: hello-world
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultPath is the config file read when no --config flag is given.
const DefaultPath = "tracksync.yaml"

// Config holds the settings of a sync run.
type Config struct {
	// Database is the path of the SQLite database.
	Database string `yaml:"database"`

	// Repo is the root of the content repository snapshot layout.
	Repo string `yaml:"repo"`

	// Track restricts the run to one track slug. Empty means the track
	// declared by the repository.
	Track string `yaml:"track,omitempty"`

	// Workers is the number of exercises reconciled in parallel.
	Workers int `yaml:"workers"`

	// Anchor is the slug of the exercise pinned to position 0.
	Anchor string `yaml:"anchor"`
}

// Default returns the built-in defaults.
func Default() Config {
	return Config{
		Workers: 4,
		Anchor:  "hello-world",
	}
}

// Load reads path on top of the defaults.
// Unknown fields are rejected to catch typos.
//
// A missing file is not an error when optional is true; the defaults are returned.
func Load(path string, optional bool) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) && optional {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks that the settings needed for a run are present.
func (c Config) Validate() error {
	var errs []error
	if c.Database == "" {
		errs = append(errs, errors.New("database path is required"))
	}
	if c.Repo == "" {
		errs = append(errs, errors.New("content repository path is required"))
	}
	if c.Workers < 1 {
		errs = append(errs, fmt.Errorf("workers must be at least 1, got %d", c.Workers))
	}
	if c.Anchor == "" {
		errs = append(errs, errors.New("anchor slug is required"))
	}
	return errors.Join(errs...)
}
