// Package config loads the process configuration from a JSON or YAML file.
// The file path comes from the caller or, when empty, from the CONF_FILE
// environment variable.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// EnvConfigFile names the environment variable consulted when Load is
// called without a path.
const EnvConfigFile = "CONF_FILE"

// Store selects and locates the table backend.
type Store struct {
	// Backend is "memory" or "sqlite".
	Backend string `json:"backend" yaml:"backend"`
	// Path is the sqlite database file. Ignored by the memory backend.
	Path string `json:"path" yaml:"path"`
}

// Stream configures the TCP event emitter.
type Stream struct {
	Address string `json:"address" yaml:"address"`
	Port    int    `json:"port" yaml:"port"`
	// Encoding is the envelope codec name: "json", "gob" or "plain".
	Encoding string `json:"encoding" yaml:"encoding"`
}

// Timeseries holds the connection settings for the time-series database.
type Timeseries struct {
	URL         string `json:"url" yaml:"url"`
	Org         string `json:"org" yaml:"org"`
	Token       string `json:"token" yaml:"token"`
	Bucket      string `json:"bucket" yaml:"bucket"`
	Measurement string `json:"measurement" yaml:"measurement"`
}

// Secrets carries the password used to decrypt stored credentials.
type Secrets struct {
	Password string `json:"password" yaml:"password"`
}

type Config struct {
	Store      Store      `json:"store" yaml:"store"`
	Stream     Stream     `json:"stream" yaml:"stream"`
	Timeseries Timeseries `json:"timeseries" yaml:"timeseries"`
	Secrets    Secrets    `json:"secrets" yaml:"secrets"`
	// Services holds free-form per-service settings that the typed sections
	// do not cover.
	Services map[string]map[string]any `json:"services" yaml:"services"`
}

// Load reads and decodes the configuration at path. An empty path falls back
// to the CONF_FILE environment variable.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv(EnvConfigFile)
	}
	if path == "" {
		return nil, errors.New("no config path given and " + EnvConfigFile + " is not set")
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	cfg := &Config{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(raw, cfg)
	default:
		err = json.Unmarshal(raw, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode config %s: %w", path, err)
	}
	return cfg, nil
}
