// Package config resolves the client configuration: a YAML file merged over
// defaults, with the backend address overridable by environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// EnvBaseURL overrides the configured backend address.
	EnvBaseURL = "DOCCHAT_API_BASE"

	fileName = "docchat.yaml"
	appDir   = "docchat"
)

// Duration is a time.Duration that unmarshals from YAML strings like "750ms".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// API configures the backend connection.
type API struct {
	BaseURL string `yaml:"base_url"`
	// Timeout zero keeps the source model of no hard network deadline.
	Timeout Duration `yaml:"timeout"`
}

// Watch configures the drop-folder watcher.
type Watch struct {
	Dir      string   `yaml:"dir"`
	Debounce Duration `yaml:"debounce"`
}

type Config struct {
	API   API   `yaml:"api"`
	Watch Watch `yaml:"watch"`
}

// Default is the configuration used when no file is present.
func Default() Config {
	return Config{
		API: API{
			BaseURL: "http://localhost:8000",
		},
		Watch: Watch{
			Dir:      "pdf_inputs",
			Debounce: Duration(750 * time.Millisecond),
		},
	}
}

// Load merges the first config file found (working directory, then the user
// config dir) over Default and applies the environment override. A missing
// file is not an error; a present-but-broken one is.
func Load() (Config, error) {
	cfg := Default()
	if path := findFile(); path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}
	if base := os.Getenv(EnvBaseURL); base != "" {
		cfg.API.BaseURL = base
	}
	return cfg, nil
}

func findFile() string {
	if _, err := os.Stat(fileName); err == nil {
		return fileName
	}
	if dir, err := os.UserConfigDir(); err == nil {
		path := filepath.Join(dir, appDir, "config.yaml")
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

func loadFile(path string, cfg *Config) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}
