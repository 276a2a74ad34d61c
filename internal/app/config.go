package app

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Output formats for validated pipelines.
const (
	OutputNone   = "none"
	OutputJSON   = "json"
	OutputSource = "source"
)

// Config holds everything an App instance needs to run.
type Config struct {
	InputPath string // a pipeline file, or a directory to scan

	Output     string
	ServerPort int
	LogFormat  string
	LogLevel   string
}

// NewConfig validates a Config and returns it.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.InputPath == "" && cfg.ServerPort == 0 {
		return nil, errors.New("InputPath is required unless running in server mode")
	}
	switch cfg.Output {
	case "", OutputNone, OutputJSON, OutputSource:
	default:
		return nil, fmt.Errorf("invalid output format %q: must be 'none', 'json' or 'source'", cfg.Output)
	}
	return &cfg, nil
}

// fileConfig is the YAML shape of an optional config file. Every field is
// optional; file values only fill fields the flags left unset.
type fileConfig struct {
	Output string `yaml:"output"`
	Log    struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
	Server struct {
		Port int `yaml:"port"`
	} `yaml:"server"`
}

// ApplyConfigFile overlays settings from a YAML file onto cfg, without
// overriding anything already set.
func ApplyConfigFile(cfg *Config, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(raw, &fc); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	if cfg.Output == "" {
		cfg.Output = fc.Output
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = fc.Log.Level
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = fc.Log.Format
	}
	if cfg.ServerPort == 0 {
		cfg.ServerPort = fc.Server.Port
	}
	return nil
}
