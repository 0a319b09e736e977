package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	// ConfigDir is the default config directory name.
	ConfigDir = ".signaldesk"
	// ConfigFile is the default config file name.
	ConfigFile = "config.json"
	// envPrefix namespaces all environment overrides.
	envPrefix = "SIGNALDESK"
)

// ConfigPath returns the path to the config file. SIGNALDESK_CONFIG
// overrides the default ~/.signaldesk/config.json location.
func ConfigPath() (string, error) {
	if explicit := strings.TrimSpace(os.Getenv("SIGNALDESK_CONFIG")); explicit != "" {
		if strings.HasPrefix(explicit, "~") {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			return filepath.Join(home, explicit[1:]), nil
		}
		return explicit, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ConfigDir, ConfigFile), nil
}

// Load reads the config file (if present), applies defaults, then
// applies environment overrides. A missing file is not an error.
func Load() (*Config, error) {
	cfg := &Config{}

	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err == nil {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	applyDefaults(cfg)

	if err := envconfig.Process(envPrefix, cfg); err != nil {
		return nil, fmt.Errorf("apply env overrides: %w", err)
	}

	return cfg, nil
}

// Save writes the config as indented JSON, creating the directory.
func Save(cfg *Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

func applyDefaults(cfg *Config) {
	if cfg.Paths.DataDir == "" {
		home, err := os.UserHomeDir()
		if err == nil {
			cfg.Paths.DataDir = filepath.Join(home, ConfigDir)
		}
	}
	if cfg.Paths.DBPath == "" && cfg.Paths.DataDir != "" {
		cfg.Paths.DBPath = filepath.Join(cfg.Paths.DataDir, "signaldesk.db")
	}
	if cfg.Model.Name == "" {
		cfg.Model.Name = "gemini-2.0-flash"
	}
	if cfg.Model.MaxTokens <= 0 {
		cfg.Model.MaxTokens = 500
	}
	if cfg.Model.Temperature == 0 {
		cfg.Model.Temperature = 0.5
	}
	if cfg.Brand.Context == "" {
		cfg.Brand.Context = "General marketing organization"
	}
	if len(cfg.Brand.Constraints) == 0 {
		cfg.Brand.Constraints = []string{"Protect brand equity", "Verify all claims"}
	}
	if cfg.Providers.Default == "" {
		cfg.Providers.Default = "gemini"
	}
	if cfg.Ingest.PollInterval == "" {
		cfg.Ingest.PollInterval = "15m"
	}
	if cfg.Ingest.NewsQuery == "" {
		cfg.Ingest.NewsQuery = "artificial intelligence enterprise"
	}
	if cfg.Ingest.Kafka.Topic == "" {
		cfg.Ingest.Kafka.Topic = "signaldesk.signals"
	}
	if cfg.Ingest.Kafka.ConsumerGroup == "" {
		cfg.Ingest.Kafka.ConsumerGroup = "signaldesk"
	}
	if cfg.Loop.MaxSteps <= 0 {
		cfg.Loop.MaxSteps = 10
	}
	if cfg.Loop.StepTimeout == "" {
		cfg.Loop.StepTimeout = "30s"
	}
	if cfg.Loop.AgentName == "" {
		cfg.Loop.AgentName = "Julius"
	}
	if cfg.Loop.DialogueWindow <= 0 {
		cfg.Loop.DialogueWindow = 10
	}
	if cfg.Tools.BrowseMaxBytes <= 0 {
		cfg.Tools.BrowseMaxBytes = 64 * 1024
	}
}

// PollInterval parses the ingest poll interval, defaulting to 15m.
func (c *Config) PollInterval() time.Duration {
	d, err := time.ParseDuration(c.Ingest.PollInterval)
	if err != nil || d <= 0 {
		return 15 * time.Minute
	}
	return d
}

// StepTimeout parses the loop per-step timeout, defaulting to 30s.
func (c *Config) StepTimeout() time.Duration {
	d, err := time.ParseDuration(c.Loop.StepTimeout)
	if err != nil || d <= 0 {
		return 30 * time.Second
	}
	return d
}
