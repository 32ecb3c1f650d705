package main

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/voiceofseren/vostracker/go/clients/vos_client"
	"github.com/voiceofseren/vostracker/go/internal/orchestrator"
)

type Config struct {
	API struct {
		BaseURL string `yaml:"base_url"`
	} `yaml:"api"`
	Store struct {
		Path string `yaml:"path"`
	} `yaml:"store"`
	Detector struct {
		Command     string   `yaml:"command"`
		Args        []string `yaml:"args"`
		ActiveProbe string   `yaml:"active_probe"`
	} `yaml:"detector"`
	Vote struct {
		FreshnessMinutes     int `yaml:"freshness_minutes"`
		PrimetimeMinutes     int `yaml:"primetime_minutes"`
		EarlyHourHoldSeconds int `yaml:"early_hour_hold_seconds"`
		VenueCooldownSeconds int `yaml:"venue_cooldown_seconds"`
	} `yaml:"vote"`
	Logging struct {
		Debug bool `yaml:"debug"`
	} `yaml:"logging"`
}

func loadConfig(path string) (*Config, error) {
	config := defaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// No config file; defaults plus env overrides.
	case err != nil:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	default:
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	config.API.BaseURL = getEnv("VOS_API_URL", config.API.BaseURL)
	config.Store.Path = getEnv("VOS_DB_PATH", config.Store.Path)
	config.Detector.Command = getEnv("VOS_SCANNER_CMD", config.Detector.Command)
	if os.Getenv("VOS_DEBUG") == "true" {
		config.Logging.Debug = true
	}

	return config, nil
}

func defaultConfig() *Config {
	config := &Config{}
	config.API.BaseURL = vos_client.BaseURL
	config.Store.Path = "vostracker.db"
	config.Vote.FreshnessMinutes = 5
	config.Vote.PrimetimeMinutes = 2
	config.Vote.EarlyHourHoldSeconds = 30
	config.Vote.VenueCooldownSeconds = 20
	return config
}

// orchestratorConfig maps the tunable file settings onto the production
// defaults.
func (c *Config) orchestratorConfig() orchestrator.Config {
	cfg := orchestrator.DefaultConfig()
	if c.Vote.FreshnessMinutes > 0 {
		cfg.Freshness = time.Duration(c.Vote.FreshnessMinutes) * time.Minute
	}
	if c.Vote.PrimetimeMinutes > 0 {
		cfg.PrimetimeWindow = time.Duration(c.Vote.PrimetimeMinutes) * time.Minute
	}
	if c.Vote.EarlyHourHoldSeconds > 0 {
		cfg.EarlyHourHold = time.Duration(c.Vote.EarlyHourHoldSeconds) * time.Second
	}
	if c.Vote.VenueCooldownSeconds > 0 {
		cfg.VenueCooldown = time.Duration(c.Vote.VenueCooldownSeconds) * time.Second
	}
	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
