package config

import (
	"errors"
	"fmt"
	"os"

	"safeview-shield/internal/logger"
	"safeview-shield/internal/models"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultTickIntervalMs     = 100
	DefaultDurationCap        = 120
	DefaultTriggerThreshold   = 30
	DefaultSkipStepSeconds    = 10
	DefaultSkipFurtherSeconds = 10
	DefaultSkippedSeconds     = 12
	DefaultPlatform           = "YouTube"
	DefaultReason             = "Loud scream + dark scene + facial distortion"
	DefaultManualReason       = "Manual test: gory frame"
)

// LoadConfig reads the configuration from a file, then applies environment
// overrides. A missing file is not an error when path is empty.
func LoadConfig(path string) (*models.Config, error) {
	var cfg models.Config

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := godotenv.Load(); err == nil {
		logger.Debug("loaded environment variables from .env file")
	}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config from environment: %w", err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ApplyDefaults fills every unset field with the stock demo values.
func ApplyDefaults(cfg *models.Config) {
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = "text"
	}

	if cfg.MQTT.ClientID == "" {
		cfg.MQTT.ClientID = "safeview-shield"
	}
	if cfg.MQTT.CommandTopic == "" {
		cfg.MQTT.CommandTopic = "safeview/player/command"
	}
	if cfg.MQTT.StateTopic == "" {
		cfg.MQTT.StateTopic = "safeview/player/state"
	}
	if cfg.MQTT.IncidentsTopic == "" {
		cfg.MQTT.IncidentsTopic = "safeview/incidents"
	}

	p := &cfg.Player
	if p.TickIntervalMs == 0 {
		p.TickIntervalMs = DefaultTickIntervalMs
	}
	if p.DurationCap == 0 {
		p.DurationCap = DefaultDurationCap
	}
	if p.TriggerThreshold == 0 {
		p.TriggerThreshold = DefaultTriggerThreshold
	}
	if p.SkipStepSeconds == 0 {
		p.SkipStepSeconds = DefaultSkipStepSeconds
	}
	if p.SkipFurtherSeconds == 0 {
		p.SkipFurtherSeconds = DefaultSkipFurtherSeconds
	}
	if p.SkippedSeconds == 0 {
		p.SkippedSeconds = DefaultSkippedSeconds
	}
	if p.Platform == "" {
		p.Platform = DefaultPlatform
	}
	if p.Reason == "" {
		p.Reason = DefaultReason
	}
	if p.ManualReason == "" {
		p.ManualReason = DefaultManualReason
	}

	if cfg.IncidentLog.Categories == nil {
		cfg.IncidentLog.Categories = map[string]string{}
	}
	if _, ok := cfg.IncidentLog.Categories[p.Reason]; !ok {
		cfg.IncidentLog.Categories[p.Reason] = "Jumpscare"
	}
}

// Validate checks the player settings for values the controller cannot honour.
func Validate(cfg *models.Config) error {
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return fmt.Errorf("invalid log_format: %q (want text or json)", cfg.LogFormat)
	}
	p := cfg.Player
	if p.TickIntervalMs <= 0 {
		return fmt.Errorf("invalid tick_interval_ms: %d (must be positive)", p.TickIntervalMs)
	}
	if p.DurationCap <= 0 {
		return fmt.Errorf("invalid duration_cap: %d (must be positive)", p.DurationCap)
	}
	if p.TriggerThreshold <= 0 || p.TriggerThreshold > p.DurationCap {
		return fmt.Errorf("invalid trigger_threshold: %d (must be in 1..%d)", p.TriggerThreshold, p.DurationCap)
	}
	if p.SkipStepSeconds < 0 || p.SkipFurtherSeconds < 0 || p.SkippedSeconds < 0 {
		return errors.New("skip durations must be non-negative")
	}
	for i, s := range cfg.IncidentLog.Seed {
		if s.Skipped < 0 {
			return fmt.Errorf("incident_log.seed[%d]: skipped must be non-negative", i)
		}
	}
	return nil
}
