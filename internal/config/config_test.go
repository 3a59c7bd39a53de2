package config

import (
	"os"
	"path/filepath"
	"testing"

	"safeview-shield/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, "safeview/player/command", cfg.MQTT.CommandTopic)
	assert.Equal(t, 100, cfg.Player.TickIntervalMs)
	assert.Equal(t, 120, cfg.Player.DurationCap)
	assert.Equal(t, 30, cfg.Player.TriggerThreshold)
	assert.Equal(t, 12, cfg.Player.SkippedSeconds)
	assert.Equal(t, 10, cfg.Player.SkipFurtherSeconds)
	assert.Equal(t, "YouTube", cfg.Player.Platform)
	assert.Equal(t, "Jumpscare", cfg.IncidentLog.Categories[DefaultReason])
}

func TestLoadConfig_FileAndEnv(t *testing.T) {
	path := writeConfig(t, `
mqtt:
  broker: tcp://localhost:1883
player:
  duration_cap: 90
  trigger_threshold: 45
incident_log:
  categories:
    "Screaming audio": "Scream"
  seed:
    - at: "09:32"
      category: Jumpscare
      platform: YouTube
      skipped: 12
`)
	t.Setenv("SAFEVIEW_MQTT_BROKER", "tcp://broker:1883")
	t.Setenv("SAFEVIEW_PLATFORM", "TikTok")
	t.Setenv("SAFEVIEW_LOG_FORMAT", "json")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "tcp://broker:1883", cfg.MQTT.Broker)
	assert.Equal(t, "TikTok", cfg.Player.Platform)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 90, cfg.Player.DurationCap)
	assert.Equal(t, 45, cfg.Player.TriggerThreshold)
	assert.Equal(t, "Scream", cfg.IncidentLog.Categories["Screaming audio"])
	assert.Equal(t, "Jumpscare", cfg.IncidentLog.Categories[DefaultReason])
	require.Len(t, cfg.IncidentLog.Seed, 1)
	assert.Equal(t, "09:32", cfg.IncidentLog.Seed[0].At)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*models.Config)
		wantErr bool
	}{
		{name: "Defaults", mutate: func(*models.Config) {}},
		{name: "JSON Logs", mutate: func(c *models.Config) { c.LogFormat = "json" }},
		{name: "Unknown Log Format", mutate: func(c *models.Config) { c.LogFormat = "xml" }, wantErr: true},
		{name: "Threshold Above Cap", mutate: func(c *models.Config) { c.Player.TriggerThreshold = 200 }, wantErr: true},
		{name: "Threshold Equals Cap", mutate: func(c *models.Config) { c.Player.TriggerThreshold = 120 }},
		{name: "Negative Interval", mutate: func(c *models.Config) { c.Player.TickIntervalMs = -1 }, wantErr: true},
		{name: "Negative Skip", mutate: func(c *models.Config) { c.Player.SkipFurtherSeconds = -5 }, wantErr: true},
		{
			name: "Negative Seed Skip",
			mutate: func(c *models.Config) {
				c.IncidentLog.Seed = []models.SeedIncident{{At: "18:05", Skipped: -1}}
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var cfg models.Config
			ApplyDefaults(&cfg)
			tt.mutate(&cfg)
			err := Validate(&cfg)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
