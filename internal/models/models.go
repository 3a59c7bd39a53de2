package models

// Config defines the user settings
type Config struct {
	LogLevel    string            `yaml:"log_level" env:"SAFEVIEW_LOG_LEVEL"`
	LogFormat   string            `yaml:"log_format" env:"SAFEVIEW_LOG_FORMAT"`
	MQTT        MQTTConfig        `yaml:"mqtt"`
	Player      PlayerConfig      `yaml:"player"`
	IncidentLog IncidentLogConfig `yaml:"incident_log"`
	Metrics     MetricsConfig     `yaml:"metrics"`
}

type MQTTConfig struct {
	Broker         string `yaml:"broker" env:"SAFEVIEW_MQTT_BROKER"`
	ClientID       string `yaml:"client_id" env:"SAFEVIEW_MQTT_CLIENT_ID"`
	User           string `yaml:"user" env:"SAFEVIEW_MQTT_USER"`
	Password       string `yaml:"password" env:"SAFEVIEW_MQTT_PASSWORD"`
	CommandTopic   string `yaml:"command_topic" env:"SAFEVIEW_MQTT_COMMAND_TOPIC"`
	StateTopic     string `yaml:"state_topic" env:"SAFEVIEW_MQTT_STATE_TOPIC"`
	IncidentsTopic string `yaml:"incidents_topic" env:"SAFEVIEW_MQTT_INCIDENTS_TOPIC"`
}

type PlayerConfig struct {
	TickIntervalMs     int    `yaml:"tick_interval_ms" env:"SAFEVIEW_TICK_INTERVAL_MS"` // 100
	DurationCap        int    `yaml:"duration_cap" env:"SAFEVIEW_DURATION_CAP"`         // 120
	TriggerThreshold   int    `yaml:"trigger_threshold" env:"SAFEVIEW_TRIGGER_THRESHOLD"`
	SkipStepSeconds    int    `yaml:"skip_step_seconds"`    // "skip 10s" button
	SkipFurtherSeconds int    `yaml:"skip_further_seconds"` // extra on top of the overlay skip
	Platform           string `yaml:"platform" env:"SAFEVIEW_PLATFORM"`
	Reason             string `yaml:"reason"`
	SkippedSeconds     int    `yaml:"skipped_seconds"`
	ManualReason       string `yaml:"manual_reason"`
}

type IncidentLogConfig struct {
	// Categories maps a reason text to the short label shown to parents.
	Categories map[string]string `yaml:"categories"`
	Seed       []SeedIncident    `yaml:"seed"`
}

type SeedIncident struct {
	At       string `yaml:"at"` // "09:32"
	Category string `yaml:"category"`
	Platform string `yaml:"platform"`
	Skipped  int    `yaml:"skipped"`
}

type MetricsConfig struct {
	Addr string `yaml:"addr" env:"SAFEVIEW_METRICS_ADDR"` // ":9090", empty disables
}

// Command is a player instruction received from the view layer
type Command struct {
	Type    string `json:"type"` // see player.Command* constants
	Seconds int    `json:"seconds,omitempty"`
	Reason  string `json:"reason,omitempty"`
	Skipped int    `json:"skipped,omitempty"`
}

// OverlayState is the interruption dialog as seen by the view layer
type OverlayState struct {
	Reason    string  `json:"reason"`
	Platform  string  `json:"platform"`
	Skipped   int     `json:"skipped"`
	Source    string  `json:"source"` // "auto" or "manual"
	Timestamp float64 `json:"timestamp"`
}

// PlayerState is the snapshot published after every state change
type PlayerState struct {
	SessionID      string        `json:"session_id"`
	State          string        `json:"state"` // "paused", "playing" or "suspended"
	ElapsedSeconds int           `json:"elapsed_seconds"`
	DurationCap    int           `json:"duration_cap"`
	Progress       float64       `json:"progress"`
	Playing        bool          `json:"playing"`
	Overlay        *OverlayState `json:"overlay"`
}

// IncidentEntry is one row of the parent-facing incident log
type IncidentEntry struct {
	ID        string  `json:"id"`
	At        string  `json:"at"`
	Timestamp float64 `json:"timestamp,omitempty"`
	Category  string  `json:"category"`
	Reason    string  `json:"reason,omitempty"`
	Platform  string  `json:"platform"`
	Skipped   int     `json:"skipped"`
}
