package player

import (
	"time"
)

// State is the coarse playback state derived from the controller fields.
type State int

const (
	StatePaused State = iota
	StatePlaying
	StateSuspended
)

func (s State) String() string {
	switch s {
	case StatePaused:
		return "paused"
	case StatePlaying:
		return "playing"
	case StateSuspended:
		return "suspended"
	default:
		return "unknown"
	}
}

// Source tags where an Incident came from.
type Source string

const (
	SourceAuto   Source = "auto"
	SourceManual Source = "manual"
)

// Incident is an interruption shown to the child. It is passed by value and
// never mutated after creation.
type Incident struct {
	Timestamp      time.Time
	Reason         string
	Platform       string
	SkippedSeconds int
	Source         Source
}

// IncidentSink receives incidents raised by the scripted trigger.
type IncidentSink interface {
	Record(Incident)
}

// Publisher interface to decouple the session from a specific mqtt implementation
type Publisher interface {
	Publish(topic string, payload interface{}) error
}

// Command types accepted by Session.Commands.
const (
	CommandStart         = "start"
	CommandPause         = "pause"
	CommandToggle        = "toggle"
	CommandSkip          = "skip"
	CommandManualTrigger = "manual_trigger"
	CommandResume        = "resume"
	CommandSkipFurther   = "skip_further"
)

type Controller struct {
	elapsed int
	playing bool
	overlay *Incident
	latched bool

	durationCap      int
	triggerThreshold int
	cannedReason     string
	cannedPlatform   string
	cannedSkip       int

	sink IncidentSink
	now  func() time.Time
}
