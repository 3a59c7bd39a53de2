package player

import (
	"time"
)

const (
	DefaultDurationCap      = 120
	DefaultTriggerThreshold = 30
	DefaultReason           = "Loud scream + dark scene + facial distortion"
	DefaultPlatform         = "YouTube"
	DefaultSkippedSeconds   = 12
)

type ControllerOption func(*Controller)

func WithDurationCap(seconds int) ControllerOption {
	return func(c *Controller) {
		c.durationCap = seconds
	}
}

func WithTriggerThreshold(seconds int) ControllerOption {
	return func(c *Controller) {
		c.triggerThreshold = seconds
	}
}

// WithCannedIncident replaces the incident raised by the scripted trigger.
func WithCannedIncident(reason, platform string, skippedSeconds int) ControllerOption {
	return func(c *Controller) {
		c.cannedReason = reason
		c.cannedPlatform = platform
		c.cannedSkip = max(0, skippedSeconds)
	}
}

func WithNow(now func() time.Time) ControllerOption {
	return func(c *Controller) {
		c.now = now
	}
}

// NewController returns a paused controller at 0s. sink may be nil.
func NewController(sink IncidentSink, opts ...ControllerOption) *Controller {
	c := &Controller{
		durationCap:      DefaultDurationCap,
		triggerThreshold: DefaultTriggerThreshold,
		cannedReason:     DefaultReason,
		cannedPlatform:   DefaultPlatform,
		cannedSkip:       DefaultSkippedSeconds,
		sink:             sink,
		now:              time.Now,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

func (c *Controller) Elapsed() int     { return c.elapsed }
func (c *Controller) DurationCap() int { return c.durationCap }
func (c *Controller) Playing() bool    { return c.playing }

// Triggered reports whether the scripted trigger has fired in this session.
func (c *Controller) Triggered() bool { return c.latched }

// Overlay returns a copy of the active interruption, if any.
func (c *Controller) Overlay() (Incident, bool) {
	if c.overlay == nil {
		return Incident{}, false
	}
	return *c.overlay, true
}

func (c *Controller) State() State {
	switch {
	case c.overlay != nil:
		return StateSuspended
	case c.playing:
		return StatePlaying
	default:
		return StatePaused
	}
}

// Start is a no-op while an overlay is waiting for a decision.
func (c *Controller) Start() {
	if c.overlay != nil {
		return
	}
	c.playing = true
}

func (c *Controller) Pause() {
	c.playing = false
}

func (c *Controller) TogglePlay() {
	if c.playing {
		c.Pause()
		return
	}
	c.Start()
}

// Tick advances playback by one second. It reports whether elapsed changed;
// ticks while paused, suspended or at the cap leave the state untouched.
func (c *Controller) Tick() bool {
	if !c.playing || c.overlay != nil {
		return false
	}
	return c.advance(1)
}

// Skip jumps forward in any state without resuming or clearing the overlay.
// Negative values are treated as zero.
func (c *Controller) Skip(seconds int) {
	c.advance(seconds)
}

// ManualTrigger raises an out-of-band interruption. It leaves the scripted
// trigger latch alone and is not reported to the sink.
func (c *Controller) ManualTrigger(reason string, skippedSeconds int) {
	c.overlay = &Incident{
		Timestamp:      c.now(),
		Reason:         reason,
		Platform:       c.cannedPlatform,
		SkippedSeconds: max(0, skippedSeconds),
		Source:         SourceManual,
	}
	c.playing = false
}

// ResumeAfterOverlay dismisses the overlay, jumps past the skipped span and
// resumes playback.
func (c *Controller) ResumeAfterOverlay() {
	if c.overlay == nil {
		return
	}
	skipped := c.overlay.SkippedSeconds
	c.overlay = nil
	c.playing = true
	c.advance(skipped)
}

// SkipFurtherAfterOverlay dismisses the overlay and jumps past the skipped
// span plus extraSeconds. Playback stays paused.
func (c *Controller) SkipFurtherAfterOverlay(extraSeconds int) {
	if c.overlay == nil {
		return
	}
	skipped := c.overlay.SkippedSeconds
	if extra := max(0, extraSeconds); extra > c.durationCap-skipped {
		skipped = c.durationCap
	} else {
		skipped += extra
	}
	c.overlay = nil
	c.advance(skipped)
}

func (c *Controller) advance(seconds int) bool {
	if seconds <= 0 {
		return false
	}
	before := c.elapsed
	// Compare against the remaining room so huge inputs cannot wrap.
	if seconds >= c.durationCap-c.elapsed {
		c.elapsed = c.durationCap
	} else {
		c.elapsed += seconds
	}
	if c.elapsed == before {
		return false
	}
	c.evaluateTrigger()
	return true
}

func (c *Controller) evaluateTrigger() {
	if c.latched || c.overlay != nil || c.elapsed != c.triggerThreshold {
		return
	}
	c.latched = true

	incident := Incident{
		Timestamp:      c.now(),
		Reason:         c.cannedReason,
		Platform:       c.cannedPlatform,
		SkippedSeconds: c.cannedSkip,
		Source:         SourceAuto,
	}
	c.overlay = &incident
	c.playing = false

	if c.sink != nil {
		c.sink.Record(incident)
	}
}
