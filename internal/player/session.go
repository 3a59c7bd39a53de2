package player

import (
	"context"
	"time"

	"safeview-shield/internal/logger"
	"safeview-shield/internal/metrics"
	"safeview-shield/internal/models"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	DefaultTickInterval       = 100 * time.Millisecond
	DefaultSkipStepSeconds    = 10
	DefaultSkipFurtherSeconds = 10
	DefaultManualReason       = "Manual test: gory frame"
)

// Session is the clock that drives one Controller. Run owns the controller;
// everything else talks to it through channels.
type Session struct {
	id           string
	ctrl         *Controller
	commands     chan models.Command
	snapshots    chan chan models.PlayerState
	tickInterval time.Duration

	publisher  Publisher
	stateTopic string

	skipStep     int
	skipFurther  int
	manualReason string

	log *logrus.Entry
}

type SessionOption func(*Session)

func WithTickInterval(d time.Duration) SessionOption {
	return func(s *Session) {
		s.tickInterval = d
	}
}

// WithStatePublisher publishes a snapshot to topic after every state change.
func WithStatePublisher(p Publisher, topic string) SessionOption {
	return func(s *Session) {
		s.publisher = p
		s.stateTopic = topic
	}
}

func WithSkipStep(seconds int) SessionOption {
	return func(s *Session) {
		s.skipStep = seconds
	}
}

func WithSkipFurther(seconds int) SessionOption {
	return func(s *Session) {
		s.skipFurther = seconds
	}
}

func WithManualReason(reason string) SessionOption {
	return func(s *Session) {
		s.manualReason = reason
	}
}

func NewSession(ctrl *Controller, opts ...SessionOption) *Session {
	s := &Session{
		id:           uuid.NewString(),
		ctrl:         ctrl,
		commands:     make(chan models.Command, 100),
		snapshots:    make(chan chan models.PlayerState),
		tickInterval: DefaultTickInterval,
		skipStep:     DefaultSkipStepSeconds,
		skipFurther:  DefaultSkipFurtherSeconds,
		manualReason: DefaultManualReason,
	}

	for _, opt := range opts {
		opt(s)
	}
	s.log = logger.WithSession(s.id)

	return s
}

func (s *Session) ID() string {
	return s.id
}

func (s *Session) Commands() chan<- models.Command {
	return s.commands
}

// Snapshot asks the running loop for the current state.
func (s *Session) Snapshot(ctx context.Context) (models.PlayerState, error) {
	reply := make(chan models.PlayerState, 1)
	select {
	case s.snapshots <- reply:
	case <-ctx.Done():
		return models.PlayerState{}, ctx.Err()
	}
	select {
	case st := <-reply:
		return st, nil
	case <-ctx.Done():
		return models.PlayerState{}, ctx.Err()
	}
}

// Run drives the controller until ctx is cancelled. The ticker only exists
// while playback can actually advance.
func (s *Session) Run(ctx context.Context) error {
	var ticker *time.Ticker
	var tickC <-chan time.Time

	syncClock := func() {
		advancing := s.ctrl.State() == StatePlaying && s.ctrl.Elapsed() < s.ctrl.DurationCap()
		switch {
		case advancing && ticker == nil:
			ticker = time.NewTicker(s.tickInterval)
			tickC = ticker.C
		case !advancing && ticker != nil:
			ticker.Stop()
			ticker, tickC = nil, nil
		}
	}
	defer func() {
		if ticker != nil {
			ticker.Stop()
		}
	}()

	metrics.ElapsedSeconds.Set(float64(s.ctrl.elapsed))
	s.log.Info("Player session started")
	s.publishState()
	syncClock()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("Player session stopped")
			return ctx.Err()
		case cmd := <-s.commands:
			if s.handleCommand(cmd) {
				s.publishState()
			}
			syncClock()
		case reply := <-s.snapshots:
			reply <- s.snapshot()
		case <-tickC:
			if s.handleTick() {
				s.publishState()
			}
			syncClock()
		}
	}
}

type stateKey struct {
	elapsed int
	playing bool
	overlay *Incident
}

func (s *Session) key() stateKey {
	return stateKey{elapsed: s.ctrl.elapsed, playing: s.ctrl.playing, overlay: s.ctrl.overlay}
}

func (s *Session) handleTick() bool {
	before := s.key()
	if !s.ctrl.Tick() {
		return false
	}
	metrics.TicksTotal.Inc()
	s.observe(before)
	return true
}

// handleCommand validates cmd, applies it and reports whether state changed.
func (s *Session) handleCommand(cmd models.Command) bool {
	if reason := s.validate(cmd); reason != "" {
		s.log.Warnf("Rejected %q command: %s", cmd.Type, reason)
		metrics.CommandsRejectedTotal.WithLabelValues(reason).Inc()
		return false
	}

	before := s.key()

	switch cmd.Type {
	case CommandStart:
		s.ctrl.Start()
	case CommandPause:
		s.ctrl.Pause()
	case CommandToggle:
		s.ctrl.TogglePlay()
	case CommandSkip:
		seconds := cmd.Seconds
		if seconds == 0 {
			seconds = s.skipStep
		}
		s.ctrl.Skip(seconds)
	case CommandManualTrigger:
		reason := cmd.Reason
		if reason == "" {
			reason = s.manualReason
		}
		skipped := cmd.Skipped
		if skipped == 0 {
			skipped = s.ctrl.cannedSkip
		}
		s.ctrl.ManualTrigger(reason, skipped)
	case CommandResume:
		if before.overlay != nil {
			metrics.OverlayDecisionsTotal.WithLabelValues(CommandResume).Inc()
		}
		s.ctrl.ResumeAfterOverlay()
	case CommandSkipFurther:
		extra := cmd.Seconds
		if extra == 0 {
			extra = s.skipFurther
		}
		if before.overlay != nil {
			metrics.OverlayDecisionsTotal.WithLabelValues(CommandSkipFurther).Inc()
		}
		s.ctrl.SkipFurtherAfterOverlay(extra)
	}

	if s.key() == before {
		s.log.Debugf("Command %q left state unchanged", cmd.Type)
		return false
	}
	s.observe(before)
	return true
}

func (s *Session) validate(cmd models.Command) string {
	switch cmd.Type {
	case CommandStart, CommandPause, CommandToggle, CommandResume:
		return ""
	case CommandSkip, CommandSkipFurther:
		return s.checkSeconds(cmd.Seconds)
	case CommandManualTrigger:
		return s.checkSeconds(cmd.Skipped)
	default:
		return "unknown_type"
	}
}

// checkSeconds bounds a duration to what a single session can ever play.
func (s *Session) checkSeconds(seconds int) string {
	switch {
	case seconds < 0:
		return "negative_seconds"
	case seconds > s.ctrl.DurationCap():
		return "out_of_range"
	default:
		return ""
	}
}

// observe records metrics and logs for a transition away from before.
func (s *Session) observe(before stateKey) {
	metrics.ElapsedSeconds.Set(float64(s.ctrl.elapsed))

	if o := s.ctrl.overlay; o != nil && o != before.overlay {
		metrics.IncidentsTotal.WithLabelValues(string(o.Source)).Inc()
		s.log.Infof("Playback interrupted at %ds (%s): %s, skipping %ds",
			s.ctrl.elapsed, o.Source, o.Reason, o.SkippedSeconds)
	}
}

func (s *Session) snapshot() models.PlayerState {
	st := models.PlayerState{
		SessionID:      s.id,
		State:          s.ctrl.State().String(),
		ElapsedSeconds: s.ctrl.elapsed,
		DurationCap:    s.ctrl.durationCap,
		Playing:        s.ctrl.playing,
	}
	if s.ctrl.durationCap > 0 {
		st.Progress = float64(s.ctrl.elapsed) / float64(s.ctrl.durationCap)
	}
	if o := s.ctrl.overlay; o != nil {
		st.Overlay = &models.OverlayState{
			Reason:    o.Reason,
			Platform:  o.Platform,
			Skipped:   o.SkippedSeconds,
			Source:    string(o.Source),
			Timestamp: float64(o.Timestamp.Unix()),
		}
	}
	return st
}

func (s *Session) publishState() {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(s.stateTopic, s.snapshot()); err != nil {
		metrics.PublishErrorsTotal.WithLabelValues("state").Inc()
		s.log.Errorf("Error publishing player state: %v", err)
	}
}
