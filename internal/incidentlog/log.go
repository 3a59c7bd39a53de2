// Package incidentlog keeps the parent-facing list of playback interruptions.
package incidentlog

import (
	"sync"
	"time"

	"safeview-shield/internal/logger"
	"safeview-shield/internal/metrics"
	"safeview-shield/internal/models"
	"safeview-shield/internal/player"

	"github.com/google/uuid"
)

// DashboardSize is how many entries the dashboard "today" card shows.
const DashboardSize = 4

type Publisher interface {
	Publish(topic string, payload interface{}) error
}

// Log is an in-memory, most-recent-first incident list. It implements
// player.IncidentSink.
type Log struct {
	mu         sync.RWMutex
	entries    []models.IncidentEntry
	categories map[string]string
	location   *time.Location

	publisher    Publisher
	publishTopic string
}

type Option func(*Log)

// WithCategories adds reason text -> label mappings.
func WithCategories(categories map[string]string) Option {
	return func(l *Log) {
		for reason, label := range categories {
			l.categories[reason] = label
		}
	}
}

func WithPublisher(p Publisher, topic string) Option {
	return func(l *Log) {
		l.publisher = p
		l.publishTopic = topic
	}
}

// WithLocation sets the zone used for the HH:MM display time.
func WithLocation(loc *time.Location) Option {
	return func(l *Log) {
		l.location = loc
	}
}

// WithSeed preloads entries in display order (most recent first).
func WithSeed(seed []models.SeedIncident) Option {
	return func(l *Log) {
		for _, s := range seed {
			l.entries = append(l.entries, models.IncidentEntry{
				ID:       uuid.NewString(),
				At:       s.At,
				Category: s.Category,
				Platform: s.Platform,
				Skipped:  s.Skipped,
			})
		}
	}
}

func New(opts ...Option) *Log {
	l := &Log{
		categories: map[string]string{player.DefaultReason: "Jumpscare"},
		location:   time.Local,
	}

	for _, opt := range opts {
		opt(l)
	}
	metrics.IncidentLogEntries.Set(float64(len(l.entries)))

	return l
}

// Category returns the short label for a reason; unknown reasons are shown verbatim.
func (l *Log) Category(reason string) string {
	if label, ok := l.categories[reason]; ok {
		return label
	}
	return reason
}

// Record prepends the incident. Duplicates are kept.
func (l *Log) Record(i player.Incident) {
	entry := models.IncidentEntry{
		ID:        uuid.NewString(),
		At:        i.Timestamp.In(l.location).Format("15:04"),
		Timestamp: float64(i.Timestamp.Unix()),
		Category:  l.Category(i.Reason),
		Reason:    i.Reason,
		Platform:  i.Platform,
		Skipped:   i.SkippedSeconds,
	}

	l.mu.Lock()
	l.entries = append([]models.IncidentEntry{entry}, l.entries...)
	n := len(l.entries)
	l.mu.Unlock()

	metrics.IncidentLogEntries.Set(float64(n))
	logger.Infof("[%s] %s • %s • skip %ds", entry.At, entry.Category, entry.Platform, entry.Skipped)

	if l.publisher == nil {
		return
	}
	if err := l.publisher.Publish(l.publishTopic, entry); err != nil {
		metrics.PublishErrorsTotal.WithLabelValues("incident").Inc()
		logger.Errorf("Error publishing incident %s: %v", entry.ID, err)
	} else {
		logger.Debugf("[MQTT] Published incident %s to %s", entry.ID, l.publishTopic)
	}
}

// Recent returns up to n of the newest entries.
func (l *Log) Recent(n int) []models.IncidentEntry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	n = min(max(n, 0), len(l.entries))
	out := make([]models.IncidentEntry, n)
	copy(out, l.entries[:n])
	return out
}

func (l *Log) All() []models.IncidentEntry {
	return l.Recent(l.Len())
}

func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}
