package incidentlog

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"safeview-shield/internal/models"
	"safeview-shield/internal/player"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type MockPublisher struct {
	Topics  []string
	Entries []models.IncidentEntry
	Err     error
}

func (m *MockPublisher) Publish(topic string, payload interface{}) error {
	entry, ok := payload.(models.IncidentEntry)
	if !ok {
		return fmt.Errorf("invalid payload type")
	}
	m.Topics = append(m.Topics, topic)
	m.Entries = append(m.Entries, entry)
	return m.Err
}

func incidentAt(hour, minute int, reason string) player.Incident {
	return player.Incident{
		Timestamp:      time.Date(2026, 10, 18, hour, minute, 0, 0, time.UTC),
		Reason:         reason,
		Platform:       "YouTube",
		SkippedSeconds: 12,
		Source:         player.SourceAuto,
	}
}

func TestLog_RecordMostRecentFirst(t *testing.T) {
	l := New(WithLocation(time.UTC))

	l.Record(incidentAt(9, 32, player.DefaultReason))
	l.Record(incidentAt(18, 5, "Screaming audio"))

	entries := l.All()
	require.Len(t, entries, 2)

	assert.Equal(t, "18:05", entries[0].At)
	assert.Equal(t, "Screaming audio", entries[0].Category, "unknown reasons fall back to the text")
	assert.Equal(t, "09:32", entries[1].At)
	assert.Equal(t, "Jumpscare", entries[1].Category)
	assert.Equal(t, "YouTube", entries[1].Platform)
	assert.Equal(t, 12, entries[1].Skipped)
	assert.NotEqual(t, entries[0].ID, entries[1].ID)
}

func TestLog_KeepsDuplicates(t *testing.T) {
	l := New(WithLocation(time.UTC))
	i := incidentAt(9, 32, player.DefaultReason)

	l.Record(i)
	l.Record(i)

	assert.Equal(t, 2, l.Len())
}

func TestLog_RecentAndSeed(t *testing.T) {
	l := New(
		WithLocation(time.UTC),
		WithCategories(map[string]string{"Screaming audio": "Scream"}),
		WithSeed([]models.SeedIncident{
			{At: "18:05", Category: "Scream", Platform: "TikTok", Skipped: 8},
			{At: "09:32", Category: "Jumpscare", Platform: "YouTube", Skipped: 12},
		}),
	)
	require.Equal(t, 2, l.Len())

	for i := 0; i < 3; i++ {
		l.Record(incidentAt(20, i, "Screaming audio"))
	}

	recent := l.Recent(DashboardSize)
	require.Len(t, recent, 4)
	assert.Equal(t, "20:02", recent[0].At)
	assert.Equal(t, "Scream", recent[0].Category)
	assert.Equal(t, "18:05", recent[3].At)

	assert.Len(t, l.Recent(100), 5)
	assert.Empty(t, l.Recent(-1))

	// Callers get a copy.
	recent[0].Category = "changed"
	assert.Equal(t, "Scream", l.Recent(1)[0].Category)
}

func TestLog_Publishes(t *testing.T) {
	pub := &MockPublisher{}
	l := New(WithLocation(time.UTC), WithPublisher(pub, "test/incidents"))

	l.Record(incidentAt(9, 32, player.DefaultReason))

	require.Len(t, pub.Entries, 1)
	assert.Equal(t, "test/incidents", pub.Topics[0])
	assert.Equal(t, "Jumpscare", pub.Entries[0].Category)
	assert.Equal(t, l.All()[0].ID, pub.Entries[0].ID)
}

func TestLog_PublishFailureStillRecords(t *testing.T) {
	pub := &MockPublisher{Err: errors.New("broker down")}
	l := New(WithPublisher(pub, "test/incidents"))

	l.Record(incidentAt(9, 32, player.DefaultReason))

	assert.Equal(t, 1, l.Len())
}

func TestLog_AsControllerSink(t *testing.T) {
	l := New(WithLocation(time.UTC))
	now := time.Date(2026, 10, 18, 7, 45, 0, 0, time.UTC)
	c := player.NewController(l, player.WithNow(func() time.Time { return now }))

	c.Skip(30)
	c.ResumeAfterOverlay()
	c.ManualTrigger("test", 12)

	entries := l.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "07:45", entries[0].At)
	assert.Equal(t, "Jumpscare", entries[0].Category)
}
