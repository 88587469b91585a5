package resolve

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/your-org/sentinel/internal/models"
)

func mkEvent(entity string, ts time.Time) models.Event {
	return models.Event{
		EventID:   uuid.New(),
		EntityID:  &entity,
		Timestamp: ts,
		EventType: models.EventCardSwipe,
	}
}

func TestLinkerNearestPreceding(t *testing.T) {
	base := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	evts := []models.Event{
		mkEvent("E1", base.Add(2*time.Hour)),
		mkEvent("E1", base),
		mkEvent("E1", base.Add(4*time.Hour)),
	}
	l := NewLinker(evts)

	cases := []struct {
		name string
		at   time.Time
		want uuid.UUID
		ok   bool
	}{
		{"before first", base.Add(-time.Minute), uuid.Nil, false},
		{"exactly first", base, evts[1].EventID, true},
		{"between first and second", base.Add(time.Hour), evts[1].EventID, true},
		{"exactly second", base.Add(2 * time.Hour), evts[0].EventID, true},
		{"after last", base.Add(24 * time.Hour), evts[2].EventID, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := l.Link("E1", tc.at)
			require.Equal(t, tc.ok, ok)
			if ok {
				assert.Equal(t, tc.want, got)
			}
		})
	}
}

func TestLinkerUnknownEntity(t *testing.T) {
	l := NewLinker(nil)
	_, ok := l.Link("nobody", time.Now())
	assert.False(t, ok)
}

func TestLinkerSkipsUnattributedEvents(t *testing.T) {
	ts := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	evts := []models.Event{
		{EventID: uuid.New(), EntityID: nil, Timestamp: ts, EventType: models.EventWifi},
	}
	l := NewLinker(evts)
	_, ok := l.Link("E1", ts.Add(time.Hour))
	assert.False(t, ok)
	assert.Equal(t, 0, l.Events("E1"))
}

func TestLinkerUnsortedInput(t *testing.T) {
	// Input order must not matter: the linker sorts at construction.
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	var evts []models.Event
	for _, off := range []time.Duration{9, 1, 7, 3, 5} {
		evts = append(evts, mkEvent("E9", base.Add(off*time.Hour)))
	}
	l := NewLinker(evts)

	got, ok := l.Link("E9", base.Add(6*time.Hour))
	require.True(t, ok)
	// Greatest timestamp ≤ 06:00 is the 05:00 event.
	assert.Equal(t, evts[4].EventID, got)
}
