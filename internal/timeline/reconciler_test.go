package timeline

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/your-org/sentinel/internal/models"
)

func evAt(ts time.Time, loc string) models.Event {
	ev := models.Event{EventID: uuid.New(), Timestamp: ts, EventType: models.EventWifi}
	if loc != "" {
		ev.Location = &loc
	}
	return ev
}

func TestCollapseMergesConsecutiveStays(t *testing.T) {
	base := time.Date(2025, 4, 2, 9, 0, 0, 0, time.UTC)
	events := []models.Event{
		evAt(base, "LIB"),
		evAt(base.Add(10*time.Minute), "LIB"),
		evAt(base.Add(30*time.Minute), "LAB_2"),
		evAt(base.Add(90*time.Minute), "LAB_2"),
	}

	intervals := Collapse(events)
	require.Len(t, intervals, 2)

	assert.Equal(t, "LIB", intervals[0].Location)
	assert.Equal(t, base, intervals[0].Start)
	assert.Equal(t, base.Add(30*time.Minute), intervals[0].End)

	assert.Equal(t, "LAB_2", intervals[1].Location)
	assert.Equal(t, 60, intervals[1].Minutes())
}

func TestCollapseForwardFillsLocations(t *testing.T) {
	base := time.Date(2025, 4, 2, 9, 0, 0, 0, time.UTC)
	events := []models.Event{
		evAt(base, "AUDITORIUM"),
		evAt(base.Add(15*time.Minute), ""), // filled from preceding row
		evAt(base.Add(45*time.Minute), "CAFETERIA"),
	}

	intervals := Collapse(events)
	require.Len(t, intervals, 1)
	assert.Equal(t, "AUDITORIUM", intervals[0].Location)
	assert.Equal(t, base.Add(45*time.Minute), intervals[0].End)
}

func TestCollapseDropsLeadingUnknown(t *testing.T) {
	base := time.Date(2025, 4, 2, 9, 0, 0, 0, time.UTC)
	events := []models.Event{
		evAt(base, ""),
		evAt(base.Add(5*time.Minute), ""),
	}
	assert.Empty(t, Collapse(events))
}

func TestCollapseSuppressesNoise(t *testing.T) {
	base := time.Date(2025, 4, 2, 9, 0, 0, 0, time.UTC)
	events := []models.Event{
		evAt(base, "GYM"),
		evAt(base.Add(30*time.Second), "LIB"), // 30s at GYM: noise
		evAt(base.Add(20*time.Minute), "LIB"),
	}

	intervals := Collapse(events)
	require.Len(t, intervals, 1)
	assert.Equal(t, "LIB", intervals[0].Location)
}

func TestCollapseSortsInput(t *testing.T) {
	base := time.Date(2025, 4, 2, 9, 0, 0, 0, time.UTC)
	events := []models.Event{
		evAt(base.Add(time.Hour), "LIB"),
		evAt(base, "LIB"),
	}

	intervals := Collapse(events)
	require.Len(t, intervals, 1)
	assert.True(t, intervals[0].Start.Before(intervals[0].End))
	assert.Equal(t, base, intervals[0].Start)
}

func TestCollapseEmpty(t *testing.T) {
	assert.Empty(t, Collapse(nil))
}

func TestRenderText(t *testing.T) {
	base := time.Date(2025, 4, 2, 9, 0, 0, 0, time.UTC)
	intervals := []StayInterval{
		{Start: base, End: base.Add(42 * time.Minute), Location: "LIB", Duration: 42 * time.Minute},
	}
	text := RenderText(intervals)
	assert.Equal(t, "From 09:00 to 09:42 (42 minutes), the person was at LIB.", text)
}
