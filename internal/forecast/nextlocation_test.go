package forecast

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPredictNoData(t *testing.T) {
	p := PredictNextLocation(nil, time.Now())
	assert.True(t, p.NoData)
	assert.Empty(t, p.Location)
}

func TestPredictSingleLocationDeterministic(t *testing.T) {
	now := time.Date(2025, 5, 5, 12, 0, 0, 0, time.UTC)
	history := []LocationObservation{
		{Timestamp: now.Add(-3 * time.Hour), Location: "HOSTEL"},
		{Timestamp: now.Add(-2 * time.Hour), Location: "HOSTEL"},
		{Timestamp: now.Add(-1 * time.Hour), Location: "HOSTEL"},
	}

	for i := 0; i < 3; i++ {
		p := PredictNextLocation(history, now)
		assert.False(t, p.NoData)
		assert.False(t, p.Trained)
		assert.Equal(t, "HOSTEL", p.Location)
		// Degenerate case predicts for now, not now+1h.
		assert.Equal(t, now, p.TargetTime)
	}
}

func TestPredictLearnsHourlyPattern(t *testing.T) {
	// Four weeks of a strict routine: mornings in LAB_1, evenings at
	// HOSTEL, every day.
	base := time.Date(2025, 4, 7, 0, 0, 0, 0, time.UTC)
	var history []LocationObservation
	for d := 0; d < 28; d++ {
		day := base.AddDate(0, 0, d)
		for h := 8; h < 18; h++ {
			history = append(history, LocationObservation{Timestamp: day.Add(time.Duration(h) * time.Hour), Location: "LAB_1"})
		}
		for h := 19; h < 23; h++ {
			history = append(history, LocationObservation{Timestamp: day.Add(time.Duration(h) * time.Hour), Location: "HOSTEL"})
		}
	}

	morning := time.Date(2025, 5, 6, 9, 0, 0, 0, time.UTC) // predicts for 10:00
	p := PredictNextLocation(history, morning)
	require.True(t, p.Trained)
	assert.Equal(t, "LAB_1", p.Location)
	assert.Equal(t, morning.Add(time.Hour), p.TargetTime)

	evening := time.Date(2025, 5, 6, 19, 0, 0, 0, time.UTC) // predicts for 20:00
	p = PredictNextLocation(history, evening)
	require.True(t, p.Trained)
	assert.Equal(t, "HOSTEL", p.Location)
}

func TestPredictReturnsFullHistoryAscending(t *testing.T) {
	now := time.Date(2025, 5, 5, 12, 0, 0, 0, time.UTC)
	history := []LocationObservation{
		{Timestamp: now.Add(-1 * time.Hour), Location: "LIB"},
		{Timestamp: now.Add(-5 * time.Hour), Location: "CAFETERIA"},
		{Timestamp: now.Add(-3 * time.Hour), Location: "LIB"},
	}

	p := PredictNextLocation(history, now)
	require.Len(t, p.History, 3)
	for i := 1; i < len(p.History); i++ {
		assert.False(t, p.History[i].Timestamp.Before(p.History[i-1].Timestamp))
	}
}

func TestPredictIdempotent(t *testing.T) {
	base := time.Date(2025, 4, 7, 0, 0, 0, 0, time.UTC)
	var history []LocationObservation
	for d := 0; d < 10; d++ {
		day := base.AddDate(0, 0, d)
		history = append(history,
			LocationObservation{Timestamp: day.Add(9 * time.Hour), Location: "LAB_1"},
			LocationObservation{Timestamp: day.Add(20 * time.Hour), Location: "HOSTEL"},
		)
	}
	now := time.Date(2025, 4, 20, 9, 30, 0, 0, time.UTC)

	first := PredictNextLocation(history, now)
	second := PredictNextLocation(history, now)
	assert.Equal(t, first.Location, second.Location)
}
