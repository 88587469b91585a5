package alerting

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSleepExcludedGapTwoNights(t *testing.T) {
	// 2025-01-01T20:00 → 2025-01-03T09:00 is a 37h gap crossing two full
	// 00:00–07:00 windows (14h), leaving 23h.
	start := time.Date(2025, 1, 1, 20, 0, 0, 0, time.UTC)
	end := time.Date(2025, 1, 3, 9, 0, 0, 0, time.UTC)

	assert.Equal(t, 37*time.Hour, end.Sub(start))
	assert.Equal(t, 23*time.Hour, SleepExcludedGap(start, end, time.UTC))
}

func TestSleepExcludedGapWithinOneDay(t *testing.T) {
	// 02:00 → 10:00: five hours fall inside the sleep window.
	start := time.Date(2025, 1, 1, 2, 0, 0, 0, time.UTC)
	end := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)

	assert.Equal(t, 3*time.Hour, SleepExcludedGap(start, end, time.UTC))
}

func TestSleepExcludedGapNoOverlap(t *testing.T) {
	start := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	end := time.Date(2025, 1, 1, 18, 0, 0, 0, time.UTC)

	assert.Equal(t, 9*time.Hour, SleepExcludedGap(start, end, time.UTC))
}

func TestSleepExcludedGapEntirelyInsideWindow(t *testing.T) {
	start := time.Date(2025, 1, 1, 1, 0, 0, 0, time.UTC)
	end := time.Date(2025, 1, 1, 5, 0, 0, 0, time.UTC)

	assert.Equal(t, time.Duration(0), SleepExcludedGap(start, end, time.UTC))
}

func TestSleepExcludedGapInvertedBounds(t *testing.T) {
	now := time.Now()
	assert.Equal(t, time.Duration(0), SleepExcludedGap(now, now.Add(-time.Hour), time.UTC))
}
