// Package forecast trains ephemeral tree ensembles over calendar features
// to predict location occupancy and an entity's next location.
package forecast

import "time"

// Period buckets for the coarse time-of-day one-hot encoding. Lower bound
// inclusive: Night 0–6, Morning 6–12, Afternoon 12–18, Evening 18–24.
const (
	periodNight = iota
	periodMorning
	periodAfternoon
	periodEvening
	numPeriods
)

func periodOf(hour int) int {
	switch {
	case hour < 6:
		return periodNight
	case hour < 12:
		return periodMorning
	case hour < 18:
		return periodAfternoon
	default:
		return periodEvening
	}
}

// dayOfWeek returns the weekday with Monday=0 .. Sunday=6.
func dayOfWeek(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

func isWeekend(t time.Time) bool {
	return dayOfWeek(t) >= 5
}

// OccupancyFeatures decomposes a timestamp into the calendar features the
// occupancy regressor trains on: year, month, day, hour, minute,
// day-of-week, is-weekend, ISO week-of-year, minutes-since-midnight, and
// the one-hot time period.
func OccupancyFeatures(t time.Time) []float64 {
	_, isoWeek := t.ISOWeek()
	f := []float64{
		float64(t.Year()),
		float64(int(t.Month())),
		float64(t.Day()),
		float64(t.Hour()),
		float64(t.Minute()),
		float64(dayOfWeek(t)),
		boolFeature(isWeekend(t)),
		float64(isoWeek),
		float64(t.Hour()*60 + t.Minute()),
	}
	period := periodOf(t.Hour())
	for p := 0; p < numPeriods; p++ {
		f = append(f, boolFeature(p == period))
	}
	return f
}

// LocationFeatures is the compact feature set the next-location classifier
// trains on: hour, day-of-week, is-weekend.
func LocationFeatures(t time.Time) []float64 {
	return []float64{
		float64(t.Hour()),
		float64(dayOfWeek(t)),
		boolFeature(isWeekend(t)),
	}
}

func boolFeature(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
