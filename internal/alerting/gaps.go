package alerting

import "time"

// Nightly window during which inactivity is expected and excluded from
// sleep-aware gap checks. Fixed policy, matching the deployment's local
// night hours.
const (
	sleepStartHour = 0
	sleepEndHour   = 7
)

// sleepOverlap returns the total time within [start, end] that falls
// inside the nightly 00:00–07:00 window, walking every day boundary the
// gap crosses and summing the per-day overlap.
func sleepOverlap(start, end time.Time, loc *time.Location) time.Duration {
	if !end.After(start) {
		return 0
	}

	start = start.In(loc)
	end = end.In(loc)

	var total time.Duration
	day := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, loc)
	for !day.After(end) {
		winStart := day.Add(time.Duration(sleepStartHour) * time.Hour)
		winEnd := day.Add(time.Duration(sleepEndHour) * time.Hour)

		from := winStart
		if start.After(from) {
			from = start
		}
		to := winEnd
		if end.Before(to) {
			to = end
		}
		if to.After(from) {
			total += to.Sub(from)
		}

		day = day.AddDate(0, 0, 1)
	}
	return total
}

// SleepExcludedGap returns the gap between two consecutive observations
// with overnight (00:00–07:00) time subtracted.
func SleepExcludedGap(start, end time.Time, loc *time.Location) time.Duration {
	if !end.After(start) {
		return 0
	}
	return end.Sub(start) - sleepOverlap(start, end, loc)
}
