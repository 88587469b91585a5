// Package timeline turns a canonical per-entity event stream into
// contiguous location-stay intervals and their textual rendering.
package timeline

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/your-org/sentinel/internal/models"
)

// minStay is the noise floor: intervals of one minute or less are dropped.
const minStay = time.Minute

// StayInterval is a contiguous span of time an entity is inferred to have
// remained at one location.
type StayInterval struct {
	Start    time.Time     `json:"start"`
	End      time.Time     `json:"end"`
	Location string        `json:"location"`
	Duration time.Duration `json:"-"`
}

func (s StayInterval) Minutes() int {
	return int(s.Duration.Round(time.Minute) / time.Minute)
}

// Collapse merges an entity's events into stay intervals. Missing location
// labels are forward-filled chronologically, leading rows with no
// determinable location are dropped, consecutive same-location rows fold
// into one interval, and intervals of at most one minute are suppressed.
func Collapse(events []models.Event) []StayInterval {
	if len(events) == 0 {
		return nil
	}

	ordered := make([]models.Event, len(events))
	copy(ordered, events)
	sort.SliceStable(ordered, func(a, b int) bool {
		return ordered[a].Timestamp.Before(ordered[b].Timestamp)
	})

	// Forward-fill locations; rows before the first known location are
	// undetermined and dropped.
	type point struct {
		ts  time.Time
		loc string
	}
	var points []point
	var last string
	for i := range ordered {
		if ordered[i].Location != nil && *ordered[i].Location != "" {
			last = *ordered[i].Location
		}
		if last == "" {
			continue
		}
		points = append(points, point{ts: ordered[i].Timestamp, loc: last})
	}
	if len(points) == 0 {
		return nil
	}

	var intervals []StayInterval
	start := points[0].ts
	loc := points[0].loc
	emit := func(end time.Time) {
		d := end.Sub(start)
		if d > minStay {
			intervals = append(intervals, StayInterval{Start: start, End: end, Location: loc, Duration: d})
		}
	}
	for i := 1; i < len(points); i++ {
		if points[i].loc != loc {
			emit(points[i].ts)
			start = points[i].ts
			loc = points[i].loc
		}
	}
	emit(points[len(points)-1].ts)

	return intervals
}

// RenderText produces the compact sentence-per-stay rendering handed to
// the narrative generator.
func RenderText(intervals []StayInterval) string {
	lines := make([]string, 0, len(intervals))
	for _, iv := range intervals {
		lines = append(lines, fmt.Sprintf(
			"From %s to %s (%d minutes), the person was at %s.",
			iv.Start.Format("15:04"), iv.End.Format("15:04"), iv.Minutes(), iv.Location))
	}
	return strings.Join(lines, " ")
}
