// Package alerting scans reconciled activity data for missing-person
// gaps, overcrowding, access-rule violations, and after-hours presence.
package alerting

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/your-org/sentinel/internal/config"
	"github.com/your-org/sentinel/internal/models"
	"github.com/your-org/sentinel/internal/observability"
)

type Category string

const (
	CategoryMissingPerson   Category = "Missing Person"
	CategoryOvercrowding    Category = "Overcrowding"
	CategoryAccessViolation Category = "Access Violation"
	CategoryAfterHours      Category = "After Hours"
)

// Allowed-hours window for after-hours checks.
const (
	allowedHoursStart = 7
	allowedHoursEnd   = 22
)

type Alert struct {
	Category Category    `json:"alert_type"`
	Severity int         `json:"severity"`
	Message  string      `json:"message"`
	Details  interface{} `json:"details"`
}

type GapDetails struct {
	EntityID      string    `json:"entity_id"`
	Name          string    `json:"name"`
	GapStart      time.Time `json:"gap_start"`
	GapEnd        time.Time `json:"gap_end"`
	GapHours      float64   `json:"gap_hours"`
	GapHoursAwake float64   `json:"gap_hours_excl_sleep"`
}

type OvercrowdDetails struct {
	LocationName string    `json:"location_name"`
	MaxCapacity  int       `json:"max_capacity"`
	CurrentCount int       `json:"current_count"`
	ObservedAt   time.Time `json:"observed_at"`
	PercentOver  float64   `json:"percent_of_capacity"`
}

type AccessDetails struct {
	EntityID   string    `json:"entity_id"`
	Name       string    `json:"name"`
	Role       string    `json:"role"`
	Location   string    `json:"location"`
	ObservedAt time.Time `json:"observed_at"`
}

// Store is the read-only slice of the data layer the engine needs. Each
// scan reads a snapshot; the engine holds no mutable state across scans.
type Store interface {
	ListProfiles(ctx context.Context) ([]models.Profile, error)
	EntityEventTimes(ctx context.Context) (map[string][]time.Time, error)
	ListOccupancy(ctx context.Context, location string) ([]models.OccupancySample, error)
	EventsAtLocation(ctx context.Context, location string) ([]models.Event, error)
}

type Engine struct {
	store Store
	cfg   config.AlertingConfig
	tz    *time.Location
}

func NewEngine(store Store, cfg config.AlertingConfig) *Engine {
	return &Engine{store: store, cfg: cfg, tz: time.Local}
}

// Scan runs every alert category, merges the results sorted by descending
// severity, and caps the list per category and overall. gapThresholdHours
// overrides the configured missing-person threshold when positive.
func (e *Engine) Scan(ctx context.Context, gapThresholdHours float64) ([]Alert, error) {
	threshold := e.cfg.GapThresholdHours
	if gapThresholdHours > 0 {
		threshold = gapThresholdHours
	}

	profiles, err := e.store.ListProfiles(ctx)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	byID := make(map[string]models.Profile, len(profiles))
	for _, p := range profiles {
		byID[p.EntityID] = p
	}

	missing, err := e.scanGaps(ctx, byID, threshold)
	if err != nil {
		return nil, err
	}
	crowding, err := e.scanOvercrowding(ctx)
	if err != nil {
		return nil, err
	}
	access, afterHours, err := e.scanLocationRules(ctx, byID)
	if err != nil {
		return nil, err
	}

	var alerts []Alert
	alerts = append(alerts, capAlerts(missing, e.cfg.MaxPerCategory)...)
	alerts = append(alerts, capAlerts(crowding, e.cfg.MaxPerCategory)...)
	alerts = append(alerts, capAlerts(access, e.cfg.MaxPerCategory)...)
	alerts = append(alerts, capAlerts(afterHours, e.cfg.MaxPerCategory)...)

	sort.SliceStable(alerts, func(a, b int) bool { return alerts[a].Severity > alerts[b].Severity })
	if len(alerts) > e.cfg.MaxTotal {
		alerts = alerts[:e.cfg.MaxTotal]
	}

	for _, a := range alerts {
		observability.AlertsGenerated.WithLabelValues(string(a.Category)).Inc()
	}
	return alerts, nil
}

// scanGaps flags inactivity gaps between consecutive observations. A gap
// is flagged when its raw length reaches the plain threshold or its
// sleep-excluded length reaches the sleep-aware threshold.
func (e *Engine) scanGaps(ctx context.Context, profiles map[string]models.Profile, threshold float64) ([]Alert, error) {
	times, err := e.store.EntityEventTimes(ctx)
	if err != nil {
		return nil, fmt.Errorf("entity event times: %w", err)
	}

	var alerts []Alert
	for entityID, seq := range times {
		sort.Slice(seq, func(a, b int) bool { return seq[a].Before(seq[b]) })
		for i := 1; i < len(seq); i++ {
			rawGap := seq[i].Sub(seq[i-1])
			awakeGap := SleepExcludedGap(seq[i-1], seq[i], e.tz)

			rawHours := rawGap.Hours()
			awakeHours := awakeGap.Hours()
			if rawHours < threshold && awakeHours < e.cfg.SleepGapThresholdHours {
				continue
			}

			severity := 3
			if awakeHours > 2*e.cfg.SleepGapThresholdHours {
				severity = 4
			}
			name := profiles[entityID].Name
			alerts = append(alerts, Alert{
				Category: CategoryMissingPerson,
				Severity: severity,
				Message: fmt.Sprintf("%s not observed for %.1f hours (%.1f excluding sleep hours)",
					name, rawHours, awakeHours),
				Details: GapDetails{
					EntityID:      entityID,
					Name:          name,
					GapStart:      seq[i-1],
					GapEnd:        seq[i],
					GapHours:      rawHours,
					GapHoursAwake: awakeHours,
				},
			})
		}
	}
	return alerts, nil
}

func (e *Engine) scanOvercrowding(ctx context.Context) ([]Alert, error) {
	var alerts []Alert
	for location, policy := range e.cfg.Locations {
		if policy.MaxCapacity <= 0 {
			continue
		}
		samples, err := e.store.ListOccupancy(ctx, location)
		if err != nil {
			return nil, fmt.Errorf("occupancy for %s: %w", location, err)
		}
		for _, s := range samples {
			if s.Count <= policy.MaxCapacity {
				continue
			}
			pct := float64(s.Count) / float64(policy.MaxCapacity) * 100
			alerts = append(alerts, Alert{
				Category: CategoryOvercrowding,
				Severity: overcrowdSeverity(pct),
				Message: fmt.Sprintf("%s held %d people (capacity %d)",
					location, s.Count, policy.MaxCapacity),
				Details: OvercrowdDetails{
					LocationName: location,
					MaxCapacity:  policy.MaxCapacity,
					CurrentCount: s.Count,
					ObservedAt:   s.StartTime,
					PercentOver:  pct,
				},
			})
		}
	}
	return alerts, nil
}

// overcrowdSeverity buckets percent-of-capacity into a capped severity.
func overcrowdSeverity(pct float64) int {
	switch {
	case pct > 200:
		return 5
	case pct > 150:
		return 4
	case pct > 110:
		return 3
	default:
		return 2
	}
}

func (e *Engine) scanLocationRules(ctx context.Context, profiles map[string]models.Profile) (access, afterHours []Alert, err error) {
	for location, policy := range e.cfg.Locations {
		if len(policy.AllowedRoles) == 0 && !policy.AfterHours {
			continue
		}
		allowed := make(map[models.Role]bool, len(policy.AllowedRoles))
		for _, r := range policy.AllowedRoles {
			allowed[models.Role(r)] = true
		}
		watched := make(map[models.Role]bool, len(policy.AfterHoursRoles))
		for _, r := range policy.AfterHoursRoles {
			watched[models.Role(r)] = true
		}

		events, err := e.store.EventsAtLocation(ctx, location)
		if err != nil {
			return nil, nil, fmt.Errorf("events at %s: %w", location, err)
		}
		for _, ev := range events {
			if ev.EntityID == nil {
				continue
			}
			p, ok := profiles[*ev.EntityID]
			if !ok {
				continue
			}

			if len(policy.AllowedRoles) > 0 && !allowed[p.Role] {
				access = append(access, Alert{
					Category: CategoryAccessViolation,
					Severity: 4,
					Message:  fmt.Sprintf("%s (%s) entered restricted %s", p.Name, p.Role, location),
					Details: AccessDetails{
						EntityID:   p.EntityID,
						Name:       p.Name,
						Role:       string(p.Role),
						Location:   location,
						ObservedAt: ev.Timestamp,
					},
				})
			}

			if policy.AfterHours && afterHoursWatched(watched, allowed, p.Role) &&
				outsideAllowedHours(ev.Timestamp.In(e.tz)) {
				afterHours = append(afterHours, Alert{
					Category: CategoryAfterHours,
					Severity: 3,
					Message: fmt.Sprintf("%s (%s) at %s outside %02d:00–%02d:00",
						p.Name, p.Role, location, allowedHoursStart, allowedHoursEnd),
					Details: AccessDetails{
						EntityID:   p.EntityID,
						Name:       p.Name,
						Role:       string(p.Role),
						Location:   location,
						ObservedAt: ev.Timestamp,
					},
				})
			}
		}
	}
	return access, afterHours, nil
}

// afterHoursWatched reports whether a role is covered by the location's
// after-hours rule: the configured watch list when one is set, otherwise
// every role outside the allowed set.
func afterHoursWatched(watched, allowed map[models.Role]bool, role models.Role) bool {
	if len(watched) > 0 {
		return watched[role]
	}
	return !allowed[role]
}

func outsideAllowedHours(t time.Time) bool {
	h := t.Hour()
	return h < allowedHoursStart || h >= allowedHoursEnd
}

func capAlerts(alerts []Alert, max int) []Alert {
	sort.SliceStable(alerts, func(a, b int) bool { return alerts[a].Severity > alerts[b].Severity })
	if max > 0 && len(alerts) > max {
		alerts = alerts[:max]
	}
	return alerts
}
