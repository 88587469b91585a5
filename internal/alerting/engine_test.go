package alerting

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/your-org/sentinel/internal/config"
	"github.com/your-org/sentinel/internal/models"
)

type fakeStore struct {
	profiles  []models.Profile
	times     map[string][]time.Time
	occupancy map[string][]models.OccupancySample
	events    map[string][]models.Event
}

func (f *fakeStore) ListProfiles(context.Context) ([]models.Profile, error) {
	return f.profiles, nil
}

func (f *fakeStore) EntityEventTimes(context.Context) (map[string][]time.Time, error) {
	return f.times, nil
}

func (f *fakeStore) ListOccupancy(_ context.Context, location string) ([]models.OccupancySample, error) {
	return f.occupancy[location], nil
}

func (f *fakeStore) EventsAtLocation(_ context.Context, location string) ([]models.Event, error) {
	return f.events[location], nil
}

func testConfig() config.AlertingConfig {
	return config.AlertingConfig{
		GapThresholdHours:      12,
		SleepGapThresholdHours: 10,
		MaxPerCategory:         25,
		MaxTotal:               100,
		Locations: map[string]config.LocationPolicy{
			"SERVER_ROOM": {MaxCapacity: 10, AllowedRoles: []string{"staff"}, AfterHours: true},
			"LIB":         {MaxCapacity: 100},
		},
	}
}

func newTestEngine(store Store, cfg config.AlertingConfig) *Engine {
	e := NewEngine(store, cfg)
	e.tz = time.UTC
	return e
}

func eventAt(entity, location string, ts time.Time) models.Event {
	return models.Event{
		EventID:   uuid.New(),
		EntityID:  &entity,
		Location:  &location,
		Timestamp: ts,
		EventType: models.EventCardSwipe,
	}
}

func TestScanMissingPersonGap(t *testing.T) {
	store := &fakeStore{
		profiles: []models.Profile{{EntityID: "E1", Name: "Asha Rao", Role: models.RoleStudent}},
		times: map[string][]time.Time{
			"E1": {
				time.Date(2025, 1, 1, 20, 0, 0, 0, time.UTC),
				time.Date(2025, 1, 3, 9, 0, 0, 0, time.UTC),
			},
		},
	}

	alerts, err := newTestEngine(store, testConfig()).Scan(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, alerts, 1)

	a := alerts[0]
	assert.Equal(t, CategoryMissingPerson, a.Category)
	assert.Equal(t, 4, a.Severity) // 23h awake > 2×10h threshold

	details, ok := a.Details.(GapDetails)
	require.True(t, ok)
	assert.Equal(t, "E1", details.EntityID)
	assert.InDelta(t, 37.0, details.GapHours, 0.001)
	assert.InDelta(t, 23.0, details.GapHoursAwake, 0.001)
}

func TestScanOvernightGapNotFlagged(t *testing.T) {
	// 22:00 → 08:30 next day: 10.5h raw but only 3.5h outside the sleep
	// window; neither variant trips.
	store := &fakeStore{
		profiles: []models.Profile{{EntityID: "E1", Name: "Asha Rao", Role: models.RoleStudent}},
		times: map[string][]time.Time{
			"E1": {
				time.Date(2025, 1, 1, 22, 0, 0, 0, time.UTC),
				time.Date(2025, 1, 2, 8, 30, 0, 0, time.UTC),
			},
		},
	}

	alerts, err := newTestEngine(store, testConfig()).Scan(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, alerts)
}

func TestScanOvercrowdingSeverityBuckets(t *testing.T) {
	base := time.Date(2025, 2, 1, 12, 0, 0, 0, time.UTC)
	store := &fakeStore{
		occupancy: map[string][]models.OccupancySample{
			"LIB": {
				{LocationID: "LIB", StartTime: base, Count: 90},                      // under capacity: no alert
				{LocationID: "LIB", StartTime: base.Add(time.Hour), Count: 105},      // 105%: severity 2
				{LocationID: "LIB", StartTime: base.Add(2 * time.Hour), Count: 160},  // 160%: severity 4
				{LocationID: "LIB", StartTime: base.Add(3 * time.Hour), Count: 1000}, // capped at 5
			},
		},
	}

	alerts, err := newTestEngine(store, testConfig()).Scan(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, alerts, 3)

	severities := []int{alerts[0].Severity, alerts[1].Severity, alerts[2].Severity}
	assert.Equal(t, []int{5, 4, 2}, severities)
}

func TestScanAccessViolationAndAfterHours(t *testing.T) {
	store := &fakeStore{
		profiles: []models.Profile{
			{EntityID: "S1", Name: "Meera Iyer", Role: models.RoleStaff},
			{EntityID: "E1", Name: "Asha Rao", Role: models.RoleStudent},
		},
		events: map[string][]models.Event{
			"SERVER_ROOM": {
				eventAt("S1", "SERVER_ROOM", time.Date(2025, 2, 1, 14, 0, 0, 0, time.UTC)), // allowed, in hours
				eventAt("E1", "SERVER_ROOM", time.Date(2025, 2, 1, 15, 0, 0, 0, time.UTC)), // role violation
				eventAt("S1", "SERVER_ROOM", time.Date(2025, 2, 1, 23, 0, 0, 0, time.UTC)), // allowed role, exempt after hours
				eventAt("E1", "SERVER_ROOM", time.Date(2025, 2, 1, 23, 30, 0, 0, time.UTC)), // role violation + after hours
			},
		},
	}

	alerts, err := newTestEngine(store, testConfig()).Scan(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, alerts, 3)

	assert.Equal(t, CategoryAccessViolation, alerts[0].Category)
	assert.Equal(t, 4, alerts[0].Severity)
	assert.Equal(t, CategoryAccessViolation, alerts[1].Category)
	assert.Equal(t, CategoryAfterHours, alerts[2].Category)
	assert.Equal(t, 3, alerts[2].Severity)

	details, ok := alerts[2].Details.(AccessDetails)
	require.True(t, ok)
	assert.Equal(t, "E1", details.EntityID)
}

func TestScanAfterHoursWatchedRoles(t *testing.T) {
	store := &fakeStore{
		profiles: []models.Profile{
			{EntityID: "S1", Name: "Meera Iyer", Role: models.RoleStaff},
			{EntityID: "F1", Name: "Dev Nair", Role: models.RoleFaculty},
		},
		events: map[string][]models.Event{
			"LAB": {
				eventAt("S1", "LAB", time.Date(2025, 2, 1, 23, 0, 0, 0, time.UTC)),
				eventAt("F1", "LAB", time.Date(2025, 2, 1, 23, 0, 0, 0, time.UTC)),
			},
		},
	}
	cfg := testConfig()
	// Watch list overrides the allowed set: staff is allowed inside but
	// still flagged after hours; faculty is not watched at all.
	cfg.Locations = map[string]config.LocationPolicy{
		"LAB": {
			AllowedRoles:    []string{"staff", "faculty"},
			AfterHours:      true,
			AfterHoursRoles: []string{"staff"},
		},
	}

	alerts, err := newTestEngine(store, cfg).Scan(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, CategoryAfterHours, alerts[0].Category)

	details, ok := alerts[0].Details.(AccessDetails)
	require.True(t, ok)
	assert.Equal(t, "S1", details.EntityID)
}

func TestScanSortsDescendingAndCaps(t *testing.T) {
	cfg := testConfig()
	cfg.MaxPerCategory = 2
	cfg.MaxTotal = 3

	base := time.Date(2025, 2, 1, 12, 0, 0, 0, time.UTC)
	var samples []models.OccupancySample
	for i := 0; i < 10; i++ {
		samples = append(samples, models.OccupancySample{
			LocationID: "LIB", StartTime: base.Add(time.Duration(i) * time.Hour), Count: 120 + i*40,
		})
	}
	store := &fakeStore{
		profiles: []models.Profile{{EntityID: "E1", Name: "Asha Rao", Role: models.RoleStudent}},
		times: map[string][]time.Time{
			"E1": {base, base.Add(80 * time.Hour)},
		},
		occupancy: map[string][]models.OccupancySample{"LIB": samples},
	}

	alerts, err := newTestEngine(store, cfg).Scan(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, alerts, 3)
	for i := 1; i < len(alerts); i++ {
		assert.GreaterOrEqual(t, alerts[i-1].Severity, alerts[i].Severity)
	}
}

func TestScanThresholdOverride(t *testing.T) {
	store := &fakeStore{
		profiles: []models.Profile{{EntityID: "E1", Name: "Asha Rao", Role: models.RoleStudent}},
		times: map[string][]time.Time{
			"E1": {
				time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC),
				time.Date(2025, 6, 2, 14, 0, 0, 0, time.UTC), // 6h raw gap, no sleep overlap
			},
		},
	}
	cfg := testConfig()
	cfg.SleepGapThresholdHours = 100 // keep variant B quiet

	alerts, err := newTestEngine(store, cfg).Scan(context.Background(), 4)
	require.NoError(t, err)
	require.Len(t, alerts, 1)

	alerts, err = newTestEngine(store, cfg).Scan(context.Background(), 0) // default 12h
	require.NoError(t, err)
	assert.Empty(t, alerts)
}
