package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/your-org/sentinel/internal/models"
	"github.com/your-org/sentinel/pkg/dto"
)

type fakeTimelineStore struct {
	profile *models.Profile
	events  []models.Event
	sources map[uuid.UUID]*models.SourceDetails
}

func (f *fakeTimelineStore) GetProfile(context.Context, string) (*models.Profile, error) {
	return f.profile, nil
}

func (f *fakeTimelineStore) EventsForEntity(context.Context, string, time.Time, time.Time, []models.EventType) ([]models.Event, error) {
	return f.events, nil
}

func (f *fakeTimelineStore) SourcesForEvents(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]*models.SourceDetails, error) {
	out := make(map[uuid.UUID]*models.SourceDetails, len(ids))
	for _, id := range ids {
		if d, ok := f.sources[id]; ok {
			out[id] = d
		}
	}
	return out, nil
}

func newTimelineRouter(store *fakeTimelineStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/v1/entities/:id/timeline", NewTimelineHandler(store).Get)
	return r
}

func TestTimelineAttachesSourceDetails(t *testing.T) {
	wifiEventID := uuid.New()
	swipeEventID := uuid.New()
	entity := "E1"
	studentID := "S1"
	loc := "LIB_ENT"

	store := &fakeTimelineStore{
		profile: &models.Profile{EntityID: entity, Name: "Asha Rao", Role: models.RoleStudent, StudentID: &studentID},
		events: []models.Event{
			{EventID: wifiEventID, EntityID: &entity, Location: &loc,
				Timestamp: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC),
				EventType: models.EventWifi, Confidence: 0.7},
			{EventID: swipeEventID, EntityID: &entity, Location: &loc,
				Timestamp: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
				EventType: models.EventCardSwipe, Confidence: 1},
		},
		sources: map[uuid.UUID]*models.SourceDetails{
			wifiEventID: {
				WifiLogs: []models.WifiLog{{
					ID: 1, EventID: &wifiEventID, DeviceHash: "D1", APID: "AP_LIB_1",
					Timestamp: time.Date(2025, 3, 1, 9, 5, 0, 0, time.UTC),
				}},
			},
			swipeEventID: {
				CardSwipes: []models.CardSwipe{{
					ID: 2, EventID: &swipeEventID, CardID: "C1", LocationID: loc,
					Timestamp: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
				}},
			},
		},
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet,
		"/v1/entities/E1/timeline?from=2025-03-01T00:00:00Z&to=2025-03-02T00:00:00Z", nil)
	newTimelineRouter(store).ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp dto.TimelineResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Events, 2)

	require.NotNil(t, resp.Events[0].Sources)
	require.Len(t, resp.Events[0].Sources.WifiLogs, 1)
	assert.Equal(t, "D1", resp.Events[0].Sources.WifiLogs[0].DeviceHash)
	assert.Empty(t, resp.Events[0].Sources.CardSwipes)

	require.NotNil(t, resp.Events[1].Sources)
	require.Len(t, resp.Events[1].Sources.CardSwipes, 1)
	assert.Equal(t, "C1", resp.Events[1].Sources.CardSwipes[0].CardID)
}

func TestTimelineEventWithoutSourcesOmitsDetails(t *testing.T) {
	entity := "E1"
	staffID := "S9"
	store := &fakeTimelineStore{
		profile: &models.Profile{EntityID: entity, Name: "Asha Rao", Role: models.RoleStaff, StaffID: &staffID},
		events: []models.Event{
			{EventID: uuid.New(), EntityID: &entity,
				Timestamp: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC),
				EventType: models.EventNote, Confidence: 1},
		},
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet,
		"/v1/entities/E1/timeline?from=2025-03-01T00:00:00Z&to=2025-03-02T00:00:00Z", nil)
	newTimelineRouter(store).ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &raw))
	var events []map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw["events"], &events))
	require.Len(t, events, 1)
	_, present := events[0]["sources"]
	assert.False(t, present)
}
