package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/your-org/sentinel/internal/models"
	"github.com/your-org/sentinel/internal/timeline"
	"github.com/your-org/sentinel/pkg/dto"
)

// TimelineStore is the storage slice the timeline read path needs.
type TimelineStore interface {
	GetProfile(ctx context.Context, entityID string) (*models.Profile, error)
	EventsForEntity(ctx context.Context, entityID string, from, to time.Time, types []models.EventType) ([]models.Event, error)
	SourcesForEvents(ctx context.Context, eventIDs []uuid.UUID) (map[uuid.UUID]*models.SourceDetails, error)
}

type TimelineHandler struct {
	db TimelineStore
}

func NewTimelineHandler(db TimelineStore) *TimelineHandler {
	return &TimelineHandler{db: db}
}

// parseWindow reads from/to query params, defaulting to the last 24 hours.
func parseWindow(c *gin.Context) (time.Time, time.Time, bool) {
	to := time.Now().UTC()
	from := to.Add(-24 * time.Hour)

	if v := c.Query("from"); v != "" {
		ts, err := time.Parse(time.RFC3339, v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid from timestamp, want RFC 3339"})
			return from, to, false
		}
		from = ts.UTC()
	}
	if v := c.Query("to"); v != "" {
		ts, err := time.Parse(time.RFC3339, v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid to timestamp, want RFC 3339"})
			return from, to, false
		}
		to = ts.UTC()
	}
	if to.Before(from) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "to precedes from"})
		return from, to, false
	}
	return from, to, true
}

func parseTypes(c *gin.Context) ([]models.EventType, bool) {
	raw := c.Query("types")
	if raw == "" {
		return nil, true
	}
	var types []models.EventType
	for _, part := range strings.Split(raw, ",") {
		t := models.EventType(strings.TrimSpace(part))
		if !t.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown event type " + string(t)})
			return nil, false
		}
		types = append(types, t)
	}
	return types, true
}

func toStayResponses(stays []timeline.StayInterval) []dto.StayIntervalResponse {
	resp := make([]dto.StayIntervalResponse, 0, len(stays))
	for _, s := range stays {
		resp = append(resp, dto.StayIntervalResponse{
			Start:    s.Start.UTC().Format(time.RFC3339),
			End:      s.End.UTC().Format(time.RFC3339),
			Location: s.Location,
			Minutes:  s.Minutes(),
		})
	}
	return resp
}

// Get returns the entity's canonical events in the window plus the
// collapsed stay intervals.
func (h *TimelineHandler) Get(c *gin.Context) {
	entityID := c.Param("id")

	profile, err := h.db.GetProfile(c.Request.Context(), entityID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if profile == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "entity not found"})
		return
	}

	from, to, ok := parseWindow(c)
	if !ok {
		return
	}
	types, ok := parseTypes(c)
	if !ok {
		return
	}

	events, err := h.db.EventsForEntity(c.Request.Context(), entityID, from, to, types)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	eventIDs := make([]uuid.UUID, len(events))
	for i, ev := range events {
		eventIDs[i] = ev.EventID
	}
	sources, err := h.db.SourcesForEvents(c.Request.Context(), eventIDs)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	eventResp := make([]dto.EventResponse, 0, len(events))
	for _, ev := range events {
		eventResp = append(eventResp, dto.EventResponse{
			EventID:    ev.EventID.String(),
			Timestamp:  ev.Timestamp.UTC().Format(time.RFC3339),
			Location:   ev.Location,
			Confidence: ev.Confidence,
			EventType:  string(ev.EventType),
			Sources:    sources[ev.EventID],
		})
	}

	c.JSON(http.StatusOK, dto.TimelineResponse{
		EntityID: entityID,
		From:     from.Format(time.RFC3339),
		To:       to.Format(time.RFC3339),
		Events:   eventResp,
		Stays:    toStayResponses(timeline.Collapse(events)),
	})
}
