package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/your-org/sentinel/internal/narrative"
	"github.com/your-org/sentinel/internal/storage"
	"github.com/your-org/sentinel/internal/timeline"
	"github.com/your-org/sentinel/pkg/dto"
)

type SummaryHandler struct {
	db        *storage.PostgresStore
	generator *narrative.Generator
}

func NewSummaryHandler(db *storage.PostgresStore, generator *narrative.Generator) *SummaryHandler {
	return &SummaryHandler{db: db, generator: generator}
}

// Get builds an entity's activity summary. The timeline fetch and the notes
// fetch run concurrently and are joined; either failing degrades its half
// of the response instead of failing the request. An unknown entity fails
// fast with 404 before either sub-task starts.
func (h *SummaryHandler) Get(c *gin.Context) {
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

	type timelineResult struct {
		stays []timeline.StayInterval
		err   error
	}
	type notesResult struct {
		notes []string
		err   error
	}

	timelineCh := make(chan timelineResult, 1)
	notesCh := make(chan notesResult, 1)

	ctx := c.Request.Context()
	go func() {
		events, err := h.db.EventsForEntity(ctx, entityID, from, to, nil)
		if err != nil {
			timelineCh <- timelineResult{err: err}
			return
		}
		timelineCh <- timelineResult{stays: timeline.Collapse(events)}
	}()
	go func() {
		rows, err := h.db.NotesForEntity(ctx, entityID)
		if err != nil {
			notesCh <- notesResult{err: err}
			return
		}
		texts := make([]string, 0, len(rows))
		for _, n := range rows {
			texts = append(texts, n.Text)
		}
		notesCh <- notesResult{notes: texts}
	}()

	tl := <-timelineCh
	nt := <-notesCh

	resp := dto.SummaryResponse{
		EntityID: entityID,
		Name:     profile.Name,
		From:     from.Format(time.RFC3339),
		To:       to.Format(time.RFC3339),
	}

	if tl.err != nil {
		resp.Degraded = append(resp.Degraded, "timeline")
	} else {
		resp.Stays = toStayResponses(tl.stays)
	}
	if nt.err != nil {
		resp.Degraded = append(resp.Degraded, "notes")
		nt.notes = nil
	}

	if tl.err != nil {
		resp.Summary = narrative.FallbackSummary
		resp.Degraded = append(resp.Degraded, "summary")
	} else {
		resp.Summary = h.generator.Summarize(ctx, profile.Name, timeline.RenderText(tl.stays), nt.notes)
		if resp.Summary == narrative.FallbackSummary {
			resp.Degraded = append(resp.Degraded, "summary")
		}
	}

	c.JSON(http.StatusOK, resp)
}
