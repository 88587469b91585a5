package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/your-org/sentinel/internal/forecast"
	"github.com/your-org/sentinel/internal/narrative"
	"github.com/your-org/sentinel/internal/storage"
	"github.com/your-org/sentinel/pkg/dto"
)

type PredictHandler struct {
	db        *storage.PostgresStore
	generator *narrative.Generator
}

func NewPredictHandler(db *storage.PostgresStore, generator *narrative.Generator) *PredictHandler {
	return &PredictHandler{db: db, generator: generator}
}

// Predict trains a per-entity model on the located history and predicts
// the most likely location one hour ahead. No history is a valid
// empty-result state, not an error.
func (h *PredictHandler) Predict(c *gin.Context) {
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

	events, err := h.db.LocatedEvents(c.Request.Context(), entityID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	history := make([]forecast.LocationObservation, 0, len(events))
	for _, ev := range events {
		history = append(history, forecast.LocationObservation{
			Timestamp: ev.Timestamp,
			Location:  *ev.Location,
		})
	}

	p := forecast.PredictNextLocation(history, time.Now().UTC())

	resp := dto.PredictResponse{
		EntityID: entityID,
		NoData:   p.NoData,
		Location: p.Location,
		Trained:  p.Trained,
		History:  len(p.History),
	}
	if !p.NoData {
		resp.TargetTime = p.TargetTime.Format(time.RFC3339)
	}
	resp.Explanation = h.generator.ExplainPrediction(c.Request.Context(), profile.Name, p)
	c.JSON(http.StatusOK, resp)
}
