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

type ForecastHandler struct {
	db         *storage.PostgresStore
	forecaster *forecast.OccupancyForecaster
	generator  *narrative.Generator
}

func NewForecastHandler(db *storage.PostgresStore, forecaster *forecast.OccupancyForecaster, generator *narrative.Generator) *ForecastHandler {
	return &ForecastHandler{db: db, forecaster: forecaster, generator: generator}
}

// Forecast trains a fresh per-location model and predicts the head count
// at the requested time. A location with no history predicts zero.
func (h *ForecastHandler) Forecast(c *gin.Context) {
	var req dto.ForecastRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	target, err := time.Parse(time.RFC3339, req.TargetTime)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid target_time, want RFC 3339"})
		return
	}
	target = target.UTC()

	samples, err := h.db.ListOccupancy(c.Request.Context(), req.Location)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	fc := h.forecaster.Forecast(samples, req.Location, target)
	an := forecast.Analyze(samples, req.Location, target)

	resp := dto.ForecastResponse{
		Location:        fc.Location,
		TargetTime:      fc.TargetTime.Format(time.RFC3339),
		PredictedCount:  fc.Predicted,
		Status:          string(fc.Status),
		TrainingSamples: fc.Samples,
		Explanation:     h.generator.ExplainOccupancy(c.Request.Context(), &fc, an),
	}
	if an != nil {
		resp.AvgCount = an.AvgCount
		resp.SameHourAvg = an.SameHourAvg
	}
	c.JSON(http.StatusOK, resp)
}
