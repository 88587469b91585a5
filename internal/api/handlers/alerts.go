package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/your-org/sentinel/internal/alerting"
	"github.com/your-org/sentinel/internal/narrative"
)

// Sample size of alert messages handed to the recommendation prompt per
// category.
const recommendationContext = 5

type AlertHandler struct {
	engine    *alerting.Engine
	generator *narrative.Generator
}

func NewAlertHandler(engine *alerting.Engine, generator *narrative.Generator) *AlertHandler {
	return &AlertHandler{engine: engine, generator: generator}
}

type alertResponse struct {
	alerting.Alert
	Recommendation string `json:"recommendation"`
}

// List runs a full alert sweep and attaches one generated recommendation
// per alert category. The hours parameter overrides the missing-person gap
// threshold; a malformed value falls back to the configured default
// silently rather than failing the request.
func (h *AlertHandler) List(c *gin.Context) {
	var threshold float64
	if raw := c.Query("hours"); raw != "" {
		if v, err := strconv.ParseFloat(raw, 64); err == nil && v > 0 {
			threshold = v
		}
	}

	alerts, err := h.engine.Scan(c.Request.Context(), threshold)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	byCategory := make(map[alerting.Category][]alerting.Alert)
	for _, a := range alerts {
		byCategory[a.Category] = append(byCategory[a.Category], a)
	}
	recommendations := make(map[string]string, len(byCategory))
	for category, group := range byCategory {
		n := len(group)
		if n > recommendationContext {
			n = recommendationContext
		}
		samples := make([]string, 0, n)
		for _, a := range group[:n] {
			samples = append(samples, a.Message)
		}
		recommendations[string(category)] = h.generator.RecommendAlerts(
			c.Request.Context(), string(category), len(group), samples)
	}

	items := make([]alertResponse, len(alerts))
	for i, a := range alerts {
		items[i] = alertResponse{Alert: a, Recommendation: recommendations[string(a.Category)]}
	}

	c.JSON(http.StatusOK, gin.H{
		"alerts":          items,
		"total":           len(items),
		"recommendations": recommendations,
	})
}
