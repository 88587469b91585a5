package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/your-org/sentinel/internal/models"
	"github.com/your-org/sentinel/internal/storage"
	"github.com/your-org/sentinel/pkg/dto"
)

type EntityHandler struct {
	db *storage.PostgresStore
}

func NewEntityHandler(db *storage.PostgresStore) *EntityHandler {
	return &EntityHandler{db: db}
}

func toEntityResponse(p *models.Profile) dto.EntityResponse {
	return dto.EntityResponse{
		EntityID:   p.EntityID,
		Name:       p.Name,
		Role:       string(p.Role),
		Email:      p.Email,
		Department: p.Department,
		StudentID:  p.StudentID,
		StaffID:    p.StaffID,
		CardID:     p.CardID,
		FaceID:     p.FaceID,
		DeviceHash: p.DeviceHash,
	}
}

// Search matches the query against every identifier kind.
func (h *EntityHandler) Search(c *gin.Context) {
	profiles, err := h.db.SearchProfiles(c.Request.Context(), c.Query("q"), 50)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	resp := make([]dto.EntityResponse, 0, len(profiles))
	for i := range profiles {
		resp = append(resp, toEntityResponse(&profiles[i]))
	}
	c.JSON(http.StatusOK, gin.H{"entities": resp, "total": len(resp)})
}

// Get returns one entity with its most recent sighting.
func (h *EntityHandler) Get(c *gin.Context) {
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

	resp := dto.EntityDetailResponse{EntityResponse: toEntityResponse(profile)}

	last, err := h.db.LastSeen(c.Request.Context(), entityID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if last != nil {
		resp.LastSeen = &dto.LastSeen{
			Timestamp: last.Timestamp.UTC().Format(time.RFC3339),
			Location:  last.Location,
			EventType: string(last.EventType),
		}
	}
	c.JSON(http.StatusOK, resp)
}
