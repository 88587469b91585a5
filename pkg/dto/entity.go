// Package dto defines the wire shapes of the HTTP and WebSocket API.
// Timestamps are ISO-8601 strings, severities integers, distances floats.
package dto

import "github.com/your-org/sentinel/internal/models"

type EntityResponse struct {
	EntityID   string  `json:"entity_id"`
	Name       string  `json:"name"`
	Role       string  `json:"role"`
	Email      *string `json:"email,omitempty"`
	Department *string `json:"department,omitempty"`
	StudentID  *string `json:"student_id,omitempty"`
	StaffID    *string `json:"staff_id,omitempty"`
	CardID     *string `json:"card_id,omitempty"`
	FaceID     *string `json:"face_id,omitempty"`
	DeviceHash *string `json:"device_hash,omitempty"`
}

// LastSeen accompanies a single-entity lookup: the most recent canonical
// event, nil when the entity has no events yet.
type LastSeen struct {
	Timestamp string  `json:"timestamp"`
	Location  *string `json:"location,omitempty"`
	EventType string  `json:"event_type"`
}

type EntityDetailResponse struct {
	EntityResponse
	LastSeen *LastSeen `json:"last_seen,omitempty"`
}

type EventResponse struct {
	EventID    string  `json:"event_id"`
	Timestamp  string  `json:"timestamp"`
	Location   *string `json:"location,omitempty"`
	Confidence float64 `json:"confidence"`
	EventType  string  `json:"event_type"`
	// Sources holds the raw source rows joined to this event.
	Sources *models.SourceDetails `json:"sources,omitempty"`
}

type StayIntervalResponse struct {
	Start    string `json:"start"`
	End      string `json:"end"`
	Location string `json:"location"`
	Minutes  int    `json:"duration_minutes"`
}

type TimelineResponse struct {
	EntityID string                 `json:"entity_id"`
	From     string                 `json:"from"`
	To       string                 `json:"to"`
	Events   []EventResponse        `json:"events"`
	Stays    []StayIntervalResponse `json:"stays"`
}

// SummaryResponse joins the concurrent timeline and narrative sub-tasks.
// Either half may degrade independently; Degraded lists the failed parts.
type SummaryResponse struct {
	EntityID string                 `json:"entity_id"`
	Name     string                 `json:"name"`
	From     string                 `json:"from"`
	To       string                 `json:"to"`
	Stays    []StayIntervalResponse `json:"stays"`
	Summary  string                 `json:"summary"`
	Degraded []string               `json:"degraded,omitempty"`
}
