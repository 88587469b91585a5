package models

import (
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventWifi            EventType = "wifi_logs"
	EventCCTV            EventType = "cctv_frames"
	EventLabBooking      EventType = "lab_booking"
	EventCardSwipe       EventType = "card_swipes"
	EventLibraryCheckout EventType = "library_checkouts"
	EventNote            EventType = "text_notes"
)

func (t EventType) Valid() bool {
	switch t {
	case EventWifi, EventCCTV, EventLabBooking, EventCardSwipe, EventLibraryCheckout, EventNote:
		return true
	}
	return false
}

// Event is a canonical timestamped occurrence attributable to an entity.
// EntityID is nil for unresolved events, which are retained for audit but
// excluded from entity-scoped queries. Timestamps are timezone-aware UTC.
type Event struct {
	EventID    uuid.UUID `json:"event_id" db:"event_id"`
	EntityID   *string   `json:"entity_id,omitempty" db:"entity_id"`
	Location   *string   `json:"location,omitempty" db:"location"`
	Timestamp  time.Time `json:"timestamp" db:"timestamp"`
	Confidence float64   `json:"confidence" db:"confidence"`
	EventType  EventType `json:"event_type" db:"event_type"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// OccupancySample is one per-location head count at a point in time,
// unique on (location, start_time).
type OccupancySample struct {
	ID         int64     `json:"id" db:"id"`
	LocationID string    `json:"location_id" db:"location_id"`
	StartTime  time.Time `json:"start_time" db:"start_time"`
	Count      int       `json:"count" db:"count"`
}
