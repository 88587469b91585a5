package models

import (
	"time"

	"github.com/google/uuid"
)

// SourceRecord is the closed union over the six raw sensor log variants.
// Every variant carries its own identifier and timestamp plus a nullable
// reference to the canonical Event it was linked to. Source rows are
// immutable once inserted; re-imports are full delete+reload.
type SourceRecord interface {
	Kind() EventType
	RecordKey() string
	RecordedAt() time.Time
	LinkedEvent() *uuid.UUID

	sourceRecord()
}

// SourceDetails groups the raw source rows linked to one canonical event,
// one slice per variant. A timeline event carries the details of every
// source row that was joined to it.
type SourceDetails struct {
	WifiLogs         []WifiLog         `json:"wifi_logs,omitempty"`
	CardSwipes       []CardSwipe       `json:"card_swipes,omitempty"`
	CCTVFrames       []CCTVFrame       `json:"cctv_frames,omitempty"`
	Notes            []Note            `json:"notes,omitempty"`
	LabBookings      []LabBooking      `json:"lab_bookings,omitempty"`
	LibraryCheckouts []LibraryCheckout `json:"library_checkouts,omitempty"`
}

type WifiLog struct {
	ID         int64      `json:"id" db:"id"`
	EventID    *uuid.UUID `json:"event_id,omitempty" db:"event_id"`
	DeviceHash string     `json:"device_hash" db:"device_hash"`
	APID       string     `json:"ap_id" db:"ap_id"`
	Timestamp  time.Time  `json:"timestamp" db:"timestamp"`
}

func (w WifiLog) Kind() EventType          { return EventWifi }
func (w WifiLog) RecordKey() string        { return w.DeviceHash }
func (w WifiLog) RecordedAt() time.Time    { return w.Timestamp }
func (w WifiLog) LinkedEvent() *uuid.UUID  { return w.EventID }
func (WifiLog) sourceRecord()              {}

type CardSwipe struct {
	ID         int64      `json:"id" db:"id"`
	EventID    *uuid.UUID `json:"event_id,omitempty" db:"event_id"`
	CardID     string     `json:"card_id" db:"card_id"`
	LocationID string     `json:"location_id" db:"location_id"`
	Timestamp  time.Time  `json:"timestamp" db:"timestamp"`
}

func (c CardSwipe) Kind() EventType         { return EventCardSwipe }
func (c CardSwipe) RecordKey() string       { return c.CardID }
func (c CardSwipe) RecordedAt() time.Time   { return c.Timestamp }
func (c CardSwipe) LinkedEvent() *uuid.UUID { return c.EventID }
func (CardSwipe) sourceRecord()             {}

type CCTVFrame struct {
	FrameID     string     `json:"frame_id" db:"frame_id"`
	EventID     *uuid.UUID `json:"event_id,omitempty" db:"event_id"`
	LocationID  *string    `json:"location_id,omitempty" db:"location_id"`
	FaceID      *string    `json:"face_id,omitempty" db:"face_id"`
	SnapshotKey *string    `json:"snapshot_key,omitempty" db:"snapshot_key"`
	Timestamp   time.Time  `json:"timestamp" db:"timestamp"`
}

func (f CCTVFrame) Kind() EventType { return EventCCTV }
func (f CCTVFrame) RecordKey() string {
	if f.FaceID != nil {
		return *f.FaceID
	}
	return ""
}
func (f CCTVFrame) RecordedAt() time.Time   { return f.Timestamp }
func (f CCTVFrame) LinkedEvent() *uuid.UUID { return f.EventID }
func (CCTVFrame) sourceRecord()             {}

type Note struct {
	NoteID    string     `json:"note_id" db:"note_id"`
	EventID   *uuid.UUID `json:"event_id,omitempty" db:"event_id"`
	EntityID  string     `json:"entity_id" db:"entity_id"`
	Category  *string    `json:"category,omitempty" db:"category"`
	Text      string     `json:"text" db:"text"`
	Timestamp time.Time  `json:"timestamp" db:"timestamp"`
}

func (n Note) Kind() EventType         { return EventNote }
func (n Note) RecordKey() string       { return n.EntityID }
func (n Note) RecordedAt() time.Time   { return n.Timestamp }
func (n Note) LinkedEvent() *uuid.UUID { return n.EventID }
func (Note) sourceRecord()             {}

type LabBooking struct {
	BookingID string     `json:"booking_id" db:"booking_id"`
	EventID   *uuid.UUID `json:"event_id,omitempty" db:"event_id"`
	EntityID  string     `json:"entity_id" db:"entity_id"`
	RoomID    string     `json:"room_id" db:"room_id"`
	StartTime time.Time  `json:"start_time" db:"start_time"`
	EndTime   time.Time  `json:"end_time" db:"end_time"`
	Attended  bool       `json:"attended" db:"attended"`
}

func (b LabBooking) Kind() EventType         { return EventLabBooking }
func (b LabBooking) RecordKey() string       { return b.EntityID }
func (b LabBooking) RecordedAt() time.Time   { return b.StartTime }
func (b LabBooking) LinkedEvent() *uuid.UUID { return b.EventID }
func (LabBooking) sourceRecord()             {}

type LibraryCheckout struct {
	CheckoutID string     `json:"checkout_id" db:"checkout_id"`
	EventID    *uuid.UUID `json:"event_id,omitempty" db:"event_id"`
	EntityID   string     `json:"entity_id" db:"entity_id"`
	BookID     string     `json:"book_id" db:"book_id"`
	Timestamp  time.Time  `json:"timestamp" db:"timestamp"`
}

func (l LibraryCheckout) Kind() EventType         { return EventLibraryCheckout }
func (l LibraryCheckout) RecordKey() string       { return l.EntityID }
func (l LibraryCheckout) RecordedAt() time.Time   { return l.Timestamp }
func (l LibraryCheckout) LinkedEvent() *uuid.UUID { return l.EventID }
func (LibraryCheckout) sourceRecord()             {}
