package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/your-org/sentinel/internal/models"
)

// timestampLayouts are tried in order when parsing source timestamps.
// Rows whose timestamp matches none of them are dropped before linking.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
}

// occupancyLayout matches the facilities export, day first.
const occupancyLayout = "02-01-2006 15:04"

func parseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts.UTC(), true
		}
	}
	return time.Time{}, false
}

// rowReader iterates CSV rows as header-keyed maps. Short rows are padded
// with empty strings rather than rejected.
type rowReader struct {
	r      *csv.Reader
	header []string
	line   int
}

func newRowReader(r io.Reader) (*rowReader, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}
	return &rowReader{r: cr, header: header}, nil
}

func (rr *rowReader) require(cols ...string) error {
	have := make(map[string]bool, len(rr.header))
	for _, h := range rr.header {
		have[h] = true
	}
	for _, c := range cols {
		if !have[c] {
			return fmt.Errorf("missing required column %q", c)
		}
	}
	return nil
}

func (rr *rowReader) next() (map[string]string, error) {
	rec, err := rr.r.Read()
	if err != nil {
		return nil, err
	}
	rr.line++
	row := make(map[string]string, len(rr.header))
	for i, h := range rr.header {
		if i < len(rec) {
			row[h] = strings.TrimSpace(rec[i])
		} else {
			row[h] = ""
		}
	}
	return row, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// parseProfiles reads the profiles CSV. Roles default to student, matching
// the upstream registry export where the column is often blank.
func parseProfiles(r io.Reader) ([]models.Profile, error) {
	rr, err := newRowReader(r)
	if err != nil {
		return nil, err
	}
	if err := rr.require("entity_id", "name"); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	var profiles []models.Profile
	for {
		row, err := rr.next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read profiles row: %w", err)
		}

		role := models.Role(row["role"])
		if role == "" {
			role = models.RoleStudent
		}
		p := models.Profile{
			EntityID:   row["entity_id"],
			Name:       row["name"],
			Role:       role,
			Email:      optional(row["email"]),
			Department: optional(row["department"]),
			StudentID:  optional(row["student_id"]),
			StaffID:    optional(row["staff_id"]),
			CardID:     optional(row["card_id"]),
			FaceID:     optional(row["face_id"]),
			DeviceHash: optional(row["device_hash"]),
			CreatedAt:  now,
		}
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("row %d: %w", rr.line, err)
		}
		profiles = append(profiles, p)
	}
	return profiles, nil
}

// parseEvents reads the canonical events CSV. Wi-Fi rows get their
// confidence forced to 0.7; other rows with an unparseable confidence
// default to 1.0. Rows with a bad timestamp or event type are dropped.
func parseEvents(r io.Reader, knownEntity func(string) bool) (events []models.Event, dropped int, err error) {
	rr, err := newRowReader(r)
	if err != nil {
		return nil, 0, err
	}
	if err := rr.require("entity_id", "timestamp", "event_type"); err != nil {
		return nil, 0, err
	}

	now := time.Now().UTC()
	for {
		row, rerr := rr.next()
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			return nil, 0, fmt.Errorf("read events row: %w", rerr)
		}

		ts, ok := parseTimestamp(row["timestamp"])
		if !ok {
			dropped++
			continue
		}
		eventType := models.EventType(row["event_type"])
		if !eventType.Valid() {
			dropped++
			continue
		}

		confidence := 1.0
		if c, cerr := strconv.ParseFloat(row["confidence"], 64); cerr == nil {
			confidence = c
		}
		if eventType == models.EventWifi {
			confidence = 0.7
		}

		var entityID *string
		if id := row["entity_id"]; id != "" && knownEntity(id) {
			entityID = &id
		}

		events = append(events, models.Event{
			EventID:    uuid.New(),
			EntityID:   entityID,
			Location:   optional(row["location"]),
			Timestamp:  ts,
			Confidence: confidence,
			EventType:  eventType,
			CreatedAt:  now,
		})
	}
	return events, dropped, nil
}

func parseOccupancy(r io.Reader) (samples []models.OccupancySample, dropped int, err error) {
	rr, err := newRowReader(r)
	if err != nil {
		return nil, 0, err
	}
	if err := rr.require("location_id", "start_time", "count"); err != nil {
		return nil, 0, err
	}

	for {
		row, rerr := rr.next()
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			return nil, 0, fmt.Errorf("read occupancy row: %w", rerr)
		}

		ts, terr := time.Parse(occupancyLayout, row["start_time"])
		if terr != nil {
			dropped++
			continue
		}
		count, cerr := strconv.Atoi(row["count"])
		if cerr != nil || row["location_id"] == "" {
			dropped++
			continue
		}
		samples = append(samples, models.OccupancySample{
			LocationID: row["location_id"],
			StartTime:  ts.UTC(),
			Count:      count,
		})
	}
	return samples, dropped, nil
}

// parseEmbedding reads a bracketed float list ("[0.1, 0.2, ...]") and
// requires exactly 512 dimensions.
func parseEmbedding(s string) ([]float32, bool) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "[")
	s = strings.TrimSuffix(s, "]")
	parts := strings.Split(s, ",")
	if len(parts) != models.EmbeddingDim {
		return nil, false
	}
	vec := make([]float32, len(parts))
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 32)
		if err != nil {
			return nil, false
		}
		vec[i] = float32(f)
	}
	return vec, true
}
