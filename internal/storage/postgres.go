package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/your-org/sentinel/internal/config"
	"github.com/your-org/sentinel/internal/models"
)

type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(cfg config.DatabaseConfig) (*PostgresStore, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	poolCfg.MaxConns = int32(cfg.MaxConns)

	pool, err := pgxpool.NewWithConfig(context.Background(), poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	if err := pool.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Close() {
	s.pool.Close()
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// --- Profiles ---

const profileColumns = `entity_id, name, role, email, department, student_id, staff_id, card_id, face_id, device_hash, created_at`

func scanProfile(row pgx.Row, p *models.Profile) error {
	return row.Scan(&p.EntityID, &p.Name, &p.Role, &p.Email, &p.Department,
		&p.StudentID, &p.StaffID, &p.CardID, &p.FaceID, &p.DeviceHash, &p.CreatedAt)
}

func (s *PostgresStore) GetProfile(ctx context.Context, entityID string) (*models.Profile, error) {
	p := &models.Profile{}
	err := scanProfile(s.pool.QueryRow(ctx,
		`SELECT `+profileColumns+` FROM profiles WHERE entity_id = $1`, entityID), p)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return p, nil
}

// SearchProfiles matches q case-insensitively against every identifier a
// caller might know: entity id, name, email, card, device, face, student
// and staff ids. An empty q returns all profiles.
func (s *PostgresStore) SearchProfiles(ctx context.Context, q string, limit int) ([]models.Profile, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `SELECT ` + profileColumns + ` FROM profiles`
	args := []interface{}{}
	if q != "" {
		query += ` WHERE entity_id ILIKE $1 OR name ILIKE $1 OR email ILIKE $1
			OR student_id ILIKE $1 OR staff_id ILIKE $1
			OR card_id ILIKE $1 OR face_id ILIKE $1 OR device_hash ILIKE $1`
		args = append(args, "%"+q+"%")
	}
	query += fmt.Sprintf(` ORDER BY name, entity_id LIMIT $%d`, len(args)+1)
	args = append(args, limit)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("search profiles: %w", err)
	}
	defer rows.Close()

	var profiles []models.Profile
	for rows.Next() {
		var p models.Profile
		if err := scanProfile(rows, &p); err != nil {
			return nil, fmt.Errorf("scan profile: %w", err)
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}

func (s *PostgresStore) ListProfiles(ctx context.Context) ([]models.Profile, error) {
	return s.SearchProfiles(ctx, "", 100000)
}

// ReplaceProfiles reloads the profiles table in a single transaction.
// Imports are full delete+reload; dependent events keep their rows but
// drop the entity reference via ON DELETE SET NULL.
func (s *PostgresStore) ReplaceProfiles(ctx context.Context, profiles []models.Profile) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM profiles`); err != nil {
		return fmt.Errorf("clear profiles: %w", err)
	}

	_, err = tx.CopyFrom(ctx,
		pgx.Identifier{"profiles"},
		[]string{"entity_id", "name", "role", "email", "department", "student_id", "staff_id", "card_id", "face_id", "device_hash", "created_at"},
		pgx.CopyFromSlice(len(profiles), func(i int) ([]interface{}, error) {
			p := profiles[i]
			return []interface{}{p.EntityID, p.Name, p.Role, p.Email, p.Department,
				p.StudentID, p.StaffID, p.CardID, p.FaceID, p.DeviceHash, p.CreatedAt}, nil
		}))
	if err != nil {
		return fmt.Errorf("copy profiles: %w", err)
	}
	return tx.Commit(ctx)
}

// --- Events ---

const eventColumns = `event_id, entity_id, location, timestamp, confidence, event_type, created_at`

func scanEvent(row pgx.Row, ev *models.Event) error {
	return row.Scan(&ev.EventID, &ev.EntityID, &ev.Location, &ev.Timestamp,
		&ev.Confidence, &ev.EventType, &ev.CreatedAt)
}

func (s *PostgresStore) collectEvents(rows pgx.Rows) ([]models.Event, error) {
	defer rows.Close()
	var events []models.Event
	for rows.Next() {
		var ev models.Event
		if err := scanEvent(rows, &ev); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

// EventsForEntity returns the entity's events inside [from, to] in ascending
// timestamp order, optionally restricted to a set of event types.
func (s *PostgresStore) EventsForEntity(ctx context.Context, entityID string, from, to time.Time, types []models.EventType) ([]models.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events
		WHERE entity_id = $1 AND timestamp >= $2 AND timestamp <= $3`
	args := []interface{}{entityID, from, to}
	if len(types) > 0 {
		query += fmt.Sprintf(` AND event_type = ANY($%d)`, len(args)+1)
		args = append(args, types)
	}
	query += ` ORDER BY timestamp ASC`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("events for entity: %w", err)
	}
	return s.collectEvents(rows)
}

// LocatedEvents returns the entity's full located history ascending, the
// input the next-location predictor trains on.
func (s *PostgresStore) LocatedEvents(ctx context.Context, entityID string) ([]models.Event, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+eventColumns+` FROM events
		 WHERE entity_id = $1 AND location IS NOT NULL
		 ORDER BY timestamp ASC`, entityID)
	if err != nil {
		return nil, fmt.Errorf("located events: %w", err)
	}
	return s.collectEvents(rows)
}

// LastSeen returns the entity's most recent event, nil when none exists.
func (s *PostgresStore) LastSeen(ctx context.Context, entityID string) (*models.Event, error) {
	ev := &models.Event{}
	err := scanEvent(s.pool.QueryRow(ctx,
		`SELECT `+eventColumns+` FROM events
		 WHERE entity_id = $1 ORDER BY timestamp DESC LIMIT 1`, entityID), ev)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("last seen: %w", err)
	}
	return ev, nil
}

// EntityEventTimes returns every resolved entity's event timestamps in
// ascending order, keyed by entity id. The gap scanner walks the whole
// map in one sweep.
func (s *PostgresStore) EntityEventTimes(ctx context.Context) (map[string][]time.Time, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT entity_id, timestamp FROM events
		 WHERE entity_id IS NOT NULL ORDER BY entity_id, timestamp ASC`)
	if err != nil {
		return nil, fmt.Errorf("entity event times: %w", err)
	}
	defer rows.Close()

	times := make(map[string][]time.Time)
	for rows.Next() {
		var entityID string
		var ts time.Time
		if err := rows.Scan(&entityID, &ts); err != nil {
			return nil, fmt.Errorf("scan event time: %w", err)
		}
		times[entityID] = append(times[entityID], ts)
	}
	return times, rows.Err()
}

func (s *PostgresStore) EventsAtLocation(ctx context.Context, location string) ([]models.Event, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+eventColumns+` FROM events
		 WHERE location = $1 ORDER BY timestamp ASC`, location)
	if err != nil {
		return nil, fmt.Errorf("events at location: %w", err)
	}
	return s.collectEvents(rows)
}

// ListEvents returns every canonical event ascending by timestamp, the
// input the import-time temporal join is built from.
func (s *PostgresStore) ListEvents(ctx context.Context) ([]models.Event, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+eventColumns+` FROM events ORDER BY timestamp ASC`)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return s.collectEvents(rows)
}

// ReplaceEvents reloads the events table. Source rows referencing deleted
// events drop their link via ON DELETE SET NULL.
func (s *PostgresStore) ReplaceEvents(ctx context.Context, events []models.Event) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM events`); err != nil {
		return fmt.Errorf("clear events: %w", err)
	}
	_, err = tx.CopyFrom(ctx,
		pgx.Identifier{"events"},
		[]string{"event_id", "entity_id", "location", "timestamp", "confidence", "event_type", "created_at"},
		pgx.CopyFromSlice(len(events), func(i int) ([]interface{}, error) {
			ev := events[i]
			return []interface{}{ev.EventID, ev.EntityID, ev.Location, ev.Timestamp,
				ev.Confidence, ev.EventType, ev.CreatedAt}, nil
		}))
	if err != nil {
		return fmt.Errorf("copy events: %w", err)
	}
	return tx.Commit(ctx)
}

// --- Source tables ---

func (s *PostgresStore) replaceSource(ctx context.Context, table string, columns []string, n int, row func(i int) ([]interface{}, error)) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM `+table); err != nil {
		return fmt.Errorf("clear %s: %w", table, err)
	}
	if _, err := tx.CopyFrom(ctx, pgx.Identifier{table}, columns, pgx.CopyFromSlice(n, row)); err != nil {
		return fmt.Errorf("copy %s: %w", table, err)
	}
	return tx.Commit(ctx)
}

func (s *PostgresStore) ReplaceWifiLogs(ctx context.Context, logs []models.WifiLog) error {
	return s.replaceSource(ctx, "wifi_logs",
		[]string{"event_id", "device_hash", "ap_id", "timestamp"},
		len(logs), func(i int) ([]interface{}, error) {
			l := logs[i]
			return []interface{}{l.EventID, l.DeviceHash, l.APID, l.Timestamp}, nil
		})
}

func (s *PostgresStore) ReplaceCardSwipes(ctx context.Context, swipes []models.CardSwipe) error {
	return s.replaceSource(ctx, "card_swipes",
		[]string{"event_id", "card_id", "location_id", "timestamp"},
		len(swipes), func(i int) ([]interface{}, error) {
			c := swipes[i]
			return []interface{}{c.EventID, c.CardID, c.LocationID, c.Timestamp}, nil
		})
}

func (s *PostgresStore) ReplaceCCTVFrames(ctx context.Context, frames []models.CCTVFrame) error {
	return s.replaceSource(ctx, "cctv_frames",
		[]string{"frame_id", "event_id", "location_id", "face_id", "snapshot_key", "timestamp"},
		len(frames), func(i int) ([]interface{}, error) {
			f := frames[i]
			return []interface{}{f.FrameID, f.EventID, f.LocationID, f.FaceID, f.SnapshotKey, f.Timestamp}, nil
		})
}

func (s *PostgresStore) ReplaceNotes(ctx context.Context, notes []models.Note) error {
	return s.replaceSource(ctx, "text_notes",
		[]string{"note_id", "event_id", "entity_id", "category", "text", "timestamp"},
		len(notes), func(i int) ([]interface{}, error) {
			n := notes[i]
			return []interface{}{n.NoteID, n.EventID, n.EntityID, n.Category, n.Text, n.Timestamp}, nil
		})
}

func (s *PostgresStore) ReplaceLabBookings(ctx context.Context, bookings []models.LabBooking) error {
	return s.replaceSource(ctx, "lab_bookings",
		[]string{"booking_id", "event_id", "entity_id", "room_id", "start_time", "end_time", "attended"},
		len(bookings), func(i int) ([]interface{}, error) {
			b := bookings[i]
			return []interface{}{b.BookingID, b.EventID, b.EntityID, b.RoomID, b.StartTime, b.EndTime, b.Attended}, nil
		})
}

func (s *PostgresStore) ReplaceLibraryCheckouts(ctx context.Context, checkouts []models.LibraryCheckout) error {
	return s.replaceSource(ctx, "library_checkouts",
		[]string{"checkout_id", "event_id", "entity_id", "book_id", "timestamp"},
		len(checkouts), func(i int) ([]interface{}, error) {
			c := checkouts[i]
			return []interface{}{c.CheckoutID, c.EventID, c.EntityID, c.BookID, c.Timestamp}, nil
		})
}

// SourcesForEvents loads the raw source rows linked to the given events,
// grouped per event across all six source tables. The timeline attaches
// the result to each returned event.
func (s *PostgresStore) SourcesForEvents(ctx context.Context, eventIDs []uuid.UUID) (map[uuid.UUID]*models.SourceDetails, error) {
	out := make(map[uuid.UUID]*models.SourceDetails, len(eventIDs))
	if len(eventIDs) == 0 {
		return out, nil
	}
	details := func(id *uuid.UUID) *models.SourceDetails {
		d, ok := out[*id]
		if !ok {
			d = &models.SourceDetails{}
			out[*id] = d
		}
		return d
	}

	rows, err := s.pool.Query(ctx,
		`SELECT id, event_id, device_hash, ap_id, timestamp
		 FROM wifi_logs WHERE event_id = ANY($1)`, eventIDs)
	if err != nil {
		return nil, fmt.Errorf("wifi logs for events: %w", err)
	}
	for rows.Next() {
		var l models.WifiLog
		if err := rows.Scan(&l.ID, &l.EventID, &l.DeviceHash, &l.APID, &l.Timestamp); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan wifi log: %w", err)
		}
		d := details(l.EventID)
		d.WifiLogs = append(d.WifiLogs, l)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("wifi logs for events: %w", err)
	}

	rows, err = s.pool.Query(ctx,
		`SELECT id, event_id, card_id, location_id, timestamp
		 FROM card_swipes WHERE event_id = ANY($1)`, eventIDs)
	if err != nil {
		return nil, fmt.Errorf("card swipes for events: %w", err)
	}
	for rows.Next() {
		var c models.CardSwipe
		if err := rows.Scan(&c.ID, &c.EventID, &c.CardID, &c.LocationID, &c.Timestamp); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan card swipe: %w", err)
		}
		d := details(c.EventID)
		d.CardSwipes = append(d.CardSwipes, c)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("card swipes for events: %w", err)
	}

	rows, err = s.pool.Query(ctx,
		`SELECT frame_id, event_id, location_id, face_id, snapshot_key, timestamp
		 FROM cctv_frames WHERE event_id = ANY($1)`, eventIDs)
	if err != nil {
		return nil, fmt.Errorf("cctv frames for events: %w", err)
	}
	for rows.Next() {
		var f models.CCTVFrame
		if err := rows.Scan(&f.FrameID, &f.EventID, &f.LocationID, &f.FaceID, &f.SnapshotKey, &f.Timestamp); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan cctv frame: %w", err)
		}
		d := details(f.EventID)
		d.CCTVFrames = append(d.CCTVFrames, f)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("cctv frames for events: %w", err)
	}

	rows, err = s.pool.Query(ctx,
		`SELECT note_id, event_id, entity_id, category, text, timestamp
		 FROM text_notes WHERE event_id = ANY($1)`, eventIDs)
	if err != nil {
		return nil, fmt.Errorf("notes for events: %w", err)
	}
	for rows.Next() {
		var n models.Note
		if err := rows.Scan(&n.NoteID, &n.EventID, &n.EntityID, &n.Category, &n.Text, &n.Timestamp); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan note: %w", err)
		}
		d := details(n.EventID)
		d.Notes = append(d.Notes, n)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("notes for events: %w", err)
	}

	rows, err = s.pool.Query(ctx,
		`SELECT booking_id, event_id, entity_id, room_id, start_time, end_time, attended
		 FROM lab_bookings WHERE event_id = ANY($1)`, eventIDs)
	if err != nil {
		return nil, fmt.Errorf("lab bookings for events: %w", err)
	}
	for rows.Next() {
		var b models.LabBooking
		if err := rows.Scan(&b.BookingID, &b.EventID, &b.EntityID, &b.RoomID, &b.StartTime, &b.EndTime, &b.Attended); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan lab booking: %w", err)
		}
		d := details(b.EventID)
		d.LabBookings = append(d.LabBookings, b)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("lab bookings for events: %w", err)
	}

	rows, err = s.pool.Query(ctx,
		`SELECT checkout_id, event_id, entity_id, book_id, timestamp
		 FROM library_checkouts WHERE event_id = ANY($1)`, eventIDs)
	if err != nil {
		return nil, fmt.Errorf("library checkouts for events: %w", err)
	}
	for rows.Next() {
		var c models.LibraryCheckout
		if err := rows.Scan(&c.CheckoutID, &c.EventID, &c.EntityID, &c.BookID, &c.Timestamp); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan library checkout: %w", err)
		}
		d := details(c.EventID)
		d.LibraryCheckouts = append(d.LibraryCheckouts, c)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("library checkouts for events: %w", err)
	}

	return out, nil
}

// GetCCTVFrame returns one frame by id, nil when unknown. Serves the
// snapshot endpoint's MinIO key lookup.
func (s *PostgresStore) GetCCTVFrame(ctx context.Context, frameID string) (*models.CCTVFrame, error) {
	f := &models.CCTVFrame{}
	err := s.pool.QueryRow(ctx,
		`SELECT frame_id, event_id, location_id, face_id, snapshot_key, timestamp
		 FROM cctv_frames WHERE frame_id = $1`, frameID,
	).Scan(&f.FrameID, &f.EventID, &f.LocationID, &f.FaceID, &f.SnapshotKey, &f.Timestamp)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get cctv frame: %w", err)
	}
	return f, nil
}

// NotesForEntity returns the entity's free-text notes ascending, used by
// the summary narrative as supporting context.
func (s *PostgresStore) NotesForEntity(ctx context.Context, entityID string) ([]models.Note, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT note_id, event_id, entity_id, category, text, timestamp
		 FROM text_notes WHERE entity_id = $1 ORDER BY timestamp ASC`, entityID)
	if err != nil {
		return nil, fmt.Errorf("notes for entity: %w", err)
	}
	defer rows.Close()

	var notes []models.Note
	for rows.Next() {
		var n models.Note
		if err := rows.Scan(&n.NoteID, &n.EventID, &n.EntityID, &n.Category, &n.Text, &n.Timestamp); err != nil {
			return nil, fmt.Errorf("scan note: %w", err)
		}
		notes = append(notes, n)
	}
	return notes, rows.Err()
}

// --- Occupancy ---

func (s *PostgresStore) ListOccupancy(ctx context.Context, location string) ([]models.OccupancySample, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, location_id, start_time, count FROM occupancy_samples
		 WHERE location_id = $1 ORDER BY start_time ASC`, location)
	if err != nil {
		return nil, fmt.Errorf("list occupancy: %w", err)
	}
	defer rows.Close()

	var samples []models.OccupancySample
	for rows.Next() {
		var o models.OccupancySample
		if err := rows.Scan(&o.ID, &o.LocationID, &o.StartTime, &o.Count); err != nil {
			return nil, fmt.Errorf("scan occupancy sample: %w", err)
		}
		samples = append(samples, o)
	}
	return samples, rows.Err()
}

func (s *PostgresStore) ReplaceOccupancy(ctx context.Context, samples []models.OccupancySample) error {
	return s.replaceSource(ctx, "occupancy_samples",
		[]string{"location_id", "start_time", "count"},
		len(samples), func(i int) ([]interface{}, error) {
			o := samples[i]
			return []interface{}{o.LocationID, o.StartTime, o.Count}, nil
		})
}

// --- Face embeddings ---

func (s *PostgresStore) AddFaceEmbedding(ctx context.Context, fe *models.FaceEmbedding) error {
	vec := pgvector.NewVector(fe.Embedding)
	_, err := s.pool.Exec(ctx,
		`INSERT INTO face_embeddings (face_id, entity_id, embedding, embedding_model)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (face_id) DO UPDATE SET entity_id = $2, embedding = $3, embedding_model = $4`,
		fe.FaceID, fe.EntityID, vec, fe.Model)
	if err != nil {
		return fmt.Errorf("add face embedding: %w", err)
	}
	return nil
}

// ReplaceFaceEmbeddings reloads the face enrollment table in one
// transaction. Vectors are write-once, so re-import is the only update path.
func (s *PostgresStore) ReplaceFaceEmbeddings(ctx context.Context, embeddings []models.FaceEmbedding) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM face_embeddings`); err != nil {
		return fmt.Errorf("clear face embeddings: %w", err)
	}
	_, err = tx.CopyFrom(ctx,
		pgx.Identifier{"face_embeddings"},
		[]string{"face_id", "entity_id", "embedding", "embedding_model"},
		pgx.CopyFromSlice(len(embeddings), func(i int) ([]interface{}, error) {
			fe := embeddings[i]
			return []interface{}{fe.FaceID, fe.EntityID, pgvector.NewVector(fe.Embedding), fe.Model}, nil
		}))
	if err != nil {
		return fmt.Errorf("copy face embeddings: %w", err)
	}
	return tx.Commit(ctx)
}

// FaceMatch is the nearest stored embedding to a probe vector, with its
// cosine distance. Whether the match is confident is the caller's call.
type FaceMatch struct {
	FaceID   string  `json:"face_id"`
	EntityID *string `json:"entity_id,omitempty"`
	Distance float64 `json:"distance"`
}

// NearestFace returns the single closest enrollment by cosine distance,
// nil when no embeddings are stored.
func (s *PostgresStore) NearestFace(ctx context.Context, embedding []float32) (*FaceMatch, error) {
	vec := pgvector.NewVector(embedding)
	m := &FaceMatch{}
	err := s.pool.QueryRow(ctx,
		`SELECT face_id, entity_id, embedding <=> $1 AS distance
		 FROM face_embeddings ORDER BY embedding <=> $1 LIMIT 1`, vec,
	).Scan(&m.FaceID, &m.EntityID, &m.Distance)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("nearest face: %w", err)
	}
	return m, nil
}
