// Package importer loads the offline CSV exports into the store with
// delete-then-reload semantics. Each source batch resolves raw identifiers
// to entities and joins every row to its nearest preceding canonical event.
package importer

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/your-org/sentinel/internal/faceid"
	"github.com/your-org/sentinel/internal/models"
	"github.com/your-org/sentinel/internal/observability"
	"github.com/your-org/sentinel/internal/resolve"
	"github.com/your-org/sentinel/internal/storage"
)

// Store is the slice of the storage layer an import batch writes through.
type Store interface {
	ListProfiles(ctx context.Context) ([]models.Profile, error)
	ReplaceProfiles(ctx context.Context, profiles []models.Profile) error
	ListEvents(ctx context.Context) ([]models.Event, error)
	ReplaceEvents(ctx context.Context, events []models.Event) error
	ReplaceWifiLogs(ctx context.Context, logs []models.WifiLog) error
	ReplaceCardSwipes(ctx context.Context, swipes []models.CardSwipe) error
	ReplaceCCTVFrames(ctx context.Context, frames []models.CCTVFrame) error
	ReplaceNotes(ctx context.Context, notes []models.Note) error
	ReplaceLabBookings(ctx context.Context, bookings []models.LabBooking) error
	ReplaceLibraryCheckouts(ctx context.Context, checkouts []models.LibraryCheckout) error
	ReplaceOccupancy(ctx context.Context, samples []models.OccupancySample) error
	ReplaceFaceEmbeddings(ctx context.Context, embeddings []models.FaceEmbedding) error
}

// Notifier announces a completed batch; nil disables notifications.
type Notifier interface {
	PublishImport(ctx context.Context, source string, data interface{}) error
}

// ObjectStore receives the image files accompanying a batch: CCTV frame
// snapshots and face enrollment photos. Nil disables uploads.
type ObjectStore interface {
	PutObject(ctx context.Context, key string, data []byte, contentType string) error
	PurgePrefix(ctx context.Context, prefix string) error
}

// BatchResult summarizes one source import. It is also the NATS payload.
type BatchResult struct {
	Source     string    `json:"source"`
	Rows       int       `json:"rows"`
	Linked     int       `json:"linked"`
	Unresolved int       `json:"unresolved"`
	Dropped    int       `json:"dropped"`
	FinishedAt time.Time `json:"finished_at"`
}

type Importer struct {
	store    Store
	notifier Notifier
	objects  ObjectStore
	imageDir string
}

func New(store Store, notifier Notifier) *Importer {
	return &Importer{store: store, notifier: notifier}
}

// AttachObjectStore enables image uploads for the CCTV and face batches:
// files named <frame_id>.jpg or <face_id>.jpg under imageDir are pushed to
// the object store alongside the CSV rows.
func (im *Importer) AttachObjectStore(objects ObjectStore, imageDir string) {
	im.objects = objects
	im.imageDir = imageDir
}

// uploadImages re-populates one object-store prefix from imageDir with
// delete-then-reload semantics. keyFor maps an id to its object key and
// is consulted only for ids whose image file exists; uploaded returns
// each id that now has an object.
func (im *Importer) uploadImages(ctx context.Context, prefix string, ids []string, keyFor func(string) string) (map[string]string, error) {
	uploaded := make(map[string]string, len(ids))
	if im.objects == nil {
		return uploaded, nil
	}
	if err := im.objects.PurgePrefix(ctx, prefix); err != nil {
		return nil, fmt.Errorf("purge %s: %w", prefix, err)
	}
	for _, id := range ids {
		data, err := os.ReadFile(filepath.Join(im.imageDir, id+".jpg"))
		if err != nil {
			continue
		}
		key := keyFor(id)
		if err := im.objects.PutObject(ctx, key, data, "image/jpeg"); err != nil {
			return nil, fmt.Errorf("upload %s: %w", key, err)
		}
		uploaded[id] = key
	}
	return uploaded, nil
}

func (im *Importer) finish(ctx context.Context, res BatchResult) BatchResult {
	res.FinishedAt = time.Now().UTC()
	observability.RecordsImported.WithLabelValues(res.Source).Add(float64(res.Rows))
	observability.EventsLinked.WithLabelValues(res.Source).Add(float64(res.Linked))
	observability.RecordsUnresolved.WithLabelValues(res.Source).Add(float64(res.Unresolved))
	slog.Info("import batch complete", "source", res.Source,
		"rows", res.Rows, "linked", res.Linked, "unresolved", res.Unresolved, "dropped", res.Dropped)
	if im.notifier != nil {
		if err := im.notifier.PublishImport(ctx, res.Source, res); err != nil {
			slog.Warn("publish import notice failed", "source", res.Source, "error", err)
		}
	}
	return res
}

// joinContext carries the per-batch resolver and linker, built once from
// the profiles and events committed before the batch started.
type joinContext struct {
	resolver *resolve.Resolver
	linker   *resolve.Linker
	entities map[string]bool
}

func (im *Importer) buildJoin(ctx context.Context) (*joinContext, error) {
	profiles, err := im.store.ListProfiles(ctx)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	resolver, err := resolve.NewResolver(profiles)
	if err != nil {
		// Identifier collisions are fatal to the import step.
		return nil, err
	}
	events, err := im.store.ListEvents(ctx)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	entities := make(map[string]bool, len(profiles))
	for _, p := range profiles {
		entities[p.EntityID] = true
	}
	return &joinContext{
		resolver: resolver,
		linker:   resolve.NewLinker(events),
		entities: entities,
	}, nil
}

// link resolves an identifier and joins the row's timestamp to an event.
// Unresolved and unlinked rows keep a nil event reference.
func (jc *joinContext) link(kind resolve.IdentifierKind, value string, ts time.Time) (*uuid.UUID, bool, bool) {
	entityID, ok := jc.resolver.Lookup(kind, value)
	if !ok {
		return nil, false, false
	}
	eventID, linked := jc.linker.Link(entityID, ts)
	if !linked {
		return nil, true, false
	}
	return &eventID, true, true
}

// linkEntity joins a row that already carries its entity id.
func (jc *joinContext) linkEntity(entityID string, ts time.Time) (*uuid.UUID, bool, bool) {
	if !jc.entities[entityID] {
		return nil, false, false
	}
	eventID, linked := jc.linker.Link(entityID, ts)
	if !linked {
		return nil, true, false
	}
	return &eventID, true, true
}

// ImportProfiles reloads the registry. Collisions across identifier
// columns abort before anything is written.
func (im *Importer) ImportProfiles(ctx context.Context, r io.Reader) (BatchResult, error) {
	profiles, err := parseProfiles(r)
	if err != nil {
		return BatchResult{}, err
	}
	if _, err := resolve.NewResolver(profiles); err != nil {
		return BatchResult{}, err
	}
	if err := im.store.ReplaceProfiles(ctx, profiles); err != nil {
		return BatchResult{}, err
	}
	return im.finish(ctx, BatchResult{Source: "profiles", Rows: len(profiles)}), nil
}

// ImportEvents reloads the canonical event stream.
func (im *Importer) ImportEvents(ctx context.Context, r io.Reader) (BatchResult, error) {
	profiles, err := im.store.ListProfiles(ctx)
	if err != nil {
		return BatchResult{}, fmt.Errorf("list profiles: %w", err)
	}
	known := make(map[string]bool, len(profiles))
	for _, p := range profiles {
		known[p.EntityID] = true
	}

	events, dropped, err := parseEvents(r, func(id string) bool { return known[id] })
	if err != nil {
		return BatchResult{}, err
	}
	if err := im.store.ReplaceEvents(ctx, events); err != nil {
		return BatchResult{}, err
	}

	resolved := 0
	for i := range events {
		if events[i].EntityID != nil {
			resolved++
		}
	}
	return im.finish(ctx, BatchResult{
		Source:     "events",
		Rows:       len(events),
		Linked:     resolved,
		Unresolved: len(events) - resolved,
		Dropped:    dropped,
	}), nil
}

func (im *Importer) ImportWifiLogs(ctx context.Context, r io.Reader) (BatchResult, error) {
	jc, err := im.buildJoin(ctx)
	if err != nil {
		return BatchResult{}, err
	}
	rr, err := newRowReader(r)
	if err != nil {
		return BatchResult{}, err
	}
	if err := rr.require("device_hash", "ap_id", "timestamp"); err != nil {
		return BatchResult{}, err
	}

	res := BatchResult{Source: string(models.EventWifi)}
	var logs []models.WifiLog
	for {
		row, rerr := rr.next()
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			return BatchResult{}, fmt.Errorf("read wifi row: %w", rerr)
		}
		ts, ok := parseTimestamp(row["timestamp"])
		if !ok || row["device_hash"] == "" || row["ap_id"] == "" {
			res.Dropped++
			continue
		}
		eventID, resolved, linked := jc.link(resolve.KindDeviceHash, row["device_hash"], ts)
		if !resolved {
			res.Unresolved++
		} else if linked {
			res.Linked++
		}
		logs = append(logs, models.WifiLog{
			EventID:    eventID,
			DeviceHash: row["device_hash"],
			APID:       row["ap_id"],
			Timestamp:  ts,
		})
	}
	if err := im.store.ReplaceWifiLogs(ctx, logs); err != nil {
		return BatchResult{}, err
	}
	res.Rows = len(logs)
	return im.finish(ctx, res), nil
}

func (im *Importer) ImportCardSwipes(ctx context.Context, r io.Reader) (BatchResult, error) {
	jc, err := im.buildJoin(ctx)
	if err != nil {
		return BatchResult{}, err
	}
	rr, err := newRowReader(r)
	if err != nil {
		return BatchResult{}, err
	}
	if err := rr.require("card_id", "location_id", "timestamp"); err != nil {
		return BatchResult{}, err
	}

	res := BatchResult{Source: string(models.EventCardSwipe)}
	var swipes []models.CardSwipe
	for {
		row, rerr := rr.next()
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			return BatchResult{}, fmt.Errorf("read card swipe row: %w", rerr)
		}
		ts, ok := parseTimestamp(row["timestamp"])
		if !ok || row["card_id"] == "" || row["location_id"] == "" {
			res.Dropped++
			continue
		}
		eventID, resolved, linked := jc.link(resolve.KindCardID, row["card_id"], ts)
		if !resolved {
			res.Unresolved++
		} else if linked {
			res.Linked++
		}
		swipes = append(swipes, models.CardSwipe{
			EventID:    eventID,
			CardID:     row["card_id"],
			LocationID: row["location_id"],
			Timestamp:  ts,
		})
	}
	if err := im.store.ReplaceCardSwipes(ctx, swipes); err != nil {
		return BatchResult{}, err
	}
	res.Rows = len(swipes)
	return im.finish(ctx, res), nil
}

func (im *Importer) ImportCCTVFrames(ctx context.Context, r io.Reader) (BatchResult, error) {
	jc, err := im.buildJoin(ctx)
	if err != nil {
		return BatchResult{}, err
	}
	rr, err := newRowReader(r)
	if err != nil {
		return BatchResult{}, err
	}
	if err := rr.require("frame_id", "timestamp"); err != nil {
		return BatchResult{}, err
	}

	res := BatchResult{Source: string(models.EventCCTV)}
	var frames []models.CCTVFrame
	for {
		row, rerr := rr.next()
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			return BatchResult{}, fmt.Errorf("read cctv row: %w", rerr)
		}
		ts, ok := parseTimestamp(row["timestamp"])
		if !ok || row["frame_id"] == "" {
			res.Dropped++
			continue
		}
		// Enrollment exports name faces after their image file.
		faceID := strings.TrimSuffix(row["face_id"], ".jpg")

		var eventID *uuid.UUID
		if faceID != "" {
			var resolved, linked bool
			eventID, resolved, linked = jc.link(resolve.KindFaceID, faceID, ts)
			if !resolved {
				res.Unresolved++
			} else if linked {
				res.Linked++
			}
		} else {
			res.Unresolved++
		}
		frames = append(frames, models.CCTVFrame{
			FrameID:     row["frame_id"],
			EventID:     eventID,
			LocationID:  optional(row["location_id"]),
			FaceID:      optional(faceID),
			SnapshotKey: optional(row["snapshot_key"]),
			Timestamp:   ts,
		})
	}
	frameIDs := make([]string, len(frames))
	for i := range frames {
		frameIDs[i] = frames[i].FrameID
	}
	snapshots, err := im.uploadImages(ctx, "frames/", frameIDs, storage.FrameKey)
	if err != nil {
		return BatchResult{}, err
	}
	for i := range frames {
		if key, ok := snapshots[frames[i].FrameID]; ok {
			k := key
			frames[i].SnapshotKey = &k
		}
	}

	if err := im.store.ReplaceCCTVFrames(ctx, frames); err != nil {
		return BatchResult{}, err
	}
	res.Rows = len(frames)
	return im.finish(ctx, res), nil
}

func (im *Importer) ImportNotes(ctx context.Context, r io.Reader) (BatchResult, error) {
	jc, err := im.buildJoin(ctx)
	if err != nil {
		return BatchResult{}, err
	}
	rr, err := newRowReader(r)
	if err != nil {
		return BatchResult{}, err
	}
	if err := rr.require("note_id", "entity_id", "text", "timestamp"); err != nil {
		return BatchResult{}, err
	}

	res := BatchResult{Source: string(models.EventNote)}
	var notes []models.Note
	for {
		row, rerr := rr.next()
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			return BatchResult{}, fmt.Errorf("read note row: %w", rerr)
		}
		ts, ok := parseTimestamp(row["timestamp"])
		if !ok || row["note_id"] == "" || row["entity_id"] == "" {
			res.Dropped++
			continue
		}
		eventID, resolved, linked := jc.linkEntity(row["entity_id"], ts)
		if !resolved {
			res.Unresolved++
		} else if linked {
			res.Linked++
		}
		notes = append(notes, models.Note{
			NoteID:    row["note_id"],
			EventID:   eventID,
			EntityID:  row["entity_id"],
			Category:  optional(row["category"]),
			Text:      row["text"],
			Timestamp: ts,
		})
	}
	if err := im.store.ReplaceNotes(ctx, notes); err != nil {
		return BatchResult{}, err
	}
	res.Rows = len(notes)
	return im.finish(ctx, res), nil
}

func (im *Importer) ImportLabBookings(ctx context.Context, r io.Reader) (BatchResult, error) {
	jc, err := im.buildJoin(ctx)
	if err != nil {
		return BatchResult{}, err
	}
	rr, err := newRowReader(r)
	if err != nil {
		return BatchResult{}, err
	}
	if err := rr.require("booking_id", "entity_id", "room_id", "start_time", "end_time"); err != nil {
		return BatchResult{}, err
	}

	res := BatchResult{Source: string(models.EventLabBooking)}
	var bookings []models.LabBooking
	for {
		row, rerr := rr.next()
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			return BatchResult{}, fmt.Errorf("read lab booking row: %w", rerr)
		}
		start, okStart := parseTimestamp(row["start_time"])
		end, okEnd := parseTimestamp(row["end_time"])
		if !okStart || !okEnd || row["booking_id"] == "" || row["entity_id"] == "" {
			res.Dropped++
			continue
		}
		eventID, resolved, linked := jc.linkEntity(row["entity_id"], start)
		if !resolved {
			res.Unresolved++
		} else if linked {
			res.Linked++
		}
		bookings = append(bookings, models.LabBooking{
			BookingID: row["booking_id"],
			EventID:   eventID,
			EntityID:  row["entity_id"],
			RoomID:    row["room_id"],
			StartTime: start,
			EndTime:   end,
			Attended:  strings.EqualFold(row["attended"], "true") || row["attended"] == "1",
		})
	}
	if err := im.store.ReplaceLabBookings(ctx, bookings); err != nil {
		return BatchResult{}, err
	}
	res.Rows = len(bookings)
	return im.finish(ctx, res), nil
}

func (im *Importer) ImportLibraryCheckouts(ctx context.Context, r io.Reader) (BatchResult, error) {
	jc, err := im.buildJoin(ctx)
	if err != nil {
		return BatchResult{}, err
	}
	rr, err := newRowReader(r)
	if err != nil {
		return BatchResult{}, err
	}
	if err := rr.require("checkout_id", "entity_id", "book_id", "timestamp"); err != nil {
		return BatchResult{}, err
	}

	res := BatchResult{Source: string(models.EventLibraryCheckout)}
	var checkouts []models.LibraryCheckout
	for {
		row, rerr := rr.next()
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			return BatchResult{}, fmt.Errorf("read library checkout row: %w", rerr)
		}
		ts, ok := parseTimestamp(row["timestamp"])
		if !ok || row["checkout_id"] == "" || row["entity_id"] == "" {
			res.Dropped++
			continue
		}
		eventID, resolved, linked := jc.linkEntity(row["entity_id"], ts)
		if !resolved {
			res.Unresolved++
		} else if linked {
			res.Linked++
		}
		checkouts = append(checkouts, models.LibraryCheckout{
			CheckoutID: row["checkout_id"],
			EventID:    eventID,
			EntityID:   row["entity_id"],
			BookID:     row["book_id"],
			Timestamp:  ts,
		})
	}
	if err := im.store.ReplaceLibraryCheckouts(ctx, checkouts); err != nil {
		return BatchResult{}, err
	}
	res.Rows = len(checkouts)
	return im.finish(ctx, res), nil
}

func (im *Importer) ImportOccupancy(ctx context.Context, r io.Reader) (BatchResult, error) {
	samples, dropped, err := parseOccupancy(r)
	if err != nil {
		return BatchResult{}, err
	}
	if err := im.store.ReplaceOccupancy(ctx, samples); err != nil {
		return BatchResult{}, err
	}
	return im.finish(ctx, BatchResult{Source: "occupancy", Rows: len(samples), Dropped: dropped}), nil
}

// ImportFaceEmbeddings reloads the enrollment vectors, tying each to a
// profile when its face id matches one.
func (im *Importer) ImportFaceEmbeddings(ctx context.Context, r io.Reader) (BatchResult, error) {
	profiles, err := im.store.ListProfiles(ctx)
	if err != nil {
		return BatchResult{}, fmt.Errorf("list profiles: %w", err)
	}
	byFace := make(map[string]string)
	for _, p := range profiles {
		if p.FaceID != nil && *p.FaceID != "" {
			byFace[*p.FaceID] = p.EntityID
		}
	}

	rr, err := newRowReader(r)
	if err != nil {
		return BatchResult{}, err
	}
	if err := rr.require("face_id", "embedding"); err != nil {
		return BatchResult{}, err
	}

	res := BatchResult{Source: "face_embeddings"}
	var embeddings []models.FaceEmbedding
	for {
		row, rerr := rr.next()
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			return BatchResult{}, fmt.Errorf("read embedding row: %w", rerr)
		}
		faceID := strings.TrimSuffix(row["face_id"], ".jpg")
		vec, ok := parseEmbedding(row["embedding"])
		if !ok || faceID == "" {
			res.Dropped++
			continue
		}
		var entityID *string
		if id, found := byFace[faceID]; found {
			entityID = &id
			res.Linked++
		} else {
			res.Unresolved++
		}
		embeddings = append(embeddings, models.FaceEmbedding{
			FaceID:    faceID,
			EntityID:  entityID,
			Embedding: vec,
			Model:     faceid.ModelName,
		})
	}
	faceIDs := make([]string, len(embeddings))
	for i := range embeddings {
		faceIDs[i] = embeddings[i].FaceID
	}
	if _, err := im.uploadImages(ctx, "enrollments/", faceIDs, storage.EnrollmentKey); err != nil {
		return BatchResult{}, err
	}

	if err := im.store.ReplaceFaceEmbeddings(ctx, embeddings); err != nil {
		return BatchResult{}, err
	}
	res.Rows = len(embeddings)
	return im.finish(ctx, res), nil
}
