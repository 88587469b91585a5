package importer

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/your-org/sentinel/internal/models"
	"github.com/your-org/sentinel/internal/resolve"
)

type fakeStore struct {
	profiles   []models.Profile
	events     []models.Event
	wifiLogs   []models.WifiLog
	swipes     []models.CardSwipe
	frames     []models.CCTVFrame
	notes      []models.Note
	bookings   []models.LabBooking
	checkouts  []models.LibraryCheckout
	occupancy  []models.OccupancySample
	embeddings []models.FaceEmbedding
}

func (f *fakeStore) ListProfiles(ctx context.Context) ([]models.Profile, error) {
	return f.profiles, nil
}
func (f *fakeStore) ReplaceProfiles(ctx context.Context, p []models.Profile) error {
	f.profiles = p
	return nil
}
func (f *fakeStore) ListEvents(ctx context.Context) ([]models.Event, error) { return f.events, nil }
func (f *fakeStore) ReplaceEvents(ctx context.Context, e []models.Event) error {
	f.events = e
	return nil
}
func (f *fakeStore) ReplaceWifiLogs(ctx context.Context, l []models.WifiLog) error {
	f.wifiLogs = l
	return nil
}
func (f *fakeStore) ReplaceCardSwipes(ctx context.Context, s []models.CardSwipe) error {
	f.swipes = s
	return nil
}
func (f *fakeStore) ReplaceCCTVFrames(ctx context.Context, c []models.CCTVFrame) error {
	f.frames = c
	return nil
}
func (f *fakeStore) ReplaceNotes(ctx context.Context, n []models.Note) error {
	f.notes = n
	return nil
}
func (f *fakeStore) ReplaceLabBookings(ctx context.Context, b []models.LabBooking) error {
	f.bookings = b
	return nil
}
func (f *fakeStore) ReplaceLibraryCheckouts(ctx context.Context, c []models.LibraryCheckout) error {
	f.checkouts = c
	return nil
}
func (f *fakeStore) ReplaceOccupancy(ctx context.Context, o []models.OccupancySample) error {
	f.occupancy = o
	return nil
}
func (f *fakeStore) ReplaceFaceEmbeddings(ctx context.Context, e []models.FaceEmbedding) error {
	f.embeddings = e
	return nil
}

func strptr(s string) *string { return &s }

func seededStore() *fakeStore {
	entity := "E1"
	return &fakeStore{
		profiles: []models.Profile{
			{EntityID: "E1", Name: "Asha Rao", Role: models.RoleStudent,
				StudentID: strptr("S1"), CardID: strptr("C1"), DeviceHash: strptr("D1"), FaceID: strptr("F1")},
		},
		events: []models.Event{
			{EventID: uuid.MustParse("11111111-1111-1111-1111-111111111111"), EntityID: &entity,
				Timestamp: time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC), EventType: models.EventCardSwipe},
			{EventID: uuid.MustParse("22222222-2222-2222-2222-222222222222"), EntityID: &entity,
				Timestamp: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC), EventType: models.EventWifi},
		},
	}
}

func TestImportProfilesCollisionFatal(t *testing.T) {
	store := &fakeStore{}
	im := New(store, nil)

	csv := "entity_id,name,role,student_id,card_id\n" +
		"E1,Asha Rao,student,S1,C1\n" +
		"E2,Vik Shah,student,S2,C1\n"
	_, err := im.ImportProfiles(context.Background(), strings.NewReader(csv))
	require.Error(t, err)

	var collision *resolve.CollisionError
	assert.ErrorAs(t, err, &collision)
	assert.Empty(t, store.profiles, "nothing written on collision")
}

func TestImportProfilesDefaultsRole(t *testing.T) {
	store := &fakeStore{}
	im := New(store, nil)

	csv := "entity_id,name,role,student_id\nE1,Asha Rao,,S1\n"
	res, err := im.ImportProfiles(context.Background(), strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, 1, res.Rows)
	assert.Equal(t, models.RoleStudent, store.profiles[0].Role)
}

func TestImportEventsWifiConfidenceForced(t *testing.T) {
	store := seededStore()
	im := New(store, nil)

	csv := "entity_id,location,timestamp,confidence,event_type\n" +
		"E1,LAB_1,2025-01-01T10:00:00Z,0.5,wifi_logs\n" +
		"E1,LAB_1,2025-01-01T11:00:00Z,0.9,card_swipes\n"
	res, err := im.ImportEvents(context.Background(), strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, 2, res.Rows)

	require.Len(t, store.events, 2)
	assert.Equal(t, 0.7, store.events[0].Confidence)
	assert.Equal(t, 0.9, store.events[1].Confidence)
}

func TestImportEventsDropsBadRows(t *testing.T) {
	store := seededStore()
	im := New(store, nil)

	csv := "entity_id,location,timestamp,confidence,event_type\n" +
		"E1,LAB_1,not-a-time,1.0,wifi_logs\n" +
		"E1,LAB_1,2025-01-01T10:00:00Z,1.0,bogus_type\n" +
		"E1,LAB_1,2025-01-01T10:00:00Z,1.0,wifi_logs\n"
	res, err := im.ImportEvents(context.Background(), strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, 2, res.Dropped)
	assert.Equal(t, 1, res.Rows)
}

func TestImportEventsUnknownEntityRetainedUnresolved(t *testing.T) {
	store := seededStore()
	im := New(store, nil)

	csv := "entity_id,location,timestamp,confidence,event_type\n" +
		"E999,LAB_1,2025-01-01T10:00:00Z,1.0,card_swipes\n"
	res, err := im.ImportEvents(context.Background(), strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, 1, res.Rows)
	assert.Equal(t, 1, res.Unresolved)
	require.Len(t, store.events, 1)
	assert.Nil(t, store.events[0].EntityID)
}

func TestImportWifiLogsLinksNearestPreceding(t *testing.T) {
	store := seededStore()
	im := New(store, nil)

	csv := "device_hash,ap_id,timestamp\n" +
		"D1,AP_7,2025-01-01T10:30:00Z\n" + // between the two events, links 09:00
		"D1,AP_7,2025-01-01T08:00:00Z\n" + // before any event, unlinked
		"D_UNKNOWN,AP_7,2025-01-01T10:30:00Z\n"
	res, err := im.ImportWifiLogs(context.Background(), strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, 3, res.Rows)
	assert.Equal(t, 1, res.Linked)
	assert.Equal(t, 1, res.Unresolved)

	require.Len(t, store.wifiLogs, 3)
	require.NotNil(t, store.wifiLogs[0].EventID)
	assert.Equal(t, store.events[0].EventID, *store.wifiLogs[0].EventID)
	assert.Nil(t, store.wifiLogs[1].EventID, "record before first event stays unlinked")
	assert.Nil(t, store.wifiLogs[2].EventID, "unresolved device kept but never linked")
}

func TestImportCardSwipesExactTimestampLinks(t *testing.T) {
	store := seededStore()
	im := New(store, nil)

	csv := "card_id,location_id,timestamp\nC1,GATE_1,2025-01-01T12:00:00Z\n"
	res, err := im.ImportCardSwipes(context.Background(), strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, 1, res.Linked)
	require.NotNil(t, store.swipes[0].EventID)
	assert.Equal(t, store.events[1].EventID, *store.swipes[0].EventID)
}

func TestImportCCTVFramesStripsImageSuffix(t *testing.T) {
	store := seededStore()
	im := New(store, nil)

	csv := "frame_id,location_id,face_id,timestamp\n" +
		"FR1,GATE_1,F1.jpg,2025-01-01T10:00:00Z\n"
	res, err := im.ImportCCTVFrames(context.Background(), strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, 1, res.Linked)
	require.NotNil(t, store.frames[0].FaceID)
	assert.Equal(t, "F1", *store.frames[0].FaceID)
}

type fakeObjectStore struct {
	purged  []string
	objects map[string][]byte
}

func (f *fakeObjectStore) PutObject(_ context.Context, key string, data []byte, _ string) error {
	if f.objects == nil {
		f.objects = make(map[string][]byte)
	}
	f.objects[key] = data
	return nil
}

func (f *fakeObjectStore) PurgePrefix(_ context.Context, prefix string) error {
	f.purged = append(f.purged, prefix)
	return nil
}

func TestImportCCTVFramesUploadsSnapshots(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "FR1.jpg"), []byte("jpegdata"), 0o644))

	store := seededStore()
	objects := &fakeObjectStore{}
	im := New(store, nil)
	im.AttachObjectStore(objects, dir)

	csv := "frame_id,location_id,face_id,timestamp\n" +
		"FR1,GATE_1,F1,2025-01-01T10:00:00Z\n" +
		"FR2,GATE_1,F1,2025-01-01T11:00:00Z\n"
	_, err := im.ImportCCTVFrames(context.Background(), strings.NewReader(csv))
	require.NoError(t, err)

	// Reload purges the prefix, uploads the frames that have an image,
	// and records the object key on the row.
	assert.Equal(t, []string{"frames/"}, objects.purged)
	assert.Equal(t, []byte("jpegdata"), objects.objects["frames/FR1.jpg"])

	require.Len(t, store.frames, 2)
	require.NotNil(t, store.frames[0].SnapshotKey)
	assert.Equal(t, "frames/FR1.jpg", *store.frames[0].SnapshotKey)
	assert.Nil(t, store.frames[1].SnapshotKey)
}

func TestImportFaceEmbeddingsUploadsEnrollments(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "F1.jpg"), []byte("facedata"), 0o644))

	store := seededStore()
	objects := &fakeObjectStore{}
	im := New(store, nil)
	im.AttachObjectStore(objects, dir)

	vec := make([]string, models.EmbeddingDim)
	for i := range vec {
		vec[i] = "0.01"
	}
	csv := "face_id,embedding\n" +
		"F1,\"[" + strings.Join(vec, ", ") + "]\"\n"
	_, err := im.ImportFaceEmbeddings(context.Background(), strings.NewReader(csv))
	require.NoError(t, err)

	assert.Equal(t, []string{"enrollments/"}, objects.purged)
	assert.Equal(t, []byte("facedata"), objects.objects["enrollments/F1.jpg"])
}

func TestImportOccupancyDayFirstTimestamps(t *testing.T) {
	store := &fakeStore{}
	im := New(store, nil)

	csv := "location_id,start_time,count\n" +
		"LIB,01-02-2025 14:00,42\n" +
		"LIB,bad-time,10\n"
	res, err := im.ImportOccupancy(context.Background(), strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, 1, res.Rows)
	assert.Equal(t, 1, res.Dropped)
	assert.Equal(t, time.Date(2025, 2, 1, 14, 0, 0, 0, time.UTC), store.occupancy[0].StartTime)
}

func TestImportFaceEmbeddingsRejectsWrongDim(t *testing.T) {
	store := seededStore()
	im := New(store, nil)

	good := make([]string, models.EmbeddingDim)
	for i := range good {
		good[i] = "0.01"
	}
	csv := "face_id,embedding\n" +
		"F1.jpg,\"[" + strings.Join(good, ", ") + "]\"\n" +
		"F2,\"[0.1, 0.2]\"\n"
	res, err := im.ImportFaceEmbeddings(context.Background(), strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, 1, res.Rows)
	assert.Equal(t, 1, res.Dropped)
	assert.Equal(t, 1, res.Linked)

	require.Len(t, store.embeddings, 1)
	assert.Equal(t, "F1", store.embeddings[0].FaceID)
	require.NotNil(t, store.embeddings[0].EntityID)
	assert.Equal(t, "E1", *store.embeddings[0].EntityID)
}
