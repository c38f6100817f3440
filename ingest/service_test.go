package ingest

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"path/filepath"
	"testing"
	"time"

	"github.com/FlapTrack/flaptrack-go/classify"
	"github.com/FlapTrack/flaptrack-go/models"
	"github.com/FlapTrack/flaptrack-go/storage"
)

// fakeClassifier returns canned readings keyed by frame content.
type fakeClassifier struct {
	byFrame map[string]classify.Classification
	err     error
	calls   int
}

func (f *fakeClassifier) Classify(ctx context.Context, frame []byte, crop image.Rectangle) (*classify.Classification, error) {
	return f.ClassifyFullImage(ctx, frame)
}

func (f *fakeClassifier) ClassifyFullImage(ctx context.Context, frame []byte) (*classify.Classification, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if c, ok := f.byFrame[string(frame)]; ok {
		return &c, nil
	}
	return &classify.Classification{Direction: models.DirectionInvalid}, nil
}

func newTestStore(t *testing.T) *storage.EventStore {
	t.Helper()
	store, err := storage.NewEventStore(storage.Config{
		SQLitePath: filepath.Join(t.TempDir(), "events.db"),
	})
	if err != nil {
		t.Fatalf("failed to open test store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func testPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(0, 0, color.White)
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode test frame: %v", err)
	}
	return buf.Bytes()
}

func TestIngestFrameStoresEvent(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	frame := testPNG(t)
	fc := &fakeClassifier{byFrame: map[string]classify.Classification{
		string(frame): {Direction: models.DirectionIn, Confidence: 0.9, RawText: "IN"},
	}}

	var notified []models.PresenceEvent
	invalidated := 0
	svc := NewService(Options{
		Store:           store,
		Classifier:      fc,
		ConfidenceFloor: 0.5,
		FrameDir:        t.TempDir(),
		Notifier:        notifierFunc(func(ev models.PresenceEvent) { notified = append(notified, ev) }),
		OnWrite:         func() { invalidated++ },
	})

	capturedAt := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	ev, err := svc.IngestFrame(context.Background(), frame, capturedAt)
	if err != nil {
		t.Fatalf("IngestFrame failed: %v", err)
	}
	if ev.ID == "" {
		t.Error("expected a generated event id")
	}
	if ev.Direction != models.DirectionIn {
		t.Errorf("direction = %q, want %q", ev.Direction, models.DirectionIn)
	}
	if ev.ImageRef == "" {
		t.Error("expected a stored frame reference")
	}

	stored, err := store.LoadEvents()
	if err != nil {
		t.Fatalf("LoadEvents failed: %v", err)
	}
	if len(stored) != 1 {
		t.Fatalf("stored %d events, want 1", len(stored))
	}
	if !stored[0].Timestamp.Equal(capturedAt) {
		t.Errorf("stored timestamp = %v, want %v", stored[0].Timestamp, capturedAt)
	}
	if len(notified) != 1 {
		t.Errorf("notifier received %d events, want 1", len(notified))
	}
	if invalidated != 1 {
		t.Errorf("write hook fired %d times, want 1", invalidated)
	}
}

type notifierFunc func(ev models.PresenceEvent)

func (f notifierFunc) NotifyEvent(ev models.PresenceEvent) { f(ev) }

func TestIngestFrameFallsBackOnLowConfidence(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	frame := testPNG(t)
	primary := &fakeClassifier{byFrame: map[string]classify.Classification{
		string(frame): {Direction: models.DirectionIn, Confidence: 0.2, RawText: "?"},
	}}
	fallback := &fakeClassifier{byFrame: map[string]classify.Classification{
		string(frame): {Direction: models.DirectionOut, Confidence: 0.75, RawText: "OUT"},
	}}

	svc := NewService(Options{
		Store:           store,
		Classifier:      primary,
		Fallback:        fallback,
		ConfidenceFloor: 0.5,
		FrameDir:        t.TempDir(),
	})

	ev, err := svc.IngestFrame(context.Background(), frame, time.Now().UTC())
	if err != nil {
		t.Fatalf("IngestFrame failed: %v", err)
	}
	if ev.Direction != models.DirectionOut {
		t.Errorf("direction = %q, want fallback reading %q", ev.Direction, models.DirectionOut)
	}
	if fallback.calls == 0 {
		t.Error("expected the fallback classifier to be consulted")
	}
}

func TestIngestFrameClassificationFailure(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	fc := &fakeClassifier{err: fmt.Errorf("service unavailable")}
	svc := NewService(Options{
		Store:           store,
		Classifier:      fc,
		ConfidenceFloor: 0.5,
		FrameDir:        t.TempDir(),
	})

	if _, err := svc.IngestFrame(context.Background(), testPNG(t), time.Now().UTC()); err == nil {
		t.Fatal("expected an error when classification fails outright")
	}
	stored, err := store.LoadEvents()
	if err != nil {
		t.Fatalf("LoadEvents failed: %v", err)
	}
	if len(stored) != 0 {
		t.Errorf("stored %d events after failed classification, want 0", len(stored))
	}
}

func TestRescanCorrectsAndIsIdempotent(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	base := time.Date(2025, 4, 1, 8, 0, 0, 0, time.UTC)

	frames := map[string][]byte{
		"a.png": []byte("frame-a"),
		"b.png": []byte("frame-b"),
		"c.png": []byte("frame-c"),
	}
	seed := []models.PresenceEvent{
		{ID: "ev-a", Timestamp: base, Direction: models.DirectionIn, Confidence: 0.9, ImageRef: "a.png"},
		{ID: "ev-b", Timestamp: base.Add(time.Hour), Direction: models.DirectionIn, Confidence: 0.6, ImageRef: "b.png"},
		{ID: "ev-c", Timestamp: base.Add(2 * time.Hour), Direction: models.DirectionOut, Confidence: 0.9, ImageRef: "c.png"},
	}
	if err := store.SaveEvents(seed); err != nil {
		t.Fatalf("failed to seed events: %v", err)
	}

	// The improved classifier flips ev-b to an exit and finds prey on ev-c.
	fc := &fakeClassifier{byFrame: map[string]classify.Classification{
		"frame-a": {Direction: models.DirectionIn, Confidence: 0.95, RawText: "IN"},
		"frame-b": {Direction: models.DirectionOut, Confidence: 0.95, RawText: "OUT"},
		"frame-c": {Direction: models.DirectionOut, Confidence: 0.95, Prey: true, RawText: "OUT PREY"},
	}}

	writes := 0
	svc := NewService(Options{
		Store:           store,
		Classifier:      fc,
		ConfidenceFloor: 0.5,
		ReadFrame: func(ref string) ([]byte, error) {
			frame, ok := frames[ref]
			if !ok {
				return nil, fmt.Errorf("no frame %s", ref)
			}
			return frame, nil
		},
		OnWrite: func() { writes++ },
	})

	result, err := svc.Rescan(context.Background(), base.Add(-time.Hour), base.Add(3*time.Hour))
	if err != nil {
		t.Fatalf("Rescan failed: %v", err)
	}
	if result.Considered != 3 {
		t.Errorf("considered = %d, want 3", result.Considered)
	}
	if result.Changed != 2 {
		t.Errorf("changed = %d, want 2", result.Changed)
	}
	if writes != 1 {
		t.Errorf("write hook fired %d times, want 1", writes)
	}

	stored, err := store.LoadEvents()
	if err != nil {
		t.Fatalf("LoadEvents failed: %v", err)
	}
	if len(stored) != 3 {
		t.Fatalf("stored %d events, want 3", len(stored))
	}
	if stored[1].ID != "ev-b" || stored[1].Direction != models.DirectionOut {
		t.Errorf("ev-b after rescan: id=%s direction=%s, want ev-b/out", stored[1].ID, stored[1].Direction)
	}
	if !stored[1].Timestamp.Equal(base.Add(time.Hour)) {
		t.Error("rescan must not move event timestamps")
	}
	if !stored[2].Prey {
		t.Error("ev-c should carry prey after rescan")
	}

	// A second pass over unchanged frames finds nothing to do and never writes.
	again, err := svc.Rescan(context.Background(), base.Add(-time.Hour), base.Add(3*time.Hour))
	if err != nil {
		t.Fatalf("second Rescan failed: %v", err)
	}
	if again.Considered != 3 || again.Changed != 0 {
		t.Errorf("second pass considered=%d changed=%d, want 3/0", again.Considered, again.Changed)
	}
	if writes != 1 {
		t.Errorf("second pass wrote to the store (hook fired %d times)", writes)
	}
}

func TestRescanSkipsUnreadableFrames(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	base := time.Date(2025, 4, 1, 8, 0, 0, 0, time.UTC)
	seed := []models.PresenceEvent{
		{ID: "ev-a", Timestamp: base, Direction: models.DirectionIn, ImageRef: "gone.png"},
		{ID: "ev-b", Timestamp: base.Add(time.Hour), Direction: models.DirectionOut},
	}
	if err := store.SaveEvents(seed); err != nil {
		t.Fatalf("failed to seed events: %v", err)
	}

	svc := NewService(Options{
		Store:           store,
		Classifier:      &fakeClassifier{},
		ConfidenceFloor: 0.5,
		ReadFrame: func(ref string) ([]byte, error) {
			return nil, fmt.Errorf("no frame %s", ref)
		},
	})

	result, err := svc.Rescan(context.Background(), base.Add(-time.Hour), base.Add(2*time.Hour))
	if err != nil {
		t.Fatalf("Rescan failed: %v", err)
	}
	// ev-b has no frame at all and is never considered; ev-a's read fails and
	// keeps its stored fields.
	if result.Considered != 1 || result.Changed != 0 {
		t.Errorf("considered=%d changed=%d, want 1/0", result.Considered, result.Changed)
	}
	stored, err := store.LoadEvents()
	if err != nil {
		t.Fatalf("LoadEvents failed: %v", err)
	}
	if stored[0].Direction != models.DirectionIn {
		t.Error("unreadable frame must leave the stored event untouched")
	}
}
