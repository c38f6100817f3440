// Package ingest handles frame capture ingestion and the rescan correction pass.
package ingest

import (
	"context"
	"fmt"
	"image"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/FlapTrack/flaptrack-go/classify"
	"github.com/FlapTrack/flaptrack-go/models"
	"github.com/FlapTrack/flaptrack-go/storage"
	"github.com/FlapTrack/flaptrack-go/utils"
)

// Notifier receives freshly ingested events for live feeds.
type Notifier interface {
	NotifyEvent(ev models.PresenceEvent)
}

// FrameReader loads a stored frame by its event image reference.
type FrameReader func(imageRef string) ([]byte, error)

// Service coordinates classification and storage for captured frames.
type Service struct {
	store           *storage.EventStore
	classifier      classify.Classifier
	fallback        classify.Classifier
	crop            image.Rectangle
	confidenceFloor float64
	frameDir        string
	readFrame       FrameReader
	notifier        Notifier
	onWrite         func()
}

// Options configures a Service. Fallback may be nil to disable the full-frame
// retry; Notifier and OnWrite may be nil.
type Options struct {
	Store           *storage.EventStore
	Classifier      classify.Classifier
	Fallback        classify.Classifier
	Crop            image.Rectangle
	ConfidenceFloor float64
	FrameDir        string
	ReadFrame       FrameReader
	Notifier        Notifier
	OnWrite         func()
}

// NewService creates an ingestion service.
func NewService(opts Options) *Service {
	s := &Service{
		store:           opts.Store,
		classifier:      opts.Classifier,
		fallback:        opts.Fallback,
		crop:            opts.Crop,
		confidenceFloor: opts.ConfidenceFloor,
		frameDir:        opts.FrameDir,
		readFrame:       opts.ReadFrame,
		notifier:        opts.Notifier,
		onWrite:         opts.OnWrite,
	}
	if s.readFrame == nil {
		s.readFrame = func(imageRef string) ([]byte, error) {
			return os.ReadFile(filepath.Join(s.frameDir, imageRef))
		}
	}
	return s
}

// classifyFrame runs the primary crop read and falls back to a full-frame read
// when the crop comes back invalid or below the confidence floor.
func (s *Service) classifyFrame(ctx context.Context, frame []byte) (*classify.Classification, error) {
	if s.classifier == nil {
		return nil, fmt.Errorf("no classifier configured")
	}
	primary, err := s.classifier.Classify(ctx, frame, s.crop)
	if err == nil && primary.Direction != models.DirectionInvalid && primary.Confidence >= s.confidenceFloor {
		return primary, nil
	}
	if err != nil {
		log.Printf("Primary classification failed: %v", err)
	}

	if s.fallback == nil {
		if err != nil {
			return nil, err
		}
		return primary, nil
	}

	full, fullErr := s.fallback.ClassifyFullImage(ctx, frame)
	if fullErr != nil {
		log.Printf("Fallback classification failed: %v", fullErr)
		if err != nil {
			return nil, fmt.Errorf("classification failed: %w", err)
		}
		// Keep the low-confidence primary read rather than losing the frame
		return primary, nil
	}
	if full.Direction == models.DirectionInvalid && err == nil && primary.Direction != models.DirectionInvalid {
		return primary, nil
	}
	return full, nil
}

// IngestFrame classifies one captured frame, stores the frame file and appends
// the resulting event. A frame that cannot be classified at all is logged and
// skipped; no event exists yet to correct.
func (s *Service) IngestFrame(ctx context.Context, frame []byte, capturedAt time.Time) (*models.PresenceEvent, error) {
	result, err := s.classifyFrame(ctx, frame)
	if err != nil {
		log.Printf("Skipping frame captured %s: %v", capturedAt.Format(time.RFC3339), err)
		return nil, err
	}

	id := utils.GenerateULID()
	imageRef, err := s.storeFrame(id, frame)
	if err != nil {
		return nil, err
	}

	ev := models.PresenceEvent{
		ID:         id,
		Timestamp:  capturedAt.UTC(),
		Direction:  result.Direction,
		Confidence: result.Confidence,
		Prey:       result.Prey,
		RawText:    result.RawText,
		ImageRef:   imageRef,
	}

	if err := s.store.AppendEvent(ev); err != nil {
		return nil, err
	}

	if s.notifier != nil {
		s.notifier.NotifyEvent(ev)
	}
	if s.onWrite != nil {
		s.onWrite()
	}
	return &ev, nil
}

// storeFrame writes the raw frame under the frame directory, named by event id.
func (s *Service) storeFrame(id string, frame []byte) (string, error) {
	if s.frameDir == "" {
		return "", nil
	}
	if err := os.MkdirAll(s.frameDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create frame directory: %w", err)
	}
	name := id + frameExtension(frame)
	if err := os.WriteFile(filepath.Join(s.frameDir, name), frame, 0644); err != nil {
		return "", fmt.Errorf("failed to store frame: %w", err)
	}
	return name, nil
}

func frameExtension(frame []byte) string {
	if len(frame) >= 12 && string(frame[0:4]) == "RIFF" && string(frame[8:12]) == "WEBP" {
		return ".webp"
	}
	if len(frame) >= 2 && frame[0] == 0xff && frame[1] == 0xd8 {
		return ".jpg"
	}
	return ".png"
}

// RescanResult reports what a rescan pass did.
type RescanResult struct {
	Considered int `json:"considered"`
	Changed    int `json:"changed"`
}

// Rescan re-classifies stored events in [start, end] from their stored frames
// and overwrites direction, confidence, prey and raw text in place where the
// result differs. Ids and timestamps never change; the store is written once,
// and only when at least one event changed. Running the pass twice with an
// unchanged classifier reports zero changes the second time.
func (s *Service) Rescan(ctx context.Context, start, end time.Time) (*RescanResult, error) {
	events, err := s.store.GetEventsByDateRange(start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to load events for rescan: %w", err)
	}

	result := &RescanResult{}
	var changed []models.PresenceEvent

	for _, ev := range events {
		if ev.ImageRef == "" {
			continue
		}
		result.Considered++

		frame, err := s.readFrame(ev.ImageRef)
		if err != nil {
			log.Printf("Rescan: failed to read frame %s for event %s: %v", ev.ImageRef, ev.ID, err)
			continue
		}

		reading, err := s.classifyFrame(ctx, frame)
		if err != nil {
			log.Printf("Rescan: classification failed for event %s, keeping stored fields: %v", ev.ID, err)
			continue
		}

		if reading.Direction == ev.Direction && reading.Prey == ev.Prey {
			continue
		}

		corrected := ev
		corrected.Direction = reading.Direction
		corrected.Confidence = reading.Confidence
		corrected.Prey = reading.Prey
		corrected.RawText = reading.RawText
		changed = append(changed, corrected)
	}

	if len(changed) > 0 {
		if err := s.store.ReplaceEvents(changed); err != nil {
			return nil, fmt.Errorf("failed to persist rescan corrections: %w", err)
		}
		if s.onWrite != nil {
			s.onWrite()
		}
	}

	result.Changed = len(changed)
	return result, nil
}
