// Package classify turns captured flap-camera frames into direction classifications.
package classify

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg" // frame decode support
	_ "image/png"  // frame decode support
	"strings"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"

	"github.com/FlapTrack/flaptrack-go/models"
)

// Classification is the result of reading one frame.
type Classification struct {
	Direction  models.Direction
	Confidence float64
	Prey       bool
	RawText    string
}

// Classifier reads the direction overlay from a captured frame. Classify works
// on the configured overlay crop region; ClassifyFullImage is the fallback for
// frames where the crop read comes back invalid or below the confidence floor.
type Classifier interface {
	Classify(ctx context.Context, frame []byte, crop image.Rectangle) (*Classification, error)
	ClassifyFullImage(ctx context.Context, frame []byte) (*Classification, error)
}

// DecodeFrame decodes a camera frame. The flap camera uploads WebP; JPEG and
// PNG are accepted for older firmware.
func DecodeFrame(frame []byte) (image.Image, error) {
	if len(frame) >= 12 && string(frame[0:4]) == "RIFF" && string(frame[8:12]) == "WEBP" {
		img, err := webp.Decode(bytes.NewReader(frame))
		if err != nil {
			return nil, fmt.Errorf("failed to decode webp frame: %w", err)
		}
		return img, nil
	}

	img, _, err := image.Decode(bytes.NewReader(frame))
	if err != nil {
		return nil, fmt.Errorf("failed to decode frame: %w", err)
	}
	return img, nil
}

// EncodeRegion crops a frame to the overlay region and returns OCR-ready PNG
// bytes. Grayscale plus a contrast push makes the burned-in text legible for
// text detection.
func EncodeRegion(img image.Image, crop image.Rectangle) ([]byte, error) {
	prepared := imaging.Clone(img)
	if !crop.Empty() {
		prepared = imaging.Crop(prepared, crop)
	}
	prepared = imaging.AdjustContrast(imaging.Grayscale(prepared), 20)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, prepared, imaging.PNG); err != nil {
		return nil, fmt.Errorf("failed to encode crop region: %w", err)
	}
	return buf.Bytes(), nil
}

// directionTokens maps overlay vocabulary to directions. The camera burns
// localized tags into the frame; both spellings show up in the field.
var directionTokens = map[string]models.Direction{
	"in":      models.DirectionIn,
	"inside":  models.DirectionIn,
	"entry":   models.DirectionIn,
	"rein":    models.DirectionIn,
	"out":     models.DirectionOut,
	"outside": models.DirectionOut,
	"exit":    models.DirectionOut,
	"raus":    models.DirectionOut,
}

var preyTokens = map[string]bool{
	"prey":  true,
	"mouse": true,
	"beute": true,
}

// InterpretText parses recognized overlay text into a classification. Exact
// token matches score high; a frame whose text names no direction gets the
// invalid sentinel with zero confidence, not an error.
func InterpretText(raw string) *Classification {
	result := &Classification{
		Direction: models.DirectionInvalid,
		RawText:   strings.TrimSpace(raw),
	}

	seen := make(map[models.Direction]bool)
	for _, token := range strings.Fields(strings.ToLower(raw)) {
		token = strings.Trim(token, ".,;:!?()[]\"'")
		if dir, ok := directionTokens[token]; ok {
			seen[dir] = true
		}
		if preyTokens[token] {
			result.Prey = true
		}
	}

	// Conflicting direction tags in one frame are unreadable by definition
	if len(seen) == 1 {
		for dir := range seen {
			result.Direction = dir
		}
		result.Confidence = 0.9
	}

	return result
}
