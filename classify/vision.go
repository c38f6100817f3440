package classify

import (
	"bytes"
	"context"
	"fmt"
	"image"

	vision "cloud.google.com/go/vision/apiv1"
	"google.golang.org/api/option"
)

// VisionClassifier reads the flap overlay with Google Cloud Vision text
// detection. Credentials come from the ambient GOOGLE_APPLICATION_CREDENTIALS
// environment unless a credentials file is given explicitly.
type VisionClassifier struct {
	client *vision.ImageAnnotatorClient
}

// NewVisionClassifier creates the Vision-backed classifier.
func NewVisionClassifier(ctx context.Context, opts ...option.ClientOption) (*VisionClassifier, error) {
	client, err := vision.NewImageAnnotatorClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create vision client: %w", err)
	}
	return &VisionClassifier{client: client}, nil
}

// Classify runs text detection on the overlay crop region.
func (v *VisionClassifier) Classify(ctx context.Context, frame []byte, crop image.Rectangle) (*Classification, error) {
	img, err := DecodeFrame(frame)
	if err != nil {
		return nil, err
	}
	region, err := EncodeRegion(img, crop)
	if err != nil {
		return nil, err
	}
	return v.detect(ctx, region)
}

// ClassifyFullImage runs text detection on the whole frame, the fallback for
// crops that read invalid or low-confidence.
func (v *VisionClassifier) ClassifyFullImage(ctx context.Context, frame []byte) (*Classification, error) {
	img, err := DecodeFrame(frame)
	if err != nil {
		return nil, err
	}
	whole, err := EncodeRegion(img, image.Rectangle{})
	if err != nil {
		return nil, err
	}
	return v.detect(ctx, whole)
}

func (v *VisionClassifier) detect(ctx context.Context, png []byte) (*Classification, error) {
	img, err := vision.NewImageFromReader(bytes.NewReader(png))
	if err != nil {
		return nil, fmt.Errorf("failed to build vision image: %w", err)
	}

	annotations, err := v.client.DetectTexts(ctx, img, nil, 10)
	if err != nil {
		return nil, fmt.Errorf("text detection failed: %w", err)
	}
	if len(annotations) == 0 {
		return InterpretText(""), nil
	}

	// The first annotation carries the full recognized text block
	return InterpretText(annotations[0].Description), nil
}

// Close releases the underlying API client.
func (v *VisionClassifier) Close() error {
	return v.client.Close()
}
