package classify

import (
	"context"
	"fmt"
	"image"
	"strings"

	"google.golang.org/genai"

	"github.com/FlapTrack/flaptrack-go/models"
)

const geminiPrompt = `This frame comes from a camera mounted at a cat flap.
Decide whether the cat is entering or leaving, and whether it carries prey.
Answer with exactly one line containing IN, OUT or UNKNOWN, followed by the
word PREY only if the cat visibly carries prey. No other text.`

// GeminiClassifier asks a Gemini vision model to read frames whose overlay
// text could not be recognized.
type GeminiClassifier struct {
	client *genai.Client
	model  string
}

// NewGeminiClassifier creates the Gemini-backed classifier.
func NewGeminiClassifier(ctx context.Context, apiKey, model string) (*GeminiClassifier, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &GeminiClassifier{client: client, model: model}, nil
}

// Classify sends the overlay crop region to the model.
func (g *GeminiClassifier) Classify(ctx context.Context, frame []byte, crop image.Rectangle) (*Classification, error) {
	img, err := DecodeFrame(frame)
	if err != nil {
		return nil, err
	}
	region, err := EncodeRegion(img, crop)
	if err != nil {
		return nil, err
	}
	return g.generate(ctx, region)
}

// ClassifyFullImage sends the whole frame to the model.
func (g *GeminiClassifier) ClassifyFullImage(ctx context.Context, frame []byte) (*Classification, error) {
	img, err := DecodeFrame(frame)
	if err != nil {
		return nil, err
	}
	whole, err := EncodeRegion(img, image.Rectangle{})
	if err != nil {
		return nil, err
	}
	return g.generate(ctx, whole)
}

func (g *GeminiClassifier) generate(ctx context.Context, png []byte) (*Classification, error) {
	content := genai.NewContentFromParts([]*genai.Part{
		genai.NewPartFromBytes(png, "image/png"),
		genai.NewPartFromText(geminiPrompt),
	}, genai.RoleUser)

	config := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(float32(0.0)),
		MaxOutputTokens: int32(10),
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, []*genai.Content{content}, config)
	if err != nil {
		return nil, fmt.Errorf("failed to generate classification: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	result := InterpretText(text)
	if result.Direction != models.DirectionInvalid {
		// Model answers carry no OCR confidence; score below exact overlay reads
		result.Confidence = 0.75
	}
	return result, nil
}
