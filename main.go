package main

import (
	"context"
	"image"
	"log"

	"github.com/joho/godotenv"
	"google.golang.org/api/option"

	"github.com/FlapTrack/flaptrack-go/api"
	"github.com/FlapTrack/flaptrack-go/cache"
	"github.com/FlapTrack/flaptrack-go/classify"
	"github.com/FlapTrack/flaptrack-go/config"
	"github.com/FlapTrack/flaptrack-go/email"
	"github.com/FlapTrack/flaptrack-go/ingest"
	"github.com/FlapTrack/flaptrack-go/storage"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found -- config defaults will be used")
	}

	store, err := storage.NewEventStore(storage.Config{
		SQLitePath:    config.SQLitePath,
		TursoDatabase: config.TursoDatabase,
		TursoToken:    config.TursoToken,
	})
	if err != nil {
		log.Fatalf("Failed to open event store: %v", err)
	}
	defer store.Close()
	log.Printf("Event store ready: %s", store.GetConnectionInfo())

	primary, fallback := buildClassifiers()

	reportCache := cache.NewReportCache(config.ReportCacheTTL)
	broadcaster := api.NewEventBroadcaster()
	go broadcaster.Run()

	ingestSvc := ingest.NewService(ingest.Options{
		Store:           store,
		Classifier:      primary,
		Fallback:        fallback,
		Crop:            image.Rect(config.CropX, config.CropY, config.CropX+config.CropWidth, config.CropY+config.CropHeight),
		ConfidenceFloor: config.ConfidenceFloor,
		FrameDir:        config.FrameDir,
		Notifier:        broadcaster,
		OnWrite:         reportCache.InvalidateAll,
	})

	var emailClient *email.Client
	if config.SummaryEmailTo != "" {
		emailClient, err = email.NewClient()
		if err != nil {
			log.Printf("Email delivery disabled: %v", err)
		}
	}

	server := &api.Server{
		Store:             store,
		Ingest:            ingestSvc,
		Reports:           reportCache,
		Broadcaster:       broadcaster,
		Email:             emailClient,
		OffsetHours:       config.LocalUTCOffsetHours,
		RecentEventsCap:   config.RecentEventsCap,
		JWTSecret:         config.JWTSecret,
		AdminPasswordHash: config.AdminPasswordHash,
		TokenLifetime:     config.TokenLifetime,
		SummaryEmailTo:    config.SummaryEmailTo,
	}

	r := server.NewRouter()
	log.Printf("Starting server on :%s", config.Port)
	if err := r.Run(":" + config.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}

// buildClassifiers wires the configured frame classifier chain. Cloud Vision
// reads the flap display crop; Gemini retries the whole frame when the crop
// read is unusable.
func buildClassifiers() (classify.Classifier, classify.Classifier) {
	if config.ClassifierEnabled != "vision" {
		log.Println("Frame classification disabled; capture endpoint will reject frames")
		return nil, nil
	}

	ctx := context.Background()

	var visionOpts []option.ClientOption
	if config.VisionCredentials != "" {
		visionOpts = append(visionOpts, option.WithCredentialsFile(config.VisionCredentials))
	}
	primary, err := classify.NewVisionClassifier(ctx, visionOpts...)
	if err != nil {
		log.Fatalf("Failed to initialize Cloud Vision classifier: %v", err)
	}

	var fallback classify.Classifier
	if config.GeminiAPIKey != "" {
		gc, err := classify.NewGeminiClassifier(ctx, config.GeminiAPIKey, config.GeminiModel)
		if err != nil {
			log.Printf("Gemini fallback disabled: %v", err)
		} else {
			fallback = gc
		}
	}

	return primary, fallback
}
