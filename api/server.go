// Package api provides HTTP handlers and middleware.
package api

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/FlapTrack/flaptrack-go/cache"
	"github.com/FlapTrack/flaptrack-go/email"
	"github.com/FlapTrack/flaptrack-go/ingest"
	"github.com/FlapTrack/flaptrack-go/storage"
)

// Server wires the stores and services used by the HTTP handlers.
type Server struct {
	Store             *storage.EventStore
	Ingest            *ingest.Service
	Reports           *cache.ReportCache
	Broadcaster       *EventBroadcaster
	Email             *email.Client
	OffsetHours       int
	RecentEventsCap   int
	JWTSecret         string
	AdminPasswordHash string
	TokenLifetime     time.Duration
	SummaryEmailTo    string
}

// NewRouter builds the gin engine with middleware and all routes.
func (s *Server) NewRouter() *gin.Engine {
	r := gin.New()
	r.Use(FilteredLogger(), gin.Recovery())
	r.SetTrustedProxies([]string{"127.0.0.1", "::1"})

	r.Use(cors.New(cors.Config{
		AllowOrigins: []string{
			"http://localhost:3000",
			"http://127.0.0.1:3000",
			"http://[::1]:3000",
		},
		AllowMethods: []string{
			"GET", "POST", "OPTIONS",
		},
		AllowHeaders: []string{
			"Origin", "Content-Type", "Accept", "Authorization",
		},
		AllowCredentials: true,
	}))

	r.GET("/api/health", s.HealthHandler)
	r.POST("/api/auth/login", s.LoginHandler)

	r.GET("/api/report", s.ReportHandler)
	r.GET("/api/report/html", s.ReportHTMLHandler)
	r.GET("/api/charts/daily.png", s.DailyChartHandler)
	r.GET("/api/charts/hourly.png", s.HourlyChartHandler)
	r.GET("/api/events", s.EventsHandler)
	r.GET("/api/ws", s.WebSocketHandler)

	protected := r.Group("/api", s.AuthMiddleware())
	{
		protected.POST("/capture", s.CaptureHandler)
		protected.POST("/rescan", s.RescanHandler)
		protected.POST("/email/summary", s.EmailSummaryHandler)
	}

	return r
}

// HealthHandler reports liveness and the active store backend.
func (s *Server) HealthHandler(c *gin.Context) {
	c.JSON(200, gin.H{
		"status":  "ok",
		"storage": s.Store.GetConnectionInfo(),
	})
}
