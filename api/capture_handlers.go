package api

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/FlapTrack/flaptrack-go/analytics"
)

// Frames larger than this are rejected before classification
const maxFrameBytes = 10 << 20

// CaptureHandler accepts one camera frame as multipart upload, classifies it
// and appends the resulting event. An optional "timestamp" field (RFC 3339)
// overrides the capture time; it defaults to now.
func (s *Server) CaptureHandler(c *gin.Context) {
	fileHeader, err := c.FormFile("frame")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing frame upload"})
		return
	}
	if fileHeader.Size > maxFrameBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "Frame too large"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unreadable frame upload"})
		return
	}
	defer file.Close()

	frame, err := io.ReadAll(io.LimitReader(file, maxFrameBytes))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unreadable frame upload"})
		return
	}

	capturedAt := time.Now().UTC()
	if raw := c.PostForm("timestamp"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid timestamp, expected RFC 3339"})
			return
		}
		capturedAt = parsed.UTC()
	}

	ev, err := s.Ingest.IngestFrame(c.Request.Context(), frame, capturedAt)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, ev)
}

// RescanHandler re-classifies stored events in a date range from their frames.
func (s *Server) RescanHandler(c *gin.Context) {
	var req struct {
		From string `json:"from" binding:"required"`
		To   string `json:"to" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	splitter := analytics.NewSplitter(s.OffsetHours)
	start, end, err := splitter.RangeBounds(req.From, req.To)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := s.Ingest.Rescan(c.Request.Context(), start, end)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

// EmailSummaryHandler mails the summary of a range to the configured address.
func (s *Server) EmailSummaryHandler(c *gin.Context) {
	if s.Email == nil || s.SummaryEmailTo == "" {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Email delivery is not configured"})
		return
	}

	fromDate, toDate, err := s.parseRange(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	report, err := s.buildReport(fromDate, toDate)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if err := s.Email.SendPresenceSummary(s.SummaryEmailTo, report); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "sent", "to": s.SummaryEmailTo})
}
