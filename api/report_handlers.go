package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/FlapTrack/flaptrack-go/analytics"
	"github.com/FlapTrack/flaptrack-go/charts"
	"github.com/FlapTrack/flaptrack-go/html"
	"github.com/FlapTrack/flaptrack-go/models"
	"github.com/FlapTrack/flaptrack-go/utils"
)

// Default report span when no range is given
const defaultReportDays = 30

// parseRange reads from/to day keys off the query string, defaulting to the
// last 30 local days ending today.
func (s *Server) parseRange(c *gin.Context) (string, string, error) {
	localNow := time.Now().UTC().Add(time.Duration(s.OffsetHours) * time.Hour)

	toDate := c.Query("to")
	if toDate == "" {
		toDate = utils.FormatDayKey(localNow)
	}
	fromDate := c.Query("from")
	if fromDate == "" {
		toDay, err := utils.ParseDayKey(toDate)
		if err != nil {
			return "", "", fmt.Errorf("invalid to date %q: %w", toDate, err)
		}
		fromDate = utils.FormatDayKey(toDay.AddDate(0, 0, -(defaultReportDays - 1)))
	}

	from, err := utils.ParseDayKey(fromDate)
	if err != nil {
		return "", "", fmt.Errorf("invalid from date %q: %w", fromDate, err)
	}
	to, err := utils.ParseDayKey(toDate)
	if err != nil {
		return "", "", fmt.Errorf("invalid to date %q: %w", toDate, err)
	}
	if to.Before(from) {
		return "", "", fmt.Errorf("to date %s precedes from date %s", toDate, fromDate)
	}
	return fromDate, toDate, nil
}

// buildReport computes (or retrieves from cache) the report for a range.
func (s *Server) buildReport(fromDate, toDate string) (*models.ReportData, error) {
	if report, ok := s.Reports.Get(fromDate, toDate); ok {
		return report, nil
	}

	splitter := analytics.NewSplitter(s.OffsetHours)
	start, end, err := splitter.RangeBounds(fromDate, toDate)
	if err != nil {
		return nil, err
	}

	events, err := s.Store.GetEventsByDateRange(start, end)
	if err != nil {
		return nil, err
	}

	report, err := analytics.ComputeReportData(events, fromDate, toDate, analytics.ReportOptions{
		OffsetHours:     s.OffsetHours,
		RecentEventsCap: s.RecentEventsCap,
	})
	if err != nil {
		return nil, err
	}

	s.Reports.Set(fromDate, toDate, report)
	return report, nil
}

// ReportHandler serves the full report as JSON.
func (s *Server) ReportHandler(c *gin.Context) {
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
	c.JSON(http.StatusOK, report)
}

// ReportHTMLHandler serves the rendered report page.
func (s *Server) ReportHTMLHandler(c *gin.Context) {
	fromDate, toDate, err := s.parseRange(c)
	if err != nil {
		c.String(http.StatusBadRequest, "invalid range: %v", err)
		return
	}

	report, err := s.buildReport(fromDate, toDate)
	if err != nil {
		c.String(http.StatusInternalServerError, "report failed: %v", err)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html.NewGenerator(report).Render()))
}

// DailyChartHandler renders the stacked daily bars as PNG.
func (s *Server) DailyChartHandler(c *gin.Context) {
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

	png, err := charts.RenderDailyChart(report.DailyStats)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}

// HourlyChartHandler renders the hour-of-day profile as PNG.
func (s *Server) HourlyChartHandler(c *gin.Context) {
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

	png, err := charts.RenderHourlyChart(report.HourlyStats)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}

// EventsHandler lists raw events for a range, oldest first.
func (s *Server) EventsHandler(c *gin.Context) {
	fromDate, toDate, err := s.parseRange(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	splitter := analytics.NewSplitter(s.OffsetHours)
	start, end, err := splitter.RangeBounds(fromDate, toDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	events, err := s.Store.GetEventsByDateRange(start, end)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"from":   fromDate,
		"to":     toDate,
		"count":  len(events),
		"events": events,
	})
}
