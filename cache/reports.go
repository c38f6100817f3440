// Package cache provides TTL caching for computed reports
package cache

import (
	"fmt"
	"sync"
	"time"

	"github.com/FlapTrack/flaptrack-go/models"
)

type cachedReport struct {
	report   *models.ReportData
	cachedAt time.Time
}

// ReportCache stores computed reports keyed by date range. Entries expire
// after the configured TTL; any event write invalidates the whole cache.
type ReportCache struct {
	mu      sync.RWMutex
	entries map[string]*cachedReport
	ttl     time.Duration
	now     func() time.Time
}

// NewReportCache creates a report cache with the given TTL. A zero or
// negative TTL disables caching entirely.
func NewReportCache(ttl time.Duration) *ReportCache {
	return &ReportCache{
		entries: make(map[string]*cachedReport),
		ttl:     ttl,
		now:     time.Now,
	}
}

func rangeKey(fromDate, toDate string) string {
	return fmt.Sprintf("%s:%s", fromDate, toDate)
}

// Get retrieves a cached report for the date range, if present and fresh.
func (rc *ReportCache) Get(fromDate, toDate string) (*models.ReportData, bool) {
	if rc.ttl <= 0 {
		return nil, false
	}

	rc.mu.RLock()
	entry, exists := rc.entries[rangeKey(fromDate, toDate)]
	rc.mu.RUnlock()

	if !exists {
		return nil, false
	}
	if rc.now().Sub(entry.cachedAt) > rc.ttl {
		rc.mu.Lock()
		delete(rc.entries, rangeKey(fromDate, toDate))
		rc.mu.Unlock()
		return nil, false
	}
	return entry.report, true
}

// Set stores a computed report for the date range.
func (rc *ReportCache) Set(fromDate, toDate string, report *models.ReportData) {
	if rc.ttl <= 0 {
		return
	}

	rc.mu.Lock()
	defer rc.mu.Unlock()
	rc.entries[rangeKey(fromDate, toDate)] = &cachedReport{
		report:   report,
		cachedAt: rc.now(),
	}
}

// InvalidateAll drops every cached report. Called after any event write so
// stale aggregates are never served.
func (rc *ReportCache) InvalidateAll() {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	rc.entries = make(map[string]*cachedReport)
}

// Len reports how many entries the cache currently holds.
func (rc *ReportCache) Len() int {
	rc.mu.RLock()
	defer rc.mu.RUnlock()
	return len(rc.entries)
}
