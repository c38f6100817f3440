// Package analytics provides presence period reconstruction and aggregation.
package analytics

import (
	"fmt"
	"time"

	"github.com/FlapTrack/flaptrack-go/utils"
)

// Splitter apportions time intervals across calendar buckets. All bucket
// boundaries are computed in one fixed UTC offset, not a DST-aware zone.
type Splitter struct {
	offset time.Duration
}

// NewSplitter creates a splitter for the given fixed local offset in hours.
func NewSplitter(offsetHours int) *Splitter {
	return &Splitter{offset: time.Duration(offsetHours) * time.Hour}
}

// toLocal shifts an instant so its UTC calendar fields read as local fields.
func (s *Splitter) toLocal(t time.Time) time.Time {
	return t.UTC().Add(s.offset)
}

// fromLocal converts a shifted instant back to the absolute instant.
func (s *Splitter) fromLocal(t time.Time) time.Time {
	return t.Add(-s.offset)
}

// DayKey returns the local calendar day containing t.
func (s *Splitter) DayKey(t time.Time) string {
	return utils.FormatDayKey(s.toLocal(t))
}

// MonthKey returns the local calendar month containing t.
func (s *Splitter) MonthKey(t time.Time) string {
	return utils.FormatMonthKey(s.toLocal(t))
}

// HourOfDay returns the local hour of day (0-23) containing t.
func (s *Splitter) HourOfDay(t time.Time) int {
	return s.toLocal(t).Hour()
}

// MonthOfYear returns the local calendar month number (1-12) containing t.
func (s *Splitter) MonthOfYear(t time.Time) int {
	return int(s.toLocal(t).Month())
}

// RangeBounds converts an inclusive local date range to absolute instants,
// from local midnight of fromDate through 23:59:59.999 of toDate.
func (s *Splitter) RangeBounds(fromDate, toDate string) (time.Time, time.Time, error) {
	from, err := utils.ParseDayKey(fromDate)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid from date: %w", err)
	}
	to, err := utils.ParseDayKey(toDate)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid to date: %w", err)
	}
	if to.Before(from) {
		return time.Time{}, time.Time{}, fmt.Errorf("date range inverted: %s after %s", fromDate, toDate)
	}

	start := s.fromLocal(from)
	end := s.fromLocal(to.AddDate(0, 0, 1).Add(-time.Millisecond))
	return start, end, nil
}

// DayShare is one day bucket's slice of a split interval.
type DayShare struct {
	Day   string
	Hours float64
}

// HourShare is one hour bucket's slice of a split interval, keyed by local
// hour of day.
type HourShare struct {
	Hour  int
	Hours float64
}

// MonthShare is one month bucket's slice of a split interval.
type MonthShare struct {
	Month       string
	MonthOfYear int
	Hours       float64
}

// SplitByDay walks day buckets from the one containing start to the one
// containing end and returns the overlap hours per local day. An interval with
// start == end emits no buckets.
func (s *Splitter) SplitByDay(start, end time.Time) []DayShare {
	var shares []DayShare

	localStart := s.toLocal(start)
	localEnd := s.toLocal(end)
	if !localStart.Before(localEnd) {
		return shares
	}

	bucket := time.Date(localStart.Year(), localStart.Month(), localStart.Day(), 0, 0, 0, 0, time.UTC)
	for bucket.Before(localEnd) {
		next := bucket.AddDate(0, 0, 1)
		overlapStart := maxTime(localStart, bucket)
		overlapEnd := minTime(localEnd, next)
		if overlapStart.Before(overlapEnd) {
			shares = append(shares, DayShare{
				Day:   utils.FormatDayKey(bucket),
				Hours: overlapEnd.Sub(overlapStart).Hours(),
			})
		}
		bucket = next
	}

	return shares
}

// SplitByHour walks hour buckets across the interval and returns overlap hours
// keyed by local hour of day. Intervals longer than a day wrap and accumulate
// in the caller's table.
func (s *Splitter) SplitByHour(start, end time.Time) []HourShare {
	var shares []HourShare

	localStart := s.toLocal(start)
	localEnd := s.toLocal(end)
	if !localStart.Before(localEnd) {
		return shares
	}

	bucket := localStart.Truncate(time.Hour)
	for bucket.Before(localEnd) {
		next := bucket.Add(time.Hour)
		overlapStart := maxTime(localStart, bucket)
		overlapEnd := minTime(localEnd, next)
		if overlapStart.Before(overlapEnd) {
			shares = append(shares, HourShare{
				Hour:  bucket.Hour(),
				Hours: overlapEnd.Sub(overlapStart).Hours(),
			})
		}
		bucket = next
	}

	return shares
}

// SplitByMonth walks month buckets across the interval and returns overlap
// hours per local calendar month.
func (s *Splitter) SplitByMonth(start, end time.Time) []MonthShare {
	var shares []MonthShare

	localStart := s.toLocal(start)
	localEnd := s.toLocal(end)
	if !localStart.Before(localEnd) {
		return shares
	}

	bucket := time.Date(localStart.Year(), localStart.Month(), 1, 0, 0, 0, 0, time.UTC)
	for bucket.Before(localEnd) {
		next := bucket.AddDate(0, 1, 0)
		overlapStart := maxTime(localStart, bucket)
		overlapEnd := minTime(localEnd, next)
		if overlapStart.Before(overlapEnd) {
			shares = append(shares, MonthShare{
				Month:       utils.FormatMonthKey(bucket),
				MonthOfYear: int(bucket.Month()),
				Hours:       overlapEnd.Sub(overlapStart).Hours(),
			})
		}
		bucket = next
	}

	return shares
}

// DayKeysInRange enumerates every local day key in the inclusive range.
func DayKeysInRange(fromDate, toDate string) ([]string, error) {
	from, err := utils.ParseDayKey(fromDate)
	if err != nil {
		return nil, fmt.Errorf("invalid from date: %w", err)
	}
	to, err := utils.ParseDayKey(toDate)
	if err != nil {
		return nil, fmt.Errorf("invalid to date: %w", err)
	}
	if to.Before(from) {
		return nil, fmt.Errorf("date range inverted: %s after %s", fromDate, toDate)
	}

	var keys []string
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		keys = append(keys, utils.FormatDayKey(d))
	}
	return keys, nil
}

// MonthKeysInRange enumerates every local month key touched by the inclusive
// date range.
func MonthKeysInRange(fromDate, toDate string) ([]string, error) {
	from, err := utils.ParseDayKey(fromDate)
	if err != nil {
		return nil, fmt.Errorf("invalid from date: %w", err)
	}
	to, err := utils.ParseDayKey(toDate)
	if err != nil {
		return nil, fmt.Errorf("invalid to date: %w", err)
	}
	if to.Before(from) {
		return nil, fmt.Errorf("date range inverted: %s after %s", fromDate, toDate)
	}

	var keys []string
	cursor := time.Date(from.Year(), from.Month(), 1, 0, 0, 0, 0, time.UTC)
	last := time.Date(to.Year(), to.Month(), 1, 0, 0, 0, 0, time.UTC)
	for !cursor.After(last) {
		keys = append(keys, utils.FormatMonthKey(cursor))
		cursor = cursor.AddDate(0, 1, 0)
	}
	return keys, nil
}

func maxTime(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

func minTime(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}
