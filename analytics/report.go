package analytics

import (
	"fmt"

	"github.com/FlapTrack/flaptrack-go/models"
)

// ReportOptions carries the configuration the assembler threads into the
// splitter and aggregators.
type ReportOptions struct {
	// Fixed local UTC offset in hours for all calendar computation
	OffsetHours int
	// Cap on events echoed back for display; <= 0 disables the cap
	RecentEventsCap int
}

// ComputeReportData folds an ordered event snapshot for the inclusive local
// date range [fromDate, toDate] into one consistent aggregate structure.
// Grand totals are summed from the gap-filled daily table, the single source
// of truth, never recomputed independently from periods.
func ComputeReportData(events []models.PresenceEvent, fromDate, toDate string, opts ReportOptions) (*models.ReportData, error) {
	dayKeys, err := DayKeysInRange(fromDate, toDate)
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate days: %w", err)
	}
	monthKeys, err := MonthKeysInRange(fromDate, toDate)
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate months: %w", err)
	}

	splitter := NewSplitter(opts.OffsetHours)
	validEvents := FilterValid(events)
	periods := BuildPeriods(validEvents)

	daily := ComputeDailyStats(periods, validEvents, dayKeys, splitter)

	report := &models.ReportData{
		FromDate:          fromDate,
		ToDate:            toDate,
		AllEvents:         recentFirst(events, opts.RecentEventsCap),
		Periods:           periods,
		DailyStats:        daily,
		HourlyStats:       ComputeHourOfDayStats(periods, validEvents, splitter),
		MonthOfYearStats:  ComputeMonthOfYearStats(periods, validEvents, splitter),
		MonthlyTimeSeries: ComputeMonthlyTimeSeries(daily, monthKeys),
		MonthlyActivity:   ComputeMonthlyActivity(validEvents, monthKeys, splitter),
		MonthlyPreyCounts: ComputeMonthlyPreyCounts(events, monthKeys, splitter),
	}

	for _, day := range daily {
		report.TotalTimeInside += day.HoursInside
		report.TotalTimeOutside += day.HoursOutside
		report.TotalTimeUnknown += day.HoursUnknown
		report.TotalEntries += day.Entries
		report.TotalExits += day.Exits
	}

	return report, nil
}

// recentFirst returns a reversed copy of the time-ascending event list, capped
// for display when limit > 0.
func recentFirst(events []models.PresenceEvent, limit int) []models.PresenceEvent {
	reversed := make([]models.PresenceEvent, 0, len(events))
	for i := len(events) - 1; i >= 0; i-- {
		reversed = append(reversed, events[i])
	}
	if limit > 0 && len(reversed) > limit {
		reversed = reversed[:limit]
	}
	return reversed
}
