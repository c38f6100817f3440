package analytics

import (
	"github.com/FlapTrack/flaptrack-go/models"
	"github.com/FlapTrack/flaptrack-go/utils"
)

// gapFillEpsilon is the float tolerance below a full 24h day before the
// shortfall is assigned to unknown time.
const gapFillEpsilon = 0.01

// ComputeDailyStats sums period contributions into one row per local day in
// the range, counts entries/exits from valid events, then gap-fills so every
// day totals exactly 24h. Uncovered time always defaults to unknown, never to
// inside or outside.
func ComputeDailyStats(periods []models.Period, validEvents []models.PresenceEvent, dayKeys []string, s *Splitter) []models.DailyStat {
	rows := make(map[string]*models.DailyStat, len(dayKeys))
	for _, day := range dayKeys {
		rows[day] = &models.DailyStat{Date: day}
	}

	for _, p := range periods {
		for _, share := range s.SplitByDay(p.Start, p.End) {
			row, ok := rows[share.Day]
			if !ok {
				continue
			}
			switch p.State {
			case models.StateInside:
				row.HoursInside += share.Hours
			case models.StateOutside:
				row.HoursOutside += share.Hours
			default:
				row.HoursUnknown += share.Hours
			}
		}
	}

	for _, ev := range validEvents {
		row, ok := rows[s.DayKey(ev.Timestamp)]
		if !ok {
			continue
		}
		if ev.Direction == models.DirectionIn {
			row.Entries++
		} else {
			row.Exits++
		}
	}

	result := make([]models.DailyStat, 0, len(dayKeys))
	for _, day := range dayKeys {
		row := rows[day]
		covered := row.HoursInside + row.HoursOutside + row.HoursUnknown
		if covered < 24-gapFillEpsilon {
			row.HoursUnknown += 24 - covered
		}
		result = append(result, *row)
	}
	return result
}

// ComputeHourOfDayStats sums period contributions and event counts by local
// hour of day across the whole range. All 24 buckets are always present.
func ComputeHourOfDayStats(periods []models.Period, validEvents []models.PresenceEvent, s *Splitter) []models.HourOfDayStat {
	rows := make([]models.HourOfDayStat, 24)
	for h := range rows {
		rows[h].Hour = h
	}

	for _, p := range periods {
		for _, share := range s.SplitByHour(p.Start, p.End) {
			switch p.State {
			case models.StateInside:
				rows[share.Hour].HoursInside += share.Hours
			case models.StateOutside:
				rows[share.Hour].HoursOutside += share.Hours
			default:
				rows[share.Hour].HoursUnknown += share.Hours
			}
		}
	}

	for _, ev := range validEvents {
		hour := s.HourOfDay(ev.Timestamp)
		if ev.Direction == models.DirectionIn {
			rows[hour].Entries++
		} else {
			rows[hour].Exits++
		}
	}

	return rows
}

// ComputeMonthOfYearStats sums period contributions and event counts by local
// calendar month (1-12) across the whole range, the seasonal view. All 12
// buckets are always present.
func ComputeMonthOfYearStats(periods []models.Period, validEvents []models.PresenceEvent, s *Splitter) []models.MonthOfYearStat {
	rows := make([]models.MonthOfYearStat, 12)
	for m := range rows {
		rows[m].Month = m + 1
	}

	for _, p := range periods {
		for _, share := range s.SplitByMonth(p.Start, p.End) {
			idx := share.MonthOfYear - 1
			switch p.State {
			case models.StateInside:
				rows[idx].HoursInside += share.Hours
			case models.StateOutside:
				rows[idx].HoursOutside += share.Hours
			default:
				rows[idx].HoursUnknown += share.Hours
			}
		}
	}

	for _, ev := range validEvents {
		idx := s.MonthOfYear(ev.Timestamp) - 1
		if ev.Direction == models.DirectionIn {
			rows[idx].Entries++
		} else {
			rows[idx].Exits++
		}
	}

	return rows
}

// ComputeMonthlyTimeSeries folds daily rows into YYYY-MM buckets. Summing the
// gap-filled daily table (instead of re-splitting periods) guarantees the
// series reconciles exactly with the daily stats and avoids double
// apportionment drift.
func ComputeMonthlyTimeSeries(daily []models.DailyStat, monthKeys []string) []models.MonthlyStat {
	rows := make(map[string]*models.MonthlyStat, len(monthKeys))
	for _, month := range monthKeys {
		rows[month] = &models.MonthlyStat{Month: month}
	}

	for _, day := range daily {
		row, ok := rows[utils.MonthKeyOfDayKey(day.Date)]
		if !ok {
			continue
		}
		row.HoursInside += day.HoursInside
		row.HoursOutside += day.HoursOutside
		row.HoursUnknown += day.HoursUnknown
	}

	result := make([]models.MonthlyStat, 0, len(monthKeys))
	for _, month := range monthKeys {
		result = append(result, *rows[month])
	}
	return result
}

// ComputeMonthlyActivity counts entries and exits per YYYY-MM bucket from the
// valid events only.
func ComputeMonthlyActivity(validEvents []models.PresenceEvent, monthKeys []string, s *Splitter) []models.MonthlyActivity {
	rows := make(map[string]*models.MonthlyActivity, len(monthKeys))
	for _, month := range monthKeys {
		rows[month] = &models.MonthlyActivity{Month: month}
	}

	for _, ev := range validEvents {
		row, ok := rows[s.MonthKey(ev.Timestamp)]
		if !ok {
			continue
		}
		if ev.Direction == models.DirectionIn {
			row.Entries++
		} else {
			row.Exits++
		}
	}

	result := make([]models.MonthlyActivity, 0, len(monthKeys))
	for _, month := range monthKeys {
		result = append(result, *rows[month])
	}
	return result
}

// ComputeMonthlyPreyCounts counts prey observations per YYYY-MM bucket over
// all events; an unreadable direction can still carry a valid prey sighting.
func ComputeMonthlyPreyCounts(allEvents []models.PresenceEvent, monthKeys []string, s *Splitter) []models.MonthlyPreyCount {
	rows := make(map[string]*models.MonthlyPreyCount, len(monthKeys))
	for _, month := range monthKeys {
		rows[month] = &models.MonthlyPreyCount{Month: month}
	}

	for _, ev := range allEvents {
		if !ev.Prey {
			continue
		}
		row, ok := rows[s.MonthKey(ev.Timestamp)]
		if !ok {
			continue
		}
		row.Count++
	}

	result := make([]models.MonthlyPreyCount, 0, len(monthKeys))
	for _, month := range monthKeys {
		result = append(result, *rows[month])
	}
	return result
}
