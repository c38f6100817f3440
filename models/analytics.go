// Package models defines aggregate table structures for presence reporting.
package models

// DailyStat is one calendar day in the fixed local offset. After gap filling
// the three hour fields sum to 24.0 within a small float tolerance.
type DailyStat struct {
	Date         string  `json:"date"` // YYYY-MM-DD, local
	HoursInside  float64 `json:"hoursInside"`
	HoursOutside float64 `json:"hoursOutside"`
	HoursUnknown float64 `json:"hoursUnknown"`
	Entries      int     `json:"entries"`
	Exits        int     `json:"exits"`
}

// HourOfDayStat sums presence by local hour of day (0-23) across the whole range.
type HourOfDayStat struct {
	Hour         int     `json:"hour"`
	HoursInside  float64 `json:"hoursInside"`
	HoursOutside float64 `json:"hoursOutside"`
	HoursUnknown float64 `json:"hoursUnknown"`
	Entries      int     `json:"entries"`
	Exits        int     `json:"exits"`
}

// MonthOfYearStat sums presence by local calendar month (1-12) across the
// whole range, the seasonal view.
type MonthOfYearStat struct {
	Month        int     `json:"month"`
	HoursInside  float64 `json:"hoursInside"`
	HoursOutside float64 `json:"hoursOutside"`
	HoursUnknown float64 `json:"hoursUnknown"`
	Entries      int     `json:"entries"`
	Exits        int     `json:"exits"`
}

// MonthlyStat is one YYYY-MM bucket of the monthly time series. It is built by
// summing DailyStat rows, so it reconciles exactly with the daily table.
type MonthlyStat struct {
	Month        string  `json:"month"` // YYYY-MM, local
	HoursInside  float64 `json:"hoursInside"`
	HoursOutside float64 `json:"hoursOutside"`
	HoursUnknown float64 `json:"hoursUnknown"`
}

// MonthlyActivity counts entries and exits per YYYY-MM bucket.
type MonthlyActivity struct {
	Month   string `json:"month"`
	Entries int    `json:"entries"`
	Exits   int    `json:"exits"`
}

// MonthlyPreyCount counts prey observations per YYYY-MM bucket, computed over
// all events including those with an invalid direction.
type MonthlyPreyCount struct {
	Month string `json:"month"`
	Count int    `json:"count"`
}

// ReportData is the single aggregate structure handed to renderers. Totals are
// summed from the gap-filled daily table, never recomputed from periods.
type ReportData struct {
	FromDate string `json:"fromDate"` // YYYY-MM-DD, local
	ToDate   string `json:"toDate"`

	// Most-recent-first, capped for display
	AllEvents []PresenceEvent `json:"allEvents"`
	Periods   []Period        `json:"periods"`

	TotalTimeInside  float64 `json:"totalTimeInside"`
	TotalTimeOutside float64 `json:"totalTimeOutside"`
	TotalTimeUnknown float64 `json:"totalTimeUnknown"`
	TotalEntries     int     `json:"totalEntries"`
	TotalExits       int     `json:"totalExits"`

	DailyStats        []DailyStat        `json:"dailyStats"`
	HourlyStats       []HourOfDayStat    `json:"hourlyStats"`       // always 24 rows
	MonthOfYearStats  []MonthOfYearStat  `json:"monthOfYearStats"`  // always 12 rows
	MonthlyTimeSeries []MonthlyStat      `json:"monthlyTimeSeries"` // every YYYY-MM in range
	MonthlyActivity   []MonthlyActivity  `json:"monthlyActivity"`
	MonthlyPreyCounts []MonthlyPreyCount `json:"monthlyPreyCounts"`
}
