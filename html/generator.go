// Package html renders presence reports as self-contained HTML pages
package html

import (
	"fmt"
	"html"
	"strings"

	"github.com/FlapTrack/flaptrack-go/models"
)

var monthNames = [12]string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

// Generator renders a computed report into one HTML document.
type Generator struct {
	report *models.ReportData
}

// NewGenerator creates an HTML generator for the report.
func NewGenerator(report *models.ReportData) *Generator {
	return &Generator{report: report}
}

// Render produces the full report page.
func (g *Generator) Render() string {
	var page strings.Builder

	page.WriteString("<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n")
	page.WriteString(`<meta charset="utf-8">` + "\n")
	page.WriteString(fmt.Sprintf("<title>Presence Report %s to %s</title>\n", g.report.FromDate, g.report.ToDate))
	page.WriteString("<style>\n" + pageCSS + "</style>\n")
	page.WriteString("</head>\n<body>\n")

	page.WriteString(g.renderSummary())
	page.WriteString(g.renderCharts())
	page.WriteString(g.renderDailyTable())
	page.WriteString(g.renderHourlyTable())
	page.WriteString(g.renderMonthOfYearTable())
	page.WriteString(g.renderMonthlyTables())
	page.WriteString(g.renderRecentEvents())

	page.WriteString("</body>\n</html>\n")
	return page.String()
}

func (g *Generator) renderSummary() string {
	r := g.report
	var b strings.Builder

	b.WriteString(fmt.Sprintf("<h1>Presence Report %s to %s</h1>\n", r.FromDate, r.ToDate))
	b.WriteString(`<section class="summary">` + "\n")
	b.WriteString(summaryCard("Time inside", formatHours(r.TotalTimeInside)))
	b.WriteString(summaryCard("Time outside", formatHours(r.TotalTimeOutside)))
	b.WriteString(summaryCard("Time unknown", formatHours(r.TotalTimeUnknown)))
	b.WriteString(summaryCard("Entries", fmt.Sprintf("%d", r.TotalEntries)))
	b.WriteString(summaryCard("Exits", fmt.Sprintf("%d", r.TotalExits)))
	b.WriteString("</section>\n")
	return b.String()
}

func summaryCard(label, value string) string {
	return fmt.Sprintf(`<div class="card"><span class="value">%s</span><span class="label">%s</span></div>`+"\n",
		html.EscapeString(value), html.EscapeString(label))
}

func (g *Generator) renderCharts() string {
	var b strings.Builder
	b.WriteString("<h2>Daily presence</h2>\n")
	b.WriteString(fmt.Sprintf(`<img class="chart" src="/api/charts/daily.png?from=%s&amp;to=%s" alt="Daily presence chart">`+"\n",
		g.report.FromDate, g.report.ToDate))
	b.WriteString("<h2>Hour of day profile</h2>\n")
	b.WriteString(fmt.Sprintf(`<img class="chart" src="/api/charts/hourly.png?from=%s&amp;to=%s" alt="Hour of day chart">`+"\n",
		g.report.FromDate, g.report.ToDate))
	return b.String()
}

func (g *Generator) renderDailyTable() string {
	var b strings.Builder
	b.WriteString("<h2>Daily breakdown</h2>\n")
	b.WriteString("<table>\n<tr><th>Date</th><th>Inside</th><th>Outside</th><th>Unknown</th><th>Entries</th><th>Exits</th></tr>\n")
	for _, row := range g.report.DailyStats {
		b.WriteString(fmt.Sprintf("<tr><td>%s</td><td>%s</td><td>%s</td><td>%s</td><td>%d</td><td>%d</td></tr>\n",
			row.Date, formatHours(row.HoursInside), formatHours(row.HoursOutside),
			formatHours(row.HoursUnknown), row.Entries, row.Exits))
	}
	b.WriteString("</table>\n")
	return b.String()
}

func (g *Generator) renderHourlyTable() string {
	var b strings.Builder
	b.WriteString("<h2>Hour of day</h2>\n")
	b.WriteString("<table>\n<tr><th>Hour</th><th>Inside</th><th>Outside</th><th>Unknown</th></tr>\n")
	for _, row := range g.report.HourlyStats {
		b.WriteString(fmt.Sprintf("<tr><td>%02d:00</td><td>%s</td><td>%s</td><td>%s</td></tr>\n",
			row.Hour, formatHours(row.HoursInside), formatHours(row.HoursOutside), formatHours(row.HoursUnknown)))
	}
	b.WriteString("</table>\n")
	return b.String()
}

func (g *Generator) renderMonthOfYearTable() string {
	var b strings.Builder
	b.WriteString("<h2>Month of year</h2>\n")
	b.WriteString("<table>\n<tr><th>Month</th><th>Inside</th><th>Outside</th><th>Unknown</th></tr>\n")
	for _, row := range g.report.MonthOfYearStats {
		name := ""
		if row.Month >= 1 && row.Month <= 12 {
			name = monthNames[row.Month-1]
		}
		b.WriteString(fmt.Sprintf("<tr><td>%s</td><td>%s</td><td>%s</td><td>%s</td></tr>\n",
			name, formatHours(row.HoursInside), formatHours(row.HoursOutside), formatHours(row.HoursUnknown)))
	}
	b.WriteString("</table>\n")
	return b.String()
}

func (g *Generator) renderMonthlyTables() string {
	var b strings.Builder

	b.WriteString("<h2>Monthly presence</h2>\n")
	b.WriteString("<table>\n<tr><th>Month</th><th>Inside</th><th>Outside</th><th>Unknown</th></tr>\n")
	for _, row := range g.report.MonthlyTimeSeries {
		b.WriteString(fmt.Sprintf("<tr><td>%s</td><td>%s</td><td>%s</td><td>%s</td></tr>\n",
			row.Month, formatHours(row.HoursInside), formatHours(row.HoursOutside), formatHours(row.HoursUnknown)))
	}
	b.WriteString("</table>\n")

	b.WriteString("<h2>Monthly activity</h2>\n")
	b.WriteString("<table>\n<tr><th>Month</th><th>Entries</th><th>Exits</th></tr>\n")
	for _, row := range g.report.MonthlyActivity {
		b.WriteString(fmt.Sprintf("<tr><td>%s</td><td>%d</td><td>%d</td></tr>\n",
			row.Month, row.Entries, row.Exits))
	}
	b.WriteString("</table>\n")

	b.WriteString("<h2>Prey brought home</h2>\n")
	b.WriteString("<table>\n<tr><th>Month</th><th>Prey</th></tr>\n")
	for _, row := range g.report.MonthlyPreyCounts {
		b.WriteString(fmt.Sprintf("<tr><td>%s</td><td>%d</td></tr>\n", row.Month, row.Count))
	}
	b.WriteString("</table>\n")

	return b.String()
}

func (g *Generator) renderRecentEvents() string {
	var b strings.Builder
	b.WriteString("<h2>Recent events</h2>\n")
	b.WriteString("<table>\n<tr><th>Time (UTC)</th><th>Direction</th><th>Confidence</th><th>Prey</th><th>Read</th></tr>\n")
	for _, ev := range g.report.AllEvents {
		prey := ""
		if ev.Prey {
			prey = "yes"
		}
		b.WriteString(fmt.Sprintf("<tr><td>%s</td><td>%s</td><td>%.2f</td><td>%s</td><td>%s</td></tr>\n",
			ev.Timestamp.Format("2006-01-02 15:04:05"), ev.Direction, ev.Confidence,
			prey, html.EscapeString(ev.RawText)))
	}
	b.WriteString("</table>\n")
	return b.String()
}

func formatHours(hours float64) string {
	return fmt.Sprintf("%.1fh", hours)
}
