// Package charts renders report aggregates as PNG images
package charts

import (
	"bytes"
	"fmt"

	"github.com/fogleman/gg"

	"github.com/FlapTrack/flaptrack-go/models"
)

// Standard chart dimensions
const (
	ChartWidth  = 1200
	ChartHeight = 400
)

const (
	marginLeft   = 60.0
	marginRight  = 20.0
	marginTop    = 30.0
	marginBottom = 50.0
)

// Hex colors for the three presence states
const (
	colorInside     = "#4caf50"
	colorOutside    = "#2196f3"
	colorUnknown    = "#bdbdbd"
	colorBackground = "#ffffff"
	colorAxis       = "#424242"
	colorGrid       = "#e0e0e0"
)

// RenderDailyChart draws one stacked bar per day: inside, outside and unknown
// hours stacked to the full 24h each gap-filled day carries.
func RenderDailyChart(daily []models.DailyStat) ([]byte, error) {
	if len(daily) == 0 {
		return nil, fmt.Errorf("no daily rows to chart")
	}

	dc := gg.NewContext(ChartWidth, ChartHeight)
	dc.SetHexColor(colorBackground)
	dc.Clear()

	plotWidth := float64(ChartWidth) - marginLeft - marginRight
	plotHeight := float64(ChartHeight) - marginTop - marginBottom
	drawHourAxis(dc, plotHeight, 24)

	barSlot := plotWidth / float64(len(daily))
	barWidth := barSlot * 0.8
	scale := plotHeight / 24.0

	labelEvery := 1
	for len(daily)/labelEvery > 20 {
		labelEvery *= 2
	}

	for i, day := range daily {
		x := marginLeft + float64(i)*barSlot + (barSlot-barWidth)/2
		y := marginTop + plotHeight

		for _, segment := range []struct {
			hours float64
			hex   string
		}{
			{day.HoursInside, colorInside},
			{day.HoursOutside, colorOutside},
			{day.HoursUnknown, colorUnknown},
		} {
			if segment.hours <= 0 {
				continue
			}
			h := segment.hours * scale
			dc.SetHexColor(segment.hex)
			dc.DrawRectangle(x, y-h, barWidth, h)
			dc.Fill()
			y -= h
		}

		if i%labelEvery == 0 {
			dc.SetHexColor(colorAxis)
			// Day keys are YYYY-MM-DD; the month-day part keeps labels short
			label := day.Date
			if len(label) == 10 {
				label = label[5:]
			}
			dc.DrawStringAnchored(label, x+barWidth/2, marginTop+plotHeight+14, 0.5, 0.5)
		}
	}

	drawLegend(dc)
	return encodePNG(dc)
}

// RenderHourlyChart draws the hour-of-day presence profile as grouped inside
// and outside bars for hours 0 through 23.
func RenderHourlyChart(hourly []models.HourOfDayStat) ([]byte, error) {
	if len(hourly) == 0 {
		return nil, fmt.Errorf("no hourly rows to chart")
	}

	dc := gg.NewContext(ChartWidth, ChartHeight)
	dc.SetHexColor(colorBackground)
	dc.Clear()

	plotWidth := float64(ChartWidth) - marginLeft - marginRight
	plotHeight := float64(ChartHeight) - marginTop - marginBottom

	maxHours := 1.0
	for _, row := range hourly {
		if row.HoursInside > maxHours {
			maxHours = row.HoursInside
		}
		if row.HoursOutside > maxHours {
			maxHours = row.HoursOutside
		}
	}
	drawHourAxis(dc, plotHeight, maxHours)

	slot := plotWidth / float64(len(hourly))
	barWidth := slot * 0.35
	scale := plotHeight / maxHours
	baseline := marginTop + plotHeight

	for i, row := range hourly {
		x := marginLeft + float64(i)*slot + slot*0.1

		if row.HoursInside > 0 {
			h := row.HoursInside * scale
			dc.SetHexColor(colorInside)
			dc.DrawRectangle(x, baseline-h, barWidth, h)
			dc.Fill()
		}
		if row.HoursOutside > 0 {
			h := row.HoursOutside * scale
			dc.SetHexColor(colorOutside)
			dc.DrawRectangle(x+barWidth, baseline-h, barWidth, h)
			dc.Fill()
		}

		dc.SetHexColor(colorAxis)
		dc.DrawStringAnchored(fmt.Sprintf("%d", row.Hour), x+barWidth, baseline+14, 0.5, 0.5)
	}

	drawLegend(dc)
	return encodePNG(dc)
}

// drawHourAxis draws the left axis with gridlines at quarter intervals.
func drawHourAxis(dc *gg.Context, plotHeight, maxHours float64) {
	baseline := marginTop + plotHeight

	dc.SetHexColor(colorAxis)
	dc.SetLineWidth(1)
	dc.DrawLine(marginLeft, marginTop, marginLeft, baseline)
	dc.DrawLine(marginLeft, baseline, float64(ChartWidth)-marginRight, baseline)
	dc.Stroke()

	for step := 0; step <= 4; step++ {
		value := maxHours * float64(step) / 4
		y := baseline - plotHeight*float64(step)/4

		if step > 0 {
			dc.SetHexColor(colorGrid)
			dc.DrawLine(marginLeft, y, float64(ChartWidth)-marginRight, y)
			dc.Stroke()
		}

		dc.SetHexColor(colorAxis)
		dc.DrawStringAnchored(fmt.Sprintf("%.0fh", value), marginLeft-8, y, 1, 0.5)
	}
}

// drawLegend draws the state swatches along the top edge.
func drawLegend(dc *gg.Context) {
	x := marginLeft
	y := marginTop / 2
	for _, item := range []struct {
		label string
		hex   string
	}{
		{"inside", colorInside},
		{"outside", colorOutside},
		{"unknown", colorUnknown},
	} {
		dc.SetHexColor(item.hex)
		dc.DrawRectangle(x, y-5, 10, 10)
		dc.Fill()
		dc.SetHexColor(colorAxis)
		dc.DrawStringAnchored(item.label, x+16, y, 0, 0.5)
		x += 90
	}
}

func encodePNG(dc *gg.Context) ([]byte, error) {
	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("failed to encode chart: %w", err)
	}
	return buf.Bytes(), nil
}
