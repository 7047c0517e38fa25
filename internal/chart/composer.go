package chart

import (
	"fmt"
	"log"
	"time"

	"MarketBreadth/internal/calculator"
	"MarketBreadth/internal/model"
)

// Layout constants shared by every preset.
const (
	Height          = 900
	RowSpacing      = 0.025
	Background      = "#F7F9F9"
	TitleFontFamily = "Arial"
	TitleFontSize   = 16
	TitleFontColor  = "#566573"
)

// RowWeights are the relative heights of the four panels, top to bottom.
var RowWeights = []float64{0.4, 0.3, 0.3, 0.3}

var (
	styleMA20       = model.LineStyle{Color: "#69DC5B", Width: 1.0}
	styleMA60       = model.LineStyle{Color: "#526DFF", Width: 1.5}
	styleMA200      = model.LineStyle{Color: "#E24C4C", Width: 2.0}
	styleOscillator = model.LineStyle{Color: "#69DC5B", Width: 2.0}
	styleSummation  = model.LineStyle{Color: "#27AE60", Width: 2.0}
	styleSumMean    = model.LineStyle{Color: "#566573", Width: 1.5, Dash: "dash"}
)

// Compose builds the four-panel chart description for a table. gaps are the
// calendar dates without a row; they become zero-width x-axis breaks.
func Compose(table *model.Table, gaps []time.Time, preset model.Preset) model.ChartSpec {
	dates := table.Dates()

	price := model.Panel{
		Kind:   model.PanelPrice,
		Weight: RowWeights[0],
		Label:  preset.PriceLabel,
		Candles: &model.CandleSeries{
			Name:  preset.PriceLabel,
			Open:  table.Column(model.ColOpen),
			High:  table.Column(model.ColHigh),
			Low:   table.Column(model.ColLow),
			Close: table.Column(model.ColClose),
		},
		YAxis: priceAxis(table, preset),
	}

	ma := model.Panel{
		Kind:   model.PanelMA,
		Weight: RowWeights[1],
		Label:  preset.MALabel,
		Lines: []model.LineSeries{
			{Name: "MA20", Style: styleMA20, Values: table.Column(model.ColMA20)},
			{Name: "MA60", Style: styleMA60, Values: table.Column(model.ColMA60)},
			{Name: "MA200", Style: styleMA200, Values: table.Column(model.ColMA200)},
		},
		RefLines: preset.MARefLines,
		YAxis:    model.AxisConfig{Range: preset.MARange},
	}

	osc := model.Panel{
		Kind:   model.PanelOscillator,
		Weight: RowWeights[2],
		Label:  preset.OscillatorLabel,
		Lines: []model.LineSeries{
			{Name: preset.OscillatorLabel, Style: styleOscillator, Values: table.Column(model.ColOscillator)},
		},
		RefLines: preset.OscillatorLevels,
		YAxis:    model.AxisConfig{Range: preset.OscillatorRange},
	}

	summation := table.Column(model.ColSummation)
	sum := model.Panel{
		Kind:   model.PanelSummation,
		Weight: RowWeights[3],
		Label:  preset.SummationLabel,
		Lines: []model.LineSeries{
			{Name: preset.SummationLabel, Style: styleSummation, Values: summation},
			{
				Name:   fmt.Sprintf("MA%d", preset.RollingWindow),
				Style:  styleSumMean,
				Values: calculator.RollingMean(summation, preset.RollingWindow),
			},
		},
	}

	panels := []model.Panel{price, ma, osc, sum}

	spec := model.ChartSpec{
		Title: preset.ChartTitle,
		TitleFont: model.FontSpec{
			Family: TitleFontFamily,
			Size:   TitleFontSize,
			Color:  TitleFontColor,
		},
		Height:     Height,
		Background: Background,
		Spacing:    RowSpacing,
		Dates:      dates,
		Panels:     panels,
		XAxis: model.XAxisConfig{
			Breaks: gaps,
		},
	}
	spec.XAxis.VisibleFrom, spec.XAxis.VisibleTo = visibleWindow(dates, preset.VisibleMonths)

	domains := RowDomains(RowWeights, RowSpacing)
	for i, p := range panels {
		if p.Label == "" {
			continue
		}
		spec.Annotations = append(spec.Annotations, model.Annotation{
			Text: p.Label,
			X:    0.01,
			Y:    domains[i][1],
		})
	}
	return spec
}

// priceAxis fixes the price panel to rounded bounds over the trailing rows.
func priceAxis(table *model.Table, preset model.Preset) model.AxisConfig {
	low, high, ok := calculator.TrailingRange(table.Rows, preset.TrailingRows)
	if !ok {
		return model.AxisConfig{}
	}
	lo, hi, ticks, err := calculator.RoundedTicks(low, high, preset.TickInterval)
	if err != nil {
		log.Printf("[WARN] price axis: %v", err)
		return model.AxisConfig{}
	}
	return model.AxisConfig{Range: &[2]float64{lo, hi}, TickVals: ticks}
}

// visibleWindow returns the initial x range: the trailing months ending at
// the last date, or zero times for the full history.
func visibleWindow(dates []time.Time, months int) (from, to time.Time) {
	if months <= 0 || len(dates) == 0 {
		return time.Time{}, time.Time{}
	}
	to = dates[len(dates)-1]
	from = to.AddDate(0, -months, 0)
	if from.Before(dates[0]) {
		from = dates[0]
	}
	return from, to
}

// RowDomains splits the vertical paper space into stacked rows, top first,
// with fixed spacing between rows. Each entry is [bottom, top].
func RowDomains(weights []float64, spacing float64) [][2]float64 {
	if len(weights) == 0 {
		return nil
	}
	total := 0.0
	for _, w := range weights {
		total += w
	}
	avail := 1 - spacing*float64(len(weights)-1)
	out := make([][2]float64, len(weights))
	top := 1.0
	for i, w := range weights {
		h := avail * w / total
		out[i] = [2]float64{top - h, top}
		top -= h + spacing
	}
	out[len(out)-1][0] = 0
	return out
}
