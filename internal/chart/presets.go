package chart

import (
	"fmt"
	"sort"

	"MarketBreadth/internal/model"
)

const (
	PresetIndex   = "index"
	PresetPercent = "percent"
)

// DefaultPresets returns the built-in dashboard variants keyed by name.
func DefaultPresets() map[string]model.Preset {
	base := model.Preset{
		PageTitle:        "Stock Market Breadth Dashboard",
		Subheader:        "📊 Market Breadth Dashboard",
		ChartTitle:       "Stock Index and Market Breadth Indicators",
		TrailingRows:     365,
		TickInterval:     100,
		VisibleMonths:    6,
		RollingWindow:    20,
		OscillatorRange:  &[2]float64{-75, 75},
		OscillatorLevels: []float64{-50, -25, 0, 25, 50},
		PriceLabel:       "Stock Index",
		MALabel:          "MA20 / MA60 / MA200",
		OscillatorLabel:  "McClellan Oscillator",
		SummationLabel:   "McClellan Summation Index",
	}

	index := base
	index.Name = PresetIndex
	index.Caption = "Index price with breadth moving averages and the McClellan oscillator and summation index."

	percent := base
	percent.Name = PresetPercent
	percent.Caption = "Share of stocks trading above their 20, 60 and 200 day moving averages."
	percent.TrailingRows = 250
	percent.MARange = &[2]float64{0, 100}
	percent.MARefLines = []float64{10, 20, 50, 80, 90}
	percent.MALabel = "% above MA20 / MA60 / MA200"

	return map[string]model.Preset{
		PresetIndex:   index,
		PresetPercent: percent,
	}
}

// FullHistory as a visibleMonths override opens the chart on the whole
// series instead of the preset's trailing window.
const FullHistory = -1

// LookupPreset returns the named preset with positive overrides applied.
// Zero keeps the preset value.
func LookupPreset(name string, trailingRows, visibleMonths int) (model.Preset, error) {
	presets := DefaultPresets()
	p, ok := presets[name]
	if !ok {
		names := make([]string, 0, len(presets))
		for n := range presets {
			names = append(names, n)
		}
		sort.Strings(names)
		return model.Preset{}, fmt.Errorf("unknown chart preset %q (available: %v)", name, names)
	}
	if trailingRows > 0 {
		p.TrailingRows = trailingRows
	}
	switch {
	case visibleMonths == FullHistory:
		p.VisibleMonths = 0
	case visibleMonths > 0:
		p.VisibleMonths = visibleMonths
	}
	return p, nil
}
