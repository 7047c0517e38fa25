package model

import (
	"time"

	"github.com/guregu/null/v6"
)

// PanelKind identifies what a chart panel plots.
type PanelKind string

const (
	PanelPrice      PanelKind = "price"
	PanelMA         PanelKind = "ma"
	PanelOscillator PanelKind = "oscillator"
	PanelSummation  PanelKind = "summation"
)

// LineStyle describes how a line series is drawn.
type LineStyle struct {
	Color string
	Width float64
	Dash  string // "" for solid
}

// LineSeries is a named sequence of values aligned with ChartSpec.Dates.
type LineSeries struct {
	Name   string
	Style  LineStyle
	Values []null.Float
}

// CandleSeries holds OHLC values aligned with ChartSpec.Dates.
type CandleSeries struct {
	Name  string
	Open  []null.Float
	High  []null.Float
	Low   []null.Float
	Close []null.Float
}

// AxisConfig is a y-axis configuration. A nil Range means autorange.
type AxisConfig struct {
	Range    *[2]float64
	TickVals []float64
}

// Annotation is a text label placed in chart-relative (paper) coordinates.
type Annotation struct {
	Text string
	X    float64
	Y    float64
}

// Panel is one row of the stacked chart.
type Panel struct {
	Kind     PanelKind
	Weight   float64
	YAxis    AxisConfig
	Candles  *CandleSeries
	Lines    []LineSeries
	RefLines []float64
	Label    string
}

// XAxisConfig is shared by every panel.
type XAxisConfig struct {
	Breaks      []time.Time // calendar dates rendered with zero width
	VisibleFrom time.Time   // zero means full history
	VisibleTo   time.Time
}

// ChartSpec is a complete, renderer-independent chart description. It is
// built once by the composer and not modified afterwards.
type ChartSpec struct {
	Title       string
	TitleFont   FontSpec
	Height      int
	Background  string
	Spacing     float64
	Dates       []time.Time
	Panels      []Panel
	XAxis       XAxisConfig
	Annotations []Annotation
}

// FontSpec is a font family/size/color triple.
type FontSpec struct {
	Family string
	Size   int
	Color  string
}
