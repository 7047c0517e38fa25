package chart

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/guregu/null/v6"

	"MarketBreadth/internal/model"
)

const dateLayout = "2006-01-02"

// PlotlyFigure is a figure document accepted by Plotly.newPlot.
type PlotlyFigure struct {
	Data   []Trace `json:"data"`
	Layout Layout  `json:"layout"`
}

// Trace is a candlestick or scatter trace.
type Trace struct {
	Type  string       `json:"type"`
	Name  string       `json:"name"`
	X     []string     `json:"x"`
	Y     []null.Float `json:"y,omitempty"`
	Open  []null.Float `json:"open,omitempty"`
	High  []null.Float `json:"high,omitempty"`
	Low   []null.Float `json:"low,omitempty"`
	Close []null.Float `json:"close,omitempty"`
	Mode  string       `json:"mode,omitempty"`
	Line  *TraceLine   `json:"line,omitempty"`
	XAxis string       `json:"xaxis"`
	YAxis string       `json:"yaxis"`
}

type TraceLine struct {
	Color string  `json:"color"`
	Width float64 `json:"width"`
	Dash  string  `json:"dash,omitempty"`
}

type Font struct {
	Family string `json:"family,omitempty"`
	Size   int    `json:"size,omitempty"`
	Color  string `json:"color,omitempty"`
}

type Title struct {
	Text string `json:"text"`
	Font Font   `json:"font"`
}

type RangeBreak struct {
	Values []string `json:"values"`
}

type RangeSlider struct {
	Visible bool `json:"visible"`
}

// Axis is a Plotly x- or y-axis. Range holds date strings on x-axes and
// numbers on y-axes.
type Axis struct {
	Type           string       `json:"type,omitempty"`
	Domain         []float64    `json:"domain,omitempty"`
	Anchor         string       `json:"anchor,omitempty"`
	Matches        string       `json:"matches,omitempty"`
	ShowTickLabels *bool        `json:"showticklabels,omitempty"`
	Range          []any        `json:"range,omitempty"`
	AutoRange      *bool        `json:"autorange,omitempty"`
	TickMode       string       `json:"tickmode,omitempty"`
	TickVals       []float64    `json:"tickvals,omitempty"`
	RangeBreaks    []RangeBreak `json:"rangebreaks,omitempty"`
	RangeSlider    *RangeSlider `json:"rangeslider,omitempty"`
}

type ShapeLine struct {
	Color string  `json:"color"`
	Width float64 `json:"width"`
	Dash  string  `json:"dash,omitempty"`
}

// Shape is a horizontal reference line spanning one panel.
type Shape struct {
	Type  string    `json:"type"`
	XRef  string    `json:"xref"`
	YRef  string    `json:"yref"`
	X0    float64   `json:"x0"`
	X1    float64   `json:"x1"`
	Y0    float64   `json:"y0"`
	Y1    float64   `json:"y1"`
	Line  ShapeLine `json:"line"`
	Layer string    `json:"layer,omitempty"`
}

type PlotAnnotation struct {
	Text      string  `json:"text"`
	XRef      string  `json:"xref"`
	YRef      string  `json:"yref"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	XAnchor   string  `json:"xanchor"`
	YAnchor   string  `json:"yanchor"`
	ShowArrow bool    `json:"showarrow"`
	Font      Font    `json:"font"`
}

type Margin struct {
	L int `json:"l"`
	R int `json:"r"`
	T int `json:"t"`
	B int `json:"b"`
}

// Layout is the figure layout. XAxes and YAxes are emitted as xaxis, xaxis2,
// ... and yaxis, yaxis2, ... keys.
type Layout struct {
	Title       Title            `json:"title"`
	Height      int              `json:"height"`
	PlotBGColor string           `json:"plot_bgcolor"`
	ShowLegend  bool             `json:"showlegend"`
	HoverMode   string           `json:"hovermode,omitempty"`
	Margin      Margin           `json:"margin"`
	Shapes      []Shape          `json:"shapes,omitempty"`
	Annotations []PlotAnnotation `json:"annotations,omitempty"`
	XAxes       []Axis           `json:"-"`
	YAxes       []Axis           `json:"-"`
}

func (l Layout) MarshalJSON() ([]byte, error) {
	type plain Layout
	raw, err := json.Marshal(plain(l))
	if err != nil {
		return nil, err
	}
	fields := make(map[string]json.RawMessage)
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}
	for i, ax := range l.XAxes {
		b, err := json.Marshal(ax)
		if err != nil {
			return nil, err
		}
		fields[axisName("xaxis", i)] = b
	}
	for i, ax := range l.YAxes {
		b, err := json.Marshal(ax)
		if err != nil {
			return nil, err
		}
		fields[axisName("yaxis", i)] = b
	}
	return json.Marshal(fields)
}

// axisName returns the layout key of the i-th axis: xaxis, xaxis2, ...
func axisName(prefix string, i int) string {
	if i == 0 {
		return prefix
	}
	return fmt.Sprintf("%s%d", prefix, i+1)
}

// axisRef returns the trace reference of the i-th axis: x, x2, ...
func axisRef(letter string, i int) string {
	if i == 0 {
		return letter
	}
	return fmt.Sprintf("%s%d", letter, i+1)
}

var refLineStyle = ShapeLine{Color: "#B3B6B7", Width: 1, Dash: "dot"}

// Figure converts a chart description into a Plotly figure with one row per
// panel and all x-axes matched to the bottom row.
func Figure(spec model.ChartSpec) PlotlyFigure {
	x := dateStrings(spec.Dates)

	weights := make([]float64, len(spec.Panels))
	for i, p := range spec.Panels {
		weights[i] = p.Weight
	}
	domains := RowDomains(weights, spec.Spacing)
	bottom := len(spec.Panels) - 1

	var breaks []RangeBreak
	if len(spec.XAxis.Breaks) > 0 {
		breaks = []RangeBreak{{Values: dateStrings(spec.XAxis.Breaks)}}
	}
	var xRange []any
	if !spec.XAxis.VisibleFrom.IsZero() {
		xRange = []any{spec.XAxis.VisibleFrom.Format(dateLayout), spec.XAxis.VisibleTo.Format(dateLayout)}
	}

	fig := PlotlyFigure{
		Layout: Layout{
			Title: Title{
				Text: spec.Title,
				Font: Font{Family: spec.TitleFont.Family, Size: spec.TitleFont.Size, Color: spec.TitleFont.Color},
			},
			Height:      spec.Height,
			PlotBGColor: spec.Background,
			ShowLegend:  false,
			HoverMode:   "x unified",
			Margin:      Margin{L: 60, R: 30, T: 60, B: 40},
		},
	}

	for i, p := range spec.Panels {
		xref, yref := axisRef("x", i), axisRef("y", i)

		xa := Axis{
			Type:        "date",
			Anchor:      yref,
			Range:       xRange,
			RangeBreaks: breaks,
			RangeSlider: &RangeSlider{Visible: false},
		}
		if i != bottom {
			xa.Matches = axisRef("x", bottom)
			xa.ShowTickLabels = boolPtr(false)
		}
		fig.Layout.XAxes = append(fig.Layout.XAxes, xa)
		fig.Layout.YAxes = append(fig.Layout.YAxes, yAxis(p.YAxis, xref, domains[i]))

		if c := p.Candles; c != nil {
			fig.Data = append(fig.Data, Trace{
				Type: "candlestick", Name: c.Name, X: x,
				Open: c.Open, High: c.High, Low: c.Low, Close: c.Close,
				XAxis: xref, YAxis: yref,
			})
		}
		for _, s := range p.Lines {
			fig.Data = append(fig.Data, Trace{
				Type: "scatter", Mode: "lines", Name: s.Name, X: x, Y: s.Values,
				Line:  &TraceLine{Color: s.Style.Color, Width: s.Style.Width, Dash: s.Style.Dash},
				XAxis: xref, YAxis: yref,
			})
		}
		for _, v := range p.RefLines {
			fig.Layout.Shapes = append(fig.Layout.Shapes, Shape{
				Type: "line", XRef: xref + " domain", YRef: yref,
				X0: 0, X1: 1, Y0: v, Y1: v,
				Line: refLineStyle, Layer: "below",
			})
		}
	}

	for _, a := range spec.Annotations {
		fig.Layout.Annotations = append(fig.Layout.Annotations, PlotAnnotation{
			Text: a.Text, XRef: "paper", YRef: "paper",
			X: a.X, Y: a.Y, XAnchor: "left", YAnchor: "top",
			Font: Font{Family: spec.TitleFont.Family, Size: 12, Color: spec.TitleFont.Color},
		})
	}
	return fig
}

func yAxis(cfg model.AxisConfig, anchor string, domain [2]float64) Axis {
	ax := Axis{Anchor: anchor, Domain: []float64{domain[0], domain[1]}}
	if cfg.Range != nil {
		ax.Range = []any{cfg.Range[0], cfg.Range[1]}
		ax.AutoRange = boolPtr(false)
	}
	if len(cfg.TickVals) > 0 {
		ax.TickMode = "array"
		ax.TickVals = cfg.TickVals
	}
	return ax
}

func boolPtr(b bool) *bool { return &b }

func dateStrings(dates []time.Time) []string {
	out := make([]string, len(dates))
	for i, d := range dates {
		out[i] = d.Format(dateLayout)
	}
	return out
}
