package model

// Preset holds the parameters that distinguish one dashboard variant from
// another. Everything else in the pipeline is shared.
type Preset struct {
	Name      string `yaml:"name"`
	PageTitle string `yaml:"page_title"`
	Subheader string `yaml:"subheader"`
	Caption   string `yaml:"caption"`

	ChartTitle    string `yaml:"chart_title"`
	TrailingRows  int    `yaml:"trailing_rows"`
	TickInterval  int    `yaml:"tick_interval"`
	VisibleMonths int    `yaml:"visible_months"`
	RollingWindow int    `yaml:"rolling_window"`

	MARange          *[2]float64 `yaml:"ma_range"`
	MARefLines       []float64   `yaml:"ma_ref_lines"`
	OscillatorRange  *[2]float64 `yaml:"oscillator_range"`
	OscillatorLevels []float64   `yaml:"oscillator_levels"`

	PriceLabel      string `yaml:"price_label"`
	MALabel         string `yaml:"ma_label"`
	OscillatorLabel string `yaml:"oscillator_label"`
	SummationLabel  string `yaml:"summation_label"`
}
