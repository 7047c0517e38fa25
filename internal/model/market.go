package model

import (
	"time"

	"github.com/guregu/null/v6"
)

// Column names as they appear in the spreadsheet export.
const (
	ColDate       = "Date"
	ColOpen       = "Open"
	ColHigh       = "High"
	ColLow        = "Low"
	ColClose      = "Close"
	ColMA20       = "MA20"
	ColMA60       = "MA60"
	ColMA200      = "MA200"
	ColOscillator = "McClellan_Oscillator"
	ColSummation  = "McClellan_Summation_Index"
)

// NumericColumns lists every numeric column in export order.
var NumericColumns = []string{
	ColOpen, ColHigh, ColLow, ColClose,
	ColMA20, ColMA60, ColMA200,
	ColOscillator, ColSummation,
}

// Observation is one trading day of index prices and breadth indicators.
// A numeric field is either a valid number or missing.
type Observation struct {
	Date       time.Time  `json:"date"`
	Open       null.Float `json:"open"`
	High       null.Float `json:"high"`
	Low        null.Float `json:"low"`
	Close      null.Float `json:"close"`
	MA20       null.Float `json:"ma20"`
	MA60       null.Float `json:"ma60"`
	MA200      null.Float `json:"ma200"`
	Oscillator null.Float `json:"mcclellan_oscillator"`
	Summation  null.Float `json:"mcclellan_summation_index"`
}

// Field returns a pointer to the numeric field for the given column name,
// or nil if the column is not numeric.
func (o *Observation) Field(col string) *null.Float {
	switch col {
	case ColOpen:
		return &o.Open
	case ColHigh:
		return &o.High
	case ColLow:
		return &o.Low
	case ColClose:
		return &o.Close
	case ColMA20:
		return &o.MA20
	case ColMA60:
		return &o.MA60
	case ColMA200:
		return &o.MA200
	case ColOscillator:
		return &o.Oscillator
	case ColSummation:
		return &o.Summation
	}
	return nil
}

// Table is the series loaded by one fetch, ordered by date.
type Table struct {
	Source    string        `json:"source"`
	FetchedAt time.Time     `json:"fetched_at"`
	Rows      []Observation `json:"rows"`
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.Rows) }

// Dates returns the date column.
func (t *Table) Dates() []time.Time {
	dates := make([]time.Time, len(t.Rows))
	for i, r := range t.Rows {
		dates[i] = r.Date
	}
	return dates
}

// Column returns a copy of a numeric column. Unknown names yield nil.
func (t *Table) Column(col string) []null.Float {
	if len(t.Rows) == 0 {
		return nil
	}
	var probe Observation
	if probe.Field(col) == nil {
		return nil
	}
	values := make([]null.Float, len(t.Rows))
	for i := range t.Rows {
		values[i] = *t.Rows[i].Field(col)
	}
	return values
}

// Last returns the most recent row.
func (t *Table) Last() (Observation, bool) {
	if len(t.Rows) == 0 {
		return Observation{}, false
	}
	return t.Rows[len(t.Rows)-1], true
}
