package web

import (
	"io"

	"github.com/parquet-go/parquet-go"

	"MarketBreadth/internal/model"
)

// SeriesRecord is the Parquet row schema of the exported table. Missing
// cells are written as nulls.
type SeriesRecord struct {
	Date       int64    `parquet:"date,timestamp(millisecond)"`
	Open       *float64 `parquet:"open,optional"`
	High       *float64 `parquet:"high,optional"`
	Low        *float64 `parquet:"low,optional"`
	Close      *float64 `parquet:"close,optional"`
	MA20       *float64 `parquet:"ma20,optional"`
	MA60       *float64 `parquet:"ma60,optional"`
	MA200      *float64 `parquet:"ma200,optional"`
	Oscillator *float64 `parquet:"mcclellan_oscillator,optional"`
	Summation  *float64 `parquet:"mcclellan_summation_index,optional"`
}

// WriteParquet encodes the table rows as a Parquet file.
func WriteParquet(w io.Writer, table *model.Table) error {
	records := make([]SeriesRecord, len(table.Rows))
	for i, r := range table.Rows {
		records[i] = SeriesRecord{
			Date:       r.Date.UnixMilli(),
			Open:       r.Open.Ptr(),
			High:       r.High.Ptr(),
			Low:        r.Low.Ptr(),
			Close:      r.Close.Ptr(),
			MA20:       r.MA20.Ptr(),
			MA60:       r.MA60.Ptr(),
			MA200:      r.MA200.Ptr(),
			Oscillator: r.Oscillator.Ptr(),
			Summation:  r.Summation.Ptr(),
		}
	}
	return parquet.Write(w, records)
}
