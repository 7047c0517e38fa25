package loader

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/guregu/null/v6"

	"MarketBreadth/internal/model"
)

var dateLayouts = []string{
	"2006-01-02",
	"1/2/2006",
	"2006/01/02",
	"2006-01-02 15:04:05",
	"1/2/2006 15:04:05",
	time.RFC3339,
}

// ParseCSV reads the spreadsheet export into observation rows sorted by date.
// Numeric cells that cannot be parsed become missing; an unparseable date is
// an error.
func ParseCSV(r io.Reader) ([]model.Observation, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, errors.New("empty csv")
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	index, err := columnIndex(header)
	if err != nil {
		return nil, err
	}

	var rows []model.Observation
	line := 1
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("read line %d: %w", line, err)
		}
		if blankRecord(record) {
			continue
		}

		raw := field(record, index[model.ColDate])
		d, err := ParseDate(raw)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		obs := model.Observation{Date: d}
		for _, col := range model.NumericColumns {
			*obs.Field(col) = ParseNumber(field(record, index[col]))
		}
		rows = append(rows, obs)
	}

	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Date.Before(rows[j].Date) })
	return rows, nil
}

// ParseCSVBytes is ParseCSV over an in-memory export.
func ParseCSVBytes(data []byte) ([]model.Observation, error) {
	return ParseCSV(bytes.NewReader(data))
}

func columnIndex(header []string) (map[string]int, error) {
	byName := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimPrefix(h, "\ufeff")
		byName[strings.ToLower(strings.TrimSpace(h))] = i
	}

	required := append([]string{model.ColDate}, model.NumericColumns...)
	index := make(map[string]int, len(required))
	var missing []string
	for _, col := range required {
		i, ok := byName[strings.ToLower(col)]
		if !ok {
			missing = append(missing, col)
			continue
		}
		index[col] = i
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing columns: %s", strings.Join(missing, ", "))
	}
	return index, nil
}

func field(record []string, i int) string {
	if i < 0 || i >= len(record) {
		return ""
	}
	return record[i]
}

func blankRecord(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

// ParseDate normalizes a date cell to midnight UTC of its calendar day.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, errors.New("empty date")
	}
	if t, ok := parseGvizDate(s); ok {
		return t, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			y, m, d := t.Date()
			return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", s)
}

// parseGvizDate handles the Date(y,m,d) literal, whose month is zero-based.
func parseGvizDate(s string) (time.Time, bool) {
	inner, ok := strings.CutPrefix(s, "Date(")
	if !ok {
		return time.Time{}, false
	}
	inner, ok = strings.CutSuffix(inner, ")")
	if !ok {
		return time.Time{}, false
	}
	parts := strings.Split(inner, ",")
	if len(parts) < 3 {
		return time.Time{}, false
	}
	var ymd [3]int
	for i := 0; i < 3; i++ {
		n, err := strconv.Atoi(strings.TrimSpace(parts[i]))
		if err != nil {
			return time.Time{}, false
		}
		ymd[i] = n
	}
	return time.Date(ymd[0], time.Month(ymd[1]+1), ymd[2], 0, 0, 0, 0, time.UTC), true
}

// ParseNumber converts a numeric cell, returning missing for anything that is
// not a finite number.
func ParseNumber(s string) null.Float {
	s = strings.TrimSpace(s)
	if s == "" {
		return null.Float{}
	}
	s = strings.ReplaceAll(s, ",", "")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return null.Float{}
	}
	return null.FloatFrom(v)
}
