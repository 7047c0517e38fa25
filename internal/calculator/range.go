package calculator

import (
	"errors"
	"math"

	"MarketBreadth/internal/model"
)

// TrailingRange scans the most recent n observations and returns the
// lowest Low and highest High, skipping missing cells. ok is false when no
// valid value was found.
func TrailingRange(rows []model.Observation, n int) (low, high float64, ok bool) {
	start := 0
	if n > 0 && len(rows) > n {
		start = len(rows) - n
	}
	low = math.Inf(1)
	high = math.Inf(-1)
	for i := start; i < len(rows); i++ {
		if rows[i].Low.Valid && rows[i].Low.Float64 < low {
			low = rows[i].Low.Float64
			ok = true
		}
		if rows[i].High.Valid && rows[i].High.Float64 > high {
			high = rows[i].High.Float64
			ok = true
		}
	}
	if math.IsInf(low, 1) {
		low = high
	}
	if math.IsInf(high, -1) {
		high = low
	}
	return low, high, ok
}

// RoundedTicks rounds [low, high] outward to multiples of interval and
// returns the bounds plus every tick between them, inclusive.
func RoundedTicks(low, high float64, interval int) (lo, hi float64, ticks []float64, err error) {
	if interval <= 0 {
		return 0, 0, nil, errors.New("interval must be positive")
	}
	if high < low {
		return 0, 0, nil, errors.New("high must be >= low")
	}
	step := float64(interval)
	lo = math.Floor(low/step) * step
	hi = math.Ceil(high/step) * step
	for v := lo; v <= hi; v += step {
		ticks = append(ticks, v)
	}
	return lo, hi, ticks, nil
}
