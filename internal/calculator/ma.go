package calculator

import (
	"github.com/guregu/null/v6"
)

// RollingMean computes the trailing simple moving average of values over the
// given window. Index i is missing until the window is full, and whenever any
// value inside its window is missing.
func RollingMean(values []null.Float, window int) []null.Float {
	out := make([]null.Float, len(values))
	if window <= 0 {
		return out
	}
	for i := window - 1; i < len(values); i++ {
		if mean, ok := windowMean(values[i-window+1 : i+1]); ok {
			out[i] = null.FloatFrom(mean)
		}
	}
	return out
}

// SMA returns the simple moving average of the last period values.
func SMA(values []null.Float, period int) (null.Float, bool) {
	if period <= 0 || len(values) < period {
		return null.Float{}, false
	}
	mean, ok := windowMean(values[len(values)-period:])
	if !ok {
		return null.Float{}, false
	}
	return null.FloatFrom(mean), true
}

func windowMean(window []null.Float) (float64, bool) {
	sum := 0.0
	for _, v := range window {
		if !v.Valid {
			return 0, false
		}
		sum += v.Float64
	}
	return sum / float64(len(window)), true
}
