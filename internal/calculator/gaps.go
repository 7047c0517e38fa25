package calculator

import (
	"time"
)

// CalendarGaps returns every calendar date between the earliest and latest
// observed date (inclusive) that has no observation, in ascending order.
func CalendarGaps(dates []time.Time) []time.Time {
	if len(dates) == 0 {
		return nil
	}

	observed := make(map[time.Time]struct{}, len(dates))
	first, last := Day(dates[0]), Day(dates[0])
	for _, d := range dates {
		day := Day(d)
		observed[day] = struct{}{}
		if day.Before(first) {
			first = day
		}
		if day.After(last) {
			last = day
		}
	}

	var gaps []time.Time
	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		if _, ok := observed[d]; !ok {
			gaps = append(gaps, d)
		}
	}
	return gaps
}

// Day truncates t to midnight UTC of its calendar date.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
