package notifier

import (
	"fmt"
	"strings"

	"github.com/guregu/null/v6"

	"MarketBreadth/internal/recorder"
)

// OscillatorZone classifies a McClellan oscillator reading against the
// ±25 and ±50 levels drawn on the chart.
func OscillatorZone(v null.Float) string {
	if !v.Valid {
		return "n/a"
	}
	switch x := v.Float64; {
	case x >= 50:
		return "overbought"
	case x >= 25:
		return "strong"
	case x > -25:
		return "neutral"
	case x > -50:
		return "weak"
	default:
		return "oversold"
	}
}

// SummationTrend compares the summation index with its rolling mean.
func SummationTrend(sum, mean null.Float) string {
	if !sum.Valid || !mean.Valid {
		return "n/a"
	}
	if sum.Float64 >= mean.Float64 {
		return "above mean"
	}
	return "below mean"
}

func num(v null.Float, prec int) string {
	if !v.Valid {
		return "–"
	}
	return fmt.Sprintf("%.*f", prec, v.Float64)
}

// FormatBreadthSummary formats the latest breadth reading into a Telegram message.
func FormatBreadthSummary(snap *recorder.Snapshot, window int) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📊 <b>Market Breadth</b> | %s\n\n", snap.Date.Format("2006-01-02")))
	b.WriteString(fmt.Sprintf("Close: %s\n", num(snap.Close, 2)))
	b.WriteString(fmt.Sprintf("MA20 / MA60 / MA200: %s / %s / %s\n\n",
		num(snap.MA20, 1), num(snap.MA60, 1), num(snap.MA200, 1)))
	b.WriteString(fmt.Sprintf("McClellan Oscillator: %s (%s)\n",
		num(snap.Oscillator, 2), OscillatorZone(snap.Oscillator)))
	b.WriteString(fmt.Sprintf("Summation Index: %s | MA%d %s (%s)\n",
		num(snap.Summation, 2), window, num(snap.SummationMean, 2),
		SummationTrend(snap.Summation, snap.SummationMean)))
	return b.String()
}

// FormatHistory formats recorded snapshots, newest first.
func FormatHistory(snaps []recorder.Snapshot) string {
	if len(snaps) == 0 {
		return "No snapshots recorded yet."
	}
	var b strings.Builder
	b.WriteString("🗂 <b>Recent snapshots</b>\n\n")
	for _, s := range snaps {
		b.WriteString(fmt.Sprintf("%s  osc %s  sum %s\n",
			s.Date.Format("2006-01-02"), num(s.Oscillator, 1), num(s.Summation, 1)))
	}
	return b.String()
}

// FormatHelp lists the supported chat commands.
func FormatHelp() string {
	return strings.Join([]string{
		"<b>Commands</b>",
		"/breadth - latest breadth reading",
		"/refresh - clear the cache and reload",
		"/history - recent recorded snapshots",
		"/help - this message",
	}, "\n")
}
