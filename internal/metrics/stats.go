package metrics

import (
	"math"
	"time"

	"github.com/san-kum/marblejar/internal/marble"
)

// PercentGood is the rounded share of green marbles. An empty history counts as 100.
func PercentGood(records []marble.Record) int {
	ratio := NewGoodRatio()
	for _, r := range records {
		ratio.Observe(r)
	}
	return int(math.Round(ratio.Value() * 100))
}

// GoodSeries maps each record to 1 for green and 0 otherwise.
func GoodSeries(records []marble.Record) []float64 {
	out := make([]float64, len(records))
	for i, r := range records {
		out[i] = goodValue(r)
	}
	return out
}

// TrailingAverage returns, for every index, the mean of the last min(window, i+1) values.
func TrailingAverage(values []float64, window int) []float64 {
	if window < 1 {
		window = 1
	}
	out := make([]float64, len(values))
	sum := 0.0
	for i, v := range values {
		sum += v
		if i >= window {
			sum -= values[i-window]
		}
		out[i] = sum / float64(min(window, i+1))
	}
	return out
}

// EMA returns the exponential moving average series seeded with the first value.
func EMA(values []float64, alpha float64) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		if i == 0 {
			out[i] = v
			continue
		}
		out[i] = alpha*v + (1-alpha)*out[i-1]
	}
	return out
}

// LastDrop is the latest timestamp in records, which need not be the last record. It
// returns the Unix epoch for an empty history.
func LastDrop(records []marble.Record) time.Time {
	if len(records) == 0 {
		return time.UnixMilli(0)
	}
	latest := records[0].Timestamp
	for _, r := range records[1:] {
		if r.Timestamp > latest {
			latest = r.Timestamp
		}
	}
	return time.UnixMilli(latest)
}

// CanDrop allows one marble per calendar day, from dropHour onward, in now's location.
func CanDrop(now, lastDrop time.Time, dropHour int) bool {
	last := lastDrop.In(now.Location())
	ny, nm, nd := now.Date()
	ly, lm, ld := last.Date()
	sameDay := ny == ly && nm == lm && nd == ld
	return !sameDay && now.Hour() >= dropHour
}

// Summary bundles the figures shown next to the jar.
type Summary struct {
	Total       int
	Good        int
	PercentGood int
	LastDrop    time.Time
	Trailing    []float64
	EMA         []float64
}

func Summarize(records []marble.Record, window int, alpha float64) Summary {
	series := GoodSeries(records)
	good := 0
	for _, v := range series {
		good += int(v)
	}
	return Summary{
		Total:       len(records),
		Good:        good,
		PercentGood: PercentGood(records),
		LastDrop:    LastDrop(records),
		Trailing:    TrailingAverage(series, window),
		EMA:         EMA(series, alpha),
	}
}
