package formatter

import (
	"math"
	"strings"

	"github.com/desertthunder/inbody/internal/models"
)

var ticks = []rune("▁▂▃▄▅▆▇█")

// Sparkline draws values as a row of block characters scaled between their min and max.
//
// Only the last width values are drawn when width is positive. A flat series sits on the baseline.
// Values are scaled in halves so hi-lo cannot overflow for extremes like ±1e308.
func Sparkline(values []float64, width int) string {
	if width > 0 && len(values) > width {
		values = values[len(values)-width:]
	}
	if len(values) == 0 {
		return ""
	}

	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}

	top := len(ticks) - 1
	span := hi/2 - lo/2

	var b strings.Builder
	for _, v := range values {
		idx := 0
		if span > 0 {
			scaled := math.Round((v/2 - lo/2) / span * float64(top))
			if !math.IsNaN(scaled) {
				idx = max(0, min(top, int(scaled)))
			}
		}
		b.WriteRune(ticks[idx])
	}
	return b.String()
}

// Summary describes how one metric moved across a series of measurements.
type Summary struct {
	Metric models.Metric
	First  float64
	Latest float64
	Change float64 // Change is Latest minus First, rounded to two decimals
	Min    float64
	Max    float64
}

// Summarize returns one [Summary] per metric in [models.Metrics] order, or nil for no measurements.
func Summarize(measurements []models.Measurement) []Summary {
	if len(measurements) == 0 {
		return nil
	}

	out := make([]Summary, 0, len(models.Metrics))
	for _, metric := range models.Metrics {
		first, _ := measurements[0].Value(metric.Key)
		s := Summary{Metric: metric, First: first, Min: first, Max: first}

		for _, m := range measurements {
			v, _ := m.Value(metric.Key)
			s.Min = math.Min(s.Min, v)
			s.Max = math.Max(s.Max, v)
			s.Latest = v
		}
		s.Change = math.Round((s.Latest-s.First)*100) / 100
		out = append(out, s)
	}
	return out
}
