package chart

import (
	"fmt"
	"math"
	"strings"
)

var bars = []rune("▁▂▃▄▅▆▇█")

// Sparkline renders values as one line of block characters at most width
// cells wide. Longer inputs are bucketed by averaging; NaN cells render as a
// space.
func Sparkline(values []float64, width int) string {
	if width <= 0 || len(values) == 0 {
		return ""
	}
	sampled := resample(values, width)
	lo, hi, ok := Bounds(sampled)
	if !ok {
		return strings.Repeat(" ", len(sampled))
	}

	var b strings.Builder
	for _, v := range sampled {
		if math.IsNaN(v) {
			b.WriteRune(' ')
			continue
		}
		idx := len(bars) / 2
		if hi > lo {
			idx = int(math.Round((v - lo) / (hi - lo) * float64(len(bars)-1)))
		}
		b.WriteRune(bars[idx])
	}
	return b.String()
}

// resample averages values into at most width buckets, skipping NaN.
func resample(values []float64, width int) []float64 {
	if len(values) <= width {
		return values
	}
	out := make([]float64, width)
	for i := range out {
		start := i * len(values) / width
		end := (i + 1) * len(values) / width
		sum, n := 0.0, 0
		for _, v := range values[start:end] {
			if !math.IsNaN(v) {
				sum += v
				n++
			}
		}
		if n == 0 {
			out[i] = math.NaN()
			continue
		}
		out[i] = sum / float64(n)
	}
	return out
}

// Caption summarises a series as "name  min 1.00  max 2.00  last 1.50".
func Caption(s Series) string {
	values := s.Values()
	lo, hi, ok := Bounds(values)
	if !ok {
		return s.Name + "  no values"
	}
	last := math.NaN()
	for i := len(values) - 1; i >= 0; i-- {
		if !math.IsNaN(values[i]) {
			last = values[i]
			break
		}
	}
	return fmt.Sprintf("%s  min %.2f  max %.2f  last %.2f", s.Name, lo, hi, last)
}
