package bench

import (
	"fmt"
	"math"
	"sort"
)

// SweepStats summarizes the measured (non-NaN) entries of a sweep.
type SweepStats struct {
	Measured  int     `json:"measured"`
	MinSec    float64 `json:"min_sec"`
	MaxSec    float64 `json:"max_sec"`
	MeanSec   float64 `json:"mean_sec"`
	MedianSec float64 `json:"median_sec"`
	P90Sec    float64 `json:"p90_sec"`
	P99Sec    float64 `json:"p99_sec"`
	StdDevSec float64 `json:"std_dev_sec"`
}

// Summarize computes SweepStats over times, skipping NaN padding.
func Summarize(times []float64) SweepStats {
	measured := make([]float64, 0, len(times))
	for _, t := range times {
		if !math.IsNaN(t) {
			measured = append(measured, t)
		}
	}
	if len(measured) == 0 {
		return SweepStats{}
	}

	sorted := make([]float64, len(measured))
	copy(sorted, measured)
	sort.Float64s(sorted)

	var sum float64
	for _, t := range measured {
		sum += t
	}
	mean := sum / float64(len(measured))

	var sq float64
	for _, t := range measured {
		diff := t - mean
		sq += diff * diff
	}

	return SweepStats{
		Measured:  len(measured),
		MinSec:    sorted[0],
		MaxSec:    sorted[len(sorted)-1],
		MeanSec:   mean,
		MedianSec: percentile(sorted, 0.5),
		P90Sec:    percentile(sorted, 0.9),
		P99Sec:    percentile(sorted, 0.99),
		StdDevSec: math.Sqrt(sq / float64(len(measured))),
	}
}

// percentile interpolates linearly between the two nearest sorted entries.
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	index := p * float64(len(sorted)-1)
	lower := int(math.Floor(index))
	upper := int(math.Ceil(index))
	if lower == upper {
		return sorted[lower]
	}
	weight := index - math.Floor(index)
	return sorted[lower] + weight*(sorted[upper]-sorted[lower])
}

// Summary renders the stats in the per-backend dump shown after a run.
func (s SweepStats) Summary() string {
	return fmt.Sprintf(`  Measured Sizes: %d
  Min Time: %.6fs
  Max Time: %.6fs
  Mean Time: %.6fs
  Median Time: %.6fs
  P90 Time: %.6fs
  P99 Time: %.6fs
  Std Dev: %.6fs`,
		s.Measured,
		s.MinSec,
		s.MaxSec,
		s.MeanSec,
		s.MedianSec,
		s.P90Sec,
		s.P99Sec,
		s.StdDevSec,
	)
}
