package recommend

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// SmoothKernel3 applies a 3-point moving average to a swept curve so a single
// noisy point cannot drive the extracted optimum. End points average with
// their one neighbor, interior points with both.
func SmoothKernel3(values []float64) []float64 {
	n := len(values)
	if n < 2 {
		out := make([]float64, n)
		copy(out, values)
		return out
	}
	smoothed := make([]float64, n)
	for i := range values {
		switch i {
		case 0:
			smoothed[i] = (values[i] + values[i+1]) / 2
		case n - 1:
			smoothed[i] = (values[i-1] + values[i]) / 2
		default:
			smoothed[i] = (values[i-1] + values[i] + values[i+1]) / 3
		}
	}
	return smoothed
}

// argMax returns the index of the first maximum, or -1 for an empty slice.
func argMax(values []float64) int {
	best := -1
	for i, v := range values {
		if best < 0 || v > values[best] {
			best = i
		}
	}
	return best
}

// RobustRange finds the lowest and highest swept parameter whose raw curve
// value reaches at least frac of refValue. ok is false when no point
// qualifies.
func RobustRange(params, values []float64, refValue, frac float64) (lo, hi float64, ok bool) {
	threshold := refValue * frac
	for i, v := range values {
		if v >= threshold {
			if !ok {
				lo = params[i]
				ok = true
			}
			hi = params[i]
		}
	}
	return lo, hi, ok
}

// TInterval computes the two-sided 95% Student's-t confidence interval for
// the mean of the empirical sample. Degenerate samples collapse to the mean.
func TInterval(values []float64) (lo, hi float64) {
	n := len(values)
	if n == 0 {
		return 0, 0
	}
	mean := stat.Mean(values, nil)
	if n == 1 {
		return mean, mean
	}
	se := popStd(values) / math.Sqrt(float64(n))
	t := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(n - 1)}.Quantile(0.975)
	return mean - t*se, mean + t*se
}

// correlationPValue runs a two-sided t-test on a Pearson correlation over n
// observations. Fewer than three observations cannot reject anything.
func correlationPValue(r float64, n int) float64 {
	if n <= 2 {
		return 1
	}
	denom := 1 - r*r
	if denom <= 0 {
		return 0
	}
	t := r * math.Sqrt(float64(n-2)/denom)
	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(n - 2)}
	return 2 * (1 - dist.CDF(math.Abs(t)))
}

// median returns the sample median via the empirical quantile.
func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	return stat.Quantile(0.5, stat.Empirical, sorted, nil)
}

// quantile returns the empirical q-quantile of an unsorted sample.
func quantile(q float64, values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	return stat.Quantile(q, stat.Empirical, sorted, nil)
}

// popStd is the population standard deviation. gonum's StdDev is
// sample-based, and the per-day optima here are the full population of
// observed days, not a sample drawn from one.
func popStd(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}
	mean := stat.Mean(values, nil)
	variance := 0.0
	for _, v := range values {
		variance += (v - mean) * (v - mean)
	}
	return math.Sqrt(variance / float64(n))
}
