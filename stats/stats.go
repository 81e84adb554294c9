// Package stats summarizes streams of measurements such as search time per
// move or nodes per search.
package stats

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/stat"
)

const (
	Epsilon = 1e-6
)

func FuzzyEqual(a, b float64) bool {
	return math.Abs(a-b) < Epsilon
}

// Summary accumulates a running mean and variance with Welford's algorithm.
// It also keeps the raw samples for quantiles and histograms.
type Summary struct {
	n    int
	mean float64
	m2   float64
	min  float64
	max  float64

	samples []float64
}

func (s *Summary) Push(val float64) {
	s.n++
	if s.n == 1 {
		s.min, s.max = val, val
	} else {
		s.min = math.Min(s.min, val)
		s.max = math.Max(s.max, val)
	}
	delta := val - s.mean
	s.mean += delta / float64(s.n)
	s.m2 += delta * (val - s.mean)
	s.samples = append(s.samples, val)
}

func (s *Summary) Count() int { return s.n }

func (s *Summary) Mean() float64 { return s.mean }

// Variance is the sample variance, zero with fewer than two samples.
func (s *Summary) Variance() float64 {
	if s.n <= 1 {
		return 0.0
	}
	return s.m2 / float64(s.n-1)
}

func (s *Summary) Stdev() float64 {
	return math.Sqrt(s.Variance())
}

func (s *Summary) Min() float64 { return s.min }

func (s *Summary) Max() float64 { return s.max }

// StandardError returns the standard error of the mean.
func (s *Summary) StandardError() float64 {
	if s.n == 0 {
		return 0.0
	}
	return math.Sqrt(s.Variance() / float64(s.n))
}

// ConfidenceInterval returns the half-width of the interval around the mean
// at the given confidence, in percent.
func (s *Summary) ConfidenceInterval(pct float64) float64 {
	return ZVal(pct) * s.StandardError()
}

// Quantile returns the empirical p-quantile of the samples, for p in [0, 1].
func (s *Summary) Quantile(p float64) float64 {
	if s.n == 0 {
		return 0.0
	}
	sorted := slices.Clone(s.samples)
	slices.Sort(sorted)
	return stat.Quantile(p, stat.Empirical, sorted, nil)
}

// Samples returns a copy of every pushed value in push order.
func (s *Summary) Samples() []float64 {
	return slices.Clone(s.samples)
}
