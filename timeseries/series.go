// Package timeseries provides core time series data structures and operations.
package timeseries

import (
	"errors"
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

var (
	// ErrNotIncreasing is returned when timestamps are not strictly increasing.
	ErrNotIncreasing = errors.New("timestamps must be strictly increasing")
	// ErrNoCadence is returned when a series is too short to infer its spacing.
	ErrNoCadence = errors.New("at least two timestamps are required to infer cadence")
)

// Series represents a time series with timestamps and values.
type Series struct {
	Timestamps []time.Time
	Values     []float64
	Name       string
}

// epoch anchors the synthetic index used by New so results are reproducible.
var epoch = time.Unix(0, 0).UTC()

// New creates a new time series from values on an hourly index starting at the Unix epoch.
func New(values []float64) *Series {
	timestamps := make([]time.Time, len(values))
	for i := range timestamps {
		timestamps[i] = epoch.Add(time.Duration(i) * time.Hour)
	}
	return &Series{
		Timestamps: timestamps,
		Values:     values,
	}
}

// Len returns the length of the series.
func (s *Series) Len() int {
	return len(s.Values)
}

// Mean calculates the arithmetic mean of the series.
func (s *Series) Mean() float64 {
	if len(s.Values) == 0 {
		return 0
	}
	return stat.Mean(s.Values, nil)
}

// Variance calculates the sample variance of the series.
func (s *Series) Variance() float64 {
	if len(s.Values) < 2 {
		return 0
	}
	return stat.Variance(s.Values, nil)
}

// Std calculates the standard deviation of the series.
func (s *Series) Std() float64 {
	return math.Sqrt(s.Variance())
}

// Min returns the minimum value in the series.
func (s *Series) Min() float64 {
	if len(s.Values) == 0 {
		return math.NaN()
	}
	return floats.Min(s.Values)
}

// Max returns the maximum value in the series.
func (s *Series) Max() float64 {
	if len(s.Values) == 0 {
		return math.NaN()
	}
	return floats.Max(s.Values)
}

// IsConstant reports whether every value equals the first one.
// Empty and single-point series are constant.
func (s *Series) IsConstant() bool {
	for _, v := range s.Values {
		if v != s.Values[0] {
			return false
		}
	}
	return true
}

// Diff calculates the first difference of the series.
func (s *Series) Diff() *Series {
	return s.lagDiff(1, "_diff")
}

// DiffN applies first differencing n times.
func (s *Series) DiffN(n int) *Series {
	result := s
	for i := 0; i < n; i++ {
		result = result.Diff()
	}
	if n <= 0 {
		return s.Copy()
	}
	return result
}

func (s *Series) lagDiff(lag int, suffix string) *Series {
	if lag <= 0 || len(s.Values) <= lag {
		return &Series{Values: []float64{}, Name: s.Name + suffix}
	}

	result := make([]float64, len(s.Values)-lag)
	for i := lag; i < len(s.Values); i++ {
		result[i-lag] = s.Values[i] - s.Values[i-lag]
	}

	timestamps := make([]time.Time, len(result))
	if len(s.Timestamps) == len(s.Values) {
		copy(timestamps, s.Timestamps[lag:])
	}

	return &Series{
		Timestamps: timestamps,
		Values:     result,
		Name:       s.Name + suffix,
	}
}

// Copy creates a deep copy of the series.
func (s *Series) Copy() *Series {
	values := make([]float64, len(s.Values))
	copy(values, s.Values)

	timestamps := make([]time.Time, len(s.Timestamps))
	copy(timestamps, s.Timestamps)

	return &Series{
		Timestamps: timestamps,
		Values:     values,
		Name:       s.Name,
	}
}

// Cadence returns the sampling step of the series: the median spacing between
// consecutive timestamps. The median keeps a single gap in the window from
// stretching the forecast grid.
func (s *Series) Cadence() (time.Duration, error) {
	if len(s.Timestamps) < 2 {
		return 0, ErrNoCadence
	}
	steps := make([]float64, len(s.Timestamps)-1)
	for i := 1; i < len(s.Timestamps); i++ {
		steps[i-1] = float64(s.Timestamps[i].Sub(s.Timestamps[i-1]))
	}
	sort.Float64s(steps)
	step := time.Duration(stat.Quantile(0.5, stat.Empirical, steps, nil))
	if step <= 0 {
		return 0, ErrNotIncreasing
	}
	return step, nil
}

// Extend returns the next steps timestamps after the last one, spaced by the
// series cadence.
func (s *Series) Extend(steps int) ([]time.Time, error) {
	step, err := s.Cadence()
	if err != nil {
		return nil, err
	}
	last := s.Timestamps[len(s.Timestamps)-1]
	future := make([]time.Time, steps)
	for h := range future {
		future[h] = last.Add(time.Duration(h+1) * step)
	}
	return future, nil
}
