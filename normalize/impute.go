package normalize

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

// Imputer fills missing (NaN) entries of a column. Implementations return a
// new slice of the same length and leave the input untouched. A column with
// no observed values is returned unchanged.
type Imputer interface {
	Name() string
	Impute(column []float64) []float64
}

// MeanImputer replaces each missing value with the mean of the observed
// values in the same column. Missing values clustered at one end of the
// window pull that end toward the window mean.
type MeanImputer struct{}

func (MeanImputer) Name() string { return "mean" }

func (MeanImputer) Impute(column []float64) []float64 {
	out := make([]float64, len(column))
	observed := make([]float64, 0, len(column))
	for _, v := range column {
		if !math.IsNaN(v) {
			observed = append(observed, v)
		}
	}
	copy(out, column)
	if len(observed) == 0 {
		return out
	}

	mean := stat.Mean(observed, nil)
	for i, v := range out {
		if math.IsNaN(v) {
			out[i] = mean
		}
	}
	return out
}

// ForwardFill carries the last observation forward. Leading gaps take the
// first observation.
type ForwardFill struct{}

func (ForwardFill) Name() string { return "ffill" }

func (ForwardFill) Impute(column []float64) []float64 {
	out := make([]float64, len(column))
	copy(out, column)

	first := firstObserved(out)
	if first < 0 {
		return out
	}
	last := out[first]
	for i, v := range out {
		if math.IsNaN(v) {
			out[i] = last
		} else {
			last = v
		}
	}
	return out
}

// Linear interpolates between the neighbouring observations. Gaps at either
// end take the nearest observation.
type Linear struct{}

func (Linear) Name() string { return "linear" }

func (Linear) Impute(column []float64) []float64 {
	out := make([]float64, len(column))
	copy(out, column)

	prev := -1
	for i, v := range out {
		if math.IsNaN(v) {
			continue
		}
		switch {
		case prev < 0:
			for j := 0; j < i; j++ {
				out[j] = v
			}
		case i-prev > 1:
			step := (v - out[prev]) / float64(i-prev)
			for j := prev + 1; j < i; j++ {
				out[j] = out[prev] + step*float64(j-prev)
			}
		}
		prev = i
	}
	if prev >= 0 {
		for j := prev + 1; j < len(out); j++ {
			out[j] = out[prev]
		}
	}
	return out
}

func firstObserved(column []float64) int {
	for i, v := range column {
		if !math.IsNaN(v) {
			return i
		}
	}
	return -1
}

// ImputerByName resolves a configured strategy name.
func ImputerByName(name string) (Imputer, error) {
	switch name {
	case "", "mean":
		return MeanImputer{}, nil
	case "ffill":
		return ForwardFill{}, nil
	case "linear":
		return Linear{}, nil
	default:
		return nil, fmt.Errorf("unknown imputation strategy %q", name)
	}
}
