package stats

import (
	"gonum.org/v1/gonum/floats"

	"github.com/tehqua/crypto-predict/timeseries"
)

// ACF returns the sample autocorrelations of series for lags 0..maxLag,
// normalized by the lag-0 autocovariance. maxLag is capped at n-1. A
// constant or empty series has no autocorrelation and yields nil.
func ACF(series *timeseries.Series, maxLag int) []float64 {
	n := series.Len()
	if maxLag > n-1 {
		maxLag = n - 1
	}
	if maxLag < 0 {
		return nil
	}

	centered := make([]float64, n)
	copy(centered, series.Values)
	floats.AddConst(-series.Mean(), centered)

	c0 := floats.Dot(centered, centered)
	if c0 == 0 {
		return nil
	}

	acf := make([]float64, maxLag+1)
	for k := range acf {
		acf[k] = floats.Dot(centered[k:], centered[:n-k]) / c0
	}
	return acf
}
