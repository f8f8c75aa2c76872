package sarima

import (
	"errors"
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/stat/distuv"
)

// Forecast holds point forecasts with a two-sided prediction interval. All
// slices have the same length and Timestamps continue the fitted series at
// its cadence.
type Forecast struct {
	Timestamps []time.Time
	Mean       []float64
	Lower      []float64
	Upper      []float64
	Alpha      float64 // Interval covers 1 - Alpha
}

// Len returns the forecast horizon.
func (f *Forecast) Len() int {
	return len(f.Mean)
}

// Forecast produces steps-ahead forecasts with a (1-alpha) prediction
// interval. The interval is mean +/- z * sqrt(variance * sum(psi_j^2)), where
// psi are the MA(infinity) weights of the integrated model, so its width
// never shrinks with the horizon. A forecast containing NaN or Inf is
// reported as ErrModelFit.
func (m *Model) Forecast(steps int, alpha float64) (*Forecast, error) {
	if steps < 1 {
		return nil, errors.New("steps must be at least 1")
	}
	if alpha <= 0 || alpha >= 1 {
		return nil, fmt.Errorf("alpha must be in (0, 1), got %v", alpha)
	}

	timestamps, err := m.data.Extend(steps)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrModelFit, err)
	}

	mean := m.pointForecast(steps)
	psi := m.psiWeights(steps)
	z := distuv.UnitNormal.Quantile(1 - alpha/2)

	lower := make([]float64, steps)
	upper := make([]float64, steps)
	cum := 0.0
	for h := 0; h < steps; h++ {
		cum += psi[h] * psi[h]
		half := z * math.Sqrt(m.Variance*cum)
		lower[h] = mean[h] - half
		upper[h] = mean[h] + half
	}

	for h := 0; h < steps; h++ {
		for _, v := range [...]float64{mean[h], lower[h], upper[h]} {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, fmt.Errorf("%w: forecast is not finite at step %d", ErrModelFit, h+1)
			}
		}
	}

	return &Forecast{
		Timestamps: timestamps,
		Mean:       mean,
		Lower:      lower,
		Upper:      upper,
		Alpha:      alpha,
	}, nil
}

// pointForecast runs the model recursion forward with future innovations set
// to zero:
// y_t = c - sum(arFull_i * y_{t-i}) + sum(maFull_j * e_{t-j}).
func (m *Model) pointForecast(steps int) []float64 {
	y := m.data.Values
	n := len(y)

	ext := make([]float64, n+steps)
	copy(ext, y)
	eps := make([]float64, n+steps)
	copy(eps, m.residuals)

	for t := n; t < n+steps; t++ {
		v := m.constant
		for i := 1; i < len(m.arFull) && i <= t; i++ {
			v -= m.arFull[i] * ext[t-i]
		}
		for j := 1; j < len(m.maFull) && j <= t; j++ {
			v += m.maFull[j] * eps[t-j]
		}
		ext[t] = v
	}

	out := make([]float64, steps)
	copy(out, ext[n:])
	return out
}

// psiWeights returns the first steps MA(infinity) weights of
// maFull(B) / arFull(B).
func (m *Model) psiWeights(steps int) []float64 {
	psi := make([]float64, steps)
	psi[0] = 1
	for j := 1; j < steps; j++ {
		v := 0.0
		if j < len(m.maFull) {
			v = m.maFull[j]
		}
		for i := 1; i < len(m.arFull) && i <= j; i++ {
			v -= m.arFull[i] * psi[j-i]
		}
		psi[j] = v
	}
	return psi
}
