package stats

import "sort"

// Dickey-Fuller tau quantiles by sample size, as tabulated by Fuller (1976)
// and used by R's tseries. Rows follow unitRootProbs, columns unitRootSizes.
var (
	unitRootSizes = []float64{25, 50, 100, 250, 500, 100000}
	unitRootProbs = []float64{0.01, 0.025, 0.05, 0.10, 0.90, 0.95, 0.975, 0.99}

	// Constant and linear trend.
	tauTrend = [][]float64{
		{-4.38, -4.15, -4.04, -3.99, -3.98, -3.96},
		{-3.95, -3.80, -3.73, -3.69, -3.68, -3.66},
		{-3.60, -3.50, -3.45, -3.43, -3.42, -3.41},
		{-3.24, -3.18, -3.15, -3.13, -3.13, -3.12},
		{-1.14, -1.19, -1.22, -1.23, -1.24, -1.25},
		{-0.80, -0.87, -0.90, -0.92, -0.93, -0.94},
		{-0.50, -0.58, -0.62, -0.64, -0.65, -0.66},
		{-0.15, -0.24, -0.28, -0.31, -0.32, -0.33},
	}

	// Constant only.
	tauConstant = [][]float64{
		{-3.75, -3.58, -3.51, -3.46, -3.44, -3.43},
		{-3.33, -3.22, -3.17, -3.14, -3.13, -3.12},
		{-3.00, -2.93, -2.89, -2.88, -2.87, -2.86},
		{-2.62, -2.60, -2.58, -2.57, -2.57, -2.57},
		{-0.37, -0.40, -0.42, -0.42, -0.43, -0.44},
		{0.00, -0.03, -0.05, -0.06, -0.07, -0.07},
		{0.34, 0.29, 0.26, 0.24, 0.24, 0.23},
		{0.72, 0.66, 0.63, 0.62, 0.61, 0.60},
	}
)

// KPSS upper-tail critical values, ordered by increasing statistic.
var (
	kpssLevelCrit = []float64{0.347, 0.463, 0.574, 0.739}
	kpssTrendCrit = []float64{0.119, 0.146, 0.176, 0.216}
	kpssProbs     = []float64{0.10, 0.05, 0.025, 0.01}
)

// unitRootPValue interpolates the p-value of a Dickey-Fuller type statistic
// for a regression on n observations. Results are clamped to [0.01, 0.99].
func unitRootPValue(stat float64, n int, regression string) float64 {
	table := tauConstant
	if regression == "ct" {
		table = tauTrend
	}

	quantiles := make([]float64, len(unitRootProbs))
	for i, row := range table {
		quantiles[i] = interpolate(unitRootSizes, row, float64(n))
	}
	return interpolate(quantiles, unitRootProbs, stat)
}

// kpssPValue interpolates the KPSS p-value. Results are clamped to [0.01, 0.10].
func kpssPValue(stat float64, regression string) float64 {
	crit := kpssLevelCrit
	if regression == "ct" {
		crit = kpssTrendCrit
	}
	return interpolate(crit, kpssProbs, stat)
}

// interpolate evaluates the piecewise linear function through (xs, ys) at x.
// xs must be increasing. Outside the range the nearest endpoint value is used.
func interpolate(xs, ys []float64, x float64) float64 {
	n := len(xs)
	if x <= xs[0] {
		return ys[0]
	}
	if x >= xs[n-1] {
		return ys[n-1]
	}
	i := sort.SearchFloat64s(xs, x)
	if xs[i] == x {
		return ys[i]
	}
	x0, x1 := xs[i-1], xs[i]
	y0, y1 := ys[i-1], ys[i]
	return y0 + (y1-y0)*(x-x0)/(x1-x0)
}
