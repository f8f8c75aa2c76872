package stats

import (
	"fmt"
	"math"

	"github.com/tehqua/crypto-predict/timeseries"
)

// ADFOptions configures the Augmented Dickey-Fuller test.
type ADFOptions struct {
	Lags       int    // Lagged differences (default: trunc((n-1)^(1/3)))
	Regression string // "ct" for constant and trend (default), "c" for constant only
}

// ADFResult represents the result of an Augmented Dickey-Fuller test.
type ADFResult struct {
	Statistic    float64
	PValue       float64
	Lags         int
	NObs         int
	Regression   string
	CriticalVals map[string]float64 // Critical values at 1%, 5%, 10%
	IsStationary bool
}

// ADF performs the Augmented Dickey-Fuller test for unit root.
// The null hypothesis is that the series has a unit root (is non-stationary).
// If p-value < 0.05, we reject the null and conclude the series is stationary.
//
// The regression is delta_y_t = alpha + beta*y_{t-1} [+ gamma*t] + sum(delta_i * delta_y_{t-i}).
// The p-value is interpolated from the Dickey-Fuller tau table for the
// number of differences, so it is bounded to [0.01, 0.99].
func ADF(series *timeseries.Series, opts ADFOptions) (*ADFResult, error) {
	n := series.Len()
	if n < 10 {
		return nil, ErrTooShort
	}

	regression := opts.Regression
	switch regression {
	case "":
		regression = "ct"
	case "c", "ct":
	default:
		return nil, fmt.Errorf("unknown ADF regression %q", regression)
	}

	lags := opts.Lags
	if lags <= 0 {
		lags = int(math.Trunc(math.Pow(float64(n-1), 1.0/3.0)))
	}

	diff := series.Diff()
	m := diff.Len()
	nObs := m - lags
	if nObs < 10 {
		return nil, ErrTooShort
	}

	y := make([]float64, nObs)
	x := make([][]float64, nObs)
	for i := 0; i < nObs; i++ {
		t := i + lags
		y[i] = diff.Values[t]

		// x[i] = [y_{t-1}, 1, (t), delta_y_{t-1}, ..., delta_y_{t-lags}]
		row := make([]float64, 0, 3+lags)
		row = append(row, series.Values[t], 1)
		if regression == "ct" {
			row = append(row, float64(t+1))
		}
		for j := 1; j <= lags; j++ {
			row = append(row, diff.Values[t-j])
		}
		x[i] = row
	}

	fit, err := olsRegression(x, y)
	if err != nil {
		return nil, err
	}
	tStat, err := fit.tStat(0)
	if err != nil {
		return nil, err
	}

	criticalVals := map[string]float64{
		"1%":  unitRootQuantile(0, m, regression),
		"5%":  unitRootQuantile(2, m, regression),
		"10%": unitRootQuantile(3, m, regression),
	}

	pValue := unitRootPValue(tStat, m, regression)

	return &ADFResult{
		Statistic:    tStat,
		PValue:       pValue,
		Lags:         lags,
		NObs:         nObs,
		Regression:   regression,
		CriticalVals: criticalVals,
		IsStationary: pValue < 0.05,
	}, nil
}

func unitRootQuantile(col, n int, regression string) float64 {
	table := tauConstant
	if regression == "ct" {
		table = tauTrend
	}
	return interpolate(unitRootSizes, table[col], float64(n))
}

// KPSSResult represents the result of a KPSS test.
type KPSSResult struct {
	Statistic    float64
	PValue       float64
	Lags         int
	CriticalVals map[string]float64
	IsStationary bool
}

// KPSS performs the Kwiatkowski-Phillips-Schmidt-Shin test for stationarity.
// The null hypothesis is that the series is stationary.
// If p-value < 0.05, we reject the null and conclude the series is non-stationary.
// nlags <= 0 selects trunc(4*(n/100)^0.25) Newey-West lags.
func KPSS(series *timeseries.Series, regression string, nlags int) (*KPSSResult, error) {
	n := series.Len()
	if n < 10 {
		return nil, ErrTooShort
	}

	if nlags <= 0 {
		nlags = int(math.Trunc(4 * math.Pow(float64(n)/100, 0.25)))
	}
	if nlags >= n {
		nlags = n - 1
	}

	residuals := make([]float64, n)
	if regression == "ct" {
		// Simple linear detrending: y = a + b*t + residual
		sumT, sumY, sumTY, sumT2 := 0.0, 0.0, 0.0, 0.0
		for i, v := range series.Values {
			t := float64(i)
			sumT += t
			sumY += v
			sumTY += t * v
			sumT2 += t * t
		}
		nf := float64(n)
		b := (nf*sumTY - sumT*sumY) / (nf*sumT2 - sumT*sumT)
		a := (sumY - b*sumT) / nf

		for i, v := range series.Values {
			residuals[i] = v - a - b*float64(i)
		}
	} else {
		regression = "c"
		mean := series.Mean()
		for i, v := range series.Values {
			residuals[i] = v - mean
		}
	}

	// Long-run variance with Bartlett weights
	s2 := 0.0
	for _, r := range residuals {
		s2 += r * r
	}
	for l := 1; l <= nlags; l++ {
		cov := 0.0
		for i := l; i < n; i++ {
			cov += residuals[i] * residuals[i-l]
		}
		weight := 1.0 - float64(l)/float64(nlags+1)
		s2 += 2 * weight * cov
	}
	s2 /= float64(n)

	if s2 <= 0 {
		s2 = 1e-10
	}

	etaSq := 0.0
	cum := 0.0
	for _, r := range residuals {
		cum += r
		etaSq += cum * cum
	}
	kpssStat := etaSq / (float64(n) * float64(n) * s2)

	var criticalVals map[string]float64
	if regression == "ct" {
		criticalVals = map[string]float64{"10%": 0.119, "5%": 0.146, "1%": 0.216}
	} else {
		criticalVals = map[string]float64{"10%": 0.347, "5%": 0.463, "1%": 0.739}
	}

	pValue := kpssPValue(kpssStat, regression)

	return &KPSSResult{
		Statistic:    kpssStat,
		PValue:       pValue,
		Lags:         nlags,
		CriticalVals: criticalVals,
		IsStationary: pValue >= 0.05,
	}, nil
}

// PhillipsPerronResult represents the result of a Phillips-Perron test.
type PhillipsPerronResult struct {
	Statistic    float64
	PValue       float64
	Lags         int
	CriticalVals map[string]float64
	IsStationary bool
}

// PhillipsPerron performs the Phillips-Perron test for unit root.
// Similar to ADF but corrects the t statistic for serial correlation with a
// Newey-West long-run variance instead of adding lagged differences.
func PhillipsPerron(series *timeseries.Series, nlags int) (*PhillipsPerronResult, error) {
	n := series.Len()
	if n < 10 {
		return nil, ErrTooShort
	}

	if nlags <= 0 {
		nlags = int(math.Trunc(4 * math.Pow(float64(n)/100, 0.25)))
	}

	diff := series.Diff()

	// delta_y_t = beta * y_{t-1} + alpha + epsilon
	nObs := n - 1
	y := diff.Values
	x := make([][]float64, nObs)
	for i := 0; i < nObs; i++ {
		x[i] = []float64{series.Values[i], 1}
	}

	fit, err := olsRegression(x, y)
	if err != nil {
		return nil, err
	}
	tStat, err := fit.tStat(0)
	if err != nil {
		return nil, err
	}

	gamma0 := 0.0
	for _, r := range fit.Residuals {
		gamma0 += r * r
	}
	gamma0 /= float64(nObs)

	lambda2 := gamma0
	for l := 1; l <= nlags; l++ {
		gammaL := 0.0
		for i := l; i < nObs; i++ {
			gammaL += fit.Residuals[i] * fit.Residuals[i-l]
		}
		gammaL /= float64(nObs)
		weight := 1.0 - float64(l)/float64(nlags+1)
		lambda2 += 2 * weight * gammaL
	}
	if lambda2 <= 0 {
		return nil, ErrSingular
	}

	xMean := 0.0
	for i := 0; i < nObs; i++ {
		xMean += x[i][0]
	}
	xMean /= float64(nObs)

	sumXDev2 := 0.0
	for i := 0; i < nObs; i++ {
		d := x[i][0] - xMean
		sumXDev2 += d * d
	}

	correction := (lambda2 - gamma0) * float64(nObs) / (2 * math.Sqrt(lambda2) * math.Sqrt(sumXDev2))
	ppStat := math.Sqrt(gamma0/lambda2)*tStat - correction

	criticalVals := map[string]float64{
		"1%":  unitRootQuantile(0, nObs, "c"),
		"5%":  unitRootQuantile(2, nObs, "c"),
		"10%": unitRootQuantile(3, nObs, "c"),
	}

	pValue := unitRootPValue(ppStat, nObs, "c")

	return &PhillipsPerronResult{
		Statistic:    ppStat,
		PValue:       pValue,
		Lags:         nlags,
		CriticalVals: criticalVals,
		IsStationary: pValue < 0.05,
	}, nil
}
