// Package stats provides unit root tests, differencing order selection and
// residual diagnostics for time series.
//
// # Stationarity Tests
//
//	// Augmented Dickey-Fuller test
//	// H0: Series has unit root (non-stationary)
//	adf, err := stats.ADF(series, stats.ADFOptions{})
//	fmt.Printf("ADF: stat=%.4f, p=%.4f, stationary=%v\n",
//	    adf.Statistic, adf.PValue, adf.IsStationary)
//
//	// KPSS test
//	// H0: Series is stationary
//	kpss, err := stats.KPSS(series, "c", 0)
//
//	// Phillips-Perron test
//	pp, err := stats.PhillipsPerron(series, 0)
//
// Test regressions are solved with a Cholesky factorization of the column
// scaled normal equations. A regression that is singular or fits exactly
// returns ErrSingular; that happens for exact polynomial trends, which carry
// a unit root by construction.
//
// P-values are interpolated from the Dickey-Fuller and KPSS tables and are
// therefore bounded by the table range.
//
// # Differencing Order
//
//	d := stats.NDiffs(series, stats.NDiffsOptions{MaxD: 2, Test: stats.TestADF, Alpha: 0.05})
//
// NDiffs repeats the test on successively differenced series until the test
// stops calling for a difference.
//
// # Residual Diagnostics
//
//	lb := stats.LjungBox(residuals, 10, nParams)
//	if lb.PValue > 0.05 {
//	    // Residuals are white noise (good)
//	}
//
//	dw := stats.DurbinWatson(residuals.Values)
//	ic := stats.CalculateIC(logLik, nObs, nParams)
package stats
