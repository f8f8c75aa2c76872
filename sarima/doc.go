// Package sarima implements Seasonal ARIMA (SARIMA) models for time series with seasonality.
//
// SARIMA models extend ARIMA to handle seasonal patterns. A SARIMA(p,d,q)(P,D,Q)[m] model includes:
//   - Non-seasonal components: AR(p), I(d), MA(q)
//   - Seasonal components: SAR(P), SI(D), SMA(Q) at seasonal period m
//
// The multiplicative lag polynomials are expanded and multiplied by the
// differencing operator (1-B)^d (1-B^m)^D, so forecasts and their variance
// come straight from the integrated model on the original scale.
//
// # Basic Usage
//
//	order := sarima.SeasonalOrder(d, sarima.DefaultPeriod) // (1,d,1)(1,d,1)[12]
//	model, err := sarima.Fit(series, order, sarima.DefaultFitOptions())
//	if errors.Is(err, sarima.ErrModelFit) {
//	    // too short, no variation, or a non-finite likelihood
//	}
//
//	fc, err := model.Forecast(30, 0.05) // 95% interval
//	for h := range fc.Mean {
//	    fmt.Println(fc.Timestamps[h], fc.Lower[h], fc.Mean[h], fc.Upper[h])
//	}
//
// # Estimation
//
// Parameters are estimated by conditional sum of squares with gonum's
// Nelder-Mead simplex. Coefficients are optimized as unconstrained reals and
// mapped through partial autocorrelations, which keeps the AR part stationary
// and the MA part invertible. Fitting is deterministic.
//
// A differenced series without variation, such as an exact linear trend after
// one difference, skips optimization: the model continues the series exactly
// and reports zero variance.
//
// # Model Selection
//
//	fmt.Printf("AIC: %.2f, AICc: %.2f, BIC: %.2f\n",
//	    model.AIC, model.AICc, model.BIC)
//	summary := model.Summary() // includes a Ljung-Box test on the residuals
package sarima
