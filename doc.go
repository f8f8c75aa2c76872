// Package cryptopredict forecasts crypto close prices from exchange klines
// with a seasonal ARIMA model and returns chart-ready history plus a
// prediction band.
//
// A request flows through four stages:
//
//   - normalize: raw Binance kline rows to a clean, time-ordered frame, with
//     missing numeric values imputed and reported as warnings
//   - stats: a repeated unit root test (ADF by default) picks the
//     differencing order d of the close prices
//   - sarima: a (1,d,1)x(1,d,1,m) model is fitted by conditional least
//     squares and forecasts the horizon with a prediction interval
//   - chart: history and forecast are joined on one time axis
//
// # Quick Start
//
//	p := pipeline.New(pipeline.DefaultOptions(), pipeline.WithSource(kline.NewClient()))
//	bundle, err := p.Forecast(ctx, pipeline.Request{Symbol: "BTCUSDT", Interval: "1d", Limit: 200})
//
// From a Binance kline dump:
//
//	records, _ := kline.LoadFile("BTCUSDT-1d-2024.csv")
//	bundle, err := p.Run(ctx, pipeline.Request{Symbol: "BTCUSDT", Interval: "1d"}, records)
//
// # Packages
//
//   - timeseries: series type, differencing and cadence
//   - kline: raw records, CSV/JSON loading and the Binance REST client
//   - normalize: cleaning and imputation
//   - stats: unit root tests, ndiffs and residual diagnostics
//   - sarima: estimation and forecasting
//   - chart: bundle assembly and CSV export
//   - pipeline: request orchestration
//   - config, logger, metrics, server: service plumbing
//
// # References
//
//   - Hyndman, R.J., & Athanasopoulos, G. (2021). Forecasting: Principles and Practice
//   - Box, G. E. P., & Jenkins, G. M. (1976). Time Series Analysis: Forecasting and Control
package cryptopredict
