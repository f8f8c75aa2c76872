// Package pipeline runs one forecast request end to end.
//
// A run normalizes raw kline records, selects the differencing order of the
// close prices with a unit root test, fits the seasonal model
// (1,d,1)x(1,d,1,m), forecasts the configured horizon and assembles the
// chart bundle. Each run is independent: nothing is cached between requests
// and the fitted model never outlives the call.
//
// The fit is the only potentially long step. When FitTimeout is set it is
// bounded by that timeout and by the caller's context; expiry is reported as
// sarima.ErrModelFit.
//
// Example usage:
//
//	p := pipeline.New(pipeline.DefaultOptions(),
//		pipeline.WithSource(kline.NewClient()),
//		pipeline.WithLogger(log),
//	)
//	bundle, err := p.Forecast(ctx, pipeline.Request{
//		Symbol:   "BTCUSDT",
//		Interval: "1d",
//		Limit:    200,
//	})
package pipeline
