// Package timeseries provides time series data structures and utilities.
//
// The Series type pairs strictly increasing timestamps with float64 values
// and carries the transformations the forecasting pipeline needs.
//
// # Creating a Series
//
// Create a time series from a slice, indexed hourly from the Unix epoch:
//
//	values := []float64{100, 102, 105, 103, 108, 110}
//	series := timeseries.New(values)
//
// # Basic Statistics
//
//	mean := series.Mean()
//	std := series.Std()
//	flat := series.IsConstant()
//
// # Transformations
//
//	diff := series.Diff()    // First difference
//	diff2 := series.DiffN(2) // Second-order difference
//
// # Forecast Index
//
// Cadence infers the sampling step as the median spacing between consecutive
// timestamps, and Extend continues the index past the last observation:
//
//	step, err := series.Cadence()
//	future, err := series.Extend(30)
package timeseries
