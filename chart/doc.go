// Package chart combines a cleaned price history with a model forecast into a
// single read-only bundle for presentation.
//
// Assemble checks that the forecast continues the history on the same time
// grid: the first forecast timestamp must sit exactly one cadence after the
// last observation and the rest must follow at that cadence. A violation is a
// programming error upstream and is reported as ErrMisaligned.
//
// Each history point also carries the volume pressure split derived from the
// taker-buy volume:
//
//	sell volume  = volume - taker buy base volume
//	buy dominant = taker buy base volume > sell volume
//
// Example usage:
//
//	bundle, err := chart.Assemble(frame, forecast, chart.Meta{
//		Symbol:   "BTCUSDT",
//		Interval: "1d",
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//	chart.WriteCSV(os.Stdout, bundle)
package chart
