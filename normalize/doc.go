// Package normalize turns raw exchange klines into a cleaned frame ready for
// modelling.
//
// Normalize parses the open time of every record as the index, coerces the
// close, volume and taker-buy base volume columns to float64 with exact
// decimal parsing, and fills values that fail to parse with an Imputer:
//
//	frame, report, err := normalize.Normalize(records, normalize.DefaultOptions())
//	if errors.Is(err, normalize.ErrInsufficientData) {
//	    // ask for more history
//	}
//	for _, w := range report.Warnings {
//	    log.Println(w)
//	}
//
// MeanImputer is the default. ForwardFill and Linear can be swapped in
// through Options.Imputer without touching the rest of the pipeline.
package normalize
