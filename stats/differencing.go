package stats

import (
	"errors"
	"fmt"

	"github.com/tehqua/crypto-predict/timeseries"
)

// Unit root tests available to NDiffs.
const (
	TestADF  = "adf"
	TestKPSS = "kpss"
	TestPP   = "pp"
)

// NDiffsOptions configures NDiffs.
type NDiffsOptions struct {
	MaxD  int     // Maximum number of differences (default: 2)
	Test  string  // "adf" (default), "kpss" or "pp"
	Alpha float64 // Significance level (default: 0.05)
}

func (o NDiffsOptions) withDefaults() NDiffsOptions {
	if o.MaxD <= 0 {
		o.MaxD = 2
	}
	if o.Test == "" {
		o.Test = TestADF
	}
	if o.Alpha <= 0 || o.Alpha >= 1 {
		o.Alpha = 0.05
	}
	return o
}

// ShouldDiff runs a single unit root test and reports whether the series
// needs another difference at significance level alpha.
//
// For ADF and PP the null is a unit root, so the series should be differenced
// when p > alpha. A test regression that is singular because the series is an
// exact polynomial in time also counts as needing a difference. For KPSS the
// null is stationarity, so the series should be differenced when p < alpha.
// ErrTooShort is returned when the test cannot run.
func ShouldDiff(series *timeseries.Series, test string, alpha float64) (bool, error) {
	switch test {
	case "", TestADF:
		res, err := ADF(series, ADFOptions{})
		if errors.Is(err, ErrSingular) {
			return true, nil
		}
		if err != nil {
			return false, err
		}
		return res.PValue > alpha, nil

	case TestPP:
		res, err := PhillipsPerron(series, 0)
		if errors.Is(err, ErrSingular) {
			return true, nil
		}
		if err != nil {
			return false, err
		}
		return res.PValue > alpha, nil

	case TestKPSS:
		res, err := KPSS(series, "c", 0)
		if err != nil {
			return false, err
		}
		return res.PValue < alpha, nil

	default:
		return false, fmt.Errorf("unknown unit root test %q", test)
	}
}

// NDiffs determines the number of first differences required for stationarity.
// The test is repeated on successively differenced series until it no longer
// calls for a difference, up to opts.MaxD. A constant series needs no
// differencing; a series that becomes constant after d differences stops the
// search at d. When a differenced series is too short to test, the last
// testable order is returned. The input is not modified.
func NDiffs(series *timeseries.Series, opts NDiffsOptions) int {
	opts = opts.withDefaults()

	if series.IsConstant() {
		return 0
	}

	dodiff, err := ShouldDiff(series, opts.Test, opts.Alpha)
	if err != nil {
		return 0
	}

	d := 0
	for dodiff && d < opts.MaxD {
		d++
		current := series.DiffN(d)
		if current.IsConstant() {
			return d
		}

		dodiff, err = ShouldDiff(current, opts.Test, opts.Alpha)
		if err != nil {
			return d - 1
		}
	}

	return d
}
