package pipeline

import (
	"time"

	"github.com/tehqua/crypto-predict/config"
	"github.com/tehqua/crypto-predict/normalize"
	"github.com/tehqua/crypto-predict/sarima"
	"github.com/tehqua/crypto-predict/stats"
)

// Options holds the configuration of a forecast run.
type Options struct {
	Normalize      normalize.Options
	Stationarity   stats.NDiffsOptions
	SeasonalPeriod int               // Seasonal period m (default: 12)
	Fit            sarima.FitOptions // Estimation settings
	Horizon        int               // Forecast steps (default: 30)
	Alpha          float64           // Interval covers 1 - Alpha (default: 0.05)
	FitTimeout     time.Duration     // Zero disables the timeout
}

// DefaultOptions returns the default pipeline configuration.
func DefaultOptions() Options {
	return Options{
		Normalize:      normalize.DefaultOptions(),
		Stationarity:   stats.NDiffsOptions{MaxD: 2, Test: stats.TestADF, Alpha: 0.05},
		SeasonalPeriod: sarima.DefaultPeriod,
		Fit:            sarima.DefaultFitOptions(),
		Horizon:        30,
		Alpha:          0.05,
	}
}

// OptionsFromConfig maps the pipeline section of the configuration file.
func OptionsFromConfig(cfg config.PipelineConfig) (Options, error) {
	imp, err := normalize.ImputerByName(cfg.Imputation)
	if err != nil {
		return Options{}, err
	}

	opts := DefaultOptions()
	opts.Normalize = normalize.Options{
		MinObservations: cfg.MinObservations,
		Imputer:         imp,
	}
	opts.Stationarity = stats.NDiffsOptions{
		MaxD:  cfg.MaxD,
		Test:  cfg.Stationarity,
		Alpha: cfg.StationAlpha,
	}
	opts.SeasonalPeriod = cfg.SeasonalPeriod
	opts.Fit.MaxIterations = cfg.MaxIterations
	opts.Horizon = cfg.Horizon
	opts.Alpha = cfg.Alpha
	opts.FitTimeout = cfg.FitTimeout
	return opts, nil
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.SeasonalPeriod < 2 {
		o.SeasonalPeriod = d.SeasonalPeriod
	}
	if o.Horizon <= 0 {
		o.Horizon = d.Horizon
	}
	if o.Alpha <= 0 || o.Alpha >= 1 {
		o.Alpha = d.Alpha
	}
	return o
}
