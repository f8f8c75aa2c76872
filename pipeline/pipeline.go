package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/tehqua/crypto-predict/chart"
	"github.com/tehqua/crypto-predict/kline"
	"github.com/tehqua/crypto-predict/logger"
	"github.com/tehqua/crypto-predict/metrics"
	"github.com/tehqua/crypto-predict/normalize"
	"github.com/tehqua/crypto-predict/sarima"
	"github.com/tehqua/crypto-predict/stats"
	"github.com/tehqua/crypto-predict/timeseries"
)

// ErrNoSource is returned by Forecast and Symbols when no market data source
// is configured.
var ErrNoSource = errors.New("no market data source configured")

// Request identifies the series to forecast.
type Request struct {
	Symbol   string
	Interval string
	Limit    int // Candles to fetch; the source caps it
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger attaches a logger.
func WithLogger(l *logger.Logger) Option {
	return func(p *Pipeline) { p.log = l }
}

// WithMetrics attaches a metrics recorder.
func WithMetrics(r *metrics.Recorder) Option {
	return func(p *Pipeline) { p.metrics = r }
}

// WithSource attaches the market data source used by Forecast.
func WithSource(s kline.Source) Option {
	return func(p *Pipeline) { p.source = s }
}

// Pipeline runs forecast requests. It holds configuration only and is safe
// for concurrent use.
type Pipeline struct {
	opts    Options
	log     *logger.Logger
	metrics *metrics.Recorder
	source  kline.Source
}

// New creates a pipeline.
func New(opts Options, options ...Option) *Pipeline {
	p := &Pipeline{
		opts: opts.withDefaults(),
		log:  logger.Nop(),
	}
	for _, opt := range options {
		opt(p)
	}
	return p
}

// Options returns the effective configuration.
func (p *Pipeline) Options() Options {
	return p.opts
}

// Forecast fetches the requested candles from the source and runs them
// through the pipeline.
func (p *Pipeline) Forecast(ctx context.Context, req Request) (*chart.Bundle, error) {
	records, err := p.Fetch(ctx, req)
	if err != nil {
		return nil, err
	}
	return p.Run(ctx, req, records)
}

// Fetch retrieves the requested candles from the source without forecasting.
// A failed fetch is counted as a request outcome.
func (p *Pipeline) Fetch(ctx context.Context, req Request) ([]kline.Record, error) {
	if p.source == nil {
		return nil, ErrNoSource
	}

	start := time.Now()
	records, err := p.source.Klines(ctx, req.Symbol, req.Interval, req.Limit)
	p.metrics.ObserveStage(metrics.StageFetch, time.Since(start))
	if err != nil {
		p.metrics.RecordOutcome(outcome(err))
		return nil, err
	}
	return records, nil
}

// Symbols lists the tradable symbols with their last price.
func (p *Pipeline) Symbols(ctx context.Context) ([]kline.Ticker, error) {
	if p.source == nil {
		return nil, ErrNoSource
	}
	return p.source.Prices(ctx)
}

// Run forecasts from already loaded records. req.Limit is ignored.
func (p *Pipeline) Run(ctx context.Context, req Request, records []kline.Record) (*chart.Bundle, error) {
	log := p.log.With(
		logger.String("symbol", req.Symbol),
		logger.String("interval", req.Interval),
	)

	bundle, err := p.run(ctx, log, req, records)
	p.metrics.RecordOutcome(outcome(err))
	if err != nil {
		if errors.Is(err, chart.ErrMisaligned) {
			log.Error("Forecast does not line up with history", logger.Error(err))
		} else {
			log.Warn("Forecast failed", logger.Error(err))
		}
		return nil, err
	}
	return bundle, nil
}

func (p *Pipeline) run(ctx context.Context, log *logger.Logger, req Request, records []kline.Record) (*chart.Bundle, error) {
	start := time.Now()
	frame, report, err := normalize.Normalize(records, p.opts.Normalize)
	p.metrics.ObserveStage(metrics.StageNormalize, time.Since(start))
	for _, w := range report.Warnings {
		log.Warn("Normalization warning", logger.String("detail", w))
	}
	for col, n := range report.Imputed {
		p.metrics.RecordImputed(col, n)
	}
	if err != nil {
		return nil, err
	}

	series := frame.CloseSeries()

	start = time.Now()
	d := stats.NDiffs(series, p.opts.Stationarity)
	p.metrics.ObserveStage(metrics.StageDiff, time.Since(start))
	p.metrics.RecordDiffOrder(d)

	order := sarima.SeasonalOrder(d, p.opts.SeasonalPeriod)
	log.Debug("Selected model order",
		logger.Int("d", d),
		logger.String("order", order.String()),
		logger.Int("observations", frame.Len()),
		logger.Float64("close_std", series.Std()))

	start = time.Now()
	model, err := p.fit(ctx, series, order)
	fitTime := time.Since(start)
	p.metrics.ObserveStage(metrics.StageFit, fitTime)
	if err != nil {
		return nil, err
	}
	logSummary(log, model.Summary(), fitTime)

	start = time.Now()
	fc, err := model.Forecast(p.opts.Horizon, p.opts.Alpha)
	p.metrics.ObserveStage(metrics.StageForecast, time.Since(start))
	if err != nil {
		return nil, err
	}

	start = time.Now()
	bundle, err := chart.Assemble(frame, fc, chart.Meta{
		Symbol:   req.Symbol,
		Interval: req.Interval,
		Model:    order.String(),
		Warnings: report.Warnings,
	})
	p.metrics.ObserveStage(metrics.StageAssemble, time.Since(start))
	if err != nil {
		return nil, err
	}

	log.Info("Forecast complete",
		logger.String("order", order.String()),
		logger.Int("history", len(bundle.History)),
		logger.Int("horizon", len(bundle.Forecast)),
		logger.Float64("last_close", bundle.LastClose()),
		logger.Int("imputed", report.ImputedTotal()))
	return bundle, nil
}

// fit estimates the model, bounded by the caller's context and FitTimeout.
// Expiry stops the optimizer and is reported as sarima.ErrModelFit.
func (p *Pipeline) fit(ctx context.Context, series *timeseries.Series, order sarima.Order) (*sarima.Model, error) {
	if p.opts.FitTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.opts.FitTimeout)
		defer cancel()
	}
	return sarima.FitContext(ctx, series, order, p.opts.Fit)
}

func logSummary(log *logger.Logger, s *sarima.Summary, took time.Duration) {
	fields := []logger.Field{
		logger.String("order", s.Order.String()),
		logger.Float64("aic", s.AIC),
		logger.Float64("bic", s.BIC),
		logger.Float64("variance", s.Variance),
		logger.Int("nobs", s.NObs),
		logger.Bool("degenerate", s.Degenerate),
		logger.Duration("fit_ms", took),
	}
	if s.LjungBox != nil {
		fields = append(fields,
			logger.Float64("ljung_box_q", s.LjungBox.Statistic),
			logger.Float64("ljung_box_p", s.LjungBox.PValue))
	}
	log.Debug("Model fitted", fields...)
}

// outcome labels a request result for metrics.
func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, normalize.ErrInsufficientData):
		return "insufficient_data"
	case errors.Is(err, sarima.ErrModelFit):
		return "model_fit"
	case errors.Is(err, kline.ErrUpstream):
		return "upstream"
	case errors.Is(err, chart.ErrMisaligned):
		return "misaligned"
	default:
		return "error"
	}
}
