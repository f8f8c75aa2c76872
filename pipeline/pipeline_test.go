package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"reflect"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/tehqua/crypto-predict/config"
	"github.com/tehqua/crypto-predict/kline"
	"github.com/tehqua/crypto-predict/logger"
	"github.com/tehqua/crypto-predict/metrics"
	"github.com/tehqua/crypto-predict/normalize"
	"github.com/tehqua/crypto-predict/sarima"
)

var day = 24 * time.Hour

func makeRecords(n int, closeAt func(i int) float64) []kline.Record {
	start := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	records := make([]kline.Record, n)
	for i := range records {
		open := start.Add(time.Duration(i) * day)
		records[i] = kline.Record{
			OpenTime:                strconv.FormatInt(open.UnixMilli(), 10),
			Close:                   strconv.FormatFloat(closeAt(i), 'f', -1, 64),
			Volume:                  "1000",
			TakerBuyBaseAssetVolume: strconv.Itoa(400 + i%300),
			CloseTime:               strconv.FormatInt(open.Add(day).UnixMilli()-1, 10),
		}
	}
	return records
}

func seasonalRecords(n int) []kline.Record {
	rng := rand.New(rand.NewSource(42))
	noise := make([]float64, n)
	for i := range noise {
		noise[i] = 2 * rng.NormFloat64()
	}
	return makeRecords(n, func(i int) float64 {
		return 100 + 0.5*float64(i) + 20*math.Sin(2*math.Pi*float64(i)/12) + noise[i]
	})
}

type fakeSource struct {
	records []kline.Record
	tickers []kline.Ticker
	err     error
	limit   int
}

func (f *fakeSource) Klines(_ context.Context, _, _ string, limit int) ([]kline.Record, error) {
	f.limit = limit
	return f.records, f.err
}

func (f *fakeSource) Prices(context.Context) ([]kline.Ticker, error) {
	return f.tickers, f.err
}

func TestRunEndToEnd(t *testing.T) {
	var buf bytes.Buffer
	log, err := logger.NewWithWriter(&logger.Config{Level: "debug", Format: "json"}, &buf)
	if err != nil {
		t.Fatalf("logger: %v", err)
	}

	p := New(DefaultOptions(),
		WithLogger(log),
		WithMetrics(metrics.New(prometheus.NewRegistry())))

	records := seasonalRecords(150)
	bundle, err := p.Run(context.Background(), Request{Symbol: "BTCUSDT", Interval: "1d"}, records)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(bundle.History) != 150 {
		t.Errorf("Expected 150 history points, got %d", len(bundle.History))
	}
	if len(bundle.Forecast) != 30 {
		t.Errorf("Expected 30 forecast steps, got %d", len(bundle.Forecast))
	}
	if bundle.Cadence != day {
		t.Errorf("Expected daily cadence, got %v", bundle.Cadence)
	}
	if !strings.HasPrefix(bundle.Model, "SARIMA(1,") {
		t.Errorf("Unexpected model %q", bundle.Model)
	}

	last := bundle.History[len(bundle.History)-1].Time
	for h, b := range bundle.Forecast {
		if !b.Time.Equal(last.Add(time.Duration(h+1) * day)) {
			t.Errorf("Step %d at %v", h+1, b.Time)
		}
		if !(b.Lower <= b.Mean && b.Mean <= b.Upper) {
			t.Errorf("Step %d: %f not within [%f, %f]", h+1, b.Mean, b.Lower, b.Upper)
		}
	}

	out := buf.String()
	for _, msg := range []string{"Selected model order", "Model fitted", "Forecast complete"} {
		if !strings.Contains(out, msg) {
			t.Errorf("Expected log line %q", msg)
		}
	}
	if !strings.Contains(out, `"symbol":"BTCUSDT"`) {
		t.Error("Expected symbol field on log lines")
	}
	for _, field := range []string{`"close_std":`, `"last_close":`} {
		if !strings.Contains(out, field) {
			t.Errorf("Expected log field %s", field)
		}
	}
	if bundle.LastClose() != bundle.History[len(bundle.History)-1].Close {
		t.Errorf("LastClose %f does not match the last history bar", bundle.LastClose())
	}
}

func TestRunDeterministic(t *testing.T) {
	p := New(DefaultOptions())
	records := seasonalRecords(120)
	req := Request{Symbol: "ETHUSDT", Interval: "1d"}

	a, err := p.Run(context.Background(), req, records)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	b, err := p.Run(context.Background(), req, records)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !reflect.DeepEqual(a.Forecast, b.Forecast) {
		t.Error("Identical inputs produced different forecasts")
	}
}

func TestRunLinearTrend(t *testing.T) {
	p := New(DefaultOptions())
	records := makeRecords(100, func(i int) float64 { return 100 + float64(i) })

	bundle, err := p.Run(context.Background(), Request{Symbol: "LINUSDT", Interval: "1d"}, records)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if strings.HasPrefix(bundle.Model, "SARIMA(1,0,") {
		t.Errorf("A linear trend must be differenced, got %s", bundle.Model)
	}

	for h, b := range bundle.Forecast {
		want := 200 + float64(h)
		if math.Abs(b.Mean-want) > 1e-6 {
			t.Errorf("Step %d: expected %f, got %f", h+1, want, b.Mean)
		}
		if h > 0 && b.Mean <= bundle.Forecast[h-1].Mean {
			t.Errorf("Step %d: forecast not increasing", h+1)
		}
	}
}

func TestRunMeanImputation(t *testing.T) {
	p := New(DefaultOptions())
	records := seasonalRecords(120)
	records[60].Close = "n/a"

	bundle, err := p.Run(context.Background(), Request{Symbol: "BTCUSDT", Interval: "1d"}, records)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(bundle.History) != 120 {
		t.Errorf("Expected imputation to keep 120 rows, got %d", len(bundle.History))
	}
	if len(bundle.Warnings) == 0 {
		t.Error("Expected an imputation warning in the bundle")
	}
}

func TestRunFailures(t *testing.T) {
	tests := []struct {
		name    string
		records []kline.Record
		wantErr error
	}{
		{
			name:    "ten records",
			records: makeRecords(10, func(i int) float64 { return 100 + float64(i) }),
			wantErr: normalize.ErrInsufficientData,
		},
		{
			name:    "zero variance",
			records: makeRecords(100, func(int) float64 { return 100 }),
			wantErr: sarima.ErrModelFit,
		},
		{
			name:    "empty",
			records: nil,
			wantErr: normalize.ErrInsufficientData,
		},
	}

	p := New(DefaultOptions())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bundle, err := p.Run(context.Background(), Request{Symbol: "X", Interval: "1d"}, tt.records)
			if bundle != nil {
				t.Error("Expected no bundle")
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(DefaultOptions()).Run(ctx, Request{Symbol: "BTCUSDT"}, seasonalRecords(120))
	if !errors.Is(err, sarima.ErrModelFit) {
		t.Errorf("Expected ErrModelFit on a cancelled context, got %v", err)
	}
}

func TestForecastFromSource(t *testing.T) {
	src := &fakeSource{records: seasonalRecords(120)}
	p := New(DefaultOptions(), WithSource(src))

	bundle, err := p.Forecast(context.Background(), Request{Symbol: "BTCUSDT", Interval: "1d", Limit: 120})
	if err != nil {
		t.Fatalf("Forecast: %v", err)
	}
	if src.limit != 120 {
		t.Errorf("Expected limit 120 passed to the source, got %d", src.limit)
	}
	if bundle.Symbol != "BTCUSDT" || bundle.Interval != "1d" {
		t.Errorf("Unexpected bundle identity %s/%s", bundle.Symbol, bundle.Interval)
	}

	upstream := fmt.Errorf("%w: boom", kline.ErrUpstream)
	p = New(DefaultOptions(), WithSource(&fakeSource{err: upstream}))
	if _, err := p.Forecast(context.Background(), Request{Symbol: "BTCUSDT"}); !errors.Is(err, kline.ErrUpstream) {
		t.Errorf("Expected upstream error, got %v", err)
	}
	if _, err := p.Symbols(context.Background()); !errors.Is(err, kline.ErrUpstream) {
		t.Errorf("Expected upstream error from Symbols, got %v", err)
	}

	p = New(DefaultOptions())
	if _, err := p.Forecast(context.Background(), Request{}); !errors.Is(err, ErrNoSource) {
		t.Errorf("Expected ErrNoSource, got %v", err)
	}
	if _, err := p.Symbols(context.Background()); !errors.Is(err, ErrNoSource) {
		t.Errorf("Expected ErrNoSource from Symbols, got %v", err)
	}
}

func TestFetch(t *testing.T) {
	reg := prometheus.NewRegistry()
	src := &fakeSource{records: seasonalRecords(50)}
	p := New(DefaultOptions(), WithSource(src), WithMetrics(metrics.New(reg)))

	records, err := p.Fetch(context.Background(), Request{Symbol: "ETHUSDT", Interval: "1h", Limit: 50})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(records) != 50 || src.limit != 50 {
		t.Errorf("Expected 50 records with limit 50, got %d (limit %d)", len(records), src.limit)
	}

	p = New(DefaultOptions(), WithSource(&fakeSource{err: fmt.Errorf("%w: 503", kline.ErrUpstream)}))
	if records, err := p.Fetch(context.Background(), Request{Symbol: "ETHUSDT"}); !errors.Is(err, kline.ErrUpstream) || records != nil {
		t.Errorf("Expected upstream error and no records, got %v (%d records)", err, len(records))
	}

	if _, err := New(DefaultOptions()).Fetch(context.Background(), Request{}); !errors.Is(err, ErrNoSource) {
		t.Errorf("Expected ErrNoSource, got %v", err)
	}
}

func TestOptionsFromConfig(t *testing.T) {
	cfg, err := config.Default()
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	cfg.Pipeline.Imputation = "linear"
	cfg.Pipeline.SeasonalPeriod = 7
	cfg.Pipeline.Horizon = 14
	cfg.Pipeline.Stationarity = "kpss"

	opts, err := OptionsFromConfig(cfg.Pipeline)
	if err != nil {
		t.Fatalf("OptionsFromConfig: %v", err)
	}
	if opts.Normalize.Imputer.Name() != "linear" {
		t.Errorf("Expected linear imputer, got %s", opts.Normalize.Imputer.Name())
	}
	if opts.SeasonalPeriod != 7 || opts.Horizon != 14 || opts.Stationarity.Test != "kpss" {
		t.Errorf("Unexpected options %+v", opts)
	}
	if opts.FitTimeout != 30*time.Second {
		t.Errorf("Expected fit timeout from config, got %v", opts.FitTimeout)
	}

	cfg.Pipeline.Imputation = "zero"
	if _, err := OptionsFromConfig(cfg.Pipeline); err == nil {
		t.Error("Expected error for unknown imputation")
	}
}

func TestHorizonFromOptions(t *testing.T) {
	opts := DefaultOptions()
	opts.Horizon = 7
	opts.SeasonalPeriod = 7

	bundle, err := New(opts).Run(context.Background(), Request{Symbol: "BTCUSDT"}, seasonalRecords(120))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(bundle.Forecast) != 7 {
		t.Errorf("Expected 7 forecast steps, got %d", len(bundle.Forecast))
	}
}
