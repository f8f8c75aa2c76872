// Command crypto-predict forecasts crypto close prices with a seasonal ARIMA
// model, either once from the command line or as an HTTP service.
//
//	crypto-predict -symbol BTCUSDT -interval 1d -limit 200
//	crypto-predict -input BTCUSDT-1d-2024.csv -format csv
//	crypto-predict -symbol ETHUSDT -save ETHUSDT-1h.csv -interval 1h
//	crypto-predict -serve
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/tehqua/crypto-predict/chart"
	"github.com/tehqua/crypto-predict/config"
	"github.com/tehqua/crypto-predict/kline"
	"github.com/tehqua/crypto-predict/logger"
	"github.com/tehqua/crypto-predict/metrics"
	"github.com/tehqua/crypto-predict/normalize"
	"github.com/tehqua/crypto-predict/pipeline"
	"github.com/tehqua/crypto-predict/sarima"
	"github.com/tehqua/crypto-predict/server"
)

func main() {
	configPath := flag.String("config", "", "config file path (default: $CONFIG_PATH or configs/config.yaml)")
	serve := flag.Bool("serve", false, "run the HTTP API")
	symbol := flag.String("symbol", "BTCUSDT", "trading pair")
	interval := flag.String("interval", "1d", "kline interval")
	limit := flag.Int("limit", 200, "number of candles to fetch")
	input := flag.String("input", "", "read klines from a JSON or CSV file instead of the exchange")
	format := flag.String("format", "json", "output format: json or csv")
	save := flag.String("save", "", "also write the fetched klines to this CSV file")
	flag.Parse()

	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	lg, err := logger.New(&logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
	if err != nil {
		log.Fatalf("logger init failed: %v", err)
	}

	opts, err := pipeline.OptionsFromConfig(cfg.Pipeline)
	if err != nil {
		log.Fatalf("pipeline config: %v", err)
	}

	client := kline.NewClient(
		kline.WithBaseURL(cfg.MarketData.BaseURL),
		kline.WithTimeout(cfg.MarketData.Timeout),
		kline.WithLogger(lg),
	)

	var recorder *metrics.Recorder
	if !cfg.Metrics.Disabled {
		recorder = metrics.New(prometheus.DefaultRegisterer)
	}

	p := pipeline.New(opts,
		pipeline.WithSource(client),
		pipeline.WithLogger(lg),
		pipeline.WithMetrics(recorder),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *serve {
		if err := runServer(ctx, cfg, p, lg); err != nil {
			lg.Error("Server stopped with error", logger.Error(err))
			os.Exit(1)
		}
		return
	}

	req := pipeline.Request{Symbol: strings.ToUpper(*symbol), Interval: *interval, Limit: *limit}
	if err := runOnce(ctx, p, req, *input, *save, *format, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, describe(err))
		os.Exit(1)
	}
}

func runServer(ctx context.Context, cfg *config.Config, p *pipeline.Pipeline, lg *logger.Logger) error {
	metricsPath := cfg.Metrics.Path
	if cfg.Metrics.Disabled {
		metricsPath = ""
	}

	srv := server.NewServer(server.NewForecastHandler(p, lg),
		server.WithHost(cfg.Server.Host),
		server.WithPort(cfg.Server.Port),
		server.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		server.WithCORS(!cfg.Server.DisableCORS),
		server.WithMetrics(metricsPath, prometheus.DefaultGatherer),
		server.WithLogger(lg),
	)
	if err := srv.Start(); err != nil {
		return err
	}
	lg.Info("Service started",
		logger.String("environment", cfg.Environment),
		logger.String("addr", srv.Addr()))

	<-ctx.Done()
	return srv.Stop(context.Background())
}

func runOnce(ctx context.Context, p *pipeline.Pipeline, req pipeline.Request, input, save, format string, out io.Writer) error {
	var (
		records []kline.Record
		err     error
	)
	if input != "" {
		records, err = kline.LoadFile(input)
		if err != nil {
			return err
		}
		if !isFlagSet("symbol") {
			req.Symbol = strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
		}
	} else {
		records, err = p.Fetch(ctx, req)
		if err != nil {
			return err
		}
		if save != "" {
			if err := saveKlines(save, records); err != nil {
				return err
			}
		}
	}

	bundle, err := p.Run(ctx, req, records)
	if err != nil {
		return err
	}

	switch format {
	case "csv":
		return chart.WriteCSV(out, bundle)
	default:
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(bundle)
	}
}

// saveKlines dumps raw klines with a header row so LoadFile can read them back.
func saveKlines(path string, records []kline.Record) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := kline.SaveCSV(f, records, true); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

func isFlagSet(name string) bool {
	set := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}

// describe turns pipeline failures into a message for the terminal.
func describe(err error) string {
	var insufficient *normalize.InsufficientDataError
	switch {
	case errors.As(err, &insufficient):
		return fmt.Sprintf("not enough history: %d clean observations, at least %d required", insufficient.Have, insufficient.Need)
	case errors.Is(err, sarima.ErrModelFit):
		return fmt.Sprintf("could not fit a forecast model: %v", err)
	case errors.Is(err, kline.ErrUpstream):
		return fmt.Sprintf("market data unavailable: %v", err)
	default:
		return fmt.Sprintf("error: %v", err)
	}
}
