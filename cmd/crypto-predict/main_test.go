package main

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/tehqua/crypto-predict/chart"
	"github.com/tehqua/crypto-predict/kline"
	"github.com/tehqua/crypto-predict/pipeline"
)

type staticSource struct {
	records []kline.Record
}

func (s staticSource) Klines(context.Context, string, string, int) ([]kline.Record, error) {
	return s.records, nil
}

func (s staticSource) Prices(context.Context) ([]kline.Ticker, error) {
	return nil, nil
}

func dailyRecords(n int) []kline.Record {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	day := 24 * time.Hour
	records := make([]kline.Record, n)
	for i := range records {
		open := start.Add(time.Duration(i) * day)
		price := 200 + float64(i) + 15*math.Sin(2*math.Pi*float64(i)/12) + float64(i%5)
		records[i] = kline.Record{
			OpenTime:                strconv.FormatInt(open.UnixMilli(), 10),
			Open:                    strconv.FormatFloat(price, 'f', 2, 64),
			High:                    strconv.FormatFloat(price+1, 'f', 2, 64),
			Low:                     strconv.FormatFloat(price-1, 'f', 2, 64),
			Close:                   strconv.FormatFloat(price, 'f', 2, 64),
			Volume:                  "1000",
			CloseTime:               strconv.FormatInt(open.Add(day).UnixMilli()-1, 10),
			TakerBuyBaseAssetVolume: "500",
		}
	}
	return records
}

func TestSaveKlinesRoundTrip(t *testing.T) {
	records := dailyRecords(10)
	path := filepath.Join(t.TempDir(), "BTCUSDT-1d.csv")

	if err := saveKlines(path, records); err != nil {
		t.Fatalf("saveKlines: %v", err)
	}
	loaded, err := kline.LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if len(loaded) != len(records) {
		t.Fatalf("Expected %d records, got %d", len(records), len(loaded))
	}
	if loaded[9].Close != records[9].Close || loaded[0].OpenTime != records[0].OpenTime {
		t.Errorf("Round trip changed records: %+v vs %+v", loaded[9], records[9])
	}

	if err := saveKlines(filepath.Join(t.TempDir(), "missing", "x.csv"), records); err == nil {
		t.Error("Expected an error for an unwritable path")
	}
}

func TestRunOnceSavesFetchedKlines(t *testing.T) {
	records := dailyRecords(120)
	p := pipeline.New(pipeline.DefaultOptions(), pipeline.WithSource(staticSource{records: records}))
	path := filepath.Join(t.TempDir(), "dump.csv")

	var out bytes.Buffer
	req := pipeline.Request{Symbol: "BTCUSDT", Interval: "1d", Limit: 120}
	if err := runOnce(context.Background(), p, req, "", path, "json", &out); err != nil {
		t.Fatalf("runOnce: %v", err)
	}

	var bundle chart.Bundle
	if err := json.Unmarshal(out.Bytes(), &bundle); err != nil {
		t.Fatalf("Output is not a bundle: %v", err)
	}
	if len(bundle.History) != 120 {
		t.Errorf("Expected 120 history points, got %d", len(bundle.History))
	}

	saved, err := kline.LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if len(saved) != 120 {
		t.Errorf("Expected 120 saved klines, got %d", len(saved))
	}
}
