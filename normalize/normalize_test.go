package normalize

import (
	"errors"
	"math"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/tehqua/crypto-predict/kline"
)

const dayMs = int64(24 * time.Hour / time.Millisecond)

func makeRecords(n int, closeAt func(i int) float64) []kline.Record {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).UnixMilli()
	records := make([]kline.Record, n)
	for i := range records {
		c := closeAt(i)
		records[i] = kline.Record{
			OpenTime:                strconv.FormatInt(base+int64(i)*dayMs, 10),
			Open:                    strconv.FormatFloat(c, 'f', 4, 64),
			Close:                   strconv.FormatFloat(c, 'f', 4, 64),
			Volume:                  strconv.Itoa(1000 + i),
			TakerBuyBaseAssetVolume: strconv.Itoa(400 + i),
		}
	}
	return records
}

func TestNormalizePreservesLength(t *testing.T) {
	records := makeRecords(120, func(i int) float64 { return 100 + float64(i) })

	frame, report, err := Normalize(records, DefaultOptions())
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}

	if frame.Len() != len(records) {
		t.Errorf("Expected %d rows, got %d", len(records), frame.Len())
	}
	if len(report.Warnings) != 0 {
		t.Errorf("Expected no warnings for clean input, got %v", report.Warnings)
	}

	for i := 0; i < frame.Len(); i++ {
		if math.IsNaN(frame.Close[i]) || math.IsNaN(frame.Volume[i]) || math.IsNaN(frame.TakerBuyBase[i]) {
			t.Fatalf("Row %d contains NaN", i)
		}
		if i > 0 && !frame.Timestamps[i].After(frame.Timestamps[i-1]) {
			t.Fatalf("Timestamps not strictly increasing at %d", i)
		}
	}
	if frame.Close[0] != 100 || frame.Volume[5] != 1005 || frame.TakerBuyBase[7] != 407 {
		t.Errorf("Unexpected parsed values: close=%v volume=%v taker=%v",
			frame.Close[0], frame.Volume[5], frame.TakerBuyBase[7])
	}
}

func TestNormalizeMeanImputation(t *testing.T) {
	records := makeRecords(100, func(i int) float64 { return float64(i%7) * 3.5 })
	blank := kline.Record{OpenTime: records[42].OpenTime}
	records[42] = blank

	var sumClose, sumVolume, sumTaker float64
	for i, r := range records {
		if i == 42 {
			continue
		}
		c, _ := strconv.ParseFloat(r.Close, 64)
		v, _ := strconv.ParseFloat(r.Volume, 64)
		b, _ := strconv.ParseFloat(r.TakerBuyBaseAssetVolume, 64)
		sumClose += c
		sumVolume += v
		sumTaker += b
	}

	frame, report, err := Normalize(records, DefaultOptions())
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}

	if frame.Len() != 100 {
		t.Fatalf("Expected 100 rows, got %d", frame.Len())
	}
	checks := []struct {
		name string
		got  float64
		want float64
	}{
		{ColumnClose, frame.Close[42], sumClose / 99},
		{ColumnVolume, frame.Volume[42], sumVolume / 99},
		{ColumnTakerBuyBase, frame.TakerBuyBase[42], sumTaker / 99},
	}
	for _, c := range checks {
		if math.Abs(c.got-c.want) > 1e-9 {
			t.Errorf("%s: expected mean %f, got %f", c.name, c.want, c.got)
		}
		if report.Imputed[c.name] != 1 {
			t.Errorf("%s: expected 1 imputed value, got %d", c.name, report.Imputed[c.name])
		}
	}

	if report.ImputedTotal() != 3 {
		t.Errorf("Expected 3 imputed values in total, got %d", report.ImputedTotal())
	}
	if len(report.Warnings) == 0 || !strings.Contains(report.Warnings[0], "imputed") {
		t.Errorf("Expected an imputation warning, got %v", report.Warnings)
	}
}

func TestNormalizeInsufficientData(t *testing.T) {
	records := makeRecords(10, func(i int) float64 { return float64(i) })

	frame, _, err := Normalize(records, DefaultOptions())
	if frame != nil {
		t.Error("Expected no frame")
	}
	if !errors.Is(err, ErrInsufficientData) {
		t.Fatalf("Expected ErrInsufficientData, got %v", err)
	}

	var ide *InsufficientDataError
	if !errors.As(err, &ide) {
		t.Fatalf("Expected *InsufficientDataError, got %T", err)
	}
	if ide.Have != 10 || ide.Need != DefaultMinObservations {
		t.Errorf("Unexpected counts %+v", ide)
	}
}

func TestNormalizeEmptyInput(t *testing.T) {
	_, report, err := Normalize(nil, DefaultOptions())
	if !errors.Is(err, ErrInsufficientData) {
		t.Errorf("Expected ErrInsufficientData, got %v", err)
	}
	if report.Input != 0 {
		t.Errorf("Expected empty report, got %+v", report)
	}
}

func TestNormalizeSkipsBadTimestamps(t *testing.T) {
	records := makeRecords(101, func(i int) float64 { return float64(i) })
	records[3].OpenTime = "not-a-time"

	frame, report, err := Normalize(records, DefaultOptions())
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if frame.Len() != 100 || report.Skipped != 1 {
		t.Errorf("Expected 100 rows and 1 skipped, got %d rows, %d skipped", frame.Len(), report.Skipped)
	}

	records = makeRecords(100, func(i int) float64 { return float64(i) })
	records[0].OpenTime = ""
	if _, _, err := Normalize(records, DefaultOptions()); !errors.Is(err, ErrInsufficientData) {
		t.Errorf("Expected ErrInsufficientData after skipping below the minimum, got %v", err)
	}
}

func TestNormalizeOrdersAndDeduplicates(t *testing.T) {
	records := makeRecords(5, func(i int) float64 { return float64(i) })
	dup := records[2]
	dup.Close = "99"
	shuffled := []kline.Record{records[4], records[2], records[0], records[3], records[1], dup}

	frame, report, err := Normalize(shuffled, Options{MinObservations: 5})
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if frame.Len() != 5 || report.Duplicates != 1 {
		t.Fatalf("Expected 5 rows and 1 duplicate, got %d rows, %d duplicates", frame.Len(), report.Duplicates)
	}
	want := []float64{0, 1, 99, 3, 4}
	for i, v := range want {
		if frame.Close[i] != v {
			t.Errorf("Close[%d] = %v, want %v", i, frame.Close[i], v)
		}
	}
}

func TestNormalizeAllCloseMissing(t *testing.T) {
	records := makeRecords(100, func(i int) float64 { return 1 })
	for i := range records {
		records[i].Close = "n/a"
	}

	_, _, err := Normalize(records, DefaultOptions())
	var ide *InsufficientDataError
	if !errors.As(err, &ide) || ide.Have != 0 {
		t.Errorf("Expected InsufficientData with no observations, got %v", err)
	}
}

func TestNormalizeVolumeMissingEntirely(t *testing.T) {
	records := makeRecords(100, func(i int) float64 { return float64(i) })
	for i := range records {
		records[i].Volume = ""
	}

	frame, report, err := Normalize(records, DefaultOptions())
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	for i, v := range frame.Volume {
		if v != 0 {
			t.Fatalf("Volume[%d] = %v, want 0", i, v)
		}
	}
	if len(report.Warnings) != 1 {
		t.Errorf("Expected a single warning, got %v", report.Warnings)
	}
}

func TestNormalizeWithForwardFill(t *testing.T) {
	records := makeRecords(100, func(i int) float64 { return float64(i) })
	records[10].Close = "oops"

	opts := DefaultOptions()
	opts.Imputer = ForwardFill{}
	frame, _, err := Normalize(records, opts)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if frame.Close[10] != 9 {
		t.Errorf("Expected forward-filled 9, got %v", frame.Close[10])
	}
}

func TestCloseSeries(t *testing.T) {
	frame, _, err := Normalize(makeRecords(3, func(i int) float64 { return float64(i) }), Options{MinObservations: 3})
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	s := frame.CloseSeries()
	s.Values[0] = 42
	if frame.Close[0] != 0 {
		t.Error("CloseSeries must copy the frame data")
	}
	step, err := s.Cadence()
	if err != nil || step != 24*time.Hour {
		t.Errorf("Cadence = %v, %v", step, err)
	}
}

func TestImputers(t *testing.T) {
	nan := math.NaN()
	input := []float64{nan, 2, nan, nan, 8, nan}

	tests := []struct {
		name string
		imp  Imputer
		want []float64
	}{
		{"mean", MeanImputer{}, []float64{5, 2, 5, 5, 8, 5}},
		{"ffill", ForwardFill{}, []float64{2, 2, 2, 2, 8, 8}},
		{"linear", Linear{}, []float64{2, 2, 4, 6, 8, 8}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.imp.Impute(input)
			for i := range tt.want {
				if math.Abs(got[i]-tt.want[i]) > 1e-12 {
					t.Errorf("index %d: got %v, want %v", i, got[i], tt.want[i])
				}
			}
			if !math.IsNaN(input[0]) {
				t.Error("Impute must not modify its input")
			}
		})
	}

	for _, name := range []string{"mean", "ffill", "linear", ""} {
		if _, err := ImputerByName(name); err != nil {
			t.Errorf("ImputerByName(%q): %v", name, err)
		}
	}
	if _, err := ImputerByName("median"); err == nil {
		t.Error("Expected error for unknown strategy")
	}
}
