package normalize

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tehqua/crypto-predict/kline"
	"github.com/tehqua/crypto-predict/timeseries"
)

// DefaultMinObservations is the history length the seasonal model needs
// before the pipeline will attempt a fit.
const DefaultMinObservations = 100

// Column names used in reports and warnings.
const (
	ColumnClose        = "close"
	ColumnVolume       = "volume"
	ColumnTakerBuyBase = "taker_buy_base_asset_volume"
)

// Frame is a cleaned, time-ordered series: strictly increasing timestamps
// with parallel numeric columns and no missing values.
type Frame struct {
	Timestamps   []time.Time
	Close        []float64
	Volume       []float64
	TakerBuyBase []float64
}

// Len returns the number of observations.
func (f *Frame) Len() int {
	return len(f.Timestamps)
}

// CloseSeries returns the close column as a time series. The returned series
// owns copies of the frame data.
func (f *Frame) CloseSeries() *timeseries.Series {
	ts := make([]time.Time, len(f.Timestamps))
	copy(ts, f.Timestamps)
	values := make([]float64, len(f.Close))
	copy(values, f.Close)
	return &timeseries.Series{Timestamps: ts, Values: values, Name: ColumnClose}
}

// Options configures Normalize.
type Options struct {
	MinObservations int     // Minimum clean rows (default: DefaultMinObservations)
	Imputer         Imputer // Missing value strategy (default: MeanImputer)
}

// DefaultOptions returns the default normalization options.
func DefaultOptions() Options {
	return Options{
		MinObservations: DefaultMinObservations,
		Imputer:         MeanImputer{},
	}
}

// Report describes what normalization did to the input.
type Report struct {
	Input      int            // Records received
	Skipped    int            // Records dropped for an unparseable open time
	Duplicates int            // Records replaced by a later record with the same open time
	Imputed    map[string]int // Missing values filled, per column
	Warnings   []string
}

// ImputedTotal returns the number of filled values across all columns.
func (r *Report) ImputedTotal() int {
	total := 0
	for _, n := range r.Imputed {
		total += n
	}
	return total
}

func (r *Report) warnf(format string, args ...interface{}) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

type row struct {
	ts           time.Time
	close        float64
	volume       float64
	takerBuyBase float64
}

// Normalize turns raw records into a Frame. Records whose open time cannot be
// parsed are skipped. Duplicate open times keep the last record received.
// Numeric fields that fail to parse are treated as missing and filled by the
// configured imputer; each fill is reported as a warning, never an error.
// Fewer than opts.MinObservations rows yields an *InsufficientDataError.
// The report is returned even when err is non-nil.
func Normalize(records []kline.Record, opts Options) (*Frame, *Report, error) {
	if opts.MinObservations <= 0 {
		opts.MinObservations = DefaultMinObservations
	}
	if opts.Imputer == nil {
		opts.Imputer = MeanImputer{}
	}

	report := &Report{Input: len(records), Imputed: map[string]int{}}

	rows := make([]row, 0, len(records))
	for _, rec := range records {
		ts, ok := parseOpenTime(rec.OpenTime)
		if !ok {
			report.Skipped++
			continue
		}
		rows = append(rows, row{
			ts:           ts,
			close:        coerce(rec.Close),
			volume:       coerce(rec.Volume),
			takerBuyBase: coerce(rec.TakerBuyBaseAssetVolume),
		})
	}
	if report.Skipped > 0 {
		report.warnf("skipped %d records with an unparseable open time", report.Skipped)
	}

	rows = dedupe(rows, report)

	if len(rows) < opts.MinObservations {
		return nil, report, &InsufficientDataError{Have: len(rows), Need: opts.MinObservations}
	}

	frame := &Frame{
		Timestamps:   make([]time.Time, len(rows)),
		Close:        make([]float64, len(rows)),
		Volume:       make([]float64, len(rows)),
		TakerBuyBase: make([]float64, len(rows)),
	}
	for i, r := range rows {
		frame.Timestamps[i] = r.ts
		frame.Close[i] = r.close
		frame.Volume[i] = r.volume
		frame.TakerBuyBase[i] = r.takerBuyBase
	}

	var err error
	if frame.Close, err = fill(ColumnClose, frame.Close, opts.Imputer, report); err != nil {
		return nil, report, &InsufficientDataError{Have: 0, Need: opts.MinObservations}
	}
	if frame.Volume, err = fill(ColumnVolume, frame.Volume, opts.Imputer, report); err != nil {
		frame.Volume = zeros(len(rows))
		report.warnf("column %s has no numeric values; filled with 0", ColumnVolume)
	}
	if frame.TakerBuyBase, err = fill(ColumnTakerBuyBase, frame.TakerBuyBase, opts.Imputer, report); err != nil {
		frame.TakerBuyBase = zeros(len(rows))
		report.warnf("column %s has no numeric values; filled with 0", ColumnTakerBuyBase)
	}

	return frame, report, nil
}

// errNoObservations marks a column without a single numeric value.
var errNoObservations = errors.New("no observed values")

func fill(name string, column []float64, imp Imputer, report *Report) ([]float64, error) {
	missing := 0
	for _, v := range column {
		if math.IsNaN(v) {
			missing++
		}
	}
	if missing == 0 {
		return column, nil
	}
	if missing == len(column) {
		return nil, errNoObservations
	}

	filled := imp.Impute(column)
	report.Imputed[name] += missing
	report.warnf("imputed %d missing %s values using %s", missing, name, imp.Name())
	return filled, nil
}

// dedupe sorts rows by time and keeps the last occurrence of each timestamp.
func dedupe(rows []row, report *Report) []row {
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].ts.Before(rows[j].ts) })

	out := rows[:0]
	for _, r := range rows {
		if n := len(out); n > 0 && out[n-1].ts.Equal(r.ts) {
			out[n-1] = r
			report.Duplicates++
			continue
		}
		out = append(out, r)
	}
	if report.Duplicates > 0 {
		report.warnf("dropped %d records with a duplicate open time", report.Duplicates)
	}
	return out
}

// parseOpenTime reads a millisecond Unix timestamp.
func parseOpenTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.UnixMilli(ms).UTC(), true
	}
	d, err := decimal.NewFromString(s)
	if err != nil || !d.Equal(d.Truncate(0)) {
		return time.Time{}, false
	}
	return time.UnixMilli(d.IntPart()).UTC(), true
}

// coerce parses exchange decimal text. Anything unparseable becomes NaN.
func coerce(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return math.NaN()
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return math.NaN()
	}
	v, _ := d.Float64()
	if math.IsInf(v, 0) {
		return math.NaN()
	}
	return v
}

func zeros(n int) []float64 {
	return make([]float64, n)
}
