package kline

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// ErrNoRecords is returned when an input holds no kline rows.
var ErrNoRecords = errors.New("no kline records found")

// CSVOptions holds options for loading Binance kline dumps.
type CSVOptions struct {
	HasHeader bool // Whether the first row names the columns
	Delimiter rune // Field delimiter (default: ',')
	SkipRows  int  // Number of rows to skip at start
}

// DefaultCSVOptions returns options for the headerless files served by
// data.binance.vision.
func DefaultCSVOptions() *CSVOptions {
	return &CSVOptions{
		HasHeader: false,
		Delimiter: ',',
	}
}

// LoadCSV loads kline records from a CSV file.
func LoadCSV(filename string, opts *CSVOptions) ([]Record, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return LoadCSVFromReader(file, opts)
}

// LoadCSVFromReader loads kline records from an io.Reader. Rows keep their
// text verbatim; short rows leave the trailing fields empty.
func LoadCSVFromReader(r io.Reader, opts *CSVOptions) ([]Record, error) {
	if opts == nil {
		opts = DefaultCSVOptions()
	}

	reader := csv.NewReader(r)
	if opts.Delimiter != 0 {
		reader.Comma = opts.Delimiter
	}
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	for i := 0; i < opts.SkipRows; i++ {
		if _, err := reader.Read(); err != nil {
			return nil, err
		}
	}

	header := opts.HasHeader
	var records []Record
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if header {
			header = false
			continue
		}
		if len(row) == 1 && strings.TrimSpace(row[0]) == "" {
			continue
		}
		for i := range row {
			row[i] = strings.TrimSpace(row[i])
		}
		records = append(records, FromFields(row))
	}

	if len(records) == 0 {
		return nil, ErrNoRecords
	}
	return records, nil
}

// SaveCSV writes records in exchange column order.
func SaveCSV(w io.Writer, records []Record, includeHeader bool) error {
	writer := csv.NewWriter(w)
	if includeHeader {
		if err := writer.Write(Columns); err != nil {
			return err
		}
	}
	for i, r := range records {
		if err := writer.Write(r.Fields()); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// Columns names the kline fields in exchange order.
var Columns = []string{
	"open_time", "open", "high", "low", "close", "volume", "close_time",
	"quote_asset_volume", "number_of_trades", "taker_buy_base_asset_volume",
	"taker_buy_quote_asset_volume", "ignore",
}
