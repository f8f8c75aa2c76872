package kline

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// LoadJSONFromReader decodes a JSON array of kline rows, in either the
// positional exchange form or the keyed object form.
func LoadJSONFromReader(r io.Reader) ([]Record, error) {
	var records []Record
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, fmt.Errorf("decode klines: %w", err)
	}
	if len(records) == 0 {
		return nil, ErrNoRecords
	}
	return records, nil
}

// LoadFile reads klines from path, choosing the decoder by extension:
// .json for the API array form, anything else as a Binance CSV dump.
func LoadFile(path string) ([]Record, error) {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		file, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer file.Close()
		return LoadJSONFromReader(file)
	}

	opts := DefaultCSVOptions()
	opts.HasHeader = hasHeader(path)
	return LoadCSV(path, opts)
}

// hasHeader peeks at the first byte: exchange dumps start with a digit.
func hasHeader(path string) bool {
	file, err := os.Open(path)
	if err != nil {
		return false
	}
	defer file.Close()

	buf := make([]byte, 1)
	if _, err := file.Read(buf); err != nil {
		return false
	}
	return buf[0] < '0' || buf[0] > '9'
}
