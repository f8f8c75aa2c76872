package kline

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// FieldCount is the number of columns in a Binance kline row.
const FieldCount = 12

// Record is one raw kline row as received from the exchange. Every field keeps
// its original text; an absent value is the empty string. Numeric coercion
// happens later, in the normalizer.
type Record struct {
	OpenTime                 string `json:"open_time"`
	Open                     string `json:"open"`
	High                     string `json:"high"`
	Low                      string `json:"low"`
	Close                    string `json:"close"`
	Volume                   string `json:"volume"`
	CloseTime                string `json:"close_time"`
	QuoteAssetVolume         string `json:"quote_asset_volume"`
	NumberOfTrades           string `json:"number_of_trades"`
	TakerBuyBaseAssetVolume  string `json:"taker_buy_base_asset_volume"`
	TakerBuyQuoteAssetVolume string `json:"taker_buy_quote_asset_volume"`
	Ignore                   string `json:"ignore"`
}

// FromFields builds a record from positional columns in exchange order.
// Missing trailing columns stay empty.
func FromFields(fields []string) Record {
	var f [FieldCount]string
	copy(f[:], fields)
	return Record{
		OpenTime:                 f[0],
		Open:                     f[1],
		High:                     f[2],
		Low:                      f[3],
		Close:                    f[4],
		Volume:                   f[5],
		CloseTime:                f[6],
		QuoteAssetVolume:         f[7],
		NumberOfTrades:           f[8],
		TakerBuyBaseAssetVolume:  f[9],
		TakerBuyQuoteAssetVolume: f[10],
		Ignore:                   f[11],
	}
}

// Fields returns the record columns in exchange order.
func (r Record) Fields() []string {
	return []string{
		r.OpenTime, r.Open, r.High, r.Low, r.Close, r.Volume, r.CloseTime,
		r.QuoteAssetVolume, r.NumberOfTrades, r.TakerBuyBaseAssetVolume,
		r.TakerBuyQuoteAssetVolume, r.Ignore,
	}
}

// UnmarshalJSON decodes either the positional array returned by
// /api/v3/klines (numbers and strings mixed, nulls allowed) or an object
// keyed by the json tags above.
func (r *Record) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '{' {
		type plain Record
		var p plain
		if err := json.Unmarshal(data, &p); err != nil {
			return err
		}
		*r = Record(p)
		return nil
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("kline row: %w", err)
	}

	fields := make([]string, len(raw))
	for i, v := range raw {
		s, err := rawText(v)
		if err != nil {
			return fmt.Errorf("kline row column %d: %w", i, err)
		}
		fields[i] = s
	}
	*r = FromFields(fields)
	return nil
}

// MarshalJSON writes the positional array form so records round-trip through
// the same shape the exchange serves.
func (r Record) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Fields())
}

func rawText(v json.RawMessage) (string, error) {
	v = bytes.TrimSpace(v)
	switch {
	case len(v) == 0, bytes.Equal(v, []byte("null")):
		return "", nil
	case v[0] == '"':
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			return "", err
		}
		return s, nil
	case bytes.Equal(v, []byte("true")), bytes.Equal(v, []byte("false")):
		return string(v), nil
	default:
		var n json.Number
		if err := json.Unmarshal(v, &n); err != nil {
			return "", err
		}
		return n.String(), nil
	}
}

// Ticker is the last traded price for one symbol.
type Ticker struct {
	Symbol string `json:"symbol"`
	Price  string `json:"price"`
}

// PriceFloat parses the ticker price. Unparseable prices yield an error.
func (t Ticker) PriceFloat() (float64, error) {
	return strconv.ParseFloat(t.Price, 64)
}
