package chart

import (
	"errors"
	"fmt"
	"time"

	"github.com/tehqua/crypto-predict/normalize"
	"github.com/tehqua/crypto-predict/sarima"
)

// ErrMisaligned is returned when a forecast does not continue the history
// time grid.
var ErrMisaligned = errors.New("forecast is not aligned with history")

// Point is one historical observation.
type Point struct {
	Time         time.Time `json:"time"`
	Close        float64   `json:"close"`
	Volume       float64   `json:"volume"`
	TakerBuyBase float64   `json:"taker_buy_base_volume"`
	SellVolume   float64   `json:"sell_volume"`
	BuyDominant  bool      `json:"buy_dominant"`
}

// Band is one forecast step with its prediction interval.
type Band struct {
	Time  time.Time `json:"time"`
	Mean  float64   `json:"mean"`
	Lower float64   `json:"lower"`
	Upper float64   `json:"upper"`
}

// Meta describes the request a bundle answers.
type Meta struct {
	Symbol   string
	Interval string
	Model    string // Fitted model order, e.g. SARIMA(1,1,1)(1,1,1)[12]
	Warnings []string
}

// Bundle is the assembled chart data: history and forecast on one time axis.
type Bundle struct {
	Symbol     string        `json:"symbol"`
	Interval   string        `json:"interval"`
	Model      string        `json:"model,omitempty"`
	Confidence float64       `json:"confidence"`
	Cadence    time.Duration `json:"cadence"`
	History    []Point       `json:"history"`
	Forecast   []Band        `json:"forecast"`
	Warnings   []string      `json:"warnings,omitempty"`
}

// Assemble joins frame and forecast into a Bundle. The inputs are not
// modified.
func Assemble(frame *normalize.Frame, forecast *sarima.Forecast, meta Meta) (*Bundle, error) {
	if frame == nil || forecast == nil {
		return nil, fmt.Errorf("%w: missing history or forecast", ErrMisaligned)
	}
	h := forecast.Len()
	if len(forecast.Timestamps) != h || len(forecast.Lower) != h || len(forecast.Upper) != h {
		return nil, fmt.Errorf("%w: forecast columns have unequal lengths", ErrMisaligned)
	}
	if frame.Len() < 2 {
		return nil, fmt.Errorf("%w: history too short to define a cadence", ErrMisaligned)
	}

	cadence, err := frame.CloseSeries().Cadence()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMisaligned, err)
	}

	prev := frame.Timestamps[frame.Len()-1]
	for i, ts := range forecast.Timestamps {
		if got := ts.Sub(prev); got != cadence {
			return nil, fmt.Errorf("%w: forecast step %d is %v after its predecessor, expected %v", ErrMisaligned, i+1, got, cadence)
		}
		prev = ts
	}

	history := make([]Point, frame.Len())
	for i := range history {
		sell := frame.Volume[i] - frame.TakerBuyBase[i]
		history[i] = Point{
			Time:         frame.Timestamps[i],
			Close:        frame.Close[i],
			Volume:       frame.Volume[i],
			TakerBuyBase: frame.TakerBuyBase[i],
			SellVolume:   sell,
			BuyDominant:  frame.TakerBuyBase[i] > sell,
		}
	}

	bands := make([]Band, h)
	for i := range bands {
		bands[i] = Band{
			Time:  forecast.Timestamps[i],
			Mean:  forecast.Mean[i],
			Lower: forecast.Lower[i],
			Upper: forecast.Upper[i],
		}
	}

	var warnings []string
	if len(meta.Warnings) > 0 {
		warnings = append(warnings, meta.Warnings...)
	}

	return &Bundle{
		Symbol:     meta.Symbol,
		Interval:   meta.Interval,
		Model:      meta.Model,
		Confidence: 1 - forecast.Alpha,
		Cadence:    cadence,
		History:    history,
		Forecast:   bands,
		Warnings:   warnings,
	}, nil
}

// LastClose returns the most recent observed close, or zero for an empty
// history.
func (b *Bundle) LastClose() float64 {
	if len(b.History) == 0 {
		return 0
	}
	return b.History[len(b.History)-1].Close
}
