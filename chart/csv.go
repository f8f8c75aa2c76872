package chart

import (
	"bufio"
	"io"
	"strconv"
	"time"
)

// CSVHeader lists the columns written by WriteCSV. History rows leave the
// forecast columns empty and forecast rows leave the history columns empty.
var CSVHeader = []string{
	"time", "kind", "close", "volume", "taker_buy_base_volume", "sell_volume",
	"buy_dominant", "mean", "lower", "upper",
}

// WriteCSV writes the bundle as one table: history rows followed by forecast
// rows.
func WriteCSV(w io.Writer, b *Bundle) error {
	writer := bufio.NewWriter(w)

	for i, col := range CSVHeader {
		if i > 0 {
			writer.WriteString(",")
		}
		writer.WriteString(col)
	}
	writer.WriteString("\n")

	for _, p := range b.History {
		writer.WriteString(p.Time.UTC().Format(time.RFC3339))
		writer.WriteString(",history,")
		writer.WriteString(formatFloat(p.Close))
		writer.WriteString(",")
		writer.WriteString(formatFloat(p.Volume))
		writer.WriteString(",")
		writer.WriteString(formatFloat(p.TakerBuyBase))
		writer.WriteString(",")
		writer.WriteString(formatFloat(p.SellVolume))
		writer.WriteString(",")
		writer.WriteString(strconv.FormatBool(p.BuyDominant))
		writer.WriteString(",,,\n")
	}

	for _, f := range b.Forecast {
		writer.WriteString(f.Time.UTC().Format(time.RFC3339))
		writer.WriteString(",forecast,,,,,,")
		writer.WriteString(formatFloat(f.Mean))
		writer.WriteString(",")
		writer.WriteString(formatFloat(f.Lower))
		writer.WriteString(",")
		writer.WriteString(formatFloat(f.Upper))
		writer.WriteString("\n")
	}

	return writer.Flush()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
