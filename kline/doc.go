// Package kline holds raw exchange candles and the adapters that produce them.
//
// A Record keeps all twelve Binance kline columns as the text the exchange
// sent; nothing is parsed here. Records come from three places:
//
//	client := kline.NewClient()
//	records, err := client.Klines(ctx, "BTCUSDT", "1d", 100)
//
//	records, err := kline.LoadFile("BTCUSDT-1d-2024-01.csv")
//
//	records, err := kline.LoadJSONFromReader(r)
//
// Client also lists symbols with their last price via Prices. Any failure to
// reach or decode the exchange wraps ErrUpstream.
package kline
