// Package server exposes the forecasting pipeline over HTTP with echo.
//
// Routes:
//
//	GET /health            liveness probe
//	GET /metrics           Prometheus scrape endpoint
//	GET /api/v1/forecast   ?symbol=BTCUSDT&interval=1d&limit=200
//	GET /api/v1/symbols    ?quote=USDT
//
// Every API response is wrapped in APIResponse. Failures map to status codes
// in one place: insufficient history and model fit failures are 422, exchange
// failures 502, request validation 400 and internal errors 500.
package server
