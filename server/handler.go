package server

import (
	"context"
	"errors"
	"net/http"
	"sort"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/tehqua/crypto-predict/chart"
	"github.com/tehqua/crypto-predict/kline"
	"github.com/tehqua/crypto-predict/logger"
	"github.com/tehqua/crypto-predict/normalize"
	"github.com/tehqua/crypto-predict/pipeline"
	"github.com/tehqua/crypto-predict/sarima"
)

// Forecaster is the part of the pipeline the handlers use.
type Forecaster interface {
	Forecast(ctx context.Context, req pipeline.Request) (*chart.Bundle, error)
	Symbols(ctx context.Context) ([]kline.Ticker, error)
}

// ForecastRequest holds the query parameters of /api/v1/forecast.
type ForecastRequest struct {
	Symbol   string `query:"symbol" validate:"required,alphanum,max=20"`
	Interval string `query:"interval" default:"1d" validate:"oneof=1m 3m 5m 15m 30m 1h 2h 4h 6h 8h 12h 1d 3d 1w 1M"`
	Limit    int    `query:"limit" default:"100" validate:"min=1,max=1000"`
}

// SymbolsRequest holds the query parameters of /api/v1/symbols.
type SymbolsRequest struct {
	Quote string `query:"quote" validate:"omitempty,alphanum,max=10"`
}

// SymbolPrice is one entry of the /api/v1/symbols response.
type SymbolPrice struct {
	Symbol string  `json:"symbol"`
	Price  float64 `json:"price"`
}

// ForecastHandler serves forecasts and the symbol list.
type ForecastHandler struct {
	forecaster Forecaster
	log        *logger.Logger
}

// NewForecastHandler creates the API handler.
func NewForecastHandler(f Forecaster, log *logger.Logger) *ForecastHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &ForecastHandler{forecaster: f, log: log}
}

// RegisterRoutes implements Handler.
func (h *ForecastHandler) RegisterRoutes(e *echo.Echo) {
	api := e.Group("/api/v1")
	api.GET("/forecast", h.Forecast)
	api.GET("/symbols", h.Symbols)
}

// Forecast handles GET /api/v1/forecast.
func (h *ForecastHandler) Forecast(c echo.Context) error {
	var req ForecastRequest
	if errs := ReadAndValidateRequest(c, &req); errs != nil {
		return DataResponse(c, http.StatusBadRequest, errs)
	}

	bundle, err := h.forecaster.Forecast(c.Request().Context(), pipeline.Request{
		Symbol:   strings.ToUpper(req.Symbol),
		Interval: req.Interval,
		Limit:    req.Limit,
	})
	if err != nil {
		return h.fail(c, err)
	}
	return SuccessResponse(c, bundle)
}

// Symbols handles GET /api/v1/symbols. The list is sorted by symbol and can
// be narrowed to one quote asset. Tickers with an unparseable price are left out.
func (h *ForecastHandler) Symbols(c echo.Context) error {
	var req SymbolsRequest
	if errs := ReadAndValidateRequest(c, &req); errs != nil {
		return DataResponse(c, http.StatusBadRequest, errs)
	}

	tickers, err := h.forecaster.Symbols(c.Request().Context())
	if err != nil {
		return h.fail(c, err)
	}

	quote := strings.ToUpper(req.Quote)
	out := make([]SymbolPrice, 0, len(tickers))
	for _, t := range tickers {
		if quote != "" && !strings.HasSuffix(t.Symbol, quote) {
			continue
		}
		price, err := t.PriceFloat()
		if err != nil {
			h.log.Warn("Skipping ticker with invalid price",
				logger.String("symbol", t.Symbol),
				logger.String("price", t.Price))
			continue
		}
		out = append(out, SymbolPrice{Symbol: t.Symbol, Price: price})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return SuccessResponse(c, out)
}

// fail maps pipeline errors to responses.
func (h *ForecastHandler) fail(c echo.Context, err error) error {
	status, code := classify(err)
	if status >= http.StatusInternalServerError {
		h.log.Error("Request failed", logger.Error(err), logger.String("code", code))
	}
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "Something went wrong"
	}
	return ErrorResponse(c, status, code, msg)
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, normalize.ErrInsufficientData):
		return http.StatusUnprocessableEntity, "ERR_INSUFFICIENT_DATA"
	case errors.Is(err, sarima.ErrModelFit):
		return http.StatusUnprocessableEntity, "ERR_MODEL_FIT"
	case errors.Is(err, kline.ErrUpstream):
		return http.StatusBadGateway, "ERR_UPSTREAM"
	case errors.Is(err, pipeline.ErrNoSource):
		return http.StatusServiceUnavailable, "ERR_NO_SOURCE"
	case errors.Is(err, chart.ErrMisaligned):
		return http.StatusInternalServerError, "ERR_MISALIGNED"
	default:
		return http.StatusInternalServerError, "ERR_INTERNAL"
	}
}
