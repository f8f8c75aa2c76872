package kline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/tehqua/crypto-predict/logger"
)

const (
	DefaultBaseURL = "https://api.binance.com"
	MaxLimit       = 1000
)

// ErrUpstream wraps every failure to obtain data from the exchange.
var ErrUpstream = errors.New("market data source unavailable")

// Source supplies raw kline records and the tradable symbol list.
type Source interface {
	Klines(ctx context.Context, symbol, interval string, limit int) ([]Record, error)
	Prices(ctx context.Context) ([]Ticker, error)
}

// ClientOption configures Client.
type ClientOption func(*Client)

// WithBaseURL points the client at another host, e.g. a test server.
func WithBaseURL(u string) ClientOption {
	return func(c *Client) { c.baseURL = u }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) { c.timeout = d }
}

// WithLogger attaches a logger.
func WithLogger(l *logger.Logger) ClientOption {
	return func(c *Client) { c.log = l }
}

// Client talks to the Binance spot REST API.
type Client struct {
	baseURL string
	timeout time.Duration
	http    *http.Client
	log     *logger.Logger
}

// NewClient creates a Binance client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		timeout: 30 * time.Second,
		log:     logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.http = &http.Client{Timeout: c.timeout}
	return c
}

// Klines fetches the most recent limit candles for symbol at interval.
func (c *Client) Klines(ctx context.Context, symbol, interval string, limit int) ([]Record, error) {
	if limit <= 0 || limit > MaxLimit {
		limit = MaxLimit
	}

	params := url.Values{}
	params.Add("symbol", symbol)
	params.Add("interval", interval)
	params.Add("limit", strconv.Itoa(limit))

	var records []Record
	if err := c.get(ctx, "/api/v3/klines", params, &records); err != nil {
		c.log.Error("Failed to fetch klines",
			logger.Error(err),
			logger.String("symbol", symbol),
			logger.String("interval", interval))
		return nil, err
	}

	if len(records) == 0 {
		c.log.Warn("Exchange returned empty klines array",
			logger.String("symbol", symbol),
			logger.String("interval", interval))
	} else {
		c.log.Debug("Fetched klines",
			logger.Int("count", len(records)),
			logger.String("symbol", symbol))
	}
	return records, nil
}

// Prices fetches the last price of every listed symbol.
func (c *Client) Prices(ctx context.Context) ([]Ticker, error) {
	var tickers []Ticker
	if err := c.get(ctx, "/api/v3/ticker/price", nil, &tickers); err != nil {
		c.log.Error("Failed to fetch ticker prices", logger.Error(err))
		return nil, err
	}
	return tickers, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, dest interface{}) error {
	reqURL := c.baseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("%w: build request: %v", ErrUpstream, err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: request failed: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("%w: unexpected status %d: %s", ErrUpstream, resp.StatusCode, body)
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("%w: decode json: %v", ErrUpstream, err)
	}
	return nil
}
