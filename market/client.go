// Package market is the HTTP client for the external market-data API
// (twelvedata-style). Calls are bounded by a per-request timeout and a
// retry budget; an "error" status from the API for a symbol maps to the
// domain's no-such-stock error.
package market

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/stockwatch/stockwatch/errors"
	"github.com/stockwatch/stockwatch/logger"
	"github.com/stockwatch/stockwatch/model"
	"github.com/stockwatch/stockwatch/resilience"
)

// datetimeLayout is the timestamp format of time-series values.
const datetimeLayout = "2006-01-02 15:04:05"

// TimeSeries is the raw /time_series response. Numeric fields arrive as
// strings.
type TimeSeries struct {
	Meta struct {
		Symbol           string `json:"symbol"`
		Interval         string `json:"interval"`
		Currency         string `json:"currency"`
		ExchangeTimezone string `json:"exchange_timezone"`
		Exchange         string `json:"exchange"`
		MicCode          string `json:"mic_code"`
		Type             string `json:"type"`
	} `json:"meta"`
	Values []struct {
		Datetime string `json:"datetime"`
		Open     string `json:"open"`
		High     string `json:"high"`
		Low      string `json:"low"`
		Close    string `json:"close"`
		Volume   string `json:"volume"`
	} `json:"values"`
	Status string `json:"status"`
}

// Listing is one instrument from the /stocks endpoint.
type Listing struct {
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Currency string `json:"currency"`
	Exchange string `json:"exchange"`
	MicCode  string `json:"mic_code"`
	Country  string `json:"country"`
	Type     string `json:"type"`
}

// Client talks to the market-data API.
type Client struct {
	cfg   Config
	http  *http.Client
	log   *logger.Logger
	retry resilience.RetryConfig
}

// NewClient creates a market-data client.
func NewClient(cfg Config, log *logger.Logger) *Client {
	cfg.ApplyDefaults()
	componentLog := log.WithComponent("market")

	retry := resilience.DefaultRetryConfig()
	retry.MaxAttempts = cfg.MaxRetries
	retry.OnRetry = func(attempt int, err error, backoff time.Duration) {
		componentLog.Warn("Market API call failed, retrying", map[string]interface{}{
			"attempt": attempt,
			"error":   err.Error(),
			"backoff": backoff.String(),
		})
	}

	return &Client{
		cfg:   cfg,
		http:  &http.Client{Timeout: cfg.Timeout},
		log:   componentLog,
		retry: retry,
	}
}

// Quote fetches the latest candle for a symbol. Unknown symbols return the
// domain's not-found error without retrying.
func (c *Client) Quote(ctx context.Context, symbol string) (*TimeSeries, error) {
	query := url.Values{}
	query.Set("symbol", symbol)
	query.Set("interval", c.cfg.Interval)
	query.Set("outputsize", "1")
	if c.cfg.Timezone != "" {
		query.Set("timezone", c.cfg.Timezone)
	}
	query.Set("apikey", c.cfg.APIKey)

	retry := c.retry
	retry.RetryIf = func(err error) bool {
		return resilience.DefaultRetryIf(err) && !errors.IsCode(err, errors.ErrCodeNotFound)
	}

	return resilience.Retry(ctx, retry, func() (*TimeSeries, error) {
		var series TimeSeries
		if err := c.get(ctx, "/time_series", query, &series); err != nil {
			return nil, err
		}
		if series.Status == "error" {
			return nil, errors.NoSuchStock(symbol)
		}
		return &series, nil
	})
}

// Listings fetches the instruments of the configured exchange.
func (c *Client) Listings(ctx context.Context) ([]Listing, error) {
	query := url.Values{}
	query.Set("exchange", c.cfg.Exchange)

	return resilience.Retry(ctx, c.retry, func() ([]Listing, error) {
		var response struct {
			Data []Listing `json:"data"`
		}
		if err := c.get(ctx, "/stocks", query, &response); err != nil {
			return nil, err
		}
		return response.Data, nil
	})
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+path+"?"+query.Encode(), nil)
	if err != nil {
		return errors.ExternalServiceError("market data", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.ExternalServiceError("market data", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errors.ExternalServiceError("market data",
			fmt.Errorf("unexpected status %d from %s", resp.StatusCode, path))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.ExternalServiceError("market data", err)
	}
	return nil
}

// Latest converts the most recent candle of a time series into the
// persisted meta and value shapes.
func (t *TimeSeries) Latest() (*model.StockMeta, *model.StockValue, error) {
	if len(t.Values) == 0 {
		return nil, nil, fmt.Errorf("market: time series for %s has no values", t.Meta.Symbol)
	}

	raw := t.Values[0]
	datetime, err := time.Parse(datetimeLayout, raw.Datetime)
	if err != nil {
		return nil, nil, fmt.Errorf("market: parse datetime %q: %w", raw.Datetime, err)
	}

	open, err := strconv.ParseFloat(raw.Open, 64)
	if err != nil {
		return nil, nil, fmt.Errorf("market: parse open %q: %w", raw.Open, err)
	}
	high, err := strconv.ParseFloat(raw.High, 64)
	if err != nil {
		return nil, nil, fmt.Errorf("market: parse high %q: %w", raw.High, err)
	}
	low, err := strconv.ParseFloat(raw.Low, 64)
	if err != nil {
		return nil, nil, fmt.Errorf("market: parse low %q: %w", raw.Low, err)
	}
	closePrice, err := strconv.ParseFloat(raw.Close, 64)
	if err != nil {
		return nil, nil, fmt.Errorf("market: parse close %q: %w", raw.Close, err)
	}
	volume, err := strconv.ParseInt(raw.Volume, 10, 64)
	if err != nil {
		return nil, nil, fmt.Errorf("market: parse volume %q: %w", raw.Volume, err)
	}

	meta := &model.StockMeta{
		Symbol:           t.Meta.Symbol,
		Interval:         t.Meta.Interval,
		Currency:         t.Meta.Currency,
		Exchange:         t.Meta.Exchange,
		ExchangeTimezone: t.Meta.ExchangeTimezone,
		MicCode:          t.Meta.MicCode,
		Type:             t.Meta.Type,
	}
	value := &model.StockValue{
		Datetime: datetime,
		Open:     open,
		High:     high,
		Low:      low,
		Close:    closePrice,
		Volume:   volume,
	}
	return meta, value, nil
}
