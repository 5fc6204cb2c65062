// Package polygon is a minimal Polygon.io REST client covering the two
// endpoints the tracker needs: minute aggregates for option contracts and
// the daily open/close of the underlying.
package polygon

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"

	"options-tracker/pkg/shared"
)

const (
	maxAttempts = 3
	retryDelay  = 2 * time.Second
	aggLimit    = 50000
)

type Client struct {
	http    *http.Client
	baseURL string
	apiKey  string
}

func NewClient(cfg shared.PolygonConfig) *Client {
	return &Client{
		http:    &http.Client{Timeout: 30 * time.Second},
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
	}
}

// MinuteBars fetches 1-minute aggregates for an option contract (OCC short
// symbol, without the O: prefix) over [from, to] in epoch ms. Polygon
// returns at most aggLimit rows per call; a day of minute bars fits well
// under that. Rate limits and transient failures retry a few times before
// giving up.
func (c *Client) MinuteBars(ctx context.Context, symbol string, from, to int64) ([]shared.Bar, error) {
	u := fmt.Sprintf("%s/v2/aggs/ticker/O:%s/range/1/minute/%d/%d?adjusted=true&sort=asc&limit=%d&apiKey=%s",
		c.baseURL, url.PathEscape(symbol), from, to, aggLimit, url.QueryEscape(c.apiKey))

	var resp aggregatesResponse
	if err := c.getJSON(ctx, u, &resp); err != nil {
		return nil, fmt.Errorf("aggregates %s: %w", symbol, err)
	}
	bars := make([]shared.Bar, 0, len(resp.Results))
	for _, a := range resp.Results {
		bars = append(bars, a.toBar(symbol))
	}
	return bars, nil
}

// DailyOpen fetches the underlying's official open price for a date. This
// is the reference price for strike selection.
func (c *Client) DailyOpen(ctx context.Context, underlying string, date time.Time) (decimal.Decimal, error) {
	u := fmt.Sprintf("%s/v1/open-close/%s/%s?adjusted=true&apiKey=%s",
		c.baseURL, url.PathEscape(underlying), date.Format("2006-01-02"), url.QueryEscape(c.apiKey))

	var resp dailyOpenClose
	if err := c.getJSON(ctx, u, &resp); err != nil {
		return decimal.Zero, fmt.Errorf("open-close %s: %w", underlying, err)
	}
	if resp.Status != "OK" {
		return decimal.Zero, fmt.Errorf("open-close %s: status %q", underlying, resp.Status)
	}
	return decimal.NewFromFloat(resp.Open), nil
}

func (c *Client) getJSON(ctx context.Context, u string, out any) error {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(retryDelay):
			}
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return err
		}
		resp, err := c.http.Do(req)
		if err != nil {
			lastErr = err
			continue
		}
		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = err
			continue
		}
		switch {
		case resp.StatusCode == http.StatusTooManyRequests:
			lastErr = fmt.Errorf("rate limited (429)")
			continue
		case resp.StatusCode >= 500:
			lastErr = fmt.Errorf("server error %d", resp.StatusCode)
			continue
		case resp.StatusCode != http.StatusOK:
			return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, truncate(body, 200))
		}
		return json.Unmarshal(body, out)
	}
	return fmt.Errorf("after %d attempts: %w", maxAttempts, lastErr)
}

func truncate(b []byte, n int) string {
	if len(b) > n {
		b = b[:n]
	}
	return string(b)
}
