// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package vinnova is a client for the Vinnova open grant data API
// (https://api.vinnova.se/gdp/v1). It fetches calls for proposals and
// financed activities and writes trimmed JSON dumps of them.
package vinnova

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pdiddy/grantdata/internal/httputil"
	"github.com/pdiddy/grantdata/pkg/types"
)

const (
	// DefaultBaseURL is the root of the public API.
	DefaultBaseURL = "https://api.vinnova.se/gdp/v1"
	// DefaultTimeout bounds each HTTP request.
	DefaultTimeout = 10 * time.Second
	// DateLayout is the date format of every query parameter.
	DateLayout = "2006-01-02"
)

// ErrNoAPIKey is returned by NewClient when no key is configured.
var ErrNoAPIKey = errors.New("no Vinnova API key configured")

// Client queries the API. The key is sent verbatim in the Authorization
// header.
type Client struct {
	baseURL   string
	apiKey    string
	userAgent string
	retrier   *httputil.Retrier
	log       *slog.Logger
}

// NewClient builds a client from cfg. A nil log means slog.Default.
func NewClient(cfg types.VinnovaConfig, log *slog.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, ErrNoAPIKey
	}
	if log == nil {
		log = slog.Default()
	}
	base := cfg.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL:   strings.TrimRight(base, "/"),
		apiKey:    cfg.APIKey,
		userAgent: cfg.UserAgent,
		retrier: &httputil.Retrier{
			Client:     &http.Client{Timeout: timeout},
			MaxRetries: cfg.MaxRetries,
			Logger:     log,
		},
		log: log,
	}, nil
}

// Metadata returns the API metadata document as received.
func (c *Client) Metadata(ctx context.Context) (json.RawMessage, error) {
	var out json.RawMessage
	if err := c.get(ctx, "/metadata", nil, &out); err != nil {
		return nil, fmt.Errorf("fetching metadata: %w", err)
	}
	return out, nil
}

// Calls returns the calls for proposals whose opening date lies between
// from and to, both inclusive and formatted YYYY-MM-DD.
func (c *Client) Calls(ctx context.Context, from, to string) ([]Item, error) {
	q, err := dateRange("franOppningsdatum", "tillOppningsdatum", from, to)
	if err != nil {
		return nil, err
	}
	var out []Item
	if err := c.get(ctx, "/utlysningar", q, &out); err != nil {
		return nil, fmt.Errorf("fetching calls: %w", err)
	}
	return out, nil
}

// FinancedActivities returns the activities with a funding decision
// between from and to.
func (c *Client) FinancedActivities(ctx context.Context, from, to string) ([]Item, error) {
	q, err := dateRange("franBeslutDatum", "tillBeslutDatum", from, to)
	if err != nil {
		return nil, err
	}
	var out []Item
	if err := c.get(ctx, "/finansieradeaktiviteter", q, &out); err != nil {
		return nil, fmt.Errorf("fetching financed activities: %w", err)
	}
	return out, nil
}

func dateRange(fromKey, toKey, from, to string) (url.Values, error) {
	f, err := time.Parse(DateLayout, from)
	if err != nil {
		return nil, fmt.Errorf("invalid start date %q (want YYYY-MM-DD): %w", from, err)
	}
	t, err := time.Parse(DateLayout, to)
	if err != nil {
		return nil, fmt.Errorf("invalid end date %q (want YYYY-MM-DD): %w", to, err)
	}
	if t.Before(f) {
		return nil, fmt.Errorf("end date %s is before start date %s", to, from)
	}
	q := url.Values{}
	q.Set(fromKey, from)
	q.Set(toKey, to)
	return q, nil
}

func (c *Client) get(ctx context.Context, path string, q url.Values, out any) error {
	u := c.baseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", c.apiKey)
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	c.log.Debug("vinnova request", "url", u)
	start := time.Now()
	resp, err := c.retrier.Do(ctx, req)
	if err != nil {
		return err
	}
	if err := httputil.CheckStatus(resp); err != nil {
		return err
	}
	defer resp.Body.Close()
	c.log.Debug("vinnova response", "url", u, "status", resp.StatusCode, "took", time.Since(start))

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response from %s: %w", path, err)
	}
	return nil
}
