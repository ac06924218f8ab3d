// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides the HTTP plumbing shared by API clients:
// rate-limit backoff and error responses.
package httputil

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// RetryBaseDelay is the first backoff interval after an HTTP 429. Tests
// override this to avoid real sleeps.
var RetryBaseDelay = 10 * time.Second

// maxRetryAfter caps a server supplied Retry-After value.
const maxRetryAfter = 5 * time.Minute

const defaultMaxRetries = 5

// bodyExcerpt is how much of an error response body is kept.
const bodyExcerpt = 500

// Retrier sends requests and retries those rejected with HTTP 429.
type Retrier struct {
	Client *http.Client
	// MaxRetries bounds the number of retries (default 5).
	MaxRetries int
	// Logger receives one line per backoff. Nil means slog.Default.
	Logger *slog.Logger
}

// Do executes req and retries on HTTP 429 (Too Many Requests). The wait is
// the Retry-After header when the server sends one in seconds, otherwise
// exponential backoff from RetryBaseDelay (10 s, 20 s, 40 s, ...).
//
// The body of every rejected response is drained and closed before
// waiting. A context cancelled during a wait returns ctx.Err(). After the
// last retry the final 429 response is returned for the caller to inspect.
func (r *Retrier) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	client := r.Client
	if client == nil {
		client = http.DefaultClient
	}
	maxRetries := r.MaxRetries
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}
	log := r.Logger
	if log == nil {
		log = slog.Default()
	}

	for attempt := 0; ; attempt++ {
		resp, err := client.Do(req.Clone(ctx))
		if err != nil {
			return nil, err
		}
		if resp.StatusCode != http.StatusTooManyRequests || attempt >= maxRetries {
			return resp, nil
		}

		wait := backoff(attempt, resp.Header.Get("Retry-After"))
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		log.Info("rate limited, retrying",
			"url", req.URL.Redacted(), "wait", wait, "attempt", attempt+1, "max", maxRetries)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
	}
}

func backoff(attempt int, retryAfter string) time.Duration {
	if secs, err := strconv.Atoi(strings.TrimSpace(retryAfter)); err == nil && secs >= 0 {
		return min(time.Duration(secs)*time.Second, maxRetryAfter)
	}
	return RetryBaseDelay << attempt
}

// StatusError describes a response with an unexpected status code.
type StatusError struct {
	StatusCode int
	URL        string
	Body       string // first bytes of the response body
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("%s returned HTTP %d", e.URL, e.StatusCode)
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

// CheckStatus returns nil for 2xx responses. Otherwise it consumes and
// closes the body and returns a *StatusError holding its first bytes.
func CheckStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	defer resp.Body.Close()
	excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, bodyExcerpt))
	io.Copy(io.Discard, resp.Body)

	u := ""
	if resp.Request != nil && resp.Request.URL != nil {
		u = resp.Request.URL.Redacted()
	}
	return &StatusError{
		StatusCode: resp.StatusCode,
		URL:        u,
		Body:       strings.TrimSpace(string(excerpt)),
	}
}
