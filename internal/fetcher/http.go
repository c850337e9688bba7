// Package fetcher performs the read-side HTTP calls against the LandWatch
// backend with rate limiting and retry.
package fetcher

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"math/rand/v2"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

// Options configures the HTTP fetcher.
type Options struct {
	UserAgent   string
	Timeout     time.Duration
	MaxRetries  int
	RatePerSec  float64
	BackoffBase time.Duration
}

// StatusError reports a non-retryable, non-success response.
type StatusError struct {
	Code int
	URL  string
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d from %s", e.Code, e.URL)
}

// AdaptiveLimiter wraps a rate.Limiter with adaptive rate adjustment.
// On success it increases the rate by 20% (up to 2x initial).
// On 429 it halves the rate (down to initial/4 minimum).
type AdaptiveLimiter struct {
	mu          sync.Mutex
	limiter     *rate.Limiter
	maxRate     rate.Limit
	minRate     rate.Limit
	currentRate rate.Limit
}

// NewAdaptiveLimiter creates an adaptive rate limiter that auto-tunes.
func NewAdaptiveLimiter(initialRate rate.Limit, burst int) *AdaptiveLimiter {
	return &AdaptiveLimiter{
		limiter:     rate.NewLimiter(initialRate, burst),
		maxRate:     initialRate * 2,
		minRate:     initialRate / 4,
		currentRate: initialRate,
	}
}

// Wait blocks until the limiter allows an event.
func (a *AdaptiveLimiter) Wait(ctx context.Context) error {
	return a.limiter.Wait(ctx)
}

func (a *AdaptiveLimiter) OnSuccess() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.setLocked(min(a.currentRate*1.2, a.maxRate))
}

func (a *AdaptiveLimiter) OnRateLimit() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.setLocked(max(a.currentRate*0.5, a.minRate))
	slog.Warn("Reducing request rate after 429", "new_rate", float64(a.currentRate))
}

func (a *AdaptiveLimiter) setLocked(r rate.Limit) {
	a.currentRate = r
	a.limiter.SetLimit(r)
}

// Limit returns the current rate limit.
func (a *AdaptiveLimiter) Limit() rate.Limit {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.currentRate
}

// HTTPFetcher issues GET requests with retry on transport errors, 429 and 5xx.
type HTTPFetcher struct {
	client  *http.Client
	opts    Options
	limiter *AdaptiveLimiter
}

// New creates a fetcher, filling unset options with defaults.
func New(opts Options) *HTTPFetcher {
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = 3
	}
	if opts.RatePerSec <= 0 {
		opts.RatePerSec = 10
	}
	if opts.BackoffBase == 0 {
		opts.BackoffBase = time.Second
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "landwatch/1.0"
	}
	burst := int(math.Ceil(opts.RatePerSec))
	return &HTTPFetcher{
		client: &http.Client{
			Timeout: opts.Timeout,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		opts:    opts,
		limiter: NewAdaptiveLimiter(rate.Limit(opts.RatePerSec), burst),
	}
}

// Limiter exposes the fetcher's rate limiter
func (f *HTTPFetcher) Limiter() *AdaptiveLimiter {
	return f.limiter
}

func (f *HTTPFetcher) doWithRetry(ctx context.Context, req *http.Request) (*http.Response, error) {
	var lastErr error
	for attempt := range f.opts.MaxRetries {
		if err := f.limiter.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "rate limiter wait")
		}

		resp, err := f.client.Do(req.Clone(ctx))
		if err != nil {
			lastErr = err
			slog.Warn("HTTP request failed, retrying", "url", req.URL.String(), "attempt", attempt+1, "error", err)
			f.backoff(ctx, attempt)
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			_ = resp.Body.Close()
			lastErr = eris.Errorf("http 429 from %s", req.URL.String())
			f.limiter.OnRateLimit()
			f.backoff(ctx, attempt)
			continue
		}

		if resp.StatusCode >= 500 {
			_ = resp.Body.Close()
			lastErr = eris.Errorf("http %d from %s", resp.StatusCode, req.URL.String())
			slog.Warn("Server error, retrying", "url", req.URL.String(), "status", resp.StatusCode, "attempt", attempt+1)
			f.backoff(ctx, attempt)
			continue
		}

		f.limiter.OnSuccess()
		return resp, nil
	}

	if ctx.Err() != nil {
		return nil, eris.Wrap(ctx.Err(), "request cancelled")
	}
	return nil, eris.Wrap(lastErr, "all retries exhausted")
}

func (f *HTTPFetcher) backoff(ctx context.Context, attempt int) {
	maxBackoff := 30 * time.Second
	d := time.Duration(float64(f.opts.BackoffBase) * math.Pow(2, float64(attempt)))
	if d > maxBackoff {
		d = maxBackoff
	}
	if half := int64(d) / 2; half > 0 {
		d += time.Duration(rand.Int64N(half))
	}

	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

// Download fetches the URL and returns the response body. Any status other
// than 200 is returned as a *StatusError.
func (f *HTTPFetcher) Download(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "create request")
	}
	req.Header.Set("User-Agent", f.opts.UserAgent)

	resp, err := f.doWithRetry(ctx, req)
	if err != nil {
		return nil, eris.Wrap(err, "download")
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &StatusError{Code: resp.StatusCode, URL: rawURL, Body: string(body)}
	}

	return resp.Body, nil
}

// GetJSON fetches the URL and decodes the JSON body into v.
func (f *HTTPFetcher) GetJSON(ctx context.Context, rawURL string, v any) error {
	body, err := f.Download(ctx, rawURL)
	if err != nil {
		return err
	}
	defer body.Close() //nolint:errcheck

	if err := json.NewDecoder(body).Decode(v); err != nil {
		return eris.Wrapf(err, "decode %s", rawURL)
	}
	return nil
}

// DownloadToFile fetches the URL and writes it to the given path. A partial
// file is removed on failure.
func (f *HTTPFetcher) DownloadToFile(ctx context.Context, rawURL string, path string) (int64, error) {
	body, err := f.Download(ctx, rawURL)
	if err != nil {
		return 0, err
	}
	defer body.Close() //nolint:errcheck

	file, err := os.Create(path)
	if err != nil {
		return 0, eris.Wrap(err, "create file")
	}

	n, err := io.Copy(file, body)
	if cerr := file.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(path)
		return n, eris.Wrap(err, "write file")
	}

	return n, nil
}
