// Package adapters holds the upstream price API clients and the HTTP plumbing they share.
package adapters

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"btc_backend/internal/feature/marketdata/domain/entity"
	"btc_backend/internal/feature/marketdata/usecase"
	infrahttp "btc_backend/internal/platform/http"
	"btc_backend/internal/shared/ratelimiter"
)

// QuoteCurrencies are the fiat currencies requested from every provider.
var QuoteCurrencies = []string{"USD", "EUR", "GBP"}

const maxBodyBytes = 16 << 20

// defaultClient serves a Requester built as a struct literal without a Client.
var defaultClient = infrahttp.NewHTTPClient(infrahttp.DefaultTimeout)

// RequestObserver receives one observation per upstream request.
type RequestObserver interface {
	ObserveProviderRequest(source, operation, status string, elapsed time.Duration)
}

// Requester performs rate-limited JSON GET requests against one provider.
type Requester struct {
	Source  entity.Source
	BaseURL string
	Client  *http.Client
	Header  http.Header
	Limiter ratelimiter.Limiter
	Metrics RequestObserver
	Logger  *slog.Logger
	Clock   func() time.Time
}

// Option configures a Requester.
type Option func(*Requester)

// WithLimiter shares a rate limiter between requests.
func WithLimiter(l ratelimiter.Limiter) Option {
	return func(r *Requester) { r.Limiter = l }
}

// WithMetrics reports every request to m.
func WithMetrics(m RequestObserver) Option {
	return func(r *Requester) { r.Metrics = m }
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(r *Requester) { r.Logger = l }
}

// WithClock replaces time.Now when stamping results.
func WithClock(now func() time.Time) Option {
	return func(r *Requester) { r.Clock = now }
}

// NewRequester creates a Requester for src. header is sent with every request and may be nil.
// A nil client is replaced by one from infrahttp.NewHTTPClient with the default timeout.
func NewRequester(src entity.Source, baseURL string, client *http.Client, header http.Header, opts ...Option) *Requester {
	if client == nil {
		client = infrahttp.NewHTTPClient(infrahttp.DefaultTimeout)
	}
	r := &Requester{Source: src, BaseURL: baseURL, Client: client, Header: header}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ProviderDefaults carries the per-provider settings a client derives its defaults from.
type ProviderDefaults struct {
	Timeout           time.Duration // used only when the caller passes no *http.Client
	RequestsPerMinute int           // used only when no WithLimiter option is given; <= 0 disables limiting
}

// NewProviderRequester is NewRequester with the provider's own timeout and rate limit applied
// where the caller did not supply a client or a limiter.
func NewProviderRequester(src entity.Source, baseURL string, d ProviderDefaults, client *http.Client, header http.Header, opts ...Option) *Requester {
	if client == nil {
		client = infrahttp.NewHTTPClient(d.Timeout)
	}
	r := NewRequester(src, baseURL, client, header, opts...)
	if r.Limiter == nil {
		r.Limiter = ratelimiter.NewRateLimiter(d.RequestsPerMinute, time.Minute, ratelimiter.WithLogger(r.Logger))
	}
	return r
}

// Now returns the time used to stamp fetch results.
func (r *Requester) Now() time.Time {
	if r.Clock == nil {
		return time.Now()
	}
	return r.Clock()
}

// GetJSON fetches BaseURL+path?q and decodes the response into out.
// Every failure is returned as *usecase.UpstreamRequestError.
func (r *Requester) GetJSON(ctx context.Context, op, path string, q url.Values, out any) error {
	start := time.Now()
	status := "error"
	defer func() {
		if r.Metrics != nil {
			r.Metrics.ObserveProviderRequest(string(r.Source), op, status, time.Since(start))
		}
	}()

	fail := func(code int, err error) error {
		return &usecase.UpstreamRequestError{Source: r.Source, Operation: op, StatusCode: code, Err: err}
	}

	if r.Limiter != nil {
		if err := r.Limiter.Wait(ctx); err != nil {
			return fail(0, fmt.Errorf("rate limiter: %w", err))
		}
	}

	u := strings.TrimRight(r.BaseURL, "/") + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}

	// リクエストオブジェクトを作成
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fail(0, err)
	}
	for k, vs := range r.Header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	client := r.Client
	if client == nil {
		client = defaultClient
	}
	res, err := client.Do(req)
	if err != nil {
		return fail(0, err)
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			r.logger().Warn("failed to close response body", "error", err)
		}
	}()

	if res.StatusCode >= 400 {
		status = "http_" + strconv.Itoa(res.StatusCode)
		snippet, _ := io.ReadAll(io.LimitReader(res.Body, 256))
		return fail(res.StatusCode, fmt.Errorf("%s: %s", res.Status, strings.TrimSpace(string(snippet))))
	}

	if err := json.NewDecoder(io.LimitReader(res.Body, maxBodyBytes)).Decode(out); err != nil {
		status = "decode_error"
		return fail(res.StatusCode, fmt.Errorf("decode response: %w", err))
	}
	status = "ok"
	r.logger().Debug("upstream request succeeded", "source", r.Source, "operation", op, "elapsed", time.Since(start))
	return nil
}

func (r *Requester) logger() *slog.Logger {
	if r.Logger == nil {
		return slog.Default()
	}
	return r.Logger
}
