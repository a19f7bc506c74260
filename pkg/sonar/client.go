// Package sonar is a read-only client for the SonarQube Web API.
package sonar

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/reflectsonar/reflectsonar/pkg/defaults"
	"github.com/reflectsonar/reflectsonar/pkg/httpclient"
	"github.com/reflectsonar/reflectsonar/pkg/iohelper"
	"github.com/reflectsonar/reflectsonar/pkg/jsonutil"
	"github.com/reflectsonar/reflectsonar/pkg/metrics"
	"github.com/reflectsonar/reflectsonar/pkg/ratelimit"
	"github.com/reflectsonar/reflectsonar/pkg/retry"
	"github.com/reflectsonar/reflectsonar/pkg/tracing"
)

// ErrBaseURL is returned by NewClient for an unusable server URL.
var ErrBaseURL = errors.New("sonar: invalid server URL")

// Options configures a Client.
type Options struct {
	// BaseURL is the server root, e.g. https://sonar.example.com or
	// https://example.com/sonar.
	BaseURL string

	Auth     httpclient.Auth
	Timeout  time.Duration
	Insecure bool

	// HTTPClient replaces the client built from Auth, Timeout and
	// Insecure. Authentication is then the caller's job.
	HTTPClient *http.Client

	// RateLimit is the request rate ceiling (0 = unlimited).
	RateLimit float64

	// Retries is the number of retries after a failed request.
	Retries       int
	RetryDelay    time.Duration
	RetryMaxDelay time.Duration

	Logger  *slog.Logger
	Metrics *metrics.Recorder
	Tracer  trace.Tracer
}

// Client talks to one SonarQube server. It is safe for concurrent use.
type Client struct {
	base    *url.URL
	http    *http.Client
	limiter *ratelimit.Limiter
	retry   retry.Config
	log     *slog.Logger
	metrics *metrics.Recorder
	tracer  trace.Tracer
}

func orDefault(l *slog.Logger) *slog.Logger {
	if l != nil {
		return l
	}
	return slog.Default()
}

// NewClient validates opts and builds a client.
func NewClient(opts Options) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/"))
	if err != nil || (base.Scheme != "http" && base.Scheme != "https") || base.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrBaseURL, opts.BaseURL)
	}

	hc := opts.HTTPClient
	if hc == nil {
		hc = httpclient.New(httpclient.Config{
			Timeout:            opts.Timeout,
			InsecureSkipVerify: opts.Insecure,
			UserAgent:          defaults.UserAgent(),
			Auth:               opts.Auth,
		})
	}

	if opts.RetryDelay <= 0 {
		opts.RetryDelay = defaults.RetryDelay
	}
	if opts.RetryMaxDelay <= 0 {
		opts.RetryMaxDelay = defaults.RetryMaxDelay
	}
	if opts.Retries < 0 {
		opts.Retries = 0
	}
	tracer := opts.Tracer
	if tracer == nil {
		tracer = tracing.Tracer(nil)
	}

	c := &Client{
		base:    base,
		http:    hc,
		limiter: ratelimit.New(ratelimit.Config{RequestsPerSecond: opts.RateLimit}),
		log:     orDefault(opts.Logger),
		metrics: opts.Metrics,
		tracer:  tracer,
		retry: retry.Config{
			MaxAttempts: opts.Retries + 1,
			InitDelay:   opts.RetryDelay,
			MaxDelay:    opts.RetryMaxDelay,
			Strategy:    retry.Exponential,
			Jitter:      true,
		},
	}
	return c, nil
}

// BaseURL returns the server root the client was built for.
func (c *Client) BaseURL() string {
	return c.base.String()
}

// Limiter exposes the adaptive rate limiter for statistics.
func (c *Client) Limiter() *ratelimit.Limiter {
	return c.limiter
}

func (c *Client) endpointURL(endpoint string, q url.Values) string {
	u := *c.base
	u.Path = strings.TrimRight(u.Path, "/") + "/" + strings.TrimLeft(endpoint, "/")
	u.RawQuery = q.Encode()
	return u.String()
}

// get calls endpoint and decodes the JSON body into v, retrying transient
// failures.
func (c *Client) get(ctx context.Context, endpoint string, q url.Values, v any) error {
	cfg := c.retry
	cfg.OnRetry = func(attempt int, err error, delay time.Duration) {
		c.metrics.Retry(endpoint)
		c.log.Debug("retrying request",
			slog.String("endpoint", endpoint),
			slog.Int("attempt", attempt+1),
			slog.Duration("delay", delay),
			slog.String("error", err.Error()))
	}
	return retry.Do(ctx, cfg, func(ctx context.Context) error {
		return c.attempt(ctx, endpoint, q, v)
	})
}

func (c *Client) attempt(ctx context.Context, endpoint string, q url.Values, v any) (err error) {
	ctx, span := c.tracer.Start(ctx, "GET "+endpoint,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("sonar.endpoint", endpoint)))
	defer func() { tracing.End(span, err) }()

	if err := c.limiter.Wait(ctx); err != nil {
		return retry.Stop(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpointURL(endpoint, q), nil)
	if err != nil {
		return retry.Stop(fmt.Errorf("sonar: build request: %w", err))
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.metrics.Request(endpoint, 0, time.Since(start))
		if ctxErr := ctx.Err(); ctxErr != nil {
			return retry.Stop(ctxErr)
		}
		err = httpclient.Classify(err)
		if httpclient.Permanent(err) {
			return retry.Stop(err)
		}
		return err
	}
	defer iohelper.DrainAndClose(resp.Body)

	c.metrics.Request(endpoint, resp.StatusCode, time.Since(start))
	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		serr := &StatusError{Endpoint: endpoint, Code: resp.StatusCode}
		var body apiErrors
		if jsonutil.Unmarshal([]byte(iohelper.ReadSnippet(resp.Body, iohelper.ErrorMaxBodySize)), &body) == nil {
			for _, e := range body.Errors {
				serr.Messages = append(serr.Messages, e.Msg)
			}
		}
		switch {
		case resp.StatusCode == http.StatusTooManyRequests:
			c.limiter.Throttled()
			return retry.After(serr, retryAfter(resp.Header.Get("Retry-After"), time.Now()))
		case serr.Temporary():
			return serr
		}
		return retry.Stop(serr)
	}
	c.limiter.Succeeded()

	data, err := iohelper.ReadBody(resp.Body, iohelper.DefaultMaxBodySize)
	if err != nil {
		if errors.Is(err, iohelper.ErrTooLarge) {
			return retry.Stop(fmt.Errorf("%w: %s: %w", ErrMalformed, endpoint, err))
		}
		return fmt.Errorf("sonar: %s: read body: %w", endpoint, err)
	}
	if v == nil {
		return nil
	}
	if err := jsonutil.Unmarshal(data, v); err != nil {
		return retry.Stop(fmt.Errorf("%w: %s: %w", ErrMalformed, endpoint, err))
	}
	return nil
}

// retryAfter parses a Retry-After header given in seconds or as an HTTP
// date. Unparseable or past values yield 0, which selects the normal
// backoff.
func retryAfter(v string, now time.Time) time.Duration {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil {
		if secs <= 0 {
			return 0
		}
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(v); err == nil {
		if d := t.Sub(now); d > 0 {
			return d
		}
	}
	return 0
}
