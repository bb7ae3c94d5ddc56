package zia

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// ClientOption configures a Client.
type ClientOption func(*clientConfig)

type clientConfig struct {
	cloud            string
	baseURL          string
	username         string
	password         string
	apiKey           string
	httpClient       *http.Client
	timeout          time.Duration
	userAgent        string
	logger           zerolog.Logger
	maxAttempts      int
	rateLimitMargin  time.Duration
	transportRetries int
}

// WithCloud sets the ZIA cloud host, e.g. "zsapi.zscalerbeta.net".
// The API base URL becomes https://<host>/api/v1.
func WithCloud(host string) ClientOption {
	return func(c *clientConfig) {
		c.cloud = host
	}
}

// WithBaseURL sets the full API base URL. It takes precedence over WithCloud.
func WithBaseURL(url string) ClientOption {
	return func(c *clientConfig) {
		c.baseURL = url
	}
}

// WithCredentials sets the admin username, password and raw cloud API key.
func WithCredentials(username, password, apiKey string) ClientOption {
	return func(c *clientConfig) {
		c.username = username
		c.password = password
		c.apiKey = apiKey
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *clientConfig) {
		c.httpClient = client
	}
}

// WithTimeout sets the default request timeout.
// Note: This option is ignored when WithHTTPClient is used;
// set the timeout directly on the provided client instead.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *clientConfig) {
		c.timeout = d
	}
}

// WithUserAgent sets a custom User-Agent header.
func WithUserAgent(ua string) ClientOption {
	return func(c *clientConfig) {
		c.userAgent = ua
	}
}

// WithLogger sets the logger used for retries, logins and failures.
func WithLogger(logger zerolog.Logger) ClientOption {
	return func(c *clientConfig) {
		c.logger = logger
	}
}

// WithMaxAttempts caps the attempts made for a single call. Values below
// one are treated as one.
func WithMaxAttempts(n int) ClientOption {
	return func(c *clientConfig) {
		c.maxAttempts = max(n, 1)
	}
}

// WithRateLimitMargin sets the time added to the server's Retry-After
// before a rate-limited call is retried.
func WithRateLimitMargin(d time.Duration) ClientOption {
	return func(c *clientConfig) {
		c.rateLimitMargin = d
	}
}

// WithTransportRetries sets how often a request that got no response at all
// is resent before the failure reaches the call's retry loop.
func WithTransportRetries(n int) ClientOption {
	return func(c *clientConfig) {
		c.transportRetries = n
	}
}

// RequestOption configures individual API requests.
type RequestOption func(*requestConfig)

type requestConfig struct {
	headers  http.Header
	pageSize int
}

func newRequestConfig(opts ...RequestOption) *requestConfig {
	r := &requestConfig{
		headers: make(http.Header),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// WithHeader adds a custom header to a request.
func WithHeader(key, value string) RequestOption {
	return func(r *requestConfig) {
		r.headers.Set(key, value)
	}
}

// WithPageSize sets the page size List iterators request. It has no effect
// on single-page calls.
func WithPageSize(n int) RequestOption {
	return func(r *requestConfig) {
		r.pageSize = n
	}
}

// WithRequestID sets the X-Request-ID header for tracing.
func WithRequestID(id string) RequestOption {
	return WithHeader("X-Request-ID", id)
}
