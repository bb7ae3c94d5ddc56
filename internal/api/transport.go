// Package api provides low-level HTTP transport for ZIA API calls.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog"
	"github.com/tphakala/go-zia/internal/auth"
)

const (
	defaultHTTPTimeout = 30 * time.Second
	defaultMaxBodySize = 10 * 1024 * 1024 // 10MB
)

// Transport handles HTTP communication with the ZIA API.
type Transport struct {
	BaseURL    *url.URL
	HTTPClient *retryablehttp.Client
	UserAgent  string
}

// NewTransport creates a Transport with the given configuration.
// Connection failures are retried up to retries times inside the transport;
// HTTP status handling is left to the caller.
func NewTransport(baseURL string, httpClient *http.Client, retries int, logger zerolog.Logger) (*Transport, error) {
	u, err := url.Parse(strings.TrimSuffix(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid base URL: %q", baseURL)
	}

	if httpClient == nil {
		httpClient = &http.Client{
			Timeout:   defaultHTTPTimeout,
			Transport: &http.Transport{Proxy: http.ProxyFromEnvironment},
		}
	}
	if retries < 0 {
		retries = 0
	}

	return &Transport{
		BaseURL: u,
		HTTPClient: &retryablehttp.Client{
			HTTPClient:   httpClient,
			Logger:       leveledLogger{log: logger},
			RetryWaitMin: 500 * time.Millisecond,
			RetryWaitMax: 5 * time.Second,
			RetryMax:     retries,
			CheckRetry:   ConnectionRetryPolicy,
			Backoff:      retryablehttp.DefaultBackoff,
			ErrorHandler: retryablehttp.PassthroughErrorHandler,
		},
		UserAgent: "go-zia/1.0",
	}, nil
}

// ConnectionRetryPolicy retries only when no response was received.
// Responses of any status are returned to the caller untouched.
func ConnectionRetryPolicy(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}
	if err == nil {
		return false, nil
	}
	return retryablehttp.DefaultRetryPolicy(ctx, resp, err)
}

// Param is a single query parameter.
type Param struct {
	Key   string
	Value string
}

// Query is an ordered list of query parameters.
type Query []Param

// Add appends a parameter, keeping insertion order.
func (q Query) Add(key, value string) Query {
	return append(q, Param{Key: key, Value: value})
}

// Encode renders the query as "k=v&k2=v2". Values are interpolated as-is.
func (q Query) Encode() string {
	if len(q) == 0 {
		return ""
	}
	var b strings.Builder
	for i, p := range q {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(p.Key)
		b.WriteByte('=')
		b.WriteString(p.Value)
	}
	return b.String()
}

// Request represents an API request.
type Request struct {
	Method  string
	Path    string
	Query   Query
	Body    any
	Headers http.Header
	Session *auth.Session
}

// Response represents an API response.
type Response struct {
	StatusCode int
	Body       []byte
	Headers    http.Header
	Cookies    []*http.Cookie
}

// Success reports whether the response has a 2xx status.
func (r *Response) Success() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Do executes an API request and returns the raw response.
func (t *Transport) Do(ctx context.Context, req *Request) (*Response, error) {
	httpReq, err := t.buildRequest(ctx, req)
	if err != nil {
		return nil, err
	}

	httpResp, err := t.HTTPClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = httpResp.Body.Close() }()

	// Limit response body size to prevent memory exhaustion
	limitedReader := io.LimitReader(httpResp.Body, defaultMaxBodySize+1)
	body, err := io.ReadAll(limitedReader)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	if int64(len(body)) > defaultMaxBodySize {
		return nil, fmt.Errorf("response too large: exceeds %d bytes", defaultMaxBodySize)
	}

	return &Response{
		StatusCode: httpResp.StatusCode,
		Body:       body,
		Headers:    httpResp.Header,
		Cookies:    httpResp.Cookies(),
	}, nil
}

// URL returns the full URL a request would be sent to.
func (t *Transport) URL(req *Request) string {
	u := t.BaseURL.JoinPath(req.Path)
	u.RawQuery = req.Query.Encode()
	return u.String()
}

func (t *Transport) buildRequest(ctx context.Context, req *Request) (*retryablehttp.Request, error) {
	var rawBody any
	if req.Body != nil {
		data, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("marshaling request body: %w", err)
		}
		rawBody = data
	}

	httpReq, err := retryablehttp.NewRequestWithContext(ctx, req.Method, t.URL(req), rawBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	if req.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("Cache-Control", "no-cache")
	httpReq.Header.Set("User-Agent", t.UserAgent)

	req.Session.Apply(httpReq.Request)

	maps.Copy(httpReq.Header, req.Headers)

	return httpReq, nil
}
