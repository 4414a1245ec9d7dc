package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/fivetwenty-io/openshift-client/internal/auth"
	"github.com/fivetwenty-io/openshift-client/internal/constants"
	"github.com/google/uuid"
	"github.com/hashicorp/go-cleanhttp"
	"github.com/hashicorp/go-retryablehttp"
)

// Logger interface for logging.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// Request describes one broker call. Path may be absolute or relative to the
// client's base URL.
type Request struct {
	Method  string
	Path    string
	Query   url.Values
	Body    string
	Headers map[string]string
	// Form marks Body as form encoded, even when it is empty.
	Form bool
	// Anonymous skips the credentials, used for probing application URLs.
	Anonymous bool
}

// Response is the raw result of a call.
type Response struct {
	StatusCode int
	Body       []byte
	Headers    http.Header
}

// StatusError is returned when the server answers with a non 2xx status.
type StatusError struct {
	StatusCode int
	Method     string
	URL        string
	Body       []byte
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: unexpected status %d %s", e.Method, e.URL, e.StatusCode, http.StatusText(e.StatusCode))
}

// TimeoutError is returned when a request did not complete in time.
type TimeoutError struct {
	Method string
	URL    string
	Err    error
}

// Error implements the error interface.
func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s %s: timed out: %v", e.Method, e.URL, e.Err)
}

// Unwrap returns the underlying transport error.
func (e *TimeoutError) Unwrap() error {
	return e.Err
}

// Client performs HTTP calls against the broker.
type Client struct {
	baseURL     string
	credentials auth.Credentials
	retrying    *retryablehttp.Client
	single      *retryablehttp.Client
	logger      Logger
	debug       bool
	userAgent   string
	timeout     time.Duration
	proxyURL    *url.URL
	retryMax    int
	waitMin     time.Duration
	waitMax     time.Duration
}

// Option configures the client.
type Option func(*Client)

// WithLogger sets the logger.
func WithLogger(logger Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithDebug enables request and response logging.
func WithDebug(debug bool) Option {
	return func(c *Client) {
		c.debug = debug
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		c.userAgent = userAgent
	}
}

// WithRetryConfig configures retries of GET requests.
func WithRetryConfig(retryMax int, waitMin, waitMax time.Duration) Option {
	return func(c *Client) {
		c.retryMax = retryMax
		c.waitMin = waitMin
		c.waitMax = waitMax
	}
}

// WithTimeout sets the per request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// WithProxy routes every request through proxyURL.
func WithProxy(proxyURL *url.URL) Option {
	return func(c *Client) {
		c.proxyURL = proxyURL
	}
}

// NewClient creates a new HTTP client. credentials may be nil.
func NewClient(baseURL string, credentials auth.Credentials, opts ...Option) *Client {
	c := &Client{
		baseURL:     strings.TrimSuffix(baseURL, "/"),
		credentials: credentials,
		userAgent:   constants.DefaultUserAgent,
		timeout:     constants.DefaultHTTPTimeout,
		waitMin:     constants.DefaultRetryWaitMin,
		waitMax:     constants.DefaultRetryWaitMax,
	}

	for _, opt := range opts {
		opt(c)
	}

	transport := cleanhttp.DefaultPooledTransport()

	if c.proxyURL != nil {
		transport.Proxy = http.ProxyURL(c.proxyURL)
	}

	httpClient := &http.Client{Transport: transport}

	c.retrying = c.newRetryableClient(httpClient, c.retryMax)
	c.single = c.newRetryableClient(httpClient, 0)

	return c
}

func (c *Client) newRetryableClient(httpClient *http.Client, retryMax int) *retryablehttp.Client {
	rc := retryablehttp.NewClient()
	rc.HTTPClient = httpClient
	rc.RetryMax = retryMax
	rc.RetryWaitMin = c.waitMin
	rc.RetryWaitMax = c.waitMax
	rc.CheckRetry = checkRetry
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler
	rc.Logger = nil

	if c.logger != nil && c.debug && retryMax > 0 {
		rc.Logger = &leveledLogger{logger: c.logger}
	}

	return rc
}

// checkRetry retries server errors, throttling and connection failures, but
// never timeouts or client errors.
func checkRetry(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}

	if err != nil && isTimeout(err) {
		return false, nil
	}

	if resp != nil && resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
		return false, nil
	}

	return retryablehttp.DefaultRetryPolicy(ctx, resp, err)
}

type timeoutKey struct{}

// WithRequestTimeout overrides the client timeout for requests made with
// the returned context. An earlier deadline on ctx still applies.
func WithRequestTimeout(ctx context.Context, timeout time.Duration) context.Context {
	return context.WithValue(ctx, timeoutKey{}, timeout)
}

// BaseURL returns the base URL requests are resolved against.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Do performs the request. On a non 2xx answer both the response and a
// *StatusError are returned.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	timeout := c.timeout
	if d, ok := ctx.Value(timeoutKey{}).(time.Duration); ok && d > 0 {
		timeout = d
	}

	if timeout > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	fullURL := c.resolve(req.Path)

	if len(req.Query) > 0 {
		sep := "?"
		if strings.Contains(fullURL, "?") {
			sep = "&"
		}

		fullURL += sep + req.Query.Encode()
	}

	var body interface{}
	if req.Body != "" {
		body = []byte(req.Body)
	}

	httpReq, err := retryablehttp.NewRequestWithContext(ctx, req.Method, fullURL, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	requestID := uuid.NewString()

	httpReq.Header.Set("Accept", constants.MediaTypeJSON)
	httpReq.Header.Set("User-Agent", c.userAgent)
	httpReq.Header.Set(constants.RequestIDHeader, requestID)

	if req.Form || req.Body != "" {
		httpReq.Header.Set("Content-Type", constants.MediaTypeForm)
	}

	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}

	if c.credentials != nil && !req.Anonymous {
		err = c.credentials.Authorize(ctx, httpReq.Request)
		if err != nil {
			return nil, fmt.Errorf("authorizing request: %w", err)
		}
	}

	if c.debug && c.logger != nil {
		c.logger.Debug("HTTP Request", map[string]interface{}{
			"method":     req.Method,
			"url":        fullURL,
			"request_id": requestID,
		})
	}

	client := c.single
	if req.Method == http.MethodGet && !req.Anonymous {
		client = c.retrying
	}

	start := time.Now()

	httpResp, err := client.Do(httpReq)
	if err != nil {
		if isTimeout(err) {
			return nil, &TimeoutError{Method: req.Method, URL: fullURL, Err: err}
		}

		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer func() { _ = httpResp.Body.Close() }()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		if isTimeout(err) {
			return nil, &TimeoutError{Method: req.Method, URL: fullURL, Err: err}
		}

		return nil, fmt.Errorf("reading response body: %w", err)
	}

	resp := &Response{
		StatusCode: httpResp.StatusCode,
		Body:       respBody,
		Headers:    httpResp.Header,
	}

	if c.debug && c.logger != nil {
		c.logger.Debug("HTTP Response", map[string]interface{}{
			"status":     httpResp.StatusCode,
			"url":        fullURL,
			"request_id": requestID,
			"duration":   time.Since(start).String(),
			"size":       len(respBody),
		})
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		return resp, &StatusError{
			StatusCode: httpResp.StatusCode,
			Method:     req.Method,
			URL:        fullURL,
			Body:       respBody,
		}
	}

	return resp, nil
}

// Get performs a GET request.
func (c *Client) Get(ctx context.Context, path string, query url.Values) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodGet, Path: path, Query: query})
}

// Post performs a POST request with a form encoded body.
func (c *Client) Post(ctx context.Context, path string, body string) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodPost, Path: path, Body: body, Form: true})
}

// Put performs a PUT request with a form encoded body.
func (c *Client) Put(ctx context.Context, path string, body string) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodPut, Path: path, Body: body, Form: true})
}

// Delete performs a DELETE request without a body.
func (c *Client) Delete(ctx context.Context, path string) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodDelete, Path: path})
}

// DeleteWithBody performs a DELETE request carrying a form encoded body.
func (c *Client) DeleteWithBody(ctx context.Context, path string, body string) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodDelete, Path: path, Body: body, Form: true})
}

// Probe performs a single anonymous GET against an absolute URL.
func (c *Client) Probe(ctx context.Context, rawURL string) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodGet, Path: rawURL, Anonymous: true})
}

func (c *Client) resolve(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}

	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	return c.baseURL + path
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error

	return errors.As(err, &netErr) && netErr.Timeout()
}

// leveledLogger adapts Logger to retryablehttp.LeveledLogger.
type leveledLogger struct {
	logger Logger
}

func (l *leveledLogger) Error(msg string, keysAndValues ...interface{}) {
	l.logger.Error(msg, toFields(keysAndValues))
}

func (l *leveledLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Info(msg, toFields(keysAndValues))
}

func (l *leveledLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.logger.Debug(msg, toFields(keysAndValues))
}

func (l *leveledLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.logger.Warn(msg, toFields(keysAndValues))
}

func toFields(keysAndValues []interface{}) map[string]interface{} {
	fields := make(map[string]interface{}, len(keysAndValues)/2)

	for i := 0; i+1 < len(keysAndValues); i += 2 {
		fields[fmt.Sprint(keysAndValues[i])] = keysAndValues[i+1]
	}

	return fields
}

var _ retryablehttp.LeveledLogger = (*leveledLogger)(nil)
