// Package request wraps HTTP calls to the sensor API with the two behaviors
// every call shares: GET cache-busting and bounded retry with a fixed delay.
//
// A successful call only exposes the decoded response body. An unrecoverable
// failure is reported to the configured notifier and returned to the caller.
package request

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/greenhouse-iot/sensordash/internal/errors"
	"github.com/greenhouse-iot/sensordash/internal/logger"
	"github.com/greenhouse-iot/sensordash/internal/notify"
)

const (
	// DefaultTimeout is the per-attempt HTTP timeout.
	DefaultTimeout = 10 * time.Second
	// DefaultRetries is the retry budget applied to requests built by NewRequest.
	DefaultRetries = 3
	// DefaultRetryDelay is the fixed wait between attempts.
	DefaultRetryDelay = time.Second

	// CacheBustParam is the query parameter added to every GET.
	CacheBustParam = "_t"
	// RequestIDHeader identifies one logical request across its retries.
	RequestIDHeader = "X-Request-ID"

	maxErrorBody = 4 << 10
)

// Client performs HTTP requests against a base URL.
type Client struct {
	base       *url.URL
	http       *http.Client
	retries    int
	retryDelay time.Duration
	notifier   notify.Notifier
	log        logger.Logger
	now        func() time.Time

	mu        sync.Mutex
	lastStamp int64
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the per-attempt HTTP timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithRetries sets the default retry budget for requests built by NewRequest.
func WithRetries(n int) Option {
	return func(c *Client) {
		if n >= 0 {
			c.retries = n
		}
	}
}

// WithRetryDelay sets the default wait between attempts.
func WithRetryDelay(d time.Duration) Option {
	return func(c *Client) {
		if d >= 0 {
			c.retryDelay = d
		}
	}
}

// WithNotifier sets where unrecoverable failures are reported.
func WithNotifier(n notify.Notifier) Option {
	return func(c *Client) {
		if n != nil {
			c.notifier = n
		}
	}
}

// WithLogger sets the client logger.
func WithLogger(l logger.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// WithHTTPClient replaces the underlying http.Client. A cookie jar is
// attached if the replacement has none.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithClock overrides the time source used for the cache-busting stamp.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		if now != nil {
			c.now = now
		}
	}
}

// New creates a Client for the given base URL (e.g. "http://localhost:5000").
func New(baseURL string, opts ...Option) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		if err == nil {
			err = fmt.Errorf("missing scheme or host")
		}
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("'%s' is not a valid API base URL", baseURL),
			"Use a full URL like http://localhost:5000")
	}

	c := &Client{
		base:       base,
		http:       &http.Client{Timeout: DefaultTimeout},
		retries:    DefaultRetries,
		retryDelay: DefaultRetryDelay,
		notifier:   notify.Discard(),
		log:        logger.NewEnvLogger("[request]"),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}

	// Credentials (cookies) travel with every request.
	if c.http.Jar == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, err
		}
		c.http.Jar = jar
	}

	return c, nil
}

// BaseURL returns the API base URL as a string.
func (c *Client) BaseURL() string {
	return c.base.String()
}

// NewRequest builds a request that inherits the client's retry budget and delay.
func (c *Client) NewRequest(method, path string) *Request {
	return &Request{
		Method:     strings.ToUpper(method),
		Path:       path,
		Retries:    c.retries,
		RetryDelay: c.retryDelay,
	}
}

// Get issues a GET and decodes the body into out.
func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	req := c.NewRequest(http.MethodGet, path)
	req.Query = query
	return c.Do(ctx, req, out)
}

// Post issues a POST with a JSON body and decodes the response into out.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	req := c.NewRequest(http.MethodPost, path)
	req.Body = body
	return c.Do(ctx, req, out)
}

// Put issues a PUT with a JSON body and decodes the response into out.
func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	req := c.NewRequest(http.MethodPut, path)
	req.Body = body
	return c.Do(ctx, req, out)
}

// Delete issues a DELETE and decodes the response into out.
func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.Do(ctx, c.NewRequest(http.MethodDelete, path), out)
}

// Do performs the request, retrying failed attempts while the request's
// budget allows. The response body is decoded into out when out is non-nil.
//
// A failure is final when the request has no budget or its attempt counter
// has reached the budget; the notifier is told unless the status is listed in
// QuietStatuses. Context cancellation and undecodable 2xx bodies are returned
// as-is without retry or notification.
func (c *Client) Do(ctx context.Context, req *Request, out any) error {
	if req.id == "" {
		req.id = uuid.NewString()
	}

	for {
		err := c.send(ctx, req, out)
		if err == nil {
			return nil
		}
		if ctx.Err() != nil || IsDecodeError(err) {
			return err
		}

		if req.Retries <= 0 || req.attempts >= req.Retries {
			c.log.Debug("%s %s failed after %d retries: %v", req.Method, req.Path, req.attempts, err)
			if !req.quiet(err) {
				c.notifier.Notify(notify.KindError, Message(err))
			}
			return err
		}

		req.attempts++
		c.log.Debug("%s %s failed, retry %d/%d in %s: %v", req.Method, req.Path, req.attempts, req.Retries, req.RetryDelay, err)

		if err := sleep(ctx, req.RetryDelay); err != nil {
			return err
		}
	}
}

// send performs a single attempt.
func (c *Client) send(ctx context.Context, req *Request, out any) error {
	u := c.base.JoinPath(req.Path)

	q := url.Values{}
	for k, vs := range req.Query {
		q[k] = append([]string(nil), vs...)
	}
	if req.Method == http.MethodGet {
		q.Set(CacheBustParam, strconv.FormatInt(c.stamp(), 10))
	}
	u.RawQuery = q.Encode()

	var body io.Reader
	if req.Body != nil {
		data, err := json.Marshal(req.Body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		body = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, u.String(), body)
	if err != nil {
		return err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set(RequestIDHeader, req.id)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{
			Code:   resp.StatusCode,
			Method: req.Method,
			Path:   req.Path,
			Body:   strings.TrimSpace(string(data)),
		}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &DecodeError{Path: req.Path, Err: err}
	}
	return nil
}

// stamp returns the cache-busting value: epoch milliseconds, bumped so that
// successive calls on one client never repeat.
func (c *Client) stamp() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	ms := c.now().UnixMilli()
	if ms <= c.lastStamp {
		ms = c.lastStamp + 1
	}
	c.lastStamp = ms
	return ms
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
