package request

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"time"
)

// Request describes one logical API call. Its retry state lives on the value
// itself, so a Request must not be shared between concurrent Do calls.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   any

	// Retries is the retry budget. Zero means a failure is final at once.
	Retries int
	// RetryDelay is the fixed wait before each retry.
	RetryDelay time.Duration
	// QuietStatuses lists HTTP statuses that fail without a user notification.
	QuietStatuses []int

	id       string
	attempts int
}

// Attempts returns how many retries have been made so far.
func (r *Request) Attempts() int {
	return r.attempts
}

// ID returns the request ID sent in the X-Request-ID header, or "" before
// the first attempt.
func (r *Request) ID() string {
	return r.id
}

func (r *Request) quiet(err error) bool {
	var se *StatusError
	if !errors.As(err, &se) {
		return false
	}
	return slices.Contains(r.QuietStatuses, se.Code)
}

// StatusError is returned for a non-2xx response.
type StatusError struct {
	Code   int
	Method string
	Path   string
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.Code, http.StatusText(e.Code))
}

// DecodeError is returned when a 2xx body is not valid JSON for the target.
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s response: %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// IsDecodeError reports whether err is a DecodeError.
func IsDecodeError(err error) bool {
	var de *DecodeError
	return errors.As(err, &de)
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code
	}
	return 0
}

// IsNotFound reports whether err is a 404 response.
func IsNotFound(err error) bool {
	return StatusCode(err) == http.StatusNotFound
}

// Message returns the short user-facing text for a failed request.
func Message(err error) string {
	var se *StatusError
	if errors.As(err, &se) {
		return fmt.Sprintf("Request failed with status code %d", se.Code)
	}
	var ue *url.Error
	if errors.As(err, &ue) {
		if ue.Timeout() {
			return "Request timed out"
		}
		return "Network error: " + ue.Err.Error()
	}
	return "Request failed: " + err.Error()
}
