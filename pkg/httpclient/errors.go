package httpclient

import (
	"errors"
	"fmt"
)

// ErrBaseURLRequired is returned by New when the base URL is missing.
var ErrBaseURLRequired = errors.New("base url is required")

// HTTPError is returned by the decoded call forms for responses with status code >= 400.
// It is the single error kind for all HTTP failures, callers inspect
// StatusCode and Body to distinguish cases.
type HTTPError struct {
	Method     string
	URL        string
	StatusCode int
	Status     string
	// Body is the error body decoded as JSON, if it was parseable, otherwise nil.
	Body any
	// RawBody is the raw error body.
	RawBody []byte
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf(`request %s "%s" failed: %d %s`, e.Method, e.URL, e.StatusCode, e.Status)
}

// DecodeError is returned by the decoded call forms
// when a success response body is not valid JSON.
type DecodeError struct {
	Method string
	URL    string
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf(`cannot decode JSON response %s "%s": %s`, e.Method, e.URL, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
