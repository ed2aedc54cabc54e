package httpclient

import (
	"net/http"
	"net/url"
	"reflect"
	"time"
)

// RequestOption modifies a single call. Option-supplied headers and query
// params are merged over the client defaults, the call value wins on key
// conflicts; client defaults are never mutated.
type RequestOption func(*requestConfig)

type requestConfig struct {
	header       http.Header
	queryParams  url.Values
	body         any
	timeout      time.Duration
	absolutePath bool
	ignoreAuth   bool
	resultDef    any
	mutators     []func(*http.Request)
}

func newRequestConfig(opts []RequestOption) *requestConfig {
	cfg := &requestConfig{header: make(http.Header), queryParams: make(url.Values)}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// WithHeader sets a single header field for this call, overriding a default of the same name.
func WithHeader(key, value string) RequestOption {
	return func(cfg *requestConfig) {
		cfg.header.Set(key, value)
	}
}

// WithHeaders sets multiple header fields for this call.
func WithHeaders(headers map[string]string) RequestOption {
	return func(cfg *requestConfig) {
		for k, v := range headers {
			cfg.header.Set(k, v)
		}
	}
}

// WithParam sets a single query parameter for this call, overriding a default of the same name.
func WithParam(key, value string) RequestOption {
	return func(cfg *requestConfig) {
		cfg.queryParams.Set(key, value)
	}
}

// WithParams sets multiple query parameters for this call.
func WithParams(params map[string]string) RequestOption {
	return func(cfg *requestConfig) {
		for k, v := range params {
			cfg.queryParams.Set(k, v)
		}
	}
}

// WithJSONBody sets the request body to the JSON encoding of the value
// and the Content-Type header to "application/json".
func WithJSONBody(body any) RequestOption {
	return func(cfg *requestConfig) {
		cfg.body = body
		cfg.header.Set("Content-Type", ContentTypeApplicationJSON)
	}
}

// WithFormBody sets form parameters as the request body and the Content-Type
// header to "application/x-www-form-urlencoded".
func WithFormBody(form map[string]string) RequestOption {
	return func(cfg *requestConfig) {
		formData := make(url.Values)
		for k, v := range form {
			formData.Set(k, v)
		}
		cfg.body = formData.Encode()
		cfg.header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
}

// WithBody sets a raw request body.
// Supported types are string, []byte, io.ReadSeeker and io.ReadSeekCloser.
func WithBody(body any) RequestOption {
	return func(cfg *requestConfig) {
		cfg.body = body
	}
}

// WithContentType sets a custom content type.
func WithContentType(contentType string) RequestOption {
	return func(cfg *requestConfig) {
		cfg.header.Set("Content-Type", contentType)
	}
}

// WithTimeout limits this call, backoff delays included, via the request context.
func WithTimeout(timeout time.Duration) RequestOption {
	return func(cfg *requestConfig) {
		cfg.timeout = timeout
	}
}

// WithAbsolutePath treats the endpoint path as a complete URL, the client base URL is ignored.
func WithAbsolutePath() RequestOption {
	return func(cfg *requestConfig) {
		cfg.absolutePath = true
	}
}

// WithoutAuth skips the client auth headers and basic auth for this call.
func WithoutAuth() RequestOption {
	return func(cfg *requestConfig) {
		cfg.ignoreAuth = true
	}
}

// WithResult registers a target value for JSON result mapping in the decoded
// call forms. The target must be a pointer; the decoded form then returns the
// same pointer on success.
func WithResult(target any) RequestOption {
	if reflect.ValueOf(target).Kind() != reflect.Ptr {
		panic("httpclient: result target must be a pointer")
	}
	return func(cfg *requestConfig) {
		cfg.resultDef = target
	}
}

// WithRequestMutator registers a raw escape hatch: the callback may modify the
// assembled http.Request just before it is sent. Transport parameters without
// a dedicated option can be set this way.
func WithRequestMutator(fn func(*http.Request)) RequestOption {
	return func(cfg *requestConfig) {
		cfg.mutators = append(cfg.mutators, fn)
	}
}
