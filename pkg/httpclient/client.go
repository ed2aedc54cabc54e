// Package httpclient provides a convenience wrapper around the standard
// net/http client for building REST service clients.
//
// It adds default headers, auth headers and default query parameters merged
// into every request, basic auth wiring, base URL resolution, retries with
// exponential backoff, and uniform error raising on HTTP failures.
//
// Each HTTP verb is exposed in two forms: the decoded form (Get, Post, ...)
// returns the JSON response body and fails with *HTTPError on status >= 400;
// the raw form (GetRaw, PostRaw, ...) returns the *Response verbatim and
// never fails on HTTP status.
//
// Client is a value type, the With* methods return configured clones, so a
// shared Client is safe for concurrent use. AsyncClient exposes the same
// surface as futures, see NewAsync.
package httpclient

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptrace"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/keboola/go-http-client/pkg/httpclient/counter"
	"github.com/keboola/go-http-client/pkg/httpclient/decode"
	"github.com/keboola/go-http-client/pkg/httpclient/trace"
)

// MethodUpdate is the non-standard UPDATE verb some services expect.
// It is an alias at the call surface, there is no special transport behavior.
const MethodUpdate = "UPDATE"

// BasicAuth is a basic-auth credential pair passed to the transport.
// It can be combined with auth headers, one is a header, the other a
// transport-level credential.
type BasicAuth struct {
	Username string
	Password string
}

// Client wraps the native http.Client with default headers/params, auth,
// URL resolution and retries. Configuration is immutable after construction,
// the With* methods return clones.
type Client struct {
	transport      http.RoundTripper
	baseURL        *url.URL
	defaultHeader  http.Header
	authHeader     http.Header
	defaultParams  url.Values
	basicAuth      *BasicAuth
	retry          RetryConfig
	traceFactories []trace.Factory
	limiter        *rate.Limiter
}

// New creates a new Client for the given base URL.
// It fails fast when the base URL is empty or invalid.
// A trailing slash is appended to the base URL when missing, so relative
// endpoints join under the last path segment.
func New(baseURLStr string) (Client, error) {
	baseURL, err := normalizeBaseURL(baseURLStr)
	if err != nil {
		return Client{}, err
	}
	c := Client{
		transport:     DefaultTransport(),
		baseURL:       baseURL,
		defaultHeader: make(http.Header),
		authHeader:    make(http.Header),
		defaultParams: make(url.Values),
		retry:         DefaultRetry(),
	}
	c.defaultHeader.Set("User-Agent", "keboola-go-http-client")
	c.defaultHeader.Set("Accept-Encoding", "gzip, br")
	return c, nil
}

// BaseURL returns a copy of the normalized base URL.
func (c Client) BaseURL() *url.URL {
	clone := *c.baseURL
	return &clone
}

// WithUserAgent returns a clone of the Client with the user agent set.
func (c Client) WithUserAgent(v string) Client {
	c.defaultHeader = c.defaultHeader.Clone()
	c.defaultHeader.Set("User-Agent", v)
	return c
}

// WithHeader returns a clone of the Client with a default header set.
func (c Client) WithHeader(key, value string) Client {
	c.defaultHeader = c.defaultHeader.Clone()
	c.defaultHeader.Set(key, value)
	return c
}

// WithHeaders returns a clone of the Client with default headers set.
func (c Client) WithHeaders(headers map[string]string) Client {
	c.defaultHeader = c.defaultHeader.Clone()
	for k, v := range headers {
		c.defaultHeader.Set(k, v)
	}
	return c
}

// WithAuthHeader returns a clone of the Client with the auth headers replaced.
// Auth headers are kept separate from default headers and are skipped by
// calls with the WithoutAuth option.
func (c Client) WithAuthHeader(headers map[string]string) Client {
	c.authHeader = make(http.Header)
	for k, v := range headers {
		c.authHeader.Set(k, v)
	}
	return c
}

// AndAuthHeader returns a clone of the Client with one auth header added
// to the existing ones.
func (c Client) AndAuthHeader(key, value string) Client {
	c.authHeader = c.authHeader.Clone()
	if c.authHeader == nil {
		c.authHeader = make(http.Header)
	}
	c.authHeader.Set(key, value)
	return c
}

// WithBasicAuth returns a clone of the Client with basic-auth credentials set.
func (c Client) WithBasicAuth(username, password string) Client {
	c.basicAuth = &BasicAuth{Username: username, Password: password}
	return c
}

// WithDefaultParams returns a clone of the Client with default query parameters set.
func (c Client) WithDefaultParams(params map[string]string) Client {
	c.defaultParams = make(url.Values)
	for k, v := range params {
		c.defaultParams.Set(k, v)
	}
	return c
}

// AndDefaultParam returns a clone of the Client with one default query parameter added.
func (c Client) AndDefaultParam(key, value string) Client {
	c.defaultParams = cloneURLValues(c.defaultParams)
	c.defaultParams.Set(key, value)
	return c
}

// WithRetry returns a clone of the Client with the retry config set.
func (c Client) WithRetry(retry RetryConfig) Client {
	c.retry = retry
	return c
}

// WithTransport returns a clone of the Client with a HTTP transport set.
func (c Client) WithTransport(transport http.RoundTripper) Client {
	if transport == nil {
		panic(fmt.Errorf("transport cannot be nil"))
	}
	c.transport = transport
	return c
}

// AndTrace returns a clone of the Client with an additional trace factory.
// Hooks from all registered factories are composed per request.
func (c Client) AndTrace(fn trace.Factory) Client {
	c.traceFactories = append(c.traceFactories[:len(c.traceFactories):len(c.traceFactories)], fn)
	return c
}

// WithRequestsPerSecond returns a clone of the Client with a request rate limit.
// Each attempt waits for the limiter before it is dispatched.
func (c Client) WithRequestsPerSecond(n float64) Client {
	c.limiter = rate.NewLimiter(rate.Limit(n), 1)
	return c
}

// sendRequest resolves the URL, merges defaults with the call config,
// dispatches the request through the retrying transport and buffers the body.
// It fails on transport-level errors only, HTTP status is left to the caller.
func (c Client) sendRequest(ctx context.Context, method, endpoint string, cfg *requestConfig) (out *Response, err error) {
	// Method cannot be called on an empty value
	if c.transport == nil {
		panic(fmt.Errorf("client value is not initialized, use httpclient.New"))
	}

	// Init trace
	tr := c.newTrace()
	if tr != nil {
		ctx = httptrace.WithClientTrace(ctx, &tr.ClientTrace)
		if tr.RequestProcessed != nil {
			defer func() {
				tr.RequestProcessed(out, err)
			}()
		}
	}

	// Per-call timeout
	if cfg.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.timeout)
		defer cancel()
	}

	// Resolve URL
	reqURL, err := ResolveURL(c.baseURL, endpoint, cfg.absolutePath)
	if err != nil {
		return nil, err
	}

	// Merge query parameters: endpoint query, then defaults, call params win
	query := reqURL.Query()
	for k, values := range c.defaultParams {
		if _, found := query[k]; !found {
			query[k] = values
		}
	}
	for k, values := range cfg.queryParams {
		query.Del(k)
		for _, v := range values {
			query.Add(k, v)
		}
	}
	reqURL.RawQuery = query.Encode()

	// Create request
	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), nil)
	if err != nil {
		return nil, err
	}

	// Default headers
	for k, values := range c.defaultHeader {
		for _, v := range values {
			req.Header.Set(k, v)
		}
	}

	// Auth
	if !cfg.ignoreAuth {
		for k, values := range c.authHeader {
			for _, v := range values {
				req.Header.Set(k, v)
			}
		}
		if c.basicAuth != nil {
			req.SetBasicAuth(c.basicAuth.Username, c.basicAuth.Password)
		}
	}

	// Call headers, they win over defaults
	for k, values := range cfg.header {
		req.Header.Del(k)
		for _, v := range values {
			req.Header.Add(k, v)
		}
	}

	// Body
	if cfg.body != nil {
		// GetBody factory is used for requests when a redirect/retry requires reading the body more than once.
		req.GetBody = func() (io.ReadCloser, error) {
			if body, bodyErr := requestBody(cfg.body, req.Header.Get("Content-Type")); bodyErr == nil {
				return body, nil
			} else {
				return nil, fmt.Errorf(`request %s "%s": cannot prepare request body: %w`, req.Method, req.URL.String(), bodyErr)
			}
		}
		req.Body, err = req.GetBody()
		if err != nil {
			return nil, err
		}
	}

	// Raw escape hatch
	for _, fn := range cfg.mutators {
		fn(req)
	}

	// Rate limit
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	// Setup native client
	nativeClient := http.Client{
		Timeout:   c.retry.TotalRequestTimeout,
		Transport: roundTripper{retry: c.retry, trace: tr, wrapped: c.transport}, // wrapped transport for trace/retry
	}

	// Send request
	startedAt := time.Now()
	res, err := nativeClient.Do(req)
	if err != nil {
		return nil, handleSendError(startedAt, c.retry.TotalRequestTimeout, req, err)
	}

	// Buffer body, decoding the content encoding and counting read bytes
	body, err := readResponseBody(res, tr)
	if err != nil {
		return nil, fmt.Errorf(`cannot read response %s "%s" body: %w`, req.Method, req.URL.String(), err)
	}

	return &Response{request: req, raw: res, body: body}, nil
}

func (c Client) newTrace() *trace.ClientTrace {
	var composed *trace.ClientTrace
	for _, fn := range c.traceFactories {
		t := fn()
		if t == nil {
			continue
		}
		t.Compose(composed)
		composed = t
	}
	return composed
}

func requestBody(body any, contentType string) (io.ReadCloser, error) {
	if v, ok := body.(string); ok {
		return io.NopCloser(strings.NewReader(v)), nil
	}
	if v, ok := body.([]byte); ok {
		return io.NopCloser(bytes.NewReader(v)), nil
	}
	if v, ok := body.(io.ReadSeekCloser); ok {
		// io.ReadSeekCloser stream
		if _, err := v.Seek(0, io.SeekStart); err != nil {
			return nil, err
		}
		return v, nil
	}
	if v, ok := body.(io.ReadSeeker); ok {
		// io.ReadSeeker stream
		if _, err := v.Seek(0, io.SeekStart); err != nil {
			return nil, err
		}
		return io.NopCloser(v), nil
	}
	if body != nil && isJSONContentType(contentType) {
		// Json body
		v, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf(`cannot encode JSON body: %w`, err)
		}
		return io.NopCloser(bytes.NewReader(v)), nil
	}
	return nil, fmt.Errorf(`unsupported request body type %T`, body)
}

func readResponseBody(res *http.Response, tr *trace.ClientTrace) ([]byte, error) {
	defer res.Body.Close()

	bodyReader, err := decode.Decode(res.Body, res.Header.Get("Content-Encoding"))
	if err != nil {
		return nil, err
	}

	var onClose counter.OnClose
	if tr != nil && tr.ResponseBodyDone != nil {
		onClose = tr.ResponseBodyDone
	}
	counting := counter.NewReadCloser(bodyReader, onClose)

	body, err := io.ReadAll(counting)
	closeErr := counting.Close()
	if err != nil {
		return nil, err
	}
	if closeErr != nil {
		return nil, closeErr
	}
	return body, nil
}

func handleSendError(startedAt time.Time, clientTimeout time.Duration, req *http.Request, err error) error {
	// Timeout
	var netErr net.Error
	if deadline, ok := req.Context().Deadline(); ok && errors.Is(err, context.DeadlineExceeded) {
		err = urlError(req, fmt.Errorf("timeout after %s", deadline.Sub(startedAt)))
	} else if errors.Is(err, context.Canceled) {
		err = urlError(req, fmt.Errorf("canceled after %s", time.Since(startedAt)))
	} else if errors.As(err, &netErr) && netErr.Timeout() {
		if strings.Contains(err.Error(), "Client.Timeout exceeded") {
			err = urlError(req, fmt.Errorf("timeout after %s", clientTimeout))
		} else {
			err = urlError(req, fmt.Errorf("timeout after %s", time.Since(startedAt)))
		}
	}

	// Url error
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		err = fmt.Errorf(`request %s "%s" failed: %w`, strings.ToUpper(urlErr.Op), urlErr.URL, urlErr.Err)
	}

	return err
}

func urlError(req *http.Request, err error) *url.Error {
	return &url.Error{Op: req.Method, URL: req.URL.String(), Err: err}
}

func cloneURLValues(in url.Values) (out url.Values) {
	out = make(url.Values)
	for k, values := range in {
		for _, v := range values {
			out.Add(k, v)
		}
	}
	return out
}
