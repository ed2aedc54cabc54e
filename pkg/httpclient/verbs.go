package httpclient

import (
	"context"
	"net/http"
)

// Do sends a request with the given method and decodes the JSON response body.
// On status >= 400 it fails with *HTTPError, on an invalid JSON success body
// with *DecodeError. The decoded value is returned as any, or as the
// WithResult target when one was registered.
func (c Client) Do(ctx context.Context, method, endpoint string, opts ...RequestOption) (any, error) {
	cfg := newRequestConfig(opts)
	res, err := c.sendRequest(ctx, method, endpoint, cfg)
	if err != nil {
		return nil, err
	}
	return finalizeResponse(res, cfg.resultDef)
}

// DoRaw sends a request with the given method and returns the response
// verbatim. It never fails on HTTP status, callers inspect Response.StatusCode.
func (c Client) DoRaw(ctx context.Context, method, endpoint string, opts ...RequestOption) (*Response, error) {
	return c.sendRequest(ctx, method, endpoint, newRequestConfig(opts))
}

// Get sends a GET request and decodes the JSON response body.
func (c Client) Get(ctx context.Context, endpoint string, opts ...RequestOption) (any, error) {
	return c.Do(ctx, http.MethodGet, endpoint, opts...)
}

// GetRaw sends a GET request and returns the response verbatim.
func (c Client) GetRaw(ctx context.Context, endpoint string, opts ...RequestOption) (*Response, error) {
	return c.DoRaw(ctx, http.MethodGet, endpoint, opts...)
}

// Post sends a POST request and decodes the JSON response body.
func (c Client) Post(ctx context.Context, endpoint string, opts ...RequestOption) (any, error) {
	return c.Do(ctx, http.MethodPost, endpoint, opts...)
}

// PostRaw sends a POST request and returns the response verbatim.
func (c Client) PostRaw(ctx context.Context, endpoint string, opts ...RequestOption) (*Response, error) {
	return c.DoRaw(ctx, http.MethodPost, endpoint, opts...)
}

// Put sends a PUT request and decodes the JSON response body.
func (c Client) Put(ctx context.Context, endpoint string, opts ...RequestOption) (any, error) {
	return c.Do(ctx, http.MethodPut, endpoint, opts...)
}

// PutRaw sends a PUT request and returns the response verbatim.
func (c Client) PutRaw(ctx context.Context, endpoint string, opts ...RequestOption) (*Response, error) {
	return c.DoRaw(ctx, http.MethodPut, endpoint, opts...)
}

// Patch sends a PATCH request and decodes the JSON response body.
func (c Client) Patch(ctx context.Context, endpoint string, opts ...RequestOption) (any, error) {
	return c.Do(ctx, http.MethodPatch, endpoint, opts...)
}

// PatchRaw sends a PATCH request and returns the response verbatim.
func (c Client) PatchRaw(ctx context.Context, endpoint string, opts ...RequestOption) (*Response, error) {
	return c.DoRaw(ctx, http.MethodPatch, endpoint, opts...)
}

// Delete sends a DELETE request and decodes the JSON response body.
func (c Client) Delete(ctx context.Context, endpoint string, opts ...RequestOption) (any, error) {
	return c.Do(ctx, http.MethodDelete, endpoint, opts...)
}

// DeleteRaw sends a DELETE request and returns the response verbatim.
func (c Client) DeleteRaw(ctx context.Context, endpoint string, opts ...RequestOption) (*Response, error) {
	return c.DoRaw(ctx, http.MethodDelete, endpoint, opts...)
}

// Update sends an UPDATE request and decodes the JSON response body.
// UPDATE is not a standard HTTP method, some services expect it literally.
func (c Client) Update(ctx context.Context, endpoint string, opts ...RequestOption) (any, error) {
	return c.Do(ctx, MethodUpdate, endpoint, opts...)
}

// UpdateRaw sends an UPDATE request and returns the response verbatim.
func (c Client) UpdateRaw(ctx context.Context, endpoint string, opts ...RequestOption) (*Response, error) {
	return c.DoRaw(ctx, MethodUpdate, endpoint, opts...)
}
