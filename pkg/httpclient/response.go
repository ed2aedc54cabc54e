package httpclient

import (
	"net/http"
)

// Response is a completed HTTP response with a fully buffered body.
// The raw call forms return it verbatim, whatever the status code.
type Response struct {
	request *http.Request
	raw     *http.Response
	body    []byte
}

// StatusCode returns the HTTP status code.
func (r *Response) StatusCode() int {
	return r.raw.StatusCode
}

// Status returns the HTTP status text, e.g. "200 OK".
func (r *Response) Status() string {
	return r.raw.Status
}

// Header returns the response headers.
func (r *Response) Header() http.Header {
	return r.raw.Header
}

// Body returns the buffered response body.
func (r *Response) Body() []byte {
	return r.body
}

func (r *Response) String() string {
	return string(r.body)
}

// IsSuccess returns true if the status code is in [200, 400).
func (r *Response) IsSuccess() bool {
	return r.StatusCode() >= 200 && r.StatusCode() < 400
}

// IsError returns true if the status code is >= 400.
func (r *Response) IsError() bool {
	return r.StatusCode() >= 400
}

// RawRequest returns the standard HTTP request, from the last retry attempt.
func (r *Response) RawRequest() *http.Request {
	if r.raw != nil && r.raw.Request != nil {
		return r.raw.Request
	}
	return r.request
}

// RawResponse returns the standard HTTP response. Its body has already been
// consumed, use Body instead.
func (r *Response) RawResponse() *http.Response {
	return r.raw
}

// JSON decodes the response body into the target.
func (r *Response) JSON(target any) error {
	return json.Unmarshal(r.body, target)
}
