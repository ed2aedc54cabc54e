package httpclient

import (
	"bytes"
	"net/http"
)

// finalizeResponse turns a completed response into a decoded result.
// Status >= 400 yields a *HTTPError carrying the status and the error body;
// a success response is decoded as JSON, into resultDef when given.
func finalizeResponse(res *Response, resultDef any) (any, error) {
	req := res.RawRequest()

	if res.IsError() {
		e := &HTTPError{
			Method:     req.Method,
			URL:        req.URL.String(),
			StatusCode: res.StatusCode(),
			Status:     http.StatusText(res.StatusCode()),
			RawBody:    res.Body(),
		}
		// Carry the decoded error body where parseable, else the raw text only
		var body any
		if err := res.JSON(&body); err == nil {
			e.Body = body
		}
		return nil, e
	}

	if res.StatusCode() == http.StatusNoContent || len(bytes.TrimSpace(res.Body())) == 0 {
		return nil, nil
	}

	if resultDef != nil {
		if err := res.JSON(resultDef); err != nil {
			return nil, &DecodeError{Method: req.Method, URL: req.URL.String(), Err: err}
		}
		return resultDef, nil
	}

	var out any
	if err := res.JSON(&out); err != nil {
		return nil, &DecodeError{Method: req.Method, URL: req.URL.String(), Err: err}
	}
	return out, nil
}
