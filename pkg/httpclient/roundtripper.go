package httpclient

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/keboola/go-http-client/pkg/httpclient/trace"
)

// roundTripper wraps a http.RoundTripper and adds trace and retry functionality.
type roundTripper struct {
	trace   *trace.ClientTrace
	retry   RetryConfig
	wrapped http.RoundTripper
}

func (rt roundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	state := rt.retry.NewBackoff()
	attempt := 0
	for {
		// Trace request start
		if rt.trace != nil && rt.trace.HTTPRequestStart != nil {
			rt.trace.HTTPRequestStart(req)
		}

		// Send
		res, err := rt.wrapped.RoundTrip(req)

		// Trace request done
		if rt.trace != nil && rt.trace.HTTPRequestDone != nil {
			rt.trace.HTTPRequestDone(res, err)
		}

		// Check if we should retry
		if rt.retry.Condition == nil ||
			attempt >= rt.retry.Count ||
			!rt.retry.methodAllowed(req.Method) ||
			!rt.retry.Condition(res, err) {
			// No retry
			return res, err
		}

		// Get next delay
		delay := state.NextBackOff()
		if delay == backoff.Stop {
			// Stop
			return res, err
		}

		// The server may dictate the delay
		if rt.retry.RespectRetryAfter {
			if v, ok := retryAfterDelay(res, rt.retry.WaitTimeMax); ok {
				delay = v
			}
		}

		// Trace retry
		attempt++
		if rt.trace != nil && rt.trace.HTTPRequestRetry != nil {
			rt.trace.HTTPRequestRetry(attempt, delay)
		}

		// Drain the failed response, so the connection can be reused
		if res != nil {
			_, _ = io.Copy(io.Discard, res.Body)
			_ = res.Body.Close()
		}

		// Rewind body before retry
		if req.GetBody != nil {
			req.Body, err = req.GetBody()
			if err != nil {
				return nil, fmt.Errorf("cannot rewind body: %w", err)
			}
		}

		// Wait
		select {
		case <-req.Context().Done():
			// context is canceled
			return nil, req.Context().Err()
		case <-time.NewTimer(delay).C:
			// time elapsed, retry
		}
	}
}
