package trace_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	. "github.com/keboola/go-http-client/pkg/httpclient/trace"
)

func TestClientTraceCompose(t *testing.T) {
	t.Parallel()

	var calls []string
	oldTrace := &ClientTrace{
		HTTPRequestStart: func(request *http.Request) {
			calls = append(calls, "old:start")
		},
		HTTPRequestRetry: func(attempt int, delay time.Duration) {
			calls = append(calls, "old:retry")
		},
	}
	newTrace := &ClientTrace{
		HTTPRequestStart: func(request *http.Request) {
			calls = append(calls, "new:start")
		},
		RequestProcessed: func(result any, err error) {
			calls = append(calls, "new:processed")
		},
	}

	newTrace.Compose(oldTrace)

	// Both hooks run, the old one first
	newTrace.HTTPRequestStart(nil)
	assert.Equal(t, []string{"old:start", "new:start"}, calls)

	// A hook defined only in the old trace is inherited
	calls = nil
	newTrace.HTTPRequestRetry(1, time.Second)
	assert.Equal(t, []string{"old:retry"}, calls)

	// A hook defined only in the new trace is kept
	calls = nil
	newTrace.RequestProcessed(nil, nil)
	assert.Equal(t, []string{"new:processed"}, calls)
}

func TestClientTraceComposeEmbedded(t *testing.T) {
	t.Parallel()

	// Hooks in the embedded httptrace.ClientTrace are composed too
	var calls []string
	oldTrace := &ClientTrace{}
	oldTrace.ConnectStart = func(network, addr string) {
		calls = append(calls, "old:connect")
	}
	newTrace := &ClientTrace{}
	newTrace.ConnectStart = func(network, addr string) {
		calls = append(calls, "new:connect")
	}

	newTrace.Compose(oldTrace)
	newTrace.ConnectStart("tcp", "example.com:443")
	assert.Equal(t, []string{"old:connect", "new:connect"}, calls)
}

func TestClientTraceComposeNil(t *testing.T) {
	t.Parallel()

	var called bool
	tc := &ClientTrace{
		HTTPRequestStart: func(request *http.Request) {
			called = true
		},
	}
	tc.Compose(nil)
	tc.HTTPRequestStart(nil)
	assert.True(t, called)
}
