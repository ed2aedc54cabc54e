package httpclient

import (
	"os"

	"github.com/jarcoal/httpmock"

	"github.com/keboola/go-http-client/pkg/httpclient/trace"
)

var testTransport = DefaultTransport() //nolint:gochecknoglobals

// NewTestClient creates a Client for tests, it panics on an invalid base URL.
//
// If the TEST_HTTP_CLIENT_VERBOSE environment variable is set to "true",
// then all HTTP requests and responses are dumped to stdout.
//
// Output may contain unmasked tokens, do not use it in production.
func NewTestClient(baseURL string) Client {
	c, err := New(baseURL)
	if err != nil {
		panic(err)
	}
	c = c.WithTransport(testTransport)
	if os.Getenv("TEST_HTTP_CLIENT_VERBOSE") == "true" {
		c = c.AndTrace(trace.DumpTracer(os.Stdout))
	}
	return c
}

// NewMockedClient creates a Client with a mocked HTTP transport and fast retries.
func NewMockedClient(baseURL string) (Client, *httpmock.MockTransport) {
	mockTransport := httpmock.NewMockTransport()
	return NewTestClient(baseURL).WithTransport(mockTransport).WithRetry(TestingRetry()), mockTransport
}
