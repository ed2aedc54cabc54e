package httpclient_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/keboola/go-http-client/pkg/httpclient"
)

func TestProcessMultiple(t *testing.T) {
	t.Parallel()
	c, transport := NewMockedClient("https://example.com")
	for i := range 3 {
		transport.RegisterResponder(
			"GET", fmt.Sprintf("https://example.com/foo/%d", i),
			httpmock.NewJsonResponderOrPanic(200, map[string]any{"n": i}),
		)
	}
	transport.RegisterResponder("POST", "https://example.com/raw", httpmock.NewStringResponder(201, "created"))

	a := NewAsyncFromClient(c)
	defer a.Close()

	results, err := a.ProcessMultiple(context.Background(), []Job{
		{Method: "GET", Endpoint: "foo/0"},
		{Method: "GET", Endpoint: "foo/1"},
		{Method: "GET", Endpoint: "foo/2"},
		{Method: "POST", Endpoint: "raw", Raw: true},
	})
	require.NoError(t, err)
	require.Len(t, results, 4)

	// Results keep the job order
	for i := range 3 {
		assert.NoError(t, results[i].Err)
		assert.Equal(t, map[string]any{"n": float64(i)}, results[i].Result)
		assert.Nil(t, results[i].Response)
	}

	// The raw job carries the verbatim response
	assert.NoError(t, results[3].Err)
	assert.Nil(t, results[3].Result)
	assert.Equal(t, 201, results[3].Response.StatusCode())
	assert.Equal(t, "created", results[3].Response.String())
}

func TestProcessMultipleStopsOnFirstError(t *testing.T) {
	t.Parallel()
	c, transport := NewMockedClient("https://example.com")
	transport.RegisterResponder("GET", "https://example.com/fail", httpmock.NewJsonResponderOrPanic(404, map[string]any{"error": "not found"}))

	a := NewAsyncFromClient(c)
	defer a.Close()

	results, err := a.ProcessMultiple(context.Background(), []Job{
		{Method: "GET", Endpoint: "fail"},
	})
	require.Error(t, err)

	httpErr := &HTTPError{}
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, 404, httpErr.StatusCode)

	// The failed job can be identified in the results
	require.Len(t, results, 1)
	assert.Equal(t, err, results[0].Err)
}

func TestProcessMultipleUnsupportedMethod(t *testing.T) {
	t.Parallel()
	c, _ := NewMockedClient("https://example.com")

	a := NewAsyncFromClient(c)
	defer a.Close()

	_, err := a.ProcessMultiple(context.Background(), []Job{
		{Method: "GET", Endpoint: "foo"},
		{Method: "TRACE", Endpoint: "foo"},
	})
	require.Error(t, err)
	assert.Equal(t, `job[1]: unsupported method "TRACE"`, err.Error())
}

func TestProcessMultipleAfterClose(t *testing.T) {
	t.Parallel()
	c, _ := NewMockedClient("https://example.com")

	a := NewAsyncFromClient(c)
	require.NoError(t, a.Close())

	_, err := a.ProcessMultiple(context.Background(), []Job{{Method: "GET", Endpoint: "foo"}})
	assert.ErrorIs(t, err, ErrClientClosed)
}

func TestProcessMultipleEmpty(t *testing.T) {
	t.Parallel()
	c, _ := NewMockedClient("https://example.com")

	a := NewAsyncFromClient(c)
	defer a.Close()

	results, err := a.ProcessMultiple(context.Background(), nil)
	assert.NoError(t, err)
	assert.Empty(t, results)
}
