package httpclient

import (
	"context"
	"errors"
	"net/http"
	"sync"
)

// ErrClientClosed is returned by AsyncClient calls issued after Close.
var ErrClientClosed = errors.New("async client is closed")

// Future is the pending result of an asynchronous call.
// It is resolved exactly once; Wait can be called any number of times.
type Future[T any] struct {
	done  chan struct{}
	value T
	err   error
}

func newFuture[T any]() *Future[T] {
	return &Future[T]{done: make(chan struct{})}
}

func failedFuture[T any](err error) *Future[T] {
	f := newFuture[T]()
	f.err = err
	close(f.done)
	return f
}

// Done is closed when the result is available.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Wait suspends the caller until the result is available or the context is
// canceled. Cancellation of the Wait context does not abort the call itself,
// cancel the context passed to the call for that.
func (f *Future[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-ctx.Done():
		var empty T
		return empty, ctx.Err()
	case <-f.done:
		return f.value, f.err
	}
}

// AsyncClient exposes the Client surface as futures resolved by goroutines.
//
// The client owns its connection pool as a scoped resource: Close waits for
// all in-flight calls and releases idle connections, so the usual pattern is
//
//	c, err := httpclient.NewAsync("https://example.com/api/")
//	if err != nil { ... }
//	defer c.Close()
//
// Calls issued concurrently proceed independently, their network I/O and
// retry backoff waits interleave freely. Configuration is shared and
// immutable, so no locking guards the calls themselves.
type AsyncClient struct {
	client Client

	lock   sync.Mutex
	wg     sync.WaitGroup
	closed bool
}

// NewAsync creates an AsyncClient with its own connection pool.
// It fails fast when the base URL is empty or invalid.
func NewAsync(baseURLStr string) (*AsyncClient, error) {
	c, err := New(baseURLStr)
	if err != nil {
		return nil, err
	}
	// Own transport, so Close releases only this client's connections
	return &AsyncClient{client: c.WithTransport(DefaultTransport())}, nil
}

// NewAsyncFromClient wraps an already configured Client.
// The transport is shared, Close then releases the shared pool's idle connections.
func NewAsyncFromClient(c Client) *AsyncClient {
	return &AsyncClient{client: c}
}

// Client returns the underlying synchronous client with the same configuration.
func (a *AsyncClient) Client() Client {
	return a.client
}

// Close waits for all in-flight calls and releases idle connections.
// Calls issued after Close fail with ErrClientClosed.
func (a *AsyncClient) Close() error {
	a.lock.Lock()
	a.closed = true
	a.lock.Unlock()

	a.wg.Wait()

	type idleCloser interface {
		CloseIdleConnections()
	}
	if t, ok := a.client.transport.(idleCloser); ok {
		t.CloseIdleConnections()
	}
	return nil
}

// track registers one in-flight call, it fails after Close.
func (a *AsyncClient) track() bool {
	a.lock.Lock()
	defer a.lock.Unlock()
	if a.closed {
		return false
	}
	a.wg.Add(1)
	return true
}

func (a *AsyncClient) do(ctx context.Context, method, endpoint string, opts []RequestOption) *Future[any] {
	if !a.track() {
		return failedFuture[any](ErrClientClosed)
	}
	f := newFuture[any]()
	go func() {
		defer a.wg.Done()
		defer close(f.done)
		f.value, f.err = a.client.Do(ctx, method, endpoint, opts...)
	}()
	return f
}

func (a *AsyncClient) doRaw(ctx context.Context, method, endpoint string, opts []RequestOption) *Future[*Response] {
	if !a.track() {
		return failedFuture[*Response](ErrClientClosed)
	}
	f := newFuture[*Response]()
	go func() {
		defer a.wg.Done()
		defer close(f.done)
		f.value, f.err = a.client.DoRaw(ctx, method, endpoint, opts...)
	}()
	return f
}

// Do sends a request with the given method and resolves the future with the
// decoded JSON response body, or with *HTTPError / *DecodeError.
func (a *AsyncClient) Do(ctx context.Context, method, endpoint string, opts ...RequestOption) *Future[any] {
	return a.do(ctx, method, endpoint, opts)
}

// DoRaw sends a request with the given method and resolves the future with
// the verbatim response, never failing on HTTP status.
func (a *AsyncClient) DoRaw(ctx context.Context, method, endpoint string, opts ...RequestOption) *Future[*Response] {
	return a.doRaw(ctx, method, endpoint, opts)
}

// Get sends a GET request, the future resolves with the decoded JSON body.
func (a *AsyncClient) Get(ctx context.Context, endpoint string, opts ...RequestOption) *Future[any] {
	return a.do(ctx, http.MethodGet, endpoint, opts)
}

// GetRaw sends a GET request, the future resolves with the verbatim response.
func (a *AsyncClient) GetRaw(ctx context.Context, endpoint string, opts ...RequestOption) *Future[*Response] {
	return a.doRaw(ctx, http.MethodGet, endpoint, opts)
}

// Post sends a POST request, the future resolves with the decoded JSON body.
func (a *AsyncClient) Post(ctx context.Context, endpoint string, opts ...RequestOption) *Future[any] {
	return a.do(ctx, http.MethodPost, endpoint, opts)
}

// PostRaw sends a POST request, the future resolves with the verbatim response.
func (a *AsyncClient) PostRaw(ctx context.Context, endpoint string, opts ...RequestOption) *Future[*Response] {
	return a.doRaw(ctx, http.MethodPost, endpoint, opts)
}

// Put sends a PUT request, the future resolves with the decoded JSON body.
func (a *AsyncClient) Put(ctx context.Context, endpoint string, opts ...RequestOption) *Future[any] {
	return a.do(ctx, http.MethodPut, endpoint, opts)
}

// PutRaw sends a PUT request, the future resolves with the verbatim response.
func (a *AsyncClient) PutRaw(ctx context.Context, endpoint string, opts ...RequestOption) *Future[*Response] {
	return a.doRaw(ctx, http.MethodPut, endpoint, opts)
}

// Patch sends a PATCH request, the future resolves with the decoded JSON body.
func (a *AsyncClient) Patch(ctx context.Context, endpoint string, opts ...RequestOption) *Future[any] {
	return a.do(ctx, http.MethodPatch, endpoint, opts)
}

// PatchRaw sends a PATCH request, the future resolves with the verbatim response.
func (a *AsyncClient) PatchRaw(ctx context.Context, endpoint string, opts ...RequestOption) *Future[*Response] {
	return a.doRaw(ctx, http.MethodPatch, endpoint, opts)
}

// Delete sends a DELETE request, the future resolves with the decoded JSON body.
func (a *AsyncClient) Delete(ctx context.Context, endpoint string, opts ...RequestOption) *Future[any] {
	return a.do(ctx, http.MethodDelete, endpoint, opts)
}

// DeleteRaw sends a DELETE request, the future resolves with the verbatim response.
func (a *AsyncClient) DeleteRaw(ctx context.Context, endpoint string, opts ...RequestOption) *Future[*Response] {
	return a.doRaw(ctx, http.MethodDelete, endpoint, opts)
}

// Update sends an UPDATE request, the future resolves with the decoded JSON body.
func (a *AsyncClient) Update(ctx context.Context, endpoint string, opts ...RequestOption) *Future[any] {
	return a.do(ctx, MethodUpdate, endpoint, opts)
}

// UpdateRaw sends an UPDATE request, the future resolves with the verbatim response.
func (a *AsyncClient) UpdateRaw(ctx context.Context, endpoint string, opts ...RequestOption) *Future[*Response] {
	return a.doRaw(ctx, MethodUpdate, endpoint, opts)
}
