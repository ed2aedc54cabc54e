// Package trace extends httptrace.ClientTrace with hooks for the HTTP client
// request lifecycle: attempt start/done, retry delays, response body reading
// and request completion. A ClientTrace factory can be registered in the
// client by the AndTrace method.
package trace

import (
	"net/http"
	"net/http/httptrace"
	"reflect"
	"time"
)

// Factory creates ClientTrace hooks for one request.
type Factory func() *ClientTrace

// ClientTrace is a set of hooks to run at various stages of an outgoing request.
type ClientTrace struct {
	httptrace.ClientTrace // native, low level trace
	// HTTPRequestStart is called when a request attempt begins. It includes redirects and retries.
	HTTPRequestStart func(request *http.Request)
	// HTTPRequestDone is called when a request attempt completes. It includes redirects and retries.
	HTTPRequestDone func(response *http.Response, err error)
	// HTTPRequestRetry is called before the retry delay.
	HTTPRequestRetry func(attempt int, delay time.Duration)
	// ResponseBodyDone is called when the response body has been fully read and closed.
	ResponseBodyDone func(bytes int64, err error)
	// RequestProcessed is called when the whole request is done, with the final response and error.
	RequestProcessed func(result any, err error)
}

// Compose modifies t such that it respects the previously-registered hooks in old.
// Hooks in the embedded httptrace.ClientTrace are composed too.
// Modeled on httptrace.compose.
func (t *ClientTrace) Compose(old *ClientTrace) {
	if old == nil {
		return
	}
	composeHooks(reflect.ValueOf(t).Elem(), reflect.ValueOf(old).Elem())
}

func composeHooks(tv, ov reflect.Value) {
	structType := tv.Type()
	for i := 0; i < structType.NumField(); i++ {
		tf := tv.Field(i)
		hookType := tf.Type()
		if hookType.Kind() == reflect.Struct {
			composeHooks(tf, ov.Field(i))
			continue
		}
		if hookType.Kind() != reflect.Func {
			continue
		}
		of := ov.Field(i)
		if of.IsNil() {
			continue
		}
		if tf.IsNil() {
			tf.Set(of)
			continue
		}

		// Make a copy of tf for tf to call. (Otherwise it
		// creates a recursive call cycle and stack overflows)
		tfCopy := reflect.ValueOf(tf.Interface())

		// Call the old hook first, then the new one.
		newFunc := reflect.MakeFunc(hookType, func(args []reflect.Value) []reflect.Value {
			of.Call(args)
			return tfCopy.Call(args)
		})
		tv.Field(i).Set(newFunc)
	}
}
