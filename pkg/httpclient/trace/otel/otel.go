// Package otel provides an OpenTelemetry tracer and meters for the HTTP client.
//
// One span "keboola.go.http_client.request" is created per logical request,
// it wraps all attempts and retry delays together. Retries are recorded as
// span events. Metric names start with "keboola.go.http_client."
// (meterPrefix const).
package otel

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	otelMetric "go.opentelemetry.io/otel/metric"
	metricNoop "go.opentelemetry.io/otel/metric/noop"
	otelTrace "go.opentelemetry.io/otel/trace"
	traceNoop "go.opentelemetry.io/otel/trace/noop"

	"github.com/keboola/go-http-client/pkg/httpclient/trace"
)

const (
	instrumentationName = "github.com/keboola/go-http-client"
	requestSpanName     = "keboola.go.http_client.request"
	retryEventName      = "keboola.go.http_client.retry"
	meterPrefix         = "keboola.go.http_client."

	attrMethod       = attribute.Key("http.request.method")
	attrURL          = attribute.Key("http.url")
	attrHost         = attribute.Key("http.host")
	attrStatusCode   = attribute.Key("http.response.status_code")
	attrRetryAttempt = attribute.Key("http.retry.attempt")
	attrRetryDelay   = attribute.Key("http.retry.delay_ms")
	attrBodyBytes    = attribute.Key("http.response.body_bytes")
)

type meters struct {
	inFlight  otelMetric.Int64UpDownCounter
	duration  otelMetric.Float64Histogram
	retries   otelMetric.Int64Counter
	bodyBytes otelMetric.Int64Counter
}

func newMeters(meter otelMetric.Meter) *meters {
	return &meters{
		inFlight:  mustInstrument(meter.Int64UpDownCounter(meterPrefix+"request.in_flight", otelMetric.WithDescription("HTTP client: in flight requests."))),
		duration:  mustInstrument(meter.Float64Histogram(meterPrefix+"request.duration", otelMetric.WithDescription("HTTP client: request duration."), otelMetric.WithUnit("ms"))),
		retries:   mustInstrument(meter.Int64Counter(meterPrefix+"request.retries", otelMetric.WithDescription("HTTP client: request retry attempts."))),
		bodyBytes: mustInstrument(meter.Int64Counter(meterPrefix+"response.body_bytes", otelMetric.WithDescription("HTTP client: decoded response body bytes."))),
	}
}

func mustInstrument[T any](instrument T, err error) T {
	if err != nil {
		panic(err)
	}
	return instrument
}

// NewTrace creates a trace.Factory providing OpenTelemetry telemetry.
// Nil providers are replaced by noop implementations.
func NewTrace(tracerProvider otelTrace.TracerProvider, meterProvider otelMetric.MeterProvider) trace.Factory {
	if tracerProvider == nil {
		tracerProvider = traceNoop.NewTracerProvider()
	}
	if meterProvider == nil {
		meterProvider = metricNoop.NewMeterProvider()
	}
	tracer := tracerProvider.Tracer(instrumentationName)
	meters := newMeters(meterProvider.Meter(instrumentationName))

	return func() *trace.ClientTrace {
		tc := &trace.ClientTrace{}

		var spanCtx context.Context
		var span otelTrace.Span
		var startTime time.Time
		var reqAttrs []attribute.KeyValue
		var lastStatus int

		tc.HTTPRequestStart = func(req *http.Request) {
			// The span wraps all attempts, start it only once
			if span == nil {
				startTime = time.Now()
				reqAttrs = []attribute.KeyValue{
					attrMethod.String(req.Method),
					attrURL.String(req.URL.String()),
					attrHost.String(req.URL.Host),
				}
				spanCtx, span = tracer.Start(
					req.Context(),
					requestSpanName,
					otelTrace.WithSpanKind(otelTrace.SpanKindClient),
					otelTrace.WithAttributes(reqAttrs...),
				)
				meters.inFlight.Add(spanCtx, 1, otelMetric.WithAttributes(reqAttrs...))
			}
		}
		tc.HTTPRequestDone = func(res *http.Response, err error) {
			if res != nil {
				lastStatus = res.StatusCode
			}
		}
		tc.HTTPRequestRetry = func(attempt int, delay time.Duration) {
			if span != nil {
				span.AddEvent(retryEventName, otelTrace.WithAttributes(
					attrRetryAttempt.Int(attempt),
					attrRetryDelay.Int64(delay.Milliseconds()),
				))
				meters.retries.Add(spanCtx, 1, otelMetric.WithAttributes(reqAttrs...))
			}
		}
		tc.ResponseBodyDone = func(bytes int64, err error) {
			if span != nil {
				span.SetAttributes(attrBodyBytes.Int64(bytes))
				meters.bodyBytes.Add(spanCtx, bytes, otelMetric.WithAttributes(reqAttrs...))
			}
		}
		tc.RequestProcessed = func(result any, err error) {
			if span == nil {
				return
			}
			elapsed := float64(time.Since(startTime)) / float64(time.Millisecond)
			doneAttrs := reqAttrs
			if lastStatus != 0 {
				doneAttrs = append(doneAttrs, attrStatusCode.Int(lastStatus))
				span.SetAttributes(attrStatusCode.Int(lastStatus))
			}
			meters.inFlight.Add(spanCtx, -1, otelMetric.WithAttributes(reqAttrs...)) // same dimensions as +1
			meters.duration.Record(spanCtx, elapsed, otelMetric.WithAttributes(doneAttrs...))
			switch {
			case err != nil:
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
			case lastStatus >= http.StatusBadRequest:
				httpErr := fmt.Errorf(`HTTP status code: %d %s`, lastStatus, http.StatusText(lastStatus))
				span.RecordError(httpErr)
				span.SetStatus(codes.Error, httpErr.Error())
			}
			span.End()
			span = nil
		}
		return tc
	}
}
