package httpclient

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/relvacode/iso8601"
)

// RetriesCount - default retries count.
const RetriesCount = 10

// RetryBackoffFactor - default backoff factor, the delay before attempt n+1
// is backoff factor * 2^(n-1) seconds.
const RetryBackoffFactor = 0.3

// RetryWaitTimeMax - default maximum retry interval, also caps Retry-After values.
const RetryWaitTimeMax = 60 * time.Second

// RequestTimeout - default total request timeout, including all retries.
const RequestTimeout = 3 * time.Minute

// RetryConfig configures Client retries.
type RetryConfig struct {
	// Condition decides whether a response/error pair should be retried.
	Condition RetryCondition
	// Methods is the whitelist of HTTP methods eligible for retry.
	Methods []string
	// Count is the maximum number of retries, the first attempt not included.
	Count int
	// BackoffFactor controls exponential spacing between attempts, in seconds.
	BackoffFactor float64
	// WaitTimeMax caps the delay between attempts.
	WaitTimeMax time.Duration
	// TotalRequestTimeout limits the whole request including retries.
	TotalRequestTimeout time.Duration
	// RespectRetryAfter uses the Retry-After response header as the delay when present.
	RespectRetryAfter bool
}

// RetryCondition defines which responses should retry.
type RetryCondition func(*http.Response, error) bool

// DefaultRetry returns a default RetryConfig.
func DefaultRetry() RetryConfig {
	return RetryConfig{
		Condition:           DefaultRetryCondition(),
		Methods:             RetryMethodWhitelist(),
		Count:               RetriesCount,
		BackoffFactor:       RetryBackoffFactor,
		WaitTimeMax:         RetryWaitTimeMax,
		TotalRequestTimeout: RequestTimeout,
		RespectRetryAfter:   true,
	}
}

// TestingRetry - fast retry for use in tests.
func TestingRetry() RetryConfig {
	v := DefaultRetry()
	v.Count = 5
	v.BackoffFactor = 0.000001 // 1 microsecond
	v.WaitTimeMax = 20 * time.Microsecond
	v.TotalRequestTimeout = 0
	return v
}

// RetryMethodWhitelist returns the default set of methods eligible for retry.
// All verbs are retried by default, POST and UPDATE included, matching
// the whitelist this client has always shipped with.
func RetryMethodWhitelist() []string {
	return []string{
		http.MethodGet,
		http.MethodPost,
		http.MethodPatch,
		MethodUpdate,
		http.MethodPut,
		http.MethodDelete,
	}
}

// DefaultRetryCondition retries on common network errors and HTTP status codes
// {429, 500, 502, 503, 504}.
func DefaultRetryCondition() RetryCondition {
	return RetryOnStatuses(
		http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout,
	)
}

// RetryOnStatuses returns a RetryCondition retrying on network errors
// and on the given status forcelist.
func RetryOnStatuses(codes ...int) RetryCondition {
	forcelist := make(map[int]bool, len(codes))
	for _, code := range codes {
		forcelist[code] = true
	}
	return func(response *http.Response, err error) bool {
		// On network errors - except hostname not found
		if response == nil || response.StatusCode == 0 {
			if err == nil {
				return false
			}
			switch {
			case strings.Contains(err.Error(), "No address associated with hostname"):
				return false
			case strings.Contains(err.Error(), "no such host"):
				return false
			default:
				return true
			}
		}
		return forcelist[response.StatusCode]
	}
}

// NewBackoff returns an exponential backoff for HTTP retries.
func (c RetryConfig) NewBackoff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = time.Duration(c.BackoffFactor * float64(time.Second))
	b.MaxInterval = c.WaitTimeMax
	b.MaxElapsedTime = c.TotalRequestTimeout
	b.Multiplier = 2
	b.RandomizationFactor = 0
	b.Reset()
	return b
}

func (c RetryConfig) methodAllowed(method string) bool {
	if len(c.Methods) == 0 {
		return true
	}
	for _, m := range c.Methods {
		if strings.EqualFold(m, method) {
			return true
		}
	}
	return false
}

// retryAfterDelay reads the Retry-After response header, either a number of
// seconds or an ISO 8601 / RFC 1123 date, capped at the max delay.
func retryAfterDelay(response *http.Response, maxDelay time.Duration) (time.Duration, bool) {
	if response == nil {
		return 0, false
	}
	value := strings.TrimSpace(response.Header.Get("Retry-After"))
	if value == "" {
		return 0, false
	}
	if seconds, err := strconv.Atoi(value); err == nil {
		if seconds < 0 {
			return 0, false
		}
		return capDelay(time.Duration(seconds)*time.Second, maxDelay), true
	}
	if at, err := iso8601.ParseString(value); err == nil {
		if delay := time.Until(at); delay > 0 {
			return capDelay(delay, maxDelay), true
		}
		return 0, false
	}
	if at, err := http.ParseTime(value); err == nil {
		if delay := time.Until(at); delay > 0 {
			return capDelay(delay, maxDelay), true
		}
	}
	return 0, false
}

func capDelay(delay, maxDelay time.Duration) time.Duration {
	if maxDelay > 0 && delay > maxDelay {
		return maxDelay
	}
	return delay
}
