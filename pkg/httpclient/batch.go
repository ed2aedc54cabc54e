package httpclient

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

// Job describes one request in a batch processed by AsyncClient.ProcessMultiple.
type Job struct {
	// Method is one of GET, POST, PUT, PATCH, DELETE, UPDATE.
	Method string
	// Endpoint is resolved against the client base URL, see WithAbsolutePath.
	Endpoint string
	// Options are applied on top of the client defaults.
	Options []RequestOption
	// Raw disables JSON decoding and error raising for this job,
	// the verbatim response is stored in JobResult.Response.
	Raw bool
}

// JobResult is the outcome of one batch Job, in the same order as the jobs.
type JobResult struct {
	// Result is the decoded JSON body, nil for raw jobs and empty responses.
	Result any
	// Response is the verbatim response, set for raw jobs only.
	Response *Response
	// Err is the job error, it is also the batch error if it occurred first.
	Err error
}

// ProcessMultiple sends all jobs concurrently and waits for them.
//
// The batch stops at the first error, the error is returned and pending jobs
// are canceled. Results are returned in the job order even on failure, so the
// failed job can be identified by its JobResult.Err.
func (a *AsyncClient) ProcessMultiple(ctx context.Context, jobs []Job) ([]JobResult, error) {
	if !a.track() {
		return nil, ErrClientClosed
	}
	defer a.wg.Done()

	for i, job := range jobs {
		if err := validateJobMethod(job.Method); err != nil {
			return nil, fmt.Errorf(`job[%d]: %w`, i, err)
		}
	}

	results := make([]JobResult, len(jobs))
	grp := NewRunGroup(ctx)
	for i, job := range jobs {
		grp.Add(func(ctx context.Context) error {
			r := &results[i]
			if job.Raw {
				r.Response, r.Err = a.client.DoRaw(ctx, job.Method, job.Endpoint, job.Options...)
			} else {
				r.Result, r.Err = a.client.Do(ctx, job.Method, job.Endpoint, job.Options...)
			}
			return r.Err
		})
	}

	if err := grp.RunAndWait(); err != nil {
		return results, err
	}
	return results, nil
}

func validateJobMethod(method string) error {
	switch strings.ToUpper(method) {
	case http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, MethodUpdate:
		return nil
	default:
		return fmt.Errorf(`unsupported method "%s"`, method)
	}
}
