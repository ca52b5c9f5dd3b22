package fetcher

import (
	"fmt"

	"github.com/nullmapper/distcrawler/pkg/failure"
)

type ErrorCause string

const (
	ErrCauseRequestBuild   = ErrorCause("request build failure")
	ErrCauseNetworkFailure = ErrorCause("network failure")
	ErrCauseReadBody       = ErrorCause("response body read failure")
)

// FetchError represents a transport-level failure: the request never
// completed with a response. A completed response, whatever its status
// or content type, is never a FetchError — see Outcome.
type FetchError struct {
	Message   string
	Retryable bool
	Cause     ErrorCause
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch error: %s: %s", e.Cause, e.Message)
}

func (e *FetchError) Severity() failure.Severity {
	if e.Retryable {
		return failure.SeverityRecoverable
	}
	return failure.SeverityFatal
}

func (e *FetchError) IsRetryable() bool {
	return e.Retryable
}
