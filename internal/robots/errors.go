package robots

import (
	"fmt"

	"github.com/nullmapper/distcrawler/pkg/failure"
)

type ErrorCause string

const (
	ErrCauseStoreUnavailable = ErrorCause("store unavailable")
)

// FetchError is never returned to callers of IsAllowed — robots fetch
// failures are swallowed and treated as allow-all per policy. The
// internal fetch path does not construct it either: it returns an
// empty document on any failure.
type FetchError struct {
	Message string
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("robots fetch error: %s", e.Message)
}

func (e *FetchError) Severity() failure.Severity {
	return failure.SeverityRecoverable
}

type CacheError struct {
	Message string
	Cause   ErrorCause
}

func (e *CacheError) Error() string {
	return fmt.Sprintf("robots cache error: %s: %s", e.Cause, e.Message)
}

func (e *CacheError) Severity() failure.Severity {
	return failure.SeverityRecoverable
}
