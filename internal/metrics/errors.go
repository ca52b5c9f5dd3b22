package metrics

import (
	"fmt"

	"github.com/nullmapper/distcrawler/pkg/failure"
)

type ErrorCause string

const (
	ErrCauseStoreUnavailable = ErrorCause("store unavailable")
	ErrCauseWriteFailure     = ErrorCause("file write failure")
)

type MetricsError struct {
	Message string
	Cause   ErrorCause
}

func (e *MetricsError) Error() string {
	return fmt.Sprintf("metrics error: %s: %s", e.Cause, e.Message)
}

func (e *MetricsError) Severity() failure.Severity {
	return failure.SeverityRecoverable
}
