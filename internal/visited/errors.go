package visited

import (
	"fmt"

	"github.com/nullmapper/distcrawler/pkg/failure"
)

type ErrorCause string

const (
	ErrCauseStoreUnavailable = ErrorCause("store unavailable")
)

type VisitedError struct {
	Message string
	Cause   ErrorCause
}

func (e *VisitedError) Error() string {
	return fmt.Sprintf("visited error: %s: %s", e.Cause, e.Message)
}

func (e *VisitedError) Severity() failure.Severity {
	return failure.SeverityRecoverable
}
