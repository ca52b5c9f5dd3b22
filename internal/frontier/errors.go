package frontier

import (
	"fmt"

	"github.com/nullmapper/distcrawler/pkg/failure"
)

type ErrorCause string

const (
	ErrCauseStoreUnavailable = ErrorCause("store unavailable")
)

type FrontierError struct {
	Message string
	Cause   ErrorCause
}

func (e *FrontierError) Error() string {
	return fmt.Sprintf("frontier error: %s: %s", e.Cause, e.Message)
}

func (e *FrontierError) Severity() failure.Severity {
	return failure.SeverityRecoverable
}
