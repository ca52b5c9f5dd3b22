package linkextract

import (
	"fmt"

	"github.com/nullmapper/distcrawler/pkg/failure"
)

type ErrorCause string

const (
	ErrCauseNotHTML = ErrorCause("not html")
)

type ExtractError struct {
	Message string
	Cause   ErrorCause
}

func (e *ExtractError) Error() string {
	return fmt.Sprintf("link extract error: %s: %s", e.Cause, e.Message)
}

func (e *ExtractError) Severity() failure.Severity {
	return failure.SeverityRecoverable
}
