package ratelimit

import (
	"fmt"

	"github.com/nullmapper/distcrawler/pkg/failure"
)

type ErrorCause string

const (
	ErrCauseStoreUnavailable = ErrorCause("store unavailable")
)

type RateLimitError struct {
	Message string
	Cause   ErrorCause
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limiter error: %s: %s", e.Cause, e.Message)
}

func (e *RateLimitError) Severity() failure.Severity {
	return failure.SeverityRecoverable
}
