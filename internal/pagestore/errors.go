package pagestore

import (
	"fmt"

	"github.com/nullmapper/distcrawler/pkg/failure"
)

type ErrorCause string

const (
	ErrCauseConnectFailure = ErrorCause("connect failure")
	ErrCauseWriteFailure   = ErrorCause("write failure")
	ErrCauseReadFailure    = ErrorCause("read failure")
	ErrCauseIndexFailure   = ErrorCause("index failure")
)

type StoreError struct {
	Message   string
	Retryable bool
	Cause     ErrorCause
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("page store error: %s: %s", e.Cause, e.Message)
}

func (e *StoreError) Severity() failure.Severity {
	if e.Retryable {
		return failure.SeverityRecoverable
	}
	return failure.SeverityFatal
}
