package worker

import (
	"fmt"

	"github.com/nullmapper/distcrawler/pkg/failure"
)

type ErrorCause string

const ErrCauseUpstreamFailure = ErrorCause("upstream component failure")

// WorkerError describes a dropped-URL outage and is always
// recoverable. ProcessOne does not construct it: on an outage it logs
// the collaborator's own error and moves on to the next claim. There
// is no poisoned-message quarantine — the frontier is the only durable
// queue, and link rediscovery is what reintroduces a dropped URL.
type WorkerError struct {
	Message string
	Cause   ErrorCause
}

func (e *WorkerError) Error() string {
	return fmt.Sprintf("worker error: %s: %s", e.Cause, e.Message)
}

func (e *WorkerError) Severity() failure.Severity {
	return failure.SeverityRecoverable
}
