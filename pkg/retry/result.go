package retry

import "github.com/nullmapper/distcrawler/pkg/failure"

// Result carries the outcome of a Retry call: the value of the
// successful attempt (the zero value on failure), the terminal error
// (nil on success), and how many attempts were made.
type Result[T any] struct {
	value    T
	err      failure.ClassifiedError
	attempts int
}

// NewSuccessResult wraps a successful value and the attempt count it
// succeeded on.
func NewSuccessResult[T any](value T, attempts int) Result[T] {
	return Result[T]{value: value, attempts: attempts}
}

func (r Result[T]) Value() T {
	return r.value
}

func (r Result[T]) Err() failure.ClassifiedError {
	return r.err
}

func (r Result[T]) Attempts() int {
	return r.attempts
}

func (r Result[T]) IsFailure() bool {
	return r.err != nil
}

func (r Result[T]) IsSuccess() bool {
	return r.err == nil
}
