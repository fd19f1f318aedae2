package llm

import "errors"

// classifiedError wraps a completion failure with the retry policy it
// deserves. One type carries both classes so classification lives in the
// constructors, not in parallel type hierarchies.
type classifiedError struct {
	err       error
	retryable bool
}

func (e *classifiedError) Error() string { return e.err.Error() }

func (e *classifiedError) Unwrap() error { return e.err }

// NewTransientError marks err as worth retrying against the same endpoint:
// 5xx responses, timeouts, connection resets.
func NewTransientError(err error) error {
	return &classifiedError{err: err, retryable: true}
}

// NewFatalError marks err as one retrying cannot cure, such as bad
// credentials or a malformed request. The client moves straight to the
// capability's fallback chain.
func NewFatalError(err error) error {
	return &classifiedError{err: err, retryable: false}
}

// IsTransient reports whether the error should be retried.
func IsTransient(err error) bool {
	var ce *classifiedError
	return errors.As(err, &ce) && ce.retryable
}

// IsFatal reports whether retrying the error is pointless.
func IsFatal(err error) bool {
	var ce *classifiedError
	return errors.As(err, &ce) && !ce.retryable
}
