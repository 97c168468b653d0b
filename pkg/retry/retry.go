// Package retry repeats operations that fail for transient reasons, such as
// a database that is still starting when the server comes up.
//
// Only errors marked with [Transient] are retried:
//
//	err := retry.Do(ctx, 5, 500*time.Millisecond, func() error {
//	    st, err = storage.NewMongoStore(ctx, cfg)
//	    if err != nil {
//	        return retry.Transient(err)
//	    }
//	    return nil
//	})
package retry

import (
	"context"
	"errors"
	"time"
)

// transientError marks an error as worth another attempt.
type transientError struct{ err error }

func (e *transientError) Error() string { return e.err.Error() }
func (e *transientError) Unwrap() error { return e.err }

// Transient marks err as retryable. A nil err stays nil.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return &transientError{err: err}
}

// IsTransient reports whether err was marked with [Transient].
func IsTransient(err error) bool {
	return errors.As(err, new(*transientError))
}

// Do calls fn up to attempts times, doubling delay after each transient
// failure. Other errors are returned at once. The last error is returned
// unwrapped from its transient marker, or ctx.Err() if ctx ends first.
func Do(ctx context.Context, attempts int, delay time.Duration, fn func() error) error {
	attempts = max(attempts, 1)
	var lastErr error

	for i := range attempts {
		err := fn()
		if err == nil {
			return nil
		}
		var te *transientError
		if !errors.As(err, &te) {
			return err
		}
		lastErr = te.err

		if i < attempts-1 {
			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
				delay *= 2
			}
		}
	}
	return lastErr
}
