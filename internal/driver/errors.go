package driver

import "fmt"

// TransactionError reports a failed instruction submission or confirmation.
// Fatal to the operation; the driver never retries it.
type TransactionError struct {
	Op  string
	Err error
}

func (e *TransactionError) Error() string {
	return fmt.Sprintf("transaction %s failed: %v", e.Op, e.Err)
}

func (e *TransactionError) Unwrap() error { return e.Err }

// SubscriptionError reports a failed event subscription registration, a dead
// notification stream, or a misused Unsubscribe.
type SubscriptionError struct {
	Event string
	Err   error
}

func (e *SubscriptionError) Error() string {
	return fmt.Sprintf("subscription %q failed: %v", e.Event, e.Err)
}

func (e *SubscriptionError) Unwrap() error { return e.Err }

// TimeoutError reports that an expected event did not arrive before the
// caller's context expired.
type TimeoutError struct {
	Event string
	Err   error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("timed out waiting for %q event: %v", e.Event, e.Err)
}

func (e *TimeoutError) Unwrap() error { return e.Err }
