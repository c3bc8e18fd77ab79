// Package wait is the polling engine behind every Should and readiness gate.
// It re-evaluates a check at a fixed interval until the check matches, the
// timeout elapses, or the context ends. There is no backoff; the interval
// and the timeout are the only knobs.
package wait

import (
	"context"
	"fmt"
	"time"
)

// Check probes the current state of a subject. An error means the state
// could not be determined right now (for example the element does not exist
// yet); it is not a verdict.
type Check func(ctx context.Context) (bool, error)

// TimeoutError reports that a wait expired. It carries the subject and
// condition descriptions for diagnostics and the last evaluation error, if
// any, as its cause.
type TimeoutError struct {
	Subject   string
	Condition string
	Timeout   time.Duration
	Negated   bool
	LastErr   error
}

func (e *TimeoutError) Error() string {
	verb := "become"
	if e.Negated {
		verb = "stop being"
	}
	msg := fmt.Sprintf("timed out after %s waiting for %s to %s %s", e.Timeout, e.Subject, verb, e.Condition)
	if e.LastErr != nil {
		msg += fmt.Sprintf(" (last failure: %v)", e.LastErr)
	}
	return msg
}

func (e *TimeoutError) Unwrap() error {
	return e.LastErr
}

// Until blocks until check reports true, failing with *TimeoutError once the
// deadline passes. Evaluation errors are swallowed and treated as "not yet
// satisfied" so a check may probe an element that does not exist yet.
func Until(ctx context.Context, subject, condition string, timeout, interval time.Duration, check Check) error {
	return poll(ctx, subject, condition, timeout, interval, check, true)
}

// UntilNot blocks until check reports false. An evaluation error counts as
// "condition does not hold" and therefore succeeds immediately: a visibility
// check against a vanished element is the expected way for visibility to end.
func UntilNot(ctx context.Context, subject, condition string, timeout, interval time.Duration, check Check) error {
	return poll(ctx, subject, condition, timeout, interval, check, false)
}

func poll(ctx context.Context, subject, condition string, timeout, interval time.Duration, check Check, want bool) error {
	deadline := time.Now().Add(timeout)
	var lastErr error

	for {
		ok, err := check(ctx)
		if err == nil && ok == want {
			return nil
		}
		if err != nil {
			if !want {
				return nil
			}
			lastErr = err
		} else {
			lastErr = nil
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			return &TimeoutError{
				Subject:   subject,
				Condition: condition,
				Timeout:   timeout,
				Negated:   !want,
				LastErr:   lastErr,
			}
		}

		tick := interval
		if tick > remaining {
			tick = remaining
		}
		timer := time.NewTimer(tick)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		}
	}
}
