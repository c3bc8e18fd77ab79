package driver

import (
	"errors"
	"fmt"
)

// NotFoundError reports that a find-exactly-one operation matched zero
// elements. Locator carries the human-readable description of what was
// searched for.
type NotFoundError struct {
	Locator string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no element found: %s", e.Locator)
}

// StaleError wraps a driver failure caused by the DOM changing between
// locating an element and operating on it: the node was detached, replaced,
// or is not interactable right now. These are the errors the query core
// retries once after a readiness wait.
type StaleError struct {
	Reason string
	Err    error
}

func (e *StaleError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("stale element (%s): %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("stale element (%s)", e.Reason)
}

func (e *StaleError) Unwrap() error {
	return e.Err
}

// IsNotFound reports whether err is a zero-match failure.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsTransient reports whether err belongs to the class of failures that a
// re-resolution may heal: staleness, non-interactability, or the element not
// existing yet. Anything else (invalid selector syntax, protocol errors) is
// permanent and must surface on first occurrence.
func IsTransient(err error) bool {
	var se *StaleError
	if errors.As(err, &se) {
		return true
	}
	return IsNotFound(err)
}
