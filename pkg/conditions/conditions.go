// Package conditions defines the describable predicates the wait engine
// polls. A condition is an immutable value: a name used in timeout
// diagnostics plus a test against a freshly resolved driver handle (or a
// handle slice for collections). Conditions never wait themselves; waiting
// belongs to pkg/wait.
package conditions

import (
	"context"
	"fmt"

	"github.com/xkilldash9x/domscope/api/driver"
)

// Element is a predicate over a single element handle.
type Element struct {
	desc string
	test func(ctx context.Context, h driver.Handle) (bool, error)
}

// NewElement builds an element condition from a description and a test.
func NewElement(desc string, test func(ctx context.Context, h driver.Handle) (bool, error)) Element {
	return Element{desc: desc, test: test}
}

// Match evaluates the condition against h. Errors mean the condition could
// not be evaluated right now; the wait engine decides what that implies.
func (c Element) Match(ctx context.Context, h driver.Handle) (bool, error) {
	if c.test == nil {
		return false, fmt.Errorf("condition %q has no test", c.desc)
	}
	return c.test(ctx, h)
}

func (c Element) String() string {
	return c.desc
}

// And combines two element conditions; both must hold.
func (c Element) And(other Element) Element {
	return Element{
		desc: c.desc + " and " + other.desc,
		test: func(ctx context.Context, h driver.Handle) (bool, error) {
			ok, err := c.Match(ctx, h)
			if err != nil || !ok {
				return false, err
			}
			return other.Match(ctx, h)
		},
	}
}

// Not inverts an element condition. Evaluation errors still propagate; only
// a clean false becomes true.
func Not(c Element) Element {
	return Element{
		desc: "not " + c.desc,
		test: func(ctx context.Context, h driver.Handle) (bool, error) {
			ok, err := c.Match(ctx, h)
			if err != nil {
				return false, err
			}
			return !ok, nil
		},
	}
}

// Collection is a predicate over the full resolved element list.
type Collection struct {
	desc string
	test func(ctx context.Context, hs []driver.Handle) (bool, error)
}

// NewCollection builds a collection condition from a description and a test.
func NewCollection(desc string, test func(ctx context.Context, hs []driver.Handle) (bool, error)) Collection {
	return Collection{desc: desc, test: test}
}

// Match evaluates the condition against the resolved handles.
func (c Collection) Match(ctx context.Context, hs []driver.Handle) (bool, error) {
	if c.test == nil {
		return false, fmt.Errorf("condition %q has no test", c.desc)
	}
	return c.test(ctx, hs)
}

func (c Collection) String() string {
	return c.desc
}
