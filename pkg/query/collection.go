package query

import (
	"context"
	"time"

	"github.com/xkilldash9x/domscope/pkg/conditions"
	"github.com/xkilldash9x/domscope/pkg/wait"

	"github.com/xkilldash9x/domscope/api/driver"
)

// Collection is a lazy reference to an ordered element sequence. Like
// Element it owns only a locator; Size, iteration, and every derived view
// observe the live document, never a snapshot. Derivation methods are pure
// and perform no driver calls.
type Collection struct {
	core
	locator CollectionLocator
}

// String returns the locator description.
func (c *Collection) String() string {
	return c.locator.Description()
}

func (c *Collection) resolve(ctx context.Context) ([]driver.Handle, error) {
	return c.locator.FindAll(ctx)
}

// Size resolves the collection and returns the current element count.
func (c *Collection) Size(ctx context.Context) (int, error) {
	hs, err := c.resolve(ctx)
	if err != nil {
		return 0, err
	}
	return len(hs), nil
}

// Get builds a lazy handle for the element at index i. Resolution waits for
// the collection to reach size i+1 before indexing.
func (c *Collection) Get(i int) *Element {
	return &Element{core: c.core, locator: &indexElementLocator{index: i, source: c}}
}

// First is Get(0).
func (c *Collection) First() *Element {
	return c.Get(0)
}

// Slice builds a lazy view over [start:stop:step]. Resolution waits for the
// collection to reach size stop. A step below 1 is treated as 1.
func (c *Collection) Slice(start, stop, step int) *Collection {
	return &Collection{core: c.core, locator: &slicedCollectionLocator{start: start, stop: stop, step: step, source: c}}
}

// FilteredBy builds a lazy view of the members currently matching condition.
func (c *Collection) FilteredBy(condition conditions.Element) *Collection {
	return &Collection{core: c.core, locator: &filteredCollectionLocator{condition: condition, source: c}}
}

// ElementBy builds a lazy handle for the first member matching condition.
// Resolution fails with a not-found error when no member matches.
func (c *Collection) ElementBy(condition conditions.Element) *Element {
	return &Element{core: c.core, locator: &foundByElementLocator{condition: condition, source: c}}
}

// Should blocks until condition holds for the freshly resolved sequence.
func (c *Collection) Should(ctx context.Context, condition conditions.Collection, timeout ...time.Duration) error {
	return wait.Until(ctx, c.String(), condition.String(), pickTimeout(timeout), pollInterval(), func(ctx context.Context) (bool, error) {
		hs, err := c.resolve(ctx)
		if err != nil {
			return false, err
		}
		return condition.Match(ctx, hs)
	})
}

// ShouldNot blocks until condition stops holding.
func (c *Collection) ShouldNot(ctx context.Context, condition conditions.Collection, timeout ...time.Duration) error {
	return wait.UntilNot(ctx, c.String(), condition.String(), pickTimeout(timeout), pollInterval(), func(ctx context.Context) (bool, error) {
		hs, err := c.resolve(ctx)
		if err != nil {
			return false, err
		}
		return condition.Match(ctx, hs)
	})
}

// ShouldEach asserts condition on every member in order. The size is read
// once up front; the timeout applies per member, not as a shared budget. The
// first failing member's error propagates and stops the loop.
func (c *Collection) ShouldEach(ctx context.Context, condition conditions.Element, timeout ...time.Duration) error {
	n, err := c.Size(ctx)
	if err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		if err := c.Get(i).Should(ctx, condition, timeout...); err != nil {
			return err
		}
	}
	return nil
}

// ShouldEachNot asserts the negation of condition on every member, with
// ShouldEach's timeout and fail-fast semantics.
func (c *Collection) ShouldEachNot(ctx context.Context, condition conditions.Element, timeout ...time.Duration) error {
	n, err := c.Size(ctx)
	if err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		if err := c.Get(i).ShouldNot(ctx, condition, timeout...); err != nil {
			return err
		}
	}
	return nil
}

// Each calls fn for indexes 0..Size-1 with a fresh index-located Element
// per call. The size is read at the moment Each is invoked, so calling Each
// again observes the live document; there is no retained iteration state.
// fn's first error stops the loop and is returned.
func (c *Collection) Each(ctx context.Context, fn func(i int, el *Element) error) error {
	n, err := c.Size(ctx)
	if err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		if err := fn(i, c.Get(i)); err != nil {
			return err
		}
	}
	return nil
}
