package query

import (
	"context"
	"fmt"
	"sync"

	"github.com/xkilldash9x/domscope/api/driver"
	"github.com/xkilldash9x/domscope/pkg/be"
	"github.com/xkilldash9x/domscope/pkg/conditions"
	"github.com/xkilldash9x/domscope/pkg/have"
)

// rootElementLocator finds one element under a fixed search root (the
// session document or a previously built handle).
type rootElementLocator struct {
	by   driver.By
	root driver.SearchContext
}

func (l *rootElementLocator) Find(ctx context.Context) (driver.Handle, error) {
	return l.root.FindElement(ctx, l.by)
}

func (l *rootElementLocator) Description() string {
	return fmt.Sprintf("(%s).find(%s)", describe(l.root), l.by)
}

// childElementLocator finds one element inside a parent Element. The parent
// must become visible before the inner find runs; an invisible parent fails
// the resolution with the parent's timeout error.
type childElementLocator struct {
	by     driver.By
	parent *Element
}

func (l *childElementLocator) Find(ctx context.Context) (driver.Handle, error) {
	if err := l.parent.Should(ctx, be.Visible); err != nil {
		return nil, err
	}
	return l.parent.FindElement(ctx, l.by)
}

func (l *childElementLocator) Description() string {
	return fmt.Sprintf("(%s).find(%s)", l.parent, l.by)
}

// cachingElementLocator memoizes its first successful or failed resolution
// for the lifetime of the locator. Not safe for concurrent first use, same
// as the session it wraps.
type cachingElementLocator struct {
	source *Element

	once   sync.Once
	handle driver.Handle
	err    error
}

func (l *cachingElementLocator) Find(ctx context.Context) (driver.Handle, error) {
	l.once.Do(func() {
		l.handle, l.err = l.source.resolve(ctx)
	})
	return l.handle, l.err
}

func (l *cachingElementLocator) Description() string {
	return fmt.Sprintf("caching (%s)", l.source)
}

// indexElementLocator picks element i out of a collection, first waiting for
// the collection to grow to at least i+1 elements.
type indexElementLocator struct {
	index  int
	source *Collection
}

func (l *indexElementLocator) Find(ctx context.Context) (driver.Handle, error) {
	if err := l.source.Should(ctx, have.SizeAtLeast(l.index+1)); err != nil {
		return nil, err
	}
	hs, err := l.source.resolve(ctx)
	if err != nil {
		return nil, err
	}
	// The list may have shrunk again between the wait and this resolution.
	if l.index < 0 || l.index >= len(hs) {
		return nil, &driver.NotFoundError{Locator: l.Description()}
	}
	return hs[l.index], nil
}

func (l *indexElementLocator) Description() string {
	return fmt.Sprintf("(%s)[%d]", l.source, l.index)
}

// foundByElementLocator returns the first current collection member matching
// a predicate.
type foundByElementLocator struct {
	condition conditions.Element
	source    *Collection
}

func (l *foundByElementLocator) Find(ctx context.Context) (driver.Handle, error) {
	hs, err := l.source.resolve(ctx)
	if err != nil {
		return nil, err
	}
	for _, h := range hs {
		ok, err := l.condition.Match(ctx, h)
		if err != nil {
			// A member that cannot be probed (raced away mid-scan) does not
			// match.
			continue
		}
		if ok {
			return h, nil
		}
	}
	return nil, &driver.NotFoundError{Locator: l.Description()}
}

func (l *foundByElementLocator) Description() string {
	return fmt.Sprintf("(%s).elementBy(%s)", l.source, l.condition)
}

// rootCollectionLocator finds all elements under a fixed search root.
type rootCollectionLocator struct {
	by   driver.By
	root driver.SearchContext
}

func (l *rootCollectionLocator) FindAll(ctx context.Context) ([]driver.Handle, error) {
	return l.root.FindElements(ctx, l.by)
}

func (l *rootCollectionLocator) Description() string {
	return fmt.Sprintf("(%s).findAll(%s)", describe(l.root), l.by)
}

// childCollectionLocator finds all elements inside a parent Element, gated
// on parent visibility like childElementLocator.
type childCollectionLocator struct {
	by     driver.By
	parent *Element
}

func (l *childCollectionLocator) FindAll(ctx context.Context) ([]driver.Handle, error) {
	if err := l.parent.Should(ctx, be.Visible); err != nil {
		return nil, err
	}
	return l.parent.FindElements(ctx, l.by)
}

func (l *childCollectionLocator) Description() string {
	return fmt.Sprintf("(%s).findAll(%s)", l.parent, l.by)
}

// filteredCollectionLocator keeps the current members matching a predicate.
// Order-preserving; the result may shrink or grow between resolutions.
type filteredCollectionLocator struct {
	condition conditions.Element
	source    *Collection
}

func (l *filteredCollectionLocator) FindAll(ctx context.Context) ([]driver.Handle, error) {
	hs, err := l.source.resolve(ctx)
	if err != nil {
		return nil, err
	}
	filtered := make([]driver.Handle, 0, len(hs))
	for _, h := range hs {
		ok, err := l.condition.Match(ctx, h)
		if err != nil {
			continue
		}
		if ok {
			filtered = append(filtered, h)
		}
	}
	return filtered, nil
}

func (l *filteredCollectionLocator) Description() string {
	return fmt.Sprintf("(%s).filteredBy(%s)", l.source, l.condition)
}

// slicedCollectionLocator takes the [start:stop:step] view of a collection,
// first waiting for it to have at least stop elements.
type slicedCollectionLocator struct {
	start, stop, step int
	source            *Collection
}

func (l *slicedCollectionLocator) FindAll(ctx context.Context) ([]driver.Handle, error) {
	if err := l.source.Should(ctx, have.SizeAtLeast(l.stop)); err != nil {
		return nil, err
	}
	hs, err := l.source.resolve(ctx)
	if err != nil {
		return nil, err
	}
	start, stop, step := l.start, l.stop, l.step
	if start < 0 {
		start = 0
	}
	if stop > len(hs) {
		stop = len(hs)
	}
	if step < 1 {
		step = 1
	}
	out := make([]driver.Handle, 0)
	for i := start; i < stop; i += step {
		out = append(out, hs[i])
	}
	return out, nil
}

func (l *slicedCollectionLocator) Description() string {
	return fmt.Sprintf("(%s)[%d:%d:%d]", l.source, l.start, l.stop, l.step)
}
