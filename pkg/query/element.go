package query

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/xkilldash9x/domscope/api/driver"
	"github.com/xkilldash9x/domscope/pkg/be"
	"github.com/xkilldash9x/domscope/pkg/conditions"
	"github.com/xkilldash9x/domscope/pkg/wait"
)

// Element is a lazy reference to a single element. It holds a locator, not a
// driver handle; every operation resolves afresh.
//
// Operations that touch the driver retry at most once: when the first
// attempt fails with a transient error (stale, not interactable, not found),
// the element blocks on a readiness gate and tries exactly once more. The
// gate is be.Visible for interactions (Click, Set, SendKeys, ...) and
// be.InDOM for reads (Text, Attribute, IsDisplayed, ...). A second failure
// propagates unmodified.
type Element struct {
	core
	locator ElementLocator
}

// String returns the locator description; used in error messages, never for
// identity.
func (e *Element) String() string {
	return e.locator.Description()
}

func (e *Element) resolve(ctx context.Context) (driver.Handle, error) {
	return e.locator.Find(ctx)
}

// derived builds a sibling handle sharing session and logger.
func (e *Element) derived(locator ElementLocator) *Element {
	return &Element{core: e.core, locator: locator}
}

// Element builds a lazy handle for the first descendant matching by. The
// parent is required to be visible at resolution time.
func (e *Element) Element(by driver.By) *Element {
	return e.derived(&childElementLocator{by: by, parent: e})
}

// All builds a lazy collection handle for all descendants matching by.
func (e *Element) All(by driver.By) *Collection {
	return &Collection{core: e.core, locator: &childCollectionLocator{by: by, parent: e}}
}

// Caching wraps the element in a memoizing locator: the first resolution is
// kept and reused, opting this one handle out of re-resolution.
func (e *Element) Caching() *Element {
	return e.derived(&cachingElementLocator{source: e})
}

// Cached returns a caching handle that has already resolved, waiting for the
// element to be in the DOM first.
func (e *Element) Cached(ctx context.Context) (*Element, error) {
	cached := e.Caching()
	if err := cached.Should(ctx, be.InDOM); err != nil {
		return nil, err
	}
	return cached, nil
}

// Should blocks until condition holds, polling with fresh resolutions. The
// optional timeout overrides the process-wide default. Fails with
// *wait.TimeoutError.
func (e *Element) Should(ctx context.Context, condition conditions.Element, timeout ...time.Duration) error {
	return wait.Until(ctx, e.String(), condition.String(), pickTimeout(timeout), pollInterval(), func(ctx context.Context) (bool, error) {
		h, err := e.resolve(ctx)
		if err != nil {
			return false, err
		}
		return condition.Match(ctx, h)
	})
}

// ShouldNot blocks until condition stops holding (or cannot be evaluated,
// which counts as not holding).
func (e *Element) ShouldNot(ctx context.Context, condition conditions.Element, timeout ...time.Duration) error {
	return wait.UntilNot(ctx, e.String(), condition.String(), pickTimeout(timeout), pollInterval(), func(ctx context.Context) (bool, error) {
		h, err := e.resolve(ctx)
		if err != nil {
			return false, err
		}
		return condition.Match(ctx, h)
	})
}

// perform runs op against a fresh handle with the single-retry policy.
func (e *Element) perform(ctx context.Context, gate conditions.Element, op func(ctx context.Context, h driver.Handle) error) error {
	err := e.attempt(ctx, op)
	if err == nil {
		return nil
	}
	if !driver.IsTransient(err) {
		return err
	}
	e.logger.Debug("transient driver error; waiting for readiness before retry",
		zap.String("element", e.String()),
		zap.String("gate", gate.String()),
		zap.Error(err))
	if werr := e.Should(ctx, gate); werr != nil {
		return werr
	}
	return e.attempt(ctx, op)
}

func (e *Element) attempt(ctx context.Context, op func(ctx context.Context, h driver.Handle) error) error {
	h, err := e.resolve(ctx)
	if err != nil {
		return err
	}
	return op(ctx, h)
}

// performValue is perform for operations that produce a value.
func performValue[T any](ctx context.Context, e *Element, gate conditions.Element, op func(ctx context.Context, h driver.Handle) (T, error)) (T, error) {
	var result T
	err := e.perform(ctx, gate, func(ctx context.Context, h driver.Handle) error {
		var opErr error
		result, opErr = op(ctx, h)
		return opErr
	})
	return result, err
}

// Click clicks the element, waiting for visibility if the first attempt
// hits a transient failure.
func (e *Element) Click(ctx context.Context) error {
	return e.perform(ctx, be.Visible, func(ctx context.Context, h driver.Handle) error {
		return h.Click(ctx)
	})
}

// DoubleClick double-clicks the element.
func (e *Element) DoubleClick(ctx context.Context) error {
	return e.perform(ctx, be.Visible, func(ctx context.Context, h driver.Handle) error {
		return h.DoubleClick(ctx)
	})
}

// Hover moves the pointer over the element.
func (e *Element) Hover(ctx context.Context) error {
	return e.perform(ctx, be.Visible, func(ctx context.Context, h driver.Handle) error {
		return h.Hover(ctx)
	})
}

// Clear empties the element's value.
func (e *Element) Clear(ctx context.Context) error {
	return e.perform(ctx, be.Visible, func(ctx context.Context, h driver.Handle) error {
		return h.Clear(ctx)
	})
}

// SendKeys types text into the element.
func (e *Element) SendKeys(ctx context.Context, text string) error {
	return e.perform(ctx, be.Visible, func(ctx context.Context, h driver.Handle) error {
		return h.SendKeys(ctx, text)
	})
}

// Set clears the element and types text, both against the same resolved
// handle so the value cannot land in a re-rendered sibling.
func (e *Element) Set(ctx context.Context, text string) error {
	return e.perform(ctx, be.Visible, func(ctx context.Context, h driver.Handle) error {
		if err := h.Clear(ctx); err != nil {
			return err
		}
		return h.SendKeys(ctx, text)
	})
}

// Submit submits the form the element belongs to.
func (e *Element) Submit(ctx context.Context) error {
	return e.perform(ctx, be.Visible, func(ctx context.Context, h driver.Handle) error {
		return h.Submit(ctx)
	})
}

// PressEnter sends the Enter key.
func (e *Element) PressEnter(ctx context.Context) error {
	return e.SendKeys(ctx, driver.KeyEnter)
}

// PressEscape sends the Escape key.
func (e *Element) PressEscape(ctx context.Context) error {
	return e.SendKeys(ctx, driver.KeyEscape)
}

// PressTab sends the Tab key.
func (e *Element) PressTab(ctx context.Context) error {
	return e.SendKeys(ctx, driver.KeyTab)
}

// Text returns the element's visible text.
func (e *Element) Text(ctx context.Context) (string, error) {
	return performValue(ctx, e, be.InDOM, func(ctx context.Context, h driver.Handle) (string, error) {
		return h.Text(ctx)
	})
}

// TagName returns the element's tag, lowercase.
func (e *Element) TagName(ctx context.Context) (string, error) {
	return performValue(ctx, e, be.InDOM, func(ctx context.Context, h driver.Handle) (string, error) {
		return h.TagName(ctx)
	})
}

// Attribute returns an attribute (or matching DOM property) value.
func (e *Element) Attribute(ctx context.Context, name string) (string, error) {
	return performValue(ctx, e, be.InDOM, func(ctx context.Context, h driver.Handle) (string, error) {
		return h.Attribute(ctx, name)
	})
}

// CSSValue returns a computed style property.
func (e *Element) CSSValue(ctx context.Context, property string) (string, error) {
	return performValue(ctx, e, be.InDOM, func(ctx context.Context, h driver.Handle) (string, error) {
		return h.CSSValue(ctx, property)
	})
}

// IsDisplayed reports whether the element is rendered.
func (e *Element) IsDisplayed(ctx context.Context) (bool, error) {
	return performValue(ctx, e, be.InDOM, func(ctx context.Context, h driver.Handle) (bool, error) {
		return h.IsDisplayed(ctx)
	})
}

// IsEnabled reports whether the element accepts interaction.
func (e *Element) IsEnabled(ctx context.Context) (bool, error) {
	return performValue(ctx, e, be.InDOM, func(ctx context.Context, h driver.Handle) (bool, error) {
		return h.IsEnabled(ctx)
	})
}

// IsSelected reports whether the element is checked or selected.
func (e *Element) IsSelected(ctx context.Context) (bool, error) {
	return performValue(ctx, e, be.InDOM, func(ctx context.Context, h driver.Handle) (bool, error) {
		return h.IsSelected(ctx)
	})
}

// Rect returns the element's document-relative box.
func (e *Element) Rect(ctx context.Context) (driver.Rect, error) {
	return performValue(ctx, e, be.InDOM, func(ctx context.Context, h driver.Handle) (driver.Rect, error) {
		return h.Rect(ctx)
	})
}

// Screenshot captures the element's box as PNG bytes.
func (e *Element) Screenshot(ctx context.Context) ([]byte, error) {
	return performValue(ctx, e, be.InDOM, func(ctx context.Context, h driver.Handle) ([]byte, error) {
		return h.Screenshot(ctx)
	})
}

// FindElement resolves this element and searches inside it, making Element
// usable as a driver.SearchContext (for scoped entry points). No retry
// policy applies here; this is the raw resolution path locators build on.
func (e *Element) FindElement(ctx context.Context, by driver.By) (driver.Handle, error) {
	h, err := e.resolve(ctx)
	if err != nil {
		return nil, err
	}
	return h.FindElement(ctx, by)
}

// FindElements resolves this element and searches inside it.
func (e *Element) FindElements(ctx context.Context, by driver.By) ([]driver.Handle, error) {
	h, err := e.resolve(ctx)
	if err != nil {
		return nil, err
	}
	return h.FindElements(ctx, by)
}

var _ driver.SearchContext = (*Element)(nil)
