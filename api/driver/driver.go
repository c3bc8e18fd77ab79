// Package driver defines the narrow contract domscope requires from an
// underlying browser driver. The query core never talks to a browser
// directly; it resolves element handles through these interfaces and stays
// agnostic about the wire protocol behind them.
package driver

import (
	"context"
	"fmt"
)

// Strategy identifies how a selector value is interpreted by the driver.
type Strategy string

const (
	// CSSSelector matches elements with a CSS selector.
	CSSSelector Strategy = "css selector"
	// XPathSelector matches elements with an XPath expression.
	XPathSelector Strategy = "xpath"
)

// By pairs a selector strategy with its value.
type By struct {
	Strategy Strategy
	Value    string
}

// CSS builds a CSS selector locator value.
func CSS(value string) By {
	return By{Strategy: CSSSelector, Value: value}
}

// XPath builds an XPath locator value.
func XPath(value string) By {
	return By{Strategy: XPathSelector, Value: value}
}

func (b By) String() string {
	switch b.Strategy {
	case XPathSelector:
		return fmt.Sprintf("by xpath `%s`", b.Value)
	default:
		return fmt.Sprintf("by css `%s`", b.Value)
	}
}

// Rect is an element's position and size in CSS pixels, relative to the
// top-left corner of the document.
type Rect struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// Control characters understood by Handle.SendKeys. Drivers translate these
// into the corresponding key events rather than inserting them as text.
const (
	KeyEnter     = "\r"
	KeyTab       = "\t"
	KeyEscape    = "\x1b"
	KeyBackspace = "\b"
)

// SearchContext is anything elements can be found under: a whole session
// (the current document) or a previously located element.
type SearchContext interface {
	// FindElement returns the first element matching by, or a *NotFoundError
	// when nothing matches.
	FindElement(ctx context.Context, by By) (Handle, error)

	// FindElements returns all elements matching by, in document order. An
	// empty result is not an error.
	FindElements(ctx context.Context, by By) ([]Handle, error)
}

// Session is a live browser tab. A Session is not safe for concurrent use;
// domscope inherits the driver's single-thread-per-session restriction and
// adds no locking of its own.
type Session interface {
	SearchContext

	// Navigate loads the given URL and blocks until the driver considers the
	// navigation settled.
	Navigate(ctx context.Context, url string) error

	// Close releases the tab and any driver resources behind it.
	Close() error
}

// Handle is a concrete reference to an element located at some point in the
// past. Any method may fail with a transient error (see IsTransient) once
// the DOM has moved on from under it; callers are expected to re-locate and
// retry rather than hold handles for long.
type Handle interface {
	SearchContext

	Click(ctx context.Context) error
	DoubleClick(ctx context.Context) error
	Hover(ctx context.Context) error
	Clear(ctx context.Context) error
	SendKeys(ctx context.Context, text string) error
	Submit(ctx context.Context) error

	Text(ctx context.Context) (string, error)
	TagName(ctx context.Context) (string, error)
	// Attribute reads an attribute, preferring the live DOM property of the
	// same name when one exists (so `value` reflects user input). A missing
	// attribute reads as the empty string.
	Attribute(ctx context.Context, name string) (string, error)
	CSSValue(ctx context.Context, property string) (string, error)

	IsDisplayed(ctx context.Context) (bool, error)
	IsEnabled(ctx context.Context) (bool, error)
	IsSelected(ctx context.Context) (bool, error)

	Rect(ctx context.Context) (Rect, error)
	Screenshot(ctx context.Context) ([]byte, error)
}
