// Package query is the core of domscope: lazily resolved element and
// collection handles.
//
// A handle never owns a driver element. It owns a Locator, a recipe for
// finding its element(s), and re-runs that recipe on every operation. DOM
// churn between two operations is therefore expected and harmless: the next
// operation simply resolves against the current document. Derived handles
// (child finds, filters, slices, indexing) compose locators instead of
// materializing results, so laziness and staleness tolerance carry through
// arbitrarily deep chains.
//
// Constructing or deriving a handle performs zero driver calls.
package query

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/xkilldash9x/domscope/api/driver"
	"github.com/xkilldash9x/domscope/pkg/config"
)

// ElementLocator resolves to exactly one driver handle, freshly, on every
// call. Description is the human-readable form used in errors.
type ElementLocator interface {
	Find(ctx context.Context) (driver.Handle, error)
	Description() string
}

// CollectionLocator resolves to an ordered handle sequence, freshly, on
// every call.
type CollectionLocator interface {
	FindAll(ctx context.Context) ([]driver.Handle, error)
	Description() string
}

// Option configures a handle and every handle derived from it.
type Option func(*core)

// WithLogger attaches a zap logger; the core only debug-logs its retry path.
func WithLogger(logger *zap.Logger) Option {
	return func(c *core) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// core is the state shared by Element and Collection and inherited across
// derivation.
type core struct {
	session driver.Session
	logger  *zap.Logger
}

func newCore(session driver.Session, opts []Option) core {
	c := core{session: session, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// Find builds a lazy element handle rooted at the session's document.
func Find(session driver.Session, by driver.By, opts ...Option) *Element {
	return FindIn(session, session, by, opts...)
}

// FindIn builds a lazy element handle rooted at an arbitrary search context.
func FindIn(session driver.Session, root driver.SearchContext, by driver.By, opts ...Option) *Element {
	return &Element{
		core:    newCore(session, opts),
		locator: &rootElementLocator{by: by, root: root},
	}
}

// FindAll builds a lazy collection handle rooted at the session's document.
func FindAll(session driver.Session, by driver.By, opts ...Option) *Collection {
	return FindAllIn(session, session, by, opts...)
}

// FindAllIn builds a lazy collection handle rooted at an arbitrary search
// context.
func FindAllIn(session driver.Session, root driver.SearchContext, by driver.By, opts ...Option) *Collection {
	return &Collection{
		core:    newCore(session, opts),
		locator: &rootCollectionLocator{by: by, root: root},
	}
}

// describe names a search root for locator descriptions.
func describe(v any) string {
	if s, ok := v.(interface{ String() string }); ok {
		return s.String()
	}
	return "page"
}

// pickTimeout resolves an optional per-call timeout against the process-wide
// default.
func pickTimeout(timeout []time.Duration) time.Duration {
	if len(timeout) > 0 && timeout[0] > 0 {
		return timeout[0]
	}
	return config.Timeout()
}

func pollInterval() time.Duration {
	return config.PollInterval()
}
