// Package domscope is a fluent browser automation DSL: lazily resolved
// element handles, declarative wait conditions, and live collection queries
// on top of a pluggable driver.
//
// Typical use:
//
//	session, err := browser.NewSession(ctx, cfg.Browser, logger)
//	if err != nil { ... }
//	page := domscope.New(session, domscope.WithLogger(logger))
//	defer page.Close()
//
//	if err := page.Open(ctx, "https://example.org"); err != nil { ... }
//	if err := page.S("#login").Set(ctx, "admin"); err != nil { ... }
//	if err := page.S("#submit").Click(ctx); err != nil { ... }
//	err = page.SS(".result").First().Should(ctx, have.Text("welcome"))
package domscope

import (
	"context"

	"go.uber.org/zap"

	"github.com/xkilldash9x/domscope/api/driver"
	"github.com/xkilldash9x/domscope/pkg/query"
)

// Browser is the entry point for a driver session: it builds lazy element
// and collection handles. It holds no element state itself.
type Browser struct {
	session driver.Session
	opts    []query.Option
}

// Option configures a Browser.
type Option func(*Browser)

// WithLogger attaches a zap logger to the browser and every handle built
// from it.
func WithLogger(logger *zap.Logger) Option {
	return func(b *Browser) {
		b.opts = append(b.opts, query.WithLogger(logger))
	}
}

// New wraps a driver session.
func New(session driver.Session, opts ...Option) *Browser {
	b := &Browser{session: session}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Open navigates the session to url.
func (b *Browser) Open(ctx context.Context, url string) error {
	return b.session.Navigate(ctx, url)
}

// Element builds a lazy handle for the first document element matching by.
func (b *Browser) Element(by driver.By) *query.Element {
	return query.Find(b.session, by, b.opts...)
}

// All builds a lazy collection handle for all document elements matching by.
func (b *Browser) All(by driver.By) *query.Collection {
	return query.FindAll(b.session, by, b.opts...)
}

// S is shorthand for Element with a CSS selector.
func (b *Browser) S(selector string) *query.Element {
	return b.Element(driver.CSS(selector))
}

// SS is shorthand for All with a CSS selector.
func (b *Browser) SS(selector string) *query.Collection {
	return b.All(driver.CSS(selector))
}

// ElementIn builds a lazy handle scoped to an arbitrary search root.
func (b *Browser) ElementIn(root driver.SearchContext, by driver.By) *query.Element {
	return query.FindIn(b.session, root, by, b.opts...)
}

// AllIn builds a lazy collection handle scoped to an arbitrary search root.
func (b *Browser) AllIn(root driver.SearchContext, by driver.By) *query.Collection {
	return query.FindAllIn(b.session, root, by, b.opts...)
}

// Session exposes the underlying driver session.
func (b *Browser) Session() driver.Session {
	return b.session
}

// Close shuts the underlying session down.
func (b *Browser) Close() error {
	return b.session.Close()
}
