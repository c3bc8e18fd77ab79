// Package browsertest provides a scripted in-memory driver for exercising
// the query core without a browser. The fake is deliberately dumb about
// selectors: a selector value is a plain key into a map the test populates.
// Tests mutate the "DOM" between (or during) calls to simulate live pages;
// all mutators are safe to call from timer goroutines while a wait loop
// polls on the test goroutine.
package browsertest

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/xkilldash9x/domscope/api/driver"
)

// Session is a fake driver.Session backed by a selector-keyed element map.
type Session struct {
	mu       sync.Mutex
	elements map[string][]*Element

	// FindCalls counts FindElement + FindElements invocations, for
	// laziness assertions.
	FindCalls atomic.Int64
	// LastURL records the most recent Navigate target.
	LastURL string
	Closed  bool
}

// NewSession builds an empty fake session.
func NewSession() *Session {
	return &Session{elements: make(map[string][]*Element)}
}

var _ driver.Session = (*Session)(nil)

// Set replaces the elements behind a selector key.
func (s *Session) Set(selector string, els ...*Element) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.elements[selector] = els
}

// Append adds elements behind a selector key.
func (s *Session) Append(selector string, els ...*Element) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.elements[selector] = append(s.elements[selector], els...)
}

func (s *Session) lookup(selector string) []*Element {
	s.mu.Lock()
	defer s.mu.Unlock()
	els := s.elements[selector]
	out := make([]*Element, len(els))
	copy(out, els)
	return out
}

func (s *Session) FindElement(ctx context.Context, by driver.By) (driver.Handle, error) {
	s.FindCalls.Add(1)
	els := s.lookup(by.Value)
	if len(els) == 0 {
		return nil, &driver.NotFoundError{Locator: by.String()}
	}
	return els[0], nil
}

func (s *Session) FindElements(ctx context.Context, by driver.By) ([]driver.Handle, error) {
	s.FindCalls.Add(1)
	els := s.lookup(by.Value)
	out := make([]driver.Handle, len(els))
	for i, el := range els {
		out[i] = el
	}
	return out, nil
}

func (s *Session) Navigate(ctx context.Context, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.LastURL = url
	return nil
}

func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Closed = true
	return nil
}

func (s *Session) String() string { return "page" }

// Element is a fake driver.Handle with mutable state and per-operation
// scripted failures.
type Element struct {
	mu sync.Mutex

	tag       string
	text      string
	attrs     map[string]string
	css       map[string]string
	displayed bool
	enabled   bool
	selected  bool
	detached  bool

	children map[string][]*Element

	// failures maps an operation name ("click", "text", ...) to how many
	// times it should still fail with a stale error before succeeding.
	failures map[string]int

	Clicks       int
	DoubleClicks int
	Hovers       int
	Submits      int
	TypedKeys    []string
	// DisplayChecks counts IsDisplayed calls, for readiness-gate assertions.
	DisplayChecks int
}

// NewElement builds a visible, enabled div with the given text.
func NewElement(text string) *Element {
	return &Element{
		tag:       "div",
		text:      text,
		attrs:     make(map[string]string),
		css:       make(map[string]string),
		displayed: true,
		enabled:   true,
		children:  make(map[string][]*Element),
		failures:  make(map[string]int),
	}
}

var _ driver.Handle = (*Element)(nil)

// -- test scripting --

// SetText updates the element's visible text.
func (e *Element) SetText(text string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.text = text
}

// SetDisplayed toggles visibility.
func (e *Element) SetDisplayed(displayed bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.displayed = displayed
}

// SetEnabled toggles interactability.
func (e *Element) SetEnabled(enabled bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.enabled = enabled
}

// SetSelected toggles the checked/selected state.
func (e *Element) SetSelected(selected bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.selected = selected
}

// SetTag overrides the tag name.
func (e *Element) SetTag(tag string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.tag = tag
}

// SetAttr sets an attribute value.
func (e *Element) SetAttr(name, value string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.attrs[name] = value
}

// SetCSS sets a computed style property.
func (e *Element) SetCSS(property, value string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.css[property] = value
}

// SetChildren wires child elements behind a selector key.
func (e *Element) SetChildren(selector string, els ...*Element) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.children[selector] = els
}

// Detach makes every subsequent operation fail with a stale error.
func (e *Element) Detach() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.detached = true
}

// FailOnce schedules the next call of the named operation ("click", "clear",
// "sendkeys", "text", "submit", "hover", "doubleclick") to fail with a stale
// error.
func (e *Element) FailOnce(op string) {
	e.FailTimes(op, 1)
}

// FailTimes schedules the next n calls of the named operation to fail.
func (e *Element) FailTimes(op string, n int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.failures[op] = n
}

// Value returns the current input value.
func (e *Element) Value() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.attrs["value"]
}

// check consumes a scripted failure or reports detachment.
func (e *Element) check(op string) error {
	if e.detached {
		return &driver.StaleError{Reason: "node detached"}
	}
	if e.failures[op] > 0 {
		e.failures[op]--
		return &driver.StaleError{Reason: "scripted " + op + " failure"}
	}
	return nil
}

// -- driver.Handle --

func (e *Element) FindElement(ctx context.Context, by driver.By) (driver.Handle, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.check("find"); err != nil {
		return nil, err
	}
	els := e.children[by.Value]
	if len(els) == 0 {
		return nil, &driver.NotFoundError{Locator: by.String()}
	}
	return els[0], nil
}

func (e *Element) FindElements(ctx context.Context, by driver.By) ([]driver.Handle, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.check("find"); err != nil {
		return nil, err
	}
	els := e.children[by.Value]
	out := make([]driver.Handle, len(els))
	for i, el := range els {
		out[i] = el
	}
	return out, nil
}

func (e *Element) Click(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.check("click"); err != nil {
		return err
	}
	e.Clicks++
	return nil
}

func (e *Element) DoubleClick(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.check("doubleclick"); err != nil {
		return err
	}
	e.DoubleClicks++
	return nil
}

func (e *Element) Hover(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.check("hover"); err != nil {
		return err
	}
	e.Hovers++
	return nil
}

func (e *Element) Clear(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.check("clear"); err != nil {
		return err
	}
	e.attrs["value"] = ""
	return nil
}

func (e *Element) SendKeys(ctx context.Context, text string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.check("sendkeys"); err != nil {
		return err
	}
	e.TypedKeys = append(e.TypedKeys, text)
	e.attrs["value"] += text
	return nil
}

func (e *Element) Submit(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.check("submit"); err != nil {
		return err
	}
	e.Submits++
	return nil
}

func (e *Element) Text(ctx context.Context) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.check("text"); err != nil {
		return "", err
	}
	return e.text, nil
}

func (e *Element) TagName(ctx context.Context) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.check("tagname"); err != nil {
		return "", err
	}
	return e.tag, nil
}

func (e *Element) Attribute(ctx context.Context, name string) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.check("attribute"); err != nil {
		return "", err
	}
	return e.attrs[name], nil
}

func (e *Element) CSSValue(ctx context.Context, property string) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.check("cssvalue"); err != nil {
		return "", err
	}
	return e.css[property], nil
}

func (e *Element) IsDisplayed(ctx context.Context) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.DisplayChecks++
	if err := e.check("isdisplayed"); err != nil {
		return false, err
	}
	return e.displayed, nil
}

func (e *Element) IsEnabled(ctx context.Context) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.check("isenabled"); err != nil {
		return false, err
	}
	return e.enabled, nil
}

func (e *Element) IsSelected(ctx context.Context) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.check("isselected"); err != nil {
		return false, err
	}
	return e.selected, nil
}

func (e *Element) Rect(ctx context.Context) (driver.Rect, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.check("rect"); err != nil {
		return driver.Rect{}, err
	}
	return driver.Rect{X: 0, Y: 0, Width: 100, Height: 20}, nil
}

func (e *Element) Screenshot(ctx context.Context) ([]byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.check("screenshot"); err != nil {
		return nil, err
	}
	return []byte("png"), nil
}
