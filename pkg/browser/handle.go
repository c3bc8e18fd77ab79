package browser

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/dom"
	"github.com/chromedp/cdproto/input"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
	jsoniter "github.com/json-iterator/go"

	"github.com/xkilldash9x/domscope/api/driver"
)

// handle is a live reference to one DOM node, identified by its CDP node id.
// Node ids die with the node: any operation on a removed or re-rendered node
// surfaces as *driver.StaleError, and the layer above re-resolves.
type handle struct {
	s      *Session
	nodeID cdp.NodeID
}

var _ driver.Handle = (*handle)(nil)

func (h *handle) String() string {
	return fmt.Sprintf("node %d", h.nodeID)
}

// -- search context --

func (h *handle) FindElement(ctx context.Context, by driver.By) (driver.Handle, error) {
	execCtx, cancel := h.s.exec(ctx)
	defer cancel()
	return findOne(execCtx, h.s, h.nodeID, by)
}

func (h *handle) FindElements(ctx context.Context, by driver.By) ([]driver.Handle, error) {
	execCtx, cancel := h.s.exec(ctx)
	defer cancel()
	return findAll(execCtx, h.s, h.nodeID, by)
}

// -- interactions --

func (h *handle) Click(ctx context.Context) error {
	return h.click(ctx, 1)
}

func (h *handle) DoubleClick(ctx context.Context) error {
	return h.click(ctx, 2)
}

// click scrolls the node into view and dispatches count press/release pairs
// at the center of its content box, like a trusted user gesture.
func (h *handle) click(ctx context.Context, count int) error {
	execCtx, cancel := h.s.exec(ctx)
	defer cancel()
	x, y, err := h.center(execCtx)
	if err != nil {
		return err
	}
	for i := 1; i <= count; i++ {
		if err := input.DispatchMouseEvent(input.MousePressed, x, y).
			WithButton(input.MouseButton("left")).
			WithClickCount(int64(i)).
			Do(execCtx); err != nil {
			return classify(err)
		}
		if err := input.DispatchMouseEvent(input.MouseReleased, x, y).
			WithButton(input.MouseButton("left")).
			WithClickCount(int64(i)).
			Do(execCtx); err != nil {
			return classify(err)
		}
	}
	return nil
}

func (h *handle) Hover(ctx context.Context) error {
	execCtx, cancel := h.s.exec(ctx)
	defer cancel()
	x, y, err := h.center(execCtx)
	if err != nil {
		return err
	}
	if err := input.DispatchMouseEvent(input.MouseMoved, x, y).Do(execCtx); err != nil {
		return classify(err)
	}
	return nil
}

func (h *handle) Clear(ctx context.Context) error {
	execCtx, cancel := h.s.exec(ctx)
	defer cancel()
	return h.callVoid(execCtx, clearJS)
}

// SendKeys focuses the node and types text as key events, so the page sees
// real keydown/keyup pairs. Control characters (kb.Enter, kb.Tab, kb.Escape,
// kb.Backspace) encode to their non-text key events.
func (h *handle) SendKeys(ctx context.Context, text string) error {
	execCtx, cancel := h.s.exec(ctx)
	defer cancel()
	if err := dom.Focus().WithNodeID(h.nodeID).Do(execCtx); err != nil {
		return classify(err)
	}
	if err := chromedp.KeyEvent(text).Do(execCtx); err != nil {
		return classify(err)
	}
	return nil
}

func (h *handle) Submit(ctx context.Context) error {
	execCtx, cancel := h.s.exec(ctx)
	defer cancel()
	return h.callVoid(execCtx, submitJS)
}

// -- reads --

func (h *handle) Text(ctx context.Context) (string, error) {
	execCtx, cancel := h.s.exec(ctx)
	defer cancel()
	var text string
	err := h.call(execCtx, innerTextJS, &text)
	return text, err
}

func (h *handle) TagName(ctx context.Context) (string, error) {
	execCtx, cancel := h.s.exec(ctx)
	defer cancel()
	node, err := dom.DescribeNode().WithNodeID(h.nodeID).Do(execCtx)
	if err != nil {
		return "", classify(err)
	}
	return strings.ToLower(node.NodeName), nil
}

// Attribute reads the DOM property first and falls back to the content
// attribute, so live values ("value", "checked") win over markup.
func (h *handle) Attribute(ctx context.Context, name string) (string, error) {
	execCtx, cancel := h.s.exec(ctx)
	defer cancel()
	q := strconv.Quote(name)
	fn := fmt.Sprintf(`function() {
		const v = this[%s];
		if (v !== undefined && v !== null && typeof v !== 'object' && typeof v !== 'function') return String(v);
		const a = this.getAttribute(%s);
		return a === null ? '' : a;
	}`, q, q)
	var value string
	err := h.call(execCtx, fn, &value)
	return value, err
}

func (h *handle) CSSValue(ctx context.Context, property string) (string, error) {
	execCtx, cancel := h.s.exec(ctx)
	defer cancel()
	fn := fmt.Sprintf(`function() { return window.getComputedStyle(this).getPropertyValue(%s); }`,
		strconv.Quote(property))
	var value string
	err := h.call(execCtx, fn, &value)
	return value, err
}

func (h *handle) IsDisplayed(ctx context.Context) (bool, error) {
	execCtx, cancel := h.s.exec(ctx)
	defer cancel()
	var displayed bool
	err := h.call(execCtx, isVisibleJS, &displayed)
	return displayed, err
}

func (h *handle) IsEnabled(ctx context.Context) (bool, error) {
	execCtx, cancel := h.s.exec(ctx)
	defer cancel()
	var enabled bool
	err := h.call(execCtx, isEnabledJS, &enabled)
	return enabled, err
}

func (h *handle) IsSelected(ctx context.Context) (bool, error) {
	execCtx, cancel := h.s.exec(ctx)
	defer cancel()
	var selected bool
	err := h.call(execCtx, isSelectedJS, &selected)
	return selected, err
}

func (h *handle) Rect(ctx context.Context) (driver.Rect, error) {
	execCtx, cancel := h.s.exec(ctx)
	defer cancel()
	model, err := dom.GetBoxModel().WithNodeID(h.nodeID).Do(execCtx)
	if err != nil {
		return driver.Rect{}, classify(err)
	}
	quad := model.Content
	if len(quad) < 8 {
		return driver.Rect{}, fmt.Errorf("box model for node %d has no content quad", h.nodeID)
	}
	return driver.Rect{
		X:      quad[0],
		Y:      quad[1],
		Width:  float64(model.Width),
		Height: float64(model.Height),
	}, nil
}

func (h *handle) Screenshot(ctx context.Context) ([]byte, error) {
	execCtx, cancel := h.s.exec(ctx)
	defer cancel()
	if err := dom.ScrollIntoViewIfNeeded().WithNodeID(h.nodeID).Do(execCtx); err != nil {
		return nil, classify(err)
	}
	rect, err := h.Rect(ctx)
	if err != nil {
		return nil, err
	}
	buf, err := page.CaptureScreenshot().
		WithFormat(page.CaptureScreenshotFormatPng).
		WithClip(&page.Viewport{
			X:      rect.X,
			Y:      rect.Y,
			Width:  rect.Width,
			Height: rect.Height,
			Scale:  1,
		}).
		Do(execCtx)
	if err != nil {
		return nil, classify(err)
	}
	return buf, nil
}

// -- plumbing --

// center scrolls the node into view and returns the midpoint of its content
// box in viewport coordinates.
func (h *handle) center(execCtx context.Context) (float64, float64, error) {
	if err := dom.ScrollIntoViewIfNeeded().WithNodeID(h.nodeID).Do(execCtx); err != nil {
		return 0, 0, classify(err)
	}
	model, err := dom.GetBoxModel().WithNodeID(h.nodeID).Do(execCtx)
	if err != nil {
		return 0, 0, classify(err)
	}
	quad := model.Content
	if len(quad) < 8 {
		return 0, 0, fmt.Errorf("box model for node %d has no content quad", h.nodeID)
	}
	x := (quad[0] + quad[2] + quad[4] + quad[6]) / 4
	y := (quad[1] + quad[3] + quad[5] + quad[7]) / 4
	return x, y, nil
}

// call runs fn with the node bound as `this` and decodes the by-value result
// into out.
func (h *handle) call(execCtx context.Context, fn string, out any) error {
	obj, err := dom.ResolveNode().WithNodeID(h.nodeID).Do(execCtx)
	if err != nil {
		return classify(err)
	}
	res, exc, err := runtime.CallFunctionOn(fn).
		WithObjectID(obj.ObjectID).
		WithReturnByValue(true).
		Do(execCtx)
	if err != nil {
		return classify(err)
	}
	if exc != nil {
		return excError(exc)
	}
	return decodeValue(res, out)
}

// callVoid runs fn for its side effects only.
func (h *handle) callVoid(execCtx context.Context, fn string) error {
	obj, err := dom.ResolveNode().WithNodeID(h.nodeID).Do(execCtx)
	if err != nil {
		return classify(err)
	}
	_, exc, err := runtime.CallFunctionOn(fn).WithObjectID(obj.ObjectID).Do(execCtx)
	if err != nil {
		return classify(err)
	}
	if exc != nil {
		return excError(exc)
	}
	return nil
}

func decodeValue(res *runtime.RemoteObject, out any) error {
	if res == nil || len(res.Value) == 0 {
		return nil
	}
	return jsoniter.Unmarshal([]byte(res.Value), out)
}
