package browser

import (
	"context"
	"fmt"
	"strconv"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/dom"
	"github.com/chromedp/cdproto/runtime"

	"github.com/xkilldash9x/domscope/api/driver"
)

// findOne locates the first match for by under the given node. CSS goes
// through the DOM domain; XPath is evaluated in page JavaScript with the
// node as context, which is the only way CDP scopes XPath to an element.
func findOne(execCtx context.Context, s *Session, root cdp.NodeID, by driver.By) (driver.Handle, error) {
	switch by.Strategy {
	case driver.XPathSelector:
		ids, err := xpathNodes(execCtx, root, by.Value, 1)
		if err != nil {
			return nil, err
		}
		if len(ids) == 0 {
			return nil, &driver.NotFoundError{Locator: by.String()}
		}
		return &handle{s: s, nodeID: ids[0]}, nil
	default:
		id, err := dom.QuerySelector(root, by.Value).Do(execCtx)
		if err != nil {
			return nil, classify(err)
		}
		if id == 0 {
			return nil, &driver.NotFoundError{Locator: by.String()}
		}
		return &handle{s: s, nodeID: id}, nil
	}
}

// findAll locates every match for by under the given node, in document
// order. Zero matches is an empty slice, never an error.
func findAll(execCtx context.Context, s *Session, root cdp.NodeID, by driver.By) ([]driver.Handle, error) {
	var ids []cdp.NodeID
	var err error
	switch by.Strategy {
	case driver.XPathSelector:
		ids, err = xpathNodes(execCtx, root, by.Value, -1)
	default:
		ids, err = dom.QuerySelectorAll(root, by.Value).Do(execCtx)
		if err != nil {
			err = classify(err)
		}
	}
	if err != nil {
		return nil, err
	}
	out := make([]driver.Handle, len(ids))
	for i, id := range ids {
		out[i] = &handle{s: s, nodeID: id}
	}
	return out, nil
}

// xpathNodes evaluates expr with the given node as context and returns up to
// max node ids (max < 0 means all). The snapshot is materialized page-side
// into one array in a single evaluation, so every item belongs to the same
// document state; items are then converted to node ids via DOM.requestNode.
func xpathNodes(execCtx context.Context, root cdp.NodeID, expr string, max int) ([]cdp.NodeID, error) {
	obj, err := dom.ResolveNode().WithNodeID(root).Do(execCtx)
	if err != nil {
		return nil, classify(err)
	}

	snapshotFn := fmt.Sprintf(`function() {
		const result = document.evaluate(%s, this, null, XPathResult.ORDERED_NODE_SNAPSHOT_TYPE, null);
		const nodes = [];
		for (let i = 0; i < result.snapshotLength; i++) nodes.push(result.snapshotItem(i));
		return nodes;
	}`, strconv.Quote(expr))
	arr, exc, err := runtime.CallFunctionOn(snapshotFn).WithObjectID(obj.ObjectID).Do(execCtx)
	if err != nil {
		return nil, classify(err)
	}
	if exc != nil {
		return nil, excError(exc)
	}

	var count int
	res, exc, err := runtime.CallFunctionOn(`function() { return this.length; }`).
		WithObjectID(arr.ObjectID).
		WithReturnByValue(true).
		Do(execCtx)
	if err != nil {
		return nil, classify(err)
	}
	if exc != nil {
		return nil, excError(exc)
	}
	if err := decodeValue(res, &count); err != nil {
		return nil, fmt.Errorf("decoding xpath result count: %w", err)
	}
	if max >= 0 && count > max {
		count = max
	}

	ids := make([]cdp.NodeID, 0, count)
	for i := 0; i < count; i++ {
		item, exc, err := runtime.CallFunctionOn(fmt.Sprintf(`function() { return this[%d]; }`, i)).
			WithObjectID(arr.ObjectID).
			Do(execCtx)
		if err != nil {
			return nil, classify(err)
		}
		if exc != nil {
			return nil, excError(exc)
		}
		if item == nil || item.ObjectID == "" {
			break
		}
		id, err := dom.RequestNode(item.ObjectID).Do(execCtx)
		if err != nil {
			return nil, classify(err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
