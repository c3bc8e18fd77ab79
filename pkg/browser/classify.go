package browser

import (
	"fmt"
	"strings"

	"github.com/chromedp/cdproto/runtime"

	"github.com/xkilldash9x/domscope/api/driver"
)

// staleMessages are the CDP error texts that mean the node id we hold no
// longer names a live node. The protocol has no error codes for these, only
// message strings.
var staleMessages = []string{
	"could not find node",
	"no node with given id",
	"node with given id does not belong to the document",
	"could not compute box model",
	"cannot find context with specified id",
	"node is detached from document",
	"object couldn't be returned by value",
	"cannot find node",
}

// classify maps raw CDP errors onto the driver error taxonomy. Staleness
// becomes *driver.StaleError so the retry layer above can self-heal;
// everything else passes through untouched.
func classify(err error) error {
	if err == nil {
		return nil
	}
	msg := strings.ToLower(err.Error())
	for _, m := range staleMessages {
		if strings.Contains(msg, m) {
			return &driver.StaleError{Reason: err.Error(), Err: err}
		}
	}
	return err
}

// excError converts a page-side exception into a Go error.
func excError(exc *runtime.ExceptionDetails) error {
	if exc.Exception != nil && exc.Exception.Description != "" {
		return fmt.Errorf("page script failed: %s", exc.Exception.Description)
	}
	return fmt.Errorf("page script failed: %s", exc.Text)
}
