// Package have holds element property and collection content conditions:
// `el.Should(ctx, have.ExactText("Done"))`,
// `list.Should(ctx, have.SizeAtLeast(3))`.
package have

import (
	"context"
	"fmt"
	"strings"

	"github.com/xkilldash9x/domscope/api/driver"
	"github.com/xkilldash9x/domscope/pkg/conditions"
)

// Text matches an element whose visible text contains s.
func Text(s string) conditions.Element {
	return conditions.NewElement(fmt.Sprintf("has text %q", s), func(ctx context.Context, h driver.Handle) (bool, error) {
		text, err := h.Text(ctx)
		if err != nil {
			return false, err
		}
		return strings.Contains(text, s), nil
	})
}

// ExactText matches an element whose visible text equals s.
func ExactText(s string) conditions.Element {
	return conditions.NewElement(fmt.Sprintf("has exact text %q", s), func(ctx context.Context, h driver.Handle) (bool, error) {
		text, err := h.Text(ctx)
		if err != nil {
			return false, err
		}
		return text == s, nil
	})
}

// Attribute matches an element whose attribute name equals value.
func Attribute(name, value string) conditions.Element {
	return conditions.NewElement(fmt.Sprintf("has attribute %s=%q", name, value), func(ctx context.Context, h driver.Handle) (bool, error) {
		got, err := h.Attribute(ctx, name)
		if err != nil {
			return false, err
		}
		return got == value, nil
	})
}

// Value matches an element whose value property equals v.
func Value(v string) conditions.Element {
	return conditions.NewElement(fmt.Sprintf("has value %q", v), func(ctx context.Context, h driver.Handle) (bool, error) {
		got, err := h.Attribute(ctx, "value")
		if err != nil {
			return false, err
		}
		return got == v, nil
	})
}

// CSSClass matches an element carrying the given class name.
func CSSClass(name string) conditions.Element {
	return conditions.NewElement(fmt.Sprintf("has css class %q", name), func(ctx context.Context, h driver.Handle) (bool, error) {
		classes, err := h.Attribute(ctx, "class")
		if err != nil {
			return false, err
		}
		for _, c := range strings.Fields(classes) {
			if c == name {
				return true, nil
			}
		}
		return false, nil
	})
}

// TagName matches an element with the given tag (lowercase).
func TagName(name string) conditions.Element {
	return conditions.NewElement(fmt.Sprintf("has tag %q", name), func(ctx context.Context, h driver.Handle) (bool, error) {
		tag, err := h.TagName(ctx)
		if err != nil {
			return false, err
		}
		return strings.EqualFold(tag, name), nil
	})
}

// Size matches a collection with exactly n elements.
func Size(n int) conditions.Collection {
	return conditions.NewCollection(fmt.Sprintf("has size %d", n), func(ctx context.Context, hs []driver.Handle) (bool, error) {
		return len(hs) == n, nil
	})
}

// SizeAtLeast matches a collection with n or more elements.
func SizeAtLeast(n int) conditions.Collection {
	return conditions.NewCollection(fmt.Sprintf("has size at least %d", n), func(ctx context.Context, hs []driver.Handle) (bool, error) {
		return len(hs) >= n, nil
	})
}

// SizeAtMost matches a collection with n or fewer elements.
func SizeAtMost(n int) conditions.Collection {
	return conditions.NewCollection(fmt.Sprintf("has size at most %d", n), func(ctx context.Context, hs []driver.Handle) (bool, error) {
		return len(hs) <= n, nil
	})
}

// Empty matches a collection with no elements.
var Empty = conditions.NewCollection("is empty", func(ctx context.Context, hs []driver.Handle) (bool, error) {
	return len(hs) == 0, nil
})

// ExactTexts matches a collection whose element texts equal the given texts,
// in order.
func ExactTexts(texts ...string) conditions.Collection {
	return conditions.NewCollection(fmt.Sprintf("has exact texts %q", texts), func(ctx context.Context, hs []driver.Handle) (bool, error) {
		if len(hs) != len(texts) {
			return false, nil
		}
		for i, h := range hs {
			text, err := h.Text(ctx)
			if err != nil {
				return false, err
			}
			if text != texts[i] {
				return false, nil
			}
		}
		return true, nil
	})
}

// Texts matches a collection whose element texts contain the given texts, in
// order.
func Texts(texts ...string) conditions.Collection {
	return conditions.NewCollection(fmt.Sprintf("has texts %q", texts), func(ctx context.Context, hs []driver.Handle) (bool, error) {
		if len(hs) != len(texts) {
			return false, nil
		}
		for i, h := range hs {
			text, err := h.Text(ctx)
			if err != nil {
				return false, err
			}
			if !strings.Contains(text, texts[i]) {
				return false, nil
			}
		}
		return true, nil
	})
}
