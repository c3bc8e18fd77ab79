// Package be holds element state conditions: `el.Should(ctx, be.Visible)`.
package be

import (
	"context"

	"github.com/xkilldash9x/domscope/api/driver"
	"github.com/xkilldash9x/domscope/pkg/conditions"
)

// InDOM matches an element that is attached to the document. Resolution
// itself is the probe: once a handle answers a cheap read, it is attached.
var InDOM = conditions.NewElement("in DOM", func(ctx context.Context, h driver.Handle) (bool, error) {
	if _, err := h.TagName(ctx); err != nil {
		return false, err
	}
	return true, nil
})

// Visible matches an element that is attached and rendered with a non-empty
// box.
var Visible = conditions.NewElement("visible", func(ctx context.Context, h driver.Handle) (bool, error) {
	return h.IsDisplayed(ctx)
})

// Hidden matches an element that is attached but not rendered.
var Hidden = conditions.NewElement("hidden", func(ctx context.Context, h driver.Handle) (bool, error) {
	shown, err := h.IsDisplayed(ctx)
	if err != nil {
		return false, err
	}
	return !shown, nil
})

// Enabled matches an element that accepts interaction.
var Enabled = conditions.NewElement("enabled", func(ctx context.Context, h driver.Handle) (bool, error) {
	return h.IsEnabled(ctx)
})

// Disabled matches an element that rejects interaction.
var Disabled = conditions.NewElement("disabled", func(ctx context.Context, h driver.Handle) (bool, error) {
	enabled, err := h.IsEnabled(ctx)
	if err != nil {
		return false, err
	}
	return !enabled, nil
})

// Selected matches a checked checkbox/radio or a selected option.
var Selected = conditions.NewElement("selected", func(ctx context.Context, h driver.Handle) (bool, error) {
	return h.IsSelected(ctx)
})

// Clickable matches an element that is both visible and enabled.
var Clickable = Visible.And(Enabled)

// Blank matches an element with no text and no value.
var Blank = conditions.NewElement("blank", func(ctx context.Context, h driver.Handle) (bool, error) {
	text, err := h.Text(ctx)
	if err != nil {
		return false, err
	}
	if text != "" {
		return false, nil
	}
	value, err := h.Attribute(ctx, "value")
	if err != nil {
		return false, err
	}
	return value == "", nil
})
