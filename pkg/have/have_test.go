package have_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/domscope/api/driver"
	"github.com/xkilldash9x/domscope/internal/browsertest"
	"github.com/xkilldash9x/domscope/pkg/have"
)

func TestElementContentConditions(t *testing.T) {
	ctx := context.Background()
	el := browsertest.NewElement("hello world")
	el.SetTag("button")
	el.SetAttr("class", "btn btn-primary")
	el.SetAttr("value", "submit")

	cases := []struct {
		name string
		cond interface {
			Match(context.Context, driver.Handle) (bool, error)
		}
		want bool
	}{
		{"Text contains", have.Text("world"), true},
		{"Text missing", have.Text("goodbye"), false},
		{"ExactText equal", have.ExactText("hello world"), true},
		{"ExactText partial is not enough", have.ExactText("hello"), false},
		{"Attribute equal", have.Attribute("class", "btn btn-primary"), true},
		{"Attribute differs", have.Attribute("class", "btn"), false},
		{"Value equal", have.Value("submit"), true},
		{"Value differs", have.Value("reset"), false},
		{"CSSClass present", have.CSSClass("btn-primary"), true},
		{"CSSClass is not a substring match", have.CSSClass("btn-prim"), false},
		{"TagName equal", have.TagName("button"), true},
		{"TagName differs", have.TagName("a"), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ok, err := tc.cond.Match(ctx, el)
			require.NoError(t, err)
			assert.Equal(t, tc.want, ok)
		})
	}
}

func TestCollectionContentConditions(t *testing.T) {
	ctx := context.Background()
	hs := []driver.Handle{
		browsertest.NewElement("alpha one"),
		browsertest.NewElement("beta two"),
		browsertest.NewElement("gamma three"),
	}

	t.Run("sizes", func(t *testing.T) {
		ok, err := have.Size(3).Match(ctx, hs)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = have.SizeAtLeast(2).Match(ctx, hs)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = have.SizeAtMost(2).Match(ctx, hs)
		require.NoError(t, err)
		assert.False(t, ok)

		ok, err = have.Empty.Match(ctx, nil)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("ExactTexts requires equality in order", func(t *testing.T) {
		ok, err := have.ExactTexts("alpha one", "beta two", "gamma three").Match(ctx, hs)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = have.ExactTexts("beta two", "alpha one", "gamma three").Match(ctx, hs)
		require.NoError(t, err)
		assert.False(t, ok)

		ok, err = have.ExactTexts("alpha one", "beta two").Match(ctx, hs)
		require.NoError(t, err)
		assert.False(t, ok, "length mismatch must not match")
	})

	t.Run("Texts matches by containment per index", func(t *testing.T) {
		ok, err := have.Texts("alpha", "two", "gamma").Match(ctx, hs)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = have.Texts("alpha", "missing", "gamma").Match(ctx, hs)
		require.NoError(t, err)
		assert.False(t, ok)
	})
}
