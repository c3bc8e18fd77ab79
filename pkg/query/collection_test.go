package query_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/domscope/api/driver"
	"github.com/xkilldash9x/domscope/internal/browsertest"
	"github.com/xkilldash9x/domscope/pkg/be"
	"github.com/xkilldash9x/domscope/pkg/have"
	"github.com/xkilldash9x/domscope/pkg/query"
	"github.com/xkilldash9x/domscope/pkg/wait"
)

func elements(texts ...string) []*browsertest.Element {
	els := make([]*browsertest.Element, len(texts))
	for i, text := range texts {
		els[i] = browsertest.NewElement(text)
	}
	return els
}

func setElements(session *browsertest.Session, selector string, els []*browsertest.Element) {
	session.Set(selector, els...)
}

func TestCollectionSizeIsLive(t *testing.T) {
	ctx := context.Background()
	session := browsertest.NewSession()
	setElements(session, ".row", elements("a", "b", "c", "d", "e"))

	rows := query.FindAll(session, driver.CSS(".row"))

	n, err := rows.Size(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	setElements(session, ".row", elements("a", "b", "c"))
	n, err = rows.Size(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestCollectionGet(t *testing.T) {
	ctx := context.Background()

	t.Run("waits for the collection to reach the index", func(t *testing.T) {
		session := browsertest.NewSession()
		setElements(session, ".row", elements("first"))
		time.AfterFunc(150*time.Millisecond, func() {
			session.Append(".row", browsertest.NewElement("second"))
		})

		// The index wait runs inside resolution with the default timeout.
		setWaitDefaults(t, time.Second, 20*time.Millisecond)

		text, err := query.FindAll(session, driver.CSS(".row")).Get(1).Text(ctx)
		require.NoError(t, err)
		assert.Equal(t, "second", text)
	})

	t.Run("fails at the deadline when the index never exists", func(t *testing.T) {
		setWaitDefaults(t, 200*time.Millisecond, 20*time.Millisecond)
		session := browsertest.NewSession()
		setElements(session, ".row", elements("only"))

		start := time.Now()
		_, err := query.FindAll(session, driver.CSS(".row")).Get(3).Text(ctx)
		elapsed := time.Since(start)

		var timedOut *wait.TimeoutError
		require.ErrorAs(t, err, &timedOut)
		assert.Contains(t, err.Error(), "has size at least 4")
		assert.GreaterOrEqual(t, elapsed, 200*time.Millisecond)
	})

	t.Run("first is index zero", func(t *testing.T) {
		session := browsertest.NewSession()
		setElements(session, ".row", elements("head", "tail"))

		text, err := query.FindAll(session, driver.CSS(".row")).First().Text(ctx)
		require.NoError(t, err)
		assert.Equal(t, "head", text)
	})
}

func TestCollectionSlice(t *testing.T) {
	ctx := context.Background()
	setWaitDefaults(t, 200*time.Millisecond, 20*time.Millisecond)
	session := browsertest.NewSession()
	setElements(session, ".row", elements("a", "b", "c", "d", "e"))

	rows := query.FindAll(session, driver.CSS(".row"))

	t.Run("start stop step", func(t *testing.T) {
		err := rows.Slice(1, 4, 2).Should(ctx, have.ExactTexts("b", "d"))
		require.NoError(t, err)
	})

	t.Run("step below one behaves as one", func(t *testing.T) {
		err := rows.Slice(0, 3, 0).Should(ctx, have.ExactTexts("a", "b", "c"))
		require.NoError(t, err)
	})

	t.Run("waits for the collection to reach stop", func(t *testing.T) {
		start := time.Now()
		err := rows.Slice(0, 9, 1).Should(ctx, have.Size(9))
		assert.Error(t, err)
		assert.GreaterOrEqual(t, time.Since(start), 200*time.Millisecond)
	})
}

func TestCollectionFilteredBy(t *testing.T) {
	ctx := context.Background()
	session := browsertest.NewSession()
	els := elements("a", "b", "c", "d")
	els[1].SetDisplayed(false)
	els[3].SetDisplayed(false)
	els[0].SetEnabled(false)
	setElements(session, ".row", els)

	rows := query.FindAll(session, driver.CSS(".row"))

	t.Run("keeps only matching members", func(t *testing.T) {
		n, err := rows.FilteredBy(be.Visible).Size(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, n)
	})

	t.Run("chained filters equal a conjoined filter", func(t *testing.T) {
		chained, err := rows.FilteredBy(be.Visible).FilteredBy(be.Enabled).Size(ctx)
		require.NoError(t, err)
		conjoined, err2 := rows.FilteredBy(be.Visible.And(be.Enabled)).Size(ctx)
		require.NoError(t, err2)
		assert.Equal(t, conjoined, chained)
		assert.Equal(t, 1, chained)
	})

	t.Run("the filter observes the live document", func(t *testing.T) {
		els[1].SetDisplayed(true)
		n, err := rows.FilteredBy(be.Visible).Size(ctx)
		require.NoError(t, err)
		assert.Equal(t, 3, n)
		els[1].SetDisplayed(false)
	})
}

func TestCollectionElementBy(t *testing.T) {
	ctx := context.Background()
	session := browsertest.NewSession()
	setElements(session, ".row", elements("pending", "running", "done"))

	rows := query.FindAll(session, driver.CSS(".row"))

	t.Run("finds the first matching member", func(t *testing.T) {
		text, err := rows.ElementBy(have.ExactText("running")).Text(ctx)
		require.NoError(t, err)
		assert.Equal(t, "running", text)
	})

	t.Run("waits and fails when nothing ever matches", func(t *testing.T) {
		setWaitDefaults(t, 150*time.Millisecond, 20*time.Millisecond)
		err := rows.ElementBy(have.ExactText("crashed")).Should(ctx, be.InDOM)

		var timedOut *wait.TimeoutError
		require.ErrorAs(t, err, &timedOut)
		assert.Contains(t, err.Error(), `has exact text "crashed"`)
	})
}

func TestElementByTracksDelayedTextChange(t *testing.T) {
	ctx := context.Background()
	setWaitDefaults(t, 2*time.Second, 20*time.Millisecond)

	newRows := func() (*browsertest.Session, *browsertest.Element) {
		session := browsertest.NewSession()
		els := elements("Pending", "Active", "Pending")
		setElements(session, ".item", els)
		return session, els[1]
	}

	t.Run("blocks until the text flips, then succeeds", func(t *testing.T) {
		session, active := newRows()
		time.AfterFunc(150*time.Millisecond, func() { active.SetText("Done") })

		start := time.Now()
		err := query.FindAll(session, driver.CSS(".item")).
			ElementBy(have.Text("Done")).
			Should(ctx, be.Visible, time.Second)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, time.Since(start), 150*time.Millisecond)
	})

	t.Run("a tighter timeout fails naming the predicate", func(t *testing.T) {
		session, active := newRows()
		time.AfterFunc(500*time.Millisecond, func() { active.SetText("Done") })

		err := query.FindAll(session, driver.CSS(".item")).
			ElementBy(have.Text("Done")).
			Should(ctx, be.Visible, 200*time.Millisecond)

		var timedOut *wait.TimeoutError
		require.ErrorAs(t, err, &timedOut)
		assert.Contains(t, err.Error(), `has text "Done"`)
	})
}

func TestCollectionShould(t *testing.T) {
	ctx := context.Background()

	t.Run("waits for growth", func(t *testing.T) {
		session := browsertest.NewSession()
		setElements(session, ".row", elements("a"))
		time.AfterFunc(100*time.Millisecond, func() {
			session.Append(".row", browsertest.NewElement("b"), browsertest.NewElement("c"))
		})

		err := query.FindAll(session, driver.CSS(".row")).Should(ctx, have.Size(3), time.Second)
		require.NoError(t, err)
	})

	t.Run("should not empty waits for the first member", func(t *testing.T) {
		session := browsertest.NewSession()
		time.AfterFunc(100*time.Millisecond, func() {
			session.Set(".row", browsertest.NewElement("late"))
		})

		err := query.FindAll(session, driver.CSS(".row")).ShouldNot(ctx, have.Empty, time.Second)
		require.NoError(t, err)
	})

	t.Run("reports the condition on timeout", func(t *testing.T) {
		setWaitDefaults(t, 150*time.Millisecond, 20*time.Millisecond)
		session := browsertest.NewSession()
		setElements(session, ".row", elements("a"))

		err := query.FindAll(session, driver.CSS(".row")).Should(ctx, have.ExactTexts("a", "b"))
		var timedOut *wait.TimeoutError
		require.ErrorAs(t, err, &timedOut)
		assert.Contains(t, err.Error(), "has exact texts")
	})
}

func TestCollectionShouldEach(t *testing.T) {
	ctx := context.Background()
	setWaitDefaults(t, 150*time.Millisecond, 20*time.Millisecond)

	t.Run("passes when every member matches", func(t *testing.T) {
		session := browsertest.NewSession()
		els := elements("x", "y", "z")
		for _, el := range els {
			el.SetAttr("class", "ready")
		}
		setElements(session, ".row", els)

		err := query.FindAll(session, driver.CSS(".row")).ShouldEach(ctx, have.CSSClass("ready"))
		require.NoError(t, err)
	})

	t.Run("stops at the first failing member", func(t *testing.T) {
		session := browsertest.NewSession()
		els := elements("x", "y", "z")
		els[0].SetAttr("class", "ready")
		setElements(session, ".row", els)

		err := query.FindAll(session, driver.CSS(".row")).ShouldEach(ctx, have.CSSClass("ready"))
		var timedOut *wait.TimeoutError
		require.ErrorAs(t, err, &timedOut)
		assert.Contains(t, err.Error(), "[1]", "the failing member's index names the subject")
	})

	t.Run("should each not asserts the negation per member", func(t *testing.T) {
		session := browsertest.NewSession()
		els := elements("x", "y")
		for _, el := range els {
			el.SetDisplayed(false)
		}
		setElements(session, ".row", els)

		err := query.FindAll(session, driver.CSS(".row")).ShouldEachNot(ctx, be.Visible)
		require.NoError(t, err)
	})
}

func TestCollectionEach(t *testing.T) {
	ctx := context.Background()
	session := browsertest.NewSession()
	setElements(session, ".row", elements("a", "b", "c"))

	rows := query.FindAll(session, driver.CSS(".row"))

	t.Run("visits every member in order", func(t *testing.T) {
		var seen []string
		err := rows.Each(ctx, func(i int, el *query.Element) error {
			text, err := el.Text(ctx)
			if err != nil {
				return err
			}
			seen = append(seen, text)
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b", "c"}, seen)
	})

	t.Run("is restartable and observes mutations between passes", func(t *testing.T) {
		setElements(session, ".row", elements("x", "y"))

		var seen []string
		err := rows.Each(ctx, func(i int, el *query.Element) error {
			text, err := el.Text(ctx)
			if err != nil {
				return err
			}
			seen = append(seen, text)
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"x", "y"}, seen)
	})

	t.Run("the callback error stops the loop", func(t *testing.T) {
		setElements(session, ".row", elements("a", "b", "c"))
		boom := errors.New("boom")

		var visits int
		err := rows.Each(ctx, func(i int, el *query.Element) error {
			visits++
			if i == 1 {
				return boom
			}
			return nil
		})
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, 2, visits)
	})
}

func TestCollectionDescriptions(t *testing.T) {
	session := browsertest.NewSession()
	rows := query.FindAll(session, driver.CSS(".row"))

	assert.Equal(t, "(page).findAll(by css `.row`)", rows.String())
	assert.Equal(t, "((page).findAll(by css `.row`))[0]", rows.First().String())
	assert.Equal(t, "((page).findAll(by css `.row`))[1:4:2]", rows.Slice(1, 4, 2).String())
	assert.Equal(t, "((page).findAll(by css `.row`)).filteredBy(visible)", rows.FilteredBy(be.Visible).String())
	assert.Equal(t, "((page).findAll(by css `.row`)).elementBy(visible)", rows.ElementBy(be.Visible).String())
}
