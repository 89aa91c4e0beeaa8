package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSignatureIgnoresOrder(t *testing.T) {
	a := NewFilterSelection().With("category", "Finance", "HR").With("level", "Beginner")
	b := NewFilterSelection().With("level", "Beginner").With("category", "HR", "Finance")
	assert.Equal(t, a.Signature(), b.Signature())
	assert.True(t, a.Equal(b))
}

func TestSignatureDistinguishesValues(t *testing.T) {
	a := NewFilterSelection().With("category", "Finance")
	b := NewFilterSelection().With("category", "HR")
	assert.NotEqual(t, a.Signature(), b.Signature())

	c := a
	c.Query = "budget"
	assert.NotEqual(t, a.Signature(), c.Signature())
}

func TestWithDoesNotMutate(t *testing.T) {
	base := NewFilterSelection().With("category", "Finance")
	changed := base.With("category", "HR")
	assert.Equal(t, []string{"Finance"}, base.Selected("category"))
	assert.Equal(t, []string{"HR"}, changed.Selected("category"))

	cleared := base.With("category")
	assert.False(t, cleared.HasField("category"))
	assert.True(t, base.HasField("category"))
}

func TestWithDeduplicates(t *testing.T) {
	sel := NewFilterSelection().With("tags", "a", " a", "", "b")
	assert.Equal(t, []string{"a", "b"}, sel.Selected("tags"))
}

func TestWithOut(t *testing.T) {
	sel := NewFilterSelection().
		With("category", "Finance").
		WithRange("duration", RangeValue{Min: "30"})
	sel.Query = "excel"
	rest := sel.WithOut("duration")
	assert.False(t, rest.HasField("duration"))
	assert.True(t, rest.HasField("category"))
	assert.Equal(t, "excel", rest.Query)
	assert.True(t, sel.HasField("duration"))
}

func TestParseRange(t *testing.T) {
	r, ok := ParseRange("10..60")
	assert.True(t, ok)
	assert.Equal(t, RangeValue{Min: "10", Max: "60"}, r)

	r, ok = ParseRange("..60")
	assert.True(t, ok)
	assert.Equal(t, "", r.Min)

	_, ok = ParseRange("..")
	assert.False(t, ok)
	_, ok = ParseRange("60")
	assert.False(t, ok)
}

func TestParseContentType(t *testing.T) {
	ct, err := ParseContentType(" Event ")
	assert.NoError(t, err)
	assert.Equal(t, Event, ct)

	_, err = ParseContentType("podcast")
	assert.ErrorIs(t, err, ErrUnknownContentType)
}
