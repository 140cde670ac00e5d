package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCursor_RoundTrip(t *testing.T) {
	c := Cursor{Generation: 42, Offset: 100}
	decoded, err := Decode(c.Encode())
	require.NoError(t, err)
	assert.Equal(t, c, decoded)
}

func TestDecode_EmptyIsFirstPage(t *testing.T) {
	c, err := Decode("")
	require.NoError(t, err)
	assert.Equal(t, Cursor{}, c)
}

func TestDecode_Garbage(t *testing.T) {
	for _, token := range []string{"!!!", "bm90LWEtY3Vyc29y", "MTIz"} {
		_, err := Decode(token)
		assert.ErrorIs(t, err, ErrInvalidCursor, token)
	}
}

func TestPage_WalksAllItems(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}

	page1, next := Page(items, 1, Cursor{}, 2)
	assert.Equal(t, []int{1, 2}, page1)
	require.NotEmpty(t, next)

	c, err := Decode(next)
	require.NoError(t, err)
	page2, next := Page(items, 1, c, 2)
	assert.Equal(t, []int{3, 4}, page2)

	c, err = Decode(next)
	require.NoError(t, err)
	page3, next := Page(items, 1, c, 2)
	assert.Equal(t, []int{5}, page3)
	assert.Empty(t, next, "last page has no cursor")
}

func TestPage_GenerationMismatchRestarts(t *testing.T) {
	items := []int{1, 2, 3}
	page, _ := Page(items, 7, Cursor{Generation: 6, Offset: 2}, 2)
	assert.Equal(t, []int{1, 2}, page, "stale-generation cursor restarts from the top")
}

func TestPage_OffsetPastEnd(t *testing.T) {
	page, next := Page([]int{1}, 1, Cursor{Generation: 1, Offset: 5}, 2)
	assert.Nil(t, page)
	assert.Empty(t, next)
}

func TestPage_DefaultLimit(t *testing.T) {
	items := make([]int, 120)
	page, next := Page(items, 1, Cursor{Generation: 1}, 0)
	assert.Len(t, page, 50)
	assert.NotEmpty(t, next)
}
