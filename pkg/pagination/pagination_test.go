package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTotalPages(t *testing.T) {
	cases := []struct {
		total int64
		want  int
	}{
		{0, 0},
		{1, 1},
		{3, 1},
		{20, 1},
		{21, 2},
		{47, 3},
		{60, 3},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, TotalPages(tc.total, DefaultPerPage), "total=%d", tc.total)
	}
}

func TestWindow(t *testing.T) {
	t.Run("no pages renders no links", func(t *testing.T) {
		assert.Empty(t, Window(1, 0, 5))
	})

	t.Run("five or fewer shows all", func(t *testing.T) {
		assert.Equal(t, []int{1, 2, 3}, Window(2, 3, 5))
		assert.Equal(t, []int{1, 2, 3, 4, 5}, Window(5, 5, 5))
	})

	t.Run("near the start", func(t *testing.T) {
		assert.Equal(t, []int{1, 2, 3, 4, 5}, Window(1, 12, 5))
		assert.Equal(t, []int{1, 2, 3, 4, 5}, Window(2, 12, 5))
	})

	t.Run("centered", func(t *testing.T) {
		assert.Equal(t, []int{4, 5, 6, 7, 8}, Window(6, 12, 5))
	})

	t.Run("near the end", func(t *testing.T) {
		assert.Equal(t, []int{8, 9, 10, 11, 12}, Window(11, 12, 5))
		assert.Equal(t, []int{8, 9, 10, 11, 12}, Window(12, 12, 5))
	})
}

func TestClampPage(t *testing.T) {
	assert.Equal(t, 1, ClampPage(0, 3))
	assert.Equal(t, 3, ClampPage(9, 3))
	assert.Equal(t, 1, ClampPage(4, 0))
	assert.Equal(t, 2, ClampPage(2, 3))
}

func TestSlice(t *testing.T) {
	items := make([]int, 47)
	for i := range items {
		items[i] = i
	}

	assert.Len(t, Slice(items, 1, 20), 20)
	assert.Len(t, Slice(items, 3, 20), 7)
	assert.Equal(t, 40, Slice(items, 3, 20)[0])
	assert.Empty(t, Slice(items, 4, 20))
	assert.Empty(t, Slice([]int{}, 1, 20))
}

func TestNewPagination(t *testing.T) {
	p := NewPagination(2, DefaultPerPage, 47)

	assert.Equal(t, 3, p.TotalPages)
	assert.True(t, p.HasNext)
	assert.True(t, p.HasPrev)
	assert.Equal(t, []int{1, 2, 3}, p.Links)

	empty := NewPagination(1, DefaultPerPage, 0)
	assert.Equal(t, 0, empty.TotalPages)
	assert.Empty(t, empty.Links)
	assert.False(t, empty.HasNext)
}
