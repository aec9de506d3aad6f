package pagination_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pawnbook/internal/pkg/pagination"
)

func TestWindow(t *testing.T) {
	items := make([]int, 0, 45)
	for i := 1; i <= 45; i++ {
		items = append(items, i)
	}

	t.Run("first page", func(t *testing.T) {
		resp := pagination.Window(items, &pagination.Params{Page: 1, Limit: 20, Offset: 0})
		page := resp.Data.([]int)
		require.Len(t, page, 20)
		assert.Equal(t, 1, page[0])
		assert.Equal(t, int64(45), resp.Meta.Total)
		assert.Equal(t, 3, resp.Meta.TotalPages)
		assert.True(t, resp.Meta.HasNext)
		assert.False(t, resp.Meta.HasPrev)
	})

	t.Run("last partial page", func(t *testing.T) {
		resp := pagination.Window(items, &pagination.Params{Page: 3, Limit: 20, Offset: 40})
		page := resp.Data.([]int)
		require.Len(t, page, 5)
		assert.Equal(t, 41, page[0])
		assert.False(t, resp.Meta.HasNext)
		assert.True(t, resp.Meta.HasPrev)
	})

	t.Run("page past the end", func(t *testing.T) {
		resp := pagination.Window(items, &pagination.Params{Page: 9, Limit: 20, Offset: 160})
		page := resp.Data.([]int)
		assert.Empty(t, page)
		assert.Equal(t, int64(45), resp.Meta.Total)
	})

	t.Run("empty input", func(t *testing.T) {
		resp := pagination.Window([]int{}, &pagination.Params{Page: 1, Limit: 20, Offset: 0})
		assert.Empty(t, resp.Data.([]int))
		assert.Zero(t, resp.Meta.TotalPages)
	})
}
