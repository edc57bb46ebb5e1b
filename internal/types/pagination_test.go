package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPaginationMetadata(t *testing.T) {
	t.Run("total pages rounds up", func(t *testing.T) {
		m := NewPaginationMetadata(25, 10, 1)
		assert.Equal(t, 25, m.TotalItemCount)
		assert.Equal(t, 3, m.TotalPages)
		assert.Equal(t, 10, m.PageSize)
		assert.Equal(t, 1, m.CurrentPage)
	})

	t.Run("exact multiple", func(t *testing.T) {
		m := NewPaginationMetadata(20, 10, 2)
		assert.Equal(t, 2, m.TotalPages)
	})

	t.Run("empty result set", func(t *testing.T) {
		m := NewPaginationMetadata(0, 10, 1)
		assert.Equal(t, 0, m.TotalPages)
	})

	t.Run("single partial page", func(t *testing.T) {
		m := NewPaginationMetadata(3, 10, 1)
		assert.Equal(t, 1, m.TotalPages)
	})

	t.Run("zero page size yields zero pages instead of dividing by zero", func(t *testing.T) {
		m := NewPaginationMetadata(10, 0, 1)
		assert.Equal(t, 0, m.TotalPages)
	})
}
