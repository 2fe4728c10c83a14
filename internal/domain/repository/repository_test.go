package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPagination_Clamps(t *testing.T) {
	assert.Equal(t, Pagination{Page: 1, PageSize: 20}, NewPagination(0, 0))
	assert.Equal(t, Pagination{Page: 3, PageSize: 100}, NewPagination(3, 500))

	p := NewPagination(3, 10)
	assert.Equal(t, 20, p.Offset())
	assert.Equal(t, 10, p.Limit())
}

func TestNewPagedResult_TotalPages(t *testing.T) {
	r := NewPagedResult([]int{1, 2}, 21, NewPagination(1, 10))
	assert.Equal(t, 3, r.TotalPages)
	assert.Equal(t, int64(21), r.Total)

	empty := NewPagedResult[int](nil, 0, NewPagination(1, 10))
	assert.NotNil(t, empty.Items)
	assert.Equal(t, 0, empty.TotalPages)
}
