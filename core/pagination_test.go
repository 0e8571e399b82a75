package core

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPagination_Clean(t *testing.T) {
	tests := []struct {
		name string
		in   Pagination
		want Pagination
	}{
		{name: "zero value gets defaults", in: Pagination{}, want: Pagination{Page: 1, PageSize: 10}},
		{name: "negative page", in: Pagination{Page: -3, PageSize: 5}, want: Pagination{Page: 1, PageSize: 5}},
		{name: "page size capped", in: Pagination{Page: 2, PageSize: 1000}, want: Pagination{Page: 2, PageSize: 50}},
		{name: "valid passes through", in: Pagination{Page: 4, PageSize: 25}, want: Pagination{Page: 4, PageSize: 25}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.in.Clean(10, 50))
		})
	}
}

func TestPagination_TotalPages(t *testing.T) {
	p := Pagination{Page: 1, PageSize: 8}
	assert.Equal(t, 1, p.TotalPages(0)) // empty set is still one page
	assert.Equal(t, 1, p.TotalPages(8))
	assert.Equal(t, 2, p.TotalPages(9))
	assert.Equal(t, 3, p.TotalPages(20))
}

func TestPagination_OffsetLimit(t *testing.T) {
	p := Pagination{Page: 3, PageSize: 8}
	assert.Equal(t, 16, p.Offset())
	assert.Equal(t, 8, p.Limit())
}

func TestNewPage(t *testing.T) {
	reqURL, err := url.Parse("http://localhost:8000/v1/threads?page=2&page_size=8")
	require.NoError(t, err)

	page := NewPage([]int{1, 2, 3}, 20, Pagination{Page: 2, PageSize: 8}, reqURL)
	assert.Equal(t, 20, page.Count)
	assert.Equal(t, 3, page.TotalPages)
	require.NotNil(t, page.Next)
	require.NotNil(t, page.Previous)
	assert.Equal(t, "http://localhost:8000/v1/threads?page=3&page_size=8", *page.Next)
	assert.Equal(t, "http://localhost:8000/v1/threads?page=1&page_size=8", *page.Previous)

	t.Run("first page has no previous", func(t *testing.T) {
		page := NewPage(nil, 20, Pagination{Page: 1, PageSize: 8}, reqURL)
		assert.Nil(t, page.Previous)
		assert.NotNil(t, page.Next)
	})

	t.Run("last page has no next", func(t *testing.T) {
		page := NewPage(nil, 20, Pagination{Page: 3, PageSize: 8}, reqURL)
		assert.Nil(t, page.Next)
		assert.NotNil(t, page.Previous)
	})

	t.Run("single page has neither", func(t *testing.T) {
		page := NewPage(nil, 3, Pagination{Page: 1, PageSize: 8}, reqURL)
		assert.Nil(t, page.Next)
		assert.Nil(t, page.Previous)
	})
}
