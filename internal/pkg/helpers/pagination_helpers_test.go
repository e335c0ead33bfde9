package helpers

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestCalculateOffsetLimit(t *testing.T) {
	tests := []struct {
		page, size    int
		offset        uint64
		expectedLimit int
	}{
		{1, 10, 0, 10},
		{3, 20, 40, 20},
		{0, 0, 0, DefaultPageSize},
		{2, MaxPageSize + 1, 10, DefaultPageSize},
	}

	for _, tc := range tests {
		offset, limit := CalculateOffsetLimit(tc.page, tc.size)
		assert.Equal(t, tc.offset, offset)
		assert.Equal(t, tc.expectedLimit, limit)
	}
}

func TestNewPaginationInfo(t *testing.T) {
	info := NewPaginationInfo(25, 2, 10)
	assert.Equal(t, 3, info.TotalPages)
	assert.Equal(t, 2, info.CurrentPage)
	assert.True(t, info.HasNext)

	empty := NewPaginationInfo(0, 1, 10)
	assert.Equal(t, 0, empty.TotalPages)
	assert.False(t, empty.HasNext)
}

func TestParsePaginationParams(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		query      string
		page, size int
		search     string
	}{
		{"", 1, 10, ""},
		{"?page=4&size=25&search=%20ada%20", 4, 25, "ada"},
		{"?page=-1&size=abc", 1, 10, ""},
		{"?size=1000", 1, 10, ""},
	}

	for _, tc := range tests {
		t.Run(tc.query, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest("GET", "/students"+tc.query, nil)

			page, size, search := ParsePaginationParams(c)
			assert.Equal(t, tc.page, page)
			assert.Equal(t, tc.size, size)
			assert.Equal(t, tc.search, search)
		})
	}
}
