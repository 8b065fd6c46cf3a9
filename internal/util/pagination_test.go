package util

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculate(t *testing.T) {
	tests := []struct {
		name             string
		page, size       int
		wantPage, offset int
		limit            int
	}{
		{"defaults", 0, 0, 1, 0, DefaultPageSize},
		{"second page", 2, 10, 2, 10, 10},
		{"size too big", 1, 500, 1, 0, DefaultPageSize},
		{"negative page", -3, 5, 1, 0, 5},
		{"huge page", math.MaxInt, 20, math.MaxInt/20 - 1, (math.MaxInt/20 - 2) * 20, 20},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, off, lim := Calculate(tt.page, tt.size)
			assert.Equal(t, tt.wantPage, p)
			assert.Equal(t, tt.offset, off)
			assert.Equal(t, tt.limit, lim)
			assert.GreaterOrEqual(t, off, 0)
		})
	}
}

func TestMeta(t *testing.T) {
	m := Meta(2, 10, 25)
	assert.Equal(t, int64(3), m.TotalPages)
	assert.True(t, m.HasPrev)
	assert.True(t, m.HasNext)

	m = Meta(3, 10, 25)
	assert.False(t, m.HasNext)
}

func TestParseIntDefault(t *testing.T) {
	assert.Equal(t, 5, ParseIntDefault("5", 1))
	assert.Equal(t, 1, ParseIntDefault("abc", 1))
	assert.Equal(t, 1, ParseIntDefault("", 1))
}
