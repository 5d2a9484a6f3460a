package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name             string
		page, size, def  int
		wantFrom, wantLm int
	}{
		{"first page", 1, 12, 10, 0, 12},
		{"third page", 3, 20, 10, 40, 20},
		{"zero page", 0, 12, 10, 0, 12},
		{"size too big", 2, 500, 10, 10, 10},
		{"size missing", 2, 0, 6, 6, 6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			from, limit := Calculate(tt.page, tt.size, tt.def)
			assert.Equal(t, tt.wantFrom, from)
			assert.Equal(t, tt.wantLm, limit)
		})
	}
}

func TestParsePage(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 1, ParsePage(""))
	assert.Equal(t, 1, ParsePage("-3"))
	assert.Equal(t, 1, ParsePage("abc"))
	assert.Equal(t, 4, ParsePage("4"))
	assert.Equal(t, 7, ParseIntDefault("x", 7))
}
