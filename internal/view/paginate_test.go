package view

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPaginate(t *testing.T) {
	items := make([]int, 17)
	for i := range items {
		items[i] = i
	}

	tests := []struct {
		name      string
		page      int
		wantPage  int
		wantTotal int
		wantLen   int
		wantFirst int
	}{
		{"first page", 1, 1, 3, 8, 0},
		{"middle page", 2, 2, 3, 8, 8},
		{"last page", 3, 3, 3, 1, 16},
		{"page zero clamps up", 0, 1, 3, 8, 0},
		{"negative clamps up", -4, 1, 3, 8, 0},
		{"overflow clamps down", 99, 3, 3, 1, 16},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pageItems, current, total := Paginate(items, tt.page, 8)
			assert.Equal(t, tt.wantPage, current)
			assert.Equal(t, tt.wantTotal, total)
			assert.Len(t, pageItems, tt.wantLen)
			if tt.wantLen > 0 {
				assert.Equal(t, tt.wantFirst, pageItems[0])
			}
		})
	}
}

func TestPaginateEmpty(t *testing.T) {
	pageItems, current, total := Paginate([]string{}, 3, 8)
	assert.Empty(t, pageItems)
	assert.Equal(t, 1, current)
	assert.Equal(t, 1, total)
}

func TestPaginateZeroPageSize(t *testing.T) {
	pageItems, current, total := Paginate([]string{"a", "b"}, 2, 0)
	assert.Equal(t, []string{"b"}, pageItems)
	assert.Equal(t, 2, current)
	assert.Equal(t, 2, total)
}
