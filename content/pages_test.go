package content

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestNormalizePages verifies deduplication, filtering, and order preservation.
func TestNormalizePages(t *testing.T) {
	tests := []struct {
		name  string
		pages []int
		total int
		want  []int
	}{
		{"nil means all pages", nil, 5, nil},
		{"empty means all pages", []int{}, 5, nil},
		{"valid pages kept in request order", []int{3, 1}, 5, []int{3, 1}},
		{"duplicates dropped keeping first position", []int{2, 2, 1, 2}, 5, []int{2, 1}},
		{"out of range filtered", []int{0, 1, 6, -1}, 5, []int{1}},
		{"all out of range yields empty, not all pages", []int{7, 8}, 5, []int{}},
		{"non-contiguous request preserved", []int{5, 2, 4}, 5, []int{5, 2, 4}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizePages(tt.pages, tt.total))
		})
	}
}

// TestAllPages verifies the full page list helper.
func TestAllPages(t *testing.T) {
	assert.Equal(t, []int{1, 2, 3}, AllPages(3))
	assert.Nil(t, AllPages(0))
	assert.Nil(t, AllPages(-1))
}
