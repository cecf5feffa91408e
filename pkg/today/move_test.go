package today

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMoveItems(t *testing.T) {
	items := []string{"a", "b", "c", "d", "e"}
	tests := []struct {
		name string
		from []int
		to   int
		want []string
	}{
		{"move first to end", []int{0}, 5, []string{"b", "c", "d", "e", "a"}},
		{"move last to front", []int{4}, 0, []string{"e", "a", "b", "c", "d"}},
		{"move down by one", []int{1}, 3, []string{"a", "c", "b", "d", "e"}},
		{"move up by one", []int{2}, 1, []string{"a", "c", "b", "d", "e"}},
		{"drop in place", []int{2}, 2, []string{"a", "b", "c", "d", "e"}},
		{"drop right after itself", []int{2}, 3, []string{"a", "b", "c", "d", "e"}},
		{"move several keeping relative order", []int{3, 0}, 2, []string{"b", "a", "d", "c", "e"}},
		{"duplicated index counted once", []int{1, 1}, 0, []string{"b", "a", "c", "d", "e"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := moveItems(items, tt.from, tt.to)

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMoveItems_InvalidIndex(t *testing.T) {
	items := []string{"a", "b", "c"}
	tests := []struct {
		name string
		from []int
		to   int
	}{
		{"no indices", nil, 0},
		{"negative source", []int{-1}, 0},
		{"source past end", []int{3}, 0},
		{"negative destination", []int{0}, -1},
		{"destination past end", []int{0}, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := moveItems(items, tt.from, tt.to)

			require.ErrorIs(t, err, ErrInvalidTaskIndex)
		})
	}
	assert.Equal(t, []string{"a", "b", "c"}, items)
}
