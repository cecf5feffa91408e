package today

import "sort"

// moveItems moves the items at the from positions to the slot before position to, where to is
// counted in the list before the move (as in a list drag). Moved items keep their relative order.
func moveItems[T any](items []T, from []int, to int) ([]T, error) {
	if len(from) == 0 || to < 0 || to > len(items) {
		return nil, ErrInvalidTaskIndex
	}
	selected := make(map[int]bool, len(from))
	for _, i := range from {
		if i < 0 || i >= len(items) {
			return nil, ErrInvalidTaskIndex
		}
		selected[i] = true
	}
	indices := make([]int, 0, len(selected))
	for i := range selected {
		indices = append(indices, i)
	}
	sort.Ints(indices)

	moving := make([]T, 0, len(indices))
	remaining := make([]T, 0, len(items)-len(indices))
	before := 0
	for i, item := range items {
		if selected[i] {
			moving = append(moving, item)
			if i < to {
				before++
			}
			continue
		}
		remaining = append(remaining, item)
	}

	insertAt := to - before
	result := make([]T, 0, len(items))
	result = append(result, remaining[:insertAt]...)
	result = append(result, moving...)
	result = append(result, remaining[insertAt:]...)
	return result, nil
}
