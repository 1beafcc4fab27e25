// Package section implements the ordered, index-stable row container that
// conversation models mutate and the presentation layer mirrors.
package section

// Section is an ordered collection of rows addressed by a zero-based row
// number plus a fixed index identifying which section it is. Row indices
// are stable until an explicit remove; removal left-shifts later rows.
//
// A Section is not safe for concurrent use. All mutation is expected to
// happen on the session dispatch goroutine.
type Section[T any] struct {
	index int
	items []T
}

// New creates an empty section with the given fixed section index.
func New[T any](index int) *Section[T] {
	return &Section[T]{index: index}
}

// Index returns the fixed section index.
func (s *Section[T]) Index() int {
	return s.index
}

// ItemCount returns the number of rows.
func (s *Section[T]) ItemCount() int {
	return len(s.items)
}

// Item returns the row at the given position. Out-of-range rows are a
// programmer error and panic.
func (s *Section[T]) Item(row int) T {
	return s.items[row]
}

// Items returns a copy of all rows in order.
func (s *Section[T]) Items() []T {
	out := make([]T, len(s.items))
	copy(out, s.items)
	return out
}

// Append inserts one row at the end and returns its row index.
func (s *Section[T]) Append(item T) int {
	s.items = append(s.items, item)
	return len(s.items) - 1
}

// AppendAll inserts rows at the end and returns the range of inserted row
// indices as [first, first+count).
func (s *Section[T]) AppendAll(items []T) (first, count int) {
	first = len(s.items)
	s.items = append(s.items, items...)
	return first, len(items)
}

// Replace swaps the row at the given position in place. No renumbering.
func (s *Section[T]) Replace(row int, item T) {
	s.items[row] = item
}

// ReplaceAll discards every row and installs the given rows.
func (s *Section[T]) ReplaceAll(items []T) {
	s.items = append(s.items[:0:0], items...)
}

// Remove deletes the row at the given position and left-shifts later rows.
func (s *Section[T]) Remove(row int) {
	s.items = append(s.items[:row], s.items[row+1:]...)
}

// RemoveAll deletes every row matching pred and returns the original row
// indices of the removed rows, in ascending order. The returned indices
// refer to positions before the removal, which is what a batched
// delete-rows hint expects.
func (s *Section[T]) RemoveAll(pred func(T) bool) []int {
	var removed []int
	kept := s.items[:0]
	for row, item := range s.items {
		if pred(item) {
			removed = append(removed, row)
			continue
		}
		kept = append(kept, item)
	}
	s.items = kept
	return removed
}

// ItemAfter returns the row following the given position, if any.
func (s *Section[T]) ItemAfter(row int) (T, bool) {
	if row+1 >= len(s.items) {
		var zero T
		return zero, false
	}
	return s.items[row+1], true
}
