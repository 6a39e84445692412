package sampling

// Cursor hands out the elements of a buffer in order, once each.
type Cursor[T any] struct {
	items []T
	pos   int
}

// Exhaust returns a cursor over a copy of items. The caller's slice is left
// untouched.
func Exhaust[T any](items []T) *Cursor[T] {
	owned := make([]T, len(items))
	copy(owned, items)
	return &Cursor[T]{items: owned}
}

// Next returns the next element. Once drained it returns the zero value and
// false on every call.
func (c *Cursor[T]) Next() (T, bool) {
	var zero T
	if c.pos >= len(c.items) {
		return zero, false
	}
	item := c.items[c.pos]
	c.items[c.pos] = zero
	c.pos++
	return item, true
}

// Remaining returns how many elements are left.
func (c *Cursor[T]) Remaining() int {
	return len(c.items) - c.pos
}
