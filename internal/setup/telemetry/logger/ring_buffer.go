package logger

// Ring is a fixed-capacity circular buffer that keeps the most recent items.
type Ring[T any] struct {
	items []T
	head  int // next write position
	size  int // number of stored items
	seen  int // items pushed since the last ResetSeen
}

// NewRing creates a ring holding up to capacity items. Capacity is at least one.
func NewRing[T any](capacity int) *Ring[T] {
	return &Ring[T]{items: make([]T, max(capacity, 1))}
}

// Cap returns the capacity of the ring.
func (r *Ring[T]) Cap() int {
	return len(r.items)
}

// Len returns the number of stored items.
func (r *Ring[T]) Len() int {
	return r.size
}

// Seen returns the number of items pushed since the last ResetSeen.
func (r *Ring[T]) Seen() int {
	return r.seen
}

// ResetSeen sets the pushed counter to the number of stored items.
func (r *Ring[T]) ResetSeen() {
	r.seen = r.size
}

// Push adds an item, overwriting the oldest one when full.
func (r *Ring[T]) Push(item T) {
	r.items[r.head] = item
	r.head = (r.head + 1) % len(r.items)

	if r.size < len(r.items) {
		r.size++
	}

	r.seen++
}

// Items returns the stored items, oldest first.
func (r *Ring[T]) Items() []T {
	if r.size == 0 {
		return nil
	}

	out := make([]T, r.size)
	start := (r.head - r.size + len(r.items)) % len(r.items)

	for i := range r.size {
		out[i] = r.items[(start+i)%len(r.items)]
	}

	return out
}
