package simlog

// DefaultRingSize is the capacity used when NewRing is given a non-positive size.
const DefaultRingSize = 60

// Ring is a fixed-capacity buffer of the most recent entries, for display.
type Ring struct {
	entries []Entry
	head    int
	count   int
}

// NewRing creates a ring holding up to size entries.
func NewRing(size int) *Ring {
	if size <= 0 {
		size = DefaultRingSize
	}
	return &Ring{entries: make([]Entry, size)}
}

// Add appends an entry, overwriting the oldest when full.
func (r *Ring) Add(e Entry) {
	r.entries[r.head] = e
	r.head = (r.head + 1) % len(r.entries)
	if r.count < len(r.entries) {
		r.count++
	}
}

// Len returns the number of stored entries.
func (r *Ring) Len() int { return r.count }

// Recent returns entries in chronological order (oldest first).
func (r *Ring) Recent() []Entry {
	size := len(r.entries)
	result := make([]Entry, r.count)
	for i := 0; i < r.count; i++ {
		idx := (r.head - r.count + i + size) % size
		result[i] = r.entries[idx]
	}
	return result
}
