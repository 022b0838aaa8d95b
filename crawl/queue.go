// Package crawl — FIFO queue with deduplication.
// Items are deduplicated by a key function, so equivalent spellings of one
// path or URL are processed once.
package crawl

// Queue is a FIFO queue that drops items whose key it has already seen.
type Queue struct {
	items []string
	seen  map[string]bool
	key   func(string) string
	idx   int // current read position
}

// NewQueue creates an empty Queue. A nil key uses the item itself.
func NewQueue(key func(string) string) *Queue {
	if key == nil {
		key = func(s string) string { return s }
	}
	return &Queue{
		seen: make(map[string]bool),
		key:  key,
	}
}

// Add enqueues an item if its key hasn't been seen before. It reports
// whether the item was added.
func (q *Queue) Add(item string) bool {
	k := q.key(item)
	if q.seen[k] {
		return false
	}
	q.seen[k] = true
	q.items = append(q.items, item)
	return true
}

// HasNext returns true if there are unprocessed items.
func (q *Queue) HasNext() bool {
	return q.idx < len(q.items)
}

// Next returns the next unprocessed item and advances the pointer.
func (q *Queue) Next() string {
	item := q.items[q.idx]
	q.idx++
	return item
}

// Len returns the number of unique items added.
func (q *Queue) Len() int {
	return len(q.items)
}

// All returns every added item in insertion order.
func (q *Queue) All() []string {
	return q.items
}
