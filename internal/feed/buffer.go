package feed

import "sync"

// RingBuffer is a fixed-capacity, thread-safe ring buffer of feed entries.
// When full, the oldest entry is evicted. All methods are safe for
// concurrent use.
type RingBuffer struct {
	mu    sync.RWMutex
	items []FormattedCommand
	cap   int
	head  int // index of the oldest element
	count int
}

// NewRingBuffer creates a RingBuffer with the given capacity (minimum 1).
func NewRingBuffer(capacity int) *RingBuffer {
	if capacity < 1 {
		capacity = 1
	}
	return &RingBuffer{
		items: make([]FormattedCommand, capacity),
		cap:   capacity,
	}
}

// Add inserts an entry, overwriting the oldest when full.
func (rb *RingBuffer) Add(fc FormattedCommand) {
	rb.mu.Lock()
	defer rb.mu.Unlock()

	writePos := (rb.head + rb.count) % rb.cap
	if rb.count == rb.cap {
		rb.items[rb.head] = fc
		rb.head = (rb.head + 1) % rb.cap
	} else {
		rb.items[writePos] = fc
		rb.count++
	}
}

// ListAll returns all entries in chronological order, oldest first.
func (rb *RingBuffer) ListAll() []FormattedCommand {
	rb.mu.RLock()
	defer rb.mu.RUnlock()

	if rb.count == 0 {
		return nil
	}
	result := make([]FormattedCommand, rb.count)
	for i := 0; i < rb.count; i++ {
		result[i] = rb.items[(rb.head+i)%rb.cap]
	}
	return result
}

// Recent returns up to limit newest entries in chronological order.
func (rb *RingBuffer) Recent(limit int) []FormattedCommand {
	all := rb.ListAll()
	if len(all) <= limit {
		return all
	}
	return all[len(all)-limit:]
}

// Reset empties the buffer.
func (rb *RingBuffer) Reset() {
	rb.mu.Lock()
	defer rb.mu.Unlock()
	rb.head = 0
	rb.count = 0
}

// Len returns the number of entries currently buffered.
func (rb *RingBuffer) Len() int {
	rb.mu.RLock()
	defer rb.mu.RUnlock()
	return rb.count
}

// Cap returns the buffer capacity.
func (rb *RingBuffer) Cap() int {
	return rb.cap
}
