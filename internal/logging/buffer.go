package logging

import (
	"sync"
	"time"
)

// LogEntry represents a single log line stored in the ring buffer.
type LogEntry struct {
	Timestamp  time.Time      `json:"timestamp"`
	Level      string         `json:"level"`
	Module     string         `json:"module"`
	Message    string         `json:"message"`
	Attributes map[string]any `json:"attributes,omitempty"`
}

// RingBuffer is a thread-safe fixed-capacity buffer of recent log entries.
type RingBuffer struct {
	mu      sync.RWMutex
	entries []LogEntry
	next    int
	filled  bool
}

// NewRingBuffer creates a ring buffer holding up to size entries.
func NewRingBuffer(size int) *RingBuffer {
	return &RingBuffer{entries: make([]LogEntry, size)}
}

// Append adds an entry, evicting the oldest one once the buffer is full.
func (rb *RingBuffer) Append(entry LogEntry) {
	rb.mu.Lock()
	defer rb.mu.Unlock()

	rb.entries[rb.next] = entry
	rb.next++
	if rb.next == len(rb.entries) {
		rb.next = 0
		rb.filled = true
	}
}

// All returns every buffered entry in chronological order.
func (rb *RingBuffer) All() []LogEntry {
	rb.mu.RLock()
	defer rb.mu.RUnlock()
	return rb.snapshot()
}

// Last returns up to n of the most recent entries in chronological order.
func (rb *RingBuffer) Last(n int) []LogEntry {
	rb.mu.RLock()
	defer rb.mu.RUnlock()

	all := rb.snapshot()
	if n <= 0 || n >= len(all) {
		return all
	}
	return all[len(all)-n:]
}

// Len returns the number of buffered entries.
func (rb *RingBuffer) Len() int {
	rb.mu.RLock()
	defer rb.mu.RUnlock()

	if rb.filled {
		return len(rb.entries)
	}
	return rb.next
}

// snapshot copies the entries oldest-first. Callers hold rb.mu.
func (rb *RingBuffer) snapshot() []LogEntry {
	if !rb.filled {
		out := make([]LogEntry, rb.next)
		copy(out, rb.entries[:rb.next])
		return out
	}

	out := make([]LogEntry, 0, len(rb.entries))
	out = append(out, rb.entries[rb.next:]...)
	out = append(out, rb.entries[:rb.next]...)
	return out
}
