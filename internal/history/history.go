// Package history keeps the bounded rolling record of classified readings in
// a fixed-capacity ring buffer. Callers read trailing windows, never the
// backing array.
package history

import (
	"time"

	"github.com/probelab/thermwatch/internal/sensor"
)

// Status is the model's verdict recorded alongside a reading.
type Status string

const (
	StatusNormal  Status = "normal"
	StatusAnomaly Status = "anomaly"
)

// Record is one classified reading as it entered the history.
type Record struct {
	Timestamp time.Time        `json:"timestamp"`
	Value     float64          `json:"value"`
	Status    Status           `json:"status"`
	Fault     sensor.FaultType `json:"fault"`
}

// Ring is a fixed-capacity append-only ring buffer of records. Appends are
// O(1); once full, each append overwrites the oldest record. Not safe for
// concurrent use; the detection loop is the only writer.
type Ring struct {
	buf   []Record
	next  int   // Index the next append writes to
	size  int   // Number of live records, <= cap(buf)
	total int64 // Records ever appended
}

// NewRing creates a ring holding at most capacity records.
func NewRing(capacity int) *Ring {
	if capacity < 1 {
		capacity = 1
	}
	return &Ring{buf: make([]Record, capacity)}
}

// Append adds a record, evicting the oldest once the ring is full.
func (r *Ring) Append(rec Record) {
	r.buf[r.next] = rec
	r.next = (r.next + 1) % len(r.buf)
	if r.size < len(r.buf) {
		r.size++
	}
	r.total++
}

// Tail returns the most recent n records in arrival order, fewer if the
// history is shorter. The returned slice is a copy; appends after Tail do
// not mutate it.
func (r *Ring) Tail(n int) []Record {
	if n > r.size {
		n = r.size
	}
	if n <= 0 {
		return nil
	}

	out := make([]Record, n)
	start := r.next - n
	if start < 0 {
		start += len(r.buf)
	}
	for i := 0; i < n; i++ {
		out[i] = r.buf[(start+i)%len(r.buf)]
	}
	return out
}

// Len returns the number of records currently held.
func (r *Ring) Len() int {
	return r.size
}

// Cap returns the ring's fixed capacity.
func (r *Ring) Cap() int {
	return len(r.buf)
}

// Total returns the number of records ever appended, including evicted ones.
func (r *Ring) Total() int64 {
	return r.total
}
