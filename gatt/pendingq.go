package gatt

import (
	"sync/atomic"
)

// MaxValueLen bounds one queued attribute value. The measurement record is 5
// bytes; nothing larger is ever queued.
const MaxValueLen = 8

// PendingWrite is one deferred indication: attribute handle plus the value
// bytes captured at enqueue time.
type PendingWrite struct {
	Attribute uint16
	Len       uint8
	Value     [MaxValueLen]byte
}

// PendingWrites is a fixed-capacity single-producer single-consumer FIFO of
// deferred indications. Both ends run on the consumer goroutine in the node,
// but the atomic monotonic-index discipline keeps Depth safe to read from
// anywhere.
type PendingWrites struct {
	buf  []PendingWrite
	mask uint32
	rd   atomic.Uint32 // consumer index (monotonic)
	wr   atomic.Uint32 // producer index (monotonic)
}

// NewPendingWrites creates a queue with the given capacity, rounded up to a
// power of two (minimum 2).
func NewPendingWrites(capacity int) *PendingWrites {
	n := 2
	for n < capacity {
		n <<= 1
	}
	return &PendingWrites{
		buf:  make([]PendingWrite, n),
		mask: uint32(n - 1),
	}
}

// Enqueue appends one record. Returns false when the queue is full; the
// record is dropped, matching the stack's own overflow behavior.
func (q *PendingWrites) Enqueue(attribute uint16, value []byte) bool {
	rd := q.rd.Load()
	wr := q.wr.Load()
	if wr-rd >= uint32(len(q.buf)) {
		return false
	}
	if len(value) > MaxValueLen {
		return false
	}
	rec := &q.buf[wr&q.mask]
	rec.Attribute = attribute
	rec.Len = uint8(len(value))
	copy(rec.Value[:], value)
	q.wr.Store(wr + 1) // release
	return true
}

// Dequeue removes and returns the oldest record.
func (q *PendingWrites) Dequeue() (PendingWrite, bool) {
	rd := q.rd.Load()
	wr := q.wr.Load()
	if wr == rd {
		return PendingWrite{}, false
	}
	rec := q.buf[rd&q.mask]
	q.rd.Store(rd + 1)
	return rec, true
}

// Depth reports how many records are waiting.
func (q *PendingWrites) Depth() int {
	return int(q.wr.Load() - q.rd.Load())
}
