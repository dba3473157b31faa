// Package scheduler arbitrates asynchronous hardware events into a single
// cooperative consumer. Producers run in interrupt context and must never
// block: posting is one atomic read-modify-write on a shared bitmask plus a
// non-blocking nudge on the wake channel. Exactly one goroutine may consume.
package scheduler

import (
	"sync/atomic"
)

// Kind identifies one event source.
type Kind uint8

const (
	// EventNone is the sentinel returned when nothing is pending.
	EventNone Kind = iota
	EventTimerUnderflow
	EventTimerCompare
	EventBusTransferDone
	EventButtonPB0
	EventButtonPB1
)

// Bit positions in the pending mask. The three hardware flags occupy the
// prioritized low range; the button flags live in a disjoint range and are
// carried only on the external-signal path, never returned by Consume.
const (
	bitTimerUnderflow = 0
	bitTimerCompare   = 1
	bitBusDone        = 2
	bitButtonPB0      = 3
	bitButtonPB1      = 4
)

// Mask returns the signal bit for a kind, or 0 for EventNone.
func Mask(k Kind) uint32 {
	switch k {
	case EventTimerUnderflow:
		return 1 << bitTimerUnderflow
	case EventTimerCompare:
		return 1 << bitTimerCompare
	case EventBusTransferDone:
		return 1 << bitBusDone
	case EventButtonPB0:
		return 1 << bitButtonPB0
	case EventButtonPB1:
		return 1 << bitButtonPB1
	}
	return 0
}

// Scheduler holds the pending-event set. The zero value is not usable; call
// New. Lives for the whole process.
type Scheduler struct {
	// pending carries only the three prioritized hardware bits and is
	// drained one bit at a time by Consume.
	pending atomic.Uint32
	// signals accumulates every posted bit (buttons included) until the
	// consumer swaps it out to build an external-signal event.
	signals atomic.Uint32

	wake chan struct{}
}

func New() *Scheduler {
	return &Scheduler{wake: make(chan struct{}, 1)}
}

// Post records one event and wakes the consumer. Interrupt-safe: bounded,
// never blocks, idempotent between consumes (OR of one bit).
func (s *Scheduler) Post(k Kind) {
	bit := Mask(k)
	if bit == 0 {
		return
	}
	switch k {
	case EventTimerUnderflow, EventTimerCompare, EventBusTransferDone:
		s.pending.Or(bit)
	}
	s.signals.Or(bit)
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// Consume returns the highest-priority pending hardware event and clears
// exactly that bit, or EventNone when the set is empty. Priority, highest
// first: bus-transfer-complete, timer-compare, timer-underflow. Must only be
// called from the single consumer context.
func (s *Scheduler) Consume() Kind {
	m := s.pending.Load()

	var k Kind
	var bit uint32
	switch {
	case m&(1<<bitBusDone) != 0:
		k, bit = EventBusTransferDone, 1<<bitBusDone
	case m&(1<<bitTimerCompare) != 0:
		k, bit = EventTimerCompare, 1<<bitTimerCompare
	case m&(1<<bitTimerUnderflow) != 0:
		k, bit = EventTimerUnderflow, 1<<bitTimerUnderflow
	default:
		return EventNone
	}

	// Only the consumer clears bits, and only the one it is returning.
	s.pending.And(^bit)
	return k
}

// DrainSignals returns and clears the accumulated signal mask. Consumer only.
func (s *Scheduler) DrainSignals() uint32 {
	return s.signals.Swap(0)
}

// Wake is the consumer's sleep channel. One buffered nudge coalesces any
// number of posts between dispatches.
func (s *Scheduler) Wake() <-chan struct{} {
	return s.wake
}
