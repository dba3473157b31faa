// Package heartbeat publishes a periodic liveness beat on the internal bus
// so off-node consumers can tell a silent link from a dead node.
package heartbeat

import (
	"context"
	"time"

	"github.com/Suhas-Reddy-S/Miner-Safety-Gear/bus"
)

// DefaultPeriod is used when Service.Period is zero.
const DefaultPeriod = 10 * time.Second

var topicBeat = bus.T("node", "heartbeat")

// Beat is one heartbeat payload.
type Beat struct {
	Seq      uint64 `json:"seq"`
	UptimeMs int64  `json:"uptime_ms"`
}

// Service emits a Beat on every tick, retained so late subscribers see the
// most recent one.
type Service struct {
	Conn   *bus.Connection
	Period time.Duration

	now func() time.Time // test hook
}

// Run blocks until ctx is cancelled, beating once immediately and then once
// per period.
func (s *Service) Run(ctx context.Context) {
	period := s.Period
	if period <= 0 {
		period = DefaultPeriod
	}
	now := s.now
	if now == nil {
		now = time.Now
	}

	start := now()
	var seq uint64
	beat := func() {
		seq++
		s.Conn.Publish(&bus.Message{
			Topic:    topicBeat,
			Payload:  Beat{Seq: seq, UptimeMs: now().Sub(start).Milliseconds()},
			Retained: true,
		})
	}

	tick := time.NewTicker(period)
	defer tick.Stop()

	beat()
	for {
		select {
		case <-ctx.Done():
			return
		case <-tick.C:
			beat()
		}
	}
}
