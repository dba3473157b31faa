package node

import (
	"github.com/Suhas-Reddy-S/Miner-Safety-Gear/bus"
	"github.com/Suhas-Reddy-S/Miner-Safety-Gear/types"
)

// ReadingPublisher republishes decoded readings on the internal bus, retained
// so late subscribers see the latest value.
type ReadingPublisher struct {
	Conn *bus.Connection
}

func (p *ReadingPublisher) Publish(r types.Reading) {
	if p.Conn == nil {
		return
	}
	p.Conn.Publish(&bus.Message{
		Topic:    bus.T("node", "reading", r.Kind),
		Payload:  r,
		Retained: true,
	})
}
