// Package node owns the cooperative dispatch loop. One goroutine sleeps on
// the scheduler's wake signal and the wireless stack's event feed; on wake it
// drains pending hardware flags in priority order and hands each one, wrapped
// as an external-signal event, to both state machines. Stack events update
// the session bookkeeping before the machines see them. Everything the
// machines touch runs on this goroutine; there is no other consumer.
package node

import (
	"context"

	"github.com/Suhas-Reddy-S/Miner-Safety-Gear/bus"
	"github.com/Suhas-Reddy-S/Miner-Safety-Gear/gatt"
	"github.com/Suhas-Reddy-S/Miner-Safety-Gear/scheduler"
	"github.com/Suhas-Reddy-S/Miner-Safety-Gear/services/acquisition"
	"github.com/Suhas-Reddy-S/Miner-Safety-Gear/services/discovery"
	"github.com/Suhas-Reddy-S/Miner-Safety-Gear/x/logx"
)

// Config wires the loop to its collaborators. Conn is optional telemetry;
// everything else is required.
type Config struct {
	Sched       *scheduler.Scheduler
	Acquisition *acquisition.Machine
	Discovery   *discovery.Machine
	Session     *gatt.Session
	Queue       *gatt.PendingWrites
	Server      gatt.Server

	// Stack feeds connection, discovery-result and confirmation events
	// from the platform's wireless-stack binding.
	Stack <-chan gatt.Event

	// Conn publishes link state and button edges when set.
	Conn *bus.Connection

	// MeasurementAttr is the attribute whose peer-side configuration arms
	// the acquisition machine. Zero selects the default layout.
	MeasurementAttr uint16
}

type Node struct {
	cfg Config
}

func New(cfg Config) *Node {
	if cfg.MeasurementAttr == 0 {
		cfg.MeasurementAttr = gatt.AttrTemperatureMeasurement
	}
	return &Node{cfg: cfg}
}

// Run blocks until ctx is cancelled or the stack feed closes.
func (n *Node) Run(ctx context.Context) {
	n.publishLink("idle")
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-n.cfg.Stack:
			if !ok {
				return
			}
			n.handleStack(ev)
		case <-n.cfg.Sched.Wake():
			n.drain()
		}
	}
}

// drain empties the pending-event set, one flag per dispatch, highest
// priority first. Button bits arrive on the signal side channel only and are
// republished as telemetry.
func (n *Node) drain() {
	signals := n.cfg.Sched.DrainSignals()

	if signals&scheduler.Mask(scheduler.EventButtonPB0) != 0 {
		n.publishButton("pb0")
	}
	if signals&scheduler.Mask(scheduler.EventButtonPB1) != 0 {
		n.publishButton("pb1")
	}

	for k := n.cfg.Sched.Consume(); k != scheduler.EventNone; k = n.cfg.Sched.Consume() {
		ev := gatt.ExternalSignal(scheduler.Mask(k))
		n.cfg.Acquisition.Dispatch(ev)
		n.cfg.Discovery.Dispatch(ev)
	}
}

// handleStack updates session state for one stack event, then dispatches it
// to both machines.
func (n *Node) handleStack(ev gatt.Event) {
	s := n.cfg.Session

	switch ev.Kind {
	case gatt.EvConnectionOpened:
		s.Opened(ev.Connection)
		n.publishLink("open")

	case gatt.EvConnectionClosed:
		s.Closed()
		n.publishLink("closed")

	case gatt.EvServiceDiscovered:
		s.ServiceHandle = ev.Service

	case gatt.EvCharacteristicDiscovered:
		s.CharacteristicHandle = ev.Characteristic

	case gatt.EvCharacteristicStatus:
		if ev.Attribute == n.cfg.MeasurementAttr {
			s.MeasurementIndications = ev.Armed
		}

	case gatt.EvIndicationConfirmed:
		s.IndicationInFlight = false
		n.flushOne()
	}

	n.cfg.Acquisition.Dispatch(ev)
	n.cfg.Discovery.Dispatch(ev)
}

// flushOne forwards the oldest deferred indication, if any. One record per
// confirmation keeps at most one indication in flight.
func (n *Node) flushOne() {
	s := n.cfg.Session
	if !s.ConnectionOpen || !s.MeasurementIndications {
		return
	}
	rec, ok := n.cfg.Queue.Dequeue()
	if !ok {
		return
	}
	st := n.cfg.Server.SendIndication(s.Connection, rec.Attribute, rec.Value[:rec.Len])
	if !st.OK() {
		logx.Errorf("node: flush queued indication: status=%v", st)
	}
	s.IndicationInFlight = true
}

func (n *Node) publishLink(state string) {
	if n.cfg.Conn == nil {
		return
	}
	n.cfg.Conn.Publish(&bus.Message{
		Topic:    bus.T("node", "link"),
		Payload:  state,
		Retained: true,
	})
}

func (n *Node) publishButton(name string) {
	if n.cfg.Conn == nil {
		return
	}
	n.cfg.Conn.Publish(&bus.Message{
		Topic:   bus.T("node", "button", name),
		Payload: "edge",
	})
}
