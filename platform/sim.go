package platform

import (
	"sync"
	"time"

	"github.com/Suhas-Reddy-S/Miner-Safety-Gear/errcode"
	"github.com/Suhas-Reddy-S/Miner-Safety-Gear/gatt"
	"github.com/Suhas-Reddy-S/Miner-Safety-Gear/scheduler"
	"github.com/Suhas-Reddy-S/Miner-Safety-Gear/types"
)

// Sim emulates the node's hardware and a remote wireless peer. Transfers and
// timer waits complete asynchronously by posting scheduler events, exactly
// like the real drivers; peer procedures complete by emitting stack events.
type Sim struct {
	sched *scheduler.Scheduler
	stack chan gatt.Event

	// RawCode models the sensor; it is sampled once per completed read.
	RawCode func() uint16

	// TransferTime and ProcedureTime pace asynchronous completions.
	TransferTime  time.Duration
	ProcedureTime time.Duration

	mu    sync.Mutex
	word  uint16
	attrs map[uint16][]byte

	powered bool
	rows    map[types.Row]string

	ticker *time.Ticker
	stopT  chan struct{}
}

func NewSim(sched *scheduler.Scheduler) *Sim {
	return &Sim{
		sched:         sched,
		stack:         make(chan gatt.Event, 64),
		RawCode:       func() uint16 { return 0x6a89 }, // ~26.99 °C
		TransferTime:  200 * time.Microsecond,
		ProcedureTime: time.Millisecond,
		attrs:         map[uint16][]byte{},
		rows:          map[types.Row]string{},
	}
}

// Bindings exposes the sim through the platform contract.
func (s *Sim) Bindings() Bindings {
	return Bindings{
		TwoWire: (*simTwoWire)(s),
		Timer:   (*simTimer)(s),
		Power:   (*simPower)(s),
		Display: (*simDisplay)(s),
		Server:  (*simPeer)(s),
		Client:  (*simPeer)(s),
		Stack:   s.stack,
	}
}

// ---- scenario controls ----

// Connect opens the simulated connection.
func (s *Sim) Connect(conn uint8) {
	s.emit(gatt.Event{Kind: gatt.EvConnectionOpened, Connection: conn})
}

// Disconnect drops it.
func (s *Sim) Disconnect() {
	s.emit(gatt.Event{Kind: gatt.EvConnectionClosed})
}

// StartReporting posts timer-underflow events at the report period.
func (s *Sim) StartReporting(period time.Duration) {
	s.StopReporting()
	s.ticker = time.NewTicker(period)
	s.stopT = make(chan struct{})
	go func(t *time.Ticker, stop chan struct{}) {
		for {
			select {
			case <-stop:
				return
			case <-t.C:
				s.sched.Post(scheduler.EventTimerUnderflow)
			}
		}
	}(s.ticker, s.stopT)
}

func (s *Sim) StopReporting() {
	if s.ticker != nil {
		s.ticker.Stop()
		close(s.stopT)
		s.ticker = nil
	}
}

// PressButton posts one button edge.
func (s *Sim) PressButton(k scheduler.Kind) { s.sched.Post(k) }

// Attribute returns the current backing-store value for a handle.
func (s *Sim) Attribute(handle uint16) []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]byte(nil), s.attrs[handle]...)
}

// Row returns the last text written to a display row.
func (s *Sim) Row(r types.Row) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rows[r]
}

func (s *Sim) emit(ev gatt.Event) {
	select {
	case s.stack <- ev:
	default:
		// Sim-scale traffic never fills the buffer; dropping beats
		// deadlocking the node goroutine.
	}
}

func (s *Sim) after(d time.Duration, f func()) { time.AfterFunc(d, f) }

// ---- two-wire bus ----

type simTwoWire Sim

func (w *simTwoWire) WriteCommand(addr uint16, cmd byte) error {
	if addr == 0 {
		return errcode.InvalidParams
	}
	s := (*Sim)(w)
	s.after(s.TransferTime, func() {
		s.sched.Post(scheduler.EventBusTransferDone)
	})
	return nil
}

func (w *simTwoWire) ReadBytes(addr uint16, n int) error {
	if addr == 0 || n <= 0 {
		return errcode.InvalidParams
	}
	s := (*Sim)(w)
	s.after(s.TransferTime, func() {
		s.mu.Lock()
		s.word = s.RawCode()
		s.mu.Unlock()
		s.sched.Post(scheduler.EventBusTransferDone)
	})
	return nil
}

func (w *simTwoWire) ReceivedWord() uint16 {
	s := (*Sim)(w)
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.word
}

func (w *simTwoWire) DisableIRQ() {}

// ---- one-shot timer ----

type simTimer Sim

func (t *simTimer) ArmMicros(us uint32) {
	s := (*Sim)(t)
	s.after(time.Duration(us)*time.Microsecond, func() {
		s.sched.Post(scheduler.EventTimerCompare)
	})
}

// ---- sensor power ----

type simPower Sim

func (p *simPower) On() {
	s := (*Sim)(p)
	s.mu.Lock()
	s.powered = true
	s.mu.Unlock()
}

func (p *simPower) Off() {
	s := (*Sim)(p)
	s.mu.Lock()
	s.powered = false
	s.mu.Unlock()
}

// ---- display ----

type simDisplay Sim

func (d *simDisplay) SetRow(row types.Row, text string) {
	s := (*Sim)(d)
	s.mu.Lock()
	s.rows[row] = text
	s.mu.Unlock()
}

// ---- peer (attribute server + discovery client) ----

// Simulated remote handles.
const (
	SimThermoService uint32 = 0x0001_0010
	SimThermoChar    uint16 = 0x0021
	SimButtonService uint32 = 0x0001_0020
	SimButtonChar    uint16 = 0x0031
)

type simPeer Sim

func (p *simPeer) WriteAttribute(handle uint16, offset uint16, value []byte) gatt.Status {
	s := (*Sim)(p)
	if offset != 0 {
		return gatt.StatusInvalidParam
	}
	s.mu.Lock()
	s.attrs[handle] = append([]byte(nil), value...)
	s.mu.Unlock()
	return gatt.StatusOK
}

func (p *simPeer) SendIndication(conn uint8, handle uint16, value []byte) gatt.Status {
	s := (*Sim)(p)
	s.after(s.ProcedureTime, func() {
		s.emit(gatt.Event{Kind: gatt.EvIndicationConfirmed, Connection: conn, Attribute: handle})
	})
	return gatt.StatusOK
}

func (p *simPeer) DiscoverPrimaryServiceByUUID(conn uint8, uuid []byte) gatt.Status {
	s := (*Sim)(p)
	svc := SimThermoService
	if string(uuid) == string(gatt.ButtonServiceUUID) {
		svc = SimButtonService
	}
	s.after(s.ProcedureTime, func() {
		s.emit(gatt.Event{Kind: gatt.EvServiceDiscovered, Connection: conn, Service: svc})
		s.emit(gatt.Event{Kind: gatt.EvProcedureCompleted, Connection: conn, Result: gatt.StatusOK})
	})
	return gatt.StatusOK
}

func (p *simPeer) DiscoverCharacteristicsByUUID(conn uint8, service uint32, uuid []byte) gatt.Status {
	s := (*Sim)(p)
	ch := SimThermoChar
	if string(uuid) == string(gatt.ButtonCharUUID) {
		ch = SimButtonChar
	}
	s.after(s.ProcedureTime, func() {
		s.emit(gatt.Event{Kind: gatt.EvCharacteristicDiscovered, Connection: conn, Characteristic: ch})
		s.emit(gatt.Event{Kind: gatt.EvProcedureCompleted, Connection: conn, Result: gatt.StatusOK})
	})
	return gatt.StatusOK
}

func (p *simPeer) SetCharacteristicNotification(conn uint8, characteristic uint16, mode gatt.NotifyMode) gatt.Status {
	s := (*Sim)(p)
	s.after(s.ProcedureTime, func() {
		if characteristic == SimThermoChar && mode == gatt.NotifyIndication {
			// The peer reciprocates by subscribing to our measurement
			// attribute, which is what arms the acquisition machine.
			s.emit(gatt.Event{Kind: gatt.EvCharacteristicStatus, Connection: conn,
				Attribute: gatt.AttrTemperatureMeasurement, Armed: true})
		}
		s.emit(gatt.Event{Kind: gatt.EvProcedureCompleted, Connection: conn, Result: gatt.StatusOK})
	})
	return gatt.StatusOK
}
