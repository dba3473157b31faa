// Package discovery walks a freshly opened connection through two
// service/characteristic discovery sequences — the thermometer group, then
// the custom button group — enabling indications on each found
// characteristic, and then idles until the peer disconnects. Every step after
// the first is gated on the stack's procedure-completed event; the machine
// advances unconditionally on that event, logging (not retrying) any non-OK
// status from the call it issued.
package discovery

import (
	"github.com/Suhas-Reddy-S/Miner-Safety-Gear/gatt"
	"github.com/Suhas-Reddy-S/Miner-Safety-Gear/types"
	"github.com/Suhas-Reddy-S/Miner-Safety-Gear/x/logx"
)

// State names the milestone the machine is waiting to complete.
type State uint8

const (
	// StateAwaitConnection waits for a connection-opened event.
	StateAwaitConnection State = iota + 1
	// StateThermoService waits for the thermometer service discovery to
	// complete.
	StateThermoService
	// StateThermoCharacteristic waits for the thermometer characteristic
	// discovery to complete.
	StateThermoCharacteristic
	// StateThermoIndications waits for the notification enable to complete.
	StateThermoIndications
	// StateButtonService waits for the button service discovery to complete.
	StateButtonService
	// StateButtonCharacteristic waits for the button characteristic
	// discovery to complete.
	StateButtonCharacteristic
	// StateMonitor idles on the established connection; only a
	// connection-closed event restarts the sequence.
	StateMonitor
)

func (s State) String() string {
	switch s {
	case StateAwaitConnection:
		return "await_connection"
	case StateThermoService:
		return "thermo_service"
	case StateThermoCharacteristic:
		return "thermo_characteristic"
	case StateThermoIndications:
		return "thermo_indications"
	case StateButtonService:
		return "button_service"
	case StateButtonCharacteristic:
		return "button_characteristic"
	case StateMonitor:
		return "monitor"
	}
	return "unknown"
}

// Config wires the machine to the discovery client and session.
type Config struct {
	Client  gatt.Client
	Display types.Display
	Session *gatt.Session
}

// Machine holds the discovery protocol state across dispatches.
//
// A disconnect mid-sequence is deliberately not watched: only StateMonitor
// reacts to connection-closed, so a peer that drops during discovery leaves
// the machine parked in the state it had reached. Parked states ignore
// connection-opened too; discovery only runs front to back from
// StateAwaitConnection.
type Machine struct {
	cfg   Config
	state State
}

func New(cfg Config) *Machine {
	return &Machine{cfg: cfg, state: StateAwaitConnection}
}

// State reports the held protocol state.
func (m *Machine) State() State { return m.state }

// Dispatch runs at most one transition for one event.
func (m *Machine) Dispatch(ev gatt.Event) {
	s := m.cfg.Session

	switch m.state {
	case StateAwaitConnection:
		if ev.Kind == gatt.EvConnectionOpened {
			st := m.cfg.Client.DiscoverPrimaryServiceByUUID(s.Connection, gatt.ThermoServiceUUID)
			if !st.OK() {
				logx.Errorf("discovery: thermo service discovery: status=%v", st)
			}
			m.state = StateThermoService
		}

	case StateThermoService:
		if ev.Kind == gatt.EvProcedureCompleted {
			s.ThermoService = s.ServiceHandle
			st := m.cfg.Client.DiscoverCharacteristicsByUUID(s.Connection, s.ThermoService, gatt.ThermoCharUUID)
			if !st.OK() {
				logx.Errorf("discovery: thermo characteristic discovery: status=%v", st)
			}
			m.state = StateThermoCharacteristic
		}

	case StateThermoCharacteristic:
		if ev.Kind == gatt.EvProcedureCompleted {
			s.ThermoCharacteristic = s.CharacteristicHandle
			st := m.cfg.Client.SetCharacteristicNotification(s.Connection, s.ThermoCharacteristic, gatt.NotifyIndication)
			if !st.OK() {
				logx.Errorf("discovery: enable thermo indications: status=%v", st)
			}
			m.state = StateThermoIndications
		}

	case StateThermoIndications:
		if ev.Kind == gatt.EvProcedureCompleted {
			m.cfg.Display.SetRow(types.RowConnection, "Handling Indications")
			st := m.cfg.Client.DiscoverPrimaryServiceByUUID(s.Connection, gatt.ButtonServiceUUID)
			if !st.OK() {
				logx.Errorf("discovery: button service discovery: status=%v", st)
			}
			m.state = StateButtonService
		}

	case StateButtonService:
		if ev.Kind == gatt.EvProcedureCompleted {
			s.ButtonService = s.ServiceHandle
			st := m.cfg.Client.DiscoverCharacteristicsByUUID(s.Connection, s.ButtonService, gatt.ButtonCharUUID)
			if !st.OK() {
				logx.Errorf("discovery: button characteristic discovery: status=%v", st)
			}
			m.state = StateButtonCharacteristic
		}

	case StateButtonCharacteristic:
		if ev.Kind == gatt.EvProcedureCompleted {
			s.ButtonCharacteristic = s.CharacteristicHandle
			st := m.cfg.Client.SetCharacteristicNotification(s.Connection, s.ButtonCharacteristic, gatt.NotifyIndication)
			if !st.OK() {
				logx.Errorf("discovery: enable button indications: status=%v", st)
			}
			s.ButtonIndications = true
			m.state = StateMonitor
		}

	case StateMonitor:
		if ev.Kind == gatt.EvConnectionClosed {
			m.state = StateAwaitConnection
		}
	}
}
