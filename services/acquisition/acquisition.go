// Package acquisition sequences one temperature reading per report cycle:
// power the sensor, wait out its power-on reset, command a conversion, wait
// out the conversion, read the result, then publish it through the attribute
// server. Each step is started non-blocking and completed by a later
// scheduler event, so one cycle spans several dispatches of the node loop.
package acquisition

import (
	"strconv"

	"github.com/Suhas-Reddy-S/Miner-Safety-Gear/drivers/si7021"
	"github.com/Suhas-Reddy-S/Miner-Safety-Gear/gatt"
	"github.com/Suhas-Reddy-S/Miner-Safety-Gear/scheduler"
	"github.com/Suhas-Reddy-S/Miner-Safety-Gear/types"
	"github.com/Suhas-Reddy-S/Miner-Safety-Gear/x/ieee11073"
	"github.com/Suhas-Reddy-S/Miner-Safety-Gear/x/logx"
)

// State tags which trigger the machine is waiting for. There are no timeouts:
// an Awaiting state holds until its trigger bit arrives.
type State uint8

const (
	StateIdle State = iota
	StateAwaitingPowerOnReset
	StateAwaitingWriteComplete
	StateAwaitingConversion
	StateAwaitingReadComplete
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAwaitingPowerOnReset:
		return "awaiting_por"
	case StateAwaitingWriteComplete:
		return "awaiting_write"
	case StateAwaitingConversion:
		return "awaiting_conversion"
	case StateAwaitingReadComplete:
		return "awaiting_read"
	}
	return "unknown"
}

// measurementFlags is byte 0 of the published record: Celsius units, no
// timestamp, no type field.
const measurementFlags byte = 0x00

// Config wires the machine to its collaborators. All fields are required
// except Sink.
type Config struct {
	Sensor  *si7021.Device
	Timer   types.OneShotTimer
	Power   types.SensorPower
	Display types.Display
	Server  gatt.Server
	Queue   *gatt.PendingWrites
	Session *gatt.Session

	// Attribute is the measurement attribute handle. Zero selects the
	// default database layout.
	Attribute uint16

	// Sink, when set, additionally receives each decoded reading.
	Sink types.ReadingSink

	// Now supplies reading timestamps; tests override it.
	Now func() int64
}

// Machine holds the acquisition protocol state across dispatches.
type Machine struct {
	cfg   Config
	state State
}

func New(cfg Config) *Machine {
	if cfg.Attribute == 0 {
		cfg.Attribute = gatt.AttrTemperatureMeasurement
	}
	if cfg.Now == nil {
		cfg.Now = func() int64 { return 0 }
	}
	return &Machine{cfg: cfg}
}

// State reports the held protocol state.
func (m *Machine) State() State { return m.state }

// Dispatch runs at most one transition for one event. A cycle only starts or
// advances while the event is an external signal, the connection is open, and
// the peer has armed measurement indications; the held state survives until
// those preconditions come back. The sole exception is a read already in
// flight, which always runs to completion.
func (m *Machine) Dispatch(ev gatt.Event) {
	s := m.cfg.Session

	if ev.Kind == gatt.EvExternalSignal {
		armed := s.ConnectionOpen && s.MeasurementIndications

		switch m.state {
		case StateIdle:
			if armed && ev.Signals&scheduler.Mask(scheduler.EventTimerUnderflow) != 0 {
				m.cfg.Power.On()
				m.cfg.Timer.ArmMicros(si7021.PowerOnResetMicros)
				m.state = StateAwaitingPowerOnReset
			}

		case StateAwaitingPowerOnReset:
			if armed && ev.Signals&scheduler.Mask(scheduler.EventTimerCompare) != 0 {
				if err := m.cfg.Sensor.StartMeasurement(); err != nil {
					logx.Errorf("acquisition: start measurement: %v", err)
				}
				m.state = StateAwaitingWriteComplete
			}

		case StateAwaitingWriteComplete:
			if armed && ev.Signals&scheduler.Mask(scheduler.EventBusTransferDone) != 0 {
				m.cfg.Sensor.EndTransfer()
				m.cfg.Timer.ArmMicros(si7021.ConversionMicros)
				m.state = StateAwaitingConversion
			}

		case StateAwaitingConversion:
			if armed && ev.Signals&scheduler.Mask(scheduler.EventTimerCompare) != 0 {
				if err := m.cfg.Sensor.StartRead(); err != nil {
					logx.Errorf("acquisition: start read: %v", err)
				}
				m.state = StateAwaitingReadComplete
			}

		case StateAwaitingReadComplete:
			// The in-flight read is completed even when the connection
			// dropped mid-cycle: the attribute store is updated and the
			// cycle returns to Idle. Publication rechecks the
			// preconditions.
			if ev.Signals&scheduler.Mask(scheduler.EventBusTransferDone) != 0 {
				m.cfg.Sensor.EndTransfer()
				m.cfg.Power.Off()
				m.publish()
				m.state = StateIdle
			}
		}
	}

	// A dropped connection or disarmed indications always blanks the
	// measurement row, whatever the machine was doing.
	if !s.ConnectionOpen || !s.MeasurementIndications {
		m.cfg.Display.SetRow(types.RowTemperature, "")
	}
}

// publish decodes the completed read and pushes it out: attribute store
// first, then either an immediate indication or the retry queue, then the
// display. Non-OK statuses are logged and the cycle completes regardless.
func (m *Machine) publish() {
	s := m.cfg.Session

	raw := m.cfg.Sensor.RawReading()
	celsius := si7021.Celsius(raw)
	whole := int32(celsius)

	rec := ieee11073.EncodeCelsius(measurementFlags, whole)

	if st := m.cfg.Server.WriteAttribute(m.cfg.Attribute, 0, rec[:]); !st.OK() {
		logx.Errorf("acquisition: write attribute: status=%v", st)
	}

	if s.ConnectionOpen && s.MeasurementIndications {
		if !s.IndicationInFlight && m.cfg.Queue.Depth() == 0 {
			st := m.cfg.Server.SendIndication(s.Connection, m.cfg.Attribute, rec[:])
			if !st.OK() {
				logx.Errorf("acquisition: send indication: status=%v", st)
			}
			s.IndicationInFlight = true
		} else {
			if !m.cfg.Queue.Enqueue(m.cfg.Attribute, rec[:]) {
				logx.Warnf("acquisition: pending-write queue full, reading dropped")
			}
		}
		m.cfg.Display.SetRow(types.RowTemperature, "Temp="+strconv.Itoa(int(whole)))
	} else {
		m.cfg.Display.SetRow(types.RowTemperature, "")
	}

	if m.cfg.Sink != nil {
		m.cfg.Sink.Publish(types.Reading{
			Kind:  "temperature",
			Value: celsius,
			Raw:   raw,
			TsMs:  m.cfg.Now(),
		})
	}
}
