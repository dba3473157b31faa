// Package si7021 drives the Si7021 temperature sensor over the node's
// asynchronous two-wire bus. Unlike a polling driver, every bus operation is
// split-phase: Start* issues a non-blocking transfer and completion arrives
// later as a bus-transfer-complete scheduler event. The acquisition state
// machine owns the sequencing (power-on-reset wait, command, conversion wait,
// read).
package si7021

import (
	"github.com/Suhas-Reddy-S/Miner-Safety-Gear/types"
)

// I2C address.
const Address = 0x40

// Commands.
const (
	// CmdMeasureTempNoHold starts a temperature conversion without clock
	// stretching; data is read in a separate transfer after the
	// conversion time.
	CmdMeasureTempNoHold = 0xf3
)

// Datasheet timing, worst case.
const (
	// PowerOnResetMicros is the settling time after VDD before the part
	// accepts commands.
	PowerOnResetMicros = 80000
	// ConversionMicros is the 14-bit temperature conversion time.
	ConversionMicros = 10800
)

// Device wraps the sensor's slice of the shared two-wire bus.
type Device struct {
	bus  types.TwoWire
	addr uint16
}

func New(bus types.TwoWire) *Device {
	return &Device{bus: bus, addr: Address}
}

// StartMeasurement issues the measure-no-hold command. Completion posts a
// bus-transfer-complete event.
func (d *Device) StartMeasurement() error {
	return d.bus.WriteCommand(d.addr, CmdMeasureTempNoHold)
}

// StartRead begins the 2-byte result read. Completion posts a
// bus-transfer-complete event.
func (d *Device) StartRead() error {
	return d.bus.ReadBytes(d.addr, 2)
}

// RawReading returns the big-endian 16-bit code from the last completed read.
func (d *Device) RawReading() uint16 {
	return d.bus.ReceivedWord()
}

// EndTransfer masks the bus transfer-complete interrupt after a completed
// step, matching the one-transfer-per-arm discipline.
func (d *Device) EndTransfer() {
	d.bus.DisableIRQ()
}

// Celsius converts a raw temperature code per the datasheet formula
// (application note AN607). The constants are load-bearing: downstream
// encodings assume exactly this conversion.
func Celsius(raw uint16) float64 {
	return float64(raw)*175.72/65536 - 46.85
}
