// Package types declares the hardware collaborator contracts consumed by the
// node core. Every operation that touches hardware is initiated non-blocking;
// completion arrives later as a posted scheduler event, never as a return
// value.
package types

// TwoWire is the asynchronous two-wire (I²C-class) transfer driver.
// WriteCommand and ReadBytes start a transfer and return immediately; the
// driver posts a bus-transfer-complete event when the transfer finishes.
// ReceivedWord is only meaningful after a completed read.
type TwoWire interface {
	WriteCommand(addr uint16, cmd byte) error
	ReadBytes(addr uint16, n int) error
	ReceivedWord() uint16
	// DisableIRQ masks the transfer-complete interrupt until the next
	// transfer is started.
	DisableIRQ()
}

// OneShotTimer arms a single timed wait. Expiry is delivered as a
// timer-compare-match scheduler event.
type OneShotTimer interface {
	ArmMicros(us uint32)
}

// SensorPower gates the sensor's supply rail.
type SensorPower interface {
	On()
	Off()
}

// Row selects one line of the on-device display.
type Row uint8

const (
	RowName Row = iota
	RowConnection
	RowTemperature
	RowAlert
)

// Display is the row-oriented display driver. SetRow with an empty string
// clears the row.
type Display interface {
	SetRow(row Row, text string)
}

// Reading is one published measurement.
type Reading struct {
	Kind  string  // e.g. "temperature"
	Value float64 // engineering units (°C for temperature)
	Raw   uint16  // raw sensor code
	TsMs  int64   // producer timestamp (ms)
}

// ReadingSink receives completed measurements for republication.
type ReadingSink interface {
	Publish(r Reading)
}
