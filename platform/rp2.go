//go:build rp2040 || rp2350

package platform

import (
	"machine"
	"sync"
	"time"

	uartx "github.com/jangala-dev/tinygo-uartx/uartx"
	"tinygo.org/x/drivers"

	"github.com/Suhas-Reddy-S/Miner-Safety-Gear/errcode"
	"github.com/Suhas-Reddy-S/Miner-Safety-Gear/scheduler"
	"github.com/Suhas-Reddy-S/Miner-Safety-Gear/types"
)

// Board defaults for Pico-class boards.
const (
	sensorPowerPin = machine.GP22
	displayBaud    = 115200
)

// RP2 binds the node's hardware contracts to a Pico/Pico 2. The wireless
// stack is not bound here; bring-up harnesses pair these with the Sim peer.
type RP2 struct {
	sched *scheduler.Scheduler
	i2c   drivers.I2C
	uart  *uartx.UART
	power machine.Pin

	mu   sync.Mutex
	word uint16
}

// NewRP2 configures the named I²C bus at 400 kHz on board-default pins, the
// sensor power rail, and uart0 as the row display.
func NewRP2(sched *scheduler.Scheduler, busID string) (*RP2, error) {
	r := &RP2{sched: sched, power: sensorPowerPin}

	var hw *machine.I2C
	switch busID {
	case "i2c0":
		hw = machine.I2C0
	case "i2c1":
		hw = machine.I2C1
	default:
		return nil, errcode.UnknownBus
	}
	if err := hw.Configure(machine.I2CConfig{Frequency: 400 * machine.KHz}); err != nil {
		return nil, err
	}
	r.i2c = hw

	r.power.Configure(machine.PinConfig{Mode: machine.PinOutput})
	r.power.Low()

	r.uart = uartx.UART0
	_ = r.uart.Configure(uartx.UARTConfig{BaudRate: displayBaud})

	return r, nil
}

// Hardware returns the bindings for the node wiring (wireless fields unset).
func (r *RP2) Hardware() Bindings {
	return Bindings{
		TwoWire: (*rp2TwoWire)(r),
		Timer:   (*rp2Timer)(r),
		Power:   (*rp2Power)(r),
		Display: (*rp2Display)(r),
	}
}

// ---- two-wire bus ----

// The machine I²C transfer is synchronous, so each operation runs on its own
// goroutine and posts the completion event when the wire settles. That keeps
// the non-blocking contract without an interrupt-driven controller.
type rp2TwoWire RP2

func (w *rp2TwoWire) WriteCommand(addr uint16, cmd byte) error {
	r := (*RP2)(w)
	go func() {
		_ = r.i2c.Tx(addr, []byte{cmd}, nil)
		r.sched.Post(scheduler.EventBusTransferDone)
	}()
	return nil
}

func (w *rp2TwoWire) ReadBytes(addr uint16, n int) error {
	if n <= 0 || n > 2 {
		return errcode.InvalidParams
	}
	r := (*RP2)(w)
	go func() {
		var buf [2]byte
		_ = r.i2c.Tx(addr, nil, buf[:n])
		r.mu.Lock()
		r.word = uint16(buf[0])<<8 | uint16(buf[1])
		r.mu.Unlock()
		r.sched.Post(scheduler.EventBusTransferDone)
	}()
	return nil
}

func (w *rp2TwoWire) ReceivedWord() uint16 {
	r := (*RP2)(w)
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.word
}

func (w *rp2TwoWire) DisableIRQ() {}

// ---- one-shot timer ----

type rp2Timer RP2

func (t *rp2Timer) ArmMicros(us uint32) {
	r := (*RP2)(t)
	time.AfterFunc(time.Duration(us)*time.Microsecond, func() {
		r.sched.Post(scheduler.EventTimerCompare)
	})
}

// ---- sensor power ----

type rp2Power RP2

func (p *rp2Power) On()  { (*RP2)(p).power.High() }
func (p *rp2Power) Off() { (*RP2)(p).power.Low() }

// ---- serial row display ----

type rp2Display RP2

func (d *rp2Display) SetRow(row types.Row, text string) {
	r := (*RP2)(d)
	line := make([]byte, 0, len(text)+8)
	line = append(line, 'R', '0'+byte(row), ' ')
	line = append(line, text...)
	line = append(line, '\r', '\n')
	r.mu.Lock()
	_, _ = r.uart.Write(line)
	r.mu.Unlock()
}
