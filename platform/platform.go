// Package platform supplies concrete hardware and wireless-stack bindings
// behind the contracts in types and gatt. The simulation bindings (sim.go)
// run anywhere and back the node-sim harness and integration tests; the RP2
// bindings (rp2.go) run on Pico-class boards under TinyGo build tags.
package platform

import (
	"github.com/Suhas-Reddy-S/Miner-Safety-Gear/gatt"
	"github.com/Suhas-Reddy-S/Miner-Safety-Gear/types"
)

// Bindings bundles everything the node wiring needs from a platform.
type Bindings struct {
	TwoWire types.TwoWire
	Timer   types.OneShotTimer
	Power   types.SensorPower
	Display types.Display

	Server gatt.Server
	Client gatt.Client
	Stack  <-chan gatt.Event
}
