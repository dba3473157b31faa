//go:build rp2040 || rp2350

// node-rp2 is the board bring-up harness: real sensor bus, power rail and
// serial display on a Pico-class board, with the simulated peer standing in
// for the wireless stack so the full dispatch path runs on hardware.
package main

import (
	"context"
	"time"

	"github.com/Suhas-Reddy-S/Miner-Safety-Gear/config"
	"github.com/Suhas-Reddy-S/Miner-Safety-Gear/drivers/si7021"
	"github.com/Suhas-Reddy-S/Miner-Safety-Gear/gatt"
	"github.com/Suhas-Reddy-S/Miner-Safety-Gear/platform"
	"github.com/Suhas-Reddy-S/Miner-Safety-Gear/scheduler"
	"github.com/Suhas-Reddy-S/Miner-Safety-Gear/services/acquisition"
	"github.com/Suhas-Reddy-S/Miner-Safety-Gear/services/discovery"
	"github.com/Suhas-Reddy-S/Miner-Safety-Gear/services/node"
)

func main() {
	// Allow USB CDC to enumerate before anything prints.
	time.Sleep(2 * time.Second)
	println("boot")

	cfg := config.Default()
	sched := scheduler.New()

	hw, err := platform.NewRP2(sched, cfg.Sensor.Bus)
	if err != nil {
		println("platform:", err.Error())
		return
	}
	b := hw.Hardware()

	// The peer half stays simulated until a radio is attached.
	sim := platform.NewSim(sched)
	peer := sim.Bindings()

	session := &gatt.Session{}
	queue := gatt.NewPendingWrites(cfg.Node.QueueDepth)

	acq := acquisition.New(acquisition.Config{
		Sensor:  si7021.New(b.TwoWire),
		Timer:   b.Timer,
		Power:   b.Power,
		Display: b.Display,
		Server:  peer.Server,
		Queue:   queue,
		Session: session,
	})
	disc := discovery.New(discovery.Config{
		Client:  peer.Client,
		Display: b.Display,
		Session: session,
	})
	n := node.New(node.Config{
		Sched:       sched,
		Acquisition: acq,
		Discovery:   disc,
		Session:     session,
		Queue:       queue,
		Server:      peer.Server,
		Stack:       peer.Stack,
	})

	sim.Connect(1)
	sim.StartReporting(time.Duration(cfg.Node.ReportPeriodMs) * time.Millisecond)

	n.Run(context.Background())
}
