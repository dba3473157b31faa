//go:build !(rp2040 || rp2350)

// node-sim runs the whole control core against simulated hardware and a
// simulated wireless peer: connect, discover, arm indications, then report
// temperature cycles until interrupted. Useful for eyeballing the dispatch
// flow and for soak runs.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Suhas-Reddy-S/Miner-Safety-Gear/bus"
	"github.com/Suhas-Reddy-S/Miner-Safety-Gear/config"
	"github.com/Suhas-Reddy-S/Miner-Safety-Gear/drivers/si7021"
	"github.com/Suhas-Reddy-S/Miner-Safety-Gear/gatt"
	"github.com/Suhas-Reddy-S/Miner-Safety-Gear/platform"
	"github.com/Suhas-Reddy-S/Miner-Safety-Gear/scheduler"
	"github.com/Suhas-Reddy-S/Miner-Safety-Gear/services/acquisition"
	"github.com/Suhas-Reddy-S/Miner-Safety-Gear/services/bridge"
	"github.com/Suhas-Reddy-S/Miner-Safety-Gear/services/discovery"
	"github.com/Suhas-Reddy-S/Miner-Safety-Gear/services/heartbeat"
	"github.com/Suhas-Reddy-S/Miner-Safety-Gear/services/node"
	"github.com/Suhas-Reddy-S/Miner-Safety-Gear/types"
	"github.com/Suhas-Reddy-S/Miner-Safety-Gear/x/logx"
)

func main() {
	cfgPath := flag.String("config", "", "YAML config file (defaults apply when empty)")
	runFor := flag.Duration("run", 0, "stop after this duration (0 = until signal)")
	bridgeOut := flag.String("bridge", "", "write telemetry as JSON lines to this file (\"-\" for stdout)")
	flag.Parse()

	cfg := config.Default()
	if *cfgPath != "" {
		var err error
		cfg, err = config.LoadFile(*cfgPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, "config:", err)
			os.Exit(1)
		}
	}
	logx.SetDebug(cfg.Node.Debug)
	logx.Infof("node-sim: %s, period=%dms queue=%d bus=%s",
		cfg.Node.Name, cfg.Node.ReportPeriodMs, cfg.Node.QueueDepth, cfg.Sensor.Bus)

	sched := scheduler.New()
	sim := platform.NewSim(sched)
	b := sim.Bindings()

	tb := bus.NewBus(16)
	nodeConn := tb.NewConnection("node")

	session := &gatt.Session{}
	queue := gatt.NewPendingWrites(cfg.Node.QueueDepth)

	acq := acquisition.New(acquisition.Config{
		Sensor:  si7021.New(b.TwoWire),
		Timer:   b.Timer,
		Power:   b.Power,
		Display: b.Display,
		Server:  b.Server,
		Queue:   queue,
		Session: session,
		Sink:    &node.ReadingPublisher{Conn: nodeConn},
		Now:     func() int64 { return time.Now().UnixMilli() },
	})
	disc := discovery.New(discovery.Config{
		Client:  b.Client,
		Display: b.Display,
		Session: session,
	})
	n := node.New(node.Config{
		Sched:       sched,
		Acquisition: acq,
		Discovery:   disc,
		Session:     session,
		Queue:       queue,
		Server:      b.Server,
		Stack:       b.Stack,
		Conn:        nodeConn,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if *runFor > 0 {
		ctx, cancel = context.WithTimeout(ctx, *runFor)
		defer cancel()
	}
	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig
		cancel()
	}()

	// Console taps on the telemetry bus.
	watch := tb.NewConnection("console")
	readings := watch.Subscribe(bus.T("node", "reading", "temperature"))
	link := watch.Subscribe(bus.T("node", "link"))
	go func() {
		for {
			select {
			case m, ok := <-readings.Channel():
				if !ok {
					return
				}
				r := m.Payload.(types.Reading)
				logx.Infof("reading: %.2f °C (raw %#04x)", r.Value, r.Raw)
			case m, ok := <-link.Channel():
				if !ok {
					return
				}
				logx.Infof("link: %v", m.Payload)
			}
		}
	}()

	hb := &heartbeat.Service{Conn: tb.NewConnection("heartbeat"), Period: 10 * time.Second}
	go hb.Run(ctx)

	if *bridgeOut != "" {
		out := os.Stdout
		if *bridgeOut != "-" {
			f, err := os.Create(*bridgeOut)
			if err != nil {
				fmt.Fprintln(os.Stderr, "bridge:", err)
				os.Exit(1)
			}
			defer f.Close()
			out = f
		}
		go bridge.Start(ctx, tb.NewConnection("bridge"), out,
			bus.T("node", "reading", "temperature"),
			bus.T("node", "link"),
			bus.T("node", "heartbeat"))
	}

	done := make(chan struct{})
	go func() {
		n.Run(ctx)
		close(done)
	}()

	// Scenario: the peer connects, discovery arms everything, then the
	// report timer drives one acquisition cycle per period.
	sim.Connect(1)
	time.Sleep(50 * time.Millisecond)
	sim.StartReporting(time.Duration(cfg.Node.ReportPeriodMs) * time.Millisecond)
	defer sim.StopReporting()

	<-done
	logx.Infof("node-sim: stopped; display %q / %q",
		sim.Row(types.RowConnection), sim.Row(types.RowTemperature))
}
