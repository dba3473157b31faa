package node

import (
	"context"
	"testing"
	"time"

	"github.com/Suhas-Reddy-S/Miner-Safety-Gear/bus"
	"github.com/Suhas-Reddy-S/Miner-Safety-Gear/drivers/si7021"
	"github.com/Suhas-Reddy-S/Miner-Safety-Gear/gatt"
	"github.com/Suhas-Reddy-S/Miner-Safety-Gear/scheduler"
	"github.com/Suhas-Reddy-S/Miner-Safety-Gear/services/acquisition"
	"github.com/Suhas-Reddy-S/Miner-Safety-Gear/services/discovery"
	"github.com/Suhas-Reddy-S/Miner-Safety-Gear/types"
)

// ---- fakes ----

type fakeBus struct{ word uint16 }

func (b *fakeBus) WriteCommand(addr uint16, cmd byte) error { return nil }
func (b *fakeBus) ReadBytes(addr uint16, n int) error       { return nil }
func (b *fakeBus) ReceivedWord() uint16                     { return b.word }
func (b *fakeBus) DisableIRQ()                              {}

type fakeTimer struct{}

func (fakeTimer) ArmMicros(us uint32) {}

type fakePower struct{}

func (fakePower) On()  {}
func (fakePower) Off() {}

type fakeDisplay struct{}

func (fakeDisplay) SetRow(row types.Row, text string) {}

type fakeServer struct {
	indications []uint16 // attribute handles, in send order
	status      gatt.Status
}

func (s *fakeServer) WriteAttribute(handle uint16, offset uint16, value []byte) gatt.Status {
	return s.status
}

func (s *fakeServer) SendIndication(conn uint8, handle uint16, value []byte) gatt.Status {
	s.indications = append(s.indications, handle)
	return s.status
}

type fakeClient struct{ ops []string }

func (c *fakeClient) DiscoverPrimaryServiceByUUID(conn uint8, uuid []byte) gatt.Status {
	c.ops = append(c.ops, "service")
	return gatt.StatusOK
}

func (c *fakeClient) DiscoverCharacteristicsByUUID(conn uint8, service uint32, uuid []byte) gatt.Status {
	c.ops = append(c.ops, "characteristic")
	return gatt.StatusOK
}

func (c *fakeClient) SetCharacteristicNotification(conn uint8, characteristic uint16, mode gatt.NotifyMode) gatt.Status {
	c.ops = append(c.ops, "notify")
	return gatt.StatusOK
}

type rig struct {
	sched   *scheduler.Scheduler
	session *gatt.Session
	queue   *gatt.PendingWrites
	server  *fakeServer
	client  *fakeClient
	stack   chan gatt.Event
	n       *Node
}

func newRig() *rig {
	r := &rig{
		sched:   scheduler.New(),
		session: &gatt.Session{},
		queue:   gatt.NewPendingWrites(8),
		server:  &fakeServer{},
		client:  &fakeClient{},
		stack:   make(chan gatt.Event, 16),
	}
	acq := acquisition.New(acquisition.Config{
		Sensor:  si7021.New(&fakeBus{word: 0x6a89}),
		Timer:   fakeTimer{},
		Power:   fakePower{},
		Display: fakeDisplay{},
		Server:  r.server,
		Queue:   r.queue,
		Session: r.session,
	})
	disc := discovery.New(discovery.Config{
		Client:  r.client,
		Display: fakeDisplay{},
		Session: r.session,
	})
	r.n = New(Config{
		Sched:       r.sched,
		Acquisition: acq,
		Discovery:   disc,
		Session:     r.session,
		Queue:       r.queue,
		Server:      r.server,
		Stack:       r.stack,
	})
	return r
}

// ---- tests ----

func TestStackEventsUpdateSession(t *testing.T) {
	r := newRig()

	r.n.handleStack(gatt.Event{Kind: gatt.EvConnectionOpened, Connection: 7})
	if !r.session.ConnectionOpen || r.session.Connection != 7 {
		t.Fatalf("session after open = %+v", r.session)
	}
	// The discovery machine saw the same event and started its sequence.
	if len(r.client.ops) != 1 || r.client.ops[0] != "service" {
		t.Fatalf("client ops = %v", r.client.ops)
	}

	r.n.handleStack(gatt.Event{Kind: gatt.EvServiceDiscovered, Service: 0x123})
	if r.session.ServiceHandle != 0x123 {
		t.Fatalf("service handle = %#x", r.session.ServiceHandle)
	}

	r.n.handleStack(gatt.Event{Kind: gatt.EvCharacteristicStatus, Attribute: gatt.AttrTemperatureMeasurement, Armed: true})
	if !r.session.MeasurementIndications {
		t.Fatal("measurement indications not armed")
	}

	r.n.handleStack(gatt.Event{Kind: gatt.EvConnectionClosed})
	if r.session.ConnectionOpen || r.session.MeasurementIndications {
		t.Fatalf("session after close = %+v", r.session)
	}
}

func TestDrainDispatchesInPriorityOrder(t *testing.T) {
	r := newRig()
	r.session.Opened(1)
	r.session.MeasurementIndications = true

	// With all three bits pending from Idle, the underflow must still be
	// seen (last), starting a cycle: the higher-priority flags are drained
	// first and ignored by the Idle state.
	r.sched.Post(scheduler.EventTimerUnderflow)
	r.sched.Post(scheduler.EventBusTransferDone)
	r.sched.Post(scheduler.EventTimerCompare)
	r.n.drain()

	if got := r.n.cfg.Acquisition.State(); got != acquisition.StateAwaitingPowerOnReset {
		t.Fatalf("acquisition state = %v", got)
	}
	if got := r.sched.Consume(); got != scheduler.EventNone {
		t.Fatalf("pending set not drained, next = %v", got)
	}
}

func TestConfirmationFlushesOneQueuedRecord(t *testing.T) {
	r := newRig()
	r.session.Opened(1)
	r.session.MeasurementIndications = true
	r.queue.Enqueue(gatt.AttrTemperatureMeasurement, []byte{0, 1, 2, 3, 4})
	r.queue.Enqueue(gatt.AttrTemperatureMeasurement, []byte{0, 5, 6, 7, 8})
	r.session.IndicationInFlight = true

	r.n.handleStack(gatt.Event{Kind: gatt.EvIndicationConfirmed})
	if len(r.server.indications) != 1 {
		t.Fatalf("indications after first confirm = %d", len(r.server.indications))
	}
	if !r.session.IndicationInFlight {
		t.Fatal("flushed record not marked in flight")
	}
	if r.queue.Depth() != 1 {
		t.Fatalf("queue depth = %d", r.queue.Depth())
	}

	r.n.handleStack(gatt.Event{Kind: gatt.EvIndicationConfirmed})
	if len(r.server.indications) != 2 || r.queue.Depth() != 0 {
		t.Fatalf("indications=%d depth=%d", len(r.server.indications), r.queue.Depth())
	}

	// Confirmation with an empty queue leaves nothing in flight.
	r.n.handleStack(gatt.Event{Kind: gatt.EvIndicationConfirmed})
	if r.session.IndicationInFlight {
		t.Fatal("in-flight set with empty queue")
	}
}

func TestConfirmationDoesNotFlushOnClosedConnection(t *testing.T) {
	r := newRig()
	r.queue.Enqueue(gatt.AttrTemperatureMeasurement, []byte{0, 1, 2, 3, 4})

	r.n.handleStack(gatt.Event{Kind: gatt.EvIndicationConfirmed})
	if len(r.server.indications) != 0 {
		t.Fatal("flush attempted on closed connection")
	}
	if r.queue.Depth() != 1 {
		t.Fatalf("queue depth = %d", r.queue.Depth())
	}
}

func TestRunPublishesLinkStateAndButtons(t *testing.T) {
	r := newRig()
	b := bus.NewBus(8)
	r.n.cfg.Conn = b.NewConnection("node")

	watcher := b.NewConnection("test")
	link := watcher.Subscribe(bus.T("node", "link"))
	pb0 := watcher.Subscribe(bus.T("node", "button", "pb0"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		r.n.Run(ctx)
		close(done)
	}()

	expect := func(sub *bus.Subscription, want string) {
		t.Helper()
		select {
		case m := <-sub.Channel():
			if m.Payload.(string) != want {
				t.Fatalf("payload = %v, want %q", m.Payload, want)
			}
		case <-time.After(time.Second):
			t.Fatalf("timeout waiting for %q", want)
		}
	}

	expect(link, "idle")
	r.stack <- gatt.Event{Kind: gatt.EvConnectionOpened, Connection: 1}
	expect(link, "open")

	r.sched.Post(scheduler.EventButtonPB0)
	expect(pb0, "edge")

	r.stack <- gatt.Event{Kind: gatt.EvConnectionClosed}
	expect(link, "closed")

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not stop on cancel")
	}
}
