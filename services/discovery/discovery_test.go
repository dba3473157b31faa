package discovery

import (
	"testing"

	"github.com/Suhas-Reddy-S/Miner-Safety-Gear/gatt"
	"github.com/Suhas-Reddy-S/Miner-Safety-Gear/types"
)

type call struct {
	op             string
	service        uint32
	characteristic uint16
	uuid           []byte
	mode           gatt.NotifyMode
}

type fakeClient struct {
	calls  []call
	status gatt.Status
}

func (c *fakeClient) DiscoverPrimaryServiceByUUID(conn uint8, uuid []byte) gatt.Status {
	c.calls = append(c.calls, call{op: "service", uuid: uuid})
	return c.status
}

func (c *fakeClient) DiscoverCharacteristicsByUUID(conn uint8, service uint32, uuid []byte) gatt.Status {
	c.calls = append(c.calls, call{op: "characteristic", service: service, uuid: uuid})
	return c.status
}

func (c *fakeClient) SetCharacteristicNotification(conn uint8, characteristic uint16, mode gatt.NotifyMode) gatt.Status {
	c.calls = append(c.calls, call{op: "notify", characteristic: characteristic, mode: mode})
	return c.status
}

type fakeDisplay struct{ rows map[types.Row]string }

func (d *fakeDisplay) SetRow(row types.Row, text string) {
	if d.rows == nil {
		d.rows = map[types.Row]string{}
	}
	d.rows[row] = text
}

type rig struct {
	client  *fakeClient
	display *fakeDisplay
	session *gatt.Session
	m       *Machine
}

func newRig() *rig {
	r := &rig{
		client:  &fakeClient{},
		display: &fakeDisplay{},
		session: &gatt.Session{},
	}
	r.session.Opened(3)
	r.m = New(Config{Client: r.client, Display: r.display, Session: r.session})
	return r
}

func completed() gatt.Event { return gatt.Event{Kind: gatt.EvProcedureCompleted} }

func TestFullDiscoverySequence(t *testing.T) {
	r := newRig()

	if r.m.State() != StateAwaitConnection {
		t.Fatalf("initial state = %v", r.m.State())
	}

	r.m.Dispatch(gatt.Event{Kind: gatt.EvConnectionOpened, Connection: 3})
	if r.m.State() != StateThermoService {
		t.Fatalf("state after open = %v", r.m.State())
	}

	// Stack reports the found handles before each completion.
	r.session.ServiceHandle = 0x10000
	r.m.Dispatch(completed())
	if r.m.State() != StateThermoCharacteristic || r.session.ThermoService != 0x10000 {
		t.Fatalf("state=%v thermoService=%#x", r.m.State(), r.session.ThermoService)
	}

	r.session.CharacteristicHandle = 0x21
	r.m.Dispatch(completed())
	if r.m.State() != StateThermoIndications || r.session.ThermoCharacteristic != 0x21 {
		t.Fatalf("state=%v thermoChar=%#x", r.m.State(), r.session.ThermoCharacteristic)
	}

	r.m.Dispatch(completed())
	if r.m.State() != StateButtonService {
		t.Fatalf("state = %v", r.m.State())
	}
	if got := r.display.rows[types.RowConnection]; got != "Handling Indications" {
		t.Fatalf("connection row = %q", got)
	}

	r.session.ServiceHandle = 0x20000
	r.m.Dispatch(completed())
	if r.m.State() != StateButtonCharacteristic || r.session.ButtonService != 0x20000 {
		t.Fatalf("state=%v buttonService=%#x", r.m.State(), r.session.ButtonService)
	}

	r.session.CharacteristicHandle = 0x31
	r.m.Dispatch(completed())
	if r.m.State() != StateMonitor || r.session.ButtonCharacteristic != 0x31 {
		t.Fatalf("state=%v buttonChar=%#x", r.m.State(), r.session.ButtonCharacteristic)
	}
	if !r.session.ButtonIndications {
		t.Fatal("button indications not marked armed")
	}

	wantOps := []string{"service", "characteristic", "notify", "service", "characteristic", "notify"}
	if len(r.client.calls) != len(wantOps) {
		t.Fatalf("calls = %d, want %d", len(r.client.calls), len(wantOps))
	}
	for i, op := range wantOps {
		if r.client.calls[i].op != op {
			t.Fatalf("call %d = %q, want %q", i, r.client.calls[i].op, op)
		}
	}
	// First sequence targets the SIG thermometer UUIDs, second the custom
	// button UUIDs.
	if string(r.client.calls[0].uuid) != string(gatt.ThermoServiceUUID) ||
		string(r.client.calls[1].uuid) != string(gatt.ThermoCharUUID) ||
		string(r.client.calls[3].uuid) != string(gatt.ButtonServiceUUID) ||
		string(r.client.calls[4].uuid) != string(gatt.ButtonCharUUID) {
		t.Fatal("discovery UUID order wrong")
	}
	for _, i := range []int{2, 5} {
		if r.client.calls[i].mode != gatt.NotifyIndication {
			t.Fatalf("call %d mode = %v", i, r.client.calls[i].mode)
		}
	}
}

func TestMonitorIgnoresCompletions(t *testing.T) {
	r := newRig()
	driveToMonitor(r)

	r.m.Dispatch(completed())
	if r.m.State() != StateMonitor {
		t.Fatalf("completion in monitor moved state to %v", r.m.State())
	}
	calls := len(r.client.calls)
	r.m.Dispatch(completed())
	if len(r.client.calls) != calls {
		t.Fatal("monitor state issued a client call")
	}
}

func TestMonitorResetsOnDisconnect(t *testing.T) {
	r := newRig()
	driveToMonitor(r)

	r.m.Dispatch(gatt.Event{Kind: gatt.EvConnectionClosed})
	if r.m.State() != StateAwaitConnection {
		t.Fatalf("state after close = %v", r.m.State())
	}
}

func TestMidSequenceDisconnectLeavesMachineParked(t *testing.T) {
	r := newRig()
	r.m.Dispatch(gatt.Event{Kind: gatt.EvConnectionOpened})
	r.m.Dispatch(completed())
	if r.m.State() != StateThermoCharacteristic {
		t.Fatalf("state = %v", r.m.State())
	}

	// Only the terminal state watches for disconnect; mid-sequence the
	// machine stays put until a completion that will never come.
	r.m.Dispatch(gatt.Event{Kind: gatt.EvConnectionClosed})
	if r.m.State() != StateThermoCharacteristic {
		t.Fatalf("mid-sequence disconnect moved state to %v", r.m.State())
	}

	// A reconnect does not restart a parked machine either; discovery only
	// runs front to back from StateAwaitConnection.
	r.m.Dispatch(gatt.Event{Kind: gatt.EvConnectionOpened, Connection: 2})
	if r.m.State() != StateThermoCharacteristic {
		t.Fatalf("reconnect moved parked state to %v", r.m.State())
	}
}

func TestFailedCallStillAdvances(t *testing.T) {
	r := newRig()
	r.client.status = gatt.StatusFail

	r.m.Dispatch(gatt.Event{Kind: gatt.EvConnectionOpened})
	if r.m.State() != StateThermoService {
		t.Fatalf("state = %v", r.m.State())
	}
	r.m.Dispatch(completed())
	if r.m.State() != StateThermoCharacteristic {
		t.Fatalf("non-OK status blocked advance, state = %v", r.m.State())
	}
}

func driveToMonitor(r *rig) {
	r.m.Dispatch(gatt.Event{Kind: gatt.EvConnectionOpened})
	for i := 0; i < 5; i++ {
		r.m.Dispatch(completed())
	}
}
