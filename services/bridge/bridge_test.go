package bridge

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Suhas-Reddy-S/Miner-Safety-Gear/bus"
	"github.com/Suhas-Reddy-S/Miner-Safety-Gear/types"
)

type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestBridgeForwardsAsJSONLines(t *testing.T) {
	b := bus.NewBus(8)
	out := &lockedBuffer{}
	svc := &Service{
		Conn:   b.NewConnection("bridge"),
		Out:    out,
		Topics: []bus.Topic{bus.T("node", "reading", "temperature"), bus.T("node", "link")},
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		svc.Run(ctx)
		close(done)
	}()

	pub := b.NewConnection("test")
	// Give the forwarders a moment to subscribe.
	waitFor(t, func() bool {
		pub.Publish(&bus.Message{
			Topic:   bus.T("node", "reading", "temperature"),
			Payload: types.Reading{Kind: "temperature", Value: 26, Raw: 0x6a89},
		})
		return svc.Sent() >= 1
	})

	pub.Publish(&bus.Message{Topic: bus.T("node", "link"), Payload: true})
	waitFor(t, func() bool { return svc.Sent() >= 2 })

	cancel()
	<-done

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	var sawReading, sawLink bool
	for _, line := range lines {
		var f Frame
		if err := json.Unmarshal([]byte(line), &f); err != nil {
			t.Fatalf("bad frame %q: %v", line, err)
		}
		switch f.Topic {
		case "node/reading/temperature":
			sawReading = true
		case "node/link":
			sawLink = true
		default:
			t.Fatalf("unexpected topic %q", f.Topic)
		}
	}
	if !sawReading || !sawLink {
		t.Fatalf("missing frames: reading=%v link=%v", sawReading, sawLink)
	}
}

func TestBridgeIgnoresUnsubscribedTopics(t *testing.T) {
	b := bus.NewBus(8)
	out := &lockedBuffer{}
	svc := &Service{
		Conn:   b.NewConnection("bridge"),
		Out:    out,
		Topics: []bus.Topic{bus.T("node", "link")},
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		svc.Run(ctx)
		close(done)
	}()

	pub := b.NewConnection("test")
	waitFor(t, func() bool {
		pub.Publish(&bus.Message{Topic: bus.T("node", "link"), Payload: true})
		return svc.Sent() >= 1
	})
	pub.Publish(&bus.Message{Topic: bus.T("node", "button", "pb0"), Payload: true})

	cancel()
	<-done

	for _, line := range strings.Split(strings.TrimSpace(out.String()), "\n") {
		var f Frame
		if err := json.Unmarshal([]byte(line), &f); err != nil {
			t.Fatalf("bad frame %q: %v", line, err)
		}
		if f.Topic != "node/link" {
			t.Fatalf("forwarded unsubscribed topic %q", f.Topic)
		}
	}
}
