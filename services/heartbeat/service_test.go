package heartbeat

import (
	"context"
	"testing"
	"time"

	"github.com/Suhas-Reddy-S/Miner-Safety-Gear/bus"
)

func TestHeartbeatBeatsAndRetains(t *testing.T) {
	b := bus.NewBus(8)
	svc := &Service{Conn: b.NewConnection("heartbeat"), Period: 5 * time.Millisecond}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		svc.Run(ctx)
		close(done)
	}()

	sub := b.NewConnection("test").Subscribe(bus.T("node", "heartbeat"))
	var first, second Beat
	select {
	case msg := <-sub.Channel():
		first = msg.Payload.(Beat)
	case <-time.After(2 * time.Second):
		t.Fatal("no first beat")
	}
	select {
	case msg := <-sub.Channel():
		second = msg.Payload.(Beat)
	case <-time.After(2 * time.Second):
		t.Fatal("no second beat")
	}
	if second.Seq <= first.Seq {
		t.Fatalf("sequence not increasing: %d then %d", first.Seq, second.Seq)
	}

	cancel()
	<-done

	// A late subscriber still sees the retained last beat.
	late := b.NewConnection("late").Subscribe(bus.T("node", "heartbeat"))
	select {
	case msg := <-late.Channel():
		if msg.Payload.(Beat).Seq < second.Seq {
			t.Fatalf("retained beat older than last observed: %+v", msg.Payload)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no retained beat for late subscriber")
	}
}
