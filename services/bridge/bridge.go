// Package bridge streams selected bus topics to an external byte link as
// newline-delimited JSON, one frame per message. The node core never blocks
// on the link: frames that fail to encode or write are logged and dropped.
package bridge

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Suhas-Reddy-S/Miner-Safety-Gear/bus"
	"github.com/Suhas-Reddy-S/Miner-Safety-Gear/x/logx"
)

// Frame is the wire form of one bus message.
type Frame struct {
	Topic   string `json:"topic"`
	Ts      int64  `json:"ts"`
	Payload any    `json:"payload"`
}

// Service forwards bus messages on the configured topics to Out.
type Service struct {
	Conn   *bus.Connection
	Out    io.Writer
	Topics []bus.Topic

	mu   sync.Mutex // serializes writes to Out
	sent atomic.Uint64
}

// Start runs the bridge until ctx is cancelled.
func Start(ctx context.Context, conn *bus.Connection, out io.Writer, topics ...bus.Topic) {
	s := &Service{Conn: conn, Out: out, Topics: topics}
	s.Run(ctx)
}

// Run subscribes to every configured topic and forwards until ctx is
// cancelled. It blocks; callers run it on its own goroutine.
func (s *Service) Run(ctx context.Context) {
	var wg sync.WaitGroup
	for _, t := range s.Topics {
		sub := s.Conn.Subscribe(t)
		wg.Add(1)
		go func(sub *bus.Subscription) {
			defer wg.Done()
			for msg := range sub.Channel() {
				s.forward(msg)
			}
		}(sub)
	}

	<-ctx.Done()
	s.Conn.Disconnect() // closes the channels, draining the forwarders
	wg.Wait()
}

// Sent reports the number of frames written so far.
func (s *Service) Sent() uint64 { return s.sent.Load() }

func (s *Service) forward(msg *bus.Message) {
	f := Frame{
		Topic:   topicString(msg.Topic),
		Ts:      time.Now().UnixMilli(),
		Payload: msg.Payload,
	}
	b, err := json.Marshal(f)
	if err != nil {
		logx.Warnf("bridge: encode %s: %v", f.Topic, err)
		return
	}
	b = append(b, '\n')

	s.mu.Lock()
	_, err = s.Out.Write(b)
	s.mu.Unlock()
	if err != nil {
		logx.Warnf("bridge: write %s: %v", f.Topic, err)
		return
	}
	s.sent.Add(1)
}

func topicString(t bus.Topic) string {
	out := ""
	for i, tok := range t {
		if i > 0 {
			out += "/"
		}
		out += tok
	}
	return out
}
