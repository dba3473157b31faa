// Package bus is the node-internal pub/sub fabric. The dispatch loop
// publishes readings, link state and display rows here; consumers (the
// simulator console, tests, a future uplink) subscribe without touching the
// core. Retained messages give late subscribers the current value.
package bus

import (
	"sync"
)

// Topic is a slash-free path of string tokens, e.g. T("node", "reading",
// "temperature").
type Topic []string

// T builds a topic from its tokens.
func T(tokens ...string) Topic { return Topic(tokens) }

func (t Topic) key() string {
	s := ""
	for i, tok := range t {
		if i > 0 {
			s += "/"
		}
		s += tok
	}
	return s
}

// Message is one published datum.
type Message struct {
	Topic    Topic
	Payload  any
	Retained bool
}

// Subscription receives messages for one topic.
type Subscription struct {
	topic Topic
	ch    chan *Message
	conn  *Connection
}

func (s *Subscription) Topic() Topic             { return s.topic }
func (s *Subscription) Channel() <-chan *Message { return s.ch }
func (s *Subscription) Unsubscribe()             { s.conn.Unsubscribe(s) }

type entry struct {
	subs     []*Subscription
	retained *Message
}

// Bus routes messages by exact topic match.
type Bus struct {
	mu     sync.RWMutex
	topics map[string]*entry
	qLen   int
}

// NewBus creates a bus with the given per-subscription queue length.
func NewBus(queueLen int) *Bus {
	if queueLen <= 0 {
		queueLen = 8
	}
	return &Bus{topics: map[string]*entry{}, qLen: queueLen}
}

// Publish delivers to all subscribers of the message's topic. A full
// subscriber queue drops its oldest message rather than blocking the
// publisher. Retained messages are stored (payload nil clears).
func (b *Bus) Publish(msg *Message) {
	b.mu.Lock()
	defer b.mu.Unlock()

	key := msg.Topic.key()
	e := b.topics[key]
	if e == nil {
		if !msg.Retained {
			return
		}
		e = &entry{}
		b.topics[key] = e
	}

	for _, sub := range e.subs {
		select {
		case sub.ch <- msg:
		default:
			<-sub.ch
			sub.ch <- msg
		}
	}

	if msg.Retained {
		if msg.Payload == nil {
			e.retained = nil
		} else {
			e.retained = msg
		}
	}
}

func (b *Bus) addSubscription(sub *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	key := sub.topic.key()
	e := b.topics[key]
	if e == nil {
		e = &entry{}
		b.topics[key] = e
	}
	e.subs = append(e.subs, sub)

	if e.retained != nil {
		select {
		case sub.ch <- e.retained:
		default:
		}
	}
}

func (b *Bus) removeSubscription(sub *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	key := sub.topic.key()
	e := b.topics[key]
	if e == nil {
		return
	}
	for i, s := range e.subs {
		if s == sub {
			e.subs = append(e.subs[:i], e.subs[i+1:]...)
			break
		}
	}
	if len(e.subs) == 0 && e.retained == nil {
		delete(b.topics, key)
	}
}

// Connection groups subscriptions so a component can tear down in one call.
type Connection struct {
	bus  *Bus
	mu   sync.Mutex
	subs []*Subscription
	id   string
}

// NewConnection creates a connection bound to this bus.
func (b *Bus) NewConnection(id string) *Connection {
	return &Connection{bus: b, id: id}
}

// Publish sends a message via the bus.
func (c *Connection) Publish(msg *Message) { c.bus.Publish(msg) }

// Subscribe registers a subscription owned by this connection.
func (c *Connection) Subscribe(topic Topic) *Subscription {
	sub := &Subscription{
		topic: topic,
		ch:    make(chan *Message, c.bus.qLen),
		conn:  c,
	}
	c.bus.addSubscription(sub)
	c.mu.Lock()
	c.subs = append(c.subs, sub)
	c.mu.Unlock()
	return sub
}

// Unsubscribe removes one subscription.
func (c *Connection) Unsubscribe(sub *Subscription) {
	c.bus.removeSubscription(sub)
	c.mu.Lock()
	for i, s := range c.subs {
		if s == sub {
			c.subs = append(c.subs[:i], c.subs[i+1:]...)
			break
		}
	}
	c.mu.Unlock()
	close(sub.ch)
}

// Disconnect closes all subscriptions owned by this connection.
func (c *Connection) Disconnect() {
	c.mu.Lock()
	subs := c.subs
	c.subs = nil
	c.mu.Unlock()

	for _, sub := range subs {
		c.bus.removeSubscription(sub)
		close(sub.ch)
	}
}
