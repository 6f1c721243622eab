package event

import (
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/dshills/gitpanel/internal/event/loop"
)

// Bus delivers published events to subscribers whose pattern matches.
// It is safe for concurrent use.
type Bus struct {
	mu     sync.RWMutex
	subs   []*Subscription
	nextID uint64

	sched  loop.Scheduler
	logger zerolog.Logger

	published atomic.Uint64
	delivered atomic.Uint64
	dropped   atomic.Uint64
	panics    atomic.Uint64
}

// Option configures a Bus.
type Option func(*Bus)

// WithScheduler posts handler calls to s instead of running them on
// the publishing goroutine.
func WithScheduler(s loop.Scheduler) Option {
	return func(b *Bus) {
		b.sched = s
	}
}

// WithLogger sets the logger used for handler panics.
func WithLogger(logger zerolog.Logger) Option {
	return func(b *Bus) {
		b.logger = logger
	}
}

// NewBus creates an empty bus.
func NewBus(opts ...Option) *Bus {
	b := &Bus{logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Subscription is a registered handler.
type Subscription struct {
	id      uint64
	pattern string
	handler Handler
	bus     *Bus
}

// Pattern returns the subscribed pattern.
func (s *Subscription) Pattern() string {
	return s.pattern
}

// Unsubscribe removes the subscription from its bus.
func (s *Subscription) Unsubscribe() error {
	return s.bus.Unsubscribe(s)
}

// Subscribe registers h for events matching pattern.
func (b *Bus) Subscribe(pattern string, h Handler) (*Subscription, error) {
	if h == nil {
		return nil, ErrNilHandler
	}
	if err := ValidatePattern(pattern); err != nil {
		return nil, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	sub := &Subscription{id: b.nextID, pattern: pattern, handler: h, bus: b}
	b.subs = append(b.subs, sub)
	return sub, nil
}

// Unsubscribe removes sub.
func (b *Bus) Unsubscribe(sub *Subscription) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, s := range b.subs {
		if s.id == sub.id {
			b.subs = append(b.subs[:i:i], b.subs[i+1:]...)
			return nil
		}
	}
	return ErrSubscriptionNotFound
}

// Publish delivers an event to every matching subscriber in
// subscription order.
func (b *Bus) Publish(eventType string, data map[string]any) {
	ev := Event{Type: eventType, Data: data, Time: time.Now()}
	b.published.Add(1)

	b.mu.RLock()
	var targets []Handler
	for _, s := range b.subs {
		if Match(s.pattern, eventType) {
			targets = append(targets, s.handler)
		}
	}
	b.mu.RUnlock()

	for _, h := range targets {
		h := h
		if b.sched == nil {
			b.deliver(h, ev)
			continue
		}
		if !b.sched.Post(func() { b.deliver(h, ev) }) {
			b.dropped.Add(1)
		}
	}
}

func (b *Bus) deliver(h Handler, ev Event) {
	defer func() {
		if r := recover(); r != nil {
			stack := make([]byte, 4096)
			n := runtime.Stack(stack, false)
			b.panics.Add(1)
			b.logger.Error().Interface("panic", r).Str("event", ev.Type).Bytes("stack", stack[:n]).Msg("event handler panic")
		}
	}()
	h(ev)
	b.delivered.Add(1)
}

// Len returns the number of subscriptions.
func (b *Bus) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Stats is a snapshot of bus counters.
type Stats struct {
	Published uint64
	Delivered uint64
	Dropped   uint64
	Panics    uint64
}

// Stats returns the current counters.
func (b *Bus) Stats() Stats {
	return Stats{
		Published: b.published.Load(),
		Delivered: b.delivered.Load(),
		Dropped:   b.dropped.Load(),
		Panics:    b.panics.Load(),
	}
}
