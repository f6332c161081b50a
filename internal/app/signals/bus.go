package signals

import (
	"context"
	"log/slog"
	"sync"

	"roomfront/internal/domain/shared/events"
)

// Handler reacts to a data change. Errors are logged and do not stop delivery
// to the remaining subscribers.
type Handler func(ctx context.Context, ev events.DataChanged) error

// Publisher announces that server data changed.
type Publisher interface {
	Publish(ctx context.Context, ev events.DataChanged)
}

type subscriber struct {
	name string
	fn   Handler
}

// Bus delivers DataChanged events synchronously, in subscription order.
type Bus struct {
	mu     sync.RWMutex
	subs   []subscriber
	logger *slog.Logger
}

func NewBus(logger *slog.Logger) *Bus {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bus{logger: logger}
}

func (b *Bus) Subscribe(name string, fn Handler) {
	if fn == nil {
		panic("signals: nil handler")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs = append(b.subs, subscriber{name: name, fn: fn})
}

func (b *Bus) Publish(ctx context.Context, ev events.DataChanged) {
	b.mu.RLock()
	subs := make([]subscriber, len(b.subs))
	copy(subs, b.subs)
	b.mu.RUnlock()

	for _, s := range subs {
		if err := s.fn(ctx, ev); err != nil {
			b.logger.Warn("data change subscriber failed",
				"subscriber", s.name,
				"kind", ev.Kind,
				"room_id", ev.RoomID,
				"error", err,
			)
		}
	}
}

// Subscribers lists subscriber names in delivery order.
func (b *Bus) Subscribers() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]string, 0, len(b.subs))
	for _, s := range b.subs {
		out = append(out, s.name)
	}
	return out
}

// Recorder keeps every published event. Tests use it to count signals.
type Recorder struct {
	mu     sync.Mutex
	events []events.DataChanged
}

func (r *Recorder) Publish(_ context.Context, ev events.DataChanged) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *Recorder) Events() []events.DataChanged {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]events.DataChanged, len(r.events))
	copy(out, r.events)
	return out
}

var (
	_ Publisher = (*Bus)(nil)
	_ Publisher = (*Recorder)(nil)
)
