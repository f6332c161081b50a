package session

import "sync"

// Ticket identifies one in-flight fetch.
type Ticket struct {
	key   string
	seq   uint64
	epoch uint64
}

// Tracker decides whether a fetch result may still be written to shared
// state. Only the latest fetch per key may commit, and nothing started
// before the last InvalidateAll may commit. Sequence numbers only grow, so a
// ticket handed out after a commit never collides with an older one.
type Tracker struct {
	mu    sync.Mutex
	seq   map[string]uint64
	epoch uint64
}

func NewTracker() *Tracker {
	return &Tracker{seq: make(map[string]uint64)}
}

func (t *Tracker) Begin(key string) Ticket {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.seq[key]++
	return Ticket{key: key, seq: t.seq[key], epoch: t.epoch}
}

// Commit runs apply only if the ticket is still current and reports whether
// it ran.
func (t *Tracker) Commit(tk Ticket, apply func()) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if tk.epoch != t.epoch || t.seq[tk.key] != tk.seq {
		return false
	}
	if apply != nil {
		apply()
	}
	return true
}

// InvalidateAll makes every outstanding ticket stale.
func (t *Tracker) InvalidateAll() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.epoch++
}
