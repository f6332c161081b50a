package session

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"

	"roomfront/internal/domain/selection"
)

var ErrSessionRequired = errors.New("session: session id is required")

type selectionEntry struct {
	mu     sync.Mutex
	roomID string
	sel    selection.Selector

	// guarded by Selections.mu
	refs    int
	dropped bool
}

// Selections holds each session's host calendar selection. Idle entries
// expire after the TTL; a session that comes back starts EMPTY. An entry in
// use is pinned in inflight so it cannot expire under a running call.
type Selections struct {
	mu       sync.Mutex
	store    *cache.Cache
	inflight map[string]*selectionEntry
	ttl      time.Duration
}

func NewSelections(ttl time.Duration) *Selections {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &Selections{
		store:    cache.New(ttl, 2*ttl),
		inflight: make(map[string]*selectionEntry),
		ttl:      ttl,
	}
}

// With runs fn against the session's selector for roomID. Calls for the same
// session are serialized. Switching to another room resets the selection.
func (s *Selections) With(sessionID, roomID string, fn func(*selection.Selector) error) error {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return ErrSessionRequired
	}
	e := s.acquire(sessionID)
	defer s.release(sessionID, e)
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.roomID != roomID {
		e.sel = selection.Selector{}
		e.roomID = roomID
	}
	return fn(&e.sel)
}

// Drop forgets the session's selection, e.g. on logout. A call still running
// against it finishes but its result is not kept.
func (s *Selections) Drop(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.inflight[sessionID]; ok {
		e.dropped = true
		delete(s.inflight, sessionID)
	}
	s.store.Delete(sessionID)
}

func (s *Selections) Len() int { return s.store.ItemCount() }

func (s *Selections) acquire(sessionID string) *selectionEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.inflight[sessionID]
	if !ok {
		if raw, found := s.store.Get(sessionID); found {
			e = raw.(*selectionEntry)
		} else {
			e = &selectionEntry{}
		}
		s.inflight[sessionID] = e
	}
	e.refs++
	s.store.Set(sessionID, e, s.ttl)
	return e
}

func (s *Selections) release(sessionID string, e *selectionEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e.refs--
	if e.dropped {
		return
	}
	s.store.Set(sessionID, e, s.ttl)
	if e.refs == 0 && s.inflight[sessionID] == e {
		delete(s.inflight, sessionID)
	}
}
