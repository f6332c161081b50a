package memory

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"
)

// Inbox remembers consumed event ids for ttl.
type Inbox struct {
	seen *cache.Cache
}

func NewInbox(ttl time.Duration) *Inbox {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Inbox{seen: cache.New(ttl, ttl/2)}
}

// Seen records eventID and reports whether it was already recorded.
func (i *Inbox) Seen(_ context.Context, eventID string) (bool, error) {
	if err := i.seen.Add(eventID, struct{}{}, cache.DefaultExpiration); err != nil {
		return true, nil
	}
	return false, nil
}
