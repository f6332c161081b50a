package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"

	"github.com/IBM/sarama"

	"roomfront/internal/app/signals"
	"roomfront/internal/domain/shared/events"
	infraoutbox "roomfront/internal/infra/outbox"
)

var errNoEventID = errors.New("kafka: event has no id")

// Inbox deduplicates redelivered events.
type Inbox interface {
	Seen(ctx context.Context, eventID string) (bool, error)
}

// ChangeHandler replays data changes made by other instances onto the local
// signal bus so their snapshot caches are invalidated too.
type ChangeHandler struct {
	// Self is this instance's event source. Its own events are skipped.
	Self    string
	Inbox   Inbox
	Signals signals.Publisher
	Logger  *slog.Logger
}

func (h *ChangeHandler) Handle(ctx context.Context, msg *sarama.ConsumerMessage) error {
	var env infraoutbox.Envelope
	if err := json.Unmarshal(msg.Value, &env); err != nil {
		h.logger().Warn("dropping undecodable data change", "offset", msg.Offset, "error", err)
		return nil
	}
	source := env.Source
	if s := header(msg, "ce_source"); s != "" {
		source = s
	}
	if source == "" || source == h.Self {
		return nil
	}
	var ev events.DataChanged
	if err := json.Unmarshal(env.Data, &ev); err != nil {
		h.logger().Warn("dropping undecodable data change", "event_id", env.ID, "error", err)
		return nil
	}
	if h.Inbox != nil {
		if env.ID == "" {
			return errNoEventID
		}
		seen, err := h.Inbox.Seen(ctx, env.ID)
		if err != nil {
			return err
		}
		if seen {
			return nil
		}
	}
	if ev.Kind == "" {
		ev.Kind = events.ChangeKind(strings.TrimSuffix(env.Type, ".v1"))
	}
	if ev.At.IsZero() {
		ev.At = env.Time
	}
	ev.Origin = source
	if h.Signals != nil {
		h.Signals.Publish(ctx, ev)
	}
	return nil
}

func (h *ChangeHandler) logger() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

func header(msg *sarama.ConsumerMessage, key string) string {
	for _, rh := range msg.Headers {
		if rh != nil && string(rh.Key) == key {
			return string(rh.Value)
		}
	}
	return ""
}

var _ MessageHandler = (*ChangeHandler)(nil)
