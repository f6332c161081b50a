package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"roomfront/internal/domain/shared/events"
)

// ErrFull is returned by an outbox that cannot take more records.
var ErrFull = errors.New("outbox: full")

type EventRecord struct {
	ID         string
	Name       string
	Payload    []byte
	OccurredAt time.Time
	Aggregate  string
	Headers    map[string]string
}

type Outbox interface {
	Add(ctx context.Context, record EventRecord) error
	Flush(ctx context.Context) error
}

type EventEncoder interface {
	Encode(ev events.DomainEvent) (EventRecord, error)
}

type JSONEventEncoder struct {
	IDGenerator func() string
	// Source is stamped into the ce_source header so consumers can skip
	// their own events.
	Source string
}

func (e JSONEventEncoder) Encode(ev events.DomainEvent) (EventRecord, error) {
	payload, err := json.Marshal(ev)
	if err != nil {
		return EventRecord{}, err
	}
	idGen := e.IDGenerator
	if idGen == nil {
		idGen = defaultIDGenerator
	}
	headers := map[string]string{}
	if e.Source != "" {
		headers["ce_source"] = e.Source
	}
	occurred := ev.OccurredAt()
	if occurred.IsZero() {
		occurred = time.Now().UTC()
	}
	return EventRecord{
		ID:         idGen(),
		Name:       ev.EventName(),
		Payload:    payload,
		OccurredAt: occurred,
		Aggregate:  ev.AggregateID(),
		Headers:    headers,
	}, nil
}

func RecordDomainEvents(ctx context.Context, box Outbox, encoder EventEncoder, evs []events.DomainEvent) error {
	if box == nil || len(evs) == 0 {
		return nil
	}
	if encoder == nil {
		encoder = JSONEventEncoder{}
	}
	for _, ev := range evs {
		rec, err := encoder.Encode(ev)
		if err != nil {
			return err
		}
		if err := box.Add(ctx, rec); err != nil {
			return err
		}
	}
	return nil
}

// DataChangedRecorder returns a signal subscriber that writes local changes to
// the outbox and flushes it. Changes received from other instances are skipped.
func DataChangedRecorder(box Outbox, encoder EventEncoder) func(ctx context.Context, ev events.DataChanged) error {
	return func(ctx context.Context, ev events.DataChanged) error {
		if box == nil || !ev.Local() {
			return nil
		}
		if err := RecordDomainEvents(ctx, box, encoder, []events.DomainEvent{ev}); err != nil {
			return err
		}
		return box.Flush(ctx)
	}
}

func defaultIDGenerator() string {
	return "evt-" + uuid.NewString()
}
