package calendar

import (
	"context"
	"fmt"
	"strings"
	"time"

	"roomfront/internal/app/commands"
	"roomfront/internal/app/dto"
	"roomfront/internal/app/middleware"
	"roomfront/internal/app/policies"
	"roomfront/internal/app/signals"
	"roomfront/internal/domain/auth"
	"roomfront/internal/domain/selection"
	"roomfront/internal/domain/shared/daterange"
	"roomfront/internal/domain/shared/events"
)

const confirmUnblockKey = "calendar.blocks.unblock"

// ConfirmUnblockCommand releases a blocked day. Date falls back to the
// day the host clicked when empty.
type ConfirmUnblockCommand struct {
	RoomID          string
	Date            string
	IdempotencyKeyV string
}

func (c ConfirmUnblockCommand) Key() string { return confirmUnblockKey }

func (c ConfirmUnblockCommand) Access() auth.Access { return auth.AccessHost }

func (c ConfirmUnblockCommand) IdempotencyKey() string { return c.IdempotencyKeyV }

func (c ConfirmUnblockCommand) ResultPrototype() any { return &dto.UnblockResult{} }

func (c ConfirmUnblockCommand) Validate() error {
	if strings.TrimSpace(c.RoomID) == "" {
		return ErrRoomRequired
	}
	if strings.TrimSpace(c.Date) == "" {
		return nil
	}
	_, err := daterange.ParseDay(c.Date)
	return err
}

type ConfirmUnblockHandler struct {
	Deps
	Blocks  policies.BlocksPort
	Signals signals.Publisher
	Now     func() time.Time
}

func (h *ConfirmUnblockHandler) Handle(ctx context.Context, cmd ConfirmUnblockCommand) (*dto.UnblockResult, error) {
	s, room, snap, err := h.load(ctx, cmd.RoomID)
	if err != nil {
		return nil, err
	}
	var date daterange.Day
	err = h.Selections.With(s.ID, room.ID, func(sel *selection.Selector) error {
		if strings.TrimSpace(cmd.Date) != "" {
			parsed, err := daterange.ParseDay(cmd.Date)
			if err != nil {
				return err
			}
			date = parsed
		} else {
			pending, ok := sel.PendingUnblock()
			if !ok {
				return ErrNoPendingUnblock
			}
			date = pending
		}
		if !snap.IsBlocked(date) {
			return fmt.Errorf("%w: %s", ErrNotBlocked, date)
		}
		if err := h.Blocks.Unblock(ctx, s.Token, room.ID, date); err != nil {
			h.logger().Error("unblock failed", "room_id", room.ID, "date", date.Key(), "error", err)
			return fmt.Errorf("calendar: unblock %s for room %s: %w", date, room.ID, err)
		}
		sel.Reset()
		return nil
	})
	if err != nil {
		return nil, err
	}

	h.Signals.Publish(ctx, events.DataChanged{
		Kind:   events.ChangeCalendarUnblocked,
		RoomID: room.ID,
		HostID: s.UserID,
		Dates:  []string{date.Key()},
		At:     h.now(),
	})
	h.logger().Info("date unblocked", "room_id", room.ID, "date", date.Key())
	return &dto.UnblockResult{RoomID: room.ID, Date: date.Key()}, nil
}

func (h *ConfirmUnblockHandler) now() time.Time {
	if h.Now != nil {
		return h.Now().UTC()
	}
	return time.Now().UTC()
}

var _ commands.Handler[ConfirmUnblockCommand, *dto.UnblockResult] = (*ConfirmUnblockHandler)(nil)
var _ middleware.IdempotentCommand = ConfirmUnblockCommand{}
