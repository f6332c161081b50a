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
	"roomfront/internal/domain/availability"
	domainblocks "roomfront/internal/domain/blocks"
	"roomfront/internal/domain/selection"
	"roomfront/internal/domain/shared/daterange"
	"roomfront/internal/domain/shared/events"
)

const submitBlocksKey = "calendar.blocks.submit"

// SubmitBlocksCommand blocks every day of the session's current selection.
type SubmitBlocksCommand struct {
	RoomID          string
	IdempotencyKeyV string
}

func (c SubmitBlocksCommand) Key() string { return submitBlocksKey }

func (c SubmitBlocksCommand) Access() auth.Access { return auth.AccessHost }

func (c SubmitBlocksCommand) IdempotencyKey() string { return c.IdempotencyKeyV }

func (c SubmitBlocksCommand) ResultPrototype() any { return &dto.BlockResult{} }

func (c SubmitBlocksCommand) Validate() error {
	if strings.TrimSpace(c.RoomID) == "" {
		return ErrRoomRequired
	}
	return nil
}

type SubmitBlocksHandler struct {
	Deps
	Blocks  policies.BlocksPort
	Signals signals.Publisher
	Now     func() time.Time
}

func (h *SubmitBlocksHandler) Handle(ctx context.Context, cmd SubmitBlocksCommand) (*dto.BlockResult, error) {
	s, room, snap, err := h.load(ctx, cmd.RoomID)
	if err != nil {
		return nil, err
	}
	var sub domainblocks.Submission
	err = h.Selections.With(s.ID, room.ID, func(sel *selection.Selector) error {
		days, err := selectedDays(sel, snap)
		if err != nil {
			return err
		}
		sub, err = domainblocks.NewSubmission(room.ID, days, room.DayPrice)
		if err != nil {
			return err
		}
		if err := h.Blocks.SubmitBlocks(ctx, s.Token, sub); err != nil {
			h.logger().Error("bulk block failed",
				"room_id", room.ID,
				"dates", len(sub.Schedules),
				"error", err,
			)
			return fmt.Errorf("calendar: block dates for room %s: %w", room.ID, err)
		}
		sel.Reset()
		return nil
	})
	if err != nil {
		return nil, err
	}

	h.Signals.Publish(ctx, events.DataChanged{
		Kind:   events.ChangeCalendarBlocked,
		RoomID: room.ID,
		HostID: s.UserID,
		Dates:  sub.Dates(),
		At:     h.now(),
	})
	h.logger().Info("dates blocked", "room_id", room.ID, "dates", len(sub.Schedules))
	return &dto.BlockResult{RoomID: room.ID, Dates: sub.Dates()}, nil
}

// selectedDays is the materialized range, or the anchor alone for a SINGLE
// selection.
func selectedDays(sel *selection.Selector, snap availability.Snapshot) ([]daterange.Day, error) {
	switch sel.State() {
	case selection.StateRange:
		return sel.DateRange(), nil
	case selection.StateSingle:
		start, _ := sel.Start()
		return selection.Materialize(daterange.Range{Start: start, End: start}, snap), nil
	default:
		return nil, ErrNothingSelected
	}
}

func (h *SubmitBlocksHandler) now() time.Time {
	if h.Now != nil {
		return h.Now().UTC()
	}
	return time.Now().UTC()
}

var _ commands.Handler[SubmitBlocksCommand, *dto.BlockResult] = (*SubmitBlocksHandler)(nil)
var _ middleware.IdempotentCommand = SubmitBlocksCommand{}
