package calendar

import (
	"context"
	"strings"

	"roomfront/internal/app/commands"
	"roomfront/internal/app/dto"
	"roomfront/internal/domain/auth"
	"roomfront/internal/domain/selection"
	"roomfront/internal/domain/shared/daterange"
)

const clickDateKey = "calendar.click"

type ClickDateCommand struct {
	RoomID string
	Date   string
}

func (c ClickDateCommand) Key() string { return clickDateKey }

func (c ClickDateCommand) Access() auth.Access { return auth.AccessHost }

func (c ClickDateCommand) Validate() error {
	if strings.TrimSpace(c.RoomID) == "" {
		return ErrRoomRequired
	}
	_, err := daterange.ParseDay(c.Date)
	return err
}

type ClickDateHandler struct {
	Deps
}

func (h *ClickDateHandler) Handle(ctx context.Context, cmd ClickDateCommand) (dto.ClickResult, error) {
	d, err := daterange.ParseDay(cmd.Date)
	if err != nil {
		return dto.ClickResult{}, err
	}
	s, room, snap, err := h.load(ctx, cmd.RoomID)
	if err != nil {
		return dto.ClickResult{}, err
	}
	var out dto.ClickResult
	err = h.Selections.With(s.ID, room.ID, func(sel *selection.Selector) error {
		outcome := sel.Click(d, snap)
		out = dto.ClickResult{
			Outcome:  string(outcome.Kind),
			Date:     outcome.Date.Key(),
			Calendar: dto.MapCalendar(room, snap, sel),
		}
		if outcome.Kind == selection.OutcomeConflict {
			out.ConflictAt = outcome.ConflictAt.Key()
			out.Notice = ConflictNotice
		}
		return nil
	})
	return out, err
}

var _ commands.Handler[ClickDateCommand, dto.ClickResult] = (*ClickDateHandler)(nil)
