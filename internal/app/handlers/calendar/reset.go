package calendar

import (
	"context"
	"strings"

	"roomfront/internal/app/commands"
	"roomfront/internal/app/dto"
	"roomfront/internal/domain/auth"
	"roomfront/internal/domain/selection"
)

const resetSelectionKey = "calendar.reset"

// ResetSelectionCommand cancels the current selection and any pending unblock.
type ResetSelectionCommand struct {
	RoomID string
}

func (c ResetSelectionCommand) Key() string { return resetSelectionKey }

func (c ResetSelectionCommand) Access() auth.Access { return auth.AccessHost }

func (c ResetSelectionCommand) Validate() error {
	if strings.TrimSpace(c.RoomID) == "" {
		return ErrRoomRequired
	}
	return nil
}

type ResetSelectionHandler struct {
	Deps
}

func (h *ResetSelectionHandler) Handle(ctx context.Context, cmd ResetSelectionCommand) (dto.Calendar, error) {
	s, room, snap, err := h.load(ctx, cmd.RoomID)
	if err != nil {
		return dto.Calendar{}, err
	}
	var out dto.Calendar
	err = h.Selections.With(s.ID, room.ID, func(sel *selection.Selector) error {
		sel.Reset()
		out = dto.MapCalendar(room, snap, sel)
		return nil
	})
	return out, err
}

var _ commands.Handler[ResetSelectionCommand, dto.Calendar] = (*ResetSelectionHandler)(nil)
