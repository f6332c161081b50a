package rooms

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"roomfront/internal/app/commands"
	"roomfront/internal/app/dto"
	"roomfront/internal/app/policies"
	"roomfront/internal/app/signals"
	"roomfront/internal/domain/auth"
	domainrooms "roomfront/internal/domain/rooms"
	"roomfront/internal/domain/shared/events"
)

const registerRoomKey = "rooms.host.register"

var ErrPhotoUploaderUnavailable = errors.New("rooms: photo uploader unavailable")

type PhotoUpload struct {
	Filename    string
	ContentType string
	Reader      io.Reader
}

type RegisterRoomCommand struct {
	Title       string
	Description string
	Address     string
	City        string
	DayPrice    int64
	MaxGuests   int
	Photos      []PhotoUpload
}

func (c RegisterRoomCommand) Key() string { return registerRoomKey }

func (c RegisterRoomCommand) Access() auth.Access { return auth.AccessHost }

func (c RegisterRoomCommand) Validate() error {
	return c.draft(nil).Validate()
}

func (c RegisterRoomCommand) draft(photos []string) domainrooms.Draft {
	return domainrooms.Draft{
		Title:       strings.TrimSpace(c.Title),
		Description: strings.TrimSpace(c.Description),
		Address:     strings.TrimSpace(c.Address),
		City:        strings.TrimSpace(c.City),
		DayPrice:    c.DayPrice,
		MaxGuests:   c.MaxGuests,
		Photos:      photos,
	}
}

// RegisterRoomHandler uploads the photos first, then registers the room
// with their public URLs.
type RegisterRoomHandler struct {
	Backend  policies.RoomsPort
	Uploader policies.PhotoUploader
	Signals  signals.Publisher
	Now      func() time.Time
	Logger   *slog.Logger
	NewKey   func() string
}

func (h *RegisterRoomHandler) Handle(ctx context.Context, cmd RegisterRoomCommand) (*dto.Room, error) {
	s, ok := auth.FromContext(ctx)
	if !ok {
		return nil, auth.ErrUnauthenticated
	}
	if len(cmd.Photos) > 0 && h.Uploader == nil {
		return nil, ErrPhotoUploaderUnavailable
	}

	urls := make([]string, 0, len(cmd.Photos))
	for _, p := range cmd.Photos {
		key := h.objectKey(s.UserID, p.Filename)
		url, err := h.Uploader.Upload(ctx, key, p.Reader, p.ContentType)
		if err != nil {
			return nil, fmt.Errorf("upload photo: %w", err)
		}
		urls = append(urls, url)
	}

	room, err := h.Backend.Register(ctx, s.Token, cmd.draft(urls))
	if err != nil {
		loggerOr(h.Logger).Error("room registration failed", "host_id", s.UserID, "error", err)
		return nil, err
	}
	if room.HostID == "" {
		room.HostID = s.UserID
	}

	h.Signals.Publish(ctx, events.DataChanged{
		Kind:   events.ChangeRoomRegistered,
		RoomID: room.ID,
		HostID: room.HostID,
		At:     nowOr(h.Now),
	})
	out := dto.MapRoom(room)
	return &out, nil
}

func (h *RegisterRoomHandler) objectKey(hostID, filename string) string {
	id := uuid.NewString()
	if h.NewKey != nil {
		id = h.NewKey()
	}
	return fmt.Sprintf("rooms/%s/%s%s", hostID, id, strings.ToLower(path.Ext(filename)))
}

var _ commands.Handler[RegisterRoomCommand, *dto.Room] = (*RegisterRoomHandler)(nil)
