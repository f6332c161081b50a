package blocks

import (
	"errors"
	"strings"

	"roomfront/internal/domain/shared/daterange"
)

// DefaultReason is the reason text the backend expects on host blocks.
const DefaultReason = "사용불가 사유"

var (
	ErrRoomRequired   = errors.New("blocks: room id is required")
	ErrNothingToBlock = errors.New("blocks: no dates to block")
	ErrNegativePrice  = errors.New("blocks: day price must not be negative")
	ErrNotBlocked     = errors.New("blocks: date is not blocked")
)

// Schedule marks one day of a room unavailable.
type Schedule struct {
	Date        daterange.Day
	DayPrice    int64
	IsAvailable bool
	Description string
	Reason      string
	IsBlocked   bool
}

// Submission is one bulk-block batch for a room.
type Submission struct {
	RoomID    string
	Schedules []Schedule
}

// NewSubmission builds one schedule per day, in order.
func NewSubmission(roomID string, days []daterange.Day, dayPrice int64) (Submission, error) {
	roomID = strings.TrimSpace(roomID)
	if roomID == "" {
		return Submission{}, ErrRoomRequired
	}
	if len(days) == 0 {
		return Submission{}, ErrNothingToBlock
	}
	if dayPrice < 0 {
		return Submission{}, ErrNegativePrice
	}
	schedules := make([]Schedule, 0, len(days))
	for _, d := range days {
		schedules = append(schedules, Schedule{
			Date:        d,
			DayPrice:    dayPrice,
			IsAvailable: false,
			Reason:      DefaultReason,
			IsBlocked:   true,
		})
	}
	return Submission{RoomID: roomID, Schedules: schedules}, nil
}

func (s Submission) Dates() []string {
	out := make([]string, 0, len(s.Schedules))
	for _, sc := range s.Schedules {
		out = append(out, sc.Date.Key())
	}
	return out
}
