package memory

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"

	"roomfront/internal/app/policies"
	"roomfront/internal/domain/auth"
	"roomfront/internal/domain/availability"
	domainblocks "roomfront/internal/domain/blocks"
	domainpayments "roomfront/internal/domain/payments"
	domainrooms "roomfront/internal/domain/rooms"
	"roomfront/internal/domain/shared/daterange"
)

var (
	ErrInvalidCredentials = fmt.Errorf("memory: invalid credentials: %w", auth.ErrUnauthenticated)
	ErrNotOwner           = fmt.Errorf("memory: room belongs to another host: %w", auth.ErrNotHost)
	ErrNotBlocked         = fmt.Errorf("memory: %w", domainblocks.ErrNotBlocked)
)

type user struct {
	id     string
	name   string
	email  string
	isHost bool
}

// Backend stands in for the rental backend in local runs. It keeps rooms,
// reservations and blocks in process memory.
type Backend struct {
	mu           sync.RWMutex
	users        map[string]*user // by email
	tokens       map[string]string
	rooms        map[string]*domainrooms.Room
	order        []string
	reservations []domainrooms.Reservation
	guests       map[string]string // reservation id -> user id
	seq          int
}

func NewBackend() *Backend {
	return &Backend{
		users:  make(map[string]*user),
		tokens: make(map[string]string),
		rooms:  make(map[string]*domainrooms.Room),
		guests: make(map[string]string),
	}
}

// Seed adds a room as is. Tests and local fixtures use it.
func (b *Backend) Seed(room domainrooms.Room) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if room.ID == "" {
		room.ID = b.nextID()
	}
	if _, ok := b.rooms[room.ID]; !ok {
		b.order = append(b.order, room.ID)
	}
	cp := cloneRoom(room)
	b.rooms[room.ID] = &cp
}

func (b *Backend) Login(_ context.Context, email, password string) (policies.Identity, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return policies.Identity{}, ErrInvalidCredentials
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	u, ok := b.users[email]
	if !ok {
		name, _, _ := strings.Cut(email, "@")
		u = &user{id: "user-" + uuid.NewString(), name: name, email: email}
		b.users[email] = u
	}
	token := "mem-" + uuid.NewString()
	b.tokens[token] = email
	return policies.Identity{Token: token, UserID: u.id, Name: u.name, Email: u.email, IsHost: u.isHost}, nil
}

func (b *Backend) RegisterHost(_ context.Context, token string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	u, err := b.userFor(token)
	if err != nil {
		return err
	}
	u.isHost = true
	return nil
}

func (b *Backend) HostRooms(_ context.Context, token string) ([]domainrooms.Room, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	u, err := b.userFor(token)
	if err != nil {
		return nil, err
	}
	var out []domainrooms.Room
	for _, id := range b.order {
		if r := b.rooms[id]; r.HostID == u.id {
			out = append(out, cloneRoom(*r))
		}
	}
	return out, nil
}

func (b *Backend) Search(_ context.Context, _ string, filter domainrooms.SearchFilter) ([]domainrooms.Room, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	var out []domainrooms.Room
	for _, id := range b.order {
		r := b.rooms[id]
		if filter.City != "" && !strings.EqualFold(r.City, filter.City) {
			continue
		}
		if filter.Guests > 0 && r.MaxGuests > 0 && filter.Guests > r.MaxGuests {
			continue
		}
		if !filter.CheckIn.IsZero() && !filter.CheckOut.IsZero() {
			stay := domainrooms.Stay{CheckIn: filter.CheckIn, CheckOut: filter.CheckOut}
			if occupiedDuring(*r, stay) {
				continue
			}
		}
		listed := cloneRoom(*r)
		listed.Reservations = nil
		out = append(out, listed)
	}
	return out, nil
}

func (b *Backend) Room(_ context.Context, _ string, roomID string) (domainrooms.Room, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	r, ok := b.rooms[roomID]
	if !ok {
		return domainrooms.Room{}, domainrooms.ErrRoomNotFound
	}
	return cloneRoom(*r), nil
}

func (b *Backend) Reserve(_ context.Context, token string, req domainrooms.ReservationRequest) (domainrooms.Reservation, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	u, err := b.userFor(token)
	if err != nil {
		return domainrooms.Reservation{}, err
	}
	r, ok := b.rooms[req.RoomID]
	if !ok {
		return domainrooms.Reservation{}, domainrooms.ErrRoomNotFound
	}
	if occupiedDuring(*r, req.Stay) {
		return domainrooms.Reservation{}, domainrooms.ErrStayUnavailable
	}
	lastNight := req.Stay.CheckOut.AddDays(-1)
	r.Reservations = append(r.Reservations, availability.Interval{
		CheckIn:  req.Stay.CheckIn,
		CheckOut: lastNight,
		Status:   availability.StatusPending,
	})
	res := domainrooms.Reservation{
		ID:         b.nextID(),
		RoomID:     r.ID,
		RoomTitle:  r.Title,
		CheckIn:    req.Stay.CheckIn,
		CheckOut:   req.Stay.CheckOut,
		Guests:     req.Guests,
		Status:     availability.StatusPending,
		TotalPrice: domainpayments.Amount(req.Stay.Nights(), r.DayPrice),
		PaymentID:  req.PaymentID,
	}
	b.reservations = append(b.reservations, res)
	b.guests[res.ID] = u.id
	return res, nil
}

func (b *Backend) MyReservations(_ context.Context, token string) ([]domainrooms.Reservation, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	u, err := b.userFor(token)
	if err != nil {
		return nil, err
	}
	var out []domainrooms.Reservation
	for _, res := range b.reservations {
		if b.guests[res.ID] == u.id {
			out = append(out, res)
		}
	}
	return out, nil
}

func (b *Backend) Register(_ context.Context, token string, draft domainrooms.Draft) (domainrooms.Room, error) {
	if err := draft.Validate(); err != nil {
		return domainrooms.Room{}, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	u, err := b.userFor(token)
	if err != nil {
		return domainrooms.Room{}, err
	}
	room := domainrooms.Room{
		ID:          b.nextID(),
		HostID:      u.id,
		Title:       draft.Title,
		Description: draft.Description,
		Address:     draft.Address,
		City:        draft.City,
		DayPrice:    draft.DayPrice,
		MaxGuests:   draft.MaxGuests,
		Photos:      append([]string(nil), draft.Photos...),
	}
	b.rooms[room.ID] = &room
	b.order = append(b.order, room.ID)
	return cloneRoom(room), nil
}

// SubmitBlocks stores one single-day BLOCKED interval per schedule.
func (b *Backend) SubmitBlocks(_ context.Context, token string, sub domainblocks.Submission) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	r, err := b.ownedRoom(token, sub.RoomID)
	if err != nil {
		return err
	}
	for _, sc := range sub.Schedules {
		if !sc.IsBlocked {
			continue
		}
		r.Reservations = append(r.Reservations, availability.Interval{
			CheckIn:  sc.Date,
			CheckOut: sc.Date,
			Status:   availability.StatusBlocked,
		})
	}
	return nil
}

// Unblock removes date from the BLOCKED interval covering it, splitting the
// interval when the date falls inside it.
func (b *Backend) Unblock(_ context.Context, token, roomID string, date daterange.Day) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	r, err := b.ownedRoom(token, roomID)
	if err != nil {
		return err
	}
	kept := make([]availability.Interval, 0, len(r.Reservations)+1)
	found := false
	for _, iv := range r.Reservations {
		if !iv.IsBlock() || !iv.Contains(date) {
			kept = append(kept, iv)
			continue
		}
		found = true
		if iv.CheckIn.Before(date) {
			kept = append(kept, availability.Interval{CheckIn: iv.CheckIn, CheckOut: date.AddDays(-1), Status: iv.Status})
		}
		if iv.CheckOut.After(date) {
			kept = append(kept, availability.Interval{CheckIn: date.AddDays(1), CheckOut: iv.CheckOut, Status: iv.Status})
		}
	}
	if !found {
		return ErrNotBlocked
	}
	r.Reservations = kept
	return nil
}

// Verify reports PAID for a payment attached to a reservation.
func (b *Backend) Verify(_ context.Context, _ string, paymentID string) (domainpayments.Verification, error) {
	if strings.TrimSpace(paymentID) == "" {
		return domainpayments.Verification{}, domainpayments.ErrPaymentIDRequired
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, res := range b.reservations {
		if res.PaymentID == paymentID {
			return domainpayments.Verification{
				PaymentID: paymentID,
				Status:    domainpayments.StatusPaid,
				RoomID:    res.RoomID,
				Amount:    res.TotalPrice,
			}, nil
		}
	}
	return domainpayments.Verification{
		PaymentID:     paymentID,
		Status:        domainpayments.StatusFailed,
		FailureReason: "unknown payment",
	}, nil
}

// Ping always succeeds.
func (b *Backend) Ping(context.Context) error { return nil }

func (b *Backend) userFor(token string) (*user, error) {
	email, ok := b.tokens[token]
	if !ok {
		return nil, auth.ErrSessionExpired
	}
	return b.users[email], nil
}

func (b *Backend) ownedRoom(token, roomID string) (*domainrooms.Room, error) {
	u, err := b.userFor(token)
	if err != nil {
		return nil, err
	}
	r, ok := b.rooms[roomID]
	if !ok {
		return nil, domainrooms.ErrRoomNotFound
	}
	if r.HostID != u.id {
		return nil, ErrNotOwner
	}
	return r, nil
}

func (b *Backend) nextID() string {
	b.seq++
	return strconv.Itoa(b.seq)
}

func occupiedDuring(r domainrooms.Room, stay domainrooms.Stay) bool {
	snap := availability.Classify(r.Reservations, stay.CheckIn)
	for _, night := range stay.NightDays() {
		if snap.Unavailable(night) {
			return true
		}
	}
	return false
}

func cloneRoom(r domainrooms.Room) domainrooms.Room {
	r.Photos = append([]string(nil), r.Photos...)
	r.Reservations = append([]availability.Interval(nil), r.Reservations...)
	return r
}

var (
	_ policies.RoomsPort    = (*Backend)(nil)
	_ policies.BlocksPort   = (*Backend)(nil)
	_ policies.PaymentsPort = (*Backend)(nil)
	_ policies.AuthPort     = (*Backend)(nil)
)
