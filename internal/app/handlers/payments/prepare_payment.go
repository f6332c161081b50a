package payments

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"roomfront/internal/app/commands"
	"roomfront/internal/app/dto"
	"roomfront/internal/domain/auth"
	domainpayments "roomfront/internal/domain/payments"
	domainrooms "roomfront/internal/domain/rooms"
	"roomfront/internal/domain/shared/daterange"
)

const preparePaymentKey = "payments.prepare"

type PreparePaymentCommand struct {
	RoomID     string
	CheckIn    string
	CheckOut   string
	Guests     int
	Method     string
	Agreements domainpayments.Agreements
}

func (c PreparePaymentCommand) Key() string { return preparePaymentKey }

func (c PreparePaymentCommand) Access() auth.Access { return auth.AccessMember }

// Validate checks the agreements first; nothing is sent to the payment
// provider until every box is ticked.
func (c PreparePaymentCommand) Validate() error {
	if err := c.Agreements.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(c.RoomID) == "" {
		return domainrooms.ErrRoomNotFound
	}
	if _, err := domainpayments.ParseMethod(c.Method); err != nil {
		return err
	}
	_, err := domainrooms.ParseStay(c.CheckIn, c.CheckOut)
	return err
}

// RoomReader returns a room with its reservation intervals.
type RoomReader interface {
	Room(ctx context.Context, token, roomID string) (domainrooms.Room, error)
}

// PreparePaymentHandler prices a stay and issues the merchant order id the
// payment SDK is opened with.
type PreparePaymentHandler struct {
	Rooms         RoomReader
	Today         func() daterange.Day
	NewMerchantID func() string
}

func (h *PreparePaymentHandler) Handle(ctx context.Context, cmd PreparePaymentCommand) (*dto.PaymentOrder, error) {
	s, ok := auth.FromContext(ctx)
	if !ok {
		return nil, auth.ErrUnauthenticated
	}
	if err := cmd.Agreements.Validate(); err != nil {
		return nil, err
	}
	method, err := domainpayments.ParseMethod(cmd.Method)
	if err != nil {
		return nil, err
	}
	stay, err := domainrooms.ParseStay(cmd.CheckIn, cmd.CheckOut)
	if err != nil {
		return nil, err
	}
	room, err := h.Rooms.Room(ctx, s.Token, cmd.RoomID)
	if err != nil {
		return nil, err
	}
	if err := room.CheckStay(stay, cmd.Guests, room.Snapshot(h.today())); err != nil {
		return nil, err
	}

	nights := stay.Nights()
	return &dto.PaymentOrder{
		MerchantUID: h.merchantID(),
		RoomID:      room.ID,
		OrderName:   fmt.Sprintf("%s (%d박)", room.Title, nights),
		Method:      string(method),
		CheckIn:     stay.CheckIn.Key(),
		CheckOut:    stay.CheckOut.Key(),
		Nights:      nights,
		Guests:      cmd.Guests,
		DayPrice:    room.DayPrice,
		Amount:      domainpayments.Amount(nights, room.DayPrice),
	}, nil
}

func (h *PreparePaymentHandler) merchantID() string {
	if h.NewMerchantID != nil {
		return h.NewMerchantID()
	}
	return "order-" + uuid.NewString()
}

func (h *PreparePaymentHandler) today() daterange.Day {
	if h.Today != nil {
		return h.Today()
	}
	return daterange.DayOf(time.Now())
}

var _ commands.Handler[PreparePaymentCommand, *dto.PaymentOrder] = (*PreparePaymentHandler)(nil)
