package payments

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"roomfront/internal/app/dto"
	"roomfront/internal/app/policies"
	"roomfront/internal/app/queries"
	"roomfront/internal/app/signals"
	"roomfront/internal/domain/auth"
	domainpayments "roomfront/internal/domain/payments"
	"roomfront/internal/domain/shared/events"
)

const verifyPaymentKey = "payments.verify"

// VerifyPaymentQuery backs the redirect landing page.
type VerifyPaymentQuery struct {
	PaymentID string
}

func (q VerifyPaymentQuery) Key() string { return verifyPaymentKey }

func (q VerifyPaymentQuery) Access() auth.Access { return auth.AccessMember }

func (q VerifyPaymentQuery) Validate() error {
	if strings.TrimSpace(q.PaymentID) == "" {
		return domainpayments.ErrPaymentIDRequired
	}
	return nil
}

type VerifyPaymentHandler struct {
	Payments policies.PaymentsPort
	Signals  signals.Publisher
	Now      func() time.Time
	Logger   *slog.Logger
}

func (h *VerifyPaymentHandler) Handle(ctx context.Context, q VerifyPaymentQuery) (dto.PaymentResult, error) {
	s, ok := auth.FromContext(ctx)
	if !ok {
		return dto.PaymentResult{}, auth.ErrUnauthenticated
	}
	paymentID := strings.TrimSpace(q.PaymentID)
	v, err := h.Payments.Verify(ctx, s.Token, paymentID)
	if err != nil {
		h.logger().Error("payment verification failed", "payment_id", paymentID, "error", err)
		return dto.PaymentResult{}, err
	}
	if v.PaymentID == "" {
		v.PaymentID = paymentID
	}

	outcome := v.Status.Outcome()
	if outcome == domainpayments.OutcomeSuccess && v.RoomID != "" && h.Signals != nil {
		h.Signals.Publish(ctx, events.DataChanged{
			Kind:   events.ChangePaymentPaid,
			RoomID: v.RoomID,
			At:     h.now(),
		})
	}
	h.logger().Info("payment verified", "payment_id", v.PaymentID, "status", v.Status, "outcome", outcome)
	return dto.MapVerification(v), nil
}

func (h *VerifyPaymentHandler) now() time.Time {
	if h.Now != nil {
		return h.Now().UTC()
	}
	return time.Now().UTC()
}

func (h *VerifyPaymentHandler) logger() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

var _ queries.Handler[VerifyPaymentQuery, dto.PaymentResult] = (*VerifyPaymentHandler)(nil)
