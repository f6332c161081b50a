package policies

import (
	"context"

	domainpayments "roomfront/internal/domain/payments"
)

type PaymentsPort interface {
	Verify(ctx context.Context, token, paymentID string) (domainpayments.Verification, error)
}
