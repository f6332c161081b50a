package backendapi

import (
	"context"
	"net/http"

	"roomfront/internal/app/policies"
	domainpayments "roomfront/internal/domain/payments"
)

func (c *Client) Verify(ctx context.Context, token, paymentID string) (domainpayments.Verification, error) {
	var wire verifyResponse
	if err := c.do(ctx, http.MethodGet, "/payments/"+paymentID+"/verify", token, nil, nil, &wire); err != nil {
		return domainpayments.Verification{}, err
	}
	v := toVerification(wire)
	if v.PaymentID == "" {
		v.PaymentID = paymentID
	}
	return v, nil
}

var _ policies.PaymentsPort = (*Client)(nil)
