package dto

import (
	"time"

	domainpayments "roomfront/internal/domain/payments"
)

// PaymentOrder is what the browser hands to the payment SDK.
type PaymentOrder struct {
	MerchantUID string `json:"merchant_uid"`
	RoomID      string `json:"room_id"`
	OrderName   string `json:"order_name"`
	Method      string `json:"method"`
	CheckIn     string `json:"check_in"`
	CheckOut    string `json:"check_out"`
	Nights      int    `json:"nights"`
	Guests      int    `json:"guests"`
	DayPrice    int64  `json:"day_price"`
	Amount      int64  `json:"amount"`
}

type VirtualAccount struct {
	Bank    string     `json:"bank"`
	Number  string     `json:"number"`
	Holder  string     `json:"holder"`
	DueDate *time.Time `json:"due_date,omitempty"`
}

type PaymentResult struct {
	PaymentID      string          `json:"payment_id"`
	Status         string          `json:"status"`
	Outcome        string          `json:"outcome"`
	RoomID         string          `json:"room_id,omitempty"`
	Amount         int64           `json:"amount"`
	Message        string          `json:"message,omitempty"`
	VirtualAccount *VirtualAccount `json:"virtual_account,omitempty"`
}

func MapVerification(v domainpayments.Verification) PaymentResult {
	out := PaymentResult{
		PaymentID: v.PaymentID,
		Status:    string(v.Status),
		Outcome:   string(v.Status.Outcome()),
		RoomID:    v.RoomID,
		Amount:    v.Amount,
		Message:   v.FailureReason,
	}
	if va := v.VirtualAccount; va != nil {
		mapped := &VirtualAccount{Bank: va.Bank, Number: va.Number, Holder: va.Holder}
		if !va.DueDate.IsZero() {
			due := va.DueDate
			mapped.DueDate = &due
		}
		out.VirtualAccount = mapped
	}
	return out
}
