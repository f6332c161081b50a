package payments

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrAgreementRequired = errors.New("payments: required agreement missing")
	ErrPaymentIDRequired = errors.New("payments: payment id is required")
	ErrMethodUnsupported = errors.New("payments: unsupported payment method")
)

// Status is the verification status returned by the backend.
type Status string

const (
	StatusReady                Status = "READY"
	StatusPaid                 Status = "PAID"
	StatusVirtualAccountIssued Status = "VIRTUAL_ACCOUNT_ISSUED"
	StatusFailed               Status = "FAILED"
	StatusCancelled            Status = "CANCELLED"
)

// Outcome is what the redirect landing screen shows.
type Outcome string

const (
	OutcomeSuccess         Outcome = "success"
	OutcomeAwaitingDeposit Outcome = "awaiting_deposit"
	OutcomeFailed          Outcome = "failed"
)

func (s Status) Outcome() Outcome {
	switch Status(strings.ToUpper(string(s))) {
	case StatusPaid:
		return OutcomeSuccess
	case StatusVirtualAccountIssued:
		return OutcomeAwaitingDeposit
	default:
		return OutcomeFailed
	}
}

type Method string

const (
	MethodCard           Method = "CARD"
	MethodVirtualAccount Method = "VIRTUAL_ACCOUNT"
	MethodTransfer       Method = "TRANSFER"
)

func ParseMethod(raw string) (Method, error) {
	m := Method(strings.ToUpper(strings.TrimSpace(raw)))
	switch m {
	case "":
		return MethodCard, nil
	case MethodCard, MethodVirtualAccount, MethodTransfer:
		return m, nil
	}
	return "", fmt.Errorf("%w: %q", ErrMethodUnsupported, raw)
}

// Agreements are the checkboxes a guest must tick before checkout.
type Agreements struct {
	Terms   bool
	Privacy bool
	Refund  bool
}

func (a Agreements) Validate() error {
	var missing []string
	if !a.Terms {
		missing = append(missing, "terms")
	}
	if !a.Privacy {
		missing = append(missing, "privacy")
	}
	if !a.Refund {
		missing = append(missing, "refund")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrAgreementRequired, strings.Join(missing, ", "))
	}
	return nil
}

type VirtualAccount struct {
	Bank    string
	Number  string
	Holder  string
	DueDate time.Time
}

// Verification is the backend's view of one payment.
type Verification struct {
	PaymentID      string
	Status         Status
	RoomID         string
	Amount         int64
	FailureReason  string
	VirtualAccount *VirtualAccount
}

// Amount is nights times the nightly price.
func Amount(nights int, dayPrice int64) int64 {
	if nights <= 0 || dayPrice <= 0 {
		return 0
	}
	return int64(nights) * dayPrice
}
