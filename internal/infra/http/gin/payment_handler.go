package ginserver

import (
	"net/http"

	gin "github.com/gin-gonic/gin"

	"roomfront/internal/app/commands"
	"roomfront/internal/app/dto"
	paymentsapp "roomfront/internal/app/handlers/payments"
	"roomfront/internal/app/queries"
	domainpayments "roomfront/internal/domain/payments"
)

type PaymentsHTTP interface {
	Prepare(c *gin.Context)
	Complete(c *gin.Context)
}

type PaymentsHandler struct {
	responder
	Commands commands.Bus
	Queries  queries.Bus
}

type prepareRequest struct {
	RoomID     string `json:"room_id"`
	CheckIn    string `json:"check_in"`
	CheckOut   string `json:"check_out"`
	Guests     int    `json:"guests"`
	Method     string `json:"method"`
	Agreements struct {
		Terms   bool `json:"terms"`
		Privacy bool `json:"privacy"`
		Refund  bool `json:"refund"`
	} `json:"agreements"`
}

func (h PaymentsHandler) Prepare(c *gin.Context) {
	var req prepareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondWithError(c, errInvalidRequest)
		return
	}
	cmd := paymentsapp.PreparePaymentCommand{
		RoomID:   req.RoomID,
		CheckIn:  req.CheckIn,
		CheckOut: req.CheckOut,
		Guests:   req.Guests,
		Method:   req.Method,
		Agreements: domainpayments.Agreements{
			Terms:   req.Agreements.Terms,
			Privacy: req.Agreements.Privacy,
			Refund:  req.Agreements.Refund,
		},
	}
	result, err := commands.Dispatch[paymentsapp.PreparePaymentCommand, *dto.PaymentOrder](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		h.respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Complete is the payment redirect landing. It always answers 200 once the
// backend replied; the outcome field tells the page what to render.
func (h PaymentsHandler) Complete(c *gin.Context) {
	q := paymentsapp.VerifyPaymentQuery{PaymentID: c.Param("paymentId")}
	result, err := queries.Ask[paymentsapp.VerifyPaymentQuery, dto.PaymentResult](c.Request.Context(), h.Queries, q)
	if err != nil {
		h.respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ PaymentsHTTP = PaymentsHandler{}
