package ginserver

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	gin "github.com/gin-gonic/gin"

	authapp "roomfront/internal/app/handlers/auth"
	calendarapp "roomfront/internal/app/handlers/calendar"
	roomsapp "roomfront/internal/app/handlers/rooms"
	appoutbox "roomfront/internal/app/outbox"
	"roomfront/internal/app/session"
	"roomfront/internal/domain/auth"
	domainblocks "roomfront/internal/domain/blocks"
	domainpayments "roomfront/internal/domain/payments"
	domainrooms "roomfront/internal/domain/rooms"
	"roomfront/internal/domain/shared/daterange"
	"roomfront/internal/infra/backendapi"
)

var (
	errInvalidRequest  = errors.New("invalid request")
	errBusUnavailable  = errors.New("service unavailable")
	errPhotoTooLarge   = errors.New("photo exceeds size limit")
	errPhotoType       = errors.New("unsupported photo type")
	errInvalidNumber   = errors.New("numeric field is invalid")
	errTooManyPhotos   = errors.New("too many photos")
	errIdempotencyLong = errors.New("idempotency key too long")
)

// statusFor maps an application error onto an HTTP status.
func statusFor(err error) int {
	if code, ok := backendClientStatus(err); ok {
		return code
	}
	var statusErr *backendapi.StatusError
	switch {
	case errors.Is(err, auth.ErrUnauthenticated),
		errors.Is(err, auth.ErrSessionExpired):
		return http.StatusUnauthorized
	case errors.Is(err, auth.ErrHostModeRequired),
		errors.Is(err, auth.ErrNotHost):
		return http.StatusForbidden
	case errors.Is(err, domainrooms.ErrRoomNotFound),
		errors.Is(err, backendapi.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, calendarapp.ErrNotBlocked),
		errors.Is(err, calendarapp.ErrNoPendingUnblock),
		errors.Is(err, calendarapp.ErrNothingSelected),
		errors.Is(err, domainrooms.ErrStayUnavailable):
		return http.StatusConflict
	case errors.Is(err, errInvalidRequest),
		errors.Is(err, errInvalidNumber),
		errors.Is(err, errIdempotencyLong):
		return http.StatusBadRequest
	case errors.Is(err, errPhotoTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, errPhotoType):
		return http.StatusUnsupportedMediaType
	case isValidationError(err):
		return http.StatusUnprocessableEntity
	case errors.Is(err, roomsapp.ErrPhotoUploaderUnavailable),
		errors.Is(err, errBusUnavailable),
		errors.Is(err, appoutbox.ErrFull):
		return http.StatusServiceUnavailable
	case errors.Is(err, backendapi.ErrUnavailable),
		errors.Is(err, backendapi.ErrRejected),
		errors.As(err, &statusErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, daterange.ErrInvalidDay),
		errors.Is(err, daterange.ErrInvalidRange),
		errors.Is(err, domainrooms.ErrInvalidStay),
		errors.Is(err, domainrooms.ErrGuestsInvalid),
		errors.Is(err, domainrooms.ErrTitleRequired),
		errors.Is(err, domainrooms.ErrPriceInvalid),
		errors.Is(err, domainblocks.ErrRoomRequired),
		errors.Is(err, domainblocks.ErrNothingToBlock),
		errors.Is(err, domainblocks.ErrNegativePrice),
		errors.Is(err, domainpayments.ErrAgreementRequired),
		errors.Is(err, domainpayments.ErrPaymentIDRequired),
		errors.Is(err, domainpayments.ErrMethodUnsupported),
		errors.Is(err, authapp.ErrCredentialsRequired),
		errors.Is(err, calendarapp.ErrRoomRequired),
		errors.Is(err, session.ErrSessionRequired):
		return true
	}
	return false
}

// responder is embedded by every HTTP handler.
type responder struct {
	Cookies *SessionCookies
	Logger  *slog.Logger
}

// respondWithError writes {"error": ...}. An expired backend token also
// clears the session cookie so the browser falls back to the login screen.
func (r responder) respondWithError(c *gin.Context, err error) {
	status := statusFor(err)
	if errors.Is(err, auth.ErrSessionExpired) && r.Cookies != nil {
		r.Cookies.Clear(c)
	}
	if r.Logger != nil {
		fields := []any{"status", status, "error", err, "path", c.FullPath()}
		if s, ok := auth.FromContext(c.Request.Context()); ok {
			fields = append(fields, "user_id", s.UserID)
		}
		switch {
		case status >= 500:
			r.Logger.Error("request failed", fields...)
		default:
			r.Logger.Debug("request rejected", fields...)
		}
	}
	c.JSON(status, gin.H{"error": publicMessage(status, err)})
}

// backendClientStatus passes through a backend rejection the user can act
// on, such as a conflicting reservation.
func backendClientStatus(err error) (int, bool) {
	var statusErr *backendapi.StatusError
	if !errors.As(err, &statusErr) {
		return 0, false
	}
	switch statusErr.StatusCode {
	case http.StatusBadRequest, http.StatusConflict, http.StatusUnprocessableEntity:
		return statusErr.StatusCode, true
	}
	return 0, false
}

// backendReason extracts the message from a backend error body, which is
// either {"message": ...}, {"error": ...} or plain text.
func backendReason(body string) string {
	body = strings.TrimSpace(body)
	var parsed struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal([]byte(body), &parsed) == nil {
		switch {
		case parsed.Message != "":
			body = parsed.Message
		case parsed.Error != "":
			body = parsed.Error
		}
	}
	if r := []rune(body); len(r) > maxReasonLen {
		body = string(r[:maxReasonLen])
	}
	return body
}

const maxReasonLen = 200

// publicMessage hides internal failure details from the client. Backend
// rejections passed through keep the backend's reason.
func publicMessage(status int, err error) string {
	var statusErr *backendapi.StatusError
	if _, ok := backendClientStatus(err); ok && errors.As(err, &statusErr) {
		if reason := backendReason(statusErr.Body); reason != "" {
			return reason
		}
		return http.StatusText(status)
	}
	switch status {
	case http.StatusInternalServerError:
		return "internal error"
	case http.StatusBadGateway:
		return "backend request failed"
	}
	return err.Error()
}
