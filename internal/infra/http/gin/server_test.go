package ginserver

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	gin "github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roomfront/internal/app/bootstrap"
	"roomfront/internal/app/dto"
	"roomfront/internal/domain/auth"
	domainpayments "roomfront/internal/domain/payments"
	domainrooms "roomfront/internal/domain/rooms"
	"roomfront/internal/domain/shared/daterange"
	"roomfront/internal/infra/backendapi"
	"roomfront/internal/infra/cache"
	"roomfront/internal/infra/config"
	"roomfront/internal/infra/obs"
	"roomfront/internal/infra/security"
	"roomfront/internal/infra/storage/memory"
)

type testServer struct {
	router  *gin.Engine
	backend *memory.Backend
	app     bootstrap.Application
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	backend := memory.NewBackend()
	app := bootstrap.Build(bootstrap.Options{
		Ports: bootstrap.Ports{
			Rooms:    backend,
			Blocks:   backend,
			Payments: backend,
			Auth:     backend,
		},
		Cache:       cache.NewRooms(time.Minute),
		Idempotency: memory.NewIdempotencyStore(time.Hour),
		SessionTTL:  time.Hour,
		Today:       func() daterange.Day { return daterange.MustParseDay("2025-07-01") },
	})
	sealer, err := security.NewSealer("test-secret")
	require.NoError(t, err)
	cookies := &SessionCookies{Codec: security.SessionCodec{Sealer: sealer}, Name: "sid"}

	cfg := config.Config{Env: "test", CORSOrigins: []string{"http://localhost:5173"}}
	router := NewRouter(cfg, obs.Middleware{}, obs.HealthHandlers{}, NewHandlers(app.Commands, app.Queries, cookies, nil))
	return &testServer{router: router, backend: backend, app: app}
}

// browser keeps the session cookie between requests.
type browser struct {
	t      *testing.T
	srv    *testServer
	cookie *http.Cookie
}

func (s *testServer) browser(t *testing.T) *browser {
	return &browser{t: t, srv: s}
}

func (b *browser) do(method, path string, body io.Reader, header map[string]string) *httptest.ResponseRecorder {
	b.t.Helper()
	req := httptest.NewRequest(method, path, body)
	if body != nil && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range header {
		req.Header.Set(k, v)
	}
	if b.cookie != nil {
		req.AddCookie(b.cookie)
	}
	rec := httptest.NewRecorder()
	b.srv.router.ServeHTTP(rec, req)
	for _, ck := range rec.Result().Cookies() {
		if ck.Name != "sid" {
			continue
		}
		if ck.MaxAge < 0 || ck.Value == "" {
			b.cookie = nil
		} else {
			b.cookie = ck
		}
	}
	return rec
}

func (b *browser) json(method, path string, payload any, header map[string]string) *httptest.ResponseRecorder {
	b.t.Helper()
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(b.t, err)
		body = bytes.NewReader(raw)
	}
	return b.do(method, path, body, header)
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func (b *browser) login(email string) dto.Session {
	b.t.Helper()
	rec := b.json(http.MethodPost, "/api/v1/auth/login", map[string]string{"email": email, "password": "pw"}, nil)
	require.Equal(b.t, http.StatusOK, rec.Code, rec.Body.String())
	require.NotNil(b.t, b.cookie)
	return decode[dto.Session](b.t, rec)
}

func (b *browser) registerRoom() dto.Room {
	b.t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(b.t, w.WriteField("title", "Hanok stay"))
	require.NoError(b.t, w.WriteField("city", "Seoul"))
	require.NoError(b.t, w.WriteField("day_price", "80000"))
	require.NoError(b.t, w.WriteField("max_guests", "2"))
	require.NoError(b.t, w.Close())
	rec := b.do(http.MethodPost, "/api/v1/host/rooms", &buf, map[string]string{"Content-Type": w.FormDataContentType()})
	require.Equal(b.t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[dto.Room](b.t, rec)
}

func hostWithRoom(t *testing.T, srv *testServer) (*browser, dto.Room) {
	t.Helper()
	host := srv.browser(t)
	host.login("host@example.com")
	rec := host.do(http.MethodPost, "/api/v1/host/register", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.True(t, decode[dto.Session](t, rec).HostMode)
	return host, host.registerRoom()
}

func TestAuthGating(t *testing.T) {
	srv := newTestServer(t)
	anon := srv.browser(t)

	rec := anon.do(http.MethodGet, "/api/v1/host/rooms", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	rec = anon.do(http.MethodGet, "/api/v1/auth/me", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	guest := srv.browser(t)
	guest.login("guest@example.com")
	rec = guest.do(http.MethodGet, "/api/v1/host/rooms", nil, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = guest.json(http.MethodPost, "/api/v1/auth/host-mode", map[string]bool{"on": true}, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = guest.do(http.MethodPost, "/api/v1/auth/logout", nil, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Nil(t, guest.cookie)
}

func TestTamperedCookieIsAnonymous(t *testing.T) {
	srv := newTestServer(t)
	b := srv.browser(t)
	b.cookie = &http.Cookie{Name: "sid", Value: "garbage"}
	rec := b.do(http.MethodGet, "/api/v1/auth/me", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Nil(t, b.cookie)
}

func TestHostCalendarFlow(t *testing.T) {
	srv := newTestServer(t)
	host, room := hostWithRoom(t, srv)
	base := "/api/v1/host/rooms/" + room.ID + "/calendar"

	rec := host.do(http.MethodGet, base, nil, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	cal := decode[dto.Calendar](t, rec)
	assert.Equal(t, "2025-07-01", cal.Today)
	assert.Equal(t, "EMPTY", cal.Selection.State)

	rec = host.json(http.MethodPost, base+"/clicks", map[string]string{"date": "2025-07-15"}, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "anchored", decode[dto.ClickResult](t, rec).Outcome)

	rec = host.json(http.MethodPost, base+"/clicks", map[string]string{"date": "2025-07-17"}, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	click := decode[dto.ClickResult](t, rec)
	assert.Equal(t, "range_selected", click.Outcome)
	assert.Equal(t, []string{"2025-07-15", "2025-07-16", "2025-07-17"}, click.Calendar.Selection.DateRange)

	key := map[string]string{"Idempotency-Key": "submit-1"}
	rec = host.do(http.MethodPost, base+"/blocks", nil, key)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	first := decode[dto.BlockResult](t, rec)
	assert.Equal(t, []string{"2025-07-15", "2025-07-16", "2025-07-17"}, first.Dates)

	rec = host.do(http.MethodPost, base+"/blocks", nil, key)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, first, decode[dto.BlockResult](t, rec))

	rec = host.do(http.MethodPost, base+"/blocks", nil, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = host.do(http.MethodGet, base, nil, nil)
	cal = decode[dto.Calendar](t, rec)
	assert.Equal(t, []string{"2025-07-15", "2025-07-16", "2025-07-17"}, cal.Blocked)
	assert.Equal(t, "EMPTY", cal.Selection.State)

	rec = host.json(http.MethodPost, base+"/clicks", map[string]string{"date": "2025-07-16"}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	click = decode[dto.ClickResult](t, rec)
	assert.Equal(t, "unblock_requested", click.Outcome)
	assert.Equal(t, "2025-07-16", click.Calendar.PendingUnblock)

	rec = host.do(http.MethodPost, base+"/unblock", nil, map[string]string{"Idempotency-Key": "unblock-1"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "2025-07-16", decode[dto.UnblockResult](t, rec).Date)

	rec = host.do(http.MethodGet, base, nil, nil)
	assert.Equal(t, []string{"2025-07-15", "2025-07-17"}, decode[dto.Calendar](t, rec).Blocked)

	rec = host.json(http.MethodPost, base+"/unblock", map[string]string{"date": "2025-07-20"}, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestConflictingRangeShowsNotice(t *testing.T) {
	srv := newTestServer(t)
	host, room := hostWithRoom(t, srv)
	base := "/api/v1/host/rooms/" + room.ID + "/calendar"

	host.json(http.MethodPost, base+"/clicks", map[string]string{"date": "2025-07-20"}, nil)
	rec := host.do(http.MethodPost, base+"/blocks", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	host.json(http.MethodPost, base+"/clicks", map[string]string{"date": "2025-07-18"}, nil)
	rec = host.json(http.MethodPost, base+"/clicks", map[string]string{"date": "2025-07-22"}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	click := decode[dto.ClickResult](t, rec)
	assert.Equal(t, "conflict", click.Outcome)
	assert.Equal(t, "2025-07-20", click.ConflictAt)
	assert.NotEmpty(t, click.Notice)
	assert.Equal(t, "EMPTY", click.Calendar.Selection.State)
}

func TestGuestReservationAndPayment(t *testing.T) {
	srv := newTestServer(t)
	_, room := hostWithRoom(t, srv)

	guest := srv.browser(t)
	guest.login("guest@example.com")

	rec := guest.do(http.MethodGet, "/api/v1/rooms?city=seoul", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), room.ID)

	rec = guest.do(http.MethodGet, "/api/v1/rooms?guests=abc", nil, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	prepare := map[string]any{
		"room_id":   room.ID,
		"check_in":  "2025-07-10",
		"check_out": "2025-07-12",
		"guests":    2,
	}
	rec = guest.json(http.MethodPost, "/api/v1/payments/prepare", prepare, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	prepare["agreements"] = map[string]bool{"terms": true, "privacy": true, "refund": true}
	rec = guest.json(http.MethodPost, "/api/v1/payments/prepare", prepare, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	order := decode[dto.PaymentOrder](t, rec)
	assert.Equal(t, int64(160000), order.Amount)
	assert.True(t, strings.HasPrefix(order.MerchantUID, "order-"))

	reserve := map[string]any{"check_in": "2025-07-10", "check_out": "2025-07-12", "guests": 2, "payment_id": "pay-1"}
	rec = guest.json(http.MethodPost, "/api/v1/rooms/"+room.ID+"/reservations", reserve, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = guest.json(http.MethodPost, "/api/v1/rooms/"+room.ID+"/reservations", reserve, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = guest.do(http.MethodGet, "/api/v1/rooms/"+room.ID, nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"2025-07-10", "2025-07-11"}, decode[dto.RoomDetail](t, rec).Unavailable)

	rec = guest.do(http.MethodGet, "/api/v1/payments/pay-1/complete", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "success", decode[dto.PaymentResult](t, rec).Outcome)

	rec = guest.do(http.MethodGet, "/api/v1/me/reservations", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "pay-1")
}

func TestUnknownRoom(t *testing.T) {
	srv := newTestServer(t)
	rec := srv.browser(t).do(http.MethodGet, "/api/v1/rooms/404", nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLivez(t *testing.T) {
	srv := newTestServer(t)
	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/livez", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestStatusFor(t *testing.T) {
	cases := map[error]int{
		auth.ErrSessionExpired:              http.StatusUnauthorized,
		auth.ErrHostModeRequired:            http.StatusForbidden,
		domainrooms.ErrRoomNotFound:         http.StatusNotFound,
		domainrooms.ErrStayUnavailable:      http.StatusConflict,
		domainpayments.ErrAgreementRequired: http.StatusUnprocessableEntity,
		errPhotoTooLarge:                    http.StatusRequestEntityTooLarge,
		backendapi.ErrRejected:              http.StatusBadGateway,
		errors.New("boom"):                  http.StatusInternalServerError,
	}
	for err, want := range cases {
		assert.Equal(t, want, statusFor(fmt.Errorf("wrapped: %w", err)), err.Error())
	}
	assert.Equal(t, "backend request failed", publicMessage(http.StatusBadGateway, backendapi.ErrRejected))
}

func TestBackendRejectionKeepsStatusAndReason(t *testing.T) {
	gin.SetMode(gin.TestMode)
	conflict := &backendapi.StatusError{
		Method:     http.MethodPost,
		Path:       "/rooms/7/reservations",
		StatusCode: http.StatusConflict,
		Body:       `{"message":"이미 예약된 날짜입니다."}`,
	}
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/rooms/7/reservations", nil)
	responder{}.respondWithError(c, fmt.Errorf("reserve: %w", conflict))

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.JSONEq(t, `{"error":"이미 예약된 날짜입니다."}`, rec.Body.String())

	plain := &backendapi.StatusError{StatusCode: http.StatusUnprocessableEntity, Body: "  check-out before check-in \n"}
	assert.Equal(t, http.StatusUnprocessableEntity, statusFor(plain))
	assert.Equal(t, "check-out before check-in", publicMessage(http.StatusUnprocessableEntity, plain))

	down := &backendapi.StatusError{StatusCode: http.StatusInternalServerError, Body: "stack trace"}
	assert.Equal(t, http.StatusBadGateway, statusFor(down))
	assert.Equal(t, "backend request failed", publicMessage(http.StatusBadGateway, down))
}

func TestMemoryBackendErrorsMapThroughSharedSentinels(t *testing.T) {
	assert.Equal(t, http.StatusUnauthorized, statusFor(memory.ErrInvalidCredentials))
	assert.Equal(t, http.StatusForbidden, statusFor(memory.ErrNotOwner))
	assert.Equal(t, http.StatusConflict, statusFor(memory.ErrNotBlocked))
	assert.Equal(t, http.StatusServiceUnavailable, statusFor(memory.ErrOutboxFull))
}

func TestRateLimiter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RateLimiter(1, 1))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	first := httptest.NewRecorder()
	r.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/", nil))
	second := httptest.NewRecorder()
	r.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
}
