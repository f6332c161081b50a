package ginserver

import (
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	gin "github.com/gin-gonic/gin"

	"roomfront/internal/app/commands"
	"roomfront/internal/app/dto"
	roomsapp "roomfront/internal/app/handlers/rooms"
	"roomfront/internal/app/queries"
)

const (
	maxRoomPhotoSizeBytes int64 = 10 * 1024 * 1024
	maxRoomPhotos               = 10
	maxIdempotencyKeyLen        = 128
)

type RoomsHTTP interface {
	Search(c *gin.Context)
	Get(c *gin.Context)
	Reserve(c *gin.Context)
	MyReservations(c *gin.Context)
	HostRooms(c *gin.Context)
	Register(c *gin.Context)
}

type RoomsHandler struct {
	responder
	Commands commands.Bus
	Queries  queries.Bus
}

type reservationRequest struct {
	CheckIn   string `json:"check_in"`
	CheckOut  string `json:"check_out"`
	Guests    int    `json:"guests"`
	PaymentID string `json:"payment_id"`
}

func (h RoomsHandler) Search(c *gin.Context) {
	guests, err := parseOptionalInt(c.Query("guests"))
	if err != nil {
		h.respondWithError(c, err)
		return
	}
	q := roomsapp.SearchRoomsQuery{
		City:     strings.TrimSpace(c.Query("city")),
		CheckIn:  strings.TrimSpace(c.Query("check_in")),
		CheckOut: strings.TrimSpace(c.Query("check_out")),
		Guests:   guests,
	}
	result, err := queries.Ask[roomsapp.SearchRoomsQuery, []dto.Room](c.Request.Context(), h.Queries, q)
	if err != nil {
		h.respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": result})
}

func (h RoomsHandler) Get(c *gin.Context) {
	q := roomsapp.GetRoomQuery{RoomID: c.Param("id")}
	result, err := queries.Ask[roomsapp.GetRoomQuery, dto.RoomDetail](c.Request.Context(), h.Queries, q)
	if err != nil {
		h.respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h RoomsHandler) Reserve(c *gin.Context) {
	var req reservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondWithError(c, errInvalidRequest)
		return
	}
	key, err := idempotencyKey(c)
	if err != nil {
		h.respondWithError(c, err)
		return
	}
	cmd := roomsapp.RequestReservationCommand{
		RoomID:          c.Param("id"),
		CheckIn:         req.CheckIn,
		CheckOut:        req.CheckOut,
		Guests:          req.Guests,
		PaymentID:       req.PaymentID,
		IdempotencyKeyV: key,
	}
	result, err := commands.Dispatch[roomsapp.RequestReservationCommand, *dto.Reservation](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		h.respondWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h RoomsHandler) MyReservations(c *gin.Context) {
	result, err := queries.Ask[roomsapp.MyReservationsQuery, []dto.Reservation](c.Request.Context(), h.Queries, roomsapp.MyReservationsQuery{})
	if err != nil {
		h.respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": result})
}

func (h RoomsHandler) HostRooms(c *gin.Context) {
	result, err := queries.Ask[roomsapp.HostRoomsQuery, []dto.Room](c.Request.Context(), h.Queries, roomsapp.HostRoomsQuery{})
	if err != nil {
		h.respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": result})
}

// Register accepts a multipart form: room fields plus any number of "photos"
// files.
func (h RoomsHandler) Register(c *gin.Context) {
	dayPrice, err := parseOptionalInt(c.PostForm("day_price"))
	if err != nil {
		h.respondWithError(c, err)
		return
	}
	maxGuests, err := parseOptionalInt(c.PostForm("max_guests"))
	if err != nil {
		h.respondWithError(c, err)
		return
	}
	var files []*multipart.FileHeader
	if form, err := c.MultipartForm(); err == nil && form != nil {
		files = form.File["photos"]
	}
	if len(files) > maxRoomPhotos {
		h.respondWithError(c, errTooManyPhotos)
		return
	}

	cmd := roomsapp.RegisterRoomCommand{
		Title:       c.PostForm("title"),
		Description: c.PostForm("description"),
		Address:     c.PostForm("address"),
		City:        c.PostForm("city"),
		DayPrice:    int64(dayPrice),
		MaxGuests:   maxGuests,
	}
	for _, fh := range files {
		contentType := fh.Header.Get("Content-Type")
		if !isAllowedImageType(contentType) {
			h.respondWithError(c, fmt.Errorf("%w: %s", errPhotoType, contentType))
			return
		}
		if fh.Size > maxRoomPhotoSizeBytes {
			h.respondWithError(c, fmt.Errorf("%w: %s", errPhotoTooLarge, fh.Filename))
			return
		}
		f, err := fh.Open()
		if err != nil {
			h.respondWithError(c, errInvalidRequest)
			return
		}
		defer f.Close()
		cmd.Photos = append(cmd.Photos, roomsapp.PhotoUpload{Filename: fh.Filename, ContentType: contentType, Reader: f})
	}

	result, err := commands.Dispatch[roomsapp.RegisterRoomCommand, *dto.Room](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		h.respondWithError(c, err)
		return
	}
	c.Header("Location", "/api/v1/rooms/"+result.ID)
	c.JSON(http.StatusCreated, result)
}

func isAllowedImageType(contentType string) bool {
	switch strings.ToLower(contentType) {
	case "image/jpeg", "image/jpg", "image/png", "image/webp":
		return true
	default:
		return false
	}
}

func parseOptionalInt(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", errInvalidNumber, raw)
	}
	return v, nil
}

func idempotencyKey(c *gin.Context) (string, error) {
	key := strings.TrimSpace(c.GetHeader("Idempotency-Key"))
	if len(key) > maxIdempotencyKeyLen {
		return "", errIdempotencyLong
	}
	return key, nil
}

var _ RoomsHTTP = RoomsHandler{}
