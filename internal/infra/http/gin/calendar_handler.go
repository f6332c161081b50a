package ginserver

import (
	"errors"
	"io"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"roomfront/internal/app/commands"
	"roomfront/internal/app/dto"
	calendarapp "roomfront/internal/app/handlers/calendar"
	"roomfront/internal/app/queries"
)

type CalendarHTTP interface {
	Get(c *gin.Context)
	Click(c *gin.Context)
	Reset(c *gin.Context)
	Submit(c *gin.Context)
	Unblock(c *gin.Context)
}

// CalendarHandler serves the host availability calendar of one room.
type CalendarHandler struct {
	responder
	Commands commands.Bus
	Queries  queries.Bus
}

type dateRequest struct {
	Date string `json:"date"`
}

func (h CalendarHandler) Get(c *gin.Context) {
	q := calendarapp.GetCalendarQuery{RoomID: c.Param("id")}
	result, err := queries.Ask[calendarapp.GetCalendarQuery, dto.Calendar](c.Request.Context(), h.Queries, q)
	if err != nil {
		h.respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h CalendarHandler) Click(c *gin.Context) {
	var req dateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondWithError(c, errInvalidRequest)
		return
	}
	cmd := calendarapp.ClickDateCommand{RoomID: c.Param("id"), Date: req.Date}
	result, err := commands.Dispatch[calendarapp.ClickDateCommand, dto.ClickResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		h.respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h CalendarHandler) Reset(c *gin.Context) {
	cmd := calendarapp.ResetSelectionCommand{RoomID: c.Param("id")}
	result, err := commands.Dispatch[calendarapp.ResetSelectionCommand, dto.Calendar](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		h.respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Submit sends the current selection as one bulk block.
func (h CalendarHandler) Submit(c *gin.Context) {
	key, err := idempotencyKey(c)
	if err != nil {
		h.respondWithError(c, err)
		return
	}
	cmd := calendarapp.SubmitBlocksCommand{RoomID: c.Param("id"), IdempotencyKeyV: key}
	result, err := commands.Dispatch[calendarapp.SubmitBlocksCommand, *dto.BlockResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		h.respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Unblock confirms the pending unblock, or unblocks the date in the body.
func (h CalendarHandler) Unblock(c *gin.Context) {
	var req dateRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		h.respondWithError(c, errInvalidRequest)
		return
	}
	key, err := idempotencyKey(c)
	if err != nil {
		h.respondWithError(c, err)
		return
	}
	cmd := calendarapp.ConfirmUnblockCommand{RoomID: c.Param("id"), Date: req.Date, IdempotencyKeyV: key}
	result, err := commands.Dispatch[calendarapp.ConfirmUnblockCommand, *dto.UnblockResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		h.respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ CalendarHTTP = CalendarHandler{}
