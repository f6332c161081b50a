package ginserver

import (
	"context"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"roomfront/internal/app/commands"
	"roomfront/internal/app/dto"
	authapp "roomfront/internal/app/handlers/auth"
	"roomfront/internal/domain/auth"
)

type AuthHTTP interface {
	Login(c *gin.Context)
	Logout(c *gin.Context)
	HostMode(c *gin.Context)
	Me(c *gin.Context)
	RegisterHost(c *gin.Context)
}

type AuthHandler struct {
	responder
	Commands commands.Bus
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type hostModeRequest struct {
	On *bool `json:"on"`
}

func (h AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondWithError(c, errInvalidRequest)
		return
	}
	cmd := authapp.LoginCommand{Email: req.Email, Password: req.Password}
	h.dispatchSession(c, func(ctx context.Context) (auth.Session, error) {
		return commands.Dispatch[authapp.LoginCommand, auth.Session](ctx, h.Commands, cmd)
	})
}

func (h AuthHandler) Logout(c *gin.Context) {
	if h.Commands != nil {
		if _, err := commands.Dispatch[authapp.LogoutCommand, struct{}](c.Request.Context(), h.Commands, authapp.LogoutCommand{}); err != nil {
			h.respondWithError(c, err)
			return
		}
	}
	if h.Cookies != nil {
		h.Cookies.Clear(c)
	}
	c.Status(http.StatusNoContent)
}

func (h AuthHandler) HostMode(c *gin.Context) {
	var req hostModeRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.On == nil {
		h.respondWithError(c, errInvalidRequest)
		return
	}
	cmd := authapp.SetHostModeCommand{On: *req.On}
	h.dispatchSession(c, func(ctx context.Context) (auth.Session, error) {
		return commands.Dispatch[authapp.SetHostModeCommand, auth.Session](ctx, h.Commands, cmd)
	})
}

func (h AuthHandler) RegisterHost(c *gin.Context) {
	cmd := authapp.RegisterHostCommand{}
	h.dispatchSession(c, func(ctx context.Context) (auth.Session, error) {
		return commands.Dispatch[authapp.RegisterHostCommand, auth.Session](ctx, h.Commands, cmd)
	})
}

func (h AuthHandler) Me(c *gin.Context) {
	s, ok := auth.FromContext(c.Request.Context())
	if !ok {
		h.respondWithError(c, auth.ErrUnauthenticated)
		return
	}
	c.JSON(http.StatusOK, dto.MapSession(s))
}

// dispatchSession runs a command that yields a new session and stores it in
// the cookie.
func (h AuthHandler) dispatchSession(c *gin.Context, run func(ctx context.Context) (auth.Session, error)) {
	if h.Commands == nil {
		h.respondWithError(c, errBusUnavailable)
		return
	}
	s, err := run(c.Request.Context())
	if err != nil {
		h.respondWithError(c, err)
		return
	}
	if h.Cookies != nil {
		if err := h.Cookies.Write(c, s); err != nil {
			h.respondWithError(c, err)
			return
		}
	}
	c.JSON(http.StatusOK, dto.MapSession(s))
}

var _ AuthHTTP = AuthHandler{}
