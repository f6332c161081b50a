package ginserver

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	gin "github.com/gin-gonic/gin"

	"roomfront/internal/domain/auth"
	"roomfront/internal/infra/obs"
	"roomfront/internal/infra/security"
)

const defaultSessionCookie = "roomfront_session"

// SessionCookies keeps the browser session in a sealed, HTTP-only cookie.
type SessionCookies struct {
	Codec  security.SessionCodec
	Name   string
	Secure bool
	Now    func() time.Time
	Logger *slog.Logger
}

// Middleware puts a valid session into the request context. A missing,
// tampered or expired cookie leaves the request anonymous.
func (s *SessionCookies) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := c.Cookie(s.name())
		if err != nil || raw == "" {
			c.Next()
			return
		}
		sess, err := s.Codec.Decode(raw)
		if err != nil {
			if s.Logger != nil && !errors.Is(err, auth.ErrSessionExpired) {
				s.Logger.Debug("session cookie rejected", "error", err)
			}
			s.Clear(c)
			c.Next()
			return
		}
		c.Request = c.Request.WithContext(auth.ContextWithSession(c.Request.Context(), sess))
		c.Set(obs.UserIDKey, sess.UserID)
		c.Next()
	}
}

func (s *SessionCookies) Write(c *gin.Context, sess auth.Session) error {
	value, err := s.Codec.Encode(sess)
	if err != nil {
		return err
	}
	maxAge := int(sess.ExpiresAt.Sub(s.now()).Seconds())
	if maxAge <= 0 {
		maxAge = -1
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(s.name(), value, maxAge, "/", "", s.Secure, true)
	return nil
}

func (s *SessionCookies) Clear(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(s.name(), "", -1, "/", "", s.Secure, true)
}

func (s *SessionCookies) name() string {
	if s.Name != "" {
		return s.Name
	}
	return defaultSessionCookie
}

func (s *SessionCookies) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}
