package ginserver

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	gin "github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"roomfront/internal/app/commands"
	"roomfront/internal/app/queries"
	"roomfront/internal/infra/config"
	"roomfront/internal/infra/obs"
)

type Handlers struct {
	Auth     AuthHTTP
	Rooms    RoomsHTTP
	Calendar CalendarHTTP
	Payments PaymentsHTTP
	Session  gin.HandlerFunc
}

// NewHandlers builds every HTTP handler over the same buses and session
// cookie.
func NewHandlers(cmds commands.Bus, qs queries.Bus, cookies *SessionCookies, logger *slog.Logger) Handlers {
	resp := responder{Cookies: cookies, Logger: logger}
	h := Handlers{
		Auth:     AuthHandler{responder: resp, Commands: cmds},
		Rooms:    RoomsHandler{responder: resp, Commands: cmds, Queries: qs},
		Calendar: CalendarHandler{responder: resp, Commands: cmds, Queries: qs},
		Payments: PaymentsHandler{responder: resp, Commands: cmds, Queries: qs},
	}
	if cookies != nil {
		h.Session = cookies.Middleware()
	}
	return h
}

func NewServer(cfg config.Config, obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) *http.Server {
	return &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           NewRouter(cfg, obsMW, health, h),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

func NewRouter(cfg config.Config, obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) *gin.Engine {
	mode := configureGinMode(cfg.Env)
	if obsMW.Logger != nil {
		obsMW.Logger.Info("gin initialized", "mode", mode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(obsMW.RequestID())
	router.Use(obsMW.LoggerMiddleware())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Idempotency-Key", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "Content-Type", "X-Request-ID", "Location"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/livez", health.Livez)
	router.GET("/readyz", health.Readyz)

	api := router.Group("/api/v1")
	api.Use(RateLimiter(rate.Limit(cfg.RateLimitPerSec), cfg.RateLimitBurst))
	if h.Session != nil {
		api.Use(h.Session)
	}
	if h.Auth != nil {
		api.POST("/auth/login", h.Auth.Login)
		api.POST("/auth/logout", h.Auth.Logout)
		api.POST("/auth/host-mode", h.Auth.HostMode)
		api.GET("/auth/me", h.Auth.Me)
		api.POST("/host/register", h.Auth.RegisterHost)
	}
	if h.Rooms != nil {
		api.GET("/rooms", h.Rooms.Search)
		api.GET("/rooms/:id", h.Rooms.Get)
		api.POST("/rooms/:id/reservations", h.Rooms.Reserve)
		api.GET("/me/reservations", h.Rooms.MyReservations)
		api.GET("/host/rooms", h.Rooms.HostRooms)
		api.POST("/host/rooms", h.Rooms.Register)
	}
	if h.Calendar != nil {
		cal := api.Group("/host/rooms/:id/calendar")
		cal.GET("", h.Calendar.Get)
		cal.POST("/clicks", h.Calendar.Click)
		cal.POST("/reset", h.Calendar.Reset)
		cal.POST("/blocks", h.Calendar.Submit)
		cal.POST("/unblock", h.Calendar.Unblock)
	}
	if h.Payments != nil {
		api.POST("/payments/prepare", h.Payments.Prepare)
		api.GET("/payments/:paymentId/complete", h.Payments.Complete)
	}
	return router
}

func configureGinMode(env string) string {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local", "debug":
		gin.SetMode(gin.DebugMode)
		return gin.DebugMode
	case "test", "testing":
		gin.SetMode(gin.TestMode)
		return gin.TestMode
	default:
		gin.SetMode(gin.ReleaseMode)
		return gin.ReleaseMode
	}
}
