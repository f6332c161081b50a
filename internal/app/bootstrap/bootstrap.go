// Package bootstrap registers every command and query handler on the buses
// and wraps them in the middleware chain.
package bootstrap

import (
	"log/slog"
	"time"

	"roomfront/internal/app/commands"
	"roomfront/internal/app/dto"
	authapp "roomfront/internal/app/handlers/auth"
	calendarapp "roomfront/internal/app/handlers/calendar"
	paymentsapp "roomfront/internal/app/handlers/payments"
	roomsapp "roomfront/internal/app/handlers/rooms"
	"roomfront/internal/app/middleware"
	"roomfront/internal/app/policies"
	"roomfront/internal/app/queries"
	"roomfront/internal/app/session"
	"roomfront/internal/app/signals"
	domainauth "roomfront/internal/domain/auth"
	"roomfront/internal/domain/shared/daterange"
)

// Ports are the backend-facing adapters.
type Ports struct {
	Rooms    policies.RoomsPort
	Blocks   policies.BlocksPort
	Payments policies.PaymentsPort
	Auth     policies.AuthPort
	// Photos may be nil; room registration with photos then fails.
	Photos policies.PhotoUploader
}

type Options struct {
	Ports
	Cache       session.RoomsCache
	Selections  *session.Selections
	Signals     *signals.Bus
	Idempotency middleware.IdempotencyStore
	SessionTTL  time.Duration
	Today       func() daterange.Day
	Now         func() time.Time
	Logger      *slog.Logger
}

type Application struct {
	Commands   commands.Bus
	Queries    queries.Bus
	Loader     *session.RoomsLoader
	Selections *session.Selections
	Signals    *signals.Bus
	// CommandKeys and QueryKeys list the registered handlers.
	CommandKeys []string
	QueryKeys   []string
}

func Build(opts Options) Application {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	today := opts.Today
	if today == nil {
		today = func() daterange.Day { return daterange.DayOf(now()) }
	}
	sessionTTL := opts.SessionTTL
	if sessionTTL <= 0 {
		sessionTTL = 7 * 24 * time.Hour
	}
	selections := opts.Selections
	if selections == nil {
		selections = session.NewSelections(0)
	}
	bus := opts.Signals
	if bus == nil {
		bus = signals.NewBus(logger)
	}

	loader := session.NewRoomsLoader(opts.Rooms, opts.Cache, logger)
	bus.Subscribe("rooms-cache", loader.OnDataChanged)

	calendarDeps := calendarapp.Deps{Rooms: loader, Selections: selections, Today: today, Logger: logger}

	commandBus := commands.NewInMemoryBus()
	commands.Register[authapp.LoginCommand, domainauth.Session](commandBus, &authapp.LoginHandler{
		Auth:       opts.Auth,
		SessionTTL: sessionTTL,
		Now:        now,
		Logger:     logger,
	})
	commands.Register[authapp.RegisterHostCommand, domainauth.Session](commandBus, &authapp.RegisterHostHandler{Auth: opts.Auth})
	commands.Register[authapp.SetHostModeCommand, domainauth.Session](commandBus, &authapp.SetHostModeHandler{Selections: selections})
	commands.Register[authapp.LogoutCommand, struct{}](commandBus, &authapp.LogoutHandler{Selections: selections})

	commands.Register[calendarapp.ClickDateCommand, dto.ClickResult](commandBus, &calendarapp.ClickDateHandler{Deps: calendarDeps})
	commands.Register[calendarapp.ResetSelectionCommand, dto.Calendar](commandBus, &calendarapp.ResetSelectionHandler{Deps: calendarDeps})
	commands.Register[calendarapp.SubmitBlocksCommand, *dto.BlockResult](commandBus, &calendarapp.SubmitBlocksHandler{
		Deps:    calendarDeps,
		Blocks:  opts.Blocks,
		Signals: bus,
		Now:     now,
	})
	commands.Register[calendarapp.ConfirmUnblockCommand, *dto.UnblockResult](commandBus, &calendarapp.ConfirmUnblockHandler{
		Deps:    calendarDeps,
		Blocks:  opts.Blocks,
		Signals: bus,
		Now:     now,
	})

	commands.Register[roomsapp.RequestReservationCommand, *dto.Reservation](commandBus, &roomsapp.RequestReservationHandler{
		Rooms:   loader,
		Backend: opts.Rooms,
		Signals: bus,
		Today:   today,
		Now:     now,
		Logger:  logger,
	})
	commands.Register[roomsapp.RegisterRoomCommand, *dto.Room](commandBus, &roomsapp.RegisterRoomHandler{
		Backend:  opts.Rooms,
		Uploader: opts.Photos,
		Signals:  bus,
		Now:      now,
		Logger:   logger,
	})
	commands.Register[paymentsapp.PreparePaymentCommand, *dto.PaymentOrder](commandBus, &paymentsapp.PreparePaymentHandler{
		Rooms: loader,
		Today: today,
	})

	queryBus := queries.NewInMemoryBus()
	queries.Register[calendarapp.GetCalendarQuery, dto.Calendar](queryBus, &calendarapp.GetCalendarHandler{Deps: calendarDeps})
	queries.Register[roomsapp.HostRoomsQuery, []dto.Room](queryBus, &roomsapp.HostRoomsHandler{Rooms: loader})
	queries.Register[roomsapp.SearchRoomsQuery, []dto.Room](queryBus, &roomsapp.SearchRoomsHandler{Rooms: opts.Rooms})
	queries.Register[roomsapp.GetRoomQuery, dto.RoomDetail](queryBus, &roomsapp.GetRoomHandler{Rooms: loader, Today: today})
	queries.Register[roomsapp.MyReservationsQuery, []dto.Reservation](queryBus, &roomsapp.MyReservationsHandler{Rooms: opts.Rooms})
	queries.Register[paymentsapp.VerifyPaymentQuery, dto.PaymentResult](queryBus, &paymentsapp.VerifyPaymentHandler{
		Payments: opts.Payments,
		Signals:  bus,
		Now:      now,
		Logger:   logger,
	})

	commandMW := []middleware.CommandMiddleware{
		middleware.Authorization(middleware.SessionAuthorizer{}),
		middleware.Validation(middleware.MessageValidator{}),
	}
	if opts.Idempotency != nil {
		commandMW = append(commandMW, middleware.Idempotency(opts.Idempotency, nil))
	}

	return Application{
		Commands: middleware.ChainCommands(commandBus, commandMW...),
		Queries: middleware.ChainQueries(queryBus,
			middleware.QueryAuthorization(middleware.SessionAuthorizer{}),
			middleware.QueryValidation(middleware.MessageValidator{}),
		),
		Loader:      loader,
		Selections:  selections,
		Signals:     bus,
		CommandKeys: commandBus.Keys(),
		QueryKeys:   queryBus.Keys(),
	}
}
