package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/IBM/sarama"

	"roomfront/internal/app/bootstrap"
	"roomfront/internal/app/middleware"
	appoutbox "roomfront/internal/app/outbox"
	"roomfront/internal/app/session"
	"roomfront/internal/app/signals"
	"roomfront/internal/domain/shared/daterange"
	"roomfront/internal/infra/backendapi"
	"roomfront/internal/infra/broker/kafka"
	"roomfront/internal/infra/cache"
	"roomfront/internal/infra/config"
	mongostore "roomfront/internal/infra/db/mongo"
	ginserver "roomfront/internal/infra/http/gin"
	"roomfront/internal/infra/inbox"
	"roomfront/internal/infra/obs"
	infraoutbox "roomfront/internal/infra/outbox"
	"roomfront/internal/infra/security"
	"roomfront/internal/infra/storage/memory"
	"roomfront/internal/infra/storage/s3"
)

const dataChangedTopic = "roomfront.data-changed.v1"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		obs.NewLogger("").Error("config load failed", "error", err)
		os.Exit(1)
	}
	logger := obs.NewLogger(cfg.Env)
	slog.SetDefault(logger)

	rt, err := build(ctx, cfg, logger)
	if err != nil {
		logger.Error("startup failed", "error", err)
		rt.close(logger)
		os.Exit(1)
	}

	server := ginserver.NewServer(cfg, obs.Middleware{Logger: logger}, obs.HealthHandlers{Checks: rt.checks}, rt.handlers)

	var wg sync.WaitGroup
	for name, run := range rt.background {
		name, run := name, run
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("background task stopped", "task", name, "error", err)
			}
		}()
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown failed", "error", err)
		}
	}()

	logger.Info("HTTP server starting",
		"addr", cfg.HTTPAddr,
		"backend", cfg.BackendBaseURL,
		"timezone", cfg.TimezoneName,
		"commands", len(rt.app.CommandKeys),
		"queries", len(rt.app.QueryKeys),
	)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("http server failed", "error", err)
		stop()
	}
	stop()
	wg.Wait()
	rt.close(logger)
	logger.Info("HTTP server stopped")
}

type wiring struct {
	app        bootstrap.Application
	handlers   ginserver.Handlers
	checks     []obs.Check
	background map[string]func(ctx context.Context) error
	closers    []func(ctx context.Context) error
}

func (r *wiring) close(logger *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for i := len(r.closers) - 1; i >= 0; i-- {
		if err := r.closers[i](ctx); err != nil {
			logger.Warn("close failed", "error", err)
		}
	}
}

func build(ctx context.Context, cfg config.Config, logger *slog.Logger) (*wiring, error) {
	rt := &wiring{background: make(map[string]func(ctx context.Context) error)}

	ports, err := backendPorts(cfg, logger, rt)
	if err != nil {
		return rt, err
	}

	var db *mongostore.Client
	if cfg.MongoEnabled() {
		db, err = mongostore.New(ctx, cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return rt, fmt.Errorf("connect mongo: %w", err)
		}
		rt.closers = append(rt.closers, db.Close)
		rt.checks = append(rt.checks, obs.Check{Name: "mongo", Run: db.Ping})
	}

	if cfg.S3Enabled() {
		uploader, err := s3.NewClient(s3.Options{
			Endpoint:       cfg.S3Endpoint,
			PublicEndpoint: cfg.S3PublicEndpoint,
			AccessKey:      cfg.S3AccessKey,
			SecretKey:      cfg.S3SecretKey,
			Bucket:         cfg.S3Bucket,
			UseSSL:         cfg.S3UseSSL,
			Logger:         logger,
		})
		if err != nil {
			return rt, fmt.Errorf("s3 client: %w", err)
		}
		ports.Photos = uploader
		rt.checks = append(rt.checks, obs.Check{Name: "s3", Run: uploader.Ping})
	} else {
		logger.Warn("photo storage disabled, rooms can only be registered without photos")
	}

	bus := signals.NewBus(logger)
	if cfg.KafkaEnabled() {
		if err := wireKafka(ctx, cfg, logger, db, bus, rt); err != nil {
			return rt, err
		}
	}

	var idempotency middleware.IdempotencyStore
	if db != nil {
		store, err := mongostore.NewIdempotencyStore(ctx, db.DB, cfg.IdempotencyTTL)
		if err != nil {
			return rt, fmt.Errorf("idempotency store: %w", err)
		}
		idempotency = store
	} else {
		idempotency = memory.NewIdempotencyStore(cfg.IdempotencyTTL)
	}

	rt.app = bootstrap.Build(bootstrap.Options{
		Ports:       ports,
		Cache:       cache.NewRooms(cfg.SnapshotTTL),
		Selections:  session.NewSelections(cfg.SelectionTTL),
		Signals:     bus,
		Idempotency: idempotency,
		SessionTTL:  cfg.SessionTTL,
		Today:       func() daterange.Day { return daterange.Today(time.Now(), cfg.Location) },
		Logger:      logger,
	})
	logger.Info("signal subscribers", "names", bus.Subscribers())

	sealer, err := security.NewSealer(cfg.SessionSecret)
	if err != nil {
		return rt, fmt.Errorf("session sealer: %w", err)
	}
	cookies := &ginserver.SessionCookies{
		Codec:  security.SessionCodec{Sealer: sealer},
		Name:   cfg.SessionCookie,
		Secure: cfg.SessionSecure,
		Logger: logger,
	}
	rt.handlers = ginserver.NewHandlers(rt.app.Commands, rt.app.Queries, cookies, logger)
	return rt, nil
}

// backendPorts picks the rental backend: the in-process one for
// BACKEND_BASE_URL=memory:// or the HTTP client otherwise.
func backendPorts(cfg config.Config, logger *slog.Logger, rt *wiring) (bootstrap.Ports, error) {
	if cfg.MemoryBackend() {
		logger.Warn("using in-memory backend, data is lost on restart")
		b := memory.NewBackend()
		rt.checks = append(rt.checks, obs.Check{Name: "backend", Run: b.Ping})
		return bootstrap.Ports{Rooms: b, Blocks: b, Payments: b, Auth: b}, nil
	}
	client, err := backendapi.New(backendapi.Options{
		BaseURL: cfg.BackendBaseURL,
		Timeout: cfg.BackendTimeout,
		RPS:     cfg.BackendRPS,
		Burst:   cfg.BackendBurst,
		Logger:  logger,
	})
	if err != nil {
		return bootstrap.Ports{}, err
	}
	rt.checks = append(rt.checks, obs.Check{Name: "backend", Run: client.Ping})
	return bootstrap.Ports{Rooms: client, Blocks: client, Payments: client, Auth: client}, nil
}

// wireKafka records local data changes in the outbox, publishes them, and
// replays other instances' changes onto the signal bus.
func wireKafka(ctx context.Context, cfg config.Config, logger *slog.Logger, db *mongostore.Client, bus *signals.Bus, rt *wiring) error {
	self := "app://roomfront/" + cfg.InstanceID
	topic := cfg.KafkaTopicPrefix + dataChangedTopic

	var (
		box   appoutbox.Outbox
		queue infraoutbox.Queue
		seen  kafka.Inbox
	)
	if db != nil {
		store, err := infraoutbox.NewStore(ctx, db.DB)
		if err != nil {
			return fmt.Errorf("outbox store: %w", err)
		}
		box, queue = store, store
		in, err := inbox.NewStore(ctx, db.DB, cfg.KafkaGroupID, 24*time.Hour)
		if err != nil {
			return fmt.Errorf("inbox store: %w", err)
		}
		seen = in
	} else {
		store := memory.NewOutbox(0)
		box, queue = store, store
		seen = memory.NewInbox(24 * time.Hour)
	}
	bus.Subscribe("outbox", appoutbox.DataChangedRecorder(box, appoutbox.JSONEventEncoder{Source: self}))

	producer, err := kafka.NewProducer(cfg.KafkaBrokers, "roomfront-"+cfg.InstanceID, sarama.NewConfig())
	if err != nil {
		return fmt.Errorf("kafka producer: %w", err)
	}
	rt.closers = append(rt.closers, func(context.Context) error { return producer.Close() })
	worker := &infraoutbox.Worker{
		Queue:    queue,
		Producer: producer,
		Interval: cfg.OutboxPollInterval,
		Topic:    topic,
		Source:   self,
		ID:       cfg.InstanceID,
		Backoff:  cfg.RetryBackoff,
		Logger:   logger,
	}
	rt.background["outbox-worker"] = worker.Run

	handler := &kafka.ChangeHandler{Self: self, Inbox: seen, Signals: bus, Logger: logger}
	consumer, err := kafka.NewConsumer(cfg.KafkaBrokers, cfg.KafkaGroupID, sarama.NewConfig(), handler, logger)
	if err != nil {
		return fmt.Errorf("kafka consumer: %w", err)
	}
	rt.closers = append(rt.closers, func(context.Context) error { return consumer.Close() })
	rt.background["change-consumer"] = func(ctx context.Context) error {
		return consumer.Run(ctx, []string{topic})
	}
	logger.Info("kafka enabled", "brokers", cfg.KafkaBrokers, "topic", topic, "group", cfg.KafkaGroupID)
	return nil
}
