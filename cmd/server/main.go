package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/cinema-seat-booking/internal/booking"
	"github.com/iliyamo/cinema-seat-booking/internal/config"
	"github.com/iliyamo/cinema-seat-booking/internal/database"
	"github.com/iliyamo/cinema-seat-booking/internal/handler"
	"github.com/iliyamo/cinema-seat-booking/internal/logger"
	"github.com/iliyamo/cinema-seat-booking/internal/middleware"
	"github.com/iliyamo/cinema-seat-booking/internal/queue"
	"github.com/iliyamo/cinema-seat-booking/internal/repository"
	"github.com/iliyamo/cinema-seat-booking/internal/router"
	"github.com/iliyamo/cinema-seat-booking/internal/session"
	"github.com/iliyamo/cinema-seat-booking/internal/showtime"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	log, err := logger.New(logger.Config{
		Level:       cfg.LogLevel,
		Development: cfg.Development(),
		ServiceName: "cinema-seat-booking",
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(ctx, cfg.DB)
	if err != nil {
		return err
	}
	defer db.Close()

	checks := map[string]handler.Check{"mysql": db.PingContext}

	var store session.Store
	rdb, err := config.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		log.Warn("redis unavailable; using in-memory selections, no caching or rate limiting", zap.Error(err))
		store = session.NewMemoryStore()
	} else {
		defer rdb.Close()
		store = session.NewRedisStore(rdb, "selection", cfg.SelectionTTL)
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}

	showtimes := showtime.NewCachedSource(repository.NewShowRepo(db), rdb, "showtime", cfg.ShowtimeCacheTTL, log)
	svc := booking.NewService(booking.Deps{
		Showtimes:   showtimes,
		Selections:  store,
		Orders:      repository.NewReservationRepo(db),
		Publisher:   queue.NewPublisher(cfg.RabbitMQURL, log),
		Invalidator: showtimes,
		Logger:      log.Named("booking"),
	})
	h := handler.NewBookingHandler(svc, log)

	e := router.New(log)
	router.RegisterRoutes(e, handler.Health(checks))
	router.RegisterPublic(e, h, middleware.NewRedisCache(cfg.Cache, rdb, log))
	router.RegisterCustomer(e, h, cfg.JWTSecret, middleware.NewTokenBucket(cfg.RateLimit, rdb, log))

	go func() {
		if err := queue.StartBookingConsumer(ctx, cfg.RabbitMQURL, cfg.BookingLogDir, log); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("booking consumer stopped", zap.Error(err))
		}
	}()

	errCh := make(chan error, 1)
	go func() {
		addr := ":" + cfg.Port
		log.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
