package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"media-market/internal/backend"
	"media-market/internal/config"
	"media-market/internal/localauth"
	"media-market/internal/logging"
	"media-market/internal/metrics"
	"media-market/internal/midtrans"
	"media-market/internal/migrations"
	"media-market/internal/realtime"
	"media-market/internal/repository"
	"media-market/internal/s3store"
	"media-market/internal/supabase"
)

type payments interface {
	backend.PaymentSessions
	backend.PaymentVerifier
}

// drivers is the set of collaborators picked by configuration.
type drivers struct {
	identity   backend.Identity
	storage    backend.ObjectStorage
	procedures backend.Procedures
	payments   payments
}

func main() {
	cfg, err := config.Load(".")
	if err != nil {
		fmt.Fprintln(os.Stderr, "cannot load config:", err)
		os.Exit(1)
	}
	log := logging.New(cfg.Env, cfg.LogLevel)

	if err := run(cfg, log); err != nil {
		log.Error("server stopped", logging.Err(err))
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *slog.Logger) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	log.Info("starting media market server", "env", cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := repository.Connect(ctx, cfg.DSN)
	if err != nil {
		return fmt.Errorf("cannot connect to database: %w", err)
	}
	defer db.Close()
	if err := migrations.Up(db.DB); err != nil {
		return fmt.Errorf("cannot apply migrations: %w", err)
	}
	store := repository.New(db)
	log.Info("connected to database")

	d, err := buildDrivers(ctx, cfg, store)
	if err != nil {
		return err
	}

	hub := realtime.NewHub(log.With("component", "realtime"))
	go hub.Run(ctx)

	var publisher realtime.Publisher = hub
	if cfg.RealtimeDriver == config.DriverRedis {
		bridge, err := realtime.NewRedisBridge(ctx, cfg.RedisURL, hub, log.With("component", "redis"))
		if err != nil {
			return fmt.Errorf("cannot connect to redis: %w", err)
		}
		defer bridge.Close()
		go func() {
			if err := bridge.Run(ctx, nil); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("redis bridge stopped", logging.Err(err))
			}
		}()
		publisher = bridge
	}

	m := metrics.New()
	r, cleanup := newRouter(cfg, log, store, d, hub, publisher, m)
	defer cleanup()

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", srv.Addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func buildDrivers(ctx context.Context, cfg *config.Config, store *repository.Store) (*drivers, error) {
	var (
		d  drivers
		sb *supabase.Client
	)
	hosted := func() (*supabase.Client, error) {
		if sb != nil {
			return sb, nil
		}
		c, err := supabase.New(cfg.SupabaseURL, cfg.SupabaseKey)
		if err != nil {
			return nil, fmt.Errorf("cannot create supabase client: %w", err)
		}
		sb = c
		return sb, nil
	}

	switch cfg.IdentityProvider {
	case config.DriverLocal:
		d.identity = localauth.New(store, cfg.JWTSecret)
	default:
		c, err := hosted()
		if err != nil {
			return nil, err
		}
		d.identity = c.Identity()
	}

	switch cfg.StorageDriver {
	case config.DriverS3:
		s, err := s3store.New(ctx, s3store.Config{
			Endpoint:      cfg.S3Endpoint,
			Region:        cfg.S3Region,
			AccessKeyID:   cfg.S3AccessKeyID,
			SecretKey:     cfg.S3SecretKey,
			BucketPrefix:  cfg.S3BucketPrefix,
			PublicBaseURL: cfg.S3PublicBaseURL,
		})
		if err != nil {
			return nil, fmt.Errorf("cannot create s3 client: %w", err)
		}
		d.storage = s
	default:
		c, err := hosted()
		if err != nil {
			return nil, err
		}
		d.storage = c.Storage()
	}

	switch cfg.ProceduresDriver {
	case config.DriverSupabase:
		c, err := hosted()
		if err != nil {
			return nil, err
		}
		d.procedures = c.Procedures()
	default:
		d.procedures = store
	}

	switch cfg.PaymentProvider {
	case config.DriverEdge:
		c, err := hosted()
		if err != nil {
			return nil, err
		}
		d.payments = c.Payments()
	default:
		d.payments = midtrans.New(cfg.MidtransServerKey, cfg.MidtransProduction)
	}
	return &d, nil
}
