package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"userhub/internal/platform/config"
	"userhub/internal/platform/database"
	"userhub/internal/platform/httpserver"
	"userhub/internal/platform/logger"
	platformredis "userhub/internal/platform/redis"
	"userhub/internal/ratelimit"
	"userhub/internal/storage"
	"userhub/internal/token"
	httptransport "userhub/internal/transport/http"
	"userhub/internal/user/handler"
	"userhub/internal/user/metrics"
	"userhub/internal/user/service"
	"userhub/internal/user/store"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal packages.
func main() {
	log := logger.New()

	cfg, err := config.Load()
	if err != nil {
		log.Error("load config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("initializing userhub", "addr", cfg.Addr)

	// Credential store: Mongo when configured, in-memory for development.
	var users store.Store
	if cfg.Mongo.URI != "" {
		db, disconnect, err := database.ConnectMongo(ctx, cfg.Mongo)
		if err != nil {
			log.Error("connect mongo", "error", err)
			os.Exit(1)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := disconnect(shutdownCtx); err != nil {
				log.Error("mongo disconnect", "error", err)
			}
		}()
		if err := store.EnsureIndexes(ctx, db); err != nil {
			log.Error("ensure mongo indexes", "error", err)
			os.Exit(1)
		}
		users = store.NewMongo(db)
		log.Info("using mongo store", "database", cfg.Mongo.Database)
	} else {
		users = store.NewMemory()
		log.Warn("MONGO_URI not set, using in-memory store")
	}

	// Optional Redis-backed login throttle.
	var limiter *ratelimit.LoginLimiter
	rdb, err := platformredis.New(cfg.Redis)
	if err != nil {
		log.Error("connect redis", "error", err)
		os.Exit(1)
	}
	if rdb != nil {
		defer rdb.Close()
		limiter = ratelimit.NewLoginLimiter(rdb.Client, cfg.Redis.LoginAttempts, cfg.Redis.LoginWindow, log)
		go rdb.ReportPoolStats(ctx, 15*time.Second)
		log.Info("login throttling enabled",
			"max_attempts", cfg.Redis.LoginAttempts,
			"window", cfg.Redis.LoginWindow,
		)
	}

	// Profile image uploads go to S3-compatible storage when a bucket is
	// configured; otherwise uploads are rejected as an upstream failure.
	opts := []service.Option{
		service.WithMetrics(metrics.New()),
		service.WithAdminCredentials(cfg.Admin.Email, cfg.Admin.Password),
	}
	if cfg.Storage.Bucket != "" {
		uploader, err := storage.NewS3(ctx, cfg.Storage)
		if err != nil {
			log.Error("init s3 uploader", "error", err)
			os.Exit(1)
		}
		opts = append(opts, service.WithUploader(uploader))
		log.Info("object storage enabled", "bucket", cfg.Storage.Bucket)
	} else {
		log.Warn("S3_BUCKET not set, profile image uploads disabled")
	}

	tokens := token.NewService(cfg.JWT.SigningKey, cfg.JWT.TokenTTL)
	svc := service.New(users, tokens, log, opts...)
	h := handler.New(svc, log, limiter, cfg.MaxUploadBytes)
	srv := httpserver.New(cfg.Addr, httptransport.NewRouter(h, tokens, log))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting http server", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down server gracefully")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}
