package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"realestate-hub/internal/auth"
	"realestate-hub/internal/handlers"
	"realestate-hub/internal/logging"
	"realestate-hub/internal/media"
	"realestate-hub/internal/ratelimit"
	"realestate-hub/internal/scheduler"
	"realestate-hub/internal/snapshot"
	"realestate-hub/internal/stats"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	if err := a.cfg.Validate(); err != nil {
		return err
	}
	if err := a.db.InitSchema(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps := handlers.Deps{
		Config:    a.cfg,
		DB:        a.db,
		Auth:      auth.NewService(a.db, a.cfg.Auth.JWTSecret, a.cfg.Auth.GetSessionTTL()),
		Snapshots: snapshot.NewService(a.db.DB(), a.logger),
		Limiter: ratelimit.NewRateLimiter(
			a.cfg.RateLimit.RequestsPerMinute,
			a.cfg.RateLimit.RequestsPerHour,
			a.cfg.RateLimit.Enabled,
		),
		Logger: a.logger,
	}
	a.logger.Info("Rate limiter initialized",
		zap.Int("per_minute", a.cfg.RateLimit.RequestsPerMinute),
		zap.Int("per_hour", a.cfg.RateLimit.RequestsPerHour),
		zap.Bool("enabled", a.cfg.RateLimit.Enabled))

	sqlDB, err := a.db.DB().DB()
	if err != nil {
		return err
	}
	deps.Stats = stats.NewService(sqlDB, a.db.DriverName())

	// optional services are assigned only when present so the interfaces stay nil
	client := a.searchClient()
	var indexer scheduler.Indexer
	if client != nil {
		deps.Search = client
		indexer = client
	}
	deps.Cleanup = a.cleanupService(client)

	if uri := a.cfg.Media.MongoURI; uri != "" {
		store, err := media.Connect(ctx, uri, a.cfg.Media.Database)
		if err != nil {
			a.logger.Warn("object storage unavailable; image uploads disabled", zap.Error(err))
		} else {
			deps.Media = store
			defer func() {
				closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = store.Close(closeCtx)
			}()
		}
	}

	sched := scheduler.NewScheduler(a.cfg, a.db, deps.Snapshots, deps.Cleanup, indexer, a.logger)
	if err := sched.Start(); err != nil {
		a.logger.Warn("failed to start scheduler", zap.Error(err))
	}
	defer sched.Stop()
	deps.Scheduler = sched

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(logging.Recovery(a.logger))
	if a.cfg.Logging.LogRequests {
		r.Use(logging.GinLogger(a.logger))
	}
	r.Use(cors.New(cors.Config{
		AllowOrigins:     a.cfg.Server.AllowOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	handlers.RegisterRoutes(r, deps)

	srv := &http.Server{
		Addr:              ":" + a.cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("Server starting", zap.String("port", a.cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	a.logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
