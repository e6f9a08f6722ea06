package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"elimufund.com/backend/internal/bootstrap"
	"elimufund.com/backend/internal/config"
	donationRepo "elimufund.com/backend/internal/modules/donation/repository"
	donationService "elimufund.com/backend/internal/modules/donation/service"
	supporterRepo "elimufund.com/backend/internal/modules/supporter/repository"
	"elimufund.com/backend/internal/projection"
	"elimufund.com/backend/internal/server"
	"elimufund.com/backend/pkg/credential"
	"elimufund.com/backend/pkg/database"
	"elimufund.com/backend/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/urfave/cli/v2"
	"gorm.io/gorm"
)

// load reads configuration, installs the default logger and opens the database.
func load() (*config.Config, *gorm.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	slog.SetDefault(logger.New(cfg.AppEnv))

	db, err := database.Connect(database.Options{
		DatabaseURL: cfg.DatabaseURL,
		SQLitePath:  cfg.SQLitePath,
		Debug:       cfg.DBDebug,
	})
	if err != nil {
		return nil, nil, err
	}
	return cfg, db, nil
}

func connectRedis(ctx context.Context, url string) (*redis.Client, error) {
	if url == "" {
		return nil, nil
	}

	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect redis: %w", err)
	}
	return rdb, nil
}

func serve(cctx *cli.Context) error {
	cfg, db, err := load()
	if err != nil {
		return err
	}
	if err := bootstrap.Migrate(db); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	ctx, stop := signal.NotifyContext(cctx.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rdb, err := connectRedis(ctx, cfg.RedisURL)
	if err != nil {
		return err
	}
	if rdb != nil {
		defer rdb.Close()
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	srv, err := server.NewServer(cfg, db, rdb)
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("starting server", slog.String("port", cfg.Port), slog.String("env", cfg.AppEnv))
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

func migrate(cctx *cli.Context) error {
	_, db, err := load()
	if err != nil {
		return err
	}
	if err := bootstrap.Migrate(db); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	slog.Info("migration completed")
	return nil
}

func seedAdmin(cctx *cli.Context) error {
	cfg, db, err := load()
	if err != nil {
		return err
	}
	if err := bootstrap.Migrate(db); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	_, err = bootstrap.SeedAdminUser(cctx.Context, db, credential.NewBcryptHasher(cfg.BcryptCost), bootstrap.AdminSeed{
		Email:    cfg.AdminEmail,
		Username: cfg.AdminUsername,
		Password: cfg.AdminPassword,
	})
	return err
}

func reconcile(cctx *cli.Context) error {
	cfg, db, err := load()
	if err != nil {
		return err
	}

	ledger := donationService.NewDonationService(
		donationRepo.NewDonationRepository(db),
		projection.NewProjector(supporterRepo.NewSupporterRepository(db)),
		nil,
		donationService.Policy{AllowOverfunding: cfg.AllowOverfunding, CancelWindow: cfg.CancelWindow, Now: time.Now},
	)

	fix := cctx.Bool("fix")
	report, err := ledger.Reconcile(cctx.Context, fix)
	if err != nil {
		return err
	}

	slog.Info("reconcile finished",
		slog.Int("profiles_checked", report.Checked),
		slog.Int("drifted", len(report.Drifted)),
		slog.Bool("fixed", report.Fixed),
	)
	return nil
}
