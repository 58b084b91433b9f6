// Command stockwatch runs the stock-watching REST service: user accounts
// with JWT authentication, per-user favourite stocks, a nightly quote
// refresh and a daily digest email.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/stockwatch/stockwatch/auth"
	"github.com/stockwatch/stockwatch/auth/jwt"
	"github.com/stockwatch/stockwatch/auth/password"
	"github.com/stockwatch/stockwatch/authz"
	"github.com/stockwatch/stockwatch/config"
	"github.com/stockwatch/stockwatch/database"
	"github.com/stockwatch/stockwatch/jobs"
	"github.com/stockwatch/stockwatch/logger"
	"github.com/stockwatch/stockwatch/mailer"
	"github.com/stockwatch/stockwatch/market"
	"github.com/stockwatch/stockwatch/model"
	"github.com/stockwatch/stockwatch/observability"
	"github.com/stockwatch/stockwatch/server"
	"github.com/stockwatch/stockwatch/server/handlers"
	"github.com/stockwatch/stockwatch/store"
)

// Seed credentials for the initial administrator account, created on
// first start when no admin exists yet.
const (
	adminUsername = "admin"
	adminEmail    = "admin@gmail.com"
	adminPassword = "adminroot"
)

func main() {
	configFile := flag.String("config", "", "path to config file (default: search ./config.yml)")
	flag.Parse()

	if err := run(*configFile); err != nil {
		fmt.Fprintln(os.Stderr, "stockwatch:", err)
		os.Exit(1)
	}
}

func run(configFile string) error {
	opts := config.DefaultLoadOptions()
	if configFile != "" {
		opts.ConfigFile = configFile
	}
	cfg, err := config.Load(opts)
	if err != nil {
		return err
	}

	log := logger.New(cfg.Logging)
	log.Info("Starting stockwatch", map[string]interface{}{
		"version":     cfg.App.Version,
		"environment": cfg.App.Environment,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry, err := observability.Init(ctx, cfg.Observability, observability.ServiceInfo{
		Name:        cfg.App.Name,
		Version:     cfg.App.Version,
		Environment: cfg.App.Environment,
	}, log)
	if err != nil {
		return fmt.Errorf("init telemetry: %w", err)
	}
	defer func() {
		if err := shutdownTelemetry(context.Background()); err != nil {
			log.Warn("Telemetry shutdown failed", map[string]interface{}{"error": err.Error()})
		}
	}()

	metrics, err := observability.NewMetrics()
	if err != nil {
		return fmt.Errorf("init metrics: %w", err)
	}

	db, err := database.NewWithContext(ctx, cfg.Database, log)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Warn("Database close failed", map[string]interface{}{"error": err.Error()})
		}
	}()

	if cfg.Database.AutoMigrate {
		err := db.AutoMigrate(
			&model.User{}, &model.SecurityInfo{},
			&model.StockMeta{}, &model.StockValue{}, &model.FavouriteStock{},
		)
		if err != nil {
			return fmt.Errorf("migrate schema: %w", err)
		}
	}

	users := store.NewUserStore(db, log)
	stocks := store.NewStockStore(db, log)

	hasher, err := password.New(cfg.Auth.Password)
	if err != nil {
		return fmt.Errorf("init password hasher: %w", err)
	}
	tokens, err := jwt.NewService(cfg.Auth.JWT, log)
	if err != nil {
		return fmt.Errorf("init token service: %w", err)
	}
	authSvc, err := auth.NewService(users, hasher, tokens, log)
	if err != nil {
		return fmt.Errorf("init auth service: %w", err)
	}

	adminHash, err := hasher.Hash(adminPassword)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}
	if err := users.EnsureAdmin(ctx, adminUsername, adminEmail, adminHash); err != nil {
		return fmt.Errorf("seed admin account: %w", err)
	}

	marketClient := market.NewClient(cfg.Market, log)
	sender := mailer.NewSMTPSender(cfg.Mail, log)

	refresh := jobs.NewRefreshJob(stocks, marketClient, log)
	digest := jobs.NewDigestJob(users, stocks, sender, log)

	scheduler := jobs.NewScheduler(log, metrics)
	if err := scheduler.Register(cfg.Jobs.RefreshCron, refresh); err != nil {
		return fmt.Errorf("schedule %s: %w", refresh.Name(), err)
	}
	if err := scheduler.Register(cfg.Jobs.DigestCron, digest); err != nil {
		return fmt.Errorf("schedule %s: %w", digest.Name(), err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	srv, err := server.New(cfg.Server, log)
	if err != nil {
		return err
	}
	handlers.Register(srv.Engine(), handlers.Deps{
		Users:   users,
		Stocks:  stocks,
		Auth:    authSvc,
		Policy:  authz.NewPolicy(users),
		Hasher:  hasher,
		Market:  marketClient,
		Refresh: refresh,
		Digest:  digest,
		DB:      db,
		Metrics: metrics,
		CORS:    cfg.Server.CORS,
		Log:     log,
	})

	if err := srv.Start(); err != nil {
		return err
	}

	<-ctx.Done()
	log.Info("Shutdown signal received")

	if err := srv.Stop(context.Background()); err != nil {
		return fmt.Errorf("stop server: %w", err)
	}
	log.Info("Stockwatch stopped")
	return nil
}
