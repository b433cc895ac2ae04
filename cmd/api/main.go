package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/lunaetstella/smartstock-backend/api/routes"
	"github.com/lunaetstella/smartstock-backend/internal/alerts"
	"github.com/lunaetstella/smartstock-backend/internal/auth"
	"github.com/lunaetstella/smartstock-backend/internal/loginlogs"
	"github.com/lunaetstella/smartstock-backend/internal/products"
	"github.com/lunaetstella/smartstock-backend/internal/reports"
	"github.com/lunaetstella/smartstock-backend/internal/transactions"
	"github.com/lunaetstella/smartstock-backend/internal/users"
	"github.com/lunaetstella/smartstock-backend/pkg/config"
	"github.com/lunaetstella/smartstock-backend/pkg/db"
	"github.com/lunaetstella/smartstock-backend/pkg/logger"
	"github.com/lunaetstella/smartstock-backend/pkg/mailer"
	"github.com/lunaetstella/smartstock-backend/pkg/metrics"
	"github.com/lunaetstella/smartstock-backend/pkg/migrate"
	"github.com/lunaetstella/smartstock-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, cfg.FeatureFlags.UseSQLite, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	var redisClient *redis.Client
	if cfg.Redis.Enabled() {
		redisClient, err = redis.New(context.Background(), cfg.Redis)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap redis", err)
			os.Exit(1)
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing redis", err)
			}
		}()
	} else {
		logg.Warn(context.Background(), "redis not configured, auth rate limiting disabled")
	}

	registry := prometheus.NewRegistry()
	alertMetrics := metrics.NewAlertMetrics(registry)
	httpMetrics := metrics.NewHTTPMetrics(registry)

	userRepo := users.NewRepository(dbClient.DB())
	loginLogRepo := loginlogs.NewRepository(dbClient.DB())
	productRepo := products.NewRepository(dbClient.DB())
	transactionRepo := transactions.NewRepository(dbClient.DB())

	dispatcher, err := alerts.NewDispatcher(alerts.DispatcherParams{
		Config:  cfg.Alerts,
		Admins:  userRepo,
		Mailer:  mailer.NewSMTP(cfg.SMTP, logg),
		Logger:  logg,
		Metrics: alertMetrics,
		Timeout: cfg.SMTP.SendTimeout,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create alert dispatcher", err)
		os.Exit(1)
	}
	dispatcher.Start()
	defer dispatcher.Close()

	authService, err := auth.NewService(auth.ServiceParams{
		DB:             dbClient,
		UserRepo:       userRepo,
		LoginLogRepo:   loginLogRepo,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	productService, err := products.NewService(products.ServiceParams{Repo: productRepo})
	if err != nil {
		logg.Error(context.Background(), "failed to create product service", err)
		os.Exit(1)
	}

	transactionService, err := transactions.NewService(transactions.ServiceParams{
		DB:          dbClient,
		Repo:        transactionRepo,
		ProductRepo: productRepo,
		Notifier:    dispatcher,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create transaction service", err)
		os.Exit(1)
	}

	reportService, err := reports.NewService(reports.ServiceParams{
		ProductRepo:     productRepo,
		TransactionRepo: transactionRepo,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create report service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			registry,
			httpMetrics,
			authService,
			productService,
			transactionService,
			reportService,
		),
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case sig := <-shutdown:
		ctx = logg.WithField(ctx, "signal", sig.String())
		logg.Info(ctx, "shutting down api server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
		}
	}
}
