package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/novaderm/clinic-backend/api/routes"
	"github.com/novaderm/clinic-backend/internal/auth"
	checkoutsvc "github.com/novaderm/clinic-backend/internal/checkout"
	"github.com/novaderm/clinic-backend/internal/lookups"
	"github.com/novaderm/clinic-backend/internal/prescriptions"
	"github.com/novaderm/clinic-backend/internal/products"
	"github.com/novaderm/clinic-backend/internal/users"
	"github.com/novaderm/clinic-backend/pkg/auth/session"
	"github.com/novaderm/clinic-backend/pkg/config"
	"github.com/novaderm/clinic-backend/pkg/db"
	"github.com/novaderm/clinic-backend/pkg/logger"
	"github.com/novaderm/clinic-backend/pkg/metrics"
	"github.com/novaderm/clinic-backend/pkg/migrate"
	"github.com/novaderm/clinic-backend/pkg/redis"
)

const shutdownGrace = 15 * time.Second

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

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
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

	redisClient, err := redis.New(context.Background(), cfg.Redis)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	checkoutMetrics := metrics.NewCheckoutMetrics(registry)

	userRepo := users.NewRepository(dbClient.DB())
	productRepo := products.NewRepository(dbClient.DB())
	prescriptionRepo := prescriptions.NewRepository(dbClient.DB())
	checkoutRepo := checkoutsvc.NewRepository(dbClient.DB())

	authService, err := auth.NewService(userRepo, sessionManager, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}
	userService, err := users.NewService(userRepo, cfg.Password)
	if err != nil {
		logg.Error(context.Background(), "failed to create user service", err)
		os.Exit(1)
	}
	productService, err := products.NewService(productRepo, redisClient, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create product service", err)
		os.Exit(1)
	}
	prescriptionService, err := prescriptions.NewService(prescriptionRepo, userRepo, productRepo, redisClient, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create prescription service", err)
		os.Exit(1)
	}
	checkoutService, err := checkoutsvc.NewService(dbClient, checkoutRepo, redisClient, checkoutMetrics, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create checkout service", err)
		os.Exit(1)
	}
	lookupService, err := lookups.NewService(dbClient.DB())
	if err != nil {
		logg.Error(context.Background(), "failed to create lookup service", err)
		os.Exit(1)
	}

	router := routes.NewRouter(routes.Deps{
		Config:        cfg,
		Logger:        logg,
		DB:            dbClient,
		Redis:         redisClient,
		Sessions:      sessionManager,
		Registry:      registry,
		Auth:          authService,
		Checkout:      checkoutService,
		Prescriptions: prescriptionService,
		Products:      productService,
		Lookups:       lookupService,
		Users:         userService,
	})

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
		Addr:    addr,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case sig := <-sigCh:
		logg.Info(logg.WithField(ctx, "signal", sig.String()), "shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
		}
	}
}
