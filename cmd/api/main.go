package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/kaanagas/kaanagas-backend/api/routes"
	"github.com/kaanagas/kaanagas-backend/internal/catalog"
	"github.com/kaanagas/kaanagas-backend/internal/deliveries"
	"github.com/kaanagas/kaanagas-backend/internal/notifications"
	"github.com/kaanagas/kaanagas-backend/internal/orders"
	"github.com/kaanagas/kaanagas-backend/internal/payments"
	"github.com/kaanagas/kaanagas-backend/internal/riders"
	"github.com/kaanagas/kaanagas-backend/internal/vendors"
	"github.com/kaanagas/kaanagas-backend/pkg/config"
	"github.com/kaanagas/kaanagas-backend/pkg/db"
	"github.com/kaanagas/kaanagas-backend/pkg/logger"
	"github.com/kaanagas/kaanagas-backend/pkg/metrics"
	"github.com/kaanagas/kaanagas-backend/pkg/migrate"
	"github.com/kaanagas/kaanagas-backend/pkg/mpesa"
	"github.com/kaanagas/kaanagas-backend/pkg/outbox"
	"github.com/kaanagas/kaanagas-backend/pkg/redis"
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

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	mpesaClient, err := mpesa.NewClient(cfg.Mpesa)
	if err != nil {
		logg.Error(context.Background(), "failed to build mpesa client", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	httpMetrics := metrics.NewHTTPMetrics(registry)
	paymentMetrics := metrics.NewPaymentMetrics(registry)

	gormDB := dbClient.DB()
	catalogRepo := catalog.NewRepository(gormDB)
	vendorRepo := vendors.NewRepository(gormDB)
	orderRepo := orders.NewRepository(gormDB)
	paymentRepo := payments.NewRepository(gormDB)
	deliveryRepo := deliveries.NewRepository(gormDB)
	riderRepo := riders.NewRepository(gormDB)
	notificationRepo := notifications.NewRepository(gormDB)
	outboxService := outbox.NewService(outbox.NewRepository(gormDB), logg)

	catalogService, err := catalog.NewService(catalogRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create catalog service", err)
		os.Exit(1)
	}
	vendorService, err := vendors.NewService(vendorRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create vendor service", err)
		os.Exit(1)
	}
	orderService, err := orders.NewService(
		orderRepo,
		dbClient,
		outboxService,
		vendorRepo,
		riderRepo,
		catalogRepo,
		orders.NewNumberSource(redisClient),
		cfg.Marketplace,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create order service", err)
		os.Exit(1)
	}
	paymentService, err := payments.NewService(
		paymentRepo,
		orderRepo,
		dbClient,
		outboxService,
		mpesaClient,
		redisClient,
		paymentMetrics,
		logg,
		cfg.Eventing,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create payment service", err)
		os.Exit(1)
	}
	deliveryService, err := deliveries.NewService(
		deliveryRepo,
		orderRepo,
		vendorRepo,
		riderRepo,
		dbClient,
		outboxService,
		cfg.Marketplace,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create delivery service", err)
		os.Exit(1)
	}
	riderService, err := riders.NewService(riderRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create rider service", err)
		os.Exit(1)
	}
	notificationService, err := notifications.NewService(notificationRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create notification service", err)
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
			catalogService,
			vendorService,
			orderService,
			paymentService,
			deliveryService,
			riderService,
			notificationService,
		),
		ReadHeaderTimeout: 10 * time.Second,
	}

	shutdownCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

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
	case <-shutdownCtx.Done():
		logg.Info(ctx, "shutting down api server")
		graceCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := server.Shutdown(graceCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
			os.Exit(1)
		}
	}

	logg.Info(ctx, "api server stopped")
}
