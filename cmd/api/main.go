package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"

	"github.com/sevenbarberclub/booking/internal/api/router"
	"github.com/sevenbarberclub/booking/internal/app/bootstrap"
	"github.com/sevenbarberclub/booking/internal/booking"
	"github.com/sevenbarberclub/booking/internal/catalog"
	appconfig "github.com/sevenbarberclub/booking/internal/config"
	"github.com/sevenbarberclub/booking/internal/http/handlers"
	"github.com/sevenbarberclub/booking/internal/notify"
	observemetrics "github.com/sevenbarberclub/booking/internal/observability/metrics"
	"github.com/sevenbarberclub/booking/internal/receipts"
	"github.com/sevenbarberclub/booking/pkg/logging"
)

func main() {
	// Load configuration
	cfg := appconfig.Load()

	// Initialize logger
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting booking API server",
		"env", cfg.Env,
		"port", cfg.Port,
		"shop", cfg.ShopName,
	)

	ctx := context.Background()
	handler, redisClient, err := buildHandler(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
	fmt.Println("Server exited gracefully")
}

// setupBookingMetrics builds a private registry with runtime collectors and
// the booking counters.
func receiptRenderer(cfg *appconfig.Config) receipts.Renderer {
	return receipts.Renderer{ShopName: cfg.ShopName, Address: cfg.ShopAddress}
}

func setupBookingMetrics() (http.Handler, *observemetrics.BookingMetrics) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return observemetrics.Handler(reg), observemetrics.NewBookingMetrics(reg)
}

// buildHandler wires config into the HTTP router. The returned Redis client,
// when non-nil, must be closed by the caller.
func buildHandler(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) (http.Handler, *redis.Client, error) {
	cat, err := catalog.LoadFile(cfg.CatalogFile)
	if err != nil {
		return nil, nil, err
	}

	gateway, err := bootstrap.BuildCalendarGateway(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	store, redisClient, err := bootstrap.BuildSessionStore(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	qr, err := bootstrap.BuildPaymentQR(cfg, logger)
	if err != nil {
		closeRedis(redisClient)
		return nil, nil, err
	}

	metricsHandler, bookingMetrics := setupBookingMetrics()
	renderer := notify.DefaultRenderer()

	opts := []booking.Option{
		booking.WithRenderer(renderer),
		booking.WithLinker(notify.WhatsAppLinker{BaseURL: cfg.WhatsAppBaseURL, CountryCode: cfg.WhatsAppCountryCode}),
		booking.WithRecorder(bookingMetrics),
		booking.WithNotifier(bootstrap.BuildNotifier(cfg, renderer, logger)),
	}

	flow, err := booking.NewFlow(booking.Config{
		CalendarID: cfg.CalendarID,
		Timezone:   cfg.CalendarTimezone,
		ShopName:   cfg.ShopName,
	}, cat, gateway, logger, opts...)
	if err != nil {
		closeRedis(redisClient)
		return nil, nil, err
	}

	bookingHandler := handlers.NewBookingHandler(handlers.BookingHandlerConfig{
		Flow:          flow,
		Store:         store,
		QR:            qr,
		Receipts:      receiptRenderer(cfg),
		PublicBaseURL: cfg.PublicBaseURL,
		Logger:        logger,
	})

	r := router.New(&router.Config{
		Logger:             logger,
		Booking:            bookingHandler,
		Index:              handlers.NewIndexHandler(cfg.ShopName, logger),
		MetricsHandler:     metricsHandler,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		RateLimitRPS:       cfg.RateLimitRPS,
		RateLimitBurst:     cfg.RateLimitBurst,
	})
	return r, redisClient, nil
}

func closeRedis(client *redis.Client) {
	if client != nil {
		_ = client.Close()
	}
}
