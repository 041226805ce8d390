package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/wolfman30/venue-booking-agent/cmd/mainconfig"
	"github.com/wolfman30/venue-booking-agent/internal/api/router"
	appconfig "github.com/wolfman30/venue-booking-agent/internal/config"
	"github.com/wolfman30/venue-booking-agent/internal/conversation"
	"github.com/wolfman30/venue-booking-agent/pkg/logging"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	// Load configuration
	cfg := appconfig.Load()

	// Initialize logger
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting venue-booking webhook server",
		"env", cfg.Env,
		"port", cfg.Port,
		"timezone", cfg.LocalTimezone,
	)

	services, err := mainconfig.BuildServices(context.Background(), cfg, logger)
	if err != nil {
		logger.Error("failed to build services", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := services.Close(); err != nil {
			logger.Warn("failed to close services", "error", err)
		}
	}()

	srv := newServer(cfg, newRouter(cfg, services, logger))

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

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		return
	}

	logger.Info("server stopped")
	fmt.Println("Server exited gracefully")
}

func newRouter(cfg *appconfig.Config, services *mainconfig.Services, logger *logging.Logger) http.Handler {
	return router.New(&router.Config{
		Logger:             logger,
		WebhookHandler:     conversation.NewHandler(services.Dispatcher, logger),
		MetricsHandler:     promhttp.HandlerFor(services.Registry, promhttp.HandlerOpts{}),
		WebhookAuthToken:   cfg.WebhookAuthToken,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		RateLimitRPS:       cfg.RateLimitRPS,
		RateLimitBurst:     cfg.RateLimitBurst,
	})
}

func newServer(cfg *appconfig.Config, handler http.Handler) *http.Server {
	// Fulfillment calls time out on the platform side after a few seconds;
	// the write timeout only bounds stuck connections.
	return &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}
