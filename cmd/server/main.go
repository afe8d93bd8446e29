package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/SHXZ7/autofloww/internal/config"
	"github.com/SHXZ7/autofloww/internal/executor"
	"github.com/SHXZ7/autofloww/internal/executor/nodes"
	"github.com/SHXZ7/autofloww/internal/history/memstore"
	"github.com/SHXZ7/autofloww/internal/httpapi"
	"github.com/SHXZ7/autofloww/internal/metrics"
	"github.com/SHXZ7/autofloww/internal/scheduler"
	"github.com/SHXZ7/autofloww/internal/webhookstore"
)

func main() {
	cfg := config.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}))
	slog.SetDefault(logger)

	otel.SetTracerProvider(sdktrace.NewTracerProvider())

	m := metrics.New()
	metricsRegistry := prometheus.NewRegistry()
	if err := m.Register(metricsRegistry); err != nil {
		logger.Error("failed to register metrics", "error", err)
		os.Exit(1)
	}

	registry := executor.NewRegistry()
	nodes.Register(registry, cfg)

	engine := executor.New(registry)
	engine.Metrics = m
	engine.Logger = logger
	if cfg.ForceInMemoryDB {
		engine.History = memstore.New()
	}

	webhooks := webhookstore.New(engine)
	engine.Webhooks = webhooks

	sched := scheduler.New(engine, m, logger)
	defer sched.Stop()
	engine.Scheduler = sched

	runHandler := httpapi.NewHandler(engine, logger)
	webhookHandler := webhookstore.NewHandler(webhooks, logger)
	scheduleHandler := scheduler.NewHandler(sched, webhooks, logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	runHandler.Mount(r)
	webhookHandler.Mount(r)
	scheduleHandler.Mount(r)

	metricsServer := &http.Server{
		Addr:    cfg.MetricsAddr,
		Handler: promhttp.HandlerFor(metricsRegistry, promhttp.HandlerOpts{}),
	}
	go func() {
		logger.Info("starting metrics server", "address", cfg.MetricsAddr)
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("metrics server error", "error", err)
		}
	}()

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("starting autoflow server", "address", cfg.HTTPAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}
	if err := metricsServer.Shutdown(ctx); err != nil {
		logger.Error("metrics server forced to shutdown", "error", err)
	}

	logger.Info("server stopped")
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
