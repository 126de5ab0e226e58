package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/V4T54L/lead-intake/internal/adapter/api"
	"github.com/V4T54L/lead-intake/internal/adapter/api/handler"
	"github.com/V4T54L/lead-intake/internal/adapter/api/middleware"
	"github.com/V4T54L/lead-intake/internal/adapter/metrics"
	"github.com/V4T54L/lead-intake/internal/adapter/pii"
	"github.com/V4T54L/lead-intake/internal/adapter/repository"
	redisrepo "github.com/V4T54L/lead-intake/internal/adapter/repository/redis"
	"github.com/V4T54L/lead-intake/internal/adapter/repository/seed"
	"github.com/V4T54L/lead-intake/internal/adapter/resume"
	"github.com/V4T54L/lead-intake/internal/pkg/config"
	"github.com/V4T54L/lead-intake/internal/pkg/logger"
	"github.com/V4T54L/lead-intake/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := logger.New(cfg.LogLevel, cfg.LogFormat)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewLeadMetrics(reg)

	// --- Start Metrics Server ---
	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	metricsServer := &http.Server{
		Addr:              cfg.MetricsAddr,
		Handler:           metricsMux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Info("starting metrics server", "addr", metricsServer.Addr)
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", "error", err)
		}
	}()

	// --- Graceful Shutdown Context ---
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	seedLeads, err := seed.Load(cfg.SeedFile)
	if err != nil {
		logger.Error("failed to load seed collection", "error", err, "path", cfg.SeedFile)
		os.Exit(1)
	}

	// --- Redis (shared by the redis store and the event stream) ---
	var redisClient *redis.Client
	if cfg.EventsEnabled || cfg.StoreDriver == config.StoreRedis {
		redisClient, err = redisrepo.NewClient(ctx, cfg.RedisURL)
		if err != nil {
			logger.Error("failed to connect to redis", "error", err)
			os.Exit(1)
		}
		defer redisClient.Close()
	}

	// --- Initialize Store ---
	store, closeStore, err := repository.Open(ctx, cfg, redisClient, seedLeads, logger)
	if err != nil {
		logger.Error("failed to open lead store", "error", err, "driver", cfg.StoreDriver)
		os.Exit(1)
	}
	defer closeStore()
	logger.Info("lead store ready", "driver", cfg.StoreDriver)

	// --- Events ---
	redactor := pii.NewRedactor(cfg.PIIRedactionFields)
	broker := handler.NewSSEBroker(redactor, logger)
	publishers := usecase.Publishers{broker}

	var eventLog *usecase.EventLogUseCase
	if cfg.EventsEnabled {
		publishers = append(publishers, redisrepo.NewEventPublisher(redisClient, cfg.EventsStream, cfg.EventsMaxLen, redactor, logger))
		eventLog = usecase.NewEventLogUseCase(redisrepo.NewEventReader(redisClient, cfg.EventsStream, logger))
		logger.Info("lead events enabled", "stream", cfg.EventsStream)
	}

	// --- Resume Storage ---
	resumes, err := resume.Open(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize resume storage", "error", err, "driver", cfg.ResumeDriver)
		os.Exit(1)
	}

	leads := usecase.NewLeadCollection(store, publishers, m, logger)

	trustedProxies, err := cfg.TrustedProxyPrefixes()
	if err != nil {
		logger.Error("invalid trusted proxies", "error", err)
		os.Exit(1)
	}
	limiter := middleware.NewRateLimiter(cfg.CreateRatePerMinute, cfg.CreateRateBurst, trustedProxies...)
	go limiter.Cleanup(ctx, time.Minute)

	// --- Initialize API Server ---
	router := api.NewRouter(cfg, logger, api.Deps{
		Leads:       leads,
		Resumes:     resumes,
		EventLog:    eventLog,
		Broker:      broker,
		RateLimiter: limiter,
		Metrics:     m,
	})
	apiServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("starting api server", "addr", apiServer.Addr)
		if err := apiServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("api server failed", "error", err)
			stop() // Trigger shutdown on server error
		}
	}()

	// --- Wait for shutdown signal ---
	<-ctx.Done()
	logger.Info("shutting down servers...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancelShutdown()

	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("api server shutdown failed", "error", err)
	}
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("metrics server shutdown failed", "error", err)
	}

	logger.Info("servers shut down gracefully")
}
