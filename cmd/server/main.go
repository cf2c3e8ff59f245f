package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"formation/internal/audit"
	"formation/internal/formation/cleanup"
	"formation/internal/formation/handler"
	formationmetrics "formation/internal/formation/metrics"
	"formation/internal/formation/service"
	jwttoken "formation/internal/jwt_token"
	"formation/internal/platform/config"
	"formation/internal/platform/httpserver"
	"formation/internal/platform/kafka"
	"formation/internal/platform/logger"
	"formation/internal/platform/metrics"
	"formation/internal/platform/middleware"
	ratelimitmetrics "formation/internal/ratelimit/metrics"
	ratelimit "formation/internal/ratelimit/middleware"
	ratelimitmodels "formation/internal/ratelimit/models"
	"formation/internal/ratelimit/store/bucket"
	httptransport "formation/internal/transport/http"
)

const (
	shutdownTimeout = 15 * time.Second
	auditQueueSize  = 1024
)

// main wires dependencies and owns the process lifecycle. Business logic
// lives in internal/formation.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.FromEnv()
	log := logger.New(cfg.Server.LogFormat, cfg.Server.LogLevel)
	slog.SetDefault(log)

	if err := run(ctx, cfg, log); err != nil {
		log.Error("formation stopped with error", "error", err)
		os.Exit(1)
	}
	log.Info("formation stopped")
}

func run(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	formationMetrics := formationmetrics.New(reg)
	httpMetrics := metrics.New(reg)

	infra, err := buildStores(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer infra.close()

	auditSink, closeAudit := buildAuditSink(ctx, cfg, log)
	defer closeAudit()
	auditQueue := audit.NewQueue(auditQueueSize)
	auditWorker := audit.NewWorker(auditSink, auditQueue, log)

	opts := []service.Option{
		service.WithLogger(log),
		service.WithMetrics(formationMetrics),
		service.WithAuditPublisher(audit.NewPublisher(auditQueue)),
	}
	if infra.tx != nil {
		opts = append(opts, service.WithTxRunner(infra.tx))
	}
	formationService := service.New(infra.applications, infra.drafts, opts...)

	scheduler, err := cleanup.New(formationService, cfg.Drafts.CleanupSchedule, cfg.Drafts.RetentionDays, log)
	if err != nil {
		return err
	}

	routerCfg := httptransport.Config{
		Version:        cfg.Server.Version,
		RequestTimeout: cfg.Server.RequestTimeout,
		Metrics:        httpMetrics,
		Gatherer:       reg,
	}
	if cfg.Admin.SigningKey != "" {
		routerCfg.AdminValidator = adminValidator(cfg.Admin)
	}
	if cfg.Limits.Enabled {
		routerCfg.RateLimiter = rateLimiter(cfg.Limits, infra, reg, log)
	}
	router := httptransport.NewRouter(log, routerCfg, handler.New(formationService, log, cfg.Server.Debug))
	srv := httpserver.New(cfg.Server.Addr, router, cfg.Server.RequestTimeout)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return auditWorker.Run(gctx)
	})
	g.Go(func() error {
		return scheduler.Run(gctx)
	})
	g.Go(func() error {
		log.Info("starting formation",
			"addr", cfg.Server.Addr,
			"env", cfg.Server.Environment,
			"version", cfg.Server.Version,
			"draft_backend", string(cfg.Drafts.Backend),
			"persistent", cfg.Database.URL != "",
			"admin_api", routerCfg.AdminValidator != nil,
			"rate_limited", routerCfg.RateLimiter != nil,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown: %w", err)
		}
		return nil
	})

	return g.Wait()
}

func adminValidator(cfg config.AdminConfig) middleware.AdminTokenValidator {
	return jwttoken.NewJWTServiceAdapter(jwttoken.NewJWTService(cfg.SigningKey, cfg.Issuer, cfg.Audience))
}

// rateLimiter shares budgets across replicas through Redis when it is
// configured.
func rateLimiter(cfg config.RateLimitConfig, infra *storage, reg prometheus.Registerer, log *slog.Logger) *ratelimit.Middleware {
	var store ratelimit.BucketStore = bucket.NewInMemoryBucketStore()
	if infra.redis != nil {
		store = bucket.NewRedisBucketStore(infra.redis.Client)
	}
	return ratelimit.New(store, log,
		ratelimit.WithMetrics(ratelimitmetrics.New(reg)),
		ratelimit.WithLimits(ratelimitmodels.Limits{
			ratelimitmodels.ClassRead:  {Requests: cfg.ReadPerMinute, Window: time.Minute},
			ratelimitmodels.ClassWrite: {Requests: cfg.WritePerMinute, Window: time.Minute},
		}),
	)
}

// buildAuditSink publishes to Kafka when brokers are configured and falls
// back to the log otherwise.
func buildAuditSink(ctx context.Context, cfg config.Config, log *slog.Logger) (audit.Store, func()) {
	producer, err := kafka.NewProducer(cfg.Kafka)
	if err != nil {
		log.Warn("kafka unavailable, audit events will be logged", "error", err)
		return audit.NewLogStore(log), func() {}
	}
	if producer == nil {
		return audit.NewLogStore(log), func() {}
	}
	if err := producer.EnsureTopic(ctx, 1, 1); err != nil {
		log.Warn("could not ensure audit topic", "topic", cfg.Kafka.AuditTopic, "error", err)
	}
	return audit.NewKafkaStore(producer), func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		producer.Close(flushCtx)
	}
}
