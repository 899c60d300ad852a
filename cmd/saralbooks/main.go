package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/saralbooks/saralbooks/internal/app"
	"github.com/saralbooks/saralbooks/internal/billing"
	"github.com/saralbooks/saralbooks/internal/ledger"
	"github.com/saralbooks/saralbooks/internal/platform/db"
	"github.com/saralbooks/saralbooks/internal/reports"
	"github.com/saralbooks/saralbooks/internal/sequence"
	"github.com/saralbooks/saralbooks/internal/shared"
	"github.com/saralbooks/saralbooks/jobs"
)

// warmupNotifier enqueues a report-cache refresh whenever a document changes
// the ledger. Failures only cost cache freshness, so they are logged and
// dropped.
type warmupNotifier struct {
	client *jobs.Client
	logger *slog.Logger
}

func (n warmupNotifier) DocumentPosted(ctx context.Context, firmID int64) {
	if _, err := n.client.EnqueueReportWarmup(ctx, jobs.ReportWarmupPayload{FirmID: firmID}); err != nil {
		n.logger.Warn("enqueue report warmup", slog.Any("error", err))
	}
}

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	auditLogger := shared.NewAuditLogger(pool)

	sequenceRepo := sequence.NewRepository(pool)
	sequenceService := sequence.NewService(sequenceRepo)
	sequenceHandler := sequence.NewHandler(logger, sequenceService)

	ledgerRepo := ledger.NewRepository(pool)
	ledgerService := ledger.NewService(ledgerRepo, auditLogger)
	ledgerHandler := ledger.NewHandler(logger, ledgerService)

	jobClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("init job client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()

	billingRepo := billing.NewRepository(pool)
	billingService := billing.NewService(billingRepo, sequenceService, ledgerService, auditLogger)
	billingService.WithNotifier(warmupNotifier{client: jobClient, logger: logger})
	billingHandler := billing.NewHandler(logger, billingService)

	reportsRepo := reports.NewRepository(pool)
	reportsCache := reports.NewCache(redisClient, cfg.ReportCacheTTL)
	reportsService := reports.NewService(reportsRepo, reportsCache)
	reportsHandler := reports.NewHandler(logger, reportsService)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(logger, cfg, app.Handlers{
		Sequence: sequenceHandler,
		Ledger:   ledgerHandler,
		Billing:  billingHandler,
		Reports:  reportsHandler,
		Jobs:     jobHandler,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
