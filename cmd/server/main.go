package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"attendance/internal/clock"
	"attendance/internal/config"
	"attendance/internal/event"
	"attendance/internal/infra"
	"attendance/internal/repository"
	"attendance/internal/router"
	"attendance/internal/worker"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	// Structured logger: pretty in dev, JSON in prod
	if !cfg.IsProduction() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL, cfg.DBMaxOpenConns)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	if err := infra.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("failed to apply migrations")
	}

	rdb, err := infra.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	clk := clock.System{}
	bus := event.NewBus()
	if brokers := cfg.Brokers(); len(brokers) > 0 {
		publisher := infra.NewKafkaPublisher(brokers, cfg.KafkaTopic, clk)
		defer func() { _ = publisher.Close() }()
		bus.Observe(publisher)
		log.Info().Strs("brokers", brokers).Str("topic", cfg.KafkaTopic).Msg("publishing workflow events to kafka")
	}

	// Email delivery is wired here (composition root) so the pool and the
	// retry cron share the breaker reported by /health.
	mailer := infra.NewMailer(cfg)
	smtpCB := infra.NewCircuitBreaker(infra.DefaultCBConfig(), clk)
	dispatcher := worker.NewDispatcher(rdb)
	dlq := worker.NewRedisDLQ(rdb)
	emailLogs := repository.NewEmailLogRepository(db)

	emailWorker := worker.NewEmailWorker(worker.EmailWorkerConfig{
		Logs:   emailLogs,
		Sender: mailer,
		Attacher: worker.NewDocumentAttacher(
			repository.NewQuoteRepository(db),
			repository.NewInvoiceRepository(db),
			cfg.CompanyName, cfg.PDFStoragePath),
		CB:         smtpCB,
		DLQ:        dlq,
		MaxRetries: cfg.EmailMaxRetries,
		Clock:      clk,
	})
	worker.StartWorkerPool(ctx, rdb, map[string]worker.Handler{worker.JobTypeEmail: emailWorker}, cfg.WorkerPoolSize)
	worker.StartRetryCron(ctx, worker.RetryCronConfig{
		Logs:  emailLogs,
		CB:    smtpCB,
		Queue: dispatcher,
		Clock: clk,
	})

	r := router.New(cfg, db, rdb, router.Deps{
		Clock:  clk,
		Bus:    bus,
		SMTPCB: smtpCB,
		Queue:  dispatcher,
		DLQ:    dlq,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Msgf("attendance backend listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server…")
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("forced shutdown")
	}
	log.Info().Msg("server exited")
}
