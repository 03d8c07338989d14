package worker

// retry_cron.go
// Periodically puts failed emails whose next_retry_at has passed back on the
// queue. Skips the tick entirely while the SMTP circuit breaker is open.

import (
	"context"
	"time"

	"attendance/internal/clock"
	"attendance/internal/infra"
	"attendance/internal/model"
	"attendance/internal/repository"

	"github.com/rs/zerolog/log"
)

const (
	retryTickInterval = 30 * time.Second
	retryBatchSize    = 10
)

// EmailEnqueuer is satisfied by *Dispatcher.
type EmailEnqueuer interface {
	EnqueueEmail(ctx context.Context, payload any) error
}

// RetryCronConfig holds all dependencies for the retry goroutine.
type RetryCronConfig struct {
	Logs  repository.EmailLogRepository
	CB    *infra.CircuitBreaker
	Queue EmailEnqueuer
	Clock clock.Clock
}

// StartRetryCron launches a background goroutine that ticks every 30s.
// It respects the context for graceful shutdown.
func StartRetryCron(ctx context.Context, cfg RetryCronConfig) {
	if cfg.Clock == nil {
		cfg.Clock = clock.System{}
	}
	go func() {
		ticker := time.NewTicker(retryTickInterval)
		defer ticker.Stop()

		log.Info().Msg("retry_cron: started")

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("retry_cron: shutting down")
				return
			case <-ticker.C:
				processRetries(ctx, cfg)
			}
		}
	}()
}

// processRetries returns how many emails were re-enqueued.
func processRetries(ctx context.Context, cfg RetryCronConfig) int {
	if cfg.CB != nil && cfg.CB.State() == infra.CBOpen {
		log.Debug().Msg("retry_cron: circuit breaker is open, skipping tick")
		return 0
	}

	due, err := cfg.Logs.ListRetryable(ctx, cfg.Clock.Now(), retryBatchSize)
	if err != nil {
		log.Error().Err(err).Msg("retry_cron: failed to query retryable emails")
		return 0
	}

	requeued := 0
	for i := range due {
		l := &due[i]
		l.Status = model.EmailPending
		l.NextRetryAt = nil
		l.UpdatedAt = cfg.Clock.Now()
		if err := cfg.Logs.Update(ctx, l); err != nil {
			log.Error().Err(err).Int64("email_log_id", l.ID).Msg("retry_cron: failed to reset email log")
			continue
		}
		if err := cfg.Queue.EnqueueEmail(ctx, EmailJobPayload{EmailLogID: l.ID}); err != nil {
			log.Error().Err(err).Int64("email_log_id", l.ID).Msg("retry_cron: failed to enqueue")
			next := cfg.Clock.Now().Add(computeRetryBackoff(l.RetryCount))
			l.Status = model.EmailFailed
			l.NextRetryAt = &next
			if err := cfg.Logs.Update(ctx, l); err != nil {
				log.Error().Err(err).Int64("email_log_id", l.ID).Msg("retry_cron: email left Pending without a queued job")
			}
			continue
		}
		requeued++
	}
	if requeued > 0 {
		log.Info().Int("count", requeued).Msg("retry_cron: emails re-enqueued")
	}
	return requeued
}
