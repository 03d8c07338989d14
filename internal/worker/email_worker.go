package worker

// email_worker.go
// Delivers the emails recorded in email_logs. Quote and invoice emails carry
// the rendered document as a PDF attachment.

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"attendance/internal/clock"
	"attendance/internal/infra"
	"attendance/internal/model"
	"attendance/internal/repository"

	"github.com/rs/zerolog/log"
)

const (
	DefaultMaxEmailRetries = 5

	baseRetryBackoff = 30 * time.Second
	maxRetryBackoff  = 30 * time.Minute
)

// EmailJobPayload is the job envelope sent to QueueEmail.
type EmailJobPayload struct {
	EmailLogID int64 `json:"email_log_id"`
}

// Sender delivers one message. infra.Mailer satisfies it.
type Sender interface {
	Send(to, subject, body, attachmentPath string) error
}

// Attacher produces the attachment for a log entry, or "" when there is none.
type Attacher interface {
	Attach(ctx context.Context, l *model.EmailLog) (string, error)
}

// computeRetryBackoff doubles from 30s per attempt and caps at 30 minutes.
func computeRetryBackoff(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	d := baseRetryBackoff
	for i := 1; i < attempt; i++ {
		d *= 2
		if d >= maxRetryBackoff {
			return maxRetryBackoff
		}
	}
	return d
}

type EmailWorkerConfig struct {
	Logs       repository.EmailLogRepository
	Sender     Sender
	Attacher   Attacher
	CB         *infra.CircuitBreaker
	DLQ        DeadLetters
	MaxRetries int
	Clock      clock.Clock
}

type EmailWorker struct {
	cfg EmailWorkerConfig
}

func NewEmailWorker(cfg EmailWorkerConfig) *EmailWorker {
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = DefaultMaxEmailRetries
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.System{}
	}
	return &EmailWorker{cfg: cfg}
}

// Process implements Handler.
func (w *EmailWorker) Process(ctx context.Context, raw json.RawMessage) {
	var payload EmailJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("email_worker: invalid payload")
		return
	}
	if err := w.Deliver(ctx, payload.EmailLogID); err != nil {
		log.Error().Err(err).Int64("email_log_id", payload.EmailLogID).Msg("email_worker: delivery failed")
	}
}

// Deliver sends the logged email once and records the outcome on the log.
func (w *EmailWorker) Deliver(ctx context.Context, id int64) error {
	l, err := w.cfg.Logs.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("load email log %d: %w", id, err)
	}
	if l.Status != model.EmailPending {
		log.Debug().Int64("email_log_id", id).Str("status", string(l.Status)).Msg("email_worker: not pending, skipping")
		return nil
	}

	sendErr := w.send(ctx, l)
	now := w.cfg.Clock.Now()
	l.UpdatedAt = now
	if sendErr == nil {
		l.Status = model.EmailSent
		l.SentAt = &now
		l.ErrorMessage = nil
		l.NextRetryAt = nil
		if err := w.cfg.Logs.Update(ctx, l); err != nil {
			return fmt.Errorf("mark email log %d sent: %w", id, err)
		}
		log.Info().Int64("email_log_id", id).Str("to", l.ToEmail).Msg("email_worker: email sent")
		return nil
	}

	msg := sendErr.Error()
	l.RetryCount++
	l.ErrorMessage = &msg
	switch {
	case infra.IsPermanentMailError(sendErr):
		w.deadLetter(ctx, l, "permanent failure: "+msg)
	case l.RetryCount >= w.cfg.MaxRetries:
		w.deadLetter(ctx, l, fmt.Sprintf("max retries (%d) exceeded: %s", w.cfg.MaxRetries, msg))
	default:
		next := now.Add(computeRetryBackoff(l.RetryCount))
		l.Status = model.EmailFailed
		l.NextRetryAt = &next
		log.Warn().
			Int64("email_log_id", id).
			Int("retry_count", l.RetryCount).
			Time("next_retry_at", next).
			Msg("email_worker: send failed, scheduled retry")
	}
	if err := w.cfg.Logs.Update(ctx, l); err != nil {
		return fmt.Errorf("record email failure %d: %w", id, err)
	}
	return sendErr
}

// deadLetter cancels the log; it will not be retried.
func (w *EmailWorker) deadLetter(ctx context.Context, l *model.EmailLog, reason string) {
	l.Status = model.EmailCancelled
	l.NextRetryAt = nil
	log.Warn().Int64("email_log_id", l.ID).Str("reason", reason).Msg("email_worker: giving up on email")
	if w.cfg.DLQ == nil {
		return
	}
	raw, _ := json.Marshal(EmailJobPayload{EmailLogID: l.ID})
	w.cfg.DLQ.Push(ctx, QueueEmail, JobTypeEmail, raw, reason, l.RetryCount)
}

func (w *EmailWorker) send(ctx context.Context, l *model.EmailLog) error {
	var attachment string
	if w.cfg.Attacher != nil {
		var err error
		if attachment, err = w.cfg.Attacher.Attach(ctx, l); err != nil {
			return fmt.Errorf("render attachment: %w", err)
		}
	}
	deliver := func() error { return w.cfg.Sender.Send(l.ToEmail, l.Subject, l.Body, attachment) }
	if w.cfg.CB == nil {
		return deliver()
	}
	return w.cfg.CB.Execute(deliver)
}

// DocumentAttacher renders the quote or invoice an email refers to.
type DocumentAttacher struct {
	quotes      repository.QuoteRepository
	invoices    repository.InvoiceRepository
	company     string
	storagePath string
}

func NewDocumentAttacher(quotes repository.QuoteRepository, invoices repository.InvoiceRepository, company, storagePath string) *DocumentAttacher {
	return &DocumentAttacher{quotes: quotes, invoices: invoices, company: company, storagePath: storagePath}
}

func (a *DocumentAttacher) Attach(ctx context.Context, l *model.EmailLog) (string, error) {
	switch {
	case l.Type == model.EmailQuote && l.QuoteID != nil:
		q, err := a.quotes.FindByID(ctx, *l.QuoteID)
		if err != nil {
			return "", err
		}
		return infra.RenderQuotePDF(q, a.company, a.storagePath)
	case l.Type == model.EmailInvoice && l.InvoiceID != nil:
		inv, err := a.invoices.FindByID(ctx, *l.InvoiceID)
		if err != nil {
			return "", err
		}
		return infra.RenderInvoicePDF(inv, a.company, a.storagePath)
	}
	return "", nil
}
