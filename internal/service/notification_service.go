package service

import (
	"context"
	"fmt"

	"attendance/internal/clock"
	"attendance/internal/model"
	"attendance/internal/repository"
	"attendance/internal/worker"

	"github.com/rs/zerolog/log"
)

// EmailQueue hands email jobs to the worker pool.
type EmailQueue interface {
	EnqueueEmail(ctx context.Context, payload any) error
}

type NotificationService interface {
	// SendQuote records a Pending email to the job order's client and queues it.
	SendQuote(ctx context.Context, quoteID int64) (*model.EmailLog, error)
	SendInvoice(ctx context.Context, invoiceID int64) (*model.EmailLog, error)
}

type notificationService struct {
	logs     repository.EmailLogRepository
	quotes   repository.QuoteRepository
	invoices repository.InvoiceRepository
	users    repository.UserRepository
	queue    EmailQueue
	from     string
	company  string
	clock    clock.Clock
}

func NewNotificationService(
	logs repository.EmailLogRepository,
	quotes repository.QuoteRepository,
	invoices repository.InvoiceRepository,
	users repository.UserRepository,
	queue EmailQueue,
	from, company string,
	clk clock.Clock,
) NotificationService {
	return &notificationService{
		logs:     logs,
		quotes:   quotes,
		invoices: invoices,
		users:    users,
		queue:    queue,
		from:     from,
		company:  company,
		clock:    clk,
	}
}

func (s *notificationService) SendQuote(ctx context.Context, quoteID int64) (*model.EmailLog, error) {
	q, err := s.quotes.FindByID(ctx, quoteID)
	if err != nil {
		return nil, lookup(err, "quote", quoteID)
	}
	if q.JobOrder == nil {
		return nil, notFound("job order %d of quote %s", q.JobOrderID, q.QuoteNumber)
	}
	if len(q.LineItems) == 0 {
		return nil, precondition("quote %s has no line items", q.QuoteNumber)
	}
	client, err := s.client(ctx, q.JobOrder)
	if err != nil {
		return nil, err
	}
	jo := q.JobOrder.ID
	l := &model.EmailLog{
		ToEmail:    client.Email,
		Subject:    fmt.Sprintf("%s quote %s for %s", s.company, q.QuoteNumber, q.JobOrder.EventName),
		Body:       fmt.Sprintf("Dear %s,\n\nPlease find attached quote %s totalling %s, valid until %s.\n\n%s", client.FullName(), q.QuoteNumber, q.Amount.StringFixed(2), q.ValidUntil.Format("2006-01-02"), s.company),
		Type:       model.EmailQuote,
		QuoteID:    &q.ID,
		JobOrderID: &jo,
	}
	return s.queueEmail(ctx, l)
}

func (s *notificationService) SendInvoice(ctx context.Context, invoiceID int64) (*model.EmailLog, error) {
	inv, err := s.invoices.FindByID(ctx, invoiceID)
	if err != nil {
		return nil, lookup(err, "invoice", invoiceID)
	}
	if inv.Status == model.InvoiceCancelled {
		return nil, precondition("invoice %s is cancelled", inv.InvoiceNumber)
	}
	client, err := s.users.FindByID(ctx, inv.ClientID)
	if err != nil {
		return nil, lookup(err, "client", inv.ClientID)
	}
	jo := inv.JobOrderID
	l := &model.EmailLog{
		ToEmail:    client.Email,
		Subject:    fmt.Sprintf("%s invoice %s", s.company, inv.InvoiceNumber),
		Body:       fmt.Sprintf("Dear %s,\n\nPlease find attached invoice %s for %s, due %s.\n\n%s", client.FullName(), inv.InvoiceNumber, inv.TotalAmount.StringFixed(2), inv.DueDate.Format("2006-01-02"), s.company),
		Type:       model.EmailInvoice,
		InvoiceID:  &inv.ID,
		JobOrderID: &jo,
	}
	return s.queueEmail(ctx, l)
}

func (s *notificationService) client(ctx context.Context, jo *model.JobOrder) (*model.User, error) {
	if jo.Client != nil {
		return jo.Client, nil
	}
	u, err := s.users.FindByID(ctx, jo.ClientID)
	if err != nil {
		return nil, lookup(err, "client", jo.ClientID)
	}
	return u, nil
}

func (s *notificationService) queueEmail(ctx context.Context, l *model.EmailLog) (*model.EmailLog, error) {
	now := s.clock.Now()
	l.FromEmail = s.from
	l.Status = model.EmailPending
	l.CreatedAt = now
	l.UpdatedAt = now
	if err := s.logs.Create(ctx, l); err != nil {
		return nil, fmt.Errorf("record email: %w", err)
	}
	if err := s.queue.EnqueueEmail(ctx, worker.EmailJobPayload{EmailLogID: l.ID}); err != nil {
		// The log stays Failed with a due retry so the retry cron picks it up.
		msg := err.Error()
		l.Status = model.EmailFailed
		l.ErrorMessage = &msg
		l.NextRetryAt = &now
		if uerr := s.logs.Update(ctx, l); uerr != nil {
			log.Error().Err(uerr).Int64("email_log_id", l.ID).Msg("failed to mark email for retry")
		}
		log.Warn().Err(err).Int64("email_log_id", l.ID).Msg("email enqueue failed, left for retry")
	}
	return l, nil
}
