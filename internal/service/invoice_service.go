package service

import (
	"context"
	"errors"
	"time"

	"attendance/internal/clock"
	"attendance/internal/model"
	"attendance/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceTaxRate is the flat tax applied to every invoice.
var InvoiceTaxRate = decimal.New(10, -2)

// InvoicePaymentTerm is the gap between invoice date and due date.
const InvoicePaymentTerm = 30 * 24 * time.Hour

type InvoiceService interface {
	// CreateFromQuote is idempotent: when the quote already has an invoice it is
	// returned with created=false.
	CreateFromQuote(ctx context.Context, quoteID int64, createdBy uuid.UUID) (inv *model.Invoice, created bool, err error)
	// IssueFromQuote is the strict form and fails with ErrConflict when the quote
	// was already invoiced.
	IssueFromQuote(ctx context.Context, quoteID int64, createdBy uuid.UUID) (*model.Invoice, error)
	Get(ctx context.Context, id int64) (*model.Invoice, error)
	ListByClient(ctx context.Context, clientID uuid.UUID) ([]model.Invoice, error)
	UpdateStatus(ctx context.Context, id int64, status model.InvoiceStatus) (*model.Invoice, error)
	Delete(ctx context.Context, id int64) error
}

type invoiceService struct {
	repo   repository.InvoiceRepository
	quotes repository.QuoteRepository
	seq    SequenceService
	tx     repository.TxManager
	clock  clock.Clock
}

func NewInvoiceService(repo repository.InvoiceRepository, quotes repository.QuoteRepository, seq SequenceService, tx repository.TxManager, clk clock.Clock) InvoiceService {
	return &invoiceService{repo: repo, quotes: quotes, seq: seq, tx: tx, clock: clk}
}

var errAlreadyInvoiced = errors.New("quote already invoiced")

func (s *invoiceService) CreateFromQuote(ctx context.Context, quoteID int64, createdBy uuid.UUID) (*model.Invoice, bool, error) {
	inv, err := s.createFromQuote(ctx, quoteID, createdBy)
	if errors.Is(err, errAlreadyInvoiced) {
		existing, ferr := s.repo.FindByQuoteID(ctx, quoteID)
		if ferr != nil {
			return nil, false, ferr
		}
		return existing, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return inv, true, nil
}

func (s *invoiceService) IssueFromQuote(ctx context.Context, quoteID int64, createdBy uuid.UUID) (*model.Invoice, error) {
	inv, err := s.createFromQuote(ctx, quoteID, createdBy)
	if errors.Is(err, errAlreadyInvoiced) {
		return nil, conflict("quote %d already has an invoice", quoteID)
	}
	return inv, err
}

// createFromQuote returns errAlreadyInvoiced both when the invoice exists up
// front and when a concurrent caller wins the unique index on quote_id.
func (s *invoiceService) createFromQuote(ctx context.Context, quoteID int64, createdBy uuid.UUID) (*model.Invoice, error) {
	var inv *model.Invoice
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		q, err := s.quotes.FindByID(ctx, quoteID)
		if err != nil {
			return lookup(err, "quote", quoteID)
		}
		if q.Status != model.QuoteApproved {
			return precondition("quote %s is %s, expected %s", q.QuoteNumber, q.Status, model.QuoteApproved)
		}
		if _, err := s.repo.FindByQuoteID(ctx, quoteID); err == nil {
			return errAlreadyInvoiced
		} else if !isNotFound(err) {
			return err
		}
		if q.JobOrder == nil {
			return notFound("job order %d of quote %s", q.JobOrderID, q.QuoteNumber)
		}

		now := s.clock.Now()
		tax := q.Amount.Mul(InvoiceTaxRate)
		qid := q.ID
		inv = &model.Invoice{
			QuoteID:         &qid,
			JobOrderID:      q.JobOrderID,
			ClientID:        q.JobOrder.ClientID,
			SubTotal:        q.Amount,
			TaxAmount:       tax,
			TotalAmount:     q.Amount.Add(tax),
			InvoiceDate:     now,
			DueDate:         now.Add(InvoicePaymentTerm),
			Status:          model.InvoiceDraft,
			CreatedByUserID: createdBy,
		}
		for _, li := range q.LineItems {
			inv.LineItems = append(inv.LineItems, model.InvoiceLineItem{
				ServiceItemID: li.ServiceItemID,
				Description:   li.Description,
				Quantity:      li.Quantity,
				UnitPrice:     li.UnitPrice,
				TotalPrice:    li.TotalPrice,
			})
		}

		return s.seq.Issue(ctx, KindInvoice, func(ctx context.Context, number string) error {
			inv.ID = 0
			for i := range inv.LineItems {
				inv.LineItems[i].ID = 0
				inv.LineItems[i].InvoiceID = 0
			}
			inv.InvoiceNumber = number
			return s.repo.Create(ctx, inv)
		})
	})
	if err == nil {
		return inv, nil
	}
	// The sequence retries on any unique violation; when the losing write was on
	// quote_id the invoice now exists and the retries surface as a conflict.
	if errors.Is(err, ErrConflict) {
		if _, ferr := s.repo.FindByQuoteID(ctx, quoteID); ferr == nil {
			return nil, errAlreadyInvoiced
		}
	}
	return nil, err
}

func (s *invoiceService) Get(ctx context.Context, id int64) (*model.Invoice, error) {
	inv, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookup(err, "invoice", id)
	}
	return inv, nil
}

func (s *invoiceService) ListByClient(ctx context.Context, clientID uuid.UUID) ([]model.Invoice, error) {
	return s.repo.ListByClient(ctx, clientID)
}

func (s *invoiceService) UpdateStatus(ctx context.Context, id int64, status model.InvoiceStatus) (*model.Invoice, error) {
	if !status.Valid() {
		return nil, invalid("unknown invoice status %q", status)
	}
	inv, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	inv.Status = status
	inv.UpdatedAt = s.clock.Now()
	if err := s.repo.Update(ctx, inv); err != nil {
		return nil, err
	}
	return inv, nil
}

func (s *invoiceService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return lookup(err, "invoice", id)
	}
	return nil
}
