package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"attendance/internal/clock"
	"attendance/internal/dto"
	"attendance/internal/event"
	"attendance/internal/model"
	"attendance/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// QuoteValidity is how long a new quote stays open. The date is advisory only.
const QuoteValidity = 30 * 24 * time.Hour

type QuoteService interface {
	Create(ctx context.Context, jobOrderID int64, createdBy uuid.UUID, description *string) (*model.Quote, error)
	Get(ctx context.Context, id int64) (*model.Quote, error)
	ListByJobOrder(ctx context.Context, jobOrderID int64) ([]model.Quote, error)
	UpdateStatus(ctx context.Context, id int64, status model.QuoteStatus, clientNotes *string) (*model.Quote, error)
	// GenerateFromJobChanges issues a fresh quote for a re-estimated order. Older quotes are left untouched.
	GenerateFromJobChanges(ctx context.Context, jobOrderID int64, newHours decimal.Decimal, createdBy uuid.UUID) (*model.Quote, error)
	AddLineItem(ctx context.Context, quoteID int64, req dto.AddLineItemRequest) (*model.Quote, error)
	RemoveLineItem(ctx context.Context, quoteID, itemID int64) (*model.Quote, error)
	Delete(ctx context.Context, id int64) error
}

type quoteService struct {
	repo   repository.QuoteRepository
	orders repository.JobOrderRepository
	items  repository.ServiceItemRepository
	rates  RateService
	seq    SequenceService
	tx     repository.TxManager
	bus    *event.Bus
	clock  clock.Clock
}

func NewQuoteService(
	repo repository.QuoteRepository,
	orders repository.JobOrderRepository,
	items repository.ServiceItemRepository,
	rates RateService,
	seq SequenceService,
	tx repository.TxManager,
	bus *event.Bus,
	clk clock.Clock,
) QuoteService {
	return &quoteService{
		repo:   repo,
		orders: orders,
		items:  items,
		rates:  rates,
		seq:    seq,
		tx:     tx,
		bus:    bus,
		clock:  clk,
	}
}

func (s *quoteService) Create(ctx context.Context, jobOrderID int64, createdBy uuid.UUID, description *string) (*model.Quote, error) {
	if _, err := s.orders.FindByID(ctx, jobOrderID); err != nil {
		return nil, lookup(err, "job order", jobOrderID)
	}
	q := s.draft(jobOrderID, createdBy, description)
	if err := s.issue(ctx, q); err != nil {
		return nil, err
	}
	return q, nil
}

func (s *quoteService) draft(jobOrderID int64, createdBy uuid.UUID, description *string) *model.Quote {
	return &model.Quote{
		JobOrderID:      jobOrderID,
		Description:     description,
		Amount:          decimal.Zero,
		ValidUntil:      s.clock.Now().Add(QuoteValidity),
		Status:          model.QuoteDraft,
		CreatedByUserID: createdBy,
	}
}

func (s *quoteService) issue(ctx context.Context, q *model.Quote) error {
	return s.seq.Issue(ctx, KindQuote, func(ctx context.Context, number string) error {
		q.ID = 0
		q.QuoteNumber = number
		return s.repo.Create(ctx, q)
	})
}

func (s *quoteService) Get(ctx context.Context, id int64) (*model.Quote, error) {
	q, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookup(err, "quote", id)
	}
	return q, nil
}

func (s *quoteService) ListByJobOrder(ctx context.Context, jobOrderID int64) ([]model.Quote, error) {
	if _, err := s.orders.FindByID(ctx, jobOrderID); err != nil {
		return nil, lookup(err, "job order", jobOrderID)
	}
	return s.repo.ListByJobOrder(ctx, jobOrderID)
}

func (s *quoteService) UpdateStatus(ctx context.Context, id int64, status model.QuoteStatus, clientNotes *string) (*model.Quote, error) {
	if !status.Valid() {
		return nil, invalid("unknown quote status %q", status)
	}
	var q *model.Quote
	err := runUnit(ctx, s.tx, s.bus, func(ctx context.Context, emit emitFunc) error {
		var err error
		if q, err = s.Get(ctx, id); err != nil {
			return err
		}
		q.Status = status
		if clientNotes != nil {
			q.ClientNotes = clientNotes
		}
		q.UpdatedAt = s.clock.Now()
		if err := s.repo.Update(ctx, q); err != nil {
			return err
		}
		if status == model.QuoteApproved {
			return emit(event.QuoteApproved{QuoteID: q.ID, JobOrderID: q.JobOrderID})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return q, nil
}

func (s *quoteService) GenerateFromJobChanges(ctx context.Context, jobOrderID int64, newHours decimal.Decimal, createdBy uuid.UUID) (*model.Quote, error) {
	if !newHours.IsPositive() {
		return nil, invalid("new estimated hours must be positive")
	}
	var q *model.Quote
	err := runUnit(ctx, s.tx, s.bus, func(ctx context.Context, emit emitFunc) error {
		if _, err := s.orders.FindByID(ctx, jobOrderID); err != nil {
			return lookup(err, "job order", jobOrderID)
		}
		desc := fmt.Sprintf("Revised estimate: %s hours", newHours.StringFixed(2))
		q = s.draft(jobOrderID, createdBy, &desc)
		if err := s.issue(ctx, q); err != nil {
			return err
		}
		return emit(event.QuoteRegenerated{QuoteID: q.ID, JobOrderID: jobOrderID, EstimatedHours: newHours})
	})
	if err != nil {
		return nil, err
	}
	return q, nil
}

func (s *quoteService) AddLineItem(ctx context.Context, quoteID int64, req dto.AddLineItemRequest) (*model.Quote, error) {
	if !req.Quantity.IsPositive() {
		return nil, invalid("quantity must be positive")
	}
	var q *model.Quote
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		if q, err = s.editable(ctx, quoteID); err != nil {
			return err
		}
		li, err := s.price(ctx, req)
		if err != nil {
			return err
		}
		li.QuoteID = q.ID
		li.CreatedAt = s.clock.Now()
		if err := s.repo.AddLineItem(ctx, li); err != nil {
			return err
		}
		q.LineItems = append(q.LineItems, *li)
		return s.saveAmount(ctx, q)
	})
	if err != nil {
		return nil, err
	}
	return q, nil
}

// price resolves unit price and cost: explicit values first, then the
// employee's active rate, then the service item's base values.
func (s *quoteService) price(ctx context.Context, req dto.AddLineItemRequest) (*model.QuoteLineItem, error) {
	li := &model.QuoteLineItem{
		ServiceItemID: req.ServiceItemID,
		Description:   strings.TrimSpace(req.Description),
		Quantity:      req.Quantity,
	}
	if req.EmployeeID != nil {
		id, err := uuid.Parse(*req.EmployeeID)
		if err != nil {
			return nil, invalid("employee_id: %v", err)
		}
		li.EmployeeID = &id
	}

	var unitPrice, cost *decimal.Decimal
	unitPrice, cost = req.UnitPrice, req.Cost

	if req.ServiceItemID != nil {
		item, err := s.items.FindByID(ctx, *req.ServiceItemID)
		if err != nil {
			return nil, lookup(err, "service item", *req.ServiceItemID)
		}
		if li.Description == "" {
			li.Description = item.Name
		}
		if li.EmployeeID != nil && (unitPrice == nil || cost == nil) {
			rate, err := s.rates.GetActiveRate(ctx, *li.EmployeeID, item.ID, nil)
			switch {
			case err == nil:
				unitPrice = coalesce(unitPrice, rate.ChargeRate)
				cost = coalesce(cost, rate.CostRate)
			case !isErrNotFound(err):
				return nil, err
			}
		}
		unitPrice = coalesce(unitPrice, item.BasePrice)
		cost = coalesce(cost, item.BaseCost)
	}

	if unitPrice == nil {
		return nil, invalid("unit_price is required when no service item is given")
	}
	if li.Description == "" {
		return nil, invalid("description is required when no service item is given")
	}
	if unitPrice.IsNegative() || (cost != nil && cost.IsNegative()) {
		return nil, invalid("prices must not be negative")
	}
	li.UnitPrice = *unitPrice
	if cost != nil {
		li.Cost = *cost
	}
	li.ComputeTotals()
	return li, nil
}

func coalesce(v *decimal.Decimal, fallback decimal.Decimal) *decimal.Decimal {
	if v != nil {
		return v
	}
	return &fallback
}

func (s *quoteService) RemoveLineItem(ctx context.Context, quoteID, itemID int64) (*model.Quote, error) {
	var q *model.Quote
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		if q, err = s.editable(ctx, quoteID); err != nil {
			return err
		}
		idx := -1
		for i, li := range q.LineItems {
			if li.ID == itemID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return notFound("line item %d on quote %d", itemID, quoteID)
		}
		if err := s.repo.DeleteLineItem(ctx, quoteID, itemID); err != nil {
			return lookup(err, "line item", itemID)
		}
		q.LineItems = append(q.LineItems[:idx], q.LineItems[idx+1:]...)
		return s.saveAmount(ctx, q)
	})
	if err != nil {
		return nil, err
	}
	return q, nil
}

func (s *quoteService) editable(ctx context.Context, id int64) (*model.Quote, error) {
	q, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if q.Status != model.QuoteDraft {
		return nil, precondition("quote %s is %s; line items can only change while Draft", q.QuoteNumber, q.Status)
	}
	return q, nil
}

func (s *quoteService) saveAmount(ctx context.Context, q *model.Quote) error {
	q.RecalculateAmount()
	q.UpdatedAt = s.clock.Now()
	return s.repo.Update(ctx, q)
}

func (s *quoteService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return lookup(err, "quote", id)
	}
	return nil
}
