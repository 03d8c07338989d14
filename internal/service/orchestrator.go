package service

import (
	"context"
	"fmt"

	"attendance/internal/clock"
	"attendance/internal/event"
	"attendance/internal/model"
	"attendance/internal/repository"

	"github.com/rs/zerolog/log"
)

// OrderOrchestrator is the only component that moves a JobOrder's status in
// response to what happens to its quotes and job.
type OrderOrchestrator struct {
	orders repository.JobOrderRepository
	clock  clock.Clock
}

func NewOrderOrchestrator(orders repository.JobOrderRepository, clk clock.Clock) *OrderOrchestrator {
	return &OrderOrchestrator{orders: orders, clock: clk}
}

// Register subscribes the orchestrator to every cascading event.
func (o *OrderOrchestrator) Register(bus *event.Bus) {
	bus.Subscribe(event.QuoteApprovedName, o.handle)
	bus.Subscribe(event.QuoteRegeneratedName, o.handle)
	bus.Subscribe(event.JobCreatedName, o.handle)
	bus.Subscribe(event.JobCompletedName, o.handle)
}

func (o *OrderOrchestrator) handle(ctx context.Context, e event.Event) error {
	switch ev := e.(type) {
	case event.QuoteApproved:
		return o.apply(ctx, ev.JobOrderID, e, func(jo *model.JobOrder) {
			jo.Status = model.JobOrderApproved
		})
	case event.QuoteRegenerated:
		return o.apply(ctx, ev.JobOrderID, e, func(jo *model.JobOrder) {
			jo.Status = model.JobOrderQuoted
			jo.EstimatedHours = ev.EstimatedHours
		})
	case event.JobCreated:
		return o.apply(ctx, ev.JobOrderID, e, func(jo *model.JobOrder) {
			jo.Status = model.JobOrderInProgress
		})
	case event.JobCompleted:
		return o.apply(ctx, ev.JobOrderID, e, func(jo *model.JobOrder) {
			jo.Status = model.JobOrderCompleted
		})
	}
	return fmt.Errorf("orchestrator: unexpected event %s", e.EventName())
}

func (o *OrderOrchestrator) apply(ctx context.Context, jobOrderID int64, e event.Event, mutate func(*model.JobOrder)) error {
	jo, err := o.orders.FindByID(ctx, jobOrderID)
	if err != nil {
		return lookup(err, "job order", jobOrderID)
	}
	from := jo.Status
	mutate(jo)
	jo.UpdatedAt = o.clock.Now()
	if err := o.orders.Update(ctx, jo); err != nil {
		return fmt.Errorf("update job order %d: %w", jobOrderID, err)
	}
	log.Info().
		Str("event", string(e.EventName())).
		Int64("job_order_id", jobOrderID).
		Str("from", string(from)).
		Str("to", string(jo.Status)).
		Msg("job order status cascaded")
	return nil
}
