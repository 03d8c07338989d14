// Package event defines the workflow's domain events and the bus that routes them.
//
// Handlers subscribed with Subscribe run synchronously inside the emitting
// unit of work, so a failing handler rolls the whole operation back.
// Observers registered with Observe only see events after the unit of work
// has committed and can never fail it.
package event

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

type Name string

const (
	QuoteApprovedName    Name = "quote.approved"
	QuoteRegeneratedName Name = "quote.regenerated"
	JobCreatedName       Name = "job.created"
	JobCompletedName     Name = "job.completed"
)

type Event interface {
	EventName() Name
}

// QuoteApproved is raised when a quote moves to Approved.
type QuoteApproved struct {
	QuoteID    int64 `json:"quote_id"`
	JobOrderID int64 `json:"job_order_id"`
}

// QuoteRegenerated is raised when a fresh quote replaces the estimate of a job order.
type QuoteRegenerated struct {
	QuoteID        int64           `json:"quote_id"`
	JobOrderID     int64           `json:"job_order_id"`
	EstimatedHours decimal.Decimal `json:"estimated_hours"`
}

// JobCreated is raised when a job is materialised from an approved order.
type JobCreated struct {
	JobID      int64      `json:"job_id"`
	JobOrderID int64      `json:"job_order_id"`
	CrewBossID *uuid.UUID `json:"crew_boss_id,omitempty"`
}

// JobCompleted is raised when a job reaches Completed.
type JobCompleted struct {
	JobID      int64 `json:"job_id"`
	JobOrderID int64 `json:"job_order_id"`
}

func (QuoteApproved) EventName() Name    { return QuoteApprovedName }
func (QuoteRegenerated) EventName() Name { return QuoteRegeneratedName }
func (JobCreated) EventName() Name       { return JobCreatedName }
func (JobCompleted) EventName() Name     { return JobCompletedName }

type Handler func(ctx context.Context, e Event) error

// Observer receives committed events.
type Observer interface {
	Notify(ctx context.Context, e Event)
}

type Bus struct {
	mu        sync.RWMutex
	handlers  map[Name][]Handler
	observers []Observer
}

func NewBus() *Bus {
	return &Bus{handlers: make(map[Name][]Handler)}
}

func (b *Bus) Subscribe(name Name, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[name] = append(b.handlers[name], h)
}

func (b *Bus) Observe(o Observer) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.observers = append(b.observers, o)
}

// Dispatch runs every handler for e in subscription order and stops at the first error.
func (b *Bus) Dispatch(ctx context.Context, e Event) error {
	b.mu.RLock()
	hs := b.handlers[e.EventName()]
	b.mu.RUnlock()
	for _, h := range hs {
		if err := h(ctx, e); err != nil {
			return err
		}
	}
	return nil
}

// Announce hands committed events to the observers.
func (b *Bus) Announce(ctx context.Context, events ...Event) {
	b.mu.RLock()
	obs := b.observers
	b.mu.RUnlock()
	for _, e := range events {
		log.Debug().Str("event", string(e.EventName())).Msg("event announced")
		for _, o := range obs {
			o.Notify(ctx, e)
		}
	}
}
