package service

import (
	"context"

	"attendance/internal/event"
	"attendance/internal/repository"
)

// emitFunc dispatches an event to the synchronous handlers and remembers it
// for announcement once the transaction commits.
type emitFunc func(e event.Event) error

// runUnit executes fn inside one transaction. Events emitted by fn are handled
// within the same transaction and announced to observers only after commit.
func runUnit(ctx context.Context, tx repository.TxManager, bus *event.Bus, fn func(ctx context.Context, emit emitFunc) error) error {
	var committed []event.Event
	err := tx.WithinTx(ctx, func(ctx context.Context) error {
		committed = committed[:0]
		return fn(ctx, func(e event.Event) error {
			if bus != nil {
				if err := bus.Dispatch(ctx, e); err != nil {
					return err
				}
			}
			committed = append(committed, e)
			return nil
		})
	})
	if err != nil {
		return err
	}
	if bus != nil && len(committed) > 0 {
		bus.Announce(ctx, committed...)
	}
	return nil
}
