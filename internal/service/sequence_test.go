package service

import (
	"context"
	"testing"
	"time"

	"attendance/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestDocumentKind_Format(t *testing.T) {
	assert.Equal(t, "JO2025-0001", KindJobOrder.Format(2025, 1))
	assert.Equal(t, "Q2025-0042", KindQuote.Format(2025, 42))
	assert.Equal(t, "INV2026-12345", KindInvoice.Format(2026, 12345))
	assert.Equal(t, "EMP20250007", KindEmployee.Format(2025, 7))
}

func TestDocumentKind_ParseSequence(t *testing.T) {
	assert.Equal(t, 17, KindJob.ParseSequence(2025, "JOB2025-0017"))
	assert.Equal(t, 3, KindEmployee.ParseSequence(2025, "EMP20250003"))
	assert.Equal(t, 0, KindEmployee.ParseSequence(2025, "EMP20240003"))
	assert.Equal(t, 0, KindQuote.ParseSequence(2025, "garbage"))
	assert.Equal(t, 0, KindQuote.ParseSequence(2025, ""))
}

func TestSequence_ContiguousWithinYear(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		n, err := env.seq.Next(ctx, KindJob)
		require.NoError(t, err)
		assert.Equal(t, KindJob.Format(2025, i), n)
	}
}

func TestSequence_KindsAreIndependent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	q, err := env.seq.Next(ctx, KindQuote)
	require.NoError(t, err)
	inv, err := env.seq.Next(ctx, KindInvoice)
	require.NoError(t, err)

	assert.Equal(t, "Q2025-0001", q)
	assert.Equal(t, "INV2025-0001", inv)
}

func TestSequence_RestartsEachYear(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.clk.Set(time.Date(2025, 12, 31, 23, 0, 0, 0, time.UTC))
	last, err := env.seq.Next(ctx, KindInvoice)
	require.NoError(t, err)
	env.clk.Advance(2 * time.Hour)
	first, err := env.seq.Next(ctx, KindInvoice)
	require.NoError(t, err)

	assert.Equal(t, "INV2025-0001", last)
	assert.Equal(t, "INV2026-0001", first)
}

func TestSequence_IssueResyncsAfterCollision(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	client := env.addUser(t, "Carla", model.RoleClient)
	jo := env.addOrder(t, client, model.JobOrderPending)

	// Rows imported behind the counter's back.
	for _, n := range []string{"Q2025-0001", "Q2025-0002"} {
		require.NoError(t, env.quotes.Create(ctx, &model.Quote{
			QuoteNumber: n, JobOrderID: jo.ID, Status: model.QuoteDraft, CreatedByUserID: client.ID,
		}))
	}

	q, err := env.quoteSvc.Create(ctx, jo.ID, uuid.New(), nil)
	require.NoError(t, err)
	assert.Equal(t, "Q2025-0003", q.QuoteNumber)

	next, err := env.seq.Next(ctx, KindQuote)
	require.NoError(t, err)
	assert.Equal(t, "Q2025-0004", next)
}

func TestSequence_IssueGivesUpAfterThreeCollisions(t *testing.T) {
	env := newTestEnv(t)
	calls := 0

	err := env.seq.Issue(context.Background(), KindJobOrder, func(context.Context, string) error {
		calls++
		return gorm.ErrDuplicatedKey
	})

	require.ErrorIs(t, err, ErrConflict)
	assert.Equal(t, maxNumberAttempts, calls)
}

func TestSequence_IssuePassesOtherErrorsThrough(t *testing.T) {
	env := newTestEnv(t)

	err := env.seq.Issue(context.Background(), KindJobOrder, func(context.Context, string) error {
		return errBoom
	})

	require.ErrorIs(t, err, errBoom)
	assert.NotErrorIs(t, err, ErrConflict)
}
