package service

import (
	"context"
	"testing"
	"time"

	"attendance/internal/event"
	"attendance/internal/model"
	"attendance/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingObserver struct{ seen []event.Name }

func (o *recordingObserver) Notify(_ context.Context, e event.Event) {
	o.seen = append(o.seen, e.EventName())
}

func TestJobCreateFromOrder_RequiresApproval(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	client := env.addUser(t, "Carla", model.RoleClient)
	jo := env.addOrder(t, client, model.JobOrderQuoted)

	_, err := env.jobSvc.CreateFromOrder(ctx, jo.ID, nil, uuid.New())
	assert.ErrorIs(t, err, ErrInvalidPrecondition)

	_, err = env.jobSvc.CreateFromOrder(ctx, 404, nil, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestJobCreateFromOrder_CascadesAndAnnounces(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	obs := &recordingObserver{}
	env.bus.Observe(obs)
	client := env.addUser(t, "Carla", model.RoleClient)
	boss := env.addUser(t, "Bruno", model.RoleCrewBoss)
	jo := env.addOrder(t, client, model.JobOrderApproved)

	job, err := env.jobSvc.CreateFromOrder(ctx, jo.ID, &boss.ID, uuid.New())
	require.NoError(t, err)

	assert.Equal(t, "JOB2025-0001", job.JobNumber)
	assert.Equal(t, model.JobAssigned, job.Status)
	assert.True(t, job.IsCrewBoss(boss.ID))
	assert.Equal(t, model.JobOrderInProgress, env.orderStatus(t, jo.ID))
	assert.Equal(t, []event.Name{event.JobCreatedName}, obs.seen)

	_, err = env.jobSvc.CreateFromOrder(ctx, jo.ID, nil, uuid.New())
	assert.ErrorIs(t, err, ErrInvalidPrecondition, "order is InProgress now")
}

func TestJobCreateFromOrder_SecondJobConflicts(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	client := env.addUser(t, "Carla", model.RoleClient)
	jo := env.addOrder(t, client, model.JobOrderApproved)
	_, err := env.jobSvc.CreateFromOrder(ctx, jo.ID, nil, uuid.New())
	require.NoError(t, err)

	// Put the order back to Approved to reach the one-job-per-order check.
	order, err := env.orders.FindByID(ctx, jo.ID)
	require.NoError(t, err)
	order.Status = model.JobOrderApproved
	require.NoError(t, env.orders.Update(ctx, order))

	_, err = env.jobSvc.CreateFromOrder(ctx, jo.ID, nil, uuid.New())
	assert.ErrorIs(t, err, ErrConflict)
}

func TestJobCreateFromOrder_UnknownCrewBoss(t *testing.T) {
	env := newTestEnv(t)
	client := env.addUser(t, "Carla", model.RoleClient)
	jo := env.addOrder(t, client, model.JobOrderApproved)
	ghost := uuid.New()

	_, err := env.jobSvc.CreateFromOrder(context.Background(), jo.ID, &ghost, uuid.New())

	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, model.JobOrderApproved, env.orderStatus(t, jo.ID))
}

func TestJobCreateFromOrder_FailingHandlerRollsBack(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	obs := &recordingObserver{}
	env.bus.Observe(obs)
	env.bus.Subscribe(event.JobCreatedName, func(context.Context, event.Event) error { return errBoom })
	client := env.addUser(t, "Carla", model.RoleClient)
	jo := env.addOrder(t, client, model.JobOrderApproved)

	_, err := env.jobSvc.CreateFromOrder(ctx, jo.ID, nil, uuid.New())
	require.ErrorIs(t, err, errBoom)

	_, err = env.jobs.FindByJobOrderID(ctx, jo.ID)
	assert.Error(t, err, "job must not survive the rollback")
	assert.Equal(t, model.JobOrderApproved, env.orderStatus(t, jo.ID))
	assert.Empty(t, obs.seen)
}

func TestJobUpdateStatus_Lifecycle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	client := env.addUser(t, "Carla", model.RoleClient)
	jo := env.addOrder(t, client, model.JobOrderApproved)
	job, err := env.jobSvc.CreateFromOrder(ctx, jo.ID, nil, uuid.New())
	require.NoError(t, err)

	_, err = env.jobSvc.UpdateStatus(ctx, job.ID, model.JobCompleted, nil)
	assert.ErrorIs(t, err, ErrInvalidPrecondition, "Assigned cannot jump to Completed")

	started, err := env.jobSvc.UpdateStatus(ctx, job.ID, model.JobInProgress, nil)
	require.NoError(t, err)
	require.NotNil(t, started.ActualStartTime)
	assert.Equal(t, testStart, *started.ActualStartTime)

	env.clk.Advance(time.Hour)
	again, err := env.jobSvc.UpdateStatus(ctx, job.ID, model.JobInProgress, nil)
	require.NoError(t, err)
	assert.Equal(t, testStart, *again.ActualStartTime, "start time is set once")

	env.clk.Advance(5 * time.Hour)
	done, err := env.jobSvc.UpdateStatus(ctx, job.ID, model.JobCompleted, strPtr("all good"))
	require.NoError(t, err)
	assert.Equal(t, testStart.Add(6*time.Hour), *done.ActualEndTime)
	assert.Equal(t, "all good", *done.CompletionNotes)
	assert.Equal(t, model.JobOrderCompleted, env.orderStatus(t, jo.ID))

	_, err = env.jobSvc.UpdateStatus(ctx, job.ID, model.JobCancelled, nil)
	assert.ErrorIs(t, err, ErrInvalidPrecondition)
	_, err = env.jobSvc.UpdateStatus(ctx, job.ID, "Paused", nil)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestJobAssignments(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	client := env.addUser(t, "Carla", model.RoleClient)
	boss := env.addUser(t, "Bruno", model.RoleCrewBoss)
	emp := env.addUser(t, "Eva", model.RoleEmployee)
	jo := env.addOrder(t, client, model.JobOrderApproved)
	job, err := env.jobSvc.CreateFromOrder(ctx, jo.ID, &boss.ID, boss.ID)
	require.NoError(t, err)

	a, err := env.jobSvc.AssignEmployee(ctx, job.ID, emp.ID, boss.ID, strPtr("forklift"))
	require.NoError(t, err)
	assert.True(t, a.IsActive)
	assert.Equal(t, emp.ID, a.Employee.ID)

	_, err = env.jobSvc.AssignEmployee(ctx, job.ID, emp.ID, boss.ID, nil)
	assert.ErrorIs(t, err, ErrConflict)
	_, err = env.jobSvc.AssignEmployee(ctx, job.ID, uuid.New(), boss.ID, nil)
	assert.ErrorIs(t, err, ErrNotFound)

	mine, err := env.jobSvc.List(ctx, repository.JobFilter{EmployeeID: &emp.ID})
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	require.NoError(t, env.jobSvc.UnassignEmployee(ctx, job.ID, emp.ID))
	assert.ErrorIs(t, env.jobSvc.UnassignEmployee(ctx, job.ID, emp.ID), ErrNotFound)

	active, err := env.jobSvc.Assignments(ctx, job.ID, false)
	require.NoError(t, err)
	assert.Empty(t, active)
	all, err := env.jobSvc.Assignments(ctx, job.ID, true)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.NotNil(t, all[0].RevokedAt)

	_, err = env.jobSvc.AssignEmployee(ctx, job.ID, emp.ID, boss.ID, nil)
	require.NoError(t, err, "a revoked employee can be assigned again")
	all, err = env.jobSvc.Assignments(ctx, job.ID, true)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	bossJobs, err := env.jobSvc.List(ctx, repository.JobFilter{CrewBossID: &boss.ID})
	require.NoError(t, err)
	assert.Len(t, bossJobs, 1)
}

func TestJobAssign_TerminalJob(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	client := env.addUser(t, "Carla", model.RoleClient)
	emp := env.addUser(t, "Eva", model.RoleEmployee)
	jo := env.addOrder(t, client, model.JobOrderApproved)
	job, err := env.jobSvc.CreateFromOrder(ctx, jo.ID, nil, uuid.New())
	require.NoError(t, err)
	_, err = env.jobSvc.UpdateStatus(ctx, job.ID, model.JobCancelled, nil)
	require.NoError(t, err)

	_, err = env.jobSvc.AssignEmployee(ctx, job.ID, emp.ID, uuid.New(), nil)

	assert.ErrorIs(t, err, ErrInvalidPrecondition)
}
