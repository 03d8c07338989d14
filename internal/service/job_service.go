package service

import (
	"context"
	"fmt"

	"attendance/internal/clock"
	"attendance/internal/event"
	"attendance/internal/model"
	"attendance/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type JobService interface {
	// CreateFromOrder materialises the single job of an Approved job order.
	CreateFromOrder(ctx context.Context, jobOrderID int64, crewBossID *uuid.UUID, createdBy uuid.UUID) (*model.Job, error)
	Get(ctx context.Context, id int64) (*model.Job, error)
	List(ctx context.Context, f repository.JobFilter) ([]model.Job, error)
	UpdateStatus(ctx context.Context, id int64, status model.JobStatus, notes *string) (*model.Job, error)
	AssignEmployee(ctx context.Context, jobID int64, employeeID, assignedBy uuid.UUID, notes *string) (*model.JobAssignment, error)
	// UnassignEmployee revokes the active assignment. The row is kept.
	UnassignEmployee(ctx context.Context, jobID int64, employeeID uuid.UUID) error
	Assignments(ctx context.Context, jobID int64, includeRevoked bool) ([]model.JobAssignment, error)
}

type jobService struct {
	repo   repository.JobRepository
	orders repository.JobOrderRepository
	users  repository.UserRepository
	seq    SequenceService
	tx     repository.TxManager
	bus    *event.Bus
	clock  clock.Clock
}

func NewJobService(
	repo repository.JobRepository,
	orders repository.JobOrderRepository,
	users repository.UserRepository,
	seq SequenceService,
	tx repository.TxManager,
	bus *event.Bus,
	clk clock.Clock,
) JobService {
	return &jobService{repo: repo, orders: orders, users: users, seq: seq, tx: tx, bus: bus, clock: clk}
}

func (s *jobService) CreateFromOrder(ctx context.Context, jobOrderID int64, crewBossID *uuid.UUID, createdBy uuid.UUID) (*model.Job, error) {
	var job *model.Job
	err := runUnit(ctx, s.tx, s.bus, func(ctx context.Context, emit emitFunc) error {
		jo, err := s.orders.FindByID(ctx, jobOrderID)
		if err != nil {
			return lookup(err, "job order", jobOrderID)
		}
		if jo.Status != model.JobOrderApproved {
			return precondition("job order %s is %s, expected %s", jo.OrderNumber, jo.Status, model.JobOrderApproved)
		}
		if existing, err := s.repo.FindByJobOrderID(ctx, jobOrderID); err == nil {
			return conflict("job order %s already has job %s", jo.OrderNumber, existing.JobNumber)
		} else if !isNotFound(err) {
			return err
		}
		if crewBossID != nil {
			if _, err := s.users.FindByID(ctx, *crewBossID); err != nil {
				return lookup(err, "crew boss", *crewBossID)
			}
		}

		job = &model.Job{
			JobOrderID:      jobOrderID,
			CrewBossID:      crewBossID,
			Status:          model.JobAssigned,
			CreatedByUserID: createdBy,
		}
		err = s.seq.Issue(ctx, KindJob, func(ctx context.Context, number string) error {
			job.ID = 0
			job.JobNumber = number
			return s.repo.Create(ctx, job)
		})
		if err != nil {
			return err
		}
		job.JobOrder = jo
		return emit(event.JobCreated{JobID: job.ID, JobOrderID: jobOrderID, CrewBossID: crewBossID})
	})
	if err != nil {
		return nil, err
	}
	return job, nil
}

func (s *jobService) Get(ctx context.Context, id int64) (*model.Job, error) {
	j, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookup(err, "job", id)
	}
	return j, nil
}

func (s *jobService) List(ctx context.Context, f repository.JobFilter) ([]model.Job, error) {
	return s.repo.List(ctx, f)
}

func (s *jobService) UpdateStatus(ctx context.Context, id int64, status model.JobStatus, notes *string) (*model.Job, error) {
	if !status.Valid() {
		return nil, invalid("unknown job status %q", status)
	}
	var job *model.Job
	err := runUnit(ctx, s.tx, s.bus, func(ctx context.Context, emit emitFunc) error {
		var err error
		if job, err = s.Get(ctx, id); err != nil {
			return err
		}
		if !job.Status.CanTransitionTo(status) {
			return precondition("job %s cannot move from %s to %s", job.JobNumber, job.Status, status)
		}
		now := s.clock.Now()
		job.Status = status
		job.UpdatedAt = now
		switch status {
		case model.JobInProgress:
			if job.ActualStartTime == nil {
				job.ActualStartTime = &now
			}
		case model.JobCompleted:
			job.ActualEndTime = &now
			job.CompletionNotes = notes
		}
		if err := s.repo.Update(ctx, job); err != nil {
			return fmt.Errorf("update job %d: %w", id, err)
		}
		if status == model.JobCompleted {
			return emit(event.JobCompleted{JobID: job.ID, JobOrderID: job.JobOrderID})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return job, nil
}

func (s *jobService) AssignEmployee(ctx context.Context, jobID int64, employeeID, assignedBy uuid.UUID, notes *string) (*model.JobAssignment, error) {
	var a *model.JobAssignment
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		job, err := s.Get(ctx, jobID)
		if err != nil {
			return err
		}
		if job.Status.Terminal() {
			return precondition("job %s is %s", job.JobNumber, job.Status)
		}
		emp, err := s.users.FindByID(ctx, employeeID)
		if err != nil {
			return lookup(err, "employee", employeeID)
		}
		if _, err := s.repo.FindActiveAssignment(ctx, jobID, employeeID); err == nil {
			return conflict("employee %s is already assigned to job %s", emp.EmployeeNumber, job.JobNumber)
		} else if !isNotFound(err) {
			return err
		}
		a = &model.JobAssignment{
			JobID:            jobID,
			EmployeeID:       employeeID,
			AssignedByUserID: assignedBy,
			AssignedDate:     s.clock.Now(),
			Notes:            notes,
			IsActive:         true,
		}
		if err := s.repo.CreateAssignment(ctx, a); err != nil {
			if isDuplicate(err) {
				return conflict("employee %s is already assigned to job %s", emp.EmployeeNumber, job.JobNumber)
			}
			return err
		}
		a.Employee = emp
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Info().Int64("job_id", jobID).Str("employee_id", employeeID.String()).Msg("employee assigned")
	return a, nil
}

func (s *jobService) UnassignEmployee(ctx context.Context, jobID int64, employeeID uuid.UUID) error {
	a, err := s.repo.FindActiveAssignment(ctx, jobID, employeeID)
	if err != nil {
		if isNotFound(err) {
			return notFound("active assignment of %s on job %d", employeeID, jobID)
		}
		return err
	}
	now := s.clock.Now()
	a.IsActive = false
	a.RevokedAt = &now
	a.UpdatedAt = now
	return s.repo.UpdateAssignment(ctx, a)
}

func (s *jobService) Assignments(ctx context.Context, jobID int64, includeRevoked bool) ([]model.JobAssignment, error) {
	if _, err := s.Get(ctx, jobID); err != nil {
		return nil, err
	}
	return s.repo.ListAssignments(ctx, jobID, !includeRevoked)
}
