package service

import (
	"context"
	"strings"

	"attendance/internal/clock"
	"attendance/internal/dto"
	"attendance/internal/model"
	"attendance/internal/repository"

	"github.com/google/uuid"
)

type JobOrderService interface {
	Create(ctx context.Context, req dto.CreateJobOrderRequest) (*model.JobOrder, error)
	Get(ctx context.Context, id int64) (*model.JobOrder, error)
	List(ctx context.Context, f repository.JobOrderFilter) ([]model.JobOrder, error)
	// Cancel is only allowed before work starts (Pending, Quoted or Approved).
	Cancel(ctx context.Context, id int64) (*model.JobOrder, error)
}

type jobOrderService struct {
	repo  repository.JobOrderRepository
	users repository.UserRepository
	seq   SequenceService
	clock clock.Clock
}

func NewJobOrderService(repo repository.JobOrderRepository, users repository.UserRepository, seq SequenceService, clk clock.Clock) JobOrderService {
	return &jobOrderService{repo: repo, users: users, seq: seq, clock: clk}
}

func (s *jobOrderService) Create(ctx context.Context, req dto.CreateJobOrderRequest) (*model.JobOrder, error) {
	clientID, err := uuid.Parse(req.ClientID)
	if err != nil {
		return nil, invalid("client_id: %v", err)
	}
	client, err := s.users.FindByID(ctx, clientID)
	if err != nil {
		return nil, lookup(err, "client", clientID)
	}
	if !client.IsActive {
		return nil, precondition("client %s is inactive", clientID)
	}
	if req.EndDate.Before(req.StartDate) {
		return nil, invalid("end_date must not be before start_date")
	}

	jo := &model.JobOrder{
		ClientID:       clientID,
		EventName:      strings.TrimSpace(req.EventName),
		SiteName:       strings.TrimSpace(req.SiteName),
		SiteAddress:    strings.TrimSpace(req.SiteAddress),
		Description:    req.Description,
		PONumber:       req.PONumber,
		StartDate:      req.StartDate,
		EndDate:        req.EndDate,
		EstimatedHours: req.EstimatedHours,
		Status:         model.JobOrderPending,
	}
	err = s.seq.Issue(ctx, KindJobOrder, func(ctx context.Context, number string) error {
		jo.ID = 0
		jo.OrderNumber = number
		return s.repo.Create(ctx, jo)
	})
	if err != nil {
		return nil, err
	}
	jo.Client = client
	return jo, nil
}

func (s *jobOrderService) Get(ctx context.Context, id int64) (*model.JobOrder, error) {
	jo, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookup(err, "job order", id)
	}
	return jo, nil
}

func (s *jobOrderService) List(ctx context.Context, f repository.JobOrderFilter) ([]model.JobOrder, error) {
	return s.repo.List(ctx, f)
}

func (s *jobOrderService) Cancel(ctx context.Context, id int64) (*model.JobOrder, error) {
	jo, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	switch jo.Status {
	case model.JobOrderPending, model.JobOrderQuoted, model.JobOrderApproved:
	default:
		return nil, precondition("job order %s is %s and can no longer be cancelled", jo.OrderNumber, jo.Status)
	}
	jo.Status = model.JobOrderCancelled
	jo.UpdatedAt = s.clock.Now()
	if err := s.repo.Update(ctx, jo); err != nil {
		return nil, err
	}
	return jo, nil
}
