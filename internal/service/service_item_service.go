package service

import (
	"context"
	"slices"
	"strings"

	"attendance/internal/clock"
	"attendance/internal/dto"
	"attendance/internal/model"
	"attendance/internal/repository"
)

type ServiceItemService interface {
	Create(ctx context.Context, req dto.ServiceItemRequest) (*model.ServiceItem, error)
	Get(ctx context.Context, id int64) (*model.ServiceItem, error)
	List(ctx context.Context, includeInactive bool) ([]model.ServiceItem, error)
	ListShiftHours(ctx context.Context) ([]model.ServiceItem, error)
	Update(ctx context.Context, id int64, req dto.ServiceItemRequest) (*model.ServiceItem, error)
	Deactivate(ctx context.Context, id int64) error
}

type serviceItemService struct {
	repo  repository.ServiceItemRepository
	clock clock.Clock
}

func NewServiceItemService(repo repository.ServiceItemRepository, clk clock.Clock) ServiceItemService {
	return &serviceItemService{repo: repo, clock: clk}
}

func validateServiceItem(req dto.ServiceItemRequest) error {
	t := model.ServiceItemType(req.Type)
	if !t.Valid() {
		return invalid("unknown service item type %q", req.Type)
	}
	if req.ShiftHours != nil && !slices.Contains(model.ValidShiftHours, *req.ShiftHours) {
		return invalid("shift_hours must be one of %v", model.ValidShiftHours)
	}
	if t == model.ServiceShiftHours && req.ShiftHours == nil {
		return invalid("shift_hours is required for %s items", model.ServiceShiftHours)
	}
	if req.BasePrice.IsNegative() || req.BaseCost.IsNegative() {
		return invalid("base price and cost must not be negative")
	}
	return nil
}

func (s *serviceItemService) Create(ctx context.Context, req dto.ServiceItemRequest) (*model.ServiceItem, error) {
	if err := validateServiceItem(req); err != nil {
		return nil, err
	}
	item := &model.ServiceItem{IsActive: true}
	applyServiceItem(item, req)
	if err := s.repo.Create(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func applyServiceItem(item *model.ServiceItem, req dto.ServiceItemRequest) {
	item.Name = strings.TrimSpace(req.Name)
	item.Type = model.ServiceItemType(req.Type)
	item.Description = req.Description
	item.BasePrice = req.BasePrice
	item.BaseCost = req.BaseCost
	item.ShiftHours = req.ShiftHours
}

func (s *serviceItemService) Get(ctx context.Context, id int64) (*model.ServiceItem, error) {
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookup(err, "service item", id)
	}
	return item, nil
}

func (s *serviceItemService) List(ctx context.Context, includeInactive bool) ([]model.ServiceItem, error) {
	return s.repo.List(ctx, !includeInactive)
}

func (s *serviceItemService) ListShiftHours(ctx context.Context) ([]model.ServiceItem, error) {
	return s.repo.ListShiftHours(ctx)
}

func (s *serviceItemService) Update(ctx context.Context, id int64, req dto.ServiceItemRequest) (*model.ServiceItem, error) {
	if err := validateServiceItem(req); err != nil {
		return nil, err
	}
	item, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	applyServiceItem(item, req)
	item.UpdatedAt = s.clock.Now()
	if err := s.repo.Update(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *serviceItemService) Deactivate(ctx context.Context, id int64) error {
	item, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	item.IsActive = false
	item.UpdatedAt = s.clock.Now()
	return s.repo.Update(ctx, item)
}
