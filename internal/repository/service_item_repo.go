package repository

import (
	"context"

	"attendance/internal/model"

	"gorm.io/gorm"
)

type ServiceItemRepository interface {
	Create(ctx context.Context, s *model.ServiceItem) error
	FindByID(ctx context.Context, id int64) (*model.ServiceItem, error)
	// List returns items ordered by type, shift hours, then name.
	List(ctx context.Context, activeOnly bool) ([]model.ServiceItem, error)
	ListShiftHours(ctx context.Context) ([]model.ServiceItem, error)
	Update(ctx context.Context, s *model.ServiceItem) error
}

type serviceItemRepo struct{ db *gorm.DB }

func NewServiceItemRepository(db *gorm.DB) ServiceItemRepository { return &serviceItemRepo{db: db} }

func (r *serviceItemRepo) Create(ctx context.Context, s *model.ServiceItem) error {
	return conn(ctx, r.db).Create(s).Error
}

func (r *serviceItemRepo) FindByID(ctx context.Context, id int64) (*model.ServiceItem, error) {
	var s model.ServiceItem
	err := conn(ctx, r.db).First(&s, id).Error
	return &s, err
}

func (r *serviceItemRepo) List(ctx context.Context, activeOnly bool) ([]model.ServiceItem, error) {
	q := conn(ctx, r.db)
	if activeOnly {
		q = q.Where("is_active = true")
	}
	var items []model.ServiceItem
	err := q.Order("type ASC, shift_hours ASC NULLS LAST, name ASC").Find(&items).Error
	return items, err
}

func (r *serviceItemRepo) ListShiftHours(ctx context.Context) ([]model.ServiceItem, error) {
	var items []model.ServiceItem
	err := conn(ctx, r.db).
		Where("is_active = true AND type = ?", model.ServiceShiftHours).
		Order("shift_hours ASC").
		Find(&items).Error
	return items, err
}

func (r *serviceItemRepo) Update(ctx context.Context, s *model.ServiceItem) error {
	return conn(ctx, r.db).Save(s).Error
}
