package repository

import (
	"context"

	"attendance/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type JobOrderFilter struct {
	ClientID *uuid.UUID
	Status   *model.JobOrderStatus
}

type JobOrderRepository interface {
	Create(ctx context.Context, o *model.JobOrder) error
	FindByID(ctx context.Context, id int64) (*model.JobOrder, error)
	List(ctx context.Context, f JobOrderFilter) ([]model.JobOrder, error)
	Update(ctx context.Context, o *model.JobOrder) error
}

type jobOrderRepo struct{ db *gorm.DB }

func NewJobOrderRepository(db *gorm.DB) JobOrderRepository { return &jobOrderRepo{db: db} }

func (r *jobOrderRepo) Create(ctx context.Context, o *model.JobOrder) error {
	return conn(ctx, r.db).Omit(clause.Associations).Create(o).Error
}

func (r *jobOrderRepo) FindByID(ctx context.Context, id int64) (*model.JobOrder, error) {
	var o model.JobOrder
	err := conn(ctx, r.db).Preload("Client").First(&o, id).Error
	return &o, err
}

func (r *jobOrderRepo) List(ctx context.Context, f JobOrderFilter) ([]model.JobOrder, error) {
	var orders []model.JobOrder
	q := conn(ctx, r.db)
	if f.ClientID != nil {
		q = q.Where("client_id = ?", *f.ClientID)
	}
	if f.Status != nil {
		q = q.Where("status = ?", *f.Status)
	}
	err := q.Order("created_at DESC").Find(&orders).Error
	return orders, err
}

func (r *jobOrderRepo) Update(ctx context.Context, o *model.JobOrder) error {
	return conn(ctx, r.db).Omit(clause.Associations).Save(o).Error
}
