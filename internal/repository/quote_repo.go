package repository

import (
	"context"

	"attendance/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type QuoteRepository interface {
	Create(ctx context.Context, q *model.Quote) error
	// FindByID preloads the line items and the owning job order.
	FindByID(ctx context.Context, id int64) (*model.Quote, error)
	ListByJobOrder(ctx context.Context, jobOrderID int64) ([]model.Quote, error)
	Update(ctx context.Context, q *model.Quote) error
	Delete(ctx context.Context, id int64) error
	AddLineItem(ctx context.Context, li *model.QuoteLineItem) error
	DeleteLineItem(ctx context.Context, quoteID, itemID int64) error
}

type quoteRepo struct{ db *gorm.DB }

func NewQuoteRepository(db *gorm.DB) QuoteRepository { return &quoteRepo{db: db} }

func (r *quoteRepo) Create(ctx context.Context, q *model.Quote) error {
	return conn(ctx, r.db).Omit(clause.Associations).Create(q).Error
}

func (r *quoteRepo) FindByID(ctx context.Context, id int64) (*model.Quote, error) {
	var q model.Quote
	err := conn(ctx, r.db).
		Preload("LineItems", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("JobOrder").
		First(&q, id).Error
	return &q, err
}

func (r *quoteRepo) ListByJobOrder(ctx context.Context, jobOrderID int64) ([]model.Quote, error) {
	var quotes []model.Quote
	err := conn(ctx, r.db).
		Preload("LineItems", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Where("job_order_id = ?", jobOrderID).
		Order("created_at DESC").
		Find(&quotes).Error
	return quotes, err
}

func (r *quoteRepo) Update(ctx context.Context, q *model.Quote) error {
	return conn(ctx, r.db).Omit(clause.Associations).Save(q).Error
}

// Delete soft-deletes the quote; the row stays for audit.
func (r *quoteRepo) Delete(ctx context.Context, id int64) error {
	res := conn(ctx, r.db).Delete(&model.Quote{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *quoteRepo) AddLineItem(ctx context.Context, li *model.QuoteLineItem) error {
	return conn(ctx, r.db).Omit(clause.Associations).Create(li).Error
}

func (r *quoteRepo) DeleteLineItem(ctx context.Context, quoteID, itemID int64) error {
	res := conn(ctx, r.db).Where("quote_id = ?", quoteID).Delete(&model.QuoteLineItem{}, itemID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
