package repository

import (
	"context"
	"time"

	"attendance/internal/model"

	"gorm.io/gorm"
)

type EmailLogRepository interface {
	Create(ctx context.Context, l *model.EmailLog) error
	FindByID(ctx context.Context, id int64) (*model.EmailLog, error)
	Update(ctx context.Context, l *model.EmailLog) error
	// ListRetryable returns failed logs whose next attempt is due.
	ListRetryable(ctx context.Context, now time.Time, limit int) ([]model.EmailLog, error)
}

type emailLogRepo struct{ db *gorm.DB }

func NewEmailLogRepository(db *gorm.DB) EmailLogRepository { return &emailLogRepo{db: db} }

func (r *emailLogRepo) Create(ctx context.Context, l *model.EmailLog) error {
	return conn(ctx, r.db).Create(l).Error
}

func (r *emailLogRepo) FindByID(ctx context.Context, id int64) (*model.EmailLog, error) {
	var l model.EmailLog
	err := conn(ctx, r.db).First(&l, id).Error
	return &l, err
}

func (r *emailLogRepo) Update(ctx context.Context, l *model.EmailLog) error {
	return conn(ctx, r.db).Save(l).Error
}

func (r *emailLogRepo) ListRetryable(ctx context.Context, now time.Time, limit int) ([]model.EmailLog, error) {
	var logs []model.EmailLog
	err := conn(ctx, r.db).
		Where("status = ? AND next_retry_at IS NOT NULL AND next_retry_at <= ?", model.EmailFailed, now).
		Order("next_retry_at ASC").
		Limit(limit).
		Find(&logs).Error
	return logs, err
}
