package repository

import (
	"context"
	"time"

	"attendance/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TimeEntryRepository interface {
	Create(ctx context.Context, e *model.TimeEntry) error
	FindByID(ctx context.Context, id int64) (*model.TimeEntry, error)
	FindActiveByUser(ctx context.Context, userID uuid.UUID) (*model.TimeEntry, error)
	Update(ctx context.Context, e *model.TimeEntry) error
	// CloseActive writes the clock-out fields of e only while the stored row
	// is still Active. It reports false when another request closed it first.
	CloseActive(ctx context.Context, e *model.TimeEntry) (bool, error)
	// ListByUser returns entries whose ClockInTime is in [from, to), newest first.
	ListByUser(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]model.TimeEntry, error)
}

type timeEntryRepo struct{ db *gorm.DB }

func NewTimeEntryRepository(db *gorm.DB) TimeEntryRepository { return &timeEntryRepo{db: db} }

func (r *timeEntryRepo) Create(ctx context.Context, e *model.TimeEntry) error {
	return conn(ctx, r.db).Create(e).Error
}

func (r *timeEntryRepo) FindByID(ctx context.Context, id int64) (*model.TimeEntry, error) {
	var e model.TimeEntry
	err := conn(ctx, r.db).First(&e, id).Error
	return &e, err
}

func (r *timeEntryRepo) FindActiveByUser(ctx context.Context, userID uuid.UUID) (*model.TimeEntry, error) {
	var e model.TimeEntry
	err := conn(ctx, r.db).
		Where("user_id = ? AND status = ?", userID, model.TimeEntryActive).
		First(&e).Error
	return &e, err
}

func (r *timeEntryRepo) Update(ctx context.Context, e *model.TimeEntry) error {
	return conn(ctx, r.db).Save(e).Error
}

func (r *timeEntryRepo) CloseActive(ctx context.Context, e *model.TimeEntry) (bool, error) {
	res := conn(ctx, r.db).Model(&model.TimeEntry{}).
		Where("id = ? AND status = ?", e.ID, model.TimeEntryActive).
		Updates(map[string]any{
			"clock_out_time": e.ClockOutTime,
			"break_time":     e.BreakTime,
			"total_hours":    e.TotalHours,
			"overtime_hours": e.OvertimeHours,
			"status":         e.Status,
			"notes":          e.Notes,
			"updated_at":     e.UpdatedAt,
		})
	return res.RowsAffected == 1, res.Error
}

func (r *timeEntryRepo) ListByUser(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]model.TimeEntry, error) {
	var entries []model.TimeEntry
	err := conn(ctx, r.db).
		Where("user_id = ? AND clock_in_time >= ? AND clock_in_time < ?", userID, from, to).
		Order("clock_in_time DESC").
		Find(&entries).Error
	return entries, err
}
