package repository

import (
	"context"

	"attendance/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// JobFilter narrows List. Both nil means every job.
type JobFilter struct {
	CrewBossID *uuid.UUID
	EmployeeID *uuid.UUID // jobs with an active assignment for this employee
}

type JobRepository interface {
	Create(ctx context.Context, j *model.Job) error
	FindByID(ctx context.Context, id int64) (*model.Job, error)
	FindByJobOrderID(ctx context.Context, jobOrderID int64) (*model.Job, error)
	List(ctx context.Context, f JobFilter) ([]model.Job, error)
	Update(ctx context.Context, j *model.Job) error

	CreateAssignment(ctx context.Context, a *model.JobAssignment) error
	FindActiveAssignment(ctx context.Context, jobID int64, employeeID uuid.UUID) (*model.JobAssignment, error)
	UpdateAssignment(ctx context.Context, a *model.JobAssignment) error
	ListAssignments(ctx context.Context, jobID int64, activeOnly bool) ([]model.JobAssignment, error)
}

type jobRepo struct{ db *gorm.DB }

func NewJobRepository(db *gorm.DB) JobRepository { return &jobRepo{db: db} }

func (r *jobRepo) Create(ctx context.Context, j *model.Job) error {
	return conn(ctx, r.db).Omit(clause.Associations).Create(j).Error
}

func activeAssignments(db *gorm.DB) *gorm.DB {
	return db.Where("is_active = true").Order("assigned_date ASC")
}

func (r *jobRepo) FindByID(ctx context.Context, id int64) (*model.Job, error) {
	var j model.Job
	err := conn(ctx, r.db).
		Preload("JobOrder").
		Preload("Assignments", activeAssignments).
		First(&j, id).Error
	return &j, err
}

func (r *jobRepo) FindByJobOrderID(ctx context.Context, jobOrderID int64) (*model.Job, error) {
	var j model.Job
	err := conn(ctx, r.db).Where("job_order_id = ?", jobOrderID).First(&j).Error
	return &j, err
}

func (r *jobRepo) List(ctx context.Context, f JobFilter) ([]model.Job, error) {
	db := conn(ctx, r.db)
	q := db.Preload("JobOrder").Preload("Assignments", activeAssignments)
	if f.CrewBossID != nil {
		q = q.Where("crew_boss_id = ?", *f.CrewBossID)
	}
	if f.EmployeeID != nil {
		sub := db.Model(&model.JobAssignment{}).Select("job_id").
			Where("employee_id = ? AND is_active = true", *f.EmployeeID)
		q = q.Where("id IN (?)", sub)
	}
	var jobs []model.Job
	err := q.Order("created_at DESC").Find(&jobs).Error
	return jobs, err
}

func (r *jobRepo) Update(ctx context.Context, j *model.Job) error {
	return conn(ctx, r.db).Omit(clause.Associations).Save(j).Error
}

func (r *jobRepo) CreateAssignment(ctx context.Context, a *model.JobAssignment) error {
	return conn(ctx, r.db).Omit(clause.Associations).Create(a).Error
}

func (r *jobRepo) FindActiveAssignment(ctx context.Context, jobID int64, employeeID uuid.UUID) (*model.JobAssignment, error) {
	var a model.JobAssignment
	err := conn(ctx, r.db).
		Where("job_id = ? AND employee_id = ? AND is_active = true", jobID, employeeID).
		First(&a).Error
	return &a, err
}

func (r *jobRepo) UpdateAssignment(ctx context.Context, a *model.JobAssignment) error {
	return conn(ctx, r.db).Omit(clause.Associations).Save(a).Error
}

func (r *jobRepo) ListAssignments(ctx context.Context, jobID int64, activeOnly bool) ([]model.JobAssignment, error) {
	q := conn(ctx, r.db).Preload("Employee").Where("job_id = ?", jobID)
	if activeOnly {
		q = q.Where("is_active = true")
	}
	var out []model.JobAssignment
	err := q.Order("assigned_date ASC").Find(&out).Error
	return out, err
}
