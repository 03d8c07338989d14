package repository

import (
	"context"
	"time"

	"attendance/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type EmployeeRateRepository interface {
	Create(ctx context.Context, r *model.EmployeeRate) error
	FindByID(ctx context.Context, id int64) (*model.EmployeeRate, error)
	// FindEffective returns the most recent rate in force at asOf.
	FindEffective(ctx context.Context, employeeID uuid.UUID, serviceItemID int64, asOf time.Time) (*model.EmployeeRate, error)
	// ListActive returns the employee's active rates ordered by service item name.
	ListActive(ctx context.Context, employeeID uuid.UUID) ([]model.EmployeeRate, error)
	// Deactivate switches off every active rate for the pair, stamping ExpiryDate=at
	// on those that had not yet expired. Returns the number of rows touched.
	Deactivate(ctx context.Context, employeeID uuid.UUID, serviceItemID int64, at time.Time) (int64, error)
	Update(ctx context.Context, r *model.EmployeeRate) error
}

type employeeRateRepo struct{ db *gorm.DB }

func NewEmployeeRateRepository(db *gorm.DB) EmployeeRateRepository {
	return &employeeRateRepo{db: db}
}

func (r *employeeRateRepo) Create(ctx context.Context, rate *model.EmployeeRate) error {
	return conn(ctx, r.db).Omit(clause.Associations).Create(rate).Error
}

func (r *employeeRateRepo) FindByID(ctx context.Context, id int64) (*model.EmployeeRate, error) {
	var rate model.EmployeeRate
	err := conn(ctx, r.db).Preload("ServiceItem").First(&rate, id).Error
	return &rate, err
}

func (r *employeeRateRepo) FindEffective(ctx context.Context, employeeID uuid.UUID, serviceItemID int64, asOf time.Time) (*model.EmployeeRate, error) {
	var rate model.EmployeeRate
	err := conn(ctx, r.db).
		Preload("ServiceItem").
		Where("employee_id = ? AND service_item_id = ? AND is_active = true", employeeID, serviceItemID).
		Where("effective_date <= ?", asOf).
		Where("expiry_date IS NULL OR expiry_date > ?", asOf).
		Order("effective_date DESC").
		First(&rate).Error
	return &rate, err
}

func (r *employeeRateRepo) ListActive(ctx context.Context, employeeID uuid.UUID) ([]model.EmployeeRate, error) {
	var rates []model.EmployeeRate
	err := conn(ctx, r.db).
		Joins("ServiceItem").
		Where("employee_rates.employee_id = ? AND employee_rates.is_active = true", employeeID).
		Order(`"ServiceItem"."name" ASC`).
		Find(&rates).Error
	return rates, err
}

func (r *employeeRateRepo) Deactivate(ctx context.Context, employeeID uuid.UUID, serviceItemID int64, at time.Time) (int64, error) {
	res := conn(ctx, r.db).Model(&model.EmployeeRate{}).
		Where("employee_id = ? AND service_item_id = ? AND is_active = true", employeeID, serviceItemID).
		Updates(map[string]any{
			"is_active":   false,
			"expiry_date": gorm.Expr("CASE WHEN expiry_date IS NULL OR expiry_date > ? THEN ? ELSE expiry_date END", at, at),
			"updated_at":  at,
		})
	return res.RowsAffected, res.Error
}

func (r *employeeRateRepo) Update(ctx context.Context, rate *model.EmployeeRate) error {
	return conn(ctx, r.db).Omit(clause.Associations).Save(rate).Error
}
