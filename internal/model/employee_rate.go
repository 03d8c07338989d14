package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EmployeeRate is a versioned pay/charge/cost override for one employee and service item.
// At most one row per (EmployeeID, ServiceItemID) is active at any instant.
type EmployeeRate struct {
	ID            int64           `gorm:"primaryKey"`
	EmployeeID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	ServiceItemID int64           `gorm:"not null;index"`
	PayRate       decimal.Decimal `gorm:"type:numeric(14,4);not null"`
	ChargeRate    decimal.Decimal `gorm:"type:numeric(14,4);not null"`
	CostRate      decimal.Decimal `gorm:"type:numeric(14,4);not null"`
	EffectiveDate time.Time       `gorm:"not null"`
	ExpiryDate    *time.Time
	IsActive      bool `gorm:"not null;default:true"`
	CreatedAt     time.Time
	UpdatedAt     time.Time

	ServiceItem *ServiceItem `gorm:"foreignKey:ServiceItemID"`
}

// EffectiveAt reports whether the rate applies at t.
func (r *EmployeeRate) EffectiveAt(t time.Time) bool {
	if !r.IsActive || r.EffectiveDate.After(t) {
		return false
	}
	return r.ExpiryDate == nil || r.ExpiryDate.After(t)
}
