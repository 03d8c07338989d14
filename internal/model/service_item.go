package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type ServiceItemType string

const (
	ServiceShiftHours ServiceItemType = "ShiftHours"
	ServiceNormalTime ServiceItemType = "NormalTime"
	ServiceOvertime   ServiceItemType = "Overtime"
	ServiceDoubleTime ServiceItemType = "DoubleTime"
	ServiceEquipment  ServiceItemType = "Equipment"
	ServiceOther      ServiceItemType = "Other"
)

func (t ServiceItemType) Valid() bool {
	switch t {
	case ServiceShiftHours, ServiceNormalTime, ServiceOvertime, ServiceDoubleTime, ServiceEquipment, ServiceOther:
		return true
	}
	return false
}

// ValidShiftHours are the shift lengths a ShiftHours item may carry.
var ValidShiftHours = []int{6, 8, 10, 12, 14, 16}

// ServiceItem is a billable unit type ("8 Hour Shift", "Overtime") with base price and cost.
type ServiceItem struct {
	ID          int64           `gorm:"primaryKey"`
	Name        string          `gorm:"type:varchar(100);not null"`
	Type        ServiceItemType `gorm:"type:varchar(20);not null"`
	Description *string         `gorm:"type:text"`
	BasePrice   decimal.Decimal `gorm:"type:numeric(14,4);not null"`
	BaseCost    decimal.Decimal `gorm:"type:numeric(14,4);not null"`
	ShiftHours  *int
	IsActive    bool `gorm:"not null;default:true"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
