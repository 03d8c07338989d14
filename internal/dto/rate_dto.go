package dto

import (
	"time"

	"attendance/internal/model"

	"github.com/shopspring/decimal"
)

type SetRateRequest struct {
	EmployeeID    string          `json:"employee_id" validate:"required,uuid"`
	ServiceItemID int64           `json:"service_item_id" validate:"required,gt=0"`
	PayRate       decimal.Decimal `json:"pay_rate" validate:"min=0"`
	ChargeRate    decimal.Decimal `json:"charge_rate" validate:"min=0"`
	CostRate      decimal.Decimal `json:"cost_rate" validate:"min=0"`
}

type BulkSetRatesRequest struct {
	Rates []SetRateRequest `json:"rates" validate:"required,min=1,dive"`
}

// BulkRatesResponse summarises an all-or-nothing batch.
type BulkRatesResponse struct {
	Success           bool     `json:"success"`
	TotalRecords      int      `json:"total_records"`
	SuccessfulRecords int      `json:"successful_records"`
	FailedRecords     int      `json:"failed_records"`
	Errors            []string `json:"errors"`
	Message           string   `json:"message"`
}

type EmployeeRateResponse struct {
	ID              int64           `json:"id"`
	EmployeeID      string          `json:"employee_id"`
	ServiceItemID   int64           `json:"service_item_id"`
	ServiceItemName string          `json:"service_item_name,omitempty"`
	PayRate         decimal.Decimal `json:"pay_rate"`
	ChargeRate      decimal.Decimal `json:"charge_rate"`
	CostRate        decimal.Decimal `json:"cost_rate"`
	EffectiveDate   time.Time       `json:"effective_date"`
	ExpiryDate      *time.Time      `json:"expiry_date,omitempty"`
	IsActive        bool            `json:"is_active"`
}

func NewEmployeeRateResponse(r *model.EmployeeRate) EmployeeRateResponse {
	resp := EmployeeRateResponse{
		ID:            r.ID,
		EmployeeID:    r.EmployeeID.String(),
		ServiceItemID: r.ServiceItemID,
		PayRate:       r.PayRate,
		ChargeRate:    r.ChargeRate,
		CostRate:      r.CostRate,
		EffectiveDate: r.EffectiveDate,
		ExpiryDate:    r.ExpiryDate,
		IsActive:      r.IsActive,
	}
	if r.ServiceItem != nil {
		resp.ServiceItemName = r.ServiceItem.Name
	}
	return resp
}
