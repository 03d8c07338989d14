package dto

import (
	"attendance/internal/model"

	"github.com/shopspring/decimal"
)

type ServiceItemRequest struct {
	Name        string          `json:"name" validate:"required,max=100"`
	Type        string          `json:"type" validate:"required,oneof=ShiftHours NormalTime Overtime DoubleTime Equipment Other"`
	Description *string         `json:"description"`
	BasePrice   decimal.Decimal `json:"base_price" validate:"min=0"`
	BaseCost    decimal.Decimal `json:"base_cost" validate:"min=0"`
	ShiftHours  *int            `json:"shift_hours" validate:"omitempty,oneof=6 8 10 12 14 16"`
}

// ServiceItemResponse omits BaseCost; cost is only serialised for managers.
type ServiceItemResponse struct {
	ID          int64            `json:"id"`
	Name        string           `json:"name"`
	Type        string           `json:"type"`
	Description *string          `json:"description,omitempty"`
	BasePrice   decimal.Decimal  `json:"base_price"`
	BaseCost    *decimal.Decimal `json:"base_cost,omitempty"`
	ShiftHours  *int             `json:"shift_hours,omitempty"`
	IsActive    bool             `json:"is_active"`
}

func NewServiceItemResponse(s *model.ServiceItem, withCost bool) ServiceItemResponse {
	resp := ServiceItemResponse{
		ID:          s.ID,
		Name:        s.Name,
		Type:        string(s.Type),
		Description: s.Description,
		BasePrice:   s.BasePrice,
		ShiftHours:  s.ShiftHours,
		IsActive:    s.IsActive,
	}
	if withCost {
		cost := s.BaseCost
		resp.BaseCost = &cost
	}
	return resp
}
