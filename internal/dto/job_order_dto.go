package dto

import (
	"time"

	"attendance/internal/model"

	"github.com/shopspring/decimal"
)

type CreateJobOrderRequest struct {
	ClientID       string          `json:"client_id" validate:"required,uuid"`
	EventName      string          `json:"event_name" validate:"required,max=200"`
	SiteName       string          `json:"site_name" validate:"required,max=200"`
	SiteAddress    string          `json:"site_address" validate:"required,max=500"`
	Description    *string         `json:"description"`
	PONumber       *string         `json:"po_number" validate:"omitempty,max=50"`
	StartDate      time.Time       `json:"start_date" validate:"required"`
	EndDate        time.Time       `json:"end_date" validate:"required,gtefield=StartDate"`
	EstimatedHours decimal.Decimal `json:"estimated_hours" validate:"min=0"`
}

type JobOrderResponse struct {
	ID             int64           `json:"id"`
	OrderNumber    string          `json:"order_number"`
	ClientID       string          `json:"client_id"`
	ClientName     string          `json:"client_name,omitempty"`
	EventName      string          `json:"event_name"`
	SiteName       string          `json:"site_name"`
	SiteAddress    string          `json:"site_address"`
	Description    *string         `json:"description,omitempty"`
	PONumber       *string         `json:"po_number,omitempty"`
	StartDate      time.Time       `json:"start_date"`
	EndDate        time.Time       `json:"end_date"`
	EstimatedHours decimal.Decimal `json:"estimated_hours"`
	Status         string          `json:"status"`
	CreatedAt      time.Time       `json:"created_at"`
}

func NewJobOrderResponse(o *model.JobOrder) JobOrderResponse {
	resp := JobOrderResponse{
		ID:             o.ID,
		OrderNumber:    o.OrderNumber,
		ClientID:       o.ClientID.String(),
		EventName:      o.EventName,
		SiteName:       o.SiteName,
		SiteAddress:    o.SiteAddress,
		Description:    o.Description,
		PONumber:       o.PONumber,
		StartDate:      o.StartDate,
		EndDate:        o.EndDate,
		EstimatedHours: o.EstimatedHours,
		Status:         string(o.Status),
		CreatedAt:      o.CreatedAt,
	}
	if o.Client != nil {
		resp.ClientName = o.Client.FullName()
	}
	return resp
}
