package dto

import (
	"time"

	"attendance/internal/model"

	"github.com/shopspring/decimal"
)

type CreateQuoteRequest struct {
	JobOrderID  int64   `json:"job_order_id" validate:"required,gt=0"`
	Description *string `json:"description"`
}

type UpdateQuoteStatusRequest struct {
	Status      string  `json:"status" validate:"required,oneof=Draft Sent Approved Rejected Expired"`
	ClientNotes *string `json:"client_notes"`
}

type GenerateQuoteRequest struct {
	JobOrderID        int64           `json:"job_order_id" validate:"required,gt=0"`
	NewEstimatedHours decimal.Decimal `json:"new_estimated_hours" validate:"gt=0"`
}

// AddLineItemRequest prices a quote line. Unit price and cost fall back to the
// employee's active rate, then to the service item's base values.
type AddLineItemRequest struct {
	Description   string           `json:"description" validate:"omitempty,max=500"`
	Quantity      decimal.Decimal  `json:"quantity" validate:"gt=0"`
	UnitPrice     *decimal.Decimal `json:"unit_price"`
	Cost          *decimal.Decimal `json:"cost"`
	ServiceItemID *int64           `json:"service_item_id" validate:"omitempty,gt=0"`
	EmployeeID    *string          `json:"employee_id" validate:"omitempty,uuid"`
}

type QuoteLineItemResponse struct {
	ID            int64            `json:"id"`
	ServiceItemID *int64           `json:"service_item_id,omitempty"`
	EmployeeID    *string          `json:"employee_id,omitempty"`
	Description   string           `json:"description"`
	Quantity      decimal.Decimal  `json:"quantity"`
	UnitPrice     decimal.Decimal  `json:"unit_price"`
	TotalPrice    decimal.Decimal  `json:"total_price"`
	Cost          *decimal.Decimal `json:"cost,omitempty"`
	TotalCost     *decimal.Decimal `json:"total_cost,omitempty"`
}

type QuoteResponse struct {
	ID          int64                   `json:"id"`
	QuoteNumber string                  `json:"quote_number"`
	JobOrderID  int64                   `json:"job_order_id"`
	Description *string                 `json:"description,omitempty"`
	Amount      decimal.Decimal         `json:"amount"`
	TotalCost   *decimal.Decimal        `json:"total_cost,omitempty"`
	ValidUntil  time.Time               `json:"valid_until"`
	Status      string                  `json:"status"`
	ClientNotes *string                 `json:"client_notes,omitempty"`
	CreatedBy   string                  `json:"created_by"`
	CreatedAt   time.Time               `json:"created_at"`
	LineItems   []QuoteLineItemResponse `json:"line_items"`
}

// NewQuoteResponse projects a quote. Cost figures are only included when withCost is set.
func NewQuoteResponse(q *model.Quote, withCost bool) QuoteResponse {
	resp := QuoteResponse{
		ID:          q.ID,
		QuoteNumber: q.QuoteNumber,
		JobOrderID:  q.JobOrderID,
		Description: q.Description,
		Amount:      q.Amount,
		ValidUntil:  q.ValidUntil,
		Status:      string(q.Status),
		ClientNotes: q.ClientNotes,
		CreatedBy:   q.CreatedByUserID.String(),
		CreatedAt:   q.CreatedAt,
		LineItems:   make([]QuoteLineItemResponse, 0, len(q.LineItems)),
	}
	totalCost := decimal.Zero
	for _, li := range q.LineItems {
		item := QuoteLineItemResponse{
			ID:            li.ID,
			ServiceItemID: li.ServiceItemID,
			Description:   li.Description,
			Quantity:      li.Quantity,
			UnitPrice:     li.UnitPrice,
			TotalPrice:    li.TotalPrice,
		}
		if li.EmployeeID != nil {
			s := li.EmployeeID.String()
			item.EmployeeID = &s
		}
		if withCost {
			cost, total := li.Cost, li.TotalCost
			item.Cost, item.TotalCost = &cost, &total
			totalCost = totalCost.Add(li.TotalCost)
		}
		resp.LineItems = append(resp.LineItems, item)
	}
	if withCost {
		resp.TotalCost = &totalCost
	}
	return resp
}

func NewQuoteList(quotes []model.Quote, withCost bool) []QuoteResponse {
	out := make([]QuoteResponse, 0, len(quotes))
	for i := range quotes {
		out = append(out, NewQuoteResponse(&quotes[i], withCost))
	}
	return out
}
