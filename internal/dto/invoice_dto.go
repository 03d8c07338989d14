package dto

import (
	"time"

	"attendance/internal/model"

	"github.com/shopspring/decimal"
)

type CreateInvoiceRequest struct {
	QuoteID int64 `json:"quote_id" validate:"required,gt=0"`
}

type UpdateInvoiceStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=Draft Sent Paid Overdue Cancelled"`
}

type InvoiceLineItemResponse struct {
	ID            int64           `json:"id"`
	ServiceItemID *int64          `json:"service_item_id,omitempty"`
	Description   string          `json:"description"`
	Quantity      decimal.Decimal `json:"quantity"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	TotalPrice    decimal.Decimal `json:"total_price"`
}

type InvoiceResponse struct {
	ID            int64                     `json:"id"`
	InvoiceNumber string                    `json:"invoice_number"`
	QuoteID       *int64                    `json:"quote_id,omitempty"`
	JobOrderID    int64                     `json:"job_order_id"`
	ClientID      string                    `json:"client_id"`
	SubTotal      decimal.Decimal           `json:"sub_total"`
	TaxAmount     decimal.Decimal           `json:"tax_amount"`
	TotalAmount   decimal.Decimal           `json:"total_amount"`
	InvoiceDate   time.Time                 `json:"invoice_date"`
	DueDate       time.Time                 `json:"due_date"`
	Status        string                    `json:"status"`
	LineItems     []InvoiceLineItemResponse `json:"line_items"`
}

func NewInvoiceResponse(inv *model.Invoice) InvoiceResponse {
	resp := InvoiceResponse{
		ID:            inv.ID,
		InvoiceNumber: inv.InvoiceNumber,
		QuoteID:       inv.QuoteID,
		JobOrderID:    inv.JobOrderID,
		ClientID:      inv.ClientID.String(),
		SubTotal:      inv.SubTotal,
		TaxAmount:     inv.TaxAmount,
		TotalAmount:   inv.TotalAmount,
		InvoiceDate:   inv.InvoiceDate,
		DueDate:       inv.DueDate,
		Status:        string(inv.Status),
		LineItems:     make([]InvoiceLineItemResponse, 0, len(inv.LineItems)),
	}
	for _, li := range inv.LineItems {
		resp.LineItems = append(resp.LineItems, InvoiceLineItemResponse{
			ID:            li.ID,
			ServiceItemID: li.ServiceItemID,
			Description:   li.Description,
			Quantity:      li.Quantity,
			UnitPrice:     li.UnitPrice,
			TotalPrice:    li.TotalPrice,
		})
	}
	return resp
}
