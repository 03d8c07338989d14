package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type QuoteStatus string

const (
	QuoteDraft    QuoteStatus = "Draft"
	QuoteSent     QuoteStatus = "Sent"
	QuoteApproved QuoteStatus = "Approved"
	QuoteRejected QuoteStatus = "Rejected"
	QuoteExpired  QuoteStatus = "Expired"
)

func (s QuoteStatus) Valid() bool {
	switch s {
	case QuoteDraft, QuoteSent, QuoteApproved, QuoteRejected, QuoteExpired:
		return true
	}
	return false
}

// Quote is a priced proposal against a JobOrder.
// Amount is always the sum of the line items' TotalPrice.
type Quote struct {
	ID              int64           `gorm:"primaryKey"`
	QuoteNumber     string          `gorm:"type:varchar(30);uniqueIndex;not null"`
	JobOrderID      int64           `gorm:"not null;index"`
	Description     *string         `gorm:"type:text"`
	Amount          decimal.Decimal `gorm:"type:numeric(14,4);not null;default:0"`
	ValidUntil      time.Time       `gorm:"not null"`
	Status          QuoteStatus     `gorm:"type:varchar(20);not null;default:'Draft'"`
	ClientNotes     *string         `gorm:"type:text"`
	CreatedByUserID uuid.UUID       `gorm:"type:uuid;not null"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
	DeletedAt       gorm.DeletedAt `gorm:"index"`

	JobOrder  *JobOrder       `gorm:"foreignKey:JobOrderID"`
	LineItems []QuoteLineItem `gorm:"foreignKey:QuoteID"`
}

// RecalculateAmount sums the line totals into Amount.
func (q *Quote) RecalculateAmount() {
	total := decimal.Zero
	for _, li := range q.LineItems {
		total = total.Add(li.TotalPrice)
	}
	q.Amount = total
}

// QuoteLineItem carries both price and cost. Cost never leaves the company.
type QuoteLineItem struct {
	ID            int64           `gorm:"primaryKey"`
	QuoteID       int64           `gorm:"not null;index"`
	ServiceItemID *int64          `gorm:"index"`
	EmployeeID    *uuid.UUID      `gorm:"type:uuid"`
	Description   string          `gorm:"type:varchar(500);not null"`
	Quantity      decimal.Decimal `gorm:"type:numeric(10,2);not null"`
	UnitPrice     decimal.Decimal `gorm:"type:numeric(14,4);not null"`
	Cost          decimal.Decimal `gorm:"type:numeric(14,4);not null;default:0"`
	TotalPrice    decimal.Decimal `gorm:"type:numeric(14,4);not null"`
	TotalCost     decimal.Decimal `gorm:"type:numeric(14,4);not null;default:0"`
	CreatedAt     time.Time

	ServiceItem *ServiceItem `gorm:"foreignKey:ServiceItemID"`
}

// ComputeTotals derives TotalPrice and TotalCost from quantity.
func (li *QuoteLineItem) ComputeTotals() {
	li.TotalPrice = li.Quantity.Mul(li.UnitPrice)
	li.TotalCost = li.Quantity.Mul(li.Cost)
}
