package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type InvoiceStatus string

const (
	InvoiceDraft     InvoiceStatus = "Draft"
	InvoiceSent      InvoiceStatus = "Sent"
	InvoicePaid      InvoiceStatus = "Paid"
	InvoiceOverdue   InvoiceStatus = "Overdue"
	InvoiceCancelled InvoiceStatus = "Cancelled"
)

func (s InvoiceStatus) Valid() bool {
	switch s {
	case InvoiceDraft, InvoiceSent, InvoicePaid, InvoiceOverdue, InvoiceCancelled:
		return true
	}
	return false
}

// Invoice is the client-facing billing document. Line items have no cost column.
type Invoice struct {
	ID              int64           `gorm:"primaryKey"`
	InvoiceNumber   string          `gorm:"type:varchar(30);uniqueIndex;not null"`
	QuoteID         *int64          `gorm:"index"`
	JobOrderID      int64           `gorm:"not null;index"`
	ClientID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	SubTotal        decimal.Decimal `gorm:"type:numeric(14,4);not null"`
	TaxAmount       decimal.Decimal `gorm:"type:numeric(14,4);not null"`
	TotalAmount     decimal.Decimal `gorm:"type:numeric(14,4);not null"`
	InvoiceDate     time.Time       `gorm:"not null"`
	DueDate         time.Time       `gorm:"not null"`
	Status          InvoiceStatus   `gorm:"type:varchar(20);not null;default:'Draft'"`
	Notes           *string         `gorm:"type:text"`
	CreatedByUserID uuid.UUID       `gorm:"type:uuid;not null"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
	DeletedAt       gorm.DeletedAt `gorm:"index"`

	LineItems []InvoiceLineItem `gorm:"foreignKey:InvoiceID"`
}

type InvoiceLineItem struct {
	ID            int64 `gorm:"primaryKey"`
	InvoiceID     int64 `gorm:"not null;index"`
	ServiceItemID *int64
	Description   string          `gorm:"type:varchar(500);not null"`
	Quantity      decimal.Decimal `gorm:"type:numeric(10,2);not null"`
	UnitPrice     decimal.Decimal `gorm:"type:numeric(14,4);not null"`
	TotalPrice    decimal.Decimal `gorm:"type:numeric(14,4);not null"`
	CreatedAt     time.Time
}
