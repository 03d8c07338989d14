package model

import (
	"time"
)

type EmailType string

const (
	EmailQuote           EmailType = "Quote"
	EmailInvoice         EmailType = "Invoice"
	EmailTimesheet       EmailType = "Timesheet"
	EmailJobNotification EmailType = "JobNotification"
	EmailSystem          EmailType = "System"
)

type EmailStatus string

const (
	EmailPending   EmailStatus = "Pending"
	EmailSent      EmailStatus = "Sent"
	EmailFailed    EmailStatus = "Failed"
	EmailCancelled EmailStatus = "Cancelled"
)

// EmailLog records every notification attempt. Retry fields are driven by the retry cron.
type EmailLog struct {
	ID           int64       `gorm:"primaryKey"`
	ToEmail      string      `gorm:"type:varchar(255);not null"`
	FromEmail    string      `gorm:"type:varchar(255);not null"`
	Subject      string      `gorm:"type:varchar(255);not null"`
	Body         string      `gorm:"type:text;not null"`
	Type         EmailType   `gorm:"type:varchar(30);not null"`
	Status       EmailStatus `gorm:"type:varchar(20);not null;default:'Pending'"`
	QuoteID      *int64
	InvoiceID    *int64
	JobID        *int64
	JobOrderID   *int64
	ErrorMessage *string `gorm:"type:text"`
	RetryCount   int     `gorm:"not null;default:0"`
	NextRetryAt  *time.Time
	SentAt       *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
