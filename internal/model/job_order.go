package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type JobOrderStatus string

const (
	JobOrderPending    JobOrderStatus = "Pending"
	JobOrderQuoted     JobOrderStatus = "Quoted"
	JobOrderApproved   JobOrderStatus = "Approved"
	JobOrderInProgress JobOrderStatus = "InProgress"
	JobOrderCompleted  JobOrderStatus = "Completed"
	JobOrderCancelled  JobOrderStatus = "Cancelled"
)

// JobOrder is the client's original service request. It has many quotes and at most one job.
type JobOrder struct {
	ID             int64           `gorm:"primaryKey"`
	OrderNumber    string          `gorm:"type:varchar(30);uniqueIndex;not null"`
	ClientID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	EventName      string          `gorm:"type:varchar(200);not null"`
	SiteName       string          `gorm:"type:varchar(200);not null"`
	SiteAddress    string          `gorm:"type:varchar(500);not null"`
	Description    *string         `gorm:"type:text"`
	PONumber       *string         `gorm:"type:varchar(50);column:po_number"`
	StartDate      time.Time       `gorm:"not null"`
	EndDate        time.Time       `gorm:"not null"`
	EstimatedHours decimal.Decimal `gorm:"type:numeric(10,2);not null;default:0"`
	Status         JobOrderStatus  `gorm:"type:varchar(20);not null;default:'Pending'"`
	CreatedAt      time.Time
	UpdatedAt      time.Time

	Client *User `gorm:"foreignKey:ClientID"`
}
