package model

import (
	"time"

	"github.com/google/uuid"
)

type TimeEntryStatus string

const (
	TimeEntryActive    TimeEntryStatus = "Active"
	TimeEntryCompleted TimeEntryStatus = "Completed"
	TimeEntryCancelled TimeEntryStatus = "Cancelled"
)

// TimeEntry is one clock-in/clock-out session. Durations are stored as nanoseconds.
type TimeEntry struct {
	ID                  int64     `gorm:"primaryKey"`
	UserID              uuid.UUID `gorm:"type:uuid;not null;index"`
	JobID               *int64    `gorm:"index"`
	ClockInTime         time.Time `gorm:"not null;index"`
	ClockOutTime        *time.Time
	BreakTime           time.Duration   `gorm:"type:bigint;not null;default:0"`
	TotalHours          *time.Duration  `gorm:"type:bigint"`
	OvertimeHours       *time.Duration  `gorm:"type:bigint"`
	Status              TimeEntryStatus `gorm:"type:varchar(20);not null;default:'Active'"`
	Notes               *string         `gorm:"type:text"`
	Location            *string         `gorm:"type:varchar(255)"`
	LocationCoordinates *string         `gorm:"type:varchar(100)"`
	CreatedAt           time.Time
	UpdatedAt           time.Time
}
