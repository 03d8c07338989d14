package model

import (
	"time"

	"github.com/google/uuid"
)

type JobStatus string

const (
	JobAssigned   JobStatus = "Assigned"
	JobInProgress JobStatus = "InProgress"
	JobCompleted  JobStatus = "Completed"
	JobCancelled  JobStatus = "Cancelled"
)

func (s JobStatus) Valid() bool {
	switch s {
	case JobAssigned, JobInProgress, JobCompleted, JobCancelled:
		return true
	}
	return false
}

func (s JobStatus) Terminal() bool { return s == JobCompleted || s == JobCancelled }

// CanTransitionTo reports whether the job state machine allows moving to next.
// InProgress -> InProgress is allowed so repeated start calls are harmless.
func (s JobStatus) CanTransitionTo(next JobStatus) bool {
	switch s {
	case JobAssigned:
		return next == JobInProgress || next == JobCancelled
	case JobInProgress:
		return next == JobInProgress || next == JobCompleted || next == JobCancelled
	}
	return false
}

// Job is the execution unit created from an approved JobOrder (one per order).
type Job struct {
	ID              int64      `gorm:"primaryKey"`
	JobNumber       string     `gorm:"type:varchar(30);uniqueIndex;not null"`
	JobOrderID      int64      `gorm:"not null;uniqueIndex"`
	CrewBossID      *uuid.UUID `gorm:"type:uuid;index"`
	Status          JobStatus  `gorm:"type:varchar(20);not null;default:'Assigned'"`
	ActualStartTime *time.Time
	ActualEndTime   *time.Time
	CompletionNotes *string   `gorm:"type:text"`
	CreatedByUserID uuid.UUID `gorm:"type:uuid;not null"`
	CreatedAt       time.Time
	UpdatedAt       time.Time

	JobOrder    *JobOrder       `gorm:"foreignKey:JobOrderID"`
	Assignments []JobAssignment `gorm:"foreignKey:JobID"`
}

// IsCrewBoss reports whether userID runs this job.
func (j *Job) IsCrewBoss(userID uuid.UUID) bool {
	return j.CrewBossID != nil && *j.CrewBossID == userID
}

// JobAssignment links an employee to a job. Rows are revoked, never deleted.
type JobAssignment struct {
	ID               int64     `gorm:"primaryKey"`
	JobID            int64     `gorm:"not null;index"`
	EmployeeID       uuid.UUID `gorm:"type:uuid;not null;index"`
	AssignedByUserID uuid.UUID `gorm:"type:uuid;not null"`
	AssignedDate     time.Time `gorm:"not null"`
	Notes            *string   `gorm:"type:text"`
	IsActive         bool      `gorm:"not null;default:true"`
	RevokedAt        *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time

	Employee *User `gorm:"foreignKey:EmployeeID"`
}
