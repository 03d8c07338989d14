package dto

import (
	"time"

	"attendance/internal/model"
)

type CreateJobRequest struct {
	CrewBossID *string `json:"crew_boss_id" validate:"omitempty,uuid"`
}

type UpdateJobStatusRequest struct {
	Status string  `json:"status" validate:"required,oneof=Assigned InProgress Completed Cancelled"`
	Notes  *string `json:"notes"`
}

type AssignEmployeeRequest struct {
	EmployeeID string  `json:"employee_id" validate:"required,uuid"`
	Notes      *string `json:"notes"`
}

type AssignmentResponse struct {
	ID           int64     `json:"id"`
	JobID        int64     `json:"job_id"`
	EmployeeID   string    `json:"employee_id"`
	EmployeeName string    `json:"employee_name,omitempty"`
	AssignedBy   string    `json:"assigned_by"`
	AssignedDate time.Time `json:"assigned_date"`
	Notes        *string   `json:"notes,omitempty"`
	IsActive     bool      `json:"is_active"`
}

type JobResponse struct {
	ID              int64                `json:"id"`
	JobNumber       string               `json:"job_number"`
	JobOrderID      int64                `json:"job_order_id"`
	EventName       string               `json:"event_name,omitempty"`
	CrewBossID      *string              `json:"crew_boss_id,omitempty"`
	Status          string               `json:"status"`
	ActualStartTime *time.Time           `json:"actual_start_time,omitempty"`
	ActualEndTime   *time.Time           `json:"actual_end_time,omitempty"`
	CompletionNotes *string              `json:"completion_notes,omitempty"`
	CreatedAt       time.Time            `json:"created_at"`
	Assignments     []AssignmentResponse `json:"assignments"`
}

func NewAssignmentResponse(a *model.JobAssignment) AssignmentResponse {
	resp := AssignmentResponse{
		ID:           a.ID,
		JobID:        a.JobID,
		EmployeeID:   a.EmployeeID.String(),
		AssignedBy:   a.AssignedByUserID.String(),
		AssignedDate: a.AssignedDate,
		Notes:        a.Notes,
		IsActive:     a.IsActive,
	}
	if a.Employee != nil {
		resp.EmployeeName = a.Employee.FullName()
	}
	return resp
}

func NewJobResponse(j *model.Job) JobResponse {
	resp := JobResponse{
		ID:              j.ID,
		JobNumber:       j.JobNumber,
		JobOrderID:      j.JobOrderID,
		Status:          string(j.Status),
		ActualStartTime: j.ActualStartTime,
		ActualEndTime:   j.ActualEndTime,
		CompletionNotes: j.CompletionNotes,
		CreatedAt:       j.CreatedAt,
		Assignments:     make([]AssignmentResponse, 0, len(j.Assignments)),
	}
	if j.CrewBossID != nil {
		s := j.CrewBossID.String()
		resp.CrewBossID = &s
	}
	if j.JobOrder != nil {
		resp.EventName = j.JobOrder.EventName
	}
	for i := range j.Assignments {
		resp.Assignments = append(resp.Assignments, NewAssignmentResponse(&j.Assignments[i]))
	}
	return resp
}
