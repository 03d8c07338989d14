package dto

import (
	"time"

	"attendance/internal/model"
)

type ClockInRequest struct {
	Notes               *string `json:"notes" validate:"omitempty,max=1000"`
	Location            *string `json:"location" validate:"omitempty,max=255"`
	LocationCoordinates *string `json:"location_coordinates" validate:"omitempty,max=100"`
	JobID               *int64  `json:"job_id" validate:"omitempty,gt=0"`
}

type ClockOutRequest struct {
	TimeEntryID int64     `json:"time_entry_id" validate:"required,gt=0"`
	Notes       *string   `json:"notes" validate:"omitempty,max=1000"`
	BreakTime   *Duration `json:"break_time"`
}

// ManualTimeEntryRequest creates or corrects an entry on someone's behalf.
type ManualTimeEntryRequest struct {
	UserID       string     `json:"user_id" validate:"required,uuid"`
	JobID        *int64     `json:"job_id" validate:"omitempty,gt=0"`
	ClockInTime  time.Time  `json:"clock_in_time" validate:"required"`
	ClockOutTime *time.Time `json:"clock_out_time"`
	BreakTime    *Duration  `json:"break_time"`
	Notes        *string    `json:"notes" validate:"omitempty,max=1000"`
	Location     *string    `json:"location" validate:"omitempty,max=255"`
}

type TimeEntryResponse struct {
	ID                  int64      `json:"id"`
	UserID              string     `json:"user_id"`
	JobID               *int64     `json:"job_id,omitempty"`
	ClockInTime         time.Time  `json:"clock_in_time"`
	ClockOutTime        *time.Time `json:"clock_out_time,omitempty"`
	BreakTime           Duration   `json:"break_time"`
	TotalHours          *Duration  `json:"total_hours,omitempty"`
	OvertimeHours       *Duration  `json:"overtime_hours,omitempty"`
	Status              string     `json:"status"`
	Notes               *string    `json:"notes,omitempty"`
	Location            *string    `json:"location,omitempty"`
	LocationCoordinates *string    `json:"location_coordinates,omitempty"`
}

func durationPtr(d *time.Duration) *Duration {
	if d == nil {
		return nil
	}
	v := Duration(*d)
	return &v
}

func NewTimeEntryResponse(e *model.TimeEntry) TimeEntryResponse {
	return TimeEntryResponse{
		ID:                  e.ID,
		UserID:              e.UserID.String(),
		JobID:               e.JobID,
		ClockInTime:         e.ClockInTime,
		ClockOutTime:        e.ClockOutTime,
		BreakTime:           Duration(e.BreakTime),
		TotalHours:          durationPtr(e.TotalHours),
		OvertimeHours:       durationPtr(e.OvertimeHours),
		Status:              string(e.Status),
		Notes:               e.Notes,
		Location:            e.Location,
		LocationCoordinates: e.LocationCoordinates,
	}
}

func NewTimeEntryList(entries []model.TimeEntry) []TimeEntryResponse {
	out := make([]TimeEntryResponse, 0, len(entries))
	for i := range entries {
		out = append(out, NewTimeEntryResponse(&entries[i]))
	}
	return out
}

type TimeReportResponse struct {
	UserID          string              `json:"user_id"`
	EmployeeNumber  string              `json:"employee_number,omitempty"`
	EmployeeName    string              `json:"employee_name,omitempty"`
	StartDate       time.Time           `json:"start_date"`
	EndDate         time.Time           `json:"end_date"`
	TotalDaysWorked int                 `json:"total_days_worked"`
	TotalHours      Duration            `json:"total_hours"`
	OvertimeHours   Duration            `json:"overtime_hours"`
	Entries         []TimeEntryResponse `json:"entries,omitempty"`
}
