package handler

import (
	"errors"
	"fmt"
	"net/http"

	"attendance/internal/dto"
	"attendance/internal/infra"
	"attendance/internal/middleware"
	"attendance/internal/service"

	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type TimeEntriesHandler struct{ svc service.TimeEntryService }

func NewTimeEntriesHandler(svc service.TimeEntryService) *TimeEntriesHandler {
	return &TimeEntriesHandler{svc: svc}
}

// ClockIn godoc
// @Summary      Clock in
// @Description  Opens a time entry for the caller. Fails with 409 while another entry is active.
// @Tags         timeentry
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.ClockInRequest false "Clock-in details"
// @Success      201  {object} dto.TimeEntryResponse
// @Failure      409  {object} apierror.APIError
// @Router       /v1/timeentry/clock-in [post]
func (h *TimeEntriesHandler) ClockIn(c *gin.Context) {
	var req dto.ClockInRequest
	if c.Request.ContentLength != 0 && !bindAndValidate(c, &req) {
		return
	}
	e, err := h.svc.ClockIn(c.Request.Context(), middleware.GetClaims(c).UID(), service.ClockInInput{
		Notes:               req.Notes,
		Location:            req.Location,
		LocationCoordinates: req.LocationCoordinates,
		JobID:               req.JobID,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewTimeEntryResponse(e))
}

// ClockOut godoc
// @Summary      Clock out
// @Description  Closes the caller's active entry and computes total and overtime hours. break_time accepts minutes or HH:MM.
// @Tags         timeentry
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.ClockOutRequest true "Entry to close"
// @Success      200  {object} dto.TimeEntryResponse
// @Failure      400  {object} apierror.APIError
// @Router       /v1/timeentry/clock-out [post]
func (h *TimeEntriesHandler) ClockOut(c *gin.Context) {
	var req dto.ClockOutRequest
	if !bindAndValidate(c, &req) {
		return
	}
	var brk dto.Duration
	if req.BreakTime != nil {
		brk = *req.BreakTime
	}
	e, err := h.svc.ClockOut(c.Request.Context(), middleware.GetClaims(c).UID(), req.TimeEntryID, req.Notes, brk.Std())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewTimeEntryResponse(e))
}

// Active godoc
// @Summary      Current active entry
// @Tags         timeentry
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object} dto.TimeEntryResponse
// @Router       /v1/timeentry/active [get]
func (h *TimeEntriesHandler) Active(c *gin.Context) {
	e, err := h.svc.Active(c.Request.Context(), middleware.GetClaims(c).UID())
	if errors.Is(err, service.ErrNoActiveEntry) {
		c.JSON(http.StatusOK, gin.H{"message": "No active time entry found"})
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewTimeEntryResponse(e))
}

// List godoc
// @Summary      List own time entries
// @Tags         timeentry
// @Produce      json
// @Security     BearerAuth
// @Param        start_date query string false "YYYY-MM-DD, defaults to the first of the month"
// @Param        end_date   query string false "YYYY-MM-DD, defaults to today"
// @Success      200  {array} dto.TimeEntryResponse
// @Router       /v1/timeentry [get]
func (h *TimeEntriesHandler) List(c *gin.Context) {
	start, end, ok := dateRange(c)
	if !ok {
		return
	}
	entries, err := h.svc.Entries(c.Request.Context(), middleware.GetClaims(c).UID(), start, end)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewTimeEntryList(entries))
}

func newTimeReportResponse(r *service.TimeReport, withEntries bool) dto.TimeReportResponse {
	resp := dto.TimeReportResponse{
		StartDate:       r.From,
		EndDate:         r.To,
		TotalDaysWorked: r.TotalDaysWorked,
		TotalHours:      dto.Duration(r.TotalHours),
		OvertimeHours:   dto.Duration(r.OvertimeHours),
	}
	if r.User != nil {
		resp.UserID = r.User.ID.String()
		resp.EmployeeNumber = r.User.EmployeeNumber
		resp.EmployeeName = r.User.FullName()
	}
	if withEntries {
		resp.Entries = dto.NewTimeEntryList(r.Entries)
	}
	return resp
}

// Report godoc
// @Summary      Own attendance report
// @Tags         timeentry
// @Produce      json
// @Security     BearerAuth
// @Param        start_date query string false "YYYY-MM-DD"
// @Param        end_date   query string false "YYYY-MM-DD"
// @Success      200  {object} dto.TimeReportResponse
// @Router       /v1/timeentry/report [get]
func (h *TimeEntriesHandler) Report(c *gin.Context) {
	start, end, ok := dateRange(c)
	if !ok {
		return
	}
	r, err := h.svc.Report(c.Request.Context(), middleware.GetClaims(c).UID(), start, end)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newTimeReportResponse(r, true))
}

// ReportAll godoc
// @Summary      Attendance report for every active user
// @Tags         timeentry
// @Produce      json
// @Security     BearerAuth
// @Param        start_date query string false "YYYY-MM-DD"
// @Param        end_date   query string false "YYYY-MM-DD"
// @Success      200  {array} dto.TimeReportResponse
// @Router       /v1/timeentry/report/all [get]
func (h *TimeEntriesHandler) ReportAll(c *gin.Context) {
	start, end, ok := dateRange(c)
	if !ok {
		return
	}
	reports, err := h.svc.ReportAll(c.Request.Context(), start, end)
	if err != nil {
		respondError(c, err)
		return
	}
	out := make([]dto.TimeReportResponse, 0, len(reports))
	for i := range reports {
		out = append(out, newTimeReportResponse(&reports[i], false))
	}
	c.JSON(http.StatusOK, out)
}

// ExportAll godoc
// @Summary      Export the attendance report as XLSX
// @Tags         timeentry
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security     BearerAuth
// @Param        start_date query string false "YYYY-MM-DD"
// @Param        end_date   query string false "YYYY-MM-DD"
// @Success      200
// @Router       /v1/timeentry/report/all/export [get]
func (h *TimeEntriesHandler) ExportAll(c *gin.Context) {
	start, end, ok := dateRange(c)
	if !ok {
		return
	}
	reports, err := h.svc.ReportAll(c.Request.Context(), start, end)
	if err != nil {
		respondError(c, err)
		return
	}
	rows := make([]infra.TimesheetRow, 0, len(reports))
	for _, r := range reports {
		row := infra.TimesheetRow{
			DaysWorked:    r.TotalDaysWorked,
			TotalHours:    r.TotalHours,
			OvertimeHours: r.OvertimeHours,
		}
		if r.User != nil {
			row.EmployeeNumber = r.User.EmployeeNumber
			row.Name = r.User.FullName()
		}
		rows = append(rows, row)
	}
	data, err := infra.WriteTimesheetXLSX(start, end, rows)
	if err != nil {
		respondError(c, err)
		return
	}
	name := fmt.Sprintf("timesheet_%s_%s.xlsx", start.Format("20060102"), end.Format("20060102"))
	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	c.Data(http.StatusOK, xlsxContentType, data)
}

// Create godoc
// @Summary      Record a time entry on behalf of a user
// @Tags         timeentry
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.ManualTimeEntryRequest true "Entry"
// @Success      201  {object} dto.TimeEntryResponse
// @Router       /v1/timeentry/manage [post]
func (h *TimeEntriesHandler) Create(c *gin.Context) {
	var req dto.ManualTimeEntryRequest
	if !bindAndValidate(c, &req) {
		return
	}
	e, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewTimeEntryResponse(e))
}

// Update godoc
// @Summary      Correct a time entry
// @Tags         timeentry
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path int true "Time entry ID"
// @Param        body body dto.ManualTimeEntryRequest true "Entry"
// @Success      200  {object} dto.TimeEntryResponse
// @Router       /v1/timeentry/manage/{id} [put]
func (h *TimeEntriesHandler) Update(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req dto.ManualTimeEntryRequest
	if !bindAndValidate(c, &req) {
		return
	}
	e, err := h.svc.Update(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewTimeEntryResponse(e))
}

// Cancel godoc
// @Summary      Cancel a time entry
// @Description  The entry is kept with status Cancelled and no longer counts in reports.
// @Tags         timeentry
// @Security     BearerAuth
// @Param        id path int true "Time entry ID"
// @Success      204
// @Router       /v1/timeentry/manage/{id} [delete]
func (h *TimeEntriesHandler) Cancel(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Cancel(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// UserEntries godoc
// @Summary      List a user's time entries
// @Tags         timeentry
// @Produce      json
// @Security     BearerAuth
// @Param        userId     path  string true  "User UUID"
// @Param        start_date query string false "YYYY-MM-DD"
// @Param        end_date   query string false "YYYY-MM-DD"
// @Success      200  {array} dto.TimeEntryResponse
// @Router       /v1/timeentry/manage/user/{userId} [get]
func (h *TimeEntriesHandler) UserEntries(c *gin.Context) {
	userID, ok := paramUUID(c, "userId")
	if !ok {
		return
	}
	start, end, ok := dateRange(c)
	if !ok {
		return
	}
	entries, err := h.svc.Entries(c.Request.Context(), userID, start, end)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewTimeEntryList(entries))
}
