package handler

import (
	"net/http"

	"attendance/internal/dto"
	"attendance/internal/middleware"
	"attendance/internal/model"
	"attendance/internal/repository"
	"attendance/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type JobsHandler struct{ svc service.JobService }

func NewJobsHandler(svc service.JobService) *JobsHandler { return &JobsHandler{svc: svc} }

// canView: managers see every job, crew bosses their own, employees the ones they are assigned to.
func canView(claims *middleware.JWTClaims, j *model.Job) bool {
	if isStaffManager(claims) {
		return true
	}
	uid := claims.UID()
	if claims.HasRole(model.RoleCrewBoss) && j.IsCrewBoss(uid) {
		return true
	}
	for _, a := range j.Assignments {
		if a.IsActive && a.EmployeeID == uid {
			return true
		}
	}
	return false
}

// canManage: managers, or the crew boss who owns the job.
func canManage(claims *middleware.JWTClaims, j *model.Job) bool {
	return isStaffManager(claims) || (claims.HasRole(model.RoleCrewBoss) && j.IsCrewBoss(claims.UID()))
}

// CreateFromOrder godoc
// @Summary      Create job from an approved job order
// @Description  Fails with 400 unless the order is Approved and 409 when the order already has a job.
// @Tags         jobs
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        jobOrderId path int true "Job order ID"
// @Param        body body dto.CreateJobRequest false "Crew boss"
// @Success      201  {object} dto.JobResponse
// @Failure      400  {object} apierror.APIError
// @Failure      409  {object} apierror.APIError
// @Router       /v1/jobs/from-order/{jobOrderId} [post]
func (h *JobsHandler) CreateFromOrder(c *gin.Context) {
	jobOrderID, ok := paramID(c, "jobOrderId")
	if !ok {
		return
	}
	var req dto.CreateJobRequest
	if c.Request.ContentLength != 0 && !bindAndValidate(c, &req) {
		return
	}
	var crewBoss *uuid.UUID
	if req.CrewBossID != nil {
		id := uuid.MustParse(*req.CrewBossID)
		crewBoss = &id
	}
	j, err := h.svc.CreateFromOrder(c.Request.Context(), jobOrderID, crewBoss, middleware.GetClaims(c).UID())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewJobResponse(j))
}

// List godoc
// @Summary      List jobs
// @Description  Scoped by role: managers see all, crew bosses their own, employees their assignments.
// @Tags         jobs
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array} dto.JobResponse
// @Router       /v1/jobs [get]
func (h *JobsHandler) List(c *gin.Context) {
	claims := middleware.GetClaims(c)
	uid := claims.UID()
	var f repository.JobFilter
	switch {
	case isStaffManager(claims):
	case claims.HasRole(model.RoleCrewBoss):
		f.CrewBossID = &uid
	case claims.HasRole(model.RoleEmployee):
		f.EmployeeID = &uid
	default:
		forbidden(c)
		return
	}
	jobs, err := h.svc.List(c.Request.Context(), f)
	if err != nil {
		respondError(c, err)
		return
	}
	out := make([]dto.JobResponse, 0, len(jobs))
	for i := range jobs {
		out = append(out, dto.NewJobResponse(&jobs[i]))
	}
	c.JSON(http.StatusOK, out)
}

func (h *JobsHandler) load(c *gin.Context, allowed func(*middleware.JWTClaims, *model.Job) bool) (*model.Job, bool) {
	id, ok := paramID(c, "id")
	if !ok {
		return nil, false
	}
	j, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	if !allowed(middleware.GetClaims(c), j) {
		forbidden(c)
		return nil, false
	}
	return j, true
}

// Get godoc
// @Summary      Get job
// @Tags         jobs
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Job ID"
// @Success      200  {object} dto.JobResponse
// @Failure      403  {object} apierror.APIError
// @Failure      404  {object} apierror.APIError
// @Router       /v1/jobs/{id} [get]
func (h *JobsHandler) Get(c *gin.Context) {
	j, ok := h.load(c, canView)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, dto.NewJobResponse(j))
}

// UpdateStatus godoc
// @Summary      Update job status
// @Description  Assigned → InProgress → Completed, or Cancelled before completion. Completing a job completes its order.
// @Tags         jobs
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path int true "Job ID"
// @Param        body body dto.UpdateJobStatusRequest true "New status"
// @Success      200  {object} dto.JobResponse
// @Failure      400  {object} apierror.APIError
// @Failure      403  {object} apierror.APIError
// @Router       /v1/jobs/{id}/status [put]
func (h *JobsHandler) UpdateStatus(c *gin.Context) {
	var req dto.UpdateJobStatusRequest
	if !bindAndValidate(c, &req) {
		return
	}
	j, ok := h.load(c, canManage)
	if !ok {
		return
	}
	j, err := h.svc.UpdateStatus(c.Request.Context(), j.ID, model.JobStatus(req.Status), req.Notes)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewJobResponse(j))
}

// AssignEmployee godoc
// @Summary      Assign employee to job
// @Tags         jobs
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path int true "Job ID"
// @Param        body body dto.AssignEmployeeRequest true "Employee"
// @Success      200  {object} dto.AssignmentResponse
// @Failure      409  {object} apierror.APIError
// @Router       /v1/jobs/{id}/assign-employee [post]
func (h *JobsHandler) AssignEmployee(c *gin.Context) {
	var req dto.AssignEmployeeRequest
	if !bindAndValidate(c, &req) {
		return
	}
	j, ok := h.load(c, canManage)
	if !ok {
		return
	}
	a, err := h.svc.AssignEmployee(c.Request.Context(), j.ID, uuid.MustParse(req.EmployeeID), middleware.GetClaims(c).UID(), req.Notes)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewAssignmentResponse(a))
}

// UnassignEmployee godoc
// @Summary      Revoke an employee's assignment
// @Tags         jobs
// @Security     BearerAuth
// @Param        id         path int    true "Job ID"
// @Param        employeeId path string true "Employee UUID"
// @Success      204
// @Router       /v1/jobs/{id}/assignments/{employeeId} [delete]
func (h *JobsHandler) UnassignEmployee(c *gin.Context) {
	employeeID, ok := paramUUID(c, "employeeId")
	if !ok {
		return
	}
	j, ok := h.load(c, canManage)
	if !ok {
		return
	}
	if err := h.svc.UnassignEmployee(c.Request.Context(), j.ID, employeeID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Assignments godoc
// @Summary      List job assignments
// @Tags         jobs
// @Produce      json
// @Security     BearerAuth
// @Param        id              path  int  true  "Job ID"
// @Param        include_revoked query bool false "Include revoked assignments"
// @Success      200  {array} dto.AssignmentResponse
// @Router       /v1/jobs/{id}/assignments [get]
func (h *JobsHandler) Assignments(c *gin.Context) {
	j, ok := h.load(c, canView)
	if !ok {
		return
	}
	list, err := h.svc.Assignments(c.Request.Context(), j.ID, c.Query("include_revoked") == "true")
	if err != nil {
		respondError(c, err)
		return
	}
	out := make([]dto.AssignmentResponse, 0, len(list))
	for i := range list {
		out = append(out, dto.NewAssignmentResponse(&list[i]))
	}
	c.JSON(http.StatusOK, out)
}
