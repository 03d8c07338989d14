package handler

import (
	"net/http"
	"strconv"
	"time"

	"attendance/internal/apierror"
	"attendance/internal/dto"
	"attendance/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type RatesHandler struct{ svc service.RateService }

func NewRatesHandler(svc service.RateService) *RatesHandler { return &RatesHandler{svc: svc} }

// SetRate godoc
// @Summary      Set an employee rate
// @Description  Expires the active rate for the employee and service item, then inserts a new one effective now.
// @Tags         employeerates
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.SetRateRequest true "Rate"
// @Success      201  {object} dto.EmployeeRateResponse
// @Failure      404  {object} apierror.APIError
// @Failure      400  {object} apierror.ValidationError
// @Router       /v1/employeerates [post]
func (h *RatesHandler) SetRate(c *gin.Context) {
	var req dto.SetRateRequest
	if !bindAndValidate(c, &req) {
		return
	}
	r, err := h.svc.SetRate(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewEmployeeRateResponse(r))
}

// BulkSetRates godoc
// @Summary      Set many rates at once
// @Description  All or nothing. A failed batch answers 400 with the summary.
// @Tags         employeerates
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.BulkSetRatesRequest true "Rates"
// @Success      200  {object} dto.BulkRatesResponse
// @Failure      400  {object} dto.BulkRatesResponse
// @Router       /v1/employeerates/bulk-update [post]
func (h *RatesHandler) BulkSetRates(c *gin.Context) {
	var req dto.BulkSetRatesRequest
	if !bindAndValidate(c, &req) {
		return
	}
	res, err := h.svc.BulkSetRates(c.Request.Context(), req.Rates)
	if err != nil {
		respondError(c, err)
		return
	}
	if !res.Success {
		c.JSON(http.StatusBadRequest, res)
		return
	}
	c.JSON(http.StatusOK, res)
}

// ListByEmployee godoc
// @Summary      List an employee's rates
// @Description  Active rates ordered by service item name.
// @Tags         employeerates
// @Produce      json
// @Security     BearerAuth
// @Param        employeeId path string true "Employee UUID"
// @Success      200  {array} dto.EmployeeRateResponse
// @Router       /v1/employeerates/employee/{employeeId} [get]
func (h *RatesHandler) ListByEmployee(c *gin.Context) {
	employeeID, ok := paramUUID(c, "employeeId")
	if !ok {
		return
	}
	rates, err := h.svc.ListRates(c.Request.Context(), employeeID)
	if err != nil {
		respondError(c, err)
		return
	}
	out := make([]dto.EmployeeRateResponse, 0, len(rates))
	for i := range rates {
		out = append(out, dto.NewEmployeeRateResponse(&rates[i]))
	}
	c.JSON(http.StatusOK, out)
}

// Active godoc
// @Summary      Resolve the active rate
// @Tags         employeerates
// @Produce      json
// @Security     BearerAuth
// @Param        employee_id     query string true  "Employee UUID"
// @Param        service_item_id query int    true  "Service item ID"
// @Param        as_of           query string false "RFC3339 instant, defaults to now"
// @Success      200  {object} dto.EmployeeRateResponse
// @Failure      404  {object} apierror.APIError
// @Router       /v1/employeerates/active [get]
func (h *RatesHandler) Active(c *gin.Context) {
	employeeID, err := uuid.Parse(c.Query("employee_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid employee_id"))
		return
	}
	itemID, err := strconv.ParseInt(c.Query("service_item_id"), 10, 64)
	if err != nil || itemID <= 0 {
		c.JSON(http.StatusBadRequest, apierror.New("invalid service_item_id"))
		return
	}
	var asOf *time.Time
	if v := c.Query("as_of"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			c.JSON(http.StatusBadRequest, apierror.New("as_of must be RFC3339"))
			return
		}
		asOf = &t
	}
	r, err := h.svc.GetActiveRate(c.Request.Context(), employeeID, itemID, asOf)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewEmployeeRateResponse(r))
}

// Delete godoc
// @Summary      Delete a rate
// @Tags         employeerates
// @Security     BearerAuth
// @Param        id path int true "Rate ID"
// @Success      204
// @Router       /v1/employeerates/{id} [delete]
func (h *RatesHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.DeleteRate(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
