package handler

import (
	"net/http"

	"attendance/internal/apierror"
	"attendance/internal/dto"
	"attendance/internal/middleware"
	"attendance/internal/model"
	"attendance/internal/repository"
	"attendance/internal/service"

	"github.com/gin-gonic/gin"
)

type JobOrdersHandler struct{ svc service.JobOrderService }

func NewJobOrdersHandler(svc service.JobOrderService) *JobOrdersHandler {
	return &JobOrdersHandler{svc: svc}
}

// Create godoc
// @Summary      Create job order
// @Description  Records a client's service request in Pending status.
// @Tags         job-orders
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CreateJobOrderRequest true "Job order"
// @Success      201  {object} dto.JobOrderResponse
// @Failure      404  {object} apierror.APIError
// @Failure      400  {object} apierror.ValidationError
// @Router       /v1/job-orders [post]
func (h *JobOrdersHandler) Create(c *gin.Context) {
	var req dto.CreateJobOrderRequest
	if !bindAndValidate(c, &req) {
		return
	}
	jo, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewJobOrderResponse(jo))
}

// List godoc
// @Summary      List job orders
// @Description  Clients only see their own orders.
// @Tags         job-orders
// @Produce      json
// @Security     BearerAuth
// @Param        status query string false "Status filter"
// @Success      200  {array} dto.JobOrderResponse
// @Router       /v1/job-orders [get]
func (h *JobOrdersHandler) List(c *gin.Context) {
	claims := middleware.GetClaims(c)
	var f repository.JobOrderFilter
	if isClientOnly(claims) {
		uid := claims.UID()
		f.ClientID = &uid
	}
	if s := c.Query("status"); s != "" {
		st := model.JobOrderStatus(s)
		f.Status = &st
	}
	orders, err := h.svc.List(c.Request.Context(), f)
	if err != nil {
		respondError(c, err)
		return
	}
	out := make([]dto.JobOrderResponse, 0, len(orders))
	for i := range orders {
		out = append(out, dto.NewJobOrderResponse(&orders[i]))
	}
	c.JSON(http.StatusOK, out)
}

// Get godoc
// @Summary      Get job order
// @Tags         job-orders
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Job order ID"
// @Success      200  {object} dto.JobOrderResponse
// @Failure      404  {object} apierror.APIError
// @Router       /v1/job-orders/{id} [get]
func (h *JobOrdersHandler) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	jo, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	claims := middleware.GetClaims(c)
	if isClientOnly(claims) && jo.ClientID != claims.UID() {
		c.JSON(http.StatusNotFound, apierror.New("job order not found"))
		return
	}
	c.JSON(http.StatusOK, dto.NewJobOrderResponse(jo))
}

// Cancel godoc
// @Summary      Cancel job order
// @Description  Only Pending, Quoted or Approved orders can be cancelled.
// @Tags         job-orders
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Job order ID"
// @Success      200  {object} dto.JobOrderResponse
// @Failure      400  {object} apierror.APIError
// @Router       /v1/job-orders/{id}/cancel [post]
func (h *JobOrdersHandler) Cancel(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	jo, err := h.svc.Cancel(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewJobOrderResponse(jo))
}
