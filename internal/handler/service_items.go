package handler

import (
	"net/http"

	"attendance/internal/dto"
	"attendance/internal/middleware"
	"attendance/internal/model"
	"attendance/internal/service"

	"github.com/gin-gonic/gin"
)

type ServiceItemsHandler struct{ svc service.ServiceItemService }

func NewServiceItemsHandler(svc service.ServiceItemService) *ServiceItemsHandler {
	return &ServiceItemsHandler{svc: svc}
}

func serviceItemList(items []model.ServiceItem, withCost bool) []dto.ServiceItemResponse {
	out := make([]dto.ServiceItemResponse, 0, len(items))
	for i := range items {
		out = append(out, dto.NewServiceItemResponse(&items[i], withCost))
	}
	return out
}

// List godoc
// @Summary      List service items
// @Description  Base cost is only included for managers and administrators.
// @Tags         service-items
// @Produce      json
// @Security     BearerAuth
// @Param        include_inactive query bool false "Include deactivated items"
// @Success      200  {array} dto.ServiceItemResponse
// @Router       /v1/service-items [get]
func (h *ServiceItemsHandler) List(c *gin.Context) {
	claims := middleware.GetClaims(c)
	includeInactive := c.Query("include_inactive") == "true" && isStaffManager(claims)
	items, err := h.svc.List(c.Request.Context(), includeInactive)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, serviceItemList(items, isStaffManager(claims)))
}

// ShiftHours godoc
// @Summary      List active shift-hour items
// @Tags         service-items
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array} dto.ServiceItemResponse
// @Router       /v1/service-items/shift-hours [get]
func (h *ServiceItemsHandler) ShiftHours(c *gin.Context) {
	items, err := h.svc.ListShiftHours(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, serviceItemList(items, isStaffManager(middleware.GetClaims(c))))
}

// Get godoc
// @Summary      Get service item
// @Tags         service-items
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Service item ID"
// @Success      200  {object} dto.ServiceItemResponse
// @Failure      404  {object} apierror.APIError
// @Router       /v1/service-items/{id} [get]
func (h *ServiceItemsHandler) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	item, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewServiceItemResponse(item, isStaffManager(middleware.GetClaims(c))))
}

// Create godoc
// @Summary      Create service item
// @Tags         service-items
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.ServiceItemRequest true "Service item"
// @Success      201  {object} dto.ServiceItemResponse
// @Failure      409  {object} apierror.APIError
// @Failure      400  {object} apierror.ValidationError
// @Router       /v1/service-items [post]
func (h *ServiceItemsHandler) Create(c *gin.Context) {
	var req dto.ServiceItemRequest
	if !bindAndValidate(c, &req) {
		return
	}
	item, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewServiceItemResponse(item, true))
}

// Update godoc
// @Summary      Update service item
// @Tags         service-items
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path int true "Service item ID"
// @Param        body body dto.ServiceItemRequest true "Service item"
// @Success      200  {object} dto.ServiceItemResponse
// @Router       /v1/service-items/{id} [put]
func (h *ServiceItemsHandler) Update(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req dto.ServiceItemRequest
	if !bindAndValidate(c, &req) {
		return
	}
	item, err := h.svc.Update(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewServiceItemResponse(item, true))
}

// Deactivate godoc
// @Summary      Deactivate service item
// @Tags         service-items
// @Security     BearerAuth
// @Param        id path int true "Service item ID"
// @Success      204
// @Router       /v1/service-items/{id} [delete]
func (h *ServiceItemsHandler) Deactivate(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Deactivate(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
