package handler

import (
	"fmt"
	"net/http"

	"attendance/internal/apierror"
	"attendance/internal/dto"
	"attendance/internal/infra"
	"attendance/internal/middleware"
	"attendance/internal/model"
	"attendance/internal/service"

	"github.com/gin-gonic/gin"
)

// DocumentConfig tells handlers where to render PDFs and what company name to print.
type DocumentConfig struct {
	Company     string
	StoragePath string
}

type QuotesHandler struct {
	svc    service.QuoteService
	orders service.JobOrderService
	notify service.NotificationService
	docs   DocumentConfig
}

func NewQuotesHandler(svc service.QuoteService, orders service.JobOrderService, notify service.NotificationService, docs DocumentConfig) *QuotesHandler {
	return &QuotesHandler{svc: svc, orders: orders, notify: notify, docs: docs}
}

// Create godoc
// @Summary      Create quote
// @Description  Opens an empty Draft quote (amount 0) against a job order, valid for 30 days.
// @Tags         quotes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CreateQuoteRequest true "Quote"
// @Success      201  {object} dto.QuoteResponse
// @Failure      404  {object} apierror.APIError
// @Router       /v1/quotes [post]
func (h *QuotesHandler) Create(c *gin.Context) {
	var req dto.CreateQuoteRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	q, err := h.svc.Create(c.Request.Context(), req.JobOrderID, claims.UID(), req.Description)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewQuoteResponse(q, true))
}

// GenerateFromChanges godoc
// @Summary      Regenerate quote from job changes
// @Description  Issues a new Draft quote and moves the job order back to Quoted with the new estimate.
// @Tags         quotes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.GenerateQuoteRequest true "New estimate"
// @Success      201  {object} dto.QuoteResponse
// @Failure      404  {object} apierror.APIError
// @Router       /v1/quotes/generate-from-changes [post]
func (h *QuotesHandler) GenerateFromChanges(c *gin.Context) {
	var req dto.GenerateQuoteRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	q, err := h.svc.GenerateFromJobChanges(c.Request.Context(), req.JobOrderID, req.NewEstimatedHours, claims.UID())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewQuoteResponse(q, true))
}

// load fetches the quote and hides other clients' quotes behind a 404.
func (h *QuotesHandler) load(c *gin.Context) (*model.Quote, bool) {
	q, ok := h.fetch(c)
	if !ok {
		return nil, false
	}
	if claims := middleware.GetClaims(c); isClientOnly(claims) && !ownsQuote(claims, q) {
		quoteNotFound(c, q.ID)
		return nil, false
	}
	return q, true
}

func (h *QuotesHandler) fetch(c *gin.Context) (*model.Quote, bool) {
	id, ok := paramID(c, "id")
	if !ok {
		return nil, false
	}
	q, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	return q, true
}

// ownsQuote reports whether the quote's job order belongs to the caller.
func ownsQuote(claims *middleware.JWTClaims, q *model.Quote) bool {
	return q.JobOrder != nil && q.JobOrder.ClientID == claims.UID()
}

func quoteNotFound(c *gin.Context, id int64) {
	c.JSON(http.StatusNotFound, apierror.New(fmt.Sprintf("not found: quote %d", id)))
}

// Get godoc
// @Summary      Get quote
// @Description  Cost figures are only included for managers and administrators.
// @Tags         quotes
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Quote ID"
// @Success      200  {object} dto.QuoteResponse
// @Failure      404  {object} apierror.APIError
// @Router       /v1/quotes/{id} [get]
func (h *QuotesHandler) Get(c *gin.Context) {
	q, ok := h.load(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, dto.NewQuoteResponse(q, isStaffManager(middleware.GetClaims(c))))
}

// ListByJobOrder godoc
// @Summary      List quotes of a job order
// @Tags         quotes
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Job order ID"
// @Success      200  {array} dto.QuoteResponse
// @Router       /v1/job-orders/{id}/quotes [get]
func (h *QuotesHandler) ListByJobOrder(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	claims := middleware.GetClaims(c)
	if isClientOnly(claims) {
		jo, err := h.orders.Get(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		if jo.ClientID != claims.UID() {
			c.JSON(http.StatusNotFound, apierror.New(fmt.Sprintf("not found: job order %d", id)))
			return
		}
	}
	quotes, err := h.svc.ListByJobOrder(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewQuoteList(quotes, isStaffManager(claims)))
}

// UpdateStatus godoc
// @Summary      Update quote status
// @Description  Approving a quote moves its job order to Approved. Clients may only approve or reject their own quotes.
// @Tags         quotes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path int true "Quote ID"
// @Param        body body dto.UpdateQuoteStatusRequest true "New status"
// @Success      200  {object} dto.QuoteResponse
// @Failure      403  {object} apierror.APIError
// @Failure      404  {object} apierror.APIError
// @Router       /v1/quotes/{id}/status [put]
func (h *QuotesHandler) UpdateStatus(c *gin.Context) {
	var req dto.UpdateQuoteStatusRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	status := model.QuoteStatus(req.Status)
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	// Non-staff callers may only answer quotes on their own job orders, whatever other roles they hold.
	if !isStaffManager(claims) {
		if !claims.HasRole(model.RoleClient) || (status != model.QuoteApproved && status != model.QuoteRejected) {
			forbidden(c)
			return
		}
		q, ok := h.fetch(c)
		if !ok {
			return
		}
		if !ownsQuote(claims, q) {
			quoteNotFound(c, id)
			return
		}
	}
	q, err := h.svc.UpdateStatus(c.Request.Context(), id, status, req.ClientNotes)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewQuoteResponse(q, isStaffManager(claims)))
}

// AddLineItem godoc
// @Summary      Add quote line item
// @Description  Unit price and cost default to the employee's active rate, then to the service item's base values.
// @Tags         quotes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path int true "Quote ID"
// @Param        body body dto.AddLineItemRequest true "Line item"
// @Success      201  {object} dto.QuoteResponse
// @Failure      400  {object} apierror.APIError
// @Router       /v1/quotes/{id}/line-items [post]
func (h *QuotesHandler) AddLineItem(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req dto.AddLineItemRequest
	if !bindAndValidate(c, &req) {
		return
	}
	q, err := h.svc.AddLineItem(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewQuoteResponse(q, true))
}

// RemoveLineItem godoc
// @Summary      Remove quote line item
// @Tags         quotes
// @Produce      json
// @Security     BearerAuth
// @Param        id     path int true "Quote ID"
// @Param        itemId path int true "Line item ID"
// @Success      200  {object} dto.QuoteResponse
// @Router       /v1/quotes/{id}/line-items/{itemId} [delete]
func (h *QuotesHandler) RemoveLineItem(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	itemID, ok := paramID(c, "itemId")
	if !ok {
		return
	}
	q, err := h.svc.RemoveLineItem(c.Request.Context(), id, itemID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewQuoteResponse(q, true))
}

// Delete godoc
// @Summary      Delete quote
// @Description  Soft delete; the quote stays in storage for audit.
// @Tags         quotes
// @Security     BearerAuth
// @Param        id path int true "Quote ID"
// @Success      204
// @Router       /v1/quotes/{id} [delete]
func (h *QuotesHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Send godoc
// @Summary      Email quote to client
// @Tags         quotes
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Quote ID"
// @Success      202  {object} map[string]interface{}
// @Router       /v1/quotes/{id}/send [post]
func (h *QuotesHandler) Send(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	l, err := h.notify.SendQuote(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"email_log_id": l.ID, "status": l.Status, "to": l.ToEmail})
}

// PDF godoc
// @Summary      Download quote PDF
// @Tags         quotes
// @Produce      application/pdf
// @Security     BearerAuth
// @Param        id path int true "Quote ID"
// @Success      200
// @Router       /v1/quotes/{id}/pdf [get]
func (h *QuotesHandler) PDF(c *gin.Context) {
	q, ok := h.load(c)
	if !ok {
		return
	}
	path, err := infra.RenderQuotePDF(q, h.docs.Company, h.docs.StoragePath)
	if err != nil {
		respondError(c, err)
		return
	}
	c.FileAttachment(path, q.QuoteNumber+".pdf")
}
