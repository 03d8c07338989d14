package handler

import (
	"net/http"

	"attendance/internal/dto"
	"attendance/internal/infra"
	"attendance/internal/middleware"
	"attendance/internal/model"
	"attendance/internal/service"

	"github.com/gin-gonic/gin"
)

type InvoicesHandler struct {
	svc    service.InvoiceService
	notify service.NotificationService
	docs   DocumentConfig
}

func NewInvoicesHandler(svc service.InvoiceService, notify service.NotificationService, docs DocumentConfig) *InvoicesHandler {
	return &InvoicesHandler{svc: svc, notify: notify, docs: docs}
}

// CreateFromQuote godoc
// @Summary      Invoice an approved quote
// @Description  Idempotent by default: returns 201 with a new invoice or 200 with the existing one. With strict=true an already invoiced quote yields 409.
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        strict query bool false "Fail when the quote was already invoiced"
// @Param        body   body  dto.CreateInvoiceRequest true "Quote"
// @Success      200  {object} dto.InvoiceResponse
// @Success      201  {object} dto.InvoiceResponse
// @Failure      400  {object} apierror.APIError
// @Failure      404  {object} apierror.APIError
// @Failure      409  {object} apierror.APIError
// @Router       /v1/invoices/from-quote [post]
func (h *InvoicesHandler) CreateFromQuote(c *gin.Context) {
	var req dto.CreateInvoiceRequest
	if !bindAndValidate(c, &req) {
		return
	}
	createdBy := middleware.GetClaims(c).UID()
	ctx := c.Request.Context()

	if c.Query("strict") == "true" {
		inv, err := h.svc.IssueFromQuote(ctx, req.QuoteID, createdBy)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, dto.NewInvoiceResponse(inv))
		return
	}

	inv, created, err := h.svc.CreateFromQuote(ctx, req.QuoteID, createdBy)
	if err != nil {
		respondError(c, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, dto.NewInvoiceResponse(inv))
}

// Get godoc
// @Summary      Get invoice
// @Tags         invoices
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Invoice ID"
// @Success      200  {object} dto.InvoiceResponse
// @Failure      404  {object} apierror.APIError
// @Router       /v1/invoices/{id} [get]
func (h *InvoicesHandler) Get(c *gin.Context) {
	inv, ok := h.load(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, dto.NewInvoiceResponse(inv))
}

func (h *InvoicesHandler) load(c *gin.Context) (*model.Invoice, bool) {
	id, ok := paramID(c, "id")
	if !ok {
		return nil, false
	}
	inv, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	return inv, true
}

// ListByClient godoc
// @Summary      List a client's invoices
// @Tags         invoices
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Client UUID"
// @Success      200  {array} dto.InvoiceResponse
// @Router       /v1/clients/{id}/invoices [get]
func (h *InvoicesHandler) ListByClient(c *gin.Context) {
	clientID, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	if claims := middleware.GetClaims(c); isClientOnly(claims) && claims.UID() != clientID {
		forbidden(c)
		return
	}
	list, err := h.svc.ListByClient(c.Request.Context(), clientID)
	if err != nil {
		respondError(c, err)
		return
	}
	out := make([]dto.InvoiceResponse, 0, len(list))
	for i := range list {
		out = append(out, dto.NewInvoiceResponse(&list[i]))
	}
	c.JSON(http.StatusOK, out)
}

// UpdateStatus godoc
// @Summary      Update invoice status
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path int true "Invoice ID"
// @Param        body body dto.UpdateInvoiceStatusRequest true "New status"
// @Success      200  {object} dto.InvoiceResponse
// @Router       /v1/invoices/{id}/status [put]
func (h *InvoicesHandler) UpdateStatus(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateInvoiceStatusRequest
	if !bindAndValidate(c, &req) {
		return
	}
	inv, err := h.svc.UpdateStatus(c.Request.Context(), id, model.InvoiceStatus(req.Status))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewInvoiceResponse(inv))
}

// Delete godoc
// @Summary      Delete invoice
// @Description  Soft delete; the invoice stays in storage for audit and its quote may be invoiced again.
// @Tags         invoices
// @Security     BearerAuth
// @Param        id path int true "Invoice ID"
// @Success      204
// @Router       /v1/invoices/{id} [delete]
func (h *InvoicesHandler) Delete(c *gin.Context) {
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
// @Summary      Email invoice to client
// @Tags         invoices
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Invoice ID"
// @Success      202  {object} map[string]interface{}
// @Router       /v1/invoices/{id}/send [post]
func (h *InvoicesHandler) Send(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	l, err := h.notify.SendInvoice(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"email_log_id": l.ID, "status": l.Status, "to": l.ToEmail})
}

// PDF godoc
// @Summary      Download invoice PDF
// @Tags         invoices
// @Produce      application/pdf
// @Security     BearerAuth
// @Param        id path int true "Invoice ID"
// @Success      200
// @Router       /v1/invoices/{id}/pdf [get]
func (h *InvoicesHandler) PDF(c *gin.Context) {
	inv, ok := h.load(c)
	if !ok {
		return
	}
	path, err := infra.RenderInvoicePDF(inv, h.docs.Company, h.docs.StoragePath)
	if err != nil {
		respondError(c, err)
		return
	}
	c.FileAttachment(path, inv.InvoiceNumber+".pdf")
}
