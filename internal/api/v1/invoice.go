package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rentledger/rentledger/internal/api/dto"
	ierr "github.com/rentledger/rentledger/internal/errors"
	"github.com/rentledger/rentledger/internal/logger"
	"github.com/rentledger/rentledger/internal/service"
	"github.com/rentledger/rentledger/internal/types"
)

type InvoiceHandler struct {
	invoiceService service.InvoiceService
	logger         *logger.Logger
}

func NewInvoiceHandler(invoiceService service.InvoiceService, logger *logger.Logger) *InvoiceHandler {
	return &InvoiceHandler{
		invoiceService: invoiceService,
		logger:         logger,
	}
}

// CreateInvoice godoc
// @Summary Create a new invoice
// @Description Invoice the next unbilled cycle of an agreement, or the cycle of a given billing month
// @Tags Invoices
// @Accept json
// @Produce json
// @Param invoice body dto.CreateInvoiceRequest true "Invoice details"
// @Success 201 {object} dto.InvoiceResponse
// @Router /v1/invoices [post]
func (h *InvoiceHandler) CreateInvoice(c *gin.Context) {
	var req dto.CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Errorw("failed to bind request", "error", err)
		c.Error(ierr.WithError(err).WithHint("invalid request").Mark(ierr.ErrValidation))
		return
	}

	invoice, err := h.invoiceService.CreateInvoice(c.Request.Context(), req)
	if err != nil {
		h.logger.Errorw("failed to create invoice", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, invoice)
}

// GetInvoice godoc
// @Summary Get an invoice by ID
// @Description Get detailed information about an invoice; overdue charges are refreshed on read
// @Tags Invoices
// @Produce json
// @Param id path string true "Invoice ID"
// @Success 200 {object} dto.InvoiceResponse
// @Router /v1/invoices/{id} [get]
func (h *InvoiceHandler) GetInvoice(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.Error(ierr.NewError("invalid invoice id").Mark(ierr.ErrValidation))
		return
	}

	invoice, err := h.invoiceService.GetInvoice(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, invoice)
}

// ListInvoices godoc
// @Summary List invoices
// @Description List invoices with optional filtering and pagination
// @Tags Invoices
// @Produce json
// @Param filter query types.InvoiceFilter false "Filter"
// @Success 200 {object} dto.ListInvoicesResponse
// @Router /v1/invoices [get]
func (h *InvoiceHandler) ListInvoices(c *gin.Context) {
	var filter types.InvoiceFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.logger.Errorw("failed to bind query parameters", "error", err)
		c.Error(ierr.WithError(err).WithHint("invalid query parameters").Mark(ierr.ErrValidation))
		return
	}
	if filter.QueryFilter == nil {
		filter.QueryFilter = types.NewDefaultQueryFilter()
	}

	resp, err := h.invoiceService.ListInvoices(c.Request.Context(), &filter)
	if err != nil {
		h.logger.Errorw("failed to list invoices", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// UploadPaymentProof godoc
// @Summary Upload payment proof
// @Description Attach a proof of payment and move the invoice to pending approval
// @Tags Invoices
// @Accept json
// @Produce json
// @Param id path string true "Invoice ID"
// @Param proof body dto.UploadPaymentProofRequest true "Payment proof"
// @Success 200 {object} dto.InvoiceResponse
// @Router /v1/invoices/{id}/payment-proof [post]
func (h *InvoiceHandler) UploadPaymentProof(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.Error(ierr.NewError("invalid invoice id").Mark(ierr.ErrValidation))
		return
	}

	var req dto.UploadPaymentProofRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Errorw("failed to bind request", "error", err)
		c.Error(ierr.WithError(err).WithHint("invalid request").Mark(ierr.ErrValidation))
		return
	}

	invoice, err := h.invoiceService.UploadPaymentProof(c.Request.Context(), id, req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, invoice)
}

// ApproveInvoice godoc
// @Summary Approve an invoice
// @Description Confirm the uploaded payment and mark the invoice paid
// @Tags Invoices
// @Accept json
// @Produce json
// @Param id path string true "Invoice ID"
// @Param approval body dto.ApproveInvoiceRequest true "Approval details"
// @Success 200 {object} dto.InvoiceResponse
// @Router /v1/invoices/{id}/approve [post]
func (h *InvoiceHandler) ApproveInvoice(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.Error(ierr.NewError("invalid invoice id").Mark(ierr.ErrValidation))
		return
	}

	var req dto.ApproveInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Errorw("failed to bind request", "error", err)
		c.Error(ierr.WithError(err).WithHint("invalid request").Mark(ierr.ErrValidation))
		return
	}

	invoice, err := h.invoiceService.ApproveInvoice(c.Request.Context(), id, req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, invoice)
}

// RejectInvoice godoc
// @Summary Reject an invoice
// @Description Send the invoice back to the payer with a reason; the payer is notified
// @Tags Invoices
// @Accept json
// @Produce json
// @Param id path string true "Invoice ID"
// @Param rejection body dto.RejectInvoiceRequest true "Rejection details"
// @Success 200 {object} dto.InvoiceResponse
// @Router /v1/invoices/{id}/reject [post]
func (h *InvoiceHandler) RejectInvoice(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.Error(ierr.NewError("invalid invoice id").Mark(ierr.ErrValidation))
		return
	}

	var req dto.RejectInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Errorw("failed to bind request", "error", err)
		c.Error(ierr.WithError(err).WithHint("invalid request").Mark(ierr.ErrValidation))
		return
	}

	invoice, err := h.invoiceService.RejectInvoice(c.Request.Context(), id, req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, invoice)
}

// DeleteInvoice godoc
// @Summary Delete an invoice
// @Description Delete an invoice; paid invoices cannot be deleted
// @Tags Invoices
// @Produce json
// @Param id path string true "Invoice ID"
// @Success 204
// @Router /v1/invoices/{id} [delete]
func (h *InvoiceHandler) DeleteInvoice(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.Error(ierr.NewError("invalid invoice id").Mark(ierr.ErrValidation))
		return
	}

	if err := h.invoiceService.DeleteInvoice(c.Request.Context(), id); err != nil {
		c.Error(err)
		return
	}

	c.Status(http.StatusNoContent)
}

// RefreshOverdue godoc
// @Summary Refresh overdue invoices
// @Description Run the overdue sweep across all non-terminal invoices
// @Tags Invoices
// @Produce json
// @Success 200 {object} map[string]int
// @Router /v1/invoices/refresh-overdue [post]
func (h *InvoiceHandler) RefreshOverdue(c *gin.Context) {
	updated, err := h.invoiceService.RefreshOverdueInvoices(c.Request.Context())
	if err != nil {
		h.logger.Errorw("overdue sweep failed", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"updated": updated})
}
