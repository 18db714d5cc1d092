package dto

import (
	"time"

	ierr "github.com/rentledger/rentledger/internal/errors"
	"github.com/rentledger/rentledger/internal/domain/invoice"
	"github.com/rentledger/rentledger/internal/types"
	"github.com/rentledger/rentledger/internal/validator"
)

// CreateInvoiceRequest asks for the next unbilled cycle of an agreement
// to be invoiced. BillingMonth ("YYYY-MM") optionally targets the cycle
// enclosing the first day of that month instead.
type CreateInvoiceRequest struct {
	AgreementID  string  `json:"agreement_id" validate:"required"`
	BillingMonth *string `json:"billing_month,omitempty"`
}

func (r *CreateInvoiceRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	if r.BillingMonth != nil {
		if _, err := r.ParseBillingMonth(); err != nil {
			return err
		}
	}
	return nil
}

// ParseBillingMonth returns the first day of the requested month, UTC.
func (r *CreateInvoiceRequest) ParseBillingMonth() (time.Time, error) {
	t, err := time.Parse("2006-01", *r.BillingMonth)
	if err != nil {
		return time.Time{}, ierr.WithError(err).
			WithHint("Billing month must be in YYYY-MM format").
			Mark(ierr.ErrValidation)
	}
	return t.UTC(), nil
}

// UploadPaymentProofRequest carries the proof reference for an invoice
// awaiting payment.
type UploadPaymentProofRequest struct {
	ProofURL string `json:"proof_url" validate:"required,url"`
}

func (r *UploadPaymentProofRequest) Validate() error {
	return validator.ValidateRequest(r)
}

// ApproveInvoiceRequest confirms payment with the bank reference.
type ApproveInvoiceRequest struct {
	ReferenceNumber string `json:"reference_number" validate:"required"`
}

func (r *ApproveInvoiceRequest) Validate() error {
	return validator.ValidateRequest(r)
}

// RejectInvoiceRequest sends an invoice back to the payer.
type RejectInvoiceRequest struct {
	Reason string `json:"reason" validate:"required"`
}

func (r *RejectInvoiceRequest) Validate() error {
	return validator.ValidateRequest(r)
}

// InvoiceResponse represents an invoice in API responses
type InvoiceResponse struct {
	*invoice.Invoice
}

func NewInvoiceResponse(inv *invoice.Invoice) *InvoiceResponse {
	return &InvoiceResponse{Invoice: inv}
}

// ListInvoicesResponse represents a paginated list of invoices
type ListInvoicesResponse = types.ListResponse[*InvoiceResponse]
