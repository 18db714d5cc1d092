package invoice

import (
	"time"

	ierr "github.com/rentledger/rentledger/internal/errors"
	"github.com/rentledger/rentledger/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// Lifecycle transitions. Each transition is total over its legal source
// states: calling it from anywhere else fails with a precondition error
// naming the illegal source state, never a silent no-op. All mutations
// happen in memory; the caller persists the invoice once afterwards, so
// a failed transition leaves no partial state behind.

// proofUploadSources are the states a payment proof may be uploaded
// from. Overdue and rejected invoices recover through re-upload.
var proofUploadSources = []types.InvoiceStatus{
	types.InvoiceStatusPendingPayment,
	types.InvoiceStatusOverdue,
	types.InvoiceStatusRejected,
}

// overdueSources are the states the lazy overdue check may degrade.
var overdueSources = []types.InvoiceStatus{
	types.InvoiceStatusPendingPayment,
	types.InvoiceStatusRejected,
}

func transitionError(action string, from types.InvoiceStatus, allowed []types.InvoiceStatus) error {
	return ierr.NewError("illegal invoice status transition").
		WithHintf("Cannot %s an invoice in status %s", action, from).
		WithReportableDetails(map[string]any{
			"current_status":   from,
			"allowed_statuses": allowed,
		}).
		Mark(ierr.ErrPreconditionFailed)
}

// AttachPaymentProof records an uploaded proof of payment and moves the
// invoice to pending approval. Any earlier rejection metadata is
// cleared so a re-submission starts clean.
func (i *Invoice) AttachPaymentProof(proofURL, uploadedBy string, at time.Time) error {
	if !lo.Contains(proofUploadSources, i.InvoiceStatus) {
		return transitionError("upload payment proof for", i.InvoiceStatus, proofUploadSources)
	}
	if proofURL == "" {
		return ierr.NewError("missing payment proof").
			WithHint("A payment proof reference is required").
			Mark(ierr.ErrValidation)
	}

	i.PaymentProofURL = lo.ToPtr(proofURL)
	i.PaymentProofUploadedBy = lo.ToPtr(uploadedBy)
	i.PaymentProofUploadedAt = lo.ToPtr(at)
	i.RejectedBy = nil
	i.RejectedAt = nil
	i.RejectionReason = nil
	i.InvoiceStatus = types.InvoiceStatusPendingApproval
	return nil
}

// Approve marks the invoice paid. Paid is terminal.
func (i *Invoice) Approve(referenceNumber, approvedBy string, at time.Time) error {
	if i.InvoiceStatus != types.InvoiceStatusPendingApproval {
		return transitionError("approve", i.InvoiceStatus, []types.InvoiceStatus{types.InvoiceStatusPendingApproval})
	}
	if referenceNumber == "" {
		return ierr.NewError("missing reference number").
			WithHint("A payment reference number is required for approval").
			Mark(ierr.ErrValidation)
	}

	i.ReferenceNumber = lo.ToPtr(referenceNumber)
	i.ApprovedBy = lo.ToPtr(approvedBy)
	i.ApprovedAt = lo.ToPtr(at)
	i.InvoiceStatus = types.InvoiceStatusPaid
	return nil
}

// Reject sends the invoice back to the payer. Approval metadata from
// any earlier review no longer applies and is cleared.
func (i *Invoice) Reject(reason, rejectedBy string, at time.Time) error {
	if i.InvoiceStatus != types.InvoiceStatusPendingApproval {
		return transitionError("reject", i.InvoiceStatus, []types.InvoiceStatus{types.InvoiceStatusPendingApproval})
	}
	if reason == "" {
		return ierr.NewError("missing rejection reason").
			WithHint("A rejection reason is required").
			Mark(ierr.ErrValidation)
	}

	i.RejectionReason = lo.ToPtr(reason)
	i.RejectedBy = lo.ToPtr(rejectedBy)
	i.RejectedAt = lo.ToPtr(at)
	i.ApprovedBy = nil
	i.ApprovedAt = nil
	i.ReferenceNumber = nil
	i.InvoiceStatus = types.InvoiceStatusRejected
	return nil
}

// MarkOverdue applies freshly computed overdue charges and degrades the
// invoice. The charges passed in must have been recomputed from the
// original base amount; MarkOverdue keeps the invariant
// TotalAmount = BaseAmount + OverdueCharges.
func (i *Invoice) MarkOverdue(charges decimal.Decimal) error {
	if !lo.Contains(overdueSources, i.InvoiceStatus) {
		return transitionError("mark overdue", i.InvoiceStatus, overdueSources)
	}
	if charges.IsNegative() {
		return ierr.NewError("invalid overdue charges").
			WithHint("Overdue charges must be non negative").
			Mark(ierr.ErrValidation)
	}

	i.OverdueCharges = charges
	i.TotalAmount = i.BaseAmount.Add(charges)
	i.InvoiceStatus = types.InvoiceStatusOverdue
	return nil
}

// RefreshOverdueCharges updates the stored charges for an invoice that
// is already overdue. Recomputation from the base amount keeps repeated
// refreshes idempotent within the same calendar day.
func (i *Invoice) RefreshOverdueCharges(charges decimal.Decimal) error {
	if i.InvoiceStatus != types.InvoiceStatusOverdue {
		return transitionError("refresh overdue charges for", i.InvoiceStatus, []types.InvoiceStatus{types.InvoiceStatusOverdue})
	}
	if charges.IsNegative() {
		return ierr.NewError("invalid overdue charges").
			WithHint("Overdue charges must be non negative").
			Mark(ierr.ErrValidation)
	}

	i.OverdueCharges = charges
	i.TotalAmount = i.BaseAmount.Add(charges)
	return nil
}

// EnsureDeletable guards deletion: paid invoices are immutable history.
func (i *Invoice) EnsureDeletable() error {
	if i.InvoiceStatus == types.InvoiceStatusPaid {
		return ierr.NewError("cannot delete a paid invoice").
			WithHint("Paid invoices cannot be deleted").
			WithReportableDetails(map[string]any{
				"invoice_number": i.InvoiceNumber,
			}).
			Mark(ierr.ErrPreconditionFailed)
	}
	return nil
}

// IsOverdueCandidate reports whether the lazy overdue check applies to
// the invoice's current status.
func (i *Invoice) IsOverdueCandidate() bool {
	return lo.Contains(overdueSources, i.InvoiceStatus)
}
