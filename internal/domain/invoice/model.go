package invoice

import (
	"fmt"
	"time"

	ierr "github.com/rentledger/rentledger/internal/errors"
	"github.com/rentledger/rentledger/internal/types"
	"github.com/shopspring/decimal"
)

// Invoice represents a monthly rental invoice for exactly one billing
// cycle of an agreement. BaseAmount is immutable once the invoice is
// created; OverdueCharges is recomputed from it on every refresh and
// TotalAmount always equals BaseAmount + OverdueCharges.
type Invoice struct {
	ID            string `db:"id" json:"id"`
	InvoiceNumber string `db:"invoice_number" json:"invoice_number"`
	AgreementID   string `db:"agreement_id" json:"agreement_id"`
	CustomerName  string `db:"customer_name" json:"customer_name"`
	CustomerEmail string `db:"customer_email" json:"customer_email"`

	BillingStartDate time.Time `db:"billing_start_date" json:"billing_start_date"`
	BillingEndDate   time.Time `db:"billing_end_date" json:"billing_end_date"`
	CycleNumber      int       `db:"cycle_number" json:"cycle_number"`

	BaseAmount     decimal.Decimal `db:"base_amount" json:"base_amount"`
	OverdueCharges decimal.Decimal `db:"overdue_charges" json:"overdue_charges"`
	TotalAmount    decimal.Decimal `db:"total_amount" json:"total_amount"`

	DueDate       time.Time           `db:"due_date" json:"due_date"`
	InvoiceStatus types.InvoiceStatus `db:"invoice_status" json:"invoice_status"`

	// Payment proof metadata
	PaymentProofURL        *string    `db:"payment_proof_url" json:"payment_proof_url,omitempty"`
	PaymentProofUploadedBy *string    `db:"payment_proof_uploaded_by" json:"payment_proof_uploaded_by,omitempty"`
	PaymentProofUploadedAt *time.Time `db:"payment_proof_uploaded_at" json:"payment_proof_uploaded_at,omitempty"`

	// Approval metadata
	ApprovedBy      *string    `db:"approved_by" json:"approved_by,omitempty"`
	ApprovedAt      *time.Time `db:"approved_at" json:"approved_at,omitempty"`
	ReferenceNumber *string    `db:"reference_number" json:"reference_number,omitempty"`

	// Rejection metadata
	RejectedBy      *string    `db:"rejected_by" json:"rejected_by,omitempty"`
	RejectedAt      *time.Time `db:"rejected_at" json:"rejected_at,omitempty"`
	RejectionReason *string    `db:"rejection_reason" json:"rejection_reason,omitempty"`

	LineItems []*LineItem `json:"line_items,omitempty"`
	types.BaseModel
}

// FormatInvoiceNumber builds an invoice number for the given creation
// date and daily sequence, e.g. MRI-20250101-003. The sequence resets
// with the date prefix.
func FormatInvoiceNumber(createdAt time.Time, sequence int) string {
	return fmt.Sprintf("%s-%s-%03d", types.InvoiceNumberPrefix, types.InvoiceDatePrefix(createdAt), sequence)
}

func (i *Invoice) Validate() error {
	if i.BaseAmount.IsNegative() {
		return ierr.NewError("invoice validation failed").
			WithHint("base amount must be non negative").
			Mark(ierr.ErrValidation)
	}
	if i.OverdueCharges.IsNegative() {
		return ierr.NewError("invoice validation failed").
			WithHint("overdue charges must be non negative").
			Mark(ierr.ErrValidation)
	}
	if !i.TotalAmount.Equal(i.BaseAmount.Add(i.OverdueCharges)) {
		return ierr.NewError("invoice validation failed").
			WithHint("total amount must equal base amount plus overdue charges").
			Mark(ierr.ErrValidation)
	}
	if i.BillingEndDate.Before(i.BillingStartDate) {
		return ierr.NewError("invoice validation failed").
			WithHint("billing end date must be after billing start date").
			Mark(ierr.ErrValidation)
	}
	if err := i.InvoiceStatus.Validate(); err != nil {
		return err
	}

	if len(i.LineItems) > 0 {
		lineTotal := decimal.Zero
		for _, item := range i.LineItems {
			if err := item.Validate(); err != nil {
				return err
			}
			lineTotal = lineTotal.Add(item.LineTotal)
		}
		if !lineTotal.Equal(i.BaseAmount) {
			return ierr.NewError("invoice validation failed").
				WithHintf("line totals must sum to the base amount: %s != %s", lineTotal, i.BaseAmount).
				Mark(ierr.ErrValidation)
		}
	}

	return nil
}
