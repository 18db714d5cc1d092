package types

import (
	"time"

	ierr "github.com/rentledger/rentledger/internal/errors"
	"github.com/samber/lo"
)

// InvoiceStatus represents where an invoice is in its payment and
// approval lifecycle.
//
// PENDING_PAYMENT -> PENDING_APPROVAL -> PAID is the happy path.
// PENDING_PAYMENT and REJECTED degrade to OVERDUE once the due date
// passes; OVERDUE and REJECTED both recover through a fresh payment
// proof upload. PAID is terminal.
type InvoiceStatus string

const (
	InvoiceStatusPendingPayment  InvoiceStatus = "PENDING_PAYMENT"
	InvoiceStatusOverdue         InvoiceStatus = "OVERDUE"
	InvoiceStatusPendingApproval InvoiceStatus = "PENDING_APPROVAL"
	InvoiceStatusRejected        InvoiceStatus = "REJECTED"
	InvoiceStatusPaid            InvoiceStatus = "PAID"
)

func (s InvoiceStatus) String() string {
	return string(s)
}

func (s InvoiceStatus) Validate() error {
	allowed := []InvoiceStatus{
		InvoiceStatusPendingPayment,
		InvoiceStatusOverdue,
		InvoiceStatusPendingApproval,
		InvoiceStatusRejected,
		InvoiceStatusPaid,
	}
	if !lo.Contains(allowed, s) {
		return ierr.NewError("invalid invoice status").
			WithHint("Please provide a valid invoice status").
			WithReportableDetails(map[string]any{
				"allowed": allowed,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// IsTerminal reports whether no further transitions are possible.
func (s InvoiceStatus) IsTerminal() bool {
	return s == InvoiceStatusPaid
}

// InvoiceNumberPrefix is the fixed prefix of all monthly rental
// invoice numbers, e.g. MRI-20250101-001.
const InvoiceNumberPrefix = "MRI"

// InvoiceDatePrefix formats the date part of an invoice number.
func InvoiceDatePrefix(t time.Time) string {
	return t.UTC().Format("20060102")
}

// InvoiceFilter represents filters for invoice queries
type InvoiceFilter struct {
	*QueryFilter

	InvoiceIDs    []string       `json:"invoice_ids,omitempty" form:"invoice_ids"`
	AgreementID   *string        `json:"agreement_id,omitempty" form:"agreement_id"`
	InvoiceStatus *InvoiceStatus `json:"invoice_status,omitempty" form:"invoice_status"`
	BillingMonth  *int           `json:"billing_month,omitempty" form:"billing_month"`
	BillingYear   *int           `json:"billing_year,omitempty" form:"billing_year"`
	CustomerName  *string        `json:"customer_name,omitempty" form:"customer_name"`
	CustomerEmail *string        `json:"customer_email,omitempty" form:"customer_email"`
}

// NewInvoiceFilter creates a filter with default pagination
func NewInvoiceFilter() *InvoiceFilter {
	return &InvoiceFilter{
		QueryFilter: NewDefaultQueryFilter(),
	}
}

// NewNoLimitInvoiceFilter creates an unpaginated invoice filter
func NewNoLimitInvoiceFilter() *InvoiceFilter {
	return &InvoiceFilter{
		QueryFilter: NewNoLimitQueryFilter(),
	}
}

func (f *InvoiceFilter) Validate() error {
	if f == nil {
		return nil
	}
	if f.QueryFilter != nil {
		if err := f.QueryFilter.Validate(); err != nil {
			return err
		}
	}
	if f.InvoiceStatus != nil {
		if err := f.InvoiceStatus.Validate(); err != nil {
			return err
		}
	}
	if f.BillingMonth != nil && (*f.BillingMonth < 1 || *f.BillingMonth > 12) {
		return ierr.NewError("invalid billing month").
			WithHint("Billing month must be between 1 and 12").
			Mark(ierr.ErrValidation)
	}
	return nil
}

func (f *InvoiceFilter) GetLimit() int {
	if f == nil || f.QueryFilter == nil {
		return DefaultPageSize
	}
	return f.QueryFilter.GetLimit()
}

func (f *InvoiceFilter) GetOffset() int {
	if f == nil || f.QueryFilter == nil {
		return 0
	}
	return f.QueryFilter.GetOffset()
}

func (f *InvoiceFilter) GetStatus() Status {
	if f == nil || f.QueryFilter == nil {
		return StatusPublished
	}
	return f.QueryFilter.GetStatus()
}

func (f *InvoiceFilter) GetSort() string {
	if f == nil || f.QueryFilter == nil {
		return "created_at"
	}
	return f.QueryFilter.GetSort()
}

func (f *InvoiceFilter) GetOrder() string {
	if f == nil || f.QueryFilter == nil {
		return OrderDesc
	}
	return f.QueryFilter.GetOrder()
}

func (f *InvoiceFilter) IsUnlimited() bool {
	if f == nil || f.QueryFilter == nil {
		return false
	}
	return f.QueryFilter.IsUnlimited()
}
