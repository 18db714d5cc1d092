package testutil

import (
	"context"
	"strings"
	"time"

	"github.com/rentledger/rentledger/internal/domain/invoice"
	ierr "github.com/rentledger/rentledger/internal/errors"
	"github.com/rentledger/rentledger/internal/types"
)

// InMemoryInvoiceStore implements invoice.Repository
type InMemoryInvoiceStore struct {
	*InMemoryStore[*invoice.Invoice]
}

// NewInMemoryInvoiceStore creates a new in-memory invoice store
func NewInMemoryInvoiceStore() *InMemoryInvoiceStore {
	return &InMemoryInvoiceStore{
		InMemoryStore: NewInMemoryStore[*invoice.Invoice](),
	}
}

// copyInvoice returns a deep copy so callers cannot mutate stored state
func copyInvoice(inv *invoice.Invoice) *invoice.Invoice {
	if inv == nil {
		return nil
	}

	cp := *inv
	cp.PaymentProofURL = copyStringPtr(inv.PaymentProofURL)
	cp.PaymentProofUploadedBy = copyStringPtr(inv.PaymentProofUploadedBy)
	cp.PaymentProofUploadedAt = copyTimePtr(inv.PaymentProofUploadedAt)
	cp.ApprovedBy = copyStringPtr(inv.ApprovedBy)
	cp.ApprovedAt = copyTimePtr(inv.ApprovedAt)
	cp.ReferenceNumber = copyStringPtr(inv.ReferenceNumber)
	cp.RejectedBy = copyStringPtr(inv.RejectedBy)
	cp.RejectedAt = copyTimePtr(inv.RejectedAt)
	cp.RejectionReason = copyStringPtr(inv.RejectionReason)

	if len(inv.LineItems) > 0 {
		cp.LineItems = make([]*invoice.LineItem, len(inv.LineItems))
		for i, item := range inv.LineItems {
			itemCopy := *item
			cp.LineItems[i] = &itemCopy
		}
	}

	return &cp
}

func copyStringPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func copyTimePtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

func (s *InMemoryInvoiceStore) Create(ctx context.Context, inv *invoice.Invoice) error {
	if inv == nil {
		return ierr.NewError("invoice cannot be nil").
			WithHint("Invoice data is required").
			Mark(ierr.ErrValidation)
	}

	// Mirror the unique index on (agreement_id, billing_start_date).
	overlapping, err := s.CountOverlapping(ctx, inv.AgreementID, inv.BillingStartDate, inv.BillingStartDate)
	if err != nil {
		return err
	}
	if overlapping > 0 {
		return ierr.NewError("invoice already exists for billing period").
			WithHint("An invoice for this agreement and billing period already exists").
			Mark(ierr.ErrAlreadyExists)
	}

	if err := s.InMemoryStore.Create(ctx, inv.ID, copyInvoice(inv)); err != nil {
		return ierr.WithError(err).
			WithHint("Failed to create invoice").
			Mark(ierr.ErrAlreadyExists)
	}
	return nil
}

func (s *InMemoryInvoiceStore) Get(ctx context.Context, id string) (*invoice.Invoice, error) {
	inv, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, ierr.NewErrorf("invoice %s not found", id).
			WithHint("The requested invoice does not exist").
			Mark(ierr.ErrNotFound)
	}
	return copyInvoice(inv), nil
}

func (s *InMemoryInvoiceStore) Update(ctx context.Context, inv *invoice.Invoice) error {
	if inv == nil {
		return ierr.NewError("invoice cannot be nil").
			WithHint("Invoice data is required").
			Mark(ierr.ErrValidation)
	}
	if err := s.InMemoryStore.Update(ctx, inv.ID, copyInvoice(inv)); err != nil {
		return ierr.NewErrorf("invoice %s not found", inv.ID).
			WithHint("The requested invoice does not exist").
			Mark(ierr.ErrNotFound)
	}
	return nil
}

func (s *InMemoryInvoiceStore) Delete(ctx context.Context, id string) error {
	if err := s.InMemoryStore.Delete(ctx, id); err != nil {
		return ierr.NewErrorf("invoice %s not found", id).
			WithHint("The requested invoice does not exist").
			Mark(ierr.ErrNotFound)
	}
	return nil
}

func invoiceFilterFn(ctx context.Context, inv *invoice.Invoice, filter interface{}) bool {
	f, ok := filter.(*types.InvoiceFilter)
	if !ok || f == nil {
		return true
	}

	if len(f.InvoiceIDs) > 0 {
		found := false
		for _, id := range f.InvoiceIDs {
			if inv.ID == id {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.AgreementID != nil && inv.AgreementID != *f.AgreementID {
		return false
	}
	if f.InvoiceStatus != nil && inv.InvoiceStatus != *f.InvoiceStatus {
		return false
	}
	if f.BillingMonth != nil && int(inv.BillingStartDate.Month()) != *f.BillingMonth {
		return false
	}
	if f.BillingYear != nil && inv.BillingStartDate.Year() != *f.BillingYear {
		return false
	}
	if f.CustomerName != nil && !strings.Contains(strings.ToLower(inv.CustomerName), strings.ToLower(*f.CustomerName)) {
		return false
	}
	if f.CustomerEmail != nil && !strings.EqualFold(inv.CustomerEmail, *f.CustomerEmail) {
		return false
	}
	return true
}

func invoiceSortFn(i, j *invoice.Invoice) bool {
	return i.CreatedAt.After(j.CreatedAt)
}

func (s *InMemoryInvoiceStore) List(ctx context.Context, filter *types.InvoiceFilter) ([]*invoice.Invoice, error) {
	invoices, err := s.InMemoryStore.List(ctx, filter, invoiceFilterFn, invoiceSortFn)
	if err != nil {
		return nil, err
	}
	result := make([]*invoice.Invoice, len(invoices))
	for i, inv := range invoices {
		result[i] = copyInvoice(inv)
	}
	return result, nil
}

func (s *InMemoryInvoiceStore) Count(ctx context.Context, filter *types.InvoiceFilter) (int, error) {
	return s.InMemoryStore.Count(ctx, filter, invoiceFilterFn)
}

func (s *InMemoryInvoiceStore) CountOverlapping(ctx context.Context, agreementID string, start, end time.Time) (int, error) {
	all, err := s.InMemoryStore.List(ctx, nil, nil, nil)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, inv := range all {
		if inv.AgreementID != agreementID {
			continue
		}
		if !inv.BillingStartDate.After(end) && !inv.BillingEndDate.Before(start) {
			count++
		}
	}
	return count, nil
}

func (s *InMemoryInvoiceStore) LatestForAgreement(ctx context.Context, agreementID string) (*invoice.Invoice, error) {
	all, err := s.InMemoryStore.List(ctx, nil, nil, nil)
	if err != nil {
		return nil, err
	}

	var latest *invoice.Invoice
	for _, inv := range all {
		if inv.AgreementID != agreementID {
			continue
		}
		if latest == nil || inv.BillingEndDate.After(latest.BillingEndDate) {
			latest = inv
		}
	}
	if latest == nil {
		return nil, ierr.NewErrorf("no invoices found for agreement %s", agreementID).
			WithHint("The agreement has not been invoiced yet").
			Mark(ierr.ErrNotFound)
	}
	return copyInvoice(latest), nil
}

func (s *InMemoryInvoiceStore) NextSequenceForPrefix(ctx context.Context, datePrefix string) (int, error) {
	all, err := s.InMemoryStore.List(ctx, nil, nil, nil)
	if err != nil {
		return 0, err
	}

	prefix := types.InvoiceNumberPrefix + "-" + datePrefix + "-"
	max := 0
	for _, inv := range all {
		if !strings.HasPrefix(inv.InvoiceNumber, prefix) {
			continue
		}
		seq := 0
		for _, r := range inv.InvoiceNumber[len(prefix):] {
			if r < '0' || r > '9' {
				seq = 0
				break
			}
			seq = seq*10 + int(r-'0')
		}
		if seq > max {
			max = seq
		}
	}
	return max + 1, nil
}

func (s *InMemoryInvoiceStore) ListActionable(ctx context.Context) ([]*invoice.Invoice, error) {
	all, err := s.InMemoryStore.List(ctx, nil, nil, invoiceSortFn)
	if err != nil {
		return nil, err
	}

	var result []*invoice.Invoice
	for _, inv := range all {
		if inv.InvoiceStatus.IsTerminal() {
			continue
		}
		result = append(result, copyInvoice(inv))
	}
	return result, nil
}
