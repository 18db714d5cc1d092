package invoice

import (
	"context"
	"time"

	"github.com/rentledger/rentledger/internal/types"
)

// Repository defines the interface for invoice persistence operations.
// Implementations must enforce uniqueness of (agreement_id,
// billing_start_date) so two concurrent creations for the same cycle
// cannot both succeed.
type Repository interface {
	// Create persists a new invoice together with its line items
	Create(ctx context.Context, inv *Invoice) error

	// Get retrieves an invoice by ID
	Get(ctx context.Context, id string) (*Invoice, error)

	// Update persists status, amount and metadata changes in place
	Update(ctx context.Context, inv *Invoice) error

	// Delete removes an invoice and its line items
	Delete(ctx context.Context, id string) error

	// List retrieves invoices based on filter criteria
	List(ctx context.Context, filter *types.InvoiceFilter) ([]*Invoice, error)

	// Count returns the total count of invoices matching the filter
	Count(ctx context.Context, filter *types.InvoiceFilter) (int, error)

	// CountOverlapping counts existing invoices of the agreement whose
	// billing period intersects [start, end]
	CountOverlapping(ctx context.Context, agreementID string, start, end time.Time) (int, error)

	// LatestForAgreement returns the invoice with the latest billing
	// end date for the agreement, or a not-found error
	LatestForAgreement(ctx context.Context, agreementID string) (*Invoice, error)

	// NextSequenceForPrefix returns the next free daily sequence for
	// the given date prefix (max existing + 1, starting at 1)
	NextSequenceForPrefix(ctx context.Context, datePrefix string) (int, error)

	// ListActionable returns all invoices the overdue sweep must
	// consider, i.e. everything in a non-terminal status
	ListActionable(ctx context.Context) ([]*Invoice, error)
}
