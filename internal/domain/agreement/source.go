package agreement

import (
	"context"
	"time"
)

// Source is the billing engine's window into the agreement subsystem.
type Source interface {
	// GetAgreement retrieves an agreement by ID
	GetAgreement(ctx context.Context, id string) (*RentalAgreement, error)

	// GetAnchorDate resolves the date cycle 1 starts from: the
	// operator override when present, otherwise the earliest required
	// date across the agreement's linked request items. Returns a
	// not-found error when neither exists; an agreement without a
	// resolvable anchor cannot be billed.
	GetAnchorDate(ctx context.Context, agreementID string) (time.Time, error)

	// GetLineItems retrieves the agreement's rented items
	GetLineItems(ctx context.Context, agreementID string) ([]*LineItem, error)
}
