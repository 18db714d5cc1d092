package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/rentledger/rentledger/internal/domain/agreement"
	ierr "github.com/rentledger/rentledger/internal/errors"
	"github.com/rentledger/rentledger/internal/logger"
	"github.com/rentledger/rentledger/internal/postgres"
	"github.com/rentledger/rentledger/internal/types"
)

// agreementRepository reads agreements owned by the contracts
// subsystem. The billing engine never writes to these tables.
type agreementRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewAgreementRepository(db *postgres.DB, logger *logger.Logger) agreement.Source {
	return &agreementRepository{db: db, logger: logger}
}

func (r *agreementRepository) GetAgreement(ctx context.Context, id string) (*agreement.RentalAgreement, error) {
	q := r.db.GetQuerier(ctx)

	var agr agreement.RentalAgreement
	err := q.GetContext(ctx, &agr, `
	SELECT id, agreement_number, customer_name, customer_email,
		monthly_rental, default_interest_rate, agreement_status, anchor_override,
		status, created_at, updated_at, created_by, updated_by
	FROM rental_agreements
	WHERE id = $1 AND status != $2`, id, types.StatusDeleted)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ierr.NewErrorf("agreement %s not found", id).
				WithHint("The requested agreement does not exist").
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get agreement").
			Mark(ierr.ErrDatabase)
	}
	return &agr, nil
}

func (r *agreementRepository) GetAnchorDate(ctx context.Context, agreementID string) (time.Time, error) {
	q := r.db.GetQuerier(ctx)

	// Operator override first, then the earliest required date across
	// the agreement's linked request items.
	var override sql.NullTime
	err := q.GetContext(ctx, &override, `
	SELECT anchor_override FROM rental_agreements
	WHERE id = $1 AND status != $2`, agreementID, types.StatusDeleted)
	if err != nil {
		if err == sql.ErrNoRows {
			return time.Time{}, ierr.NewErrorf("agreement %s not found", agreementID).
				WithHint("The requested agreement does not exist").
				Mark(ierr.ErrNotFound)
		}
		return time.Time{}, ierr.WithError(err).
			WithHint("Failed to resolve anchor date").
			Mark(ierr.ErrDatabase)
	}
	if override.Valid {
		return override.Time.UTC(), nil
	}

	var earliest sql.NullTime
	err = q.GetContext(ctx, &earliest, `
	SELECT MIN(ri.required_date)
	FROM request_items ri
	JOIN rental_requests rr ON rr.id = ri.request_id
	WHERE rr.agreement_id = $1 AND ri.status != $2`, agreementID, types.StatusDeleted)
	if err != nil {
		return time.Time{}, ierr.WithError(err).
			WithHint("Failed to resolve anchor date").
			Mark(ierr.ErrDatabase)
	}
	if !earliest.Valid {
		return time.Time{}, ierr.NewErrorf("no anchor date for agreement %s", agreementID).
			WithHint("The agreement has no anchor override and no required dates").
			Mark(ierr.ErrNotFound)
	}
	return earliest.Time.UTC(), nil
}

func (r *agreementRepository) GetLineItems(ctx context.Context, agreementID string) ([]*agreement.LineItem, error) {
	q := r.db.GetQuerier(ctx)

	var items []*agreement.LineItem
	err := q.SelectContext(ctx, &items, `
	SELECT id, agreement_id, item_id, display_name, agreed_monthly_rate, quantity,
		status, created_at, updated_at, created_by, updated_by
	FROM agreement_line_items
	WHERE agreement_id = $1 AND status != $2
	ORDER BY created_at, id`, agreementID, types.StatusDeleted)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to load agreement line items").
			Mark(ierr.ErrDatabase)
	}
	return items, nil
}
