package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/rentledger/rentledger/internal/domain/invoice"
	ierr "github.com/rentledger/rentledger/internal/errors"
	"github.com/rentledger/rentledger/internal/logger"
	"github.com/rentledger/rentledger/internal/postgres"
	"github.com/rentledger/rentledger/internal/types"
)

type invoiceRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewInvoiceRepository(db *postgres.DB, logger *logger.Logger) invoice.Repository {
	return &invoiceRepository{db: db, logger: logger}
}

const invoiceColumns = `
	id, invoice_number, agreement_id, customer_name, customer_email,
	billing_start_date, billing_end_date, cycle_number,
	base_amount, overdue_charges, total_amount, due_date, invoice_status,
	payment_proof_url, payment_proof_uploaded_by, payment_proof_uploaded_at,
	approved_by, approved_at, reference_number,
	rejected_by, rejected_at, rejection_reason,
	status, created_at, updated_at, created_by, updated_by`

// isUniqueViolation reports whether the error is a postgres unique
// constraint violation, i.e. a second invoice for the same cycle.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if ierr.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}

func (r *invoiceRepository) Create(ctx context.Context, inv *invoice.Invoice) error {
	err := r.db.WithTx(ctx, func(ctx context.Context) error {
		q := r.db.GetQuerier(ctx)

		query := fmt.Sprintf(`
		INSERT INTO invoices (%s) VALUES (
			$1, $2, $3, $4, $5,
			$6, $7, $8,
			$9, $10, $11, $12, $13,
			$14, $15, $16,
			$17, $18, $19,
			$20, $21, $22,
			$23, $24, $25, $26, $27
		)`, invoiceColumns)

		_, err := q.ExecContext(ctx, query,
			inv.ID, inv.InvoiceNumber, inv.AgreementID, inv.CustomerName, inv.CustomerEmail,
			inv.BillingStartDate, inv.BillingEndDate, inv.CycleNumber,
			inv.BaseAmount, inv.OverdueCharges, inv.TotalAmount, inv.DueDate, inv.InvoiceStatus,
			inv.PaymentProofURL, inv.PaymentProofUploadedBy, inv.PaymentProofUploadedAt,
			inv.ApprovedBy, inv.ApprovedAt, inv.ReferenceNumber,
			inv.RejectedBy, inv.RejectedAt, inv.RejectionReason,
			inv.Status, inv.CreatedAt, inv.UpdatedAt, inv.CreatedBy, inv.UpdatedBy,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return ierr.WithError(err).
					WithHint("An invoice for this agreement and billing period already exists").
					Mark(ierr.ErrAlreadyExists)
			}
			return ierr.WithError(err).
				WithHint("Failed to create invoice").
				Mark(ierr.ErrDatabase)
		}

		for _, item := range inv.LineItems {
			_, err := q.ExecContext(ctx, `
			INSERT INTO invoice_line_items (
				id, invoice_id, item_id, display_name, quantity, unit_weight, line_total,
				status, created_at, updated_at, created_by, updated_by
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
				item.ID, item.InvoiceID, item.ItemID, item.DisplayName,
				item.Quantity, item.UnitWeight, item.LineTotal,
				item.Status, item.CreatedAt, item.UpdatedAt, item.CreatedBy, item.UpdatedBy,
			)
			if err != nil {
				return ierr.WithError(err).
					WithHint("Failed to create invoice line item").
					Mark(ierr.ErrDatabase)
			}
		}
		return nil
	})
	return err
}

func (r *invoiceRepository) Get(ctx context.Context, id string) (*invoice.Invoice, error) {
	q := r.db.GetQuerier(ctx)

	var inv invoice.Invoice
	query := fmt.Sprintf(`SELECT %s FROM invoices WHERE id = $1 AND status != $2`, invoiceColumns)
	err := q.GetContext(ctx, &inv, query, id, types.StatusDeleted)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ierr.NewErrorf("invoice %s not found", id).
				WithHint("The requested invoice does not exist").
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get invoice").
			Mark(ierr.ErrDatabase)
	}

	items, err := r.lineItems(ctx, inv.ID)
	if err != nil {
		return nil, err
	}
	inv.LineItems = items
	return &inv, nil
}

func (r *invoiceRepository) lineItems(ctx context.Context, invoiceID string) ([]*invoice.LineItem, error) {
	q := r.db.GetQuerier(ctx)

	var items []*invoice.LineItem
	err := q.SelectContext(ctx, &items, `
	SELECT id, invoice_id, item_id, display_name, quantity, unit_weight, line_total,
		status, created_at, updated_at, created_by, updated_by
	FROM invoice_line_items
	WHERE invoice_id = $1 AND status != $2
	ORDER BY created_at, id`, invoiceID, types.StatusDeleted)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to load invoice line items").
			Mark(ierr.ErrDatabase)
	}
	return items, nil
}

func (r *invoiceRepository) Update(ctx context.Context, inv *invoice.Invoice) error {
	q := r.db.GetQuerier(ctx)

	result, err := q.ExecContext(ctx, `
	UPDATE invoices SET
		overdue_charges = $2,
		total_amount = $3,
		invoice_status = $4,
		payment_proof_url = $5,
		payment_proof_uploaded_by = $6,
		payment_proof_uploaded_at = $7,
		approved_by = $8,
		approved_at = $9,
		reference_number = $10,
		rejected_by = $11,
		rejected_at = $12,
		rejection_reason = $13,
		updated_at = $14,
		updated_by = $15
	WHERE id = $1 AND status != $16`,
		inv.ID,
		inv.OverdueCharges, inv.TotalAmount, inv.InvoiceStatus,
		inv.PaymentProofURL, inv.PaymentProofUploadedBy, inv.PaymentProofUploadedAt,
		inv.ApprovedBy, inv.ApprovedAt, inv.ReferenceNumber,
		inv.RejectedBy, inv.RejectedAt, inv.RejectionReason,
		inv.UpdatedAt, inv.UpdatedBy,
		types.StatusDeleted,
	)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to update invoice").
			Mark(ierr.ErrDatabase)
	}

	rows, err := result.RowsAffected()
	if err == nil && rows == 0 {
		return ierr.NewErrorf("invoice %s not found", inv.ID).
			WithHint("The requested invoice does not exist").
			Mark(ierr.ErrNotFound)
	}
	return nil
}

func (r *invoiceRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithTx(ctx, func(ctx context.Context) error {
		q := r.db.GetQuerier(ctx)

		result, err := q.ExecContext(ctx,
			`UPDATE invoices SET status = $2, updated_at = $3 WHERE id = $1 AND status != $2`,
			id, types.StatusDeleted, time.Now().UTC(),
		)
		if err != nil {
			return ierr.WithError(err).
				WithHint("Failed to delete invoice").
				Mark(ierr.ErrDatabase)
		}
		rows, err := result.RowsAffected()
		if err == nil && rows == 0 {
			return ierr.NewErrorf("invoice %s not found", id).
				WithHint("The requested invoice does not exist").
				Mark(ierr.ErrNotFound)
		}

		_, err = q.ExecContext(ctx,
			`UPDATE invoice_line_items SET status = $2, updated_at = $3 WHERE invoice_id = $1`,
			id, types.StatusDeleted, time.Now().UTC(),
		)
		if err != nil {
			return ierr.WithError(err).
				WithHint("Failed to delete invoice line items").
				Mark(ierr.ErrDatabase)
		}
		return nil
	})
}

// buildListQuery translates the filter into a WHERE clause. Conditions
// are numbered positionally to keep lib/pq placeholders aligned.
func buildListQuery(filter *types.InvoiceFilter) (string, []interface{}) {
	conditions := []string{"status != $1"}
	args := []interface{}{types.StatusDeleted}

	add := func(cond string, arg interface{}) {
		args = append(args, arg)
		conditions = append(conditions, fmt.Sprintf(cond, len(args)))
	}

	if filter != nil {
		if len(filter.InvoiceIDs) > 0 {
			add("id = ANY($%d)", pq.Array(filter.InvoiceIDs))
		}
		if filter.AgreementID != nil {
			add("agreement_id = $%d", *filter.AgreementID)
		}
		if filter.InvoiceStatus != nil {
			add("invoice_status = $%d", *filter.InvoiceStatus)
		}
		if filter.BillingMonth != nil {
			add("EXTRACT(MONTH FROM billing_start_date) = $%d", *filter.BillingMonth)
		}
		if filter.BillingYear != nil {
			add("EXTRACT(YEAR FROM billing_start_date) = $%d", *filter.BillingYear)
		}
		if filter.CustomerName != nil {
			add("customer_name ILIKE $%d", "%"+*filter.CustomerName+"%")
		}
		if filter.CustomerEmail != nil {
			add("LOWER(customer_email) = LOWER($%d)", *filter.CustomerEmail)
		}
	}

	return strings.Join(conditions, " AND "), args
}

var invoiceSortColumns = map[string]string{
	"created_at":         "created_at",
	"due_date":           "due_date",
	"billing_start_date": "billing_start_date",
	"total_amount":       "total_amount",
	"invoice_number":     "invoice_number",
}

func (r *invoiceRepository) List(ctx context.Context, filter *types.InvoiceFilter) ([]*invoice.Invoice, error) {
	q := r.db.GetQuerier(ctx)

	where, args := buildListQuery(filter)

	sortColumn, ok := invoiceSortColumns[filter.GetSort()]
	if !ok {
		sortColumn = "created_at"
	}
	order := "DESC"
	if filter.GetOrder() == types.OrderAsc {
		order = "ASC"
	}

	query := fmt.Sprintf(`SELECT %s FROM invoices WHERE %s ORDER BY %s %s`,
		invoiceColumns, where, sortColumn, order)
	if !filter.IsUnlimited() {
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", filter.GetLimit(), filter.GetOffset())
	}

	var invoices []*invoice.Invoice
	if err := q.SelectContext(ctx, &invoices, query, args...); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list invoices").
			Mark(ierr.ErrDatabase)
	}

	for _, inv := range invoices {
		items, err := r.lineItems(ctx, inv.ID)
		if err != nil {
			return nil, err
		}
		inv.LineItems = items
	}
	return invoices, nil
}

func (r *invoiceRepository) Count(ctx context.Context, filter *types.InvoiceFilter) (int, error) {
	q := r.db.GetQuerier(ctx)

	where, args := buildListQuery(filter)
	var count int
	err := q.GetContext(ctx, &count,
		fmt.Sprintf(`SELECT COUNT(*) FROM invoices WHERE %s`, where), args...)
	if err != nil {
		return 0, ierr.WithError(err).
			WithHint("Failed to count invoices").
			Mark(ierr.ErrDatabase)
	}
	return count, nil
}

func (r *invoiceRepository) CountOverlapping(ctx context.Context, agreementID string, start, end time.Time) (int, error) {
	q := r.db.GetQuerier(ctx)

	var count int
	err := q.GetContext(ctx, &count, `
	SELECT COUNT(*) FROM invoices
	WHERE agreement_id = $1
	  AND status != $2
	  AND billing_start_date <= $3
	  AND billing_end_date >= $4`,
		agreementID, types.StatusDeleted, end, start)
	if err != nil {
		return 0, ierr.WithError(err).
			WithHint("Failed to check for overlapping invoices").
			Mark(ierr.ErrDatabase)
	}
	return count, nil
}

func (r *invoiceRepository) LatestForAgreement(ctx context.Context, agreementID string) (*invoice.Invoice, error) {
	q := r.db.GetQuerier(ctx)

	var inv invoice.Invoice
	query := fmt.Sprintf(`
	SELECT %s FROM invoices
	WHERE agreement_id = $1 AND status != $2
	ORDER BY billing_end_date DESC
	LIMIT 1`, invoiceColumns)
	err := q.GetContext(ctx, &inv, query, agreementID, types.StatusDeleted)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ierr.NewErrorf("no invoices found for agreement %s", agreementID).
				WithHint("The agreement has not been invoiced yet").
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get latest invoice").
			Mark(ierr.ErrDatabase)
	}
	return &inv, nil
}

func (r *invoiceRepository) NextSequenceForPrefix(ctx context.Context, datePrefix string) (int, error) {
	q := r.db.GetQuerier(ctx)

	// Invoice numbers are MRI-YYYYMMDD-NNN; the sequence is the numeric
	// suffix, reset whenever the date prefix changes.
	pattern := types.InvoiceNumberPrefix + "-" + datePrefix + "-%"
	prefixLen := len(types.InvoiceNumberPrefix) + 1 + len(datePrefix) + 2

	var max sql.NullInt64
	err := q.GetContext(ctx, &max, `
	SELECT MAX(CAST(SUBSTRING(invoice_number FROM $2) AS INTEGER))
	FROM invoices
	WHERE invoice_number LIKE $1`,
		pattern, prefixLen)
	if err != nil {
		return 0, ierr.WithError(err).
			WithHint("Failed to compute next invoice sequence").
			Mark(ierr.ErrDatabase)
	}
	return int(max.Int64) + 1, nil
}

func (r *invoiceRepository) ListActionable(ctx context.Context) ([]*invoice.Invoice, error) {
	q := r.db.GetQuerier(ctx)

	var invoices []*invoice.Invoice
	query := fmt.Sprintf(`
	SELECT %s FROM invoices
	WHERE status != $1 AND invoice_status != $2
	ORDER BY due_date`, invoiceColumns)
	err := q.SelectContext(ctx, &invoices, query, types.StatusDeleted, types.InvoiceStatusPaid)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list actionable invoices").
			Mark(ierr.ErrDatabase)
	}
	return invoices, nil
}
