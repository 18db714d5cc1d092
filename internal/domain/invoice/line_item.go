package invoice

import (
	ierr "github.com/rentledger/rentledger/internal/errors"
	"github.com/rentledger/rentledger/internal/types"
	"github.com/shopspring/decimal"
)

// LineItem is one rented item's share of an invoice's flat monthly
// amount. UnitWeight mirrors the agreement's agreed monthly rate at the
// time the invoice was created.
type LineItem struct {
	ID          string          `db:"id" json:"id"`
	InvoiceID   string          `db:"invoice_id" json:"invoice_id"`
	ItemID      string          `db:"item_id" json:"item_id"`
	DisplayName string          `db:"display_name" json:"display_name"`
	Quantity    int             `db:"quantity" json:"quantity"`
	UnitWeight  decimal.Decimal `db:"unit_weight" json:"unit_weight"`
	LineTotal   decimal.Decimal `db:"line_total" json:"line_total"`
	types.BaseModel
}

func (i *LineItem) Validate() error {
	if i.LineTotal.IsNegative() {
		return ierr.NewError("invoice line item validation failed").
			WithHint("line total must be non negative").
			Mark(ierr.ErrValidation)
	}
	if i.UnitWeight.IsNegative() {
		return ierr.NewError("invoice line item validation failed").
			WithHint("unit weight must be non negative").
			Mark(ierr.ErrValidation)
	}
	if i.Quantity < 0 {
		return ierr.NewError("invoice line item validation failed").
			WithHint("quantity must be non negative").
			Mark(ierr.ErrValidation)
	}
	return nil
}
