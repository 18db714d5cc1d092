package agreement

import (
	"time"

	ierr "github.com/rentledger/rentledger/internal/errors"
	"github.com/rentledger/rentledger/internal/types"
	"github.com/shopspring/decimal"
)

// RentalAgreement is the billing engine's read-only view of an
// agreement. Agreements are owned by the contracts subsystem; the
// billing engine never mutates them.
type RentalAgreement struct {
	ID              string          `db:"id" json:"id"`
	AgreementNumber string          `db:"agreement_number" json:"agreement_number"`
	CustomerName    string          `db:"customer_name" json:"customer_name"`
	CustomerEmail   string          `db:"customer_email" json:"customer_email"`
	MonthlyRental   decimal.Decimal `db:"monthly_rental" json:"monthly_rental"`
	// DefaultInterestRate is percent per month; nil means the billing
	// default applies.
	DefaultInterestRate *decimal.Decimal      `db:"default_interest_rate" json:"default_interest_rate,omitempty"`
	AgreementStatus     types.AgreementStatus `db:"agreement_status" json:"agreement_status"`
	// AnchorOverride, when set by an operator, takes precedence over
	// the anchor derived from the request subsystem.
	AnchorOverride *time.Time `db:"anchor_override" json:"anchor_override,omitempty"`
	LineItems      []*LineItem `json:"line_items,omitempty"`
	types.BaseModel
}

// LineItem is one rented item on an agreement. AgreedMonthlyRate is a
// proration weight, not a literal price: the flat monthly rental is
// split across items in proportion to it.
type LineItem struct {
	ID                string          `db:"id" json:"id"`
	AgreementID       string          `db:"agreement_id" json:"agreement_id"`
	ItemID            string          `db:"item_id" json:"item_id"`
	DisplayName       string          `db:"display_name" json:"display_name"`
	AgreedMonthlyRate decimal.Decimal `db:"agreed_monthly_rate" json:"agreed_monthly_rate"`
	Quantity          int             `db:"quantity" json:"quantity"`
	types.BaseModel
}

func (a *RentalAgreement) Validate() error {
	if a.MonthlyRental.IsNegative() {
		return ierr.NewError("agreement validation failed").
			WithHint("monthly rental must be non negative").
			Mark(ierr.ErrValidation)
	}
	if a.DefaultInterestRate != nil && a.DefaultInterestRate.IsNegative() {
		return ierr.NewError("agreement validation failed").
			WithHint("default interest rate must be non negative").
			Mark(ierr.ErrValidation)
	}
	return a.AgreementStatus.Validate()
}
