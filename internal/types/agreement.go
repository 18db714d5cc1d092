package types

import (
	ierr "github.com/rentledger/rentledger/internal/errors"
	"github.com/samber/lo"
)

// AgreementStatus represents the lifecycle status of a rental agreement.
// Only active agreements are billable.
type AgreementStatus string

const (
	AgreementStatusDraft      AgreementStatus = "DRAFT"
	AgreementStatusActive     AgreementStatus = "ACTIVE"
	AgreementStatusSuspended  AgreementStatus = "SUSPENDED"
	AgreementStatusTerminated AgreementStatus = "TERMINATED"
)

func (s AgreementStatus) String() string {
	return string(s)
}

func (s AgreementStatus) Validate() error {
	allowed := []AgreementStatus{
		AgreementStatusDraft,
		AgreementStatusActive,
		AgreementStatusSuspended,
		AgreementStatusTerminated,
	}
	if !lo.Contains(allowed, s) {
		return ierr.NewError("invalid agreement status").
			WithHint("Please provide a valid agreement status").
			WithReportableDetails(map[string]any{
				"allowed": allowed,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// IsBillable reports whether invoices may be raised for the agreement.
func (s AgreementStatus) IsBillable() bool {
	return s == AgreementStatusActive
}
