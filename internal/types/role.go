package types

import (
	ierr "github.com/rentledger/rentledger/internal/errors"
	"github.com/samber/lo"
)

// UserRole identifies what a caller is allowed to do with invoices.
// Authentication itself is handled outside this service; the transport
// layer is expected to place the already-verified roles on the context.
type UserRole string

const (
	RoleAdmin      UserRole = "admin"
	RoleFinance    UserRole = "finance"
	RoleOperations UserRole = "operations"
	RoleViewer     UserRole = "viewer"
)

// invoiceManagerRoles may create, delete and upload payment proof.
var invoiceManagerRoles = []UserRole{RoleAdmin, RoleFinance, RoleOperations}

// invoiceApproverRoles is the strict subset allowed to approve or reject
// an invoice that is pending approval.
var invoiceApproverRoles = []UserRole{RoleAdmin, RoleFinance}

func (r UserRole) String() string {
	return string(r)
}

func (r UserRole) Validate() error {
	allowed := []UserRole{RoleAdmin, RoleFinance, RoleOperations, RoleViewer}
	if !lo.Contains(allowed, r) {
		return ierr.NewError("invalid user role").
			WithHint("Please provide a valid user role").
			WithReportableDetails(map[string]any{
				"allowed": allowed,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// CanManageInvoices reports whether any of the roles may manage invoices.
func CanManageInvoices(roles []UserRole) bool {
	return lo.SomeBy(roles, func(r UserRole) bool {
		return lo.Contains(invoiceManagerRoles, r)
	})
}

// CanApproveInvoices reports whether any of the roles may approve or
// reject invoices.
func CanApproveInvoices(roles []UserRole) bool {
	return lo.SomeBy(roles, func(r UserRole) bool {
		return lo.Contains(invoiceApproverRoles, r)
	})
}
