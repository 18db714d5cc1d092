package service

import (
	"context"

	"github.com/rentledger/rentledger/internal/clock"
	"github.com/rentledger/rentledger/internal/config"
	"github.com/rentledger/rentledger/internal/domain/agreement"
	"github.com/rentledger/rentledger/internal/domain/invoice"
	ierr "github.com/rentledger/rentledger/internal/errors"
	"github.com/rentledger/rentledger/internal/logger"
	"github.com/rentledger/rentledger/internal/notification"
	"github.com/rentledger/rentledger/internal/types"
)

// ServiceParams holds common dependencies for services
type ServiceParams struct {
	Logger *logger.Logger
	Config *config.Configuration
	Clock  clock.Clock

	// Repositories and collaborators
	InvoiceRepo     invoice.Repository
	AgreementSource agreement.Source
	Sender          notification.Sender
}

// NewServiceParams assembles the common dependency bundle
func NewServiceParams(
	logger *logger.Logger,
	config *config.Configuration,
	clk clock.Clock,
	invoiceRepo invoice.Repository,
	agreementSource agreement.Source,
	sender notification.Sender,
) ServiceParams {
	return ServiceParams{
		Logger:          logger,
		Config:          config,
		Clock:           clk,
		InvoiceRepo:     invoiceRepo,
		AgreementSource: agreementSource,
		Sender:          sender,
	}
}

// ensureCanManageInvoices checks the caller's roles for invoice
// management. An empty roles slice means an internal caller (scripts,
// scheduled jobs) and is allowed through.
func ensureCanManageInvoices(ctx context.Context) error {
	roles := types.GetRoles(ctx)
	if len(roles) == 0 || types.CanManageInvoices(roles) {
		return nil
	}
	return ierr.NewError("caller may not manage invoices").
		WithHint("You do not have permission to manage invoices").
		Mark(ierr.ErrPermissionDenied)
}

// ensureCanApproveInvoices checks for the approval roles, a strict
// subset of the management roles.
func ensureCanApproveInvoices(ctx context.Context) error {
	roles := types.GetRoles(ctx)
	if len(roles) == 0 || types.CanApproveInvoices(roles) {
		return nil
	}
	return ierr.NewError("caller may not approve invoices").
		WithHint("You do not have permission to approve or reject invoices").
		Mark(ierr.ErrPermissionDenied)
}
