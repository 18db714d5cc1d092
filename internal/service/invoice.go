package service

import (
	"context"
	"time"

	"github.com/rentledger/rentledger/internal/api/dto"
	"github.com/rentledger/rentledger/internal/domain/agreement"
	"github.com/rentledger/rentledger/internal/domain/billing"
	"github.com/rentledger/rentledger/internal/domain/invoice"
	ierr "github.com/rentledger/rentledger/internal/errors"
	"github.com/rentledger/rentledger/internal/notification"
	"github.com/rentledger/rentledger/internal/types"
	"github.com/shopspring/decimal"
)

// InvoiceService is the monthly rental billing engine. It creates one
// invoice per 30-day billing cycle of an agreement, keeps overdue
// interest fresh on every read, and drives invoices through the
// payment approval workflow.
type InvoiceService interface {
	CreateInvoice(ctx context.Context, req dto.CreateInvoiceRequest) (*dto.InvoiceResponse, error)
	GetInvoice(ctx context.Context, id string) (*dto.InvoiceResponse, error)
	ListInvoices(ctx context.Context, filter *types.InvoiceFilter) (*dto.ListInvoicesResponse, error)
	UploadPaymentProof(ctx context.Context, id string, req dto.UploadPaymentProofRequest) (*dto.InvoiceResponse, error)
	ApproveInvoice(ctx context.Context, id string, req dto.ApproveInvoiceRequest) (*dto.InvoiceResponse, error)
	RejectInvoice(ctx context.Context, id string, req dto.RejectInvoiceRequest) (*dto.InvoiceResponse, error)
	DeleteInvoice(ctx context.Context, id string) error
	RefreshOverdueInvoices(ctx context.Context) (int, error)
}

type invoiceService struct {
	ServiceParams
	cycles   *billing.CycleCalculator
	prorator *billing.Allocator
	interest *billing.InterestCalculator
}

func NewInvoiceService(params ServiceParams) InvoiceService {
	return &invoiceService{
		ServiceParams: params,
		cycles:        billing.NewCycleCalculator(params.Config.Billing.CycleDays),
		prorator:      billing.NewAllocator(),
		interest:      billing.NewInterestCalculator(),
	}
}

func (s *invoiceService) CreateInvoice(ctx context.Context, req dto.CreateInvoiceRequest) (*dto.InvoiceResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := ensureCanManageInvoices(ctx); err != nil {
		return nil, err
	}

	agr, err := s.AgreementSource.GetAgreement(ctx, req.AgreementID)
	if err != nil {
		return nil, err
	}
	if !agr.AgreementStatus.IsBillable() {
		return nil, ierr.NewError("agreement is not billable").
			WithHintf("Agreement %s is %s; only active agreements can be invoiced", agr.AgreementNumber, agr.AgreementStatus).
			Mark(ierr.ErrPreconditionFailed)
	}

	anchor, err := s.AgreementSource.GetAnchorDate(ctx, agr.ID)
	if err != nil {
		if ierr.IsNotFound(err) {
			return nil, ierr.WithError(err).
				WithHintf("Agreement %s has no resolvable anchor date and cannot be billed", agr.AgreementNumber).
				Mark(ierr.ErrPreconditionFailed)
		}
		return nil, err
	}

	cycle, err := s.resolveTargetCycle(ctx, req, agr.ID, anchor)
	if err != nil {
		return nil, err
	}

	overlapping, err := s.InvoiceRepo.CountOverlapping(ctx, agr.ID, cycle.Start, cycle.End)
	if err != nil {
		return nil, err
	}
	if overlapping > 0 {
		return nil, ierr.NewError("billing cycle already invoiced").
			WithHintf("Agreement %s already has an invoice overlapping %s to %s",
				agr.AgreementNumber, cycle.Start.Format("2006-01-02"), cycle.End.Format("2006-01-02")).
			Mark(ierr.ErrPreconditionFailed)
	}

	items, err := s.AgreementSource.GetLineItems(ctx, agr.ID)
	if err != nil {
		return nil, err
	}

	weighted := make([]billing.WeightedItem, 0, len(items))
	for _, item := range items {
		weighted = append(weighted, billing.WeightedItem{
			ItemID:      item.ItemID,
			DisplayName: item.DisplayName,
			Weight:      item.AgreedMonthlyRate,
			Quantity:    item.Quantity,
		})
	}

	allocations, err := s.prorator.Allocate(agr.MonthlyRental, weighted)
	if err != nil {
		return nil, err
	}
	if len(allocations) == 0 {
		return nil, ierr.NewError("no billable line items").
			WithHintf("Agreement %s has no line items to bill", agr.AgreementNumber).
			Mark(ierr.ErrPreconditionFailed)
	}

	now := s.Clock.Now()
	sequence, err := s.InvoiceRepo.NextSequenceForPrefix(ctx, types.InvoiceDatePrefix(now))
	if err != nil {
		return nil, err
	}

	inv := s.buildInvoice(ctx, agr, cycle, allocations, sequence, now)
	if err := inv.Validate(); err != nil {
		return nil, err
	}

	// The repository's uniqueness guarantee on (agreement_id,
	// billing_start_date) backs the overlap check above: when two
	// concurrent creations race, the loser surfaces as a conflict.
	if err := s.InvoiceRepo.Create(ctx, inv); err != nil {
		return nil, err
	}

	s.Logger.Infow("created invoice",
		"invoice_id", inv.ID,
		"invoice_number", inv.InvoiceNumber,
		"agreement_id", agr.ID,
		"cycle_number", cycle.Number,
		"base_amount", inv.BaseAmount,
	)

	return dto.NewInvoiceResponse(inv), nil
}

// resolveTargetCycle picks the cycle to invoice: the operator's month
// override when given, the cycle after the latest invoiced one, or
// cycle 1 when nothing has been billed yet.
func (s *invoiceService) resolveTargetCycle(ctx context.Context, req dto.CreateInvoiceRequest, agreementID string, anchor time.Time) (billing.BillingCycle, error) {
	if req.BillingMonth != nil {
		monthStart, err := req.ParseBillingMonth()
		if err != nil {
			return billing.BillingCycle{}, err
		}
		return s.cycles.Cycle(anchor, s.cycles.CycleNumberFor(anchor, monthStart)), nil
	}

	latest, err := s.InvoiceRepo.LatestForAgreement(ctx, agreementID)
	if err != nil {
		if ierr.IsNotFound(err) {
			return s.cycles.Cycle(anchor, 1), nil
		}
		return billing.BillingCycle{}, err
	}
	return s.cycles.NextCycleAfter(anchor, latest.BillingEndDate), nil
}

func (s *invoiceService) buildInvoice(ctx context.Context, agr *agreement.RentalAgreement, cycle billing.BillingCycle, allocations []billing.Allocation, sequence int, now time.Time) *invoice.Invoice {
	inv := &invoice.Invoice{
		ID:               types.GenerateUUIDWithPrefix(types.UUID_PREFIX_INVOICE),
		InvoiceNumber:    invoice.FormatInvoiceNumber(now, sequence),
		AgreementID:      agr.ID,
		CustomerName:     agr.CustomerName,
		CustomerEmail:    agr.CustomerEmail,
		BillingStartDate: cycle.Start,
		BillingEndDate:   cycle.End,
		CycleNumber:      cycle.Number,
		BaseAmount:       agr.MonthlyRental,
		OverdueCharges:   decimal.Zero,
		TotalAmount:      agr.MonthlyRental,
		DueDate:          now.AddDate(0, 0, s.Config.Billing.DueDays),
		InvoiceStatus:    types.InvoiceStatusPendingPayment,
		BaseModel:        types.GetDefaultBaseModel(ctx),
	}

	for _, alloc := range allocations {
		inv.LineItems = append(inv.LineItems, &invoice.LineItem{
			ID:          types.GenerateUUIDWithPrefix(types.UUID_PREFIX_INVOICE_LINE_ITEM),
			InvoiceID:   inv.ID,
			ItemID:      alloc.ItemID,
			DisplayName: alloc.DisplayName,
			Quantity:    alloc.Quantity,
			UnitWeight:  alloc.Weight,
			LineTotal:   alloc.Amount,
			BaseModel:   types.GetDefaultBaseModel(ctx),
		})
	}

	return inv
}

func (s *invoiceService) GetInvoice(ctx context.Context, id string) (*dto.InvoiceResponse, error) {
	inv, err := s.InvoiceRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if _, err := s.applyOverdueCheck(ctx, inv); err != nil {
		return nil, err
	}

	return dto.NewInvoiceResponse(inv), nil
}

func (s *invoiceService) ListInvoices(ctx context.Context, filter *types.InvoiceFilter) (*dto.ListInvoicesResponse, error) {
	if filter == nil {
		filter = types.NewInvoiceFilter()
	}
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	invoices, err := s.InvoiceRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	total, err := s.InvoiceRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	items := make([]*dto.InvoiceResponse, 0, len(invoices))
	for _, inv := range invoices {
		// The overdue check runs on every read, list included.
		if _, err := s.applyOverdueCheck(ctx, inv); err != nil {
			return nil, err
		}
		items = append(items, dto.NewInvoiceResponse(inv))
	}

	resp := types.NewListResponse(items, total, filter.GetLimit(), filter.GetOffset())
	return &resp, nil
}

func (s *invoiceService) UploadPaymentProof(ctx context.Context, id string, req dto.UploadPaymentProofRequest) (*dto.InvoiceResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := ensureCanManageInvoices(ctx); err != nil {
		return nil, err
	}

	inv, err := s.InvoiceRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	// Settle overdue state first so the proof is attached against the
	// current total.
	if _, err := s.applyOverdueCheck(ctx, inv); err != nil {
		return nil, err
	}

	now := s.Clock.Now()
	if err := inv.AttachPaymentProof(req.ProofURL, types.GetUserID(ctx), now); err != nil {
		return nil, err
	}

	inv.UpdatedAt = now
	inv.UpdatedBy = types.GetUserID(ctx)
	if err := s.InvoiceRepo.Update(ctx, inv); err != nil {
		return nil, err
	}

	s.Logger.Infow("payment proof uploaded",
		"invoice_id", inv.ID,
		"invoice_number", inv.InvoiceNumber,
	)

	return dto.NewInvoiceResponse(inv), nil
}

func (s *invoiceService) ApproveInvoice(ctx context.Context, id string, req dto.ApproveInvoiceRequest) (*dto.InvoiceResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := ensureCanApproveInvoices(ctx); err != nil {
		return nil, err
	}

	inv, err := s.InvoiceRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	now := s.Clock.Now()
	if err := inv.Approve(req.ReferenceNumber, types.GetUserID(ctx), now); err != nil {
		return nil, err
	}

	inv.UpdatedAt = now
	inv.UpdatedBy = types.GetUserID(ctx)
	if err := s.InvoiceRepo.Update(ctx, inv); err != nil {
		return nil, err
	}

	s.Logger.Infow("invoice approved",
		"invoice_id", inv.ID,
		"invoice_number", inv.InvoiceNumber,
		"reference_number", req.ReferenceNumber,
	)

	return dto.NewInvoiceResponse(inv), nil
}

func (s *invoiceService) RejectInvoice(ctx context.Context, id string, req dto.RejectInvoiceRequest) (*dto.InvoiceResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := ensureCanApproveInvoices(ctx); err != nil {
		return nil, err
	}

	inv, err := s.InvoiceRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	now := s.Clock.Now()
	if err := inv.Reject(req.Reason, types.GetUserID(ctx), now); err != nil {
		return nil, err
	}

	inv.UpdatedAt = now
	inv.UpdatedBy = types.GetUserID(ctx)
	if err := s.InvoiceRepo.Update(ctx, inv); err != nil {
		return nil, err
	}

	// The rejection notice is the payer's only signal that a re-upload
	// is needed. A delivery failure is logged but does not roll back
	// the rejection, which is already durable at this point.
	if err := s.Sender.SendRejectionNotice(ctx, notification.RejectionNotice{
		PayerName:     inv.CustomerName,
		PayerEmail:    inv.CustomerEmail,
		InvoiceNumber: inv.InvoiceNumber,
		Reason:        req.Reason,
		TotalAmount:   inv.TotalAmount,
	}); err != nil {
		s.Logger.Errorw("failed to send rejection notice",
			"invoice_id", inv.ID,
			"error", err,
		)
	}

	return dto.NewInvoiceResponse(inv), nil
}

func (s *invoiceService) DeleteInvoice(ctx context.Context, id string) error {
	if err := ensureCanManageInvoices(ctx); err != nil {
		return err
	}

	inv, err := s.InvoiceRepo.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := inv.EnsureDeletable(); err != nil {
		return err
	}

	return s.InvoiceRepo.Delete(ctx, id)
}

// RefreshOverdueInvoices is the batch entry point for scheduled overdue
// sweeps. It applies the same lazy check as reads and returns the
// number of invoices whose stored state changed. A failure on one
// invoice is logged and skipped, never aborting the sweep.
func (s *invoiceService) RefreshOverdueInvoices(ctx context.Context) (int, error) {
	sweepID := types.GenerateShortIDWithPrefix("sw")

	invoices, err := s.InvoiceRepo.ListActionable(ctx)
	if err != nil {
		return 0, err
	}

	updated := 0
	for _, inv := range invoices {
		changed, err := s.applyOverdueCheck(ctx, inv)
		if err != nil {
			s.Logger.Errorw("overdue refresh failed for invoice",
				"sweep_id", sweepID,
				"invoice_id", inv.ID,
				"error", err,
			)
			continue
		}
		if changed {
			updated++
		}
	}

	s.Logger.Infow("overdue sweep complete",
		"sweep_id", sweepID,
		"scanned", len(invoices),
		"updated", updated,
	)

	return updated, nil
}

// applyOverdueCheck is the lazy overdue evaluation performed on every
// read. Pending or rejected invoices past their due date degrade to
// overdue with freshly computed charges; invoices already overdue get
// their charges recomputed as more months elapse. Charges always derive
// from the original base amount, so re-evaluation before the next
// calendar change leaves the stored amount untouched.
func (s *invoiceService) applyOverdueCheck(ctx context.Context, inv *invoice.Invoice) (bool, error) {
	now := s.Clock.Now()

	switch {
	case inv.IsOverdueCandidate() && now.After(inv.DueDate):
		charges := s.interest.Accrued(inv.BaseAmount, inv.DueDate, s.interestRateFor(ctx, inv.AgreementID), now)
		if err := inv.MarkOverdue(charges); err != nil {
			return false, err
		}

	case inv.InvoiceStatus == types.InvoiceStatusOverdue:
		charges := s.interest.Accrued(inv.BaseAmount, inv.DueDate, s.interestRateFor(ctx, inv.AgreementID), now)
		if charges.Equal(inv.OverdueCharges) {
			return false, nil
		}
		if err := inv.RefreshOverdueCharges(charges); err != nil {
			return false, err
		}

	default:
		return false, nil
	}

	inv.UpdatedAt = now
	if err := s.InvoiceRepo.Update(ctx, inv); err != nil {
		return false, err
	}

	s.Logger.Infow("invoice overdue charges refreshed",
		"invoice_id", inv.ID,
		"invoice_number", inv.InvoiceNumber,
		"overdue_charges", inv.OverdueCharges,
		"total_amount", inv.TotalAmount,
	)

	return true, nil
}

// interestRateFor resolves the monthly interest rate for an agreement.
// A missing agreement or unset rate falls back to the configured
// default; the overdue check never fails for a normally shaped invoice.
func (s *invoiceService) interestRateFor(ctx context.Context, agreementID string) decimal.Decimal {
	agr, err := s.AgreementSource.GetAgreement(ctx, agreementID)
	if err != nil || agr.DefaultInterestRate == nil || agr.DefaultInterestRate.IsZero() {
		return s.Config.Billing.DefaultInterestRate
	}
	return *agr.DefaultInterestRate
}
