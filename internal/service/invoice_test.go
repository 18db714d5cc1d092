package service

import (
	"testing"
	"time"

	"github.com/rentledger/rentledger/internal/api/dto"
	"github.com/rentledger/rentledger/internal/domain/agreement"
	ierr "github.com/rentledger/rentledger/internal/errors"
	"github.com/rentledger/rentledger/internal/testutil"
	"github.com/rentledger/rentledger/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type InvoiceServiceSuite struct {
	testutil.BaseServiceTestSuite
	service InvoiceService
}

func TestInvoiceService(t *testing.T) {
	suite.Run(t, new(InvoiceServiceSuite))
}

func (s *InvoiceServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.service = NewInvoiceService(ServiceParams{
		Logger:          s.GetLogger(),
		Config:          s.GetConfig(),
		Clock:           s.GetClock(),
		InvoiceRepo:     s.GetStores().InvoiceRepo,
		AgreementSource: s.GetStores().AgreementSource,
		Sender:          s.GetSender(),
	})
}

// seedAgreement registers an active two-item agreement with a 3000
// monthly rental split 2:1 between an excavator and a pump, anchored
// at 2025-01-01.
func (s *InvoiceServiceSuite) seedAgreement() *agreement.RentalAgreement {
	agr := &agreement.RentalAgreement{
		ID:              "agr_test_01",
		AgreementNumber: "RA-2025-0001",
		CustomerName:    "Hartono Construction",
		CustomerEmail:   "billing@hartono.example",
		MonthlyRental:   decimal.NewFromInt(3000),
		AgreementStatus: types.AgreementStatusActive,
		BaseModel:       types.GetDefaultBaseModel(s.GetContext()),
	}
	items := []*agreement.LineItem{
		{
			ID:                "ali_1",
			AgreementID:       agr.ID,
			ItemID:            "item_excavator",
			DisplayName:       "Excavator",
			AgreedMonthlyRate: decimal.NewFromInt(200),
			Quantity:          1,
		},
		{
			ID:                "ali_2",
			AgreementID:       agr.ID,
			ItemID:            "item_pump",
			DisplayName:       "Water Pump",
			AgreedMonthlyRate: decimal.NewFromInt(100),
			Quantity:          2,
		},
	}
	s.GetAgreementStore().Seed(agr, items...)
	s.GetAgreementStore().SeedAnchor(agr.ID, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	return agr
}

func (s *InvoiceServiceSuite) TestCreateInvoiceFirstCycle() {
	agr := s.seedAgreement()
	s.GetClock().SetTime(time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC))

	resp, err := s.service.CreateInvoice(s.GetContext(), dto.CreateInvoiceRequest{AgreementID: agr.ID})
	s.NoError(err)
	s.NotNil(resp)

	s.Equal("MRI-20250101-001", resp.InvoiceNumber)
	s.Equal(1, resp.CycleNumber)
	s.Equal(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), resp.BillingStartDate)
	s.Equal(time.Date(2025, 1, 30, 0, 0, 0, 0, time.UTC), resp.BillingEndDate)
	s.True(resp.BaseAmount.Equal(decimal.NewFromInt(3000)))
	s.True(resp.TotalAmount.Equal(decimal.NewFromInt(3000)))
	s.Equal(types.InvoiceStatusPendingPayment, resp.InvoiceStatus)
	s.Equal(time.Date(2025, 1, 8, 9, 0, 0, 0, time.UTC), resp.DueDate)

	// 3000 split 2:1 across excavator and pump
	s.Len(resp.LineItems, 2)
	s.Equal("item_excavator", resp.LineItems[0].ItemID)
	s.True(resp.LineItems[0].LineTotal.Equal(decimal.NewFromInt(2000)),
		"expected 2000, got %s", resp.LineItems[0].LineTotal)
	s.Equal("item_pump", resp.LineItems[1].ItemID)
	s.True(resp.LineItems[1].LineTotal.Equal(decimal.NewFromInt(1000)),
		"expected 1000, got %s", resp.LineItems[1].LineTotal)
}

func (s *InvoiceServiceSuite) TestCreateInvoiceAdvancesCycles() {
	agr := s.seedAgreement()
	s.GetClock().SetTime(time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC))

	first, err := s.service.CreateInvoice(s.GetContext(), dto.CreateInvoiceRequest{AgreementID: agr.ID})
	s.NoError(err)

	s.GetClock().SetTime(time.Date(2025, 2, 3, 9, 0, 0, 0, time.UTC))
	second, err := s.service.CreateInvoice(s.GetContext(), dto.CreateInvoiceRequest{AgreementID: agr.ID})
	s.NoError(err)

	s.Equal(2, second.CycleNumber)
	// Cycles are contiguous: cycle 2 starts the day after cycle 1 ends.
	s.Equal(first.BillingEndDate.AddDate(0, 0, 1), second.BillingStartDate)
	s.Equal(time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC), second.BillingStartDate)
	s.Equal(time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), second.BillingEndDate)
}

func (s *InvoiceServiceSuite) TestCreateInvoiceBillingMonthOverride() {
	agr := s.seedAgreement()
	s.GetClock().SetTime(time.Date(2025, 6, 15, 9, 0, 0, 0, time.UTC))

	resp, err := s.service.CreateInvoice(s.GetContext(), dto.CreateInvoiceRequest{
		AgreementID:  agr.ID,
		BillingMonth: lo.ToPtr("2025-03"),
	})
	s.NoError(err)

	// 2025-03-01 is day 59 from the anchor, inside cycle 2 (Jan 31 .. Mar 1).
	s.Equal(2, resp.CycleNumber)
	s.Equal(time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC), resp.BillingStartDate)
}

func (s *InvoiceServiceSuite) TestCreateInvoiceRejectsDuplicateCycle() {
	agr := s.seedAgreement()
	s.GetClock().SetTime(time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC))

	_, err := s.service.CreateInvoice(s.GetContext(), dto.CreateInvoiceRequest{AgreementID: agr.ID})
	s.NoError(err)

	_, err = s.service.CreateInvoice(s.GetContext(), dto.CreateInvoiceRequest{
		AgreementID:  agr.ID,
		BillingMonth: lo.ToPtr("2025-01"),
	})
	s.Error(err)
	s.True(ierr.IsPreconditionFailed(err))
}

func (s *InvoiceServiceSuite) TestCreateInvoiceInactiveAgreement() {
	agr := s.seedAgreement()
	agr.AgreementStatus = types.AgreementStatusSuspended
	s.GetAgreementStore().Seed(agr)

	_, err := s.service.CreateInvoice(s.GetContext(), dto.CreateInvoiceRequest{AgreementID: agr.ID})
	s.Error(err)
	s.True(ierr.IsPreconditionFailed(err))
}

func (s *InvoiceServiceSuite) TestCreateInvoiceMissingAnchor() {
	agr := &agreement.RentalAgreement{
		ID:              "agr_no_anchor",
		AgreementNumber: "RA-2025-0002",
		CustomerName:    "No Anchor Co",
		CustomerEmail:   "ops@noanchor.example",
		MonthlyRental:   decimal.NewFromInt(500),
		AgreementStatus: types.AgreementStatusActive,
	}
	s.GetAgreementStore().Seed(agr, &agreement.LineItem{
		ID: "ali_x", AgreementID: agr.ID, ItemID: "item_x",
		DisplayName: "Scaffolding", AgreedMonthlyRate: decimal.NewFromInt(1), Quantity: 1,
	})

	_, err := s.service.CreateInvoice(s.GetContext(), dto.CreateInvoiceRequest{AgreementID: agr.ID})
	s.Error(err)
	s.True(ierr.IsPreconditionFailed(err))
}

func (s *InvoiceServiceSuite) TestCreateInvoiceAnchorOverrideWins() {
	agr := s.seedAgreement()
	agr.AnchorOverride = lo.ToPtr(time.Date(2025, 2, 15, 0, 0, 0, 0, time.UTC))
	s.GetAgreementStore().Seed(agr, &agreement.LineItem{
		ID: "ali_1", AgreementID: agr.ID, ItemID: "item_excavator",
		DisplayName: "Excavator", AgreedMonthlyRate: decimal.NewFromInt(1), Quantity: 1,
	})

	s.GetClock().SetTime(time.Date(2025, 2, 15, 9, 0, 0, 0, time.UTC))
	resp, err := s.service.CreateInvoice(s.GetContext(), dto.CreateInvoiceRequest{AgreementID: agr.ID})
	s.NoError(err)
	s.Equal(time.Date(2025, 2, 15, 0, 0, 0, 0, time.UTC), resp.BillingStartDate)
}

func (s *InvoiceServiceSuite) TestCreateInvoiceNoLineItems() {
	agr := s.seedAgreement()
	s.GetAgreementStore().Seed(agr) // reseed without items

	_, err := s.service.CreateInvoice(s.GetContext(), dto.CreateInvoiceRequest{AgreementID: agr.ID})
	s.Error(err)
	s.True(ierr.IsPreconditionFailed(err))
}

func (s *InvoiceServiceSuite) TestInvoiceNumberSequenceResetsDaily() {
	agr := s.seedAgreement()
	s.GetClock().SetTime(time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC))

	first, err := s.service.CreateInvoice(s.GetContext(), dto.CreateInvoiceRequest{AgreementID: agr.ID})
	s.NoError(err)
	s.Equal("MRI-20250101-001", first.InvoiceNumber)

	second, err := s.service.CreateInvoice(s.GetContext(), dto.CreateInvoiceRequest{
		AgreementID:  agr.ID,
		BillingMonth: lo.ToPtr("2025-03"),
	})
	s.NoError(err)
	s.Equal("MRI-20250101-002", second.InvoiceNumber)

	s.GetClock().SetTime(time.Date(2025, 1, 2, 9, 0, 0, 0, time.UTC))
	third, err := s.service.CreateInvoice(s.GetContext(), dto.CreateInvoiceRequest{
		AgreementID:  agr.ID,
		BillingMonth: lo.ToPtr("2025-04"),
	})
	s.NoError(err)
	s.Equal("MRI-20250102-001", third.InvoiceNumber)
}

func (s *InvoiceServiceSuite) TestGetInvoiceDegradesToOverdue() {
	agr := s.seedAgreement()
	s.GetClock().SetTime(time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC))

	created, err := s.service.CreateInvoice(s.GetContext(), dto.CreateInvoiceRequest{AgreementID: agr.ID})
	s.NoError(err)

	// 10 days past the due date: one 30-day month of interest at the
	// default 1.5 percent of 3000 is 45.00.
	s.GetClock().SetTime(created.DueDate.AddDate(0, 0, 10))
	got, err := s.service.GetInvoice(s.GetContext(), created.ID)
	s.NoError(err)
	s.Equal(types.InvoiceStatusOverdue, got.InvoiceStatus)
	s.True(got.OverdueCharges.Equal(decimal.RequireFromString("45")),
		"expected 45, got %s", got.OverdueCharges)
	s.True(got.TotalAmount.Equal(decimal.RequireFromString("3045")),
		"expected 3045, got %s", got.TotalAmount)
}

func (s *InvoiceServiceSuite) TestOverdueChargesNeverCompound() {
	agr := s.seedAgreement()
	s.GetClock().SetTime(time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC))

	created, err := s.service.CreateInvoice(s.GetContext(), dto.CreateInvoiceRequest{AgreementID: agr.ID})
	s.NoError(err)

	s.GetClock().SetTime(created.DueDate.AddDate(0, 0, 10))
	first, err := s.service.GetInvoice(s.GetContext(), created.ID)
	s.NoError(err)
	s.True(first.OverdueCharges.Equal(decimal.RequireFromString("45")))

	// Re-reading the same day must not change the stored charges.
	again, err := s.service.GetInvoice(s.GetContext(), created.ID)
	s.NoError(err)
	s.True(again.OverdueCharges.Equal(decimal.RequireFromString("45")))

	// 40 days late is two months: 90, computed from the base, not 45+90.
	s.GetClock().SetTime(created.DueDate.AddDate(0, 0, 40))
	later, err := s.service.GetInvoice(s.GetContext(), created.ID)
	s.NoError(err)
	s.True(later.OverdueCharges.Equal(decimal.RequireFromString("90")),
		"expected 90, got %s", later.OverdueCharges)
	s.True(later.TotalAmount.Equal(decimal.RequireFromString("3090")))
}

func (s *InvoiceServiceSuite) TestAgreementInterestRateOverride() {
	agr := s.seedAgreement()
	agr.DefaultInterestRate = lo.ToPtr(decimal.RequireFromString("2"))
	s.GetAgreementStore().Seed(agr, &agreement.LineItem{
		ID: "ali_1", AgreementID: agr.ID, ItemID: "item_excavator",
		DisplayName: "Excavator", AgreedMonthlyRate: decimal.NewFromInt(1), Quantity: 1,
	})

	s.GetClock().SetTime(time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC))
	created, err := s.service.CreateInvoice(s.GetContext(), dto.CreateInvoiceRequest{AgreementID: agr.ID})
	s.NoError(err)

	s.GetClock().SetTime(created.DueDate.AddDate(0, 0, 5))
	got, err := s.service.GetInvoice(s.GetContext(), created.ID)
	s.NoError(err)
	// 2 percent of 3000 for one month
	s.True(got.OverdueCharges.Equal(decimal.RequireFromString("60")),
		"expected 60, got %s", got.OverdueCharges)
}

func (s *InvoiceServiceSuite) TestApprovalWorkflow() {
	agr := s.seedAgreement()
	s.GetClock().SetTime(time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC))

	created, err := s.service.CreateInvoice(s.GetContext(), dto.CreateInvoiceRequest{AgreementID: agr.ID})
	s.NoError(err)

	uploaded, err := s.service.UploadPaymentProof(s.GetContext(), created.ID, dto.UploadPaymentProofRequest{
		ProofURL: "https://files.example.com/proof-1.pdf",
	})
	s.NoError(err)
	s.Equal(types.InvoiceStatusPendingApproval, uploaded.InvoiceStatus)
	s.NotNil(uploaded.PaymentProofURL)

	approved, err := s.service.ApproveInvoice(s.GetContext(), created.ID, dto.ApproveInvoiceRequest{
		ReferenceNumber: "TRX-889123",
	})
	s.NoError(err)
	s.Equal(types.InvoiceStatusPaid, approved.InvoiceStatus)
	s.Equal("TRX-889123", *approved.ReferenceNumber)
	s.NotNil(approved.ApprovedAt)
}

func (s *InvoiceServiceSuite) TestRejectionSendsExactlyOneNotice() {
	agr := s.seedAgreement()
	s.GetClock().SetTime(time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC))

	created, err := s.service.CreateInvoice(s.GetContext(), dto.CreateInvoiceRequest{AgreementID: agr.ID})
	s.NoError(err)

	_, err = s.service.UploadPaymentProof(s.GetContext(), created.ID, dto.UploadPaymentProofRequest{
		ProofURL: "https://files.example.com/proof-1.pdf",
	})
	s.NoError(err)

	rejected, err := s.service.RejectInvoice(s.GetContext(), created.ID, dto.RejectInvoiceRequest{
		Reason: "blurry scan",
	})
	s.NoError(err)
	s.Equal(types.InvoiceStatusRejected, rejected.InvoiceStatus)
	s.Equal("blurry scan", *rejected.RejectionReason)

	notices := s.GetSender().Notices()
	s.Len(notices, 1)
	s.Equal(created.InvoiceNumber, notices[0].InvoiceNumber)
	s.Equal("blurry scan", notices[0].Reason)
	s.Equal("Hartono Construction", notices[0].PayerName)
}

func (s *InvoiceServiceSuite) TestRejectionSurvivesSenderFailure() {
	agr := s.seedAgreement()
	s.GetClock().SetTime(time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC))

	created, err := s.service.CreateInvoice(s.GetContext(), dto.CreateInvoiceRequest{AgreementID: agr.ID})
	s.NoError(err)
	_, err = s.service.UploadPaymentProof(s.GetContext(), created.ID, dto.UploadPaymentProofRequest{
		ProofURL: "https://files.example.com/proof-1.pdf",
	})
	s.NoError(err)

	s.GetSender().FailNext(ierr.NewError("smtp unavailable").Mark(ierr.ErrSystem))
	rejected, err := s.service.RejectInvoice(s.GetContext(), created.ID, dto.RejectInvoiceRequest{
		Reason: "wrong amount",
	})
	s.NoError(err)
	s.Equal(types.InvoiceStatusRejected, rejected.InvoiceStatus)

	got, err := s.service.GetInvoice(s.GetContext(), created.ID)
	s.NoError(err)
	s.Equal(types.InvoiceStatusRejected, got.InvoiceStatus)
}

func (s *InvoiceServiceSuite) TestRejectedInvoiceRecoversThroughReupload() {
	agr := s.seedAgreement()
	s.GetClock().SetTime(time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC))

	created, err := s.service.CreateInvoice(s.GetContext(), dto.CreateInvoiceRequest{AgreementID: agr.ID})
	s.NoError(err)
	_, err = s.service.UploadPaymentProof(s.GetContext(), created.ID, dto.UploadPaymentProofRequest{
		ProofURL: "https://files.example.com/proof-1.pdf",
	})
	s.NoError(err)
	_, err = s.service.RejectInvoice(s.GetContext(), created.ID, dto.RejectInvoiceRequest{Reason: "blurry scan"})
	s.NoError(err)

	reuploaded, err := s.service.UploadPaymentProof(s.GetContext(), created.ID, dto.UploadPaymentProofRequest{
		ProofURL: "https://files.example.com/proof-2.pdf",
	})
	s.NoError(err)
	s.Equal(types.InvoiceStatusPendingApproval, reuploaded.InvoiceStatus)
	s.Equal("https://files.example.com/proof-2.pdf", *reuploaded.PaymentProofURL)
	// Rejection metadata is cleared on re-submission
	s.Nil(reuploaded.RejectionReason)
	s.Nil(reuploaded.RejectedBy)
}

func (s *InvoiceServiceSuite) TestIllegalTransitions() {
	agr := s.seedAgreement()
	s.GetClock().SetTime(time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC))

	created, err := s.service.CreateInvoice(s.GetContext(), dto.CreateInvoiceRequest{AgreementID: agr.ID})
	s.NoError(err)

	// Approve before any proof is uploaded
	_, err = s.service.ApproveInvoice(s.GetContext(), created.ID, dto.ApproveInvoiceRequest{ReferenceNumber: "TRX-1"})
	s.Error(err)
	s.True(ierr.IsPreconditionFailed(err))

	// Pay the invoice, then try to touch it again
	_, err = s.service.UploadPaymentProof(s.GetContext(), created.ID, dto.UploadPaymentProofRequest{
		ProofURL: "https://files.example.com/proof-1.pdf",
	})
	s.NoError(err)
	_, err = s.service.ApproveInvoice(s.GetContext(), created.ID, dto.ApproveInvoiceRequest{ReferenceNumber: "TRX-1"})
	s.NoError(err)

	_, err = s.service.UploadPaymentProof(s.GetContext(), created.ID, dto.UploadPaymentProofRequest{
		ProofURL: "https://files.example.com/proof-2.pdf",
	})
	s.Error(err)
	s.True(ierr.IsPreconditionFailed(err))

	_, err = s.service.RejectInvoice(s.GetContext(), created.ID, dto.RejectInvoiceRequest{Reason: "too late"})
	s.Error(err)
	s.True(ierr.IsPreconditionFailed(err))
}

func (s *InvoiceServiceSuite) TestDeleteInvoice() {
	agr := s.seedAgreement()
	s.GetClock().SetTime(time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC))

	created, err := s.service.CreateInvoice(s.GetContext(), dto.CreateInvoiceRequest{AgreementID: agr.ID})
	s.NoError(err)

	s.NoError(s.service.DeleteInvoice(s.GetContext(), created.ID))
	_, err = s.service.GetInvoice(s.GetContext(), created.ID)
	s.Error(err)
	s.True(ierr.IsNotFound(err))
}

func (s *InvoiceServiceSuite) TestDeletePaidInvoiceForbidden() {
	agr := s.seedAgreement()
	s.GetClock().SetTime(time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC))

	created, err := s.service.CreateInvoice(s.GetContext(), dto.CreateInvoiceRequest{AgreementID: agr.ID})
	s.NoError(err)
	_, err = s.service.UploadPaymentProof(s.GetContext(), created.ID, dto.UploadPaymentProofRequest{
		ProofURL: "https://files.example.com/proof-1.pdf",
	})
	s.NoError(err)
	_, err = s.service.ApproveInvoice(s.GetContext(), created.ID, dto.ApproveInvoiceRequest{ReferenceNumber: "TRX-1"})
	s.NoError(err)

	err = s.service.DeleteInvoice(s.GetContext(), created.ID)
	s.Error(err)
	s.True(ierr.IsPreconditionFailed(err))
}

func (s *InvoiceServiceSuite) TestRoleGating() {
	agr := s.seedAgreement()
	s.GetClock().SetTime(time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC))

	// Operations may create and upload proof but not approve or reject.
	opsCtx := testutil.SetupContextWithRoles(types.RoleOperations)
	created, err := s.service.CreateInvoice(opsCtx, dto.CreateInvoiceRequest{AgreementID: agr.ID})
	s.NoError(err)
	_, err = s.service.UploadPaymentProof(opsCtx, created.ID, dto.UploadPaymentProofRequest{
		ProofURL: "https://files.example.com/proof-1.pdf",
	})
	s.NoError(err)
	_, err = s.service.ApproveInvoice(opsCtx, created.ID, dto.ApproveInvoiceRequest{ReferenceNumber: "TRX-1"})
	s.Error(err)
	s.True(ierr.IsPermissionDenied(err))

	// Viewers may not manage invoices at all.
	viewerCtx := testutil.SetupContextWithRoles(types.RoleViewer)
	_, err = s.service.CreateInvoice(viewerCtx, dto.CreateInvoiceRequest{
		AgreementID:  agr.ID,
		BillingMonth: lo.ToPtr("2025-03"),
	})
	s.Error(err)
	s.True(ierr.IsPermissionDenied(err))

	// Finance may approve.
	finCtx := testutil.SetupContextWithRoles(types.RoleFinance)
	approved, err := s.service.ApproveInvoice(finCtx, created.ID, dto.ApproveInvoiceRequest{ReferenceNumber: "TRX-1"})
	s.NoError(err)
	s.Equal(types.InvoiceStatusPaid, approved.InvoiceStatus)
}

func (s *InvoiceServiceSuite) TestListInvoicesFiltersAndPaginates() {
	agr := s.seedAgreement()
	s.GetClock().SetTime(time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC))

	first, err := s.service.CreateInvoice(s.GetContext(), dto.CreateInvoiceRequest{AgreementID: agr.ID})
	s.NoError(err)
	_, err = s.service.CreateInvoice(s.GetContext(), dto.CreateInvoiceRequest{
		AgreementID:  agr.ID,
		BillingMonth: lo.ToPtr("2025-03"),
	})
	s.NoError(err)

	filter := types.NewInvoiceFilter()
	filter.AgreementID = lo.ToPtr(agr.ID)
	resp, err := s.service.ListInvoices(s.GetContext(), filter)
	s.NoError(err)
	s.Equal(2, resp.Pagination.Total)
	s.Len(resp.Items, 2)

	statusFilter := types.NewInvoiceFilter()
	statusFilter.InvoiceStatus = lo.ToPtr(types.InvoiceStatusPendingPayment)
	byStatus, err := s.service.ListInvoices(s.GetContext(), statusFilter)
	s.NoError(err)
	s.Equal(2, byStatus.Pagination.Total)

	monthFilter := types.NewInvoiceFilter()
	monthFilter.BillingMonth = lo.ToPtr(1)
	monthFilter.BillingYear = lo.ToPtr(2025)
	byMonth, err := s.service.ListInvoices(s.GetContext(), monthFilter)
	s.NoError(err)
	s.Equal(2, byMonth.Pagination.Total)
	_ = first
}

func (s *InvoiceServiceSuite) TestListInvoicesRejectsBadPageSize() {
	filter := types.NewInvoiceFilter()
	filter.Limit = lo.ToPtr(17)
	_, err := s.service.ListInvoices(s.GetContext(), filter)
	s.Error(err)
	s.True(ierr.IsValidation(err))
}

func (s *InvoiceServiceSuite) TestRefreshOverdueInvoicesSweep() {
	agr := s.seedAgreement()
	s.GetClock().SetTime(time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC))

	created, err := s.service.CreateInvoice(s.GetContext(), dto.CreateInvoiceRequest{AgreementID: agr.ID})
	s.NoError(err)
	future, err := s.service.CreateInvoice(s.GetContext(), dto.CreateInvoiceRequest{
		AgreementID:  agr.ID,
		BillingMonth: lo.ToPtr("2025-06"),
	})
	s.NoError(err)

	s.GetClock().SetTime(created.DueDate.AddDate(0, 0, 3))
	updated, err := s.service.RefreshOverdueInvoices(s.GetContext())
	s.NoError(err)
	// Both invoices share the creation-based due date, so both degrade.
	s.Equal(2, updated)

	// A second sweep the same day changes nothing.
	updated, err = s.service.RefreshOverdueInvoices(s.GetContext())
	s.NoError(err)
	s.Equal(0, updated)
	_ = future
}

// TestMonthlyBillingScenario walks the full worked example: a 3000
// monthly rental split 2:1, invoiced on the anchor day, left unpaid
// for 10 days past the due date, then paid and rejected.
func (s *InvoiceServiceSuite) TestMonthlyBillingScenario() {
	agr := s.seedAgreement()
	s.GetClock().SetTime(time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC))

	created, err := s.service.CreateInvoice(s.GetContext(), dto.CreateInvoiceRequest{AgreementID: agr.ID})
	s.NoError(err)
	s.True(created.BaseAmount.Equal(decimal.NewFromInt(3000)))
	s.True(created.LineItems[0].LineTotal.Equal(decimal.NewFromInt(2000)))
	s.True(created.LineItems[1].LineTotal.Equal(decimal.NewFromInt(1000)))

	s.GetClock().SetTime(created.DueDate.AddDate(0, 0, 10))
	overdue, err := s.service.GetInvoice(s.GetContext(), created.ID)
	s.NoError(err)
	s.Equal(types.InvoiceStatusOverdue, overdue.InvoiceStatus)
	s.True(overdue.TotalAmount.Equal(decimal.RequireFromString("3045")))

	uploaded, err := s.service.UploadPaymentProof(s.GetContext(), created.ID, dto.UploadPaymentProofRequest{
		ProofURL: "https://files.example.com/proof-1.pdf",
	})
	s.NoError(err)
	s.Equal(types.InvoiceStatusPendingApproval, uploaded.InvoiceStatus)

	rejected, err := s.service.RejectInvoice(s.GetContext(), created.ID, dto.RejectInvoiceRequest{
		Reason: "blurry scan",
	})
	s.NoError(err)
	s.Equal(types.InvoiceStatusRejected, rejected.InvoiceStatus)
	s.Len(s.GetSender().Notices(), 1)
}
