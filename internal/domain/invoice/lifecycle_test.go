package invoice

import (
	"testing"
	"time"

	ierr "github.com/rentledger/rentledger/internal/errors"
	"github.com/rentledger/rentledger/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestInvoice(status types.InvoiceStatus) *Invoice {
	base := decimal.NewFromInt(3000)
	return &Invoice{
		ID:               "inv_test",
		InvoiceNumber:    "MRI-20250101-001",
		AgreementID:      "agr_test",
		BillingStartDate: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		BillingEndDate:   time.Date(2025, 1, 30, 0, 0, 0, 0, time.UTC),
		BaseAmount:       base,
		OverdueCharges:   decimal.Zero,
		TotalAmount:      base,
		DueDate:          time.Date(2025, 1, 8, 0, 0, 0, 0, time.UTC),
		InvoiceStatus:    status,
	}
}

func TestAttachPaymentProof(t *testing.T) {
	now := time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)

	legalSources := []types.InvoiceStatus{
		types.InvoiceStatusPendingPayment,
		types.InvoiceStatusOverdue,
		types.InvoiceStatusRejected,
	}
	for _, status := range legalSources {
		t.Run("from_"+string(status), func(t *testing.T) {
			inv := newTestInvoice(status)
			require.NoError(t, inv.AttachPaymentProof("https://files.example.com/proof.pdf", "user_1", now))
			assert.Equal(t, types.InvoiceStatusPendingApproval, inv.InvoiceStatus)
			assert.Equal(t, "https://files.example.com/proof.pdf", *inv.PaymentProofURL)
			assert.Equal(t, "user_1", *inv.PaymentProofUploadedBy)
		})
	}

	t.Run("clears_rejection_metadata", func(t *testing.T) {
		inv := newTestInvoice(types.InvoiceStatusRejected)
		inv.RejectedBy = lo.ToPtr("approver_1")
		inv.RejectedAt = lo.ToPtr(now.AddDate(0, 0, -1))
		inv.RejectionReason = lo.ToPtr("blurry scan")

		require.NoError(t, inv.AttachPaymentProof("https://files.example.com/proof2.pdf", "user_1", now))
		assert.Nil(t, inv.RejectedBy)
		assert.Nil(t, inv.RejectedAt)
		assert.Nil(t, inv.RejectionReason)
	})

	t.Run("illegal_from_paid", func(t *testing.T) {
		inv := newTestInvoice(types.InvoiceStatusPaid)
		err := inv.AttachPaymentProof("https://files.example.com/proof.pdf", "user_1", now)
		assert.True(t, ierr.IsPreconditionFailed(err))
		assert.Equal(t, types.InvoiceStatusPaid, inv.InvoiceStatus)
	})

	t.Run("illegal_from_pending_approval", func(t *testing.T) {
		inv := newTestInvoice(types.InvoiceStatusPendingApproval)
		err := inv.AttachPaymentProof("https://files.example.com/proof.pdf", "user_1", now)
		assert.True(t, ierr.IsPreconditionFailed(err))
	})

	t.Run("missing_proof_url", func(t *testing.T) {
		inv := newTestInvoice(types.InvoiceStatusPendingPayment)
		err := inv.AttachPaymentProof("", "user_1", now)
		assert.True(t, ierr.IsValidation(err))
		assert.Equal(t, types.InvoiceStatusPendingPayment, inv.InvoiceStatus)
	})
}

func TestApprove(t *testing.T) {
	now := time.Date(2025, 1, 12, 9, 0, 0, 0, time.UTC)

	t.Run("legal_from_pending_approval", func(t *testing.T) {
		inv := newTestInvoice(types.InvoiceStatusPendingApproval)
		require.NoError(t, inv.Approve("TXN-2025-0042", "approver_1", now))
		assert.Equal(t, types.InvoiceStatusPaid, inv.InvoiceStatus)
		assert.Equal(t, "TXN-2025-0042", *inv.ReferenceNumber)
		assert.Equal(t, "approver_1", *inv.ApprovedBy)
		assert.Equal(t, now, *inv.ApprovedAt)
	})

	t.Run("illegal_from_pending_payment", func(t *testing.T) {
		inv := newTestInvoice(types.InvoiceStatusPendingPayment)
		err := inv.Approve("TXN-2025-0042", "approver_1", now)
		assert.True(t, ierr.IsPreconditionFailed(err))
		assert.Equal(t, types.InvoiceStatusPendingPayment, inv.InvoiceStatus)
	})

	t.Run("missing_reference_number", func(t *testing.T) {
		inv := newTestInvoice(types.InvoiceStatusPendingApproval)
		err := inv.Approve("", "approver_1", now)
		assert.True(t, ierr.IsValidation(err))
		assert.Equal(t, types.InvoiceStatusPendingApproval, inv.InvoiceStatus)
	})
}

func TestReject(t *testing.T) {
	now := time.Date(2025, 1, 12, 9, 0, 0, 0, time.UTC)

	t.Run("legal_from_pending_approval", func(t *testing.T) {
		inv := newTestInvoice(types.InvoiceStatusPendingApproval)
		require.NoError(t, inv.Reject("blurry scan", "approver_1", now))
		assert.Equal(t, types.InvoiceStatusRejected, inv.InvoiceStatus)
		assert.Equal(t, "blurry scan", *inv.RejectionReason)
		assert.Nil(t, inv.ApprovedBy)
		assert.Nil(t, inv.ReferenceNumber)
	})

	t.Run("illegal_from_paid", func(t *testing.T) {
		inv := newTestInvoice(types.InvoiceStatusPaid)
		err := inv.Reject("blurry scan", "approver_1", now)
		assert.True(t, ierr.IsPreconditionFailed(err))
	})

	t.Run("missing_reason", func(t *testing.T) {
		inv := newTestInvoice(types.InvoiceStatusPendingApproval)
		err := inv.Reject("", "approver_1", now)
		assert.True(t, ierr.IsValidation(err))
	})
}

func TestMarkOverdue(t *testing.T) {
	t.Run("from_pending_payment", func(t *testing.T) {
		inv := newTestInvoice(types.InvoiceStatusPendingPayment)
		require.NoError(t, inv.MarkOverdue(decimal.NewFromInt(45)))
		assert.Equal(t, types.InvoiceStatusOverdue, inv.InvoiceStatus)
		assert.True(t, inv.OverdueCharges.Equal(decimal.NewFromInt(45)))
		assert.True(t, inv.TotalAmount.Equal(decimal.NewFromInt(3045)))
	})

	t.Run("from_rejected", func(t *testing.T) {
		inv := newTestInvoice(types.InvoiceStatusRejected)
		require.NoError(t, inv.MarkOverdue(decimal.NewFromInt(45)))
		assert.Equal(t, types.InvoiceStatusOverdue, inv.InvoiceStatus)
	})

	t.Run("illegal_from_pending_approval", func(t *testing.T) {
		inv := newTestInvoice(types.InvoiceStatusPendingApproval)
		err := inv.MarkOverdue(decimal.NewFromInt(45))
		assert.True(t, ierr.IsPreconditionFailed(err))
	})

	t.Run("refresh_replaces_charges", func(t *testing.T) {
		inv := newTestInvoice(types.InvoiceStatusPendingPayment)
		require.NoError(t, inv.MarkOverdue(decimal.NewFromInt(45)))

		// A later refresh replaces the stored charges; it never adds
		// on top of them.
		require.NoError(t, inv.RefreshOverdueCharges(decimal.NewFromInt(90)))
		assert.True(t, inv.OverdueCharges.Equal(decimal.NewFromInt(90)))
		assert.True(t, inv.TotalAmount.Equal(decimal.NewFromInt(3090)))
	})
}

func TestEnsureDeletable(t *testing.T) {
	deletable := []types.InvoiceStatus{
		types.InvoiceStatusPendingPayment,
		types.InvoiceStatusOverdue,
		types.InvoiceStatusPendingApproval,
		types.InvoiceStatusRejected,
	}
	for _, status := range deletable {
		assert.NoError(t, newTestInvoice(status).EnsureDeletable(), "status %s", status)
	}

	err := newTestInvoice(types.InvoiceStatusPaid).EnsureDeletable()
	assert.True(t, ierr.IsPreconditionFailed(err))
}

func TestValidate(t *testing.T) {
	t.Run("valid_invoice", func(t *testing.T) {
		inv := newTestInvoice(types.InvoiceStatusPendingPayment)
		inv.LineItems = []*LineItem{
			{ID: "li_1", InvoiceID: inv.ID, ItemID: "item_1", LineTotal: decimal.NewFromInt(2000), UnitWeight: decimal.NewFromInt(2), Quantity: 1},
			{ID: "li_2", InvoiceID: inv.ID, ItemID: "item_2", LineTotal: decimal.NewFromInt(1000), UnitWeight: decimal.NewFromInt(1), Quantity: 1},
		}
		assert.NoError(t, inv.Validate())
	})

	t.Run("total_must_be_base_plus_charges", func(t *testing.T) {
		inv := newTestInvoice(types.InvoiceStatusPendingPayment)
		inv.TotalAmount = decimal.NewFromInt(9999)
		assert.True(t, ierr.IsValidation(inv.Validate()))
	})

	t.Run("line_totals_must_sum_to_base", func(t *testing.T) {
		inv := newTestInvoice(types.InvoiceStatusPendingPayment)
		inv.LineItems = []*LineItem{
			{ID: "li_1", InvoiceID: inv.ID, ItemID: "item_1", LineTotal: decimal.NewFromInt(1), UnitWeight: decimal.NewFromInt(1)},
		}
		assert.True(t, ierr.IsValidation(inv.Validate()))
	})
}

func TestFormatInvoiceNumber(t *testing.T) {
	at := time.Date(2025, 1, 1, 15, 30, 0, 0, time.UTC)
	assert.Equal(t, "MRI-20250101-001", FormatInvoiceNumber(at, 1))
	assert.Equal(t, "MRI-20250101-042", FormatInvoiceNumber(at, 42))
	assert.Equal(t, "MRI-20251231-007", FormatInvoiceNumber(time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC), 7))
}
