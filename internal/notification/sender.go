// Package notification defines the outbound notification contract of
// the billing engine. The rejection notice is a required side effect of
// rejecting an invoice: it is the only signal the payer receives that a
// re-upload is needed.
package notification

import (
	"context"

	"github.com/shopspring/decimal"
)

// RejectionNotice carries everything the payer needs to act on a
// rejected payment proof.
type RejectionNotice struct {
	PayerName     string
	PayerEmail    string
	InvoiceNumber string
	Reason        string
	TotalAmount   decimal.Decimal
}

// Sender delivers notifications to payers. Implementations are owned
// by the surrounding system (email, messaging, webhooks).
type Sender interface {
	SendRejectionNotice(ctx context.Context, notice RejectionNotice) error
}
