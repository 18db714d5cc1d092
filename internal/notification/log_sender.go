package notification

import (
	"context"

	"github.com/rentledger/rentledger/internal/logger"
)

// LogSender is the default Sender: it records the notice in the
// structured log. Deployments wire a real channel in its place.
type LogSender struct {
	logger *logger.Logger
}

func NewLogSender(logger *logger.Logger) Sender {
	return &LogSender{logger: logger}
}

func (s *LogSender) SendRejectionNotice(ctx context.Context, notice RejectionNotice) error {
	s.logger.Infow("rejection notice",
		"payer_name", notice.PayerName,
		"payer_email", notice.PayerEmail,
		"invoice_number", notice.InvoiceNumber,
		"reason", notice.Reason,
		"total_amount", notice.TotalAmount,
	)
	return nil
}
