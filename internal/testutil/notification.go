package testutil

import (
	"context"
	"sync"

	"github.com/rentledger/rentledger/internal/notification"
)

// RecordingSender implements notification.Sender and records every
// notice it is asked to deliver. FailNext makes the next send fail so
// tests can assert that delivery failures do not roll back rejections.
type RecordingSender struct {
	mu       sync.Mutex
	notices  []notification.RejectionNotice
	failNext error
}

func NewRecordingSender() *RecordingSender {
	return &RecordingSender{}
}

func (s *RecordingSender) SendRejectionNotice(ctx context.Context, notice notification.RejectionNotice) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failNext != nil {
		err := s.failNext
		s.failNext = nil
		return err
	}
	s.notices = append(s.notices, notice)
	return nil
}

// Notices returns a copy of everything sent so far
func (s *RecordingSender) Notices() []notification.RejectionNotice {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]notification.RejectionNotice, len(s.notices))
	copy(out, s.notices)
	return out
}

// FailNext makes the next send return err
func (s *RecordingSender) FailNext(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failNext = err
}

// Clear drops all recorded notices
func (s *RecordingSender) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notices = nil
	s.failNext = nil
}
