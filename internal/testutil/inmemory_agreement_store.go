package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/rentledger/rentledger/internal/domain/agreement"
	ierr "github.com/rentledger/rentledger/internal/errors"
)

// InMemoryAgreementStore implements agreement.Source. Agreements are
// owned by the contracts subsystem, so unlike the invoice store this
// one only serves reads; tests seed it directly.
type InMemoryAgreementStore struct {
	mu         sync.RWMutex
	agreements map[string]*agreement.RentalAgreement
	anchors    map[string]time.Time
	lineItems  map[string][]*agreement.LineItem
}

// NewInMemoryAgreementStore creates a new in-memory agreement source
func NewInMemoryAgreementStore() *InMemoryAgreementStore {
	return &InMemoryAgreementStore{
		agreements: make(map[string]*agreement.RentalAgreement),
		anchors:    make(map[string]time.Time),
		lineItems:  make(map[string][]*agreement.LineItem),
	}
}

// Seed registers an agreement together with its line items. The anchor
// derived from the request subsystem is set separately with SeedAnchor.
func (s *InMemoryAgreementStore) Seed(agr *agreement.RentalAgreement, items ...*agreement.LineItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.agreements[agr.ID] = agr
	s.lineItems[agr.ID] = items
}

// SeedAnchor sets the earliest required date for the agreement's items
func (s *InMemoryAgreementStore) SeedAnchor(agreementID string, anchor time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.anchors[agreementID] = anchor
}

// Clear removes all seeded data
func (s *InMemoryAgreementStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.agreements = make(map[string]*agreement.RentalAgreement)
	s.anchors = make(map[string]time.Time)
	s.lineItems = make(map[string][]*agreement.LineItem)
}

func (s *InMemoryAgreementStore) GetAgreement(ctx context.Context, id string) (*agreement.RentalAgreement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	agr, exists := s.agreements[id]
	if !exists {
		return nil, ierr.NewErrorf("agreement %s not found", id).
			WithHint("The requested agreement does not exist").
			Mark(ierr.ErrNotFound)
	}
	cp := *agr
	return &cp, nil
}

func (s *InMemoryAgreementStore) GetAnchorDate(ctx context.Context, agreementID string) (time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if agr, exists := s.agreements[agreementID]; exists && agr.AnchorOverride != nil {
		return *agr.AnchorOverride, nil
	}
	if anchor, exists := s.anchors[agreementID]; exists {
		return anchor, nil
	}
	return time.Time{}, ierr.NewErrorf("no anchor date for agreement %s", agreementID).
		WithHint("The agreement has no anchor override and no required dates").
		Mark(ierr.ErrNotFound)
}

func (s *InMemoryAgreementStore) GetLineItems(ctx context.Context, agreementID string) ([]*agreement.LineItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := s.lineItems[agreementID]
	result := make([]*agreement.LineItem, len(items))
	for i, item := range items {
		cp := *item
		result[i] = &cp
	}
	return result, nil
}
