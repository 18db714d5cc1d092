package repository

import (
	"context"
	"time"

	"github.com/rentledger/rentledger/internal/cache"
	"github.com/rentledger/rentledger/internal/domain/agreement"
	"github.com/rentledger/rentledger/internal/logger"
)

// cachedAgreementSource is a read-through cache in front of the
// agreement tables. Agreement data changes rarely compared to how often
// billing reads it, so short TTLs keep invoices correct without a
// cross-subsystem invalidation protocol.
type cachedAgreementSource struct {
	inner agreement.Source
	cache cache.Cache
	log   *logger.Logger
}

// NewCachedAgreementSource wraps source with a read-through cache
func NewCachedAgreementSource(inner agreement.Source, c cache.Cache, log *logger.Logger) agreement.Source {
	return &cachedAgreementSource{inner: inner, cache: c, log: log}
}

func (s *cachedAgreementSource) GetAgreement(ctx context.Context, id string) (*agreement.RentalAgreement, error) {
	key := cache.GenerateKey(cache.PrefixAgreement, id)
	if cached, found := s.cache.Get(ctx, key); found {
		if agr, ok := cached.(*agreement.RentalAgreement); ok {
			return agr, nil
		}
	}

	agr, err := s.inner.GetAgreement(ctx, id)
	if err != nil {
		return nil, err
	}
	s.cache.Set(ctx, key, agr, cache.DefaultExpiration)
	return agr, nil
}

func (s *cachedAgreementSource) GetAnchorDate(ctx context.Context, agreementID string) (time.Time, error) {
	key := cache.GenerateKey(cache.PrefixAgreementAnchor, agreementID)
	if cached, found := s.cache.Get(ctx, key); found {
		if anchor, ok := cached.(time.Time); ok {
			return anchor, nil
		}
	}

	anchor, err := s.inner.GetAnchorDate(ctx, agreementID)
	if err != nil {
		return time.Time{}, err
	}
	s.cache.Set(ctx, key, anchor, cache.DefaultExpiration)
	return anchor, nil
}

func (s *cachedAgreementSource) GetLineItems(ctx context.Context, agreementID string) ([]*agreement.LineItem, error) {
	key := cache.GenerateKey(cache.PrefixAgreementItems, agreementID)
	if cached, found := s.cache.Get(ctx, key); found {
		if items, ok := cached.([]*agreement.LineItem); ok {
			return items, nil
		}
	}

	items, err := s.inner.GetLineItems(ctx, agreementID)
	if err != nil {
		return nil, err
	}
	s.cache.Set(ctx, key, items, cache.DefaultExpiration)
	return items, nil
}
