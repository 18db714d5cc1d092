// Package cache provides a small read-through cache used to avoid
// re-fetching agreement data on every billing operation.
package cache

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Cache defines the interface for caching operations
type Cache interface {
	// Get retrieves a value from the cache
	// Returns the value and a boolean indicating whether the key was found
	Get(ctx context.Context, key string) (interface{}, bool)

	// Set adds a value to the cache with the specified expiration
	// If expiration is 0, the item never expires (but may be evicted)
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration)

	// Delete removes a key from the cache
	Delete(ctx context.Context, key string)

	// Flush removes all items from the cache
	Flush(ctx context.Context)
}

// Cache key prefixes per entity type
const (
	PrefixAgreement       = "agreement:v1:"
	PrefixAgreementAnchor = "agreement_anchor:v1:"
	PrefixAgreementItems  = "agreement_items:v1:"
)

// GenerateKey creates a cache key from a prefix and a set of parameters
func GenerateKey(prefix string, params ...interface{}) string {
	parts := make([]string, len(params)+1)
	parts[0] = prefix

	for i, param := range params {
		parts[i+1] = fmt.Sprintf("%v", param)
	}

	return strings.Join(parts, ":")
}
