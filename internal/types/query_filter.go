package types

import (
	ierr "github.com/rentledger/rentledger/internal/errors"
	"github.com/samber/lo"
)

const (
	OrderAsc  = "asc"
	OrderDesc = "desc"
)

// AllowedPageSizes are the only page sizes the list endpoints accept.
var AllowedPageSizes = []int{5, 10, 25, 50}

// DefaultPageSize is used when the caller does not specify a limit.
const DefaultPageSize = 10

// QueryFilter represents a generic query filter with optional fields
type QueryFilter struct {
	Limit  *int    `json:"limit,omitempty" form:"limit" validate:"omitempty"`
	Offset *int    `json:"offset,omitempty" form:"offset" validate:"omitempty,min=0"`
	Status *Status `json:"status,omitempty" form:"status"`
	Sort   *string `json:"sort,omitempty" form:"sort"`
	Order  *string `json:"order,omitempty" form:"order" validate:"omitempty,oneof=asc desc"`
}

// NewDefaultQueryFilter defines default values for query filters:
// first page of 10, newest first.
func NewDefaultQueryFilter() *QueryFilter {
	return &QueryFilter{
		Limit:  lo.ToPtr(DefaultPageSize),
		Offset: lo.ToPtr(0),
		Status: lo.ToPtr(StatusPublished),
		Sort:   lo.ToPtr("created_at"),
		Order:  lo.ToPtr(OrderDesc),
	}
}

// NewNoLimitQueryFilter returns a filter with no pagination limits
func NewNoLimitQueryFilter() *QueryFilter {
	return &QueryFilter{
		Offset: lo.ToPtr(0),
		Status: lo.ToPtr(StatusPublished),
		Sort:   lo.ToPtr("created_at"),
		Order:  lo.ToPtr(OrderDesc),
	}
}

// GetLimit returns the limit value or default if not set
func (f *QueryFilter) GetLimit() int {
	if f == nil || f.Limit == nil {
		return DefaultPageSize
	}
	return *f.Limit
}

// GetOffset returns the offset value or default if not set
func (f *QueryFilter) GetOffset() int {
	if f == nil || f.Offset == nil {
		return 0
	}
	return *f.Offset
}

// GetStatus returns the status value or default if not set
func (f *QueryFilter) GetStatus() Status {
	if f == nil || f.Status == nil {
		return StatusPublished
	}
	return *f.Status
}

// GetSort returns the sort value or default if not set
func (f *QueryFilter) GetSort() string {
	if f == nil || f.Sort == nil {
		return "created_at"
	}
	return *f.Sort
}

// GetOrder returns the order value or default if not set
func (f *QueryFilter) GetOrder() string {
	if f == nil || f.Order == nil {
		return OrderDesc
	}
	return *f.Order
}

// IsUnlimited reports whether the filter bypasses pagination
func (f *QueryFilter) IsUnlimited() bool {
	return f != nil && f.Limit == nil && f.Offset != nil
}

// Validate checks pagination bounds. The limit must be one of the
// allowed page sizes when set.
func (f *QueryFilter) Validate() error {
	if f == nil {
		return nil
	}
	if f.Limit != nil && !lo.Contains(AllowedPageSizes, *f.Limit) {
		return ierr.NewError("invalid page size").
			WithHint("Page size must be one of the allowed values").
			WithReportableDetails(map[string]any{
				"allowed": AllowedPageSizes,
			}).
			Mark(ierr.ErrValidation)
	}
	if f.Offset != nil && *f.Offset < 0 {
		return ierr.NewError("invalid offset").
			WithHint("Offset must be non negative").
			Mark(ierr.ErrValidation)
	}
	if f.Order != nil && *f.Order != OrderAsc && *f.Order != OrderDesc {
		return ierr.NewError("invalid sort order").
			WithHint("Order must be asc or desc").
			Mark(ierr.ErrValidation)
	}
	return nil
}

// BaseFilter defines common filtering capabilities
type BaseFilter interface {
	GetLimit() int
	GetOffset() int
	GetStatus() Status
	GetSort() string
	GetOrder() string
	IsUnlimited() bool
	Validate() error
}
