package billing

import (
	ierr "github.com/rentledger/rentledger/internal/errors"
	"github.com/shopspring/decimal"
)

// WeightedItem is one rented item as it appears on the agreement. The
// weight is the item's agreed monthly rate; it is a proportion, not a
// literal price.
type WeightedItem struct {
	ItemID      string
	DisplayName string
	Weight      decimal.Decimal
	Quantity    int
}

// Allocation is an item's share of the flat monthly amount.
type Allocation struct {
	ItemID      string
	DisplayName string
	Weight      decimal.Decimal
	Quantity    int
	Amount      decimal.Decimal
}

// Allocator splits a flat monthly amount across weighted items such
// that the shares sum exactly to the flat amount. Billing is for the
// agreed rental, not delivery status, so every distinct item appears in
// the result even with a zero weight.
type Allocator struct{}

func NewAllocator() *Allocator {
	return &Allocator{}
}

// Allocate computes per-item shares of flatAmount. Items with the same
// ItemID are merged into a single allocation (an item is billed once).
// Every item except the last receives its rounded proportional share;
// the last item absorbs the remainder, which is what guarantees the
// exact-sum invariant regardless of rounding drift. When all weights
// are zero the amount is split equally instead.
func (a *Allocator) Allocate(flatAmount decimal.Decimal, items []WeightedItem) ([]Allocation, error) {
	if flatAmount.IsNegative() {
		return nil, ierr.NewError("invalid flat amount").
			WithHint("Flat monthly amount must be non negative").
			Mark(ierr.ErrValidation)
	}

	merged := mergeByItemID(items)
	if len(merged) == 0 {
		return []Allocation{}, nil
	}

	totalWeight := decimal.Zero
	for _, item := range merged {
		if item.Weight.IsNegative() {
			return nil, ierr.NewError("invalid item weight").
				WithHintf("Item %s has a negative weight", item.ItemID).
				Mark(ierr.ErrValidation)
		}
		totalWeight = totalWeight.Add(item.Weight)
	}

	allocations := make([]Allocation, 0, len(merged))
	running := decimal.Zero
	count := decimal.NewFromInt(int64(len(merged)))

	for i, item := range merged {
		var amount decimal.Decimal
		switch {
		case i == len(merged)-1:
			// Last item takes whatever is left of the flat amount.
			amount = flatAmount.Sub(running).Round(2)
		case totalWeight.IsZero():
			amount = flatAmount.Div(count).Round(2)
		default:
			amount = item.Weight.Div(totalWeight).Mul(flatAmount).Round(2)
		}
		running = running.Add(amount)

		allocations = append(allocations, Allocation{
			ItemID:      item.ItemID,
			DisplayName: item.DisplayName,
			Weight:      item.Weight,
			Quantity:    item.Quantity,
			Amount:      amount,
		})
	}

	return allocations, nil
}

// mergeByItemID collapses duplicate item references into one weight
// contribution each, preserving first-occurrence order.
func mergeByItemID(items []WeightedItem) []WeightedItem {
	merged := make([]WeightedItem, 0, len(items))
	index := make(map[string]int, len(items))

	for _, item := range items {
		if i, seen := index[item.ItemID]; seen {
			merged[i].Weight = merged[i].Weight.Add(item.Weight)
			merged[i].Quantity += item.Quantity
			continue
		}
		index[item.ItemID] = len(merged)
		merged = append(merged, item)
	}

	return merged
}
