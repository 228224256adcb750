// Package pricing computes reservation totals from the fixed fare rules.
package pricing

import (
	"math"

	"somgil/internal/models"
)

// DefaultBasePrice is used when a package carries no price.
const DefaultBasePrice int64 = 1_000_000

// ChildDiscountRate is the per-unit child fare multiplier.
const ChildDiscountRate = 0.7

// Total computes the reservation total for a base price, party composition
// and add-on selection. Pure computation, safe to rerun on every edit.
//
// Rules:
//   - adults pay the base price,
//   - children pay floor(base*0.7) per head,
//   - infants travel free,
//   - selected options add their fixed price.
func Total(basePrice int64, party models.PartyComposition, options []models.Option, selected models.OptionSelection) int64 {
	if basePrice <= 0 {
		basePrice = DefaultBasePrice
	}
	party = party.Normalize()

	childFare := int64(math.Floor(float64(basePrice) * ChildDiscountRate))

	total := basePrice * int64(party.AdultCount)
	total += childFare * int64(party.ChildCount)
	// Infants count toward party size only.

	for _, opt := range options {
		if selected.Selected(opt.Name) && opt.Price > 0 {
			total += opt.Price
		}
	}
	return total
}

// ChildFare returns the discounted per-child price for display.
func ChildFare(basePrice int64) int64 {
	if basePrice <= 0 {
		basePrice = DefaultBasePrice
	}
	return int64(math.Floor(float64(basePrice) * ChildDiscountRate))
}
