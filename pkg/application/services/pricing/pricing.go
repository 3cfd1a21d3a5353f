// Package pricing evaluates the cost of buying quantities of vendor
// offers: price-break selection, line costs, and per-vendor order totals
// including shipping.
package pricing

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/dkessel/bomorder/pkg/domain/entities"
	"github.com/dkessel/bomorder/pkg/domain/repositories"
)

// currencyPlaces is the currency minor unit every cost is rounded to.
// decimal.Round rounds half away from zero, which is round-half-up for
// the non-negative amounts handled here.
const currencyPlaces = 2

// UnitCost returns the per-unit price for buying qty of an offer: the
// price of the break row with the largest MinQty not exceeding qty. A
// malformed table that violates price monotonicity is honored literally.
func UnitCost(offer *entities.VendorOffer, qty entities.Quantity) decimal.Decimal {
	price := offer.PriceBreaks[0].UnitPrice
	for _, br := range offer.PriceBreaks {
		if br.MinQty > qty {
			break
		}
		price = br.UnitPrice
	}
	return price
}

// LineCost returns the rounded cost of buying qty of an offer
func LineCost(offer *entities.VendorOffer, qty entities.Quantity) decimal.Decimal {
	return UnitCost(offer, qty).
		Mul(decimal.NewFromInt(int64(qty))).
		Round(currencyPlaces)
}

// Model prices vendor orders using the run's shipping policies
type Model struct {
	shipping repositories.ShippingRepository
}

// NewModel creates a pricing model over the given shipping policies
func NewModel(shipping repositories.ShippingRepository) *Model {
	return &Model{shipping: shipping}
}

// PolicyFor returns the vendor's shipping policy, or free shipping when
// the vendor has none registered
func (m *Model) PolicyFor(vendor entities.VendorID) *entities.VendorShippingPolicy {
	policy, err := m.shipping.PolicyFor(vendor)
	if err != nil || policy == nil {
		return entities.FreeShippingPolicy(vendor)
	}
	return policy
}

// ShippingFee returns the shipping charge for a vendor at the given
// subtotal: the flat fee, waived once the subtotal reaches the vendor's
// free-shipping threshold
func (m *Model) ShippingFee(vendor entities.VendorID, subtotal decimal.Decimal) decimal.Decimal {
	policy := m.PolicyFor(vendor)
	if policy.FreeThreshold != nil && subtotal.GreaterThanOrEqual(*policy.FreeThreshold) {
		return decimal.Zero
	}
	return policy.FlatFee
}

// BuildOrder prices a vendor's purchased quantities into a VendorOrder.
// Lines are sorted by part name then vendor part id so repeated runs on
// the same snapshot produce identical output.
func (m *Model) BuildOrder(
	vendor entities.VendorID,
	purchases map[*entities.VendorOffer]entities.Quantity,
) *entities.VendorOrder {
	lines := make([]entities.OrderLine, 0, len(purchases))
	subtotal := decimal.Zero

	for offer, qty := range purchases {
		unit := UnitCost(offer, qty)
		cost := LineCost(offer, qty)
		lines = append(lines, entities.OrderLine{
			Offer:     offer,
			Quantity:  qty,
			UnitPrice: unit,
			LineCost:  cost,
		})
		subtotal = subtotal.Add(cost)
	}

	sort.Slice(lines, func(i, j int) bool {
		if lines[i].Offer.PartName != lines[j].Offer.PartName {
			return lines[i].Offer.PartName < lines[j].Offer.PartName
		}
		return lines[i].Offer.Key() < lines[j].Offer.Key()
	})

	shipping := m.ShippingFee(vendor, subtotal)
	return &entities.VendorOrder{
		Vendor:   vendor,
		Lines:    lines,
		Subtotal: subtotal,
		Shipping: shipping,
		Total:    subtotal.Add(shipping),
	}
}
