package entities

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// VendorID represents a unique vendor identifier
type VendorID string

// PriceBreak is one row of an offer's quantity pricing table: the unit
// price that applies from MinQty upward
type PriceBreak struct {
	MinQty    Quantity
	UnitPrice decimal.Decimal
}

// CatalogRow is one unnormalized result row from running a part's named
// search against a collection. The catalog matcher turns rows into
// VendorOffer records.
type CatalogRow struct {
	PartName     PartName
	VendorName   string
	VendorPartID string
	PriceBreaks  []PriceBreak
	Stock        *Quantity // nil = unknown
	MinOrderQty  Quantity
	PackSize     Quantity
}

// VendorOffer represents one vendor's purchasable line for an actual part.
// Offers are immutable snapshots for the duration of an optimization run.
type VendorOffer struct {
	PartName     PartName
	Vendor       VendorID
	VendorPartID string
	PriceBreaks  []PriceBreak // sorted ascending by MinQty
	Stock        *Quantity    // nil = unknown
	MinOrderQty  Quantity
	PackSize     Quantity // purchase multiple; every buy is a whole number of packs
}

// NewVendorOffer creates a validated VendorOffer. Price breaks are sorted
// ascending by MinQty; the literal table values are preserved even when a
// table violates price monotonicity.
func NewVendorOffer(
	partName PartName,
	vendor VendorID,
	vendorPartID string,
	priceBreaks []PriceBreak,
	stock *Quantity,
	minOrderQty Quantity,
	packSize Quantity,
) (*VendorOffer, error) {
	if partName == "" {
		return nil, fmt.Errorf("offer part name cannot be empty")
	}
	if vendor == "" {
		return nil, fmt.Errorf("offer vendor cannot be empty")
	}
	if vendorPartID == "" {
		return nil, fmt.Errorf("offer vendor part id cannot be empty")
	}
	if len(priceBreaks) == 0 {
		return nil, fmt.Errorf("offer %s/%s must have at least one price break", vendor, vendorPartID)
	}
	for _, br := range priceBreaks {
		if br.MinQty < 0 {
			return nil, fmt.Errorf("offer %s/%s price break min quantity cannot be negative, got %d",
				vendor, vendorPartID, br.MinQty)
		}
		if br.UnitPrice.IsNegative() {
			return nil, fmt.Errorf("offer %s/%s unit price cannot be negative, got %s",
				vendor, vendorPartID, br.UnitPrice)
		}
	}
	if stock != nil && *stock < 0 {
		return nil, fmt.Errorf("offer %s/%s stock cannot be negative, got %d",
			vendor, vendorPartID, *stock)
	}
	if minOrderQty < 0 {
		return nil, fmt.Errorf("offer %s/%s minimum order quantity cannot be negative, got %d",
			vendor, vendorPartID, minOrderQty)
	}
	if minOrderQty == 0 {
		minOrderQty = 1
	}
	if packSize < 0 {
		return nil, fmt.Errorf("offer %s/%s pack size cannot be negative, got %d",
			vendor, vendorPartID, packSize)
	}
	if packSize == 0 {
		packSize = 1
	}

	sorted := make([]PriceBreak, len(priceBreaks))
	copy(sorted, priceBreaks)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].MinQty < sorted[j].MinQty
	})

	return &VendorOffer{
		PartName:     partName,
		Vendor:       vendor,
		VendorPartID: vendorPartID,
		PriceBreaks:  sorted,
		Stock:        stock,
		MinOrderQty:  minOrderQty,
		PackSize:     packSize,
	}, nil
}

// Key returns a stable identity for deduplication and ordering
func (o *VendorOffer) Key() string {
	return string(o.Vendor) + "|" + o.VendorPartID
}
