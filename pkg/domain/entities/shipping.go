package entities

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// VendorShippingPolicy represents a vendor's shipping charge: a flat fee
// per order, waived when the order subtotal reaches FreeThreshold
type VendorShippingPolicy struct {
	Vendor        VendorID
	FlatFee       decimal.Decimal
	FreeThreshold *decimal.Decimal // nil = shipping is never free
}

// NewVendorShippingPolicy creates a validated VendorShippingPolicy
func NewVendorShippingPolicy(
	vendor VendorID,
	flatFee decimal.Decimal,
	freeThreshold *decimal.Decimal,
) (*VendorShippingPolicy, error) {
	if vendor == "" {
		return nil, fmt.Errorf("shipping policy vendor cannot be empty")
	}
	if flatFee.IsNegative() {
		return nil, fmt.Errorf("shipping policy for %s flat fee cannot be negative, got %s",
			vendor, flatFee)
	}
	if freeThreshold != nil && freeThreshold.IsNegative() {
		return nil, fmt.Errorf("shipping policy for %s free threshold cannot be negative, got %s",
			vendor, freeThreshold)
	}

	return &VendorShippingPolicy{
		Vendor:        vendor,
		FlatFee:       flatFee,
		FreeThreshold: freeThreshold,
	}, nil
}

// FreeShippingPolicy returns the policy used when a vendor has no
// registered shipping charge
func FreeShippingPolicy(vendor VendorID) *VendorShippingPolicy {
	return &VendorShippingPolicy{
		Vendor:  vendor,
		FlatFee: decimal.Zero,
	}
}
