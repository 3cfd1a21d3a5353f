package entities

import "github.com/shopspring/decimal"

// OrderLine represents one purchased offer within a vendor order
type OrderLine struct {
	Offer     *VendorOffer
	Quantity  Quantity
	UnitPrice decimal.Decimal
	LineCost  decimal.Decimal
}

// VendorOrder groups everything purchased from one vendor, with the
// vendor's shipping charge applied exactly once
type VendorOrder struct {
	Vendor   VendorID
	Lines    []OrderLine
	Subtotal decimal.Decimal
	Shipping decimal.Decimal
	Total    decimal.Decimal
}
