package repositories

import "github.com/dkessel/bomorder/pkg/domain/entities"

// ShippingRepository provides per-vendor shipping policies
type ShippingRepository interface {
	// PolicyFor returns the shipping policy for a vendor. Vendors without
	// a registered policy ship free; implementations return
	// entities.FreeShippingPolicy for them rather than an error.
	PolicyFor(vendor entities.VendorID) (*entities.VendorShippingPolicy, error)
	LoadPolicies(policies []*entities.VendorShippingPolicy) error
}
