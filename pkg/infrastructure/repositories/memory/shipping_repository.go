package memory

import (
	"github.com/dkessel/bomorder/pkg/domain/entities"
	"github.com/dkessel/bomorder/pkg/domain/repositories"
)

// ShippingRepository provides an in-memory shipping policy store
type ShippingRepository struct {
	policies map[entities.VendorID]entities.VendorShippingPolicy
}

// NewShippingRepository creates an in-memory shipping repository
func NewShippingRepository() *ShippingRepository {
	return &ShippingRepository{
		policies: make(map[entities.VendorID]entities.VendorShippingPolicy),
	}
}

// Verify interface compliance
var _ repositories.ShippingRepository = (*ShippingRepository)(nil)

// LoadPolicies loads shipping policies into the repository
func (r *ShippingRepository) LoadPolicies(policies []*entities.VendorShippingPolicy) error {
	for _, policy := range policies {
		r.AddPolicy(*policy)
	}
	return nil
}

// AddPolicy registers a vendor's shipping policy
func (r *ShippingRepository) AddPolicy(policy entities.VendorShippingPolicy) {
	r.policies[policy.Vendor] = policy
}

// PolicyFor returns the vendor's shipping policy; vendors without a
// registered policy ship free
func (r *ShippingRepository) PolicyFor(vendor entities.VendorID) (*entities.VendorShippingPolicy, error) {
	policy, exists := r.policies[vendor]
	if !exists {
		return entities.FreeShippingPolicy(vendor), nil
	}
	return &policy, nil
}
