package memory

import (
	"github.com/dkessel/bomorder/pkg/domain/entities"
	"github.com/dkessel/bomorder/pkg/domain/repositories"
)

// InventoryRepository provides in-memory on-hand stock storage
type InventoryRepository struct {
	levels map[entities.PartName]entities.Quantity
}

// NewInventoryRepository creates an in-memory inventory repository
func NewInventoryRepository() *InventoryRepository {
	return &InventoryRepository{
		levels: make(map[entities.PartName]entities.Quantity),
	}
}

// Verify interface compliance
var _ repositories.InventoryRepository = (*InventoryRepository)(nil)

// LoadLevels loads inventory levels into the repository
func (r *InventoryRepository) LoadLevels(levels []*entities.InventoryLevel) error {
	for _, level := range levels {
		r.levels[level.Name] += level.OnHand
	}
	return nil
}

// SetOnHand sets the available quantity for a part
func (r *InventoryRepository) SetOnHand(name entities.PartName, qty entities.Quantity) {
	r.levels[name] = qty
}

// OnHand returns the available quantity for a part, zero when unknown
func (r *InventoryRepository) OnHand(name entities.PartName) (entities.Quantity, error) {
	return r.levels[name], nil
}
