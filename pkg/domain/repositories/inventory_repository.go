package repositories

import "github.com/dkessel/bomorder/pkg/domain/entities"

// InventoryRepository provides on-hand stock levels that are netted
// against demand before vendor sourcing
type InventoryRepository interface {
	// OnHand returns the available quantity for a part; zero when the
	// part has no recorded inventory.
	OnHand(name entities.PartName) (entities.Quantity, error)
	LoadLevels(levels []*entities.InventoryLevel) error
}
