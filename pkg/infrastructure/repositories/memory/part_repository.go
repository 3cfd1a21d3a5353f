package memory

import (
	"fmt"
	"sort"

	"github.com/dkessel/bomorder/pkg/domain/entities"
	"github.com/dkessel/bomorder/pkg/domain/repositories"
)

// PartRepository provides an in-memory part namespace implementation
type PartRepository struct {
	parts    []entities.Part
	partsMap map[entities.PartName]int
}

// NewPartRepository creates an in-memory part repository
func NewPartRepository(expectedParts int) *PartRepository {
	return &PartRepository{
		parts:    make([]entities.Part, 0, expectedParts),
		partsMap: make(map[entities.PartName]int, expectedParts),
	}
}

// Verify interface compliance
var _ repositories.PartRepository = (*PartRepository)(nil)

// LoadParts loads parts into the repository
func (r *PartRepository) LoadParts(parts []*entities.Part) error {
	for _, part := range parts {
		if _, exists := r.partsMap[part.Name]; exists {
			return fmt.Errorf("duplicate part definition: %s", part.Name)
		}
		r.AddPart(*part)
	}
	return nil
}

// AddPart adds a part to the namespace, replacing any previous definition
func (r *PartRepository) AddPart(part entities.Part) {
	if index, exists := r.partsMap[part.Name]; exists {
		r.parts[index] = part
		return
	}
	r.partsMap[part.Name] = len(r.parts)
	r.parts = append(r.parts, part)
}

// GetPart returns the named part
func (r *PartRepository) GetPart(name entities.PartName) (*entities.Part, error) {
	index, exists := r.partsMap[name]
	if !exists {
		return nil, fmt.Errorf("part not found: %s", name)
	}
	return &r.parts[index], nil
}

// GetAllParts returns every part sorted by name
func (r *PartRepository) GetAllParts() ([]*entities.Part, error) {
	parts := make([]*entities.Part, 0, len(r.parts))
	for i := range r.parts {
		parts = append(parts, &r.parts[i])
	}
	sort.Slice(parts, func(i, j int) bool { return parts[i].Name < parts[j].Name })
	return parts, nil
}
