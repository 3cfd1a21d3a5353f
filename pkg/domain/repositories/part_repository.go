package repositories

import "github.com/dkessel/bomorder/pkg/domain/entities"

// PartRepository provides read access to the part namespace. The namespace
// is immutable for the duration of a planning run.
type PartRepository interface {
	GetPart(name entities.PartName) (*entities.Part, error)
	GetAllParts() ([]*entities.Part, error)
	LoadParts(parts []*entities.Part) error
}
