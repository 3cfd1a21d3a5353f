package memory

import (
	"github.com/dkessel/bomorder/pkg/domain/entities"
	"github.com/dkessel/bomorder/pkg/domain/repositories"
)

// CatalogRepository provides an in-memory catalog snapshot implementation
type CatalogRepository struct {
	rows       []entities.CatalogRow
	rowIndexes map[entities.PartName][]int
}

// NewCatalogRepository creates an in-memory catalog repository
func NewCatalogRepository(expectedRows int) *CatalogRepository {
	return &CatalogRepository{
		rows:       make([]entities.CatalogRow, 0, expectedRows),
		rowIndexes: make(map[entities.PartName][]int),
	}
}

// Verify interface compliance
var _ repositories.CatalogRepository = (*CatalogRepository)(nil)

// LoadRows loads catalog rows into the repository
func (r *CatalogRepository) LoadRows(rows []*entities.CatalogRow) error {
	for _, row := range rows {
		r.AddRow(*row)
	}
	return nil
}

// AddRow adds a catalog row to the snapshot
func (r *CatalogRepository) AddRow(row entities.CatalogRow) {
	index := len(r.rows)
	r.rows = append(r.rows, row)
	r.rowIndexes[row.PartName] = append(r.rowIndexes[row.PartName], index)
}

// RowsFor returns the search-result rows for an actual part, in load order
func (r *CatalogRepository) RowsFor(name entities.PartName) ([]*entities.CatalogRow, error) {
	indexes, exists := r.rowIndexes[name]
	if !exists {
		return []*entities.CatalogRow{}, nil
	}

	rows := make([]*entities.CatalogRow, 0, len(indexes))
	for _, index := range indexes {
		rows = append(rows, &r.rows[index])
	}
	return rows, nil
}
