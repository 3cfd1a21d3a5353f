package repositories

import "github.com/dkessel/bomorder/pkg/domain/entities"

// CatalogRepository provides the point-in-time catalog snapshot for a
// planning run: the rows produced by running each actual part's named
// searches against the supplied collections. Acquisition and refresh are
// the collection provider's concern; the core only reads a fully
// materialized snapshot.
type CatalogRepository interface {
	// RowsFor returns the raw search-result rows for an actual part.
	// An empty slice means no search matched the part.
	RowsFor(name entities.PartName) ([]*entities.CatalogRow, error)
	LoadRows(rows []*entities.CatalogRow) error
}
