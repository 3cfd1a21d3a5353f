package planning

import (
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/dkessel/bomorder/pkg/domain/entities"
	"github.com/dkessel/bomorder/pkg/domain/repositories"
)

// vendorNameSuffixes are decorations some catalogs append to vendor names;
// they are stripped so the same vendor collates across collections
var vendorNameSuffixes = []string{
	" •",
	" ECIA (NEDA) Member",
	" CEDA member",
}

// Matcher normalizes the collection provider's raw search-result rows
// into VendorOffer sets, one set per actual part
type Matcher struct {
	catalog repositories.CatalogRepository
	logger  *zap.Logger
}

// NewMatcher creates a matcher over the supplied catalog snapshot
func NewMatcher(catalog repositories.CatalogRepository, logger *zap.Logger) *Matcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Matcher{catalog: catalog, logger: logger}
}

// Match returns the candidate vendor offers for an actual part. Rows with
// no price breaks are dropped, vendor names are cleaned, duplicate
// (vendor, vendor part id) rows keep their first occurrence, and the
// result is sorted for deterministic downstream iteration. An empty
// result means no search matched the part; the caller records that as a
// shortfall rather than failing the run.
func (m *Matcher) Match(name entities.PartName) ([]*entities.VendorOffer, error) {
	rows, err := m.catalog.RowsFor(name)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog rows for %s: %w", name, err)
	}

	seen := make(map[string]bool)
	var offers []*entities.VendorOffer
	for _, row := range rows {
		if len(row.PriceBreaks) == 0 {
			m.logger.Debug("dropping catalog row without price breaks",
				zap.String("part", string(name)),
				zap.String("vendor", row.VendorName))
			continue
		}

		vendor := entities.VendorID(CleanVendorName(row.VendorName))
		offer, err := entities.NewVendorOffer(
			name,
			vendor,
			row.VendorPartID,
			row.PriceBreaks,
			row.Stock,
			row.MinOrderQty,
			row.PackSize,
		)
		if err != nil {
			m.logger.Warn("dropping malformed catalog row",
				zap.String("part", string(name)),
				zap.String("vendor", row.VendorName),
				zap.Error(err))
			continue
		}

		if seen[offer.Key()] {
			continue
		}
		seen[offer.Key()] = true
		offers = append(offers, offer)
	}

	sort.Slice(offers, func(i, j int) bool {
		return offers[i].Key() < offers[j].Key()
	})

	return offers, nil
}

// CleanVendorName strips newline characters and trailing catalog
// decorations from a vendor name
func CleanVendorName(name string) string {
	name = strings.ReplaceAll(name, "\n", "")
	for _, suffix := range vendorNameSuffixes {
		name = strings.TrimSuffix(name, suffix)
	}
	return strings.Trim(name, " \t")
}
