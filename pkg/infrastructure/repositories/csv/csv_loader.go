package csv

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/dkessel/bomorder/pkg/domain/entities"
)

// Loader handles loading planning snapshot data from CSV files
type Loader struct{}

// NewLoader creates a new CSV loader
func NewLoader() *Loader {
	return &Loader{}
}

// LoadParts loads the part namespace from a CSV file. The kind column
// selects the variant; variant-specific columns are left empty for the
// other kinds. Multi-part components are encoded as "NAME:QTY;NAME:QTY".
func (l *Loader) LoadParts(filename string) ([]*entities.Part, error) {
	records, err := readAll(filename, "parts")
	if err != nil {
		return nil, err
	}

	expectedHeader := []string{"name", "kind", "target", "components", "unit_part", "units_per_purchase", "batch_size", "description"}
	header := records[0]
	if !validateHeader(header, expectedHeader) {
		return nil, fmt.Errorf("parts CSV header mismatch. Expected: %v, Got: %v", expectedHeader, header)
	}

	var parts []*entities.Part
	for i, record := range records[1:] {
		if len(record) != len(expectedHeader) {
			return nil, fmt.Errorf("parts CSV row %d: expected %d columns, got %d", i+2, len(expectedHeader), len(record))
		}

		part, err := parsePart(record)
		if err != nil {
			return nil, fmt.Errorf("parts CSV row %d: %w", i+2, err)
		}

		parts = append(parts, part)
	}

	return parts, nil
}

// LoadPosedParts loads posed parts from a CSV file
func (l *Loader) LoadPosedParts(filename string) ([]*entities.PosedPart, error) {
	records, err := readAll(filename, "posed parts")
	if err != nil {
		return nil, err
	}

	expectedHeader := []string{"part_name", "count"}
	header := records[0]
	if !validateHeader(header, expectedHeader) {
		return nil, fmt.Errorf("posed parts CSV header mismatch. Expected: %v, Got: %v", expectedHeader, header)
	}

	var posed []*entities.PosedPart
	for i, record := range records[1:] {
		if len(record) != len(expectedHeader) {
			return nil, fmt.Errorf("posed parts CSV row %d: expected %d columns, got %d", i+2, len(expectedHeader), len(record))
		}

		count, err := strconv.ParseInt(record[1], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("posed parts CSV row %d: invalid count: %s", i+2, record[1])
		}

		pp, err := entities.NewPosedPart(entities.PartName(record[0]), entities.Quantity(count))
		if err != nil {
			return nil, fmt.Errorf("posed parts CSV row %d: %w", i+2, err)
		}

		posed = append(posed, pp)
	}

	return posed, nil
}

// LoadCatalog loads catalog snapshot rows from a CSV file. Price breaks
// are encoded as "MINQTY:PRICE;MINQTY:PRICE"; an empty stock column means
// stock is unknown.
func (l *Loader) LoadCatalog(filename string) ([]*entities.CatalogRow, error) {
	records, err := readAll(filename, "catalog")
	if err != nil {
		return nil, err
	}

	expectedHeader := []string{"part_name", "vendor", "vendor_part_id", "price_breaks", "stock", "min_order_qty", "pack_size"}
	header := records[0]
	if !validateHeader(header, expectedHeader) {
		return nil, fmt.Errorf("catalog CSV header mismatch. Expected: %v, Got: %v", expectedHeader, header)
	}

	var rows []*entities.CatalogRow
	for i, record := range records[1:] {
		if len(record) != len(expectedHeader) {
			return nil, fmt.Errorf("catalog CSV row %d: expected %d columns, got %d", i+2, len(expectedHeader), len(record))
		}

		row, err := parseCatalogRow(record)
		if err != nil {
			return nil, fmt.Errorf("catalog CSV row %d: %w", i+2, err)
		}

		rows = append(rows, row)
	}

	return rows, nil
}

// LoadShippingPolicies loads vendor shipping policies from a CSV file.
// An empty free_threshold column means shipping is never free.
func (l *Loader) LoadShippingPolicies(filename string) ([]*entities.VendorShippingPolicy, error) {
	records, err := readAll(filename, "shipping")
	if err != nil {
		return nil, err
	}

	expectedHeader := []string{"vendor", "flat_fee", "free_threshold"}
	header := records[0]
	if !validateHeader(header, expectedHeader) {
		return nil, fmt.Errorf("shipping CSV header mismatch. Expected: %v, Got: %v", expectedHeader, header)
	}

	var policies []*entities.VendorShippingPolicy
	for i, record := range records[1:] {
		if len(record) != len(expectedHeader) {
			return nil, fmt.Errorf("shipping CSV row %d: expected %d columns, got %d", i+2, len(expectedHeader), len(record))
		}

		flatFee, err := decimal.NewFromString(record[1])
		if err != nil {
			return nil, fmt.Errorf("shipping CSV row %d: invalid flat_fee: %s", i+2, record[1])
		}

		var threshold *decimal.Decimal
		if strings.TrimSpace(record[2]) != "" {
			t, err := decimal.NewFromString(record[2])
			if err != nil {
				return nil, fmt.Errorf("shipping CSV row %d: invalid free_threshold: %s", i+2, record[2])
			}
			threshold = &t
		}

		policy, err := entities.NewVendorShippingPolicy(entities.VendorID(record[0]), flatFee, threshold)
		if err != nil {
			return nil, fmt.Errorf("shipping CSV row %d: %w", i+2, err)
		}

		policies = append(policies, policy)
	}

	return policies, nil
}

// LoadInventory loads on-hand inventory levels from a CSV file
func (l *Loader) LoadInventory(filename string) ([]*entities.InventoryLevel, error) {
	records, err := readAll(filename, "inventory")
	if err != nil {
		return nil, err
	}

	expectedHeader := []string{"part_name", "on_hand"}
	header := records[0]
	if !validateHeader(header, expectedHeader) {
		return nil, fmt.Errorf("inventory CSV header mismatch. Expected: %v, Got: %v", expectedHeader, header)
	}

	var levels []*entities.InventoryLevel
	for i, record := range records[1:] {
		if len(record) != len(expectedHeader) {
			return nil, fmt.Errorf("inventory CSV row %d: expected %d columns, got %d", i+2, len(expectedHeader), len(record))
		}

		onHand, err := strconv.ParseInt(record[1], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("inventory CSV row %d: invalid on_hand: %s", i+2, record[1])
		}

		level, err := entities.NewInventoryLevel(entities.PartName(record[0]), entities.Quantity(onHand))
		if err != nil {
			return nil, fmt.Errorf("inventory CSV row %d: %w", i+2, err)
		}

		levels = append(levels, level)
	}

	return levels, nil
}

// Helper functions for parsing CSV records

func readAll(filename, kind string) ([][]string, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s file %s: %w", kind, filename, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s CSV: %w", kind, err)
	}

	if len(records) < 2 {
		return nil, fmt.Errorf("%s CSV must have header and at least one data row", kind)
	}

	return records, nil
}

func validateHeader(actual, expected []string) bool {
	if len(actual) != len(expected) {
		return false
	}

	for i, col := range expected {
		if strings.ToLower(strings.TrimSpace(actual[i])) != col {
			return false
		}
	}

	return true
}

func parsePart(record []string) (*entities.Part, error) {
	name := entities.PartName(record[0])
	description := record[7]

	switch strings.ToLower(record[1]) {
	case "concrete":
		return entities.NewConcretePart(name, description)

	case "alias":
		return entities.NewAliasPart(name, entities.PartName(record[2]))

	case "multipart":
		subParts, err := parseComponents(record[3])
		if err != nil {
			return nil, err
		}
		return entities.NewMultiPart(name, subParts, description)

	case "fractional":
		unitsPer, err := strconv.ParseInt(record[5], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid units_per_purchase: %s", record[5])
		}
		batchSize := int64(1)
		if strings.TrimSpace(record[6]) != "" {
			batchSize, err = strconv.ParseInt(record[6], 10, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid batch_size: %s", record[6])
			}
		}
		conversion := entities.Conversion{
			UnitsPerPurchase: entities.Quantity(unitsPer),
			BatchSize:        entities.Quantity(batchSize),
		}
		return entities.NewFractionalPart(name, entities.PartName(record[4]), conversion, description)

	default:
		return nil, fmt.Errorf("invalid kind: %s (expected: Concrete, Alias, MultiPart, or Fractional)", record[1])
	}
}

func parseComponents(s string) ([]entities.SubPart, error) {
	var subParts []entities.SubPart
	for _, component := range strings.Split(s, ";") {
		component = strings.TrimSpace(component)
		if component == "" {
			continue
		}
		fields := strings.SplitN(component, ":", 2)
		if len(fields) != 2 {
			return nil, fmt.Errorf("invalid component %q (expected NAME:QTY)", component)
		}
		qty, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid component quantity in %q", component)
		}
		subParts = append(subParts, entities.SubPart{
			Name:   entities.PartName(fields[0]),
			QtyPer: entities.Quantity(qty),
		})
	}
	return subParts, nil
}

func parseCatalogRow(record []string) (*entities.CatalogRow, error) {
	breaks, err := parsePriceBreaks(record[3])
	if err != nil {
		return nil, err
	}

	var stock *entities.Quantity
	if strings.TrimSpace(record[4]) != "" {
		s, err := strconv.ParseInt(record[4], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid stock: %s", record[4])
		}
		qty := entities.Quantity(s)
		stock = &qty
	}

	minOrderQty := int64(0)
	if strings.TrimSpace(record[5]) != "" {
		minOrderQty, err = strconv.ParseInt(record[5], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid min_order_qty: %s", record[5])
		}
	}

	packSize := int64(0)
	if strings.TrimSpace(record[6]) != "" {
		packSize, err = strconv.ParseInt(record[6], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid pack_size: %s", record[6])
		}
	}

	return &entities.CatalogRow{
		PartName:     entities.PartName(record[0]),
		VendorName:   record[1],
		VendorPartID: record[2],
		PriceBreaks:  breaks,
		Stock:        stock,
		MinOrderQty:  entities.Quantity(minOrderQty),
		PackSize:     entities.Quantity(packSize),
	}, nil
}

func parsePriceBreaks(s string) ([]entities.PriceBreak, error) {
	var breaks []entities.PriceBreak
	for _, entry := range strings.Split(s, ";") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		fields := strings.SplitN(entry, ":", 2)
		if len(fields) != 2 {
			return nil, fmt.Errorf("invalid price break %q (expected MINQTY:PRICE)", entry)
		}
		minQty, err := strconv.ParseInt(fields[0], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid price break quantity in %q", entry)
		}
		price, err := decimal.NewFromString(fields[1])
		if err != nil {
			return nil, fmt.Errorf("invalid price break price in %q", entry)
		}
		breaks = append(breaks, entities.PriceBreak{
			MinQty:    entities.Quantity(minQty),
			UnitPrice: price,
		})
	}
	return breaks, nil
}
