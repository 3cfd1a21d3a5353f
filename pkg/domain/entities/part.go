package entities

import "fmt"

// PartName represents a unique part identifier in the project part namespace
type PartName string

// Quantity represents an integer count of discrete purchasable units
type Quantity int64

// PartKind represents the variant of a part namespace entry
type PartKind int

const (
	Concrete PartKind = iota
	Alias
	MultiPart
	Fractional
)

// String method for PartKind enum
func (k PartKind) String() string {
	switch k {
	case Concrete:
		return "Concrete"
	case Alias:
		return "Alias"
	case MultiPart:
		return "MultiPart"
	case Fractional:
		return "Fractional"
	default:
		return "Unknown"
	}
}

// SubPart represents one component line of a multi-part
type SubPart struct {
	Name   PartName
	QtyPer Quantity
}

// Conversion describes how a fractional request maps onto whole purchases
// of an underlying bulk part
type Conversion struct {
	UnitsPerPurchase Quantity // yield of one purchased bulk unit
	BatchSize        Quantity // purchase granularity in bulk units (1 = single units)
}

// Part represents one entry in the part namespace. The Kind field selects
// which of the variant fields are meaningful.
type Part struct {
	Name        PartName
	Kind        PartKind
	Description string
	Target      PartName   // Alias: the part this name forwards to
	SubParts    []SubPart  // MultiPart: ordered component lines
	UnitPart    PartName   // Fractional: the purchasable bulk part
	Conversion  Conversion // Fractional: request-to-purchase conversion
}

// NewConcretePart creates a validated terminal part
func NewConcretePart(name PartName, description string) (*Part, error) {
	if name == "" {
		return nil, fmt.Errorf("part name cannot be empty")
	}

	return &Part{
		Name:        name,
		Kind:        Concrete,
		Description: description,
	}, nil
}

// NewAliasPart creates a validated alias entry
func NewAliasPart(name, target PartName) (*Part, error) {
	if name == "" {
		return nil, fmt.Errorf("part name cannot be empty")
	}
	if target == "" {
		return nil, fmt.Errorf("alias target cannot be empty")
	}
	if name == target {
		return nil, fmt.Errorf("alias cannot target itself: %s", name)
	}

	return &Part{
		Name:   name,
		Kind:   Alias,
		Target: target,
	}, nil
}

// NewMultiPart creates a validated composite part
func NewMultiPart(name PartName, subParts []SubPart, description string) (*Part, error) {
	if name == "" {
		return nil, fmt.Errorf("part name cannot be empty")
	}
	if len(subParts) == 0 {
		return nil, fmt.Errorf("multi-part %s must have at least one sub-part", name)
	}
	for _, sub := range subParts {
		if sub.Name == "" {
			return nil, fmt.Errorf("multi-part %s has a sub-part with an empty name", name)
		}
		if sub.QtyPer <= 0 {
			return nil, fmt.Errorf("multi-part %s sub-part %s quantity must be positive, got %d",
				name, sub.Name, sub.QtyPer)
		}
	}

	return &Part{
		Name:        name,
		Kind:        MultiPart,
		SubParts:    subParts,
		Description: description,
	}, nil
}

// NewFractionalPart creates a validated fractional part. A request for N
// units is satisfied by buying whole units of unitPart, each yielding
// conversion.UnitsPerPurchase, rounded up to conversion.BatchSize multiples.
func NewFractionalPart(name, unitPart PartName, conversion Conversion, description string) (*Part, error) {
	if name == "" {
		return nil, fmt.Errorf("part name cannot be empty")
	}
	if unitPart == "" {
		return nil, fmt.Errorf("fractional part %s unit part cannot be empty", name)
	}
	if name == unitPart {
		return nil, fmt.Errorf("fractional part cannot draw from itself: %s", name)
	}
	if conversion.UnitsPerPurchase <= 0 {
		return nil, fmt.Errorf("fractional part %s units per purchase must be positive, got %d",
			name, conversion.UnitsPerPurchase)
	}
	if conversion.BatchSize <= 0 {
		return nil, fmt.Errorf("fractional part %s batch size must be positive, got %d",
			name, conversion.BatchSize)
	}

	return &Part{
		Name:        name,
		Kind:        Fractional,
		UnitPart:    unitPart,
		Conversion:  conversion,
		Description: description,
	}, nil
}

// PosedPart represents a project part reference with its placement count,
// read from the project's design export
type PosedPart struct {
	Name  PartName
	Count Quantity
}

// NewPosedPart creates a validated PosedPart
func NewPosedPart(name PartName, count Quantity) (*PosedPart, error) {
	if name == "" {
		return nil, fmt.Errorf("posed part name cannot be empty")
	}
	if count <= 0 {
		return nil, fmt.Errorf("posed part %s count must be positive, got %d", name, count)
	}

	return &PosedPart{
		Name:  name,
		Count: count,
	}, nil
}

// InventoryLevel represents on-hand stock for an actual part, netted
// against demand before any vendor sourcing
type InventoryLevel struct {
	Name   PartName
	OnHand Quantity
}

// NewInventoryLevel creates a validated InventoryLevel
func NewInventoryLevel(name PartName, onHand Quantity) (*InventoryLevel, error) {
	if name == "" {
		return nil, fmt.Errorf("inventory part name cannot be empty")
	}
	if onHand < 0 {
		return nil, fmt.Errorf("inventory for %s cannot be negative, got %d", name, onHand)
	}

	return &InventoryLevel{
		Name:   name,
		OnHand: onHand,
	}, nil
}
