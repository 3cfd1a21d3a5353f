package services

import (
	"errors"
	"sort"

	"github.com/dkessel/bomorder/pkg/domain/entities"
	"github.com/dkessel/bomorder/pkg/domain/repositories"
)

// maxFractionalPasses bounds fractional-to-fractional chains; a namespace
// that keeps producing fresh fractional demand past this depth is looping
const maxFractionalPasses = 100

// Demand is the aggregated purchase requirement produced by expansion:
// one quantity per terminal actual part, plus the waste and per-part
// issues accumulated on the way
type Demand struct {
	Quantities map[entities.PartName]entities.Quantity
	Waste      []entities.Waste
	Issues     []entities.Issue
}

// SortedParts returns the demanded part names in deterministic order
func (d *Demand) SortedParts() []entities.PartName {
	names := make([]entities.PartName, 0, len(d.Quantities))
	for name := range d.Quantities {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}

// frame is one pending unit of expansion work
type frame struct {
	name entities.PartName
	qty  entities.Quantity
}

// Expander turns posed parts into aggregated actual-part demand. Expansion
// walks the composition tree with an explicit work stack, so deeply nested
// multi-parts cannot exhaust the call stack.
type Expander struct {
	parts    repositories.PartRepository
	resolver *AliasResolver
}

// NewExpander creates an expander over the given part namespace
func NewExpander(parts repositories.PartRepository) *Expander {
	return &Expander{
		parts:    parts,
		resolver: NewAliasResolver(parts),
	}
}

// Expand expands every posed part down to terminal actual parts and sums
// quantities per part. Alias cycles abort the run. Unknown names and
// non-positive quantities void only the posed part that referenced them;
// the failure is recorded as an issue and expansion continues.
func (e *Expander) Expand(posed []*entities.PosedPart) (*Demand, error) {
	demand := &Demand{Quantities: make(map[entities.PartName]entities.Quantity)}

	// Fractional requests are only converted after all posed parts have
	// been walked, so whole-unit rounding applies once to the summed
	// request per fractional part rather than once per placement.
	fractional := make(map[entities.PartName]entities.Quantity)

	for _, pp := range posed {
		local := make(map[entities.PartName]entities.Quantity)
		localFrac := make(map[entities.PartName]entities.Quantity)

		if err := e.expandInto(pp.Name, pp.Count, local, localFrac); err != nil {
			var cycle *entities.CycleError
			if errors.As(err, &cycle) {
				return nil, cycle
			}
			demand.Issues = append(demand.Issues, entities.Issue{Name: pp.Name, Err: err})
			continue
		}

		mergeQuantities(demand.Quantities, local)
		mergeQuantities(fractional, localFrac)
	}

	for pass := 0; len(fractional) > 0; pass++ {
		if pass >= maxFractionalPasses {
			return nil, &entities.CycleError{Cycle: sortedNames(fractional)}
		}

		next := make(map[entities.PartName]entities.Quantity)
		for _, name := range sortedNames(fractional) {
			requested := fractional[name]

			part, err := e.parts.GetPart(name)
			if err != nil {
				demand.Issues = append(demand.Issues, entities.Issue{
					Name: name,
					Err:  &entities.UnknownPartError{Name: name},
				})
				continue
			}

			conv := part.Conversion
			purchases := ceilDiv(requested, conv.UnitsPerPurchase)
			purchases = roundUpToMultiple(purchases, conv.BatchSize)

			local := make(map[entities.PartName]entities.Quantity)
			localFrac := make(map[entities.PartName]entities.Quantity)
			if err := e.expandInto(part.UnitPart, purchases, local, localFrac); err != nil {
				var cycle *entities.CycleError
				if errors.As(err, &cycle) {
					return nil, cycle
				}
				demand.Issues = append(demand.Issues, entities.Issue{Name: name, Err: err})
				continue
			}

			demand.Waste = append(demand.Waste, entities.Waste{
				Name:         name,
				UnitPart:     part.UnitPart,
				Requested:    requested,
				Purchased:    purchases,
				SurplusUnits: purchases*conv.UnitsPerPurchase - requested,
			})
			mergeQuantities(demand.Quantities, local)
			mergeQuantities(next, localFrac)
		}
		fractional = next
	}

	return demand, nil
}

// expandInto walks one composition tree, accumulating terminal quantities
// into out and fractional requests into frac
func (e *Expander) expandInto(
	name entities.PartName,
	qty entities.Quantity,
	out map[entities.PartName]entities.Quantity,
	frac map[entities.PartName]entities.Quantity,
) error {
	stack := []frame{{name: name, qty: qty}}

	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if f.qty <= 0 {
			return &entities.NegativeQuantityError{Name: f.name, Quantity: f.qty}
		}

		part, err := e.resolver.Resolve(f.name)
		if err != nil {
			return err
		}

		switch part.Kind {
		case entities.Concrete:
			out[part.Name] += f.qty
		case entities.MultiPart:
			// Push in reverse so sub-parts pop in declaration order
			for i := len(part.SubParts) - 1; i >= 0; i-- {
				sub := part.SubParts[i]
				stack = append(stack, frame{name: sub.Name, qty: f.qty * sub.QtyPer})
			}
		case entities.Fractional:
			frac[part.Name] += f.qty
		}
	}

	return nil
}

func mergeQuantities(dst, src map[entities.PartName]entities.Quantity) {
	for name, qty := range src {
		dst[name] += qty
	}
}

func sortedNames(m map[entities.PartName]entities.Quantity) []entities.PartName {
	names := make([]entities.PartName, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}

func ceilDiv(a, b entities.Quantity) entities.Quantity {
	return (a + b - 1) / b
}

func roundUpToMultiple(qty, multiple entities.Quantity) entities.Quantity {
	if multiple <= 1 {
		return qty
	}
	return ceilDiv(qty, multiple) * multiple
}
