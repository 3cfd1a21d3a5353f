package entities

import (
	"fmt"
	"strings"
)

// CycleError reports an alias loop in the part namespace. Cycle holds every
// member of the loop in walk order. Alias cycles indicate corrupt project
// data and abort the whole run.
type CycleError struct {
	Cycle []PartName
}

func (e *CycleError) Error() string {
	names := make([]string, 0, len(e.Cycle)+1)
	for _, name := range e.Cycle {
		names = append(names, string(name))
	}
	if len(e.Cycle) > 0 {
		names = append(names, string(e.Cycle[0]))
	}
	return fmt.Sprintf("alias cycle: %s", strings.Join(names, " -> "))
}

// UnknownPartError reports a reference to a name missing from the part
// namespace. Fatal for the referencing expansion only.
type UnknownPartError struct {
	Name         PartName
	ReferencedBy PartName // empty when the unknown name was referenced directly
}

func (e *UnknownPartError) Error() string {
	if e.ReferencedBy != "" {
		return fmt.Sprintf("unknown part %s referenced by %s", e.Name, e.ReferencedBy)
	}
	return fmt.Sprintf("unknown part %s", e.Name)
}

// NegativeQuantityError reports a computed quantity that is zero or
// negative, indicating a malformed multi-part or fractional definition.
type NegativeQuantityError struct {
	Name     PartName
	Quantity Quantity
}

func (e *NegativeQuantityError) Error() string {
	return fmt.Sprintf("part %s expanded to non-positive quantity %d", e.Name, e.Quantity)
}
