package entities

// ShortfallReason explains why demand for an actual part went unmet
type ShortfallReason int

const (
	// Unmatched means no search across the supplied collections produced
	// an offer for the part
	Unmatched ShortfallReason = iota
	// Infeasible means offers exist but none satisfy minimum-order,
	// packaging, or stock constraints for the remaining demand
	Infeasible
)

// String method for ShortfallReason enum
func (r ShortfallReason) String() string {
	switch r {
	case Unmatched:
		return "Unmatched"
	case Infeasible:
		return "Infeasible"
	default:
		return "Unknown"
	}
}

// Shortfall records unmet demand for an actual part after optimization
type Shortfall struct {
	Name      PartName
	Demand    Quantity
	Allocated Quantity
	Reason    ShortfallReason
	Detail    string
}

// Waste records surplus yield bought because fractional parts purchase
// whole bulk units. Surplus is never a shortfall.
type Waste struct {
	Name         PartName // the fractional part requested
	UnitPart     PartName // the bulk part actually purchased
	Requested    Quantity // amount requested, in yield units
	Purchased    Quantity // bulk units bought
	SurplusUnits Quantity // yield units beyond the request
}

// Issue records a structural data error confined to one part, collected
// so the run can continue for unaffected parts
type Issue struct {
	Name PartName // the posed or defining part the error is attributed to
	Err  error
}
