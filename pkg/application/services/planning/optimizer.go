package planning

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/dkessel/bomorder/pkg/application/dto"
	"github.com/dkessel/bomorder/pkg/application/services/pricing"
	"github.com/dkessel/bomorder/pkg/domain/entities"
)

// maxTierIterations bounds the price-break fixed-point loop. Tier
// selection depends on allocated quantity, which depends on tier-driven
// offer ordering; a handful of iterations always settles in practice.
const maxTierIterations = 10

// traceSubsetLimit caps how many per-subset comparison lines are kept in
// the run trace
const traceSubsetLimit = 64

// Config holds optimizer tuning knobs
type Config struct {
	// MaxExactVendors is the candidate vendor count above which exact
	// subset enumeration is skipped in favor of the greedy heuristic
	MaxExactVendors int
	// MaxSubsets is a hard cap on enumerated vendor subsets
	MaxSubsets int
	// Workers is the number of parallel subset evaluators
	Workers int
	// ExcludedVendors are removed from consideration before optimization,
	// e.g. vendors whose shipping costs always exceed their savings
	ExcludedVendors []entities.VendorID
}

// DefaultConfig returns the optimizer defaults
func DefaultConfig() Config {
	return Config{
		MaxExactVendors: 12,
		MaxSubsets:      4096,
		Workers:         4,
	}
}

// Result is the optimizer's output before report assembly
type Result struct {
	Orders     []entities.VendorOrder
	Shortfalls []entities.Shortfall
	Mode       dto.OptimizeMode
	Trace      []string
}

// pick is one (offer, purchased quantity) selection for a part
type pick struct {
	offer *entities.VendorOffer
	qty   entities.Quantity
}

// Optimizer selects, across all demanded actual parts and their candidate
// offers, the vendor allocation minimizing unit costs plus one shipping
// fee per vendor used. Small problems are solved exactly by enumerating
// candidate vendor subsets; larger ones fall back to a deterministic
// greedy heuristic.
type Optimizer struct {
	pricing *pricing.Model
	config  Config
	logger  *zap.Logger
}

// NewOptimizer creates an optimizer with the given pricing model and
// configuration
func NewOptimizer(model *pricing.Model, config Config, logger *zap.Logger) *Optimizer {
	if config.MaxExactVendors <= 0 {
		config.MaxExactVendors = DefaultConfig().MaxExactVendors
	}
	if config.MaxSubsets <= 0 {
		config.MaxSubsets = DefaultConfig().MaxSubsets
	}
	if config.Workers <= 0 {
		config.Workers = DefaultConfig().Workers
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Optimizer{pricing: model, config: config, logger: logger}
}

// Optimize allocates vendor offers against demand. Parts whose demand
// cannot be met are reported as shortfalls; the result still contains the
// best achievable orders for everything else.
func (o *Optimizer) Optimize(
	ctx context.Context,
	demand map[entities.PartName]entities.Quantity,
	offersByPart map[entities.PartName][]*entities.VendorOffer,
) *Result {
	parts, candidates, shortfalls := o.prepare(demand, offersByPart)

	if len(parts) == 0 {
		return &Result{Mode: dto.ModeExact, Shortfalls: shortfalls}
	}

	vendors := candidateVendors(parts, candidates)
	numSubsets := subsetCount(len(vendors))

	if len(vendors) <= o.config.MaxExactVendors && numSubsets <= o.config.MaxSubsets {
		if result, ok := o.optimizeExact(ctx, parts, demand, candidates, vendors); ok {
			result.Shortfalls = append(shortfalls, result.Shortfalls...)
			sortShortfalls(result.Shortfalls)
			return result
		}
		o.logger.Warn("exact optimization canceled, falling back to greedy")
	} else {
		o.logger.Info("vendor subset space exceeds exact-mode cap, using greedy heuristic",
			zap.Int("vendors", len(vendors)),
			zap.Int("subsets", numSubsets),
			zap.Int("maxSubsets", o.config.MaxSubsets))
	}

	result := o.optimizeGreedy(parts, demand, candidates)
	result.Shortfalls = append(shortfalls, result.Shortfalls...)
	sortShortfalls(result.Shortfalls)
	return result
}

// prepare filters excluded vendors and splits off parts with no usable
// offers as immediate shortfalls
func (o *Optimizer) prepare(
	demand map[entities.PartName]entities.Quantity,
	offersByPart map[entities.PartName][]*entities.VendorOffer,
) ([]entities.PartName, map[entities.PartName][]*entities.VendorOffer, []entities.Shortfall) {
	excluded := make(map[entities.VendorID]bool, len(o.config.ExcludedVendors))
	for _, vendor := range o.config.ExcludedVendors {
		excluded[vendor] = true
	}

	var parts []entities.PartName
	candidates := make(map[entities.PartName][]*entities.VendorOffer, len(demand))
	var shortfalls []entities.Shortfall

	for name := range demand {
		parts = append(parts, name)
	}
	sort.Slice(parts, func(i, j int) bool { return parts[i] < parts[j] })

	usable := parts[:0]
	for _, name := range parts {
		var kept []*entities.VendorOffer
		for _, offer := range offersByPart[name] {
			if !excluded[offer.Vendor] {
				kept = append(kept, offer)
			}
		}
		if len(kept) == 0 {
			detail := "no vendor offers"
			if len(offersByPart[name]) > 0 {
				detail = "all offers from excluded vendors"
			}
			shortfalls = append(shortfalls, entities.Shortfall{
				Name:   name,
				Demand: demand[name],
				Reason: entities.Unmatched,
				Detail: detail,
			})
			continue
		}
		candidates[name] = kept
		usable = append(usable, name)
	}

	return usable, candidates, shortfalls
}

// subsetResult is one evaluated vendor subset
type subsetResult struct {
	evaluated   bool
	unsatisfied int
	total       decimal.Decimal
	usedVendors int
	vendorKey   string
	purchases   map[entities.VendorID]map[*entities.VendorOffer]entities.Quantity
	unmetParts  []entities.PartName
}

// optimizeExact enumerates every non-empty subset of candidate vendors in
// parallel and keeps the best feasible allocation. Returns ok=false when
// the context was canceled before enumeration finished.
func (o *Optimizer) optimizeExact(
	ctx context.Context,
	parts []entities.PartName,
	demand map[entities.PartName]entities.Quantity,
	candidates map[entities.PartName][]*entities.VendorOffer,
	vendors []entities.VendorID,
) (*Result, bool) {
	numSubsets := subsetCount(len(vendors))
	results := make([]subsetResult, numSubsets+1)

	masks := make(chan uint64)
	var wg sync.WaitGroup
	for w := 0; w < o.config.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for mask := range masks {
				if ctx.Err() != nil {
					return
				}
				results[mask] = o.evaluateSubset(mask, parts, demand, candidates, vendors)
			}
		}()
	}

send:
	for mask := uint64(1); mask <= uint64(numSubsets); mask++ {
		select {
		case masks <- mask:
		case <-ctx.Done():
			break send
		}
	}
	close(masks)
	wg.Wait()

	if ctx.Err() != nil {
		return nil, false
	}

	// Deterministic winner scan: coverage first, then total cost, then
	// fewer vendors, then lexicographically smaller vendor set
	best := -1
	for mask := 1; mask <= numSubsets; mask++ {
		r := &results[mask]
		if !r.evaluated {
			continue
		}
		if best < 0 || betterSubset(r, &results[best]) {
			best = mask
		}
	}
	if best < 0 {
		return nil, false
	}

	trace := o.exactTrace(results, best, numSubsets)
	winner := &results[best]

	result := &Result{
		Mode:   dto.ModeExact,
		Orders: o.buildOrders(winner.purchases),
		Trace:  trace,
	}
	for _, name := range winner.unmetParts {
		result.Shortfalls = append(result.Shortfalls, entities.Shortfall{
			Name:   name,
			Demand: demand[name],
			Reason: entities.Infeasible,
			Detail: "no offer satisfies minimum order and stock constraints",
		})
	}
	return result, true
}

// evaluateSubset allocates every part against the subset's vendors and
// prices the resulting orders
func (o *Optimizer) evaluateSubset(
	mask uint64,
	parts []entities.PartName,
	demand map[entities.PartName]entities.Quantity,
	candidates map[entities.PartName][]*entities.VendorOffer,
	vendors []entities.VendorID,
) subsetResult {
	subset := make(map[entities.VendorID]bool)
	var keys []string
	for i, vendor := range vendors {
		if mask&(1<<uint(i)) != 0 {
			subset[vendor] = true
			keys = append(keys, string(vendor))
		}
	}

	purchases := make(map[entities.VendorID]map[*entities.VendorOffer]entities.Quantity)
	var unmet []entities.PartName

	for _, name := range parts {
		var cands []*entities.VendorOffer
		for _, offer := range candidates[name] {
			if subset[offer.Vendor] {
				cands = append(cands, offer)
			}
		}

		picks, ok := allocatePart(demand[name], cands)
		if !ok {
			unmet = append(unmet, name)
			continue
		}
		for _, p := range picks {
			if purchases[p.offer.Vendor] == nil {
				purchases[p.offer.Vendor] = make(map[*entities.VendorOffer]entities.Quantity)
			}
			purchases[p.offer.Vendor][p.offer] += p.qty
		}
	}

	total := decimal.Zero
	used := 0
	for vendor, offers := range purchases {
		if len(offers) == 0 {
			continue
		}
		used++
		order := o.pricing.BuildOrder(vendor, offers)
		total = total.Add(order.Total)
	}

	return subsetResult{
		evaluated:   true,
		unsatisfied: len(unmet),
		total:       total,
		usedVendors: used,
		vendorKey:   strings.Join(keys, ","),
		purchases:   purchases,
		unmetParts:  unmet,
	}
}

// betterSubset reports whether a should win over b
func betterSubset(a, b *subsetResult) bool {
	if a.unsatisfied != b.unsatisfied {
		return a.unsatisfied < b.unsatisfied
	}
	if cmp := a.total.Cmp(b.total); cmp != 0 {
		return cmp < 0
	}
	if a.usedVendors != b.usedVendors {
		return a.usedVendors < b.usedVendors
	}
	return a.vendorKey < b.vendorKey
}

// exactTrace renders the evaluated-subset comparison that justifies the
// selected allocation
func (o *Optimizer) exactTrace(results []subsetResult, best, numSubsets int) []string {
	var trace []string
	if numSubsets <= traceSubsetLimit {
		for mask := 1; mask <= numSubsets; mask++ {
			r := &results[mask]
			if !r.evaluated {
				continue
			}
			line := fmt.Sprintf("subset {%s}: total %s, %d vendors used",
				r.vendorKey, r.total.StringFixed(2), r.usedVendors)
			if r.unsatisfied > 0 {
				line += fmt.Sprintf(", %d parts unsatisfied", r.unsatisfied)
			}
			trace = append(trace, line)
		}
	} else {
		trace = append(trace, fmt.Sprintf("evaluated %d vendor subsets", numSubsets))
	}
	winner := &results[best]
	trace = append(trace, fmt.Sprintf("selected subset {%s}: total %s",
		winner.vendorKey, winner.total.StringFixed(2)))
	return trace
}

// allocatePart selects offers and quantities covering demand d from the
// candidate offers, cheapest unit cost first. Tier selection and
// allocation are interdependent, so the choice iterates to a fixed point:
// prices are first estimated at the full demand, then re-evaluated at the
// quantities actually allocated.
func allocatePart(d entities.Quantity, cands []*entities.VendorOffer) ([]pick, bool) {
	if len(cands) == 0 {
		return nil, false
	}

	estimate := make(map[*entities.VendorOffer]entities.Quantity, len(cands))
	for _, offer := range cands {
		estimate[offer] = d
	}

	var picks []pick
	feasible := false
	for iter := 0; iter < maxTierIterations; iter++ {
		next, ok := allocateOnce(d, cands, estimate)
		if !ok {
			if feasible {
				break
			}
			return nil, false
		}

		if picksEqual(picks, next) {
			break
		}
		picks, feasible = next, true

		for _, offer := range cands {
			estimate[offer] = d
		}
		for _, p := range picks {
			estimate[p.offer] = p.qty
		}
	}

	return picks, feasible
}

// allocateOnce performs a single cheapest-first allocation pass using the
// given per-offer quantity estimates for tier pricing
func allocateOnce(
	d entities.Quantity,
	cands []*entities.VendorOffer,
	estimate map[*entities.VendorOffer]entities.Quantity,
) ([]pick, bool) {
	sorted := make([]*entities.VendorOffer, len(cands))
	copy(sorted, cands)
	sort.SliceStable(sorted, func(i, j int) bool {
		pi := pricing.UnitCost(sorted[i], estimate[sorted[i]])
		pj := pricing.UnitCost(sorted[j], estimate[sorted[j]])
		if cmp := pi.Cmp(pj); cmp != 0 {
			return cmp < 0
		}
		return sorted[i].Key() < sorted[j].Key()
	})

	remaining := d
	var picks []pick
	for _, offer := range sorted {
		if remaining <= 0 {
			break
		}
		qty, ok := purchasableQty(offer, remaining, 0)
		if !ok {
			continue
		}
		picks = append(picks, pick{offer: offer, qty: qty})
		remaining -= qty
	}

	return picks, remaining <= 0
}

// purchasableQty computes the quantity actually bought from an offer to
// cover need units: at least the minimum order quantity, a whole number
// of packs, and within remaining stock. alreadyUsed accounts for stock
// consumed by earlier picks against the same offer.
func purchasableQty(
	offer *entities.VendorOffer,
	need entities.Quantity,
	alreadyUsed entities.Quantity,
) (entities.Quantity, bool) {
	qty := need
	if qty < offer.MinOrderQty {
		qty = offer.MinOrderQty
	}
	qty = roundUpToMultiple(qty, offer.PackSize)

	if offer.Stock != nil {
		available := *offer.Stock - alreadyUsed
		if qty > available {
			// Stock limited: take the largest whole-pack quantity left
			qty = (available / offer.PackSize) * offer.PackSize
			if qty < offer.MinOrderQty || qty <= 0 {
				return 0, false
			}
		}
	}

	return qty, true
}

func picksEqual(a, b []pick) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].offer != b[i].offer || a[i].qty != b[i].qty {
			return false
		}
	}
	return true
}

// greedyCandidate is one considered (part, offer) pick
type greedyCandidate struct {
	part     entities.PartName
	offer    *entities.VendorOffer
	qty      entities.Quantity
	cost     decimal.Decimal // line cost plus unamortized shipping
	perUnit  decimal.Decimal // cost per unit of demand progress
	newOpen  bool
}

// optimizeGreedy repeatedly takes the cheapest effective (part, offer)
// pick, charging an unopened vendor's flat shipping fee against the pick
// that opens it, until demand is satisfied or no pick makes progress
func (o *Optimizer) optimizeGreedy(
	parts []entities.PartName,
	demand map[entities.PartName]entities.Quantity,
	candidates map[entities.PartName][]*entities.VendorOffer,
) *Result {
	remaining := make(map[entities.PartName]entities.Quantity, len(parts))
	for _, name := range parts {
		remaining[name] = demand[name]
	}

	opened := make(map[entities.VendorID]bool)
	stockUsed := make(map[*entities.VendorOffer]entities.Quantity)
	purchases := make(map[entities.VendorID]map[*entities.VendorOffer]entities.Quantity)
	var trace []string

	for {
		best := o.pickGreedy(parts, remaining, candidates, opened, stockUsed)
		if best == nil {
			break
		}

		if purchases[best.offer.Vendor] == nil {
			purchases[best.offer.Vendor] = make(map[*entities.VendorOffer]entities.Quantity)
		}
		purchases[best.offer.Vendor][best.offer] += best.qty
		stockUsed[best.offer] += best.qty
		opened[best.offer.Vendor] = true

		progress := best.qty
		if progress > remaining[best.part] {
			progress = remaining[best.part]
		}
		remaining[best.part] -= progress

		trace = append(trace, fmt.Sprintf("pick %s x%d from %s (%s): cost %s",
			best.part, best.qty, best.offer.Vendor, best.offer.VendorPartID,
			best.cost.StringFixed(2)))
	}

	result := &Result{
		Mode:   dto.ModeGreedy,
		Orders: o.buildOrders(purchases),
		Trace:  trace,
	}
	for _, name := range parts {
		if remaining[name] > 0 {
			result.Shortfalls = append(result.Shortfalls, entities.Shortfall{
				Name:      name,
				Demand:    demand[name],
				Allocated: demand[name] - remaining[name],
				Reason:    entities.Infeasible,
				Detail:    "no offer satisfies minimum order and stock constraints",
			})
		}
	}
	return result
}

// pickGreedy finds the cheapest effective pick that makes progress toward
// remaining demand. Ties resolve toward already-opened vendors, then the
// lexicographically smaller vendor, then part and offer identity.
func (o *Optimizer) pickGreedy(
	parts []entities.PartName,
	remaining map[entities.PartName]entities.Quantity,
	candidates map[entities.PartName][]*entities.VendorOffer,
	opened map[entities.VendorID]bool,
	stockUsed map[*entities.VendorOffer]entities.Quantity,
) *greedyCandidate {
	var best *greedyCandidate

	for _, name := range parts {
		need := remaining[name]
		if need <= 0 {
			continue
		}
		for _, offer := range candidates[name] {
			qty, ok := purchasableQty(offer, need, stockUsed[offer])
			if !ok {
				continue
			}

			cost := pricing.LineCost(offer, qty)
			newOpen := !opened[offer.Vendor]
			if newOpen {
				cost = cost.Add(o.pricing.PolicyFor(offer.Vendor).FlatFee)
			}
			progress := qty
			if progress > need {
				progress = need
			}
			perUnit := cost.Div(decimal.NewFromInt(int64(progress)))

			cand := &greedyCandidate{
				part:    name,
				offer:   offer,
				qty:     qty,
				cost:    cost,
				perUnit: perUnit,
				newOpen: newOpen,
			}
			if best == nil || betterGreedy(cand, best) {
				best = cand
			}
		}
	}

	return best
}

// betterGreedy reports whether a should win over b
func betterGreedy(a, b *greedyCandidate) bool {
	if cmp := a.perUnit.Cmp(b.perUnit); cmp != 0 {
		return cmp < 0
	}
	if a.newOpen != b.newOpen {
		return !a.newOpen // prefer a vendor already opened
	}
	if a.offer.Vendor != b.offer.Vendor {
		return a.offer.Vendor < b.offer.Vendor
	}
	if a.part != b.part {
		return a.part < b.part
	}
	return a.offer.Key() < b.offer.Key()
}

// buildOrders prices the final per-vendor purchases into sorted orders
func (o *Optimizer) buildOrders(
	purchases map[entities.VendorID]map[*entities.VendorOffer]entities.Quantity,
) []entities.VendorOrder {
	var orders []entities.VendorOrder
	for vendor, offers := range purchases {
		if len(offers) == 0 {
			continue
		}
		orders = append(orders, *o.pricing.BuildOrder(vendor, offers))
	}
	sort.Slice(orders, func(i, j int) bool { return orders[i].Vendor < orders[j].Vendor })
	return orders
}

func sortShortfalls(shortfalls []entities.Shortfall) {
	sort.Slice(shortfalls, func(i, j int) bool { return shortfalls[i].Name < shortfalls[j].Name })
}

func candidateVendors(
	parts []entities.PartName,
	candidates map[entities.PartName][]*entities.VendorOffer,
) []entities.VendorID {
	seen := make(map[entities.VendorID]bool)
	var vendors []entities.VendorID
	for _, name := range parts {
		for _, offer := range candidates[name] {
			if !seen[offer.Vendor] {
				seen[offer.Vendor] = true
				vendors = append(vendors, offer.Vendor)
			}
		}
	}
	sort.Slice(vendors, func(i, j int) bool { return vendors[i] < vendors[j] })
	return vendors
}

// subsetCount returns 2^n - 1, saturating well above any usable cap
func subsetCount(n int) int {
	if n >= 31 {
		return 1 << 30
	}
	return (1 << uint(n)) - 1
}

func roundUpToMultiple(qty, multiple entities.Quantity) entities.Quantity {
	if multiple <= 1 {
		return qty
	}
	return ((qty + multiple - 1) / multiple) * multiple
}
