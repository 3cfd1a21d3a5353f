// Package planning orchestrates the posed-parts-to-vendor-orders
// pipeline: expansion, inventory netting, catalog matching, and order
// optimization over an immutable input snapshot.
package planning

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/dkessel/bomorder/pkg/application/dto"
	"github.com/dkessel/bomorder/pkg/application/services/pricing"
	"github.com/dkessel/bomorder/pkg/domain/entities"
	"github.com/dkessel/bomorder/pkg/domain/repositories"
	"github.com/dkessel/bomorder/pkg/domain/services"
)

// Planner runs the full pipeline for one project snapshot. The pipeline
// is a pure transform: nothing is mutated after construction and a rerun
// on the same snapshot yields identical output.
type Planner struct {
	parts     repositories.PartRepository
	catalog   repositories.CatalogRepository
	inventory repositories.InventoryRepository
	expander  *services.Expander
	matcher   *Matcher
	optimizer *Optimizer
	logger    *zap.Logger
}

// NewPlanner wires the pipeline components over the run's repositories
func NewPlanner(
	parts repositories.PartRepository,
	catalog repositories.CatalogRepository,
	shipping repositories.ShippingRepository,
	inventory repositories.InventoryRepository,
	config Config,
	logger *zap.Logger,
) *Planner {
	if logger == nil {
		logger = zap.NewNop()
	}
	model := pricing.NewModel(shipping)
	return &Planner{
		parts:     parts,
		catalog:   catalog,
		inventory: inventory,
		expander:  services.NewExpander(parts),
		matcher:   NewMatcher(catalog, logger),
		optimizer: NewOptimizer(model, config, logger),
		logger:    logger,
	}
}

// Plan turns posed parts into minimal-cost vendor orders plus a complete
// shortfall and issue report. Alias cycles abort the run; every other
// structural error is confined to the part it affects.
func (p *Planner) Plan(ctx context.Context, posed []*entities.PosedPart) (*dto.PlanResult, error) {
	demand, err := p.expander.Expand(posed)
	if err != nil {
		return nil, fmt.Errorf("failed to expand posed parts: %w", err)
	}

	result := &dto.PlanResult{
		RunID:       uuid.NewString(),
		GeneratedAt: time.Now().UTC(),
		Waste:       demand.Waste,
		Issues:      demand.Issues,
	}

	for _, issue := range demand.Issues {
		p.logger.Warn("posed part skipped",
			zap.String("part", string(issue.Name)),
			zap.Error(issue.Err))
	}

	// Net on-hand inventory against demand before any vendor sourcing
	netDemand := make(map[entities.PartName]entities.Quantity, len(demand.Quantities))
	for _, name := range demand.SortedParts() {
		qty := demand.Quantities[name]
		onHand, err := p.inventory.OnHand(name)
		if err != nil {
			return nil, fmt.Errorf("failed to read inventory for %s: %w", name, err)
		}
		if onHand >= qty {
			continue
		}
		netDemand[name] = qty - onHand
	}

	offersByPart := make(map[entities.PartName][]*entities.VendorOffer, len(netDemand))
	for name := range netDemand {
		offers, err := p.matcher.Match(name)
		if err != nil {
			return nil, fmt.Errorf("failed to match %s against the catalog: %w", name, err)
		}
		offersByPart[name] = offers
	}

	opt := p.optimizer.Optimize(ctx, netDemand, offersByPart)
	result.Mode = opt.Mode
	result.Orders = opt.Orders
	result.Shortfalls = opt.Shortfalls
	result.Trace = opt.Trace

	for _, shortfall := range result.Shortfalls {
		p.logger.Warn("unmet demand",
			zap.String("part", string(shortfall.Name)),
			zap.Int64("demand", int64(shortfall.Demand)),
			zap.Int64("allocated", int64(shortfall.Allocated)),
			zap.String("reason", shortfall.Reason.String()),
			zap.String("detail", shortfall.Detail))
	}

	grand := decimal.Zero
	for _, order := range result.Orders {
		grand = grand.Add(order.Total)
	}
	result.GrandTotal = grand

	p.logger.Info("plan complete",
		zap.String("runID", result.RunID),
		zap.String("mode", string(result.Mode)),
		zap.Int("orders", len(result.Orders)),
		zap.Int("shortfalls", len(result.Shortfalls)),
		zap.String("grandTotal", result.GrandTotal.StringFixed(2)))

	return result, nil
}
