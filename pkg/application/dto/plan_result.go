package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/dkessel/bomorder/pkg/domain/entities"
)

// OptimizeMode records which optimizer strategy produced a run's orders
type OptimizeMode string

const (
	// ModeExact means every candidate vendor subset was enumerated and
	// the cheapest feasible allocation was selected
	ModeExact OptimizeMode = "exact"
	// ModeGreedy means the bounded greedy heuristic was used because the
	// subset space exceeded the configured cap or exact mode was canceled
	ModeGreedy OptimizeMode = "greedy"
)

// PlanResult contains the complete output of a planning run
type PlanResult struct {
	RunID       string
	GeneratedAt time.Time
	Mode        OptimizeMode
	Orders      []entities.VendorOrder
	Shortfalls  []entities.Shortfall
	Waste       []entities.Waste
	Issues      []entities.Issue
	Trace       []string
	GrandTotal  decimal.Decimal
}
