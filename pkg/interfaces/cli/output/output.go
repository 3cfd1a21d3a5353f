package output

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dkessel/bomorder/pkg/application/dto"
)

// Config holds configuration for output generation
type Config struct {
	Format    string
	OutputDir string
	Verbose   bool
}

// Generate creates output in the specified format
func Generate(result *dto.PlanResult, config Config) error {
	switch config.Format {
	case "text":
		return generateTextOutput(result, config)
	case "json":
		return generateJSONOutput(result, config)
	default:
		return fmt.Errorf("unsupported output format: %s", config.Format)
	}
}

// generateTextOutput creates human-readable text output
func generateTextOutput(result *dto.PlanResult, config Config) error {
	fmt.Printf("Vendor Order Plan\n")
	fmt.Printf("=================\n\n")
	fmt.Printf("Run: %s\n", result.RunID)
	fmt.Printf("Optimizer Mode: %s\n", result.Mode)
	fmt.Printf("Vendor Orders: %d\n", len(result.Orders))
	fmt.Printf("Shortfalls: %d\n", len(result.Shortfalls))
	fmt.Printf("Grand Total: %s\n\n", result.GrandTotal.StringFixed(2))

	for _, order := range result.Orders {
		fmt.Printf("Order from %s\n", order.Vendor)
		fmt.Printf("%-20s %-20s %-8s %-12s %-12s\n",
			"Part", "Vendor Part", "Qty", "Unit Price", "Line Cost")
		fmt.Printf("%-20s %-20s %-8s %-12s %-12s\n",
			"--------------------", "--------------------", "--------", "------------", "------------")
		for _, line := range order.Lines {
			fmt.Printf("%-20s %-20s %-8d %-12s %-12s\n",
				line.Offer.PartName,
				line.Offer.VendorPartID,
				line.Quantity,
				line.UnitPrice.String(),
				line.LineCost.StringFixed(2))
		}
		fmt.Printf("Subtotal: %s  Shipping: %s  Total: %s\n\n",
			order.Subtotal.StringFixed(2),
			order.Shipping.StringFixed(2),
			order.Total.StringFixed(2))
	}

	if len(result.Shortfalls) > 0 {
		fmt.Printf("Shortfalls:\n")
		fmt.Printf("%-20s %-10s %-10s %-12s %s\n",
			"Part", "Demand", "Allocated", "Reason", "Detail")
		for _, shortfall := range result.Shortfalls {
			fmt.Printf("%-20s %-10d %-10d %-12s %s\n",
				shortfall.Name,
				shortfall.Demand,
				shortfall.Allocated,
				shortfall.Reason.String(),
				shortfall.Detail)
		}
		fmt.Println()
	}

	if len(result.Waste) > 0 {
		fmt.Printf("Waste (whole-unit purchase surplus):\n")
		for _, waste := range result.Waste {
			fmt.Printf("  %s: requested %d, bought %d x %s, surplus %d units\n",
				waste.Name, waste.Requested, waste.Purchased, waste.UnitPart, waste.SurplusUnits)
		}
		fmt.Println()
	}

	if len(result.Issues) > 0 {
		fmt.Printf("Data Issues:\n")
		for _, issue := range result.Issues {
			fmt.Printf("  %s: %v\n", issue.Name, issue.Err)
		}
		fmt.Println()
	}

	if config.Verbose && len(result.Trace) > 0 {
		fmt.Printf("Optimizer Trace:\n")
		for _, line := range result.Trace {
			fmt.Printf("  %s\n", line)
		}
		fmt.Println()
	}

	return nil
}

// jsonPlan is the serialized shape of a plan result
type jsonPlan struct {
	RunID      string          `json:"run_id"`
	Mode       string          `json:"mode"`
	GrandTotal string          `json:"grand_total"`
	Orders     []jsonOrder     `json:"orders"`
	Shortfalls []jsonShortfall `json:"shortfalls,omitempty"`
	Waste      []jsonWaste     `json:"waste,omitempty"`
	Issues     []jsonIssue     `json:"issues,omitempty"`
	Trace      []string        `json:"trace,omitempty"`
}

type jsonOrder struct {
	Vendor   string     `json:"vendor"`
	Lines    []jsonLine `json:"lines"`
	Subtotal string     `json:"subtotal"`
	Shipping string     `json:"shipping"`
	Total    string     `json:"total"`
}

type jsonLine struct {
	Part         string `json:"part"`
	VendorPartID string `json:"vendor_part_id"`
	Quantity     int64  `json:"quantity"`
	UnitPrice    string `json:"unit_price"`
	LineCost     string `json:"line_cost"`
}

type jsonShortfall struct {
	Part      string `json:"part"`
	Demand    int64  `json:"demand"`
	Allocated int64  `json:"allocated"`
	Reason    string `json:"reason"`
	Detail    string `json:"detail,omitempty"`
}

type jsonWaste struct {
	Part         string `json:"part"`
	UnitPart     string `json:"unit_part"`
	Requested    int64  `json:"requested"`
	Purchased    int64  `json:"purchased"`
	SurplusUnits int64  `json:"surplus_units"`
}

type jsonIssue struct {
	Part  string `json:"part"`
	Error string `json:"error"`
}

// generateJSONOutput writes the plan as JSON to stdout, or to
// plan_result.json inside the output directory when one is configured
func generateJSONOutput(result *dto.PlanResult, config Config) error {
	plan := jsonPlan{
		RunID:      result.RunID,
		Mode:       string(result.Mode),
		GrandTotal: result.GrandTotal.StringFixed(2),
		Trace:      result.Trace,
	}

	for _, order := range result.Orders {
		jo := jsonOrder{
			Vendor:   string(order.Vendor),
			Subtotal: order.Subtotal.StringFixed(2),
			Shipping: order.Shipping.StringFixed(2),
			Total:    order.Total.StringFixed(2),
		}
		for _, line := range order.Lines {
			jo.Lines = append(jo.Lines, jsonLine{
				Part:         string(line.Offer.PartName),
				VendorPartID: line.Offer.VendorPartID,
				Quantity:     int64(line.Quantity),
				UnitPrice:    line.UnitPrice.String(),
				LineCost:     line.LineCost.StringFixed(2),
			})
		}
		plan.Orders = append(plan.Orders, jo)
	}

	for _, shortfall := range result.Shortfalls {
		plan.Shortfalls = append(plan.Shortfalls, jsonShortfall{
			Part:      string(shortfall.Name),
			Demand:    int64(shortfall.Demand),
			Allocated: int64(shortfall.Allocated),
			Reason:    shortfall.Reason.String(),
			Detail:    shortfall.Detail,
		})
	}

	for _, waste := range result.Waste {
		plan.Waste = append(plan.Waste, jsonWaste{
			Part:         string(waste.Name),
			UnitPart:     string(waste.UnitPart),
			Requested:    int64(waste.Requested),
			Purchased:    int64(waste.Purchased),
			SurplusUnits: int64(waste.SurplusUnits),
		})
	}

	for _, issue := range result.Issues {
		plan.Issues = append(plan.Issues, jsonIssue{
			Part:  string(issue.Name),
			Error: issue.Err.Error(),
		})
	}

	data, err := json.MarshalIndent(plan, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal plan result: %w", err)
	}

	if config.OutputDir != "" {
		path := filepath.Join(config.OutputDir, "plan_result.json")
		if err := os.WriteFile(path, data, 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
		fmt.Printf("Results written to %s\n", path)
		return nil
	}

	fmt.Println(string(data))
	return nil
}
