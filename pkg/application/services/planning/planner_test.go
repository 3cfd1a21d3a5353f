package planning

import (
	"context"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/dkessel/bomorder/pkg/domain/entities"
	"github.com/dkessel/bomorder/pkg/infrastructure/repositories/memory"
)

type plannerFixture struct {
	parts     *memory.PartRepository
	catalog   *memory.CatalogRepository
	shipping  *memory.ShippingRepository
	inventory *memory.InventoryRepository
}

func newPlannerFixture() *plannerFixture {
	return &plannerFixture{
		parts:     memory.NewPartRepository(16),
		catalog:   memory.NewCatalogRepository(16),
		shipping:  memory.NewShippingRepository(),
		inventory: memory.NewInventoryRepository(),
	}
}

func (f *plannerFixture) planner() *Planner {
	return NewPlanner(f.parts, f.catalog, f.shipping, f.inventory, Config{}, nil)
}

func (f *plannerFixture) addPart(t *testing.T, part *entities.Part, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("Failed to create part: %v", err)
	}
	f.parts.AddPart(*part)
}

func (f *plannerFixture) addRow(part entities.PartName, vendor, id, price string) {
	f.catalog.AddRow(entities.CatalogRow{
		PartName:     part,
		VendorName:   vendor,
		VendorPartID: id,
		PriceBreaks:  []entities.PriceBreak{{MinQty: 1, UnitPrice: decimal.RequireFromString(price)}},
	})
}

func posed(t *testing.T, name entities.PartName, count entities.Quantity) *entities.PosedPart {
	t.Helper()
	p, err := entities.NewPosedPart(name, count)
	if err != nil {
		t.Fatalf("Failed to create posed part: %v", err)
	}
	return p
}

func TestPlanner_FullPipeline(t *testing.T) {
	f := newPlannerFixture()

	p, err := entities.NewConcretePart("R1K", "1k resistor")
	f.addPart(t, p, err)
	p, err = entities.NewConcretePart("SHELL", "")
	f.addPart(t, p, err)
	p, err = entities.NewConcretePart("PIN", "")
	f.addPart(t, p, err)
	p, err = entities.NewConcretePart("SPOOL", "hookup wire spool")
	f.addPart(t, p, err)
	p, err = entities.NewAliasPart("R1", "R1K")
	f.addPart(t, p, err)
	p, err = entities.NewMultiPart("CONN", []entities.SubPart{
		{Name: "SHELL", QtyPer: 1},
		{Name: "PIN", QtyPer: 2},
	}, "")
	f.addPart(t, p, err)
	p, err = entities.NewFractionalPart("WIRE", "SPOOL",
		entities.Conversion{UnitsPerPurchase: 100, BatchSize: 1}, "")
	f.addPart(t, p, err)

	f.addRow("R1K", "Acme", "ACME-R", "0.10")
	f.addRow("PIN", "Acme", "ACME-P", "0.05")
	f.addRow("SPOOL", "Bolt", "BOLT-S", "2.00")

	f.shipping.AddPolicy(entities.VendorShippingPolicy{
		Vendor:  "Acme",
		FlatFee: decimal.RequireFromString("1.00"),
	})

	// One resistor already on hand; shells fully covered by stock
	f.inventory.SetOnHand("R1K", 1)
	f.inventory.SetOnHand("SHELL", 10)

	result, err := f.planner().Plan(context.Background(), []*entities.PosedPart{
		posed(t, "R1", 4),
		posed(t, "CONN", 3),
		posed(t, "WIRE", 250),
		posed(t, "GHOST", 1),
	})
	if err != nil {
		t.Fatalf("Expected plan to succeed: %v", err)
	}

	if result.RunID == "" {
		t.Error("Expected a run identifier")
	}
	if result.Mode != "exact" {
		t.Errorf("Expected exact mode, got %s", result.Mode)
	}

	// Acme: 3x R1K (demand 4 net of 1 on hand) at 0.10 plus 6x PIN at
	// 0.05, subtotal 0.60, shipping 1.00. Bolt: 3 spools covering the
	// 250-unit wire request at 2.00, free shipping.
	if len(result.Orders) != 2 {
		t.Fatalf("Expected orders from Acme and Bolt, got %+v", result.Orders)
	}
	acme, bolt := result.Orders[0], result.Orders[1]
	if acme.Vendor != "Acme" || bolt.Vendor != "Bolt" {
		t.Fatalf("Expected orders sorted Acme then Bolt, got %s, %s", acme.Vendor, bolt.Vendor)
	}
	if !acme.Total.Equal(decimal.RequireFromString("1.60")) {
		t.Errorf("Expected Acme total 1.60, got %s", acme.Total)
	}
	if !bolt.Total.Equal(decimal.RequireFromString("6.00")) {
		t.Errorf("Expected Bolt total 6.00, got %s", bolt.Total)
	}
	if !result.GrandTotal.Equal(decimal.RequireFromString("7.60")) {
		t.Errorf("Expected grand total 7.60, got %s", result.GrandTotal)
	}

	if len(result.Shortfalls) != 0 {
		t.Errorf("Expected no shortfalls, got %+v", result.Shortfalls)
	}

	if len(result.Waste) != 1 {
		t.Fatalf("Expected one waste record for the wire surplus, got %+v", result.Waste)
	}
	waste := result.Waste[0]
	if waste.Name != "WIRE" || waste.UnitPart != "SPOOL" ||
		waste.Requested != 250 || waste.Purchased != 3 || waste.SurplusUnits != 50 {
		t.Errorf("Unexpected waste record: %+v", waste)
	}

	// The unknown posed part is an issue, not a run failure
	if len(result.Issues) != 1 || result.Issues[0].Name != "GHOST" {
		t.Fatalf("Expected one issue for GHOST, got %+v", result.Issues)
	}
}

func TestPlanner_AliasCycleAbortsRun(t *testing.T) {
	f := newPlannerFixture()
	p, err := entities.NewAliasPart("A", "B")
	f.addPart(t, p, err)
	p, err = entities.NewAliasPart("B", "A")
	f.addPart(t, p, err)

	_, err = f.planner().Plan(context.Background(), []*entities.PosedPart{posed(t, "A", 1)})
	if err == nil {
		t.Fatal("Expected an alias cycle to abort the run")
	}
	if !strings.Contains(err.Error(), "failed to expand posed parts") {
		t.Errorf("Expected expansion failure context, got: %v", err)
	}
	if !strings.Contains(err.Error(), "alias cycle") {
		t.Errorf("Expected the cycle to be named, got: %v", err)
	}
}

func TestPlanner_UnmatchedPartBecomesShortfall(t *testing.T) {
	f := newPlannerFixture()
	p, err := entities.NewConcretePart("U1", "mcu")
	f.addPart(t, p, err)

	result, err := f.planner().Plan(context.Background(), []*entities.PosedPart{posed(t, "U1", 2)})
	if err != nil {
		t.Fatalf("Expected plan to succeed: %v", err)
	}

	if len(result.Orders) != 0 {
		t.Errorf("Expected no orders, got %+v", result.Orders)
	}
	if len(result.Shortfalls) != 1 {
		t.Fatalf("Expected one shortfall, got %+v", result.Shortfalls)
	}
	s := result.Shortfalls[0]
	if s.Name != "U1" || s.Demand != 2 || s.Reason != entities.Unmatched {
		t.Errorf("Unexpected shortfall: %+v", s)
	}
	if !result.GrandTotal.IsZero() {
		t.Errorf("Expected zero grand total, got %s", result.GrandTotal)
	}
}

func TestPlanner_InventoryFullyCoversDemand(t *testing.T) {
	f := newPlannerFixture()
	p, err := entities.NewConcretePart("R1K", "")
	f.addPart(t, p, err)
	f.inventory.SetOnHand("R1K", 100)

	result, err := f.planner().Plan(context.Background(), []*entities.PosedPart{posed(t, "R1K", 10)})
	if err != nil {
		t.Fatalf("Expected plan to succeed: %v", err)
	}

	if len(result.Orders) != 0 || len(result.Shortfalls) != 0 {
		t.Errorf("Expected stock to cover demand with nothing to buy, got orders %+v shortfalls %+v",
			result.Orders, result.Shortfalls)
	}
}
