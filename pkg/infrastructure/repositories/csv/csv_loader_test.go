package csv

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/dkessel/bomorder/pkg/domain/entities"
)

func writeTempCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write temp CSV: %v", err)
	}
	return path
}

func TestLoadParts_AllKinds(t *testing.T) {
	path := writeTempCSV(t, `name,kind,target,components,unit_part,units_per_purchase,batch_size,description
R1K,Concrete,,,,,,1k resistor
R1,Alias,R1K,,,,,
CONN,MultiPart,,SHELL:1;PIN:8,,,,8-pin connector
WIRE,Fractional,,,SPOOL,100,,hookup wire
SOLDER,Fractional,,,REEL,500,5,
`)

	loader := NewLoader()
	parts, err := loader.LoadParts(path)
	if err != nil {
		t.Fatalf("Expected parts to load: %v", err)
	}
	if len(parts) != 5 {
		t.Fatalf("Expected 5 parts, got %d", len(parts))
	}

	if parts[0].Kind != entities.Concrete || parts[0].Description != "1k resistor" {
		t.Errorf("Unexpected concrete part: %+v", parts[0])
	}
	if parts[1].Kind != entities.Alias || parts[1].Target != "R1K" {
		t.Errorf("Unexpected alias part: %+v", parts[1])
	}
	if parts[2].Kind != entities.MultiPart || len(parts[2].SubParts) != 2 ||
		parts[2].SubParts[1].Name != "PIN" || parts[2].SubParts[1].QtyPer != 8 {
		t.Errorf("Unexpected multi-part: %+v", parts[2])
	}
	if parts[3].Kind != entities.Fractional || parts[3].UnitPart != "SPOOL" ||
		parts[3].Conversion.UnitsPerPurchase != 100 || parts[3].Conversion.BatchSize != 1 {
		t.Errorf("Expected batch size to default to 1: %+v", parts[3])
	}
	if parts[4].Conversion.BatchSize != 5 {
		t.Errorf("Expected explicit batch size 5, got %d", parts[4].Conversion.BatchSize)
	}
}

func TestLoadParts_Errors(t *testing.T) {
	testCases := []struct {
		name        string
		content     string
		errContains string
	}{
		{
			"header mismatch",
			"name,type\nR1K,Concrete\n",
			"header mismatch",
		},
		{
			"invalid kind",
			"name,kind,target,components,unit_part,units_per_purchase,batch_size,description\nR1K,Widget,,,,,,\n",
			"invalid kind",
		},
		{
			"bad component encoding",
			"name,kind,target,components,unit_part,units_per_purchase,batch_size,description\nCONN,MultiPart,,SHELL,,,,\n",
			"invalid component",
		},
		{
			"missing data rows",
			"name,kind,target,components,unit_part,units_per_purchase,batch_size,description\n",
			"at least one data row",
		},
	}

	loader := NewLoader()
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := loader.LoadParts(writeTempCSV(t, tc.content))
			if err == nil {
				t.Fatal("Expected error, but got none")
			}
			if !strings.Contains(err.Error(), tc.errContains) {
				t.Errorf("Expected error containing %q, got: %v", tc.errContains, err)
			}
		})
	}
}

func TestLoadPosedParts(t *testing.T) {
	path := writeTempCSV(t, "part_name,count\nR1,4\nCONN,3\n")

	posed, err := NewLoader().LoadPosedParts(path)
	if err != nil {
		t.Fatalf("Expected posed parts to load: %v", err)
	}
	if len(posed) != 2 {
		t.Fatalf("Expected 2 posed parts, got %d", len(posed))
	}
	if posed[0].Name != "R1" || posed[0].Count != 4 {
		t.Errorf("Unexpected posed part: %+v", posed[0])
	}
}

func TestLoadPosedParts_RejectsNonPositiveCount(t *testing.T) {
	path := writeTempCSV(t, "part_name,count\nR1,0\n")

	_, err := NewLoader().LoadPosedParts(path)
	if err == nil {
		t.Fatal("Expected error for zero count, but got none")
	}
	if !strings.Contains(err.Error(), "row 2") {
		t.Errorf("Expected the row number in the error, got: %v", err)
	}
}

func TestLoadCatalog(t *testing.T) {
	path := writeTempCSV(t, `part_name,vendor,vendor_part_id,price_breaks,stock,min_order_qty,pack_size
R1K,Digi-Key,311-1.0K,1:0.12;10:0.10;100:0.08,4000,1,1
R1K,Mouser,71-CRCW,1:0.11,,10,5
`)

	rows, err := NewLoader().LoadCatalog(path)
	if err != nil {
		t.Fatalf("Expected catalog to load: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("Expected 2 rows, got %d", len(rows))
	}

	first := rows[0]
	if len(first.PriceBreaks) != 3 {
		t.Fatalf("Expected 3 price breaks, got %d", len(first.PriceBreaks))
	}
	if first.PriceBreaks[2].MinQty != 100 ||
		!first.PriceBreaks[2].UnitPrice.Equal(decimal.RequireFromString("0.08")) {
		t.Errorf("Unexpected price break: %+v", first.PriceBreaks[2])
	}
	if first.Stock == nil || *first.Stock != 4000 {
		t.Errorf("Expected stock 4000, got %+v", first.Stock)
	}

	second := rows[1]
	if second.Stock != nil {
		t.Errorf("Expected empty stock column to mean unknown, got %d", *second.Stock)
	}
	if second.MinOrderQty != 10 || second.PackSize != 5 {
		t.Errorf("Unexpected order constraints: %+v", second)
	}
}

func TestLoadCatalog_RejectsMalformedPriceBreaks(t *testing.T) {
	path := writeTempCSV(t, "part_name,vendor,vendor_part_id,price_breaks,stock,min_order_qty,pack_size\nR1K,V,P,ten cents,,,\n")

	_, err := NewLoader().LoadCatalog(path)
	if err == nil {
		t.Fatal("Expected error for malformed price breaks, but got none")
	}
	if !strings.Contains(err.Error(), "invalid price break") {
		t.Errorf("Expected price break error, got: %v", err)
	}
}

func TestLoadShippingPolicies(t *testing.T) {
	path := writeTempCSV(t, "vendor,flat_fee,free_threshold\nDigi-Key,5.00,\nMouser,8.00,50.00\n")

	policies, err := NewLoader().LoadShippingPolicies(path)
	if err != nil {
		t.Fatalf("Expected policies to load: %v", err)
	}
	if len(policies) != 2 {
		t.Fatalf("Expected 2 policies, got %d", len(policies))
	}

	if policies[0].FreeThreshold != nil {
		t.Errorf("Expected no free threshold for Digi-Key, got %s", policies[0].FreeThreshold)
	}
	if policies[1].FreeThreshold == nil ||
		!policies[1].FreeThreshold.Equal(decimal.RequireFromString("50.00")) {
		t.Errorf("Expected free threshold 50.00 for Mouser, got %+v", policies[1].FreeThreshold)
	}
}

func TestLoadInventory(t *testing.T) {
	path := writeTempCSV(t, "part_name,on_hand\nR1K,25\nSHELL,0\n")

	levels, err := NewLoader().LoadInventory(path)
	if err != nil {
		t.Fatalf("Expected inventory to load: %v", err)
	}
	if len(levels) != 2 {
		t.Fatalf("Expected 2 levels, got %d", len(levels))
	}
	if levels[0].Name != "R1K" || levels[0].OnHand != 25 {
		t.Errorf("Unexpected level: %+v", levels[0])
	}
}

func TestLoadInventory_RejectsNegativeOnHand(t *testing.T) {
	path := writeTempCSV(t, "part_name,on_hand\nR1K,-1\n")

	_, err := NewLoader().LoadInventory(path)
	if err == nil {
		t.Fatal("Expected error for negative inventory, but got none")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := NewLoader().LoadParts(filepath.Join(t.TempDir(), "missing.csv"))
	if err == nil {
		t.Fatal("Expected error for a missing file, but got none")
	}
	if !strings.Contains(err.Error(), "failed to open") {
		t.Errorf("Expected open failure context, got: %v", err)
	}
}
