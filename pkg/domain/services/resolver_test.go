package services

import (
	"errors"
	"fmt"
	"testing"

	"github.com/dkessel/bomorder/pkg/domain/entities"
)

// stubPartRepo is a minimal in-memory part namespace for tests
type stubPartRepo struct {
	parts map[entities.PartName]*entities.Part
}

func newStubPartRepo(parts ...*entities.Part) *stubPartRepo {
	repo := &stubPartRepo{parts: make(map[entities.PartName]*entities.Part)}
	for _, part := range parts {
		repo.parts[part.Name] = part
	}
	return repo
}

func (r *stubPartRepo) GetPart(name entities.PartName) (*entities.Part, error) {
	part, exists := r.parts[name]
	if !exists {
		return nil, fmt.Errorf("part not found: %s", name)
	}
	return part, nil
}

func (r *stubPartRepo) GetAllParts() ([]*entities.Part, error) {
	var all []*entities.Part
	for _, part := range r.parts {
		all = append(all, part)
	}
	return all, nil
}

func (r *stubPartRepo) LoadParts(parts []*entities.Part) error {
	for _, part := range parts {
		r.parts[part.Name] = part
	}
	return nil
}

func mustConcrete(t *testing.T, name entities.PartName) *entities.Part {
	t.Helper()
	part, err := entities.NewConcretePart(name, "")
	if err != nil {
		t.Fatalf("Failed to create concrete part %s: %v", name, err)
	}
	return part
}

func mustAlias(t *testing.T, name, target entities.PartName) *entities.Part {
	t.Helper()
	part, err := entities.NewAliasPart(name, target)
	if err != nil {
		t.Fatalf("Failed to create alias part %s: %v", name, err)
	}
	return part
}

func TestResolve_TerminalPart(t *testing.T) {
	repo := newStubPartRepo(mustConcrete(t, "R1K"))
	resolver := NewAliasResolver(repo)

	part, err := resolver.Resolve("R1K")
	if err != nil {
		t.Fatalf("Expected resolution to succeed: %v", err)
	}
	if part.Name != "R1K" || part.Kind != entities.Concrete {
		t.Errorf("Expected concrete R1K, got %s (%s)", part.Name, part.Kind)
	}
}

func TestResolve_AliasChain(t *testing.T) {
	repo := newStubPartRepo(
		mustAlias(t, "R1", "R1_GENERIC"),
		mustAlias(t, "R1_GENERIC", "R1K"),
		mustConcrete(t, "R1K"),
	)
	resolver := NewAliasResolver(repo)

	part, err := resolver.Resolve("R1")
	if err != nil {
		t.Fatalf("Expected resolution to succeed: %v", err)
	}
	if part.Name != "R1K" {
		t.Errorf("Expected terminal R1K, got %s", part.Name)
	}

	// Memoized second resolution returns the same terminal
	again, err := resolver.Resolve("R1")
	if err != nil {
		t.Fatalf("Expected memoized resolution to succeed: %v", err)
	}
	if again.Name != "R1K" {
		t.Errorf("Expected memoized terminal R1K, got %s", again.Name)
	}
}

func TestResolve_Cycle(t *testing.T) {
	repo := newStubPartRepo(
		mustAlias(t, "A", "B"),
		mustAlias(t, "B", "C"),
		mustAlias(t, "C", "A"),
	)
	resolver := NewAliasResolver(repo)

	_, err := resolver.Resolve("A")
	if err == nil {
		t.Fatal("Expected cycle error")
	}

	var cycle *entities.CycleError
	if !errors.As(err, &cycle) {
		t.Fatalf("Expected CycleError, got %T: %v", err, err)
	}
	if len(cycle.Cycle) != 3 {
		t.Fatalf("Expected 3 cycle members, got %d: %v", len(cycle.Cycle), cycle.Cycle)
	}

	members := map[entities.PartName]bool{}
	for _, name := range cycle.Cycle {
		members[name] = true
	}
	for _, name := range []entities.PartName{"A", "B", "C"} {
		if !members[name] {
			t.Errorf("Expected cycle to name %s, cycle was %v", name, cycle.Cycle)
		}
	}
}

func TestResolve_CycleEnteredFromOutside(t *testing.T) {
	// D is not part of the loop but reaches it; the reported cycle must
	// contain only the loop members
	repo := newStubPartRepo(
		mustAlias(t, "D", "A"),
		mustAlias(t, "A", "B"),
		mustAlias(t, "B", "A"),
	)
	resolver := NewAliasResolver(repo)

	_, err := resolver.Resolve("D")
	var cycle *entities.CycleError
	if !errors.As(err, &cycle) {
		t.Fatalf("Expected CycleError, got %T: %v", err, err)
	}
	if len(cycle.Cycle) != 2 {
		t.Errorf("Expected 2 cycle members, got %v", cycle.Cycle)
	}
	for _, name := range cycle.Cycle {
		if name == "D" {
			t.Errorf("Cycle should not include the entry alias D: %v", cycle.Cycle)
		}
	}
}

func TestResolve_UnknownTarget(t *testing.T) {
	repo := newStubPartRepo(mustAlias(t, "R1", "MISSING"))
	resolver := NewAliasResolver(repo)

	_, err := resolver.Resolve("R1")
	var unknown *entities.UnknownPartError
	if !errors.As(err, &unknown) {
		t.Fatalf("Expected UnknownPartError, got %T: %v", err, err)
	}
	if unknown.Name != "MISSING" {
		t.Errorf("Expected unknown part MISSING, got %s", unknown.Name)
	}
	if unknown.ReferencedBy != "R1" {
		t.Errorf("Expected referencing part R1, got %s", unknown.ReferencedBy)
	}
}
