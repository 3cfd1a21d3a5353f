package services

import (
	"github.com/dkessel/bomorder/pkg/domain/entities"
	"github.com/dkessel/bomorder/pkg/domain/repositories"
)

// AliasResolver collapses alias chains to their terminal part. The part
// namespace is immutable during a run, so resolutions are memoized per
// resolver instance.
type AliasResolver struct {
	parts repositories.PartRepository
	memo  map[entities.PartName]entities.PartName
}

// NewAliasResolver creates a resolver over the given part namespace
func NewAliasResolver(parts repositories.PartRepository) *AliasResolver {
	return &AliasResolver{
		parts: parts,
		memo:  make(map[entities.PartName]entities.PartName),
	}
}

// Resolve walks Alias links from name until a non-alias part is reached.
// The walk keeps an explicit visited list, so cycle detection does not
// depend on call-stack depth. Returns *entities.CycleError when a visited
// name recurs, naming every member of the cycle, and
// *entities.UnknownPartError when a target is missing from the namespace.
func (r *AliasResolver) Resolve(name entities.PartName) (*entities.Part, error) {
	if terminal, ok := r.memo[name]; ok {
		return r.parts.GetPart(terminal)
	}

	var walk []entities.PartName
	seen := make(map[entities.PartName]int)
	current := name
	var previous entities.PartName

	for {
		if at, visited := seen[current]; visited {
			return nil, &entities.CycleError{Cycle: walk[at:]}
		}

		part, err := r.parts.GetPart(current)
		if err != nil {
			return nil, &entities.UnknownPartError{Name: current, ReferencedBy: previous}
		}

		if part.Kind != entities.Alias {
			for _, visited := range walk {
				r.memo[visited] = part.Name
			}
			return part, nil
		}

		seen[current] = len(walk)
		walk = append(walk, current)
		previous = current
		current = part.Target
	}
}
