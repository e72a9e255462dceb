// Package optimize implements the three post-optimizers: insert-missed,
// trajectory-swap, and 2-opt uncross. All three read a Solution produced by
// allocate+orienteer and must preserve frozen edges, fuel feasibility, and
// eligibility/priority filters; each refuses a change unless it strictly
// improves its own metric.
package optimize

import (
	"errors"

	"github.com/ksali98/isr-planner-sub001/isrcore"
)

// ErrUnknownVehicle indicates a Solution references a vehicle id missing from
// Context.Contracts.
var ErrUnknownVehicle = errors.New("optimize: solution references unknown vehicle contract")

// Context carries everything a post-optimizer needs beyond the Solution itself:
// the world, the distance matrix, and the original per-vehicle contracts (for
// fuel budgets, eligibility, and frozen edges, none of which survive into a
// VehicleResult).
type Context struct {
	Env       *isrcore.Environment
	Matrix    isrcore.Matrix
	Contracts map[isrcore.NodeID]isrcore.VehicleContract
	Targets   map[isrcore.NodeID]isrcore.Target
}

// Outcome reports whether a post-optimizer changed the Solution, and why not
// when it didn't.
type Outcome struct {
	Applied bool
	Reason  string
}

const acceptEps = 1e-9

// routeLength sums matrix distances along route's edges. Distance/fuel checks
// use matrix values, never straight-line.
func routeLength(route isrcore.Route, m isrcore.Matrix) (float64, bool) {
	var total float64
	for _, e := range route.Edges() {
		d, ok := m.Distance(e.From, e.To)
		if !ok {
			return 0, false
		}
		total += d
	}
	return total, true
}

// frozenSet indexes a contract's frozen edges for O(1) membership checks.
func frozenSet(edges []isrcore.Edge) map[isrcore.Edge]struct{} {
	set := make(map[isrcore.Edge]struct{}, len(edges))
	for _, e := range edges {
		set[e] = struct{}{}
	}
	return set
}

// unvisitedTargets returns every target neither routed by any vehicle nor
// already recorded as an Exclusion, in descending-priority order.
func unvisitedTargets(sol *isrcore.Solution, ctx Context) []isrcore.Target {
	visited := make(map[isrcore.NodeID]struct{})
	for _, res := range sol.Routes {
		for _, id := range res.Route.Targets() {
			visited[id] = struct{}{}
		}
	}
	excluded := make(map[isrcore.NodeID]struct{}, len(sol.Excluded))
	for _, ex := range sol.Excluded {
		excluded[ex.TargetID] = struct{}{}
	}

	var out []isrcore.Target
	for id, t := range ctx.Targets {
		if _, seen := visited[id]; seen {
			continue
		}
		if _, ex := excluded[id]; ex {
			continue
		}
		out = append(out, t)
	}
	sortByPriorityDesc(out)
	return out
}

func sortByPriorityDesc(targets []isrcore.Target) {
	for i := 1; i < len(targets); i++ {
		j := i
		for j > 0 && targets[j].Priority > targets[j-1].Priority {
			targets[j], targets[j-1] = targets[j-1], targets[j]
			j--
		}
	}
}

func eligible(contract isrcore.VehicleContract, t isrcore.Target) bool {
	if !contract.Eligibility.Allows(t.Type) {
		return false
	}
	if contract.PriorityFilter != nil && !contract.PriorityFilter.Allows(t.Priority) {
		return false
	}
	return true
}
