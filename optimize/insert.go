package optimize

import (
	"github.com/ksali98/isr-planner-sub001/isrcore"
)

// InsertMissed considers every unvisited, non-excluded target in descending
// priority order; for each it evaluates every eligible vehicle and every
// non-frozen insertion position, picking the (vehicle, position) pair with
// minimal added length that keeps the route fuel-feasible. It accepts the
// first target for which total priority strictly increases, or priority is
// equal and total length strictly decreases - mirroring one best-single-move
// application per call, like TrajectorySwap.
func InsertMissed(sol *isrcore.Solution, ctx Context) Outcome {
	for _, t := range unvisitedTargets(sol, ctx) {
		vehicleID, pos, addedLength, ok := bestInsertion(sol, ctx, t)
		if !ok {
			continue
		}

		res := sol.Routes[vehicleID]
		newNodes := make([]isrcore.NodeID, 0, len(res.Route.Nodes)+1)
		newNodes = append(newNodes, res.Route.Nodes[:pos]...)
		newNodes = append(newNodes, t.ID)
		newNodes = append(newNodes, res.Route.Nodes[pos:]...)
		newRoute := isrcore.Route{Start: res.Route.Start, End: res.Route.End, Nodes: newNodes}

		newLength := res.Length + addedLength
		newPriority := res.Points + t.Priority
		if newPriority <= res.Points && newLength >= res.Length-acceptEps {
			continue
		}

		res.Route = newRoute
		res.Length = newLength
		res.Points = newPriority
		res.FuelRemaining = res.FuelRemaining - addedLength
		sol.Routes[vehicleID] = res
		sol.Allocation[vehicleID] = newRoute.Targets()
		removeUnvisitedBookkeeping(sol, t.ID)
		sol.Metrics.TotalPoints += t.Priority
		sol.Metrics.TotalLength += addedLength
		return Outcome{Applied: true}
	}
	return Outcome{Applied: false, Reason: "no feasible improving insertion"}
}

// bestInsertion scans every eligible, enabled vehicle and every non-frozen
// position in its current route, returning the (vehicle, index, added length)
// triple with minimal added length. index is the position in Nodes at which t
// would be spliced (so the new edge pair is Nodes[index-1]->t->Nodes[index]).
func bestInsertion(sol *isrcore.Solution, ctx Context, t isrcore.Target) (isrcore.NodeID, int, float64, bool) {
	bestVehicle := isrcore.NodeID("")
	bestPos := -1
	bestDelta := -1.0
	found := false

	for vehicleID, res := range sol.Routes {
		contract, ok := ctx.Contracts[vehicleID]
		if !ok || !contract.Enabled || !eligible(contract, t) {
			continue
		}
		frozen := frozenSet(contract.FrozenEdges)
		nodes := res.Route.Nodes
		for i := 1; i < len(nodes); i++ {
			from, to := nodes[i-1], nodes[i]
			if _, isFrozen := frozen[isrcore.Edge{From: from, To: to}]; isFrozen {
				continue
			}
			dFromT, ok1 := ctx.Matrix.Distance(from, t.ID)
			dTTo, ok2 := ctx.Matrix.Distance(t.ID, to)
			dOld, ok3 := ctx.Matrix.Distance(from, to)
			if !ok1 || !ok2 || !ok3 {
				continue
			}
			delta := dFromT + dTTo - dOld
			if delta < -acceptEps {
				// Negative added length would only happen from a non-metric matrix;
				// guard against accepting a nonsensical "free" insertion.
				continue
			}
			if res.FuelRemaining < delta-acceptEps {
				continue
			}
			if !found || delta < bestDelta-acceptEps {
				found = true
				bestDelta = delta
				bestVehicle = vehicleID
				bestPos = i
			}
		}
	}
	return bestVehicle, bestPos, bestDelta, found
}

func removeUnvisitedBookkeeping(sol *isrcore.Solution, id isrcore.NodeID) {
	for i, u := range sol.Metrics.UnvisitedTargets {
		if u == id {
			sol.Metrics.UnvisitedTargets = append(sol.Metrics.UnvisitedTargets[:i], sol.Metrics.UnvisitedTargets[i+1:]...)
			return
		}
	}
}

