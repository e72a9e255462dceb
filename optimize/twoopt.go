package optimize

import (
	"github.com/ksali98/isr-planner-sub001/isrcore"
)

// maxTwoOptIterations bounds the number of accepted reversals per route, per
// call, guarding against pathological cycling on a malformed matrix.
const maxTwoOptIterations = 256

// TwoOptUncross runs first-improvement 2-opt within every route independently:
// repeatedly reverses a segment bounded by two non-frozen edges whose removal
// and re-linking strictly decreases that route's length, until no improving
// reversal remains or the iteration cap is hit. Unlike
// InsertMissed/TrajectorySwap this applies every improving reversal it finds
// in one call, since reversal cannot introduce a correctness hazard the way
// a cross-vehicle move can.
func TwoOptUncross(sol *isrcore.Solution, ctx Context) Outcome {
	appliedAny := false
	for vehicleID, res := range sol.Routes {
		contract, ok := ctx.Contracts[vehicleID]
		if !ok {
			continue
		}
		newRoute, newLength, improved := twoOptRoute(res.Route, res.Length, contract.FrozenEdges, ctx.Matrix)
		if !improved {
			continue
		}
		res.Route = newRoute
		res.Length = newLength
		sol.Routes[vehicleID] = res
		sol.Allocation[vehicleID] = newRoute.Targets()
		appliedAny = true
	}
	if !appliedAny {
		return Outcome{Applied: false, Reason: "no improving reversal found"}
	}
	return Outcome{Applied: true}
}

// twoOptRoute applies first-improvement 2-opt to a single route. i,k range
// over interior node indices (1..len-2) so Nodes[0] (Start) and Nodes[len-1]
// (End) never move; a reversal is skipped if it would break a frozen edge,
// i.e. if either boundary edge (Nodes[i-1],Nodes[i]) or (Nodes[k],Nodes[k+1])
// is frozen, or if it would reorder any frozen edge's two endpoints.
func twoOptRoute(route isrcore.Route, length float64, frozenEdges []isrcore.Edge, m isrcore.Matrix) (isrcore.Route, float64, bool) {
	n := len(route.Nodes)
	if n < 4 {
		return route, length, false
	}
	frozen := frozenSet(frozenEdges)
	nodes := append([]isrcore.NodeID(nil), route.Nodes...)
	improved := false

	for iter := 0; iter < maxTwoOptIterations; iter++ {
		movedThisPass := false
		for i := 1; i <= n-3; i++ {
			for k := i + 1; k <= n-2; k++ {
				a, b := nodes[i-1], nodes[i]
				c, d := nodes[k], nodes[k+1]
				if edgeFrozenInSpan(nodes, i, k, frozen) {
					continue
				}
				dab, ok1 := m.Distance(a, b)
				dcd, ok2 := m.Distance(c, d)
				dac, ok3 := m.Distance(a, c)
				dbd, ok4 := m.Distance(b, d)
				if !ok1 || !ok2 || !ok3 || !ok4 {
					continue
				}
				delta := (dac + dbd) - (dab + dcd)
				if delta < -acceptEps {
					reverse(nodes, i, k)
					length += delta
					improved = true
					movedThisPass = true
					break
				}
			}
			if movedThisPass {
				break
			}
		}
		if !movedThisPass {
			break
		}
	}

	if !improved {
		return route, length, false
	}
	return isrcore.Route{Start: route.Start, End: route.End, Nodes: nodes}, length, true
}

// edgeFrozenInSpan reports whether reversing nodes[i..k] would disturb any
// frozen edge: either the two boundary edges being replaced, or any frozen
// edge with both endpoints inside [i,k] (reversal flips its direction).
func edgeFrozenInSpan(nodes []isrcore.NodeID, i, k int, frozen map[isrcore.Edge]struct{}) bool {
	if _, ok := frozen[isrcore.Edge{From: nodes[i-1], To: nodes[i]}]; ok {
		return true
	}
	if _, ok := frozen[isrcore.Edge{From: nodes[k], To: nodes[k+1]}]; ok {
		return true
	}
	for idx := i; idx < k; idx++ {
		if _, ok := frozen[isrcore.Edge{From: nodes[idx], To: nodes[idx+1]}]; ok {
			return true
		}
	}
	return false
}

func reverse(nodes []isrcore.NodeID, i, k int) {
	for i < k {
		nodes[i], nodes[k] = nodes[k], nodes[i]
		i++
		k--
	}
}
