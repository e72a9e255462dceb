package optimize

import (
	"math"

	"github.com/ksali98/isr-planner-sub001/geom"
	"github.com/ksali98/isr-planner-sub001/isrcore"
)

// swapMove is a candidate single-target relocation from one vehicle's route to
// another's, at the insertion point with minimal OSD.
type swapMove struct {
	targetID   isrcore.NodeID
	from, to   isrcore.NodeID
	gain       float64 // SSD - OSD
	insertIdx  int      // index in the destination route's Nodes to splice at
	legBefore  isrcore.NodeID
	legAfter   isrcore.NodeID
	removalLen float64 // length removed from the source route
	insertLen  float64 // length added to the destination route
}

// TrajectorySwap evaluates, for every assigned target T on some vehicle A, its
// SSD (self-segment distance: perpendicular distance from T to the chord
// between its two route neighbors on A) against the minimum OSD (distance from
// T to the closest non-frozen edge of any other eligible vehicle B). Targets
// with SSD==0 are skipped (NO-SSD NO-MOVE): they already sit on their own
// chord, so no swap can out-perform staying put. Among all remaining
// candidates it applies exactly the single swap with the greatest gain
// (SSD-OSD) that keeps B fuel-feasible, strictly decreases total length,
// does not decrease total priority, and preserves every frozen edge
//. One swap per call; the caller iterates until Applied==false.
func TrajectorySwap(sol *isrcore.Solution, ctx Context) Outcome {
	var best *swapMove

	for fromID, fromRes := range sol.Routes {
		fromContract, ok := ctx.Contracts[fromID]
		if !ok {
			continue
		}
		fromFrozen := frozenSet(fromContract.FrozenEdges)
		nodes := fromRes.Route.Nodes

		for i := 1; i+1 < len(nodes); i++ {
			targetID := nodes[i]
			prev, next := nodes[i-1], nodes[i+1]
			if _, frozenEdge := fromFrozen[isrcore.Edge{From: prev, To: targetID}]; frozenEdge {
				continue
			}
			if _, frozenEdge := fromFrozen[isrcore.Edge{From: targetID, To: next}]; frozenEdge {
				continue
			}
			t, known := ctx.Targets[targetID]
			if !known {
				continue
			}
			prevPos, ok1 := ctx.Env.NodePosition(prev)
			curPos, ok2 := ctx.Env.NodePosition(targetID)
			nextPos, ok3 := ctx.Env.NodePosition(next)
			if !ok1 || !ok2 || !ok3 {
				continue
			}
			ssd := geom.PointToSegmentDistance(curPos, prevPos, nextPos)
			if ssd <= acceptEps {
				continue // NO-SSD NO-MOVE
			}

			dPrevNext, okPN := ctx.Matrix.Distance(prev, next)
			dPrevT, okPT := ctx.Matrix.Distance(prev, targetID)
			dTNext, okTN := ctx.Matrix.Distance(targetID, next)
			if !okPN || !okPT || !okTN {
				continue
			}
			removalSaving := dPrevT + dTNext - dPrevNext

			for toID, toRes := range sol.Routes {
				if toID == fromID {
					continue
				}
				toContract, ok := ctx.Contracts[toID]
				if !ok || !toContract.Enabled || !eligible(toContract, t) {
					continue
				}
				toFrozen := frozenSet(toContract.FrozenEdges)
				toNodes := toRes.Route.Nodes

				bestOSD := math.Inf(1)
				bestIdx := -1
				for j := 1; j < len(toNodes); j++ {
					a, b := toNodes[j-1], toNodes[j]
					if _, frozenEdge := toFrozen[isrcore.Edge{From: a, To: b}]; frozenEdge {
						continue
					}
					aPos, okA := ctx.Env.NodePosition(a)
					bPos, okB := ctx.Env.NodePosition(b)
					if !okA || !okB {
						continue
					}
					osd := geom.PointToSegmentDistance(curPos, aPos, bPos)
					if osd < bestOSD {
						bestOSD = osd
						bestIdx = j
					}
				}
				if bestIdx == -1 {
					continue
				}

				a, b := toNodes[bestIdx-1], toNodes[bestIdx]
				dAT, okAT := ctx.Matrix.Distance(a, targetID)
				dTB, okTB := ctx.Matrix.Distance(targetID, b)
				dAB, okAB := ctx.Matrix.Distance(a, b)
				if !okAT || !okTB || !okAB {
					continue
				}
				insertionCost := dAT + dTB - dAB

				newFromLength := fromRes.Length - removalSaving
				newToLength := toRes.Length + insertionCost
				totalDelta := (newFromLength + newToLength) - (fromRes.Length + toRes.Length)
				if totalDelta >= -acceptEps {
					continue // must strictly decrease total length
				}
				if toRes.FuelRemaining < insertionCost-acceptEps {
					continue // B must remain fuel feasible
				}

				gain := ssd - bestOSD
				if best == nil || gain > best.gain {
					best = &swapMove{
						targetID: targetID, from: fromID, to: toID, gain: gain,
						insertIdx: bestIdx, legBefore: prev, legAfter: next,
						removalLen: removalSaving, insertLen: insertionCost,
					}
				}
			}
		}
	}

	if best == nil {
		return Outcome{Applied: false, Reason: "no improving swap found"}
	}

	applySwap(sol, ctx, *best)
	return Outcome{Applied: true}
}

// applySwap splices move.targetID out of its source route and into the
// destination route at move.insertIdx, updating both VehicleResults and the
// Solution's aggregate length.
func applySwap(sol *isrcore.Solution, ctx Context, move swapMove) {
	fromRes := sol.Routes[move.from]
	toRes := sol.Routes[move.to]
	t := ctx.Targets[move.targetID]

	fromNodes := make([]isrcore.NodeID, 0, len(fromRes.Route.Nodes)-1)
	for _, id := range fromRes.Route.Nodes {
		if id == move.targetID {
			continue
		}
		fromNodes = append(fromNodes, id)
	}

	toNodes := make([]isrcore.NodeID, 0, len(toRes.Route.Nodes)+1)
	toNodes = append(toNodes, toRes.Route.Nodes[:move.insertIdx]...)
	toNodes = append(toNodes, move.targetID)
	toNodes = append(toNodes, toRes.Route.Nodes[move.insertIdx:]...)

	fromRes.Route = isrcore.Route{Start: fromRes.Route.Start, End: fromRes.Route.End, Nodes: fromNodes}
	fromRes.Length -= move.removalLen
	fromRes.Points -= t.Priority
	fromRes.FuelRemaining += move.removalLen

	toRes.Route = isrcore.Route{Start: toRes.Route.Start, End: toRes.Route.End, Nodes: toNodes}
	toRes.Length += move.insertLen
	toRes.Points += t.Priority
	toRes.FuelRemaining -= move.insertLen

	sol.Routes[move.from] = fromRes
	sol.Routes[move.to] = toRes
	sol.Allocation[move.from] = fromRes.Route.Targets()
	sol.Allocation[move.to] = toRes.Route.Targets()
	sol.Metrics.TotalLength += move.insertLen - move.removalLen
}
