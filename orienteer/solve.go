package orienteer

import (
	"math"

	"github.com/ksali98/isr-planner-sub001/isrcore"
)

// Options configures a single vehicle's orienteering solve.
type Options struct {
	// MaxExactK is the candidate-count threshold below which the Held-Karp DP
	// runs; above it, greedy construction runs instead.
	MaxExactK int

	// ForceGreedy skips the DP unconditionally, used by the worker pool to
	// compute a fast warm baseline before racing the exact solve against a
	// deadline, falling back to that baseline if the exact solve doesn't land in time.
	ForceGreedy bool
}

// SolveVehicle finds the best subset and order of candidates for one vehicle,
// honoring its fuel budget, endpoint mode, and any frozen prefix.
//
// candidates is the vehicle's allocated target set (already filtered for
// eligibility/priority/threat-zone by package allocate). On success the
// returned Route always begins at contract.Start.
func SolveVehicle(contract isrcore.VehicleContract, candidates []isrcore.Target, m isrcore.Matrix, opts Options) (isrcore.Route, error) {
	prefix, remainingStart, err := resolveFrozenPrefix(contract, m)
	if err != nil {
		return isrcore.Route{}, err
	}

	ends, err := candidateEnds(contract)
	if err != nil {
		return isrcore.Route{}, err
	}

	// Frozen targets are already committed by the prefix; never re-offer them.
	frozenSet := make(map[isrcore.NodeID]struct{}, len(prefix))
	for _, id := range prefix {
		frozenSet[id] = struct{}{}
	}
	var free []isrcore.Target
	for _, t := range candidates {
		if _, frozen := frozenSet[t.ID]; !frozen {
			free = append(free, t)
		}
	}

	var prefixLength float64
	if len(prefix) > 1 {
		for i := 0; i+1 < len(prefix); i++ {
			d, ok := m.Distance(prefix[i], prefix[i+1])
			if !ok {
				return isrcore.Route{}, isrcore.ErrFrozenEdgeViolation
			}
			prefixLength += d
		}
	}
	remainingBudget := contract.FuelBudget - prefixLength
	if remainingBudget < -isrcore.EpsLength {
		return isrcore.Route{}, ErrInfeasibleFuel
	}

	var bestRoute isrcore.Route
	bestPriority := -1
	bestLength := math.Inf(1)
	foundAny := false

	for _, end := range ends {
		route, priority, length, err := solveFromTo(remainingStart, end, free, m, remainingBudget, opts)
		if err != nil {
			continue
		}
		if !foundAny || betterTerminal(priority, length, bestPriority, bestLength) {
			foundAny = true
			bestPriority = priority
			bestLength = length
			bestRoute = route
		}
	}

	if !foundAny {
		return isrcore.Route{}, ErrInfeasibleFuel
	}

	fullNodes := append(append([]isrcore.NodeID(nil), prefix[:len(prefix)-1]...), bestRoute.Nodes...)
	full := isrcore.Route{Start: contract.Start, End: bestRoute.End, Nodes: fullNodes}
	if !full.ContainsFrozenPrefix(contract.FrozenEdges) {
		return isrcore.Route{}, isrcore.ErrFrozenEdgeViolation
	}
	return full, nil
}

// candidateEnds resolves the set of end nodes to try, per the contract's
// endpoint mode.
func candidateEnds(contract isrcore.VehicleContract) ([]isrcore.NodeID, error) {
	switch contract.EndMode {
	case isrcore.EndBest:
		if len(contract.AllowedEnds) == 0 {
			return nil, ErrNoAllowedEnd
		}
		return contract.AllowedEnds, nil
	default:
		return []isrcore.NodeID{contract.ResolvedEnd()}, nil
	}
}

// resolveFrozenPrefix chains contract.FrozenEdges, starting from contract.Start,
// into an ordered node sequence. An empty FrozenEdges set yields a single-node
// prefix [Start]. Any gap or out-of-order edge is an invariant violation.
func resolveFrozenPrefix(contract isrcore.VehicleContract, m isrcore.Matrix) ([]isrcore.NodeID, isrcore.NodeID, error) {
	prefix := []isrcore.NodeID{contract.Start}
	cursor := contract.Start
	remaining := append([]isrcore.Edge(nil), contract.FrozenEdges...)

	for len(remaining) > 0 {
		next := -1
		for i, e := range remaining {
			if e.From == cursor {
				next = i
				break
			}
		}
		if next == -1 {
			return nil, "", isrcore.ErrFrozenEdgeViolation
		}
		edge := remaining[next]
		if _, ok := m.Distance(edge.From, edge.To); !ok {
			return nil, "", isrcore.ErrFrozenEdgeViolation
		}
		prefix = append(prefix, edge.To)
		cursor = edge.To
		remaining = append(remaining[:next], remaining[next+1:]...)
	}
	return prefix, cursor, nil
}

// solveFromTo dispatches to the exact DP or the greedy fallback depending on
// candidate count, and assembles the resulting Route from s to e.
func solveFromTo(s, e isrcore.NodeID, candidates []isrcore.Target, m isrcore.Matrix, budget float64, opts Options) (isrcore.Route, int, float64, error) {
	k := len(candidates)
	if k == 0 {
		d, ok := m.Distance(s, e)
		if !ok || d > budget+isrcore.EpsLength {
			return isrcore.Route{}, 0, 0, ErrInfeasibleFuel
		}
		return isrcore.Route{Start: s, End: e, Nodes: []isrcore.NodeID{s, e}}, 0, d, nil
	}

	priorities := make([]int, k)
	fromStart := make([]float64, k)
	toEnd := make([]float64, k)
	dist := make([][]float64, k)
	for i := range dist {
		dist[i] = make([]float64, k)
	}

	feasible := true
	for i, t := range candidates {
		priorities[i] = t.Priority
		d, ok := m.Distance(s, t.ID)
		if !ok {
			feasible = false
			break
		}
		fromStart[i] = d
		d, ok = m.Distance(t.ID, e)
		if !ok {
			feasible = false
			break
		}
		toEnd[i] = d
	}
	if feasible {
		for i, a := range candidates {
			for j, b := range candidates {
				if i == j {
					continue
				}
				d, ok := m.Distance(a.ID, b.ID)
				if !ok {
					feasible = false
					break
				}
				dist[i][j] = d
			}
			if !feasible {
				break
			}
		}
	}

	threshold := opts.MaxExactK
	if threshold <= 0 {
		threshold = isrcore.DefaultMaxCandidates
	}

	// The trivial route (visit nothing) is always a baseline candidate.
	bestPriority := 0
	bestLength := math.Inf(1)
	var bestOrder []int
	foundTrivial := false
	if trivialLen, ok := m.Distance(s, e); ok && trivialLen <= budget+isrcore.EpsLength {
		bestLength = trivialLen
		foundTrivial = true
	}

	if feasible && !opts.ForceGreedy && k <= threshold && k <= MaxExactCandidates {
		order, priority, length, ok := heldKarp(priorities, dist, fromStart, toEnd, budget, nil)
		if ok && (!foundTrivial || betterTerminal(priority, length, bestPriority, bestLength)) {
			bestPriority = priority
			bestLength = length
			bestOrder = order
			foundTrivial = true
		}
	} else if feasible {
		order, addedLength := greedyOrder(priorities, dist, fromStart, toEnd, budget)
		total := addedLength
		if len(order) > 0 {
			priority := 0
			for _, idx := range order {
				priority += priorities[idx]
			}
			if !foundTrivial || betterTerminal(priority, total, bestPriority, bestLength) {
				bestPriority = priority
				bestLength = total
				bestOrder = order
				foundTrivial = true
			}
		}
	}

	if !foundTrivial {
		return isrcore.Route{}, 0, 0, ErrInfeasibleFuel
	}

	nodes := []isrcore.NodeID{s}
	for _, idx := range bestOrder {
		nodes = append(nodes, candidates[idx].ID)
	}
	nodes = append(nodes, e)
	return isrcore.Route{Start: s, End: e, Nodes: nodes}, bestPriority, bestLength, nil
}
