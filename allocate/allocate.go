// Package allocate implements the target allocator: given a target set,
// vehicle contracts, and a distance matrix, it partitions targets across eligible
// vehicles' candidate sets under one of five dispatch strategies.
//
// The allocator only decides *which* vehicle a target is handed to as a
// candidate; ordering that candidate set into an actual route is package
// orienteer's job.
package allocate

import (
	"math"
	"sort"

	"github.com/ksali98/isr-planner-sub001/isrcore"
)

// candidateSet is a vehicle's working allocation, used by every strategy to
// compute insertion deltas and to enforce the per-vehicle cap.
type candidateSet struct {
	contract isrcore.VehicleContract
	targets  []isrcore.Target
}

// Allocate partitions targets across the enabled vehicles in contracts according
// to policy.Strategy, respecting eligibility, priority filters, and (unless
// policy.AllowCapOverride) the per-vehicle candidate cap.
//
// Targets that lie inside any threat disk are excluded up front
// (IN_THREAT_ZONE); everything else is handed to the requested strategy.
func Allocate(env *isrcore.Environment, targets []isrcore.Target, contracts []isrcore.VehicleContract, m isrcore.Matrix, policy isrcore.SolvePolicy) (map[isrcore.NodeID][]isrcore.NodeID, []isrcore.Exclusion) {
	resolved := policy.Resolved()
	maxCand := resolved.MaxCandidates
	if resolved.AllowCapOverride {
		maxCand = math.MaxInt32
	}

	sets := make(map[isrcore.NodeID]*candidateSet, len(contracts))
	order := make([]isrcore.NodeID, 0, len(contracts))
	for _, c := range contracts {
		if !c.Enabled {
			continue
		}
		sets[c.ID] = &candidateSet{contract: c}
		order = append(order, c.ID)
	}
	sort.Slice(order, func(i, j int) bool { return order[i] < order[j] })

	var excluded []isrcore.Exclusion
	var remaining []isrcore.Target
	for _, t := range targets {
		if inThreatZone(t.Pos, env.Threats) {
			excluded = append(excluded, isrcore.Exclusion{TargetID: t.ID, Reason: isrcore.ReasonInThreatZone})
			continue
		}
		remaining = append(remaining, t)
	}

	var strategyExcluded []isrcore.Exclusion
	switch resolved.Strategy {
	case isrcore.StrategyGreedy:
		strategyExcluded = runGreedy(remaining, sets, order, maxCand, m)
	case isrcore.StrategyBalanced:
		strategyExcluded = runBalanced(remaining, sets, order, maxCand, m)
	case isrcore.StrategyGeographic:
		strategyExcluded = runGeographic(remaining, sets, order, maxCand, env)
	case isrcore.StrategyExclusive:
		strategyExcluded = runExclusive(remaining, sets, order, maxCand, m)
	default: // StrategyEfficient and any unrecognized tag fall back to it.
		strategyExcluded = runEfficient(remaining, sets, order, maxCand, m)
	}
	excluded = append(excluded, strategyExcluded...)

	out := make(map[isrcore.NodeID][]isrcore.NodeID, len(sets))
	for _, id := range order {
		set := sets[id]
		ids := make([]isrcore.NodeID, 0, len(set.targets))
		for _, t := range set.targets {
			ids = append(ids, t.ID)
		}
		out[id] = ids
	}
	return out, excluded
}

func inThreatZone(pos isrcore.Point, threats []isrcore.ThreatDisk) bool {
	for _, d := range threats {
		if d.Contains(pos) {
			return true
		}
	}
	return false
}

// eligibleVehicles returns, in deterministic order, the ids of vehicles t is
// eligible for (type + priority filter), and a reason code to use if the result
// is empty.
func eligibleVehicles(t isrcore.Target, sets map[isrcore.NodeID]*candidateSet, order []isrcore.NodeID) ([]isrcore.NodeID, isrcore.ExclusionReason) {
	var typeOK bool
	var eligible []isrcore.NodeID
	for _, id := range order {
		c := sets[id].contract
		if !c.Eligibility.Allows(t.Type) {
			continue
		}
		typeOK = true
		if c.PriorityFilter != nil && !c.PriorityFilter.Allows(t.Priority) {
			continue
		}
		eligible = append(eligible, id)
	}
	if len(eligible) > 0 {
		return eligible, ""
	}
	if typeOK {
		return nil, isrcore.ReasonPriorityFiltered
	}
	return nil, isrcore.ReasonNotEligible
}

// insertionDelta approximates the added length of visiting t from vehicle set's
// current candidates: the distance from t to the nearest already-held candidate,
// or from the vehicle's start node if it holds none yet.
func insertionDelta(t isrcore.Target, set *candidateSet, m isrcore.Matrix) (float64, bool) {
	if len(set.targets) == 0 {
		return m.Distance(set.contract.Start, t.ID)
	}
	best := math.Inf(1)
	found := false
	for _, c := range set.targets {
		d, ok := m.Distance(c.ID, t.ID)
		if !ok {
			continue
		}
		found = true
		if d < best {
			best = d
		}
	}
	if !found {
		return 0, false
	}
	return best, true
}

func atCap(set *candidateSet, maxCand int) bool {
	return len(set.targets) >= maxCand
}
