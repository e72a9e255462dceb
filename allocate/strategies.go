package allocate

import (
	"math"
	"sort"

	"github.com/ksali98/isr-planner-sub001/isrcore"
)

const insertionEps = 1e-6

// runEfficient is the auction-style strategy: repeatedly pick the (target,
// vehicle) pair maximizing priority/(insertionDelta+eps) among vehicles under
// cap, assign it, and repeat until nothing more can be placed.
func runEfficient(targets []isrcore.Target, sets map[isrcore.NodeID]*candidateSet, order []isrcore.NodeID, maxCand int, m isrcore.Matrix) []isrcore.Exclusion {
	pending := append([]isrcore.Target(nil), targets...)
	var excluded []isrcore.Exclusion

	for len(pending) > 0 {
		bestIdx := -1
		var bestID, bestVehicle isrcore.NodeID
		bestScore := math.Inf(-1)

		for i, t := range pending {
			eligible, reason := eligibleVehicles(t, sets, order)
			if len(eligible) == 0 {
				excluded = append(excluded, isrcore.Exclusion{TargetID: t.ID, Reason: reason})
				pending[i].ID = "" // mark consumed; swept below
				continue
			}
			for _, vid := range eligible {
				set := sets[vid]
				if atCap(set, maxCand) {
					continue
				}
				delta, ok := insertionDelta(t, set, m)
				if !ok {
					continue
				}
				score := float64(t.Priority) / (delta + insertionEps)
				if score > bestScore {
					bestScore = score
					bestIdx = i
					bestID = t.ID
					bestVehicle = vid
				}
			}
		}

		pending = sweepConsumed(pending)
		if bestIdx != -1 {
			// The sweep shifts indices; find the chosen target again by id.
			bestIdx = -1
			for j := range pending {
				if pending[j].ID == bestID {
					bestIdx = j
					break
				}
			}
		}
		if bestIdx == -1 {
			// No placeable pair remains; whatever is left is cap-limited.
			for _, t := range pending {
				if t.ID == "" {
					continue
				}
				excluded = append(excluded, isrcore.Exclusion{TargetID: t.ID, Reason: isrcore.ReasonCandidateLimit})
			}
			break
		}

		t := pending[bestIdx]
		sets[bestVehicle].targets = append(sets[bestVehicle].targets, t)
		pending = append(pending[:bestIdx], pending[bestIdx+1:]...)
	}
	return excluded
}

// sweepConsumed drops entries whose ID was blanked out after an exclusion.
func sweepConsumed(pending []isrcore.Target) []isrcore.Target {
	out := pending[:0]
	for _, t := range pending {
		if t.ID != "" {
			out = append(out, t)
		}
	}
	return out
}

// runGreedy sorts targets by descending priority and assigns each to the
// eligible, under-cap vehicle with least added distance.
func runGreedy(targets []isrcore.Target, sets map[isrcore.NodeID]*candidateSet, order []isrcore.NodeID, maxCand int, m isrcore.Matrix) []isrcore.Exclusion {
	sorted := append([]isrcore.Target(nil), targets...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Priority > sorted[j].Priority })

	var excluded []isrcore.Exclusion
	for _, t := range sorted {
		eligible, reason := eligibleVehicles(t, sets, order)
		if len(eligible) == 0 {
			excluded = append(excluded, isrcore.Exclusion{TargetID: t.ID, Reason: reason})
			continue
		}
		vid, ok := nearestUnderCap(t, eligible, sets, maxCand, m)
		if !ok {
			excluded = append(excluded, isrcore.Exclusion{TargetID: t.ID, Reason: isrcore.ReasonCandidateLimit})
			continue
		}
		sets[vid].targets = append(sets[vid].targets, t)
	}
	return excluded
}

func nearestUnderCap(t isrcore.Target, eligible []isrcore.NodeID, sets map[isrcore.NodeID]*candidateSet, maxCand int, m isrcore.Matrix) (isrcore.NodeID, bool) {
	best := math.Inf(1)
	var bestID isrcore.NodeID
	found := false
	for _, vid := range eligible {
		set := sets[vid]
		if atCap(set, maxCand) {
			continue
		}
		delta, ok := insertionDelta(t, set, m)
		if !ok {
			continue
		}
		if delta < best {
			best = delta
			bestID = vid
			found = true
		}
	}
	return bestID, found
}

// runBalanced assigns each target, in descending-priority order, to the
// eligible under-cap vehicle with the fewest assigned targets so far, breaking
// ties by nearest vehicle start.
func runBalanced(targets []isrcore.Target, sets map[isrcore.NodeID]*candidateSet, order []isrcore.NodeID, maxCand int, m isrcore.Matrix) []isrcore.Exclusion {
	sorted := append([]isrcore.Target(nil), targets...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Priority > sorted[j].Priority })

	var excluded []isrcore.Exclusion
	for _, t := range sorted {
		eligible, reason := eligibleVehicles(t, sets, order)
		if len(eligible) == 0 {
			excluded = append(excluded, isrcore.Exclusion{TargetID: t.ID, Reason: reason})
			continue
		}

		var bestID isrcore.NodeID
		bestCount := math.MaxInt32
		bestDist := math.Inf(1)
		found := false
		for _, vid := range eligible {
			set := sets[vid]
			if atCap(set, maxCand) {
				continue
			}
			d, ok := m.Distance(set.contract.Start, t.ID)
			if !ok {
				continue
			}
			n := len(set.targets)
			if n < bestCount || (n == bestCount && d < bestDist) {
				bestCount = n
				bestDist = d
				bestID = vid
				found = true
			}
		}
		if !found {
			excluded = append(excluded, isrcore.Exclusion{TargetID: t.ID, Reason: isrcore.ReasonCandidateLimit})
			continue
		}
		sets[bestID].targets = append(sets[bestID].targets, t)
	}
	return excluded
}

// runGeographic partitions the plane into equal angular sectors around the
// centroid of the environment's airports (or of the enabled vehicles' start
// positions if there are no airports), ordered by each vehicle's own bearing
// from that centroid, and assigns each target to the vehicle owning its sector.
func runGeographic(targets []isrcore.Target, sets map[isrcore.NodeID]*candidateSet, order []isrcore.NodeID, maxCand int, env *isrcore.Environment) []isrcore.Exclusion {
	type sectorOwner struct {
		id      isrcore.NodeID
		pos     isrcore.Point
		bearing float64
	}
	owners := make([]sectorOwner, 0, len(order))
	var cx, cy float64
	for _, id := range order {
		pos, ok := env.NodePosition(sets[id].contract.Start)
		if !ok {
			continue
		}
		cx += pos.X
		cy += pos.Y
		owners = append(owners, sectorOwner{id: id, pos: pos})
	}
	n := len(owners)
	if n == 0 {
		var excluded []isrcore.Exclusion
		for _, t := range targets {
			excluded = append(excluded, isrcore.Exclusion{TargetID: t.ID, Reason: isrcore.ReasonNotEligible})
		}
		return excluded
	}
	cx /= float64(n)
	cy /= float64(n)
	if len(env.Airports) > 0 {
		cx, cy = 0, 0
		for _, a := range env.Airports {
			cx += a.Pos.X
			cy += a.Pos.Y
		}
		cx /= float64(len(env.Airports))
		cy /= float64(len(env.Airports))
	}

	for i := range owners {
		owners[i].bearing = math.Atan2(owners[i].pos.Y-cy, owners[i].pos.X-cx)
	}
	sort.Slice(owners, func(i, j int) bool { return owners[i].bearing < owners[j].bearing })

	var excluded []isrcore.Exclusion
	sectorWidth := 2 * math.Pi / float64(n)
	for _, t := range targets {
		bearing := math.Atan2(t.Pos.Y-cy, t.Pos.X-cx)
		if bearing < 0 {
			bearing += 2 * math.Pi
		}
		idx := int(bearing / sectorWidth)
		if idx >= n {
			idx = n - 1
		}
		owner := owners[idx].id

		eligible, reason := eligibleVehicles(t, sets, order)
		if !containsID(eligible, owner) {
			if len(eligible) == 0 {
				excluded = append(excluded, isrcore.Exclusion{TargetID: t.ID, Reason: reason})
			} else {
				excluded = append(excluded, isrcore.Exclusion{TargetID: t.ID, Reason: isrcore.ReasonNotEligible})
			}
			continue
		}
		set := sets[owner]
		if atCap(set, maxCand) {
			excluded = append(excluded, isrcore.Exclusion{TargetID: t.ID, Reason: isrcore.ReasonCandidateLimit})
			continue
		}
		set.targets = append(set.targets, t)
	}
	return excluded
}

func containsID(ids []isrcore.NodeID, id isrcore.NodeID) bool {
	for _, x := range ids {
		if x == id {
			return true
		}
	}
	return false
}

// runExclusive first directly assigns every target with exactly one eligible
// vehicle, then runs runEfficient over whatever remains.
func runExclusive(targets []isrcore.Target, sets map[isrcore.NodeID]*candidateSet, order []isrcore.NodeID, maxCand int, m isrcore.Matrix) []isrcore.Exclusion {
	var excluded []isrcore.Exclusion
	var remainder []isrcore.Target

	for _, t := range targets {
		eligible, reason := eligibleVehicles(t, sets, order)
		switch len(eligible) {
		case 0:
			excluded = append(excluded, isrcore.Exclusion{TargetID: t.ID, Reason: reason})
		case 1:
			set := sets[eligible[0]]
			if atCap(set, maxCand) {
				excluded = append(excluded, isrcore.Exclusion{TargetID: t.ID, Reason: isrcore.ReasonCandidateLimit})
				continue
			}
			set.targets = append(set.targets, t)
		default:
			remainder = append(remainder, t)
		}
	}

	excluded = append(excluded, runEfficient(remainder, sets, order, maxCand, m)...)
	return excluded
}
