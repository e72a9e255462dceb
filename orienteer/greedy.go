package orienteer

import "math"

const insertionEps = 1e-6

// greedyOrder builds a route over candidate indices 0..k-1 by repeated cheapest
// insertion: at each step, insert whichever remaining candidate has the best
// priority/(added-length+eps) score at its cheapest position, provided the
// resulting total length still fits budget; stop when no remaining candidate
// fits anywhere.
//
// order is the resulting sequence of candidate indices (not including
// start/end); length is the full length of the route start -> order... -> end
// (0 if order is empty).
func greedyOrder(priorities []int, dist [][]float64, fromStart, toEnd []float64, budget float64) (order []int, length float64) {
	k := len(priorities)
	remaining := make([]int, k)
	for i := range remaining {
		remaining[i] = i
	}

	var route []int
	length = 0

	for {
		bestScore := math.Inf(-1)
		bestRemIdx := -1
		bestInsertAt := -1
		bestDelta := 0.0

		for ri, cand := range remaining {
			for pos := 0; pos <= len(route); pos++ {
				before, after := -1, -1
				if pos > 0 {
					before = route[pos-1]
				}
				if pos < len(route) {
					after = route[pos]
				}

				delta := insertionDelta(before, after, cand, dist, fromStart, toEnd)
				if length+delta > budget+insertionEps {
					continue
				}
				score := float64(priorities[cand]) / (delta + insertionEps)
				if score > bestScore {
					bestScore = score
					bestRemIdx = ri
					bestInsertAt = pos
					bestDelta = delta
				}
			}
		}

		if bestRemIdx == -1 {
			break
		}
		cand := remaining[bestRemIdx]
		route = append(route[:bestInsertAt], append([]int{cand}, route[bestInsertAt:]...)...)
		length += bestDelta
		remaining = append(remaining[:bestRemIdx], remaining[bestRemIdx+1:]...)
	}

	return route, length
}

// insertionDelta is the added length of inserting cand between before and after
// (either of which may be -1 for the virtual start/end node); the route's
// existing before->after leg (0 if both are -1, i.e. the route is still empty)
// is subtracted out.
func insertionDelta(before, after, cand int, dist [][]float64, fromStart, toEnd []float64) float64 {
	var legBefore, legAfter, oldLeg float64
	if before == -1 {
		legBefore = fromStart[cand]
	} else {
		legBefore = dist[before][cand]
	}
	if after == -1 {
		legAfter = toEnd[cand]
	} else {
		legAfter = dist[cand][after]
	}
	switch {
	case before == -1 && after == -1:
		oldLeg = 0
	case before == -1:
		oldLeg = fromStart[after]
	case after == -1:
		oldLeg = toEnd[before]
	default:
		oldLeg = dist[before][after]
	}
	return legBefore + legAfter - oldLeg
}
