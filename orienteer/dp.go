// Package orienteer implements the per-vehicle orienteering solver: an exact
// Held-Karp DP over small candidate sets, with a greedy-construction fallback for
// larger ones, dispatched across vehicles on a bounded worker pool.
package orienteer

import (
	"math"
	"sort"

	"github.com/bits-and-blooms/bitset"

	"github.com/ksali98/isr-planner-sub001/isrcore"
)

// MaxExactCandidates is the largest candidate count the DP will attempt
// regardless of caller overrides; beyond it the state space (2^k * k) is no
// longer a reasonable exact-solve budget and the greedy fallback always runs.
const MaxExactCandidates = 22

// dpCell is one subset-DP cell: the minimal length of any order of exactly the
// targets in its mask ending at the indexed last target, and the predecessor
// state that achieved it (for route reconstruction). Every cell sharing a mask
// carries the same total priority (the sum over the mask's members), so only
// length needs tracking per (mask, last) - the priority-then-length tie-break
// is applied once, across masks, when picking the best terminal state.
type dpCell struct {
	length   float64
	prevMask uint64
	prevLast int // -1 for a single-candidate mask (predecessor is the vehicle's start)
}

// heldKarp runs the Held-Karp DP over (bitmask of visited candidate indices,
// last visited index). dist is the k x k candidate-to-candidate matrix;
// fromStart[i] is the distance from s to candidate i; toEnd[i] is the distance
// from candidate i to e. requiredMask, if non-nil, restricts acceptance to
// terminal masks that are a superset of it (the frozen-edge prefix).
//
// Returns the order of candidate indices to visit (never empty), its total
// priority and length, and ok=false if no subset satisfies budget/requiredMask.
func heldKarp(priorities []int, dist [][]float64, fromStart, toEnd []float64, budget float64, requiredMask *bitset.BitSet) (order []int, priority int, length float64, ok bool) {
	k := len(priorities)
	if k == 0 {
		return nil, 0, 0, false
	}

	dp := make(map[uint64]map[int]dpCell, 1<<min(k, 16))

	for i := 0; i < k; i++ {
		key := uint64(1) << uint(i)
		dp[key] = map[int]dpCell{i: {length: fromStart[i], prevMask: 0, prevLast: -1}}
	}

	bestPriority := -1
	bestLength := math.Inf(1)
	var bestMask uint64
	bestLast := -1
	found := false

	queue := make([]uint64, 0, len(dp))
	for key := range dp {
		queue = append(queue, key)
	}
	sort.Slice(queue, func(i, j int) bool { return queue[i] < queue[j] })

	visited := make(map[uint64]bool)
	for qi := 0; qi < len(queue); qi++ {
		key := queue[qi]
		if visited[key] {
			continue
		}
		visited[key] = true

		row := dp[key]
		curMask := bitsetFromKey(key, k)
		curPriority := sumPriority(curMask, priorities)

		for last, cell := range row {
			total := cell.length + toEnd[last]
			if total <= budget+isrcore.EpsLength {
				if requiredMask == nil || curMask.IsSuperSet(requiredMask) {
					if betterTerminal(curPriority, total, bestPriority, bestLength) {
						bestPriority = curPriority
						bestLength = total
						bestMask = key
						bestLast = last
						found = true
					}
				}
			}

			for next := 0; next < k; next++ {
				if curMask.Test(uint(next)) {
					continue
				}
				newLength := cell.length + dist[last][next]
				if newLength > budget+isrcore.EpsLength {
					continue
				}
				newKey := key | (uint64(1) << uint(next))
				if _, exists := dp[newKey]; !exists {
					dp[newKey] = make(map[int]dpCell)
					queue = append(queue, newKey)
				}
				existing, has := dp[newKey][next]
				if !has || newLength < existing.length-isrcore.EpsLength {
					dp[newKey][next] = dpCell{length: newLength, prevMask: key, prevLast: last}
				}
			}
		}
	}

	if !found {
		return nil, 0, 0, false
	}

	// Reconstruct the visiting order by walking predecessor links back to the
	// single-candidate base case.
	var rev []int
	mask, last := bestMask, bestLast
	for {
		rev = append(rev, last)
		cell := dp[mask][last]
		if cell.prevLast == -1 {
			break
		}
		mask, last = cell.prevMask, cell.prevLast
	}
	order = make([]int, len(rev))
	for i, v := range rev {
		order[len(rev)-1-i] = v
	}
	return order, bestPriority, bestLength, true
}

// betterTerminal applies the terminal tie-break: higher priority wins; equal
// priority, lower length wins.
func betterTerminal(priority int, length float64, bestPriority int, bestLength float64) bool {
	if priority != bestPriority {
		return priority > bestPriority
	}
	return length < bestLength-isrcore.EpsLength
}

func sumPriority(mask *bitset.BitSet, priorities []int) int {
	total := 0
	for i, ok := mask.NextSet(0); ok; i, ok = mask.NextSet(i + 1) {
		total += priorities[i]
	}
	return total
}

func bitsetFromKey(key uint64, k int) *bitset.BitSet {
	b := bitset.New(uint(k))
	for i := 0; i < k; i++ {
		if key&(1<<uint(i)) != 0 {
			b.Set(uint(i))
		}
	}
	return b
}
