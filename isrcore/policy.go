// Package isrcore - solve policy and solution envelope.
package isrcore

import "time"

// AllocationStrategy selects the target-to-vehicle allocation policy.
type AllocationStrategy int

const (
	// StrategyEfficient is the auction-style priority/added-length allocator.
	StrategyEfficient AllocationStrategy = iota
	// StrategyGreedy assigns by descending priority, least added distance.
	StrategyGreedy
	// StrategyBalanced equalizes per-vehicle target counts.
	StrategyBalanced
	// StrategyGeographic partitions by angular sector around the airport centroid.
	StrategyGeographic
	// StrategyExclusive assigns sole-eligible targets first, then falls back to
	// StrategyEfficient for the remainder.
	StrategyExclusive
)

// DefaultMaxCandidates is the default per-vehicle soft allocation cap, below which
// the exact Held-Karp solver is tractable.
const DefaultMaxCandidates = 12

// PostOptFlags selects which post-optimizers run, in the fixed order
// insert → swap* → uncross regardless of which flags are set.
type PostOptFlags struct {
	InsertMissed bool
	TrajectorySwap bool
	TwoOptUncross  bool
}

// SolvePolicy configures one end-to-end solve.
type SolvePolicy struct {
	Strategy AllocationStrategy
	PostOpt  PostOptFlags

	// PerVehicleTimeout bounds each vehicle's orienteering solve.
	PerVehicleTimeout time.Duration

	// MaxCandidates is K: the per-vehicle soft allocation cap / exact-DP threshold.
	// Zero means DefaultMaxCandidates.
	MaxCandidates int

	// AllowCapOverride lets the caller exceed MaxCandidates for a given vehicle,
	// accepting that the orienteering solver will fall back to greedy construction.
	AllowCapOverride bool
}

// Resolved returns a copy of p with zero-value fields replaced by defaults.
func (p SolvePolicy) Resolved() SolvePolicy {
	if p.MaxCandidates <= 0 {
		p.MaxCandidates = DefaultMaxCandidates
	}
	return p
}

// ExclusionReason enumerates why a target was not assigned to any vehicle.
type ExclusionReason string

const (
	ReasonInThreatZone     ExclusionReason = "IN_THREAT_ZONE"
	ReasonNotEligible      ExclusionReason = "NOT_ELIGIBLE"
	ReasonPriorityFiltered ExclusionReason = "PRIORITY_FILTERED"
	ReasonCandidateLimit   ExclusionReason = "CANDIDATE_LIMIT"
	ReasonDominatedLowValue ExclusionReason = "DOMINATED_LOW_VALUE"
)

// Exclusion records one target's exclusion from allocation, with a reason.
type Exclusion struct {
	TargetID NodeID
	Reason   ExclusionReason
}

// VehicleResult is one vehicle's portion of a Solution.
type VehicleResult struct {
	VehicleID     NodeID
	Route         Route
	Trajectory    Trajectory
	Length        float64
	FuelRemaining float64
	Points        int
	Feasible      bool
	// Reason is populated when Feasible is false (e.g. INFEASIBLE_FUEL).
	Reason string
}

// Metrics summarizes a Solution.
type Metrics struct {
	TotalPoints      int
	TotalLength      float64
	PerVehicleMargin map[NodeID]float64
	UnvisitedTargets []NodeID
}

// Solution is the full envelope returned by a solve.
type Solution struct {
	Routes     map[NodeID]VehicleResult
	Allocation map[NodeID][]NodeID // vehicle id -> target ids the allocator handed it; a post-optimizer that changes a route rewrites its entry to that route's targets in order
	Excluded   []Exclusion
	Metrics    Metrics
}
