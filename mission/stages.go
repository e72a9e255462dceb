package mission

import (
	"context"
	"sort"
	"time"

	"github.com/ksali98/isr-planner-sub001/allocate"
	"github.com/ksali98/isr-planner-sub001/distmat"
	"github.com/ksali98/isr-planner-sub001/isrcore"
	"github.com/ksali98/isr-planner-sub001/optimize"
	"github.com/ksali98/isr-planner-sub001/orienteer"
)

// collectNodeIDs gathers every routable node in env: airports, targets, and any
// carried-over synthetic starts.
func collectNodeIDs(env *isrcore.Environment) []isrcore.NodeID {
	ids := make([]isrcore.NodeID, 0, len(env.Airports)+len(env.Targets)+len(env.SyntheticStarts))
	for _, a := range env.Airports {
		ids = append(ids, a.ID)
	}
	for _, t := range env.Targets {
		ids = append(ids, t.ID)
	}
	for id := range env.SyntheticStarts {
		ids = append(ids, id)
	}
	return ids
}

// buildMatrixStage fingerprints env and builds (or reuses, per distmat's own
// cache) the threat-aware distance matrix over every routable node.
func buildMatrixStage(ctx context.Context, env *isrcore.Environment) (*distmat.Matrix, error) {
	_, span := tracer.Start(ctx, "mission.fingerprint")
	defer span.End()

	start := time.Now()
	m, err := distmat.Build(env, collectNodeIDs(env))
	stageDuration.WithLabelValues("fingerprint").Observe(time.Since(start).Seconds())
	if err != nil {
		matrixCacheOutcomes.WithLabelValues("error").Inc()
		return nil, err
	}
	matrixCacheOutcomes.WithLabelValues("built").Inc()
	return m, nil
}

// allocateStage partitions env.Targets across the enabled vehicles in contracts.
func allocateStage(ctx context.Context, env *isrcore.Environment, contracts []isrcore.VehicleContract, m isrcore.Matrix, policy isrcore.SolvePolicy) (map[isrcore.NodeID][]isrcore.NodeID, []isrcore.Exclusion) {
	_, span := tracer.Start(ctx, "mission.allocate")
	defer span.End()

	start := time.Now()
	allocation, excluded := allocate.Allocate(env, env.Targets, contracts, m, policy)
	stageDuration.WithLabelValues("allocate").Observe(time.Since(start).Seconds())
	return allocation, excluded
}

// solveStage dispatches one orienteering solve per enabled vehicle across the
// bounded worker pool.
func solveStage(ctx context.Context, contracts []isrcore.VehicleContract, allocation map[isrcore.NodeID][]isrcore.NodeID, targetsByID map[isrcore.NodeID]isrcore.Target, m isrcore.Matrix, policy isrcore.SolvePolicy) []orienteer.Outcome {
	ctx, span := tracer.Start(ctx, "mission.solve")
	defer span.End()

	var jobs []orienteer.Job
	for _, c := range contracts {
		if !c.Enabled {
			continue
		}
		ids := allocation[c.ID]
		candidates := make([]isrcore.Target, 0, len(ids))
		for _, id := range ids {
			if t, ok := targetsByID[id]; ok {
				candidates = append(candidates, t)
			}
		}
		jobs = append(jobs, orienteer.Job{Contract: c, Candidates: candidates})
	}

	start := time.Now()
	outcomes := orienteer.SolveAll(ctx, jobs, m, policy, min(8, len(jobs)))
	stageDuration.WithLabelValues("solve").Observe(time.Since(start).Seconds())

	for _, o := range outcomes {
		if !o.Feasible {
			vehicleInfeasibleTotal.WithLabelValues(o.Reason).Inc()
		}
	}
	return outcomes
}

// runPostOptimizers runs the configured post-optimizers, in the fixed order
// insert -> swap -> uncross, each re-invoked to its own local fixed point.
func runPostOptimizers(ctx context.Context, sol *isrcore.Solution, optCtx optimize.Context, flags isrcore.PostOptFlags) {
	_, span := tracer.Start(ctx, "mission.optimize")
	defer span.End()

	start := time.Now()
	if flags.InsertMissed {
		runToFixedPoint(sol, optCtx, "insert", optimize.InsertMissed)
	}
	if flags.TrajectorySwap {
		runToFixedPoint(sol, optCtx, "swap", optimize.TrajectorySwap)
	}
	if flags.TwoOptUncross {
		runToFixedPoint(sol, optCtx, "uncross", optimize.TwoOptUncross)
	}
	stageDuration.WithLabelValues("optimize").Observe(time.Since(start).Seconds())
}

// runToFixedPoint re-invokes a single post-optimizer until it reports
// Applied==false or maxPostOptIterations is hit, guarding against a
// pathological oscillation between optimizer passes.
func runToFixedPoint(sol *isrcore.Solution, ctx optimize.Context, label string, step func(*isrcore.Solution, optimize.Context) optimize.Outcome) {
	for i := 0; i < maxPostOptIterations; i++ {
		outcome := step(sol, ctx)
		if !outcome.Applied {
			postOptOutcomes.WithLabelValues(label, "reject").Inc()
			return
		}
		postOptOutcomes.WithLabelValues(label, "accept").Inc()
	}
}

// metricsStage summarizes sol's routes into its Metrics field.
func metricsStage(sol *isrcore.Solution, targetsByID map[isrcore.NodeID]isrcore.Target) {
	var totalPoints int
	var totalLength float64
	margin := make(map[isrcore.NodeID]float64, len(sol.Routes))
	visited := make(map[isrcore.NodeID]struct{})
	for id, res := range sol.Routes {
		totalPoints += res.Points
		totalLength += res.Length
		margin[id] = res.FuelRemaining
		for _, tid := range res.Route.Targets() {
			visited[tid] = struct{}{}
		}
	}

	excluded := make(map[isrcore.NodeID]struct{}, len(sol.Excluded))
	for _, e := range sol.Excluded {
		excluded[e.TargetID] = struct{}{}
	}

	var unvisited []isrcore.NodeID
	for id := range targetsByID {
		if _, ok := visited[id]; ok {
			continue
		}
		if _, ok := excluded[id]; ok {
			continue
		}
		unvisited = append(unvisited, id)
	}
	sort.Slice(unvisited, func(i, j int) bool { return unvisited[i] < unvisited[j] })

	sol.Metrics = isrcore.Metrics{
		TotalPoints:      totalPoints,
		TotalLength:      totalLength,
		PerVehicleMargin: margin,
		UnvisitedTargets: unvisited,
	}
}
