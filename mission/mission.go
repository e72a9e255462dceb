// Package mission implements the end-to-end solve pipeline: fingerprint
// the environment into a distance matrix, allocate targets to vehicles, solve
// each vehicle's orienteering problem, reify the winning routes into
// trajectories, run the configured post-optimizers, and summarize the result
// into a Solution. Every stage is a thin wrapper around one of
// geom/distmat/allocate/orienteer/trajectory/optimize; mission owns none of
// the algorithms, only their sequencing, tracing, and metrics.
package mission

import (
	"context"
	"fmt"

	"github.com/go-logr/logr"

	"github.com/ksali98/isr-planner-sub001/isrcore"
	"github.com/ksali98/isr-planner-sub001/optimize"
	"github.com/ksali98/isr-planner-sub001/orienteer"
	"github.com/ksali98/isr-planner-sub001/trajectory"
)

// maxPostOptIterations bounds how many times each post-optimizer is
// re-invoked per Solve call. InsertMissed and TrajectorySwap apply one move
// per call, so this also caps how many insertions or swaps one Solve makes;
// TwoOptUncross already runs to a local optimum within a single call.
const maxPostOptIterations = 32

// Solve runs the full pipeline over env and contracts under policy. The
// returned Solution's Routes has exactly one entry per contract in contracts:
// disabled vehicles get an empty, feasible, zero-length route; enabled
// vehicles get whatever the orienteering solver and post-optimizers produced.
//
// Tracing spans and metric observations never block or change Solve's
// result: a caller with no tracer provider or metrics registry configured
// observes identical routes (the tests in mission_test.go run with the
// default no-op tracer provider).
func Solve(ctx context.Context, env *isrcore.Environment, contracts []isrcore.VehicleContract, policy isrcore.SolvePolicy) (*isrcore.Solution, error) {
	log := logr.FromContextOrDiscard(ctx)
	resolved := policy.Resolved()

	if !anyEnabled(contracts) {
		return nil, ErrNoEnabledVehicles
	}

	m, err := buildMatrixStage(ctx, env)
	if err != nil {
		return nil, fmt.Errorf("mission: building distance matrix: %w", err)
	}

	targetsByID := make(map[isrcore.NodeID]isrcore.Target, len(env.Targets))
	for _, t := range env.Targets {
		targetsByID[t.ID] = t
	}

	allocation, excluded := allocateStage(ctx, env, contracts, m, resolved)
	outcomes := solveStage(ctx, contracts, allocation, targetsByID, m, resolved)

	sol := &isrcore.Solution{
		Routes:     make(map[isrcore.NodeID]isrcore.VehicleResult, len(contracts)),
		Allocation: allocation,
		Excluded:   excluded,
	}
	for _, c := range contracts {
		if !c.Enabled {
			sol.Routes[c.ID] = disabledResult(c)
			continue
		}
		out, ok := outcomeFor(outcomes, c.ID)
		if !ok {
			log.Error(ErrNoEnabledVehicles, "mission: no pool outcome for enabled vehicle", "vehicle", c.ID)
			sol.Routes[c.ID] = isrcore.VehicleResult{VehicleID: c.ID, Feasible: false, Reason: "no pool outcome returned"}
			continue
		}
		sol.Routes[c.ID] = buildVehicleResult(c, out, targetsByID, m, log)
	}

	contractsByID := make(map[isrcore.NodeID]isrcore.VehicleContract, len(contracts))
	for _, c := range contracts {
		contractsByID[c.ID] = c
	}
	optCtx := optimize.Context{Env: env, Matrix: m, Contracts: contractsByID, Targets: targetsByID}
	runPostOptimizers(ctx, sol, optCtx, resolved.PostOpt)

	// Post-optimizers rewrite routes and lengths but not trajectories; rebuild
	// each feasible route's trajectory so it matches the final route.
	for id, res := range sol.Routes {
		if !res.Feasible || len(res.Route.Nodes) < 2 {
			continue
		}
		traj, err := trajectory.Build(res.Route, m)
		if err != nil {
			log.Error(err, "mission: re-reifying trajectory", "vehicle", id)
			continue
		}
		res.Trajectory = traj
		sol.Routes[id] = res
	}

	metricsStage(sol, targetsByID)
	return sol, nil
}

func anyEnabled(contracts []isrcore.VehicleContract) bool {
	for _, c := range contracts {
		if c.Enabled {
			return true
		}
	}
	return false
}

func outcomeFor(outcomes []orienteer.Outcome, id isrcore.NodeID) (orienteer.Outcome, bool) {
	for _, o := range outcomes {
		if o.VehicleID == id {
			return o, true
		}
	}
	return orienteer.Outcome{}, false
}

// disabledResult is the fixed empty-route result for a disabled vehicle;
// package segment is responsible for carrying its prior EndState forward
// across a cut, which mission alone has no record of.
func disabledResult(c isrcore.VehicleContract) isrcore.VehicleResult {
	return isrcore.VehicleResult{
		VehicleID:     c.ID,
		Route:         isrcore.Route{Start: c.Start, End: c.Start, Nodes: []isrcore.NodeID{c.Start}},
		FuelRemaining: c.FuelBudget,
		Feasible:      true,
		Reason:        "disabled",
	}
}

// buildVehicleResult reifies a winning orienteer.Outcome into a full
// VehicleResult: matrix length, polyline trajectory, and points earned.
func buildVehicleResult(c isrcore.VehicleContract, out orienteer.Outcome, targetsByID map[isrcore.NodeID]isrcore.Target, m isrcore.Matrix, log logr.Logger) isrcore.VehicleResult {
	if !out.Feasible {
		return isrcore.VehicleResult{VehicleID: c.ID, Feasible: false, Reason: out.Reason}
	}

	length, err := trajectory.MatrixLength(out.Route, m)
	if err != nil {
		log.Error(err, "mission: computing route length", "vehicle", c.ID)
		return isrcore.VehicleResult{VehicleID: c.ID, Feasible: false, Reason: err.Error()}
	}
	traj, err := trajectory.Build(out.Route, m)
	if err != nil {
		log.Error(err, "mission: reifying trajectory", "vehicle", c.ID)
		return isrcore.VehicleResult{VehicleID: c.ID, Feasible: false, Reason: err.Error()}
	}

	points := 0
	for _, id := range out.Route.Targets() {
		if t, ok := targetsByID[id]; ok {
			points += t.Priority
		}
	}

	return isrcore.VehicleResult{
		VehicleID:     c.ID,
		Route:         out.Route,
		Trajectory:    traj,
		Length:        length,
		FuelRemaining: c.FuelBudget - length,
		Points:        points,
		Feasible:      true,
	}
}
