package orienteer_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ksali98/isr-planner-sub001/distmat"
	"github.com/ksali98/isr-planner-sub001/isrcore"
	"github.com/ksali98/isr-planner-sub001/orienteer"
)

func lineEnv() *isrcore.Environment {
	// base at 0, targets at 10,20,30 along the x axis, priorities 1,5,1.
	return &isrcore.Environment{
		Airports: []isrcore.Airport{{ID: "base", Pos: isrcore.Point{X: 0, Y: 0}}},
		Targets: []isrcore.Target{
			{ID: "t1", Pos: isrcore.Point{X: 10, Y: 0}, Priority: 1, Type: "optical"},
			{ID: "t2", Pos: isrcore.Point{X: 20, Y: 0}, Priority: 5, Type: "optical"},
			{ID: "t3", Pos: isrcore.Point{X: 30, Y: 0}, Priority: 1, Type: "optical"},
		},
	}
}

func TestSolveVehicleVisitsAllWhenBudgetGenerous(t *testing.T) {
	env := lineEnv()
	m, err := distmat.Build(env, []isrcore.NodeID{"base", "t1", "t2", "t3"})
	require.NoError(t, err)

	contract := isrcore.VehicleContract{
		ID: "v1", Enabled: true, FuelBudget: 1000, Start: "base", End: "base",
		EndMode: isrcore.EndReturn, Eligibility: isrcore.AllEligibility(),
	}
	route, err := orienteer.SolveVehicle(contract, env.Targets, m, orienteer.Options{})
	require.NoError(t, err)
	assert.ElementsMatch(t, []isrcore.NodeID{"t1", "t2", "t3"}, route.Targets())
	assert.Equal(t, isrcore.NodeID("base"), route.Start)
	assert.Equal(t, isrcore.NodeID("base"), route.End)
}

func TestSolveVehiclePrefersHigherPriorityUnderTightBudget(t *testing.T) {
	env := lineEnv()
	m, err := distmat.Build(env, []isrcore.NodeID{"base", "t1", "t2", "t3"})
	require.NoError(t, err)

	// Budget enough for base->t1->t2->base (40, t1 lies on the way) but not all
	// three (60). Visiting t2 before or after t1 ties at 40, so order is not checked.
	contract := isrcore.VehicleContract{
		ID: "v1", Enabled: true, FuelBudget: 45, Start: "base", End: "base",
		EndMode: isrcore.EndReturn, Eligibility: isrcore.AllEligibility(),
	}
	route, err := orienteer.SolveVehicle(contract, env.Targets, m, orienteer.Options{})
	require.NoError(t, err)
	assert.ElementsMatch(t, []isrcore.NodeID{"t1", "t2"}, route.Targets())
}

func TestSolveVehicleInfeasibleFuelReturnsTrivialFailure(t *testing.T) {
	env := lineEnv()
	m, err := distmat.Build(env, []isrcore.NodeID{"base", "t1"})
	require.NoError(t, err)

	contract := isrcore.VehicleContract{
		ID: "v1", Enabled: true, FuelBudget: 1, Start: "base", End: "t1",
		EndMode: isrcore.EndFixed, Eligibility: isrcore.AllEligibility(),
	}
	_, err = orienteer.SolveVehicle(contract, nil, m, orienteer.Options{})
	assert.ErrorIs(t, err, orienteer.ErrInfeasibleFuel)
}

func TestSolveVehicleHonorsFrozenPrefix(t *testing.T) {
	env := lineEnv()
	m, err := distmat.Build(env, []isrcore.NodeID{"base", "t1", "t2", "t3"})
	require.NoError(t, err)

	contract := isrcore.VehicleContract{
		ID: "v1", Enabled: true, FuelBudget: 1000, Start: "base", End: "base",
		EndMode: isrcore.EndReturn, Eligibility: isrcore.AllEligibility(),
		FrozenEdges: []isrcore.Edge{{From: "base", To: "t3"}},
	}
	route, err := orienteer.SolveVehicle(contract, env.Targets, m, orienteer.Options{})
	require.NoError(t, err)
	require.True(t, len(route.Nodes) >= 2)
	assert.Equal(t, isrcore.NodeID("t3"), route.Nodes[1])
	assert.True(t, route.ContainsFrozenPrefix(contract.FrozenEdges))
}

func TestSolveVehicleBestEndPicksOptimalAllowedEnd(t *testing.T) {
	env := lineEnv()
	// Add a second airport at t3's position so ending there is cheaper if allowed.
	env.Airports = append(env.Airports, isrcore.Airport{ID: "forward", Pos: isrcore.Point{X: 30, Y: 0}})
	m, err := distmat.Build(env, []isrcore.NodeID{"base", "forward", "t1", "t2", "t3"})
	require.NoError(t, err)

	contract := isrcore.VehicleContract{
		ID: "v1", Enabled: true, FuelBudget: 1000, Start: "base",
		EndMode: isrcore.EndBest, AllowedEnds: []isrcore.NodeID{"base", "forward"},
		Eligibility: isrcore.AllEligibility(),
	}
	route, err := orienteer.SolveVehicle(contract, env.Targets, m, orienteer.Options{})
	require.NoError(t, err)
	assert.Equal(t, isrcore.NodeID("forward"), route.End)
}

func TestSolveAllDispatchesBoundedPool(t *testing.T) {
	env := lineEnv()
	m, err := distmat.Build(env, []isrcore.NodeID{"base", "t1", "t2", "t3"})
	require.NoError(t, err)

	jobs := []orienteer.Job{
		{Contract: isrcore.VehicleContract{ID: "v1", Enabled: true, FuelBudget: 1000, Start: "base", End: "base", EndMode: isrcore.EndReturn, Eligibility: isrcore.AllEligibility()}, Candidates: env.Targets},
		{Contract: isrcore.VehicleContract{ID: "v2", Enabled: true, FuelBudget: 1000, Start: "base", End: "base", EndMode: isrcore.EndReturn, Eligibility: isrcore.AllEligibility()}, Candidates: nil},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	results := orienteer.SolveAll(ctx, jobs, m, isrcore.SolvePolicy{}, 2)
	require.Len(t, results, 2)
	for _, r := range results {
		assert.True(t, r.Feasible, r.Reason)
	}
}
