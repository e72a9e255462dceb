package optimize_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ksali98/isr-planner-sub001/distmat"
	"github.com/ksali98/isr-planner-sub001/isrcore"
	"github.com/ksali98/isr-planner-sub001/optimize"
)

func buildMatrix(t *testing.T, env *isrcore.Environment, nodes []isrcore.NodeID) isrcore.Matrix {
	m, err := distmat.Build(env, nodes)
	require.NoError(t, err)
	return m
}

// TestTrajectorySwapMovesTargetOntoCheaperVehicle covers two vehicles with a
// low-priority target sitting in the middle. D1@(0,0) is
// detouring to visit T3@(17,0) off the end of its route to T1@(10,0); D2@(20,0)
// already passes directly over (17,0) en route to T2@(15,0), so OSD(T3,D2)==0
// while SSD(T3,D1)>0. The swap relocates T3 onto D2 and strictly shortens the
// combined route length.
func TestTrajectorySwapMovesTargetOntoCheaperVehicle(t *testing.T) {
	env := &isrcore.Environment{
		Airports: []isrcore.Airport{
			{ID: "d1", Pos: isrcore.Point{X: 0, Y: 0}},
			{ID: "d2", Pos: isrcore.Point{X: 20, Y: 0}},
		},
		Targets: []isrcore.Target{
			{ID: "t1", Pos: isrcore.Point{X: 10, Y: 0}, Priority: 3, Type: "optical"},
			{ID: "t2", Pos: isrcore.Point{X: 15, Y: 0}, Priority: 3, Type: "optical"},
			{ID: "t3", Pos: isrcore.Point{X: 17, Y: 0}, Priority: 0, Type: "optical"},
		},
	}
	nodes := []isrcore.NodeID{"d1", "d2", "t1", "t2", "t3"}
	m := buildMatrix(t, env, nodes)

	contracts := map[isrcore.NodeID]isrcore.VehicleContract{
		"d1": {ID: "d1", Enabled: true, FuelBudget: 100, Start: "d1", End: "d1", EndMode: isrcore.EndReturn, Eligibility: isrcore.AllEligibility()},
		"d2": {ID: "d2", Enabled: true, FuelBudget: 100, Start: "d2", End: "d2", EndMode: isrcore.EndReturn, Eligibility: isrcore.AllEligibility()},
	}
	targets := map[isrcore.NodeID]isrcore.Target{"t1": env.Targets[0], "t2": env.Targets[1], "t3": env.Targets[2]}

	r1 := isrcore.Route{Start: "d1", End: "d1", Nodes: []isrcore.NodeID{"d1", "t1", "t3", "d1"}}
	r2 := isrcore.Route{Start: "d2", End: "d2", Nodes: []isrcore.NodeID{"d2", "t2", "d2"}}

	r1Length := 10.0 + 7.0 + 17.0 // d1->t1 (10) + t1->t3 (7) + t3->d1 (17)
	r2Length := 5.0 + 5.0         // d2->t2 (5) + t2->d2 (5)

	sol := &isrcore.Solution{
		Routes: map[isrcore.NodeID]isrcore.VehicleResult{
			"d1": {VehicleID: "d1", Route: r1, Length: r1Length, FuelRemaining: 100 - r1Length, Points: 3, Feasible: true},
			"d2": {VehicleID: "d2", Route: r2, Length: r2Length, FuelRemaining: 100 - r2Length, Points: 3, Feasible: true},
		},
		Allocation: map[isrcore.NodeID][]isrcore.NodeID{
			"d1": {"t1", "t3"},
			"d2": {"t2"},
		},
		Metrics: isrcore.Metrics{TotalPoints: 6, TotalLength: r1Length + r2Length},
	}

	ctx := optimize.Context{Env: env, Matrix: m, Contracts: contracts, Targets: targets}

	totalBefore := sol.Routes["d1"].Length + sol.Routes["d2"].Length
	outcome := optimize.TrajectorySwap(sol, ctx)
	require.True(t, outcome.Applied)

	assert.NotContains(t, sol.Routes["d1"].Route.Targets(), isrcore.NodeID("t3"))
	assert.Contains(t, sol.Routes["d2"].Route.Targets(), isrcore.NodeID("t3"))

	totalAfter := sol.Routes["d1"].Length + sol.Routes["d2"].Length
	assert.Less(t, totalAfter, totalBefore)
	assert.InDelta(t, 20.0, sol.Routes["d1"].Length, 1e-6)
	assert.InDelta(t, 10.0, sol.Routes["d2"].Length, 1e-6)
}

func TestInsertMissedAddsUnvisitedTarget(t *testing.T) {
	env := &isrcore.Environment{
		Airports: []isrcore.Airport{{ID: "base", Pos: isrcore.Point{X: 0, Y: 0}}},
		Targets: []isrcore.Target{
			{ID: "t1", Pos: isrcore.Point{X: 10, Y: 0}, Priority: 1, Type: "optical"},
			{ID: "miss", Pos: isrcore.Point{X: 10, Y: 1}, Priority: 5, Type: "optical"},
		},
	}
	nodes := []isrcore.NodeID{"base", "t1", "miss"}
	m := buildMatrix(t, env, nodes)

	contracts := map[isrcore.NodeID]isrcore.VehicleContract{
		"v1": {ID: "v1", Enabled: true, FuelBudget: 1000, Start: "base", End: "base", EndMode: isrcore.EndReturn, Eligibility: isrcore.AllEligibility()},
	}
	targets := map[isrcore.NodeID]isrcore.Target{"t1": env.Targets[0], "miss": env.Targets[1]}

	route := isrcore.Route{Start: "base", End: "base", Nodes: []isrcore.NodeID{"base", "t1", "base"}}
	routeLen := 10.0 + 10.0

	sol := &isrcore.Solution{
		Routes: map[isrcore.NodeID]isrcore.VehicleResult{
			"v1": {VehicleID: "v1", Route: route, Length: routeLen, FuelRemaining: 1000 - routeLen, Points: 1, Feasible: true},
		},
		Allocation: map[isrcore.NodeID][]isrcore.NodeID{"v1": {"t1"}},
		Metrics:    isrcore.Metrics{TotalPoints: 1, TotalLength: routeLen, UnvisitedTargets: []isrcore.NodeID{"miss"}},
	}

	ctx := optimize.Context{Env: env, Matrix: m, Contracts: contracts, Targets: targets}
	outcome := optimize.InsertMissed(sol, ctx)
	require.True(t, outcome.Applied)
	assert.Contains(t, sol.Routes["v1"].Route.Targets(), isrcore.NodeID("miss"))
	assert.NotContains(t, sol.Metrics.UnvisitedTargets, isrcore.NodeID("miss"))
}

// twoOptEnv builds a fixed-endpoint route where visiting m2 before m1 crosses
// the straight path and costs strictly more than visiting m1 before m2.
func twoOptEnv() *isrcore.Environment {
	return &isrcore.Environment{
		Airports: []isrcore.Airport{
			{ID: "s", Pos: isrcore.Point{X: 0, Y: 0}},
			{ID: "e", Pos: isrcore.Point{X: 0, Y: 5}},
		},
		Targets: []isrcore.Target{
			{ID: "m1", Pos: isrcore.Point{X: 10, Y: 0}, Priority: 1, Type: "optical"},
			{ID: "m2", Pos: isrcore.Point{X: 10, Y: 5}, Priority: 1, Type: "optical"},
		},
	}
}

func TestTwoOptUncrossStraightensCrossedRoute(t *testing.T) {
	env := twoOptEnv()
	nodes := []isrcore.NodeID{"s", "e", "m1", "m2"}
	m := buildMatrix(t, env, nodes)

	route := isrcore.Route{Start: "s", End: "e", Nodes: []isrcore.NodeID{"s", "m2", "m1", "e"}}
	d1, _ := m.Distance("s", "m2")
	d2, _ := m.Distance("m2", "m1")
	d3, _ := m.Distance("m1", "e")
	length := d1 + d2 + d3

	contracts := map[isrcore.NodeID]isrcore.VehicleContract{
		"v1": {ID: "v1", Enabled: true, Start: "s", End: "e"},
	}
	sol := &isrcore.Solution{
		Routes: map[isrcore.NodeID]isrcore.VehicleResult{
			"v1": {VehicleID: "v1", Route: route, Length: length, Feasible: true},
		},
		Allocation: map[isrcore.NodeID][]isrcore.NodeID{"v1": {"m2", "m1"}},
	}
	ctx := optimize.Context{Env: env, Matrix: m, Contracts: contracts, Targets: map[isrcore.NodeID]isrcore.Target{"m1": env.Targets[0], "m2": env.Targets[1]}}

	before := sol.Routes["v1"].Length
	outcome := optimize.TwoOptUncross(sol, ctx)
	require.True(t, outcome.Applied)
	after := sol.Routes["v1"].Length
	assert.Less(t, after, before)
	assert.Equal(t, []isrcore.NodeID{"s", "m1", "m2", "e"}, sol.Routes["v1"].Route.Nodes)
}

func TestTwoOptUncrossRespectsFrozenEdges(t *testing.T) {
	env := twoOptEnv()
	nodes := []isrcore.NodeID{"s", "e", "m1", "m2"}
	m := buildMatrix(t, env, nodes)

	route := isrcore.Route{Start: "s", End: "e", Nodes: []isrcore.NodeID{"s", "m2", "m1", "e"}}
	d1, _ := m.Distance("s", "m2")
	d2, _ := m.Distance("m2", "m1")
	d3, _ := m.Distance("m1", "e")
	length := d1 + d2 + d3

	contracts := map[isrcore.NodeID]isrcore.VehicleContract{
		"v1": {
			ID: "v1", Enabled: true, Start: "s", End: "e",
			FrozenEdges: []isrcore.Edge{{From: "s", To: "m2"}},
		},
	}
	sol := &isrcore.Solution{
		Routes: map[isrcore.NodeID]isrcore.VehicleResult{
			"v1": {VehicleID: "v1", Route: route, Length: length, Feasible: true},
		},
		Allocation: map[isrcore.NodeID][]isrcore.NodeID{"v1": {"m2", "m1"}},
	}
	ctx := optimize.Context{Env: env, Matrix: m, Contracts: contracts, Targets: map[isrcore.NodeID]isrcore.Target{"m1": env.Targets[0], "m2": env.Targets[1]}}

	outcome := optimize.TwoOptUncross(sol, ctx)
	assert.False(t, outcome.Applied)
	assert.Equal(t, isrcore.NodeID("m2"), sol.Routes["v1"].Route.Nodes[1])
}
