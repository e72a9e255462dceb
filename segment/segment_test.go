package segment_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ksali98/isr-planner-sub001/isrcore"
	"github.com/ksali98/isr-planner-sub001/segment"
)

func lineEnv(targets ...isrcore.Target) *isrcore.Environment {
	return &isrcore.Environment{
		Airports: []isrcore.Airport{{ID: "base", Pos: isrcore.Point{X: 0, Y: 0}}},
		Targets:  targets,
	}
}

func enabledVehicle(id isrcore.NodeID, fuel float64) isrcore.VehicleContract {
	return isrcore.VehicleContract{
		ID: id, Enabled: true, FuelBudget: fuel, Start: "base", End: "base",
		EndMode: isrcore.EndReturn, Eligibility: isrcore.AllEligibility(),
	}
}

func TestOpenAcceptFullLifecycleTerminatesMission(t *testing.T) {
	env := lineEnv(
		isrcore.Target{ID: "t1", Pos: isrcore.Point{X: 10, Y: 0}, Priority: 2, Type: "optical"},
		isrcore.Target{ID: "t2", Pos: isrcore.Point{X: 20, Y: 0}, Priority: 2, Type: "optical"},
	)
	contracts := []isrcore.VehicleContract{enabledVehicle("v1", 1000)}

	m := segment.NewMachine()
	assert.Equal(t, segment.StateEmpty, m.State())

	require.NoError(t, m.Open(context.Background(), env, contracts, isrcore.SolvePolicy{}))
	assert.Equal(t, segment.StateOpen, m.State())

	require.NoError(t, m.Accept())
	assert.Equal(t, segment.StateClosed, m.State())

	msn := m.Mission()
	require.Len(t, msn.Segments, 1)
	seg0 := msn.Segments[0]
	assert.Equal(t, 0, seg0.Index)
	assert.InDelta(t, 0, seg0.StartDist, 1e-9)
	require.NotNil(t, seg0.EndDist)
	assert.InDelta(t, 40, *seg0.EndDist, 1e-6) // base->t1->t2->base = 10+10+20 = 40
	assert.Len(t, seg0.FrozenTargets, 0)

	// Re-opening with an environment that still lists t1/t2 must filter them out:
	// they were visited in segment 0 and are now frozen by id.
	require.NoError(t, m.Open(context.Background(), env, contracts, isrcore.SolvePolicy{}))
	require.NoError(t, m.Accept())

	msn = m.Mission()
	require.Len(t, msn.Segments, 2)
	seg1 := msn.Segments[1]
	assert.Len(t, seg1.FrozenTargets, 2)
	assert.Empty(t, seg1.ActiveTargets)
	assert.Equal(t, segment.StateTerminated, m.State())
}

func TestCutEscapesEngulfedPositionAndFreezesReachedTarget(t *testing.T) {
	env := lineEnv(
		isrcore.Target{ID: "t1", Pos: isrcore.Point{X: 10, Y: 0}, Priority: 1, Type: "optical"},
		isrcore.Target{ID: "t2", Pos: isrcore.Point{X: 30, Y: 0}, Priority: 1, Type: "optical"},
	)
	contracts := []isrcore.VehicleContract{enabledVehicle("v1", 1000)}

	m := segment.NewMachine()
	require.NoError(t, m.Open(context.Background(), env, contracts, isrcore.SolvePolicy{}))

	nextThreats := []isrcore.ThreatDisk{{ID: "sam1", Center: isrcore.Point{X: 12.5, Y: 0}, Radius: 3}}
	starts, err := m.Cut(context.Background(), 15, nextThreats)
	require.NoError(t, err)

	s, ok := starts["v1"]
	require.True(t, ok)
	assert.True(t, s.CutPosition.AlmostEqual(isrcore.Point{X: 15, Y: 0}))
	assert.True(t, s.Escaped)
	assert.True(t, s.Pos.AlmostEqual(isrcore.Point{X: 16, Y: 0}))

	msn := m.Mission()
	seg0 := msn.Segments[0]
	require.NotNil(t, seg0.EndDist)
	assert.InDelta(t, 15, *seg0.EndDist, 1e-9)
	require.Len(t, seg0.FrozenTargets, 1)
	assert.Equal(t, isrcore.NodeID("t1"), seg0.FrozenTargets[0].ID)

	pos, ok := seg0.CutPositionsAtEnd["v1"]
	require.True(t, ok)
	assert.True(t, pos.AlmostEqual(isrcore.Point{X: 16, Y: 0}))
}

func TestCutRejectsDistanceOutsideOpenSegmentRange(t *testing.T) {
	env := lineEnv(isrcore.Target{ID: "t1", Pos: isrcore.Point{X: 10, Y: 0}, Priority: 1, Type: "optical"})
	contracts := []isrcore.VehicleContract{enabledVehicle("v1", 1000)}

	m := segment.NewMachine()
	require.NoError(t, m.Open(context.Background(), env, contracts, isrcore.SolvePolicy{}))

	_, err := m.Cut(context.Background(), 0, nil)
	assert.ErrorIs(t, err, segment.ErrCutDistanceOutOfRange)

	_, err = m.Cut(context.Background(), 10000, nil)
	assert.ErrorIs(t, err, segment.ErrCutDistanceOutOfRange)
}

func TestDisabledVehicleCarriesEndStateForwardAcrossSegments(t *testing.T) {
	env := lineEnv(isrcore.Target{ID: "t1", Pos: isrcore.Point{X: 10, Y: 0}, Priority: 1, Type: "optical"})
	contracts := []isrcore.VehicleContract{
		enabledVehicle("v1", 1000),
		{ID: "v2", Enabled: false, FuelBudget: 77, Start: "base", End: "base", EndMode: isrcore.EndReturn},
	}

	m := segment.NewMachine()
	require.NoError(t, m.Open(context.Background(), env, contracts, isrcore.SolvePolicy{}))
	require.NoError(t, m.Accept())

	msn := m.Mission()
	v2seg0 := msn.Segments[0].Trajectories["v2"]
	assert.Empty(t, v2seg0.RenderFull)
	assert.InDelta(t, 77, v2seg0.EndState.FuelRemaining, 1e-9)

	require.NoError(t, m.Open(context.Background(), lineEnv(), contracts, isrcore.SolvePolicy{}))
	require.NoError(t, m.Accept())

	msn = m.Mission()
	v2seg1 := msn.Segments[1].Trajectories["v2"]
	assert.Empty(t, v2seg1.RenderFull)
	assert.InDelta(t, 77, v2seg1.EndState.FuelRemaining, 1e-9)
	assert.Empty(t, v2seg1.Route.Nodes)
}

func TestAcceptWithoutOpenSegmentReturnsError(t *testing.T) {
	m := segment.NewMachine()
	err := m.Accept()
	assert.ErrorIs(t, err, segment.ErrNoOpenSegment)
}
