package trajectory_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ksali98/isr-planner-sub001/distmat"
	"github.com/ksali98/isr-planner-sub001/isrcore"
	"github.com/ksali98/isr-planner-sub001/trajectory"
)

func sampleEnv() *isrcore.Environment {
	return &isrcore.Environment{
		Airports: []isrcore.Airport{{ID: "base", Pos: isrcore.Point{X: 0, Y: 0}}},
		Targets: []isrcore.Target{
			{ID: "t1", Pos: isrcore.Point{X: 10, Y: 10}, Priority: 3, Type: "optical"},
			{ID: "t2", Pos: isrcore.Point{X: 20, Y: 0}, Priority: 1, Type: "sigint"},
		},
		Threats: []isrcore.ThreatDisk{
			{ID: "sam1", Center: isrcore.Point{X: 5, Y: 5}, Radius: 2},
		},
	}
}

func TestBuildReconciliationWithMatrixLength(t *testing.T) {
	env := sampleEnv()
	m, err := distmat.Build(env, []isrcore.NodeID{"base", "t1", "t2"})
	require.NoError(t, err)

	route := isrcore.Route{Start: "base", End: "base", Nodes: []isrcore.NodeID{"base", "t1", "t2", "base"}}
	traj, err := trajectory.Build(route, m)
	require.NoError(t, err)

	matrixLen, err := trajectory.MatrixLength(route, m)
	require.NoError(t, err)

	tol := isrcore.EpsLength*matrixLen + isrcore.EpsLength
	assert.InDelta(t, matrixLen, traj.Length(), tol)
}

func TestBuildEndpointsMatchRoute(t *testing.T) {
	env := sampleEnv()
	m, err := distmat.Build(env, []isrcore.NodeID{"base", "t1", "t2"})
	require.NoError(t, err)

	route := isrcore.Route{Start: "base", End: "base", Nodes: []isrcore.NodeID{"base", "t1", "t2", "base"}}
	traj, err := trajectory.Build(route, m)
	require.NoError(t, err)
	require.NotEmpty(t, traj.Points)

	assert.True(t, traj.Points[0].AlmostEqual(isrcore.Point{X: 0, Y: 0}))
	assert.True(t, traj.Points[len(traj.Points)-1].AlmostEqual(isrcore.Point{X: 0, Y: 0}))
}

func TestBuildRejectsShortRoute(t *testing.T) {
	_, err := trajectory.Build(isrcore.Route{Nodes: []isrcore.NodeID{"base"}}, nil)
	assert.ErrorIs(t, err, trajectory.ErrEmptyRoute)
}

func straightLine() []isrcore.Point {
	return []isrcore.Point{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}}
}

func TestPointAtDistanceInterpolatesWithinLeg(t *testing.T) {
	p, err := trajectory.PointAtDistance(straightLine(), 4)
	require.NoError(t, err)
	assert.True(t, p.AlmostEqual(isrcore.Point{X: 4, Y: 0}))
}

func TestPointAtDistanceCrossesLegBoundary(t *testing.T) {
	p, err := trajectory.PointAtDistance(straightLine(), 13)
	require.NoError(t, err)
	assert.True(t, p.AlmostEqual(isrcore.Point{X: 10, Y: 3}))
}

func TestPointAtDistanceOutOfRangeErrors(t *testing.T) {
	_, err := trajectory.PointAtDistance(straightLine(), 100)
	assert.ErrorIs(t, err, trajectory.ErrDistanceOutOfRange)
}

func TestTruncateDropsTailPastCutDistance(t *testing.T) {
	out, err := trajectory.Truncate(straightLine(), 13)
	require.NoError(t, err)
	require.Len(t, out, 3)
	assert.True(t, out[0].AlmostEqual(isrcore.Point{X: 0, Y: 0}))
	assert.True(t, out[1].AlmostEqual(isrcore.Point{X: 10, Y: 0}))
	assert.True(t, out[2].AlmostEqual(isrcore.Point{X: 10, Y: 3}))
}

func TestTruncateAtExactVertexDoesNotDuplicate(t *testing.T) {
	out, err := trajectory.Truncate(straightLine(), 10)
	require.NoError(t, err)
	assert.Len(t, out, 2)
}
