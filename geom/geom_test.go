package geom_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ksali98/isr-planner-sub001/geom"
	"github.com/ksali98/isr-planner-sub001/isrcore"
)

func TestPolylineLength(t *testing.T) {
	pts := []isrcore.Point{{X: 0, Y: 0}, {X: 3, Y: 0}, {X: 3, Y: 4}}
	assert.InDelta(t, 7.0, geom.PolylineLength(pts), 1e-9)
}

func TestSegmentIntersectsDisk(t *testing.T) {
	d := isrcore.ThreatDisk{ID: "d1", Center: isrcore.Point{X: 5, Y: 5}, Radius: 2}
	assert.True(t, geom.SegmentIntersectsDisk(isrcore.Point{X: 0, Y: 5}, isrcore.Point{X: 10, Y: 5}, d, isrcore.EpsGeom))
	assert.False(t, geom.SegmentIntersectsDisk(isrcore.Point{X: 0, Y: 0}, isrcore.Point{X: 0, Y: 10}, d, isrcore.EpsGeom))
}

func TestTangentPointsOnBoundary(t *testing.T) {
	d := isrcore.ThreatDisk{ID: "d1", Center: isrcore.Point{X: 0, Y: 0}, Radius: 5}
	p := isrcore.Point{X: 13, Y: 0}
	t1, t2, ok := geom.TangentPoints(p, d)
	require.True(t, ok)
	assert.InDelta(t, 5.0, t1.DistanceTo(d.Center), 1e-9)
	assert.InDelta(t, 5.0, t2.DistanceTo(d.Center), 1e-9)
	// Tangent line from p to t1 must be perpendicular to the radius at t1.
	radius := t1.Sub(d.Center)
	toP := p.Sub(t1)
	dot := radius.X*toP.X + radius.Y*toP.Y
	assert.InDelta(t, 0, dot, 1e-6)
}

func TestTangentPointsEngulfedIsRejected(t *testing.T) {
	d := isrcore.ThreatDisk{ID: "d1", Center: isrcore.Point{X: 0, Y: 0}, Radius: 5}
	_, _, ok := geom.TangentPoints(isrcore.Point{X: 1, Y: 1}, d)
	assert.False(t, ok)
}

func TestEscapePointPlacesPointOutsideWithMargin(t *testing.T) {
	d := isrcore.ThreatDisk{ID: "d1", Center: isrcore.Point{X: 5, Y: 5}, Radius: 3}
	escaped := geom.EscapePoint(d, isrcore.Point{X: 4, Y: 5}, 0.5)
	assert.InDelta(t, 1.5, escaped.X, 1e-9)
	assert.InDelta(t, 5.0, escaped.Y, 1e-9)
	assert.InDelta(t, d.Radius+0.5, escaped.DistanceTo(d.Center), 1e-9)
}

func TestEscapePointAtCenterPicksPlusX(t *testing.T) {
	d := isrcore.ThreatDisk{ID: "d1", Center: isrcore.Point{X: 5, Y: 5}, Radius: 3}
	escaped := geom.EscapePoint(d, d.Center, 0.5)
	assert.InDelta(t, 5+3.5, escaped.X, 1e-9)
	assert.InDelta(t, 5.0, escaped.Y, 1e-9)
}

func TestVisibilityPathStraightWhenUnblocked(t *testing.T) {
	a := isrcore.Point{X: 0, Y: 0}
	b := isrcore.Point{X: 10, Y: 0}
	path, err := geom.VisibilityPath(a, b, nil, isrcore.EpsGeom)
	require.NoError(t, err)
	assert.Equal(t, []isrcore.Point{a, b}, path)
}

// TestVisibilityPathDetourAroundSingleThreat covers a threat disk sitting
// between two points on the straight line between them: the detour must (a) be
// strictly longer than the straight-line distance, and (b) never pass through
// the disk's interior.
func TestVisibilityPathDetourAroundSingleThreat(t *testing.T) {
	a := isrcore.Point{X: 0, Y: 0}
	b := isrcore.Point{X: 10, Y: 10}
	d := isrcore.ThreatDisk{ID: "sam1", Center: isrcore.Point{X: 5, Y: 5}, Radius: 2}

	path, err := geom.VisibilityPath(a, b, []isrcore.ThreatDisk{d}, isrcore.EpsGeom)
	require.NoError(t, err)
	require.True(t, len(path) >= 2)
	assert.True(t, path[0].AlmostEqual(a))
	assert.True(t, path[len(path)-1].AlmostEqual(b))

	straight := a.DistanceTo(b)
	detour := geom.PolylineLength(path)
	assert.Greater(t, detour, straight)

	for i := 0; i+1 < len(path); i++ {
		assert.False(t, geom.SegmentIntersectsDisk(path[i], path[i+1], d, -1e-7),
			"segment %d crosses the threat interior", i)
	}
}

func TestVisibilityPathEngulfedEndpointFails(t *testing.T) {
	d := isrcore.ThreatDisk{ID: "d1", Center: isrcore.Point{X: 5, Y: 5}, Radius: 2}
	_, err := geom.VisibilityPath(isrcore.Point{X: 5, Y: 5}, isrcore.Point{X: 20, Y: 20}, []isrcore.ThreatDisk{d}, isrcore.EpsGeom)
	assert.ErrorIs(t, err, geom.ErrEngulfedEndpoint)
}

func TestArcLengthQuarterCircle(t *testing.T) {
	d := isrcore.ThreatDisk{ID: "d1", Center: isrcore.Point{X: 0, Y: 0}, Radius: 2}
	from := isrcore.Point{X: 2, Y: 0}
	to := isrcore.Point{X: 0, Y: 2}
	got := geom.ArcLength(d, from, to, true)
	assert.InDelta(t, math.Pi, got, 1e-9)
}
