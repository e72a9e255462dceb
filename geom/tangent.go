// Package geom - tangent-line and arc construction from an external point to a disk.
package geom

import (
	"math"

	"github.com/ksali98/isr-planner-sub001/isrcore"
)

// TangentPoints returns the two points on disk d's boundary where a line from the
// external point p is tangent to the circle. t1 is the point reached by rotating
// the center→p bearing by +beta (counter-clockwise), t2 by -beta (clockwise), where
// beta = acos(r/d) is the angle at the center between the center→p bearing and the
// center→tangent-point bearing.
//
// ok is false if p lies inside or on the disk boundary (within EpsGeom), where no
// tangent exists.
//
// Complexity: O(1).
func TangentPoints(p isrcore.Point, d isrcore.ThreatDisk) (t1, t2 isrcore.Point, ok bool) {
	dist := p.DistanceTo(d.Center)
	if dist <= d.Radius+isrcore.EpsGeom {
		return isrcore.Point{}, isrcore.Point{}, false
	}

	phi := math.Atan2(p.Y-d.Center.Y, p.X-d.Center.X)
	beta := math.Acos(clamp(d.Radius/dist, -1, 1))

	t1 = isrcore.Point{
		X: d.Center.X + d.Radius*math.Cos(phi+beta),
		Y: d.Center.Y + d.Radius*math.Sin(phi+beta),
	}
	t2 = isrcore.Point{
		X: d.Center.X + d.Radius*math.Cos(phi-beta),
		Y: d.Center.Y + d.Radius*math.Sin(phi-beta),
	}
	return t1, t2, true
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// arcAngle returns the bearing from d's center to pt.
func arcAngle(d isrcore.ThreatDisk, pt isrcore.Point) float64 {
	return math.Atan2(pt.Y-d.Center.Y, pt.X-d.Center.X)
}

// SampleArc returns a polyline of ArcSamples+1 points tracing d's boundary from
// "from" to "to", going counter-clockwise if ccw is true, clockwise otherwise.
// Both endpoints are assumed to already lie on (or extremely near) d's boundary.
// The interior samples sit at radius r/cos(step), where step is the angle between
// samples, so every chord stays outside the disk (touching it at most at one point).
//
// Complexity: O(ArcSamples).
func SampleArc(d isrcore.ThreatDisk, from, to isrcore.Point, ccw bool) []isrcore.Point {
	a0 := arcAngle(d, from)
	a1 := arcAngle(d, to)

	var sweep float64
	if ccw {
		sweep = normalizeSweep(a1 - a0)
	} else {
		sweep = -normalizeSweep(a0 - a1)
	}

	n := ArcSamples
	step := sweep / float64(n)
	outer := d.Radius / math.Cos(step)
	pts := make([]isrcore.Point, 0, n+1)
	for i := 0; i <= n; i++ {
		theta := a0 + step*float64(i)
		r := outer
		if i == 0 || i == n {
			r = d.Radius
		}
		pts = append(pts, isrcore.Point{
			X: d.Center.X + r*math.Cos(theta),
			Y: d.Center.Y + r*math.Sin(theta),
		})
	}
	return pts
}

// ArcLength returns the boundary arc length from "from" to "to" on d, in the
// direction requested. This is the true closed-form length; SampleArc's
// polyline length converges to it as ArcSamples grows.
func ArcLength(d isrcore.ThreatDisk, from, to isrcore.Point, ccw bool) float64 {
	a0 := arcAngle(d, from)
	a1 := arcAngle(d, to)
	var sweep float64
	if ccw {
		sweep = normalizeSweep(a1 - a0)
	} else {
		sweep = normalizeSweep(a0 - a1)
	}
	return d.Radius * sweep
}

// normalizeSweep maps an angular delta into [0, 2π) so arc sweeps are always taken
// the "positive" way around in the requested rotational sense.
func normalizeSweep(delta float64) float64 {
	const twoPi = 2 * math.Pi
	d := math.Mod(delta, twoPi)
	if d < 0 {
		d += twoPi
	}
	return d
}

// EscapePoint resolves an engulfed position to a point outside disk d, along the
// ray from d's center through pos, at distance d.Radius+margin. If pos coincides
// with the center (within EpsGeom), the +x direction is chosen deterministically
//.
func EscapePoint(d isrcore.ThreatDisk, pos isrcore.Point, margin float64) isrcore.Point {
	dir := pos.Sub(d.Center)
	n := dir.Norm()
	if n <= isrcore.EpsGeom {
		dir = isrcore.Point{X: 1, Y: 0}
		n = 1
	}
	unit := dir.Scale(1 / n)
	return d.Center.Add(unit.Scale(d.Radius + margin))
}
