// Package geom - point/segment/disk predicates and polyline length.
package geom

import (
	"github.com/ksali98/isr-planner-sub001/isrcore"
)

// PolylineLength returns the sum of consecutive-point Euclidean distances along pts.
// This is the module's single definition of "path length" (see doc.go).
//
// Complexity: O(n).
func PolylineLength(pts []isrcore.Point) float64 {
	var total float64
	for i := 0; i+1 < len(pts); i++ {
		total += pts[i].DistanceTo(pts[i+1])
	}
	return total
}

// PointToSegmentDistance returns the perpendicular distance from p to the closed
// segment [a,b] (the distance to the nearest endpoint if p's projection falls
// outside the segment). Used both by SegmentIntersectsDisk and by the
// self/other-segment-distance checks driving trajectory-swap.
//
// Complexity: O(1).
func PointToSegmentDistance(p, a, b isrcore.Point) float64 {
	abx := b.X - a.X
	aby := b.Y - a.Y
	lenSq := abx*abx + aby*aby

	var closest isrcore.Point
	if lenSq <= 1e-18 {
		// Degenerate zero-length segment: treat as a single point.
		closest = a
	} else {
		t := ((p.X-a.X)*abx + (p.Y-a.Y)*aby) / lenSq
		if t < 0 {
			t = 0
		} else if t > 1 {
			t = 1
		}
		closest = isrcore.Point{X: a.X + t*abx, Y: a.Y + t*aby}
	}
	return p.DistanceTo(closest)
}

// SegmentIntersectsDisk reports whether the closed segment [a,b] intersects the
// interior or (within eps) the boundary of disk d. Grazing within eps counts as
// intersecting.
//
// Complexity: O(1).
func SegmentIntersectsDisk(a, b isrcore.Point, d isrcore.ThreatDisk, eps float64) bool {
	dist := PointToSegmentDistance(d.Center, a, b)
	return dist <= d.Radius+eps
}

// anyIntersected returns every disk in threats whose interior/near-boundary the
// segment [a,b] crosses, sorted by the distance from a to the disk's near edge
// (nearest first), for a deterministic bypass order.
func anyIntersected(a, b isrcore.Point, threats []isrcore.ThreatDisk, eps float64) []isrcore.ThreatDisk {
	var hit []isrcore.ThreatDisk
	for _, d := range threats {
		if SegmentIntersectsDisk(a, b, d, eps) {
			hit = append(hit, d)
		}
	}
	if len(hit) < 2 {
		return hit
	}
	// Order by distance from a to the disk center minus radius (nearest obstruction
	// first) for deterministic, stable bypass recursion.
	for i := 1; i < len(hit); i++ {
		j := i
		for j > 0 && nearness(a, hit[j]) < nearness(a, hit[j-1]) {
			hit[j], hit[j-1] = hit[j-1], hit[j]
			j--
		}
	}
	return hit
}

func nearness(a isrcore.Point, d isrcore.ThreatDisk) float64 {
	return a.DistanceTo(d.Center) - d.Radius
}

