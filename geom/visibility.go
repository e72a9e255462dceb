// Package geom - threat-aware visibility path search.
//
// VisibilityPath finds a polyline between two external points that never crosses
// the interior of any threat disk. The algorithm tries the straight segment first;
// when it is blocked, it bypasses the nearest blocking disk via its tangent points,
// recursing on the two sub-legs (start→tangent, tangent→end) against the remaining
// disks, and samples the boundary arc between the two tangent points in whichever
// rotational sense keeps the path outside the disk. Both wrap directions (CW/CCW)
// are built and the shorter one is kept; ties resolve to the lower-y tangent point
//.
//
// This is a practical simplification of a full continuous visibility graph: rather
// than building one graph over all endpoints and all disks' tangent points at once,
// disks are peeled off one at a time, nearest-first, with each bypass's sub-legs
// recursively resolved against the remaining disks. For the disk layouts this
// module deals with (isolated or lightly-overlapping no-fly zones) the two give the
// same result; MaxBypassDepth bounds the recursion for adversarial/overlapping
// inputs.
package geom

import (
	"github.com/ksali98/isr-planner-sub001/isrcore"
)

// VisibilityPath returns a threat-avoiding polyline from a to b. Its length
// (PolylineLength(path)) is the value package distmat stores as the shortest
// threat-avoiding distance between a and b.
//
// Errors:
//   - ErrEngulfedEndpoint if a or b lies inside any disk in threats.
//   - ErrNoTangent for a degenerate tangent construction (should not occur once
//     engulfment is excluded, but guarded defensively).
//   - ErrUnresolvedVisibility if the bypass recursion exceeds MaxBypassDepth.
func VisibilityPath(a, b isrcore.Point, threats []isrcore.ThreatDisk, eps float64) ([]isrcore.Point, error) {
	return bypass(a, b, threats, eps, 0)
}

func bypass(a, b isrcore.Point, threats []isrcore.ThreatDisk, eps float64, depth int) ([]isrcore.Point, error) {
	for _, d := range threats {
		if d.Contains(a) || d.Contains(b) {
			return nil, ErrEngulfedEndpoint
		}
	}

	hits := anyIntersected(a, b, threats, eps)
	if len(hits) == 0 {
		return []isrcore.Point{a, b}, nil
	}
	if depth >= MaxBypassDepth {
		return nil, ErrUnresolvedVisibility
	}

	d := hits[0]
	// Wrap a slightly enlarged copy of d so the tangent legs and the arc clear
	// d by more than eps instead of touching its boundary.
	wrap := d
	wrap.Radius += 2 * eps
	ta1, ta2, ok := TangentPoints(a, wrap)
	if !ok {
		return nil, ErrNoTangent
	}
	tb1, tb2, ok := TangentPoints(b, wrap)
	if !ok {
		return nil, ErrNoTangent
	}
	rest := removeDisk(threats, d)

	pathCCW, errCCW := buildWrap(a, b, wrap, ta1, tb2, true, rest, eps, depth)
	pathCW, errCW := buildWrap(a, b, wrap, ta2, tb1, false, rest, eps, depth)

	switch {
	case errCCW == nil && errCW == nil:
		lenCCW := PolylineLength(pathCCW)
		lenCW := PolylineLength(pathCW)
		if lenCCW < lenCW-isrcore.EpsGeom {
			return pathCCW, nil
		}
		if lenCW < lenCCW-isrcore.EpsGeom {
			return pathCW, nil
		}
		// Tie: lower-y tangent point wins.
		if ta1.Y <= ta2.Y {
			return pathCCW, nil
		}
		return pathCW, nil
	case errCCW == nil:
		return pathCCW, nil
	case errCW == nil:
		return pathCW, nil
	default:
		return nil, errCCW
	}
}

// buildWrap assembles one candidate detour around disk d: a recursively-resolved
// leg from a to the entry tangent point, the sampled boundary arc to the exit
// tangent point, and a recursively-resolved leg from there to b. The join points
// are de-duplicated within EpsGeom.
func buildWrap(a, b isrcore.Point, d isrcore.ThreatDisk, entryTangent, exitTangent isrcore.Point, ccw bool, rest []isrcore.ThreatDisk, eps float64, depth int) ([]isrcore.Point, error) {
	leg1, err := bypass(a, entryTangent, rest, eps, depth+1)
	if err != nil {
		return nil, err
	}
	arc := SampleArc(d, entryTangent, exitTangent, ccw)
	leg2, err := bypass(exitTangent, b, rest, eps, depth+1)
	if err != nil {
		return nil, err
	}

	out := make([]isrcore.Point, 0, len(leg1)+len(arc)+len(leg2))
	out = append(out, leg1[:len(leg1)-1]...) // drop duplicate of entryTangent
	out = append(out, arc...)                // arc: entryTangent ... exitTangent
	out = append(out, leg2[1:]...)            // drop duplicate of exitTangent
	return out, nil
}

func removeDisk(threats []isrcore.ThreatDisk, d isrcore.ThreatDisk) []isrcore.ThreatDisk {
	out := make([]isrcore.ThreatDisk, 0, len(threats))
	for _, t := range threats {
		if t.ID != d.ID {
			out = append(out, t)
		}
	}
	return out
}
