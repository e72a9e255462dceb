// Package geom implements the geometry kernel: point/segment/disk predicates,
// tangent-line construction, arc sampling along a disk boundary, and a threat-aware
// visibility path between two external points. Every length produced by this
// package — including the polylines consumed by package distmat and package
// trajectory — is defined as the sum of consecutive-point Euclidean distances along
// the emitted polyline, never a closed-form arc-length formula. This keeps the
// matrix-distance-vs-trajectory-length reconciliation exact by construction:
// both values are computed from the same points.
//
// Edge-case policies:
//   - A point strictly inside a disk is "engulfed"; no ordinary path may originate
//     or terminate there. EscapePoint resolves an engulfed position to a usable
//     planning point; VisibilityPath itself reports failure for engulfed endpoints.
//   - A segment that grazes a disk within EpsGeom is treated as intersecting, so
//     paths stay strictly outside (never skimming the boundary).
//   - Ties between clockwise/counter-clockwise wraps around one disk resolve by
//     total length, then by the lower-y tangent point.
package geom

import "errors"

// Sentinel errors for geometry-kernel failures.
var (
	// ErrEngulfedEndpoint indicates a or b lies strictly inside a threat disk and
	// was not escaped before calling VisibilityPath.
	ErrEngulfedEndpoint = errors.New("geom: endpoint engulfed by threat disk")

	// ErrNoTangent indicates a degenerate tangent construction (point on the
	// boundary exactly, or coincident with the disk center).
	ErrNoTangent = errors.New("geom: no tangent from point to disk")

	// ErrUnresolvedVisibility indicates the recursive bypass search exceeded its
	// depth budget without clearing every intersected disk.
	ErrUnresolvedVisibility = errors.New("geom: visibility path did not resolve within budget")
)

// ArcSamples is the number of chord segments SampleArc uses for any arc, whatever its sweep.
// Higher values tighten the polyline's approximation of the true arc at the cost
// of more points; this is a policy default (see isrcore.EpsGeom/EpsLength for
// the tolerances this interacts with).
const ArcSamples = 48

// MaxBypassDepth bounds the recursive disk-bypass search in VisibilityPath.
const MaxBypassDepth = 8
