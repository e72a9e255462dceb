// File: types.go
// Role: Point, node identifiers, and the static environment entities (airports,
//       targets, threat disks) plus their numeric tolerances.
// Determinism:
//   - All geometry is double-precision; tolerances below are the single source of
//     truth for every package that compares positions or lengths.
// Concurrency:
//   - All types here are plain values; callers own synchronization of any shared
//     mutable collection built from them.
// AI-HINT (file):
//   - EpsGeom gates point-equality (join de-duplication, engulfment ties).
//   - EpsLength gates matrix-vs-trajectory length reconciliation.
//   - ThreatMargin is the default escape-point standoff beyond a disk's radius.

package isrcore

import "math"

// Numeric tolerances shared across the module.
const (
	// EpsGeom is the tolerance for point/position equality comparisons.
	EpsGeom = 1e-6

	// EpsLength is the tolerance for reconciling matrix distances against realized
	// trajectory polyline lengths.
	EpsLength = 1e-3

	// ThreatMargin is the default standoff distance added to a disk's radius when
	// computing an escape point for an engulfed position.
	ThreatMargin = 0.5
)

// NodeID identifies any routable node: an airport, a target, or a synthetic start.
type NodeID string

// Point is a location on the 2D mission plane.
type Point struct {
	X float64
	Y float64
}

// DistanceTo returns the Euclidean distance between p and q.
func (p Point) DistanceTo(q Point) float64 {
	dx := p.X - q.X
	dy := p.Y - q.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// Sub returns p-q as a vector.
func (p Point) Sub(q Point) Point { return Point{X: p.X - q.X, Y: p.Y - q.Y} }

// Add returns p+q.
func (p Point) Add(q Point) Point { return Point{X: p.X + q.X, Y: p.Y + q.Y} }

// Scale returns p scaled by s.
func (p Point) Scale(s float64) Point { return Point{X: p.X * s, Y: p.Y * s} }

// Norm returns the Euclidean length of p treated as a vector from the origin.
func (p Point) Norm() float64 { return math.Sqrt(p.X*p.X + p.Y*p.Y) }

// AlmostEqual reports whether p and q coincide within EpsGeom.
func (p Point) AlmostEqual(q Point) bool {
	return p.DistanceTo(q) <= EpsGeom
}

// Airport is a stable, static base. Ownership: environment. Airports never change
// across segments once a mission begins.
type Airport struct {
	ID  NodeID
	Pos Point
}

// Target is a prioritized point of interest with a sensor-compatibility tag.
// A frozen target's Pos is locked at the instant of its visit; an unvisited target's
// Pos may change between segments while its ID stays stable.
type Target struct {
	ID       NodeID
	Pos      Point
	Priority int
	Type     string
}

// ThreatDisk is a circular no-fly zone. May be added/removed/relocated between
// segments.
type ThreatDisk struct {
	ID     string
	Center Point
	Radius float64
}

// Contains reports whether pt lies strictly inside the disk (engulfed), using a
// strict "<" on squared distance.
func (t ThreatDisk) Contains(pt Point) bool {
	dx := pt.X - t.Center.X
	dy := pt.Y - t.Center.Y
	return dx*dx+dy*dy < t.Radius*t.Radius
}

// Grazes reports whether pt lies within epsilon of the disk boundary, on either
// side. Used by package segment's Cut to treat a boundary position as engulfed.
func (t ThreatDisk) Grazes(pt Point, eps float64) bool {
	d := t.Center.DistanceTo(pt)
	return math.Abs(d-t.Radius) <= eps
}

// SyntheticStart is a per-vehicle pseudo-airport at (or escaped from) a cut position.
// Never appears as an end node.
type SyntheticStart struct {
	ID NodeID
	// Pos is the planning position: either the raw cut position, or the escape point
	// if the raw position was engulfed by a threat disk.
	Pos Point
	// CutPosition is the raw, pre-escape interpolated position, retained for display
	// of frozen history even when Pos differs.
	CutPosition Point
	// Escaped is true when Pos != CutPosition because of an engulfment escape.
	Escaped bool
}

// Environment is a per-segment/per-solve snapshot of the static and dynamic world:
// airports (static), targets (positions may move between segments, ids stable),
// threat disks (may be added/removed/relocated), and any synthetic starts carried
// over from a prior segment's cut.
type Environment struct {
	Airports        []Airport
	Targets         []Target
	Threats         []ThreatDisk
	SyntheticStarts map[NodeID]SyntheticStart
}

// AirportByID returns the airport with the given id, or false if absent.
func (e *Environment) AirportByID(id NodeID) (Airport, bool) {
	for _, a := range e.Airports {
		if a.ID == id {
			return a, true
		}
	}
	return Airport{}, false
}

// TargetByID returns the target with the given id, or false if absent.
func (e *Environment) TargetByID(id NodeID) (Target, bool) {
	for _, t := range e.Targets {
		if t.ID == id {
			return t, true
		}
	}
	return Target{}, false
}

// NodePosition resolves the position of any node id known to the environment:
// an airport, a target, or a synthetic start. The second return is false if the id
// is not present in any of those sets.
func (e *Environment) NodePosition(id NodeID) (Point, bool) {
	if a, ok := e.AirportByID(id); ok {
		return a.Pos, true
	}
	if t, ok := e.TargetByID(id); ok {
		return t.Pos, true
	}
	if e.SyntheticStarts != nil {
		if s, ok := e.SyntheticStarts[id]; ok {
			return s.Pos, true
		}
	}
	return Point{}, false
}

// Validate checks structural invariants of the environment: non-empty, unique ids
// across airports/targets, and non-negative threat radii. It does not check
// vehicle-level invariants (see VehicleContract.Validate).
func (e *Environment) Validate() error {
	seen := make(map[NodeID]struct{}, len(e.Airports)+len(e.Targets))
	for _, a := range e.Airports {
		if a.ID == "" {
			return ErrEmptyID
		}
		if _, dup := seen[a.ID]; dup {
			return ErrDuplicateID
		}
		seen[a.ID] = struct{}{}
	}
	for _, t := range e.Targets {
		if t.ID == "" {
			return ErrEmptyID
		}
		if _, dup := seen[t.ID]; dup {
			return ErrDuplicateID
		}
		seen[t.ID] = struct{}{}
	}
	for _, th := range e.Threats {
		if th.Radius < 0 {
			return ErrNegativeRadius
		}
	}
	return nil
}
