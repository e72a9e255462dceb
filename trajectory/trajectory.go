// Package trajectory reifies a Route into a concrete polyline: the
// concatenation of each consecutive-node leg's path, as resolved by the distance
// matrix, with join points de-duplicated within tolerance.
package trajectory

import (
	"errors"

	"github.com/ksali98/isr-planner-sub001/isrcore"
)

// ErrMissingLeg indicates the matrix has no path for some consecutive pair of
// nodes in the route; this is an invariant violation — the allocator/solver must
// never hand trajectory a route over an infeasible pair.
var ErrMissingLeg = errors.New("trajectory: matrix has no path for a route leg")

// ErrEmptyRoute indicates a route with fewer than two nodes.
var ErrEmptyRoute = errors.New("trajectory: route has fewer than two nodes")

// Build reifies route into a Trajectory by concatenating each leg's polyline from
// m, dropping the duplicate join point between consecutive legs.
//
// Invariants enforced: the first point equals the start node's position, the
// last point equals the end node's position, and the returned trajectory's
// Length() equals the sum of the per-leg matrix distances within isrcore.EpsLength
// (this holds by construction: both are computed from the identical points, see
// package geom's doc comment).
func Build(route isrcore.Route, m isrcore.Matrix) (isrcore.Trajectory, error) {
	if len(route.Nodes) < 2 {
		return isrcore.Trajectory{}, ErrEmptyRoute
	}

	var out []isrcore.Point
	for i := 0; i+1 < len(route.Nodes); i++ {
		leg, ok := m.Path(route.Nodes[i], route.Nodes[i+1])
		if !ok {
			return isrcore.Trajectory{}, ErrMissingLeg
		}
		if i == 0 {
			out = append(out, leg...)
			continue
		}
		// Drop the duplicate join point: leg[0] coincides with the previous leg's
		// last point within EpsGeom.
		out = append(out, leg[1:]...)
	}
	return isrcore.Trajectory{Points: out}, nil
}

// MatrixLength sums the per-leg matrix distances for route, for comparison against
// Build's reified Trajectory.Length() under the matrix/trajectory reconciliation
// property: the two must agree within tolerance since both derive from the same
// underlying leg geometry.
func MatrixLength(route isrcore.Route, m isrcore.Matrix) (float64, error) {
	if len(route.Nodes) < 2 {
		return 0, ErrEmptyRoute
	}
	var total float64
	for i := 0; i+1 < len(route.Nodes); i++ {
		d, ok := m.Distance(route.Nodes[i], route.Nodes[i+1])
		if !ok {
			return 0, ErrMissingLeg
		}
		total += d
	}
	return total, nil
}

// CumulativeDistances returns, for each node in route.Nodes, the matrix
// distance traveled from the start up to and including reaching that node.
// The result has the same length as route.Nodes and always starts at 0. Used
// by package segment to decide whether a target was actually reached before a
// cut's truncation distance, rather than merely planned for.
func CumulativeDistances(route isrcore.Route, m isrcore.Matrix) ([]float64, error) {
	if len(route.Nodes) < 2 {
		return nil, ErrEmptyRoute
	}
	out := make([]float64, len(route.Nodes))
	for i := 0; i+1 < len(route.Nodes); i++ {
		d, ok := m.Distance(route.Nodes[i], route.Nodes[i+1])
		if !ok {
			return nil, ErrMissingLeg
		}
		out[i+1] = out[i] + d
	}
	return out, nil
}
