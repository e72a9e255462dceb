// Package isrcore - routes, trajectories, and the distance matrix contract.
package isrcore

// Route is an ordered sequence of node ids beginning at the vehicle's start node,
// ending at its end node, with no repeats among target ids.
type Route struct {
	Start NodeID
	End   NodeID
	Nodes []NodeID // full sequence including Start and End
}

// Targets returns the interior nodes of the route (everything but Start/End),
// which for a well-formed route are exactly the visited target ids, in order.
func (r Route) Targets() []NodeID {
	if len(r.Nodes) <= 2 {
		return nil
	}
	return r.Nodes[1 : len(r.Nodes)-1]
}

// Edges returns the consecutive (from,to) pairs of the route.
func (r Route) Edges() []Edge {
	if len(r.Nodes) < 2 {
		return nil
	}
	out := make([]Edge, 0, len(r.Nodes)-1)
	for i := 0; i+1 < len(r.Nodes); i++ {
		out = append(out, Edge{From: r.Nodes[i], To: r.Nodes[i+1]})
	}
	return out
}

// ContainsFrozenPrefix reports whether frozen, in order, appears as a contiguous
// run of edges somewhere in r's edge sequence.
func (r Route) ContainsFrozenPrefix(frozen []Edge) bool {
	if len(frozen) == 0 {
		return true
	}
	edges := r.Edges()
	if len(edges) < len(frozen) {
		return false
	}
	for start := 0; start+len(frozen) <= len(edges); start++ {
		match := true
		for i, fe := range frozen {
			if edges[start+i] != fe {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}

// Trajectory is an ordered polyline of 2D points realizing a route under threat
// avoidance.
type Trajectory struct {
	Points []Point
}

// Length returns the total polyline length of the trajectory.
func (t Trajectory) Length() float64 {
	var total float64
	for i := 0; i+1 < len(t.Points); i++ {
		total += t.Points[i].DistanceTo(t.Points[i+1])
	}
	return total
}

// Matrix is the symmetric all-pairs threat-avoiding distance table produced by the
// distance service. Implementations live in package distmat; isrcore only
// fixes the read contract so downstream packages (allocate, orienteer, trajectory)
// can depend on the interface without importing distmat.
type Matrix interface {
	// Distance returns the shortest threat-avoiding distance between a and b, and
	// false if the pair is infeasible.
	Distance(a, b NodeID) (float64, bool)

	// Path returns the concrete polyline realizing Distance(a,b).
	Path(a, b NodeID) ([]Point, bool)

	// Nodes returns every node id the matrix was built over.
	Nodes() []NodeID
}
