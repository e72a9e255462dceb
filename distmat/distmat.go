// Package distmat implements the threat-aware distance service: an all-pairs
// matrix of shortest threat-avoiding distances, plus the polyline realizing each
// entry, fingerprinted over node positions and threat geometry so an unchanged
// world returns the cached matrix without recomputation.
package distmat

import (
	"errors"
	"sort"

	"github.com/cespare/xxhash/v2"
	"github.com/golang/groupcache/lru"

	"github.com/ksali98/isr-planner-sub001/geom"
	"github.com/ksali98/isr-planner-sub001/isrcore"
)

// ErrUnknownNode indicates a Build call referenced a node id absent from env.
var ErrUnknownNode = errors.New("distmat: node id not found in environment")

// cacheCapacity bounds the number of distinct (fingerprint -> built matrix) entries
// kept warm across solves.
const cacheCapacity = 32

// Matrix is the distmat-built implementation of isrcore.Matrix: a symmetric table
// of threat-avoiding distances and the polylines that realize them, keyed by a
// fingerprint over the inputs that produced it.
type Matrix struct {
	nodes       []isrcore.NodeID
	fingerprint uint64
	dist        map[pairKey]float64
	path        map[pairKey][]isrcore.Point
	infeasible  map[pairKey]struct{}
}

type pairKey struct {
	a, b isrcore.NodeID
}

func orderedKey(a, b isrcore.NodeID) pairKey {
	if a <= b {
		return pairKey{a, b}
	}
	return pairKey{b, a}
}

// sharedCache is the process-wide bounded cache of previously built matrices,
// keyed by fingerprint, so repeated solves over an unchanged world skip
// recomputation entirely.
var sharedCache = lru.New(cacheCapacity)

// Build computes (or retrieves from cache) the distance matrix and path cache for
// nodes over env. Nodes must all resolve to a position in env (airports, active
// targets, or synthetic starts for the current segment).
func Build(env *isrcore.Environment, nodes []isrcore.NodeID) (*Matrix, error) {
	positions := make(map[isrcore.NodeID]isrcore.Point, len(nodes))
	for _, id := range nodes {
		pos, ok := env.NodePosition(id)
		if !ok {
			return nil, ErrUnknownNode
		}
		positions[id] = pos
	}

	fp := fingerprint(nodes, positions, env.Threats)
	if cached, ok := sharedCache.Get(fp); ok {
		return cached.(*Matrix), nil
	}

	sorted := append([]isrcore.NodeID(nil), nodes...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	m := &Matrix{
		nodes:       sorted,
		fingerprint: fp,
		dist:        make(map[pairKey]float64),
		path:        make(map[pairKey][]isrcore.Point),
		infeasible:  make(map[pairKey]struct{}),
	}

	for i := 0; i < len(sorted); i++ {
		a := sorted[i]
		m.dist[orderedKey(a, a)] = 0
		m.path[orderedKey(a, a)] = []isrcore.Point{positions[a]}
		for j := i + 1; j < len(sorted); j++ {
			b := sorted[j]
			key := orderedKey(a, b)
			pts, err := geom.VisibilityPath(positions[a], positions[b], env.Threats, isrcore.EpsGeom)
			if err != nil {
				m.infeasible[key] = struct{}{}
				continue
			}
			m.dist[key] = geom.PolylineLength(pts)
			m.path[key] = pts
		}
	}

	sharedCache.Add(fp, m)
	return m, nil
}

// Distance implements isrcore.Matrix.
func (m *Matrix) Distance(a, b isrcore.NodeID) (float64, bool) {
	key := orderedKey(a, b)
	if _, bad := m.infeasible[key]; bad {
		return 0, false
	}
	d, ok := m.dist[key]
	return d, ok
}

// Path implements isrcore.Matrix.
func (m *Matrix) Path(a, b isrcore.NodeID) ([]isrcore.Point, bool) {
	key := orderedKey(a, b)
	if _, bad := m.infeasible[key]; bad {
		return nil, false
	}
	pts, ok := m.path[key]
	if !ok {
		return nil, false
	}
	if a == key.a {
		return pts, true
	}
	// Stored polyline runs key.a -> key.b; reverse it for the b -> a query.
	rev := make([]isrcore.Point, len(pts))
	for i, p := range pts {
		rev[len(pts)-1-i] = p
	}
	return rev, true
}

// Nodes implements isrcore.Matrix.
func (m *Matrix) Nodes() []isrcore.NodeID {
	return append([]isrcore.NodeID(nil), m.nodes...)
}

// Fingerprint returns the cache key this matrix was built (or retrieved) under.
func (m *Matrix) Fingerprint() uint64 {
	return m.fingerprint
}

// fingerprint hashes node identities/positions and threat geometry into a single
// cache key; identical inputs always hash identically regardless of slice order.
// The fingerprint covers node positions and threat geometry (disk centers and radii).
func fingerprint(nodes []isrcore.NodeID, positions map[isrcore.NodeID]isrcore.Point, threats []isrcore.ThreatDisk) uint64 {
	sorted := append([]isrcore.NodeID(nil), nodes...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	h := xxhash.New()
	for _, id := range sorted {
		p := positions[id]
		writeString(h, string(id))
		writeFloat(h, p.X)
		writeFloat(h, p.Y)
	}

	sortedThreats := append([]isrcore.ThreatDisk(nil), threats...)
	sort.Slice(sortedThreats, func(i, j int) bool { return sortedThreats[i].ID < sortedThreats[j].ID })
	for _, d := range sortedThreats {
		writeString(h, d.ID)
		writeFloat(h, d.Center.X)
		writeFloat(h, d.Center.Y)
		writeFloat(h, d.Radius)
	}
	return h.Sum64()
}
