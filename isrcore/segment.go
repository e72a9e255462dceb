// Package isrcore - segment and mission records.
//
// A Segment is a self-contained record of one mission phase: enough to display and
// animate it independently. A Mission is an ordered, gap-free sequence of segments
// plus a cursor into the currently-open one. Deep invariant enforcement (monotonic
// boundaries, disabled-vehicle rules, frozen/active partitions) is the job of
// package segment; isrcore only fixes the shape and a few shape-local checks
// that every consumer needs regardless of how the segment was produced.
package isrcore

// EndState is a vehicle's position and remaining fuel at the end of a segment.
type EndState struct {
	Position      Point
	FuelRemaining float64
}

// VehicleTrajectoryRecord is one vehicle's trajectory bookkeeping for a single
// segment.
type VehicleTrajectoryRecord struct {
	// RenderFull is the cumulative polyline from the mission origin, for display.
	RenderFull []Point

	// Delta is this-segment's polyline only, for animation and length bookkeeping.
	Delta []Point

	// FrozenEndIndex is the last index inside RenderFull that belongs to prior
	// segments; -1 if RenderFull is entirely this segment's own Delta (segment 0).
	FrozenEndIndex int

	Route Route

	// DeltaDistance is the polyline length of Delta.
	DeltaDistance float64

	EndState EndState
}

// Segment is one mission phase.
type Segment struct {
	// Index is 0-based and dense: Segment[i].Index == i.
	Index int

	// StartDist/EndDist are boundaries along the concatenated mission timeline.
	// EndDist is nil only for an open (not-yet-committed) last segment.
	StartDist float64
	EndDist   *float64

	// Contracts is the per-vehicle contract snapshot for this segment, keyed by
	// vehicle id, including each vehicle's Enabled flag and FuelBudget (fuel
	// remaining at segment start).
	Contracts map[NodeID]VehicleContract

	Airports        []Airport
	SyntheticStarts map[NodeID]SyntheticStart

	// FrozenTargets were visited in prior segments; their positions are locked.
	FrozenTargets []Target
	// ActiveTargets are visible and servicable this segment.
	ActiveTargets []Target
	// AllTargets is the union of FrozenTargets and ActiveTargets.
	AllTargets []Target

	Threats []ThreatDisk

	// Trajectories holds each enabled-or-previously-enabled vehicle's trajectory
	// record, keyed by vehicle id.
	Trajectories map[NodeID]VehicleTrajectoryRecord

	// CutPositionsAtEnd is nil for an open (uncommitted) segment; once a segment,
	// segment 0 included, is committed by Accept or Cut it records each vehicle's
	// end-of-segment position.
	CutPositionsAtEnd map[NodeID]Point
}

// IsOpen reports whether the segment has not yet been committed (EndDist == nil).
func (s *Segment) IsOpen() bool { return s.EndDist == nil }

// TargetUnionComplete reports whether FrozenTargets ∪ ActiveTargets == AllTargets
// with no id in both. It does not mutate AllTargets.
func (s *Segment) TargetUnionComplete() bool {
	seen := make(map[NodeID]int, len(s.FrozenTargets)+len(s.ActiveTargets))
	for _, t := range s.FrozenTargets {
		seen[t.ID]++
	}
	for _, t := range s.ActiveTargets {
		seen[t.ID]++
	}
	if len(seen) != len(s.AllTargets) {
		return false
	}
	for _, t := range s.AllTargets {
		if seen[t.ID] != 1 {
			return false
		}
	}
	return true
}

// Mission is an ordered sequence of segments plus a cursor into the current one.
type Mission struct {
	Segments []Segment
	// Cursor indexes the segment currently open for editing (solve/cut), or the
	// last committed segment if none is open.
	Cursor int
}

// Current returns a pointer to the segment at Cursor, or nil if the mission is empty.
func (m *Mission) Current() *Segment {
	if len(m.Segments) == 0 || m.Cursor < 0 || m.Cursor >= len(m.Segments) {
		return nil
	}
	return &m.Segments[m.Cursor]
}

// TotalDistance returns the EndDist of the last closed segment, or the StartDist of
// an open last segment if no segment has been closed yet.
func (m *Mission) TotalDistance() float64 {
	if len(m.Segments) == 0 {
		return 0
	}
	last := m.Segments[len(m.Segments)-1]
	if last.EndDist != nil {
		return *last.EndDist
	}
	return last.StartDist
}

// Terminated reports whether every enabled vehicle in the last closed segment has
// reached its terminal node (EndState.Position == route end position) — the
// terminated state of a mission's lifecycle. Callers that need the full
// state-machine semantics should use package segment's Machine.State instead;
// this is a cheap, read-only shortcut for display.
func (m *Mission) Terminated() bool {
	if len(m.Segments) == 0 {
		return false
	}
	last := m.Segments[len(m.Segments)-1]
	if last.IsOpen() {
		return false
	}
	for id, c := range last.Contracts {
		if !c.Enabled {
			continue
		}
		rec, ok := last.Trajectories[id]
		if !ok {
			return false
		}
		endPos, ok := resolveEndNodePos(&last, c, rec.Route.End)
		if !ok {
			return false
		}
		if !rec.EndState.Position.AlmostEqual(endPos) {
			return false
		}
	}
	return true
}

func resolveEndNodePos(seg *Segment, c VehicleContract, routeEnd NodeID) (Point, bool) {
	var endID NodeID
	switch c.EndMode {
	case EndBest:
		// Best-end vehicles have no end in their contract; the End node recorded
		// on the segment's route is authoritative.
		endID = routeEnd
		if endID == "" {
			return Point{}, false
		}
	default:
		endID = c.ResolvedEnd()
	}
	for _, a := range seg.Airports {
		if a.ID == endID {
			return a.Pos, true
		}
	}
	if s, ok := seg.SyntheticStarts[endID]; ok {
		return s.Pos, true
	}
	return Point{}, false
}
