package wire

import (
	"encoding/json"
	"fmt"

	"github.com/ksali98/isr-planner-sub001/isrcore"
)

// Import parses a version-2.0 mission document and reconstructs an isrcore.Mission.
//
// Two concerns beyond plain decoding:
//   - Legacy reconciliation: a document written by an older exporter may carry only
//     render_full per vehicle, with delta/deltaDistance/endDist absent. Import
//     reconstructs delta from the difference against the previous segment's
//     render_full, recomputes deltaDistance, and recomputes a missing endDist with
//     the same makespan rule package segment's Accept uses. If a document DOES
//     supply deltaDistance and it disagrees with the reconstructed polyline length
//     by more than isrcore.EpsLength, Import fails with ErrReconciliation rather
//     than silently preferring one value.
//   - Structural validation: every invariant segment.validateAppend enforces on its
//     own solve output is re-checked here too, but collecting every violation
//     across every segment instead of stopping at the first.
func Import(data []byte) (*isrcore.Mission, error) {
	var doc wireMission
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("wire: decode: %w", err)
	}
	if doc.Version != Version {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedVersion, doc.Version)
	}

	var violations []error
	segs := make([]isrcore.Segment, len(doc.Segments))
	var prevRenderFull map[string][]isrcore.Point
	var prevSeg *isrcore.Segment

	for i, ws := range doc.Segments {
		isLast := i == len(doc.Segments)-1
		seg, segViolations := importSegment(ws, i, prevSeg, prevRenderFull, isLast)
		segs[i] = seg
		violations = append(violations, segViolations...)

		rf := make(map[string][]isrcore.Point, len(ws.Trajectories))
		for id, tr := range ws.Trajectories {
			rf[id] = importPoints(tr.RenderFull)
		}
		prevRenderFull = rf
		segCopy := seg
		prevSeg = &segCopy
	}

	if len(violations) > 0 {
		return nil, &ImportError{Violations: violations}
	}

	cursor := len(segs) - 1
	if cursor < 0 {
		cursor = -1
	}
	return &isrcore.Mission{Segments: segs, Cursor: cursor}, nil
}

func importSegment(ws wireSegment, wantIndex int, prev *isrcore.Segment, prevRenderFull map[string][]isrcore.Point, isLast bool) (isrcore.Segment, []error) {
	var violations []error

	seg := isrcore.Segment{
		Index:         ws.Index,
		FrozenTargets: importTargets(ws.Targets.Frozen),
		ActiveTargets: importTargets(ws.Targets.Active),
		AllTargets:    importTargets(ws.Targets.All),
	}
	if ws.Index != wantIndex {
		violations = append(violations, fmt.Errorf("%w: segment %d declares index %d", isrcore.ErrNonMonotonicSegments, wantIndex, ws.Index))
	}

	seg.Airports = make([]isrcore.Airport, len(ws.Waypoints.Airports))
	for i, a := range ws.Waypoints.Airports {
		seg.Airports[i] = isrcore.Airport{ID: isrcore.NodeID(a.ID), Pos: isrcore.Point{X: a.X, Y: a.Y}}
	}
	if len(ws.Waypoints.SyntheticStarts) > 0 {
		seg.SyntheticStarts = make(map[isrcore.NodeID]isrcore.SyntheticStart, len(ws.Waypoints.SyntheticStarts))
		for id, s := range ws.Waypoints.SyntheticStarts {
			seg.SyntheticStarts[isrcore.NodeID(id)] = isrcore.SyntheticStart{
				ID:          isrcore.NodeID(s.ID),
				Pos:         isrcore.Point{X: s.X, Y: s.Y},
				CutPosition: isrcore.Point{X: s.CutX, Y: s.CutY},
				Escaped:     s.Escaped,
			}
		}
	}

	seg.Threats = make([]isrcore.ThreatDisk, len(ws.Threats))
	for i, th := range ws.Threats {
		seg.Threats[i] = isrcore.ThreatDisk{ID: th.ID, Center: isrcore.Point{X: th.X, Y: th.Y}, Radius: th.Range}
	}

	seg.Contracts = make(map[isrcore.NodeID]isrcore.VehicleContract, len(ws.DroneConfigs))
	for id, wc := range ws.DroneConfigs {
		c, err := importContract(wc)
		if err != nil {
			violations = append(violations, fmt.Errorf("segment %d vehicle %s: %w", ws.Index, id, err))
			continue
		}
		seg.Contracts[isrcore.NodeID(id)] = c
	}

	// StartDist is always recomputed from the chain, never trusted from the
	// document: the previous segment's EndDist is the only source of truth once a
	// mission has more than one segment.
	wantStart := 0.0
	if prev != nil {
		if prev.EndDist == nil {
			violations = append(violations, fmt.Errorf("%w: segment %d's predecessor is still open", isrcore.ErrNonMonotonicSegments, ws.Index))
		} else {
			wantStart = *prev.EndDist
		}
	}
	seg.StartDist = wantStart

	seg.Trajectories = make(map[isrcore.NodeID]isrcore.VehicleTrajectoryRecord, len(ws.Trajectories))
	var makespan float64
	for id, wt := range ws.Trajectories {
		rec, err := importTrajectory(wt, prevRenderFull[id])
		if err != nil {
			violations = append(violations, fmt.Errorf("segment %d vehicle %s: %w", ws.Index, id, err))
			continue
		}
		seg.Trajectories[isrcore.NodeID(id)] = rec
		if c, ok := seg.Contracts[isrcore.NodeID(id)]; ok && c.Enabled && rec.DeltaDistance > makespan {
			makespan = rec.DeltaDistance
		}
	}

	if ws.EndDist != nil {
		seg.EndDist = ws.EndDist
	} else if !isLast {
		// A non-last segment with no endDist is a legacy document: every segment
		// but the last must be closed, so recompute with the same makespan rule
		// package segment's Accept uses. The last segment legitimately stays open.
		end := seg.StartDist + makespan
		seg.EndDist = &end
	}

	if len(ws.CutPositionsAtEnd) > 0 {
		seg.CutPositionsAtEnd = make(map[isrcore.NodeID]isrcore.Point, len(ws.CutPositionsAtEnd))
		for id, p := range ws.CutPositionsAtEnd {
			seg.CutPositionsAtEnd[isrcore.NodeID(id)] = isrcore.Point{X: p.X, Y: p.Y}
		}
	}

	violations = append(violations, checkSegmentInvariants(prev, &seg)...)
	return seg, violations
}

func importTargets(targets []wireTarget) []isrcore.Target {
	out := make([]isrcore.Target, len(targets))
	for i, t := range targets {
		out[i] = isrcore.Target{ID: isrcore.NodeID(t.ID), Pos: isrcore.Point{X: t.X, Y: t.Y}, Priority: t.Priority, Type: t.Type}
	}
	return out
}

func importPoints(pts []wirePoint) []isrcore.Point {
	out := make([]isrcore.Point, len(pts))
	for i, p := range pts {
		out[i] = isrcore.Point{X: p.X, Y: p.Y}
	}
	return out
}

func importContract(wc wireContract) (isrcore.VehicleContract, error) {
	c := isrcore.VehicleContract{
		ID:         isrcore.NodeID(wc.ID),
		Enabled:    wc.Enabled,
		FuelBudget: wc.FuelBudget,
		Start:      isrcore.NodeID(wc.Start),
		End:        isrcore.NodeID(wc.End),
	}
	for _, id := range wc.AllowedEnds {
		c.AllowedEnds = append(c.AllowedEnds, isrcore.NodeID(id))
	}
	if wc.EligibilityAll || len(wc.Eligibility) == 0 {
		c.Eligibility = isrcore.AllEligibility()
	} else {
		c.Eligibility = isrcore.NewEligibility(wc.Eligibility...)
	}
	if wc.PriorityFilter != nil {
		op, err := importOp(wc.PriorityFilter.Op)
		if err != nil {
			return c, err
		}
		c.PriorityFilter = &isrcore.PriorityFilter{Op: op, Value: wc.PriorityFilter.Value}
	}
	for _, e := range wc.FrozenEdges {
		c.FrozenEdges = append(c.FrozenEdges, isrcore.Edge{From: isrcore.NodeID(e.From), To: isrcore.NodeID(e.To)})
	}
	mode, err := importEndMode(wc.EndMode)
	if err != nil {
		return c, err
	}
	c.EndMode = mode
	return c, nil
}

func importEndMode(s string) (isrcore.EndpointMode, error) {
	switch s {
	case "return", "":
		return isrcore.EndReturn, nil
	case "fixed":
		return isrcore.EndFixed, nil
	case "best":
		return isrcore.EndBest, nil
	default:
		return 0, fmt.Errorf("wire: unknown end_mode %q", s)
	}
}

func importOp(s string) (isrcore.CompareOp, error) {
	switch s {
	case "ge":
		return isrcore.OpGE, nil
	case "gt":
		return isrcore.OpGT, nil
	case "le":
		return isrcore.OpLE, nil
	case "lt":
		return isrcore.OpLT, nil
	case "eq":
		return isrcore.OpEQ, nil
	default:
		return 0, fmt.Errorf("wire: unknown priority_filter op %q", s)
	}
}

// importTrajectory reconstructs a VehicleTrajectoryRecord from its wire form,
// reconciling a legacy render_full-only document against prevRenderFull (the
// same vehicle's render_full in the previous segment, nil for segment 0).
func importTrajectory(wt wireTrajectory, prevRenderFull []isrcore.Point) (isrcore.VehicleTrajectoryRecord, error) {
	renderFull := importPoints(wt.RenderFull)
	delta := importPoints(wt.Delta)

	if len(delta) == 0 && len(renderFull) > len(prevRenderFull) {
		delta = reconstructDelta(prevRenderFull, renderFull)
	}

	computedLen := (isrcore.Trajectory{Points: delta}).Length()
	if wt.DeltaDistance != 0 && absDiff(computedLen, wt.DeltaDistance) > isrcore.EpsLength {
		return isrcore.VehicleTrajectoryRecord{}, ErrReconciliation
	}
	deltaDistance := wt.DeltaDistance
	if deltaDistance == 0 {
		deltaDistance = computedLen
	}

	rec := isrcore.VehicleTrajectoryRecord{
		RenderFull:     renderFull,
		Delta:          delta,
		FrozenEndIndex: wt.FrozenEndIndex,
		DeltaDistance:  deltaDistance,
		EndState: isrcore.EndState{
			Position:      isrcore.Point{X: wt.EndState.Position.X, Y: wt.EndState.Position.Y},
			FuelRemaining: wt.EndState.FuelRemaining,
		},
	}
	rec.Route.Start = isrcore.NodeID(wt.Route.Start)
	rec.Route.End = isrcore.NodeID(wt.Route.End)
	for _, n := range wt.Route.Nodes {
		rec.Route.Nodes = append(rec.Route.Nodes, isrcore.NodeID(n))
	}
	return rec, nil
}

// reconstructDelta recovers this-segment's own polyline from the join point
// onward: prevRenderFull's last point (the join), followed by whatever of
// renderFull extends past prevRenderFull's length. Mirrors the inverse of
// package segment's concatRenderFull.
func reconstructDelta(prevRenderFull, renderFull []isrcore.Point) []isrcore.Point {
	if len(prevRenderFull) == 0 {
		return append([]isrcore.Point(nil), renderFull...)
	}
	tail := renderFull[len(prevRenderFull):]
	out := make([]isrcore.Point, 0, len(tail)+1)
	out = append(out, prevRenderFull[len(prevRenderFull)-1])
	out = append(out, tail...)
	return out
}

func absDiff(a, b float64) float64 {
	if a < b {
		return b - a
	}
	return a - b
}

// checkSegmentInvariants mirrors package segment's validateAppend checks but
// collects every violation instead of stopping at the first: an arbitrary
// on-disk document deserves the whole list at once, not just the first
// problem encountered.
func checkSegmentInvariants(prev *isrcore.Segment, candidate *isrcore.Segment) []error {
	var errs []error

	if prev != nil && prev.EndDist != nil && candidate.StartDist < *prev.EndDist-isrcore.EpsLength {
		errs = append(errs, fmt.Errorf("%w: segment %d startDist precedes predecessor's endDist", isrcore.ErrNonMonotonicSegments, candidate.Index))
	}
	if candidate.EndDist != nil && *candidate.EndDist < candidate.StartDist-isrcore.EpsLength {
		errs = append(errs, fmt.Errorf("%w: segment %d endDist precedes its own startDist", isrcore.ErrNonMonotonicSegments, candidate.Index))
	}

	for id, rec := range candidate.Trajectories {
		for i := 0; i+1 < len(rec.Delta); i++ {
			if rec.Delta[i].AlmostEqual(rec.Delta[i+1]) {
				errs = append(errs, fmt.Errorf("segment %d vehicle %s: duplicate consecutive delta point: %w", candidate.Index, id, ErrReconciliation))
			}
		}
		if rec.FrozenEndIndex >= len(rec.RenderFull) {
			errs = append(errs, fmt.Errorf("segment %d vehicle %s: frozenEndIndex out of range", candidate.Index, id))
		}
		if c, ok := candidate.Contracts[id]; ok && !c.Enabled {
			if len(rec.Delta) != 0 || len(rec.Route.Nodes) != 0 {
				errs = append(errs, fmt.Errorf("segment %d vehicle %s: disabled vehicle carries a non-empty delta/route", candidate.Index, id))
			}
		}
	}

	if !candidate.TargetUnionComplete() {
		errs = append(errs, fmt.Errorf("segment %d: %w", candidate.Index, isrcore.ErrTargetPartition))
	}

	return errs
}
