package segment

import "github.com/ksali98/isr-planner-sub001/isrcore"

// cloneMission deep-copies msn so a caller holding the result of Machine.Mission
// cannot observe or corrupt the machine's own backing slices/maps — the same
// defensive-copy idiom used for CloneEmpty/Clone elsewhere in this module,
// adapted here to a read-only snapshot rather than a mutable working copy.
func cloneMission(msn isrcore.Mission) isrcore.Mission {
	out := isrcore.Mission{
		Segments: make([]isrcore.Segment, len(msn.Segments)),
		Cursor:   msn.Cursor,
	}
	for i, seg := range msn.Segments {
		out.Segments[i] = cloneSegment(seg)
	}
	return out
}

func cloneSegment(seg isrcore.Segment) isrcore.Segment {
	out := seg

	out.Contracts = cloneContractMap(seg.Contracts)
	out.Airports = append([]isrcore.Airport(nil), seg.Airports...)
	out.SyntheticStarts = cloneSyntheticStarts(seg.SyntheticStarts)
	out.FrozenTargets = append([]isrcore.Target(nil), seg.FrozenTargets...)
	out.ActiveTargets = append([]isrcore.Target(nil), seg.ActiveTargets...)
	out.AllTargets = append([]isrcore.Target(nil), seg.AllTargets...)
	out.Threats = append([]isrcore.ThreatDisk(nil), seg.Threats...)
	out.Trajectories = cloneTrajectories(seg.Trajectories)
	out.CutPositionsAtEnd = clonePointMap(seg.CutPositionsAtEnd)

	if seg.EndDist != nil {
		endDist := *seg.EndDist
		out.EndDist = &endDist
	}
	return out
}

func cloneContractMap(m map[isrcore.NodeID]isrcore.VehicleContract) map[isrcore.NodeID]isrcore.VehicleContract {
	if m == nil {
		return nil
	}
	out := make(map[isrcore.NodeID]isrcore.VehicleContract, len(m))
	for k, v := range m {
		v.AllowedEnds = append([]isrcore.NodeID(nil), v.AllowedEnds...)
		v.FrozenEdges = append([]isrcore.Edge(nil), v.FrozenEdges...)
		out[k] = v
	}
	return out
}

func cloneSyntheticStarts(m map[isrcore.NodeID]isrcore.SyntheticStart) map[isrcore.NodeID]isrcore.SyntheticStart {
	if m == nil {
		return nil
	}
	out := make(map[isrcore.NodeID]isrcore.SyntheticStart, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func clonePointMap(m map[isrcore.NodeID]isrcore.Point) map[isrcore.NodeID]isrcore.Point {
	if m == nil {
		return nil
	}
	out := make(map[isrcore.NodeID]isrcore.Point, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func cloneTrajectories(m map[isrcore.NodeID]isrcore.VehicleTrajectoryRecord) map[isrcore.NodeID]isrcore.VehicleTrajectoryRecord {
	if m == nil {
		return nil
	}
	out := make(map[isrcore.NodeID]isrcore.VehicleTrajectoryRecord, len(m))
	for k, rec := range m {
		rec.RenderFull = append([]isrcore.Point(nil), rec.RenderFull...)
		rec.Delta = append([]isrcore.Point(nil), rec.Delta...)
		rec.Route.Nodes = append([]isrcore.NodeID(nil), rec.Route.Nodes...)
		out[k] = rec
	}
	return out
}
