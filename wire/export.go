package wire

import (
	"encoding/json"
	"time"

	"github.com/ksali98/isr-planner-sub001/isrcore"
)

// Version is the on-disk document version this package writes.
const Version = "2.0"

// Export serializes msn into the version-2.0 JSON mission document.
func Export(msn *isrcore.Mission) ([]byte, error) {
	doc := wireMission{
		Version:  Version,
		Segments: make([]wireSegment, len(msn.Segments)),
	}
	now := time.Now().UTC().Format(time.RFC3339)
	for i, seg := range msn.Segments {
		doc.Segments[i] = exportSegment(seg, now)
	}
	return json.MarshalIndent(doc, "", "  ")
}

func exportSegment(seg isrcore.Segment, timestamp string) wireSegment {
	out := wireSegment{
		Index:     seg.Index,
		Timestamp: timestamp,
		StartDist: seg.StartDist,
		EndDist:   seg.EndDist,
	}

	out.DroneConfigs = make(map[string]wireContract, len(seg.Contracts))
	for id, c := range seg.Contracts {
		out.DroneConfigs[string(id)] = exportContract(c)
	}

	out.Waypoints.Airports = make([]wireAirport, len(seg.Airports))
	for i, a := range seg.Airports {
		out.Waypoints.Airports[i] = wireAirport{ID: string(a.ID), X: a.Pos.X, Y: a.Pos.Y}
	}
	if len(seg.SyntheticStarts) > 0 {
		out.Waypoints.SyntheticStarts = make(map[string]wireSyntheticStart, len(seg.SyntheticStarts))
		for id, s := range seg.SyntheticStarts {
			out.Waypoints.SyntheticStarts[string(id)] = wireSyntheticStart{
				ID: string(s.ID), X: s.Pos.X, Y: s.Pos.Y,
				CutX: s.CutPosition.X, CutY: s.CutPosition.Y, Escaped: s.Escaped,
			}
		}
	}

	out.Targets.Frozen = exportTargets(seg.FrozenTargets)
	out.Targets.Active = exportTargets(seg.ActiveTargets)
	out.Targets.All = exportTargets(seg.AllTargets)

	out.Threats = make([]wireThreat, len(seg.Threats))
	for i, th := range seg.Threats {
		out.Threats[i] = wireThreat{ID: th.ID, X: th.Center.X, Y: th.Center.Y, Range: th.Radius}
	}

	out.Trajectories = make(map[string]wireTrajectory, len(seg.Trajectories))
	for id, rec := range seg.Trajectories {
		out.Trajectories[string(id)] = exportTrajectory(rec)
	}

	if len(seg.CutPositionsAtEnd) > 0 {
		out.CutPositionsAtEnd = make(map[string]wirePoint, len(seg.CutPositionsAtEnd))
		for id, p := range seg.CutPositionsAtEnd {
			out.CutPositionsAtEnd[string(id)] = wirePoint{X: p.X, Y: p.Y}
		}
	}

	return out
}

func exportTargets(targets []isrcore.Target) []wireTarget {
	out := make([]wireTarget, len(targets))
	for i, t := range targets {
		out[i] = wireTarget{ID: string(t.ID), X: t.Pos.X, Y: t.Pos.Y, Priority: t.Priority, Type: t.Type}
	}
	return out
}

func exportPoints(pts []isrcore.Point) []wirePoint {
	out := make([]wirePoint, len(pts))
	for i, p := range pts {
		out[i] = wirePoint{X: p.X, Y: p.Y}
	}
	return out
}

func exportContract(c isrcore.VehicleContract) wireContract {
	out := wireContract{
		ID:             string(c.ID),
		Enabled:        c.Enabled,
		FuelBudget:     c.FuelBudget,
		Start:          string(c.Start),
		EndMode:        exportEndMode(c.EndMode),
		End:            string(c.End),
		EligibilityAll: c.Eligibility.AllTypes,
	}
	for _, id := range c.AllowedEnds {
		out.AllowedEnds = append(out.AllowedEnds, string(id))
	}
	for t := range c.Eligibility.Types {
		out.Eligibility = append(out.Eligibility, t)
	}
	if c.PriorityFilter != nil {
		out.PriorityFilter = &wirePriorityFilter{Op: exportOp(c.PriorityFilter.Op), Value: c.PriorityFilter.Value}
	}
	for _, e := range c.FrozenEdges {
		out.FrozenEdges = append(out.FrozenEdges, wireEdge{From: string(e.From), To: string(e.To)})
	}
	return out
}

func exportEndMode(m isrcore.EndpointMode) string {
	switch m {
	case isrcore.EndReturn:
		return "return"
	case isrcore.EndFixed:
		return "fixed"
	case isrcore.EndBest:
		return "best"
	default:
		return "return"
	}
}

func exportOp(op isrcore.CompareOp) string {
	switch op {
	case isrcore.OpGE:
		return "ge"
	case isrcore.OpGT:
		return "gt"
	case isrcore.OpLE:
		return "le"
	case isrcore.OpLT:
		return "lt"
	case isrcore.OpEQ:
		return "eq"
	default:
		return "ge"
	}
}

func exportTrajectory(rec isrcore.VehicleTrajectoryRecord) wireTrajectory {
	out := wireTrajectory{
		RenderFull:     exportPoints(rec.RenderFull),
		Delta:          exportPoints(rec.Delta),
		FrozenEndIndex: rec.FrozenEndIndex,
		DeltaDistance:  rec.DeltaDistance,
		EndState: wireEndState{
			Position:      wirePoint{X: rec.EndState.Position.X, Y: rec.EndState.Position.Y},
			FuelRemaining: rec.EndState.FuelRemaining,
		},
	}
	out.Route.Start = string(rec.Route.Start)
	out.Route.End = string(rec.Route.End)
	for _, n := range rec.Route.Nodes {
		out.Route.Nodes = append(out.Route.Nodes, string(n))
	}
	return out
}
