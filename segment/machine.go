package segment

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/ksali98/isr-planner-sub001/distmat"
	"github.com/ksali98/isr-planner-sub001/geom"
	"github.com/ksali98/isr-planner-sub001/isrcore"
	"github.com/ksali98/isr-planner-sub001/mission"
	"github.com/ksali98/isr-planner-sub001/trajectory"
)

// State is the coarse phase of a Machine's mission.
type State int

const (
	StateEmpty State = iota
	StateOpen
	StateClosed
	StateTerminated
)

// String renders the state for logging and CLI display.
func (s State) String() string {
	switch s {
	case StateEmpty:
		return "EMPTY"
	case StateOpen:
		return "OPEN"
	case StateClosed:
		return "CLOSED"
	case StateTerminated:
		return "TERMINATED"
	default:
		return "UNKNOWN"
	}
}

// Machine drives one isrcore.Mission through EMPTY -> OPEN(0) -> CLOSED(0) ->
// OPEN(1) -> ... -> TERMINATED. It is the only writer of its Mission's Segments
// slice; Mission() returns a defensive copy for readers.
type Machine struct {
	mu sync.Mutex

	msn isrcore.Mission

	// openEnv is the (frozen-target-filtered) environment the currently open
	// draft was last solved against; Cut needs it to rebuild a per-vehicle
	// matrix for arc-length bookkeeping without re-running the full solve.
	openEnv *isrcore.Environment

	// frozenSoFar accumulates every target ever marked visited, by id, across
	// the whole mission: frozen coordinates are locked at the instant of visit
	// and never reconciled against a later, possibly-moved live target of the
	// same id.
	frozenSoFar map[isrcore.NodeID]isrcore.Target
}

// NewMachine returns a Machine for a brand-new, empty mission.
func NewMachine() *Machine {
	return &Machine{
		msn:         isrcore.Mission{Cursor: -1},
		frozenSoFar: make(map[isrcore.NodeID]isrcore.Target),
	}
}

// Mission returns a defensive copy of the underlying mission for display/export.
func (m *Machine) Mission() isrcore.Mission {
	m.mu.Lock()
	defer m.mu.Unlock()
	return cloneMission(m.msn)
}

// State reports the machine's current coarse phase.
func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stateLocked()
}

func (m *Machine) stateLocked() State {
	cur := m.msn.Current()
	if cur == nil {
		return StateEmpty
	}
	if m.msn.Terminated() {
		return StateTerminated
	}
	if cur.IsOpen() {
		return StateOpen
	}
	return StateClosed
}

// Open solves the next segment: EMPTY/CLOSED(i) -> OPEN(i+1), or, if a segment
// is already open, re-solves and replaces that same draft in place (an
// iterative re-plan before accept/cut — the OPEN(i) state allows repeated
// solves before a commit). env's Targets are filtered to those not already
// frozen before candidates ever reach the allocator.
func (m *Machine) Open(ctx context.Context, env *isrcore.Environment, contracts []isrcore.VehicleContract, policy isrcore.SolvePolicy) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.stateLocked() == StateTerminated {
		return ErrMissionTerminated
	}

	active := make([]isrcore.Target, 0, len(env.Targets))
	for _, t := range env.Targets {
		if _, frozen := m.frozenSoFar[t.ID]; frozen {
			continue
		}
		active = append(active, t)
	}
	solveEnv := &isrcore.Environment{
		Airports:        env.Airports,
		Targets:         active,
		Threats:         env.Threats,
		SyntheticStarts: env.SyntheticStarts,
	}

	sol, err := mission.Solve(ctx, solveEnv, contracts, policy)
	if err != nil {
		return err
	}

	prev := m.priorClosedForDraftLocked()
	draft, err := m.buildDraftSegment(prev, solveEnv, contracts, sol, active)
	if err != nil {
		return err
	}
	if err := validateAppend(prev, &draft); err != nil {
		return err
	}

	if cur := m.msn.Current(); cur != nil && cur.IsOpen() {
		m.msn.Segments[m.msn.Cursor] = draft
	} else {
		m.msn.Segments = append(m.msn.Segments, draft)
		m.msn.Cursor = len(m.msn.Segments) - 1
	}
	m.openEnv = solveEnv
	return nil
}

// priorClosedForDraftLocked returns the segment the new draft extends: the
// segment before the currently open one (if re-solving), the currently closed
// one (if opening a new segment after it), or nil for segment 0.
func (m *Machine) priorClosedForDraftLocked() *isrcore.Segment {
	if len(m.msn.Segments) == 0 {
		return nil
	}
	cur := m.msn.Current()
	if cur != nil && cur.IsOpen() {
		if m.msn.Cursor == 0 {
			return nil
		}
		prev := m.msn.Segments[m.msn.Cursor-1]
		return &prev
	}
	seg := *cur
	return &seg
}

// Accept commits the open segment in full, without truncation: endDist is set
// to startDist plus the makespan (the longest enabled vehicle's delta length).
// This is the pragmatic choice recorded in DESIGN.md's open-question ledger.
func (m *Machine) Accept() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cur := m.msn.Current()
	if cur == nil || !cur.IsOpen() {
		return ErrNoOpenSegment
	}

	var makespan float64
	for id, c := range cur.Contracts {
		if !c.Enabled {
			continue
		}
		if rec := cur.Trajectories[id]; rec.DeltaDistance > makespan {
			makespan = rec.DeltaDistance
		}
	}
	endDist := cur.StartDist + makespan

	cutPositions := make(map[isrcore.NodeID]isrcore.Point, len(cur.Contracts))
	for id := range cur.Contracts {
		cutPositions[id] = cur.Trajectories[id].EndState.Position
	}

	cur.EndDist = &endDist
	cur.CutPositionsAtEnd = cutPositions

	m.markFullyVisitedLocked(cur)
	return nil
}

// Cut closes the open segment at global distance d < its full makespan,
// truncating every enabled vehicle's delta there, resolving threat-engulfed
// cut positions to escape points, and returning the synthetic starts the
// caller should feed into the next Open call's environment.
func (m *Machine) Cut(ctx context.Context, d float64, nextThreats []isrcore.ThreatDisk) (map[isrcore.NodeID]isrcore.SyntheticStart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cur := m.msn.Current()
	if cur == nil || !cur.IsOpen() {
		return nil, ErrNoOpenSegment
	}
	if d <= cur.StartDist+isrcore.EpsLength {
		return nil, ErrCutDistanceOutOfRange
	}
	local := d - cur.StartDist

	type cutJob struct {
		id        isrcore.NodeID
		local     float64
		rawPos    isrcore.Point
		truncated []isrcore.Point
		visited   []isrcore.NodeID
	}

	var makespan float64
	for id, c := range cur.Contracts {
		if c.Enabled && cur.Trajectories[id].DeltaDistance > makespan {
			makespan = cur.Trajectories[id].DeltaDistance
		}
	}
	if local > makespan+isrcore.EpsLength {
		return nil, ErrCutDistanceOutOfRange
	}

	jobs := make(map[isrcore.NodeID]*cutJob, len(cur.Contracts))
	for id, c := range cur.Contracts {
		if !c.Enabled {
			continue
		}
		rec := cur.Trajectories[id]
		// A vehicle whose delta ends before the cut stays at its delta's end.
		local := min(local, rec.DeltaDistance)

		rawPos, err := trajectory.PointAtDistance(rec.Delta, local)
		if err != nil {
			return nil, fmt.Errorf("segment: interpolating cut position for vehicle %s: %w", id, err)
		}
		truncated, err := trajectory.Truncate(rec.Delta, local)
		if err != nil {
			return nil, fmt.Errorf("segment: truncating delta for vehicle %s: %w", id, err)
		}
		visited, err := reachedTargets(rec.Route, m.openEnv, local)
		if err != nil {
			return nil, fmt.Errorf("segment: computing reached targets for vehicle %s: %w", id, err)
		}
		jobs[id] = &cutJob{id: id, local: local, rawPos: rawPos, truncated: truncated, visited: visited}
	}

	// Every engulfed vehicle's escape point is an independent computation; fan
	// them out so a cut that catches several vehicles in the same relocated
	// disk doesn't pay for them one at a time.
	g, _ := errgroup.WithContext(ctx)
	var escMu sync.Mutex
	escapedPos := make(map[isrcore.NodeID]isrcore.Point, len(jobs))
	escapedFlag := make(map[isrcore.NodeID]bool, len(jobs))
	for id, job := range jobs {
		id, job := id, job
		g.Go(func() error {
			pos := job.rawPos
			wasEscaped := false
			for _, th := range nextThreats {
				if th.Contains(pos) || th.Grazes(pos, isrcore.EpsGeom) {
					pos = geom.EscapePoint(th, pos, isrcore.ThreatMargin)
					wasEscaped = true
					break
				}
			}
			escMu.Lock()
			escapedPos[id] = pos
			escapedFlag[id] = wasEscaped
			escMu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	cutPositions := make(map[isrcore.NodeID]isrcore.Point, len(cur.Contracts))
	syntheticStarts := make(map[isrcore.NodeID]isrcore.SyntheticStart, len(jobs))
	for id, job := range jobs {
		rec := cur.Trajectories[id]
		rec.Delta = job.truncated
		rec.DeltaDistance = job.local
		rec.EndState = isrcore.EndState{Position: escapedPos[id], FuelRemaining: cur.Contracts[id].FuelBudget - job.local}
		cur.Trajectories[id] = rec

		cutPositions[id] = escapedPos[id]
		syntheticStarts[id] = isrcore.SyntheticStart{
			ID:          syntheticStartID(id),
			Pos:         escapedPos[id],
			CutPosition: job.rawPos,
			Escaped:     escapedFlag[id],
		}
	}
	for id, c := range cur.Contracts {
		if c.Enabled {
			continue
		}
		cutPositions[id] = cur.Trajectories[id].EndState.Position
	}

	cur.EndDist = &d
	cur.CutPositionsAtEnd = cutPositions

	activeByID := make(map[isrcore.NodeID]isrcore.Target, len(cur.ActiveTargets))
	for _, t := range cur.ActiveTargets {
		activeByID[t.ID] = t
	}
	for _, job := range jobs {
		for _, tid := range job.visited {
			if t, ok := activeByID[tid]; ok {
				m.frozenSoFar[tid] = t
			}
		}
	}

	return syntheticStarts, nil
}

func syntheticStartID(vehicle isrcore.NodeID) isrcore.NodeID {
	return isrcore.NodeID(fmt.Sprintf("%s_START", vehicle))
}

// reachedTargets returns the ids of route's interior targets whose matrix
// cumulative distance from the route start does not exceed local, i.e. those
// genuinely reached before a cut, as opposed to merely planned for.
func reachedTargets(route isrcore.Route, env *isrcore.Environment, local float64) ([]isrcore.NodeID, error) {
	if len(route.Nodes) < 2 {
		return nil, nil
	}
	mat, err := distmat.Build(env, route.Nodes)
	if err != nil {
		return nil, err
	}
	cum, err := trajectory.CumulativeDistances(route, mat)
	if err != nil {
		return nil, err
	}
	var out []isrcore.NodeID
	for i, id := range route.Nodes {
		if i == 0 || i == len(route.Nodes)-1 {
			continue
		}
		if cum[i] <= local+isrcore.EpsLength {
			out = append(out, id)
		}
	}
	return out, nil
}

func (m *Machine) markFullyVisitedLocked(seg *isrcore.Segment) {
	activeByID := make(map[isrcore.NodeID]isrcore.Target, len(seg.ActiveTargets))
	for _, t := range seg.ActiveTargets {
		activeByID[t.ID] = t
	}
	for id, c := range seg.Contracts {
		if !c.Enabled {
			continue
		}
		for _, tid := range seg.Trajectories[id].Route.Targets() {
			if t, ok := activeByID[tid]; ok {
				m.frozenSoFar[tid] = t
			}
		}
	}
}

// buildDraftSegment assembles a new OPEN segment from a completed solve,
// inheriting render_full/frozen-target history from prev per the replan rule:
// render_full[i+1] = render_full[i] + delta[i+1], join de-duplicated;
// frozenEndIndex[i+1] = len(render_full[i]) - 1.
func (m *Machine) buildDraftSegment(prev *isrcore.Segment, env *isrcore.Environment, contracts []isrcore.VehicleContract, sol *isrcore.Solution, activeTargets []isrcore.Target) (isrcore.Segment, error) {
	index := 0
	startDist := 0.0
	if prev != nil {
		index = prev.Index + 1
		if prev.EndDist == nil {
			return isrcore.Segment{}, isrcore.ErrNonMonotonicSegments
		}
		startDist = *prev.EndDist
	}

	contractsByID := make(map[isrcore.NodeID]isrcore.VehicleContract, len(contracts))
	trajectories := make(map[isrcore.NodeID]isrcore.VehicleTrajectoryRecord, len(contracts))
	for _, c := range contracts {
		contractsByID[c.ID] = c
		if !c.Enabled {
			trajectories[c.ID] = disabledRecord(prev, c)
			continue
		}
		res, ok := sol.Routes[c.ID]
		if !ok {
			return isrcore.Segment{}, fmt.Errorf("segment: no solve result for enabled vehicle %s", c.ID)
		}
		trajectories[c.ID] = buildEnabledRecord(prev, c, res)
	}

	frozen := make([]isrcore.Target, 0, len(m.frozenSoFar))
	for _, t := range m.frozenSoFar {
		frozen = append(frozen, t)
	}
	sort.Slice(frozen, func(i, j int) bool { return frozen[i].ID < frozen[j].ID })

	all := make([]isrcore.Target, 0, len(frozen)+len(activeTargets))
	all = append(all, frozen...)
	all = append(all, activeTargets...)

	return isrcore.Segment{
		Index:           index,
		StartDist:       startDist,
		Contracts:       contractsByID,
		Airports:        env.Airports,
		SyntheticStarts: env.SyntheticStarts,
		FrozenTargets:   frozen,
		ActiveTargets:   activeTargets,
		AllTargets:      all,
		Threats:         env.Threats,
		Trajectories:    trajectories,
	}, nil
}

// disabledRecord is the fixed carry-forward record for a disabled vehicle:
// empty delta/route, renderFull identical to its previous segment (or empty,
// for a vehicle never yet enabled), endState carried over unchanged.
func disabledRecord(prev *isrcore.Segment, c isrcore.VehicleContract) isrcore.VehicleTrajectoryRecord {
	var renderFull []isrcore.Point
	endState := isrcore.EndState{FuelRemaining: c.FuelBudget}
	if prev != nil {
		if prevRec, ok := prev.Trajectories[c.ID]; ok {
			renderFull = prevRec.RenderFull
			endState = prevRec.EndState
		}
	}
	return isrcore.VehicleTrajectoryRecord{
		RenderFull:     renderFull,
		FrozenEndIndex: len(renderFull) - 1,
		EndState:       endState,
	}
}

// buildEnabledRecord builds the trajectory record for an enabled vehicle's
// winning route, concatenating this segment's delta onto the inherited
// render_full history.
func buildEnabledRecord(prev *isrcore.Segment, c isrcore.VehicleContract, res isrcore.VehicleResult) isrcore.VehicleTrajectoryRecord {
	delta := append([]isrcore.Point(nil), res.Trajectory.Points...)

	var prevRenderFull []isrcore.Point
	if prev != nil {
		if prevRec, ok := prev.Trajectories[c.ID]; ok {
			prevRenderFull = prevRec.RenderFull
		}
	}
	renderFull := concatRenderFull(prevRenderFull, delta)

	var endPos isrcore.Point
	if len(delta) > 0 {
		endPos = delta[len(delta)-1]
	}

	return isrcore.VehicleTrajectoryRecord{
		RenderFull:     renderFull,
		Delta:          delta,
		FrozenEndIndex: len(prevRenderFull) - 1,
		Route:          res.Route,
		DeltaDistance:  res.Length,
		EndState:       isrcore.EndState{Position: endPos, FuelRemaining: res.FuelRemaining},
	}
}

// concatRenderFull appends delta onto prevRenderFull, dropping delta's first
// point if it coincides (within EpsGeom) with prevRenderFull's last one.
func concatRenderFull(prevRenderFull, delta []isrcore.Point) []isrcore.Point {
	if len(prevRenderFull) == 0 {
		return append([]isrcore.Point(nil), delta...)
	}
	out := append([]isrcore.Point(nil), prevRenderFull...)
	if len(delta) > 0 && out[len(out)-1].AlmostEqual(delta[0]) {
		return append(out, delta[1:]...)
	}
	return append(out, delta...)
}
