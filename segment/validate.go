package segment

import (
	"fmt"

	"github.com/ksali98/isr-planner-sub001/isrcore"
)

// validateAppend checks candidate against prev and returns the first violation
// found, in strict first-failure order — deliberately NOT a collect-all
// validator; wire's importer collects every violation instead, a distinct
// contract for a distinct boundary (disk-sourced data vs. this module's own
// solve output).
func validateAppend(prev *isrcore.Segment, candidate *isrcore.Segment) error {
	if err := validateBoundaries(prev, candidate); err != nil {
		return err
	}
	if err := validateDeltas(candidate); err != nil {
		return err
	}
	if err := validateDisabledVehicles(prev, candidate); err != nil {
		return err
	}
	if err := validateTargetPartition(candidate); err != nil {
		return err
	}
	return nil
}

func validateBoundaries(prev *isrcore.Segment, candidate *isrcore.Segment) error {
	wantIndex := 0
	wantStart := 0.0
	if prev != nil {
		wantIndex = prev.Index + 1
		if prev.EndDist == nil {
			return isrcore.ErrNonMonotonicSegments
		}
		wantStart = *prev.EndDist
	}
	if candidate.Index != wantIndex {
		return isrcore.ErrNonMonotonicSegments
	}
	if candidate.StartDist < 0 || absDiff(candidate.StartDist, wantStart) > isrcore.EpsLength {
		return isrcore.ErrNonMonotonicSegments
	}
	if candidate.EndDist != nil && *candidate.EndDist < candidate.StartDist {
		return isrcore.ErrNonMonotonicSegments
	}
	return nil
}

func absDiff(a, b float64) float64 {
	if a < b {
		return b - a
	}
	return a - b
}

func validateDeltas(candidate *isrcore.Segment) error {
	for id, rec := range candidate.Trajectories {
		for i := 0; i+1 < len(rec.Delta); i++ {
			if rec.Delta[i].AlmostEqual(rec.Delta[i+1]) {
				return fmt.Errorf("segment: duplicate consecutive point in vehicle %s delta: %w", id, ErrInvalidSegment)
			}
		}
		if rec.FrozenEndIndex >= len(rec.RenderFull) {
			return fmt.Errorf("segment: frozenEndIndex out of range for vehicle %s: %w", id, ErrInvalidSegment)
		}
	}
	return nil
}

func validateDisabledVehicles(prev *isrcore.Segment, candidate *isrcore.Segment) error {
	for id, c := range candidate.Contracts {
		if c.Enabled {
			continue
		}
		rec := candidate.Trajectories[id]
		if len(rec.Delta) != 0 || len(rec.Route.Nodes) != 0 || rec.DeltaDistance != 0 {
			return fmt.Errorf("segment: disabled vehicle %s carries a non-empty delta/route: %w", id, ErrInvalidSegment)
		}
		if prev == nil {
			continue
		}
		prevRec, ok := prev.Trajectories[id]
		if !ok {
			continue
		}
		if !samePolyline(prevRec.RenderFull, rec.RenderFull) {
			return fmt.Errorf("segment: disabled vehicle %s renderFull diverged from its previous segment: %w", id, ErrInvalidSegment)
		}
	}
	return nil
}

func samePolyline(a, b []isrcore.Point) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].AlmostEqual(b[i]) {
			return false
		}
	}
	return true
}

func validateTargetPartition(candidate *isrcore.Segment) error {
	if !candidate.TargetUnionComplete() {
		return isrcore.ErrTargetPartition
	}
	return nil
}
