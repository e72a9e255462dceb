package segment

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ksali98/isr-planner-sub001/isrcore"
)

func baseSegment() *isrcore.Segment {
	return &isrcore.Segment{
		Index:     0,
		StartDist: 0,
		Contracts: map[isrcore.NodeID]isrcore.VehicleContract{
			"v1": {ID: "v1", Enabled: true, FuelBudget: 100, Start: "base", End: "base"},
		},
		FrozenTargets: nil,
		ActiveTargets: []isrcore.Target{{ID: "t1"}},
		AllTargets:    []isrcore.Target{{ID: "t1"}},
		Trajectories: map[isrcore.NodeID]isrcore.VehicleTrajectoryRecord{
			"v1": {FrozenEndIndex: -1},
		},
	}
}

func TestValidateAppendRejectsWrongIndex(t *testing.T) {
	seg := baseSegment()
	seg.Index = 5
	err := validateAppend(nil, seg)
	assert.ErrorIs(t, err, isrcore.ErrNonMonotonicSegments)
}

func TestValidateAppendRejectsStartDistMismatch(t *testing.T) {
	endDist := 10.0
	prev := &isrcore.Segment{Index: 0, EndDist: &endDist}
	seg := baseSegment()
	seg.Index = 1
	seg.StartDist = 999
	err := validateAppend(prev, seg)
	assert.ErrorIs(t, err, isrcore.ErrNonMonotonicSegments)
}

func TestValidateAppendRejectsIncompleteTargetPartition(t *testing.T) {
	seg := baseSegment()
	seg.AllTargets = append(seg.AllTargets, isrcore.Target{ID: "ghost"})
	err := validateAppend(nil, seg)
	assert.ErrorIs(t, err, isrcore.ErrTargetPartition)
}

func TestValidateAppendRejectsDisabledVehicleWithNonEmptyRoute(t *testing.T) {
	seg := baseSegment()
	seg.Contracts["v1"] = isrcore.VehicleContract{ID: "v1", Enabled: false, FuelBudget: 100}
	seg.Trajectories["v1"] = isrcore.VehicleTrajectoryRecord{
		Route: isrcore.Route{Nodes: []isrcore.NodeID{"base", "t1", "base"}},
	}
	err := validateAppend(nil, seg)
	assert.True(t, errors.Is(err, ErrInvalidSegment))
}

func TestValidateAppendRejectsDuplicateConsecutiveDeltaPoint(t *testing.T) {
	seg := baseSegment()
	pt := isrcore.Point{X: 1, Y: 1}
	seg.Trajectories["v1"] = isrcore.VehicleTrajectoryRecord{
		Delta:          []isrcore.Point{pt, pt},
		FrozenEndIndex: -1,
	}
	err := validateAppend(nil, seg)
	assert.True(t, errors.Is(err, ErrInvalidSegment))
}

func TestValidateAppendAcceptsWellFormedSegment(t *testing.T) {
	seg := baseSegment()
	err := validateAppend(nil, seg)
	assert.NoError(t, err)
}
