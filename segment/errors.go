// Package segment drives a Mission through its segmented-replan state machine:
// EMPTY -> OPEN(0) -> CLOSED(0) -> OPEN(1) -> ... -> TERMINATED. Every
// mutation to a Mission's Segments slice goes through a Machine method; nothing
// else in this module appends to it directly.
package segment

import "errors"

// ErrMissionTerminated indicates an operation was attempted after the last
// enabled vehicle reached its terminal node.
var ErrMissionTerminated = errors.New("segment: mission already terminated")

// ErrNoOpenSegment indicates Accept or Cut was called with nothing open.
var ErrNoOpenSegment = errors.New("segment: no open segment")

// ErrCutDistanceOutOfRange indicates a requested cut distance was not strictly
// greater than the open segment's startDist, or exceeded the farthest distance
// any enabled vehicle's delta actually reaches.
var ErrCutDistanceOutOfRange = errors.New("segment: cut distance outside open segment's range")

// ErrInvalidSegment is wrapped by validateAppend's delta and disabled-vehicle
// checks; its boundary and target-partition checks return
// isrcore.ErrNonMonotonicSegments and isrcore.ErrTargetPartition instead.
var ErrInvalidSegment = errors.New("segment: candidate segment violates an invariant")
