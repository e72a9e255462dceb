// Package isrcore defines the shared data model for reconnaissance-mission planning:
// points, airports, targets, threat disks, vehicle contracts, routes, trajectories,
// segments, and the mission sequence that chains them. Every other package in this
// module (geom, distmat, trajectory, allocate, orienteer, optimize, mission, segment)
// operates on these types; isrcore itself performs no planning.
package isrcore

import "errors"

// Sentinel errors for shape/identity violations on the shared data model.
// Component-specific algorithmic errors (infeasibility, geometry degeneracies,
// optimizer rejection reasons) live in their owning packages.
var (
	// ErrEmptyID indicates a node (airport/target/threat/vehicle) was given an empty ID.
	ErrEmptyID = errors.New("isrcore: id is empty")

	// ErrDuplicateID indicates two nodes of the same kind share an ID.
	ErrDuplicateID = errors.New("isrcore: duplicate id")

	// ErrNodeNotFound indicates a referenced node id does not exist in the environment.
	ErrNodeNotFound = errors.New("isrcore: node not found")

	// ErrNegativeFuel indicates a vehicle contract carries a negative fuel budget.
	ErrNegativeFuel = errors.New("isrcore: negative fuel budget")

	// ErrNegativeRadius indicates a threat disk was given a negative radius.
	ErrNegativeRadius = errors.New("isrcore: negative threat radius")

	// ErrInvalidPriorityFilter indicates a priority filter predicate is malformed;
	// VehicleContract.Validate also returns it for a fixed-end contract with no End.
	ErrInvalidPriorityFilter = errors.New("isrcore: invalid priority filter")

	// ErrNonMonotonicSegments indicates segment startDist/endDist/index invariants broke.
	ErrNonMonotonicSegments = errors.New("isrcore: non-monotonic segment boundaries")

	// ErrFrozenEdgeViolation indicates a contract's frozen edge is not present, in
	// order, in the vehicle's resulting route.
	ErrFrozenEdgeViolation = errors.New("isrcore: frozen edge violation")

	// ErrTargetPartition indicates a target id appears in both (or neither) of a
	// segment's frozen/active sets.
	ErrTargetPartition = errors.New("isrcore: target frozen/active partition violated")
)
