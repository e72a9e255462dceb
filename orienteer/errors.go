package orienteer

import "errors"

// Sentinel errors for the per-vehicle orienteering solve.
var (
	// ErrInfeasibleFuel indicates no route - not even the trivial start->end leg -
	// fits within the vehicle's fuel budget.
	ErrInfeasibleFuel = errors.New("orienteer: no route fits within fuel budget")

	// ErrEmptyCandidates indicates the vehicle was handed no candidate targets;
	// callers fall back to the trivial start->end route (or ErrInfeasibleFuel).
	ErrEmptyCandidates = errors.New("orienteer: empty candidate target set")

	// ErrNoAllowedEnd indicates EndMode==EndBest was requested with an empty
	// AllowedEnds set.
	ErrNoAllowedEnd = errors.New("orienteer: best_end mode requires a non-empty allowed-end set")
)
