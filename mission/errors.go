package mission

import "errors"

// ErrNoEnabledVehicles indicates every vehicle contract is disabled; there is
// nothing for the allocator or orienteering solver to do.
var ErrNoEnabledVehicles = errors.New("mission: no enabled vehicles in contracts")
