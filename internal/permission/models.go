// Package permission gates location access on OS location services and the
// runtime location permissions.
package permission

import "errors"

// Terminal permission errors.
var (
	ErrLocationServicesDisabled = errors.New("location services disabled")
	ErrPermissionDenied         = errors.New("location permission denied")
)

// Scope is a runtime location permission.
type Scope string

const (
	ScopeFine   Scope = "fine"
	ScopeCoarse Scope = "coarse"
)

// RequiredScopes are the scopes that must all be granted before a location read.
var RequiredScopes = []Scope{ScopeFine, ScopeCoarse}

// State is a point-in-time evaluation of the platform. It is never cached.
type State struct {
	LocationServicesEnabled bool `json:"locationServicesEnabled"`
	FineGranted             bool `json:"fineGranted"`
	CoarseGranted           bool `json:"coarseGranted"`
}

// PermissionsGranted reports whether every required scope is granted.
func (s State) PermissionsGranted() bool {
	return s.FineGranted && s.CoarseGranted
}

// Ready reports whether location may be read.
func (s State) Ready() bool {
	return s.LocationServicesEnabled && s.PermissionsGranted()
}

// Outcome is the result of a permission check.
type Outcome int

const (
	OutcomeGranted Outcome = iota
	OutcomeServicesDisabled
	OutcomeDenied
	OutcomePendingUserAction
	// OutcomeInterrupted means the permission dialog was dismissed without
	// an answer for every scope.
	OutcomeInterrupted
)

func (o Outcome) String() string {
	switch o {
	case OutcomeGranted:
		return "granted"
	case OutcomeServicesDisabled:
		return "services_disabled"
	case OutcomeDenied:
		return "denied"
	case OutcomePendingUserAction:
		return "pending_user_action"
	case OutcomeInterrupted:
		return "interrupted"
	default:
		return "unknown"
	}
}

// Grant is the user's answer for one scope.
type Grant struct {
	Scope   Scope
	Granted bool
}

// Decision is returned by Gate.CheckAndRequest. Pending is non-nil only when
// Outcome is OutcomePendingUserAction and delivers exactly one of
// OutcomeGranted, OutcomeDenied or OutcomeInterrupted.
type Decision struct {
	Outcome Outcome
	Pending <-chan Outcome
}

// ServicesResolution is the result of sending the user to location settings.
type ServicesResolution int

const (
	// ResolutionEnabled means services were switched on in settings.
	ResolutionEnabled ServicesResolution = iota
	// ResolutionStillDisabled means the user came back with services still off.
	ResolutionStillDisabled
	// ResolutionDeclined means the user cancelled the settings prompt.
	ResolutionDeclined
	// ResolutionAbandoned means the settings screen returned without confirmation.
	ResolutionAbandoned
)

func (r ServicesResolution) String() string {
	switch r {
	case ResolutionEnabled:
		return "enabled"
	case ResolutionStillDisabled:
		return "still_disabled"
	case ResolutionDeclined:
		return "declined"
	case ResolutionAbandoned:
		return "abandoned"
	default:
		return "unknown"
	}
}
