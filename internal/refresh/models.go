// Package refresh sequences permission checks, location, address
// resolution and the air quality fetch into one screen refresh.
package refresh

import (
	"context"
	"errors"
	"time"

	"github.com/giljurha/Airvisual/internal/airquality"
	"github.com/giljurha/Airvisual/internal/geocode"
	"github.com/giljurha/Airvisual/internal/location"
	"github.com/giljurha/Airvisual/internal/permission"
	"github.com/giljurha/Airvisual/internal/presenter"
)

// ErrClosed is returned by Run after a terminal outcome closed the screen.
var ErrClosed = errors.New("screen closed")

// State is a refresh controller state.
type State int

const (
	StateIdle State = iota
	StateCheckingPermissions
	StateServicesPrompt
	StateRequestingPermission
	StateLocatingAndResolving
	StateFetchingAirQuality
	StateDone
	StateFailed
	// StateClosed is entered after a terminal failure; nothing leaves it.
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateCheckingPermissions:
		return "checking_permissions"
	case StateServicesPrompt:
		return "services_prompt"
	case StateRequestingPermission:
		return "requesting_permission"
	case StateLocatingAndResolving:
		return "locating_and_resolving"
	case StateFetchingAirQuality:
		return "fetching_air_quality"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Transition is reported for every state change.
type Transition struct {
	Generation uint64
	From       State
	To         State
}

// NoticeLevel is the severity of a notice.
type NoticeLevel int

const (
	NoticeInfo NoticeLevel = iota
	NoticeWarning
	NoticeError
)

func (l NoticeLevel) String() string {
	switch l {
	case NoticeInfo:
		return "info"
	case NoticeWarning:
		return "warning"
	case NoticeError:
		return "error"
	default:
		return "unknown"
	}
}

// Notice is a transient user-visible message.
type Notice struct {
	Generation uint64
	Level      NoticeLevel
	Text       string
	// Err is the failure the notice reports, if any.
	Err error
	At  time.Time
}

// Snapshot is a consistent copy of the controller's public state.
type Snapshot struct {
	State      State
	Generation uint64
	View       presenter.ViewState
	// LastOutcome is StateDone or StateFailed for the latest finished
	// refresh, or StateIdle if none finished yet.
	LastOutcome State
	LastError   error
}

// Renderer displays a ViewState.
type Renderer interface {
	Render(view presenter.ViewState)
}

// Notifier shows a transient notice.
type Notifier interface {
	Notify(notice Notice)
}

// Screen is the hosting screen, closed on terminal failures.
type Screen interface {
	Close()
}

// PermissionGate checks and requests location access.
type PermissionGate interface {
	CheckAndRequest(ctx context.Context) permission.Decision
	ResolveServices(ctx context.Context) <-chan permission.ServicesResolution
}

// Locator reads the last known position.
type Locator interface {
	Current(ctx context.Context) (location.Coordinates, bool)
}

// AddressResolver reverse geocodes coordinates.
type AddressResolver interface {
	Resolve(ctx context.Context, lat, lon float64) (*geocode.Address, error)
}

// AirQualityFetcher starts one air quality request.
type AirQualityFetcher interface {
	Fetch(ctx context.Context, coords location.Coordinates, apiKey string) <-chan airquality.Result
}
