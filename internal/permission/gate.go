package permission

import (
	"context"

	"github.com/rs/zerolog"
)

// Platform is the host's permission and location-settings API.
type Platform interface {
	// ServicesEnabled reports whether GPS or network location is switched on.
	ServicesEnabled() bool

	// Granted reports whether scope is currently granted.
	Granted(scope Scope) bool

	// Request asks the user for scopes. The channel yields one answer per
	// scope, once. A shorter slice means the dialog was interrupted.
	Request(ctx context.Context, scopes []Scope) <-chan []Grant

	// OpenSettings opens the location settings screen. The channel yields
	// true, once, if the user returned from it confirming the change.
	OpenSettings(ctx context.Context) <-chan bool
}

// Prompter presents the "location services are off" dialog.
type Prompter interface {
	// ConfirmLocationSettings returns true if the user chose to open settings.
	ConfirmLocationSettings(ctx context.Context) bool
}

// GateConfig holds configuration for a Gate.
type GateConfig struct {
	Platform Platform
	Prompter Prompter
	Logger   zerolog.Logger
}

// Gate checks and requests what is needed before location can be read.
type Gate struct {
	platform Platform
	prompter Prompter
	logger   zerolog.Logger
}

// NewGate creates a new permission gate.
func NewGate(cfg GateConfig) *Gate {
	return &Gate{
		platform: cfg.Platform,
		prompter: cfg.Prompter,
		logger:   cfg.Logger,
	}
}

// State evaluates the platform now.
func (g *Gate) State() State {
	return State{
		LocationServicesEnabled: g.platform.ServicesEnabled(),
		FineGranted:             g.platform.Granted(ScopeFine),
		CoarseGranted:           g.platform.Granted(ScopeCoarse),
	}
}

// CheckAndRequest checks location services and permissions, issuing a
// permission request when a scope is missing.
func (g *Gate) CheckAndRequest(ctx context.Context) Decision {
	state := g.State()

	g.logger.Debug().
		Bool("services_enabled", state.LocationServicesEnabled).
		Bool("fine", state.FineGranted).
		Bool("coarse", state.CoarseGranted).
		Msg("permission state")

	switch {
	case !state.LocationServicesEnabled:
		return Decision{Outcome: OutcomeServicesDisabled}
	case state.PermissionsGranted():
		return Decision{Outcome: OutcomeGranted}
	}

	answers := g.platform.Request(ctx, RequiredScopes)
	pending := make(chan Outcome, 1)
	go func() {
		select {
		case grants, ok := <-answers:
			if !ok {
				pending <- OutcomeInterrupted
				return
			}
			pending <- evaluate(grants)
		case <-ctx.Done():
			pending <- OutcomeInterrupted
		}
	}()

	return Decision{Outcome: OutcomePendingUserAction, Pending: pending}
}

// evaluate maps the user's answers to an outcome. Every required scope must
// be answered, and any refusal is a denial.
func evaluate(grants []Grant) Outcome {
	if len(grants) != len(RequiredScopes) {
		return OutcomeInterrupted
	}
	for _, grant := range grants {
		if !grant.Granted {
			return OutcomeDenied
		}
	}
	return OutcomeGranted
}

// ResolveServices shows the settings prompt and, if accepted, opens location
// settings and re-checks services on return. The channel yields once.
func (g *Gate) ResolveServices(ctx context.Context) <-chan ServicesResolution {
	result := make(chan ServicesResolution, 1)

	go func() {
		if !g.prompter.ConfirmLocationSettings(ctx) {
			result <- ResolutionDeclined
			return
		}

		var confirmed bool
		select {
		case confirmed = <-g.platform.OpenSettings(ctx):
		case <-ctx.Done():
		}
		if !confirmed {
			result <- ResolutionAbandoned
			return
		}

		if g.platform.ServicesEnabled() {
			result <- ResolutionEnabled
			return
		}
		g.logger.Warn().Msg("location services still disabled after settings")
		result <- ResolutionStillDisabled
	}()

	return result
}
