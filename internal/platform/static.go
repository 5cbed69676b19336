package platform

import (
	"context"

	"github.com/giljurha/Airvisual/internal/permission"
)

// Static is a non-interactive host. Scopes are granted from configuration,
// requests for anything else are refused and the settings dialog is always
// declined.
type Static struct {
	services ServicesChecker
	grants   *grantSet
}

var (
	_ permission.Platform = (*Static)(nil)
	_ permission.Prompter = (*Static)(nil)
)

// NewStatic creates a static host granting scopes.
func NewStatic(services ServicesChecker, scopes []string) *Static {
	return &Static{services: services, grants: newGrantSet(scopes)}
}

// ServicesEnabled implements permission.Platform.
func (s *Static) ServicesEnabled() bool {
	return s.services.ServicesEnabled()
}

// Granted implements permission.Platform.
func (s *Static) Granted(scope permission.Scope) bool {
	return s.grants.has(scope)
}

// Request implements permission.Platform. It answers immediately from the
// configured grants.
func (s *Static) Request(_ context.Context, scopes []permission.Scope) <-chan []permission.Grant {
	out := make(chan []permission.Grant, 1)
	grants := make([]permission.Grant, 0, len(scopes))
	for _, scope := range scopes {
		grants = append(grants, permission.Grant{Scope: scope, Granted: s.grants.has(scope)})
	}
	out <- grants
	return out
}

// OpenSettings implements permission.Platform. There is no settings screen.
func (s *Static) OpenSettings(context.Context) <-chan bool {
	out := make(chan bool, 1)
	out <- false
	return out
}

// ConfirmLocationSettings implements permission.Prompter.
func (s *Static) ConfirmLocationSettings(context.Context) bool {
	return false
}
