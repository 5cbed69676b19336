// Package platform provides the hosts the screen runs on: an interactive
// terminal and a static host for serve mode.
package platform

import (
	"sync"

	"github.com/giljurha/Airvisual/internal/permission"
)

// ServicesChecker reports whether any location source is switched on.
type ServicesChecker interface {
	ServicesEnabled() bool
}

// Switch is a location source that settings can turn on.
type Switch interface {
	Name() string
	Enabled() bool
	SetEnabled(enabled bool)
}

// grantSet is the set of granted scopes.
type grantSet struct {
	mu      sync.RWMutex
	granted map[permission.Scope]bool
}

func newGrantSet(scopes []string) *grantSet {
	g := &grantSet{granted: make(map[permission.Scope]bool)}
	for _, s := range scopes {
		g.granted[permission.Scope(s)] = true
	}
	return g
}

func (g *grantSet) has(scope permission.Scope) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.granted[scope]
}

func (g *grantSet) apply(grants []permission.Grant) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, grant := range grants {
		g.granted[grant.Scope] = grant.Granted
	}
}
