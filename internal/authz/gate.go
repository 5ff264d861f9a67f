// Package authz decides whether a protected route may run for the current session.
package authz

import (
	"github.com/and161185/movie-admin/internal/model"
	"github.com/and161185/movie-admin/internal/session"
)

// Permissions granted by the catalog backend.
const (
	PermCreateMovie = "create_movie"
	PermEditMovie   = "edit_movie"
	PermDeleteMovie = "delete_movie"
)

// Match selects how required permissions combine.
type Match string

const (
	MatchAll Match = "all"
	MatchAny Match = "any"
)

// Rule guards a private route. An empty Match means MatchAll; an empty
// Fallback means the gate's HomePath.
type Rule struct {
	Required []string
	Match    Match
	Fallback string
}

// Outcome is what the caller should do with the protected content.
type Outcome int

const (
	// OutcomeLoading means the session is still being checked: show nothing yet.
	OutcomeLoading Outcome = iota
	// OutcomeRender means the protected content may run.
	OutcomeRender
	// OutcomeRedirect means navigate to Decision.Target instead.
	OutcomeRedirect
)

func (o Outcome) String() string {
	switch o {
	case OutcomeLoading:
		return "loading"
	case OutcomeRender:
		return "render"
	case OutcomeRedirect:
		return "redirect"
	default:
		return "unknown"
	}
}

// Decision is the gate's verdict.
type Decision struct {
	Outcome Outcome
	Target  string
}

// Gate holds the redirect targets.
type Gate struct {
	LoginPath string
	HomePath  string
}

// DefaultGate redirects to /login and /movies.
var DefaultGate = Gate{LoginPath: "/login", HomePath: "/movies"}

// Private guards an authenticated route.
func (g Gate) Private(status session.Status, perms model.PermissionSet, r Rule) Decision {
	switch status {
	case session.StatusChecking:
		return Decision{Outcome: OutcomeLoading}
	case session.StatusAuthenticated:
	default:
		return Decision{Outcome: OutcomeRedirect, Target: g.LoginPath}
	}

	if Allowed(perms, r.Required, r.Match) {
		return Decision{Outcome: OutcomeRender}
	}
	target := r.Fallback
	if target == "" {
		target = g.HomePath
	}
	return Decision{Outcome: OutcomeRedirect, Target: target}
}

// Public guards a route only meant for signed-out users, such as login.
func (g Gate) Public(status session.Status) Decision {
	switch status {
	case session.StatusChecking:
		return Decision{Outcome: OutcomeLoading}
	case session.StatusAuthenticated:
		return Decision{Outcome: OutcomeRedirect, Target: g.HomePath}
	default:
		return Decision{Outcome: OutcomeRender}
	}
}

// Allowed checks required against perms by literal membership.
// An empty required list is always allowed.
func Allowed(perms model.PermissionSet, required []string, match Match) bool {
	if len(required) == 0 {
		return true
	}
	if match == MatchAny {
		for _, p := range required {
			if perms.Has(p) {
				return true
			}
		}
		return false
	}
	for _, p := range required {
		if !perms.Has(p) {
			return false
		}
	}
	return true
}
