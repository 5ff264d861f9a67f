package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/and161185/movie-admin/internal/model"
	"github.com/and161185/movie-admin/internal/session"
)

func TestGate_Private(t *testing.T) {
	t.Parallel()
	g := DefaultGate
	tests := []struct {
		name   string
		status session.Status
		perms  model.PermissionSet
		rule   Rule
		want   Decision
	}{
		{
			name:   "checking never redirects",
			status: session.StatusChecking,
			rule:   Rule{Required: []string{PermCreateMovie}},
			want:   Decision{Outcome: OutcomeLoading},
		},
		{
			name:   "not authenticated goes to login",
			status: session.StatusNotAuthenticated,
			perms:  model.PermissionSet{PermCreateMovie},
			rule:   Rule{Required: []string{PermCreateMovie}, Fallback: "/elsewhere"},
			want:   Decision{Outcome: OutcomeRedirect, Target: "/login"},
		},
		{
			name:   "empty requirement renders",
			status: session.StatusAuthenticated,
			perms:  model.PermissionSet{},
			want:   Decision{Outcome: OutcomeRender},
		},
		{
			name:   "all: missing one denies",
			status: session.StatusAuthenticated,
			perms:  model.PermissionSet{PermCreateMovie},
			rule:   Rule{Required: []string{PermCreateMovie, PermEditMovie}, Match: MatchAll},
			want:   Decision{Outcome: OutcomeRedirect, Target: "/movies"},
		},
		{
			name:   "all: subset granted",
			status: session.StatusAuthenticated,
			perms:  model.PermissionSet{PermCreateMovie},
			rule:   Rule{Required: []string{PermCreateMovie}, Match: MatchAll},
			want:   Decision{Outcome: OutcomeRender},
		},
		{
			name:   "any: one of three granted",
			status: session.StatusAuthenticated,
			perms:  model.PermissionSet{PermEditMovie},
			rule:   Rule{Required: []string{PermCreateMovie, PermEditMovie, PermDeleteMovie}, Match: MatchAny},
			want:   Decision{Outcome: OutcomeRender},
		},
		{
			name:   "any: none granted uses fallback",
			status: session.StatusAuthenticated,
			perms:  model.PermissionSet{"view_reports"},
			rule:   Rule{Required: []string{PermCreateMovie, PermEditMovie}, Match: MatchAny, Fallback: "/movies/inactives"},
			want:   Decision{Outcome: OutcomeRedirect, Target: "/movies/inactives"},
		},
		{
			name:   "default match is all",
			status: session.StatusAuthenticated,
			perms:  model.PermissionSet{PermEditMovie},
			rule:   Rule{Required: []string{PermCreateMovie, PermEditMovie}},
			want:   Decision{Outcome: OutcomeRedirect, Target: "/movies"},
		},
		{
			name:   "no implied hierarchy",
			status: session.StatusAuthenticated,
			perms:  model.PermissionSet{"admin"},
			rule:   Rule{Required: []string{PermDeleteMovie}},
			want:   Decision{Outcome: OutcomeRedirect, Target: "/movies"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, g.Private(tt.status, tt.perms, tt.rule))
		})
	}
}

func TestGate_Public(t *testing.T) {
	t.Parallel()
	g := DefaultGate
	assert.Equal(t, Decision{Outcome: OutcomeLoading}, g.Public(session.StatusChecking))
	assert.Equal(t, Decision{Outcome: OutcomeRedirect, Target: "/movies"}, g.Public(session.StatusAuthenticated))
	assert.Equal(t, Decision{Outcome: OutcomeRender}, g.Public(session.StatusNotAuthenticated))
}

func TestAllowed_NilPermissions(t *testing.T) {
	t.Parallel()
	assert.True(t, Allowed(nil, nil, MatchAll))
	assert.False(t, Allowed(nil, []string{PermEditMovie}, MatchAny))
	assert.False(t, Allowed(nil, []string{PermEditMovie}, MatchAll))
}

func TestRoutes_Lookup(t *testing.T) {
	t.Parallel()
	tests := []struct {
		path    string
		pattern string
		found   bool
	}{
		{path: "/login", pattern: "/login", found: true},
		{path: "/movies", pattern: "/movies", found: true},
		{path: "/movies/", pattern: "/movies", found: true},
		{path: "/movies/inactives", pattern: "/movies/inactives", found: true},
		{path: "/movies/42", pattern: "/movies/:id", found: true},
		{path: "/movies/42/edit", pattern: "/movies/:id/edit", found: true},
		{path: "/attributes", pattern: "/attributes/*", found: true},
		{path: "/attributes/genres", pattern: "/attributes/*", found: true},
		{path: "/movies/42/edit/more", found: false},
		{path: "/unknown", found: false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			r, ok := DefaultRoutes.Lookup(tt.path)
			assert.Equal(t, tt.found, ok)
			if ok {
				assert.Equal(t, tt.pattern, r.Pattern)
			}
		})
	}
}

func TestGate_Decide(t *testing.T) {
	t.Parallel()
	g := DefaultGate
	editor := model.PermissionSet{PermEditMovie}

	assert.Equal(t, OutcomeRender, g.Decide(DefaultRoutes, "/movies/7/edit", session.StatusAuthenticated, editor).Outcome)
	assert.Equal(t,
		Decision{Outcome: OutcomeRedirect, Target: "/movies"},
		g.Decide(DefaultRoutes, "/new-movie", session.StatusAuthenticated, editor))
	assert.Equal(t,
		Decision{Outcome: OutcomeRedirect, Target: "/movies"},
		g.Decide(DefaultRoutes, "/attributes/genres", session.StatusAuthenticated, editor))
	assert.Equal(t,
		Decision{Outcome: OutcomeRedirect, Target: "/login"},
		g.Decide(DefaultRoutes, "/movies", session.StatusNotAuthenticated, nil))
	assert.Equal(t,
		Decision{Outcome: OutcomeRedirect, Target: "/movies"},
		g.Decide(DefaultRoutes, "/login", session.StatusAuthenticated, editor))
	assert.Equal(t,
		Decision{Outcome: OutcomeRedirect, Target: "/movies"},
		g.Decide(DefaultRoutes, "/nowhere", session.StatusNotAuthenticated, nil))
}

func TestOutcome_String(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "loading", OutcomeLoading.String())
	assert.Equal(t, "render", OutcomeRender.String())
	assert.Equal(t, "redirect", OutcomeRedirect.String())
}
