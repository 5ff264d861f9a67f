package authz

import (
	"strings"

	"github.com/and161185/movie-admin/internal/model"
	"github.com/and161185/movie-admin/internal/session"
)

// Access is the kind of guard a route sits behind.
type Access int

const (
	AccessPublic Access = iota
	AccessPrivate
)

// Route is one entry of the route table.
type Route struct {
	Pattern string
	Access  Access
	Rule    Rule
}

// Routes is an ordered route table; the first matching pattern wins.
type Routes []Route

// DefaultRoutes mirrors the admin console's navigation.
var DefaultRoutes = Routes{
	{Pattern: "/login", Access: AccessPublic},
	{Pattern: "/movies", Access: AccessPrivate},
	{Pattern: "/new-movie", Access: AccessPrivate, Rule: Rule{Required: []string{PermCreateMovie}}},
	{Pattern: "/movies/inactives", Access: AccessPrivate, Rule: Rule{Required: []string{PermCreateMovie}}},
	{Pattern: "/movies/:id", Access: AccessPrivate},
	{Pattern: "/movies/:id/edit", Access: AccessPrivate, Rule: Rule{Required: []string{PermEditMovie}}},
	{Pattern: "/movies/:id/delete", Access: AccessPrivate, Rule: Rule{Required: []string{PermDeleteMovie}}},
	{Pattern: "/attributes/*", Access: AccessPrivate, Rule: Rule{
		Required: []string{PermCreateMovie, PermEditMovie, PermDeleteMovie},
		Match:    MatchAll,
	}},
}

// Lookup returns the first route whose pattern matches path.
func (rs Routes) Lookup(path string) (Route, bool) {
	for _, r := range rs {
		if matchPattern(r.Pattern, path) {
			return r, true
		}
	}
	return Route{}, false
}

// Decide runs the gate for path. Unknown paths redirect home, like a catch-all route.
func (g Gate) Decide(rs Routes, path string, status session.Status, perms model.PermissionSet) Decision {
	r, ok := rs.Lookup(path)
	if !ok {
		return Decision{Outcome: OutcomeRedirect, Target: g.HomePath}
	}
	if r.Access == AccessPublic {
		return g.Public(status)
	}
	return g.Private(status, perms, r.Rule)
}

// matchPattern matches "/a/:param/b" segment by segment; a trailing "*" matches the rest.
func matchPattern(pattern, path string) bool {
	ps := splitPath(pattern)
	xs := splitPath(path)
	for i, seg := range ps {
		if seg == "*" {
			return len(xs) >= i
		}
		if i >= len(xs) {
			return false
		}
		if strings.HasPrefix(seg, ":") {
			if xs[i] == "" {
				return false
			}
			continue
		}
		if seg != xs[i] {
			return false
		}
	}
	return len(ps) == len(xs)
}

func splitPath(p string) []string {
	p = strings.Trim(p, "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}
