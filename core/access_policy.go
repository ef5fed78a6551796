package core

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// Requirement says what a route demands from the caller.
type Requirement int

const (
	// Public routes admit anonymous traffic.
	Public Requirement = iota
	// Authenticated routes require a resolved identity; the role is not
	// inspected further.
	Authenticated
)

// RouteRule binds a path prefix to a requirement.
type RouteRule struct {
	Prefix      string
	Requirement Requirement
}

// RoutePolicy is an ordered rule table consulted per request path.
// First match wins; an unmatched path is public.
type RoutePolicy struct {
	rules []RouteRule
}

func NewRoutePolicy(rules ...RouteRule) *RoutePolicy {
	return &RoutePolicy{rules: rules}
}

// DefaultRoutePolicy mirrors the service's route surface: the auth
// endpoints are open, the student resources are protected, everything
// else (health checks etc.) falls through to public.
func DefaultRoutePolicy() *RoutePolicy {
	return NewRoutePolicy(
		RouteRule{Prefix: "/auth", Requirement: Public},
		RouteRule{Prefix: "/students", Requirement: Authenticated},
		RouteRule{Prefix: "/crypto", Requirement: Authenticated},
	)
}

// Allowed reports whether a request for path with the given identity
// (nil = anonymous) may proceed.
func (p *RoutePolicy) Allowed(path string, identity *Identity) bool {
	for _, rule := range p.rules {
		if !matchPrefix(path, rule.Prefix) {
			continue
		}
		if rule.Requirement == Authenticated {
			return identity != nil
		}
		return true
	}
	return true
}

// matchPrefix matches on whole path segments: /students and /students/12
// match the prefix /students, /studentsx does not.
func matchPrefix(path, prefix string) bool {
	if !strings.HasPrefix(path, prefix) {
		return false
	}
	return len(path) == len(prefix) || path[len(prefix)] == '/'
}

// PolicyGate turns an unmet authentication requirement into a 401. It
// runs after AuthMiddleware so that the identity, when present, is
// already attached.
func PolicyGate(policy *RoutePolicy) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !policy.Allowed(c.Request.URL.Path, CurrentIdentity(c)) {
			c.String(http.StatusUnauthorized, "authentication required")
			c.Abort()
			return
		}
		c.Next()
	}
}
