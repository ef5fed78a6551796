package core

import (
	"errors"
	"log"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
)

const identityKey = "identity"

const bearerPrefix = "Bearer "

// AuthMiddleware resolves the bearer token on each request into an
// Identity stored in the gin context. It never terminates the request:
// missing, malformed, forged, and expired tokens all degrade to an
// anonymous request, and rejection (if any) is the policy gate's job.
//
// The only exception is a credential-store outage after a token has
// verified: identity can then not be determined at all, so the request
// fails with 500 instead of silently downgrading to anonymous.
func AuthMiddleware(tokens *TokenService, users UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			c.Next()
			return
		}

		claims, err := tokens.Verify(token)
		if err != nil {
			if subject, ok := tokens.ExtractSubject(token); ok {
				log.Printf("rejected token for subject %s: %v", subject, err)
			} else {
				log.Printf("rejected unreadable token: %v", err)
			}
			c.Next()
			return
		}

		u, err := users.FindByUsername(c.Request.Context(), claims.Subject)
		if err != nil {
			if errors.Is(err, ErrUserNotFound) {
				// A verified token naming a deleted user grants nothing.
				log.Printf("token subject %s no longer exists", claims.Subject)
				c.Next()
				return
			}
			respondError(c, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "failed to resolve identity")
			c.Abort()
			return
		}

		if _, exists := c.Get(identityKey); !exists {
			c.Set(identityKey, &Identity{Username: u.Username, Role: u.Role})
		}
		c.Next()
	}
}

// bearerToken extracts the token text from an Authorization header value.
// A header without the Bearer scheme, an empty remainder, or the literal
// string "null" (what browsers send for an unset JS variable) all count
// as no token.
func bearerToken(header string) (string, bool) {
	if !strings.HasPrefix(header, bearerPrefix) {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, bearerPrefix))
	if token == "" || token == "null" {
		return "", false
	}
	return token, true
}

// CurrentIdentity returns the authenticated identity for the request, or
// nil for anonymous traffic.
func CurrentIdentity(c *gin.Context) *Identity {
	v, ok := c.Get(identityKey)
	if !ok {
		return nil
	}
	id, _ := v.(*Identity)
	return id
}

// OriginMiddleware validates Origin/Referer against the allowed list and
// sets CORS headers for cross-origin callers.
func OriginMiddleware(cfg Config) gin.HandlerFunc {
	allowed := map[string]struct{}{}
	for _, o := range cfg.AllowedOrigins {
		allowed[strings.ToLower(o)] = struct{}{}
	}

	isAllowed := func(origin string) bool {
		if origin == "" {
			// Same-origin navigation (no Origin header) is allowed.
			return true
		}
		if len(allowed) == 0 {
			return false
		}
		_, ok := allowed[strings.ToLower(origin)]
		return ok
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin == "" {
			if referer := c.GetHeader("Referer"); referer != "" {
				if u, err := url.Parse(referer); err == nil {
					origin = u.Scheme + "://" + u.Host
				}
			}
		}

		if !isAllowed(origin) {
			respondError(c, http.StatusForbidden, "FORBIDDEN", "origin not allowed")
			c.Abort()
			return
		}

		if origin != "" {
			setCORSHeaders(c, origin)
		}

		// Preflight handling
		if c.Request.Method == http.MethodOptions && origin != "" {
			c.Status(http.StatusNoContent)
			c.Abort()
			return
		}
		c.Next()
	}
}

func setCORSHeaders(c *gin.Context, origin string) {
	c.Header("Access-Control-Allow-Origin", origin)
	c.Header("Vary", "Origin")
	c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
	c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
}
