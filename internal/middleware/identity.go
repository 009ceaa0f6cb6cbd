// Package middleware resolves the caller's identity once per request and
// gates routes on it.
package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"realestate-hub/internal/auth"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const identityKey = "identity"

// LoginPath is where unauthenticated page requests are sent
const LoginPath = "/auth/login"

// SessionResolver turns a session token into an identity
type SessionResolver interface {
	GetSession(ctx context.Context, token string) (*auth.Identity, error)
}

// Identity resolves the session token from the cookie or a Bearer header and
// stores the identity on the request. Anonymous requests pass through.
// A backend failure while resolving is logged and treated as no session.
func Identity(resolver SessionResolver, cookieName string, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := SessionToken(c, cookieName)
		if token == "" {
			c.Next()
			return
		}

		identity, err := resolver.GetSession(c.Request.Context(), token)
		switch {
		case err == nil:
			c.Set(identityKey, identity)
			c.Request = c.Request.WithContext(auth.WithIdentity(c.Request.Context(), identity))
		case errors.Is(err, auth.ErrNoSession):
		default:
			logger.Error("[Auth] failed to resolve session", zap.Error(err))
		}
		c.Next()
	}
}

// SessionToken extracts the raw token from the session cookie or Authorization header
func SessionToken(c *gin.Context, cookieName string) string {
	if header := c.GetHeader("Authorization"); strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	if cookie, err := c.Cookie(cookieName); err == nil {
		return cookie
	}
	return ""
}

// CurrentIdentity returns the identity resolved for this request, or nil
func CurrentIdentity(c *gin.Context) *auth.Identity {
	if v, ok := c.Get(identityKey); ok {
		if id, ok := v.(*auth.Identity); ok {
			return id
		}
	}
	return nil
}

// RequireSession redirects anonymous page requests to the login page,
// keeping the original path in redirectedFrom.
func RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentIdentity(c) == nil {
			redirectToLogin(c)
			return
		}
		c.Next()
	}
}

// RequireAgent lets through only users with the agent role and profile.
// Anonymous requests go to login; other signed-in users go home.
func RequireAgent() gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := CurrentIdentity(c)
		if identity == nil {
			redirectToLogin(c)
			return
		}
		if !identity.IsAgent() {
			c.Redirect(http.StatusFound, "/")
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireAdminPage lets through admins and sends everyone else to their own home
func RequireAdminPage() gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := CurrentIdentity(c)
		if identity == nil {
			redirectToLogin(c)
			return
		}
		if !identity.IsAdmin() {
			c.Redirect(http.StatusFound, HomeFor(identity))
			c.Abort()
			return
		}
		c.Next()
	}
}

// HomeFor is the landing page for a signed-in user's role
func HomeFor(identity *auth.Identity) string {
	switch {
	case identity.IsAdmin():
		return "/dashboard"
	case identity.IsAgent():
		return "/agente"
	default:
		return "/"
	}
}

// RedirectIfAuthenticated keeps signed-in users away from the auth pages,
// sending each one to a page their role can open
func RedirectIfAuthenticated() gin.HandlerFunc {
	return func(c *gin.Context) {
		if identity := CurrentIdentity(c); identity != nil {
			c.Redirect(http.StatusFound, HomeFor(identity))
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireAPIUser answers 401 for anonymous API calls
func RequireAPIUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentIdentity(c) == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "No autenticado"})
			return
		}
		c.Next()
	}
}

// RequireAPIRole answers 401 for anonymous calls and 403 when allowed rejects the identity
func RequireAPIRole(allowed func(*auth.Identity) bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := CurrentIdentity(c)
		if identity == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "No autenticado"})
			return
		}
		if !allowed(identity) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "No tienes permiso para realizar esta acción"})
			return
		}
		c.Next()
	}
}

func redirectToLogin(c *gin.Context) {
	q := url.Values{}
	q.Set("redirectedFrom", c.Request.URL.Path)
	c.Redirect(http.StatusFound, LoginPath+"?"+q.Encode())
	c.Abort()
}
