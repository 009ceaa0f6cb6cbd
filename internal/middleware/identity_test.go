package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"realestate-hub/internal/auth"
	"realestate-hub/internal/models"
	"realestate-hub/internal/ratelimit"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type fakeResolver map[string]*auth.Identity

func (f fakeResolver) GetSession(_ context.Context, token string) (*auth.Identity, error) {
	if token == "broken" {
		return nil, errors.New("database unavailable")
	}
	if id, ok := f[token]; ok {
		return id, nil
	}
	return nil, auth.ErrNoSession
}

var sessions = fakeResolver{
	"client": {UserID: "u1", Role: models.RoleClient},
	"agent":  {UserID: "u2", Role: models.RoleAgent, AgentID: "a2"},
	"admin":  {UserID: "u3", Role: models.RoleAdmin},
}

func newRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Identity(sessions, "session", zap.NewNop()))
	ok := func(c *gin.Context) { c.String(http.StatusOK, "ok") }

	r.GET("/dashboard", RequireAdminPage(), ok)
	r.GET("/dashboard/users", RequireAdminPage(), ok)
	r.GET("/favoritos", RequireSession(), ok)
	r.GET("/agente", RequireAgent(), ok)
	r.GET("/auth/login", RedirectIfAuthenticated(), ok)
	r.GET("/api/me", RequireAPIUser(), func(c *gin.Context) {
		c.String(http.StatusOK, CurrentIdentity(c).UserID)
	})
	r.GET("/api/admin", RequireAPIRole((*auth.Identity).IsAdmin), ok)
	return r
}

func do(r http.Handler, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.AddCookie(&http.Cookie{Name: "session", Value: token})
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestGate_AnonymousDashboardRedirectsToLogin(t *testing.T) {
	r := newRouter()
	for _, path := range []string{"/dashboard", "/dashboard/users", "/favoritos", "/agente"} {
		w := do(r, path, "")
		assert.Equal(t, http.StatusFound, w.Code, path)
		assert.Equal(t, "/auth/login?redirectedFrom="+url.QueryEscape(path), w.Header().Get("Location"), path)
	}
}

func TestGate_AgentAreaWithoutProfileGoesHome(t *testing.T) {
	r := newRouter()

	w := do(r, "/agente", "client")
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))

	w = do(r, "/agente", "agent")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGate_AdminOnlyDashboard(t *testing.T) {
	r := newRouter()
	assert.Equal(t, http.StatusOK, do(r, "/dashboard", "admin").Code)

	w := do(r, "/dashboard", "agent")
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/agente", w.Header().Get("Location"))

	w = do(r, "/dashboard", "client")
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))
}

func TestGate_AuthPagesRedirectSignedIn(t *testing.T) {
	r := newRouter()

	for token, home := range map[string]string{"client": "/", "agent": "/agente", "admin": "/dashboard"} {
		w := do(r, "/auth/login", token)
		assert.Equal(t, http.StatusFound, w.Code, token)
		assert.Equal(t, home, w.Header().Get("Location"), token)
	}

	assert.Equal(t, http.StatusOK, do(r, "/auth/login", "").Code)
}

func TestGate_UnknownOrBrokenSessionIsAnonymous(t *testing.T) {
	r := newRouter()
	assert.Equal(t, http.StatusFound, do(r, "/favoritos", "stale").Code)
	assert.Equal(t, http.StatusFound, do(r, "/favoritos", "broken").Code)
}

func TestAPIGate(t *testing.T) {
	r := newRouter()

	assert.Equal(t, http.StatusUnauthorized, do(r, "/api/me", "").Code)

	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.Header.Set("Authorization", "Bearer agent")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "u2", w.Body.String())

	assert.Equal(t, http.StatusForbidden, do(r, "/api/admin", "client").Code)
	assert.Equal(t, http.StatusOK, do(r, "/api/admin", "admin").Code)
}

func TestRateLimitMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/form", RateLimit(ratelimit.NewRateLimiter(1, 0, true)), func(c *gin.Context) {
		c.Status(http.StatusCreated)
	})

	send := func() int {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/form", nil))
		return w.Code
	}
	assert.Equal(t, http.StatusCreated, send())
	assert.Equal(t, http.StatusTooManyRequests, send())
}
