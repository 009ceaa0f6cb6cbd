package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"realestate-hub/internal/auth"
	"realestate-hub/internal/cleanup"
	"realestate-hub/internal/config"
	"realestate-hub/internal/database"
	"realestate-hub/internal/database/dbtest"
	"realestate-hub/internal/handlers"
	"realestate-hub/internal/models"
	"realestate-hub/internal/ratelimit"
	"realestate-hub/internal/snapshot"
	"realestate-hub/internal/stats"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const password = "secreto1"

type app struct {
	t      *testing.T
	db     *database.GormDB
	auth   *auth.Service
	router *gin.Engine
}

func newApp(t *testing.T) *app {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.DefaultConfig()
	cfg.Auth.JWTSecret = "handlers-test-secret-0123"

	db := dbtest.New(t)
	logger := zap.NewNop()
	authSvc := auth.NewService(db, cfg.Auth.JWTSecret, time.Hour).WithBcryptCost(bcrypt.MinCost)
	sqlDB, err := db.DB().DB()
	require.NoError(t, err)

	r := gin.New()
	handlers.RegisterRoutes(r, handlers.Deps{
		Config:    cfg,
		DB:        db,
		Auth:      authSvc,
		Snapshots: snapshot.NewService(db.DB(), logger),
		Cleanup:   cleanup.NewService(db.DB(), nil, logger),
		Stats:     stats.NewService(sqlDB, db.DriverName()),
		Limiter:   ratelimit.NewRateLimiter(100, 1000, true),
		Logger:    logger,
	})
	return &app{t: t, db: db, auth: authSvc, router: r}
}

// signUp registers a user through the auth service and returns a session token
func (a *app) signUp(email string, role models.UserRole) (string, *models.User) {
	a.t.Helper()
	ctx := context.Background()
	user, err := a.auth.SignUp(ctx, email, password, auth.Profile{FullName: "Usuario " + email, Role: role})
	require.NoError(a.t, err)
	session, err := a.auth.SignInWithPassword(ctx, email, password)
	require.NoError(a.t, err)
	return session.Token, user
}

func (a *app) admin(email string) string {
	a.t.Helper()
	ctx := context.Background()
	user, err := a.auth.NewUser(email, password, "Admin", "", models.RoleAdmin)
	require.NoError(a.t, err)
	require.NoError(a.t, a.db.CreateUser(ctx, user))
	session, err := a.auth.SignInWithPassword(ctx, email, password)
	require.NoError(a.t, err)
	return session.Token
}

func (a *app) do(method, path, token string, body any) *httptest.ResponseRecorder {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v))
}

func countRows(t *testing.T, db *database.GormDB, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.DB().Model(model).Count(&n).Error)
	return n
}

func TestContactForm_Created(t *testing.T) {
	a := newApp(t)
	_, agent := a.signUp("agente@example.com", models.RoleAgent)
	p := dbtest.Property(t, a.db, agent.ID, models.Property{Title: "Casa en Coyoacán", Price: 4500000})

	w := a.do(http.MethodPost, "/api/properties/"+p.ID+"/inquiries", "", map[string]string{
		"name":    "Laura Pérez",
		"email":   "laura@example.com",
		"phone":   "5512345678",
		"message": "Me interesa la casa",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	inquiries, err := a.db.ListInquiriesByAgent(context.Background(), agent.ID)
	require.NoError(t, err)
	require.Len(t, inquiries, 1)
	assert.Equal(t, "Laura Pérez", inquiries[0].Name)
	assert.Equal(t, models.InquiryStatusNew, inquiries[0].Status)
}

func TestContactForm_MissingFieldInsertsNothing(t *testing.T) {
	a := newApp(t)
	_, agent := a.signUp("agente@example.com", models.RoleAgent)
	p := dbtest.Property(t, a.db, agent.ID, models.Property{})

	w := a.do(http.MethodPost, "/api/properties/"+p.ID+"/inquiries", "", map[string]string{
		"name":    "Laura Pérez",
		"email":   "laura@example.com",
		"phone":   "5512345678",
		"message": "",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)

	var body struct {
		Fields map[string]string `json:"fields"`
	}
	decode(t, w, &body)
	assert.Contains(t, body.Fields, "message")
	assert.Zero(t, countRows(t, a.db, &models.Inquiry{}))
}

func TestContactForm_UnknownProperty(t *testing.T) {
	a := newApp(t)

	w := a.do(http.MethodPost, "/api/properties/does-not-exist/leads", "", map[string]string{
		"name":  "Laura Pérez",
		"email": "laura@example.com",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Zero(t, countRows(t, a.db, &models.Lead{}))
}

func TestListProperties_Filters(t *testing.T) {
	a := newApp(t)
	_, agent := a.signUp("agente@example.com", models.RoleAgent)
	dbtest.Property(t, a.db, agent.ID, models.Property{Title: "Depto Polanco", Type: models.PropertyTypeApartment, City: "Polanco", Price: 8000000})
	dbtest.Property(t, a.db, agent.ID, models.Property{Title: "Casa Condesa", Type: models.PropertyTypeHouse, City: "Condesa", Price: 12000000})

	w := a.do(http.MethodGet, "/api/properties?type=apartment", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var page database.PropertyPage
	decode(t, w, &page)
	require.Len(t, page.Properties, 1)
	assert.Equal(t, "Depto Polanco", page.Properties[0].Title)

	w = a.do(http.MethodGet, "/api/properties?min_price=20000000&max_price=1000", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &page)
	assert.Empty(t, page.Properties)
}

func TestSearch_FallsBackToDatabase(t *testing.T) {
	a := newApp(t)
	_, agent := a.signUp("agente@example.com", models.RoleAgent)
	dbtest.Property(t, a.db, agent.ID, models.Property{Title: "Casa Condesa", City: "Condesa"})

	w := a.do(http.MethodGet, "/api/search?location=Condesa", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var result struct {
		Hits      []models.Property `json:"hits"`
		TotalHits int64             `json:"total_hits"`
	}
	decode(t, w, &result)
	assert.Len(t, result.Hits, 1)
}

func TestProperty_CreateAndEdit(t *testing.T) {
	a := newApp(t)
	token, agent := a.signUp("agente@example.com", models.RoleAgent)

	form := map[string]any{
		"title":       "Departamento en Roma Norte",
		"description": "Luminoso, dos recámaras",
		"type":        "apartment",
		"status":      "for_rent",
		"price":       28000,
		"area_size":   85,
		"address":     "Colima 100",
		"city":        "Ciudad de México",
		"state":       "CDMX",
		"postal_code": "06700",
	}
	w := a.do(http.MethodPost, "/api/properties", token, form)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created models.Property
	decode(t, w, &created)
	assert.Equal(t, agent.ID, created.AgentID)
	assert.Equal(t, 1, created.Version)

	form["price"] = 30000
	form["version"] = created.Version
	w = a.do(http.MethodPut, "/api/properties/"+created.ID, token, form)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var updated models.Property
	decode(t, w, &updated)
	assert.Equal(t, 30000.0, updated.Price)
	assert.Equal(t, 2, updated.Version)

	// a second editor still holding version 1
	form["price"] = 25000
	form["version"] = 1
	w = a.do(http.MethodPut, "/api/properties/"+created.ID, token, form)
	assert.Equal(t, http.StatusConflict, w.Code)

	got, err := a.db.GetProperty(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, 30000.0, got.Price)
}

func TestProperty_WritesAreGated(t *testing.T) {
	a := newApp(t)
	_, owner := a.signUp("owner@example.com", models.RoleAgent)
	other, _ := a.signUp("other@example.com", models.RoleAgent)
	client, _ := a.signUp("cliente@example.com", models.RoleClient)
	p := dbtest.Property(t, a.db, owner.ID, models.Property{})

	status := map[string]string{"status": "sold"}

	w := a.do(http.MethodPatch, "/api/properties/"+p.ID+"/status", "", status)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = a.do(http.MethodPatch, "/api/properties/"+p.ID+"/status", client, status)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = a.do(http.MethodPatch, "/api/properties/"+p.ID+"/status", other, status)
	assert.Equal(t, http.StatusForbidden, w.Code)

	admin := a.admin("admin@example.com")
	w = a.do(http.MethodPatch, "/api/properties/"+p.ID+"/status", admin, status)
	require.Equal(t, http.StatusOK, w.Code)

	got, err := a.db.GetProperty(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PropertyStatusSold, got.Status)
}

func TestProperty_DeleteHidesListing(t *testing.T) {
	a := newApp(t)
	token, agent := a.signUp("agente@example.com", models.RoleAgent)
	p := dbtest.Property(t, a.db, agent.ID, models.Property{})

	w := a.do(http.MethodDelete, "/api/properties/"+p.ID, token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = a.do(http.MethodGet, "/api/properties/"+p.ID, "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestFavorites_ToggleRestoresCount(t *testing.T) {
	a := newApp(t)
	_, agent := a.signUp("agente@example.com", models.RoleAgent)
	token, _ := a.signUp("cliente@example.com", models.RoleClient)
	p := dbtest.Property(t, a.db, agent.ID, models.Property{})

	w := a.do(http.MethodGet, "/api/favorites", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	toggle := "/api/favorites/" + p.ID + "/toggle"
	var state struct {
		Favorite bool `json:"favorite"`
	}

	w = a.do(http.MethodPost, toggle, token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &state)
	assert.True(t, state.Favorite)
	assert.EqualValues(t, 1, countRows(t, a.db, &models.Favorite{}))

	w = a.do(http.MethodPost, toggle, token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &state)
	assert.False(t, state.Favorite)
	assert.Zero(t, countRows(t, a.db, &models.Favorite{}))

	w = a.do(http.MethodPost, "/api/favorites/missing/toggle", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAuth_RegisterLoginLogout(t *testing.T) {
	a := newApp(t)

	w := a.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"email":            "nuevo@example.com",
		"password":         password,
		"confirm_password": password,
		"full_name":        "Nuevo Cliente",
		"role":             "client",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = a.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"email":            "nuevo@example.com",
		"password":         password,
		"confirm_password": password,
		"full_name":        "Otra Persona",
		"role":             "client",
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = a.do(http.MethodPost, "/api/auth/login", "", map[string]string{"email": "nuevo@example.com", "password": "equivocada"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = a.do(http.MethodPost, "/api/auth/login", "", map[string]string{"email": "nuevo@example.com", "password": password})
	require.Equal(t, http.StatusOK, w.Code)
	var session auth.Session
	decode(t, w, &session)
	require.NotEmpty(t, session.Token)

	var cookie *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == "session" {
			cookie = c
		}
	}
	require.NotNil(t, cookie)
	assert.Equal(t, session.Token, cookie.Value)
	assert.True(t, cookie.HttpOnly)

	w = a.do(http.MethodGet, "/api/auth/session", session.Token, nil)
	var current struct {
		User *auth.Identity `json:"user"`
	}
	decode(t, w, &current)
	require.NotNil(t, current.User)
	assert.Equal(t, "nuevo@example.com", current.User.Email)

	w = a.do(http.MethodPost, "/api/auth/logout", session.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = a.do(http.MethodGet, "/api/auth/session", session.Token, nil)
	decode(t, w, &current)
	assert.Nil(t, current.User)
}

func TestPages_Gate(t *testing.T) {
	a := newApp(t)
	client, _ := a.signUp("cliente@example.com", models.RoleClient)
	agent, _ := a.signUp("agente@example.com", models.RoleAgent)
	admin := a.admin("admin@example.com")

	w := a.do(http.MethodGet, "/dashboard", "", nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/auth/login?redirectedFrom="+url.QueryEscape("/dashboard"), w.Header().Get("Location"))

	w = a.do(http.MethodGet, "/agente", client, nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))

	w = a.do(http.MethodGet, "/agente", agent, nil)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// signed-in users land on a page their role can open, never on a redirect chain
	w = a.do(http.MethodGet, "/auth/login", agent, nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/agente", w.Header().Get("Location"))

	w = a.do(http.MethodGet, "/auth/login", client, nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))

	w = a.do(http.MethodGet, "/auth/register", admin, nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/dashboard", w.Header().Get("Location"))

	w = a.do(http.MethodGet, "/dashboard", agent, nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/agente", w.Header().Get("Location"))

	w = a.do(http.MethodGet, "/auth/login?redirectedFrom=%2Ffavoritos", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var page map[string]string
	decode(t, w, &page)
	assert.Equal(t, "/favoritos", page["redirectedFrom"])

	w = a.do(http.MethodGet, "/dashboard", admin, nil)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = a.do(http.MethodGet, "/admin", admin, nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/dashboard", w.Header().Get("Location"))
}

func TestAgent_UpdatesOwnLeadsOnly(t *testing.T) {
	a := newApp(t)
	token, agent := a.signUp("agente@example.com", models.RoleAgent)
	otherToken, _ := a.signUp("otro@example.com", models.RoleAgent)
	p := dbtest.Property(t, a.db, agent.ID, models.Property{})

	lead := &models.Lead{PropertyID: p.ID, Name: "Carlos", Email: "carlos@example.com", Status: models.LeadStatusNew, Source: models.LeadSourceWebsite}
	require.NoError(t, a.db.CreateLead(context.Background(), lead))

	path := "/agente/leads/" + lead.ID + "/status"
	w := a.do(http.MethodPatch, path, otherToken, map[string]string{"status": "contacted"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = a.do(http.MethodPatch, path, token, map[string]string{"status": "contacted"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var got models.Lead
	decode(t, w, &got)
	assert.Equal(t, models.LeadStatusContacted, got.Status)
}

func TestMedia_DisabledWithoutStore(t *testing.T) {
	a := newApp(t)

	w := a.do(http.MethodGet, "/media/abc", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestHealth(t *testing.T) {
	a := newApp(t)

	w := a.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAdmin_DeactivatedUserLosesSession(t *testing.T) {
	a := newApp(t)
	admin := a.admin("admin@example.com")
	client, user := a.signUp("cliente@example.com", models.RoleClient)

	w := a.do(http.MethodGet, "/dashboard/users?role=client", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Count int `json:"count"`
	}
	decode(t, w, &list)
	assert.Equal(t, 1, list.Count)

	w = a.do(http.MethodPatch, "/dashboard/users/"+user.ID, admin, map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = a.do(http.MethodPatch, "/dashboard/users/"+user.ID, admin, map[string]string{"status": "inactive"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = a.do(http.MethodGet, "/api/favorites", client, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdmin_CleanupWithEmptyBody(t *testing.T) {
	a := newApp(t)
	admin := a.admin("admin@example.com")

	req := httptest.NewRequest(http.MethodPost, "/dashboard/cleanup/run", nil)
	req.Header.Set("Authorization", "Bearer "+admin)
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var result cleanup.CleanupResult
	decode(t, w, &result)
	assert.Zero(t, result.TargetCount)

	w = a.do(http.MethodPost, "/dashboard/maintenance/run", admin, nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestAdmin_DemotedAgentLosesAgentRoutes(t *testing.T) {
	a := newApp(t)
	admin := a.admin("admin@example.com")
	token, agent := a.signUp("agente@example.com", models.RoleAgent)
	p := dbtest.Property(t, a.db, agent.ID, models.Property{})

	w := a.do(http.MethodGet, "/agente", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = a.do(http.MethodPatch, "/dashboard/users/"+agent.ID, admin, map[string]string{"role": "client"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = a.do(http.MethodGet, "/agente", token, nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))

	w = a.do(http.MethodPatch, "/api/properties/"+p.ID+"/status", token, map[string]string{"status": "sold"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	got, err := a.db.GetProperty(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PropertyStatusForSale, got.Status)
}

func TestContactForm_BlankFieldsInsertNothing(t *testing.T) {
	a := newApp(t)
	_, agent := a.signUp("agente@example.com", models.RoleAgent)
	p := dbtest.Property(t, a.db, agent.ID, models.Property{})

	w := a.do(http.MethodPost, "/api/properties/"+p.ID+"/inquiries", "", map[string]string{
		"name":    "   ",
		"email":   "laura@example.com",
		"phone":   " ",
		"message": "\t\n",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)

	var body struct {
		Fields map[string]string `json:"fields"`
	}
	decode(t, w, &body)
	assert.Contains(t, body.Fields, "name")
	assert.Contains(t, body.Fields, "phone")
	assert.Contains(t, body.Fields, "message")
	assert.Zero(t, countRows(t, a.db, &models.Inquiry{}))
}
