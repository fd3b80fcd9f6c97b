package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/orgcms-api/internal/handler"
	"github.com/noah-isme/orgcms-api/internal/models"
	"github.com/noah-isme/orgcms-api/internal/repository"
	"github.com/noah-isme/orgcms-api/internal/service"
	"github.com/noah-isme/orgcms-api/pkg/config"
)

const testSecret = "route-test-secret"

type testApp struct {
	router   *gin.Engine
	store    *repository.MemoryStore
	recorder *service.RecorderService
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{
		Env:               "test",
		APIPrefix:         "/api",
		PublicCacheMaxAge: time.Minute,
		JWT:               config.JWTConfig{Secret: testSecret},
		SideEffects:       config.SideEffectsConfig{Workers: 2, BufferSize: 32},
		Contact:           config.ContactConfig{RateLimit: 5, RateWindow: time.Hour},
	}
	store := repository.NewMemoryStore()
	deps, recorder := wire(cfg, store, repository.NewGuardRepository(nil, nil), service.NewMetricsService(), map[string]handler.ReadinessCheck{}, zap.NewNop())
	recorder.Start(context.Background())
	t.Cleanup(recorder.Stop)
	return &testApp{router: newRouter(cfg, deps, zap.NewNop()), store: store, recorder: recorder}
}

func (a *testApp) seed(t *testing.T, collection string, docs ...models.Document) {
	t.Helper()
	for _, doc := range docs {
		_, err := a.store.Create(context.Background(), collection, doc)
		require.NoError(t, err)
	}
}

func (a *testApp) do(method, path, token, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func signedToken(t *testing.T, role models.UserRole) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, models.JWTClaims{
		UserID: "u1",
		Email:  "admin@org.id",
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return token
}

type envelope struct {
	Success    bool                   `json:"success"`
	Data       json.RawMessage        `json:"data"`
	Pagination *models.Pagination     `json:"pagination"`
	Meta       map[string]interface{} `json:"meta"`
	Error      *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Details []struct {
			Field string `json:"field"`
		} `json:"details"`
	} `json:"error"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env
}

func TestRegisterRoutes(t *testing.T) {
	app := newTestApp(t)

	registered := map[string]bool{}
	for _, route := range app.router.Routes() {
		registered[route.Method+" "+route.Path] = true
	}
	for _, want := range []string{
		"GET /health",
		"GET /ready",
		"GET /metrics",
		"GET /api-docs",
		"GET /docs/*any",
		"GET /api/public/period/active",
		"GET /api/public/periods",
		"GET /api/public/structure",
		"GET /api/public/structure/:periodId",
		"GET /api/public/members/:slug",
		"GET /api/public/posts",
		"GET /api/public/posts/latest",
		"GET /api/public/posts/search",
		"GET /api/public/posts/:slug",
		"GET /api/public/galleries",
		"GET /api/public/galleries/:slug",
		"GET /api/public/documents",
		"GET /api/public/pages/:slug",
		"GET /api/public/settings",
		"GET /api/public/about",
		"GET /api/public/navigation",
		"GET /api/public/stats",
		"POST /api/public/contact",
		"POST /api/admin/periods/:id/activate",
		"GET /api/admin/activity-logs",
		"GET /api/admin/activity-logs/export",
		"GET /api/admin/contact-messages",
	} {
		assert.True(t, registered[want], "missing route %s", want)
	}
}

func seedOrganization(t *testing.T, app *testApp) {
	app.seed(t, models.CollectionPeriods,
		models.Document{"id": "p1", "name": "2023-2024", "isActive": true, "startDate": "2023-01-01T00:00:00Z"},
		models.Document{"id": "p2", "name": "2024-2025", "isActive": false, "startDate": "2024-01-01T00:00:00Z"},
	)
	app.seed(t, models.CollectionPositions,
		models.Document{"id": "pos-sec", "title": "Secretary", "order": 1, "period": "p1"},
		models.Document{"id": "pos-chair", "title": "Chair", "order": 0, "period": map[string]interface{}{"id": "p1", "name": "2023-2024"}},
	)
	app.seed(t, models.CollectionMembers,
		models.Document{"id": "m1", "name": "Alice", "slug": "alice", "position": "pos-chair", "period": "p1", "isActive": true},
		models.Document{"id": "m2", "name": "Bob", "slug": "bob", "position": map[string]interface{}{"id": "pos-sec", "title": "Secretary"}, "period": "p1", "isActive": true},
		models.Document{"id": "m3", "name": "Carol", "slug": "carol", "position": "pos-sec", "period": "p1", "isActive": false},
	)
}

func TestStructureForActivePeriod(t *testing.T) {
	app := newTestApp(t)
	seedOrganization(t, app)

	w := app.do(http.MethodGet, "/api/public/structure", "", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	env := decode(t, w)
	assert.Equal(t, "p1", env.Meta["periodId"])

	var structure models.Structure
	require.NoError(t, json.Unmarshal(env.Data, &structure))
	require.NotNil(t, structure.Period)
	assert.Equal(t, "2023-2024", structure.Period.Name)
	require.Len(t, structure.Hierarchy, 2)
	assert.Equal(t, "Chair", structure.Hierarchy[0].Position.Title)
	require.Len(t, structure.Hierarchy[0].Members, 1)
	assert.Equal(t, "Alice", structure.Hierarchy[0].Members[0].Name)
	assert.Equal(t, "Secretary", structure.Hierarchy[1].Position.Title)
	require.Len(t, structure.Hierarchy[1].Members, 1)
	assert.Equal(t, "Bob", structure.Hierarchy[1].Members[0].Name)
}

func TestStructureWithoutActivePeriod(t *testing.T) {
	app := newTestApp(t)

	w := app.do(http.MethodGet, "/api/public/structure", "", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = app.do(http.MethodGet, "/api/public/structure/unknown", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"period":null,"structure":[]}`, string(decode(t, w).Data))
}

func TestPostViewIsCountedInBackground(t *testing.T) {
	app := newTestApp(t)
	app.seed(t, models.CollectionPosts, models.Document{"id": "post-1", "slug": "hello", "title": "Hello", "status": "published", "views": 5})

	w := app.do(http.MethodGet, "/api/public/posts/hello", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "public, max-age=60", w.Header().Get("Cache-Control"))
	app.recorder.Stop()

	doc, err := app.store.FindByID(context.Background(), models.CollectionPosts, "post-1", 0)
	require.NoError(t, err)
	assert.Equal(t, float64(6), doc["views"])
}

func TestDocumentsVisibilityDependsOnToken(t *testing.T) {
	app := newTestApp(t)
	app.seed(t, models.CollectionDocuments,
		models.Document{"id": "d1", "title": "Public report", "isPublic": true},
		models.Document{"id": "d2", "title": "Board minutes", "isPublic": false},
	)

	env := decode(t, app.do(http.MethodGet, "/api/public/documents", "", ""))
	assert.Equal(t, 1, env.Pagination.TotalDocs)

	w := app.do(http.MethodGet, "/api/public/documents", signedToken(t, models.RoleViewer), "")
	assert.Equal(t, "private, no-store", w.Header().Get("Cache-Control"))
	assert.Equal(t, 2, decode(t, w).Pagination.TotalDocs)
}

func TestSearchRequiresTerm(t *testing.T) {
	app := newTestApp(t)

	w := app.do(http.MethodGet, "/api/public/posts/search?q=", "", "")
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_QUERY", decode(t, w).Error.Code)
}

func TestContactValidationListsEveryField(t *testing.T) {
	app := newTestApp(t)

	w := app.do(http.MethodPost, "/api/public/contact", "", `{"name":"Al","email":"bad","message":"hi"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	env := decode(t, w)
	require.NotNil(t, env.Error)
	fields := make([]string, 0, len(env.Error.Details))
	for _, d := range env.Error.Details {
		fields = append(fields, d.Field)
	}
	assert.Equal(t, []string{"name", "email", "message"}, fields)

	w = app.do(http.MethodPost, "/api/public/contact", "", `{"name":"Dina","email":"dina@org.id","message":"Hello there, team!"}`)
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestAdminActivationRequiresAdmin(t *testing.T) {
	app := newTestApp(t)
	seedOrganization(t, app)

	assert.Equal(t, http.StatusUnauthorized, app.do(http.MethodPost, "/api/admin/periods/p2/activate", "", "").Code)
	assert.Equal(t, http.StatusForbidden, app.do(http.MethodPost, "/api/admin/periods/p2/activate", signedToken(t, models.RoleEditor), "").Code)

	w := app.do(http.MethodPost, "/api/admin/periods/p2/activate", signedToken(t, models.RoleAdmin), "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	env := decode(t, app.do(http.MethodGet, "/api/public/period/active", "", ""))
	var period models.Period
	require.NoError(t, json.Unmarshal(env.Data, &period))
	assert.Equal(t, "p2", period.ID)

	app.recorder.Stop()
	res, err := app.store.Find(context.Background(), models.CollectionActivityLogs, models.FindOptions{Limit: 10})
	require.NoError(t, err)
	require.Len(t, res.Docs, 1)
	assert.Equal(t, "activated period 2024-2025", res.Docs[0]["details"])
	assert.Equal(t, "u1", res.Docs[0]["user"])
}

func TestCatalogueAndHealth(t *testing.T) {
	app := newTestApp(t)

	assert.Equal(t, http.StatusOK, app.do(http.MethodGet, "/health", "", "").Code)
	assert.Equal(t, http.StatusOK, app.do(http.MethodGet, "/ready", "", "").Code)

	env := decode(t, app.do(http.MethodGet, "/api-docs", "", ""))
	var endpoints []handler.Endpoint
	require.NoError(t, json.Unmarshal(env.Data, &endpoints))
	assert.Contains(t, endpoints, handler.Endpoint{Method: http.MethodGet, Path: "/api/public/structure/:periodId"})
	for _, e := range endpoints {
		assert.True(t, strings.HasPrefix(e.Path, "/api/"), e.Path)
	}
}
