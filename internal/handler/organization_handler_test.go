package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/orgcms-api/internal/middleware"
	"github.com/noah-isme/orgcms-api/internal/models"
	"github.com/noah-isme/orgcms-api/internal/service"
	appErrors "github.com/noah-isme/orgcms-api/pkg/errors"
)

type responseEnvelope struct {
	Success    bool                   `json:"success"`
	Data       json.RawMessage        `json:"data"`
	Error      *appErrors.Error       `json:"error"`
	Pagination *models.Pagination     `json:"pagination"`
	Meta       map[string]interface{} `json:"meta"`
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) responseEnvelope {
	t.Helper()
	var env responseEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func newTestContext(method, target string, params ...gin.Param) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(method, target, nil)
	c.Params = params
	return c, w
}

type periodServiceMock struct {
	active       *models.Period
	activeErr    error
	resolved     string
	resolveErr   error
	lastExplicit string
	periods      []models.Period
	activated    *models.Period
	activateErr  error
	lastActive   service.ActivateRequest
}

func (m *periodServiceMock) ResolveActive(ctx context.Context) (*models.Period, error) {
	return m.active, m.activeErr
}

func (m *periodServiceMock) Resolve(ctx context.Context, explicitID string) (string, error) {
	m.lastExplicit = explicitID
	if explicitID != "" {
		return explicitID, nil
	}
	return m.resolved, m.resolveErr
}

func (m *periodServiceMock) List(ctx context.Context) ([]models.Period, error) {
	return m.periods, nil
}

func (m *periodServiceMock) Activate(ctx context.Context, id string, req service.ActivateRequest) (*models.Period, error) {
	m.lastActive = req
	return m.activated, m.activateErr
}

type structureServiceMock struct {
	structure   *models.Structure
	lastPeriod  string
	member      *models.Member
	memberErr   error
	assembleHit bool
}

func (m *structureServiceMock) Assemble(ctx context.Context, periodID string) (*models.Structure, error) {
	m.assembleHit = true
	m.lastPeriod = periodID
	return m.structure, nil
}

func (m *structureServiceMock) MemberBySlug(ctx context.Context, slug string) (*models.Member, error) {
	return m.member, m.memberErr
}

func TestOrganizationActivePeriodNotFound(t *testing.T) {
	h := NewOrganizationHandler(&periodServiceMock{activeErr: appErrors.Clone(appErrors.ErrNotFound, "no active period")}, &structureServiceMock{})
	c, w := newTestContext(http.MethodGet, "/api/public/period/active")

	h.ActivePeriod(c)
	require.Equal(t, http.StatusNotFound, w.Code)
	env := decodeEnvelope(t, w)
	assert.False(t, env.Success)
	assert.Equal(t, "no active period", env.Error.Message)
}

func TestOrganizationStructureUsesActivePeriod(t *testing.T) {
	periods := &periodServiceMock{resolved: "p-active"}
	structures := &structureServiceMock{structure: &models.Structure{Period: &models.Period{ID: "p-active", Name: "2023-2024"}, Hierarchy: []models.StructureEntry{}}}
	h := NewOrganizationHandler(periods, structures)
	c, w := newTestContext(http.MethodGet, "/api/public/structure")

	h.Structure(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "p-active", structures.lastPeriod)

	env := decodeEnvelope(t, w)
	assert.True(t, env.Success)
	assert.Equal(t, "active", env.Meta["resolvedFrom"])
	assert.JSONEq(t, `{"period":{"id":"p-active","name":"2023-2024","isActive":false},"structure":[]}`, string(env.Data))
}

func TestOrganizationStructureExplicitPeriod(t *testing.T) {
	periods := &periodServiceMock{resolveErr: appErrors.ErrNotFound}
	structures := &structureServiceMock{structure: &models.Structure{Hierarchy: []models.StructureEntry{}}}
	h := NewOrganizationHandler(periods, structures)
	c, w := newTestContext(http.MethodGet, "/api/public/structure/p-old", gin.Param{Key: "periodId", Value: "p-old"})

	h.Structure(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "p-old", structures.lastPeriod)
	assert.Equal(t, "explicit", decodeEnvelope(t, w).Meta["resolvedFrom"])
}

func TestOrganizationStructureWithoutAnyPeriod(t *testing.T) {
	structures := &structureServiceMock{}
	h := NewOrganizationHandler(&periodServiceMock{resolveErr: appErrors.Clone(appErrors.ErrNotFound, "no active period")}, structures)
	c, w := newTestContext(http.MethodGet, "/api/public/structure")

	h.Structure(c)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.False(t, structures.assembleHit)
}

func TestOrganizationMember(t *testing.T) {
	h := NewOrganizationHandler(&periodServiceMock{}, &structureServiceMock{member: &models.Member{ID: "m1", Name: "Alice", Slug: "alice"}})
	c, w := newTestContext(http.MethodGet, "/api/public/members/alice", gin.Param{Key: "slug", Value: "alice"})

	h.Member(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(decodeEnvelope(t, w).Data), `"name":"Alice"`)
}

func TestOrganizationActivatePeriodPassesActor(t *testing.T) {
	periods := &periodServiceMock{activated: &models.Period{ID: "p2", IsActive: true}}
	h := NewOrganizationHandler(periods, &structureServiceMock{})
	c, w := newTestContext(http.MethodPost, "/api/admin/periods/p2/activate", gin.Param{Key: "id", Value: "p2"})
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "u1", Role: models.RoleAdmin})

	h.ActivatePeriod(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "u1", periods.lastActive.ActorID)
	assert.NotEmpty(t, periods.lastActive.IPAddress)
}

func TestOrganizationStoreFailureIsOpaque(t *testing.T) {
	h := NewOrganizationHandler(&periodServiceMock{activeErr: appErrors.Store(assert.AnError)}, &structureServiceMock{})
	c, w := newTestContext(http.MethodGet, "/api/public/period/active")

	h.ActivePeriod(c)
	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), assert.AnError.Error())
	assert.Equal(t, "STORE_ERROR", decodeEnvelope(t, w).Error.Code)
}
