package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"altiushub/internal/model"
)

func newGateEnv(t *testing.T, requireFresh bool, role model.Role) (*echo.Echo, *JWTService) {
	t.Helper()

	svc := newTestService()
	gate := NewGate(svc)

	e := echo.New()
	g := e.Group("/protected", gate.Authenticate(requireFresh), gate.RequireRole(role))
	g.DELETE("/records/:id", func(c echo.Context) error {
		claims, ok := ClaimsFromContext(c)
		require.True(t, ok)
		return c.JSON(http.StatusOK, map[string]interface{}{"subject": claims.UserID})
	})
	return e, svc
}

func doDelete(e *echo.Echo, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodDelete, "/protected/records/1", nil)
	if authHeader != "" {
		req.Header.Set(echo.HeaderAuthorization, authHeader)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestGate_MissingToken(t *testing.T) {
	e, _ := newGateEnv(t, false, model.RoleAdmin)

	rec := doDelete(e, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "AUTH_MISSING_TOKEN")
}

func TestGate_NotBearer(t *testing.T) {
	e, _ := newGateEnv(t, false, model.RoleAdmin)

	rec := doDelete(e, "Basic dXNlcjpwYXNz")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "AUTH_MISSING_TOKEN")
}

func TestGate_TamperedToken(t *testing.T) {
	e, _ := newGateEnv(t, false, model.RoleAdmin)
	other := NewJWTService("other-secret", 15*time.Minute, time.Hour)

	token, err := other.IssueAccessToken(1, model.RoleAdmin, true, 0)
	require.NoError(t, err)

	rec := doDelete(e, "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "AUTH_TOKEN_MALFORMED")
}

func TestGate_ExpiredToken(t *testing.T) {
	e, svc := newGateEnv(t, false, model.RoleAdmin)

	token, err := svc.IssueAccessToken(1, model.RoleAdmin, true, -time.Minute)
	require.NoError(t, err)

	rec := doDelete(e, "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "AUTH_TOKEN_EXPIRED")
}

func TestGate_WrongRole(t *testing.T) {
	e, svc := newGateEnv(t, false, model.RoleAdmin)

	token, err := svc.IssueAccessToken(2, model.RoleUser, true, 0)
	require.NoError(t, err)

	rec := doDelete(e, "Bearer "+token)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "AUTH_FORBIDDEN")
}

func TestGate_FreshRequired(t *testing.T) {
	e, svc := newGateEnv(t, true, model.RoleAdmin)

	refresh, err := svc.IssueRefreshToken(1, model.RoleAdmin)
	require.NoError(t, err)
	nonFresh, err := svc.Refresh(refresh)
	require.NoError(t, err)

	rec := doDelete(e, "Bearer "+nonFresh)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "AUTH_TOKEN_NOT_FRESH")

	fresh, err := svc.IssueAccessToken(1, model.RoleAdmin, true, 0)
	require.NoError(t, err)

	rec = doDelete(e, "Bearer "+fresh)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGate_ValidAdminToken(t *testing.T) {
	e, svc := newGateEnv(t, false, model.RoleAdmin)

	token, err := svc.IssueAccessToken(42, model.RoleAdmin, true, 0)
	require.NoError(t, err)

	rec := doDelete(e, "Bearer "+token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "42")
}

func TestGate_RefreshedTokenAcceptedWhenFreshNotRequired(t *testing.T) {
	e, svc := newGateEnv(t, false, model.RoleAdmin)

	refresh, err := svc.IssueRefreshToken(1, model.RoleAdmin)
	require.NoError(t, err)
	access, err := svc.Refresh(refresh)
	require.NoError(t, err)

	rec := doDelete(e, "Bearer "+access)
	assert.Equal(t, http.StatusOK, rec.Code)
}
