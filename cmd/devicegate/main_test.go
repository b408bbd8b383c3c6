package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/devicegate/pkg/device"
	"github.com/tendant/devicegate/pkg/gate"
	"github.com/tendant/devicegate/pkg/token"
)

var routesTestSecret = []byte("routes-test-secret")

// mint issues a token the same way cmd/tokengen does
func mint(t *testing.T, accountID, role string) string {
	t.Helper()
	claims := map[string]interface{}{"id": accountID, "role": role}
	jwtauth.SetIssuedNow(claims)
	jwtauth.SetExpiryIn(claims, 10*time.Minute)
	_, tokenStr, err := jwtauth.New("HS256", routesTestSecret, nil).Encode(claims)
	require.NoError(t, err)
	return tokenStr
}

func newTestRouter(t *testing.T) *chi.Mux {
	t.Helper()
	repo := device.NewInMemBindingRepository()
	ctx := context.Background()
	for _, id := range []string{"admin-1", "user-1"} {
		_, err := repo.CreateAccount(ctx, id)
		require.NoError(t, err)
	}

	bindings := device.NewBindingService(repo)
	g, err := gate.New(token.NewJWTVerifier(routesTestSecret), bindings, gate.Config{EnforceDeviceLock: true})
	require.NoError(t, err)

	r := chi.NewRouter()
	setupRoutes(r, g, bindings)
	return r
}

func call(r http.Handler, method, path, tokenStr, deviceID string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if tokenStr != "" {
		req.Header.Set("Authorization", "Bearer "+tokenStr)
	}
	if deviceID != "" {
		req.Header.Set(device.DeviceIDHeader, deviceID)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestMeRoute(t *testing.T) {
	r := newTestRouter(t)

	w := call(r, http.MethodGet, "/api/me", mint(t, "user-1", "user"), "laptop")
	require.Equal(t, http.StatusOK, w.Code)

	var authCtx gate.AuthContext
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &authCtx))
	assert.Equal(t, "user-1", authCtx.SubjectID)
	assert.Equal(t, "user", authCtx.Role)
	assert.Equal(t, "laptop", authCtx.DeviceFingerprint)

	w = call(r, http.MethodGet, "/api/me", "", "laptop")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdminResetRoute(t *testing.T) {
	r := newTestRouter(t)
	adminToken := mint(t, "admin-1", "admin")
	userToken := mint(t, "user-1", "user")

	require.Equal(t, http.StatusOK, call(r, http.MethodGet, "/api/me", userToken, "laptop").Code)
	require.Equal(t, http.StatusForbidden, call(r, http.MethodGet, "/api/me", userToken, "phone").Code)

	// non-admins can't reset
	w := call(r, http.MethodDelete, "/api/admin/accounts/user-1/device", userToken, "laptop")
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = call(r, http.MethodGet, "/api/admin/accounts/user-1/device", adminToken, "admin-desk")
	require.Equal(t, http.StatusOK, w.Code)
	var binding device.AccountBinding
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &binding))
	assert.Equal(t, "laptop", binding.Fingerprint)

	w = call(r, http.MethodDelete, "/api/admin/accounts/user-1/device", adminToken, "admin-desk")
	require.Equal(t, http.StatusNoContent, w.Code)

	assert.Equal(t, http.StatusOK, call(r, http.MethodGet, "/api/me", userToken, "phone").Code)
	assert.Equal(t, http.StatusForbidden, call(r, http.MethodGet, "/api/me", userToken, "laptop").Code)
}

func TestAdminRoute_UnknownAccount(t *testing.T) {
	r := newTestRouter(t)

	w := call(r, http.MethodDelete, "/api/admin/accounts/nobody/device", mint(t, "admin-1", "admin"), "admin-desk")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "error")
}

func TestIsPostgres(t *testing.T) {
	assert.True(t, isPostgres("postgres"))
	assert.True(t, isPostgres("postgresql"))
	assert.False(t, isPostgres("sqlite"))
}
