package middleware

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgAuth "github.com/lunaetstella/smartstock-backend/pkg/auth"
	"github.com/lunaetstella/smartstock-backend/pkg/config"
	"github.com/lunaetstella/smartstock-backend/pkg/db/models"
	"github.com/lunaetstella/smartstock-backend/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{Secret: "test-secret", Issuer: "smartstock", ExpirationMinutes: 60}
}

func mintToken(t *testing.T, cfg config.JWTConfig, role models.Role) (uuid.UUID, string) {
	t.Helper()
	userID := uuid.New()
	token, err := pkgAuth.MintAccessToken(cfg, time.Now(), pkgAuth.AccessTokenPayload{UserID: userID, Role: role})
	require.NoError(t, err)
	return userID, token
}

func decodeMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Message
}

func TestAuthSeedsContext(t *testing.T) {
	cfg := testJWTConfig()
	userID, token := mintToken(t, cfg, models.RoleAdmin)

	var gotUserID, gotRole string
	handler := Auth(cfg, testLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID = UserIDFromContext(r.Context())
		gotRole = RoleFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/products", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, userID.String(), gotUserID)
	assert.Equal(t, "admin", gotRole)
}

func TestAuthRejectsMissingToken(t *testing.T) {
	handler := Auth(testJWTConfig(), testLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be reached")
	}))

	req := httptest.NewRequest(http.MethodGet, "/products", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Token is missing!", decodeMessage(t, rec))
}

func TestAuthRejectsInvalidToken(t *testing.T) {
	cfg := testJWTConfig()
	handler := Auth(cfg, testLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be reached")
	}))

	other := cfg
	other.Secret = "different-secret"
	_, forged := mintToken(t, other, models.RoleAdmin)

	for _, token := range []string{"garbage", "Bearer", forged} {
		req := httptest.NewRequest(http.MethodGet, "/products", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Token is invalid!", decodeMessage(t, rec))
	}
}

func TestRequireRole(t *testing.T) {
	handler := RequireRole("admin", testLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodDelete, "/products/abc", nil)
	req = req.WithContext(WithRole(req.Context(), "admin"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodDelete, "/products/abc", nil)
	req = req.WithContext(WithRole(req.Context(), "employee"))
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "Unauthorized", decodeMessage(t, rec))

	req = httptest.NewRequest(http.MethodDelete, "/products/abc", nil)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
