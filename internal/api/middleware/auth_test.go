package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/shopfront/internal/auth"
	"github.com/example/shopfront/internal/identity"
)

func newTestTokenService() *auth.TokenService {
	return auth.NewTokenService("test-secret-key", 15*time.Minute, 7*24*time.Hour)
}

func issueToken(t *testing.T, tokens *auth.TokenService, id, email, role string) string {
	t.Helper()
	token, _, err := tokens.IssueAccessToken(identity.User{ID: id, Email: email, Role: role})
	require.NoError(t, err)
	return token
}

func TestAuth_ValidToken_Header(t *testing.T) {
	tokens := newTestTokenService()
	mw := Auth(tokens)

	token := issueToken(t, tokens, "user-123", "test@example.com", identity.RoleUser)

	var captured identity.Identity
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured, _ = identity.FromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	mw(handler).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-123", captured.ID)
	assert.Equal(t, "test@example.com", captured.Email)
	assert.Equal(t, identity.RoleUser, captured.Role)
}

func TestAuth_ValidToken_Cookie(t *testing.T) {
	tokens := newTestTokenService()
	mw := Auth(tokens)

	token := issueToken(t, tokens, "user-456", "cookie@example.com", identity.RoleAdmin)

	var captured identity.Identity
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured, _ = identity.FromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: "access_token", Value: token})
	rec := httptest.NewRecorder()

	mw(handler).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-456", captured.ID)
}

func TestAuth_NoToken(t *testing.T) {
	mw := Auth(newTestTokenService())

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	rec := httptest.NewRecorder()

	mw(handler).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "unauthorized")
}

func TestAuth_InvalidToken(t *testing.T) {
	mw := Auth(newTestTokenService())

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer invalid-token")
	rec := httptest.NewRecorder()

	mw(handler).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid token")
}

func TestAuth_ExpiredToken(t *testing.T) {
	tokens := auth.NewTokenService("test-secret", 1*time.Millisecond, 7*24*time.Hour)
	mw := Auth(tokens)

	token := issueToken(t, tokens, "user-123", "test@example.com", identity.RoleUser)
	time.Sleep(10 * time.Millisecond)

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	mw(handler).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuth_WrongSignature(t *testing.T) {
	signer := auth.NewTokenService("secret-1", 15*time.Minute, 7*24*time.Hour)
	verifier := auth.NewTokenService("secret-2", 15*time.Minute, 7*24*time.Hour)

	token := issueToken(t, signer, "user-123", "test@example.com", identity.RoleUser)

	mw := Auth(verifier)
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	mw(handler).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// ============================================
// Optional Auth Middleware Tests
// ============================================

func TestOptionalAuth_ValidToken(t *testing.T) {
	tokens := newTestTokenService()
	mw := OptionalAuth(tokens)

	token := issueToken(t, tokens, "user-123", "test@example.com", identity.RoleUser)

	var captured identity.Identity
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured, _ = identity.FromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/optional", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	mw(handler).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-123", captured.ID)
}

func TestOptionalAuth_NoToken(t *testing.T) {
	mw := OptionalAuth(newTestTokenService())

	handlerCalled := false
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlerCalled = true
		_, ok := identity.FromContext(r.Context())
		assert.False(t, ok)
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/optional", nil)
	rec := httptest.NewRecorder()

	mw(handler).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, handlerCalled)
}

func TestOptionalAuth_InvalidTokenIgnored(t *testing.T) {
	mw := OptionalAuth(newTestTokenService())

	handlerCalled := false
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlerCalled = true
		_, ok := identity.FromContext(r.Context())
		assert.False(t, ok)
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/optional", nil)
	req.Header.Set("Authorization", "Bearer invalid-token")
	rec := httptest.NewRecorder()

	mw(handler).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, handlerCalled)
}

// ============================================
// Require Role Middleware Tests
// ============================================

func requestWithIdentity(method, target string, id identity.Identity) *http.Request {
	req := httptest.NewRequest(method, target, nil)
	return req.WithContext(identity.WithIdentity(req.Context(), id))
}

func TestRequireRole_HasRole(t *testing.T) {
	mw := RequireRole(identity.RoleAdmin)

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := requestWithIdentity(http.MethodGet, "/dashboard", identity.Identity{
		ID:   "user-123",
		Role: identity.RoleAdmin,
	})
	rec := httptest.NewRecorder()

	mw(handler).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireRole_WrongRole(t *testing.T) {
	mw := RequireRole(identity.RoleAdmin)

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := requestWithIdentity(http.MethodGet, "/dashboard", identity.Identity{
		ID:   "user-123",
		Role: identity.RoleUser,
	})
	rec := httptest.NewRecorder()

	mw(handler).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "forbidden")
}

func TestRequireRole_NoIdentity(t *testing.T) {
	mw := RequireRole(identity.RoleAdmin)

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	rec := httptest.NewRecorder()

	mw(handler).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
