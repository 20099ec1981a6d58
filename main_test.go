package main

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"storefront-admin/common/auth"
	commonmw "storefront-admin/common/middleware"
	"storefront-admin/controllers"
	"storefront-admin/middleware"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

type tokenResolver struct{ m *auth.TokenManager }

func (r tokenResolver) Session(tok string) (auth.Session, error) { return r.m.Parse(tok) }

func testRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	tokens, err := auth.NewTokenManager("test-secret", time.Hour, nil)
	require.NoError(t, err)

	cfg := &Config{Env: "test", ServiceName: "storefront-admin", AllowedOrigins: "*"}
	limiter := commonmw.NewRateLimiter(rate.Inf, 1, time.Minute)
	h := appHandlers{
		auth:     controllers.NewAuthController(nil),
		orders:   controllers.NewOrderController(nil),
		contact:  controllers.NewContactController(nil),
		products: controllers.NewProductController(nil),
		media:    controllers.NewMediaController(nil),
	}
	return newRouter(cfg, zap.NewNop(), nil, limiter, limiter, middleware.AdminAuth(tokenResolver{tokens}), h)
}

func TestRouter_Health(t *testing.T) {
	w := httptest.NewRecorder()
	testRouter(t).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"healthy","service":"storefront-admin"}`, w.Body.String())
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
}

func TestRouter_AdminRequiresToken(t *testing.T) {
	w := httptest.NewRecorder()
	testRouter(t).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/orders", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), `"kind":"unauthenticated"`)
}

func TestRouter_LegacyLoginRedirect(t *testing.T) {
	w := httptest.NewRecorder()
	testRouter(t).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/login?next=orders", nil))

	assert.Equal(t, http.StatusTemporaryRedirect, w.Code)
	assert.Equal(t, "/admin/login?next=orders", w.Header().Get("Location"))

	w = httptest.NewRecorder()
	testRouter(t).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/login?next=orders", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("AWS_USE_SECRETS", "")
	t.Setenv("POSTGRES_USER", "admin")
	t.Setenv("POSTGRES_PASSWORD", "pw")
	t.Setenv("POSTGRES_DB", "shop")
	t.Setenv("POSTGRES_HOST", "db")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("JWT_TTL", "30m")
	t.Setenv("RATE_LIMIT_BURST", "7")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 30*time.Minute, cfg.JWTTTL)
	assert.Equal(t, 7, cfg.RateLimitBurst)
	assert.Equal(t, "5432", cfg.Database().Port)
}

func TestLoadConfig_Incomplete(t *testing.T) {
	t.Setenv("AWS_USE_SECRETS", "")
	t.Setenv("POSTGRES_USER", "")
	t.Setenv("JWT_SECRET", "s3cret")

	_, err := LoadConfig()
	assert.EqualError(t, err, "database config incomplete")
}

type fakeSecrets map[string]map[string]string

func (f fakeSecrets) GetSecretMap(_ context.Context, name string) (map[string]string, error) {
	if m, ok := f[name]; ok {
		return m, nil
	}
	return nil, errors.New("not found")
}

func TestApplySecrets(t *testing.T) {
	cfg := &Config{PostgresUser: "env-user", PostgresPassword: "env-pw", JWTSecret: "env"}
	applySecrets(context.Background(), cfg, fakeSecrets{
		"storefront-admin/DB_CREDENTIALS": {"POSTGRES_PASSWORD": "vault-pw"},
		"storefront-admin/JWT":            {"JWT_SECRET": "vault"},
	})

	assert.Equal(t, "env-user", cfg.PostgresUser)
	assert.Equal(t, "vault-pw", cfg.PostgresPassword)
	assert.Equal(t, "vault", cfg.JWTSecret)
}
