package handler_test

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"schoolbff/internal/bff/authctx"
	"schoolbff/internal/bff/handler"
	"schoolbff/internal/bff/model"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func setupAuthServer(resolver handler.CredentialResolver, normalizer handler.TenantNormalizer, seen *model.Credentials) *echo.Echo {
	e := echo.New()
	e.HTTPErrorHandler = handler.HTTPErrorHandler
	e.Use(handler.RequestIDMiddleware)
	g := e.Group("/academics", handler.NewAuthMiddleware(resolver, normalizer).Middleware())
	g.GET("/ping", func(c echo.Context) error {
		*seen = c.Get(handler.ContextKeyCredentials).(model.Credentials)
		return c.NoContent(http.StatusOK)
	})
	return e
}

func TestAuthMiddleware(t *testing.T) {
	resolver, err := authctx.NewResolver()
	require.NoError(t, err)

	t.Run("missing token returns 401 without calling upstream", func(t *testing.T) {
		normalizer := new(MockNormalizer)
		var seen model.Credentials
		e := setupAuthServer(resolver, normalizer, &seen)

		req := httptest.NewRequest(http.MethodGet, "/academics/ping", nil)
		req.AddCookie(&http.Cookie{Name: "tn_tenantId", Value: tenantUUID})
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		resp := decodeError(t, rec.Body.Bytes())
		assert.Equal(t, "unauthorized", resp.Code)
		assert.Equal(t, "Authentication required", resp.Message)
		normalizer.AssertNotCalled(t, "NormalizeCredentials", mock.Anything, mock.Anything)
	})

	t.Run("missing tenant returns 400", func(t *testing.T) {
		var seen model.Credentials
		e := setupAuthServer(resolver, new(MockNormalizer), &seen)

		rec := PerformRequest(e, http.MethodGet, "/academics/ping", "", map[string]string{
			"x-auth-context": "SUPER_ADMIN",
			"x-access-token": "tok",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "missing_tenant", decodeError(t, rec.Body.Bytes()).Code)
	})

	t.Run("unresolvable slug returns 400 with the tenant message", func(t *testing.T) {
		normalizer := new(MockNormalizer)
		normalizer.On("NormalizeCredentials", mock.Anything, mock.MatchedBy(func(c model.Credentials) bool {
			return c.TenantID == "ghost.school.test"
		})).Return(model.Credentials{}, model.ErrTenantUnresolved)
		var seen model.Credentials
		e := setupAuthServer(resolver, normalizer, &seen)

		rec := PerformRequest(e, http.MethodGet, "/academics/ping", "", map[string]string{
			"x-auth-context": "SUPER_ADMIN",
			"x-tenant-id":    "ghost.school.test",
			"x-access-token": "tok",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		resp := decodeError(t, rec.Body.Bytes())
		assert.Equal(t, "invalid_tenant", resp.Code)
		assert.Equal(t, "Invalid tenant context - could not resolve tenant UUID", resp.Message)
	})

	t.Run("resolved credentials reach the handler", func(t *testing.T) {
		normalizer := new(MockNormalizer)
		normalizer.On("NormalizeCredentials", mock.Anything, mock.Anything).Return(
			model.Credentials{TenantID: tenantUUID, AccessToken: "tok", RequestID: "trace-7"}, nil)
		var seen model.Credentials
		e := setupAuthServer(resolver, normalizer, &seen)

		rec := PerformRequest(e, http.MethodGet, "/academics/ping", "", map[string]string{
			"x-auth-context": "SUPER_ADMIN",
			"x-tenant-id":    "north.school.test",
			"x-access-token": "Bearer tok",
			"X-Request-ID":   "trace-7",
		})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, tenantUUID, seen.TenantID)
		normalizer.AssertCalled(t, "NormalizeCredentials", mock.Anything,
			model.Credentials{TenantID: "north.school.test", AccessToken: "tok", RequestID: "trace-7"})
	})
}

func TestRequestIDMiddleware(t *testing.T) {
	e := echo.New()
	var seen string
	e.GET("/", func(c echo.Context) error {
		seen = c.Get(handler.ContextKeyRequestID).(string)
		return c.NoContent(http.StatusOK)
	}, handler.RequestIDMiddleware)

	t.Run("inbound id is kept", func(t *testing.T) {
		rec := PerformRequest(e, http.MethodGet, "/", "", map[string]string{"X-Request-ID": "abc"})
		assert.Equal(t, "abc", rec.Header().Get("X-Request-ID"))
		assert.Equal(t, "abc", seen)
	})

	t.Run("missing id is generated", func(t *testing.T) {
		rec := PerformRequest(e, http.MethodGet, "/", "", nil)
		assert.Len(t, rec.Header().Get("X-Request-ID"), 36)
		assert.Equal(t, rec.Header().Get("X-Request-ID"), seen)
	})
}

type observation struct {
	method, route, status string
}

type recordingMetrics struct {
	mu  sync.Mutex
	obs []observation
}

func (m *recordingMetrics) ObserveRequest(method, route, status string, _ float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.obs = append(m.obs, observation{method, route, status})
}

func TestMetricsMiddleware(t *testing.T) {
	m := &recordingMetrics{}
	e := echo.New()
	e.HTTPErrorHandler = handler.HTTPErrorHandler
	e.Use(handler.MetricsMiddleware(m))
	e.GET("/academics/promotions/criteria/:id", func(c echo.Context) error {
		return c.NoContent(http.StatusAccepted)
	})

	PerformRequest(e, http.MethodGet, "/academics/promotions/criteria/c-9", "", nil)
	PerformRequest(e, http.MethodGet, "/nowhere", "", nil)

	require.Len(t, m.obs, 2)
	assert.Equal(t, observation{"GET", "/academics/promotions/criteria/:id", "202"}, m.obs[0])
	assert.Equal(t, "404", m.obs[1].status)
}

func TestHTTPErrorHandler(t *testing.T) {
	e := echo.New()
	e.HTTPErrorHandler = handler.HTTPErrorHandler
	e.Use(middleware.Recover())
	e.Use(handler.RequestIDMiddleware)
	e.GET("/panic", func(c echo.Context) error {
		panic("nil map write in handler")
	})

	t.Run("unknown route returns json 404", func(t *testing.T) {
		rec := PerformRequest(e, http.MethodGet, "/missing", "", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "not_found", decodeError(t, rec.Body.Bytes()).Code)
	})

	t.Run("panic returns a safe 500", func(t *testing.T) {
		rec := PerformRequest(e, http.MethodGet, "/panic", "", map[string]string{"X-Request-ID": "r-1"})
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		resp := decodeError(t, rec.Body.Bytes())
		assert.Equal(t, "internal_error", resp.Code)
		assert.Equal(t, "r-1", resp.RequestID)
		assert.NotContains(t, rec.Body.String(), "nil map")
	})
}
