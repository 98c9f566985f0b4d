package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"schoolbff/internal/bff/authctx"
	"schoolbff/internal/bff/metrics"
	"schoolbff/internal/bff/model"
	"schoolbff/internal/bff/util"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const (
	ContextKeyRequestID   = "request_id"
	ContextKeyCredentials = "credentials"
)

// CredentialResolver reads the caller's context and credentials off a request.
type CredentialResolver interface {
	Resolve(req *http.Request) (*authctx.Resolution, error)
}

// TenantNormalizer replaces the caller's tenant identifier with its UUID.
type TenantNormalizer interface {
	NormalizeCredentials(ctx context.Context, creds model.Credentials) (model.Credentials, error)
}

func RequestIDMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		reqID := c.Request().Header.Get(echo.HeaderXRequestID)
		if reqID == "" {
			reqID = uuid.NewString()
			c.Request().Header.Set(echo.HeaderXRequestID, reqID)
		}
		c.Set(ContextKeyRequestID, reqID)
		c.Response().Header().Set(echo.HeaderXRequestID, reqID)
		return next(c)
	}
}

func requestID(c echo.Context) string {
	if id, ok := c.Get(ContextKeyRequestID).(string); ok {
		return id
	}
	return c.Request().Header.Get(echo.HeaderXRequestID)
}

// AuthMiddleware resolves the auth context, normalizes the tenant and stores
// the resulting credentials on the echo context. It runs once per request.
type AuthMiddleware struct {
	Resolver   CredentialResolver
	Normalizer TenantNormalizer
}

func NewAuthMiddleware(resolver CredentialResolver, normalizer TenantNormalizer) *AuthMiddleware {
	return &AuthMiddleware{Resolver: resolver, Normalizer: normalizer}
}

func (m *AuthMiddleware) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			res, err := m.Resolver.Resolve(c.Request())
			if err != nil {
				util.GetLogger().Info("credential resolution failed",
					"path", c.Path(), "error", err, "request_id", requestID(c))
				return writeError(c, err)
			}

			creds := res.Credentials
			creds.RequestID = requestID(c)
			creds, err = m.Normalizer.NormalizeCredentials(c.Request().Context(), creds)
			if err != nil {
				return writeError(c, err)
			}

			util.GetLogger().Debug("request context resolved",
				"auth_context", res.Context.String(),
				"tenant_source", res.TenantSource,
				"token_source", res.TokenSource,
				"tenant_id", creds.TenantID,
				"request_id", creds.RequestID,
			)
			c.Set(ContextKeyCredentials, creds)
			return next(c)
		}
	}
}

// credentials returns what AuthMiddleware stored, or model.ErrMissingCredentials.
func credentials(c echo.Context) (model.Credentials, error) {
	creds, ok := c.Get(ContextKeyCredentials).(model.Credentials)
	if !ok {
		return model.Credentials{}, model.ErrMissingCredentials
	}
	return creds, nil
}

// MetricsMiddleware records one observation per request, keyed by route pattern.
func MetricsMiddleware(m metrics.GatewayMetrics) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			status := c.Response().Status
			if err != nil {
				var he *echo.HTTPError
				if errors.As(err, &he) {
					status = he.Code
				} else {
					status = http.StatusInternalServerError
				}
			}
			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			m.ObserveRequest(c.Request().Method, route, strconv.Itoa(status), time.Since(start).Seconds())
			return err
		}
	}
}
