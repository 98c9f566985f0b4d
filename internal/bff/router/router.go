package router

import (
	"schoolbff/internal/bff/handler"
	"schoolbff/internal/bff/metrics"
	"schoolbff/internal/bff/model"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

const bodyLimit = "2M"

func RegisterRoutes(e *echo.Echo, h *handler.CriteriaHandler, auth *handler.AuthMiddleware, m metrics.Metrics, allowOrigins []string) {
	e.HTTPErrorHandler = handler.HTTPErrorHandler
	e.Use(handler.RequestIDMiddleware)
	e.Use(handler.MetricsMiddleware(m))

	// Credentials travel in cookies, so the browser needs AllowCredentials.
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     allowOrigins,
		AllowCredentials: true,
		AllowMethods:     []string{echo.GET, echo.PUT, echo.POST, echo.DELETE, echo.OPTIONS},
		AllowHeaders: []string{
			echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization,
			echo.HeaderXRequestID, model.HeaderAuthContext, "x-tenant-id", "x-access-token",
		},
		ExposeHeaders: []string{echo.HeaderXRequestID},
	}))

	// Health Check
	e.GET("/health", handler.HealthCheck)
	e.GET("/metrics", echo.WrapHandler(m.Handler()))

	// Per route: group middleware also runs on the group's not-found routes.
	guarded := []echo.MiddlewareFunc{middleware.BodyLimit(bodyLimit), auth.Middleware()}

	criteria := e.Group("/academics/promotions/criteria")
	criteria.GET("/sync-logs", h.GetSyncLogs, guarded...) // audit of batch runs, resolved tenant only
	criteria.GET("", h.GetCriteria, guarded...)
	criteria.POST("", h.PostCriteria, guarded...)
	criteria.GET("/:id", h.GetCriterion, guarded...)
	criteria.PUT("/:id", h.PutCriterion, guarded...)
	criteria.DELETE("/:id", h.DeleteCriterion, guarded...)
}
