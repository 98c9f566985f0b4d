package handler

import (
	"errors"
	"net/http"

	"schoolbff/internal/bff/model"
	"schoolbff/internal/bff/util"

	"github.com/labstack/echo/v4"
)

// Helper to map errors to HTTP status and body
func httpError(err error) (int, model.ErrorResponse) {
	var detail *model.ErrorResponse
	switch {
	case errors.Is(err, model.ErrMissingTenant):
		return http.StatusBadRequest, model.ErrorResponse{Code: "missing_tenant", Message: "Tenant context required"}
	case errors.Is(err, model.ErrMissingCredentials):
		return http.StatusUnauthorized, model.ErrorResponse{Code: "unauthorized", Message: "Authentication required"}
	case errors.Is(err, model.ErrTenantUnresolved), errors.Is(err, model.ErrTenantNotNormalized):
		return http.StatusBadRequest, model.ErrorResponse{Code: "invalid_tenant", Message: "Invalid tenant context - could not resolve tenant UUID"}
	case errors.Is(err, model.ErrUpstreamTimeout):
		return http.StatusGatewayTimeout, model.ErrorResponse{Code: "upstream_timeout", Message: "Upstream timeout"}
	case errors.Is(err, model.ErrUpstreamUnavailable):
		return http.StatusBadGateway, model.ErrorResponse{Code: "bad_gateway", Message: "Upstream unavailable"}
	case errors.As(err, &detail):
		return http.StatusBadRequest, *detail
	default:
		return http.StatusInternalServerError, model.ErrorResponse{Code: "internal_error", Message: "Internal server error"}
	}
}

// writeError answers with the upstream's own status and body for upstream
// rejections and with the gateway's error body for everything else.
func writeError(c echo.Context, err error) error {
	var upErr *model.UpstreamError
	if errors.As(err, &upErr) {
		ct := upErr.ContentType
		if ct == "" {
			ct = echo.MIMEApplicationJSON
		}
		return c.Blob(upErr.Status, ct, upErr.Body)
	}

	status, body := httpError(err)
	body.RequestID = requestID(c)
	if status >= http.StatusInternalServerError {
		util.GetLogger().Error("request failed",
			"method", c.Request().Method,
			"path", c.Path(),
			"status", status,
			"error", err,
			"request_id", body.RequestID,
		)
	}
	return c.JSON(status, body)
}

// HTTPErrorHandler replaces echo's default so that routing errors keep their
// status and anything unexpected, recovered panics included, becomes a 500
// without internal detail.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var he *echo.HTTPError
	if errors.As(err, &he) && he.Code < http.StatusInternalServerError {
		msg := http.StatusText(he.Code)
		if s, ok := he.Message.(string); ok && s != "" {
			msg = s
		}
		_ = c.JSON(he.Code, model.ErrorResponse{Code: httpErrorCode(he.Code), Message: msg, RequestID: requestID(c)})
		return
	}

	_ = writeError(c, err)
}

func httpErrorCode(status int) string {
	switch status {
	case http.StatusNotFound:
		return "not_found"
	case http.StatusMethodNotAllowed:
		return "method_not_allowed"
	case http.StatusRequestEntityTooLarge:
		return "payload_too_large"
	case http.StatusUnauthorized:
		return "unauthorized"
	case http.StatusForbidden:
		return "forbidden"
	default:
		return "bad_request"
	}
}
